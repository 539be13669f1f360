package dialect

import (
	"testing"
)

// TestDialect_PostgreSQL tests the identifier quoting, placeholder and
// driver name the migration runner actually relies on.
func TestDialect_PostgreSQL(t *testing.T) {
	d := GetDialect("postgresql")
	if d == nil {
		t.Fatal("GetDialect returned nil for postgresql")
	}
	if d.Name() != "postgresql" {
		t.Errorf("Name() = %s, want postgresql", d.Name())
	}
	if quoted := d.QuoteIdentifier("user"); quoted != `"user"` {
		t.Errorf("QuoteIdentifier('user') = %s, want \"user\"", quoted)
	}
	if placeholder := d.GetPlaceholder(1); placeholder != "$1" {
		t.Errorf("GetPlaceholder(1) = %s, want $1", placeholder)
	}
	if driver := d.GetDriverName(); driver != "pgx" {
		t.Errorf("GetDriverName() = %s, want pgx", driver)
	}
}

// TestDialect_MySQL tests the identifier quoting, placeholder and driver
// name the migration runner actually relies on.
func TestDialect_MySQL(t *testing.T) {
	d := GetDialect("mysql")
	if d == nil {
		t.Fatal("GetDialect returned nil for mysql")
	}
	if d.Name() != "mysql" {
		t.Errorf("Name() = %s, want mysql", d.Name())
	}
	if quoted := d.QuoteIdentifier("user"); quoted != "`user`" {
		t.Errorf("QuoteIdentifier('user') = %s, want `user`", quoted)
	}
	if placeholder := d.GetPlaceholder(1); placeholder != "?" {
		t.Errorf("GetPlaceholder(1) = %s, want ?", placeholder)
	}
	if driver := d.GetDriverName(); driver != "mysql" {
		t.Errorf("GetDriverName() = %s, want mysql", driver)
	}
}

// TestDialect_SQLite tests the identifier quoting, placeholder and driver
// name the migration runner actually relies on.
func TestDialect_SQLite(t *testing.T) {
	d := GetDialect("sqlite")
	if d == nil {
		t.Fatal("GetDialect returned nil for sqlite")
	}
	if d.Name() != "sqlite" {
		t.Errorf("Name() = %s, want sqlite", d.Name())
	}
	if quoted := d.QuoteIdentifier("user"); quoted != `"user"` {
		t.Errorf("QuoteIdentifier('user') = %s, want \"user\"", quoted)
	}
	if placeholder := d.GetPlaceholder(1); placeholder != "?" {
		t.Errorf("GetPlaceholder(1) = %s, want ?", placeholder)
	}
	if driver := d.GetDriverName(); driver != "sqlite3" {
		t.Errorf("GetDriverName() = %s, want sqlite3", driver)
	}
}

// TestDialect_UnknownProviderDefaultsToPostgreSQL matches GetDialect's
// fallback for an unrecognized provider string.
func TestDialect_UnknownProviderDefaultsToPostgreSQL(t *testing.T) {
	d := GetDialect("unknown")
	if d.Name() != "postgresql" {
		t.Errorf("GetDialect(\"unknown\").Name() = %s, want postgresql", d.Name())
	}
}
