package migrations

import (
	"os"
	"path/filepath"
	"testing"
)

func writeMigrationDir(t *testing.T, root, dirName, content string) {
	t.Helper()
	dir := filepath.Join(root, dirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	if err := os.WriteFile(filepath.Join(dir, "migration.sql"), []byte(content), 0644); err != nil {
		t.Fatalf("write migration.sql: %v", err)
	}
}

func TestReader_OrdersByIDAscending(t *testing.T) {
	root := t.TempDir()
	writeMigrationDir(t, root, "20240102120000_seed", "-- Migration: Up\nSELECT 1;\n")
	writeMigrationDir(t, root, "20240101000000_init", "-- Migration: Up\nSELECT 1;\n")

	migrations, err := NewReader(root).Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(migrations) != 2 {
		t.Fatalf("expected 2 migrations, got %d", len(migrations))
	}
	if migrations[0].ID != "20240101000000" || migrations[1].ID != "20240102120000" {
		t.Fatalf("not id-ascending: %v", migrations)
	}
}

func TestReader_MissingDirectoryYieldsEmptyList(t *testing.T) {
	migrations, err := NewReader(filepath.Join(t.TempDir(), "does-not-exist")).Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(migrations) != 0 {
		t.Fatalf("expected empty list, got %v", migrations)
	}
}

func TestReader_InvalidEntryNameIsFatal(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "not-a-migration"), 0755); err != nil {
		t.Fatal(err)
	}
	if _, err := NewReader(root).Read(); err == nil {
		t.Fatal("expected InvalidMigrationFormat for unrecognized entry")
	}
}

func TestReader_HiddenEntriesAreSkipped(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, ".git"), 0755); err != nil {
		t.Fatal(err)
	}
	migrations, err := NewReader(root).Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(migrations) != 0 {
		t.Fatalf("expected hidden entry to be skipped, got %v", migrations)
	}
}

func TestReader_DuplicateIDIsFatal(t *testing.T) {
	root := t.TempDir()
	writeMigrationDir(t, root, "20240101000000_init", "SELECT 1;")
	writeMigrationDir(t, root, "20240101000000_other", "SELECT 2;")

	if _, err := NewReader(root).Read(); err == nil {
		t.Fatal("expected DuplicateId error")
	}
}

func TestReader_LegacyFlatFileAccepted(t *testing.T) {
	root := t.TempDir()
	content := "-- UP\nCREATE TABLE t(id INT);\n-- DOWN\nDROP TABLE t;\n"
	if err := os.WriteFile(filepath.Join(root, "20240101000000_init.sql"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	migrations, err := NewReader(root).Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(migrations) != 1 {
		t.Fatalf("expected 1 migration, got %d", len(migrations))
	}
	if migrations[0].UpText != "CREATE TABLE t(id INT);" {
		t.Fatalf("unexpected up text: %q", migrations[0].UpText)
	}
	if migrations[0].DownText != "DROP TABLE t;" {
		t.Fatalf("unexpected down text: %q", migrations[0].DownText)
	}
}

func TestSplitUpDown_CanonicalMarkers(t *testing.T) {
	content := []byte("-- Migration: Up\nCREATE TABLE t(id INT);\n-- Migration: Down\nDROP TABLE t;\n")
	up, down := splitUpDown(content)
	if up != "CREATE TABLE t(id INT);" {
		t.Fatalf("unexpected up: %q", up)
	}
	if down != "DROP TABLE t;" {
		t.Fatalf("unexpected down: %q", down)
	}
}

func TestSplitUpDown_LegacyMarkersCaseInsensitive(t *testing.T) {
	content := []byte("-- up\nCREATE TABLE t(id INT);\n-- down\nDROP TABLE t;\n")
	up, down := splitUpDown(content)
	if up != "CREATE TABLE t(id INT);" {
		t.Fatalf("unexpected up: %q", up)
	}
	if down != "DROP TABLE t;" {
		t.Fatalf("unexpected down: %q", down)
	}
}

func TestSplitUpDown_NoMarkerMeansWholeFileIsUp(t *testing.T) {
	content := []byte("CREATE TABLE t(id INT);\n")
	up, down := splitUpDown(content)
	if up != "CREATE TABLE t(id INT);" {
		t.Fatalf("unexpected up: %q", up)
	}
	if down != "" {
		t.Fatalf("expected empty down, got %q", down)
	}
}

func TestSplitUpDown_NoDownMarkerMeansEmptyDown(t *testing.T) {
	content := []byte("-- Migration: Up\nCREATE TABLE t(id INT);\n")
	up, down := splitUpDown(content)
	if up != "CREATE TABLE t(id INT);" {
		t.Fatalf("unexpected up: %q", up)
	}
	if down != "" {
		t.Fatalf("expected empty down, got %q", down)
	}
}

func TestChecksum_NormalizesLineEndingsBeforeHashing(t *testing.T) {
	lf := []byte("CREATE TABLE t(id INT);\n")
	crlf := []byte("CREATE TABLE t(id INT);\r\n")
	if Checksum(lf) != Checksum(crlf) {
		t.Fatal("checksums should match after LF normalization")
	}
}

func TestChecksum_IsPureFunctionOfContent(t *testing.T) {
	a := []byte("CREATE TABLE t(id INT);")
	b := []byte("CREATE TABLE t(id INT);")
	c := []byte("CREATE TABLE u(id INT);")
	if Checksum(a) != Checksum(b) {
		t.Fatal("identical content must hash identically")
	}
	if Checksum(a) == Checksum(c) {
		t.Fatal("different content must hash differently")
	}
}

func TestChecksum_DoesNotTrimTrailingWhitespaceWithinLine(t *testing.T) {
	a := []byte("SELECT 1;\n")
	b := []byte("SELECT 1;   \n")
	if Checksum(a) == Checksum(b) {
		t.Fatal("trailing whitespace within a line must affect the checksum")
	}
}
