package dialect

import (
	"fmt"
)

// PostgreSQLDialect implements the PostgreSQL dialect
type PostgreSQLDialect struct{}

func (d *PostgreSQLDialect) Name() string {
	return "postgresql"
}

func (d *PostgreSQLDialect) QuoteIdentifier(name string) string {
	return fmt.Sprintf(`"%s"`, name)
}

func (d *PostgreSQLDialect) GetPlaceholder(index int) string {
	return fmt.Sprintf("$%d", index)
}

func (d *PostgreSQLDialect) GetDriverName() string {
	return "pgx"
}
