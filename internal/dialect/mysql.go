package dialect

import (
	"fmt"
)

// MySQLDialect implements the MySQL dialect
type MySQLDialect struct{}

func (d *MySQLDialect) Name() string {
	return "mysql"
}

func (d *MySQLDialect) QuoteIdentifier(name string) string {
	return fmt.Sprintf("`%s`", name)
}

func (d *MySQLDialect) GetPlaceholder(index int) string {
	return "?"
}

func (d *MySQLDialect) GetDriverName() string {
	return "mysql"
}
