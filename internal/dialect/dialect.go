package dialect

import (
	"strings"
)

// Dialect representa um dialeto de banco de dados
// Abstrai as diferenças entre PostgreSQL, MySQL, SQLite, etc.
type Dialect interface {
	// Name retorna o nome do dialeto (ex: "postgresql", "mysql", "sqlite")
	Name() string

	// QuoteIdentifier cita um identificador (tabela, coluna, etc.)
	// PostgreSQL: "table_name", MySQL: `table_name`, SQLite: "table_name"
	QuoteIdentifier(name string) string

	// GetPlaceholder retorna o placeholder para parâmetros
	// PostgreSQL: $1, $2, MySQL: ?, ?, SQLite: ?, ?
	GetPlaceholder(index int) string

	// GetDriverName retorna o nome do driver Go para database/sql
	// PostgreSQL: "pgx", MySQL: "mysql", SQLite: "sqlite3"
	GetDriverName() string
}

// GetDialect retorna o dialeto apropriado para o provider
func GetDialect(provider string) Dialect {
	provider = strings.ToLower(provider)
	
	switch provider {
	case "postgresql", "postgres":
		return &PostgreSQLDialect{}
	case "mysql", "mariadb":
		return &MySQLDialect{}
	case "sqlite":
		return &SQLiteDialect{}
	default:
		// Default para PostgreSQL
		return &PostgreSQLDialect{}
	}
}

