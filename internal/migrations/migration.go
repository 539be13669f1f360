package migrations

import (
	"regexp"
	"sort"
)

// Kind distinguishes a sql migration from a code migration.
type Kind string

const (
	KindSQL  Kind = "sql"
	KindCode Kind = "code"
)

// dirNamePattern matches the canonical migration directory name:
// a 14-digit id, an underscore, and a lowercase snake-case name.
var dirNamePattern = regexp.MustCompile(`^(\d{14})_([a-z0-9_]+)$`)

// Migration is a single migration's in-memory representation. It is an
// immutable value object once returned by the Reader.
type Migration struct {
	ID       string
	Name     string
	Path     string
	Kind     Kind
	UpText   string
	DownText string
	Checksum string
	Loader   CodeLoader
}

// SortMigrations orders migrations by id ascending. Ids are unique, so
// there are no ties to break.
func SortMigrations(migrations []Migration) {
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].ID < migrations[j].ID
	})
}

// parseDirName splits a migration directory/file name into its id and
// name components. ok is false if the name doesn't match the grammar.
func parseDirName(name string) (id, migrationName string, ok bool) {
	m := dirNamePattern.FindStringSubmatch(name)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}
