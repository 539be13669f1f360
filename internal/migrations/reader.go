package migrations

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// flatFilePattern matches legacy flat migration files: <id>_<name>.sql
var flatFilePattern = regexp.MustCompile(`^(\d{14})_([a-z0-9_]+)\.sql$`)

var upDownMarkers = []struct {
	up   *regexp.Regexp
	down *regexp.Regexp
}{
	{
		up:   regexp.MustCompile(`(?im)^\s*--\s*Migration:\s*Up\s*$`),
		down: regexp.MustCompile(`(?im)^\s*--\s*Migration:\s*Down\s*$`),
	},
	{
		up:   regexp.MustCompile(`(?im)^\s*--\s*UP\s*$`),
		down: regexp.MustCompile(`(?im)^\s*--\s*DOWN\s*$`),
	},
}

// Reader enumerates and parses migration files beneath a directory into
// an ordered, immutable in-memory list. It holds no state beyond the
// root it was constructed with.
type Reader struct {
	root string
}

// NewReader constructs a Reader rooted at dir.
func NewReader(dir string) *Reader {
	return &Reader{root: dir}
}

// Read returns the ordered (by id ascending) list of migrations found
// directly beneath the reader's root. A missing or empty directory
// yields an empty list, not an error.
func (r *Reader) Read() ([]Migration, error) {
	entries, err := os.ReadDir(r.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, newReadError(err)
	}

	seen := make(map[string]string) // id -> name, for duplicate detection
	var out []Migration

	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		if entry.IsDir() {
			m, err := r.readDir(name)
			if err != nil {
				return nil, err
			}
			if err := checkDuplicate(seen, m.ID, m.Name); err != nil {
				return nil, err
			}
			out = append(out, m)
			continue
		}

		if match := flatFilePattern.FindStringSubmatch(name); match != nil {
			path := filepath.Join(r.root, name)
			content, err := os.ReadFile(path)
			if err != nil {
				return nil, newReadError(err)
			}
			up, down := splitUpDown(content)
			m := Migration{
				ID:       match[1],
				Name:     match[2],
				Path:     path,
				Kind:     KindSQL,
				UpText:   up,
				DownText: down,
				Checksum: Checksum(content),
			}
			if err := checkDuplicate(seen, m.ID, m.Name); err != nil {
				return nil, err
			}
			out = append(out, m)
			continue
		}

		return nil, newInvalidFormatError("unrecognized entry %q in migrations directory", name)
	}

	SortMigrations(out)
	return out, nil
}

func checkDuplicate(seen map[string]string, id, name string) error {
	if _, ok := seen[id]; ok {
		return newDuplicateIDError(id)
	}
	seen[id] = name
	return nil
}

// readDir parses a single migration directory entry.
func (r *Reader) readDir(dirName string) (Migration, error) {
	id, name, ok := parseDirName(dirName)
	if !ok {
		return Migration{}, newInvalidFormatError("invalid migration directory name %q", dirName)
	}

	dirPath := filepath.Join(r.root, dirName)
	sqlPath := filepath.Join(dirPath, "migration.sql")

	if content, err := os.ReadFile(sqlPath); err == nil {
		up, down := splitUpDown(content)
		return Migration{
			ID:       id,
			Name:     name,
			Path:     dirPath,
			Kind:     KindSQL,
			UpText:   up,
			DownText: down,
			Checksum: Checksum(content),
		}, nil
	} else if !os.IsNotExist(err) {
		return Migration{}, newReadError(err)
	}

	if loader := newExecCodeLoader(dirPath); loader != nil {
		checksum, err := checksumDir(dirPath)
		if err != nil {
			return Migration{}, err
		}
		return Migration{
			ID:       id,
			Name:     name,
			Path:     dirPath,
			Kind:     KindCode,
			Loader:   loader,
			Checksum: checksum,
		}, nil
	}

	return Migration{}, newInvalidFormatError("migration directory %q contains neither migration.sql nor a code migration binary", dirName)
}

// checksumDir computes a stable checksum for a code migration by hashing
// its binary's bytes, so tampering detection (spec.md §4.4) still works.
func checksumDir(dirPath string) (string, error) {
	path := codeLoaderPath(dirPath)
	content, err := os.ReadFile(path)
	if err != nil {
		return "", newReadError(err)
	}
	return Checksum(content), nil
}

// splitUpDown splits an sql migration's content into up and down halves
// using the marker grammar from spec.md §4.1, trying the canonical
// marker first and falling back to the legacy one.
func splitUpDown(content []byte) (up string, down string) {
	text := normalizeLineEndings(string(content))

	for _, markers := range upDownMarkers {
		upLoc := markers.up.FindStringIndex(text)
		if upLoc == nil {
			continue
		}
		downLoc := markers.down.FindStringIndex(text)

		// A marker match ends before its line's newline; each section
		// starts on the line after its marker.
		upStart := upLoc[1]
		if upStart < len(text) && text[upStart] == '\n' {
			upStart++
		}

		var upSection, downSection string
		if downLoc != nil {
			downStart := downLoc[1]
			if downStart < len(text) && text[downStart] == '\n' {
				downStart++
			}
			upSection = text[upStart:downLoc[0]]
			downSection = text[downStart:]
		} else {
			upSection = text[upStart:]
			downSection = ""
		}
		return strings.TrimRight(upSection, " \t\n"), strings.TrimRight(downSection, " \t\n")
	}

	// No marker present: the whole file is up, down is empty.
	return strings.TrimRight(text, " \t\n"), ""
}
