package migrations

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// codeMigrationBinary is the conventional name of the executable a code
// migration directory must contain. On Windows the ".exe" suffix is
// added by codeLoaderPath.
const codeMigrationBinary = "migration"

// CodeLoader invokes an out-of-process code migration. The program is
// run as `<path> <direction> <connString>`, where direction is "up" or
// "down"; DATABASE_URL is set in its environment to connString as well,
// for programs that prefer reading it from the environment. A nonzero
// exit code is treated as a failed payload.
type CodeLoader interface {
	Invoke(ctx context.Context, direction string, connString string) error
}

// execCodeLoader is the default CodeLoader, backed by os/exec.
type execCodeLoader struct {
	path string
}

// codeLoaderPath returns the path to the code-migration executable inside
// dir, or "" if none is present.
func codeLoaderPath(dir string) string {
	name := codeMigrationBinary
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	path := filepath.Join(dir, name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return ""
	}
	return path
}

func newExecCodeLoader(dir string) CodeLoader {
	path := codeLoaderPath(dir)
	if path == "" {
		return nil
	}
	return &execCodeLoader{path: path}
}

func (l *execCodeLoader) Invoke(ctx context.Context, direction string, connString string) error {
	cmd := exec.CommandContext(ctx, l.path, direction, connString)
	cmd.Env = append(os.Environ(), "DATABASE_URL="+connString)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("code migration %s %s failed: %w\n%s", l.path, direction, err, output)
	}
	return nil
}
