package load

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/mod/modfile"
)

// ErrNoModule is returned when no go.mod is found.
var ErrNoModule = errors.New("go.mod not found")

// FindModule walks up from dir to the nearest go.mod and returns the module
// path it declares and the directory holding it.
func FindModule(dir string) (modulePath, root string, err error) {
	dir, err = filepath.Abs(dir)
	if err != nil {
		return "", "", err
	}
	for {
		gomod := filepath.Join(dir, "go.mod")
		data, err := os.ReadFile(gomod)
		switch {
		case err == nil:
			mp := modfile.ModulePath(data)
			if mp == "" {
				return "", "", fmt.Errorf("%s: no module directive", gomod)
			}
			return mp, dir, nil
		case !errors.Is(err, fs.ErrNotExist):
			return "", "", err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", "", ErrNoModule
		}
		dir = parent
	}
}
