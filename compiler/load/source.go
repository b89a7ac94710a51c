package load

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/tools/go/packages"
)

// LoadMode specifies what information to load from packages.
const LoadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo |
	packages.NeedImports

// SourceConfig configures LoadSources.
type SourceConfig struct {
	// Dir is the directory patterns are resolved in.
	Dir string
	// Patterns are standard Go package patterns, e.g. "./...".
	Patterns []string
	// Tests also loads test variants of the packages.
	Tests      bool
	BuildFlags []string
	// Env overrides the loader environment; nil inherits the process one.
	Env []string
}

// Package is a loaded package that was scanned for markers.
type Package struct {
	ID   string
	Path string
	Name string
	Dir  string
	// Files are the scanned Go files.
	Files []string
	// Fragments are the observable types declared in the package.
	Fragments []*Fragment
	// Items are the verdicts on every marked declaration.
	Items []Classification
	// Errors are load and type-check errors. They do not stop scanning.
	Errors []string
}

// Malformed returns the malformed items of the package.
func (p *Package) Malformed() []Classification {
	var out []Classification
	for _, it := range p.Items {
		if it.Kind == Malformed {
			out = append(out, it)
		}
	}
	return out
}

// LoadSources loads the packages matching cfg.Patterns and classifies their
// marker comments. Packages are returned sorted by ID. Type errors are
// recorded on the package and scanning continues, since user code commonly
// calls accessors that this run generates.
func LoadSources(ctx context.Context, cfg *SourceConfig) ([]*Package, error) {
	patterns := cfg.Patterns
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}
	pcfg := &packages.Config{
		Context:    ctx,
		Mode:       LoadMode,
		Dir:        cfg.Dir,
		Tests:      cfg.Tests,
		BuildFlags: cfg.BuildFlags,
		Env:        cfg.Env,
	}
	pkgs, err := packages.Load(pcfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}
	sort.Slice(pkgs, func(i, j int) bool { return pkgs[i].ID < pkgs[j].ID })

	out := make([]*Package, 0, len(pkgs))
	seen := make(map[string]bool, len(pkgs))
	for _, pkg := range pkgs {
		// Test binaries ("p.test") hold only the generated main, and the
		// "p [p.test]" variant repeats the files of p. The plain package
		// sorts first and wins.
		if strings.HasSuffix(pkg.ID, ".test") || seen[pkg.PkgPath] {
			continue
		}
		seen[pkg.PkgPath] = true
		out = append(out, scanPackage(pkg))
	}
	return out, nil
}

func scanPackage(pkg *packages.Package) *Package {
	p := &Package{
		ID:   pkg.ID,
		Path: pkg.PkgPath,
		Name: pkg.Name,
	}
	for _, e := range pkg.Errors {
		p.Errors = append(p.Errors, e.Error())
	}
	c := &Classifier{Fset: pkg.Fset, Info: pkg.TypesInfo, Namespace: pkg.PkgPath}
	if pkg.IllTyped {
		// Partial type information can misjudge comparability and hooks.
		c.Info = nil
	}
	for _, f := range pkg.Syntax {
		name := pkg.Fset.Position(f.Package).Filename
		if p.Dir == "" {
			p.Dir = filepath.Dir(name)
		}
		// Accessors of types declared in _test.go files would not compile
		// into the package proper.
		if strings.HasSuffix(name, "_test.go") {
			continue
		}
		p.Files = append(p.Files, name)
		res := c.ClassifyFile(f)
		p.Fragments = append(p.Fragments, res.Fragments...)
		p.Items = append(p.Items, res.Items...)
	}
	return p
}
