package gen

import (
	"fmt"
	"path/filepath"
	"sort"
	"sync"
)

// ArtifactKind distinguishes generated Go sources from resource bundles.
type ArtifactKind int

// Artifact kinds.
const (
	KindSource ArtifactKind = iota
	KindBundle
)

func (k ArtifactKind) String() string {
	if k == KindBundle {
		return "bundle"
	}
	return "source"
}

// Artifact is one generated file.
type Artifact struct {
	// Path is the absolute destination path.
	Path string
	Kind ArtifactKind
	// Unit is the input unit that produced the artifact, see PackageUnit and
	// DefinitionUnit.
	Unit    string
	Content []byte
}

// Unit prefixes.
const (
	PackageUnitPrefix    = "pkg:"
	DefinitionUnitPrefix = "def:"
)

// PackageUnit returns the cache unit of a scanned package.
func PackageUnit(importPath string) string {
	return PackageUnitPrefix + importPath
}

// DefinitionUnit returns the cache unit of a definition file, relative to
// the project directory.
func DefinitionUnit(projectDir, path string) string {
	if rel, err := filepath.Rel(projectDir, path); err == nil {
		path = rel
	}
	return DefinitionUnitPrefix + filepath.ToSlash(path)
}

// Output is the tracked sink every emitter writes to. Artifacts are keyed
// by path; it is safe for concurrent use.
type Output struct {
	mu        sync.Mutex
	artifacts map[string]*Artifact
}

// NewOutput returns an empty sink.
func NewOutput() *Output {
	return &Output{artifacts: make(map[string]*Artifact)}
}

// Add records a. Two units producing the same path is an error; the first
// artifact is kept. A unit replacing its own artifact is allowed.
func (o *Output) Add(a *Artifact) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if prev, ok := o.artifacts[a.Path]; ok && prev.Unit != a.Unit {
		return fmt.Errorf("%s is produced by both %s and %s", a.Path, prev.Unit, a.Unit)
	}
	o.artifacts[a.Path] = a
	return nil
}

// Artifacts returns the artifacts sorted by path.
func (o *Output) Artifacts() []*Artifact {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]*Artifact, 0, len(o.artifacts))
	for _, a := range o.artifacts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Len returns the number of artifacts.
func (o *Output) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.artifacts)
}

// Lookup returns the artifact at path.
func (o *Output) Lookup(path string) (*Artifact, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	a, ok := o.artifacts[path]
	return a, ok
}

// ByUnit returns the sorted artifact paths of every unit.
func (o *Output) ByUnit() map[string][]string {
	out := make(map[string][]string)
	for _, a := range o.Artifacts() {
		out[a.Unit] = append(out[a.Unit], a.Path)
	}
	return out
}
