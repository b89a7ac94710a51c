package gen

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

// DefaultHeader is the first line of every generated file. It matches the
// pattern recognized by ast.IsGenerated so generated files are never scanned
// for markers.
const DefaultHeader = "Code generated by autogen. DO NOT EDIT."

// Pipeline names one of the generation pipelines.
type Pipeline string

// Pipelines.
const (
	PipelineProperties Pipeline = "props"
	PipelineErrors     Pipeline = "errors"
)

// Config holds the settings of a generation run.
type Config struct {
	// ProjectDir is the root of the Go module being generated for.
	ProjectDir string
	// Module is the module path of the project. Generated imports and the
	// error-class file names are derived from it.
	Module string
	// Header is written as the first comment of every generated file.
	Header string

	// Packages are the package patterns scanned for property markers.
	Packages []string
	// Tests also loads test variants of the scanned packages.
	Tests bool
	// BuildFlags are passed to the package loader.
	BuildFlags []string

	// Definitions are files, directories or glob patterns holding error
	// definitions, relative to ProjectDir.
	Definitions []string
	// Extension selects definition files inside directories.
	Extension string
	// ErrorsPackage is the directory, relative to ProjectDir, receiving the
	// error classes. Its base name is the package name.
	ErrorsPackage string
	// ResourcesDir is the directory, relative to ProjectDir, receiving the
	// resource bundles and their accessors.
	ResourcesDir string

	// Workers bounds the emitters running in parallel.
	Workers int
	// ExportedSetters generates SetName instead of setName.
	ExportedSetters bool
	// DisableCache regenerates every unit on every pass.
	DisableCache bool
	// Pipelines restricts the run to the named pipelines. Empty runs all.
	Pipelines []Pipeline
}

// DefaultConfig returns a Config with every default applied.
func DefaultConfig() *Config {
	return &Config{
		ProjectDir:    ".",
		Header:        DefaultHeader,
		Packages:      []string{"./..."},
		Definitions:   []string{"."},
		Extension:     ".xml",
		ErrorsPackage: "errorcodes",
		ResourcesDir:  "resources",
		Workers:       DefaultWorkers(),
	}
}

// PipelineEnabled reports whether p runs under c.
func (c *Config) PipelineEnabled(p Pipeline) bool {
	return len(c.Pipelines) == 0 || slices.Contains(c.Pipelines, p)
}

// Abs returns rel resolved against ProjectDir.
func (c *Config) Abs(rel string) string {
	if filepath.IsAbs(rel) {
		return filepath.Clean(rel)
	}
	return filepath.Join(c.ProjectDir, rel)
}

// Validate checks the settings that cannot be defaulted.
func (c *Config) Validate() error {
	if c.ProjectDir == "" {
		return NewConfigError("ProjectDir", nil, "project directory cannot be empty")
	}
	if c.Module == "" {
		return NewConfigError("Module", nil, "module path is required; set it or provide a go.mod")
	}
	if err := validHeader(c.Header); err != nil {
		return err
	}
	if c.Workers < 1 {
		return NewConfigError("Workers", c.Workers, "must be at least 1")
	}
	if !strings.HasPrefix(c.Extension, ".") {
		return NewConfigError("Extension", c.Extension, "must start with a dot")
	}
	for _, dir := range []struct{ name, value string }{
		{"ErrorsPackage", c.ErrorsPackage},
		{"ResourcesDir", c.ResourcesDir},
	} {
		if dir.value == "" || filepath.IsAbs(dir.value) || strings.HasPrefix(filepath.Clean(dir.value), "..") {
			return NewConfigError(dir.name, dir.value, "must be a directory inside the project")
		}
	}
	for _, p := range c.Pipelines {
		if p != PipelineProperties && p != PipelineErrors {
			return NewConfigError("Pipelines", p, "unknown pipeline; use props or errors")
		}
	}
	return nil
}

// Fingerprint hashes the settings that change generated output. Cached
// units produced under a different fingerprint are regenerated.
func (c *Config) Fingerprint() string {
	h := sha256.New()
	fmt.Fprintf(h, "module=%s\nheader=%s\nerrors=%s\nresources=%s\nsetters=%t\n",
		c.Module, c.Header, filepath.ToSlash(c.ErrorsPackage), filepath.ToSlash(c.ResourcesDir), c.ExportedSetters)
	return hex.EncodeToString(h.Sum(nil))
}

// validHeader checks that header can be found again by IsGeneratedFile.
func validHeader(header string) error {
	switch {
	case header == "":
		return NewConfigError("Header", header, "cannot be empty; it marks the files autogen may remove")
	case strings.ContainsAny(header, "\r\n"):
		return NewConfigError("Header", header, "must be a single line")
	case strings.TrimSpace(header) != header:
		return NewConfigError("Header", header, "must not start or end with white space")
	}
	return nil
}
