package gen

import (
	"errors"
	"strings"
)

// Option configures code generation.
type Option func(*Config) error

// WithProjectDir sets the project root directory.
func WithProjectDir(dir string) Option {
	return func(c *Config) error {
		if dir == "" {
			return NewConfigError("ProjectDir", nil, "project directory cannot be empty")
		}
		c.ProjectDir = dir
		return nil
	}
}

// WithModule sets the module path of the project.
// For example: "github.com/org/shop".
func WithModule(module string) Option {
	return func(c *Config) error {
		if module == "" {
			return NewConfigError("Module", nil, "module cannot be empty")
		}
		c.Module = module
		return nil
	}
}

// WithHeader sets the file header comment.
// The header is added at the top of each generated file and marks the files
// that stale-output removal may delete, so it cannot be empty.
func WithHeader(header string) Option {
	return func(c *Config) error {
		if err := validHeader(header); err != nil {
			return err
		}
		c.Header = header
		return nil
	}
}

// WithPackages sets the package patterns scanned for property markers.
func WithPackages(patterns ...string) Option {
	return func(c *Config) error {
		if len(patterns) == 0 {
			return NewConfigError("Packages", nil, "at least one pattern is required")
		}
		c.Packages = patterns
		return nil
	}
}

// WithTests also scans test variants of the packages.
func WithTests(tests bool) Option {
	return func(c *Config) error {
		c.Tests = tests
		return nil
	}
}

// WithBuildFlags sets custom build flags for loading packages.
func WithBuildFlags(flags ...string) Option {
	return func(c *Config) error {
		c.BuildFlags = append(c.BuildFlags, flags...)
		return nil
	}
}

// WithDefinitions sets the files, directories or globs holding error
// definitions.
func WithDefinitions(paths ...string) Option {
	return func(c *Config) error {
		if len(paths) == 0 {
			return NewConfigError("Definitions", nil, "at least one path is required")
		}
		c.Definitions = paths
		return nil
	}
}

// WithExtension sets the extension of definition files, e.g. ".xml".
func WithExtension(ext string) Option {
	return func(c *Config) error {
		if ext == "" {
			return NewConfigError("Extension", nil, "extension cannot be empty")
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		c.Extension = ext
		return nil
	}
}

// WithErrorsPackage sets the directory of the generated error classes.
func WithErrorsPackage(dir string) Option {
	return func(c *Config) error {
		if dir == "" {
			return NewConfigError("ErrorsPackage", nil, "errors package cannot be empty")
		}
		c.ErrorsPackage = dir
		return nil
	}
}

// WithResourcesDir sets the directory of the resource bundles.
func WithResourcesDir(dir string) Option {
	return func(c *Config) error {
		if dir == "" {
			return NewConfigError("ResourcesDir", nil, "resources directory cannot be empty")
		}
		c.ResourcesDir = dir
		return nil
	}
}

// WithWorkers sets the number of parallel emitters.
func WithWorkers(n int) Option {
	return func(c *Config) error {
		if n < 1 {
			return NewConfigError("Workers", n, "must be at least 1")
		}
		c.Workers = n
		return nil
	}
}

// WithExportedSetters makes generated setters exported.
func WithExportedSetters(exported bool) Option {
	return func(c *Config) error {
		c.ExportedSetters = exported
		return nil
	}
}

// WithoutCache disables the incremental cache.
func WithoutCache() Option {
	return func(c *Config) error {
		c.DisableCache = true
		return nil
	}
}

// WithPipelines restricts generation to the given pipelines.
func WithPipelines(pipelines ...Pipeline) Option {
	return func(c *Config) error {
		for _, p := range pipelines {
			if p != PipelineProperties && p != PipelineErrors {
				return NewConfigError("Pipelines", p, "unknown pipeline; use props or errors")
			}
		}
		c.Pipelines = pipelines
		return nil
	}
}

// Apply applies options to the config.
// It returns the first error encountered.
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// ApplyAll applies options and collects all errors.
// Returns a joined error if any options failed.
func (c *Config) ApplyAll(opts ...Option) error {
	var errs []error
	for _, opt := range opts {
		if err := opt(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewConfig creates a new Config with the defaults and the given options.
func NewConfig(opts ...Option) (*Config, error) {
	c := DefaultConfig()
	if err := c.Apply(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

// MustNewConfig creates a new Config with the given options.
// It panics if any option fails.
func MustNewConfig(opts ...Option) *Config {
	c, err := NewConfig(opts...)
	if err != nil {
		panic(err)
	}
	return c
}
