// Package compiler runs the property and error-table pipelines over a
// project: it loads the inputs, consults the incremental cache, renders the
// artifacts and writes them.
package compiler

import (
	"context"
	"errors"
	"fmt"
	"go/token"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/syssam/autogen/compiler/cache"
	"github.com/syssam/autogen/compiler/diag"
	"github.com/syssam/autogen/compiler/gen"
	"github.com/syssam/autogen/compiler/load"
	"github.com/syssam/autogen/internal/logging"
	"github.com/syssam/autogen/internal/logging/logfields"
)

// Report summarizes one generation pass.
type Report struct {
	// PassID identifies the pass in logs.
	PassID uuid.UUID
	// Written, Unchanged and Removed are absolute paths.
	Written   []string
	Unchanged []string
	Removed   []string
	// Skipped is the number of units whose outputs were up to date.
	Skipped     int
	Diagnostics []diag.Diagnostic
	Duration    time.Duration
}

// HasErrors reports whether the pass produced an error diagnostic.
func (r *Report) HasErrors() bool {
	for _, d := range r.Diagnostics {
		if d.Severity == diag.Error {
			return true
		}
	}
	return false
}

// Option configures Generate and Load.
type Option func(*options)

type options struct {
	log logrus.FieldLogger
	env []string
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(log logrus.FieldLogger) Option {
	return func(o *options) {
		o.log = log
	}
}

// WithEnv sets the environment of the package loader.
func WithEnv(env []string) Option {
	return func(o *options) {
		o.env = env
	}
}

func newOptions(opts []Option) *options {
	o := &options{log: logging.Discard()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Prepare resolves the project directory, infers the module path from
// go.mod when it is not set, and validates cfg.
func Prepare(cfg *gen.Config) error {
	dir, err := filepath.Abs(cfg.ProjectDir)
	if err != nil {
		return gen.NewConfigError("ProjectDir", cfg.ProjectDir, err.Error())
	}
	cfg.ProjectDir = dir
	if cfg.Module == "" {
		if module, _, err := load.FindModule(dir); err == nil {
			cfg.Module = module
		}
	}
	return cfg.Validate()
}

// Models are the inputs of a pass after loading.
type Models struct {
	// Packages are the scanned packages, nil when the property pipeline
	// is disabled.
	Packages []*load.Package
	// Groups maps package units to their type groups.
	Groups map[string][]*gen.TypeGroup
	// Tables maps definition units to their tables.
	Tables map[string]*gen.ErrorTable
	// Failed lists the definition units that could not be loaded.
	Failed []string
	// SourcesFailed is set when the package loader itself failed.
	SourcesFailed bool
}

// Load loads and classifies the inputs of cfg, reporting input problems to
// bag. It returns an error only for an invalid configuration or a canceled
// context.
func Load(ctx context.Context, cfg *gen.Config, bag *diag.Bag, opts ...Option) (*Models, error) {
	if err := Prepare(cfg); err != nil {
		return nil, err
	}
	return loadModels(ctx, cfg, bag, newOptions(opts))
}

func loadModels(ctx context.Context, cfg *gen.Config, bag *diag.Bag, o *options) (*Models, error) {
	m := &Models{
		Groups: make(map[string][]*gen.TypeGroup),
		Tables: make(map[string]*gen.ErrorTable),
	}
	if cfg.PipelineEnabled(gen.PipelineProperties) {
		if err := loadSources(ctx, cfg, bag, o, m); err != nil {
			return nil, err
		}
	}
	if cfg.PipelineEnabled(gen.PipelineErrors) {
		loadDefinitions(cfg, bag, o.log, m)
	}
	return m, ctx.Err()
}

func loadSources(ctx context.Context, cfg *gen.Config, bag *diag.Bag, o *options, m *Models) error {
	pkgs, err := load.LoadSources(ctx, &load.SourceConfig{
		Dir:        cfg.ProjectDir,
		Patterns:   cfg.Packages,
		Tests:      cfg.Tests,
		BuildFlags: cfg.BuildFlags,
		Env:        o.env,
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		bag.Errorf(diag.CodePackageLoad, cfg.ProjectDir, "%v", err)
		m.SourcesFailed = true
		return nil
	}
	m.Packages = pkgs

	frags := make(map[string][]*load.Fragment)
	for _, pkg := range pkgs {
		unit := gen.PackageUnit(pkg.Path)
		frags[unit] = append(frags[unit], pkg.Fragments...)
		for _, it := range pkg.Malformed() {
			bag.Add(diag.Diagnostic{
				Severity: diag.Warning,
				Code:     diag.CodeMalformedMarker,
				File:     it.Pos.Filename,
				Pos:      it.Pos,
				Message:  gen.NewMarkerError(it.Type, it.Field, it.Reason).Error(),
			})
		}
		log := o.log.WithField(logfields.Package, pkg.ID)
		for _, e := range pkg.Errors {
			// Packages without markers are not our concern; the others
			// commonly fail to type-check before their accessors exist.
			if len(pkg.Items) == 0 {
				log.WithError(errors.New(e)).Debug("Ignoring package error")
				continue
			}
			bag.Warnf(diag.CodePackageLoad, pkg.Dir, "%s: %s", pkg.ID, e)
		}
		log.WithField(logfields.Count, len(pkg.Fragments)).Debug("Scanned package")
	}
	for unit, fs := range frags {
		if groups := gen.GroupFragments(fs); len(groups) > 0 {
			m.Groups[unit] = groups
		}
	}
	return nil
}

func loadDefinitions(cfg *gen.Config, bag *diag.Bag, log logrus.FieldLogger, m *Models) {
	files, err := load.FindDefinitions(cfg.ProjectDir, cfg.Definitions, cfg.Extension,
		cfg.Abs(cfg.ResourcesDir), cfg.Abs(cfg.ErrorsPackage))
	if err != nil {
		bag.Errorf(diag.CodeInvalidDefinition, cfg.ProjectDir, "%v", err)
		return
	}
	for _, file := range files {
		unit := gen.DefinitionUnit(cfg.ProjectDir, file)
		def, err := load.ReadDefinition(file)
		var syntaxErr *load.SyntaxError
		switch {
		case errors.Is(err, load.ErrNotDefinition):
			bag.Infof(diag.CodeNotDefinition, file, "skipped: root element is not <errors>")
			continue
		case errors.As(err, &syntaxErr):
			bag.Add(diag.Diagnostic{
				Severity: diag.Error,
				Code:     diag.CodeInvalidXML,
				File:     file,
				Pos:      syntaxPos(syntaxErr),
				Message:  fmt.Sprintf("invalid xml: %v", syntaxErr.Err),
			})
			m.Failed = append(m.Failed, unit)
			continue
		case err != nil:
			bag.Errorf(diag.CodeInvalidDefinition, file, "%v", err)
			m.Failed = append(m.Failed, unit)
			continue
		}

		table, err := gen.NewErrorTable(def, cfg.Module)
		if err != nil {
			reportDefinitionErrors(bag, file, err)
			m.Failed = append(m.Failed, unit)
			continue
		}
		m.Tables[unit] = table
		log.WithFields(logrus.Fields{
			logfields.File:  file,
			logfields.Count: len(table.Entries),
		}).Debug("Loaded error definition")
	}
}

func syntaxPos(err *load.SyntaxError) (pos token.Position) {
	if err.Line > 0 {
		pos.Filename, pos.Line = err.Path, err.Line
	}
	return pos
}

// reportDefinitionErrors adds one diagnostic per problem of a definition.
func reportDefinitionErrors(bag *diag.Bag, file string, err error) {
	errs := []error{err}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	}
	for _, e := range errs {
		code := diag.CodeInvalidDefinition
		if errors.Is(e, gen.ErrInvalidLanguage) {
			code = diag.CodeInvalidLanguage
		}
		msg := e.Error()
		var de *gen.DefinitionError
		if errors.As(e, &de) {
			msg = de.Message
			if de.Entry != "" {
				msg = "entry " + de.Entry + ": " + msg
			}
		}
		bag.Errorf(code, file, "%s", msg)
	}
}

// Generate runs one pass over the project of cfg. Input and output problems
// are reported as diagnostics; the error is reserved for an invalid
// configuration or a canceled context.
func Generate(ctx context.Context, cfg *gen.Config, opts ...Option) (*Report, error) {
	start := time.Now()
	o := newOptions(opts)
	report := &Report{PassID: uuid.New()}
	log := o.log.WithField(logfields.Pass, report.PassID.String())
	o.log = log

	if err := Prepare(cfg); err != nil {
		return nil, err
	}
	bag := &diag.Bag{}
	models, err := loadModels(ctx, cfg, bag, o)
	if err != nil {
		return nil, err
	}

	c := cache.New(cfg.ProjectDir, cfg.Fingerprint())
	if err := c.Load(); err != nil {
		bag.Warnf(diag.CodeCache, c.Path(), "%v; regenerating everything", err)
	}
	if !cfg.PipelineEnabled(gen.PipelineProperties) || models.SourcesFailed {
		c.KeepPrefix(gen.PackageUnitPrefix)
	}
	if !cfg.PipelineEnabled(gen.PipelineErrors) {
		c.KeepPrefix(gen.DefinitionUnitPrefix)
	}
	// A definition that fails to load keeps its previous outputs.
	for _, unit := range models.Failed {
		c.Keep(unit)
	}

	var (
		groups []*gen.TypeGroup
		tables []*gen.ErrorTable
		hashes = make(map[string]string)
	)
	for _, unit := range sortedKeys(models.Groups) {
		if fresh := freshUnit(cfg, c, bag, hashes, unit, models.Groups[unit]); fresh {
			report.Skipped++
			continue
		}
		groups = append(groups, models.Groups[unit]...)
	}
	for _, unit := range sortedKeys(models.Tables) {
		if fresh := freshUnit(cfg, c, bag, hashes, unit, models.Tables[unit]); fresh {
			report.Skipped++
			continue
		}
		tables = append(tables, models.Tables[unit])
	}

	out := gen.NewOutput()
	g := gen.NewGenerator(cfg, log)
	if err := g.Generate(ctx, groups, tables, out, bag); err != nil {
		return nil, err
	}

	w := gen.NewWriter(cfg.Header, log).WithWorkers(cfg.Workers)
	res, err := w.Write(ctx, out.Artifacts())
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	failed := reportWriteErrors(bag, err)
	byUnit := out.ByUnit()
	for unit, paths := range byUnit {
		hash := hashes[unit]
		for _, p := range paths {
			if failed[p] {
				// Never fresh, so the unit is retried next pass.
				hash = ""
			}
		}
		c.Record(unit, hash, paths)
	}
	// Units that emitted nothing still need an entry so their previous
	// outputs are removed only once.
	for unit, hash := range hashes {
		if _, ok := byUnit[unit]; !ok {
			c.Record(unit, hash, nil)
		}
	}

	removed, err := w.Remove(c.Stale())
	reportWriteErrors(bag, err)
	if err := c.Save(); err != nil {
		bag.Warnf(diag.CodeCache, c.Path(), "%v", err)
	}

	report.Written = res.Written
	report.Unchanged = res.Unchanged
	report.Removed = removed
	report.Diagnostics = bag.List()
	report.Duration = time.Since(start)
	log.WithFields(logrus.Fields{
		logfields.Written:   len(report.Written),
		logfields.Unchanged: len(report.Unchanged),
		logfields.Removed:   len(report.Removed),
		logfields.Skipped:   report.Skipped,
		logfields.Duration:  report.Duration,
	}).Info("Generation pass finished")
	return report, nil
}

// freshUnit hashes the model of unit and reports whether its outputs are
// up to date. Fresh units are carried over to the next manifest.
func freshUnit(cfg *gen.Config, c *cache.Cache, bag *diag.Bag, hashes map[string]string, unit string, model any) bool {
	hash, err := cache.Hash(cfg.Fingerprint(), model)
	if err != nil {
		bag.Warnf(diag.CodeCache, unit, "hash: %v", err)
	}
	if err == nil && !cfg.DisableCache && c.Fresh(unit, hash) {
		c.Keep(unit)
		return true
	}
	hashes[unit] = hash
	return false
}

// reportWriteErrors adds a diagnostic per failed file and returns the
// failed paths.
func reportWriteErrors(bag *diag.Bag, err error) map[string]bool {
	failed := make(map[string]bool)
	if err == nil {
		return failed
	}
	errs := []error{err}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	}
	for _, e := range errs {
		var ge *gen.GenerationError
		file := ""
		if errors.As(e, &ge) {
			file = ge.File
			failed[file] = true
		}
		bag.Errorf(diag.CodeWriteFailed, file, "%v", e)
	}
	return failed
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
