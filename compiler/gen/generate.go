package gen

import (
	"bytes"
	"context"
	"runtime"

	"github.com/dave/jennifer/jen"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/syssam/autogen/compiler/diag"
	"github.com/syssam/autogen/internal/logging/logfields"
)

// Generator renders the artifacts of both pipelines into an Output.
// Emitters run in parallel; a failing artifact becomes a diagnostic and
// does not stop the others.
type Generator struct {
	projectDir string
	emitter    *Emitter
	workers    int
	log        logrus.FieldLogger
}

// NewGenerator creates a generator for c.
func NewGenerator(c *Config, log logrus.FieldLogger) *Generator {
	return &Generator{
		projectDir: c.ProjectDir,
		emitter:    NewEmitter(c, NewNaming(c)),
		workers:    max(c.Workers, 1),
		log:        log,
	}
}

// WithWorkers sets the number of parallel workers.
func (g *Generator) WithWorkers(n int) *Generator {
	if n > 0 {
		g.workers = n
	}
	return g
}

// Naming returns the naming strategy used by the emitters.
func (g *Generator) Naming() *Naming {
	return g.emitter.Naming()
}

// Generate renders groups and tables into out and reports per-artifact
// failures to bag. It only returns an error when ctx is canceled.
func (g *Generator) Generate(ctx context.Context, groups []*TypeGroup, tables []*ErrorTable, out *Output, bag *diag.Bag) error {
	errg, ctx := errgroup.WithContext(ctx)
	errg.SetLimit(g.workers)

	for _, grp := range groups {
		errg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			g.emitProperty(grp, out, bag)
			return nil
		})
	}
	for _, t := range tables {
		errg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			g.emitTable(t, out, bag)
			return nil
		})
	}
	return errg.Wait()
}

func (g *Generator) emitProperty(grp *TypeGroup, out *Output, bag *diag.Bag) {
	path := g.Naming().PropertyFile(grp)
	unit := PackageUnit(grp.Namespace)
	f, err := g.emitter.Property(grp)
	if err != nil {
		bag.Errorf(diag.CodeEmitFailed, path, "%v", err)
		return
	}
	g.addSource(out, bag, unit, path, f)
	g.log.WithFields(logrus.Fields{
		logfields.Type:  grp.Key().String(),
		logfields.File:  path,
		logfields.Count: len(grp.Properties),
	}).Debug("Emitted property accessors")
}

func (g *Generator) emitTable(t *ErrorTable, out *Output, bag *diag.Bag) {
	n := g.Naming()
	unit := DefinitionUnit(g.projectDir, t.SourcePath)

	bundlePath := n.BundleFile(t)
	content, err := g.emitter.Bundle(t)
	if err != nil {
		bag.Errorf(diag.CodeEmitFailed, t.SourcePath, "%v", err)
	} else {
		g.add(out, bag, &Artifact{Path: bundlePath, Kind: KindBundle, Unit: unit, Content: content})
	}

	if f := g.emitter.ErrorClass(t); f != nil {
		g.addSource(out, bag, unit, n.ErrorClassFile(t), f)
	}
	if f := g.emitter.Accessor(t); f != nil {
		g.addSource(out, bag, unit, n.AccessorFile(t), f)
	}
	g.log.WithFields(logrus.Fields{
		logfields.File:  t.SourcePath,
		logfields.Count: len(t.Entries),
	}).Debug("Emitted error table")
}

// addSource renders f, formats it and records it.
func (g *Generator) addSource(out *Output, bag *diag.Bag, unit, path string, f *jen.File) {
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		bag.Errorf(diag.CodeEmitFailed, path, "%v", NewGenerationError("render", path, "", err))
		return
	}
	src, err := formatSource(path, buf.Bytes())
	if err != nil {
		bag.Errorf(diag.CodeEmitFailed, path, "%v", err)
		return
	}
	g.add(out, bag, &Artifact{Path: path, Kind: KindSource, Unit: unit, Content: src})
}

func (g *Generator) add(out *Output, bag *diag.Bag, a *Artifact) {
	if err := out.Add(a); err != nil {
		bag.Errorf(diag.CodeOutputConflict, a.Path, "%v", err)
	}
}

// DefaultWorkers returns the default parallelism.
func DefaultWorkers() int {
	return runtime.GOMAXPROCS(0)
}
