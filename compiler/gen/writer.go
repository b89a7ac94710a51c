package gen

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/imports"

	"github.com/syssam/autogen/internal/logging/logfields"
)

// formatSource formats generated Go source the way goimports does, without
// resolving missing imports; jennifer already qualified every reference.
func formatSource(path string, src []byte) ([]byte, error) {
	out, err := imports.Process(path, src, &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return nil, NewGenerationError("format", path, "", err)
	}
	return out, nil
}

// Writer flushes artifacts to disk in parallel. Files whose content did not
// change are left untouched so their modification time stays stable.
type Writer struct {
	header  string
	workers int
	log     logrus.FieldLogger

	mu      sync.Mutex
	metrics *WriterMetrics
}

// WriterMetrics tracks write performance.
type WriterMetrics struct {
	FilesWritten   int
	FilesUnchanged int
	FilesRemoved   int
	TotalBytes     int64
	WriteTime      time.Duration
}

// WriteResult lists the absolute paths handled by Write.
type WriteResult struct {
	Written   []string
	Unchanged []string
}

// NewWriter creates a writer for files carrying header.
func NewWriter(header string, log logrus.FieldLogger) *Writer {
	return &Writer{
		header:  header,
		workers: DefaultWorkers(),
		log:     log,
		metrics: &WriterMetrics{},
	}
}

// WithWorkers sets the number of parallel workers.
func (w *Writer) WithWorkers(n int) *Writer {
	if n > 0 {
		w.workers = n
	}
	return w
}

// Metrics returns the accumulated write metrics.
func (w *Writer) Metrics() WriterMetrics {
	w.mu.Lock()
	defer w.mu.Unlock()
	return *w.metrics
}

// Write flushes artifacts. Every artifact is attempted; the failures are
// joined into the returned error and the result lists what succeeded.
func (w *Writer) Write(ctx context.Context, artifacts []*Artifact) (*WriteResult, error) {
	start := time.Now()
	var (
		mu   sync.Mutex
		res  WriteResult
		errs []error
	)
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(w.workers)
	for _, a := range artifacts {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			changed, err := w.writeFile(a)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				errs = append(errs, err)
			case changed:
				res.Written = append(res.Written, a.Path)
			default:
				res.Unchanged = append(res.Unchanged, a.Path)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	w.mu.Lock()
	w.metrics.WriteTime += time.Since(start)
	w.mu.Unlock()
	slices.Sort(res.Written)
	slices.Sort(res.Unchanged)
	return &res, errors.Join(errs...)
}

// writeFile writes a atomically and reports whether the file changed.
func (w *Writer) writeFile(a *Artifact) (bool, error) {
	if cur, err := os.ReadFile(a.Path); err == nil && bytes.Equal(cur, a.Content) {
		w.mu.Lock()
		w.metrics.FilesUnchanged++
		w.mu.Unlock()
		return false, nil
	}
	dir := filepath.Dir(a.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, NewGenerationError("write", a.Path, "create directory", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(a.Path)+".*")
	if err != nil {
		return false, NewGenerationError("write", a.Path, "create temporary file", err)
	}
	name := tmp.Name()
	if _, err := tmp.Write(a.Content); err != nil {
		tmp.Close()
		os.Remove(name)
		return false, NewGenerationError("write", a.Path, "", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return false, NewGenerationError("write", a.Path, "", err)
	}
	if err := os.Chmod(name, 0o644); err != nil {
		os.Remove(name)
		return false, NewGenerationError("write", a.Path, "chmod", err)
	}
	if err := os.Rename(name, a.Path); err != nil {
		os.Remove(name)
		return false, NewGenerationError("write", a.Path, "rename", err)
	}

	w.mu.Lock()
	w.metrics.FilesWritten++
	w.metrics.TotalBytes += int64(len(a.Content))
	w.mu.Unlock()
	w.log.WithFields(logrus.Fields{
		logfields.File: a.Path,
		logfields.Kind: a.Kind.String(),
	}).Debug("Wrote file")
	return true, nil
}

// Remove deletes stale outputs. Only files carrying the generated header
// are removed; missing files are ignored. It returns the removed paths.
func (w *Writer) Remove(paths []string) ([]string, error) {
	var (
		removed []string
		errs    []error
	)
	for _, path := range paths {
		ok, err := IsGeneratedFile(path, w.header)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			continue
		case err != nil:
			errs = append(errs, NewGenerationError("remove", path, "", err))
			continue
		case !ok:
			w.log.WithField(logfields.File, path).Warn("Keeping stale output without generated header")
			continue
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, NewGenerationError("remove", path, "", err))
			continue
		}
		removed = append(removed, path)
		w.log.WithField(logfields.File, path).Debug("Removed stale output")
	}
	w.mu.Lock()
	w.metrics.FilesRemoved += len(removed)
	w.mu.Unlock()
	slices.Sort(removed)
	return removed, errors.Join(errs...)
}

// maxHeaderLines bounds the lines searched for the generated header.
const maxHeaderLines = 16

// IsGeneratedFile reports whether the file at path starts with header as a
// Go or YAML comment.
func IsGeneratedFile(path, header string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()
	goLine, yamlLine := "// "+header, "# "+header
	s := bufio.NewScanner(f)
	for i := 0; i < maxHeaderLines && s.Scan(); i++ {
		line := string(bytes.TrimSpace(s.Bytes()))
		if line == goLine || line == yamlLine {
			return true, nil
		}
	}
	if err := s.Err(); err != nil {
		return false, fmt.Errorf("read %s: %w", path, err)
	}
	return false, nil
}
