// Package diag collects the build diagnostics reported by a generation
// pass: malformed markers, invalid definition files and write failures.
package diag

import (
	"cmp"
	"errors"
	"fmt"
	"go/token"
	"slices"
	"strings"
	"sync"
)

// Diagnostic codes.
const (
	CodeInvalidXML        = "AG1001"
	CodeInvalidDefinition = "AG1002"
	CodeInvalidLanguage   = "AG1003"
	CodeNotDefinition     = "AG1004"
	CodeMalformedMarker   = "AG2001"
	CodePackageLoad       = "AG2002"
	CodeWriteFailed       = "AG3001"
	CodeEmitFailed        = "AG3002"
	CodeOutputConflict    = "AG3003"
	CodeCache             = "AG3004"
)

// Severity represents the severity level of a diagnostic.
type Severity int

const (
	Info Severity = iota
	Warning
	Error
)

// String returns a human-readable severity name.
func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Diagnostic is a single message bound to an input file.
type Diagnostic struct {
	Severity Severity
	// Code is a stable identifier for the kind of diagnostic.
	Code    string
	Message string
	// File is the offending input. Pos refines it when known.
	File string
	Pos  token.Position
}

// String returns a formatted diagnostic string.
func (d Diagnostic) String() string {
	var b strings.Builder
	switch {
	case d.Pos.IsValid():
		b.WriteString(d.Pos.String())
		b.WriteString(": ")
	case d.File != "":
		b.WriteString(d.File)
		b.WriteString(": ")
	}
	b.WriteString(d.Severity.String())
	if d.Code != "" {
		fmt.Fprintf(&b, " %s", d.Code)
	}
	b.WriteString(": ")
	b.WriteString(d.Message)
	return b.String()
}

// Bag is a concurrency-safe collection of diagnostics.
type Bag struct {
	mu    sync.Mutex
	items []Diagnostic
}

// Add appends d to the bag.
func (b *Bag) Add(d Diagnostic) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = append(b.items, d)
}

// Errorf adds an error diagnostic for file.
func (b *Bag) Errorf(code, file, format string, args ...any) {
	b.Add(Diagnostic{Severity: Error, Code: code, File: file, Message: fmt.Sprintf(format, args...)})
}

// Warnf adds a warning diagnostic for file.
func (b *Bag) Warnf(code, file, format string, args ...any) {
	b.Add(Diagnostic{Severity: Warning, Code: code, File: file, Message: fmt.Sprintf(format, args...)})
}

// Infof adds an informational diagnostic for file.
func (b *Bag) Infof(code, file, format string, args ...any) {
	b.Add(Diagnostic{Severity: Info, Code: code, File: file, Message: fmt.Sprintf(format, args...)})
}

// Merge adds every diagnostic of other.
func (b *Bag) Merge(other []Diagnostic) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = append(b.items, other...)
}

// List returns the diagnostics sorted by file, position and code, so that
// reports do not depend on emitter scheduling.
func (b *Bag) List() []Diagnostic {
	b.mu.Lock()
	out := slices.Clone(b.items)
	b.mu.Unlock()
	slices.SortStableFunc(out, func(x, y Diagnostic) int {
		return cmp.Or(
			cmp.Compare(x.file(), y.file()),
			cmp.Compare(x.Pos.Line, y.Pos.Line),
			cmp.Compare(x.Pos.Column, y.Pos.Column),
			cmp.Compare(x.Code, y.Code),
		)
	})
	return out
}

// Errors returns the error diagnostics.
func (b *Bag) Errors() []Diagnostic {
	return b.filter(Error)
}

// Warnings returns the warning diagnostics.
func (b *Bag) Warnings() []Diagnostic {
	return b.filter(Warning)
}

// HasErrors returns true if there are any error diagnostics.
func (b *Bag) HasErrors() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, d := range b.items {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// Err returns a combined error from all error diagnostics, or nil.
func (b *Bag) Err() error {
	var errs []error
	for _, d := range b.Errors() {
		errs = append(errs, errors.New(d.String()))
	}
	return errors.Join(errs...)
}

func (b *Bag) filter(s Severity) []Diagnostic {
	var out []Diagnostic
	for _, d := range b.List() {
		if d.Severity == s {
			out = append(out, d)
		}
	}
	return out
}

func (d Diagnostic) file() string {
	if d.Pos.Filename != "" {
		return d.Pos.Filename
	}
	return d.File
}
