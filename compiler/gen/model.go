package gen

import (
	"go/token"
	"path"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// PropertyDescriptor describes one accessor pair requested by a field marker.
type PropertyDescriptor struct {
	// FieldName is the backing field, e.g. "_status".
	FieldName string
	// FieldType is the Go source text of the field type, e.g. "[]time.Time".
	FieldType string
	// PropertyName is the explicit override or the derived name.
	PropertyName string
	// Documentation is rendered as the getter doc comment when not empty.
	Documentation string
	// Imports maps the package qualifiers used in FieldType to their import
	// paths, as declared by the file holding the field.
	Imports map[string]string
	// Comparable reports whether == is valid for FieldType.
	Comparable bool
}

// TypeKey identifies a type across fragments.
type TypeKey struct {
	Namespace string
	TypeName  string
}

// String returns "namespace.TypeName".
func (k TypeKey) String() string {
	return k.Namespace + "." + k.TypeName
}

// TypeGroup is the merged view of all fragments of one type. It is the unit
// of emission of the property pipeline.
type TypeGroup struct {
	// Namespace is the package import path.
	Namespace string
	// Package is the package name.
	Package string
	// Dir is the package directory the generated file is written to.
	Dir        string
	TypeName   string
	TypeParams []string
	Properties []*PropertyDescriptor
}

// Key returns the grouping key of the group.
func (g *TypeGroup) Key() TypeKey {
	return TypeKey{Namespace: g.Namespace, TypeName: g.TypeName}
}

// Receiver returns the receiver identifier used by generated methods: the
// lowercased first letter of the type name unless the setter parameter, a
// type parameter or an import name of a field type already uses it.
func (g *TypeGroup) Receiver() string {
	taken := g.reserved()
	taken[g.SetterParam()] = true
	var first string
	if r, size := utf8.DecodeRuneInString(g.TypeName); size > 0 && unicode.IsLetter(r) {
		first = string(unicode.ToLower(r))
	}
	return pickIdent(taken, first, "r", "recv")
}

// SetterParam returns the parameter name of generated setters.
func (g *TypeGroup) SetterParam() string {
	return pickIdent(g.reserved(), "v", "value", "newValue")
}

// reserved returns the identifiers visible in generated method signatures
// that the receiver and parameter must not shadow.
func (g *TypeGroup) reserved() map[string]bool {
	taken := map[string]bool{"_": true, "reflect": true}
	for _, p := range g.TypeParams {
		taken[p] = true
	}
	for _, p := range g.Properties {
		for q, importPath := range p.Imports {
			taken[q] = true
			taken[importAlias(importPath)] = true
		}
	}
	return taken
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]`)

// importAlias returns the name Jennifer gives an import path it has no
// hint for: the lowercased alphanumerics of the last element, without
// leading digits.
func importAlias(importPath string) string {
	alias := strings.TrimSuffix(importPath, "/")
	alias = nonAlnum.ReplaceAllString(strings.ToLower(path.Base(alias)), "")
	alias = strings.TrimLeft(alias, "0123456789")
	if alias == "" {
		return "pkg"
	}
	return alias
}

// pickIdent returns the first candidate that is a free identifier, or a
// numbered form of the last one.
func pickIdent(taken map[string]bool, candidates ...string) string {
	for _, c := range candidates {
		if token.IsIdentifier(c) && !taken[c] {
			return c
		}
	}
	last := candidates[len(candidates)-1]
	for i := 1; ; i++ {
		if c := last + strconv.Itoa(i); !taken[c] {
			return c
		}
	}
}

// ErrorEntry is one <error> element of a definition file.
type ErrorEntry struct {
	Code        string
	Name        string
	Description string
}

// ErrorTable is the model built from one definition file.
type ErrorTable struct {
	// Assembly is the module path of the project owning the definitions.
	Assembly string
	// SourcePath is the definition file path.
	SourcePath string
	// ClassName is derived from the file base name, e.g. "OrderErrors".
	ClassName string
	// CodePrefix is prepended to every entry code.
	CodePrefix string
	// Language is the canonical BCP 47 tag of a translation, empty for the
	// canonical table.
	Language string
	Entries  []ErrorEntry
}

// Canonical reports whether t is the default-language table. Only canonical
// tables produce the error class and the resource accessor.
func (t *ErrorTable) Canonical() bool {
	return t.Language == ""
}

// FullCode returns the prefixed code of e.
func (t *ErrorTable) FullCode(e ErrorEntry) string {
	return t.CodePrefix + e.Code
}

// FileBase returns the definition file name without directory.
func (t *ErrorTable) FileBase() string {
	return filepath.Base(t.SourcePath)
}
