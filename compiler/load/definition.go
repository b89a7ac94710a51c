package load

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Definition is the raw content of an error definition file:
//
//	<errors>
//	  <lang>zh-Hans</lang>
//	  <codeBase>ORD</codeBase>
//	  <error code="1001" name="NotFound">order {0} not found</error>
//	</errors>
//
// Optional values are nil when the element or attribute is absent.
type Definition struct {
	Path     string
	Lang     *string
	CodeBase *string
	Entries  []DefinitionEntry
}

// DefinitionEntry is one <error> element.
type DefinitionEntry struct {
	Code *string
	Name *string
	// Text is the element text with surrounding white space removed.
	Text string
	// Line is the 1-based line of the element.
	Line int
}

// ErrNotDefinition is returned for well-formed documents whose root element
// is not <errors>.
var ErrNotDefinition = errors.New("not an error definition")

// SyntaxError reports a definition file that is not well-formed XML.
type SyntaxError struct {
	Path string
	Line int
	Err  error
}

func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: invalid xml: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("%s: invalid xml: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *SyntaxError) Unwrap() error {
	return e.Err
}

type xmlDefinition struct {
	XMLName  xml.Name
	Lang     *string    `xml:"lang"`
	CodeBase *string    `xml:"codeBase"`
	Errors   []xmlEntry `xml:"error"`
}

type xmlEntry struct {
	Code *string `xml:"code,attr"`
	Name *string `xml:"name,attr"`
	Text string  `xml:",chardata"`
}

// ReadDefinition reads and parses the definition file at path.
func ReadDefinition(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseDefinition(path, data)
}

// ParseDefinition parses a definition document. Any XML error or content
// after the root element yields a *SyntaxError. A root other than <errors>
// yields an error wrapping ErrNotDefinition.
func ParseDefinition(path string, data []byte) (*Definition, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var doc xmlDefinition
	if err := dec.Decode(&doc); err != nil {
		return nil, syntaxError(path, err)
	}
	if doc.XMLName.Local != "errors" {
		return nil, fmt.Errorf("%s: root element <%s>: %w", path, doc.XMLName.Local, ErrNotDefinition)
	}
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, syntaxError(path, err)
		}
		if se, ok := tok.(xml.StartElement); ok {
			return nil, &SyntaxError{Path: path, Err: fmt.Errorf("unexpected element <%s> after </errors>", se.Name.Local)}
		}
	}
	def := &Definition{
		Path:     path,
		Lang:     trimmed(doc.Lang),
		CodeBase: trimmed(doc.CodeBase),
		Entries:  make([]DefinitionEntry, 0, len(doc.Errors)),
	}
	lines := entryLines(data)
	for i, e := range doc.Errors {
		entry := DefinitionEntry{
			Code: trimmed(e.Code),
			Name: trimmed(e.Name),
			Text: strings.TrimSpace(e.Text),
		}
		if i < len(lines) {
			entry.Line = lines[i]
		}
		def.Entries = append(def.Entries, entry)
	}
	return def, nil
}

func syntaxError(path string, err error) error {
	se := &SyntaxError{Path: path, Err: err}
	var xe *xml.SyntaxError
	if errors.As(err, &xe) {
		se.Line = xe.Line
		se.Err = errors.New(xe.Msg)
	}
	return se
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

// entryLines returns the line of every <error> start element that is a
// direct child of the root.
func entryLines(data []byte) []int {
	var (
		lines []int
		depth int
	)
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		offset := dec.InputOffset()
		tok, err := dec.Token()
		if err != nil {
			return lines
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if depth == 2 && t.Name.Local == "error" {
				lines = append(lines, 1+bytes.Count(data[:offset], []byte("\n")))
			}
		case xml.EndElement:
			depth--
		}
	}
}

// FindDefinitions resolves definition paths relative to root. Each path is a
// file, a directory searched recursively for files ending in ext, or a glob
// pattern. Hidden directories, vendor, testdata and the skipped
// directories are not searched. The result is sorted and free of
// duplicates.
func FindDefinitions(root string, paths []string, ext string, skip ...string) ([]string, error) {
	skipped := make(map[string]bool, len(skip))
	for _, s := range skip {
		skipped[filepath.Clean(s)] = true
	}
	seen := make(map[string]bool)
	var out []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	for _, p := range paths {
		abs := p
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(root, p)
		}
		if strings.ContainsAny(p, "*?[") {
			matches, err := filepath.Glob(abs)
			if err != nil {
				return nil, fmt.Errorf("definition pattern %q: %w", p, err)
			}
			for _, m := range matches {
				add(m)
			}
			continue
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("definition path %q: %w", p, err)
		}
		if !info.IsDir() {
			add(abs)
			continue
		}
		err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != abs && (SkipDir(d.Name()) || skipped[path]) {
					return filepath.SkipDir
				}
				return nil
			}
			if strings.HasSuffix(d.Name(), ext) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk definitions in %q: %w", p, err)
		}
	}
	sort.Strings(out)
	return out, nil
}

// SkipDir reports whether a directory named name is never scanned.
func SkipDir(name string) bool {
	return name == "vendor" || name == "testdata" || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}
