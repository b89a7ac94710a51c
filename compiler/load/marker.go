package load

import (
	"fmt"
	"go/ast"
	"go/scanner"
	"go/token"
	"strconv"
	"strings"
)

// Marker directives. Like //go: directives they have no space after the
// slashes and are hidden from godoc.
const (
	ObservableMarker = "//autogen:observable"
	PropertyMarker   = "//autogen:property"
)

// directive is one marker line found in a comment group.
type directive struct {
	pos  token.Pos
	args string
}

// findDirective returns the first line of doc carrying marker.
func findDirective(doc *ast.CommentGroup, marker string) (directive, bool) {
	if doc == nil {
		return directive{}, false
	}
	for _, c := range doc.List {
		rest, ok := strings.CutPrefix(c.Text, marker)
		if !ok {
			continue
		}
		if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
			continue
		}
		return directive{pos: c.Slash, args: strings.TrimSpace(rest)}, true
	}
	return directive{}, false
}

// parseArgs splits the directive arguments into unquoted Go string
// literals.
func parseArgs(args string) ([]string, error) {
	if args == "" {
		return nil, nil
	}
	var (
		s    scanner.Scanner
		errs scanner.ErrorList
		out  []string
	)
	fset := token.NewFileSet()
	file := fset.AddFile("", fset.Base(), len(args))
	s.Init(file, []byte(args), func(pos token.Position, msg string) { errs.Add(pos, msg) }, 0)
	for {
		_, tok, lit := s.Scan()
		switch tok {
		case token.EOF:
			if errs.Len() > 0 {
				return nil, fmt.Errorf("invalid argument list: %s", errs[0].Msg)
			}
			return out, nil
		case token.SEMICOLON, token.COMMA:
			continue
		case token.STRING:
			v, err := strconv.Unquote(lit)
			if err != nil {
				return nil, fmt.Errorf("argument %d: %w", len(out)+1, err)
			}
			out = append(out, v)
		default:
			text := lit
			if text == "" {
				text = tok.String()
			}
			return nil, fmt.Errorf("argument %d is not a string literal: %s", len(out)+1, text)
		}
	}
}
