package gen

import (
	"errors"
	"fmt"
	"go/token"

	"golang.org/x/text/language"

	"github.com/syssam/autogen/compiler/load"
)

// reservedMethods are generated next to the entry methods.
var reservedMethods = map[string]bool{"Codes": true, "Bundle": true}

// NewErrorTable builds the table of a parsed definition. Every problem is
// reported as a *DefinitionError; they are joined and no table is returned
// when there is at least one.
func NewErrorTable(def *load.Definition, assembly string) (*ErrorTable, error) {
	var errs []error
	report := func(entry, format string, args ...any) {
		errs = append(errs, NewDefinitionError(def.Path, entry, fmt.Sprintf(format, args...), nil))
	}

	t := &ErrorTable{
		Assembly:   assembly,
		SourcePath: def.Path,
		ClassName:  ClassName(def.Path),
	}
	if !token.IsIdentifier(t.ClassName) || !token.IsExported(t.ClassName) {
		report("", "file name does not give a valid class name (got %q)", t.ClassName)
	}
	if def.CodeBase == nil {
		report("", "missing <codeBase> element")
	} else {
		t.CodePrefix = *def.CodeBase
	}
	if def.Lang != nil && *def.Lang != "" {
		tag, err := language.Parse(*def.Lang)
		if err != nil {
			errs = append(errs, NewDefinitionError(def.Path, "", fmt.Sprintf("invalid <lang> %q", *def.Lang), fmt.Errorf("%w: %v", ErrInvalidLanguage, err)))
		} else if tag != language.Und {
			t.Language = tag.String()
		}
	}

	names := make(map[string]bool, len(def.Entries))
	codes := make(map[string]bool, len(def.Entries))
	for i, e := range def.Entries {
		label := fmt.Sprintf("#%d", i+1)
		if e.Line > 0 {
			label = fmt.Sprintf("at line %d", e.Line)
		}
		switch {
		case e.Code == nil || *e.Code == "":
			report(label, "missing code attribute")
			continue
		case e.Name == nil || *e.Name == "":
			report(label, "missing name attribute")
			continue
		}
		code, name := *e.Code, *e.Name
		if !token.IsIdentifier(name) {
			report(name, "name is not a valid identifier")
			continue
		}
		method := upperFirst(name)
		if !token.IsExported(method) {
			report(name, "name must start with a letter")
			continue
		}
		if reservedMethods[method] {
			report(name, "name is reserved by the generated code")
			continue
		}
		if names[method] {
			report(name, "duplicate name")
			continue
		}
		if codes[code] {
			report(name, "duplicate code %q", code)
			continue
		}
		names[method], codes[code] = true, true
		t.Entries = append(t.Entries, ErrorEntry{Code: code, Name: name, Description: e.Text})
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return t, nil
}
