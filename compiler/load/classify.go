package load

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"path"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Kind is the outcome of classifying a marked declaration.
type Kind int

// Classification kinds.
const (
	NotApplicable Kind = iota
	Applicable
	Malformed
)

func (k Kind) String() string {
	switch k {
	case Applicable:
		return "applicable"
	case Malformed:
		return "malformed"
	default:
		return "not applicable"
	}
}

// Classification is the verdict on one marked type or field.
type Classification struct {
	Kind   Kind
	Type   string
	Field  string
	Pos    token.Position
	Reason string
}

// Property is a field that requested accessors.
type Property struct {
	// Field is the backing field name.
	Field string
	// Type is the Go source text of the field type.
	Type string
	// Name is the explicit name argument, empty when derived.
	Name string
	// Doc is the documentation argument.
	Doc string
	// Imports maps package qualifiers used in Type to import paths.
	Imports map[string]string
	// Comparable reports whether == is valid for Type.
	Comparable bool
	Pos        token.Position
}

// PropertyName returns the explicit name, or the name derived from the field.
func (p *Property) PropertyName() string {
	if p.Name != "" {
		return p.Name
	}
	return DerivePropertyName(p.Field)
}

// Fragment is one declaration of an observable struct type with its marked
// fields, in source order.
type Fragment struct {
	Namespace  string
	Package    string
	Dir        string
	TypeName   string
	TypeParams []string
	Properties []*Property
}

// FileResult holds the classification of one file.
type FileResult struct {
	// Fragments are the applicable types, in declaration order.
	Fragments []*Fragment
	// Items lists the verdict on every marked declaration.
	Items []Classification
}

// Malformed returns the malformed items.
func (r *FileResult) Malformed() []Classification {
	var out []Classification
	for _, it := range r.Items {
		if it.Kind == Malformed {
			out = append(out, it)
		}
	}
	return out
}

// Classifier finds marker comments in parsed files. It has no side effects.
type Classifier struct {
	Fset *token.FileSet
	// Info is optional. When present it decides comparability and resolves
	// package qualifiers.
	Info *types.Info
	// Namespace is the import path of the package holding the files.
	Namespace string
	// Dir overrides the directory taken from the file position.
	Dir string
}

// ClassifyFile classifies every marked declaration of f. Generated files are
// skipped.
func (c *Classifier) ClassifyFile(f *ast.File) *FileResult {
	res := &FileResult{}
	if ast.IsGenerated(f) {
		return res
	}
	imports := fileImports(f)
	for _, decl := range f.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.TYPE {
			continue
		}
		for _, spec := range gd.Specs {
			ts, ok := spec.(*ast.TypeSpec)
			if !ok {
				continue
			}
			doc := ts.Doc
			if doc == nil && !gd.Lparen.IsValid() {
				doc = gd.Doc
			}
			if frag := c.classifyType(res, f, imports, ts, doc); frag != nil {
				res.Fragments = append(res.Fragments, frag)
			}
		}
	}
	return res
}

func (c *Classifier) classifyType(res *FileResult, f *ast.File, imports map[string]string, ts *ast.TypeSpec, doc *ast.CommentGroup) *Fragment {
	d, marked := findDirective(doc, ObservableMarker)
	st, isStruct := ts.Type.(*ast.StructType)
	if !marked {
		if isStruct {
			c.rejectFieldMarkers(res, ts.Name.Name, st)
		}
		return nil
	}
	item := Classification{Type: ts.Name.Name, Pos: c.Fset.Position(d.pos)}
	switch {
	case d.args != "":
		item.Kind, item.Reason = Malformed, ObservableMarker+" takes no arguments"
	case ts.Assign.IsValid():
		item.Kind, item.Reason = Malformed, "type alias cannot be observable"
	case !isStruct:
		item.Kind, item.Reason = Malformed, "only struct types can be observable"
	case !c.hasChangeHook(ts):
		item.Kind, item.Reason = Malformed, "type has no PropertyChanged method; embed autogen.ChangeTracker"
	}
	if item.Kind == Malformed {
		res.Items = append(res.Items, item)
		return nil
	}
	item.Kind = Applicable
	res.Items = append(res.Items, item)

	frag := &Fragment{
		Namespace: c.Namespace,
		Package:   f.Name.Name,
		Dir:       c.dir(f),
		TypeName:  ts.Name.Name,
	}
	if ts.TypeParams != nil {
		for _, field := range ts.TypeParams.List {
			for _, name := range field.Names {
				frag.TypeParams = append(frag.TypeParams, name.Name)
			}
		}
	}
	fieldNames := make(map[string]bool)
	for _, field := range st.Fields.List {
		for _, name := range field.Names {
			fieldNames[name.Name] = true
		}
	}
	seen := make(map[string]bool)
	for _, field := range st.Fields.List {
		d, ok := findDirective(field.Doc, PropertyMarker)
		if !ok {
			continue
		}
		p, reason := c.classifyField(imports, fieldNames, field, d)
		item := Classification{Type: ts.Name.Name, Pos: c.Fset.Position(d.pos), Field: fieldLabel(field)}
		if reason == "" && seen[p.PropertyName()] {
			reason = fmt.Sprintf("property %s is declared twice", p.PropertyName())
		}
		if reason != "" {
			item.Kind, item.Reason = Malformed, reason
			res.Items = append(res.Items, item)
			continue
		}
		seen[p.PropertyName()] = true
		item.Kind = Applicable
		res.Items = append(res.Items, item)
		frag.Properties = append(frag.Properties, p)
	}
	return frag
}

// hasChangeHook reports whether *T has a PropertyChanged method. Without
// type information the method may live in any file, so it is assumed.
func (c *Classifier) hasChangeHook(ts *ast.TypeSpec) bool {
	if c.Info == nil {
		return true
	}
	tn, ok := c.Info.Defs[ts.Name].(*types.TypeName)
	if !ok {
		return true
	}
	obj, _, _ := types.LookupFieldOrMethod(types.NewPointer(tn.Type()), true, tn.Pkg(), "PropertyChanged")
	_, isFunc := obj.(*types.Func)
	return isFunc
}

// rejectFieldMarkers reports field markers of a type that is not observable.
func (c *Classifier) rejectFieldMarkers(res *FileResult, typeName string, st *ast.StructType) {
	for _, field := range st.Fields.List {
		if d, ok := findDirective(field.Doc, PropertyMarker); ok {
			res.Items = append(res.Items, Classification{
				Kind:   Malformed,
				Type:   typeName,
				Field:  fieldLabel(field),
				Pos:    c.Fset.Position(d.pos),
				Reason: fmt.Sprintf("type %s is not marked %s", typeName, ObservableMarker),
			})
		}
	}
}

// classifyField returns the property of a marked field, or the reason it is
// malformed.
func (c *Classifier) classifyField(imports map[string]string, fieldNames map[string]bool, field *ast.Field, d directive) (*Property, string) {
	switch len(field.Names) {
	case 0:
		return nil, "embedded fields cannot be properties"
	case 1:
	default:
		return nil, "field declares several names"
	}
	args, err := parseArgs(d.args)
	if err != nil {
		return nil, err.Error()
	}
	if len(args) > 2 {
		return nil, fmt.Sprintf("%s takes at most 2 arguments, got %d", PropertyMarker, len(args))
	}
	p := &Property{
		Field: field.Names[0].Name,
		Type:  types.ExprString(field.Type),
		Pos:   c.Fset.Position(field.Pos()),
	}
	if len(args) > 0 {
		p.Name = args[0]
		if !token.IsIdentifier(p.Name) {
			return nil, fmt.Sprintf("property name %q is not a valid identifier", p.Name)
		}
	}
	if len(args) > 1 {
		p.Doc = args[1]
	}
	name := p.PropertyName()
	if !token.IsIdentifier(name) {
		return nil, fmt.Sprintf("cannot derive a property name from field %s", p.Field)
	}
	if fieldNames[name] {
		return nil, fmt.Sprintf("property name %s collides with field %s", name, name)
	}
	p.Imports = c.qualifiers(imports, field.Type)
	p.Comparable = c.comparable(field.Type)
	return p, ""
}

// qualifiers resolves the package qualifiers used in expr.
func (c *Classifier) qualifiers(imports map[string]string, expr ast.Expr) map[string]string {
	var out map[string]string
	ast.Inspect(expr, func(n ast.Node) bool {
		sel, ok := n.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		id, ok := sel.X.(*ast.Ident)
		if !ok {
			return true
		}
		importPath := imports[id.Name]
		if c.Info != nil {
			if pn, ok := c.Info.Uses[id].(*types.PkgName); ok {
				importPath = pn.Imported().Path()
			}
		}
		if importPath == "" {
			return true
		}
		if out == nil {
			out = make(map[string]string)
		}
		out[id.Name] = importPath
		return false
	})
	return out
}

// comparable reports whether values of expr support ==. Type information
// wins when it is complete; otherwise slices, maps and funcs are the
// non-comparable kinds.
func (c *Classifier) comparable(expr ast.Expr) bool {
	if c.Info != nil {
		if t := c.Info.TypeOf(expr); t != nil && t != types.Typ[types.Invalid] {
			return types.Comparable(t)
		}
	}
	return syntacticComparable(expr)
}

func syntacticComparable(expr ast.Expr) bool {
	switch e := expr.(type) {
	case *ast.ArrayType:
		return e.Len != nil && syntacticComparable(e.Elt)
	case *ast.MapType, *ast.FuncType:
		return false
	case *ast.ParenExpr:
		return syntacticComparable(e.X)
	case *ast.StructType:
		for _, f := range e.Fields.List {
			if !syntacticComparable(f.Type) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

func (c *Classifier) dir(f *ast.File) string {
	if c.Dir != "" {
		return c.Dir
	}
	return filepath.Dir(c.Fset.Position(f.Package).Filename)
}

// fieldLabel names a field for diagnostics.
func fieldLabel(field *ast.Field) string {
	if len(field.Names) == 0 {
		return types.ExprString(field.Type)
	}
	names := make([]string, len(field.Names))
	for i, n := range field.Names {
		names[i] = n.Name
	}
	return strings.Join(names, ", ")
}

var majorVersion = regexp.MustCompile(`^v[0-9]+$`)

// fileImports maps the local names of the imports of f to their paths.
// Unnamed imports use the conventional package name of the path.
func fileImports(f *ast.File) map[string]string {
	out := make(map[string]string, len(f.Imports))
	for _, imp := range f.Imports {
		importPath, err := strconv.Unquote(imp.Path.Value)
		if err != nil || importPath == "" {
			continue
		}
		var name string
		if imp.Name != nil {
			name = imp.Name.Name
		} else {
			name = guessPackageName(importPath)
		}
		if name == "_" || name == "." || name == "" {
			continue
		}
		out[name] = importPath
	}
	return out
}

func guessPackageName(importPath string) string {
	base := path.Base(importPath)
	if majorVersion.MatchString(base) {
		base = path.Base(path.Dir(importPath))
	}
	if i := strings.LastIndex(base, ".v"); i > 0 && majorVersion.MatchString(base[i+1:]) {
		base = base[:i]
	}
	base = strings.TrimPrefix(base, "go-")
	return strings.Map(func(r rune) rune {
		if r == '-' || r == '.' {
			return -1
		}
		return r
	}, base)
}

// DerivePropertyName returns the property name of a backing field:
// "_status" gives "Status" and "status" gives "Status".
func DerivePropertyName(field string) string {
	name := strings.TrimPrefix(field, "_")
	r, size := utf8.DecodeRuneInString(name)
	if size == 0 {
		return name
	}
	return string(unicode.ToUpper(r)) + name[size:]
}
