package gen

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/types"
	"strings"

	"github.com/dave/jennifer/jen"
)

// Import paths referenced by generated code.
const (
	RuntimePkg  = "github.com/syssam/autogen"
	ResourcePkg = "github.com/syssam/autogen/resource"
)

// Emitter renders the generated artifacts of both pipelines. It is safe for
// concurrent use; every method is a pure function of its model.
type Emitter struct {
	header string
	naming *Naming
}

// NewEmitter returns an emitter for c.
func NewEmitter(c *Config, naming *Naming) *Emitter {
	return &Emitter{header: c.Header, naming: naming}
}

// Naming returns the naming strategy of the emitter.
func (e *Emitter) Naming() *Naming {
	return e.naming
}

// newFile creates a new Jennifer file with the header comment.
func (e *Emitter) newFile(importPath, name string) *jen.File {
	f := jen.NewFilePathName(importPath, name)
	if e.header != "" {
		f.HeaderComment(e.header)
	}
	return f
}

// Property renders the accessor file of g: a getter and a change-notifying
// setter per property.
func (e *Emitter) Property(g *TypeGroup) (*jen.File, error) {
	f := e.newFile(g.Namespace, g.Package)
	recv, param := g.Receiver(), g.SetterParam()
	for _, p := range g.Properties {
		fieldType, err := typeCode(p.FieldType, p.Imports)
		if err != nil {
			return nil, NewGenerationError("property", e.naming.PropertyFile(g),
				fmt.Sprintf("%s.%s: invalid field type %q", g.TypeName, p.FieldName, p.FieldType), err)
		}
		getter, setter := e.naming.Getter(p), e.naming.Setter(p)
		field := jen.Id(recv).Dot(p.FieldName)

		if p.Documentation != "" {
			f.Comment(getterDoc(getter, p.Documentation))
		}
		f.Func().Params(receiver(g, recv)).Id(getter).Params().Add(fieldType).Block(
			jen.Return(field.Clone()),
		)
		f.Line()

		var same *jen.Statement
		if p.Comparable {
			same = field.Clone().Op("==").Id(param)
		} else {
			same = jen.Qual("reflect", "DeepEqual").Call(field.Clone(), jen.Id(param))
		}
		f.Commentf("%s sets %s and reports a change when the value differs.", setter, getter)
		f.Func().Params(receiver(g, recv)).Id(setter).Params(jen.Id(param).Add(fieldType)).Block(
			jen.If(same).Block(jen.Return()),
			field.Clone().Op("=").Id(param),
			jen.Id(recv).Dot("PropertyChanged").Call(),
		)
		f.Line()
	}
	return f, nil
}

// receiver returns "r *T" or "r *T[P1, P2]".
func receiver(g *TypeGroup, recv string) *jen.Statement {
	t := jen.Id(recv).Op("*").Id(g.TypeName)
	if len(g.TypeParams) > 0 {
		params := make([]jen.Code, len(g.TypeParams))
		for i, p := range g.TypeParams {
			params[i] = jen.Id(p)
		}
		t.Types(params...)
	}
	return t
}

func getterDoc(getter, doc string) string {
	if strings.HasPrefix(doc, getter+" ") {
		return doc
	}
	return getter + " returns " + doc
}

// typeCode parses a field type and renders it with qualified imports.
func typeCode(src string, imports map[string]string) (jen.Code, error) {
	expr, err := parser.ParseExpr(src)
	if err != nil {
		return nil, err
	}
	return exprCode(expr, imports), nil
}

func exprCode(expr ast.Expr, imports map[string]string) *jen.Statement {
	switch x := expr.(type) {
	case *ast.Ident:
		return jen.Id(x.Name)
	case *ast.SelectorExpr:
		if id, ok := x.X.(*ast.Ident); ok {
			if path, ok := imports[id.Name]; ok {
				return jen.Qual(path, x.Sel.Name)
			}
		}
		return jen.Id(types.ExprString(x))
	case *ast.StarExpr:
		return jen.Op("*").Add(exprCode(x.X, imports))
	case *ast.ParenExpr:
		return jen.Parens(exprCode(x.X, imports))
	case *ast.ArrayType:
		if x.Len == nil {
			return jen.Index().Add(exprCode(x.Elt, imports))
		}
		if _, ok := x.Len.(*ast.Ellipsis); ok {
			return jen.Index(jen.Op("...")).Add(exprCode(x.Elt, imports))
		}
		return jen.Index(exprCode(x.Len, imports)).Add(exprCode(x.Elt, imports))
	case *ast.MapType:
		return jen.Map(exprCode(x.Key, imports)).Add(exprCode(x.Value, imports))
	case *ast.ChanType:
		switch x.Dir {
		case ast.SEND:
			return jen.Chan().Op("<-").Add(exprCode(x.Value, imports))
		case ast.RECV:
			return jen.Op("<-").Chan().Add(exprCode(x.Value, imports))
		default:
			return jen.Chan().Add(exprCode(x.Value, imports))
		}
	case *ast.FuncType:
		s := jen.Func().Params(fieldsCode(x.Params, imports)...)
		if x.Results != nil {
			results := fieldsCode(x.Results, imports)
			if len(results) == 1 && len(x.Results.List[0].Names) == 0 {
				return s.Add(results[0])
			}
			return s.Params(results...)
		}
		return s
	case *ast.StructType:
		var fields []jen.Code
		for _, field := range x.Fields.List {
			t := exprCode(field.Type, imports)
			tag := func(s *jen.Statement) *jen.Statement {
				if field.Tag != nil {
					return s.Id(field.Tag.Value)
				}
				return s
			}
			if len(field.Names) == 0 {
				fields = append(fields, tag(t))
				continue
			}
			for _, n := range field.Names {
				fields = append(fields, tag(jen.Id(n.Name).Add(t.Clone())))
			}
		}
		return jen.Struct(fields...)
	case *ast.InterfaceType:
		if len(x.Methods.List) == 0 {
			return jen.Interface()
		}
		var methods []jen.Code
		for _, m := range x.Methods.List {
			if len(m.Names) == 0 {
				methods = append(methods, exprCode(m.Type, imports))
				continue
			}
			ft := m.Type.(*ast.FuncType)
			sig := jen.Id(m.Names[0].Name).Params(fieldsCode(ft.Params, imports)...)
			if ft.Results != nil {
				sig.Params(fieldsCode(ft.Results, imports)...)
			}
			methods = append(methods, sig)
		}
		return jen.Interface(methods...)
	case *ast.IndexExpr:
		return exprCode(x.X, imports).Types(exprCode(x.Index, imports))
	case *ast.IndexListExpr:
		args := make([]jen.Code, len(x.Indices))
		for i, idx := range x.Indices {
			args[i] = exprCode(idx, imports)
		}
		return exprCode(x.X, imports).Types(args...)
	case *ast.Ellipsis:
		return jen.Op("...").Add(exprCode(x.Elt, imports))
	default:
		return jen.Id(types.ExprString(expr))
	}
}

// fieldsCode renders a parameter or result list.
func fieldsCode(list *ast.FieldList, imports map[string]string) []jen.Code {
	if list == nil {
		return nil
	}
	var out []jen.Code
	for _, field := range list.List {
		t := exprCode(field.Type, imports)
		if len(field.Names) == 0 {
			out = append(out, t)
			continue
		}
		for i, n := range field.Names {
			if i == len(field.Names)-1 {
				out = append(out, jen.Id(n.Name).Add(t))
			} else {
				out = append(out, jen.Id(n.Name))
			}
		}
	}
	return out
}
