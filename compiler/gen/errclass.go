package gen

import (
	"github.com/dave/jennifer/jen"
)

// ErrorClass renders the error class of a canonical table: one method per
// entry returning an *autogen.Error whose message comes from the resource
// accessor, plus Codes. It returns nil for tagged tables.
func (e *Emitter) ErrorClass(t *ErrorTable) *jen.File {
	if !t.Canonical() {
		return nil
	}
	n := e.naming
	f := e.newFile(n.ErrorsImportPath(), n.ErrorsPackageName())
	typ, class := n.ErrorClassType(t), n.ErrorClass(t)
	resources := jen.Qual(n.ResourcesImportPath(), n.ResourceClass(t))

	f.Commentf("%s lists the errors defined in %s.", typ, t.FileBase())
	f.Type().Id(typ).Struct()
	f.Line()
	f.Commentf("%s holds the errors defined in %s.", class, t.FileBase())
	f.Var().Id(class).Id(typ)

	codes := make([]jen.Code, 0, len(t.Entries))
	for _, entry := range t.Entries {
		method := n.EntryMethod(entry)
		code := t.FullCode(entry)
		codes = append(codes, jen.Lit(code))

		f.Line()
		f.Commentf("%s returns the %s error.", method, code)
		f.Func().Params(jen.Id(typ)).Id(method).Params().Op("*").Qual(RuntimePkg, "Error").Block(
			jen.Return(jen.Qual(RuntimePkg, "NewError").Call(
				jen.Lit(code),
				resources.Clone().Dot(method).Call(),
			)),
		)
	}

	f.Line()
	f.Comment("Codes returns every code of the class in definition order.")
	f.Func().Params(jen.Id(typ)).Id("Codes").Params().Index().String().Block(
		jen.Return(jen.Index().String().ValuesFunc(func(g *jen.Group) {
			for _, c := range codes {
				g.Add(c)
			}
		})),
	)
	return f
}
