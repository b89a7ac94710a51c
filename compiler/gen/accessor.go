package gen

import (
	"github.com/dave/jennifer/jen"
)

// Accessor renders the resource accessor of a canonical table. The bundles
// of the table family are embedded and resolved against the process locale
// by resource.Bundle. It returns nil for tagged tables.
func (e *Emitter) Accessor(t *ErrorTable) *jen.File {
	if !t.Canonical() {
		return nil
	}
	n := e.naming
	f := e.newFile(n.ResourcesImportPath(), n.ResourcesPackageName())
	typ, class, fsVar := n.ResourceClassType(t), n.ResourceClass(t), n.ResourceFS(t)

	f.Comment("//go:embed " + n.BundleBase(t) + "*" + BundleExt)
	f.Var().Id(fsVar).Qual("embed", "FS")
	f.Line()
	f.Commentf("%s resolves the messages of %s.", typ, t.FileBase())
	f.Type().Id(typ).Struct(
		jen.Id("bundle").Op("*").Qual(ResourcePkg, "Bundle"),
	)
	f.Line()
	f.Commentf("%s holds the messages of %s in every available language.", class, t.FileBase())
	f.Var().Id(class).Op("=").Id(typ).Values(jen.Dict{
		jen.Id("bundle"): jen.Qual(ResourcePkg, "MustLoad").Call(jen.Id(fsVar), jen.Lit(n.BundleBase(t))),
	})
	f.Line()
	f.Comment("Bundle returns the underlying bundle.")
	f.Func().Params(jen.Id("r").Id(typ)).Id("Bundle").Params().Op("*").Qual(ResourcePkg, "Bundle").Block(
		jen.Return(jen.Id("r").Dot("bundle")),
	)

	for _, entry := range t.Entries {
		method := n.EntryMethod(entry)
		f.Line()
		f.Commentf("%s returns the message of %s in the current locale.", method, t.FullCode(entry))
		f.Func().Params(jen.Id("r").Id(typ)).Id(method).Params().String().Block(
			jen.Return(jen.Id("r").Dot("bundle").Dot("String").Call(jen.Lit(n.ResourceKey(entry)))),
		)
	}
	return f
}
