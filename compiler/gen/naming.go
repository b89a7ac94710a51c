package gen

import (
	"go/token"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-openapi/inflect"
)

// GenSuffix ends the name of every generated Go file.
const GenSuffix = ".gen.go"

// BundleExt is the extension of resource bundles.
const BundleExt = ".yaml"

// Naming owns every name shared between emitters: identifiers, resource
// keys, import paths and artifact paths. The error-class emitter refers to
// the resource accessor only through it.
type Naming struct {
	module          string
	projectDir      string
	errorsDir       string
	resourcesDir    string
	exportedSetters bool
}

// NewNaming returns the naming strategy of c.
func NewNaming(c *Config) *Naming {
	return &Naming{
		module:          c.Module,
		projectDir:      c.ProjectDir,
		errorsDir:       filepath.ToSlash(filepath.Clean(c.ErrorsPackage)),
		resourcesDir:    filepath.ToSlash(filepath.Clean(c.ResourcesDir)),
		exportedSetters: c.ExportedSetters,
	}
}

// Module returns the module path.
func (n *Naming) Module() string { return n.module }

// ErrorsImportPath returns the import path of the error classes.
func (n *Naming) ErrorsImportPath() string { return path.Join(n.module, n.errorsDir) }

// ErrorsPackageName returns the package name of the error classes.
func (n *Naming) ErrorsPackageName() string { return packageName(n.errorsDir) }

// ResourcesImportPath returns the import path of the resource accessors.
func (n *Naming) ResourcesImportPath() string { return path.Join(n.module, n.resourcesDir) }

// ResourcesPackageName returns the package name of the resource accessors.
func (n *Naming) ResourcesPackageName() string { return packageName(n.resourcesDir) }

// AssemblyPrefix returns the file name prefix derived from the module path,
// e.g. "shop" for "github.com/acme/shop/v2".
func (n *Naming) AssemblyPrefix() string {
	return packageName(n.module)
}

// ErrorClass returns the exported variable of the error class.
func (n *Naming) ErrorClass(t *ErrorTable) string { return t.ClassName }

// ErrorClassType returns the unexported type of the error class.
func (n *Naming) ErrorClassType(t *ErrorTable) string { return unexported(t.ClassName) }

// ResourceClass returns the exported variable of the resource accessor.
func (n *Naming) ResourceClass(t *ErrorTable) string { return t.ClassName + "Resources" }

// ResourceClassType returns the unexported type of the resource accessor.
func (n *Naming) ResourceClassType(t *ErrorTable) string { return unexported(n.ResourceClass(t)) }

// ResourceFS returns the embedded file system variable of the accessor.
func (n *Naming) ResourceFS(t *ErrorTable) string { return n.ResourceClassType(t) + "FS" }

// BundleBase returns the bundle file name without language and extension.
func (n *Naming) BundleBase(t *ErrorTable) string { return n.ResourceClass(t) }

// ResourceKey returns the bundle key of e.
func (n *Naming) ResourceKey(e ErrorEntry) string { return e.Name }

// EntryMethod returns the method exposing e on the error class and on the
// resource accessor.
func (n *Naming) EntryMethod(e ErrorEntry) string { return upperFirst(e.Name) }

// ErrorClassFile returns the path of the error class of t.
func (n *Naming) ErrorClassFile(t *ErrorTable) string {
	name := n.AssemblyPrefix() + "_" + inflect.Underscore(t.ClassName) + GenSuffix
	return filepath.Join(n.projectDir, filepath.FromSlash(n.errorsDir), name)
}

// AccessorFile returns the path of the resource accessor of t.
func (n *Naming) AccessorFile(t *ErrorTable) string {
	name := n.AssemblyPrefix() + "_" + inflect.Underscore(t.ClassName) + "_resources" + GenSuffix
	return filepath.Join(n.projectDir, filepath.FromSlash(n.resourcesDir), name)
}

// BundleFile returns the path of the bundle of t. Tagged tables carry the
// language between base and extension.
func (n *Naming) BundleFile(t *ErrorTable) string {
	name := n.BundleBase(t)
	if !t.Canonical() {
		name += "." + t.Language
	}
	return filepath.Join(n.projectDir, filepath.FromSlash(n.resourcesDir), name+BundleExt)
}

// PropertyFile returns the path of the accessor file of g.
func (n *Naming) PropertyFile(g *TypeGroup) string {
	return filepath.Join(g.Dir, g.Package+"_"+inflect.Underscore(g.TypeName)+GenSuffix)
}

// Getter returns the getter name of p.
func (n *Naming) Getter(p *PropertyDescriptor) string { return p.PropertyName }

// Setter returns the setter name of p.
func (n *Naming) Setter(p *PropertyDescriptor) string {
	if n.exportedSetters {
		return "Set" + p.PropertyName
	}
	return "set" + p.PropertyName
}

// ClassName returns the class derived from a definition file name: the base
// name up to its first dot, camelized. "order_errors.zh.xml" gives
// "OrderErrors".
func ClassName(file string) string {
	base := filepath.Base(file)
	if i := strings.IndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}
	return inflect.Camelize(base)
}

var (
	majorVersion = regexp.MustCompile(`^v[0-9]+$`)
	nonIdent     = regexp.MustCompile(`[^a-z0-9_]+`)
)

// packageName returns an identifier-safe package name for an import path.
func packageName(importPath string) string {
	base := path.Base(importPath)
	if majorVersion.MatchString(base) {
		base = path.Base(path.Dir(importPath))
	}
	base = strings.TrimPrefix(base, "go-")
	base = nonIdent.ReplaceAllString(strings.ToLower(base), "_")
	base = strings.Trim(base, "_")
	if base == "" || unicode.IsDigit(rune(base[0])) {
		base = "p" + base
	}
	return base
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// unexported lowers the first letter of s, avoiding keywords.
func unexported(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	s = string(unicode.ToLower(r)) + s[size:]
	if token.IsKeyword(s) {
		s += "_"
	}
	return s
}
