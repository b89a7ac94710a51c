package gen

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNamingPaths(t *testing.T) {
	root := filepath.FromSlash("/src/shop")
	n := NewNaming(testConfig(root))

	canonical := orderTable("", "NotFound")
	tagged := orderTable("zh-Hans", "NotFound")

	assert.Equal(t, "shop", n.AssemblyPrefix())
	assert.Equal(t, filepath.Join(root, "errorcodes", "shop_order_errors.gen.go"), n.ErrorClassFile(canonical))
	assert.Equal(t, filepath.Join(root, "resources", "shop_order_errors_resources.gen.go"), n.AccessorFile(canonical))
	assert.Equal(t, filepath.Join(root, "resources", "OrderErrorsResources.yaml"), n.BundleFile(canonical))
	assert.Equal(t, filepath.Join(root, "resources", "OrderErrorsResources.zh-Hans.yaml"), n.BundleFile(tagged))

	g := &TypeGroup{Dir: filepath.Join(root, "model"), Package: "model", TypeName: "LineItem"}
	assert.Equal(t, filepath.Join(root, "model", "model_line_item.gen.go"), n.PropertyFile(g))
}

func TestNamingIdentifiers(t *testing.T) {
	n := NewNaming(testConfig("/src/shop"))
	table := orderTable("", "notFound")

	assert.Equal(t, "OrderErrors", n.ErrorClass(table))
	assert.Equal(t, "orderErrors", n.ErrorClassType(table))
	assert.Equal(t, "OrderErrorsResources", n.ResourceClass(table))
	assert.Equal(t, "orderErrorsResources", n.ResourceClassType(table))
	assert.Equal(t, "orderErrorsResourcesFS", n.ResourceFS(table))
	assert.Equal(t, "notFound", n.ResourceKey(table.Entries[0]))
	assert.Equal(t, "NotFound", n.EntryMethod(table.Entries[0]))
	assert.Equal(t, "example.com/shop/errorcodes", n.ErrorsImportPath())
	assert.Equal(t, "example.com/shop/resources", n.ResourcesImportPath())

	p := &PropertyDescriptor{PropertyName: "Status"}
	assert.Equal(t, "Status", n.Getter(p))
	assert.Equal(t, "setStatus", n.Setter(p))
}

func TestClassName(t *testing.T) {
	tests := map[string]string{
		"order_errors.xml":           "OrderErrors",
		"errors/order_errors.fr.xml": "OrderErrors",
		"payment.xml":                "Payment",
	}
	for in, want := range tests {
		assert.Equal(t, want, ClassName(in), in)
	}
}

func TestPackageName(t *testing.T) {
	tests := map[string]string{
		"github.com/acme/shop":       "shop",
		"github.com/acme/shop/v2":    "shop",
		"github.com/acme/go-billing": "billing",
		"example.com/my.app":         "my_app",
		"example.com/3d":             "p3d",
	}
	for in, want := range tests {
		assert.Equal(t, want, packageName(in), in)
	}
}

func TestUnexported(t *testing.T) {
	assert.Equal(t, "orderErrors", unexported("OrderErrors"))
	assert.Equal(t, "type_", unexported("Type"))
	assert.Equal(t, "", unexported(""))
}
