package load

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const orderErrors = `<?xml version="1.0" encoding="utf-8"?>
<errors>
  <lang></lang>
  <codeBase>ORD</codeBase>
  <error code="1001" name="NotFound">order {0} not found</error>
  <error code="1002" name="Closed">
    order is closed
  </error>
</errors>
`

func TestParseDefinition(t *testing.T) {
	def, err := ParseDefinition("errors/order_errors.xml", []byte(orderErrors))
	require.NoError(t, err)

	assert.Equal(t, "errors/order_errors.xml", def.Path)
	require.NotNil(t, def.Lang)
	assert.Equal(t, "", *def.Lang)
	require.NotNil(t, def.CodeBase)
	assert.Equal(t, "ORD", *def.CodeBase)

	require.Len(t, def.Entries, 2)
	assert.Equal(t, "1001", *def.Entries[0].Code)
	assert.Equal(t, "NotFound", *def.Entries[0].Name)
	assert.Equal(t, "order {0} not found", def.Entries[0].Text)
	assert.Equal(t, 5, def.Entries[0].Line)
	assert.Equal(t, "order is closed", def.Entries[1].Text)
	assert.Equal(t, 6, def.Entries[1].Line)
}

func TestParseDefinitionOptionalValues(t *testing.T) {
	def, err := ParseDefinition("x.xml", []byte(`<errors><error>text</error></errors>`))
	require.NoError(t, err)

	assert.Nil(t, def.Lang)
	assert.Nil(t, def.CodeBase)
	require.Len(t, def.Entries, 1)
	assert.Nil(t, def.Entries[0].Code)
	assert.Nil(t, def.Entries[0].Name)
}

func TestParseDefinitionErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		line int
	}{
		{"unclosed element", "<errors>\n<codeBase>ORD</codeBase>\n<error code=\"1\" name=\"A\">x\n</errors>", 4},
		{"empty", "", 0},
		{"trailing element", "<errors></errors><errors></errors>", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDefinition("bad.xml", []byte(tt.data))
			require.Error(t, err)

			var se *SyntaxError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, "bad.xml", se.Path)
			assert.Equal(t, tt.line, se.Line)
			assert.Contains(t, err.Error(), "invalid xml")
		})
	}

	t.Run("other root", func(t *testing.T) {
		_, err := ParseDefinition("pom.xml", []byte(`<project><version>1</version></project>`))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNotDefinition))
	})
}

func TestFindDefinitions(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"errors/order_errors.xml":      orderErrors,
		"errors/order_errors.zh.xml":   orderErrors,
		"errors/nested/user.xml":       orderErrors,
		"errors/readme.md":             "docs",
		"vendor/lib/errors.xml":        orderErrors,
		".git/config.xml":              orderErrors,
		"resources/copy.xml":           orderErrors,
		"testdata/fixture.xml":         orderErrors,
		"other/payment_errors.xml":     orderErrors,
		"other/payment_errors.old.txt": "",
	})

	t.Run("walks directories", func(t *testing.T) {
		got, err := FindDefinitions(dir, []string{"."}, ".xml", filepath.Join(dir, "resources"))
		require.NoError(t, err)
		assert.Equal(t, []string{
			filepath.Join(dir, "errors", "nested", "user.xml"),
			filepath.Join(dir, "errors", "order_errors.xml"),
			filepath.Join(dir, "errors", "order_errors.zh.xml"),
			filepath.Join(dir, "other", "payment_errors.xml"),
		}, got)
	})

	t.Run("globs and files without duplicates", func(t *testing.T) {
		got, err := FindDefinitions(dir, []string{"errors/*.xml", "errors/order_errors.xml"}, ".xml")
		require.NoError(t, err)
		assert.Equal(t, []string{
			filepath.Join(dir, "errors", "order_errors.xml"),
			filepath.Join(dir, "errors", "order_errors.zh.xml"),
		}, got)
	})

	t.Run("missing path", func(t *testing.T) {
		_, err := FindDefinitions(dir, []string{"nope"}, ".xml")
		require.Error(t, err)
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})
}

func TestFindModule(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"go.mod":          "module example.com/shop\n\ngo 1.24\n",
		"order/order.go":  "package order\n",
		"order/deep/x.go": "package deep\n",
	})

	mp, root, err := FindModule(filepath.Join(dir, "order", "deep"))
	require.NoError(t, err)
	assert.Equal(t, "example.com/shop", mp)
	assert.Equal(t, dir, root)
}
