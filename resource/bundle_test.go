package resource

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"OrderErrorsResources.yaml": &fstest.MapFile{Data: []byte(
			"# Code generated by autogen. DO NOT EDIT.\n" +
				"Error_1: order {0} not found\n" +
				"Error_2: order already paid\n" +
				"Error_3: only canonical\n")},
		"OrderErrorsResources.zh-Hans.yaml": &fstest.MapFile{Data: []byte(
			"Error_1: 订单 {0} 不存在\n" +
				"Error_2: 订单已支付\n")},
		"OrderErrorsResourcesExtra.yaml": &fstest.MapFile{Data: []byte("Other: x\n")},
	}
}

func TestLoad(t *testing.T) {
	t.Run("reads canonical and translations", func(t *testing.T) {
		b, err := Load(testFS(), "OrderErrorsResources")
		require.NoError(t, err)

		assert.Equal(t, "OrderErrorsResources", b.Base())
		assert.Equal(t, []string{"Error_1", "Error_2", "Error_3"}, b.Keys())
		assert.Equal(t, []language.Tag{language.MustParse("zh-Hans")}, b.Tags())
	})

	t.Run("requires canonical file", func(t *testing.T) {
		fsys := fstest.MapFS{
			"OrderErrorsResources.fr.yaml": &fstest.MapFile{Data: []byte("A: b\n")},
		}
		_, err := Load(fsys, "OrderErrorsResources")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing canonical bundle")
	})

	t.Run("rejects invalid tag", func(t *testing.T) {
		fsys := testFS()
		fsys["OrderErrorsResources.not_a-tag!.yaml"] = &fstest.MapFile{Data: []byte("A: b\n")}
		_, err := Load(fsys, "OrderErrorsResources")
		require.Error(t, err)
	})

	t.Run("rejects non mapping document", func(t *testing.T) {
		fsys := fstest.MapFS{
			"R.yaml": &fstest.MapFile{Data: []byte("- a\n- b\n")},
		}
		_, err := Load(fsys, "R")
		require.Error(t, err)
	})

	t.Run("MustLoad panics on error", func(t *testing.T) {
		assert.Panics(t, func() { MustLoad(fstest.MapFS{}, "Missing") })
	})
}

func TestLookup(t *testing.T) {
	b, err := Load(testFS(), "OrderErrorsResources")
	require.NoError(t, err)

	t.Run("matches translation", func(t *testing.T) {
		assert.Equal(t, "订单已支付", b.Lookup("Error_2", language.MustParse("zh-CN")))
		assert.Equal(t, "订单已支付", b.Lookup("Error_2", language.MustParse("zh-Hans")))
	})

	t.Run("falls back to canonical", func(t *testing.T) {
		assert.Equal(t, "order already paid", b.Lookup("Error_2", language.English))
		assert.Equal(t, "only canonical", b.Lookup("Error_3", language.MustParse("zh-Hans")))
		assert.Equal(t, "order already paid", b.Lookup("Error_2"))
	})

	t.Run("falls back to key", func(t *testing.T) {
		assert.Equal(t, "Missing", b.Lookup("Missing", language.English))
	})
}

func TestString(t *testing.T) {
	b, err := Load(testFS(), "OrderErrorsResources")
	require.NoError(t, err)
	t.Cleanup(ResetLocale)

	SetLocale(language.MustParse("zh-Hans"))
	assert.Equal(t, "订单已支付", b.String("Error_2"))

	SetLocale(language.MustParse("en-US"))
	assert.Equal(t, "order already paid", b.String("Error_2"))
}
