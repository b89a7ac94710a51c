package diag

import (
	"go/token"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeverityString(t *testing.T) {
	assert.Equal(t, "info", Info.String())
	assert.Equal(t, "warning", Warning.String())
	assert.Equal(t, "error", Error.String())
	assert.Equal(t, "unknown", Severity(42).String())
}

func TestDiagnosticString(t *testing.T) {
	t.Run("with file", func(t *testing.T) {
		d := Diagnostic{Severity: Error, Code: CodeInvalidXML, File: "errors/order.xml", Message: "file is not a valid xml"}
		assert.Equal(t, "errors/order.xml: error AG1001: file is not a valid xml", d.String())
	})

	t.Run("with position", func(t *testing.T) {
		d := Diagnostic{
			Severity: Warning,
			Code:     CodeMalformedMarker,
			File:     "order.go",
			Pos:      token.Position{Filename: "order.go", Line: 12, Column: 2},
			Message:  "too many arguments",
		}
		assert.Equal(t, "order.go:12:2: warning AG2001: too many arguments", d.String())
	})

	t.Run("without location", func(t *testing.T) {
		d := Diagnostic{Severity: Info, Message: "nothing to do"}
		assert.Equal(t, "info: nothing to do", d.String())
	})
}

func TestBag(t *testing.T) {
	t.Run("sorted listing and filters", func(t *testing.T) {
		var b Bag
		b.Warnf(CodeMalformedMarker, "b.go", "second")
		b.Errorf(CodeInvalidXML, "a.xml", "first %d", 1)
		b.Merge([]Diagnostic{{Severity: Error, Code: CodeInvalidDefinition, File: "c.xml", Message: "third"}})

		list := b.List()
		require.Len(t, list, 3)
		assert.Equal(t, "a.xml", list[0].File)
		assert.Equal(t, "first 1", list[0].Message)
		assert.Equal(t, "b.go", list[1].File)
		assert.Equal(t, "c.xml", list[2].File)

		assert.Len(t, b.Errors(), 2)
		assert.Len(t, b.Warnings(), 1)
		assert.True(t, b.HasErrors())
		require.Error(t, b.Err())
		assert.Contains(t, b.Err().Error(), "a.xml")
	})

	t.Run("no errors", func(t *testing.T) {
		var b Bag
		b.Warnf(CodePackageLoad, "p", "type errors")
		assert.False(t, b.HasErrors())
		assert.NoError(t, b.Err())
	})

	t.Run("concurrent adds", func(t *testing.T) {
		var b Bag
		var wg sync.WaitGroup
		for range 32 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				b.Errorf(CodeWriteFailed, "x", "boom")
			}()
		}
		wg.Wait()
		assert.Len(t, b.List(), 32)
	})
}
