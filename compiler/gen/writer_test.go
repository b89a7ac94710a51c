package gen

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/autogen/internal/logging"
)

func TestWriterWrite(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(DefaultHeader, logging.Discard()).WithWorkers(2)
	src := "// " + DefaultHeader + "\n\npackage shop\n"
	arts := []*Artifact{
		{Path: filepath.Join(dir, "shop", "b.gen.go"), Content: []byte(src)},
		{Path: filepath.Join(dir, "resources", "A.yaml"), Kind: KindBundle, Content: []byte("# " + DefaultHeader + "\nA: a\n")},
	}

	res, err := w.Write(context.Background(), arts)
	require.NoError(t, err)
	assert.Equal(t, []string{arts[1].Path, arts[0].Path}, res.Written)
	assert.Empty(t, res.Unchanged)

	got, err := os.ReadFile(arts[0].Path)
	require.NoError(t, err)
	assert.Equal(t, src, string(got))
	info, err := os.Stat(arts[0].Path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

	t.Run("unchanged content is not rewritten", func(t *testing.T) {
		old := time.Now().Add(-time.Hour)
		require.NoError(t, os.Chtimes(arts[0].Path, old, old))

		res, err := w.Write(context.Background(), arts)
		require.NoError(t, err)
		assert.Empty(t, res.Written)
		assert.Len(t, res.Unchanged, 2)

		info, err := os.Stat(arts[0].Path)
		require.NoError(t, err)
		assert.WithinDuration(t, old, info.ModTime(), time.Second)
	})

	t.Run("changed content is replaced", func(t *testing.T) {
		arts[1].Content = []byte("# " + DefaultHeader + "\nA: b\n")
		res, err := w.Write(context.Background(), arts)
		require.NoError(t, err)
		assert.Equal(t, []string{arts[1].Path}, res.Written)

		entries, err := os.ReadDir(filepath.Dir(arts[1].Path))
		require.NoError(t, err)
		assert.Len(t, entries, 1, "no temporary files are left behind")
	})

	m := w.Metrics()
	assert.Equal(t, 3, m.FilesWritten)
	assert.Equal(t, 3, m.FilesUnchanged)
}

func TestWriterWriteFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	w := NewWriter(DefaultHeader, logging.Discard())
	ok := &Artifact{Path: filepath.Join(dir, "ok.gen.go"), Content: []byte("x")}
	bad := &Artifact{Path: filepath.Join(blocker, "bad.gen.go"), Content: []byte("x")}

	res, err := w.Write(context.Background(), []*Artifact{bad, ok})
	require.Error(t, err)
	assert.True(t, IsGenerationError(err))
	assert.Equal(t, []string{ok.Path}, res.Written)
}

func TestWriterRemove(t *testing.T) {
	dir := t.TempDir()
	generated := filepath.Join(dir, "a.gen.go")
	bundle := filepath.Join(dir, "A.yaml")
	handwritten := filepath.Join(dir, "b.go")
	require.NoError(t, os.WriteFile(generated, []byte("// "+DefaultHeader+"\n\npackage a\n"), 0o644))
	require.NoError(t, os.WriteFile(bundle, []byte("# "+DefaultHeader+"\n# Source: a.xml\n{}\n"), 0o644))
	require.NoError(t, os.WriteFile(handwritten, []byte("package a\n"), 0o644))

	w := NewWriter(DefaultHeader, logging.Discard())
	removed, err := w.Remove([]string{generated, bundle, handwritten, filepath.Join(dir, "missing.gen.go")})
	require.NoError(t, err)
	assert.Equal(t, []string{bundle, generated}, removed)
	assert.FileExists(t, handwritten)
	assert.NoFileExists(t, generated)
	assert.Equal(t, 2, w.Metrics().FilesRemoved)
}

func TestIsGeneratedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x.go")
	require.NoError(t, os.WriteFile(path, []byte("//go:build linux\n\n// "+DefaultHeader+"\n\npackage x\n"), 0o644))

	ok, err := IsGeneratedFile(path, DefaultHeader)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = IsGeneratedFile(path, "Code generated by other. DO NOT EDIT.")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = IsGeneratedFile(filepath.Join(dir, "missing"), DefaultHeader)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFormatSource(t *testing.T) {
	out, err := formatSource("x.go", []byte("package x\nfunc  A( ) {}\n"))
	require.NoError(t, err)
	assert.Equal(t, "package x\n\nfunc A() {}\n", string(out))

	_, err = formatSource("x.go", []byte("package x\nfunc {"))
	require.Error(t, err)
	assert.True(t, IsGenerationError(err))
}
