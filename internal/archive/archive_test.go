package archive

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBundleRoundTrip(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"cmd_simple.txt":     "a\nb\n",
		"cmd_compressed.txt": "RS 2\na\nRE\n",
		"empty.txt":          "",
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0644))
	}

	path := filepath.Join(dir, "out", Name("abc"))
	require.NoError(t, WriteBundle(path, dir, []string{"cmd_simple.txt", "cmd_compressed.txt", "empty.txt"}))
	assert.Equal(t, "run-abc.tar.zst", filepath.Base(path))

	got, err := ReadBundle(path)
	require.NoError(t, err)
	require.Len(t, got, len(files))
	for name, body := range files {
		assert.Equal(t, body, string(got[name]), name)
	}
}

func TestWriteBundle_MissingFile(t *testing.T) {
	dir := t.TempDir()
	err := WriteBundle(filepath.Join(dir, "b.tar.zst"), dir, []string{"nope.txt"})
	require.Error(t, err)
}

func TestReadBundle_NotZstd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.tar.zst")
	require.NoError(t, os.WriteFile(path, []byte("plain text"), 0644))

	_, err := ReadBundle(path)
	require.Error(t, err)
}
