package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lineParser is a test parser reading `category key value` lines.
type lineParser struct {
	calls []string
	fail  string
}

func (p *lineParser) ParseFile(ctx context.Context, path string) (*Model, error) {
	p.calls = append(p.calls, filepath.Base(path))
	if filepath.Base(path) == p.fail {
		return nil, errors.New("boom")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m := NewModel()
	for _, line := range strings.Split(strings.TrimSpace(string(raw)), "\n") {
		parts := strings.Fields(line)
		if len(parts) == 3 {
			m.Set(parts[0], parts[1], parts[2])
		}
	}
	return m, nil
}

func TestFileLoader_MergesInLexicalOrder(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.tbl"), []byte("obstacle 1 second\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.tbl"), []byte("obstacle 1 first\nobstacle 2 only\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.md"), []byte("ignored"), 0644))

	parser := &lineParser{}
	loader := NewFileLoader(map[string]Parser{".TBL": parser})

	m, err := loader.Load(context.Background(), dir, filepath.Join(dir, "missing"))
	require.NoError(t, err)

	assert.Equal(t, []string{"a.tbl", "b.tbl"}, parser.calls)
	assert.Equal(t, "second", m.Resolve(CategoryObstacle, "1"))
	assert.Equal(t, "only", m.Resolve(CategoryObstacle, "2"))
	assert.Equal(t, []string{".tbl"}, loader.Extensions())
}

func TestFileLoader_ParseErrorIsFatal(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.tbl"), []byte("x"), 0644))

	loader := NewFileLoader(map[string]Parser{".tbl": &lineParser{fail: "bad.tbl"}})
	_, err := loader.Load(context.Background(), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.tbl")
}
