package app

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	xbmp "golang.org/x/image/bmp"

	"github.com/vk/knitgrid/internal/archive"
	"github.com/vk/knitgrid/internal/compress"
	"github.com/vk/knitgrid/internal/config"
	"github.com/vk/knitgrid/internal/hcl"
	"github.com/vk/knitgrid/internal/output"
	"github.com/vk/knitgrid/internal/runindex"
)

const testTables = `
table "color_semantic" {
  entries = { "#000000" = 1 }
}

table "color_boundary" {
  entries = { "#FF0000" = "A" }
}

table "color_sign" {
  entries = { "#000000" = "+" }
}

table "color_frame" {
  entries = { "#000000" = 1 }
}

table "semantic" {
  entries = { "+1" = "KNIT" }
}

table "line_switch" {
  entries = { "+AA" = "TURN" }
}

program {
  head = "START"
  tail = "END"
}
`

// writeLayer writes a solid single-colour palette bitmap.
func writeLayer(t *testing.T, path string, w, h int, c color.Color) {
	t.Helper()
	img := image.NewPaletted(image.Rect(0, 0, w, h), color.Palette{c})
	var buf bytes.Buffer
	require.NoError(t, xbmp.Encode(&buf, img))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
}

// setupInput creates a 6x2 input directory with its lookup tables.
func setupInput(t *testing.T, tables string) string {
	t.Helper()
	dir := t.TempDir()
	writeLayer(t, filepath.Join(dir, "sema.bmp"), 6, 2, color.Black)
	writeLayer(t, filepath.Join(dir, "shaxian.bmp"), 6, 2, color.RGBA{255, 0, 0, 255})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tables.hcl"), []byte(tables), 0644))
	return dir
}

func hclLoader() config.Loader {
	return config.NewFileLoader(map[string]config.Parser{".hcl": hcl.NewParser()})
}

func TestRun_EndToEnd(t *testing.T) {
	input := setupInput(t, testTables)
	out := filepath.Join(t.TempDir(), "out")
	db := filepath.Join(t.TempDir(), "runs.sqlite")

	cfg, err := NewConfig(Config{
		InputPath:  input,
		OutputPath: out,
		LogFormat:  "text",
		JSON:       true,
		Archive:    true,
		IndexDB:    db,
	})
	require.NoError(t, err)

	testApp, logs := SetupAppTest(t, cfg, hclLoader())
	result, err := testApp.Run(context.Background())
	require.NoError(t, err)

	knit6 := []string{"KNIT", "KNIT", "KNIT", "KNIT", "KNIT", "KNIT"}
	expectedLines := append(append(append(append([]string{"START"}, knit6...), "TURN"), knit6...), "END")
	assert.Equal(t, expectedLines, result.Lines)
	assert.Equal(t, 13, result.Instructions)
	assert.Equal(t, 6, result.Width)
	assert.Equal(t, 2, result.Height)

	knit := compress.Stream{compress.Literal("KNIT")}
	expectedStream := compress.Stream{
		compress.Literal("START"),
		compress.Repeat(6, knit),
		compress.Literal("TURN"),
		compress.Repeat(6, knit),
		compress.Literal("END"),
	}
	assert.Equal(t, expectedStream, result.Stream)
	assert.Equal(t, 9, result.Stats.Encoded)

	simple, err := os.ReadFile(filepath.Join(out, output.SimpleProgram))
	require.NoError(t, err)
	assert.Equal(t, strings.Join(expectedLines, "\n")+"\n", string(simple))

	text, err := os.ReadFile(filepath.Join(out, output.CompressedText))
	require.NoError(t, err)
	assert.Equal(t, "START\nRS 6\nKNIT\nRE\nTURN\nRS 6\nKNIT\nRE\nEND\n", string(text))

	bundle, err := archive.ReadBundle(result.Archive)
	require.NoError(t, err)
	assert.Len(t, bundle, 6)
	assert.Equal(t, simple, bundle[output.SimpleProgram])
	for name, size := range result.Files {
		assert.Equal(t, int(size), len(bundle[name]), name)
	}

	idx, err := runindex.Open(db)
	require.NoError(t, err)
	defer idx.Close()
	runs, err := idx.Recent(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, result.RunID, runs[0].ID)
	assert.Equal(t, len(expectedLines), runs[0].Lines)
	assert.Equal(t, result.Archive, runs[0].Archive)

	assert.Equal(t, "done", testApp.Stage())
	assert.Contains(t, logs.String(), "Conversion finished")
	assert.Contains(t, logs.String(), "run_id="+result.RunID)
}

func TestRun_MaxPatternLen(t *testing.T) {
	input := setupInput(t, testTables)
	cfg, err := NewConfig(Config{InputPath: input, OutputPath: t.TempDir(), MaxPatternLen: 1})
	require.NoError(t, err)

	testApp, _ := SetupAppTest(t, cfg, hclLoader())
	result, err := testApp.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, result.Lines, compress.Flatten(result.Stream))
	assert.NoFileExists(t, filepath.Join(cfg.OutputPath, output.CompressedJSON))
	assert.Empty(t, result.Archive)
}

func TestRun_MissingInput(t *testing.T) {
	cfg, err := NewConfig(Config{
		InputPath:   filepath.Join(t.TempDir(), "missing"),
		ConfigPaths: []string{t.TempDir()},
		OutputPath:  t.TempDir(),
	})
	require.NoError(t, err)

	testApp, _ := SetupAppTest(t, cfg, hclLoader())
	_, err = testApp.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load-layers")
	assert.Equal(t, "failed", testApp.Stage())
}

func TestRun_NoLayerImages(t *testing.T) {
	input := t.TempDir()
	cfg, err := NewConfig(Config{InputPath: input, OutputPath: t.TempDir()})
	require.NoError(t, err)

	testApp, _ := SetupAppTest(t, cfg, hclLoader())
	_, err = testApp.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no layer images")
}

func TestRun_LayerSizeMismatch(t *testing.T) {
	input := setupInput(t, testTables)
	writeLayer(t, filepath.Join(input, "dumu.bmp"), 3, 3, color.Black)

	cfg, err := NewConfig(Config{InputPath: input, OutputPath: t.TempDir()})
	require.NoError(t, err)

	testApp, _ := SetupAppTest(t, cfg, hclLoader())
	_, err = testApp.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "build-grid")
}

func TestRun_CancelledContext(t *testing.T) {
	input := setupInput(t, testTables)
	cfg, err := NewConfig(Config{InputPath: input, OutputPath: t.TempDir()})
	require.NoError(t, err)

	testApp, _ := SetupAppTest(t, cfg, hclLoader())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = testApp.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestNewApp_PanicsOnBadTables(t *testing.T) {
	input := setupInput(t, `table "x" {`)
	cfg, err := NewConfig(Config{InputPath: input, OutputPath: t.TempDir()})
	require.NoError(t, err)

	require.Panics(t, func() {
		NewApp(&SafeBuffer{}, cfg, hclLoader())
	})
}

func TestHealthHandler(t *testing.T) {
	input := setupInput(t, testTables)
	cfg, err := NewConfig(Config{InputPath: input, OutputPath: t.TempDir()})
	require.NoError(t, err)
	testApp, _ := SetupAppTest(t, cfg, hclLoader())

	rec := httptest.NewRecorder()
	testApp.healthHandler(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK idle\n", rec.Body.String())

	testApp.stage.Store("compress")
	rec = httptest.NewRecorder()
	testApp.healthHandler(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, "OK compress\n", rec.Body.String())
}

func TestNewConfig(t *testing.T) {
	testCases := []struct {
		name      string
		cfg       Config
		expectErr bool
	}{
		{name: "minimal", cfg: Config{InputPath: "in", OutputPath: "out"}},
		{name: "missing input", cfg: Config{OutputPath: "out"}, expectErr: true},
		{name: "missing output", cfg: Config{InputPath: "in"}, expectErr: true},
		{name: "negative pattern", cfg: Config{InputPath: "in", OutputPath: "out", MaxPatternLen: -1}, expectErr: true},
		{name: "bad port", cfg: Config{InputPath: "in", OutputPath: "out", HealthcheckPort: 70000}, expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := NewConfig(tc.cfg)
			if tc.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, []string{"in"}, cfg.ConfigPaths, "tables default to the input directory")
		})
	}
}
