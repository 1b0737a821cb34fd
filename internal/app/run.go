package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/vk/knitgrid/internal/archive"
	"github.com/vk/knitgrid/internal/bmp"
	"github.com/vk/knitgrid/internal/compress"
	"github.com/vk/knitgrid/internal/ctxlog"
	"github.com/vk/knitgrid/internal/grid"
	"github.com/vk/knitgrid/internal/output"
	"github.com/vk/knitgrid/internal/runindex"
	"github.com/vk/knitgrid/internal/sequencer"
)

// Result summarises a finished run.
type Result struct {
	RunID        string
	StartedAt    time.Time
	Width        int
	Height       int
	Instructions int
	Lines        []string
	Stream       compress.Stream
	Stats        compress.Stats
	// Files maps each artifact name to its size in bytes.
	Files   map[string]int64
	Archive string
}

// pipeline is the mutable state handed from one stage to the next.
type pipeline struct {
	layers map[grid.Layer]grid.ColorSource
	grid   *grid.Grid
	instrs []sequencer.Instruction
	files  []string
	result *Result
}

type artifact struct {
	name  string
	write func(io.Writer) error
}

type stage struct {
	name string
	run  func(context.Context, *pipeline) error
}

func (a *App) stages() []stage {
	stages := []stage{
		{"load-layers", a.loadLayers},
		{"build-grid", a.buildGrid},
		{"sequence", a.sequence},
		{"compress", a.compress},
		{"write", a.write},
		{"verify", a.verify},
	}
	if a.config.Archive {
		stages = append(stages, stage{"archive", a.archive})
	}
	if a.config.IndexDB != "" {
		stages = append(stages, stage{"index", a.index})
	}
	return stages
}

// Run executes the conversion pipeline. Stages run strictly in order and
// the first failure aborts the run.
func (a *App) Run(ctx context.Context) (*Result, error) {
	started := time.Now()
	runID := uuid.NewString()
	ctx = ctxlog.WithLogger(ctx, a.logger.With("run_id", runID))
	logger := ctxlog.FromContext(ctx)
	logger.Debug("App.Run method started.")

	if a.config.HealthcheckPort > 0 {
		a.startHealthcheckServer(ctx, a.config.HealthcheckPort)
		defer a.closeHealthcheckServer(ctx)
	}

	p := &pipeline{result: &Result{RunID: runID, StartedAt: started, Files: make(map[string]int64)}}
	for _, st := range a.stages() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		a.stage.Store(st.name)
		stageCtx := ctxlog.With(ctx, "stage", st.name)
		begin := time.Now()
		if err := st.run(stageCtx, p); err != nil {
			a.stage.Store("failed")
			return nil, fmt.Errorf("%s: %w", st.name, err)
		}
		ctxlog.FromContext(stageCtx).Debug("Stage finished.", "took", time.Since(begin))
	}
	a.stage.Store("done")

	r := p.result
	logger.Info("🏁 Conversion finished.",
		"size", fmt.Sprintf("%dx%d", r.Width, r.Height),
		"instructions", humanize.Comma(int64(r.Instructions)),
		"lines", humanize.Comma(int64(len(r.Lines))),
		"encoded_lines", humanize.Comma(int64(r.Stats.Encoded)),
		"took", time.Since(started).Round(time.Millisecond),
	)
	return r, nil
}

func (a *App) loadLayers(ctx context.Context, p *pipeline) error {
	layers, err := bmp.LoadDir(ctx, a.config.InputPath, grid.Layers)
	if err != nil {
		return err
	}
	if len(layers) == 0 {
		return fmt.Errorf("no layer images found in %s", a.config.InputPath)
	}
	p.layers = layers
	return nil
}

func (a *App) buildGrid(ctx context.Context, p *pipeline) error {
	g, err := grid.FromLayers(p.layers, a.tables)
	if err != nil {
		return err
	}
	p.grid = g
	p.result.Width, p.result.Height = g.Width(), g.Height()
	ctxlog.FromContext(ctx).Info("Attribute grid built.", "width", g.Width(), "height", g.Height())
	return nil
}

func (a *App) sequence(ctx context.Context, p *pipeline) error {
	instrs, err := sequencer.Sequence(p.grid, a.tables)
	if err != nil {
		return err
	}
	p.instrs = instrs
	p.result.Instructions = len(instrs)
	p.result.Lines = sequencer.Assemble(a.tables.Head, instrs, a.tables.Tail)
	ctxlog.FromContext(ctx).Debug("Instructions sequenced.", "instructions", len(instrs), "lines", len(p.result.Lines))
	return nil
}

func (a *App) compress(ctx context.Context, p *pipeline) error {
	s := compress.CompressWith(p.result.Lines, compress.Options{MaxPatternLen: a.config.MaxPatternLen})
	p.result.Stream = s
	p.result.Stats = s.Stats()
	ctxlog.FromContext(ctx).Debug("Program compressed.",
		"literals", p.result.Stats.Literals,
		"repeats", p.result.Stats.Repeats,
		"depth", p.result.Stats.Depth,
	)
	return nil
}

func (a *App) write(ctx context.Context, p *pipeline) error {
	logger := ctxlog.FromContext(ctx)
	r := p.result

	artifacts := []artifact{
		{output.DataCSV, func(w io.Writer) error { return output.WriteDataCSV(w, p.instrs) }},
		{output.CommandCSV, func(w io.Writer) error { return output.WriteCommandCSV(w, p.instrs) }},
		{output.RawProgram, func(w io.Writer) error {
			return output.WriteRawProgram(w, a.tables.Head, p.instrs, a.tables.Tail)
		}},
		{output.SimpleProgram, func(w io.Writer) error { return output.WriteSimpleProgram(w, r.Lines) }},
		{output.CompressedText, func(w io.Writer) error { return compress.Render(w, r.Stream) }},
	}
	if a.config.JSON {
		artifacts = append(artifacts, artifact{output.CompressedJSON, func(w io.Writer) error {
			return compress.EncodeJSON(w, r.Stream)
		}})
	}

	for _, wr := range artifacts {
		n, err := output.WriteFile(filepath.Join(a.config.OutputPath, wr.name), wr.write)
		if err != nil {
			return err
		}
		r.Files[wr.name] = n
		p.files = append(p.files, wr.name)
		logger.Debug("Artifact written.", "file", wr.name, "size", humanize.Bytes(uint64(n)))
	}
	logger.Info("Artifacts written.", "dir", a.config.OutputPath, "count", len(p.files))
	return nil
}

// verify decodes the written encodings and checks they expand back to the
// program lines.
func (a *App) verify(ctx context.Context, p *pipeline) error {
	logger := ctxlog.FromContext(ctx)
	lines := p.result.Lines

	f, err := os.Open(filepath.Join(a.config.OutputPath, output.CompressedText))
	if err != nil {
		return err
	}
	parsed, err := compress.Parse(f)
	f.Close()
	switch {
	case err == nil && slices.Equal(compress.Flatten(parsed), lines):
		logger.Debug("Text encoding verified.")
	case markerLike(lines):
		// A program line spelled like a marker cannot survive the text form.
		logger.Warn("Text encoding is ambiguous: program contains marker-like lines.", "error", err)
	case err != nil:
		return err
	default:
		return errors.New("text encoding does not expand to the program")
	}

	if !a.config.JSON {
		return nil
	}
	f, err = os.Open(filepath.Join(a.config.OutputPath, output.CompressedJSON))
	if err != nil {
		return err
	}
	defer f.Close()
	decoded, err := compress.DecodeJSON(f)
	if err != nil {
		return err
	}
	if !slices.Equal(compress.Flatten(decoded), lines) {
		return errors.New("JSON encoding does not expand to the program")
	}
	logger.Debug("JSON encoding verified.")
	return nil
}

func markerLike(lines []string) bool {
	for _, l := range lines {
		if l == compress.RepeatEnd || l == compress.RepeatStart || strings.HasPrefix(l, compress.RepeatStart+" ") {
			return true
		}
	}
	return false
}

func (a *App) archive(ctx context.Context, p *pipeline) error {
	path := filepath.Join(a.config.OutputPath, archive.Name(p.result.RunID))
	if err := archive.WriteBundle(path, a.config.OutputPath, p.files); err != nil {
		return err
	}
	p.result.Archive = path

	size := "unknown"
	if info, err := os.Stat(path); err == nil {
		size = humanize.Bytes(uint64(info.Size()))
	}
	ctxlog.FromContext(ctx).Info("Artifacts archived.", "file", path, "size", size)
	return nil
}

func (a *App) index(ctx context.Context, p *pipeline) error {
	idx, err := runindex.Open(a.config.IndexDB)
	if err != nil {
		return err
	}
	defer idx.Close()

	r := p.result
	ratio := 0.0
	if len(r.Lines) > 0 {
		ratio = float64(r.Stats.Encoded) / float64(len(r.Lines))
	}
	run := runindex.Run{
		ID:           r.RunID,
		StartedAt:    r.StartedAt,
		FinishedAt:   time.Now(),
		Input:        a.config.InputPath,
		Output:       a.config.OutputPath,
		Width:        r.Width,
		Height:       r.Height,
		Instructions: r.Instructions,
		Lines:        len(r.Lines),
		Nodes:        r.Stats.Literals + r.Stats.Repeats,
		Ratio:        ratio,
		Archive:      r.Archive,
	}
	if err := idx.Record(ctx, run); err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Debug("Run recorded.", "db", a.config.IndexDB, "ratio", ratio)
	return nil
}
