package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vk/knitgrid/internal/ctxlog"
	"github.com/vk/knitgrid/internal/fsutil"
)

// FileLoader is the Loader implementation that discovers table files on
// disk and dispatches each one to the parser registered for its extension.
type FileLoader struct {
	parsers map[string]Parser
}

// NewFileLoader creates a loader for the given extension-to-parser mapping.
// Extensions include the leading dot and are matched case-insensitively.
func NewFileLoader(parsers map[string]Parser) *FileLoader {
	normalised := make(map[string]Parser, len(parsers))
	for ext, p := range parsers {
		normalised[strings.ToLower(ext)] = p
	}
	return &FileLoader{parsers: normalised}
}

// Extensions returns the registered extensions in sorted order.
func (l *FileLoader) Extensions() []string {
	exts := make([]string, 0, len(l.parsers))
	for ext := range l.parsers {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Load implements Loader. Files are merged in lexical path order so that a
// later file overrides the entries of an earlier one. A path that does not
// exist is not an error; a file that fails to parse is.
func (l *FileLoader) Load(ctx context.Context, paths ...string) (*Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Table loader started.", "path_count", len(paths))

	files, missing, err := fsutil.CollectFiles(paths, l.Extensions()...)
	if err != nil {
		return nil, err
	}
	for _, p := range missing {
		logger.Warn("Table path does not exist, skipping.", "path", p)
	}
	logger.Debug("Discovered table files.", "count", len(files))

	model := NewModel()
	for _, file := range files {
		parser := l.parsers[strings.ToLower(filepath.Ext(file))]
		fileModel, err := parser.ParseFile(ctx, file)
		if err != nil {
			return nil, fmt.Errorf("failed to load table file %s: %w", file, err)
		}
		logger.Debug("Table file parsed.", "file", file, "entries", fileModel.Len())
		model.Merge(ctx, fileModel)
	}

	logger.Debug("Table loading complete.", "files", len(files), "categories", len(model.Tables), "entries", model.Len())
	return model, nil
}
