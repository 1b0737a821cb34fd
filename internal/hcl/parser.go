package hcl

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/knitgrid/internal/config"
	"github.com/vk/knitgrid/internal/ctxlog"
)

// Parser is the HCL-specific implementation of the config.Parser interface.
type Parser struct{}

// NewParser creates a new HCL table parser.
func NewParser() *Parser {
	return &Parser{}
}

// fileRoot lists every top-level block a table file may hold. Anything else
// is rejected by the decoder.
type fileRoot struct {
	Tables  []*tableBlock `hcl:"table,block"`
	Program *programBlock `hcl:"program,block"`
}

type tableBlock struct {
	Name    string         `hcl:"name,label"`
	Entries hcl.Expression `hcl:"entries"`
}

type programBlock struct {
	Head *string `hcl:"head,optional"`
	Tail *string `hcl:"tail,optional"`
}

// ParseFile implements config.Parser.
func (p *Parser) ParseFile(ctx context.Context, path string) (*config.Model, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}
	return p.decode(ctx, path, hclFile.Body)
}

// ParseSource parses HCL table source held in memory; filename is used for
// diagnostics and legacy colour-file detection.
func (p *Parser) ParseSource(ctx context.Context, filename string, src []byte) (*config.Model, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL source %s: %w", filename, diags)
	}
	return p.decode(ctx, filename, hclFile.Body)
}

func (p *Parser) decode(ctx context.Context, path string, body hcl.Body) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx).With("file", path)

	var root fileRoot
	if diags := gohcl.DecodeBody(body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", path, diags)
	}

	model := config.NewModel()
	for _, table := range root.Tables {
		category := config.CanonicalCategory(path, table.Name)
		entries, err := entriesFromExpr(table.Entries)
		if err != nil {
			return nil, fmt.Errorf("%s: table %q: %w", path, table.Name, err)
		}
		for key, value := range entries {
			model.Set(category, key, value)
		}
		logger.Debug("HCL table decoded.", "table", table.Name, "category", category, "entries", len(entries))
	}

	if root.Program != nil {
		if root.Program.Head != nil {
			model.Head = strings.TrimSpace(*root.Program.Head)
		}
		if root.Program.Tail != nil {
			model.Tail = strings.TrimSpace(*root.Program.Tail)
		}
	}
	return model, nil
}
