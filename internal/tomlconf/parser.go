// Package tomlconf provides the TOML implementation of the config.Parser
// interface. Each top-level table is a lookup table; `[head_tail_cmd]`
// carries the program head and tail. Legacy section names such as `sema`
// or `shaxian_switch` are accepted.
package tomlconf

import (
	"context"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/vk/knitgrid/internal/config"
)

// Parser is the TOML-specific implementation of the config.Parser interface.
type Parser struct{}

// NewParser creates a new TOML table parser.
func NewParser() *Parser {
	return &Parser{}
}

// ParseFile implements config.Parser.
func (p *Parser) ParseFile(ctx context.Context, path string) (*config.Model, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return p.ParseSource(ctx, path, raw)
}

// ParseSource parses TOML table source held in memory.
func (p *Parser) ParseSource(ctx context.Context, filename string, src []byte) (*config.Model, error) {
	var doc map[string]any
	if err := toml.Unmarshal(stripBOM(src), &doc); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return config.FromTables(ctx, filename, doc)
}

// stripBOM drops a leading UTF-8 byte order mark, which editors on Windows
// like to prepend to table files.
func stripBOM(b []byte) []byte {
	if len(b) >= 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		return b[3:]
	}
	return b
}
