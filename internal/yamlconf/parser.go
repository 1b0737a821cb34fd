// Package yamlconf provides the YAML implementation of the config.Parser
// interface, using the same document shape as the TOML tables.
package yamlconf

import (
	"context"
	"fmt"
	"os"

	"github.com/vk/knitgrid/internal/config"
	"gopkg.in/yaml.v3"
)

// Parser is the YAML-specific implementation of the config.Parser interface.
type Parser struct{}

// NewParser creates a new YAML table parser.
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

// ParseSource parses YAML table source held in memory.
func (p *Parser) ParseSource(ctx context.Context, filename string, src []byte) (*config.Model, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(src, &root); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	if len(root.Content) == 0 {
		return config.NewModel(), nil
	}
	doc, err := documentFromNode(root.Content[0])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return config.FromTables(ctx, filename, doc)
}

// documentFromNode builds the two-level table document from the node tree.
// Keys and scalar values keep their source text, so `+11` and `01` are not
// read as the integers 11 and 1.
func documentFromNode(n *yaml.Node) (map[string]any, error) {
	n = resolveAlias(n)
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: top level must be a mapping", n.Line)
	}
	doc := make(map[string]any, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, value := n.Content[i], resolveAlias(n.Content[i+1])
		if value.Kind != yaml.MappingNode {
			v, err := scalarValue(value)
			if err != nil {
				return nil, err
			}
			doc[key.Value] = v
			continue
		}
		entries := make(map[string]any, len(value.Content)/2)
		for j := 0; j+1 < len(value.Content); j += 2 {
			v, err := scalarValue(resolveAlias(value.Content[j+1]))
			if err != nil {
				return nil, err
			}
			entries[value.Content[j].Value] = v
		}
		doc[key.Value] = entries
	}
	return doc, nil
}

// scalarValue returns the source text of a scalar node. Other nodes are
// decoded generically and left for config.Stringify to reject.
func scalarValue(n *yaml.Node) (any, error) {
	if n.Kind == yaml.ScalarNode {
		if n.ShortTag() == "!!null" {
			return nil, nil
		}
		return n.Value, nil
	}
	var v any
	if err := n.Decode(&v); err != nil {
		return nil, fmt.Errorf("line %d: %w", n.Line, err)
	}
	return v, nil
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}
