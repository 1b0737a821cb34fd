package config

import "context"

// Resolver is a pure key lookup across named categories. Implementations
// must be total: an unknown category or key yields the empty string.
type Resolver interface {
	Resolve(category, key string) string
}

// Loader is the interface for loading lookup tables from a set of paths.
type Loader interface {
	// Load reads every table file reachable from the given paths and merges
	// them into a single model.
	Load(ctx context.Context, paths ...string) (*Model, error)
}

// Parser is the interface for a format-specific table file parser.
type Parser interface {
	// ParseFile parses a single file into a model. Category names in the
	// returned model are already canonical.
	ParseFile(ctx context.Context, path string) (*Model, error)
}
