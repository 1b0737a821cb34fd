// Package config defines the format-agnostic lookup-table model of the
// application, along with the core interfaces (Loader, Parser) for loading
// tables from various file formats.
//
// The `config.Model` is the single source of truth for the grid assembly and
// the sequencer: both only ever see it through the Resolver interface, a pure
// category/key lookup that answers with an empty string for unknown keys.
// Concrete file formats (HCL, TOML, YAML) are provided in separate packages.
package config
