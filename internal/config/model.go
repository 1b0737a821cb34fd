package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/vk/knitgrid/internal/ctxlog"
)

// Command table categories looked up by the sequencer.
const (
	CategoryPreAction      = "pre_action"
	CategoryPostAction     = "post_action"
	CategoryObstacle       = "obstacle"
	CategorySemantic       = "semantic"
	CategoryMarking        = "marking"
	CategoryLineSwitch     = "line_switch"
	CategoryBoundarySwitch = "boundary_switch"
)

// ProgramSection is the table holding the head and tail program text.
const ProgramSection = "head_tail_cmd"

// colorPrefix namespaces the per-layer colour tables.
const colorPrefix = "color_"

// colorFileName is the legacy file whose sections are colour tables.
const colorFileName = "color_to_number"

// legacyNames maps the table and layer names used by older table files to
// their canonical names.
var legacyNames = map[string]string{
	"sema":           "semantic",
	"shaxian":        "boundary",
	"luola":          "marking",
	"dumu":           "obstacle",
	"zhenban":        "frame",
	"direction":      "sign",
	"pre":            CategoryPreAction,
	"post":           CategoryPostAction,
	"ls":             CategoryLineSwitch,
	"ss":             CategoryBoundarySwitch,
	"shaxian_switch": CategoryBoundarySwitch,
}

// ColorCategory returns the category of the colour table for a layer.
func ColorCategory(layer string) string {
	return colorPrefix + CanonicalName(layer)
}

// CanonicalName maps a legacy table or layer name to its canonical form.
// Unknown names are returned lower-cased and otherwise unchanged.
func CanonicalName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if canonical, ok := legacyNames[name]; ok {
		return canonical
	}
	return name
}

// CanonicalCategory returns the category a table section of the given file
// belongs to. Sections of the legacy colour file are colour tables, a
// `color_<layer>` section is normalised, everything else goes through
// CanonicalName.
func CanonicalCategory(file, section string) string {
	base := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	if strings.EqualFold(base, colorFileName) {
		return ColorCategory(section)
	}
	lower := strings.ToLower(strings.TrimSpace(section))
	if strings.HasPrefix(lower, colorPrefix) {
		return ColorCategory(strings.TrimPrefix(lower, colorPrefix))
	}
	return CanonicalName(section)
}

// Model is the unified, format-agnostic representation of every lookup table
// plus the program text framing the generated instructions.
type Model struct {
	Tables map[string]map[string]string
	Head   string
	Tail   string
}

// NewModel returns an empty model.
func NewModel() *Model {
	return &Model{Tables: make(map[string]map[string]string)}
}

// Resolve implements Resolver. It never fails: a miss is the empty string.
func (m *Model) Resolve(category, key string) string {
	if m == nil {
		return ""
	}
	return m.Tables[category][key]
}

// Lookup is Resolve with an explicit found flag.
func (m *Model) Lookup(category, key string) (string, bool) {
	if m == nil {
		return "", false
	}
	v, ok := m.Tables[category][key]
	return v, ok
}

// Set stores a single entry, creating the category on first use.
func (m *Model) Set(category, key, value string) {
	if m.Tables == nil {
		m.Tables = make(map[string]map[string]string)
	}
	table, ok := m.Tables[category]
	if !ok {
		table = make(map[string]string)
		m.Tables[category] = table
	}
	table[key] = value
}

// Categories returns the sorted category names present in the model.
func (m *Model) Categories() []string {
	names := make([]string, 0, len(m.Tables))
	for name := range m.Tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the total number of entries across all tables.
func (m *Model) Len() int {
	n := 0
	for _, table := range m.Tables {
		n += len(table)
	}
	return n
}

// Merge copies every entry of other into m. Entries of other win; each
// override is logged at debug level. Non-empty program text of other
// replaces the current one.
func (m *Model) Merge(ctx context.Context, other *Model) {
	if other == nil {
		return
	}
	logger := ctxlog.FromContext(ctx)
	for _, category := range other.Categories() {
		for key, value := range other.Tables[category] {
			if prev, ok := m.Lookup(category, key); ok && prev != value {
				logger.Debug("Table entry overridden.", "category", category, "key", key)
			}
			m.Set(category, key, value)
		}
	}
	if other.Head != "" {
		m.Head = other.Head
	}
	if other.Tail != "" {
		m.Tail = other.Tail
	}
}

// Stringify converts a scalar decoded from a table file into its table
// string. Integers are accepted because colour tables map to numbers.
func Stringify(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	case int:
		return strconv.Itoa(val), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case uint64:
		return strconv.FormatUint(val, 10), nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(val), nil
	default:
		return "", fmt.Errorf("unsupported value type %T", v)
	}
}

// FromTables builds a model from a generic two-level document, the shape
// TOML and YAML table files decode into: every top-level mapping is a table,
// except the program section which carries `head` and `tail`. Top-level
// scalars are ignored.
func FromTables(ctx context.Context, file string, doc map[string]any) (*Model, error) {
	logger := ctxlog.FromContext(ctx)
	model := NewModel()

	sections := make([]string, 0, len(doc))
	for name := range doc {
		sections = append(sections, name)
	}
	sort.Strings(sections)

	for _, section := range sections {
		entries, ok := asMapping(doc[section])
		if !ok {
			logger.Debug("Ignoring top-level scalar in table file.", "file", file, "key", section)
			continue
		}

		if strings.EqualFold(section, ProgramSection) {
			head, err := Stringify(entries["head"])
			if err != nil {
				return nil, fmt.Errorf("%s: %s.head: %w", file, section, err)
			}
			tail, err := Stringify(entries["tail"])
			if err != nil {
				return nil, fmt.Errorf("%s: %s.tail: %w", file, section, err)
			}
			model.Head = strings.TrimSpace(head)
			model.Tail = strings.TrimSpace(tail)
			continue
		}

		category := CanonicalCategory(file, section)
		for key, raw := range entries {
			value, err := Stringify(raw)
			if err != nil {
				return nil, fmt.Errorf("%s: %s.%s: %w", file, section, key, err)
			}
			model.Set(category, key, value)
		}
	}
	return model, nil
}

// asMapping normalises the mapping types produced by the TOML and YAML decoders.
func asMapping(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	default:
		return nil, false
	}
}
