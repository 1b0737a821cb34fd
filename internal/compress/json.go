package compress

import (
	"encoding/json"
	"fmt"
	"io"
)

type jsonNode struct {
	Line   *string `json:"line,omitempty"`
	Repeat int     `json:"repeat,omitempty"`
	Body   Stream  `json:"body,omitempty"`
}

// MarshalJSON encodes a literal as {"line": ...} and a repeat as
// {"repeat": n, "body": [...]}.
func (n Node) MarshalJSON() ([]byte, error) {
	if n.IsRepeat() {
		return json.Marshal(jsonNode{Repeat: n.Count, Body: n.Body})
	}
	line := n.Line
	return json.Marshal(jsonNode{Line: &line})
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Node) UnmarshalJSON(data []byte) error {
	var raw jsonNode
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch {
	case raw.Line != nil && raw.Repeat == 0 && raw.Body == nil:
		*n = Literal(*raw.Line)
	case raw.Line == nil && raw.Repeat > 0 && len(raw.Body) > 0:
		*n = Repeat(raw.Repeat, raw.Body)
	default:
		return fmt.Errorf("%w: node must be a line or a positive repeat with a body", ErrMalformed)
	}
	return nil
}

// MarshalJSON encodes a nil stream as an empty array.
func (s Stream) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Node(s))
}

// Document is the JSON export of an encoded program.
type Document struct {
	// Lines is the flattened length, checked on decode.
	Lines  int    `json:"lines"`
	Stream Stream `json:"stream"`
}

// EncodeJSON writes the JSON document of s.
func EncodeJSON(w io.Writer, s Stream) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Document{Lines: s.Len(), Stream: s})
}

// DecodeJSON reads a document written by EncodeJSON.
func DecodeJSON(r io.Reader) (Stream, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if got := doc.Stream.Len(); got != doc.Lines {
		return nil, fmt.Errorf("%w: document declares %d lines, stream expands to %d", ErrMalformed, doc.Lines, got)
	}
	if doc.Stream == nil {
		doc.Stream = Stream{}
	}
	return doc.Stream, nil
}
