package compress

// Node is either a literal line or a repeated block. Count is zero for a
// literal.
type Node struct {
	Line  string
	Count int
	Body  Stream
}

// Stream is an encoded sequence of nodes.
type Stream []Node

// Literal returns a literal node.
func Literal(line string) Node { return Node{Line: line} }

// Repeat returns a node expanding to body repeated count times.
func Repeat(count int, body Stream) Node { return Node{Count: count, Body: body} }

// IsRepeat reports whether the node is a repeated block.
func (n Node) IsRepeat() bool { return n.Count > 0 }

// Len returns the number of lines the stream expands to.
func (s Stream) Len() int {
	total := 0
	for _, n := range s {
		if n.IsRepeat() {
			total += n.Count * n.Body.Len()
			continue
		}
		total++
	}
	return total
}

// Flatten expands every repeat, reproducing the lines the stream encodes.
func Flatten(s Stream) []string {
	return appendFlat(make([]string, 0, s.Len()), s)
}

func appendFlat(dst []string, s Stream) []string {
	for _, n := range s {
		if !n.IsRepeat() {
			dst = append(dst, n.Line)
			continue
		}
		for i := 0; i < n.Count; i++ {
			dst = appendFlat(dst, n.Body)
		}
	}
	return dst
}

// Stats summarises the shape of a stream.
type Stats struct {
	Literals int // literal nodes at any depth
	Repeats  int // repeat nodes at any depth
	Depth    int // deepest repeat nesting, 0 for a flat stream
	Lines    int // flattened length
	Encoded  int // lines of the rendered text form
}

// Stats walks the stream once.
func (s Stream) Stats() Stats {
	st := Stats{Lines: s.Len()}
	s.collect(&st, 0)
	return st
}

func (s Stream) collect(st *Stats, depth int) {
	if depth > st.Depth {
		st.Depth = depth
	}
	for _, n := range s {
		if n.IsRepeat() {
			st.Repeats++
			st.Encoded += 2
			n.Body.collect(st, depth+1)
			continue
		}
		st.Literals++
		st.Encoded++
	}
}
