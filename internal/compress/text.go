package compress

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Markers of the text form.
const (
	RepeatStart = "RS"
	RepeatEnd   = "RE"
)

// ErrMalformed is returned when an encoded stream cannot be decoded.
var ErrMalformed = errors.New("malformed encoded stream")

// Render writes the text form of s: literals as they are, each repeat as
// `RS <count>`, its body, then `RE`, one item per line.
func Render(w io.Writer, s Stream) error {
	bw := bufio.NewWriter(w)
	if err := render(bw, s); err != nil {
		return err
	}
	return bw.Flush()
}

func render(w *bufio.Writer, s Stream) error {
	for _, n := range s {
		if !n.IsRepeat() {
			if _, err := w.WriteString(n.Line + "\n"); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(w, "%s %d\n", RepeatStart, n.Count); err != nil {
			return err
		}
		if err := render(w, n.Body); err != nil {
			return err
		}
		if _, err := w.WriteString(RepeatEnd + "\n"); err != nil {
			return err
		}
	}
	return nil
}

// Parse reads the text form back. Lines are trimmed and blank lines skipped.
// A literal that reads exactly like a marker cannot be told apart from one
// and is parsed as a marker.
func Parse(r io.Reader) (Stream, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	// stack[0] is the top level; each open repeat pushes its body.
	stack := []Stream{{}}
	counts := []int{}
	lineNo := 0

	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		switch {
		case line == RepeatEnd:
			if len(counts) == 0 {
				return nil, fmt.Errorf("%w: line %d: %s without %s", ErrMalformed, lineNo, RepeatEnd, RepeatStart)
			}
			body := stack[len(stack)-1]
			if len(body) == 0 {
				return nil, fmt.Errorf("%w: line %d: empty repeat body", ErrMalformed, lineNo)
			}
			count := counts[len(counts)-1]
			stack, counts = stack[:len(stack)-1], counts[:len(counts)-1]
			stack[len(stack)-1] = append(stack[len(stack)-1], Repeat(count, body))

		case isRepeatStart(line):
			fields := strings.Fields(line)
			if len(fields) != 2 {
				return nil, fmt.Errorf("%w: line %d: expected %q", ErrMalformed, lineNo, RepeatStart+" <count>")
			}
			count, err := strconv.Atoi(fields[1])
			if err != nil || count < 1 {
				return nil, fmt.Errorf("%w: line %d: bad repeat count %q", ErrMalformed, lineNo, fields[1])
			}
			stack = append(stack, Stream{})
			counts = append(counts, count)

		default:
			stack[len(stack)-1] = append(stack[len(stack)-1], Literal(line))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(counts) > 0 {
		return nil, fmt.Errorf("%w: %d unterminated repeat(s)", ErrMalformed, len(counts))
	}
	return stack[0], nil
}

func isRepeatStart(line string) bool {
	return line == RepeatStart || strings.HasPrefix(line, RepeatStart+" ") || strings.HasPrefix(line, RepeatStart+"\t")
}
