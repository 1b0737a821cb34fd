package output

import (
	"bufio"
	"io"
	"strings"

	"github.com/vk/knitgrid/internal/sequencer"
)

// ControlLine labels commands of transition instructions in the annotated
// listing.
const ControlLine = "CONTROL_LINE"

// WriteRawProgram writes the annotated listing: the head block, each
// command preceded by a comment naming its step and column, then the tail
// block. Empty commands are skipped.
func WriteRawProgram(w io.Writer, head string, instrs []sequencer.Instruction, tail string) error {
	bw := bufio.NewWriter(w)

	if lines := sequencer.SplitCommand(head); len(lines) > 0 {
		bw.WriteString("# [HEAD START]\n")
		writeLines(bw, lines)
		bw.WriteString("# [HEAD END]\n\n")
	}

	for _, in := range instrs {
		index := indexLabel(in, ControlLine)
		for _, s := range sequencer.Slots {
			lines := sequencer.SplitCommand(in.Commands[s])
			if len(lines) == 0 {
				continue
			}
			bw.WriteString("# INDEX: " + index + ", Source: " + s.Tag() + s.Column() + "\n")
			writeLines(bw, lines)
		}
	}

	if lines := sequencer.SplitCommand(tail); len(lines) > 0 {
		bw.WriteString("\n# [TAIL START]\n")
		writeLines(bw, lines)
		bw.WriteString("# [TAIL END]\n")
	}
	return bw.Flush()
}

// WriteSimpleProgram writes one program line per line.
func WriteSimpleProgram(w io.Writer, lines []string) error {
	bw := bufio.NewWriter(w)
	writeLines(bw, lines)
	return bw.Flush()
}

// writeLines leaves error handling to Flush: bufio.Writer keeps the first
// write error.
func writeLines(bw *bufio.Writer, lines []string) {
	bw.WriteString(strings.Join(lines, "\n"))
	if len(lines) > 0 {
		bw.WriteByte('\n')
	}
}
