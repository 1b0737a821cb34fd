package sequencer

import "strings"

// SplitCommand breaks a possibly multi-line command into trimmed, non-empty
// program lines.
func SplitCommand(cmd string) []string {
	var lines []string
	for _, line := range strings.Split(cmd, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// Lines flattens the instructions into program lines: every non-empty slot
// in emission and column order.
func Lines(instructions []Instruction) []string {
	var lines []string
	for _, in := range instructions {
		for _, s := range Slots {
			lines = append(lines, SplitCommand(in.Commands[s])...)
		}
	}
	return lines
}

// Assemble frames the instruction lines with the head and tail program text.
func Assemble(head string, instructions []Instruction, tail string) []string {
	lines := SplitCommand(head)
	lines = append(lines, Lines(instructions)...)
	return append(lines, SplitCommand(tail)...)
}
