package output

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/vk/knitgrid/internal/sequencer"
)

// DataHeader is the header of the lookup key table.
var DataHeader = []string{"INDEX", "X", "Y", "SEMA", "SHAXIAN", "LUOLA", "DUMU", "ZHENBAN", "SIGN", "PRE_ACTION", "POST_ACTION", "CMD"}

// Transition markers of the CMD column.
const (
	MarkBoundarySwitch = "shaxian_switch"
	MarkLineSwitch     = "line_switch"
)

// DataRow returns the lookup key row of an instruction.
func DataRow(in sequencer.Instruction) []string {
	switch in.Kind {
	case sequencer.KindBoundarySwitch:
		return []string{"", "", "", "", in.Keys[sequencer.SlotBoundarySwitch], "", "", "", in.Sign, "", "", MarkBoundarySwitch}
	case sequencer.KindLineSwitch:
		return []string{"", "", "", "", in.Keys[sequencer.SlotLineSwitch], in.Keys[sequencer.SlotMarking], "", "", in.Sign, "", "", MarkLineSwitch}
	}
	c := in.Cell
	return []string{
		strconv.Itoa(in.Index),
		strconv.Itoa(in.X),
		strconv.Itoa(in.Y),
		in.Keys[sequencer.SlotSemantic],
		c.Boundary,
		c.Marking,
		c.Obstacle,
		c.Frame,
		c.Sign,
		in.Keys[sequencer.SlotPreAction],
		in.Keys[sequencer.SlotPostAction],
		"",
	}
}

// CommandHeader is the header of the resolved command table.
func CommandHeader() []string {
	header := []string{"INDEX"}
	for _, s := range sequencer.Slots {
		header = append(header, s.Column())
	}
	return header
}

// CommandRow returns the resolved command row of an instruction. The index
// column is empty for transitions.
func CommandRow(in sequencer.Instruction) []string {
	row := make([]string, 0, sequencer.NumSlots+1)
	row = append(row, indexLabel(in, ""))
	for _, s := range sequencer.Slots {
		row = append(row, in.Commands[s])
	}
	return row
}

func indexLabel(in sequencer.Instruction, transition string) string {
	if in.Transition() {
		return transition
	}
	return strconv.Itoa(in.Index)
}

// WriteDataCSV writes the lookup key table.
func WriteDataCSV(w io.Writer, instrs []sequencer.Instruction) error {
	return writeCSV(w, DataHeader, instrs, DataRow)
}

// WriteCommandCSV writes the resolved command table.
func WriteCommandCSV(w io.Writer, instrs []sequencer.Instruction) error {
	return writeCSV(w, CommandHeader(), instrs, CommandRow)
}

func writeCSV(w io.Writer, header []string, instrs []sequencer.Instruction, row func(sequencer.Instruction) []string) error {
	if _, err := w.Write(bom); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, in := range instrs {
		if err := cw.Write(row(in)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
