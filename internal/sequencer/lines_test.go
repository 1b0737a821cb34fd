package sequencer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitCommand(t *testing.T) {
	testCases := []struct {
		name string
		in   string
		want []string
	}{
		{name: "empty", in: "", want: nil},
		{name: "blank", in: "  \n\t\n", want: nil},
		{name: "single", in: "  KNIT  ", want: []string{"KNIT"}},
		{name: "multi-line", in: "A\n\n  B\r\nC ", want: []string{"A", "B", "C"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SplitCommand(tc.in))
		})
	}
}

func TestLines_ColumnOrder(t *testing.T) {
	var in Instruction
	in.Commands[SlotBoundarySwitch] = "7"
	in.Commands[SlotPostAction] = "4"
	in.Commands[SlotPreAction] = "1"
	in.Commands[SlotSemantic] = "3"
	in.Commands[SlotMarking] = "5\n5b"
	in.Commands[SlotObstacle] = "2"
	in.Commands[SlotLineSwitch] = "6"

	assert.Equal(t, []string{"1", "2", "3", "4", "5", "5b", "6", "7"}, Lines([]Instruction{in}))
}

func TestAssemble(t *testing.T) {
	var in Instruction
	in.Commands[SlotSemantic] = "KNIT"

	got := Assemble("START\n  HOME\n", []Instruction{in, in}, "")
	assert.Equal(t, []string{"START", "HOME", "KNIT", "KNIT"}, got)
}

func TestSlotMetadata(t *testing.T) {
	assert.Equal(t, "SEMA_CMD", SlotSemantic.Column())
	assert.Equal(t, "boundary_switch", SlotBoundarySwitch.Category())
	assert.Equal(t, "[LINE_SWITCH] ", SlotLineSwitch.Tag())
	assert.Empty(t, SlotObstacle.Tag())
	assert.Equal(t, "line_switch", KindLineSwitch.String())
}
