package sequencer

import (
	"github.com/vk/knitgrid/internal/config"
	"github.com/vk/knitgrid/internal/grid"
)

// Kind tells a cell visit apart from the synthetic transition instructions.
type Kind int

const (
	KindCell Kind = iota
	KindBoundarySwitch
	KindLineSwitch
)

func (k Kind) String() string {
	switch k {
	case KindCell:
		return "cell"
	case KindBoundarySwitch:
		return "boundary_switch"
	case KindLineSwitch:
		return "line_switch"
	default:
		return "unknown"
	}
}

// Slot is a command column of an instruction. The order of the constants is
// the order commands are emitted in.
type Slot int

const (
	SlotPreAction Slot = iota
	SlotObstacle
	SlotSemantic
	SlotPostAction
	SlotMarking
	SlotLineSwitch
	SlotBoundarySwitch
)

// NumSlots is the number of command columns per instruction.
const NumSlots = 7

// Slots lists every slot in emission order.
var Slots = [NumSlots]Slot{
	SlotPreAction, SlotObstacle, SlotSemantic, SlotPostAction,
	SlotMarking, SlotLineSwitch, SlotBoundarySwitch,
}

var slotInfo = [NumSlots]struct {
	category string
	column   string
	tag      string
}{
	SlotPreAction:      {config.CategoryPreAction, "PRE_ACTION_CMD", ""},
	SlotObstacle:       {config.CategoryObstacle, "DUMU_CMD", ""},
	SlotSemantic:       {config.CategorySemantic, "SEMA_CMD", ""},
	SlotPostAction:     {config.CategoryPostAction, "POST_ACTION_CMD", ""},
	SlotMarking:        {config.CategoryMarking, "LUOLA_CMD", ""},
	SlotLineSwitch:     {config.CategoryLineSwitch, "LINE_SWITCH_CMD", "[LINE_SWITCH] "},
	SlotBoundarySwitch: {config.CategoryBoundarySwitch, "SHAXIAN_SWITCH_CMD", "[SHAXIAN_SWITCH] "},
}

// Category is the lookup table the slot's command is resolved from.
func (s Slot) Category() string { return slotInfo[s].category }

// Column is the column header of the slot in the command table export.
func (s Slot) Column() string { return slotInfo[s].column }

// Tag is the marker prefixed to the slot's source label in annotated
// program listings; empty for ordinary cell commands.
func (s Slot) Tag() string { return slotInfo[s].tag }

// Instruction is one step of the generated program: either a cell visit or
// a synthetic transition. Commands and Keys are indexed by Slot; an empty
// command means "nothing for this column at this step".
type Instruction struct {
	// Index is the 1-based visit number of a cell; 0 for transitions.
	Index int
	Kind  Kind
	// X and Y locate the visited cell, or for transitions the cell that
	// triggered them (the new cell for a boundary switch, the last cell of
	// the row for a line switch).
	X, Y int
	// Cell is the visited cell; zero for transitions.
	Cell grid.Cell
	// Sign is the cell's own sign for visits and the carried sign for transitions.
	Sign     string
	Commands [NumSlots]string
	Keys     [NumSlots]string
}

// Command returns the command of a slot.
func (in Instruction) Command(s Slot) string { return in.Commands[s] }

// Transition reports whether the instruction is synthetic.
func (in Instruction) Transition() bool { return in.Kind != KindCell }

func (in *Instruction) resolve(r config.Resolver, s Slot, key string) {
	in.Keys[s] = key
	in.Commands[s] = r.Resolve(s.Category(), key)
}
