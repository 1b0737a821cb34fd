package sequencer

import (
	"fmt"

	"github.com/vk/knitgrid/internal/config"
	"github.com/vk/knitgrid/internal/grid"
)

// Initial values of the carried state. They are the first enumerated frame
// and sign values of the lookup tables.
const (
	InitialFrame = "1"
	InitialSign  = "+"
)

// State is the transition state carried from one cell visit to the next over
// the whole traversal. The zero value has no boundary class; use NewState for
// the initial frame and sign.
type State struct {
	Boundary    string
	HasBoundary bool
	Frame       string
	Sign        string
}

// NewState returns the state the traversal starts from.
func NewState() State {
	return State{Frame: InitialFrame, Sign: InitialSign}
}

// Order returns the x coordinates row y visits, in visit order: odd rows
// right to left, even rows left to right.
func Order(y, width int) []int {
	xs := make([]int, 0, width)
	if y%2 != 0 {
		for x := width; x >= 1; x-- {
			xs = append(xs, x)
		}
		return xs
	}
	for x := 1; x <= width; x++ {
		xs = append(xs, x)
	}
	return xs
}

// Visit processes one cell against the carried state. It returns the next
// state and the instructions the visit emits: an optional boundary switch
// followed by the cell instruction.
func Visit(st State, d grid.Cell, x, y, index int, r config.Resolver) (State, []Instruction) {
	out := make([]Instruction, 0, 2)

	if st.HasBoundary && st.Boundary != d.Boundary {
		sw := Instruction{Kind: KindBoundarySwitch, X: x, Y: y, Sign: st.Sign}
		sw.resolve(r, SlotBoundarySwitch, st.Sign+st.Boundary+d.Boundary)
		out = append(out, sw)
	}

	frameKey := st.Sign + st.Frame + d.Frame
	in := Instruction{Index: index, Kind: KindCell, X: x, Y: y, Cell: d, Sign: d.Sign}
	in.resolve(r, SlotPreAction, frameKey)
	in.resolve(r, SlotObstacle, d.Obstacle)
	in.resolve(r, SlotSemantic, d.Sign+d.Semantic)
	in.resolve(r, SlotPostAction, frameKey)
	out = append(out, in)

	return State{Boundary: d.Boundary, HasBoundary: true, Frame: d.Frame, Sign: d.Sign}, out
}

// LineSwitch builds the instruction emitted between two rows. last is the
// final cell visited in the finished row, at (x, y); next is the first cell
// the following row visits.
func LineSwitch(st State, last grid.Cell, x, y int, next grid.Cell, r config.Resolver) Instruction {
	in := Instruction{Kind: KindLineSwitch, X: x, Y: y, Sign: st.Sign}
	in.resolve(r, SlotMarking, last.Marking)
	in.resolve(r, SlotLineSwitch, st.Sign+last.Boundary+next.Boundary)
	return in
}

// Sequence walks the grid and returns every instruction in emission order.
// A structurally invalid grid fails before anything is emitted; unresolved
// lookups never fail and leave the command empty.
func Sequence(g *grid.Grid, r config.Resolver) ([]Instruction, error) {
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("cannot sequence grid: %w", err)
	}

	width, height := g.Width(), g.Height()
	out := make([]Instruction, 0, width*height+height)
	st := NewState()
	index := 0

	for y := 1; y <= height; y++ {
		xs := Order(y, width)
		for _, x := range xs {
			d, err := g.At(x, y)
			if err != nil {
				return nil, err
			}
			index++
			var emitted []Instruction
			st, emitted = Visit(st, d, x, y, index, r)
			out = append(out, emitted...)
		}

		if y == height {
			break
		}
		lastX := xs[len(xs)-1]
		last, err := g.At(lastX, y)
		if err != nil {
			return nil, err
		}
		next, err := g.At(Order(y+1, width)[0], y+1)
		if err != nil {
			return nil, err
		}
		out = append(out, LineSwitch(st, last, lastX, y, next, r))
	}
	return out, nil
}
