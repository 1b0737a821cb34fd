package grid

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDimensions is returned for a grid whose width or height is not positive.
	ErrInvalidDimensions = errors.New("grid dimensions must be positive")
	// ErrMissingCell is returned when a coordinate inside the grid has no cell.
	ErrMissingCell = errors.New("grid cell is not defined")
	// ErrOutOfRange is returned for a coordinate outside the grid.
	ErrOutOfRange = errors.New("coordinate is outside the grid")
)

// Cell is the resolved attribute bundle of one coordinate. Every field is an
// opaque token produced upstream.
type Cell struct {
	Semantic string // semantic class
	Boundary string // boundary-line class
	Marking  string // secondary marking class
	Obstacle string // blocking/obstacle class
	Frame    string // polarity/orientation frame
	Sign     string // directional sign, conventionally "+" or "-"
}

// Grid is the materialised attribute table.
type Grid struct {
	width, height int
	cells         []Cell
	defined       []bool
}

// New creates an empty grid. Every cell must be Set before the grid validates.
func New(width, height int) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	return &Grid{
		width:   width,
		height:  height,
		cells:   make([]Cell, width*height),
		defined: make([]bool, width*height),
	}, nil
}

// Width returns the declared width.
func (g *Grid) Width() int { return g.width }

// Height returns the declared height.
func (g *Grid) Height() int { return g.height }

func (g *Grid) offset(x, y int) (int, error) {
	if x < 1 || x > g.width || y < 1 || y > g.height {
		return 0, fmt.Errorf("%w: (%d,%d) in %dx%d", ErrOutOfRange, x, y, g.width, g.height)
	}
	return (y-1)*g.width + (x - 1), nil
}

// Set defines the cell at (x, y).
func (g *Grid) Set(x, y int, c Cell) error {
	i, err := g.offset(x, y)
	if err != nil {
		return err
	}
	g.cells[i] = c
	g.defined[i] = true
	return nil
}

// At returns the cell at (x, y).
func (g *Grid) At(x, y int) (Cell, error) {
	i, err := g.offset(x, y)
	if err != nil {
		return Cell{}, err
	}
	if !g.defined[i] {
		return Cell{}, fmt.Errorf("%w: (%d,%d)", ErrMissingCell, x, y)
	}
	return g.cells[i], nil
}

// Validate checks the grid invariants: positive dimensions and a cell for
// every coordinate of the rectangle. The first violation is returned.
func (g *Grid) Validate() error {
	if g == nil || g.width <= 0 || g.height <= 0 {
		w, h := 0, 0
		if g != nil {
			w, h = g.width, g.height
		}
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, w, h)
	}
	for y := 1; y <= g.height; y++ {
		for x := 1; x <= g.width; x++ {
			if _, err := g.At(x, y); err != nil {
				return err
			}
		}
	}
	return nil
}
