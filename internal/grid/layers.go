package grid

import (
	"fmt"
	"strings"
)

// Layer names one attribute layer. Each layer is supplied as its own
// palette image and mapped to tokens through a colour table.
type Layer string

const (
	LayerSemantic Layer = "semantic"
	LayerBoundary Layer = "boundary"
	LayerMarking  Layer = "marking"
	LayerObstacle Layer = "obstacle"
	LayerFrame    Layer = "frame"
	LayerSign     Layer = "sign"
)

// Layers lists every attribute layer in cell field order.
var Layers = []Layer{LayerSemantic, LayerBoundary, LayerMarking, LayerObstacle, LayerFrame, LayerSign}

// fileNames are the image base names each layer is read from.
var fileNames = map[Layer]string{
	LayerSemantic: "sema",
	LayerBoundary: "shaxian",
	LayerMarking:  "luola",
	LayerObstacle: "dumu",
	LayerFrame:    "zhenban",
	LayerSign:     "direction",
}

// FileName returns the image base name (without extension) of the layer.
func (l Layer) FileName() string {
	if name, ok := fileNames[l]; ok {
		return name
	}
	return string(l)
}

// ColorCategory returns the colour table category of the layer.
func (l Layer) ColorCategory() string {
	return "color_" + string(l)
}

const (
	// DefaultColor is the colour assumed for every pixel of an absent layer.
	DefaultColor = "#000000"
	// UnmappedToken is the token of a colour missing from its table.
	UnmappedToken = "0"
)

// ColorSource is a decoded layer image: a colour per 1-based coordinate.
type ColorSource interface {
	Size() (width, height int)
	ColorAt(x, y int) string
}

// Resolver maps a colour of a layer to its token. It matches config.Resolver.
type Resolver interface {
	Resolve(category, key string) string
}

// lookupResolver is a Resolver that can tell a colour mapped to the empty
// token apart from a missing one.
type lookupResolver interface {
	Lookup(category, key string) (string, bool)
}

// FromLayers merges the given layer images into a grid. Every present layer
// must have the same dimensions; absent layers contribute DefaultColor at
// every coordinate. Colours are upper-cased before lookup and unmapped
// colours become UnmappedToken. A colour explicitly mapped to the empty
// string keeps it when r also implements Lookup.
func FromLayers(layers map[Layer]ColorSource, r Resolver) (*Grid, error) {
	width, height := 0, 0
	var first Layer
	for _, l := range Layers {
		src, ok := layers[l]
		if !ok || src == nil {
			continue
		}
		w, h := src.Size()
		if first == "" {
			width, height, first = w, h, l
			continue
		}
		if w != width || h != height {
			return nil, fmt.Errorf("layer %s is %dx%d but layer %s is %dx%d", l, w, h, first, width, height)
		}
	}
	if first == "" {
		return nil, fmt.Errorf("%w: no layers supplied", ErrInvalidDimensions)
	}

	g, err := New(width, height)
	if err != nil {
		return nil, err
	}

	token := func(l Layer, x, y int) string {
		color := DefaultColor
		if src, ok := layers[l]; ok && src != nil {
			color = src.ColorAt(x, y)
		}
		key := strings.ToUpper(color)
		if lr, ok := r.(lookupResolver); ok {
			if v, found := lr.Lookup(l.ColorCategory(), key); found {
				return v
			}
			return UnmappedToken
		}
		if v := r.Resolve(l.ColorCategory(), key); v != "" {
			return v
		}
		return UnmappedToken
	}

	for y := 1; y <= height; y++ {
		for x := 1; x <= width; x++ {
			cell := Cell{
				Semantic: token(LayerSemantic, x, y),
				Boundary: token(LayerBoundary, x, y),
				Marking:  token(LayerMarking, x, y),
				Obstacle: token(LayerObstacle, x, y),
				Frame:    token(LayerFrame, x, y),
				Sign:     token(LayerSign, x, y),
			}
			if err := g.Set(x, y, cell); err != nil {
				return nil, err
			}
		}
	}
	return g, nil
}
