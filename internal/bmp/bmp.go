// Package bmp decodes the palette bitmaps every attribute layer is drawn in.
package bmp

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"sort"

	xbmp "golang.org/x/image/bmp"

	"github.com/vk/knitgrid/internal/ctxlog"
	"github.com/vk/knitgrid/internal/grid"
)

// Extension is the file extension of layer images.
const Extension = ".bmp"

// ErrNotPaletted is returned for an image that is not an 8-bit palette bitmap.
var ErrNotPaletted = errors.New("bitmap is not 8-bit palette indexed")

// Layer is a decoded layer image. Coordinates are 1-based with y = 1 the
// bottom row, the row a bitmap stores first.
type Layer struct {
	Width, Height int
	// Palette holds the distinct colours used, sorted.
	Palette []string
	colors  []string
}

// Size implements grid.ColorSource.
func (l *Layer) Size() (int, int) { return l.Width, l.Height }

// ColorAt implements grid.ColorSource. It returns the upper-case `#RRGGBB`
// colour at (x, y), or "" outside the image.
func (l *Layer) ColorAt(x, y int) string {
	if x < 1 || x > l.Width || y < 1 || y > l.Height {
		return ""
	}
	return l.colors[(y-1)*l.Width+(x-1)]
}

// Hex formats a colour as upper-case `#RRGGBB`, dropping alpha.
func Hex(c color.Color) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02X%02X%02X", r>>8, g>>8, b>>8)
}

// Decode reads a bitmap and converts it into a Layer.
func Decode(r io.Reader) (*Layer, error) {
	img, err := xbmp.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode bitmap: %w", err)
	}
	p, ok := img.(*image.Paletted)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrNotPaletted, img)
	}
	return fromPaletted(p), nil
}

func fromPaletted(p *image.Paletted) *Layer {
	b := p.Bounds()
	l := &Layer{Width: b.Dx(), Height: b.Dy()}
	l.colors = make([]string, 0, l.Width*l.Height)
	seen := make(map[string]struct{})

	// Image rows run top-down; layer rows run bottom-up.
	for y := 1; y <= l.Height; y++ {
		iy := b.Max.Y - y
		for x := 1; x <= l.Width; x++ {
			hex := Hex(p.At(b.Min.X+x-1, iy))
			l.colors = append(l.colors, hex)
			if _, ok := seen[hex]; !ok {
				seen[hex] = struct{}{}
				l.Palette = append(l.Palette, hex)
			}
		}
	}
	sort.Strings(l.Palette)
	return l
}

// DecodeFile decodes the bitmap at path.
func DecodeFile(path string) (*Layer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	l, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return l, nil
}

// LoadDir decodes the image of each layer found in dir. A layer is read from
// `<file name>.bmp` (for example `sema.bmp`) or `<layer>.bmp`; a layer with
// neither file is skipped. Any decode failure aborts the load.
func LoadDir(ctx context.Context, dir string, layers []grid.Layer) (map[grid.Layer]grid.ColorSource, error) {
	logger := ctxlog.FromContext(ctx)

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot read layer directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("layer path %s is not a directory", dir)
	}

	out := make(map[grid.Layer]grid.ColorSource, len(layers))
	for _, layer := range layers {
		path, ok := findLayerFile(dir, layer)
		if !ok {
			logger.Warn("Layer image not found, using default colour.", "layer", layer, "dir", dir)
			continue
		}
		l, err := DecodeFile(path)
		if err != nil {
			return nil, fmt.Errorf("layer %s: %w", layer, err)
		}
		logger.Debug("Layer image decoded.", "layer", layer, "file", path, "width", l.Width, "height", l.Height, "colors", len(l.Palette))
		out[layer] = l
	}
	return out, nil
}

func findLayerFile(dir string, layer grid.Layer) (string, bool) {
	for _, name := range []string{layer.FileName(), string(layer)} {
		path := filepath.Join(dir, name+Extension)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}
