package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"golang.org/x/image/draw"
)

const (
	// DefaultColumns is the grid width of the composite
	DefaultColumns = 4

	titleBand = 64
	cellGap   = 8
)

// CompositeTitle is the heading placed above the chart grid
func CompositeTitle(charts int) string {
	return fmt.Sprintf("Institution Visual Analysis (%d Key Charts)", charts)
}

// Composite lays PNG tiles into a grid of cols columns under a title.
// Each tile is scaled into a cell of the renderer's tile size.
func (r *Renderer) Composite(tiles [][]byte, title string, cols int) ([]byte, error) {
	if len(tiles) == 0 {
		return nil, fmt.Errorf("composite needs at least one tile")
	}
	if cols <= 0 {
		cols = DefaultColumns
	}
	if cols > len(tiles) {
		cols = len(tiles)
	}
	rows := (len(tiles) + cols - 1) / cols

	cellW, cellH := r.width, r.height
	width := cols*cellW + (cols+1)*cellGap
	height := titleBand + rows*cellH + (rows+1)*cellGap

	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	drawTextCentred(canvas, title, width/2, titleBand-16, 3, titleColor)

	for i, tile := range tiles {
		img, err := png.Decode(bytes.NewReader(tile))
		if err != nil {
			return nil, fmt.Errorf("failed to decode tile %d: %w", i, err)
		}
		col, row := i%cols, i/cols
		x := cellGap + col*(cellW+cellGap)
		y := titleBand + cellGap + row*(cellH+cellGap)
		cell := image.Rect(x, y, x+cellW, y+cellH)

		if img.Bounds().Dx() == cellW && img.Bounds().Dy() == cellH {
			draw.Draw(canvas, cell, img, img.Bounds().Min, draw.Over)
			continue
		}
		draw.ApproxBiLinear.Scale(canvas, cell, img, img.Bounds(), draw.Over, nil)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
