package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	tileBackground = color.RGBA{R: 250, G: 250, B: 250, A: 255}
	tileBorder     = color.RGBA{R: 210, G: 210, B: 210, A: 255}
	titleColor     = color.RGBA{R: 33, G: 33, B: 33, A: 255}
	warnColor      = color.RGBA{R: 176, G: 96, B: 0, A: 255}
)

// Placeholder draws a tile with the chart title on top and a message
// centred in the body
func (r *Renderer) Placeholder(title, message string) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, r.width, r.height))
	draw.Draw(img, img.Bounds(), image.NewUniform(tileBackground), image.Point{}, draw.Src)
	drawBorder(img, tileBorder)

	drawTextCentred(img, title, img.Bounds().Dx()/2, 36, 2, titleColor)

	face := basicfont.Face7x13
	maxChars := (r.width - 40) / (face.Advance * 2)
	lines := wrap(message, maxChars)
	lineHeight := face.Height * 2
	y := r.height/2 - (len(lines)-1)*lineHeight/2
	for _, l := range lines {
		drawTextCentred(img, l, img.Bounds().Dx()/2, y, 2, warnColor)
		y += lineHeight
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func drawBorder(img *image.RGBA, c color.Color) {
	b := img.Bounds()
	u := image.NewUniform(c)
	draw.Draw(img, image.Rect(b.Min.X, b.Min.Y, b.Max.X, b.Min.Y+1), u, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(b.Min.X, b.Max.Y-1, b.Max.X, b.Max.Y), u, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(b.Min.X, b.Min.Y, b.Min.X+1, b.Max.Y), u, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(b.Max.X-1, b.Min.Y, b.Max.X, b.Max.Y), u, image.Point{}, draw.Src)
}

// drawTextCentred writes text with the 7x13 bitmap face scaled by an
// integer factor, centred on cx with its baseline at y
func drawTextCentred(dst *image.RGBA, text string, cx, y, scale int, c color.Color) {
	if text == "" {
		return
	}
	if scale < 1 {
		scale = 1
	}
	face := basicfont.Face7x13
	d := &font.Drawer{Face: face}
	w := d.MeasureString(text).Ceil()
	ascent := face.Metrics().Ascent.Ceil()
	h := face.Height

	// draw at 1x on a transparent scratch image, then scale up
	scratch := image.NewRGBA(image.Rect(0, 0, w, h))
	d.Dst = scratch
	d.Src = image.NewUniform(c)
	d.Dot = fixed.Point26_6{X: 0, Y: fixed.I(ascent)}
	d.DrawString(text)

	left := cx - w*scale/2
	top := y - ascent*scale
	target := image.Rect(left, top, left+w*scale, top+h*scale)
	draw.NearestNeighbor.Scale(dst, target, scratch, scratch.Bounds(), draw.Over, nil)
}

// wrap breaks text on spaces so no line exceeds width runes
func wrap(text string, width int) []string {
	if width < 8 {
		width = 8
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len([]rune(line))+1+len([]rune(w)) > width {
			lines = append(lines, line)
			line = w
			continue
		}
		line += " " + w
	}
	return append(lines, line)
}
