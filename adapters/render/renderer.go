// Package render draws chart outcomes to PNG. go-chart covers the pie,
// donut, column, line and scatter kinds; gonum/plot covers horizontal bars
// and the funnel. Outcomes that cannot be drawn become text tiles.
package render

import (
	"fmt"
	"image/color"
	"math"

	"github.com/wcharczuk/go-chart/v2/drawing"

	"instviz/internal/aggregate"
	"instviz/internal/charts"
	"instviz/internal/errors"
	"instviz/internal/logging"
)

const (
	DefaultWidth  = 800
	DefaultHeight = 600

	// NoDataMessage is shown for charts whose aggregate is empty
	NoDataMessage = "No data"

	maxLabelLen = 18
)

// palette is matplotlib's tab10
var palette = []drawing.Color{
	drawing.ColorFromHex("1f77b4"),
	drawing.ColorFromHex("ff7f0e"),
	drawing.ColorFromHex("2ca02c"),
	drawing.ColorFromHex("d62728"),
	drawing.ColorFromHex("9467bd"),
	drawing.ColorFromHex("8c564b"),
	drawing.ColorFromHex("e377c2"),
	drawing.ColorFromHex("7f7f7f"),
	drawing.ColorFromHex("bcbd22"),
	drawing.ColorFromHex("17becf"),
}

func seriesColor(i int) drawing.Color {
	return palette[i%len(palette)]
}

func rgba(c drawing.Color) color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// Renderer turns outcomes into PNG tiles of a fixed size
type Renderer struct {
	width  int
	height int
	logger *logging.Logger
}

// NewRenderer creates a renderer; non-positive sizes fall back to the defaults
func NewRenderer(width, height int) *Renderer {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	return &Renderer{width: width, height: height, logger: logging.DefaultLogger}
}

// WithLogger replaces the renderer's logger
func (r *Renderer) WithLogger(logger *logging.Logger) *Renderer {
	r.logger = logger
	return r
}

// Size returns the tile dimensions in pixels
func (r *Renderer) Size() (int, int) {
	return r.width, r.height
}

// Render draws one outcome. Missing outcomes and empty aggregates produce
// text tiles; an error means the drawing backend itself failed.
func (r *Renderer) Render(o charts.Outcome) ([]byte, error) {
	if o.IsMissing() {
		return r.Placeholder(o.Chart.Title, o.Message)
	}
	if o.Aggregate.Empty() {
		return r.Placeholder(o.Chart.Title, NoDataMessage)
	}

	var (
		data []byte
		err  error
	)
	switch o.Chart.Kind {
	case charts.KindPie:
		data, err = r.pie(o, false)
	case charts.KindDonut:
		data, err = r.pie(o, true)
	case charts.KindColumn:
		data, err = r.column(o)
	case charts.KindLine:
		data, err = r.line(o)
	case charts.KindScatter:
		data, err = r.scatter(o)
	case charts.KindBar:
		data, err = r.horizontalBar(o)
	case charts.KindFunnel:
		data, err = r.funnel(o)
	default:
		err = fmt.Errorf("unknown chart kind %q", o.Chart.Kind)
	}
	if err != nil {
		return nil, errors.RenderError(o.Chart.ID, err)
	}
	return data, nil
}

// Tile renders an outcome and never fails: a backend error becomes a
// placeholder carrying the error text
func (r *Renderer) Tile(o charts.Outcome) ([]byte, error) {
	data, err := r.Render(o)
	if err == nil {
		return data, nil
	}
	r.logger.Warn("[Renderer] chart %s fell back to placeholder: %v", o.Chart.ID, err)
	return r.Placeholder(o.Chart.Title, err.Error())
}

// PieLabels formats slice labels with matplotlib's %1.1f%% percentages
func PieLabels(buckets []aggregate.Bucket) []string {
	total := 0.0
	for _, b := range buckets {
		total += b.Value
	}
	out := make([]string, len(buckets))
	for i, b := range buckets {
		pct := 0.0
		if total > 0 {
			pct = b.Value / total * 100
		}
		out[i] = fmt.Sprintf("%s %1.1f%%", b.Label, pct)
	}
	return out
}

func shorten(label string) string {
	runes := []rune(label)
	if len(runes) <= maxLabelLen {
		return label
	}
	return string(runes[:maxLabelLen-1]) + "…"
}

// valueRange returns padded axis bounds that never collapse to zero width
func valueRange(values []float64, fromZero bool) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if len(values) == 0 {
		return 0, 1
	}
	if fromZero && lo > 0 {
		lo = 0
	}
	pad := (hi - lo) * 0.08
	if pad == 0 {
		pad = math.Max(math.Abs(hi)*0.1, 1)
	}
	if fromZero && lo == 0 {
		return 0, hi + pad
	}
	return lo - pad, hi + pad
}
