package render

import (
	"bytes"
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"instviz/internal/charts"
)

// pngDPI is the resolution vgimg uses for "png" writers
const pngDPI = 96

func (r *Renderer) writePlot(p *plot.Plot) ([]byte, error) {
	w := vg.Length(r.width) * vg.Inch / pngDPI
	h := vg.Length(r.height) * vg.Inch / pngDPI

	writer, err := p.WriterTo(w, h, "png")
	if err != nil {
		return nil, fmt.Errorf("failed to create plot writer: %w", err)
	}
	var buf bytes.Buffer
	if _, err := writer.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write plot: %w", err)
	}
	return buf.Bytes(), nil
}

// horizontalBar draws buckets top-down in their aggregate order
func (r *Renderer) horizontalBar(o charts.Outcome) ([]byte, error) {
	buckets := o.Aggregate.Buckets
	n := len(buckets)

	// nominal Y positions count upwards, so the first bucket goes last
	values := make(plotter.Values, n)
	names := make([]string, n)
	for i, b := range buckets {
		values[n-1-i] = b.Value
		names[n-1-i] = shorten(b.Label)
	}

	p := plot.New()
	p.Title.Text = o.Chart.Title
	p.X.Label.Text = o.Chart.XLabel
	p.X.Min = 0

	bars, err := plotter.NewBarChart(values, vg.Points(float64(r.height)*0.5/float64(n+1)))
	if err != nil {
		return nil, fmt.Errorf("failed to create bar chart: %w", err)
	}
	bars.Horizontal = true
	bars.Color = rgba(seriesColor(0))
	bars.LineStyle.Width = 0

	p.Add(plotter.NewGrid(), bars)
	p.NominalY(names...)
	return r.writePlot(p)
}

// funnelHalfHeight is the vertical extent of one stage around its centre
const funnelHalfHeight = 0.4

// funnel stacks centred trapezoids, widest first. Each stage narrows to the
// width of the next one; the last stage is a rectangle.
func (r *Renderer) funnel(o charts.Outcome) ([]byte, error) {
	buckets := o.Aggregate.Buckets
	n := len(buckets)

	p := plot.New()
	p.Title.Text = o.Chart.Title
	p.X.Label.Text = o.Chart.XLabel
	p.HideX()

	names := make([]string, n)
	centres := make(plotter.XYs, n)
	texts := make([]string, n)

	for i, b := range buckets {
		y := float64(n - 1 - i)
		top := b.Value / 2
		bottom := top
		if i+1 < n {
			bottom = buckets[i+1].Value / 2
		}

		stage, err := plotter.NewPolygon(plotter.XYs{
			{X: -top, Y: y + funnelHalfHeight},
			{X: top, Y: y + funnelHalfHeight},
			{X: bottom, Y: y - funnelHalfHeight},
			{X: -bottom, Y: y - funnelHalfHeight},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create funnel stage %d: %w", i, err)
		}
		stage.Color = rgba(seriesColor(i))
		stage.LineStyle.Width = 0
		p.Add(stage)

		names[n-1-i] = shorten(b.Label)
		centres[i] = plotter.XY{X: 0, Y: y}
		texts[i] = fmt.Sprintf("%.0f", b.Value)
	}

	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: centres, Labels: texts})
	if err != nil {
		return nil, fmt.Errorf("failed to create funnel labels: %w", err)
	}
	p.Add(labels)
	p.NominalY(names...)
	return r.writePlot(p)
}
