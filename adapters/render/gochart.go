package render

import (
	"bytes"

	chart "github.com/wcharczuk/go-chart/v2"

	"instviz/internal/charts"
)

func (r *Renderer) background() chart.Style {
	return chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 24, Bottom: 16}}
}

func (r *Renderer) pie(o charts.Outcome, donut bool) ([]byte, error) {
	buckets := o.Aggregate.Buckets
	labels := PieLabels(buckets)
	values := make([]chart.Value, len(buckets))
	for i, b := range buckets {
		values[i] = chart.Value{
			Label: labels[i],
			Value: b.Value,
			Style: chart.Style{FillColor: seriesColor(i), StrokeColor: chart.ColorWhite, FontSize: 10},
		}
	}

	var buf bytes.Buffer
	if donut {
		dc := chart.DonutChart{
			Title:      o.Chart.Title,
			Width:      r.width,
			Height:     r.height,
			Background: r.background(),
			Values:     values,
		}
		if err := dc.Render(chart.PNG, &buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	pc := chart.PieChart{
		Title:      o.Chart.Title,
		Width:      r.width,
		Height:     r.height,
		Background: r.background(),
		Values:     values,
	}
	if err := pc.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *Renderer) column(o charts.Outcome) ([]byte, error) {
	buckets := o.Aggregate.Buckets
	bars := make([]chart.Value, len(buckets))
	vals := make([]float64, len(buckets))
	for i, b := range buckets {
		vals[i] = b.Value
		bars[i] = chart.Value{
			Label: shorten(b.Label),
			Value: b.Value,
			Style: chart.Style{FillColor: seriesColor(0), StrokeColor: seriesColor(0)},
		}
	}

	// bars and gaps share the plot width evenly
	slot := (r.width - 120) / (2*len(bars) + 1)
	if slot < 4 {
		slot = 4
	}
	lo, hi := valueRange(vals, true)

	bc := chart.BarChart{
		Title:      o.Chart.Title,
		Width:      r.width,
		Height:     r.height,
		Background: chart.Style{Padding: chart.Box{Top: 48, Left: 16, Right: 16, Bottom: 24}},
		BarWidth:   slot,
		BarSpacing: slot,
		XAxis:      chart.Style{FontSize: 8},
		YAxis: chart.YAxis{
			Name:  o.Chart.YLabel,
			Range: &chart.ContinuousRange{Min: lo, Max: hi},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := bc.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// categoryAxis lays category labels at x = 1..n
func categoryAxis(name string, labels []string) ([]float64, chart.XAxis) {
	n := len(labels)
	xs := make([]float64, n)
	ticks := make([]chart.Tick, 0, n+1)
	for i, l := range labels {
		xs[i] = float64(i + 1)
		ticks = append(ticks, chart.Tick{Value: xs[i], Label: shorten(l)})
	}
	maxR := float64(n) + 0.5
	if n == 1 {
		maxR = 2
		ticks = append(ticks, chart.Tick{Value: 2, Label: ""})
	}
	return xs, chart.XAxis{
		Name:  name,
		Style: chart.Style{FontSize: 8},
		Ticks: ticks,
		Range: &chart.ContinuousRange{Min: 0.5, Max: maxR},
	}
}

func (r *Renderer) line(o charts.Outcome) ([]byte, error) {
	buckets := o.Aggregate.Buckets
	labels := make([]string, len(buckets))
	ys := make([]float64, len(buckets))
	for i, b := range buckets {
		labels[i] = b.Label
		ys[i] = b.Value
	}
	xs, xAxis := categoryAxis(o.Chart.XLabel, labels)
	lo, hi := valueRange(ys, false)

	ch := chart.Chart{
		Title:      o.Chart.Title,
		Width:      r.width,
		Height:     r.height,
		Background: r.background(),
		XAxis:      xAxis,
		YAxis:      chart.YAxis{Name: o.Chart.YLabel, Range: &chart.ContinuousRange{Min: lo, Max: hi}},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name: o.Chart.YLabel,
				Style: chart.Style{
					StrokeColor: seriesColor(0),
					StrokeWidth: 2,
					DotColor:    seriesColor(0),
					DotWidth:    4,
				},
				XValues: xs,
				YValues: ys,
			},
		},
	}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *Renderer) scatter(o charts.Outcome) ([]byte, error) {
	points := o.Aggregate.Points
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i], ys[i] = p.X, p.Y
	}
	xlo, xhi := valueRange(xs, false)
	ylo, yhi := valueRange(ys, false)

	ch := chart.Chart{
		Title:      o.Chart.Title,
		Width:      r.width,
		Height:     r.height,
		Background: r.background(),
		XAxis:      chart.XAxis{Name: o.Chart.XLabel, Range: &chart.ContinuousRange{Min: xlo, Max: xhi}},
		YAxis:      chart.YAxis{Name: o.Chart.YLabel, Range: &chart.ContinuousRange{Min: ylo, Max: yhi}},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Style: chart.Style{
					StrokeWidth: chart.Disabled,
					DotWidth:    5,
					DotColor:    seriesColor(0).WithAlpha(180),
				},
				XValues: xs,
				YValues: ys,
			},
		},
	}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
