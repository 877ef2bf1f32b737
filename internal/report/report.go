// Package report assembles evaluated charts, rendered tiles and a table
// preview into a Report, and keeps finished reports for the dashboard.
package report

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"instviz/adapters/render"
	"instviz/domain/core"
	"instviz/domain/institution"
	"instviz/internal/aggregate"
	"instviz/internal/charts"
	"instviz/internal/errors"
	"instviz/internal/logging"
)

// PreviewRows is how many leading rows a report keeps for display
const PreviewRows = 5

// ChartResult is one chart of a report
type ChartResult struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	Kind      charts.Kind      `json:"kind"`
	Missing   []string         `json:"missing,omitempty"`
	Message   string           `json:"message,omitempty"`
	Aggregate aggregate.Result `json:"aggregate"`

	// PNG is only populated on freshly built reports
	PNG []byte `json:"-"`
}

// IsMissing reports whether the chart lacked a required column
func (c ChartResult) IsMissing() bool {
	return len(c.Missing) > 0
}

// Outcome rebuilds the chart outcome so the tile can be drawn again
func (c ChartResult) Outcome() charts.Outcome {
	chart, ok := charts.Lookup(c.ID)
	if !ok {
		chart = charts.Chart{ID: c.ID, Title: c.Title, Kind: c.Kind}
	}
	return charts.Outcome{
		Chart:     chart,
		Missing:   c.Missing,
		Message:   c.Message,
		Aggregate: c.Aggregate,
	}
}

// Report is the result of analysing one spreadsheet
type Report struct {
	ID          core.ReportID       `json:"id"`
	Source      string              `json:"source"`
	Fingerprint core.Hash           `json:"fingerprint,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	Headers     []string            `json:"headers"`
	RowCount    int                 `json:"row_count"`
	Preview     [][]string          `json:"preview"`
	Summaries   []aggregate.Summary `json:"summaries,omitempty"`
	Charts      []ChartResult       `json:"charts"`
	Warnings    []string            `json:"warnings,omitempty"`

	// Composite is only populated on freshly built reports
	Composite []byte `json:"-"`
}

// Chart finds a chart of the report by id
func (r *Report) Chart(id string) (ChartResult, bool) {
	for _, c := range r.Charts {
		if c.ID == id {
			return c, true
		}
	}
	return ChartResult{}, false
}

// MissingCharts returns the charts skipped for absent columns
func (r *Report) MissingCharts() []ChartResult {
	var out []ChartResult
	for _, c := range r.Charts {
		if c.IsMissing() {
			out = append(out, c)
		}
	}
	return out
}

// HasImages reports whether tiles are attached
func (r *Report) HasImages() bool {
	if len(r.Composite) == 0 {
		return false
	}
	for _, c := range r.Charts {
		if len(c.PNG) == 0 {
			return false
		}
	}
	return true
}

// Builder turns a table into a report
type Builder struct {
	renderer *render.Renderer
	workers  int
	columns  int
	logger   *logging.Logger
}

// NewBuilder creates a builder rendering with r on at most workers goroutines
func NewBuilder(r *render.Renderer, workers, columns int) *Builder {
	if workers < 1 {
		workers = 1
	}
	if columns < 1 {
		columns = render.DefaultColumns
	}
	return &Builder{renderer: r, workers: workers, columns: columns, logger: logging.DefaultLogger}
}

// WithLogger replaces the builder's logger
func (b *Builder) WithLogger(logger *logging.Logger) *Builder {
	b.logger = logger
	return b
}

// Build evaluates the chart battery against t and renders every tile
func (b *Builder) Build(ctx context.Context, t *institution.Table, source string) (*Report, error) {
	start := time.Now()
	rep := &Report{
		ID:        core.NewReportID(),
		Source:    source,
		CreatedAt: start.UTC(),
		Headers:   append([]string(nil), t.Headers...),
		RowCount:  t.Len(),
	}
	for _, row := range t.Head(PreviewRows) {
		rep.Preview = append(rep.Preview, t.Cells(row))
	}
	for _, col := range []string{institution.ColTotalStudents, institution.ColAverageMarks} {
		if s, ok := aggregate.Describe(t, col); ok {
			rep.Summaries = append(rep.Summaries, s)
		}
	}

	for _, o := range charts.EvaluateAll(t) {
		rep.Charts = append(rep.Charts, ChartResult{
			ID:        o.Chart.ID,
			Title:     o.Chart.Title,
			Kind:      o.Chart.Kind,
			Missing:   o.Missing,
			Message:   o.Message,
			Aggregate: o.Aggregate,
		})
		if o.IsMissing() {
			b.logger.Info("[Builder] %s: chart %s skipped: %s", source, o.Chart.ID, o.Message)
		}
	}

	if err := b.Render(ctx, rep); err != nil {
		return nil, err
	}

	b.logger.Info("[Builder] report %s built from %s: %d rows, %d/%d charts in %s",
		rep.ID, source, rep.RowCount, len(rep.Charts)-len(rep.MissingCharts()), len(rep.Charts),
		time.Since(start).Round(time.Millisecond))
	return rep, nil
}

// Render draws every tile and the composite of a report in place. Reports
// coming back from a Store need this before their images can be served.
func (b *Builder) Render(ctx context.Context, rep *Report) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)

	tiles := make([][]byte, len(rep.Charts))
	for i := range rep.Charts {
		if len(rep.Charts[i].PNG) > 0 {
			tiles[i] = rep.Charts[i].PNG
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := b.renderer.Tile(rep.Charts[i].Outcome())
			if err != nil {
				return errors.RenderError(rep.Charts[i].ID, err)
			}
			tiles[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i := range rep.Charts {
		rep.Charts[i].PNG = tiles[i]
	}
	if len(rep.Composite) > 0 {
		return nil
	}
	composite, err := b.renderer.Composite(tiles, render.CompositeTitle(len(tiles)), b.columns)
	if err != nil {
		return errors.RenderError("composite", err)
	}
	rep.Composite = composite
	return nil
}

// RenderChart draws a single chart of a report
func (b *Builder) RenderChart(rep *Report, id string) ([]byte, error) {
	c, ok := rep.Chart(id)
	if !ok {
		return nil, errors.NotFound("chart " + id)
	}
	if len(c.PNG) > 0 {
		return c.PNG, nil
	}
	return b.renderer.Tile(c.Outcome())
}
