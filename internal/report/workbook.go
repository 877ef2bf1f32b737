package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"instviz/internal/charts"
	"instviz/internal/errors"
)

const summarySheet = "Summary"

// nativeChart maps chart kinds to the closest Excel chart type
var nativeChart = map[charts.Kind]excelize.ChartType{
	charts.KindPie:     excelize.Pie,
	charts.KindDonut:   excelize.Doughnut,
	charts.KindBar:     excelize.Bar,
	charts.KindColumn:  excelize.Col,
	charts.KindLine:    excelize.Line,
	charts.KindScatter: excelize.Scatter,
	charts.KindFunnel:  excelize.Bar,
}

// WriteWorkbook exports a report's aggregates, one sheet per chart with a
// native Excel chart next to the data
func WriteWorkbook(rep *Report, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return errors.Wrap(err, "failed to create summary sheet")
	}
	if err := writeSummary(f, rep); err != nil {
		return err
	}

	for _, c := range rep.Charts {
		if err := writeChartSheet(f, c); err != nil {
			return errors.Wrapf(err, "failed to export chart %s", c.ID)
		}
	}

	f.SetActiveSheet(0)
	if _, err := f.WriteTo(w); err != nil {
		return errors.Wrap(err, "failed to write workbook")
	}
	return nil
}

func writeSummary(f *excelize.File, rep *Report) error {
	rows := [][]interface{}{
		{"Report", rep.ID.String()},
		{"Source", rep.Source},
		{"Created", rep.CreatedAt.Format("2006-01-02 15:04:05 MST")},
		{"Rows", rep.RowCount},
		{},
		{"Chart", "Status"},
	}
	for _, c := range rep.Charts {
		status := "ok"
		if c.IsMissing() {
			status = c.Message
		}
		rows = append(rows, []interface{}{c.Title, status})
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return errors.Wrap(err, "failed to write summary")
		}
	}
	return f.SetColWidth(summarySheet, "A", "A", 40)
}

func writeChartSheet(f *excelize.File, c ChartResult) error {
	sheet := c.ID
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	if err := f.SetCellValue(sheet, "A1", c.Title); err != nil {
		return err
	}
	if c.IsMissing() {
		return f.SetCellValue(sheet, "A3", c.Message)
	}

	var header []interface{}
	var data [][]interface{}
	if c.Kind == charts.KindScatter {
		header = []interface{}{"X", "Y"}
		for _, p := range c.Aggregate.Points {
			data = append(data, []interface{}{p.X, p.Y})
		}
	} else {
		header = []interface{}{"Label", "Value", "Rows"}
		for _, b := range c.Aggregate.Buckets {
			data = append(data, []interface{}{b.Label, b.Value, b.Count})
		}
	}

	if err := f.SetSheetRow(sheet, "A3", &header); err != nil {
		return err
	}
	for i, row := range data {
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+4), &row); err != nil {
			return err
		}
	}
	if len(data) == 0 {
		return nil
	}

	last := len(data) + 3
	categories := fmt.Sprintf("'%s'!$A$4:$A$%d", sheet, last)
	values := fmt.Sprintf("'%s'!$B$4:$B$%d", sheet, last)
	return f.AddChart(sheet, "E3", &excelize.Chart{
		Type:   nativeChart[c.Kind],
		Series: []excelize.ChartSeries{{Name: fmt.Sprintf("'%s'!$A$1", sheet), Categories: categories, Values: values}},
		Title:  []excelize.RichTextRun{{Text: c.Title}},
	})
}
