package institution

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Canonical column names of the institution workbook
const (
	ColTrainerQualification = "Trainer Qualification"
	ColState                = "State"
	ColCity                 = "City"
	ColInstitutionName      = "Name of School/College"
	ColInstitutionType      = "School/College"
	ColTotalStudents        = "Total Number of Students"
	ColAverageMarks         = "Average Marks"
)

// KnownColumns lists every column the chart battery reads
var KnownColumns = []string{
	ColTrainerQualification,
	ColState,
	ColCity,
	ColInstitutionName,
	ColInstitutionType,
	ColTotalStudents,
	ColAverageMarks,
}

// Row represents one record as header -> trimmed cell text
type Row map[string]string

// Table represents a loaded sheet; it is not mutated after loading
type Table struct {
	Headers []string
	Rows    []Row

	index map[string]int
}

// NewTable builds a table from headers and rows. Headers are trimmed,
// empty headers dropped and duplicates keep their first position.
// Returned warnings describe every header that was dropped.
func NewTable(headers []string, rows []Row) (*Table, []string) {
	t := &Table{index: make(map[string]int, len(headers))}
	var warnings []string

	for i, h := range headers {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		if _, dup := t.index[h]; dup {
			warnings = append(warnings, fmt.Sprintf("duplicate column %q at position %d ignored", h, i+1))
			continue
		}
		t.index[h] = len(t.Headers)
		t.Headers = append(t.Headers, h)
	}

	t.Rows = rows
	if t.Rows == nil {
		t.Rows = []Row{}
	}
	return t, warnings
}

// Len returns the number of data rows
func (t *Table) Len() int {
	return len(t.Rows)
}

// Has reports whether every named column is present
func (t *Table) Has(cols ...string) bool {
	return len(t.Missing(cols...)) == 0
}

// Missing returns the named columns that are absent, in argument order
func (t *Table) Missing(cols ...string) []string {
	var missing []string
	for _, c := range cols {
		if _, ok := t.index[c]; !ok {
			missing = append(missing, c)
		}
	}
	return missing
}

// Column returns every cell of a column in row order
func (t *Table) Column(name string) ([]string, bool) {
	if _, ok := t.index[name]; !ok {
		return nil, false
	}
	out := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r[name]
	}
	return out, true
}

// Head returns at most n leading rows
func (t *Table) Head(n int) []Row {
	if n < 0 {
		n = 0
	}
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	return t.Rows[:n]
}

// Cells returns a row's values in header order, for tabular display
func (t *Table) Cells(r Row) []string {
	out := make([]string, len(t.Headers))
	for i, h := range t.Headers {
		out[i] = r[h]
	}
	return out
}

// MissingColumnMessage formats the chart placeholder text. All required
// columns are named, matching how the dashboard has always worded it.
func MissingColumnMessage(required []string) string {
	quoted := make([]string, len(required))
	for i, c := range required {
		quoted[i] = "'" + c + "'"
	}
	return fmt.Sprintf("Missing %s column", strings.Join(quoted, " or "))
}

// ParseNumber interprets a cell as a number. Thousands separators are
// tolerated; empty and non-numeric cells report false.
func ParseNumber(cell string) (float64, bool) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return 0, false
	}
	cell = strings.ReplaceAll(cell, ",", "")
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
