// Package testkit holds a small institution fixture whose aggregates are
// known by hand. Tests across packages compare against these numbers.
package testkit

import (
	"bytes"

	"instviz/domain/institution"
	"instviz/internal/sample"
)

// Headers is the fixture column order
var Headers = append([]string(nil), institution.KnownColumns...)

// Records is the fixture data in Headers order. Row 7 has no student count
// and row 8 has a non-numeric mark, so each numeric aggregate skips one row.
var Records = [][]string{
	{"B.Ed", "Maharashtra", "Pune", "Vidya Pune School", "School", "300", "70"},
	{"M.Ed", "Maharashtra", "Mumbai", "Modern Mumbai College", "College", "900", "60"},
	{"B.Ed", "Karnataka", "Bengaluru", "Gyan Bengaluru School", "School", "450", "80"},
	{"PhD", "Karnataka", "Mysuru", "National Mysuru College", "College", "1200", "55"},
	{"B.Ed", "Delhi", "New Delhi", "Sunrise Delhi School", "School", "600", "75"},
	{"M.Ed", "Maharashtra", "Pune", "Heritage Pune School", "School", "200", "85"},
	{"Diploma", "Delhi", "New Delhi", "Greenfield Delhi College", "College", "", "65"},
	{"B.Ed", "Karnataka", "Bengaluru", "Saraswati Bengaluru School", "School", "350", "n/a"},
}

// Table returns the fixture as a table
func Table() *institution.Table {
	return TableWithout()
}

// TableWithout returns the fixture with the named columns removed
func TableWithout(drop ...string) *institution.Table {
	skip := make(map[string]bool, len(drop))
	for _, d := range drop {
		skip[d] = true
	}

	var headers []string
	for _, h := range Headers {
		if !skip[h] {
			headers = append(headers, h)
		}
	}

	rows := make([]institution.Row, len(Records))
	for i, rec := range Records {
		row := make(institution.Row, len(headers))
		for j, h := range Headers {
			if !skip[h] {
				row[h] = rec[j]
			}
		}
		rows[i] = row
	}

	t, _ := institution.NewTable(headers, rows)
	return t
}

// Dataset returns the fixture in generator form
func Dataset() *sample.Dataset {
	rows := make([][]string, len(Records))
	for i, r := range Records {
		rows[i] = append([]string(nil), r...)
	}
	return &sample.Dataset{Headers: append([]string(nil), Headers...), Rows: rows}
}

// XLSX returns the fixture encoded as a workbook
func XLSX() []byte {
	var buf bytes.Buffer
	if err := sample.WriteXLSX(&buf, Dataset()); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// CSV returns the fixture encoded as CSV
func CSV() []byte {
	var buf bytes.Buffer
	if err := sample.WriteCSV(&buf, Dataset()); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
