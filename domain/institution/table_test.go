package institution

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTableTrimsAndDedupesHeaders(t *testing.T) {
	table, warnings := NewTable([]string{" State ", "City", "", "State"}, nil)

	assert.Equal(t, []string{"State", "City"}, table.Headers)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], `duplicate column "State"`)
	assert.Equal(t, 0, table.Len())
}

func TestMissingKeepsArgumentOrder(t *testing.T) {
	table, _ := NewTable([]string{ColState, ColCity}, nil)

	assert.True(t, table.Has(ColState))
	assert.True(t, table.Has(ColCity, ColState))
	assert.False(t, table.Has(ColCity, ColTotalStudents))
	assert.Equal(t, []string{ColAverageMarks, ColTotalStudents},
		table.Missing(ColAverageMarks, ColCity, ColTotalStudents))
	assert.Empty(t, table.Missing())
}

func TestColumnMatchingIsExact(t *testing.T) {
	table, _ := NewTable([]string{"state"}, nil)
	assert.False(t, table.Has(ColState))
}

func TestColumnAndHead(t *testing.T) {
	rows := []Row{
		{ColCity: "Pune"},
		{ColCity: "Delhi"},
		{},
	}
	table, _ := NewTable([]string{ColCity}, rows)

	col, ok := table.Column(ColCity)
	require.True(t, ok)
	assert.Equal(t, []string{"Pune", "Delhi", ""}, col)

	_, ok = table.Column(ColState)
	assert.False(t, ok)

	assert.Len(t, table.Head(2), 2)
	assert.Len(t, table.Head(10), 3)
	assert.Empty(t, table.Head(-1))
	assert.Equal(t, []string{"Delhi"}, table.Cells(rows[1]))
}

func TestMissingColumnMessage(t *testing.T) {
	assert.Equal(t, "Missing 'State' column", MissingColumnMessage([]string{ColState}))
	assert.Equal(t, "Missing 'City' or 'Total Number of Students' column",
		MissingColumnMessage([]string{ColCity, ColTotalStudents}))
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		cell  string
		value float64
		ok    bool
	}{
		{"120", 120, true},
		{" 72.5 ", 72.5, true},
		{"1,250", 1250, true},
		{"-3", -3, true},
		{"", 0, false},
		{"n/a", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.cell, func(t *testing.T) {
			v, ok := ParseNumber(tt.cell)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.value, v)
		})
	}
}
