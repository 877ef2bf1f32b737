package excel

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"instviz/domain/institution"
	"instviz/internal/errors"
	"instviz/internal/logging"
	"instviz/internal/testkit"
)

func newReader(path string) *DataReader {
	return NewDataReader(path).WithLogger(logging.NewNopLogger())
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, FormatCSV, DetectFormat("data.CSV"))
	assert.Equal(t, FormatXLSX, DetectFormat("/tmp/scrd-data.xlsx"))
	assert.Equal(t, FormatXLSX, DetectFormat("macro.xlsm"))
	assert.Equal(t, "", DetectFormat("legacy.xls"))
	assert.Equal(t, "", DetectFormat("noext"))
}

func TestReadDataFromDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scrd-data.xlsx")
	require.NoError(t, os.WriteFile(path, testkit.XLSX(), 0o644))

	wb, err := newReader(path).ReadData()
	require.NoError(t, err)

	assert.Equal(t, "scrd-data.xlsx", wb.Source)
	assert.Equal(t, FormatXLSX, wb.Format)
	assert.Equal(t, testkit.Headers, wb.Table.Headers)
	assert.Equal(t, len(testkit.Records), wb.Table.Len())
	assert.Equal(t, "1200", wb.Table.Rows[3][institution.ColTotalStudents])
	assert.Equal(t, "", wb.Table.Rows[6][institution.ColTotalStudents])
}

func TestReadDataMissingFile(t *testing.T) {
	_, err := newReader(filepath.Join(t.TempDir(), "nope.xlsx")).ReadData()
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestCSVAndXLSXLoadEqually(t *testing.T) {
	fromXLSX, err := newReader("").ReadFrom(bytes.NewReader(testkit.XLSX()), "upload.xlsx")
	require.NoError(t, err)
	fromCSV, err := newReader("").ReadFrom(bytes.NewReader(testkit.CSV()), "upload.csv")
	require.NoError(t, err)

	assert.Equal(t, fromCSV.Table.Headers, fromXLSX.Table.Headers)
	assert.Equal(t, fromCSV.Table.Rows, fromXLSX.Table.Rows)
	assert.Equal(t, "", fromCSV.Sheet)
}

func TestReadsFirstSheetOnly(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "Data"))
	require.NoError(t, f.SetSheetRow("Data", "A1", &[]interface{}{"State"}))
	require.NoError(t, f.SetSheetRow("Data", "A2", &[]interface{}{"Kerala"}))
	_, err := f.NewSheet("Notes")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Notes", "A1", &[]interface{}{"Comment"}))

	var buf bytes.Buffer
	_, err = f.WriteTo(&buf)
	require.NoError(t, err)

	wb, err := newReader("").ReadFrom(&buf, "two-sheets.xlsx")
	require.NoError(t, err)
	assert.Equal(t, "Data", wb.Sheet)
	assert.Equal(t, []string{"State"}, wb.Table.Headers)
	assert.Equal(t, "Kerala", wb.Table.Rows[0]["State"])
}

func TestCSVEdgeCases(t *testing.T) {
	input := "\xef\xbb\xbf State , City,State\n" +
		"Kerala,Kochi,ignored\n" +
		",,\n" +
		"Goa\n"

	wb, err := newReader("").ReadFrom(strings.NewReader(input), "edge.csv")
	require.NoError(t, err)

	assert.Equal(t, []string{"State", "City"}, wb.Table.Headers)
	require.Len(t, wb.Warnings, 1)
	require.Equal(t, 2, wb.Table.Len(), "blank row is dropped")
	assert.Equal(t, institution.Row{"State": "Kerala", "City": "Kochi"}, wb.Table.Rows[0])
	assert.Equal(t, institution.Row{"State": "Goa", "City": ""}, wb.Table.Rows[1])
}

func TestHeaderOnlyFileIsEmptyTable(t *testing.T) {
	wb, err := newReader("").ReadFrom(strings.NewReader("State,City\n"), "empty.csv")
	require.NoError(t, err)
	assert.Equal(t, 0, wb.Table.Len())
	assert.True(t, wb.Table.Has("State", "City"))
}

func TestLoadFailures(t *testing.T) {
	tests := []struct {
		name  string
		input string
		file  string
	}{
		{"no header", "", "empty.csv"},
		{"blank header", " , \n1,2\n", "blank.csv"},
		{"not a zip", "this is not a workbook", "broken.xlsx"},
		{"unsupported", "State\nGoa\n", "legacy.xls"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newReader("").ReadFrom(strings.NewReader(tt.input), tt.file)
			require.Error(t, err)
			assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
		})
	}
}
