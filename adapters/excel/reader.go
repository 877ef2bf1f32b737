package excel

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"instviz/domain/institution"
	"instviz/internal/errors"
	"instviz/internal/logging"
)

// DataReader handles reading Excel and CSV files
type DataReader struct {
	filePath string
	fileType string
	logger   *logging.Logger
}

// NewDataReader creates a reader for a file on disk, typed by extension
func NewDataReader(filePath string) *DataReader {
	return &DataReader{
		filePath: filePath,
		fileType: DetectFormat(filePath),
		logger:   logging.DefaultLogger,
	}
}

// WithLogger replaces the reader's logger
func (r *DataReader) WithLogger(logger *logging.Logger) *DataReader {
	r.logger = logger
	return r
}

// DetectFormat maps a file name to FormatCSV, FormatXLSX or "" when unsupported
func DetectFormat(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return FormatXLSX
	default:
		return ""
	}
}

// ReadData reads the file given to NewDataReader
func (r *DataReader) ReadData() (*Workbook, error) {
	r.logger.Debug("[DataReader] Starting to read %s file: %s", r.fileType, r.filePath)

	f, err := os.Open(r.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.InvalidInput(fmt.Sprintf("file not found: %s", r.filePath))
		}
		return nil, errors.Wrapf(err, "failed to open %s", r.filePath)
	}
	defer f.Close()

	return r.ReadFrom(f, r.filePath)
}

// ReadFrom reads an already opened stream, such as an upload; name decides the format
func (r *DataReader) ReadFrom(src io.Reader, name string) (*Workbook, error) {
	format := DetectFormat(name)
	r.fileType = format

	var (
		wb  *Workbook
		err error
	)
	switch format {
	case FormatCSV:
		wb, err = r.readCSVData(src)
	case FormatXLSX:
		wb, err = r.readExcelData(src)
	default:
		return nil, errors.InvalidInput(fmt.Sprintf("unsupported file type %q: upload an .xlsx or .csv file", filepath.Ext(name)))
	}
	if err != nil {
		return nil, err
	}

	wb.Source = filepath.Base(name)
	wb.Format = format
	for _, w := range wb.Warnings {
		r.logger.Warn("[DataReader] %s: %s", wb.Source, w)
	}
	return wb, nil
}

// readExcelData reads the first sheet of the workbook
func (r *DataReader) readExcelData(src io.Reader) (*Workbook, error) {
	startTime := time.Now()
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, errors.InvalidInputf(err, "failed to open Excel file")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.InvalidInput("Excel file has no sheets")
	}
	sheet := sheets[0]

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.InvalidInputf(err, "failed to read sheet %q", sheet)
	}
	r.logger.Debug("[DataReader] Sheet %q read in %.2fms (%d rows)", sheet,
		float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))

	wb, err := r.processRows(rows)
	if err != nil {
		return nil, err
	}
	wb.Sheet = sheet
	return wb, nil
}

// readCSVData reads CSV data, tolerating ragged rows and stray quotes
func (r *DataReader) readCSVData(src io.Reader) (*Workbook, error) {
	raw, err := io.ReadAll(src)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read CSV file")
	}
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	readStart := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.InvalidInputf(err, "failed to parse CSV file")
	}
	r.logger.Debug("[DataReader] CSV file read in %.2fms (%d rows)",
		float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	return r.processRows(rows)
}

// processRows converts raw string rows into a table; the first row is the header
func (r *DataReader) processRows(rows [][]string) (*Workbook, error) {
	if len(rows) == 0 || isBlank(rows[0]) {
		return nil, errors.InvalidInput("file has no header row")
	}

	headerRow := rows[0]
	positions := make([]string, len(headerRow))
	for i, header := range headerRow {
		positions[i] = strings.TrimSpace(header)
	}

	table, warnings := institution.NewTable(headerRow, nil)
	kept := make(map[string]int, len(table.Headers))
	for i, h := range positions {
		if _, seen := kept[h]; !seen && h != "" {
			kept[h] = i
		}
	}

	dataRows := make([]institution.Row, 0, len(rows)-1)
	skipped := 0
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if isBlank(row) {
			skipped++
			continue
		}
		rowData := make(institution.Row, len(table.Headers))
		for _, h := range table.Headers {
			if j := kept[h]; j < len(row) {
				rowData[h] = strings.TrimSpace(row[j])
			} else {
				rowData[h] = ""
			}
		}
		dataRows = append(dataRows, rowData)
	}
	if skipped > 0 {
		r.logger.Debug("[DataReader] skipped %d blank rows", skipped)
	}

	table, _ = institution.NewTable(table.Headers, dataRows)
	r.logger.Info("[DataReader] %s file processed (%d columns, %d rows)",
		strings.ToUpper(r.fileType), len(table.Headers), table.Len())

	return &Workbook{Table: table, Warnings: warnings}, nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
