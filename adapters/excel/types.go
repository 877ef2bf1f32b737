package excel

import "instviz/domain/institution"

// File formats the reader understands
const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
)

// Workbook represents one loaded spreadsheet
type Workbook struct {
	Table    *institution.Table
	Source   string   // file name as given by the caller
	Format   string   // FormatXLSX or FormatCSV
	Sheet    string   // sheet read, empty for CSV
	Warnings []string // non-fatal load issues
}
