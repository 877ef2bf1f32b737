package sample

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"math/rand"
	"strconv"

	"github.com/xuri/excelize/v2"

	"instviz/domain/institution"
)

// Dataset is a synthetic institution workbook held in memory.
// Rows are already formatted strings in Headers order.
type Dataset struct {
	Headers []string
	Rows    [][]string
}

// Config controls the generator
type Config struct {
	Rows int
	Seed int64
	// BlankRate is the share of numeric cells left empty, to exercise skipping
	BlankRate float64
}

func DefaultConfig() Config {
	return Config{
		Rows:      120,
		Seed:      42,
		BlankRate: 0.02,
	}
}

var (
	qualifications = []string{"B.Ed", "M.Ed", "PhD", "Diploma", "M.Sc"}
	qualWeights    = []float64{0.35, 0.25, 0.1, 0.2, 0.1}

	states = map[string][]string{
		"Maharashtra":   {"Mumbai", "Pune", "Nagpur"},
		"Karnataka":     {"Bengaluru", "Mysuru"},
		"Tamil Nadu":    {"Chennai", "Coimbatore", "Madurai"},
		"Uttar Pradesh": {"Lucknow", "Kanpur", "Varanasi"},
		"Gujarat":       {"Ahmedabad", "Surat"},
		"Delhi":         {"New Delhi"},
	}
	stateOrder = []string{"Maharashtra", "Karnataka", "Tamil Nadu", "Uttar Pradesh", "Gujarat", "Delhi"}

	nameStems = []string{"Saraswati", "Vidya", "Gyan", "Modern", "National", "Sunrise", "Heritage", "Greenfield"}
)

// Generate builds a deterministic dataset for the given seed
func Generate(cfg Config) (*Dataset, error) {
	if cfg.Rows <= 0 {
		return nil, fmt.Errorf("rows must be > 0, got %d", cfg.Rows)
	}
	if cfg.BlankRate < 0 || cfg.BlankRate >= 1 {
		return nil, fmt.Errorf("blank rate must be in [0,1), got %v", cfg.BlankRate)
	}
	rng := rand.New(rand.NewSource(cfg.Seed))

	ds := &Dataset{Headers: append([]string(nil), institution.KnownColumns...)}
	for i := 0; i < cfg.Rows; i++ {
		state := stateOrder[rng.Intn(len(stateOrder))]
		cities := states[state]
		city := cities[rng.Intn(len(cities))]

		kind := "School"
		if rng.Float64() < 0.35 {
			kind = "College"
		}
		name := fmt.Sprintf("%s %s %s", nameStems[rng.Intn(len(nameStems))], city, kind)

		students := 80 + rng.Intn(900)
		if kind == "College" {
			students += 400
		}
		// Larger institutions score a little lower on average
		marks := 78 - float64(students)/120 + rng.NormFloat64()*6
		marks = math.Max(30, math.Min(99, marks))

		row := []string{
			weighted(rng, qualifications, qualWeights),
			state,
			city,
			name,
			kind,
			strconv.Itoa(students),
			fToStr(marks, 1),
		}
		for _, col := range []int{5, 6} {
			if rng.Float64() < cfg.BlankRate {
				row[col] = ""
			}
		}
		ds.Rows = append(ds.Rows, row)
	}
	return ds, nil
}

func weighted(rng *rand.Rand, values []string, weights []float64) string {
	x := rng.Float64()
	acc := 0.0
	for i, w := range weights {
		acc += w
		if x < acc {
			return values[i]
		}
	}
	return values[len(values)-1]
}

// WriteCSV writes the dataset as CSV
func WriteCSV(w io.Writer, ds *Dataset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ds.Headers); err != nil {
		return err
	}
	for _, row := range ds.Rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes the dataset to the first sheet of a new workbook.
// Numeric cells are stored as numbers.
func WriteXLSX(w io.Writer, ds *Dataset) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Institutions"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	if err := f.SetSheetRow(sheet, "A1", &ds.Headers); err != nil {
		return err
	}
	for r, row := range ds.Rows {
		values := make([]interface{}, len(row))
		for c, v := range row {
			if n, err := strconv.ParseFloat(v, 64); err == nil {
				values[c] = n
			} else {
				values[c] = v
			}
		}
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}

	_, err := f.WriteTo(w)
	return err
}

// fToStr rounds and drops trailing zeros, which is how excelize reads numbers back
func fToStr(x float64, decimals int) string {
	p := math.Pow10(decimals)
	x = math.Round(x*p) / p
	return strconv.FormatFloat(x, 'f', -1, 64)
}
