package charts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"instviz/domain/institution"
	"instviz/internal/testkit"
)

func TestBatteryOrderAndKinds(t *testing.T) {
	battery := Battery()
	require.Len(t, battery, 7)

	ids := make([]string, len(battery))
	kinds := make(map[Kind]bool)
	for i, c := range battery {
		ids[i] = c.ID
		kinds[c.Kind] = true
		assert.NotEmpty(t, c.Title)
		assert.NotEmpty(t, c.Required)
		assert.NotNil(t, c.Compute)
	}

	assert.Equal(t, []string{
		"trainer-qualification",
		"institutions-by-state",
		"top-cities",
		"marks-vs-students",
		"marks-by-state",
		"institution-type",
		"top-institutions",
	}, ids)
	assert.Len(t, kinds, 7)
}

func TestEvaluateAllWithEveryColumn(t *testing.T) {
	outcomes := EvaluateAll(testkit.Table())
	require.Len(t, outcomes, 7)

	for _, o := range outcomes {
		assert.False(t, o.IsMissing(), o.Chart.ID)
		assert.False(t, o.Aggregate.Empty(), o.Chart.ID)
		assert.Empty(t, o.Message)
	}
}

func TestMissingColumnIsChartLocal(t *testing.T) {
	tbl := testkit.TableWithout(institution.ColCity)
	outcomes := EvaluateAll(tbl)

	for _, o := range outcomes {
		if o.Chart.ID == "top-cities" {
			assert.True(t, o.IsMissing())
			assert.Equal(t, []string{institution.ColCity}, o.Missing)
			assert.Equal(t, "Missing 'City' or 'Total Number of Students' column", o.Message)
			assert.True(t, o.Aggregate.Empty())
			continue
		}
		assert.False(t, o.IsMissing(), o.Chart.ID)
	}
}

func TestEvaluateMatchesRecomputation(t *testing.T) {
	c, ok := Lookup("top-cities")
	require.True(t, ok)

	o := Evaluate(testkit.Table(), c)
	require.Len(t, o.Aggregate.Buckets, 5)

	// direct recomputation of the grouped sum
	want := map[string]float64{}
	for _, rec := range testkit.Records {
		if v, ok := institution.ParseNumber(rec[5]); ok {
			want[rec[2]] += v
		}
	}
	for _, b := range o.Aggregate.Buckets {
		assert.Equal(t, want[b.Label], b.Value, b.Label)
	}
	for i := 1; i < len(o.Aggregate.Buckets); i++ {
		assert.GreaterOrEqual(t, o.Aggregate.Buckets[i-1].Value, o.Aggregate.Buckets[i].Value)
	}
}

func TestTopLimitApplies(t *testing.T) {
	headers := []string{institution.ColCity, institution.ColTotalStudents}
	var rows []institution.Row
	for i := 0; i < 15; i++ {
		rows = append(rows, institution.Row{
			institution.ColCity:          string(rune('A' + i)),
			institution.ColTotalStudents: "10",
		})
	}
	tbl, _ := institution.NewTable(headers, rows)

	c, _ := Lookup("top-cities")
	o := Evaluate(tbl, c)
	assert.Len(t, o.Aggregate.Buckets, TopLimit)
}

func TestEmptyTableIsNotMissing(t *testing.T) {
	tbl, _ := institution.NewTable(institution.KnownColumns, nil)

	for _, o := range EvaluateAll(tbl) {
		assert.False(t, o.IsMissing(), o.Chart.ID)
		assert.True(t, o.Aggregate.Empty(), o.Chart.ID)
	}
}

func TestLookupUnknown(t *testing.T) {
	_, ok := Lookup("histogram")
	assert.False(t, ok)
}
