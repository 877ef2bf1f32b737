package report

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/goleak"

	"instviz/adapters/render"
	"instviz/domain/core"
	"instviz/domain/institution"
	"instviz/internal/errors"
	"instviz/internal/logging"
	"instviz/internal/testkit"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newBuilder() *Builder {
	r := render.NewRenderer(320, 240).WithLogger(logging.NewNopLogger())
	return NewBuilder(r, 3, render.DefaultColumns).WithLogger(logging.NewNopLogger())
}

func TestBuild(t *testing.T) {
	rep, err := newBuilder().Build(context.Background(), testkit.Table(), "scrd-data.xlsx")
	require.NoError(t, err)

	assert.False(t, rep.ID.String() == "")
	_, err = core.ParseReportID(rep.ID.String())
	assert.NoError(t, err)
	assert.Equal(t, "scrd-data.xlsx", rep.Source)
	assert.Equal(t, testkit.Headers, rep.Headers)
	assert.Equal(t, 8, rep.RowCount)
	assert.Len(t, rep.Preview, PreviewRows)
	assert.Len(t, rep.Summaries, 2)

	require.Len(t, rep.Charts, 7)
	for _, c := range rep.Charts {
		assert.False(t, c.IsMissing(), c.ID)
		assert.NotEmpty(t, c.PNG, c.ID)
	}
	assert.True(t, rep.HasImages())
	assert.Empty(t, rep.MissingCharts())
}

func TestBuildWithMissingColumn(t *testing.T) {
	tbl := testkit.TableWithout(institution.ColTrainerQualification)
	rep, err := newBuilder().Build(context.Background(), tbl, "partial.csv")
	require.NoError(t, err)

	missing := rep.MissingCharts()
	require.Len(t, missing, 1)
	assert.Equal(t, "trainer-qualification", missing[0].ID)
	assert.Equal(t, "Missing 'Trainer Qualification' column", missing[0].Message)
	assert.NotEmpty(t, missing[0].PNG, "placeholder tile is still drawn")
	assert.True(t, rep.HasImages())
}

func TestBuildPreviewIsCapped(t *testing.T) {
	var rows []institution.Row
	for i := 0; i < 25; i++ {
		rows = append(rows, institution.Row{institution.ColState: "Goa"})
	}
	tbl, _ := institution.NewTable([]string{institution.ColState}, rows)

	rep, err := newBuilder().Build(context.Background(), tbl, "goa.csv")
	require.NoError(t, err)
	assert.Len(t, rep.Preview, PreviewRows)
	assert.Equal(t, 25, rep.RowCount)
}

func TestBuildHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newBuilder().Build(ctx, testkit.Table(), "scrd-data.xlsx")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRenderChart(t *testing.T) {
	b := newBuilder()
	rep, err := b.Build(context.Background(), testkit.Table(), "scrd-data.xlsx")
	require.NoError(t, err)

	data, err := b.RenderChart(rep, "top-cities")
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	_, err = b.RenderChart(rep, "nope")
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}

func TestStoreRoundTripDropsImages(t *testing.T) {
	b := newBuilder()
	store, err := NewStore(8, time.Minute, logging.NewNopLogger())
	require.NoError(t, err)
	defer store.Close()
	require.True(t, store.Enabled())

	rep, err := b.Build(context.Background(), testkit.Table(), "scrd-data.xlsx")
	require.NoError(t, err)
	rep.Fingerprint = core.NewHash(testkit.CSV())
	require.NoError(t, store.Put(rep))

	got, err := store.Get(rep.ID)
	require.NoError(t, err)
	assert.Equal(t, rep.ID, got.ID)
	assert.Equal(t, rep.Preview, got.Preview)
	assert.Equal(t, rep.Charts[2].Aggregate, got.Charts[2].Aggregate)
	assert.True(t, rep.CreatedAt.Equal(got.CreatedAt))
	assert.False(t, got.HasImages())

	require.NoError(t, b.Render(context.Background(), got))
	assert.True(t, got.HasImages())

	id, ok := store.Lookup(rep.Fingerprint)
	assert.True(t, ok)
	assert.Equal(t, rep.ID, id)
	_, ok = store.Lookup(core.NewHash([]byte("other")))
	assert.False(t, ok)
}

func TestStoreMissingReport(t *testing.T) {
	store, err := NewStore(8, time.Minute, logging.NewNopLogger())
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Get(core.NewReportID())
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}

func TestDisabledStore(t *testing.T) {
	store, err := NewStore(0, time.Minute, logging.NewNopLogger())
	require.NoError(t, err)
	assert.False(t, store.Enabled())

	rep := &Report{ID: core.NewReportID()}
	require.NoError(t, store.Put(rep))
	_, err = store.Get(rep.ID)
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}

func TestWriteWorkbook(t *testing.T) {
	tbl := testkit.TableWithout(institution.ColAverageMarks)
	rep, err := newBuilder().Build(context.Background(), tbl, "scrd-data.xlsx")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(rep, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	assert.Equal(t, summarySheet, sheets[0])
	assert.Len(t, sheets, 8)

	rows, err := f.GetRows("top-cities")
	require.NoError(t, err)
	assert.Equal(t, []string{"Label", "Value", "Rows"}, rows[2])
	assert.Equal(t, []string{"Mysuru", "1200", "1"}, rows[3])

	msg, err := f.GetCellValue("marks-by-state", "A3")
	require.NoError(t, err)
	assert.Equal(t, "Missing 'State' or 'Average Marks' column", msg)
}
