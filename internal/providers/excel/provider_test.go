package excel

import (
	"context"
	"testing"

	"github.com/smallbiznis/benchstay/internal/providers/tabular"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestGenerateReportWritesNumbersAndText(t *testing.T) {
	report := tabular.Report{
		Title:   "Grand Harbor market report",
		Headers: []string{"Property", "Rooms Sold", "MPI", "MPI Rank"},
		Rows: [][]string{
			{"Grand Harbor", "150", "100.00", ""},
			{"Bay Lodge", "100", "95.89", "1"},
		},
		Totals: []string{"Market", "250"},
	}

	r, err := New().GenerateReport(context.Background(), report)
	require.NoError(t, err)

	f, err := excelize.OpenReader(r)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Report"}, f.GetSheetList())

	title, err := f.GetCellValue("Report", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Grand Harbor market report", title)

	header, err := f.GetCellValue("Report", "A3")
	require.NoError(t, err)
	assert.Equal(t, "Property", header)

	name, err := f.GetCellValue("Report", "A5")
	require.NoError(t, err)
	assert.Equal(t, "Bay Lodge", name)

	mpi, err := f.GetCellValue("Report", "C5")
	require.NoError(t, err)
	assert.Equal(t, "95.89", mpi)

	cellType, err := f.GetCellType("Report", "B4")
	require.NoError(t, err)
	assert.NotEqual(t, excelize.CellTypeSharedString, cellType)
	assert.NotEqual(t, excelize.CellTypeInlineString, cellType)

	total, err := f.GetCellValue("Report", "B6")
	require.NoError(t, err)
	assert.Equal(t, "250", total)
}

func TestGenerateReportRejectsEmpty(t *testing.T) {
	_, err := New().GenerateReport(context.Background(), tabular.Report{})
	assert.ErrorIs(t, err, ErrEmptyReport)
}
