package pdf

import (
	"context"
	"io"
	"testing"

	"github.com/smallbiznis/benchstay/internal/providers/tabular"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateReportProducesPDF(t *testing.T) {
	report := tabular.Report{
		Title:    "Grand Harbor market report",
		Subtitle: "2024-01-01 to 2024-01-31",
		Headers:  []string{"Property", "Rooms Sold", "MPI"},
		Rows: [][]string{
			{"Grand Harbor", "150", "100.00"},
			{"Bay Lodge", "100", "100.00"},
		},
		Totals: []string{"Market", "250", ""},
	}

	r, err := New().GenerateReport(context.Background(), report)
	require.NoError(t, err)
	body, err := io.ReadAll(r)
	require.NoError(t, err)
	require.True(t, len(body) > 4)
	assert.Equal(t, "%PDF", string(body[:4]))
}

func TestGenerateReportRejectsEmpty(t *testing.T) {
	_, err := New().GenerateReport(context.Background(), tabular.Report{Title: "empty"})
	assert.ErrorIs(t, err, ErrEmptyReport)
}

func TestColumnWidthsFillGrid(t *testing.T) {
	assert.Equal(t, []int{4, 4, 4}, columnWidths(3, 12))
	assert.Equal(t, []int{4, 2, 2, 2, 2}, columnWidths(5, 12))
	assert.Equal(t, []int{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1}, columnWidths(15, 15))
	assert.Nil(t, columnWidths(0, 12))
}
