package pdf

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/smallbiznis/benchstay/internal/providers/tabular"
)

// Reports wider than the default 12-column grid widen the grid instead.
const gridColumns = 12

var ErrEmptyReport = errors.New("empty_report")

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}

func (p *PDFProvider) GenerateReport(ctx context.Context, report tabular.Report) (io.Reader, error) {
	if len(report.Headers) == 0 {
		return nil, ErrEmptyReport
	}

	grid := gridColumns
	if w := report.Width(); w > grid {
		grid = w
	}

	cfg := config.NewBuilder().
		WithMaxGridSize(grid).
		WithOrientation(orientation.Horizontal).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(grid, report.Title, props.Text{
			Size:  16,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)
	if report.Subtitle != "" {
		m.AddRow(8,
			text.NewCol(grid, report.Subtitle, props.Text{Size: 9}),
		)
	}

	widths := columnWidths(report.Width(), grid)
	m.AddRow(8, cells(report.Headers, widths, props.Text{Style: fontstyle.Bold, Size: 7})...)
	m.AddRow(2, line.NewCol(grid))

	for _, row := range report.Rows {
		m.AddRow(7, cells(row, widths, props.Text{Size: 7})...)
	}
	if len(report.Totals) > 0 {
		m.AddRow(2, line.NewCol(grid))
		m.AddRow(8, cells(report.Totals, widths, props.Text{Style: fontstyle.Bold, Size: 7})...)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(doc.GetBytes()), nil
}

// columnWidths spreads n columns over the grid, giving the first (name) column the remainder.
func columnWidths(n, grid int) []int {
	if n <= 0 {
		return nil
	}
	base := grid / n
	if base == 0 {
		base = 1
	}
	widths := make([]int, n)
	for i := range widths {
		widths[i] = base
	}
	if rest := grid - base*n; rest > 0 {
		widths[0] += rest
	}
	return widths
}

func cells(values []string, widths []int, style props.Text) []core.Col {
	out := make([]core.Col, 0, len(widths))
	for i, width := range widths {
		value := ""
		if i < len(values) {
			value = values[i]
		}
		cellStyle := style
		if i > 0 {
			cellStyle.Align = align.Right
		}
		out = append(out, col.New(width).Add(text.New(value, cellStyle)))
	}
	return out
}
