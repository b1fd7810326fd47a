package excel

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/benchstay/internal/providers/tabular"
	"github.com/xuri/excelize/v2"
	"go.uber.org/fx"
)

const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var ErrEmptyReport = errors.New("empty_report")

type Provider interface {
	GenerateReport(ctx context.Context, report tabular.Report) (io.Reader, error)
}

var Module = fx.Module("providers.excel",
	fx.Provide(New),
)

type ExcelProvider struct {
	sheet string
}

func New() Provider {
	return &ExcelProvider{sheet: "Report"}
}

func (p *ExcelProvider) GenerateReport(ctx context.Context, report tabular.Report) (io.Reader, error) {
	if len(report.Headers) == 0 {
		return nil, ErrEmptyReport
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", p.sheet); err != nil {
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	row := 1
	if report.Title != "" {
		if err := p.setRow(f, row, []string{report.Title}); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(p.sheet, "A1", "A1", bold); err != nil {
			return nil, err
		}
		row++
	}
	if report.Subtitle != "" {
		if err := p.setRow(f, row, []string{report.Subtitle}); err != nil {
			return nil, err
		}
		row++
	}
	if row > 1 {
		row++
	}

	if err := p.setRow(f, row, report.Headers); err != nil {
		return nil, err
	}
	if err := p.styleRow(f, row, len(report.Headers), bold); err != nil {
		return nil, err
	}
	if err := f.SetPanes(p.sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      row,
		TopLeftCell: cellName(1, row+1),
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, err
	}
	row++

	for _, values := range report.Rows {
		if err := p.setRow(f, row, values); err != nil {
			return nil, err
		}
		row++
	}
	if len(report.Totals) > 0 {
		if err := p.setRow(f, row, report.Totals); err != nil {
			return nil, err
		}
		if err := p.styleRow(f, row, len(report.Totals), bold); err != nil {
			return nil, err
		}
	}

	last, err := excelize.ColumnNumberToName(report.Width())
	if err != nil {
		return nil, err
	}
	if err := f.SetColWidth(p.sheet, "A", last, 16); err != nil {
		return nil, err
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// setRow writes numeric-looking cells as numbers so the sheet stays sortable.
func (p *ExcelProvider) setRow(f *excelize.File, row int, values []string) error {
	for i, v := range values {
		ref := cellName(i+1, row)
		if d, err := decimal.NewFromString(v); err == nil {
			if err := f.SetCellFloat(p.sheet, ref, d.InexactFloat64(), -1, 64); err != nil {
				return err
			}
			continue
		}
		if err := f.SetCellStr(p.sheet, ref, v); err != nil {
			return err
		}
	}
	return nil
}

func (p *ExcelProvider) styleRow(f *excelize.File, row, width, style int) error {
	if width == 0 {
		return nil
	}
	return f.SetCellStyle(p.sheet, cellName(1, row), cellName(width, row), style)
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
