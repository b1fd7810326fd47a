// Package importer loads daily figures from an .xlsx workbook. Rows are validated here,
// then written one by one so a rejected row never undoes the rows before it.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	dailyrecorddomain "github.com/smallbiznis/benchstay/internal/dailyrecord/domain"
	marketdomain "github.com/smallbiznis/benchstay/internal/market/domain"
	"github.com/smallbiznis/benchstay/internal/observability/logger"
	"github.com/smallbiznis/benchstay/internal/observability/metrics"
	propertydomain "github.com/smallbiznis/benchstay/internal/property/domain"
	"github.com/smallbiznis/benchstay/pkg/dates"
	"github.com/xuri/excelize/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	SheetHotel       = "Hotel"
	SheetCompetitors = "Competitors"
)

var (
	ErrInvalidWorkbook = errors.New("invalid_workbook")
	ErrNoSheets        = errors.New("no_import_sheets")
	ErrInvalidHeader   = errors.New("invalid_sheet_header")
)

var (
	hotelHeader      = []string{"date", "rooms_sold", "total_revenue"}
	competitorHeader = []string{"date", "competitor", "rooms_sold", "estimated_average_rate"}
)

// RowError reports one rejected row. Row is the 1-based spreadsheet row.
type RowError struct {
	Sheet   string `json:"sheet"`
	Row     int    `json:"row"`
	Message string `json:"message"`
}

type Result struct {
	Imported int        `json:"imported"`
	Rejected int        `json:"rejected"`
	Errors   []RowError `json:"errors"`
}

type Params struct {
	fx.In

	Log        *zap.Logger
	Records    dailyrecorddomain.Service
	Properties propertydomain.Service
	Metrics    *metrics.Metrics `optional:"true"`
}

type Service struct {
	log        *zap.Logger
	records    dailyrecorddomain.Service
	properties propertydomain.Service
	metrics    *metrics.Metrics
}

func New(p Params) *Service {
	return &Service{
		log:        p.Log.Named("importer"),
		records:    p.Records,
		properties: p.Properties,
		metrics:    p.Metrics,
	}
}

// Import reads the Hotel and Competitors sheets of the workbook in r.
// Either sheet may be missing, but not both.
func (s *Service) Import(ctx context.Context, hotelID snowflake.ID, r io.Reader) (*Result, error) {
	if _, err := s.properties.GetHotel(ctx, hotelID); err != nil {
		return nil, err
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWorkbook, err)
	}
	defer f.Close()

	sheets := make(map[string]string)
	for _, name := range f.GetSheetList() {
		sheets[strings.ToLower(strings.TrimSpace(name))] = name
	}
	hotelSheet, hasHotel := sheets[strings.ToLower(SheetHotel)]
	compSheet, hasComp := sheets[strings.ToLower(SheetCompetitors)]
	if !hasHotel && !hasComp {
		return nil, ErrNoSheets
	}

	ctx = marketdomain.WithTrigger(ctx, marketdomain.TriggerImport)
	log := logger.WithHotel(logger.WithContext(ctx, s.log), hotelID.Int64())
	result := &Result{Errors: []RowError{}}

	if hasHotel {
		rows, err := f.GetRows(hotelSheet, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", hotelSheet, err)
		}
		if err := s.importRows(ctx, SheetHotel, rows, hotelHeader, result, func(row []string) (dailyrecorddomain.WriteRequest, error) {
			return parseHotelRow(hotelID, row)
		}); err != nil {
			return nil, err
		}
	}

	if hasComp {
		rows, err := f.GetRows(compSheet, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", compSheet, err)
		}
		competitors, err := s.properties.ListCompetitors(ctx, hotelID, nil)
		if err != nil {
			return nil, err
		}
		byName := make(map[string]snowflake.ID, len(competitors))
		for _, c := range competitors {
			byName[strings.ToLower(c.Name)] = c.ID
		}
		if err := s.importRows(ctx, SheetCompetitors, rows, competitorHeader, result, func(row []string) (dailyrecorddomain.WriteRequest, error) {
			return parseCompetitorRow(hotelID, row, byName)
		}); err != nil {
			return nil, err
		}
	}

	log.Info("workbook imported", zap.Int("imported", result.Imported), zap.Int("rejected", result.Rejected))
	return result, nil
}

func (s *Service) importRows(
	ctx context.Context,
	sheet string,
	rows [][]string,
	header []string,
	result *Result,
	parse func(row []string) (dailyrecorddomain.WriteRequest, error),
) error {
	if len(rows) == 0 {
		return fmt.Errorf("%w: sheet %s is empty", ErrInvalidHeader, sheet)
	}
	if err := checkHeader(rows[0], header); err != nil {
		return fmt.Errorf("%w: sheet %s: %v", ErrInvalidHeader, sheet, err)
	}

	imported, rejected := 0, 0
	for i, row := range rows[1:] {
		line := i + 2
		if blank(row) {
			continue
		}
		req, err := parse(row)
		if err == nil {
			_, err = s.records.Write(ctx, req)
		}
		if err != nil {
			rejected++
			result.Errors = append(result.Errors, RowError{Sheet: sheet, Row: line, Message: err.Error()})
			continue
		}
		imported++
	}

	result.Imported += imported
	result.Rejected += rejected
	s.metrics.RecordImport(ctx, sheet, imported, rejected)
	return nil
}

func checkHeader(row, expected []string) error {
	if len(row) < len(expected) {
		return fmt.Errorf("expected columns %s", strings.Join(expected, ", "))
	}
	for i, name := range expected {
		if !strings.EqualFold(strings.TrimSpace(row[i]), name) {
			return fmt.Errorf("column %d must be %s", i+1, name)
		}
	}
	return nil
}

func parseHotelRow(hotelID snowflake.ID, row []string) (dailyrecorddomain.WriteRequest, error) {
	date, err := parseDate(cell(row, 0))
	if err != nil {
		return dailyrecorddomain.WriteRequest{}, err
	}
	sold, err := parseRooms(cell(row, 1))
	if err != nil {
		return dailyrecorddomain.WriteRequest{}, err
	}
	revenue, err := parseAmount("total_revenue", cell(row, 2))
	if err != nil {
		return dailyrecorddomain.WriteRequest{}, err
	}
	return dailyrecorddomain.WriteRequest{
		HotelID:      hotelID,
		Kind:         dailyrecorddomain.KindHotel,
		Date:         date,
		RoomsSold:    sold,
		TotalRevenue: &revenue,
		Notes:        cell(row, 3),
	}, nil
}

func parseCompetitorRow(hotelID snowflake.ID, row []string, byName map[string]snowflake.ID) (dailyrecorddomain.WriteRequest, error) {
	date, err := parseDate(cell(row, 0))
	if err != nil {
		return dailyrecorddomain.WriteRequest{}, err
	}
	name := cell(row, 1)
	competitorID, ok := byName[strings.ToLower(name)]
	if !ok {
		return dailyrecorddomain.WriteRequest{}, fmt.Errorf("unknown competitor %q", name)
	}
	sold, err := parseRooms(cell(row, 2))
	if err != nil {
		return dailyrecorddomain.WriteRequest{}, err
	}
	rate, err := parseAmount("estimated_average_rate", cell(row, 3))
	if err != nil {
		return dailyrecorddomain.WriteRequest{}, err
	}
	return dailyrecorddomain.WriteRequest{
		HotelID:              hotelID,
		Kind:                 dailyrecorddomain.KindCompetitor,
		CompetitorID:         competitorID,
		Date:                 date,
		RoomsSold:            sold,
		EstimatedAverageRate: &rate,
		Notes:                cell(row, 4),
	}, nil
}

// parseDate accepts YYYY-MM-DD or an Excel date serial and returns YYYY-MM-DD.
func parseDate(raw string) (string, error) {
	if raw == "" {
		return "", errors.New("date is required")
	}
	if t, err := dates.Parse(raw); err == nil {
		return dates.Format(t), nil
	}
	serial, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return "", fmt.Errorf("invalid date %q", raw)
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return "", fmt.Errorf("invalid date %q", raw)
	}
	return dates.Format(dates.Normalize(t)), nil
}

func parseRooms(raw string) (int, error) {
	value, err := decimal.NewFromString(raw)
	if err != nil || !value.IsInteger() || value.IsNegative() {
		return 0, fmt.Errorf("invalid rooms_sold %q", raw)
	}
	return int(value.IntPart()), nil
}

func parseAmount(column, raw string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(raw)
	if err != nil || value.IsNegative() {
		return decimal.Zero, fmt.Errorf("invalid %s %q", column, raw)
	}
	return value, nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
