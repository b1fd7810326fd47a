package service

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/benchstay/internal/observability/logger"
	"github.com/smallbiznis/benchstay/internal/providers/excel"
	"github.com/smallbiznis/benchstay/internal/providers/pdf"
	"github.com/smallbiznis/benchstay/internal/providers/tabular"
	reportdomain "github.com/smallbiznis/benchstay/internal/report/domain"
	"go.uber.org/zap"
)

var analyticsHeaders = []string{
	"Property", "Days", "Rooms Available", "Rooms Sold", "Revenue",
	"Occupancy %", "ADR", "RevPAR", "Fair Share %", "Actual Share %",
	"MPI", "MPI Rank", "ARI", "ARI Rank", "RGI", "RGI Rank",
}

func (s *Service) ExportCompetitorAnalytics(ctx context.Context, hotelID snowflake.ID, start, end time.Time, format string) (*reportdomain.Export, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format != reportdomain.FormatXLSX && format != reportdomain.FormatPDF {
		return nil, reportdomain.ErrInvalidFormat
	}

	analytics, err := s.CompetitorAnalytics(ctx, hotelID, start, end)
	if err != nil {
		return nil, err
	}
	table := analyticsTable(analytics, s.reporting.Get().CurrencyPlaces, s.reporting.Get().PercentagePlaces)

	var (
		body        io.Reader
		contentType string
	)
	switch format {
	case reportdomain.FormatXLSX:
		body, err = s.excel.GenerateReport(ctx, table)
		contentType = excel.ContentType
	case reportdomain.FormatPDF:
		body, err = s.pdf.GenerateReport(ctx, table)
		contentType = pdf.ContentType
	}
	if err != nil {
		return nil, err
	}

	filename := ExportFilename(analytics.HotelName, analytics.StartDate, analytics.EndDate, format)
	logger.WithHotel(logger.WithContext(ctx, s.log), hotelID.Int64()).Info("competitor analytics exported",
		zap.String("format", format),
		zap.String("filename", filename),
		zap.Int("rows", len(analytics.Rows)),
	)

	return &reportdomain.Export{
		Filename:    filename,
		ContentType: contentType,
		Body:        body,
	}, nil
}

// ExportFilename builds <hotel-slug>_market_report_<start>_to_<end>.<ext>.
func ExportFilename(hotelName, start, end, ext string) string {
	name := slug.Make(hotelName)
	if name == "" {
		name = "hotel"
	}
	return fmt.Sprintf("%s_market_report_%s_to_%s.%s", name, start, end, ext)
}

func analyticsTable(a *reportdomain.CompetitorAnalytics, currencyPlaces, percentPlaces int32) tabular.Report {
	table := tabular.Report{
		Title:    a.HotelName + " competitor analytics",
		Subtitle: fmt.Sprintf("%s to %s (%s)", a.StartDate, a.EndDate, a.Currency),
		Headers:  analyticsHeaders,
		Rows:     make([][]string, 0, len(a.Rows)),
	}
	for _, row := range a.Rows {
		table.Rows = append(table.Rows, analyticsCells(row, currencyPlaces, percentPlaces))
	}
	table.Totals = analyticsCells(a.Totals, currencyPlaces, percentPlaces)
	return table
}

func analyticsCells(row reportdomain.AnalyticsRow, currencyPlaces, percentPlaces int32) []string {
	return []string{
		row.Name,
		strconv.Itoa(row.DaysReported),
		strconv.Itoa(row.RoomsAvailable),
		strconv.Itoa(row.RoomsSold),
		row.Revenue.StringFixed(currencyPlaces),
		row.Occupancy.StringFixed(percentPlaces),
		row.ADR.StringFixed(currencyPlaces),
		row.RevPAR.StringFixed(currencyPlaces),
		row.FairMarketShare.StringFixed(percentPlaces),
		row.ActualMarketShare.StringFixed(percentPlaces),
		nullCell(row.MPI, percentPlaces),
		rankCell(row.MPIRank),
		nullCell(row.ARI, percentPlaces),
		rankCell(row.ARIRank),
		nullCell(row.RGI, percentPlaces),
		rankCell(row.RGIRank),
	}
}

func nullCell(v decimal.NullDecimal, places int32) string {
	if !v.Valid {
		return ""
	}
	return v.Decimal.StringFixed(places)
}

func rankCell(rank *int) string {
	if rank == nil {
		return ""
	}
	return strconv.Itoa(*rank)
}
