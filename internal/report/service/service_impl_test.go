package service

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	auditdomain "github.com/smallbiznis/benchstay/internal/audit/domain"
	auditrepository "github.com/smallbiznis/benchstay/internal/audit/repository"
	auditservice "github.com/smallbiznis/benchstay/internal/audit/service"
	"github.com/smallbiznis/benchstay/internal/clock"
	"github.com/smallbiznis/benchstay/internal/config"
	dailyrecorddomain "github.com/smallbiznis/benchstay/internal/dailyrecord/domain"
	dailyrecordrepository "github.com/smallbiznis/benchstay/internal/dailyrecord/repository"
	marketdomain "github.com/smallbiznis/benchstay/internal/market/domain"
	marketrepository "github.com/smallbiznis/benchstay/internal/market/repository"
	marketservice "github.com/smallbiznis/benchstay/internal/market/service"
	"github.com/smallbiznis/benchstay/internal/metric"
	propertydomain "github.com/smallbiznis/benchstay/internal/property/domain"
	propertyrepository "github.com/smallbiznis/benchstay/internal/property/repository"
	propertyservice "github.com/smallbiznis/benchstay/internal/property/service"
	"github.com/smallbiznis/benchstay/internal/providers/excel"
	"github.com/smallbiznis/benchstay/internal/providers/pdf"
	reportdomain "github.com/smallbiznis/benchstay/internal/report/domain"
	"github.com/smallbiznis/benchstay/pkg/dates"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type harness struct {
	db      *gorm.DB
	node    *snowflake.Node
	clock   *clock.FakeClock
	records dailyrecorddomain.Repository
	props   propertydomain.Repository
	market  marketdomain.Service
	svc     reportdomain.Service
	hotel   *propertydomain.Hotel
}

func setupHarness(t *testing.T) *harness {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&propertydomain.Hotel{},
		&propertydomain.Competitor{},
		&dailyrecorddomain.DailyRecord{},
		&marketdomain.MarketSnapshot{},
		&marketdomain.PerformanceIndex{},
		&auditdomain.AuditLog{},
	))
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	h := &harness{
		db:      db,
		node:    node,
		clock:   clock.NewFakeClock(time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)),
		records: dailyrecordrepository.Provide(),
		props:   propertyrepository.Provide(),
	}
	marketRepo := marketrepository.Provide()
	h.market = marketservice.New(marketservice.Params{
		DB:         db,
		Log:        zap.NewNop(),
		GenID:      node,
		Clock:      h.clock,
		Repo:       marketRepo,
		Records:    h.records,
		Properties: h.props,
	})
	audit := auditservice.NewService(auditservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: h.clock,
		Repo:  auditrepository.Provide(),
	})
	properties := propertyservice.New(propertyservice.Params{
		DB:           db,
		Log:          zap.NewNop(),
		GenID:        node,
		Clock:        h.clock,
		Repo:         h.props,
		Records:      h.records,
		Recalculator: h.market,
		Audit:        audit,
	})

	cfg := config.DefaultReportingConfig()
	cfg.PercentagePlaces = 2
	h.svc = New(Params{
		DB:         db,
		Log:        zap.NewNop(),
		Properties: properties,
		Records:    h.records,
		Market:     marketRepo,
		Reporting:  config.NewStaticReportingConfigHolder(cfg),
		Excel:      excel.New(),
		PDF:        pdf.New(),
	})

	h.hotel = &propertydomain.Hotel{
		ID:         node.Generate(),
		Name:       "Grand Harbor",
		TotalRooms: 300,
		CreatedAt:  h.clock.Now(),
		UpdatedAt:  h.clock.Now(),
	}
	require.NoError(t, h.props.InsertHotel(context.Background(), db, h.hotel))
	return h
}

func (h *harness) addCompetitor(t *testing.T, name string, rooms int, active bool) *propertydomain.Competitor {
	t.Helper()
	status := propertydomain.CompetitorStatusActive
	if !active {
		status = propertydomain.CompetitorStatusInactive
	}
	c := &propertydomain.Competitor{
		ID:         h.node.Generate(),
		HotelID:    h.hotel.ID,
		Name:       name,
		TotalRooms: rooms,
		Status:     status,
		IsActive:   active,
		CreatedAt:  h.clock.Now(),
		UpdatedAt:  h.clock.Now(),
	}
	require.NoError(t, h.props.InsertCompetitor(context.Background(), h.db, c))
	return c
}

// insert stores a record the way the data-entry service derives it.
func (h *harness) insert(t *testing.T, competitorID snowflake.ID, date string, rooms, sold int, revenue string) {
	t.Helper()
	d, err := dates.Parse(date)
	require.NoError(t, err)
	amount := decimal.RequireFromString(revenue)
	values := metric.Compute(sold, amount, rooms).Rounded()
	rec := &dailyrecorddomain.DailyRecord{
		ID:                  h.node.Generate(),
		HotelID:             h.hotel.ID,
		CompetitorID:        competitorID,
		Date:                d,
		RoomsSold:           sold,
		TotalRevenue:        amount,
		AverageRate:         values.AverageRate,
		OccupancyPercentage: values.OccupancyPercentage,
		RevPAR:              values.RevPAR,
		TotalRooms:          rooms,
		CreatedAt:           h.clock.Now(),
		UpdatedAt:           h.clock.Now(),
	}
	require.NoError(t, h.records.Upsert(context.Background(), h.db, rec))
}

func (h *harness) recalculate(t *testing.T, date string) {
	t.Helper()
	d, err := dates.Parse(date)
	require.NoError(t, err)
	_, err = h.market.RecalculateDate(context.Background(), h.hotel.ID, d)
	require.NoError(t, err)
}

// seedMarket stores two days: the hotel alone on the 9th, hotel and Bay Lodge on the 10th.
func seedMarket(t *testing.T, h *harness) *propertydomain.Competitor {
	t.Helper()
	bay := h.addCompetitor(t, "Bay Lodge", 200, true)
	old := h.addCompetitor(t, "Old Inn", 80, false)

	h.insert(t, dailyrecorddomain.HotelEntity, "2024-01-09", 300, 120, "16800")
	h.insert(t, dailyrecorddomain.HotelEntity, "2024-01-10", 300, 150, "22500")
	h.insert(t, bay.ID, "2024-01-10", 200, 100, "14000")
	h.insert(t, old.ID, "2024-01-10", 80, 80, "8000")

	h.recalculate(t, "2024-01-09")
	h.recalculate(t, "2024-01-10")
	return bay
}

func day(t *testing.T, value string) time.Time {
	t.Helper()
	d, err := dates.Parse(value)
	require.NoError(t, err)
	return d
}

func assertDecimal(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	assert.Truef(t, decimal.RequireFromString(expected).Equal(actual), "expected %s, got %s", expected, actual.String())
}

func assertNullDecimal(t *testing.T, expected string, actual decimal.NullDecimal) {
	t.Helper()
	require.True(t, actual.Valid, "expected %s, got null", expected)
	assertDecimal(t, expected, actual.Decimal)
}

func TestPerformanceSummaryComparesPreviousPeriod(t *testing.T) {
	h := setupHarness(t)
	seedMarket(t, h)

	summary, err := h.svc.PerformanceSummary(context.Background(), h.hotel.ID, day(t, "2024-01-10"), day(t, "2024-01-10"))
	require.NoError(t, err)

	assert.Equal(t, "Grand Harbor", summary.HotelName)
	assert.Equal(t, "2024-01-10", summary.Current.StartDate)
	assert.Equal(t, "2024-01-09", summary.Previous.StartDate)
	assert.Equal(t, "2024-01-09", summary.Previous.EndDate)
	assert.Equal(t, 1, summary.Current.DaysWithData)

	assertDecimal(t, "50", summary.Current.Hotel.Occupancy)
	assertDecimal(t, "150", summary.Current.Hotel.ADR)
	assertDecimal(t, "75", summary.Current.Hotel.RevPAR)
	assertDecimal(t, "50", summary.Current.Market.Occupancy)
	assertDecimal(t, "146", summary.Current.Market.ADR)
	assertDecimal(t, "73", summary.Current.Market.RevPAR)
	assertNullDecimal(t, "100", summary.Current.Indices.MPI)
	assertNullDecimal(t, "102.74", summary.Current.Indices.ARI)
	assertNullDecimal(t, "102.74", summary.Current.Indices.RGI)

	assertDecimal(t, "40", summary.Previous.Hotel.Occupancy)
	assertNullDecimal(t, "100", summary.Previous.Indices.ARI)

	assertDecimal(t, "25", summary.Change.Occupancy)
	assertDecimal(t, "7.14", summary.Change.ADR)
	assertDecimal(t, "33.93", summary.Change.RevPAR)
	assertDecimal(t, "0", summary.Change.MPI)
	assertDecimal(t, "2.74", summary.Change.ARI)
}

func TestPerformanceSummaryWithoutDataIsZeroAndNull(t *testing.T) {
	h := setupHarness(t)

	summary, err := h.svc.PerformanceSummary(context.Background(), h.hotel.ID, day(t, "2023-06-01"), day(t, "2023-06-30"))
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Current.DaysWithData)
	assert.True(t, summary.Current.Hotel.ADR.IsZero())
	assert.False(t, summary.Current.Indices.MPI.Valid)
	assert.True(t, summary.Change.MPI.IsZero())
}

func TestReportsRejectInvertedRangeAndUnknownHotel(t *testing.T) {
	h := setupHarness(t)
	ctx := context.Background()

	_, err := h.svc.CompetitorAnalytics(ctx, h.hotel.ID, day(t, "2024-01-10"), day(t, "2024-01-09"))
	assert.ErrorIs(t, err, reportdomain.ErrInvalidRange)

	_, err = h.svc.PerformanceSummary(ctx, snowflake.ID(999), day(t, "2024-01-09"), day(t, "2024-01-10"))
	assert.ErrorIs(t, err, propertydomain.ErrHotelNotFound)
}

func TestCompetitorAnalyticsRanksRangeTotals(t *testing.T) {
	h := setupHarness(t)
	bay := seedMarket(t, h)

	analytics, err := h.svc.CompetitorAnalytics(context.Background(), h.hotel.ID, day(t, "2024-01-10"), day(t, "2024-01-10"))
	require.NoError(t, err)
	require.Len(t, analytics.Rows, 2, "inactive competitors are left out")

	hotel := analytics.Rows[0]
	assert.Equal(t, reportdomain.EntityHotel, hotel.EntityType)
	assert.Equal(t, 300, hotel.RoomsAvailable)
	assertDecimal(t, "60", hotel.FairMarketShare)
	assertDecimal(t, "60", hotel.ActualMarketShare)
	assertNullDecimal(t, "100", hotel.MPI)
	assertNullDecimal(t, "102.74", hotel.ARI)
	assertNullDecimal(t, "102.74", hotel.RGI)
	require.NotNil(t, hotel.MPIRank)
	assert.Equal(t, 1, *hotel.MPIRank)
	assert.Equal(t, 1, *hotel.ARIRank)

	comp := analytics.Rows[1]
	assert.Equal(t, bay.ID, comp.CompetitorID)
	assertDecimal(t, "140", comp.ADR)
	assertDecimal(t, "40", comp.FairMarketShare)
	assertNullDecimal(t, "100", comp.MPI)
	assertNullDecimal(t, "95.89", comp.ARI)
	assert.Equal(t, 1, *comp.MPIRank, "equal MPI shares the rank")
	assert.Equal(t, 2, *comp.ARIRank)
	assert.Equal(t, 2, *comp.RGIRank)

	totals := analytics.Totals
	assert.Equal(t, 500, totals.RoomsAvailable)
	assert.Equal(t, 250, totals.RoomsSold)
	assertDecimal(t, "36500", totals.Revenue)
	assertDecimal(t, "146", totals.ADR)
	assertDecimal(t, "73", totals.RevPAR)
	assert.Equal(t, 1, totals.DaysReported)
	assert.False(t, totals.MPI.Valid)
}

func TestAnalyticsRowsWithoutRecordsRankLast(t *testing.T) {
	hotel := &propertydomain.Hotel{ID: 1, Name: "Grand Harbor"}
	competitors := []propertydomain.Competitor{
		{ID: 2, Name: "Anchor House"},
		{ID: 3, Name: "Bay Lodge"},
	}
	date := day(t, "2024-01-10")
	records := []dailyrecorddomain.DailyRecord{
		{CompetitorID: dailyrecorddomain.HotelEntity, Date: date, RoomsSold: 150, TotalRevenue: decimal.NewFromInt(22500), TotalRooms: 300},
		{CompetitorID: 3, Date: date, RoomsSold: 100, TotalRevenue: decimal.NewFromInt(14000), AverageRate: decimal.NewFromInt(140), TotalRooms: 200},
	}

	rows, _ := analyticsRows(hotel, competitors, records)
	require.Len(t, rows, 3)

	anchor := rows[1]
	assert.Equal(t, "Anchor House", anchor.Name)
	assert.False(t, anchor.MPI.Valid)
	assert.Equal(t, 3, *anchor.ARIRank)
	assert.Equal(t, 0, anchor.DaysReported)
	assert.True(t, anchor.FairMarketShare.IsZero())
}

func TestRevPARMatrixUsesLatestIndices(t *testing.T) {
	h := setupHarness(t)
	bay := seedMarket(t, h)

	matrix, err := h.svc.RevPARMatrix(context.Background(), h.hotel.ID, day(t, "2024-01-01"), day(t, "2024-01-31"))
	require.NoError(t, err)

	require.NotNil(t, matrix.Hotel)
	assert.Equal(t, "2024-01-10", matrix.Hotel.Date)
	assertDecimal(t, "100", matrix.Hotel.X)
	assertDecimal(t, "102.74", matrix.Hotel.Y)

	require.Len(t, matrix.Competitors, 1)
	assert.Equal(t, bay.ID, matrix.Competitors[0].CompetitorID)
	assertDecimal(t, "100", matrix.Competitors[0].X)
	assertDecimal(t, "95.89", matrix.Competitors[0].Y)
}

func TestExportCompetitorAnalytics(t *testing.T) {
	h := setupHarness(t)
	seedMarket(t, h)
	ctx := context.Background()

	export, err := h.svc.ExportCompetitorAnalytics(ctx, h.hotel.ID, day(t, "2024-01-10"), day(t, "2024-01-10"), "XLSX")
	require.NoError(t, err)
	assert.Equal(t, "grand-harbor_market_report_2024-01-10_to_2024-01-10.xlsx", export.Filename)
	assert.Equal(t, excel.ContentType, export.ContentType)

	f, err := excelize.OpenReader(export.Body)
	require.NoError(t, err)
	defer f.Close()
	for cell, expected := range map[string]string{
		"A4": "Property",
		"A5": "Grand Harbor",
		"A6": "Bay Lodge",
		"A7": "Market",
	} {
		value, err := f.GetCellValue("Report", cell)
		require.NoError(t, err)
		assert.Equal(t, expected, value, cell)
	}

	export, err = h.svc.ExportCompetitorAnalytics(ctx, h.hotel.ID, day(t, "2024-01-10"), day(t, "2024-01-10"), "pdf")
	require.NoError(t, err)
	assert.Equal(t, pdf.ContentType, export.ContentType)
	body, err := io.ReadAll(export.Body)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(body[:4]))

	_, err = h.svc.ExportCompetitorAnalytics(ctx, h.hotel.ID, day(t, "2024-01-10"), day(t, "2024-01-10"), "csv")
	assert.ErrorIs(t, err, reportdomain.ErrInvalidFormat)
}

func TestExportFilenameFallsBackForEmptySlug(t *testing.T) {
	assert.Equal(t, "hotel_market_report_2024-01-01_to_2024-01-31.pdf", ExportFilename("!!!", "2024-01-01", "2024-01-31", "pdf"))
	assert.Equal(t, "grand-harbor-bali_market_report_2024-01-01_to_2024-01-31.xlsx", ExportFilename("Grand Harbor Bali", "2024-01-01", "2024-01-31", "xlsx"))
}
