package importer

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	auditdomain "github.com/smallbiznis/benchstay/internal/audit/domain"
	auditrepository "github.com/smallbiznis/benchstay/internal/audit/repository"
	auditservice "github.com/smallbiznis/benchstay/internal/audit/service"
	"github.com/smallbiznis/benchstay/internal/clock"
	dailyrecorddomain "github.com/smallbiznis/benchstay/internal/dailyrecord/domain"
	dailyrecordrepository "github.com/smallbiznis/benchstay/internal/dailyrecord/repository"
	dailyrecordservice "github.com/smallbiznis/benchstay/internal/dailyrecord/service"
	marketdomain "github.com/smallbiznis/benchstay/internal/market/domain"
	marketrepository "github.com/smallbiznis/benchstay/internal/market/repository"
	marketservice "github.com/smallbiznis/benchstay/internal/market/service"
	propertydomain "github.com/smallbiznis/benchstay/internal/property/domain"
	propertyrepository "github.com/smallbiznis/benchstay/internal/property/repository"
	propertyservice "github.com/smallbiznis/benchstay/internal/property/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type importHarness struct {
	importer *Service
	records  dailyrecorddomain.Service
	market   marketdomain.Service
	hotel    *propertydomain.Hotel
}

func setupImporter(t *testing.T) *importHarness {
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
	clk := clock.NewFakeClock(time.Date(2024, 1, 12, 9, 0, 0, 0, time.UTC))
	properties := propertyrepository.Provide()
	recordsRepo := dailyrecordrepository.Provide()

	market := marketservice.New(marketservice.Params{
		DB: db, Log: zap.NewNop(), GenID: node, Clock: clk,
		Repo: marketrepository.Provide(), Records: recordsRepo, Properties: properties,
	})
	audit := auditservice.NewService(auditservice.Params{
		DB: db, Log: zap.NewNop(), GenID: node, Clock: clk, Repo: auditrepository.Provide(),
	})
	propertySvc := propertyservice.New(propertyservice.Params{
		DB: db, Log: zap.NewNop(), GenID: node, Clock: clk, Repo: properties,
		Records: recordsRepo, Recalculator: market, Audit: audit,
	})
	records := dailyrecordservice.New(dailyrecordservice.Params{
		DB: db, Log: zap.NewNop(), GenID: node, Clock: clk, Repo: recordsRepo,
		Properties: properties, Recalculator: market, Audit: audit,
	})

	ctx := context.Background()
	hotel, err := propertySvc.CreateHotel(ctx, propertydomain.HotelRequest{Name: "Grand Harbor", TotalRooms: 300})
	require.NoError(t, err)
	_, err = propertySvc.CreateCompetitor(ctx, hotel.ID, propertydomain.CompetitorRequest{Name: "Seaside Inn", TotalRooms: 200})
	require.NoError(t, err)

	return &importHarness{
		importer: New(Params{Log: zap.NewNop(), Records: records, Properties: propertySvc}),
		records:  records,
		market:   market,
		hotel:    hotel,
	}
}

func workbook(t *testing.T, sheets map[string][][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for name, rows := range sheets {
		_, err := f.NewSheet(name)
		require.NoError(t, err)
		for i, row := range rows {
			cellRef, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cellRef, &row))
		}
	}
	require.NoError(t, f.DeleteSheet("Sheet1"))

	buf := new(bytes.Buffer)
	require.NoError(t, f.Write(buf))
	return buf
}

func TestImportWritesValidRowsAndReportsBadOnes(t *testing.T) {
	h := setupImporter(t)
	ctx := context.Background()

	buf := workbook(t, map[string][][]any{
		"Hotel": {
			{"date", "rooms_sold", "total_revenue", "notes"},
			{"2024-01-10", 150, 22500, "weekday"},
			{"2024-01-11", "abc", 1000},
			{"45302", 120, 18000},
		},
		"Competitors": {
			{"date", "competitor", "rooms_sold", "estimated_average_rate"},
			{"2024-01-10", "seaside inn", 100, 140},
			{"2024-01-10", "Unknown Hotel", 10, 90},
			{"2024-01-10", "Seaside Inn", 500, 140},
		},
	})

	result, err := h.importer.Import(ctx, h.hotel.ID, buf)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Imported)
	assert.Equal(t, 3, result.Rejected)
	require.Len(t, result.Errors, 3)
	assert.Equal(t, RowError{Sheet: SheetHotel, Row: 3, Message: `invalid rooms_sold "abc"`}, result.Errors[0])
	assert.Equal(t, SheetCompetitors, result.Errors[1].Sheet)
	assert.Equal(t, 3, result.Errors[1].Row)
	assert.True(t, strings.Contains(result.Errors[1].Message, "unknown competitor"))
	assert.Equal(t, dailyrecorddomain.ErrRoomsSoldExceedStock.Error(), result.Errors[2].Message)

	snapshot, err := h.market.GetMarketSnapshot(ctx, h.hotel.ID, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 2, snapshot.ParticipantCount)
	assert.Equal(t, 250, snapshot.TotalRoomsSold)

	serialDay, err := h.market.GetMarketSnapshot(ctx, h.hotel.ID, time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 120, serialDay.TotalRoomsSold)

	records, err := h.records.List(ctx, dailyrecorddomain.ListFilter{HotelID: h.hotel.ID, Kind: dailyrecorddomain.KindHotel})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "weekday", records[1].Notes)
}

func TestImportRejectsWrongHeader(t *testing.T) {
	h := setupImporter(t)
	buf := workbook(t, map[string][][]any{
		"Hotel": {
			{"day", "sold", "revenue"},
			{"2024-01-10", 150, 22500},
		},
	})

	_, err := h.importer.Import(context.Background(), h.hotel.ID, buf)
	assert.ErrorIs(t, err, ErrInvalidHeader)
}

func TestImportRequiresKnownSheets(t *testing.T) {
	h := setupImporter(t)
	buf := workbook(t, map[string][][]any{
		"Rates": {{"date"}},
	})

	_, err := h.importer.Import(context.Background(), h.hotel.ID, buf)
	assert.ErrorIs(t, err, ErrNoSheets)
}

func TestImportRejectsNonWorkbook(t *testing.T) {
	h := setupImporter(t)
	_, err := h.importer.Import(context.Background(), h.hotel.ID, strings.NewReader("date,rooms_sold\n"))
	assert.ErrorIs(t, err, ErrInvalidWorkbook)
}

func TestParseDateAcceptsExcelSerial(t *testing.T) {
	got, err := parseDate("45301")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-10", got)

	got, err = parseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", got)

	_, err = parseDate("yesterday")
	assert.Error(t, err)
}

func TestParseRoomsRejectsFractions(t *testing.T) {
	_, err := parseRooms("10.5")
	assert.Error(t, err)
	_, err = parseRooms("-1")
	assert.Error(t, err)

	n, err := parseRooms("150")
	require.NoError(t, err)
	assert.Equal(t, 150, n)
}
