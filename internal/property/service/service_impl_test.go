package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type harness struct {
	svc     propertydomain.Service
	records dailyrecorddomain.Service
	market  marketdomain.Service
	audit   auditdomain.Service
}

func setupPropertyService(t *testing.T) *harness {
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
	clk := clock.NewFakeClock(time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC))
	properties := propertyrepository.Provide()
	records := dailyrecordrepository.Provide()

	market := marketservice.New(marketservice.Params{
		DB:         db,
		Log:        zap.NewNop(),
		GenID:      node,
		Clock:      clk,
		Repo:       marketrepository.Provide(),
		Records:    records,
		Properties: properties,
	})
	audit := auditservice.NewService(auditservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clk,
		Repo:  auditrepository.Provide(),
	})

	return &harness{
		svc: New(Params{
			DB:           db,
			Log:          zap.NewNop(),
			GenID:        node,
			Clock:        clk,
			Repo:         properties,
			Records:      records,
			Recalculator: market,
			Audit:        audit,
		}),
		records: dailyrecordservice.New(dailyrecordservice.Params{
			DB:           db,
			Log:          zap.NewNop(),
			GenID:        node,
			Clock:        clk,
			Repo:         records,
			Properties:   properties,
			Recalculator: market,
			Audit:        audit,
		}),
		market: market,
		audit:  audit,
	}
}

func TestCreateHotelValidates(t *testing.T) {
	h := setupPropertyService(t)
	ctx := context.Background()

	_, err := h.svc.CreateHotel(ctx, propertydomain.HotelRequest{Name: " ", TotalRooms: 10})
	assert.ErrorIs(t, err, propertydomain.ErrInvalidName)
	_, err = h.svc.CreateHotel(ctx, propertydomain.HotelRequest{Name: "Grand Harbor"})
	assert.ErrorIs(t, err, propertydomain.ErrInvalidTotalRooms)

	hotel, err := h.svc.CreateHotel(ctx, propertydomain.HotelRequest{Name: " Grand Harbor ", TotalRooms: 300})
	require.NoError(t, err)
	assert.Equal(t, "Grand Harbor", hotel.Name)

	got, err := h.svc.GetHotel(ctx, hotel.ID)
	require.NoError(t, err)
	assert.Equal(t, 300, got.TotalRooms)

	_, err = h.svc.GetHotel(ctx, snowflake.ID(12345))
	assert.ErrorIs(t, err, propertydomain.ErrHotelNotFound)
}

func TestCompetitorNamesAreUniquePerHotel(t *testing.T) {
	h := setupPropertyService(t)
	ctx := context.Background()
	hotel, err := h.svc.CreateHotel(ctx, propertydomain.HotelRequest{Name: "Grand Harbor", TotalRooms: 300})
	require.NoError(t, err)

	_, err = h.svc.CreateCompetitor(ctx, hotel.ID, propertydomain.CompetitorRequest{Name: "Seaside Inn", TotalRooms: 200})
	require.NoError(t, err)
	_, err = h.svc.CreateCompetitor(ctx, hotel.ID, propertydomain.CompetitorRequest{Name: "Seaside Inn", TotalRooms: 150})
	assert.ErrorIs(t, err, propertydomain.ErrDuplicateName)

	other, err := h.svc.CreateCompetitor(ctx, hotel.ID, propertydomain.CompetitorRequest{Name: "Bay Lodge", TotalRooms: 100})
	require.NoError(t, err)
	rename := "Seaside Inn"
	_, err = h.svc.UpdateCompetitor(ctx, other.ID, propertydomain.UpdateCompetitorRequest{Name: &rename})
	assert.ErrorIs(t, err, propertydomain.ErrDuplicateName)
}

func TestDeactivateCompetitorFiltersActiveList(t *testing.T) {
	h := setupPropertyService(t)
	ctx := context.Background()
	hotel, err := h.svc.CreateHotel(ctx, propertydomain.HotelRequest{Name: "Grand Harbor", TotalRooms: 300})
	require.NoError(t, err)
	seaside, err := h.svc.CreateCompetitor(ctx, hotel.ID, propertydomain.CompetitorRequest{Name: "Seaside Inn", TotalRooms: 200})
	require.NoError(t, err)
	_, err = h.svc.CreateCompetitor(ctx, hotel.ID, propertydomain.CompetitorRequest{Name: "Bay Lodge", TotalRooms: 100})
	require.NoError(t, err)

	deactivated, err := h.svc.DeactivateCompetitor(ctx, seaside.ID)
	require.NoError(t, err)
	assert.False(t, deactivated.IsActive)
	assert.Equal(t, propertydomain.CompetitorStatusInactive, deactivated.Status)

	active, err := h.svc.ActiveCompetitors(ctx, hotel.ID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Bay Lodge", active[0].Name)

	inactiveFlag := false
	inactive, err := h.svc.ListCompetitors(ctx, hotel.ID, &inactiveFlag)
	require.NoError(t, err)
	require.Len(t, inactive, 1)
	assert.Equal(t, "Seaside Inn", inactive[0].Name)

	all, err := h.svc.ListCompetitors(ctx, hotel.ID, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	bogus := "archived"
	_, err = h.svc.UpdateCompetitor(ctx, seaside.ID, propertydomain.UpdateCompetitorRequest{Status: &bogus})
	assert.ErrorIs(t, err, propertydomain.ErrInvalidStatus)
}

func TestDeleteCompetitorRecalculatesAffectedDates(t *testing.T) {
	h := setupPropertyService(t)
	ctx := context.Background()
	hotel, err := h.svc.CreateHotel(ctx, propertydomain.HotelRequest{Name: "Grand Harbor", TotalRooms: 300})
	require.NoError(t, err)
	seaside, err := h.svc.CreateCompetitor(ctx, hotel.ID, propertydomain.CompetitorRequest{Name: "Seaside Inn", TotalRooms: 200})
	require.NoError(t, err)

	revenue := decimal.NewFromInt(22500)
	rate := decimal.NewFromInt(140)
	for _, date := range []string{"2024-01-10", "2024-01-11"} {
		_, err := h.records.Write(ctx, dailyrecorddomain.WriteRequest{HotelID: hotel.ID, Kind: "hotel", Date: date, RoomsSold: 150, TotalRevenue: &revenue})
		require.NoError(t, err)
		_, err = h.records.Write(ctx, dailyrecorddomain.WriteRequest{HotelID: hotel.ID, Kind: "competitor", CompetitorID: seaside.ID, Date: date, RoomsSold: 100, EstimatedAverageRate: &rate})
		require.NoError(t, err)
	}

	require.NoError(t, h.svc.DeleteCompetitor(ctx, seaside.ID))

	for _, day := range []int{10, 11} {
		date := time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC)
		snapshot, err := h.market.GetMarketSnapshot(ctx, hotel.ID, date)
		require.NoError(t, err)
		assert.Equal(t, 1, snapshot.ParticipantCount)
		assert.Equal(t, 300, snapshot.TotalRoomsAvailable)

		_, err = h.market.GetPerformanceIndex(ctx, hotel.ID, seaside.ID, date)
		assert.ErrorIs(t, err, marketdomain.ErrNotFound)
	}

	remaining, err := h.records.List(ctx, dailyrecorddomain.ListFilter{HotelID: hotel.ID, Kind: dailyrecorddomain.KindCompetitor})
	require.NoError(t, err)
	assert.Empty(t, remaining)

	all, err := h.svc.ListCompetitors(ctx, hotel.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, all)

	logs, err := h.audit.List(ctx, auditdomain.ListFilter{EntityType: auditdomain.EntityCompetitor})
	require.NoError(t, err)
	require.NotEmpty(t, logs)
	assert.Equal(t, auditdomain.ActionDelete, logs[0].Action)

	assert.ErrorIs(t, h.svc.DeleteCompetitor(ctx, seaside.ID), propertydomain.ErrNotFound)
}
