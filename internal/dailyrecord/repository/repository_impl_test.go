package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	dailyrecorddomain "github.com/smallbiznis/benchstay/internal/dailyrecord/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&dailyrecorddomain.DailyRecord{}))
	return db
}

func TestInsertConcurrentWriterUpdatesExistingRecord(t *testing.T) {
	db := newTestDB(t)
	r := &repo{}
	ctx := context.Background()
	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	created := time.Date(2024, 1, 16, 8, 0, 0, 0, time.UTC)

	require.NoError(t, db.Create(&dailyrecorddomain.DailyRecord{
		ID:                  100,
		HotelID:             1,
		CompetitorID:        7,
		Date:                day,
		RoomsSold:           80,
		TotalRevenue:        decimal.NewFromInt(8000),
		AverageRate:         decimal.NewFromInt(100),
		OccupancyPercentage: decimal.NewFromInt(80),
		RevPAR:              decimal.NewFromInt(80),
		TotalRooms:          100,
		OccupancyIndex:      decimal.NewNullDecimal(decimal.NewFromInt(95)),
		CreatedAt:           created,
		UpdatedAt:           created,
	}).Error)

	// A second writer that read before the record above existed.
	late := &dailyrecorddomain.DailyRecord{
		ID:                  200,
		HotelID:             1,
		CompetitorID:        7,
		Date:                day,
		RoomsSold:           90,
		TotalRevenue:        decimal.NewFromInt(9900),
		AverageRate:         decimal.NewFromInt(110),
		OccupancyPercentage: decimal.NewFromInt(90),
		RevPAR:              decimal.NewFromInt(99),
		TotalRooms:          100,
		Notes:               "late entry",
		CreatedAt:           created.Add(time.Hour),
		UpdatedAt:           created.Add(time.Hour),
	}
	require.NoError(t, r.insert(ctx, db, late))

	var count int64
	require.NoError(t, db.Model(&dailyrecorddomain.DailyRecord{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	stored, err := r.FindByEntityDate(ctx, db, 1, 7, day)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, snowflake.ID(100), stored.ID)
	assert.Equal(t, 90, stored.RoomsSold)
	assert.Equal(t, "late entry", stored.Notes)
	assert.True(t, stored.OccupancyIndex.Valid)
	assert.True(t, stored.OccupancyIndex.Decimal.Equal(decimal.NewFromInt(95)))
	assert.Equal(t, snowflake.ID(100), late.ID)
}

func TestUpsertHotelRecordInsertsThenUpdates(t *testing.T) {
	db := newTestDB(t)
	r := &repo{}
	ctx := context.Background()
	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 1, 16, 8, 0, 0, 0, time.UTC)

	rec := &dailyrecorddomain.DailyRecord{
		ID: 1, HotelID: 1, CompetitorID: dailyrecorddomain.HotelEntity, Date: day,
		RoomsSold: 50, TotalRevenue: decimal.NewFromInt(5000), AverageRate: decimal.NewFromInt(100),
		OccupancyPercentage: decimal.NewFromInt(50), RevPAR: decimal.NewFromInt(50),
		TotalRooms: 100, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, r.Upsert(ctx, db, rec))
	assert.Equal(t, snowflake.ID(1), rec.ID)

	next := *rec
	next.ID = 2
	next.RoomsSold = 60
	require.NoError(t, r.Upsert(ctx, db, &next))
	assert.Equal(t, snowflake.ID(1), next.ID)

	stored, err := r.FindByEntityDate(ctx, db, 1, dailyrecorddomain.HotelEntity, day)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, 60, stored.RoomsSold)
}
