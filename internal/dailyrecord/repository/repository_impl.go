package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	dailyrecorddomain "github.com/smallbiznis/benchstay/internal/dailyrecord/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() dailyrecorddomain.Repository {
	return &repo{}
}

const columns = `id, hotel_id, competitor_id, date, rooms_sold, total_revenue, average_rate,
	occupancy_percentage, revpar, total_rooms, notes, occupancy_index, adr_index, revenue_index,
	created_at, updated_at`

func (r *repo) Upsert(ctx context.Context, db *gorm.DB, rec *dailyrecorddomain.DailyRecord) error {
	existing, err := r.FindByEntityDate(ctx, db, rec.HotelID, rec.CompetitorID, rec.Date)
	if err != nil {
		return err
	}
	if existing != nil {
		rec.ID = existing.ID
		rec.CreatedAt = existing.CreatedAt
		rec.OccupancyIndex = existing.OccupancyIndex
		rec.ADRIndex = existing.ADRIndex
		rec.RevenueIndex = existing.RevenueIndex
		return r.Update(ctx, db, rec)
	}

	return r.insert(ctx, db, rec)
}

// insert stores rec, or overwrites the entered figures of a record another writer
// created for the same entity and date. Cached indices on that record are kept.
func (r *repo) insert(ctx context.Context, db *gorm.DB, rec *dailyrecorddomain.DailyRecord) error {
	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "hotel_id"}, {Name: "competitor_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"rooms_sold",
			"total_revenue",
			"average_rate",
			"occupancy_percentage",
			"revpar",
			"total_rooms",
			"notes",
			"updated_at",
		}),
	}).Create(rec).Error
	if err != nil {
		return err
	}
	stored, err := r.FindByEntityDate(ctx, db, rec.HotelID, rec.CompetitorID, rec.Date)
	if err != nil {
		return err
	}
	if stored != nil {
		*rec = *stored
	}
	return nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, rec *dailyrecorddomain.DailyRecord) error {
	return db.WithContext(ctx).Exec(
		`UPDATE daily_records
		 SET date = ?, rooms_sold = ?, total_revenue = ?, average_rate = ?, occupancy_percentage = ?,
		     revpar = ?, total_rooms = ?, notes = ?, updated_at = ?
		 WHERE id = ?`,
		rec.Date,
		rec.RoomsSold,
		rec.TotalRevenue,
		rec.AverageRate,
		rec.OccupancyPercentage,
		rec.RevPAR,
		rec.TotalRooms,
		rec.Notes,
		rec.UpdatedAt,
		rec.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM daily_records WHERE id = ?`, id).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*dailyrecorddomain.DailyRecord, error) {
	var rec dailyrecorddomain.DailyRecord
	err := db.WithContext(ctx).Raw(
		`SELECT `+columns+` FROM daily_records WHERE id = ?`,
		id,
	).Scan(&rec).Error
	if err != nil {
		return nil, err
	}
	if rec.ID == 0 {
		return nil, nil
	}
	return &rec, nil
}

func (r *repo) FindByEntityDate(ctx context.Context, db *gorm.DB, hotelID, competitorID snowflake.ID, date time.Time) (*dailyrecorddomain.DailyRecord, error) {
	var rec dailyrecorddomain.DailyRecord
	err := db.WithContext(ctx).Raw(
		`SELECT `+columns+` FROM daily_records
		 WHERE hotel_id = ? AND competitor_id = ? AND date = ?`,
		hotelID,
		competitorID,
		date,
	).Scan(&rec).Error
	if err != nil {
		return nil, err
	}
	if rec.ID == 0 {
		return nil, nil
	}
	return &rec, nil
}

func (r *repo) ListForDate(ctx context.Context, db *gorm.DB, hotelID snowflake.ID, date time.Time) ([]dailyrecorddomain.DailyRecord, error) {
	var records []dailyrecorddomain.DailyRecord
	err := db.WithContext(ctx).Raw(
		`SELECT `+columns+` FROM daily_records
		 WHERE hotel_id = ? AND date = ?
		 ORDER BY competitor_id ASC`,
		hotelID,
		date,
	).Scan(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repo) ListInRange(ctx context.Context, db *gorm.DB, hotelID snowflake.ID, start, end time.Time) ([]dailyrecorddomain.DailyRecord, error) {
	var records []dailyrecorddomain.DailyRecord
	err := db.WithContext(ctx).Raw(
		`SELECT `+columns+` FROM daily_records
		 WHERE hotel_id = ? AND date >= ? AND date <= ?
		 ORDER BY date ASC, competitor_id ASC`,
		hotelID,
		start,
		end,
	).Scan(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter dailyrecorddomain.ListFilter) ([]dailyrecorddomain.DailyRecord, error) {
	var records []dailyrecorddomain.DailyRecord
	stmt := db.WithContext(ctx).Model(&dailyrecorddomain.DailyRecord{}).
		Where("hotel_id = ?", filter.HotelID)

	switch filter.Kind {
	case dailyrecorddomain.KindHotel:
		stmt = stmt.Where("competitor_id = ?", dailyrecorddomain.HotelEntity)
	case dailyrecorddomain.KindCompetitor:
		stmt = stmt.Where("competitor_id <> ?", dailyrecorddomain.HotelEntity)
	}
	if filter.StartDate != nil {
		stmt = stmt.Where("date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		stmt = stmt.Where("date <= ?", *filter.EndDate)
	}

	stmt = stmt.Order("date desc, competitor_id asc")
	if filter.Limit > 0 {
		stmt = stmt.Limit(filter.Limit)
	}

	if err := stmt.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repo) DatesForCompetitor(ctx context.Context, db *gorm.DB, competitorID snowflake.ID) ([]time.Time, error) {
	var records []dailyrecorddomain.DailyRecord
	err := db.WithContext(ctx).Raw(
		`SELECT id, hotel_id, date FROM daily_records WHERE competitor_id = ? ORDER BY date ASC`,
		competitorID,
	).Scan(&records).Error
	if err != nil {
		return nil, err
	}
	out := make([]time.Time, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.Date)
	}
	return out, nil
}

func (r *repo) DeleteByCompetitor(ctx context.Context, db *gorm.DB, competitorID snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM daily_records WHERE competitor_id = ?`,
		competitorID,
	).Error
}

func (r *repo) UpdateCachedIndices(ctx context.Context, db *gorm.DB, id snowflake.ID, indices dailyrecorddomain.CachedIndices) error {
	return db.WithContext(ctx).Exec(
		`UPDATE daily_records SET occupancy_index = ?, adr_index = ?, revenue_index = ? WHERE id = ?`,
		indices.OccupancyIndex,
		indices.ADRIndex,
		indices.RevenueIndex,
		id,
	).Error
}

func (r *repo) ClearCachedIndices(ctx context.Context, db *gorm.DB, hotelID snowflake.ID, date time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE daily_records SET occupancy_index = NULL, adr_index = NULL, revenue_index = NULL
		 WHERE hotel_id = ? AND date = ?`,
		hotelID,
		date,
	).Error
}
