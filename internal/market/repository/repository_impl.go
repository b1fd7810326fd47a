package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	marketdomain "github.com/smallbiznis/benchstay/internal/market/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() marketdomain.Repository {
	return &repo{}
}

const snapshotColumns = `id, hotel_id, date, total_rooms_available, total_rooms_sold, total_revenue,
	market_occupancy, market_adr, market_revpar, participant_count, created_at, updated_at`

const indexColumns = `id, hotel_id, competitor_id, date, fair_market_share, actual_market_share,
	mpi, ari, rgi, mpi_rank, ari_rank, rgi_rank, created_at, updated_at`

func (r *repo) UpsertSnapshot(ctx context.Context, db *gorm.DB, s *marketdomain.MarketSnapshot) error {
	existing, err := r.FindSnapshot(ctx, db, s.HotelID, s.Date)
	if err != nil {
		return err
	}
	if existing != nil {
		if existing.SameFigures(*s) {
			*s = *existing
			return nil
		}
		s.ID = existing.ID
		s.CreatedAt = existing.CreatedAt
		return db.WithContext(ctx).Exec(
			`UPDATE market_snapshots
			 SET total_rooms_available = ?, total_rooms_sold = ?, total_revenue = ?, market_occupancy = ?,
			     market_adr = ?, market_revpar = ?, participant_count = ?, updated_at = ?
			 WHERE id = ?`,
			s.TotalRoomsAvailable,
			s.TotalRoomsSold,
			s.TotalRevenue,
			s.MarketOccupancy,
			s.MarketADR,
			s.MarketRevPAR,
			s.ParticipantCount,
			s.UpdatedAt,
			s.ID,
		).Error
	}

	return r.insertSnapshot(ctx, db, s)
}

// insertSnapshot inserts s, or overwrites the figures of a row another writer
// created for the same hotel and date after our read. s is refreshed from the stored row.
func (r *repo) insertSnapshot(ctx context.Context, db *gorm.DB, s *marketdomain.MarketSnapshot) error {
	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "hotel_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_rooms_available",
			"total_rooms_sold",
			"total_revenue",
			"market_occupancy",
			"market_adr",
			"market_revpar",
			"participant_count",
			"updated_at",
		}),
	}).Create(s).Error
	if err != nil {
		return err
	}
	stored, err := r.FindSnapshot(ctx, db, s.HotelID, s.Date)
	if err != nil {
		return err
	}
	if stored != nil {
		*s = *stored
	}
	return nil
}

func (r *repo) FindSnapshot(ctx context.Context, db *gorm.DB, hotelID snowflake.ID, date time.Time) (*marketdomain.MarketSnapshot, error) {
	var snapshot marketdomain.MarketSnapshot
	err := db.WithContext(ctx).Raw(
		`SELECT `+snapshotColumns+` FROM market_snapshots WHERE hotel_id = ? AND date = ?`,
		hotelID,
		date,
	).Scan(&snapshot).Error
	if err != nil {
		return nil, err
	}
	if snapshot.ID == 0 {
		return nil, nil
	}
	return &snapshot, nil
}

func (r *repo) ListSnapshots(ctx context.Context, db *gorm.DB, hotelID snowflake.ID, start, end time.Time) ([]marketdomain.MarketSnapshot, error) {
	var snapshots []marketdomain.MarketSnapshot
	err := db.WithContext(ctx).Raw(
		`SELECT `+snapshotColumns+` FROM market_snapshots
		 WHERE hotel_id = ? AND date >= ? AND date <= ?
		 ORDER BY date ASC`,
		hotelID,
		start,
		end,
	).Scan(&snapshots).Error
	if err != nil {
		return nil, err
	}
	return snapshots, nil
}

func (r *repo) DeleteSnapshot(ctx context.Context, db *gorm.DB, hotelID snowflake.ID, date time.Time) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM market_snapshots WHERE hotel_id = ? AND date = ?`,
		hotelID,
		date,
	).Error
}

func (r *repo) UpsertIndex(ctx context.Context, db *gorm.DB, idx *marketdomain.PerformanceIndex) error {
	existing, err := r.FindIndex(ctx, db, idx.HotelID, idx.CompetitorID, idx.Date)
	if err != nil {
		return err
	}
	if existing != nil {
		if existing.SameFigures(*idx) {
			*idx = *existing
			return nil
		}
		idx.ID = existing.ID
		idx.CreatedAt = existing.CreatedAt
		idx.MPIRank = existing.MPIRank
		idx.ARIRank = existing.ARIRank
		idx.RGIRank = existing.RGIRank
		return db.WithContext(ctx).Exec(
			`UPDATE performance_indices
			 SET fair_market_share = ?, actual_market_share = ?, mpi = ?, ari = ?, rgi = ?, updated_at = ?
			 WHERE id = ?`,
			idx.FairMarketShare,
			idx.ActualMarketShare,
			idx.MPI,
			idx.ARI,
			idx.RGI,
			idx.UpdatedAt,
			idx.ID,
		).Error
	}

	return r.insertIndex(ctx, db, idx)
}

// insertIndex inserts idx, or overwrites the shares and indices of a row another
// writer created for the same entity and date. Existing ranks are left to UpdateRanks.
func (r *repo) insertIndex(ctx context.Context, db *gorm.DB, idx *marketdomain.PerformanceIndex) error {
	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "hotel_id"}, {Name: "competitor_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"fair_market_share",
			"actual_market_share",
			"mpi",
			"ari",
			"rgi",
			"updated_at",
		}),
	}).Create(idx).Error
	if err != nil {
		return err
	}
	stored, err := r.FindIndex(ctx, db, idx.HotelID, idx.CompetitorID, idx.Date)
	if err != nil {
		return err
	}
	if stored != nil {
		*idx = *stored
	}
	return nil
}

func (r *repo) FindIndex(ctx context.Context, db *gorm.DB, hotelID, competitorID snowflake.ID, date time.Time) (*marketdomain.PerformanceIndex, error) {
	var idx marketdomain.PerformanceIndex
	err := db.WithContext(ctx).Raw(
		`SELECT `+indexColumns+` FROM performance_indices
		 WHERE hotel_id = ? AND competitor_id = ? AND date = ?`,
		hotelID,
		competitorID,
		date,
	).Scan(&idx).Error
	if err != nil {
		return nil, err
	}
	if idx.ID == 0 {
		return nil, nil
	}
	return &idx, nil
}

func (r *repo) ListIndices(ctx context.Context, db *gorm.DB, hotelID snowflake.ID, start, end time.Time) ([]marketdomain.PerformanceIndex, error) {
	var indices []marketdomain.PerformanceIndex
	err := db.WithContext(ctx).Raw(
		`SELECT `+indexColumns+` FROM performance_indices
		 WHERE hotel_id = ? AND date >= ? AND date <= ?
		 ORDER BY date ASC, competitor_id ASC`,
		hotelID,
		start,
		end,
	).Scan(&indices).Error
	if err != nil {
		return nil, err
	}
	return indices, nil
}

func (r *repo) ListRankingEntries(ctx context.Context, db *gorm.DB, hotelID snowflake.ID, date time.Time) ([]marketdomain.RankingEntry, error) {
	var entries []marketdomain.RankingEntry
	err := db.WithContext(ctx).Raw(
		`SELECT pi.competitor_id, c.name AS competitor_name, pi.mpi, pi.ari, pi.rgi,
		        pi.mpi_rank, pi.ari_rank, pi.rgi_rank
		 FROM performance_indices pi
		 JOIN competitors c ON c.id = pi.competitor_id
		 WHERE pi.hotel_id = ? AND pi.date = ? AND pi.competitor_id <> 0
		 ORDER BY c.name ASC, pi.competitor_id ASC`,
		hotelID,
		date,
	).Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repo) UpdateRanks(ctx context.Context, db *gorm.DB, hotelID, competitorID snowflake.ID, date time.Time, ranks marketdomain.Ranks) error {
	return db.WithContext(ctx).Exec(
		`UPDATE performance_indices SET mpi_rank = ?, ari_rank = ?, rgi_rank = ?
		 WHERE hotel_id = ? AND competitor_id = ? AND date = ?`,
		ranks.MPIRank,
		ranks.ARIRank,
		ranks.RGIRank,
		hotelID,
		competitorID,
		date,
	).Error
}

func (r *repo) DeleteIndicesExcept(ctx context.Context, db *gorm.DB, hotelID snowflake.ID, date time.Time, keep []snowflake.ID) error {
	stmt := db.WithContext(ctx).
		Where("hotel_id = ? AND date = ?", hotelID, date)
	if len(keep) > 0 {
		stmt = stmt.Where("competitor_id NOT IN ?", keep)
	}
	return stmt.Delete(&marketdomain.PerformanceIndex{}).Error
}

func (r *repo) DeleteIndicesForDate(ctx context.Context, db *gorm.DB, hotelID snowflake.ID, date time.Time) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM performance_indices WHERE hotel_id = ? AND date = ?`,
		hotelID,
		date,
	).Error
}

func (r *repo) DeleteIndicesByCompetitor(ctx context.Context, db *gorm.DB, competitorID snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM performance_indices WHERE competitor_id = ?`,
		competitorID,
	).Error
}
