package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	auditdomain "github.com/smallbiznis/benchstay/internal/audit/domain"
	"github.com/smallbiznis/benchstay/internal/clock"
	dailyrecorddomain "github.com/smallbiznis/benchstay/internal/dailyrecord/domain"
	marketdomain "github.com/smallbiznis/benchstay/internal/market/domain"
	"github.com/smallbiznis/benchstay/internal/metric"
	propertydomain "github.com/smallbiznis/benchstay/internal/property/domain"
	"github.com/smallbiznis/benchstay/internal/reportcache"
	"github.com/smallbiznis/benchstay/pkg/dates"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultListLimit = 50

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Repo         dailyrecorddomain.Repository
	Properties   propertydomain.Repository
	Recalculator marketdomain.Recalculator
	Audit        auditdomain.Service
	Cache        *reportcache.Cache `optional:"true"`
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	repo         dailyrecorddomain.Repository
	properties   propertydomain.Repository
	recalculator marketdomain.Recalculator
	audit        auditdomain.Service
	cache        *reportcache.Cache
}

func New(p Params) dailyrecorddomain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("dailyrecord.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		repo:         p.Repo,
		properties:   p.Properties,
		recalculator: p.Recalculator,
		audit:        p.Audit,
		cache:        p.Cache,
	}
}

func (s *Service) Write(ctx context.Context, req dailyrecorddomain.WriteRequest) (*dailyrecorddomain.DailyRecord, error) {
	if req.HotelID == 0 {
		return nil, dailyrecorddomain.ErrInvalidHotel
	}
	date, err := dates.Parse(req.Date)
	if err != nil {
		return nil, err
	}
	if req.RoomsSold < 0 {
		return nil, dailyrecorddomain.ErrInvalidRoomsSold
	}

	hotel, err := s.properties.FindHotelByID(ctx, s.db, req.HotelID)
	if err != nil {
		return nil, err
	}
	if hotel == nil {
		return nil, dailyrecorddomain.ErrInvalidHotel
	}

	now := s.clock.Now()
	rec := &dailyrecorddomain.DailyRecord{
		ID:        s.genID.Generate(),
		HotelID:   hotel.ID,
		Date:      date,
		RoomsSold: req.RoomsSold,
		Notes:     strings.TrimSpace(req.Notes),
		CreatedAt: now,
		UpdatedAt: now,
	}

	switch strings.ToLower(strings.TrimSpace(req.Kind)) {
	case dailyrecorddomain.KindHotel:
		if req.TotalRevenue == nil || req.TotalRevenue.IsNegative() {
			return nil, dailyrecorddomain.ErrInvalidRevenue
		}
		rec.CompetitorID = dailyrecorddomain.HotelEntity
		rec.TotalRevenue = *req.TotalRevenue
		rec.TotalRooms = hotel.TotalRooms
	case dailyrecorddomain.KindCompetitor:
		competitor, err := s.ownedCompetitor(ctx, hotel.ID, req.CompetitorID)
		if err != nil {
			return nil, err
		}
		if !competitor.IsActive {
			return nil, dailyrecorddomain.ErrInactiveCompetitor
		}
		if req.EstimatedAverageRate == nil || req.EstimatedAverageRate.IsNegative() {
			return nil, dailyrecorddomain.ErrInvalidRate
		}
		rec.CompetitorID = competitor.ID
		rec.AverageRate = *req.EstimatedAverageRate
		rec.TotalRooms = competitor.TotalRooms
	default:
		return nil, dailyrecorddomain.ErrInvalidKind
	}

	if req.TotalRooms != nil {
		rec.TotalRooms = *req.TotalRooms
	}
	if err := derive(rec); err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindByEntityDate(ctx, tx, rec.HotelID, rec.CompetitorID, rec.Date)
		if err != nil {
			return err
		}
		if err := s.Save(ctx, tx, rec, dailyrecorddomain.FullRecompute); err != nil {
			return err
		}
		if existing != nil {
			return s.audit.Record(ctx, tx, auditdomain.EntityDailyRecord, rec.ID, auditdomain.ActionUpdate, map[string]any{
				"before": auditFields(existing),
				"after":  auditFields(rec),
			})
		}
		return s.audit.Record(ctx, tx, auditdomain.EntityDailyRecord, rec.ID, auditdomain.ActionCreate, auditFields(rec))
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, rec.HotelID)
	return s.reload(ctx, rec.ID)
}

func (s *Service) Update(ctx context.Context, id snowflake.ID, req dailyrecorddomain.UpdateRequest) (*dailyrecorddomain.DailyRecord, error) {
	if id == 0 {
		return nil, dailyrecorddomain.ErrNotFound
	}
	existing, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, dailyrecorddomain.ErrNotFound
	}

	rec := *existing
	if req.Date != nil {
		date, err := dates.Parse(*req.Date)
		if err != nil {
			return nil, err
		}
		rec.Date = date
	}
	if req.RoomsSold != nil {
		if *req.RoomsSold < 0 {
			return nil, dailyrecorddomain.ErrInvalidRoomsSold
		}
		rec.RoomsSold = *req.RoomsSold
	}
	if req.TotalRooms != nil {
		rec.TotalRooms = *req.TotalRooms
	}
	if req.Notes != nil {
		rec.Notes = strings.TrimSpace(*req.Notes)
	}
	if rec.IsHotel() {
		if req.TotalRevenue != nil {
			if req.TotalRevenue.IsNegative() {
				return nil, dailyrecorddomain.ErrInvalidRevenue
			}
			rec.TotalRevenue = *req.TotalRevenue
		}
	} else if req.EstimatedAverageRate != nil {
		if req.EstimatedAverageRate.IsNegative() {
			return nil, dailyrecorddomain.ErrInvalidRate
		}
		rec.AverageRate = *req.EstimatedAverageRate
	}
	if err := derive(&rec); err != nil {
		return nil, err
	}
	rec.UpdatedAt = s.clock.Now()

	oldDate := existing.Date
	moved := !dates.Normalize(oldDate).Equal(rec.Date)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if moved {
			clash, err := s.repo.FindByEntityDate(ctx, tx, rec.HotelID, rec.CompetitorID, rec.Date)
			if err != nil {
				return err
			}
			if clash != nil {
				return dailyrecorddomain.ErrDuplicateRecord
			}
		}
		if err := s.Save(ctx, tx, &rec, dailyrecorddomain.FullRecompute); err != nil {
			return err
		}
		if moved {
			if _, err := s.recalculator.Recalculate(ctx, tx, rec.HotelID, oldDate); err != nil {
				return fmt.Errorf("recalculate previous date: %w", err)
			}
		}
		return s.audit.Record(ctx, tx, auditdomain.EntityDailyRecord, rec.ID, auditdomain.ActionUpdate, map[string]any{
			"before": auditFields(existing),
			"after":  auditFields(&rec),
		})
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, rec.HotelID)
	return s.reload(ctx, rec.ID)
}

// Delete removes the record and recalculates its date in the same transaction.
func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	existing, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return dailyrecorddomain.ErrNotFound
	}

	ctx = marketdomain.WithTrigger(ctx, marketdomain.TriggerRecordDelete)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Delete(ctx, tx, existing.ID); err != nil {
			return err
		}
		if _, err := s.recalculator.Recalculate(ctx, tx, existing.HotelID, existing.Date); err != nil {
			return fmt.Errorf("recalculate after delete: %w", err)
		}
		return s.audit.Record(ctx, tx, auditdomain.EntityDailyRecord, existing.ID, auditdomain.ActionDelete, auditFields(existing))
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, existing.HotelID)
	return nil
}

// Save persists rec inside tx. FullRecompute stores the record and recalculates its date;
// CacheOnly writes the cached index columns and never reaches the recalculator.
func (s *Service) Save(ctx context.Context, tx *gorm.DB, rec *dailyrecorddomain.DailyRecord, intent dailyrecorddomain.UpdateIntent) error {
	switch intent {
	case dailyrecorddomain.FullRecompute:
		current, err := s.repo.FindByID(ctx, tx, rec.ID)
		if err != nil {
			return err
		}
		if current != nil {
			err = s.repo.Update(ctx, tx, rec)
		} else {
			err = s.repo.Upsert(ctx, tx, rec)
		}
		if err != nil {
			return fmt.Errorf("save daily record: %w", err)
		}
		if _, err := s.recalculator.Recalculate(ctx, tx, rec.HotelID, rec.Date); err != nil {
			return fmt.Errorf("recalculate market: %w", err)
		}
		return nil
	case dailyrecorddomain.CacheOnly:
		if rec.ID == 0 {
			return dailyrecorddomain.ErrNotFound
		}
		return s.repo.UpdateCachedIndices(ctx, tx, rec.ID, dailyrecorddomain.CachedIndices{
			OccupancyIndex: rec.OccupancyIndex,
			ADRIndex:       rec.ADRIndex,
			RevenueIndex:   rec.RevenueIndex,
		})
	default:
		return dailyrecorddomain.ErrInvalidIntent
	}
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*dailyrecorddomain.DailyRecord, error) {
	rec, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, dailyrecorddomain.ErrNotFound
	}
	return rec, nil
}

func (s *Service) List(ctx context.Context, filter dailyrecorddomain.ListFilter) ([]dailyrecorddomain.DailyRecord, error) {
	if filter.HotelID == 0 {
		return nil, dailyrecorddomain.ErrInvalidHotel
	}
	switch filter.Kind {
	case "", dailyrecorddomain.KindAll:
		filter.Kind = dailyrecorddomain.KindAll
	case dailyrecorddomain.KindHotel, dailyrecorddomain.KindCompetitor:
	default:
		return nil, dailyrecorddomain.ErrInvalidKind
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	return s.repo.List(ctx, s.db, filter)
}

func (s *Service) ownedCompetitor(ctx context.Context, hotelID, competitorID snowflake.ID) (*propertydomain.Competitor, error) {
	if competitorID == 0 {
		return nil, dailyrecorddomain.ErrInvalidCompetitor
	}
	competitor, err := s.properties.FindCompetitorByID(ctx, s.db, competitorID)
	if err != nil {
		return nil, err
	}
	if competitor == nil || competitor.HotelID != hotelID {
		return nil, dailyrecorddomain.ErrInvalidCompetitor
	}
	return competitor, nil
}

func (s *Service) reload(ctx context.Context, id snowflake.ID) (*dailyrecorddomain.DailyRecord, error) {
	rec, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, errors.New("daily record vanished after write")
	}
	return rec, nil
}

func (s *Service) invalidate(ctx context.Context, hotelID snowflake.ID) {
	if err := s.cache.InvalidateHotel(ctx, hotelID); err != nil {
		s.log.Warn("report cache invalidation failed", zap.Int64("hotel_id", hotelID.Int64()), zap.Error(err))
	}
}

// derive validates stock and recomputes the stored figures.
// Competitor revenue is rooms sold times the estimated rate, and the rate is kept as entered.
func derive(rec *dailyrecorddomain.DailyRecord) error {
	if rec.TotalRooms <= 0 {
		return dailyrecorddomain.ErrInvalidTotalRooms
	}
	if rec.RoomsSold > rec.TotalRooms {
		return dailyrecorddomain.ErrRoomsSoldExceedStock
	}
	rec.Date = dates.Normalize(rec.Date)

	if !rec.IsHotel() {
		rec.AverageRate = metric.Store(rec.AverageRate)
		rec.TotalRevenue = metric.Store(rec.AverageRate.Mul(decimal.NewFromInt(int64(rec.RoomsSold))))
	}
	rec.TotalRevenue = metric.Store(rec.TotalRevenue)

	values := metric.Compute(rec.RoomsSold, rec.TotalRevenue, rec.TotalRooms).Rounded()
	rec.OccupancyPercentage = values.OccupancyPercentage
	rec.RevPAR = values.RevPAR
	if rec.IsHotel() {
		rec.AverageRate = values.AverageRate
	}
	return nil
}

func auditFields(rec *dailyrecorddomain.DailyRecord) map[string]any {
	fields := map[string]any{
		"date":          dates.Format(rec.Date),
		"rooms_sold":    rec.RoomsSold,
		"total_revenue": rec.TotalRevenue.StringFixed(2),
		"average_rate":  rec.AverageRate.StringFixed(2),
		"total_rooms":   rec.TotalRooms,
	}
	if !rec.IsHotel() {
		fields["competitor_id"] = rec.CompetitorID.String()
	}
	if rec.Notes != "" {
		fields["notes"] = rec.Notes
	}
	return fields
}
