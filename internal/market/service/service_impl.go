package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/benchstay/internal/clock"
	dailyrecorddomain "github.com/smallbiznis/benchstay/internal/dailyrecord/domain"
	marketdomain "github.com/smallbiznis/benchstay/internal/market/domain"
	"github.com/smallbiznis/benchstay/internal/metric"
	"github.com/smallbiznis/benchstay/internal/observability/logger"
	"github.com/smallbiznis/benchstay/internal/observability/metrics"
	propertydomain "github.com/smallbiznis/benchstay/internal/property/domain"
	"github.com/smallbiznis/benchstay/internal/reportcache"
	"github.com/smallbiznis/benchstay/pkg/dates"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Repo       marketdomain.Repository
	Records    dailyrecorddomain.Repository
	Properties propertydomain.Repository
	Metrics    *metrics.Metrics   `optional:"true"`
	Cache      *reportcache.Cache `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	repo       marketdomain.Repository
	records    dailyrecorddomain.Repository
	properties propertydomain.Repository
	metrics    *metrics.Metrics
	cache      *reportcache.Cache
}

func New(p Params) marketdomain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("market.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		records:    p.Records,
		properties: p.Properties,
		metrics:    p.Metrics,
		cache:      p.Cache,
	}
}

// AsRecalculator exposes the service to writers that only trigger recalculation.
func AsRecalculator(s marketdomain.Service) marketdomain.Recalculator {
	return s
}

// Recalculate rebuilds the snapshot, the indices and the ranks of one date using tx.
// Any error leaves the caller to roll the transaction back.
func (s *Service) Recalculate(ctx context.Context, tx *gorm.DB, hotelID snowflake.ID, date time.Time) (*marketdomain.MarketSnapshot, error) {
	if hotelID == 0 {
		return nil, marketdomain.ErrInvalidHotel
	}
	date = dates.Normalize(date)
	log := logger.WithContext(ctx, s.log).With(
		zap.Int64("hotel_id", hotelID.Int64()),
		zap.String("date", dates.Format(date)),
	)

	records, err := s.records.ListForDate(ctx, tx, hotelID, date)
	if err != nil {
		return nil, fmt.Errorf("load daily records: %w", err)
	}

	var hotelRecord *dailyrecorddomain.DailyRecord
	byCompetitor := make(map[snowflake.ID]dailyrecorddomain.DailyRecord, len(records))
	for i := range records {
		if records[i].IsHotel() {
			hotelRecord = &records[i]
			continue
		}
		byCompetitor[records[i].CompetitorID] = records[i]
	}

	if hotelRecord == nil {
		if err := s.purgeDate(ctx, tx, hotelID, date); err != nil {
			return nil, err
		}
		log.Debug("hotel has no record for date, market recalculation skipped")
		s.metrics.RecordRecalculationSkipped(ctx, "missing_hotel_record")
		return nil, nil
	}

	competitors, err := s.properties.ListCompetitors(ctx, tx, hotelID, true)
	if err != nil {
		return nil, fmt.Errorf("load active competitors: %w", err)
	}

	participants := make([]dailyrecorddomain.DailyRecord, 0, len(competitors))
	keep := []snowflake.ID{dailyrecorddomain.HotelEntity}
	for _, competitor := range competitors {
		rec, ok := byCompetitor[competitor.ID]
		if !ok {
			continue
		}
		participants = append(participants, rec)
		keep = append(keep, competitor.ID)
	}

	totals := aggregate(*hotelRecord, participants)
	now := s.clock.Now()

	snapshot := &marketdomain.MarketSnapshot{
		ID:                  s.genID.Generate(),
		HotelID:             hotelID,
		Date:                date,
		TotalRoomsAvailable: totals.RoomsAvailable,
		TotalRoomsSold:      totals.RoomsSold,
		TotalRevenue:        metric.Store(totals.Revenue),
		MarketOccupancy:     metric.Store(totals.Derived.OccupancyPercentage),
		MarketADR:           metric.Store(totals.Derived.AverageRate),
		MarketRevPAR:        metric.Store(totals.Derived.RevPAR),
		ParticipantCount:    totals.Participants,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := s.repo.UpsertSnapshot(ctx, tx, snapshot); err != nil {
		return nil, fmt.Errorf("upsert market snapshot: %w", err)
	}

	if _, err := s.writeIndex(ctx, tx, *hotelRecord, totals, now); err != nil {
		return nil, err
	}

	for _, rec := range participants {
		values, err := s.writeIndex(ctx, tx, rec, totals, now)
		if err != nil {
			return nil, err
		}
		cached := dailyrecorddomain.CachedIndices{
			OccupancyIndex: decimal.NewNullDecimal(values.MPI),
			ADRIndex:       decimal.NewNullDecimal(values.ARI),
			RevenueIndex:   decimal.NewNullDecimal(values.RGI),
		}
		if err := s.records.UpdateCachedIndices(ctx, tx, rec.ID, cached); err != nil {
			return nil, fmt.Errorf("cache competitor indices: %w", err)
		}
	}

	if err := s.repo.DeleteIndicesExcept(ctx, tx, hotelID, date, keep); err != nil {
		return nil, fmt.Errorf("prune performance indices: %w", err)
	}

	if err := s.UpdateRanks(ctx, tx, hotelID, date); err != nil {
		return nil, err
	}

	s.metrics.RecordRecalculation(ctx, marketdomain.TriggerFromContext(ctx))
	log.Debug("market recalculated",
		zap.Int("participants", totals.Participants),
		zap.Int("rooms_available", totals.RoomsAvailable),
		zap.Int("rooms_sold", totals.RoomsSold),
	)
	return snapshot, nil
}

func (s *Service) writeIndex(ctx context.Context, tx *gorm.DB, rec dailyrecorddomain.DailyRecord, totals marketTotals, now time.Time) (indexValues, error) {
	values := computeIndex(rec, totals)
	row := &marketdomain.PerformanceIndex{
		ID:                s.genID.Generate(),
		HotelID:           rec.HotelID,
		CompetitorID:      rec.CompetitorID,
		Date:              rec.Date,
		FairMarketShare:   values.FairMarketShare,
		ActualMarketShare: values.ActualMarketShare,
		MPI:               decimal.NewNullDecimal(values.MPI),
		ARI:               decimal.NewNullDecimal(values.ARI),
		RGI:               decimal.NewNullDecimal(values.RGI),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.repo.UpsertIndex(ctx, tx, row); err != nil {
		return indexValues{}, fmt.Errorf("upsert performance index: %w", err)
	}
	return values, nil
}

// UpdateRanks re-ranks the competitor rows of a date.
// Only rank columns are written, so nothing here feeds back into recalculation.
func (s *Service) UpdateRanks(ctx context.Context, tx *gorm.DB, hotelID snowflake.ID, date time.Time) error {
	entries, err := s.repo.ListRankingEntries(ctx, tx, hotelID, date)
	if err != nil {
		return fmt.Errorf("load ranking pool: %w", err)
	}
	if len(entries) == 0 {
		return nil
	}

	mpi := make([]RankItem, 0, len(entries))
	ari := make([]RankItem, 0, len(entries))
	rgi := make([]RankItem, 0, len(entries))
	for _, e := range entries {
		mpi = append(mpi, RankItem{Key: e.CompetitorID, Name: e.CompetitorName, Value: e.MPI})
		ari = append(ari, RankItem{Key: e.CompetitorID, Name: e.CompetitorName, Value: e.ARI})
		rgi = append(rgi, RankItem{Key: e.CompetitorID, Name: e.CompetitorName, Value: e.RGI})
	}
	mpiRanks := CompetitionRanks(mpi)
	ariRanks := CompetitionRanks(ari)
	rgiRanks := CompetitionRanks(rgi)

	for _, e := range entries {
		ranks := marketdomain.Ranks{
			MPIRank: intPtr(mpiRanks[e.CompetitorID]),
			ARIRank: intPtr(ariRanks[e.CompetitorID]),
			RGIRank: intPtr(rgiRanks[e.CompetitorID]),
		}
		if err := s.repo.UpdateRanks(ctx, tx, hotelID, e.CompetitorID, date, ranks); err != nil {
			return fmt.Errorf("update ranks: %w", err)
		}
	}
	return nil
}

// purgeDate removes derived rows of a date whose hotel record is gone.
func (s *Service) purgeDate(ctx context.Context, tx *gorm.DB, hotelID snowflake.ID, date time.Time) error {
	if err := s.repo.DeleteIndicesForDate(ctx, tx, hotelID, date); err != nil {
		return fmt.Errorf("purge performance indices: %w", err)
	}
	if err := s.repo.DeleteSnapshot(ctx, tx, hotelID, date); err != nil {
		return fmt.Errorf("purge market snapshot: %w", err)
	}
	if err := s.records.ClearCachedIndices(ctx, tx, hotelID, date); err != nil {
		return fmt.Errorf("clear cached indices: %w", err)
	}
	return nil
}

func (s *Service) RecalculateDate(ctx context.Context, hotelID snowflake.ID, date time.Time) (*marketdomain.MarketSnapshot, error) {
	if hotelID == 0 {
		return nil, marketdomain.ErrInvalidHotel
	}
	hotel, err := s.properties.FindHotelByID(ctx, s.db, hotelID)
	if err != nil {
		return nil, err
	}
	if hotel == nil {
		return nil, marketdomain.ErrHotelNotFound
	}

	var snapshot *marketdomain.MarketSnapshot
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		snapshot, err = s.Recalculate(ctx, tx, hotelID, date)
		return err
	})
	if err != nil {
		return nil, err
	}

	if err := s.cache.InvalidateHotel(ctx, hotelID); err != nil {
		s.log.Warn("report cache invalidation failed", zap.Int64("hotel_id", hotelID.Int64()), zap.Error(err))
	}
	return snapshot, nil
}

func (s *Service) GetMarketSnapshot(ctx context.Context, hotelID snowflake.ID, date time.Time) (*marketdomain.MarketSnapshot, error) {
	snapshot, err := s.repo.FindSnapshot(ctx, s.db, hotelID, dates.Normalize(date))
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		return nil, marketdomain.ErrNotFound
	}
	return snapshot, nil
}

func (s *Service) GetPerformanceIndex(ctx context.Context, hotelID, competitorID snowflake.ID, date time.Time) (*marketdomain.PerformanceIndex, error) {
	idx, err := s.repo.FindIndex(ctx, s.db, hotelID, competitorID, dates.Normalize(date))
	if err != nil {
		return nil, err
	}
	if idx == nil {
		return nil, marketdomain.ErrNotFound
	}
	return idx, nil
}

// GetRankings returns the date's competitors ordered by MPI rank, then name.
func (s *Service) GetRankings(ctx context.Context, hotelID snowflake.ID, date time.Time) ([]marketdomain.RankingEntry, error) {
	entries, err := s.repo.ListRankingEntries(ctx, s.db, hotelID, dates.Normalize(date))
	if err != nil {
		return nil, err
	}
	sortByMPIRank(entries)
	return entries, nil
}

func intPtr(v int) *int { return &v }
