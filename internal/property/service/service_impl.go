package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/benchstay/internal/audit/domain"
	"github.com/smallbiznis/benchstay/internal/clock"
	dailyrecorddomain "github.com/smallbiznis/benchstay/internal/dailyrecord/domain"
	marketdomain "github.com/smallbiznis/benchstay/internal/market/domain"
	propertydomain "github.com/smallbiznis/benchstay/internal/property/domain"
	"github.com/smallbiznis/benchstay/internal/reportcache"
	"github.com/smallbiznis/benchstay/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Repo         propertydomain.Repository
	Records      dailyrecorddomain.Repository
	Recalculator marketdomain.Recalculator
	Audit        auditdomain.Service
	Cache        *reportcache.Cache `optional:"true"`
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	repo         propertydomain.Repository
	records      dailyrecorddomain.Repository
	recalculator marketdomain.Recalculator
	audit        auditdomain.Service
	cache        *reportcache.Cache
}

func New(p Params) propertydomain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("property.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		repo:         p.Repo,
		records:      p.Records,
		recalculator: p.Recalculator,
		audit:        p.Audit,
		cache:        p.Cache,
	}
}

func (s *Service) CreateHotel(ctx context.Context, req propertydomain.HotelRequest) (*propertydomain.Hotel, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, propertydomain.ErrInvalidName
	}
	if req.TotalRooms <= 0 {
		return nil, propertydomain.ErrInvalidTotalRooms
	}

	now := s.clock.Now()
	hotel := &propertydomain.Hotel{
		ID:         s.genID.Generate(),
		Name:       name,
		Address:    strings.TrimSpace(req.Address),
		Phone:      strings.TrimSpace(req.Phone),
		Email:      strings.TrimSpace(req.Email),
		TotalRooms: req.TotalRooms,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.InsertHotel(ctx, tx, hotel); err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, auditdomain.EntityHotel, hotel.ID, auditdomain.ActionCreate, hotelFields(hotel))
	})
	if err != nil {
		return nil, err
	}
	return hotel, nil
}

// UpdateHotel changes hotel details. Existing records keep the room count they were written with.
func (s *Service) UpdateHotel(ctx context.Context, id snowflake.ID, req propertydomain.HotelRequest) (*propertydomain.Hotel, error) {
	hotel, err := s.GetHotel(ctx, id)
	if err != nil {
		return nil, err
	}
	before := hotelFields(hotel)

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, propertydomain.ErrInvalidName
	}
	if req.TotalRooms <= 0 {
		return nil, propertydomain.ErrInvalidTotalRooms
	}
	hotel.Name = name
	hotel.Address = strings.TrimSpace(req.Address)
	hotel.Phone = strings.TrimSpace(req.Phone)
	hotel.Email = strings.TrimSpace(req.Email)
	hotel.TotalRooms = req.TotalRooms
	hotel.UpdatedAt = s.clock.Now()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.UpdateHotel(ctx, tx, hotel); err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, auditdomain.EntityHotel, hotel.ID, auditdomain.ActionUpdate, map[string]any{
			"before": before,
			"after":  hotelFields(hotel),
		})
	})
	if err != nil {
		return nil, err
	}
	return hotel, nil
}

func (s *Service) GetHotel(ctx context.Context, id snowflake.ID) (*propertydomain.Hotel, error) {
	if id == 0 {
		return nil, propertydomain.ErrHotelNotFound
	}
	hotel, err := s.repo.FindHotelByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if hotel == nil {
		return nil, propertydomain.ErrHotelNotFound
	}
	return hotel, nil
}

func (s *Service) ListHotels(ctx context.Context) ([]propertydomain.Hotel, error) {
	return s.repo.ListHotels(ctx, s.db)
}

func (s *Service) ListCompetitors(ctx context.Context, hotelID snowflake.ID, active *bool) ([]propertydomain.Competitor, error) {
	if _, err := s.GetHotel(ctx, hotelID); err != nil {
		return nil, err
	}
	items, err := s.repo.ListCompetitors(ctx, s.db, hotelID, active != nil && *active)
	if err != nil {
		return nil, err
	}
	if active == nil || *active {
		return items, nil
	}

	inactive := make([]propertydomain.Competitor, 0, len(items))
	for _, item := range items {
		if !item.IsActive {
			inactive = append(inactive, item)
		}
	}
	return inactive, nil
}

func (s *Service) ActiveCompetitors(ctx context.Context, hotelID snowflake.ID) ([]propertydomain.Competitor, error) {
	active := true
	return s.ListCompetitors(ctx, hotelID, &active)
}

func (s *Service) CreateCompetitor(ctx context.Context, hotelID snowflake.ID, req propertydomain.CompetitorRequest) (*propertydomain.Competitor, error) {
	if _, err := s.GetHotel(ctx, hotelID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, propertydomain.ErrInvalidName
	}
	if req.TotalRooms <= 0 {
		return nil, propertydomain.ErrInvalidTotalRooms
	}

	now := s.clock.Now()
	competitor := &propertydomain.Competitor{
		ID:         s.genID.Generate(),
		HotelID:    hotelID,
		Name:       name,
		Address:    strings.TrimSpace(req.Address),
		TotalRooms: req.TotalRooms,
		Notes:      strings.TrimSpace(req.Notes),
		Status:     propertydomain.CompetitorStatusActive,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.ensureUniqueName(ctx, tx, hotelID, name, 0); err != nil {
			return err
		}
		if err := s.repo.InsertCompetitor(ctx, tx, competitor); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return propertydomain.ErrDuplicateName
			}
			return err
		}
		return s.audit.Record(ctx, tx, auditdomain.EntityCompetitor, competitor.ID, auditdomain.ActionCreate, competitorFields(competitor))
	})
	if err != nil {
		return nil, err
	}
	return competitor, nil
}

// UpdateCompetitor edits a competitor. A status change flips is_active but never recalculates history.
func (s *Service) UpdateCompetitor(ctx context.Context, id snowflake.ID, req propertydomain.UpdateCompetitorRequest) (*propertydomain.Competitor, error) {
	competitor, err := s.getCompetitor(ctx, id)
	if err != nil {
		return nil, err
	}
	before := competitorFields(competitor)

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, propertydomain.ErrInvalidName
		}
		competitor.Name = name
	}
	if req.Address != nil {
		competitor.Address = strings.TrimSpace(*req.Address)
	}
	if req.TotalRooms != nil {
		if *req.TotalRooms <= 0 {
			return nil, propertydomain.ErrInvalidTotalRooms
		}
		competitor.TotalRooms = *req.TotalRooms
	}
	if req.Notes != nil {
		competitor.Notes = strings.TrimSpace(*req.Notes)
	}
	if req.Status != nil {
		status := strings.ToLower(strings.TrimSpace(*req.Status))
		switch status {
		case propertydomain.CompetitorStatusActive:
			competitor.IsActive = true
		case propertydomain.CompetitorStatusInactive:
			competitor.IsActive = false
		default:
			return nil, propertydomain.ErrInvalidStatus
		}
		competitor.Status = status
	}
	competitor.UpdatedAt = s.clock.Now()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.ensureUniqueName(ctx, tx, competitor.HotelID, competitor.Name, competitor.ID); err != nil {
			return err
		}
		if err := s.repo.UpdateCompetitor(ctx, tx, competitor); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return propertydomain.ErrDuplicateName
			}
			return err
		}
		return s.audit.Record(ctx, tx, auditdomain.EntityCompetitor, competitor.ID, auditdomain.ActionUpdate, map[string]any{
			"before": before,
			"after":  competitorFields(competitor),
		})
	})
	if err != nil {
		return nil, err
	}
	return competitor, nil
}

// DeactivateCompetitor soft-deletes a competitor. Persisted snapshots stay as they are.
func (s *Service) DeactivateCompetitor(ctx context.Context, id snowflake.ID) (*propertydomain.Competitor, error) {
	status := propertydomain.CompetitorStatusInactive
	return s.UpdateCompetitor(ctx, id, propertydomain.UpdateCompetitorRequest{Status: &status})
}

// DeleteCompetitor removes a competitor with its records and recalculates every date it took part in.
func (s *Service) DeleteCompetitor(ctx context.Context, id snowflake.ID) error {
	competitor, err := s.getCompetitor(ctx, id)
	if err != nil {
		return err
	}

	ctx = marketdomain.WithTrigger(ctx, marketdomain.TriggerCompetitor)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		affected, err := s.records.DatesForCompetitor(ctx, tx, competitor.ID)
		if err != nil {
			return err
		}
		if err := s.records.DeleteByCompetitor(ctx, tx, competitor.ID); err != nil {
			return err
		}
		if err := s.repo.DeleteCompetitor(ctx, tx, competitor.ID); err != nil {
			return err
		}
		for _, date := range affected {
			if _, err := s.recalculator.Recalculate(ctx, tx, competitor.HotelID, date); err != nil {
				return fmt.Errorf("recalculate %s: %w", date.Format("2006-01-02"), err)
			}
		}
		fields := competitorFields(competitor)
		fields["records_deleted"] = len(affected)
		return s.audit.Record(ctx, tx, auditdomain.EntityCompetitor, competitor.ID, auditdomain.ActionDelete, fields)
	})
	if err != nil {
		return err
	}

	if err := s.cache.InvalidateHotel(ctx, competitor.HotelID); err != nil {
		s.log.Warn("report cache invalidation failed", zap.Int64("hotel_id", competitor.HotelID.Int64()), zap.Error(err))
	}
	return nil
}

func (s *Service) getCompetitor(ctx context.Context, id snowflake.ID) (*propertydomain.Competitor, error) {
	if id == 0 {
		return nil, propertydomain.ErrNotFound
	}
	competitor, err := s.repo.FindCompetitorByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if competitor == nil {
		return nil, propertydomain.ErrNotFound
	}
	return competitor, nil
}

func (s *Service) ensureUniqueName(ctx context.Context, tx *gorm.DB, hotelID snowflake.ID, name string, self snowflake.ID) error {
	other, err := s.repo.FindCompetitorByName(ctx, tx, hotelID, name)
	if err != nil {
		return err
	}
	if other != nil && other.ID != self {
		return propertydomain.ErrDuplicateName
	}
	return nil
}

func hotelFields(h *propertydomain.Hotel) map[string]any {
	return map[string]any{
		"name":        h.Name,
		"total_rooms": h.TotalRooms,
	}
}

func competitorFields(c *propertydomain.Competitor) map[string]any {
	return map[string]any{
		"name":        c.Name,
		"total_rooms": c.TotalRooms,
		"status":      c.Status,
	}
}
