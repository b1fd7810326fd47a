package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/benchstay/internal/audit/domain"
	"github.com/smallbiznis/benchstay/internal/clock"
	obscontext "github.com/smallbiznis/benchstay/internal/observability/context"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  auditdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  auditdomain.Repository
}

func NewService(p Params) auditdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("audit.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Record(ctx context.Context, db *gorm.DB, entityType string, entityID snowflake.ID, action string, changes map[string]any) error {
	action = strings.TrimSpace(action)
	if action == "" {
		return auditdomain.ErrInvalidAction
	}
	entityType = strings.TrimSpace(entityType)
	if entityType == "" {
		return auditdomain.ErrInvalidEntity
	}
	if db == nil {
		db = s.db
	}

	payload := datatypes.JSONMap{}
	for key, value := range changes {
		if key == "" {
			continue
		}
		payload[key] = value
	}
	if requestID := obscontext.RequestIDFromContext(ctx); requestID != "" {
		payload["request_id"] = requestID
	}

	entry := auditdomain.AuditLog{
		ID:          s.genID.Generate(),
		EntityType:  entityType,
		EntityID:    entityID,
		Action:      action,
		Changes:     payload,
		PerformedBy: obscontext.ActorFromContext(ctx),
		CreatedAt:   s.clock.Now(),
	}

	if err := s.repo.Insert(ctx, db, &entry); err != nil {
		s.log.Warn("failed to write audit log", zap.String("action", action), zap.String("entity_type", entityType), zap.Error(err))
		return err
	}
	return nil
}

func (s *Service) List(ctx context.Context, filter auditdomain.ListFilter) ([]auditdomain.AuditLog, error) {
	if filter.Limit <= 0 {
		filter.Limit = auditdomain.DefaultListLimit
	}
	if filter.Limit > auditdomain.MaxListLimit {
		filter.Limit = auditdomain.MaxListLimit
	}
	logs, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}
	return logs, nil
}
