package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Service interface {
	// Record writes an entry through db so it commits or rolls back with the change it describes.
	Record(ctx context.Context, db *gorm.DB, entityType string, entityID snowflake.ID, action string, changes map[string]any) error
	List(ctx context.Context, filter ListFilter) ([]AuditLog, error)
}

const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

var (
	ErrInvalidAction = errors.New("invalid_action")
	ErrInvalidEntity = errors.New("invalid_entity")
)
