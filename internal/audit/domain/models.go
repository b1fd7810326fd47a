package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// AuditLog records one change to hotel, competitor or daily record data.
type AuditLog struct {
	ID          snowflake.ID      `json:"id" gorm:"primaryKey"`
	EntityType  string            `json:"entity_type" gorm:"type:varchar(50);not null;index:ix_audit_logs_entity,priority:1"`
	EntityID    snowflake.ID      `json:"entity_id" gorm:"not null;index:ix_audit_logs_entity,priority:2"`
	Action      string            `json:"action" gorm:"type:varchar(20);not null"`
	Changes     datatypes.JSONMap `json:"changes" gorm:"type:json"`
	PerformedBy string            `json:"performed_by" gorm:"type:varchar(150);not null"`
	CreatedAt   time.Time         `json:"created_at" gorm:"not null;index"`
}

func (AuditLog) TableName() string { return "audit_logs" }

const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"

	EntityHotel       = "hotel"
	EntityCompetitor  = "competitor"
	EntityDailyRecord = "daily_record"
)
