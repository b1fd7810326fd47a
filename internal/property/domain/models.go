package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	CompetitorStatusActive   = "active"
	CompetitorStatusInactive = "inactive"
)

// Hotel is the reporting subject whose performance is benchmarked.
type Hotel struct {
	ID         snowflake.ID `json:"id" gorm:"primaryKey"`
	Name       string       `json:"name" gorm:"type:varchar(200);not null"`
	Address    string       `json:"address" gorm:"type:text"`
	Phone      string       `json:"phone" gorm:"type:varchar(50)"`
	Email      string       `json:"email" gorm:"type:varchar(200)"`
	TotalRooms int          `json:"total_rooms" gorm:"not null"`
	CreatedAt  time.Time    `json:"created_at" gorm:"not null"`
	UpdatedAt  time.Time    `json:"updated_at" gorm:"not null"`
}

func (Hotel) TableName() string { return "hotels" }

// Competitor is a property in the hotel's comp set.
type Competitor struct {
	ID         snowflake.ID `json:"id" gorm:"primaryKey"`
	HotelID    snowflake.ID `json:"hotel_id" gorm:"not null;uniqueIndex:ux_competitors_hotel_name,priority:1"`
	Name       string       `json:"name" gorm:"type:varchar(200);not null;uniqueIndex:ux_competitors_hotel_name,priority:2"`
	Address    string       `json:"address" gorm:"type:text"`
	TotalRooms int          `json:"total_rooms" gorm:"not null"`
	Notes      string       `json:"notes" gorm:"type:text"`
	Status     string       `json:"status" gorm:"type:varchar(20);not null;default:active"`
	IsActive   bool         `json:"is_active" gorm:"not null;default:true"`
	CreatedAt  time.Time    `json:"created_at" gorm:"not null"`
	UpdatedAt  time.Time    `json:"updated_at" gorm:"not null"`
}

func (Competitor) TableName() string { return "competitors" }
