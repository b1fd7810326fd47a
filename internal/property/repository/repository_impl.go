package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	propertydomain "github.com/smallbiznis/benchstay/internal/property/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() propertydomain.Repository {
	return &repo{}
}

const hotelColumns = `id, name, address, phone, email, total_rooms, created_at, updated_at`

const competitorColumns = `id, hotel_id, name, address, total_rooms, notes, status, is_active, created_at, updated_at`

func (r *repo) InsertHotel(ctx context.Context, db *gorm.DB, h *propertydomain.Hotel) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO hotels (`+hotelColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		h.ID,
		h.Name,
		h.Address,
		h.Phone,
		h.Email,
		h.TotalRooms,
		h.CreatedAt,
		h.UpdatedAt,
	).Error
}

func (r *repo) UpdateHotel(ctx context.Context, db *gorm.DB, h *propertydomain.Hotel) error {
	return db.WithContext(ctx).Exec(
		`UPDATE hotels
		 SET name = ?, address = ?, phone = ?, email = ?, total_rooms = ?, updated_at = ?
		 WHERE id = ?`,
		h.Name,
		h.Address,
		h.Phone,
		h.Email,
		h.TotalRooms,
		h.UpdatedAt,
		h.ID,
	).Error
}

func (r *repo) FindHotelByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*propertydomain.Hotel, error) {
	var hotel propertydomain.Hotel
	err := db.WithContext(ctx).Raw(
		`SELECT `+hotelColumns+` FROM hotels WHERE id = ?`,
		id,
	).Scan(&hotel).Error
	if err != nil {
		return nil, err
	}
	if hotel.ID == 0 {
		return nil, nil
	}
	return &hotel, nil
}

func (r *repo) ListHotels(ctx context.Context, db *gorm.DB) ([]propertydomain.Hotel, error) {
	var hotels []propertydomain.Hotel
	err := db.WithContext(ctx).Raw(
		`SELECT ` + hotelColumns + ` FROM hotels ORDER BY created_at ASC, id ASC`,
	).Scan(&hotels).Error
	if err != nil {
		return nil, err
	}
	return hotels, nil
}

func (r *repo) InsertCompetitor(ctx context.Context, db *gorm.DB, c *propertydomain.Competitor) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO competitors (`+competitorColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID,
		c.HotelID,
		c.Name,
		c.Address,
		c.TotalRooms,
		c.Notes,
		c.Status,
		c.IsActive,
		c.CreatedAt,
		c.UpdatedAt,
	).Error
}

func (r *repo) UpdateCompetitor(ctx context.Context, db *gorm.DB, c *propertydomain.Competitor) error {
	return db.WithContext(ctx).Exec(
		`UPDATE competitors
		 SET name = ?, address = ?, total_rooms = ?, notes = ?, status = ?, is_active = ?, updated_at = ?
		 WHERE id = ?`,
		c.Name,
		c.Address,
		c.TotalRooms,
		c.Notes,
		c.Status,
		c.IsActive,
		c.UpdatedAt,
		c.ID,
	).Error
}

func (r *repo) DeleteCompetitor(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM competitors WHERE id = ?`, id).Error
}

func (r *repo) FindCompetitorByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*propertydomain.Competitor, error) {
	var competitor propertydomain.Competitor
	err := db.WithContext(ctx).Raw(
		`SELECT `+competitorColumns+` FROM competitors WHERE id = ?`,
		id,
	).Scan(&competitor).Error
	if err != nil {
		return nil, err
	}
	if competitor.ID == 0 {
		return nil, nil
	}
	return &competitor, nil
}

func (r *repo) FindCompetitorByName(ctx context.Context, db *gorm.DB, hotelID snowflake.ID, name string) (*propertydomain.Competitor, error) {
	var competitor propertydomain.Competitor
	err := db.WithContext(ctx).Raw(
		`SELECT `+competitorColumns+` FROM competitors WHERE hotel_id = ? AND name = ?`,
		hotelID,
		name,
	).Scan(&competitor).Error
	if err != nil {
		return nil, err
	}
	if competitor.ID == 0 {
		return nil, nil
	}
	return &competitor, nil
}

func (r *repo) ListCompetitors(ctx context.Context, db *gorm.DB, hotelID snowflake.ID, activeOnly bool) ([]propertydomain.Competitor, error) {
	var competitors []propertydomain.Competitor
	stmt := db.WithContext(ctx).Model(&propertydomain.Competitor{}).
		Select(competitorColumns).
		Where("hotel_id = ?", hotelID)
	if activeOnly {
		stmt = stmt.Where("is_active = ?", true)
	}
	if err := stmt.Order("name ASC, id ASC").Find(&competitors).Error; err != nil {
		return nil, err
	}
	return competitors, nil
}
