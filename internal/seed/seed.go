// Package seed creates the reporting hotel on first start so a fresh install is usable.
package seed

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/benchstay/internal/clock"
	"github.com/smallbiznis/benchstay/internal/config"
	propertydomain "github.com/smallbiznis/benchstay/internal/property/domain"
	propertyrepository "github.com/smallbiznis/benchstay/internal/property/repository"
	"gorm.io/gorm"
)

const (
	defaultHotelName  = "Main Hotel"
	defaultTotalRooms = 100
)

// EnsureDefaultHotel returns the first hotel, creating one from cfg when none exists.
func EnsureDefaultHotel(ctx context.Context, db *gorm.DB, node *snowflake.Node, clk clock.Clock, cfg config.BootstrapConfig) (*propertydomain.Hotel, error) {
	if db == nil {
		return nil, errors.New("seed database handle is required")
	}
	if node == nil {
		return nil, errors.New("seed id generator is required")
	}

	repo := propertyrepository.Provide()
	var hotel *propertydomain.Hotel
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		hotels, err := repo.ListHotels(ctx, tx)
		if err != nil {
			return err
		}
		if len(hotels) > 0 {
			hotel = &hotels[0]
			return nil
		}

		name := strings.TrimSpace(cfg.HotelName)
		if name == "" {
			name = defaultHotelName
		}
		rooms := cfg.HotelTotalRooms
		if rooms <= 0 {
			rooms = defaultTotalRooms
		}
		now := clk.Now()
		hotel = &propertydomain.Hotel{
			ID:         node.Generate(),
			Name:       name,
			TotalRooms: rooms,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		return repo.InsertHotel(ctx, tx, hotel)
	})
	if err != nil {
		return nil, err
	}
	return hotel, nil
}
