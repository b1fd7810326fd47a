package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsDuplicateKeyErr(t *testing.T) {
	assert.False(t, IsDuplicateKeyErr(nil))
	assert.True(t, IsDuplicateKeyErr(fmt.Errorf("create: %w", gorm.ErrDuplicatedKey)))
	assert.True(t, IsDuplicateKeyErr(errors.New(`ERROR: duplicate key value violates unique constraint "uq_competitors_hotel_name"`)))
	assert.True(t, IsDuplicateKeyErr(errors.New("UNIQUE constraint failed: competitors.hotel_id, competitors.name")))
	assert.True(t, IsDuplicateKeyErr(errors.New("Error 1062 (23000): Duplicate entry")))
	assert.False(t, IsDuplicateKeyErr(errors.New("connection refused")))
}

func TestDialectRejectsUnknownType(t *testing.T) {
	_, err := Dialect(Config{Type: "oracle"})
	assert.Error(t, err)

	d, err := Dialect(Config{Type: "sqlite", Name: ":memory:"})
	assert.NoError(t, err)
	assert.Equal(t, "sqlite", d.Name())
}

func TestURL(t *testing.T) {
	cfg := Config{User: "u", Password: "p", Host: "db", Port: "5432", Name: "benchstay", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5432/benchstay?sslmode=disable", URL(cfg))
}
