package domain

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"
)

type Service interface {
	PerformanceSummary(ctx context.Context, hotelID snowflake.ID, start, end time.Time) (*PerformanceSummary, error)
	CompetitorAnalytics(ctx context.Context, hotelID snowflake.ID, start, end time.Time) (*CompetitorAnalytics, error)
	RevPARMatrix(ctx context.Context, hotelID snowflake.ID, start, end time.Time) (*RevPARMatrix, error)
	ExportCompetitorAnalytics(ctx context.Context, hotelID snowflake.ID, start, end time.Time, format string) (*Export, error)
}

// Export is a rendered report file.
type Export struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

var (
	ErrInvalidRange  = errors.New("invalid_date_range")
	ErrInvalidFormat = errors.New("invalid_export_format")
)
