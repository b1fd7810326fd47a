package server

import (
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/benchstay/pkg/dates"
)

// defaultRangeDays is the report window used when no dates are given.
const defaultRangeDays = 30

func parseIDParam(value, field string) (snowflake.ID, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || parsed <= 0 {
		return 0, newValidationError(field, "invalid_"+field, "invalid "+field)
	}
	return parsed, nil
}

func parseOptionalBool(value string) (*bool, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseBool(trimmed)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func parseOptionalSnowflakeID(value, field string) (*snowflake.ID, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	parsed, err := parseIDParam(trimmed, field)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func parseDateParam(value, field string) (time.Time, error) {
	parsed, err := dates.Parse(value)
	if err != nil {
		return time.Time{}, newValidationError(field, "invalid_"+field, field+" must be YYYY-MM-DD")
	}
	return parsed, nil
}

func parseOptionalDate(value, field string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	parsed, err := parseDateParam(value, field)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// parseReportRange reads start_date and end_date, defaulting to the trailing
// window that ends today.
func parseReportRange(startValue, endValue string, today time.Time) (time.Time, time.Time, error) {
	end := dates.Normalize(today)
	if strings.TrimSpace(endValue) != "" {
		parsed, err := parseDateParam(endValue, "end_date")
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		end = parsed
	}
	start := end.AddDate(0, 0, -(defaultRangeDays - 1))
	if strings.TrimSpace(startValue) != "" {
		parsed, err := parseDateParam(startValue, "start_date")
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		start = parsed
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, newValidationError("end_date", "invalid_date_range", "end_date must not be before start_date")
	}
	return start, end, nil
}

func parseLimit(value string, def, max int) (int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return def, nil
	}
	parsed, err := strconv.Atoi(trimmed)
	if err != nil || parsed <= 0 {
		return 0, newValidationError("limit", "invalid_limit", "limit must be a positive integer")
	}
	if parsed > max {
		parsed = max
	}
	return parsed, nil
}
