package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/smallbiznis/benchstay/internal/audit/domain"
	dailyrecorddomain "github.com/smallbiznis/benchstay/internal/dailyrecord/domain"
	"github.com/smallbiznis/benchstay/internal/importer"
	marketdomain "github.com/smallbiznis/benchstay/internal/market/domain"
	propertydomain "github.com/smallbiznis/benchstay/internal/property/domain"
	reportdomain "github.com/smallbiznis/benchstay/internal/report/domain"
	"github.com/smallbiznis/benchstay/pkg/dates"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrConflict           = errors.New("conflict")
	ErrInternal           = errors.New("internal_error")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrServiceUnavailable = errors.New("service_unavailable")
	ErrTooManyRequests    = errors.New("too_many_requests")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: conflictMessage(err),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrTooManyRequests):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "too_many_requests",
			Message: "too many requests, retry later",
		}
	case errors.Is(err, ErrServiceUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	case errors.Is(err, ErrInternal):
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

// validationErrors are the sentinels reported as 400 with their text as the code.
var validationErrors = []error{
	ErrInvalidRequest,
	dates.ErrInvalidDate,
	importer.ErrInvalidWorkbook,
	importer.ErrNoSheets,
	importer.ErrInvalidHeader,
	reportdomain.ErrInvalidRange,
	reportdomain.ErrInvalidFormat,
	marketdomain.ErrInvalidHotel,
	auditdomain.ErrInvalidEntity,
	auditdomain.ErrInvalidAction,
	propertydomain.ErrInvalidName,
	propertydomain.ErrInvalidTotalRooms,
	propertydomain.ErrInvalidStatus,
	dailyrecorddomain.ErrInvalidKind,
	dailyrecorddomain.ErrInvalidHotel,
	dailyrecorddomain.ErrInvalidCompetitor,
	dailyrecorddomain.ErrInactiveCompetitor,
	dailyrecorddomain.ErrInvalidRoomsSold,
	dailyrecorddomain.ErrInvalidRevenue,
	dailyrecorddomain.ErrInvalidRate,
	dailyrecorddomain.ErrInvalidTotalRooms,
	dailyrecorddomain.ErrRoomsSoldExceedStock,
	dailyrecorddomain.ErrInvalidIntent,
}

func matchValidationError(err error) error {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return target
		}
	}
	return nil
}

func isValidationError(err error) bool {
	return matchValidationError(err) != nil
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, propertydomain.ErrNotFound),
		errors.Is(err, propertydomain.ErrHotelNotFound),
		errors.Is(err, propertydomain.ErrCompetitorNotOwned),
		errors.Is(err, dailyrecorddomain.ErrNotFound),
		errors.Is(err, marketdomain.ErrNotFound),
		errors.Is(err, marketdomain.ErrHotelNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, propertydomain.ErrDuplicateName),
		errors.Is(err, dailyrecorddomain.ErrDuplicateRecord):
		return true
	default:
		return false
	}
}

func conflictMessage(err error) string {
	switch {
	case errors.Is(err, propertydomain.ErrDuplicateName):
		return "competitor name already exists for this hotel"
	case errors.Is(err, dailyrecorddomain.ErrDuplicateRecord):
		return "a record already exists for this entity and date"
	default:
		return "conflict"
	}
}

func validationErrorCode(err error) string {
	if target := matchValidationError(err); target != nil {
		return target.Error()
	}
	return err.Error()
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	case "rooms_sold_exceeds_total_rooms":
		return "rooms sold cannot exceed total rooms"
	case "inactive_competitor":
		return "competitor is inactive"
	default:
		return "invalid value"
	}
}

// classifyErrorForLog gives the request logger the same type the client sees.
func classifyErrorForLog(err error) (string, string) {
	_, payload := mapError(err)
	if payload.Type == "validation_error" && len(payload.Errors) > 0 {
		return payload.Type, payload.Errors[0].Code
	}
	return payload.Type, payload.Type
}
