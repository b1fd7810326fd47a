package server

import (
	"math"
	"strconv"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/benchstay/internal/ratelimit"
)

const contextHotelIDKey = "hotel_id"

// HotelParam parses :hotel_id once for every hotel-scoped route.
func HotelParam() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseIDParam(c.Param("hotel_id"), "hotel_id")
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.Set(contextHotelIDKey, id)
		c.Next()
	}
}

func hotelIDFrom(c *gin.Context) snowflake.ID {
	if v, ok := c.Get(contextHotelIDKey); ok {
		if id, ok := v.(snowflake.ID); ok {
			return id
		}
	}
	return 0
}

// Throttle limits a hotel-scoped operation with the shared token bucket.
// It must run after HotelParam.
func Throttle(limiter *ratelimit.Limiter, operation string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Enabled() {
			c.Next()
			return
		}
		res := limiter.Allow(c.Request.Context(), operation, hotelIDFrom(c).Int64())
		c.Header("X-RateLimit-Limit", strconv.Itoa(res.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		if !res.Allowed {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(res.RetryAfter.Seconds()))))
			AbortWithError(c, ErrTooManyRequests)
			return
		}
		c.Next()
	}
}
