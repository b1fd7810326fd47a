package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	dailyrecorddomain "github.com/smallbiznis/benchstay/internal/dailyrecord/domain"
	marketdomain "github.com/smallbiznis/benchstay/internal/market/domain"
)

// RecalculateMarket reruns the date on demand. A date without a hotel record
// yields a null snapshot.
func (s *Server) RecalculateMarket(c *gin.Context) {
	date, err := parseDateParam(c.Param("date"), "date")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	ctx := marketdomain.WithTrigger(c.Request.Context(), marketdomain.TriggerManual)
	snapshot, err := s.marketSvc.RecalculateDate(ctx, hotelIDFrom(c), date)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": snapshot})
}

func (s *Server) GetMarketSnapshot(c *gin.Context) {
	date, err := parseDateParam(c.Param("date"), "date")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	snapshot, err := s.marketSvc.GetMarketSnapshot(c.Request.Context(), hotelIDFrom(c), date)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": snapshot})
}

// GetPerformanceIndex returns the hotel's own row unless competitor_id is given.
func (s *Server) GetPerformanceIndex(c *gin.Context) {
	date, err := parseDateParam(c.Param("date"), "date")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	competitorID, err := parseOptionalSnowflakeID(c.Query("competitor_id"), "competitor_id")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	entity := dailyrecorddomain.HotelEntity
	if competitorID != nil {
		entity = *competitorID
	}

	index, err := s.marketSvc.GetPerformanceIndex(c.Request.Context(), hotelIDFrom(c), entity, date)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": index})
}

func (s *Server) GetRankings(c *gin.Context) {
	date, err := parseDateParam(c.Param("date"), "date")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	entries, err := s.marketSvc.GetRankings(c.Request.Context(), hotelIDFrom(c), date)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if entries == nil {
		entries = []marketdomain.RankingEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"data": entries})
}
