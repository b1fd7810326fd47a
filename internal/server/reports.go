package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type reportRangeQuery struct {
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
	Format    string `form:"format"`
}

func (s *Server) reportRange(c *gin.Context) (reportRangeQuery, time.Time, time.Time, bool) {
	var query reportRangeQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return query, time.Time{}, time.Time{}, false
	}
	start, end, err := parseReportRange(query.StartDate, query.EndDate, s.clock.Now())
	if err != nil {
		AbortWithError(c, err)
		return query, time.Time{}, time.Time{}, false
	}
	return query, start, end, true
}

func (s *Server) PerformanceSummary(c *gin.Context) {
	_, start, end, ok := s.reportRange(c)
	if !ok {
		return
	}

	summary, err := s.reportSvc.PerformanceSummary(c.Request.Context(), hotelIDFrom(c), start, end)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": summary})
}

func (s *Server) CompetitorAnalytics(c *gin.Context) {
	_, start, end, ok := s.reportRange(c)
	if !ok {
		return
	}

	analytics, err := s.reportSvc.CompetitorAnalytics(c.Request.Context(), hotelIDFrom(c), start, end)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": analytics})
}

func (s *Server) RevPARMatrix(c *gin.Context) {
	_, start, end, ok := s.reportRange(c)
	if !ok {
		return
	}

	matrix, err := s.reportSvc.RevPARMatrix(c.Request.Context(), hotelIDFrom(c), start, end)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": matrix})
}

func (s *Server) ExportCompetitorAnalytics(c *gin.Context) {
	query, start, end, ok := s.reportRange(c)
	if !ok {
		return
	}
	format := query.Format
	if format == "" {
		format = "xlsx"
	}

	export, err := s.reportSvc.ExportCompetitorAnalytics(c.Request.Context(), hotelIDFrom(c), start, end, format)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.DataFromReader(http.StatusOK, -1, export.ContentType, export.Body, map[string]string{
		"Content-Disposition": fmt.Sprintf(`attachment; filename="%s"`, export.Filename),
	})
}
