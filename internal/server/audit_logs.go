package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/smallbiznis/benchstay/internal/audit/domain"
)

type listAuditLogsQuery struct {
	EntityType string `form:"entity_type"`
	Limit      string `form:"limit"`
}

func (s *Server) ListAuditLogs(c *gin.Context) {
	var query listAuditLogsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	limit, err := parseLimit(query.Limit, auditdomain.DefaultListLimit, auditdomain.MaxListLimit)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	logs, err := s.auditSvc.List(c.Request.Context(), auditdomain.ListFilter{
		EntityType: strings.TrimSpace(query.EntityType),
		Limit:      limit,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": logs})
}
