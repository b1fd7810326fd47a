package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	propertydomain "github.com/smallbiznis/benchstay/internal/property/domain"
)

func (s *Server) ListCompetitors(c *gin.Context) {
	active, err := parseOptionalBool(c.Query("active"))
	if err != nil {
		AbortWithError(c, newValidationError("active", "invalid_active", "active must be true or false"))
		return
	}

	competitors, err := s.propertySvc.ListCompetitors(c.Request.Context(), hotelIDFrom(c), active)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": competitors})
}

func (s *Server) CreateCompetitor(c *gin.Context) {
	var req propertydomain.CompetitorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	competitor, err := s.propertySvc.CreateCompetitor(c.Request.Context(), hotelIDFrom(c), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": competitor})
}

func (s *Server) UpdateCompetitor(c *gin.Context) {
	id, err := parseIDParam(c.Param("id"), "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	var req propertydomain.UpdateCompetitorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	competitor, err := s.propertySvc.UpdateCompetitor(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": competitor})
}

func (s *Server) DeactivateCompetitor(c *gin.Context) {
	id, err := parseIDParam(c.Param("id"), "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	competitor, err := s.propertySvc.DeactivateCompetitor(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": competitor})
}

func (s *Server) DeleteCompetitor(c *gin.Context) {
	id, err := parseIDParam(c.Param("id"), "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.propertySvc.DeleteCompetitor(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
