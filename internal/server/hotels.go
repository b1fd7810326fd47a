package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	propertydomain "github.com/smallbiznis/benchstay/internal/property/domain"
)

func (s *Server) ListHotels(c *gin.Context) {
	hotels, err := s.propertySvc.ListHotels(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": hotels})
}

func (s *Server) CreateHotel(c *gin.Context) {
	var req propertydomain.HotelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	hotel, err := s.propertySvc.CreateHotel(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": hotel})
}

func (s *Server) GetHotel(c *gin.Context) {
	hotel, err := s.propertySvc.GetHotel(c.Request.Context(), hotelIDFrom(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": hotel})
}

func (s *Server) UpdateHotel(c *gin.Context) {
	var req propertydomain.HotelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	hotel, err := s.propertySvc.UpdateHotel(c.Request.Context(), hotelIDFrom(c), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": hotel})
}
