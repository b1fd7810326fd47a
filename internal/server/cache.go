package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) ClearCache(c *gin.Context) {
	if err := s.cache.Clear(c.Request.Context()); err != nil {
		AbortWithError(c, fmt.Errorf("%w: %v", ErrServiceUnavailable, err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"cleared": s.cache.Enabled()}})
}
