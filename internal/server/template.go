package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	ticketdomain "github.com/smallbiznis/caja/internal/ticket/domain"
)

func (s *Server) GetTemplate(c *gin.Context) {
	tpl, err := s.templateSvc.Get(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": tpl})
}

func (s *Server) UpdateTemplate(c *gin.Context) {
	var req ticketdomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	tpl, err := s.templateSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": tpl})
}
