package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	catalogdomain "github.com/smallbiznis/caja/internal/catalog/domain"
)

type importCatalogRequest struct {
	Rows    [][]string                  `json:"rows"`
	Mapping catalogdomain.ColumnMapping `json:"mapping"`
}

func (s *Server) ImportCatalog(c *gin.Context) {
	var req importCatalogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.catalogSvc.ImportProducts(c.Request.Context(), req.Rows, req.Mapping)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

func (s *Server) ListProducts(c *gin.Context) {
	var query struct {
		Q string `form:"q"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	q := strings.TrimSpace(query.Q)
	if q == "" {
		c.JSON(http.StatusOK, gin.H{"data": s.catalogSvc.All(c.Request.Context())})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": s.catalogSvc.Find(c.Request.Context(), q)})
}

func (s *Server) GetProduct(c *gin.Context) {
	reference := strings.TrimSpace(c.Param("reference"))
	product, err := s.catalogSvc.Lookup(c.Request.Context(), reference)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": product})
}
