package server

import (
	"encoding/csv"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	registerdomain "github.com/smallbiznis/caja/internal/register/domain"
	saledomain "github.com/smallbiznis/caja/internal/sale/domain"
)

func (s *Server) RegisterStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": s.registerSvc.Status(c.Request.Context())})
}

func (s *Server) OpenRegister(c *gin.Context) {
	session, err := s.registerSvc.Open(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": session})
}

func (s *Server) CloseRegister(c *gin.Context) {
	result, err := s.registerSvc.Close(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

func (s *Server) RegisterTotals(c *gin.Context) {
	totals, err := s.registerSvc.Totals(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": totals})
}

func (s *Server) LastClose(c *gin.Context) {
	result, err := s.registerSvc.LastClose(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

// LastCloseExport streams the reconciliation of the most recent close as CSV.
func (s *Server) LastCloseExport(c *gin.Context) {
	result, err := s.registerSvc.LastClose(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="cierre.csv"`)
	w := csv.NewWriter(c.Writer)
	if err := w.WriteAll(result.ExportCSV); err != nil {
		AbortWithError(c, err)
		return
	}
}

func (s *Server) CurrentSale(c *gin.Context) {
	sale, err := s.registerSvc.CurrentSale(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": sale, "totals": sale.Totals()})
}

func (s *Server) AddLine(c *gin.Context) {
	var req registerdomain.AddLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.Reference = strings.TrimSpace(req.Reference)
	if req.Reference == "" {
		AbortWithError(c, newValidationError("reference", "invalid_reference", "reference is required"))
		return
	}

	sale, err := s.registerSvc.AddLine(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": sale, "totals": sale.Totals()})
}

func (s *Server) EditLine(c *gin.Context) {
	index, ok := lineIndex(c)
	if !ok {
		return
	}

	var patch saledomain.LinePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	sale, err := s.registerSvc.EditLine(c.Request.Context(), index, patch)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": sale, "totals": sale.Totals()})
}

func (s *Server) RemoveLine(c *gin.Context) {
	index, ok := lineIndex(c)
	if !ok {
		return
	}

	sale, err := s.registerSvc.RemoveLine(c.Request.Context(), index)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": sale, "totals": sale.Totals()})
}

func (s *Server) ChargeWorkingSale(c *gin.Context) {
	result, err := s.registerSvc.ChargeCurrent(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

func lineIndex(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(strings.TrimSpace(c.Param("index")))
	if err != nil || index < 0 {
		AbortWithError(c, newValidationError("index", "invalid_index", "invalid line index"))
		return 0, false
	}
	return index, true
}
