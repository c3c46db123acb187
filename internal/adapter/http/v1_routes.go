package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/couchcryptid/crop-advisory-service/internal/adapter/export"
	"github.com/couchcryptid/crop-advisory-service/internal/domain"
	"github.com/gin-gonic/gin"
)

// registerV1Routes sets up /api/v1: advisories, their document renderings,
// and the crop catalog.
func (s *Server) registerV1Routes(opts Options) {
	v1 := s.engine.Group("/api/v1")
	if opts.BearerToken != "" {
		v1.Use(bearerAuthMiddleware(opts.BearerToken))
	}

	advisories := v1.Group("/advisories")
	{
		advisories.POST("", s.handleCreateAdvisory)
		advisories.POST("/report.pdf", s.handleAdvisoryPDF)
		advisories.POST("/report.xlsx", s.handleAdvisoryXLSX)
	}
	v1.GET("/crops", s.handleListCrops)
}

// handleCreateAdvisory returns the advisory as JSON.
// POST /api/v1/advisories
func (s *Server) handleCreateAdvisory(c *gin.Context) {
	a, ok := s.advise(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, a)
}

// handleAdvisoryPDF returns the advisory card as a PDF download.
// POST /api/v1/advisories/report.pdf
func (s *Server) handleAdvisoryPDF(c *gin.Context) {
	a, ok := s.advise(c)
	if !ok {
		return
	}
	data, err := export.PDFBytes(a)
	if err != nil {
		s.logger.Error("render pdf failed", "advisory_id", a.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "render pdf failed"})
		return
	}
	attachment(c, a.ID+".pdf")
	c.Data(http.StatusOK, export.ContentTypePDF, data)
}

// handleAdvisoryXLSX returns the advisory workbook.
// POST /api/v1/advisories/report.xlsx
func (s *Server) handleAdvisoryXLSX(c *gin.Context) {
	a, ok := s.advise(c)
	if !ok {
		return
	}
	data, err := export.XLSXBytes(a)
	if err != nil {
		s.logger.Error("render xlsx failed", "advisory_id", a.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "render xlsx failed"})
		return
	}
	attachment(c, a.ID+".xlsx")
	c.Data(http.StatusOK, export.ContentTypeXLSX, data)
}

// handleListCrops returns the distinct crop labels in the reference data.
// GET /api/v1/crops
func (s *Server) handleListCrops(c *gin.Context) {
	labels := s.crops.Labels()
	c.JSON(http.StatusOK, gin.H{
		"data": labels,
		"meta": gin.H{"count": len(labels)},
	})
}

// advise binds the request body and runs the advisor, writing the error
// response itself when it returns false.
func (s *Server) advise(c *gin.Context) (domain.Advisory, bool) {
	var req domain.AdvisoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return domain.Advisory{}, false
	}

	a, err := s.advisor.Advise(c.Request.Context(), req)
	switch {
	case errors.Is(err, domain.ErrInvalidSoilProfile):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return domain.Advisory{}, false
	case err != nil:
		s.logger.Error("advisory failed", "request_id", req.RequestID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "advisory failed"})
		return domain.Advisory{}, false
	}
	return a, true
}

func attachment(c *gin.Context, filename string) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
}
