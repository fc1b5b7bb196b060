package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/invoiceflow/invoice-server/internal/extract"
)

type extractRequest struct {
	Text string `json:"text"`
}

// handleExtract runs AI extraction over raw invoice text and returns the
// normalized draft plus computed totals. Nothing is persisted here; the
// client decides whether to save the accepted draft.
func (s *Server) handleExtract(c *gin.Context) {
	var req extractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be JSON with a 'text' field"})
		return
	}

	result, err := s.orchestrator.Extract(c.Request.Context(), req.Text)
	if err != nil {
		s.renderExtractError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// renderExtractError maps each extraction failure kind to its HTTP status and
// distinct user message, mirroring the upstream 429/402 semantics.
func (s *Server) renderExtractError(c *gin.Context, err error) {
	var ee *extract.Error
	if !errors.As(err, &ee) {
		s.logger.Error("extract handler: untyped error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to extract invoice data."})
		return
	}

	status := http.StatusBadRequest
	switch ee.Kind {
	case extract.KindRateLimited:
		status = http.StatusTooManyRequests
	case extract.KindQuotaExhausted:
		status = http.StatusPaymentRequired
	case extract.KindServiceError:
		status = http.StatusBadGateway
	}

	c.JSON(status, gin.H{
		"error":     ee.UserMessage(),
		"kind":      ee.Kind,
		"retryable": ee.Retryable(),
	})
}
