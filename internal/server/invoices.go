package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/invoiceflow/invoice-server/constants"
	"github.com/invoiceflow/invoice-server/internal/common"
	"github.com/invoiceflow/invoice-server/internal/invoice"
)

type createInvoiceRequest struct {
	ProfileID string          `json:"profile_id"`
	Draft     invoice.Payload `json:"draft"`
}

// handleCreateInvoice normalizes a submitted draft, validates it for save,
// computes totals, and persists everything transactionally. Validation
// reports every violation at once for form-level display.
func (s *Server) handleCreateInvoice(c *gin.Context) {
	var req createInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be JSON with 'profile_id' and 'draft'"})
		return
	}
	profileID, err := uuid.Parse(strings.TrimSpace(req.ProfileID))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "profile_id must be a UUID"})
		return
	}

	draft, report := s.normalizer.Normalize(req.Draft)
	if missing := invoice.ValidateForSave(draft); len(missing) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "draft is missing required fields",
			"missing": missing,
		})
		return
	}

	totals := invoice.ComputeTotals(draft)
	inv, err := s.invoices.Save(c.Request.Context(), profileID, draft, totals)
	if err != nil {
		s.renderRepoError(c, err, "save invoice")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"invoice": inv, "report": report})
}

func (s *Server) handleUpdateInvoice(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var body struct {
		Draft invoice.Payload `json:"draft"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be JSON with a 'draft' field"})
		return
	}

	draft, report := s.normalizer.Normalize(body.Draft)
	if missing := invoice.ValidateForSave(draft); len(missing) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "draft is missing required fields",
			"missing": missing,
		})
		return
	}

	totals := invoice.ComputeTotals(draft)
	inv, err := s.invoices.Update(c.Request.Context(), id, draft, totals)
	if err != nil {
		s.renderRepoError(c, err, "update invoice")
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoice": inv, "report": report})
}

func (s *Server) handleGetInvoice(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	inv, err := s.invoices.Get(c.Request.Context(), id)
	if err != nil {
		s.renderRepoError(c, err, "get invoice")
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoice": inv})
}

func (s *Server) handleListInvoices(c *gin.Context) {
	profileID, err := uuid.Parse(strings.TrimSpace(c.Query("profile_id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "profile_id query parameter must be a UUID"})
		return
	}
	from, ok := parseDateParam(c, "from")
	if !ok {
		return
	}
	to, ok := parseDateParam(c, "to")
	if !ok {
		return
	}

	invs, err := s.invoices.List(c.Request.Context(), profileID, from, to)
	if err != nil {
		s.renderRepoError(c, err, "list invoices")
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoices": invs})
}

func (s *Server) handleDeleteInvoice(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := s.invoices.Delete(c.Request.Context(), id); err != nil {
		s.renderRepoError(c, err, "delete invoice")
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleUpdateStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be JSON with a 'status' field"})
		return
	}
	status, valid := constants.ParseStatus(strings.TrimSpace(body.Status))
	if !valid {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be one of draft, sent, paid, cancelled"})
		return
	}

	inv, err := s.invoices.UpdateStatus(c.Request.Context(), id, status)
	if err != nil {
		s.renderRepoError(c, err, "update invoice status")
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoice": inv})
}

func (s *Server) handleExportInvoices(c *gin.Context) {
	profileID, err := uuid.Parse(strings.TrimSpace(c.Query("profile_id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "profile_id query parameter must be a UUID"})
		return
	}
	from, ok := parseDateParam(c, "from")
	if !ok {
		return
	}
	to, ok := parseDateParam(c, "to")
	if !ok {
		return
	}

	data, err := s.exporter.ExportInvoicesXLSX(c.Request.Context(), profileID, from, to)
	if err != nil {
		s.renderRepoError(c, err, "export invoices")
		return
	}
	c.Header("Content-Disposition", `attachment; filename="invoices.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a UUID"})
		return uuid.Nil, false
	}
	return id, true
}

func parseDateParam(c *gin.Context, name string) (*time.Time, bool) {
	v := strings.TrimSpace(c.Query(name))
	if v == "" {
		return nil, true
	}
	t, err := time.ParseInLocation("2006-01-02", v, time.UTC)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be YYYY-MM-DD"})
		return nil, false
	}
	return &t, true
}

func (s *Server) renderRepoError(c *gin.Context, err error, op string) {
	switch {
	case errors.Is(err, common.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "invoice not found"})
	case errors.Is(err, common.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, common.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		s.logger.Error("handler failed", "op", op, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
