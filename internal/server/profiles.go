package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/invoiceflow/invoice-server/constants"
	"github.com/invoiceflow/invoice-server/internal/entity"
	"github.com/invoiceflow/invoice-server/internal/money"
)

type profileRequest struct {
	Email           string `json:"email"`
	BusinessName    string `json:"business_name"`
	BusinessAddress string `json:"business_address"`
	DefaultCurrency string `json:"default_currency"`
	DefaultTaxRate  any    `json:"default_tax_rate"`
}

func (s *Server) handleCreateProfile(c *gin.Context) {
	p, ok := s.bindProfile(c)
	if !ok {
		return
	}
	out, err := s.profiles.Create(c.Request.Context(), p)
	if err != nil {
		s.renderRepoError(c, err, "create profile")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"profile": out})
}

func (s *Server) handleGetProfile(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	out, err := s.profiles.Get(c.Request.Context(), id)
	if err != nil {
		s.renderRepoError(c, err, "get profile")
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": out})
}

func (s *Server) handleUpdateProfile(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	p, bound := s.bindProfile(c)
	if !bound {
		return
	}
	p.ID = id
	out, err := s.profiles.Update(c.Request.Context(), p)
	if err != nil {
		s.renderRepoError(c, err, "update profile")
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": out})
}

// handleProfileStats returns the dashboard aggregates for a profile: invoice
// counts by lifecycle stage and revenue from paid invoices.
func (s *Server) handleProfileStats(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	stats, err := s.invoices.Stats(c.Request.Context(), id)
	if err != nil {
		s.renderRepoError(c, err, "profile stats")
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

func (s *Server) bindProfile(c *gin.Context) (*entity.Profile, bool) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be a JSON profile"})
		return nil, false
	}
	if strings.TrimSpace(req.Email) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email is required"})
		return nil, false
	}

	currency, _ := constants.CanonicalizeCurrency(req.DefaultCurrency)
	rate := money.Zero
	if req.DefaultTaxRate != nil {
		parsed, err := money.ParseNonNegative(req.DefaultTaxRate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "default_tax_rate must be a non-negative number"})
			return nil, false
		}
		rate = parsed
	}

	return &entity.Profile{
		Email:           strings.TrimSpace(req.Email),
		BusinessName:    strings.TrimSpace(req.BusinessName),
		BusinessAddress: strings.TrimSpace(req.BusinessAddress),
		DefaultCurrency: currency,
		DefaultTaxRate:  rate,
	}, true
}
