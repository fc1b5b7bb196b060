// Package server exposes the extraction pipeline and invoice CRUD over HTTP.
package server

import (
	"log/slog"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/invoiceflow/invoice-server/internal/export"
	"github.com/invoiceflow/invoice-server/internal/extract"
	"github.com/invoiceflow/invoice-server/internal/invoice"
	"github.com/invoiceflow/invoice-server/internal/repository"
)

// Server bundles the handlers' collaborators.
type Server struct {
	orchestrator *extract.Orchestrator
	normalizer   *invoice.Normalizer
	invoices     repository.InvoiceRepository
	profiles     repository.ProfileRepository
	exporter     *export.Service
	logger       *slog.Logger
}

func New(
	orchestrator *extract.Orchestrator,
	normalizer *invoice.Normalizer,
	invoices repository.InvoiceRepository,
	profiles repository.ProfileRepository,
	exporter *export.Service,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		orchestrator: orchestrator,
		normalizer:   normalizer,
		invoices:     invoices,
		profiles:     profiles,
		exporter:     exporter,
		logger:       logger,
	}
}

// Router builds the gin engine with CORS and all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	r.Use(cors.New(corsCfg))

	v1 := r.Group("/v1")
	{
		v1.POST("/extract", s.handleExtract)

		v1.POST("/invoices", s.handleCreateInvoice)
		v1.GET("/invoices", s.handleListInvoices)
		v1.GET("/invoices/export", s.handleExportInvoices)
		v1.GET("/invoices/:id", s.handleGetInvoice)
		v1.PUT("/invoices/:id", s.handleUpdateInvoice)
		v1.DELETE("/invoices/:id", s.handleDeleteInvoice)
		v1.PATCH("/invoices/:id/status", s.handleUpdateStatus)

		v1.POST("/profiles", s.handleCreateProfile)
		v1.GET("/profiles/:id", s.handleGetProfile)
		v1.PUT("/profiles/:id", s.handleUpdateProfile)
		v1.GET("/profiles/:id/stats", s.handleProfileStats)
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	return r
}
