// Package httpserver exposes the scan, document and credit APIs over HTTP.
package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/akulakov/docscan/internal/service"
)

// Server wires services into HTTP handlers.
type Server struct {
	log     *zap.Logger
	auth    service.AuthService
	scan    service.ScanService
	docs    service.DocumentService
	credits service.CreditService
	signKey []byte
}

// New constructs an HTTP server with injected services.
func New(log *zap.Logger, auth service.AuthService, scan service.ScanService, docs service.DocumentService, credits service.CreditService, signKey []byte) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{log: log, auth: auth, scan: scan, docs: docs, credits: credits, signKey: signKey}
}

// Router builds the gin engine with middleware and routes registered.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(Logging(s.log), Recover(s.log))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	v1.POST("/auth/register", s.handleRegister)
	v1.POST("/auth/login", s.handleLogin)

	authed := v1.Group("", Auth(s.signKey))
	authed.POST("/scan", s.handleScan)
	authed.POST("/scan/preview", s.handlePreview)
	authed.GET("/documents", s.handleListDocuments)
	authed.GET("/documents/:id", s.handleGetDocument)
	authed.GET("/documents/:id/download", s.handleDownloadDocument)
	authed.GET("/documents/:id/matches", s.handleDocumentMatches)
	authed.GET("/credits", s.handleBalance)
	authed.POST("/credits/request", s.handleCreditRequest)

	admin := authed.Group("/admin", RequireAdmin())
	admin.GET("/credit-requests", s.handleListCreditRequests)
	admin.POST("/credit-requests/:id/approve", s.handleApproveCreditRequest)
	admin.POST("/credit-requests/:id/deny", s.handleDenyCreditRequest)

	return r
}
