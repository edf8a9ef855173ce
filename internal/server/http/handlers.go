package httpserver

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid/v5"

	"github.com/akulakov/docscan/internal/errs"
	"github.com/akulakov/docscan/internal/model"
	"github.com/akulakov/docscan/internal/service"
)

// --- Auth ---

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, fmt.Errorf("%w: %v", errs.ErrValidation, err))
		return
	}
	id, err := s.auth.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (s *Server) handleLogin(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, fmt.Errorf("%w: %v", errs.ErrValidation, err))
		return
	}
	tokens, _, err := s.auth.LoginWithIP(c.Request.Context(), req.Username, req.Password, c.ClientIP())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"accessToken": tokens.AccessToken,
		"expiresAt":   tokens.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

// --- Scan ---

type scanRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

type scanResponse struct {
	Status string `json:"status"`

	ExistingDocumentID string `json:"existingDocumentId,omitempty"`
	OwnedByCaller      *bool  `json:"ownedByCaller,omitempty"`

	DocumentID       string        `json:"documentId,omitempty"`
	Matches          []model.Match `json:"matches,omitempty"`
	RemainingBalance *int64        `json:"remainingBalance,omitempty"`
}

func toScanResponse(r *model.ScanResult) scanResponse {
	if r.Status == model.ScanStatusDuplicate {
		owned := r.OwnedByCaller
		return scanResponse{
			Status:             r.Status,
			ExistingDocumentID: r.ExistingDocumentID.String(),
			OwnedByCaller:      &owned,
		}
	}
	remaining := r.RemainingBalance
	return scanResponse{
		Status:           r.Status,
		DocumentID:       r.DocumentID.String(),
		Matches:          r.Matches,
		RemainingBalance: &remaining,
	}
}

func (s *Server) handleScan(c *gin.Context) {
	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, fmt.Errorf("%w: %v", errs.ErrValidation, err))
		return
	}
	res, err := s.scan.Scan(c.Request.Context(), callerID(c), service.ScanRequest{
		Filename:    req.Filename,
		ContentType: req.ContentType,
		Content:     req.Content,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toScanResponse(res))
}

func (s *Server) handlePreview(c *gin.Context) {
	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, fmt.Errorf("%w: %v", errs.ErrValidation, err))
		return
	}
	matches, err := s.scan.Preview(c.Request.Context(), callerID(c), req.Content)
	if err != nil {
		writeError(c, err)
		return
	}
	if matches == nil {
		matches = []model.Match{}
	}
	c.JSON(http.StatusOK, gin.H{"matches": matches})
}

// --- Documents ---

type documentResponse struct {
	ID          string `json:"id"`
	Filename    string `json:"filename"`
	Fingerprint string `json:"fingerprint"`
	CreatedAt   string `json:"createdAt"`
}

func toDocumentResponse(d *model.Document) documentResponse {
	return documentResponse{
		ID:          d.ID.String(),
		Filename:    d.Filename,
		Fingerprint: d.Fingerprint,
		CreatedAt:   d.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (s *Server) handleListDocuments(c *gin.Context) {
	var q struct {
		Limit  int `form:"limit"`
		Offset int `form:"offset"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		writeError(c, fmt.Errorf("%w: %v", errs.ErrValidation, err))
		return
	}
	docs, err := s.docs.ListMine(c.Request.Context(), callerID(c), q.Limit, q.Offset)
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]documentResponse, 0, len(docs))
	for i := range docs {
		out = append(out, toDocumentResponse(&docs[i]))
	}
	c.JSON(http.StatusOK, gin.H{"documents": out})
}

func (s *Server) pathDocument(c *gin.Context) (*model.Document, bool) {
	id, err := uuid.FromString(c.Param("id"))
	if err != nil {
		writeError(c, fmt.Errorf("%w: bad document id", errs.ErrValidation))
		return nil, false
	}
	doc, err := s.docs.Get(c.Request.Context(), callerID(c), c.GetString(roleKey), id)
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	return doc, true
}

func (s *Server) handleGetDocument(c *gin.Context) {
	doc, ok := s.pathDocument(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toDocumentResponse(doc))
}

func (s *Server) handleDownloadDocument(c *gin.Context) {
	doc, ok := s.pathDocument(c)
	if !ok {
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(doc.Content))
}

func (s *Server) handleDocumentMatches(c *gin.Context) {
	doc, ok := s.pathDocument(c)
	if !ok {
		return
	}
	matches, err := s.docs.Matches(c.Request.Context(), doc.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	if matches == nil {
		matches = []model.Match{}
	}
	c.JSON(http.StatusOK, gin.H{"matches": matches})
}

// --- Credits ---

func (s *Server) handleBalance(c *gin.Context) {
	balance, err := s.credits.Balance(c.Request.Context(), callerID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"balance": balance})
}

type creditRequestResponse struct {
	ID         string `json:"id"`
	UserID     string `json:"userId"`
	Amount     int64  `json:"amount"`
	Status     string `json:"status"`
	CreatedAt  string `json:"createdAt"`
	ResolvedAt string `json:"resolvedAt,omitempty"`
}

func toCreditRequestResponse(r *model.CreditRequest) creditRequestResponse {
	out := creditRequestResponse{
		ID:        r.ID.String(),
		UserID:    r.UserID.String(),
		Amount:    r.Amount,
		Status:    r.Status,
		CreatedAt: r.CreatedAt.UTC().Format(time.RFC3339),
	}
	if r.ResolvedAt != nil {
		out.ResolvedAt = r.ResolvedAt.UTC().Format(time.RFC3339)
	}
	return out
}

func (s *Server) handleCreditRequest(c *gin.Context) {
	var req struct {
		Amount int64 `json:"amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, fmt.Errorf("%w: %v", errs.ErrValidation, err))
		return
	}
	cr, err := s.credits.Request(c.Request.Context(), callerID(c), req.Amount)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toCreditRequestResponse(cr))
}

// --- Admin ---

func (s *Server) handleListCreditRequests(c *gin.Context) {
	pending, err := s.credits.PendingRequests(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]creditRequestResponse, 0, len(pending))
	for i := range pending {
		out = append(out, toCreditRequestResponse(&pending[i]))
	}
	c.JSON(http.StatusOK, gin.H{"requests": out})
}

func (s *Server) handleApproveCreditRequest(c *gin.Context) {
	id, err := uuid.FromString(c.Param("id"))
	if err != nil {
		writeError(c, fmt.Errorf("%w: bad request id", errs.ErrValidation))
		return
	}
	cr, balance, err := s.credits.Approve(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"request": toCreditRequestResponse(cr),
		"balance": balance,
	})
}

func (s *Server) handleDenyCreditRequest(c *gin.Context) {
	id, err := uuid.FromString(c.Param("id"))
	if err != nil {
		writeError(c, fmt.Errorf("%w: bad request id", errs.ErrValidation))
		return
	}
	if err := s.credits.Deny(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
