package service

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid/v5"

	"github.com/akulakov/docscan/internal/errs"
	"github.com/akulakov/docscan/internal/model"
	"github.com/akulakov/docscan/internal/repository"
	"github.com/akulakov/docscan/internal/similarity"
)

// DocumentService provides read access to stored documents and on-demand
// match listings. Documents never change after the scan that created them.
type DocumentService interface {
	// Get returns a document to its owner or an admin.
	Get(ctx context.Context, requester uuid.UUID, requesterRole string, id uuid.UUID) (*model.Document, error)
	// ListMine returns the requester's documents, newest first.
	ListMine(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Document, error)
	// Matches recomputes similarity matches for a stored document against the
	// rest of the corpus, with the widest threshold.
	Matches(ctx context.Context, id uuid.UUID) ([]model.Match, error)
}

type DocumentServiceImpl struct {
	docs        repository.DocumentRepository
	corpusLimit int
	matchCfg    similarity.RankConfig
}

// NewDocumentService constructs DocumentService.
func NewDocumentService(docs repository.DocumentRepository, corpusLimit int) *DocumentServiceImpl {
	return &DocumentServiceImpl{docs: docs, corpusLimit: corpusLimit, matchCfg: similarity.MatchDefaults()}
}

// Get enforces owner-or-admin visibility.
func (s *DocumentServiceImpl) Get(ctx context.Context, requester uuid.UUID, requesterRole string, id uuid.UUID) (*model.Document, error) {
	if requester == uuid.Nil || id == uuid.Nil {
		return nil, fmt.Errorf("%w: empty requester/document id", errs.ErrValidation)
	}
	doc, err := s.docs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.UserID != requester && requesterRole != model.RoleAdmin {
		return nil, errs.ErrForbidden
	}
	return doc, nil
}

// ListMine returns the requester's documents, newest first.
func (s *DocumentServiceImpl) ListMine(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Document, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: empty user id", errs.ErrValidation)
	}
	return s.docs.ListByUser(ctx, userID, limit, offset)
}

// Matches scores a stored document against every other corpus document.
// Read-only; no credit is involved.
func (s *DocumentServiceImpl) Matches(ctx context.Context, id uuid.UUID) ([]model.Match, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("%w: empty document id", errs.ErrValidation)
	}
	doc, err := s.docs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	corpus, err := s.docs.ListOthers(ctx, doc.ID, s.corpusLimit)
	if err != nil {
		return nil, err
	}
	return rankMatches(doc.Content, corpus, s.matchCfg), nil
}
