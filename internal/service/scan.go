// Package service contains application services: the scan coordinator, the
// credit ledger, authentication and document access.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofrs/uuid/v5"

	"github.com/akulakov/docscan/internal/errs"
	"github.com/akulakov/docscan/internal/model"
	"github.com/akulakov/docscan/internal/repository"
	"github.com/akulakov/docscan/internal/similarity"
)

// Declared content types the scanner accepts. An empty declaration is
// treated as plain text.
var supportedContentTypes = map[string]struct{}{
	"":              {},
	"text/plain":    {},
	"text/markdown": {},
}

// ScanRequest carries one scan submission.
type ScanRequest struct {
	Filename    string
	ContentType string
	Content     string
}

// ScanService coordinates a scan end to end: fingerprint, duplicate lookup,
// atomic charge-and-persist, then similarity ranking.
type ScanService interface {
	// Scan runs the full sequence. Resubmitting known content returns a
	// duplicate result and is free.
	Scan(ctx context.Context, userID uuid.UUID, req ScanRequest) (*model.ScanResult, error)
	// Preview ranks content against other users' documents without charging
	// or persisting anything.
	Preview(ctx context.Context, userID uuid.UUID, content string) ([]model.Match, error)
}

type ScanServiceImpl struct {
	docs        repository.DocumentRepository
	users       repository.UserRepository
	pub         Publisher
	daily       int64
	corpusLimit int
	scanCfg     similarity.RankConfig
	previewCfg  similarity.RankConfig
}

// NewScanService constructs ScanService with required dependencies.
func NewScanService(docs repository.DocumentRepository, users repository.UserRepository, pub Publisher, dailyAllotment int64, corpusLimit int) *ScanServiceImpl {
	if pub == nil {
		pub = NopPublisher{}
	}
	if dailyAllotment <= 0 {
		dailyAllotment = 20
	}
	return &ScanServiceImpl{
		docs:        docs,
		users:       users,
		pub:         pub,
		daily:       dailyAllotment,
		corpusLimit: corpusLimit,
		scanCfg:     similarity.ScanDefaults(),
		previewCfg:  similarity.PreviewDefaults(),
	}
}

// Scan sequences one submission:
//  1. validate content and declared type
//  2. fingerprint and look for an exact duplicate across all users
//  3. duplicate: free, side-effect-free result referencing the stored copy
//  4. novel: charge one credit and insert in a single transaction; a
//     concurrent identical submission surfaces as a duplicate after the
//     fact with the charge rolled back
//  5. rank the new document against the rest of the corpus
func (s *ScanServiceImpl) Scan(ctx context.Context, userID uuid.UUID, req ScanRequest) (*model.ScanResult, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: empty user id", errs.ErrValidation)
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, fmt.Errorf("%w: empty content", errs.ErrValidation)
	}
	ct := strings.ToLower(strings.TrimSpace(req.ContentType))
	if _, ok := supportedContentTypes[ct]; !ok {
		return nil, fmt.Errorf("%w: %q", errs.ErrUnsupportedType, req.ContentType)
	}

	fp := similarity.Fingerprint(req.Content)
	existing, err := s.docs.GetByFingerprint(ctx, fp)
	switch {
	case err == nil:
		return duplicateResult(existing, userID), nil
	case !errors.Is(err, errs.ErrNotFound):
		return nil, err
	}

	// Top up before charging so the first scan of a new day sees the fresh
	// allotment.
	if _, err := s.users.ResetIfNewDay(ctx, userID, s.daily); err != nil {
		return nil, err
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	filename := strings.TrimSpace(req.Filename)
	if filename == "" {
		filename = "untitled.txt"
	}
	doc := &model.Document{
		ID:          id,
		UserID:      userID,
		Filename:    filename,
		Content:     req.Content,
		Fingerprint: fp,
	}

	remaining, err := s.docs.InsertWithCharge(ctx, doc)
	if err != nil {
		if errors.Is(err, errs.ErrDuplicateContent) {
			// Lost the insert race; the charge went back with the rollback.
			winner, ferr := s.docs.GetByFingerprint(ctx, fp)
			if ferr != nil {
				return nil, ferr
			}
			return duplicateResult(winner, userID), nil
		}
		return nil, err
	}
	s.pub.CreditsChanged(userID, remaining)

	corpus, err := s.docs.ListOthers(ctx, doc.ID, s.corpusLimit)
	if err != nil {
		return nil, err
	}

	return &model.ScanResult{
		Status:           model.ScanStatusScanned,
		DocumentID:       doc.ID,
		Matches:          rankMatches(doc.Content, corpus, s.scanCfg),
		RemainingBalance: remaining,
	}, nil
}

// Preview ranks content against documents owned by other users. No credit is
// charged and nothing is persisted, so the threshold is stricter than a paid
// scan's.
func (s *ScanServiceImpl) Preview(ctx context.Context, userID uuid.UUID, content string) ([]model.Match, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: empty user id", errs.ErrValidation)
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: empty content", errs.ErrValidation)
	}
	corpus, err := s.docs.ListNotOwnedBy(ctx, userID, s.corpusLimit)
	if err != nil {
		return nil, err
	}
	return rankMatches(content, corpus, s.previewCfg), nil
}

func duplicateResult(existing *model.Document, caller uuid.UUID) *model.ScanResult {
	return &model.ScanResult{
		Status:             model.ScanStatusDuplicate,
		ExistingDocumentID: existing.ID,
		OwnedByCaller:      existing.UserID == caller,
	}
}

// rankMatches joins engine ranking output back to document records.
func rankMatches(content string, corpus []model.Document, cfg similarity.RankConfig) []model.Match {
	texts := make([]string, len(corpus))
	for i := range corpus {
		texts[i] = corpus[i].Content
	}
	ranked := similarity.Rank(content, texts, cfg)
	out := make([]model.Match, 0, len(ranked))
	for _, m := range ranked {
		d := corpus[m.Index]
		out = append(out, model.Match{
			DocumentID: d.ID,
			Filename:   d.Filename,
			Score:      m.Score,
			Algorithm:  string(m.Algorithm),
		})
	}
	return out
}
