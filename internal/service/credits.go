package service

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid/v5"

	"github.com/akulakov/docscan/internal/errs"
	"github.com/akulakov/docscan/internal/model"
	"github.com/akulakov/docscan/internal/repository"
)

// maxRequestAmount caps a single credit request.
const maxRequestAmount = 10

// CreditService is the ledger facade: balances, the daily reset, and the
// request/grant workflow resolved by admins.
type CreditService interface {
	// Balance applies the lazy daily reset and returns the current balance.
	Balance(ctx context.Context, userID uuid.UUID) (int64, error)
	// Request files a pending credit request for 1..10 credits.
	Request(ctx context.Context, userID uuid.UUID, amount int64) (*model.CreditRequest, error)
	// PendingRequests lists unresolved requests (admin).
	PendingRequests(ctx context.Context) ([]model.CreditRequest, error)
	// Approve grants a pending request atomically (admin).
	Approve(ctx context.Context, requestID uuid.UUID) (*model.CreditRequest, int64, error)
	// Deny rejects a pending request (admin).
	Deny(ctx context.Context, requestID uuid.UUID) error
}

type CreditServiceImpl struct {
	users repository.UserRepository
	reqs  repository.CreditRequestRepository
	pub   Publisher
	daily int64
}

// NewCreditService constructs CreditService.
func NewCreditService(users repository.UserRepository, reqs repository.CreditRequestRepository, pub Publisher, dailyAllotment int64) *CreditServiceImpl {
	if pub == nil {
		pub = NopPublisher{}
	}
	if dailyAllotment <= 0 {
		dailyAllotment = 20
	}
	return &CreditServiceImpl{users: users, reqs: reqs, pub: pub, daily: dailyAllotment}
}

// Balance tops the user up on the first call of a new day, then reads.
func (s *CreditServiceImpl) Balance(ctx context.Context, userID uuid.UUID) (int64, error) {
	if userID == uuid.Nil {
		return 0, fmt.Errorf("%w: empty user id", errs.ErrValidation)
	}
	if _, err := s.users.ResetIfNewDay(ctx, userID, s.daily); err != nil {
		return 0, err
	}
	return s.users.GetBalance(ctx, userID)
}

// Request files a pending request for later admin resolution.
func (s *CreditServiceImpl) Request(ctx context.Context, userID uuid.UUID, amount int64) (*model.CreditRequest, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: empty user id", errs.ErrValidation)
	}
	if amount < 1 || amount > maxRequestAmount {
		return nil, fmt.Errorf("%w: requested credits must be between 1 and %d", errs.ErrValidation, maxRequestAmount)
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	cr := &model.CreditRequest{
		ID:     id,
		UserID: userID,
		Amount: amount,
		Status: model.CreditRequestPending,
	}
	if err := s.reqs.Create(ctx, cr); err != nil {
		return nil, err
	}
	return cr, nil
}

// PendingRequests lists unresolved requests, oldest first.
func (s *CreditServiceImpl) PendingRequests(ctx context.Context) ([]model.CreditRequest, error) {
	return s.reqs.ListPending(ctx)
}

// Approve resolves and grants in one repository transaction, then emits the
// balance change.
func (s *CreditServiceImpl) Approve(ctx context.Context, requestID uuid.UUID) (*model.CreditRequest, int64, error) {
	if requestID == uuid.Nil {
		return nil, 0, fmt.Errorf("%w: empty request id", errs.ErrValidation)
	}
	cr, remaining, err := s.reqs.Approve(ctx, requestID)
	if err != nil {
		return nil, 0, err
	}
	s.pub.CreditsChanged(cr.UserID, remaining)
	return cr, remaining, nil
}

// Deny rejects a pending request.
func (s *CreditServiceImpl) Deny(ctx context.Context, requestID uuid.UUID) error {
	if requestID == uuid.Nil {
		return fmt.Errorf("%w: empty request id", errs.ErrValidation)
	}
	return s.reqs.Deny(ctx, requestID)
}
