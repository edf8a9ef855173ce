package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"

	pkgcrypto "github.com/akulakov/docscan/internal/crypto"
	"github.com/akulakov/docscan/internal/errs"
	"github.com/akulakov/docscan/internal/limiter"
	"github.com/akulakov/docscan/internal/model"
	"github.com/akulakov/docscan/internal/repository"
)

type fakeUsers struct {
	mu     sync.Mutex
	byName map[string]*model.User

	createErr error
	getErr    error
	resetErr  error

	resetCalls int
}

var _ repository.UserRepository = (*fakeUsers)(nil)

func (f *fakeUsers) Create(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if f.byName == nil {
		f.byName = map[string]*model.User{}
	}
	if _, exists := f.byName[u.Username]; exists {
		return errs.ErrAlreadyExists
	}
	cpy := *u
	f.byName[u.Username] = &cpy
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.byName {
		if u.ID == id {
			c := *u
			return &c, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byName[username]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (f *fakeUsers) GetBalance(_ context.Context, id uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byName {
		if u.ID == id {
			return u.Credits, nil
		}
	}
	return 0, errs.ErrNotFound
}

func (f *fakeUsers) DecrementIfPositive(_ context.Context, id uuid.UUID) (bool, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byName {
		if u.ID == id {
			if u.Credits <= 0 {
				return false, 0, nil
			}
			u.Credits--
			return true, u.Credits, nil
		}
	}
	return false, 0, errs.ErrNotFound
}

func (f *fakeUsers) ResetIfNewDay(_ context.Context, id uuid.UUID, allotment int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resetCalls++
	if f.resetErr != nil {
		return false, f.resetErr
	}
	now := time.Now()
	for _, u := range f.byName {
		if u.ID == id {
			ly, lm, ld := u.LastReset.Date()
			y, m, d := now.Date()
			if ly == y && lm == m && ld == d {
				return false, nil
			}
			u.Credits = allotment
			u.LastReset = now
			return true, nil
		}
	}
	return false, errs.ErrNotFound
}

func (f *fakeUsers) AddCredits(_ context.Context, id uuid.UUID, amount int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byName {
		if u.ID == id {
			u.Credits += amount
			return u.Credits, nil
		}
	}
	return 0, errs.ErrNotFound
}

type fakeLimiter struct {
	allowOK  bool
	allowErr error

	failBlocked bool
	failErr     error

	successErr error

	allowCalls   int
	failureCalls int
	successCalls int
}

var _ limiter.Limiter = (*fakeLimiter)(nil)

func (l *fakeLimiter) Allow(context.Context, string, []byte) (bool, time.Duration, error) {
	l.allowCalls++
	return l.allowOK, 0, l.allowErr
}
func (l *fakeLimiter) Success(context.Context, string, []byte) error {
	l.successCalls++
	return l.successErr
}
func (l *fakeLimiter) Failure(context.Context, string, []byte) (bool, time.Duration, error) {
	l.failureCalls++
	return l.failBlocked, 0, l.failErr
}

func TestAuth_Register_Basics(t *testing.T) {
	t.Parallel()
	users := &fakeUsers{byName: map[string]*model.User{}}
	s := NewAuthService(users, []byte("k"), time.Minute, &fakeLimiter{}, 20)

	if _, err := s.Register(context.Background(), "", ""); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("want validation error on empty username/password, got %v", err)
	}

	id, err := s.Register(context.Background(), "alice", "pwd")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if id == "" {
		t.Fatalf("empty user id")
	}

	u := users.byName["alice"]
	if u.Role != model.RoleUser {
		t.Fatalf("role: want %q, got %q", model.RoleUser, u.Role)
	}
	if u.Credits != 20 {
		t.Fatalf("starting credits: want 20, got %d", u.Credits)
	}
	if !pkgcrypto.VerifyPassword([]byte("pwd"), u.SaltAuth, u.PwdHash) {
		t.Fatalf("stored hash does not verify")
	}

	if _, err := s.Register(context.Background(), "alice", "pwd2"); !errors.Is(err, errs.ErrAlreadyExists) {
		t.Fatalf("want ErrAlreadyExists on duplicate username, got %v", err)
	}

	users.createErr = errors.New("boom")
	if _, err := s.Register(context.Background(), "bob", "pwd"); err == nil {
		t.Fatalf("want propagated repo error")
	}
}

func TestAuth_LoginWithIP_RateLimiterAndCreds(t *testing.T) {
	t.Parallel()

	salt, _ := pkgcrypto.NewSalt()
	pw := []byte("correct")
	u := &model.User{
		ID:       uuid.Must(uuid.NewV4()),
		Username: "alice",
		Role:     model.RoleUser,
		SaltAuth: salt,
		PwdHash:  pkgcrypto.HashPassword(pw, salt),
	}

	users := &fakeUsers{byName: map[string]*model.User{"alice": u}}
	lim := &fakeLimiter{allowOK: true}
	s := NewAuthService(users, []byte("secret"), 2*time.Minute, lim, 20)

	// Blocked upfront.
	lim.allowOK = false
	if _, _, err := s.LoginWithIP(context.Background(), "alice", "correct", "1.2.3.4"); !errors.Is(err, errs.ErrRateLimited) {
		t.Fatalf("want ErrRateLimited while blocked, got %v", err)
	}
	lim.allowOK = true

	// Wrong password: limiter records the failure, caller sees unauthorized.
	if _, _, err := s.LoginWithIP(context.Background(), "alice", "nope", "1.2.3.4"); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("want ErrUnauthorized on wrong password, got %v", err)
	}
	if lim.failureCalls != 1 {
		t.Fatalf("failure not recorded: %d calls", lim.failureCalls)
	}

	// Unknown user looks the same as a wrong password.
	if _, _, err := s.LoginWithIP(context.Background(), "mallory", "nope", "1.2.3.4"); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("want ErrUnauthorized on unknown user, got %v", err)
	}

	// A failure that trips the threshold reports rate-limited instead.
	lim.failBlocked = true
	if _, _, err := s.LoginWithIP(context.Background(), "alice", "nope", "1.2.3.4"); !errors.Is(err, errs.ErrRateLimited) {
		t.Fatalf("want ErrRateLimited when the failure blocks, got %v", err)
	}
	lim.failBlocked = false

	// Correct credentials issue a parsable token carrying the role.
	toks, got, err := s.LoginWithIP(context.Background(), "alice", "correct", "1.2.3.4")
	if err != nil {
		t.Fatalf("LoginWithIP: %v", err)
	}
	if got.ID != u.ID {
		t.Fatalf("user: want %s, got %s", u.ID, got.ID)
	}
	if lim.successCalls != 1 {
		t.Fatalf("success not recorded: %d calls", lim.successCalls)
	}
	claims, err := ParseAccessToken(toks.AccessToken, []byte("secret"))
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims.Subject != u.ID.String() || claims.Role != model.RoleUser {
		t.Fatalf("claims: %+v", claims)
	}
}

func TestParseAccessToken_RejectsForeignKey(t *testing.T) {
	t.Parallel()

	salt, _ := pkgcrypto.NewSalt()
	u := &model.User{
		ID:       uuid.Must(uuid.NewV4()),
		Username: "alice",
		SaltAuth: salt,
		PwdHash:  pkgcrypto.HashPassword([]byte("pw"), salt),
	}
	users := &fakeUsers{byName: map[string]*model.User{"alice": u}}
	s := NewAuthService(users, []byte("right-key"), time.Minute, &fakeLimiter{allowOK: true}, 20)

	toks, _, err := s.LoginWithIP(context.Background(), "alice", "pw", "")
	if err != nil {
		t.Fatalf("LoginWithIP: %v", err)
	}

	if _, err := ParseAccessToken(toks.AccessToken, []byte("wrong-key")); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("want ErrUnauthorized with wrong key, got %v", err)
	}
	if _, err := ParseAccessToken("not-a-token", []byte("right-key")); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("want ErrUnauthorized for garbage, got %v", err)
	}
}
