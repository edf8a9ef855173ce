// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// User roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents an account with a consumable scan credit balance.
type User struct {
	ID        uuid.UUID // PK
	Username  string    // unique
	PwdHash   []byte    // Argon2id(password, SaltAuth)
	SaltAuth  []byte    // per-user auth salt
	Role      string    // RoleUser or RoleAdmin
	Credits   int64     // never negative
	LastReset time.Time // date of the last daily allotment reset
	CreatedAt time.Time
}

// Tokens collects issued access tokens.
type Tokens struct {
	AccessToken string
	ExpiresAt   time.Time // access token expiry (for diagnostics)
}

// Document is a stored text document. Immutable after creation.
type Document struct {
	ID          uuid.UUID // assigned at persistence time
	UserID      uuid.UUID // FK -> users.id
	Filename    string
	Content     string
	Fingerprint string // hex digest of exact content; unique system-wide
	CreatedAt   time.Time
}

// Match is a transient similarity result against one corpus document.
// Never persisted; recomputed on every scan.
type Match struct {
	DocumentID uuid.UUID `json:"documentId"`
	Filename   string    `json:"filename"`
	Score      int       `json:"score"`     // 0..100
	Algorithm  string    `json:"algorithm"` // scorer that produced the score
}

// Scan result statuses.
const (
	ScanStatusScanned   = "scanned"
	ScanStatusDuplicate = "duplicate"
)

// ScanResult is the coordinator's outcome for a single scan request.
type ScanResult struct {
	Status string

	// Set when Status == ScanStatusDuplicate.
	ExistingDocumentID uuid.UUID
	OwnedByCaller      bool

	// Set when Status == ScanStatusScanned.
	DocumentID       uuid.UUID
	Matches          []Match
	RemainingBalance int64
}

// Credit request statuses.
const (
	CreditRequestPending  = "pending"
	CreditRequestApproved = "approved"
	CreditRequestDenied   = "denied"
)

// CreditRequest is a user's plea for extra credits, resolved by an admin.
type CreditRequest struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	Amount     int64
	Status     string
	CreatedAt  time.Time
	ResolvedAt *time.Time
}
