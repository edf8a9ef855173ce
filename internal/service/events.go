package service

import (
	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"
)

// Publisher receives balance-change events after a successful charge or
// grant. The transport that pushes them to connected clients lives outside
// this core; services only emit.
type Publisher interface {
	CreditsChanged(userID uuid.UUID, remaining int64)
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) CreditsChanged(uuid.UUID, int64) {}

// LogPublisher records balance changes in the structured log, the default
// sink when no push transport is attached.
type LogPublisher struct{ Log *zap.Logger }

func (p LogPublisher) CreditsChanged(userID uuid.UUID, remaining int64) {
	p.Log.Info("credits changed",
		zap.String("user", userID.String()),
		zap.Int64("remaining", remaining),
	)
}
