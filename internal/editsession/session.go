// Package editsession holds the working copies of maps that are being edited.
//
// A session wraps one *indoor.Map. Edits are applied to that copy only; the
// stored map changes when the session is committed. Sessions expire after a
// period of inactivity.
//
//	sess := editsession.New(m, editsession.DefaultTTL)
//	_ = store.Set(ctx, sess)
//
//	sess, err := store.Get(ctx, id)
//	if sess == nil {
//	    // missing or expired
//	}
package editsession

import (
	"context"
	"time"

	"github.com/google/uuid"

	"wayfinder/core-go/internal/indoor"
)

const DefaultTTL = 30 * time.Minute

type Session struct {
	ID        string      `json:"id"`
	Map       *indoor.Map `json:"map"`
	CreatedAt time.Time   `json:"created_at"`
	ExpiresAt time.Time   `json:"expires_at"`
}

func New(m *indoor.Map, ttl time.Duration) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        uuid.NewString(),
		Map:       m,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

func (s *Session) IsExpired() bool {
	return !time.Now().Before(s.ExpiresAt)
}

// Touch pushes the expiry ttl into the future.
func (s *Session) Touch(ttl time.Duration) {
	s.ExpiresAt = time.Now().UTC().Add(ttl)
}

type Store interface {
	// Get returns nil, nil when the session does not exist or has expired.
	Get(ctx context.Context, id string) (*Session, error)
	Set(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
	// Cleanup drops expired sessions and reports how many were removed.
	Cleanup(ctx context.Context) (int, error)
}
