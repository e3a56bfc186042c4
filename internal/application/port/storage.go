package port

import (
	"context"
	"time"

	"github.com/garyjia/trip-expenses/internal/domain/entity"
)

// SessionStore keeps chat session snapshots between requests
type SessionStore interface {
	// Get returns ErrNotFound for unknown or expired sessions
	Get(ctx context.Context, id string) (*entity.ChatSession, error)
	Save(ctx context.Context, session *entity.ChatSession) error
	Delete(ctx context.Context, id string) error
	// ListIdle returns IDs of sessions not updated since before.
	// Stores that expire entries on their own may return nothing.
	ListIdle(ctx context.Context, before time.Time) ([]string, error)
}
