package feed

import (
	"context"
	"time"

	"petplaza/internal/database"
)

// Feedback is a user-submitted report: a bug, a feature request, or
// general commentary.
type Feedback struct {
	UserID    string    `json:"user_id"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

// ServiceInterest records that a user clicked through to one of the
// pet-service offerings. Counted for the admin dashboard.
type ServiceInterest struct {
	UserID    string    `json:"user_id"`
	ServiceID string    `json:"service_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Stats aggregates usage counters for the admin dashboard
type Stats struct {
	Posts     int64            `json:"posts"`
	Users     int64            `json:"users"`
	Interests int64            `json:"interests"`
	Feedback  int64            `json:"feedback"`
	Breakdown map[string]int64 `json:"breakdown"`
}

// Store modes accepted by NewStore
const (
	StoreModePostgres = "postgres"
	StoreModeMemory   = "memory"
)

// Store is the persistence gateway for the feed. It owns exactly one
// business rule: UpdateCaption refuses to touch a post that has likes or
// comments, checked against the persisted counters in the same statement
// as the write. Everything else is plain translation to the backing store.
//
// Likes and comments use the store's atomic primitives (server-side
// increment, array append) so concurrent interactions never lose updates.
type Store interface {
	InsertPost(ctx context.Context, post *Post) error
	// ListPosts returns all posts ordered by creation time, newest first
	ListPosts(ctx context.Context) ([]Post, error)
	GetPost(ctx context.Context, postID string) (*Post, error)
	// UpdateCaption applies a guarded caption edit. Returns ErrEditLocked
	// if the post has interactions, ErrPostNotFound if it vanished.
	UpdateCaption(ctx context.Context, postID, caption string) error
	// IncrementLikes adjusts the like counter by delta atomically,
	// clamping at zero so an unlike can never drive the count negative.
	IncrementLikes(ctx context.Context, postID string, delta int64) (int64, error)
	// AppendComment appends atomically; insertion order is preserved
	AppendComment(ctx context.Context, postID string, comment *Comment) error
	DeletePost(ctx context.Context, postID string) error

	InsertFeedback(ctx context.Context, fb *Feedback) error
	InsertInterest(ctx context.Context, interest *ServiceInterest) error
	Stats(ctx context.Context) (*Stats, error)

	Health(ctx context.Context) map[string]string
}

// NewStore selects a store implementation for the given mode: "memory" or
// anything else for Postgres. The caller decides the mode exactly once and
// derives every mode-dependent dependency from that same value.
func NewStore(ctx context.Context, mode string) (Store, error) {
	if mode == StoreModeMemory {
		return NewMemStore(), nil
	}
	return NewPGStore(ctx, database.New())
}
