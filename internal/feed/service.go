package feed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"petplaza/internal/session"
)

// AlertEvent is published when a lost-pet post is created so the alerts
// service can fan it out by email.
type AlertEvent struct {
	MessageID  string    `json:"message_id"`
	PostID     string    `json:"post_id"`
	AuthorName string    `json:"author_name"`
	Caption    string    `json:"caption"`
	ImageKey   string    `json:"image_key,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// AlertPublisher publishes lost-pet alert events. Publishing is best
// effort: post creation never fails because the broker is down.
type AlertPublisher interface {
	PublishAlert(event AlertEvent) error
}

// FilterAll shows every post type
const FilterAll = "all"

// Service is the feed controller. It mediates every mutation through the
// post aggregate's validation and the store's guarded operations, and
// re-reads the full post list after each mutation so the caller always
// gets the authoritative working set back.
type Service struct {
	store     Store
	likedSet  session.Store
	publisher AlertPublisher
	likedTTL  time.Duration
	logger    *slog.Logger
}

// NewService creates the feed controller. likedSet holds the per-viewer
// liked flags; they are session-scoped hints, not an authoritative
// relation, and expire with the session.
func NewService(store Store, likedSet session.Store, publisher AlertPublisher, likedTTL time.Duration, logger *slog.Logger) *Service {
	return &Service{
		store:     store,
		likedSet:  likedSet,
		publisher: publisher,
		likedTTL:  likedTTL,
		logger:    logger,
	}
}

// Load fetches the full post collection, newest first, and decorates it
// with the viewer's session-local liked flags. A transient store failure
// degrades to an empty feed instead of an error: the read path never
// takes the view down.
func (s *Service) Load(ctx context.Context, viewerID string) []Post {
	posts, err := s.store.ListPosts(ctx)
	if err != nil {
		s.logger.Warn("feed load failed, serving empty feed", "error", err)
		return []Post{}
	}
	if viewerID != "" {
		for i := range posts {
			posts[i].LikedByViewer = s.isLiked(ctx, viewerID, posts[i].ID)
		}
	}
	return posts
}

// Filter returns the subset of posts matching the given type filter.
// Pure and synchronous; never touches the store.
func Filter(posts []Post, filter string) []Post {
	if filter == "" || filter == FilterAll {
		return posts
	}
	out := []Post{}
	for _, p := range posts {
		if string(p.Type) == filter {
			out = append(out, p)
		}
	}
	return out
}

// Create validates the intent, persists the post, and returns the
// refreshed feed. Creating a lost-pet alert switches the active filter so
// the new alert is immediately visible, and publishes an alert event.
func (s *Service) Create(ctx context.Context, author Author, req CreatePostRequest) ([]Post, string, error) {
	post, err := NewPost(author, req.Caption, req.ImageKey, PostType(req.Type))
	if err != nil {
		return nil, "", err
	}

	if err := s.store.InsertPost(ctx, post); err != nil {
		return nil, "", fmt.Errorf("failed to persist post: %w", err)
	}

	activeFilter := FilterAll
	if post.Type == TypeLostPet {
		activeFilter = string(TypeLostPet)
		s.publishAlert(post)
	}

	return s.Load(ctx, author.ID), activeFilter, nil
}

// ToggleLike computes the intended transition from the session-local
// liked flag and submits exactly one atomic increment or decrement. The
// returned count is the store's post-update value; the feed itself is not
// reloaded until the next Load.
func (s *Service) ToggleLike(ctx context.Context, viewer Author, postID string) (bool, int64, error) {
	if viewer.ID == "" {
		return false, 0, ErrNotAuthenticated
	}

	liked := s.isLiked(ctx, viewer.ID, postID)
	delta := int64(1)
	if liked {
		delta = -1
	}

	likes, err := s.store.IncrementLikes(ctx, postID, delta)
	if err != nil {
		return liked, 0, err
	}

	key := likedKey(viewer.ID, postID)
	if liked {
		if err := s.likedSet.Delete(ctx, key); err != nil {
			s.logger.Warn("failed to clear liked flag", "key", key, "error", err)
		}
	} else {
		if err := s.likedSet.Set(ctx, key, "1", s.likedTTL); err != nil {
			s.logger.Warn("failed to set liked flag", "key", key, "error", err)
		}
	}

	return !liked, likes, nil
}

// Edit applies a caption edit. The aggregate check gives a fast answer on
// the loaded snapshot; the store's conditional update re-validates the
// pristine invariant against the persisted counters, so a like that lands
// in between still locks the edit out.
func (s *Service) Edit(ctx context.Context, viewer Author, postID, caption string) ([]Post, error) {
	if viewer.ID == "" {
		return nil, ErrNotAuthenticated
	}

	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	newCaption, err := post.RequestEdit(viewer.ID, caption)
	if err != nil {
		return nil, err
	}

	if err := s.store.UpdateCaption(ctx, postID, newCaption); err != nil {
		return nil, err
	}

	return s.Load(ctx, viewer.ID), nil
}

// Delete removes a post. Author-only, allowed in any state; there is no
// tombstone, the record is gone.
func (s *Service) Delete(ctx context.Context, viewer Author, postID string) ([]Post, error) {
	if viewer.ID == "" {
		return nil, ErrNotAuthenticated
	}

	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := post.RequestDelete(viewer.ID); err != nil {
		return nil, err
	}

	if err := s.store.DeletePost(ctx, postID); err != nil {
		return nil, err
	}

	return s.Load(ctx, viewer.ID), nil
}

// Comment appends a comment and returns the refreshed feed. Anonymous
// commenting is rejected outright rather than silently dropped.
func (s *Service) Comment(ctx context.Context, viewer Author, postID, text string) ([]Post, error) {
	comment, err := NewComment(viewer, text)
	if err != nil {
		return nil, err
	}

	if err := s.store.AppendComment(ctx, postID, comment); err != nil {
		return nil, err
	}

	return s.Load(ctx, viewer.ID), nil
}

// SaveFeedback records a user feedback submission
func (s *Service) SaveFeedback(ctx context.Context, viewer Author, message, fbType string) error {
	if viewer.ID == "" {
		return ErrNotAuthenticated
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return ErrEmptyMessage
	}
	switch fbType {
	case "bug", "feature", "general":
	default:
		fbType = "general"
	}

	return s.store.InsertFeedback(ctx, &Feedback{
		UserID:    viewer.ID,
		Message:   message,
		Type:      fbType,
		CreatedAt: time.Now().UTC(),
	})
}

// SaveInterest records that the viewer expressed interest in a service
func (s *Service) SaveInterest(ctx context.Context, viewer Author, serviceID string) error {
	if viewer.ID == "" {
		return ErrNotAuthenticated
	}
	if strings.TrimSpace(serviceID) == "" {
		return ErrEmptyServiceID
	}

	return s.store.InsertInterest(ctx, &ServiceInterest{
		UserID:    viewer.ID,
		ServiceID: serviceID,
		CreatedAt: time.Now().UTC(),
	})
}

// Stats aggregates usage counters for the admin dashboard
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	return s.store.Stats(ctx)
}

func (s *Service) publishAlert(post *Post) {
	if s.publisher == nil {
		return
	}
	event := AlertEvent{
		MessageID:  post.ID,
		PostID:     post.ID,
		AuthorName: post.AuthorName,
		Caption:    post.Caption,
		ImageKey:   post.ImageKey,
		CreatedAt:  post.CreatedAt,
	}
	if err := s.publisher.PublishAlert(event); err != nil {
		s.logger.Warn("failed to publish lost-pet alert", "post_id", post.ID, "error", err)
	}
}

func (s *Service) isLiked(ctx context.Context, viewerID, postID string) bool {
	ok, err := s.likedSet.Exists(ctx, likedKey(viewerID, postID))
	if err != nil {
		return false
	}
	return ok
}

func likedKey(viewerID, postID string) string {
	return fmt.Sprintf("liked:%s:%s", viewerID, postID)
}
