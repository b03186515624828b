package feed

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"petplaza/internal/session"
)

type stubPublisher struct {
	events []AlertEvent
	err    error
}

func (p *stubPublisher) PublishAlert(event AlertEvent) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

// failingStore errors on every read; used to exercise the degraded path
type failingStore struct {
	Store
}

func (f *failingStore) ListPosts(ctx context.Context) ([]Post, error) {
	return nil, errors.New("connection refused")
}

func newTestService(store Store, publisher AlertPublisher) *Service {
	return NewService(store, session.NewMemoryStore(), publisher, time.Hour, slog.Default())
}

func TestCreateAndLoad_NewestFirst(t *testing.T) {
	svc := newTestService(NewMemStore(), nil)
	ctx := context.Background()

	first, _, err := svc.Create(ctx, alice, CreatePostRequest{Caption: "first", ImageKey: "photos/1.jpg", Type: "media"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("expected 1 post, got %d", len(first))
	}

	// A later post must come back first
	time.Sleep(5 * time.Millisecond)
	posts, _, err := svc.Create(ctx, alice, CreatePostRequest{Caption: "second", Type: "question"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(posts))
	}
	if posts[0].Caption != "second" || posts[1].Caption != "first" {
		t.Errorf("expected newest-first ordering, got [%q, %q]", posts[0].Caption, posts[1].Caption)
	}
}

func TestCreate_LostPetSwitchesFilterAndPublishes(t *testing.T) {
	pub := &stubPublisher{}
	svc := newTestService(NewMemStore(), pub)

	_, activeFilter, err := svc.Create(context.Background(), alice,
		CreatePostRequest{Caption: "Rex is missing", ImageKey: "photos/rex.jpg", Type: "lost-pet"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if activeFilter != string(TypeLostPet) {
		t.Errorf("expected active filter %q, got %q", TypeLostPet, activeFilter)
	}
	if len(pub.events) != 1 {
		t.Fatalf("expected 1 alert event, got %d", len(pub.events))
	}
	if pub.events[0].Caption != "Rex is missing" {
		t.Errorf("alert carries wrong caption: %q", pub.events[0].Caption)
	}
}

func TestCreate_PublisherFailureDoesNotFailCreate(t *testing.T) {
	pub := &stubPublisher{err: errors.New("broker down")}
	svc := newTestService(NewMemStore(), pub)

	posts, _, err := svc.Create(context.Background(), alice,
		CreatePostRequest{Caption: "Rex is missing", ImageKey: "photos/rex.jpg", Type: "lost-pet"})
	if err != nil {
		t.Fatalf("create must not fail on publish error: %v", err)
	}
	if len(posts) != 1 {
		t.Errorf("post should be persisted regardless, got %d posts", len(posts))
	}
}

func TestCreate_NonLostPetKeepsAllFilter(t *testing.T) {
	pub := &stubPublisher{}
	svc := newTestService(NewMemStore(), pub)

	_, activeFilter, err := svc.Create(context.Background(), alice,
		CreatePostRequest{Caption: "walkies", ImageKey: "photos/1.jpg", Type: "media"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if activeFilter != FilterAll {
		t.Errorf("expected active filter %q, got %q", FilterAll, activeFilter)
	}
	if len(pub.events) != 0 {
		t.Errorf("no alert expected for media posts, got %d", len(pub.events))
	}
}

func TestFilter(t *testing.T) {
	posts := []Post{
		{ID: "1", Type: TypeMedia},
		{ID: "2", Type: TypeQuestion},
		{ID: "3", Type: TypeLostPet},
		{ID: "4", Type: TypeMedia},
	}

	if got := Filter(posts, FilterAll); len(got) != 4 {
		t.Errorf("all filter should keep everything, got %d", len(got))
	}
	if got := Filter(posts, ""); len(got) != 4 {
		t.Errorf("empty filter should keep everything, got %d", len(got))
	}
	if got := Filter(posts, "media"); len(got) != 2 {
		t.Errorf("media filter should keep 2 posts, got %d", len(got))
	}
	if got := Filter(posts, "lost-pet"); len(got) != 1 || got[0].ID != "3" {
		t.Errorf("lost-pet filter wrong: %+v", got)
	}
	if got := Filter(posts, "unknown"); len(got) != 0 {
		t.Errorf("unknown filter should match nothing, got %d", len(got))
	}
}

func TestToggleLike_RoundTrip(t *testing.T) {
	svc := newTestService(NewMemStore(), nil)
	ctx := context.Background()

	posts, _, _ := svc.Create(ctx, alice, CreatePostRequest{Caption: "hi", Type: "question"})
	postID := posts[0].ID
	bob := Author{ID: "user-bob", Name: "Bob"}

	liked, likes, err := svc.ToggleLike(ctx, bob, postID)
	if err != nil {
		t.Fatalf("like failed: %v", err)
	}
	if !liked || likes != 1 {
		t.Errorf("expected liked=true likes=1, got liked=%v likes=%d", liked, likes)
	}

	// The viewer's own feed now carries the flag
	feed := svc.Load(ctx, bob.ID)
	if !feed[0].LikedByViewer {
		t.Error("expected LikedByViewer for bob")
	}
	// But not anyone else's
	feed = svc.Load(ctx, alice.ID)
	if feed[0].LikedByViewer {
		t.Error("alice never liked this post")
	}

	liked, likes, err = svc.ToggleLike(ctx, bob, postID)
	if err != nil {
		t.Fatalf("unlike failed: %v", err)
	}
	if liked || likes != 0 {
		t.Errorf("expected liked=false likes=0, got liked=%v likes=%d", liked, likes)
	}
}

func TestToggleLike_Anonymous(t *testing.T) {
	svc := newTestService(NewMemStore(), nil)

	if _, _, err := svc.ToggleLike(context.Background(), Author{}, "whatever"); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestToggleLike_MissingPost(t *testing.T) {
	svc := newTestService(NewMemStore(), nil)

	if _, _, err := svc.ToggleLike(context.Background(), alice, "gone"); !errors.Is(err, ErrPostNotFound) {
		t.Errorf("expected ErrPostNotFound, got %v", err)
	}
}

func TestIncrementLikes_ClampsAtZero(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()

	post, _ := NewPost(alice, "hi", "", TypeQuestion)
	if err := store.InsertPost(ctx, post); err != nil {
		t.Fatal(err)
	}

	// A stray decrement on a zero counter must not go negative
	likes, err := store.IncrementLikes(ctx, post.ID, -1)
	if err != nil {
		t.Fatalf("decrement failed: %v", err)
	}
	if likes != 0 {
		t.Errorf("likes must clamp at zero, got %d", likes)
	}
}

func TestEdit_GuardAgainstInteractions(t *testing.T) {
	svc := newTestService(NewMemStore(), nil)
	ctx := context.Background()

	posts, _, _ := svc.Create(ctx, alice, CreatePostRequest{Caption: "original", Type: "question"})
	postID := posts[0].ID

	// Pristine: edit goes through
	updated, err := svc.Edit(ctx, alice, postID, "fixed typo")
	if err != nil {
		t.Fatalf("pristine edit failed: %v", err)
	}
	if updated[0].Caption != "fixed typo" {
		t.Errorf("caption not updated: %q", updated[0].Caption)
	}

	// A like lands; editing locks
	bob := Author{ID: "user-bob"}
	if _, _, err := svc.ToggleLike(ctx, bob, postID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Edit(ctx, alice, postID, "sneaky edit"); !errors.Is(err, ErrEditLocked) {
		t.Errorf("expected ErrEditLocked after a like, got %v", err)
	}

	// The unlike brings the counter back to zero; editing unlocks
	if _, _, err := svc.ToggleLike(ctx, bob, postID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Edit(ctx, alice, postID, "allowed again"); err != nil {
		t.Errorf("edit with counters back at zero should work, got %v", err)
	}
}

func TestEdit_LockedByComment(t *testing.T) {
	svc := newTestService(NewMemStore(), nil)
	ctx := context.Background()

	posts, _, _ := svc.Create(ctx, alice, CreatePostRequest{Caption: "original", Type: "question"})
	postID := posts[0].ID

	if _, err := svc.Comment(ctx, Author{ID: "user-bob", Name: "Bob"}, postID, "interesting"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Edit(ctx, alice, postID, "edit"); !errors.Is(err, ErrEditLocked) {
		t.Errorf("expected ErrEditLocked after a comment, got %v", err)
	}
}

func TestComment_OrderPreserved(t *testing.T) {
	svc := newTestService(NewMemStore(), nil)
	ctx := context.Background()

	posts, _, _ := svc.Create(ctx, alice, CreatePostRequest{Caption: "ask me anything", Type: "question"})
	postID := posts[0].ID
	bob := Author{ID: "user-bob", Name: "Bob"}

	for _, text := range []string{"first", "second", "third"} {
		if _, err := svc.Comment(ctx, bob, postID, text); err != nil {
			t.Fatalf("comment failed: %v", err)
		}
	}

	feed := svc.Load(ctx, "")
	comments := feed[0].Comments
	if len(comments) != 3 {
		t.Fatalf("expected 3 comments, got %d", len(comments))
	}
	for i, want := range []string{"first", "second", "third"} {
		if comments[i].Text != want {
			t.Errorf("comment %d: expected %q, got %q", i, want, comments[i].Text)
		}
	}
}

func TestComment_Anonymous(t *testing.T) {
	svc := newTestService(NewMemStore(), nil)

	if _, err := svc.Comment(context.Background(), Author{}, "post", "hi"); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestDelete_AuthorOnly(t *testing.T) {
	svc := newTestService(NewMemStore(), nil)
	ctx := context.Background()

	posts, _, _ := svc.Create(ctx, alice, CreatePostRequest{Caption: "to be removed", Type: "question"})
	postID := posts[0].ID

	if _, err := svc.Delete(ctx, Author{ID: "user-bob"}, postID); !errors.Is(err, ErrNotAuthor) {
		t.Errorf("expected ErrNotAuthor, got %v", err)
	}

	remaining, err := svc.Delete(ctx, alice, postID)
	if err != nil {
		t.Fatalf("author delete failed: %v", err)
	}
	if len(remaining) != 0 {
		t.Errorf("expected empty feed after delete, got %d posts", len(remaining))
	}

	if _, err := svc.Delete(ctx, alice, postID); !errors.Is(err, ErrPostNotFound) {
		t.Errorf("double delete: expected ErrPostNotFound, got %v", err)
	}
}

func TestLoad_DegradesToEmptyFeed(t *testing.T) {
	svc := newTestService(&failingStore{Store: NewMemStore()}, nil)

	posts := svc.Load(context.Background(), alice.ID)
	if posts == nil {
		t.Fatal("degraded load must return an empty slice, not nil")
	}
	if len(posts) != 0 {
		t.Errorf("expected empty feed, got %d posts", len(posts))
	}
}

func TestSaveFeedback(t *testing.T) {
	store := NewMemStore()
	svc := newTestService(store, nil)
	ctx := context.Background()

	if err := svc.SaveFeedback(ctx, alice, "love the app", "feature"); err != nil {
		t.Fatalf("feedback failed: %v", err)
	}
	// Unknown types fall back to general instead of erroring
	if err := svc.SaveFeedback(ctx, alice, "hmm", "rant"); err != nil {
		t.Fatalf("feedback with unknown type failed: %v", err)
	}
	if err := svc.SaveFeedback(ctx, alice, "   ", "bug"); !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("expected ErrEmptyMessage, got %v", err)
	}
	if err := svc.SaveFeedback(ctx, Author{}, "hi", "bug"); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("expected ErrNotAuthenticated, got %v", err)
	}

	stats, err := svc.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Feedback != 2 {
		t.Errorf("expected 2 feedback entries, got %d", stats.Feedback)
	}
}

func TestSaveInterestAndStats(t *testing.T) {
	svc := newTestService(NewMemStore(), nil)
	ctx := context.Background()

	if err := svc.SaveInterest(ctx, alice, "grooming"); err != nil {
		t.Fatal(err)
	}
	if err := svc.SaveInterest(ctx, alice, "grooming"); err != nil {
		t.Fatal(err)
	}
	if err := svc.SaveInterest(ctx, alice, "boarding"); err != nil {
		t.Fatal(err)
	}
	if err := svc.SaveInterest(ctx, alice, "  "); !errors.Is(err, ErrEmptyServiceID) {
		t.Errorf("expected ErrEmptyServiceID, got %v", err)
	}

	stats, err := svc.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Interests != 3 {
		t.Errorf("expected 3 interests, got %d", stats.Interests)
	}
	if stats.Breakdown["grooming"] != 2 || stats.Breakdown["boarding"] != 1 {
		t.Errorf("unexpected breakdown: %v", stats.Breakdown)
	}
}
