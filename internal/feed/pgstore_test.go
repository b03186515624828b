package feed

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"petplaza/internal/database"
)

// Integration tests against a disposable Postgres container. Run with
// -short to skip them.

const (
	tcDatabase = "petplaza_test"
	tcUser     = "petplaza"
	tcPassword = "petplaza"
)

func mustStartPostgresContainer() (func(context.Context, ...testcontainers.TerminateOption) error, error) {
	ctx := context.Background()

	dbContainer, err := postgres.Run(
		ctx,
		"postgres:16-alpine",
		postgres.WithDatabase(tcDatabase),
		postgres.WithUsername(tcUser),
		postgres.WithPassword(tcPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		return nil, err
	}

	host, err := dbContainer.Host(ctx)
	if err != nil {
		return dbContainer.Terminate, err
	}
	port, err := dbContainer.MappedPort(ctx, "5432/tcp")
	if err != nil {
		return dbContainer.Terminate, err
	}

	os.Setenv("DB_HOST", host)
	os.Setenv("DB_PORT", port.Port())
	os.Setenv("DB_USERNAME", tcUser)
	os.Setenv("DB_PASSWORD", tcPassword)
	os.Setenv("DB_DATABASE", tcDatabase)
	os.Setenv("DB_SCHEMA", "public")

	return dbContainer.Terminate, nil
}

func TestMain(m *testing.M) {
	flag.Parse()

	var teardown func(context.Context, ...testcontainers.TerminateOption) error
	if !testing.Short() {
		var err error
		teardown, err = mustStartPostgresContainer()
		if err != nil {
			log.Printf("could not start postgres container, integration tests will be skipped: %v", err)
		}
	}

	code := m.Run()

	if teardown != nil {
		if err := teardown(context.Background()); err != nil {
			log.Printf("could not teardown postgres container: %v", err)
		}
	}
	os.Exit(code)
}

func newPGStoreForTest(t *testing.T) Store {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	if os.Getenv("DB_HOST") == "" {
		t.Skip("postgres container unavailable")
	}

	store, err := NewPGStore(context.Background(), database.New())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return store
}

func TestPGStore_InsertListGet(t *testing.T) {
	store := newPGStoreForTest(t)
	ctx := context.Background()

	post, _ := NewPost(alice, "integration caption", "photos/int.jpg", TypeMedia)
	if err := store.InsertPost(ctx, post); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	defer store.DeletePost(ctx, post.ID)

	got, err := store.GetPost(ctx, post.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Caption != "integration caption" || got.Type != TypeMedia {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if got.Comments == nil {
		t.Error("comments must come back as an empty slice")
	}

	posts, err := store.ListPosts(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	found := false
	for _, p := range posts {
		if p.ID == post.ID {
			found = true
		}
	}
	if !found {
		t.Error("inserted post missing from list")
	}
}

func TestPGStore_GuardedCaptionUpdate(t *testing.T) {
	store := newPGStoreForTest(t)
	ctx := context.Background()

	post, _ := NewPost(alice, "before", "", TypeQuestion)
	if err := store.InsertPost(ctx, post); err != nil {
		t.Fatal(err)
	}
	defer store.DeletePost(ctx, post.ID)

	if err := store.UpdateCaption(ctx, post.ID, "after"); err != nil {
		t.Fatalf("pristine update failed: %v", err)
	}

	if _, err := store.IncrementLikes(ctx, post.ID, 1); err != nil {
		t.Fatal(err)
	}
	if err := store.UpdateCaption(ctx, post.ID, "locked"); !errors.Is(err, ErrEditLocked) {
		t.Errorf("expected ErrEditLocked, got %v", err)
	}

	// Counter back at zero reopens the edit window
	if _, err := store.IncrementLikes(ctx, post.ID, -1); err != nil {
		t.Fatal(err)
	}
	if err := store.UpdateCaption(ctx, post.ID, "reopened"); err != nil {
		t.Errorf("update after unlike failed: %v", err)
	}

	if err := store.UpdateCaption(ctx, "missing-post", "x"); !errors.Is(err, ErrPostNotFound) {
		t.Errorf("expected ErrPostNotFound, got %v", err)
	}
}

func TestPGStore_AtomicLikes(t *testing.T) {
	store := newPGStoreForTest(t)
	ctx := context.Background()

	post, _ := NewPost(alice, "counter", "", TypeQuestion)
	if err := store.InsertPost(ctx, post); err != nil {
		t.Fatal(err)
	}
	defer store.DeletePost(ctx, post.ID)

	likes, err := store.IncrementLikes(ctx, post.ID, 1)
	if err != nil || likes != 1 {
		t.Fatalf("expected 1 like, got %d (err %v)", likes, err)
	}
	likes, err = store.IncrementLikes(ctx, post.ID, -1)
	if err != nil || likes != 0 {
		t.Fatalf("expected 0 likes, got %d (err %v)", likes, err)
	}
	// Clamp at zero
	likes, err = store.IncrementLikes(ctx, post.ID, -1)
	if err != nil || likes != 0 {
		t.Fatalf("expected clamp at 0, got %d (err %v)", likes, err)
	}

	if _, err := store.IncrementLikes(ctx, "missing-post", 1); !errors.Is(err, ErrPostNotFound) {
		t.Errorf("expected ErrPostNotFound, got %v", err)
	}
}

func TestPGStore_AppendComments(t *testing.T) {
	store := newPGStoreForTest(t)
	ctx := context.Background()

	post, _ := NewPost(alice, "discuss", "", TypeQuestion)
	if err := store.InsertPost(ctx, post); err != nil {
		t.Fatal(err)
	}
	defer store.DeletePost(ctx, post.ID)

	for _, text := range []string{"one", "two"} {
		comment, _ := NewComment(Author{ID: "user-bob", Name: "Bob"}, text)
		if err := store.AppendComment(ctx, post.ID, comment); err != nil {
			t.Fatalf("append failed: %v", err)
		}
	}

	got, err := store.GetPost(ctx, post.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Comments) != 2 || got.Comments[0].Text != "one" || got.Comments[1].Text != "two" {
		t.Errorf("comments wrong: %+v", got.Comments)
	}

	comment, _ := NewComment(alice, "nope")
	if err := store.AppendComment(ctx, "missing-post", comment); !errors.Is(err, ErrPostNotFound) {
		t.Errorf("expected ErrPostNotFound, got %v", err)
	}
}

func TestPGStore_FeedbackInterestsStats(t *testing.T) {
	store := newPGStoreForTest(t)
	ctx := context.Background()

	if err := store.InsertFeedback(ctx, &Feedback{
		UserID: alice.ID, Message: "great app", Type: "general", CreatedAt: time.Now().UTC(),
	}); err != nil {
		t.Fatalf("feedback insert failed: %v", err)
	}
	if err := store.InsertInterest(ctx, &ServiceInterest{
		UserID: alice.ID, ServiceID: "walking", CreatedAt: time.Now().UTC(),
	}); err != nil {
		t.Fatalf("interest insert failed: %v", err)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.Feedback < 1 || stats.Interests < 1 {
		t.Errorf("stats missing rows: %+v", stats)
	}
	if stats.Breakdown["walking"] < 1 {
		t.Errorf("breakdown missing walking: %v", stats.Breakdown)
	}
}
