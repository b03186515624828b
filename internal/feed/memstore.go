package feed

import (
	"context"
	"sort"
	"strconv"
	"sync"
)

// memStore is the mock-mode Store. It keeps everything in process memory
// behind a single mutex, which makes every operation trivially atomic —
// the same guarantees the live store gets from Postgres, minus durability.
// Also used heavily by tests.
type memStore struct {
	mu        sync.Mutex
	posts     map[string]*Post
	feedback  []Feedback
	interests []ServiceInterest
	users     int64
}

// NewMemStore creates an empty in-memory store
func NewMemStore() Store {
	return &memStore{posts: map[string]*Post{}}
}

func (s *memStore) InsertPost(ctx context.Context, post *Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *post
	clone.Comments = append([]Comment{}, post.Comments...)
	s.posts[post.ID] = &clone
	return nil
}

func (s *memStore) ListPosts(ctx context.Context) ([]Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts := make([]Post, 0, len(s.posts))
	for _, p := range s.posts {
		clone := *p
		clone.Comments = append([]Comment{}, p.Comments...)
		posts = append(posts, clone)
	}
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts, nil
}

func (s *memStore) GetPost(ctx context.Context, postID string) (*Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[postID]
	if !ok {
		return nil, ErrPostNotFound
	}
	clone := *p
	clone.Comments = append([]Comment{}, p.Comments...)
	return &clone, nil
}

func (s *memStore) UpdateCaption(ctx context.Context, postID, caption string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[postID]
	if !ok {
		return ErrPostNotFound
	}
	// Guard and write under the same lock, like the single-statement
	// conditional update in the live store.
	if p.Likes > 0 || len(p.Comments) > 0 {
		return ErrEditLocked
	}
	p.Caption = caption
	return nil
}

func (s *memStore) IncrementLikes(ctx context.Context, postID string, delta int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[postID]
	if !ok {
		return 0, ErrPostNotFound
	}
	p.Likes += delta
	if p.Likes < 0 {
		p.Likes = 0
	}
	return p.Likes, nil
}

func (s *memStore) AppendComment(ctx context.Context, postID string, comment *Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[postID]
	if !ok {
		return ErrPostNotFound
	}
	p.Comments = append(p.Comments, *comment)
	return nil
}

func (s *memStore) DeletePost(ctx context.Context, postID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[postID]; !ok {
		return ErrPostNotFound
	}
	delete(s.posts, postID)
	return nil
}

func (s *memStore) InsertFeedback(ctx context.Context, fb *Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feedback = append(s.feedback, *fb)
	return nil
}

func (s *memStore) InsertInterest(ctx context.Context, interest *ServiceInterest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interests = append(s.interests, *interest)
	return nil
}

func (s *memStore) Stats(ctx context.Context) (*Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	breakdown := map[string]int64{}
	for _, i := range s.interests {
		breakdown[i.ServiceID]++
	}
	return &Stats{
		Posts:     int64(len(s.posts)),
		Users:     s.users,
		Interests: int64(len(s.interests)),
		Feedback:  int64(len(s.feedback)),
		Breakdown: breakdown,
	}, nil
}

func (s *memStore) Health(ctx context.Context) map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return map[string]string{
		"status": "up",
		"mode":   "memory",
		"posts":  strconv.Itoa(len(s.posts)),
	}
}
