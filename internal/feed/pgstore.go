package feed

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"petplaza/internal/database"
)

// pgStore is the live Store implementation backed by Postgres. Posts are
// kept document-style: one row per post with the comment collection in a
// JSONB column, so a comment append and a like increment are both single
// atomic statements on the post row.
type pgStore struct {
	db database.Service
}

const feedSchema = `
CREATE TABLE IF NOT EXISTS posts (
	post_id       TEXT PRIMARY KEY,
	author_id     TEXT NOT NULL,
	author_name   TEXT NOT NULL,
	author_avatar TEXT NOT NULL DEFAULT '',
	caption       TEXT NOT NULL,
	image_key     TEXT NOT NULL DEFAULT '',
	post_type     TEXT NOT NULL,
	likes         BIGINT NOT NULL DEFAULT 0 CHECK (likes >= 0),
	comments      JSONB NOT NULL DEFAULT '[]'::jsonb,
	created_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts (created_at DESC);

CREATE TABLE IF NOT EXISTS feedback (
	id         BIGSERIAL PRIMARY KEY,
	user_id    TEXT NOT NULL,
	message    TEXT NOT NULL,
	fb_type    TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS service_interests (
	id         BIGSERIAL PRIMARY KEY,
	user_id    TEXT NOT NULL,
	service_id TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
`

// NewPGStore creates the Postgres-backed store and ensures the schema exists
func NewPGStore(ctx context.Context, db database.Service) (Store, error) {
	s := &pgStore{db: db}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := db.Exec(ctx, feedSchema); err != nil {
		return nil, fmt.Errorf("failed to ensure feed schema: %w", err)
	}

	return s, nil
}

func (s *pgStore) InsertPost(ctx context.Context, post *Post) error {
	commentsJSON, err := json.Marshal(post.Comments)
	if err != nil {
		return fmt.Errorf("failed to marshal comments: %w", err)
	}

	const q = `
		INSERT INTO posts (post_id, author_id, author_name, author_avatar, caption, image_key, post_type, likes, comments, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = s.db.Exec(ctx, q,
		post.ID, post.AuthorID, post.AuthorName, post.AuthorAvatar,
		post.Caption, post.ImageKey, string(post.Type), post.Likes,
		commentsJSON, post.CreatedAt,
	)
	if err != nil {
		log.Printf("Error inserting post: %v", err)
		return fmt.Errorf("failed to insert post: %w", err)
	}
	return nil
}

func (s *pgStore) ListPosts(ctx context.Context) ([]Post, error) {
	const q = `
		SELECT post_id, author_id, author_name, author_avatar, caption, image_key, post_type, likes, comments, created_at
		FROM posts
		ORDER BY created_at DESC
	`
	rows, err := s.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer rows.Close()

	posts := []Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate posts: %w", err)
	}
	return posts, nil
}

func (s *pgStore) GetPost(ctx context.Context, postID string) (*Post, error) {
	const q = `
		SELECT post_id, author_id, author_name, author_avatar, caption, image_key, post_type, likes, comments, created_at
		FROM posts
		WHERE post_id = $1
	`
	row := s.db.QueryRow(ctx, q, postID)
	post, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return post, nil
}

// UpdateCaption performs the pristine guard and the write in one statement.
// The WHERE clause re-checks the persisted counters, so a like or comment
// that lands between the caller's read and this write makes the update
// match zero rows instead of slipping past the lock.
func (s *pgStore) UpdateCaption(ctx context.Context, postID, caption string) error {
	const q = `
		UPDATE posts
		SET caption = $2
		WHERE post_id = $1 AND likes = 0 AND jsonb_array_length(comments) = 0
	`
	res, err := s.db.Exec(ctx, q, postID, caption)
	if err != nil {
		return fmt.Errorf("failed to update caption: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	// Zero rows: either the post is gone or it is locked
	if _, err := s.GetPost(ctx, postID); err != nil {
		return err
	}
	return ErrEditLocked
}

func (s *pgStore) IncrementLikes(ctx context.Context, postID string, delta int64) (int64, error) {
	const q = `
		UPDATE posts
		SET likes = GREATEST(likes + $2, 0)
		WHERE post_id = $1
		RETURNING likes
	`
	var likes int64
	err := s.db.QueryRow(ctx, q, postID, delta).Scan(&likes)
	if err == sql.ErrNoRows {
		return 0, ErrPostNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to update likes: %w", err)
	}
	return likes, nil
}

func (s *pgStore) AppendComment(ctx context.Context, postID string, comment *Comment) error {
	commentJSON, err := json.Marshal(comment)
	if err != nil {
		return fmt.Errorf("failed to marshal comment: %w", err)
	}

	const q = `
		UPDATE posts
		SET comments = comments || $2::jsonb
		WHERE post_id = $1
	`
	res, err := s.db.Exec(ctx, q, postID, commentJSON)
	if err != nil {
		return fmt.Errorf("failed to append comment: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrPostNotFound
	}
	return nil
}

func (s *pgStore) DeletePost(ctx context.Context, postID string) error {
	const q = `DELETE FROM posts WHERE post_id = $1`
	res, err := s.db.Exec(ctx, q, postID)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrPostNotFound
	}
	return nil
}

func (s *pgStore) InsertFeedback(ctx context.Context, fb *Feedback) error {
	const q = `INSERT INTO feedback (user_id, message, fb_type, created_at) VALUES ($1, $2, $3, $4)`
	if _, err := s.db.Exec(ctx, q, fb.UserID, fb.Message, fb.Type, fb.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert feedback: %w", err)
	}
	return nil
}

func (s *pgStore) InsertInterest(ctx context.Context, interest *ServiceInterest) error {
	const q = `INSERT INTO service_interests (user_id, service_id, created_at) VALUES ($1, $2, $3)`
	if _, err := s.db.Exec(ctx, q, interest.UserID, interest.ServiceID, interest.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert interest: %w", err)
	}
	return nil
}

func (s *pgStore) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{Breakdown: map[string]int64{}}

	counts := []struct {
		query string
		dest  *int64
	}{
		{`SELECT COUNT(*) FROM posts`, &stats.Posts},
		{`SELECT COUNT(*) FROM service_interests`, &stats.Interests},
		{`SELECT COUNT(*) FROM feedback`, &stats.Feedback},
	}
	for _, c := range counts {
		if err := s.db.QueryRow(ctx, c.query).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("failed to count: %w", err)
		}
	}

	// The users table belongs to the auth service and may not exist yet
	// in this database.
	var usersTable sql.NullString
	if err := s.db.QueryRow(ctx, `SELECT to_regclass('users')::text`).Scan(&usersTable); err != nil {
		return nil, fmt.Errorf("failed to probe users table: %w", err)
	}
	if usersTable.Valid {
		if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&stats.Users); err != nil {
			return nil, fmt.Errorf("failed to count users: %w", err)
		}
	}

	const q = `SELECT service_id, COUNT(*) FROM service_interests GROUP BY service_id`
	rows, err := s.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to query interest breakdown: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var serviceID string
		var count int64
		if err := rows.Scan(&serviceID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan breakdown row: %w", err)
		}
		stats.Breakdown[serviceID] = count
	}
	return stats, rows.Err()
}

func (s *pgStore) Health(ctx context.Context) map[string]string {
	return s.db.Health(ctx)
}

// scanner covers both *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanPost(sc scanner) (*Post, error) {
	var post Post
	var postType string
	var commentsJSON []byte

	err := sc.Scan(
		&post.ID, &post.AuthorID, &post.AuthorName, &post.AuthorAvatar,
		&post.Caption, &post.ImageKey, &postType, &post.Likes,
		&commentsJSON, &post.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	post.Type = PostType(postType)
	post.Comments = []Comment{}
	if len(commentsJSON) > 0 {
		if err := json.Unmarshal(commentsJSON, &post.Comments); err != nil {
			return nil, fmt.Errorf("failed to decode comments: %w", err)
		}
	}
	return &post, nil
}
