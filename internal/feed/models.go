package feed

import "time"

// PostType classifies a post in the community feed
type PostType string

const (
	TypeMedia    PostType = "media"
	TypeQuestion PostType = "question"
	TypeLostPet  PostType = "lost-pet"
)

// Valid reports whether t is one of the known post types
func (t PostType) Valid() bool {
	switch t {
	case TypeMedia, TypeQuestion, TypeLostPet:
		return true
	}
	return false
}

// RequiresImage reports whether posts of this type must carry an image.
// Questions are text-first; media and lost-pet posts need a picture.
func (t PostType) RequiresImage() bool {
	return t == TypeMedia || t == TypeLostPet
}

// Comment belongs to exactly one post and is stored inside the post record
type Comment struct {
	ID           string    `json:"id"`
	AuthorID     string    `json:"author_id"`
	AuthorName   string    `json:"author_name"`
	AuthorAvatar string    `json:"author_avatar,omitempty"`
	Text         string    `json:"text"`
	CreatedAt    time.Time `json:"created_at"`
}

// Post represents a community feed post with its comments and counters.
// LikedByViewer is session-scoped state, never persisted with the post.
type Post struct {
	ID            string    `json:"id"`
	AuthorID      string    `json:"author_id"`
	AuthorName    string    `json:"author_name"`
	AuthorAvatar  string    `json:"author_avatar,omitempty"`
	Caption       string    `json:"caption"`
	ImageKey      string    `json:"image_key,omitempty"`
	Type          PostType  `json:"type"`
	Likes         int64     `json:"likes"`
	Comments      []Comment `json:"comments"`
	CreatedAt     time.Time `json:"created_at"`
	LikedByViewer bool      `json:"liked_by_viewer"`
}

// Editable reports whether the caption may still be changed. A post is
// editable only while pristine: zero likes and zero comments. The first
// interaction locks the caption for good.
func (p *Post) Editable() bool {
	return p.Likes == 0 && len(p.Comments) == 0
}

// CreatePostRequest is the request body for creating a post
type CreatePostRequest struct {
	Caption  string `json:"caption" binding:"required,max=2000"`
	ImageKey string `json:"image_key,omitempty"`
	Type     string `json:"type" binding:"required"`
}

// EditPostRequest is the request body for a caption edit
type EditPostRequest struct {
	Caption string `json:"caption" binding:"required,max=2000"`
}

// AddCommentRequest is the request body for commenting on a post
type AddCommentRequest struct {
	Text string `json:"text" binding:"required,max=1000"`
}

// FeedResponse carries the refreshed working set after a load or mutation.
// ActiveFilter tells the client which filter to show; creating a lost-pet
// alert switches it so the alert is immediately visible.
type FeedResponse struct {
	Success      bool   `json:"success"`
	Posts        []Post `json:"posts"`
	ActiveFilter string `json:"active_filter"`
}

// LikeResponse reports the optimistic like state after a toggle
type LikeResponse struct {
	Success bool   `json:"success"`
	PostID  string `json:"post_id"`
	Liked   bool   `json:"liked"`
	Likes   int64  `json:"likes"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
