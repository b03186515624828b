package feed

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrEmptyCaption is returned when a post caption is empty after trimming
	ErrEmptyCaption = errors.New("caption cannot be empty")
	// ErrEmptyComment is returned when a comment is empty after trimming
	ErrEmptyComment = errors.New("comment text cannot be empty")
	// ErrEmptyMessage is returned when a feedback message is empty
	ErrEmptyMessage = errors.New("message cannot be empty")
	// ErrEmptyServiceID is returned when an interest names no service
	ErrEmptyServiceID = errors.New("service id cannot be empty")
	// ErrInvalidType is returned for an unknown post type
	ErrInvalidType = errors.New("unknown post type")
	// ErrImageRequired is returned when a media or lost-pet post has no image
	ErrImageRequired = errors.New("an image is required for this post type")
	// ErrNotAuthenticated is returned when a mutation is attempted without a viewer
	ErrNotAuthenticated = errors.New("authentication required")
	// ErrNotAuthor is returned when someone other than the author tries to delete
	ErrNotAuthor = errors.New("only the author can do this")
	// ErrEditLocked is returned when editing a post that has likes or comments
	ErrEditLocked = errors.New("cannot edit posts that have likes or comments")
	// ErrPostNotFound is returned when the target post does not exist
	ErrPostNotFound = errors.New("post not found")
)

// Author identifies the acting viewer for a mutation
type Author struct {
	ID     string
	Name   string
	Avatar string
}

// NewPost builds a pristine post from a creation intent. The image
// requirement is enforced here, before anything reaches the store: the
// store itself does not care whether a record carries an image.
func NewPost(author Author, caption, imageKey string, postType PostType) (*Post, error) {
	if author.ID == "" {
		return nil, ErrNotAuthenticated
	}
	if !postType.Valid() {
		return nil, ErrInvalidType
	}
	caption = strings.TrimSpace(caption)
	if caption == "" {
		return nil, ErrEmptyCaption
	}
	if imageKey == "" && postType.RequiresImage() {
		return nil, ErrImageRequired
	}

	return &Post{
		ID:           uuid.New().String(),
		AuthorID:     author.ID,
		AuthorName:   author.Name,
		AuthorAvatar: author.Avatar,
		Caption:      caption,
		ImageKey:     imageKey,
		Type:         postType,
		Likes:        0,
		Comments:     []Comment{},
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// NewComment builds a comment for appending to a post's comment collection
func NewComment(author Author, text string) (*Comment, error) {
	if author.ID == "" {
		return nil, ErrNotAuthenticated
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyComment
	}

	return &Comment{
		ID:           uuid.New().String(),
		AuthorID:     author.ID,
		AuthorName:   author.Name,
		AuthorAvatar: author.Avatar,
		Text:         text,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// RequestEdit validates a caption edit against the in-memory snapshot.
// The store re-checks the same invariant against the persisted counters
// in a single conditional update, so a stale snapshot cannot bypass the
// lock; this check only gives a fast answer for the common case.
func (p *Post) RequestEdit(requesterID, newCaption string) (string, error) {
	if requesterID == "" {
		return "", ErrNotAuthenticated
	}
	if requesterID != p.AuthorID {
		return "", ErrNotAuthor
	}
	newCaption = strings.TrimSpace(newCaption)
	if newCaption == "" {
		return "", ErrEmptyCaption
	}
	if !p.Editable() {
		return "", ErrEditLocked
	}
	return newCaption, nil
}

// RequestDelete validates a delete intent. Deleting is allowed in any
// state, locked or pristine, but only for the author.
func (p *Post) RequestDelete(requesterID string) error {
	if requesterID == "" {
		return ErrNotAuthenticated
	}
	if requesterID != p.AuthorID {
		return ErrNotAuthor
	}
	return nil
}
