package feed

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"petplaza/internal/assistant"
)

// Handler handles HTTP requests for the feed service
type Handler struct {
	service   *Service
	assistant assistant.Client
}

// NewHandler creates a new feed handler. The assistant client may be nil
// when no model API key is configured.
func NewHandler(service *Service, ai assistant.Client) *Handler {
	return &Handler{service: service, assistant: ai}
}

// ListPosts handles GET /posts?type=all|media|question|lost-pet
func (h *Handler) ListPosts(c *gin.Context) {
	viewer := GetViewer(c)

	posts := h.service.Load(c.Request.Context(), viewer.ID)

	filter := c.DefaultQuery("type", FilterAll)
	c.JSON(http.StatusOK, FeedResponse{
		Success:      true,
		Posts:        Filter(posts, filter),
		ActiveFilter: filter,
	})
}

// CreatePost handles POST /posts
func (h *Handler) CreatePost(c *gin.Context) {
	viewer := GetViewer(c)

	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Success: false,
			Error:   "invalid request body: " + err.Error(),
		})
		return
	}

	posts, activeFilter, err := h.service.Create(c.Request.Context(), viewer, req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, FeedResponse{
		Success:      true,
		Posts:        posts,
		ActiveFilter: activeFilter,
	})
}

// EditPost handles PATCH /posts/:id
func (h *Handler) EditPost(c *gin.Context) {
	viewer := GetViewer(c)
	postID := c.Param("id")

	var req EditPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Success: false,
			Error:   "invalid request body: " + err.Error(),
		})
		return
	}

	posts, err := h.service.Edit(c.Request.Context(), viewer, postID, req.Caption)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, FeedResponse{
		Success:      true,
		Posts:        posts,
		ActiveFilter: FilterAll,
	})
}

// DeletePost handles DELETE /posts/:id
func (h *Handler) DeletePost(c *gin.Context) {
	viewer := GetViewer(c)
	postID := c.Param("id")

	posts, err := h.service.Delete(c.Request.Context(), viewer, postID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, FeedResponse{
		Success:      true,
		Posts:        posts,
		ActiveFilter: FilterAll,
	})
}

// ToggleLike handles POST /posts/:id/like
func (h *Handler) ToggleLike(c *gin.Context) {
	viewer := GetViewer(c)
	postID := c.Param("id")

	liked, likes, err := h.service.ToggleLike(c.Request.Context(), viewer, postID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, LikeResponse{
		Success: true,
		PostID:  postID,
		Liked:   liked,
		Likes:   likes,
	})
}

// AddComment handles POST /posts/:id/comments
func (h *Handler) AddComment(c *gin.Context) {
	viewer := GetViewer(c)
	postID := c.Param("id")

	var req AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Success: false,
			Error:   "invalid request body: " + err.Error(),
		})
		return
	}

	posts, err := h.service.Comment(c.Request.Context(), viewer, postID, req.Text)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, FeedResponse{
		Success:      true,
		Posts:        posts,
		ActiveFilter: FilterAll,
	})
}

// Health handles GET /health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "feed-service",
		"store":   h.service.store.Health(c.Request.Context()),
	})
}

// writeError maps domain errors to HTTP responses. Validation errors are
// 400, missing authentication 401, authorization and the edit lock 403,
// missing posts 404; anything else is a transient failure the caller may
// retry.
func (h *Handler) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, ErrEmptyCaption),
		errors.Is(err, ErrEmptyComment),
		errors.Is(err, ErrEmptyMessage),
		errors.Is(err, ErrEmptyServiceID),
		errors.Is(err, ErrInvalidType),
		errors.Is(err, ErrImageRequired):
		status = http.StatusBadRequest
	case errors.Is(err, ErrNotAuthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, ErrNotAuthor), errors.Is(err, ErrEditLocked):
		status = http.StatusForbidden
	case errors.Is(err, ErrPostNotFound):
		status = http.StatusNotFound
	}

	c.JSON(status, ErrorResponse{Success: false, Error: err.Error()})
}
