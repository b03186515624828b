package feed

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	server := &Server{service: newTestService(NewMemStore(), &stubPublisher{})}
	return server.RegisterRoutes()
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}, viewer *Author) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if viewer != nil {
		req.Header.Set("X-User-ID", viewer.ID)
		req.Header.Set("X-User-Name", viewer.Name)
		req.Header.Set("X-User-Avatar", viewer.Avatar)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func createPost(t *testing.T, router http.Handler, caption, postType, imageKey string) string {
	t.Helper()

	w := doJSON(t, router, http.MethodPost, "/posts", CreatePostRequest{
		Caption:  caption,
		ImageKey: imageKey,
		Type:     postType,
	}, &alice)
	if w.Code != http.StatusCreated {
		t.Fatalf("create post: expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp FeedResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	return resp.Posts[0].ID
}

func TestListPosts_AnonymousOK(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/posts", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp FeedResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Success {
		t.Error("expected success=true")
	}
	if resp.Posts == nil {
		t.Error("posts must be an empty array, not null")
	}
	if resp.ActiveFilter != FilterAll {
		t.Errorf("expected active filter %q, got %q", FilterAll, resp.ActiveFilter)
	}
}

func TestListPosts_TypeFilter(t *testing.T) {
	router := newTestRouter(t)

	createPost(t, router, "a question", "question", "")
	createPost(t, router, "a photo", "media", "photos/1.jpg")

	w := doJSON(t, router, http.MethodGet, "/posts?type=question", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp FeedResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Posts) != 1 || resp.Posts[0].Caption != "a question" {
		t.Errorf("filter did not apply: %+v", resp.Posts)
	}
	if resp.ActiveFilter != "question" {
		t.Errorf("expected active filter question, got %q", resp.ActiveFilter)
	}
}

func TestCreatePost_RequiresAuth(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/posts", CreatePostRequest{
		Caption: "hello", Type: "question",
	}, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestCreatePost_LostPetResponse(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/posts", CreatePostRequest{
		Caption:  "Rex is missing near the park",
		ImageKey: "photos/rex.jpg",
		Type:     "lost-pet",
	}, &alice)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp FeedResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.ActiveFilter != "lost-pet" {
		t.Errorf("expected active filter lost-pet, got %q", resp.ActiveFilter)
	}
}

func TestCreatePost_ValidationErrors(t *testing.T) {
	router := newTestRouter(t)

	// Media without an image
	w := doJSON(t, router, http.MethodPost, "/posts", CreatePostRequest{
		Caption: "no photo", Type: "media",
	}, &alice)
	if w.Code != http.StatusBadRequest {
		t.Errorf("media without image: expected 400, got %d", w.Code)
	}

	// Unknown type
	w = doJSON(t, router, http.MethodPost, "/posts", CreatePostRequest{
		Caption: "hello", Type: "story",
	}, &alice)
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown type: expected 400, got %d", w.Code)
	}
}

func TestEditPost_HTTPGuard(t *testing.T) {
	router := newTestRouter(t)
	postID := createPost(t, router, "original", "question", "")

	// A foreign like locks the edit
	w := doJSON(t, router, http.MethodPost, fmt.Sprintf("/posts/%s/like", postID), nil, &Author{ID: "user-bob"})
	if w.Code != http.StatusOK {
		t.Fatalf("like failed: %d", w.Code)
	}

	w = doJSON(t, router, http.MethodPatch, "/posts/"+postID, EditPostRequest{Caption: "changed"}, &alice)
	if w.Code != http.StatusForbidden {
		t.Errorf("locked edit: expected 403, got %d: %s", w.Code, w.Body.String())
	}

	// Someone else cannot edit at all
	w = doJSON(t, router, http.MethodPatch, "/posts/"+postID, EditPostRequest{Caption: "hijack"}, &Author{ID: "user-mallory"})
	if w.Code != http.StatusForbidden {
		t.Errorf("foreign edit: expected 403, got %d", w.Code)
	}
}

func TestEditPost_NotFound(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPatch, "/posts/nope", EditPostRequest{Caption: "x"}, &alice)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestToggleLike_HTTPRoundTrip(t *testing.T) {
	router := newTestRouter(t)
	postID := createPost(t, router, "like me", "question", "")
	bob := Author{ID: "user-bob"}

	w := doJSON(t, router, http.MethodPost, fmt.Sprintf("/posts/%s/like", postID), nil, &bob)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp LikeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Liked || resp.Likes != 1 {
		t.Errorf("expected liked=true likes=1, got %+v", resp)
	}

	w = doJSON(t, router, http.MethodPost, fmt.Sprintf("/posts/%s/like", postID), nil, &bob)
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Liked || resp.Likes != 0 {
		t.Errorf("expected liked=false likes=0, got %+v", resp)
	}
}

func TestAddComment_HTTP(t *testing.T) {
	router := newTestRouter(t)
	postID := createPost(t, router, "talk to me", "question", "")

	w := doJSON(t, router, http.MethodPost, fmt.Sprintf("/posts/%s/comments", postID),
		AddCommentRequest{Text: "hello there"}, &Author{ID: "user-bob", Name: "Bob"})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp FeedResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Posts[0].Comments) != 1 || resp.Posts[0].Comments[0].Text != "hello there" {
		t.Errorf("comment missing from refreshed feed: %+v", resp.Posts[0].Comments)
	}

	// Anonymous comments are rejected at the route, not silently dropped
	w = doJSON(t, router, http.MethodPost, fmt.Sprintf("/posts/%s/comments", postID),
		AddCommentRequest{Text: "sneaky"}, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous comment: expected 401, got %d", w.Code)
	}
}

func TestDeletePost_HTTP(t *testing.T) {
	router := newTestRouter(t)
	postID := createPost(t, router, "short lived", "question", "")

	w := doJSON(t, router, http.MethodDelete, "/posts/"+postID, nil, &Author{ID: "user-bob"})
	if w.Code != http.StatusForbidden {
		t.Errorf("foreign delete: expected 403, got %d", w.Code)
	}

	w = doJSON(t, router, http.MethodDelete, "/posts/"+postID, nil, &alice)
	if w.Code != http.StatusOK {
		t.Fatalf("author delete: expected 200, got %d", w.Code)
	}

	var resp FeedResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Posts) != 0 {
		t.Errorf("expected empty feed after delete, got %d", len(resp.Posts))
	}
}

func TestFeedbackAndInterests_HTTP(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/feedback",
		SubmitFeedbackRequest{Message: "more cat content please", Type: "feature"}, &alice)
	if w.Code != http.StatusCreated {
		t.Errorf("feedback: expected 201, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodPost, "/interests",
		SaveInterestRequest{ServiceID: "grooming"}, &alice)
	if w.Code != http.StatusCreated {
		t.Errorf("interest: expected 201, got %d", w.Code)
	}

	w = doJSON(t, router, http.MethodGet, "/admin/stats", nil, &alice)
	if w.Code != http.StatusOK {
		t.Fatalf("stats: expected 200, got %d", w.Code)
	}
	var resp struct {
		Success bool  `json:"success"`
		Data    Stats `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Data.Feedback != 1 || resp.Data.Interests != 1 {
		t.Errorf("unexpected stats: %+v", resp.Data)
	}
}

func TestHealth_HTTP(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/health", nil, nil)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}
