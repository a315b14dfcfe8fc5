package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/tsurilog/fishlog-backend/internal/live"
	"github.com/tsurilog/fishlog-backend/internal/models"
	"github.com/tsurilog/fishlog-backend/internal/services"
)

type stubPostService struct {
	createUID    string
	createIn     services.PostInput
	createImages [][]byte
	created      *models.Post

	deleteUID string
	deleteID  string

	posts []*models.Post
	err   error
}

func (s *stubPostService) Create(_ context.Context, uid string, in services.PostInput, images [][]byte) (*models.Post, error) {
	s.createUID = uid
	s.createIn = in
	s.createImages = images
	return s.created, s.err
}

func (s *stubPostService) Delete(_ context.Context, uid, postID string) error {
	s.deleteUID = uid
	s.deleteID = postID
	return s.err
}

func (s *stubPostService) ListLatest(_ context.Context) ([]*models.Post, error) {
	return s.posts, s.err
}

func (s *stubPostService) watch(ctx context.Context) *live.Handle[*models.Post] {
	posts := s.posts
	return live.Open(ctx, func(ctx context.Context, deliver func([]*models.Post)) error {
		deliver(posts)
		return nil
	})
}

func (s *stubPostService) WatchAll(ctx context.Context) *live.Handle[*models.Post] {
	return s.watch(ctx)
}

func (s *stubPostService) WatchRecent(ctx context.Context) *live.Handle[*models.Post] {
	return s.watch(ctx)
}

func TestCreatePost(t *testing.T) {
	postSvc := &stubPostService{created: &models.Post{ID: "post-1"}}
	resp := &stubResponseHandler{}
	h := NewPostHandler(Deps{ResponseHandler: resp, PostSvc: postSvc})

	body, contentType := multipartBody(
		map[string]string{
			"title":    "morning seabass",
			"fishArea": "tokyo-bay",
			"length":   "62.5",
			"weight":   "2.4",
			"exifData": `[{"latitude":35.45,"longitude":139.65}]`,
		},
		[]filePart{
			{"images", []byte("first")},
			{"images", []byte("second")},
		},
	)
	req := authedRequest(http.MethodPost, "/posts", body, "uid-1")
	req.Header.Set("Content-Type", contentType)

	rr := httptest.NewRecorder()
	h.CreatePost(rr, req)

	if postSvc.createUID != "uid-1" {
		t.Fatalf("service received wrong uid: %q", postSvc.createUID)
	}
	if postSvc.createIn.Title != "morning seabass" || postSvc.createIn.FishArea != "tokyo-bay" {
		t.Fatalf("service received wrong fields: %+v", postSvc.createIn)
	}
	if postSvc.createIn.Length != 62.5 || postSvc.createIn.Weight != 2.4 {
		t.Fatalf("numeric fields not parsed: %+v", postSvc.createIn)
	}
	if len(postSvc.createIn.ExifData) != 1 || postSvc.createIn.ExifData[0].Latitude != 35.45 {
		t.Fatalf("exif data not parsed: %+v", postSvc.createIn.ExifData)
	}
	if len(postSvc.createImages) != 2 || string(postSvc.createImages[0]) != "first" {
		t.Fatalf("image parts not forwarded in order: %d parts", len(postSvc.createImages))
	}
	if !resp.writeSuccessCalled || resp.writeSuccessStatus != http.StatusCreated {
		t.Fatalf("WriteSuccess not called with status 201")
	}
}

func TestCreatePostBadNumericField(t *testing.T) {
	postSvc := &stubPostService{}
	resp := &stubResponseHandler{}
	h := NewPostHandler(Deps{ResponseHandler: resp, PostSvc: postSvc})

	body, contentType := multipartBody(
		map[string]string{"length": "not-a-number"},
		[]filePart{{"images", []byte("a")}},
	)
	req := authedRequest(http.MethodPost, "/posts", body, "uid-1")
	req.Header.Set("Content-Type", contentType)

	rr := httptest.NewRecorder()
	h.CreatePost(rr, req)

	if postSvc.createUID != "" {
		t.Fatalf("service reached despite invalid field")
	}
	if !resp.writeErrorCalled || resp.writeErrorStatus != http.StatusBadRequest {
		t.Fatalf("expected a 400 write, got %+v", resp)
	}
}

func TestDeletePost(t *testing.T) {
	postSvc := &stubPostService{}
	resp := &stubResponseHandler{}
	h := NewPostHandler(Deps{ResponseHandler: resp, PostSvc: postSvc})

	req := authedRequest(http.MethodDelete, "/posts/post-1", nil, "uid-1")
	rr := httptest.NewRecorder()

	router := chi.NewRouter()
	router.Mount("/posts", h.Routes())
	router.ServeHTTP(rr, req)

	if postSvc.deleteUID != "uid-1" || postSvc.deleteID != "post-1" {
		t.Fatalf("unexpected delete call: uid=%q id=%q", postSvc.deleteUID, postSvc.deleteID)
	}
	if !resp.writeSuccessCalled {
		t.Fatalf("WriteSuccess not called")
	}
}

func TestStreamPostsEmitsSnapshotEvent(t *testing.T) {
	postSvc := &stubPostService{posts: []*models.Post{{ID: "post-1", Title: "seabass"}}}
	resp := &stubResponseHandler{}
	h := NewPostHandler(Deps{ResponseHandler: resp, PostSvc: postSvc})

	req := authedRequest(http.MethodGet, "/posts/stream", nil, "uid-1")
	rr := httptest.NewRecorder()

	h.StreamPosts(rr, req)

	if ct := rr.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Content-Type = %q, want text/event-stream", ct)
	}
	out := rr.Body.String()
	if !strings.Contains(out, "event: snapshot\n") {
		t.Fatalf("no snapshot event in output: %q", out)
	}
	if !strings.Contains(out, `"id":"post-1"`) {
		t.Fatalf("snapshot payload missing post: %q", out)
	}
	if !rr.Flushed {
		t.Fatalf("response was never flushed")
	}
}
