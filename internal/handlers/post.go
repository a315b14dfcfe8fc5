package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/tsurilog/fishlog-backend/internal/middleware"
	"github.com/tsurilog/fishlog-backend/internal/models"
	"github.com/tsurilog/fishlog-backend/internal/services"
	"github.com/tsurilog/fishlog-backend/pkg/logger"
)

const maxPostForm = 32 << 20 // 32 MiB, three images plus fields

var feedUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

func readAllAndClose(rc io.ReadCloser) ([]byte, error) {
	defer rc.Close()
	return io.ReadAll(rc)
}

type postHandler struct {
	Deps
}

func NewPostHandler(deps Deps) *postHandler {
	return &postHandler{Deps: deps}
}

func (h *postHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.CreatePost)
	r.Get("/", h.ListPosts)
	r.Get("/stream", h.StreamPosts)
	r.Get("/map/stream", h.StreamMapPosts)
	r.Get("/feed", h.Feed)
	r.Delete("/{id}", h.DeletePost)
	return r
}

// CreatePost accepts a multipart form: the catch fields plus one to three
// "images" file parts. The optional "exifData" field is a JSON array aligned
// with the images by index.
func (h *postHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(maxPostForm); err != nil {
		h.ResponseHandler.WriteError(w, r, http.StatusBadRequest, "invalid_input",
			"expected a multipart form")
		return
	}

	in, err := parsePostInput(r)
	if err != nil {
		h.ResponseHandler.WriteError(w, r, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}

	var images [][]byte
	if r.MultipartForm != nil {
		for _, fh := range r.MultipartForm.File["images"] {
			f, err := fh.Open()
			if err != nil {
				h.ResponseHandler.WriteError(w, r, http.StatusBadRequest, "invalid_input",
					"unreadable image part")
				return
			}
			data, err := readAllAndClose(f)
			if err != nil {
				h.ResponseHandler.WriteError(w, r, http.StatusBadRequest, "invalid_input",
					"unreadable image part")
				return
			}
			images = append(images, data)
		}
	}

	post, err := h.PostSvc.Create(ctx, middleware.UID(ctx), in, images)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusCreated, post)
}

func (h *postHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.PostSvc.ListLatest(r.Context())
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, posts)
}

func (h *postHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.PostSvc.Delete(ctx, middleware.UID(ctx), chi.URLParam(r, "id")); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}

// StreamPosts pushes every post, newest first, over SSE.
func (h *postHandler) StreamPosts(w http.ResponseWriter, r *http.Request) {
	streamSnapshots(w, r, h.PostSvc.WatchAll(r.Context()))
}

// StreamMapPosts pushes the last month of posts for the map screen over SSE.
func (h *postHandler) StreamMapPosts(w http.ResponseWriter, r *http.Request) {
	streamSnapshots(w, r, h.PostSvc.WatchRecent(r.Context()))
}

func parsePostInput(r *http.Request) (services.PostInput, error) {
	in := services.PostInput{
		Title:     r.FormValue("title"),
		Content:   r.FormValue("content"),
		Weather:   r.FormValue("weather"),
		Lure:      r.FormValue("lure"),
		LureColor: r.FormValue("lureColor"),
		Area:      r.FormValue("area"),
		FishArea:  r.FormValue("fishArea"),
	}

	var err error
	if in.Length, err = formFloat(r, "length"); err != nil {
		return in, err
	}
	if in.Weight, err = formFloat(r, "weight"); err != nil {
		return in, err
	}
	if in.CatchFish, err = formInt(r, "catchFish"); err != nil {
		return in, err
	}

	if raw := r.FormValue("exifData"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &in.ExifData); err != nil {
			return in, &fieldError{"exifData must be a JSON array"}
		}
	}
	return in, nil
}

func formFloat(r *http.Request, name string) (float64, error) {
	raw := r.FormValue(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &fieldError{name + " must be a number"}
	}
	return v, nil
}

func formInt(r *http.Request, name string) (int, error) {
	raw := r.FormValue(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &fieldError{name + " must be an integer"}
	}
	return v, nil
}

type fieldError struct {
	msg string
}

func (e *fieldError) Error() string { return e.msg }

// feedRequest is one client message on the feed socket, selecting a view and
// area. Each message replaces the previous subscription.
type feedRequest struct {
	View string `json:"view"`
	Area string `json:"area"`
}

type feedEvent struct {
	Type  string         `json:"type"`
	Posts []*models.Post `json:"posts,omitempty"`
	Code  string         `json:"code,omitempty"`
}

// Feed serves the switchable region-tab feed over a websocket. The client
// sends {"view": "latest"|"largest", "area": "..."} messages; the server
// replies with full snapshots for the most recent selection only.
func (h *postHandler) Feed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	conn, err := feedUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("feed upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	feed := h.NewFeed()
	defer feed.Close()

	// The reader owns the connection's inbound side and drives Switch; its
	// exit (client gone) unblocks the writer below. The select loop is the
	// connection's only writer, so Switch failures are handed over on a
	// channel rather than written here.
	readerDone := make(chan struct{})
	switchFailed := make(chan struct{}, 1)
	go func() {
		defer close(readerDone)
		for {
			var req feedRequest
			if err := conn.ReadJSON(&req); err != nil {
				return
			}
			if err := feed.Switch(ctx, req.View, req.Area); err != nil {
				select {
				case switchFailed <- struct{}{}:
				default:
				}
			}
		}
	}()

	for {
		select {
		case <-readerDone:
			return
		case <-ctx.Done():
			return

		case <-switchFailed:
			if err := conn.WriteJSON(feedEvent{Type: "error", Code: "invalid_input"}); err != nil {
				return
			}

		case posts := <-feed.Updates():
			if err := conn.WriteJSON(feedEvent{Type: "snapshot", Posts: posts}); err != nil {
				return
			}

		case err := <-feed.Errs():
			log.Error("feed subscription failed", "error", err)
			if werr := conn.WriteJSON(feedEvent{Type: "error", Code: "subscription_failed"}); werr != nil {
				log.Warn("feed error frame not delivered", "error", werr)
			}
			return
		}
	}
}
