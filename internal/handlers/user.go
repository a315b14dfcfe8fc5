package handlers

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tsurilog/fishlog-backend/internal/middleware"
	"github.com/tsurilog/fishlog-backend/internal/services"
)

const maxProfileForm = 10 << 20 // 10 MiB

type userHandler struct {
	Deps
}

func NewUserHandler(deps Deps) *userHandler {
	return &userHandler{Deps: deps}
}

func (h *userHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Register)
	r.Get("/me/followed", h.ListFollowed)
	r.Get("/me/followed/stream", h.StreamFollowed)
	r.Put("/me/followed/{id}", h.Follow)
	r.Delete("/me/followed/{id}", h.Unfollow)
	r.Get("/{id}", h.GetUser)
	return r
}

// Register creates the caller's profile document from a multipart form. The
// avatar arrives as the "userImage" file part; the email comes from the
// verified token, never from the form.
func (h *userHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(maxProfileForm); err != nil {
		h.ResponseHandler.WriteError(w, r, http.StatusBadRequest, "invalid_input",
			"expected a multipart form")
		return
	}

	avatar, err := readFilePart(r, "userImage")
	if err != nil {
		h.ResponseHandler.WriteError(w, r, http.StatusBadRequest, "invalid_input",
			"a userImage file is required")
		return
	}

	in := services.ProfileInput{
		UserName:      r.FormValue("userName"),
		Profile:       r.FormValue("profile"),
		UserYoutube:   r.FormValue("userYoutube"),
		UserTiktok:    r.FormValue("userTiktok"),
		UserInstagram: r.FormValue("userInstagram"),
		UserX:         r.FormValue("userX"),
	}

	user, err := h.UserSvc.Register(ctx, middleware.UID(ctx), middleware.Email(ctx), in, avatar)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusCreated, user)
}

func (h *userHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.UserSvc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, user)
}

func (h *userHandler) ListFollowed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	users, err := h.FollowSvc.ListFollowedOf(ctx, middleware.UID(ctx))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, users)
}

func (h *userHandler) Follow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.FollowSvc.Follow(ctx, middleware.UID(ctx), chi.URLParam(r, "id")); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}

func (h *userHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.FollowSvc.Unfollow(ctx, middleware.UID(ctx), chi.URLParam(r, "id")); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}

// StreamFollowed pushes the caller's resolved followed list over SSE,
// re-delivering the full list whenever their profile document changes.
func (h *userHandler) StreamFollowed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	streamSnapshots(w, r, h.FollowSvc.WatchFollowed(ctx, middleware.UID(ctx)))
}

// readFilePart reads one named file part fully into memory.
func readFilePart(r *http.Request, name string) ([]byte, error) {
	f, _, err := r.FormFile(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
