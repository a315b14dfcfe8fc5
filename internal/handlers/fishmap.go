package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tsurilog/fishlog-backend/internal/middleware"
	"github.com/tsurilog/fishlog-backend/internal/services"
)

type fishMapHandler struct {
	Deps
}

func NewFishMapHandler(deps Deps) *fishMapHandler {
	return &fishMapHandler{Deps: deps}
}

func (h *fishMapHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.CreateFishMap)
	r.Get("/stream", h.StreamByArea)
	r.Delete("/{id}", h.DeleteFishMap)
	return r
}

type createFishMapRequest struct {
	Title     string  `json:"title"`
	Area      string  `json:"area"`
	Season    string  `json:"season"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Content   string  `json:"content"`
}

func (h *fishMapHandler) CreateFishMap(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createFishMapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.WriteError(w, r, http.StatusBadRequest, "invalid_input",
			"invalid request body")
		return
	}

	m, err := h.MapSvc.Create(ctx, middleware.UID(ctx), services.FishMapInput{
		Title:     req.Title,
		Area:      req.Area,
		Season:    req.Season,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Content:   req.Content,
	})
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusCreated, m)
}

func (h *fishMapHandler) DeleteFishMap(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.MapSvc.Delete(ctx, middleware.UID(ctx), chi.URLParam(r, "id")); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}

// StreamByArea pushes the spots for one area, oldest first, over SSE.
func (h *fishMapHandler) StreamByArea(w http.ResponseWriter, r *http.Request) {
	handle, err := h.MapSvc.WatchByArea(r.Context(), r.URL.Query().Get("area"))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	streamSnapshots(w, r, handle)
}
