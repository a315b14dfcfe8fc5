package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/tsurilog/fishlog-backend/internal/handlers"
	"github.com/tsurilog/fishlog-backend/internal/middleware"
)

// New assembles the HTTP surface. Every route sits behind Firebase auth; the
// stream endpoints authenticate the same way as the rest.
func New(deps handlers.Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewLoggerMiddleware(deps.Log).LoggerMiddleware)
	r.Use(middleware.NewMiddleware(deps.Firebase).FirebaseAuth)

	r.Mount("/users", handlers.NewUserHandler(deps).Routes())
	r.Mount("/posts", handlers.NewPostHandler(deps).Routes())
	r.Mount("/maps", handlers.NewFishMapHandler(deps).Routes())

	return r
}
