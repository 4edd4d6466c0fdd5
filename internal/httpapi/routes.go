package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"

	"github.com/DoyleJ11/quiz-night-backend/internal/ws"
)

func SetupRoutes(d Deps) http.Handler {
	r := chi.NewRouter()

	origins := d.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedOrigins: origins,
		AllowedHeaders: []string{"*"},
	}).Handler)

	// Public routes
	r.Get("/healthz", Healthz)
	r.Get("/display", DisplayPage(d.Hub))

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", CreateSession(d))
		r.Get("/", ListSessions(d.Hub))
		r.Delete("/{code}", DeleteSession(d.Hub))
		r.Get("/{code}/qr.png", SessionQR(d))
	})

	r.Route("/games", func(r chi.Router) {
		r.Post("/", SaveGame(d))
		r.Get("/", ListGames(d))
		r.Get("/{id}", GetGame(d))
		r.Delete("/{id}", DeleteGame(d))
	})

	wsOpts := ws.Options{OriginPatterns: d.AllowedOrigins, Logger: d.Logger}
	r.Get("/ws/host", ws.HostHandler(d.Hub, wsOpts))
	r.Get("/ws/display", ws.DisplayHandler(d.Hub, wsOpts))
	return r
}
