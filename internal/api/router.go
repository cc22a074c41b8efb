package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/isdelr/socialfeed-be/internal/api/handlers"
	"github.com/isdelr/socialfeed-be/internal/auth"
	"github.com/isdelr/socialfeed-be/internal/services"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(userService services.UserServiceProvider, postService services.PostServiceProvider, eventService services.EventServiceProvider, mediaRoot string) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration for development
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173"}, // Adjust for your frontend URL
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, eventService)
	postHandler := handlers.NewPostHandler(postService)
	eventHandler := handlers.NewEventHandler(eventService)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})

		// Public auth endpoints
		r.Post("/auth/login/", authHandler.Login)
		r.Post("/auth/register/", authHandler.Register)

		// Everything below requires a valid token
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(userService))

			r.Get("/auth/me/", authHandler.Me)

			r.Get("/posts/", postHandler.List)
			r.Post("/posts/", postHandler.Create)
			r.Delete("/posts/{id}/", postHandler.Delete)

			r.Get("/events/", eventHandler.GetRecent)
		})
	})

	// Uploaded media blobs
	fs := http.FileServer(http.Dir(mediaRoot))
	r.Handle("/media/*", http.StripPrefix("/media/", fs))

	return r
}
