package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/hawy/hawy-go/internal/middleware"
	"github.com/hawy/hawy-go/internal/service"
)

// NewRouter wires every API route.
func NewRouter(auth *service.AuthService, chat *service.ChatService, logger *slog.Logger) http.Handler {
	authHandler := NewAuthHandler(auth, logger)
	chatHandler := NewChatHandler(chat, logger)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", HandleHealth)
		r.Get("/knowledge", HandleKnowledge)

		r.Post("/auth/signup", authHandler.HandleSignup)
		r.Post("/auth/login", authHandler.HandleLogin)
		r.With(middleware.RequireAuth(auth)).Get("/auth/me", authHandler.HandleMe)

		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuth(auth))
			r.Post("/chat", chatHandler.HandleSendMessage)
			r.Get("/chat/history/{session_id}", chatHandler.HandleGetHistory)
			r.Delete("/chat/history/{session_id}", chatHandler.HandleClearHistory)
		})
	})

	return r
}
