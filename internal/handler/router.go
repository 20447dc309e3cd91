package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/devchat-app/devchat/backend/internal/handler/persona"
	"github.com/devchat-app/devchat/backend/internal/handler/session"
	"github.com/devchat-app/devchat/backend/internal/handler/stream"
	"github.com/devchat-app/devchat/backend/internal/handler/ws"
	middlewarePkg "github.com/devchat-app/devchat/backend/internal/middleware"
	personaModel "github.com/devchat-app/devchat/backend/internal/model/persona"
	chatservice "github.com/devchat-app/devchat/backend/internal/service/chat"
)

// NewRouter wires HTTP routes to the controller and persona registry.
func NewRouter(personas personaModel.Store, controller *chatservice.Controller) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.RequestLogger)
	r.Use(middlewarePkg.CORS)

	personaHandler := persona.New(personas)
	sessionHandler := session.New(controller)
	streamHandler := stream.New(controller)
	wsHandler := ws.New(controller)

	r.Route("/api", func(api chi.Router) {
		personaHandler.RegisterRoutes(api)
		sessionHandler.RegisterRoutes(api)
		streamHandler.RegisterRoutes(api)
		wsHandler.RegisterRoutes(api)
	})

	return r
}
