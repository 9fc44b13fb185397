package apiapp

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	authsvc "github.com/kevalg4g/SoulSync-backend/internal/services/auth"
	chatsvc "github.com/kevalg4g/SoulSync-backend/internal/services/chat"
	matchessvc "github.com/kevalg4g/SoulSync-backend/internal/services/matches"
	notifsvc "github.com/kevalg4g/SoulSync-backend/internal/services/notifications"
	profilesvc "github.com/kevalg4g/SoulSync-backend/internal/services/profiles"
	swipesvc "github.com/kevalg4g/SoulSync-backend/internal/services/swipes"
	"github.com/kevalg4g/SoulSync-backend/internal/transport/http/handlers"
)

type Dependencies struct {
	AuthService         *authsvc.Service
	SwipeService        *swipesvc.Service
	MatchService        *matchessvc.Service
	ChatService         *chatsvc.Service
	NotificationService *notifsvc.Service
	ProfileService      *profilesvc.Service
	WebsocketGateway    http.Handler
	Logger              *zap.Logger
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	authHandler := handlers.NewAuthHandler(deps.AuthService)
	healthHandler := handlers.NewHealthHandler()
	swipeHandler := handlers.NewSwipeHandler(deps.SwipeService)
	matchesHandler := handlers.NewMatchesHandler(deps.MatchService)
	chatHandler := handlers.NewChatHandler(deps.ChatService)
	notificationsHandler := handlers.NewNotificationsHandler(deps.NotificationService)
	profileHandler := handlers.NewProfileHandler(deps.ProfileService)
	authMW := AuthMiddleware(deps.AuthService, deps.Logger)

	r.Get("/healthz", healthHandler.Get)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/refresh", authHandler.Refresh)
		r.With(authMW).Post("/logout", authHandler.Logout)
	})

	r.With(authMW).Post("/swipe/right", swipeHandler.Right)
	r.With(authMW).Post("/swipe/left", swipeHandler.Left)

	r.With(authMW).Get("/matches", matchesHandler.List)
	r.With(authMW).Post("/matches", matchesHandler.Create)

	r.Route("/chat", func(r chi.Router) {
		r.Use(authMW)
		r.Get("/{matchID}", chatHandler.History)
		r.Post("/{matchID}/send", chatHandler.Send)
	})

	r.With(authMW).Get("/notifications", notificationsHandler.List)
	r.With(authMW).Post("/notifications/read", notificationsHandler.MarkRead)

	r.Route("/profile", func(r chi.Router) {
		r.Use(authMW)
		r.Get("/", profileHandler.Get)
		r.Put("/", profileHandler.Update)
		r.Post("/photo", profileHandler.PhotoUpload)
		r.Get("/photos", profileHandler.PhotosList)
	})

	if deps.WebsocketGateway != nil {
		r.Handle("/ws", deps.WebsocketGateway)
	}
}
