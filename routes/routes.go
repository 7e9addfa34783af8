package routes

import (
	"net/http"

	_ "github.com/Dosada05/design-survey/docs" // swagger spec
	"github.com/Dosada05/design-survey/handlers"
	"github.com/Dosada05/design-survey/middleware"
	"github.com/Dosada05/design-survey/services"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	JWTSecret      string
	AllowedOrigins []string
	SubmitLimiter  *middleware.IPRateLimiter
	SessionLimiter *middleware.IPRateLimiter
	// TrustProxy включает chi RealIP. Без прокси X-Forwarded-For подделывается
	// клиентом и обходит лимиты.
	TrustProxy     bool
}

func SetupRoutes(
	router chi.Router,
	opts Options,
	healthHandler *handlers.HealthHandler,
	designHandler *handlers.DesignHandler,
	sessionHandler *handlers.SessionHandler,
	surveyHandler *handlers.SurveyHandler,
	authHandler *handlers.AuthHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	if opts.TrustProxy {
		router.Use(chiMiddleware.RealIP)
	}
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", healthHandler.Healthz)
	router.Get("/designs", designHandler.ListDesigns)
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	router.Route("/sessions", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if opts.SessionLimiter != nil {
				r.Use(middleware.RateLimit(opts.SessionLimiter))
			}
			r.Post("/", sessionHandler.StartSession)
		})
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", sessionHandler.GetSession)
			r.Get("/match", sessionHandler.GetActiveMatch)
			r.Post("/matches/{matchID}/winner", sessionHandler.ResolveMatch)
			r.Post("/finalize", sessionHandler.FinalizeSession)
			r.Get("/history", sessionHandler.GetHistory)
		})
	})

	router.Get("/ws/sessions/{sessionID}", webSocketHandler.ServeWs)

	router.Group(func(r chi.Router) {
		if opts.SubmitLimiter != nil {
			r.Use(middleware.RateLimit(opts.SubmitLimiter))
		}
		r.Post("/surveys", surveyHandler.SubmitSurvey)
	})

	router.Route("/admin", func(r chi.Router) {
		r.Post("/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(opts.JWTSecret))
			r.Use(middleware.RequireRole(services.RoleAdmin))

			r.Get("/surveys", surveyHandler.ListSurveys)
			r.Get("/surveys/{surveyID}", surveyHandler.GetSurvey)
		})
	})
}
