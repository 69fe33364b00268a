package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/utafrali/ContactsGo/internal/service"
	"github.com/utafrali/ContactsGo/pkg/health"
	"github.com/utafrali/ContactsGo/pkg/middleware"
)

// NewRouter creates a chi router with all contacts service routes registered.
func NewRouter(
	authService *service.AuthService,
	userService *service.UserService,
	contactService *service.ContactService,
	redisClient *redis.Client,
	healthHandler *health.Handler,
	logger *slog.Logger,
	corsConfig middleware.CORSConfig,
	rateLimitConfig middleware.RateLimitConfig,
	pprofCIDRs []string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(corsConfig))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Tracing("contacts"))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.PrometheusMetrics("contacts"))

	// Health check and metrics endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	middleware.RegisterPprof(r, pprofCIDRs, logger)

	// Token validator that bridges to the auth service. Resolving through
	// the service rejects tokens for accounts that no longer exist.
	tokenValidator := func(ctx context.Context, token string) (*middleware.Claims, error) {
		user, err := authService.Resolve(ctx, token)
		if err != nil {
			return nil, err
		}
		return &middleware.Claims{
			UserID: user.ID,
			Email:  user.Email,
		}, nil
	}

	rateLimit := middleware.RateLimit(redisClient, rateLimitConfig, logger)

	authHandler := NewAuthHandler(authService)
	r.Route("/api/auth", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(rateLimit)

		r.Post("/signup", authHandler.Signup)
		r.Post("/login", authHandler.Login)
		r.Get("/refresh_token", authHandler.RefreshToken)
		r.Get("/confirmed_email/{token}", authHandler.ConfirmEmail)
		r.Post("/request_email", authHandler.RequestEmail)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(tokenValidator))
			r.Post("/logout", authHandler.Logout)
		})
	})

	// Contact endpoints (auth required). Auth runs before the rate limiter
	// so quotas are tracked per user rather than per client IP.
	contactHandler := NewContactHandler(contactService)
	r.Route("/api/contacts", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(middleware.Auth(tokenValidator))
		r.Use(rateLimit)

		r.Get("/all", contactHandler.List)
		r.Get("/birthday", contactHandler.UpcomingBirthdays)
		r.Get("/search/{query}", contactHandler.Search)
		r.Post("/", contactHandler.Create)
		r.Get("/{id}", contactHandler.Get)
		r.Put("/{id}", contactHandler.Update)
		r.Delete("/{id}", contactHandler.Delete)
	})

	// User profile endpoints (auth required). No JSON enforcement here:
	// the avatar upload is multipart/form-data.
	userHandler := NewUserHandler(userService)
	r.Route("/api/users", func(r chi.Router) {
		r.Use(middleware.Auth(tokenValidator))
		r.Use(rateLimit)

		r.Get("/me", userHandler.GetMe)
		r.Patch("/avatar", userHandler.UpdateAvatar)
	})

	return r
}
