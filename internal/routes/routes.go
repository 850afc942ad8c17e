package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/dtt-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/dtt-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/dtt-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/dtt-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/dtt-backend/internal/session"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	sessions *session.Manager,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	healthHandler *handlers.HealthHandler,
	legalHandler *handlers.LegalHandler,
) {
	app.Get("/", healthHandler.Root)
	if cfg.MetricsEnabled {
		app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
	}

	api := app.Group("/api")

	// General API rate limiter: 120 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               120,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)
	api.Get("/legal/privacy", legalHandler.PrivacyPolicy)
	api.Get("/legal/terms", legalHandler.TermsOfService)

	// Auth: 30 req/min per IP
	auth := api.Group("/auth", limiter.New(limiter.Config{
		Max:               30,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}), middleware.LoadSession(sessions))
	auth.Get("/tiktok", authHandler.TikTokLogin)
	auth.Get("/tiktok/callback", authHandler.TikTokCallback)
	auth.Post("/tiktok/manual", authHandler.TikTokManual)
	auth.Get("/discord", authHandler.DiscordLogin)
	auth.Get("/discord/callback", authHandler.DiscordCallback)
	auth.Post("/logout", authHandler.Logout)
	auth.Get("/session", authHandler.Session)

	// Signed-in user
	user := api.Group("/user", middleware.LoadSession(sessions), middleware.RequireUser())
	user.Get("/profile", userHandler.Profile)
	user.Post("/profile/refresh", userHandler.RefreshProfile)
	user.Get("/analytics", userHandler.Analytics)
	user.Get("/config", userHandler.GetConfig)
	user.Put("/config", userHandler.UpdateConfig)
	user.Post("/discord/unlink", userHandler.UnlinkDiscord)
	user.Delete("/", userHandler.DeleteAccount)
}
