// Package server assembles the fiber application from its dependencies.
package server

import (
	"fmt"
	"net/http"

	"github.com/ahmetcoskunkizilkaya/dtt-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/dtt-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/dtt-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/dtt-backend/internal/oauth"
	"github.com/ahmetcoskunkizilkaya/dtt-backend/internal/routes"
	"github.com/ahmetcoskunkizilkaya/dtt-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/dtt-backend/internal/session"
	"github.com/ahmetcoskunkizilkaya/dtt-backend/internal/store"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"gorm.io/gorm"
)

type Deps struct {
	Config *config.Config
	DB     *gorm.DB
	// Storage backs the session store; nil selects in-memory storage.
	Storage fiber.Storage
	// HTTPClient is used for provider calls; nil builds one from UpstreamTimeout.
	HTTPClient *http.Client
	// Ping reports database health.
	Ping func() error
	// AccessLog enables the fiber request logger.
	AccessLog bool
}

func New(d Deps) (*fiber.App, error) {
	cfg := d.Config

	cookieKey, err := middleware.CookieKey(cfg.SessionSecret)
	if err != nil {
		return nil, fmt.Errorf("SESSION_SECRET: %w", err)
	}

	httpClient := d.HTTPClient
	if httpClient == nil {
		httpClient = oauth.NewHTTPClient(cfg.UpstreamTimeout)
	}
	ping := d.Ping
	if ping == nil {
		ping = func() error {
			sqlDB, err := d.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.Ping()
		}
	}

	// Services
	st := store.New(d.DB)
	tiktok := oauth.NewTikTokClient(cfg, httpClient)
	discord := oauth.NewDiscordClient(cfg, httpClient)
	linkService := services.NewLinkService(st, tiktok, discord)
	accountService := services.NewAccountService(st, tiktok)

	sessions := session.NewManager(d.Storage, session.Options{
		TTL:    cfg.SessionTTL,
		Secure: cfg.IsProduction(),
	})

	// Handlers
	authHandler := handlers.NewAuthHandler(linkService, cfg.DashboardPath)
	userHandler := handlers.NewUserHandler(linkService, accountService)
	healthHandler := handlers.NewHealthHandler(ping)
	legalHandler := handlers.NewLegalHandler(cfg.AppName, cfg.ContactEmail)

	app := fiber.New(fiber.Config{
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))
	app.Use(recover.New())
	app.Use(requestid.New())
	if d.AccessLog {
		app.Use(fiberlogger.New(fiberlogger.Config{
			Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
		}))
	}
	app.Use(middleware.CORS(cfg))
	app.Use(middleware.SecurityHeaders())
	app.Use(middleware.EncryptCookies(cookieKey))

	routes.Setup(app, cfg, sessions, authHandler, userHandler, healthHandler, legalHandler)
	return app, nil
}
