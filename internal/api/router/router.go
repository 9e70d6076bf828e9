package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/medpet-whatsapp-bot/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/medpet-whatsapp-bot/internal/http/middleware"
	"github.com/wolfman30/medpet-whatsapp-bot/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger         *logging.Logger
	WhatsApp       *handlers.WhatsAppWebhookHandler
	MetricsHandler http.Handler
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	if cfg.WhatsApp == nil {
		panic("router: whatsapp webhook handler required")
	}
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(httpmiddleware.RequestLogger(cfg.Logger))

	r.NotFound(handlers.NotFound)
	r.MethodNotAllowed(handlers.NotFound)

	r.Get("/", handlers.Index)
	r.Get("/health", handlers.HealthCheck)
	r.Get("/webhook", cfg.WhatsApp.Verify)
	r.Post("/webhook", cfg.WhatsApp.HandleMessages)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	return r
}
