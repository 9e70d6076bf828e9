package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"

	"github.com/wolfman30/medpet-whatsapp-bot/internal/conversation"
	"github.com/wolfman30/medpet-whatsapp-bot/internal/http/handlers"
	"github.com/wolfman30/medpet-whatsapp-bot/pkg/logging"
)

type countingEngine struct{ calls int }

func (c *countingEngine) Handle(context.Context, conversation.Event, conversation.Profile) {
	c.calls++
}

func newTestRouter(t *testing.T) (http.Handler, *countingEngine) {
	t.Helper()
	engine := &countingEngine{}
	reg := prometheus.NewRegistry()
	return New(&Config{
		Logger: logging.Default(),
		WhatsApp: handlers.NewWhatsAppWebhookHandler(handlers.WhatsAppWebhookConfig{
			Engine:      engine,
			VerifyToken: "verify-me",
		}),
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	}), engine
}

func TestRouter_Routes(t *testing.T) {
	r, engine := newTestRouter(t)

	tests := []struct {
		method string
		target string
		body   string
		status int
	}{
		{http.MethodGet, "/", "", http.StatusOK},
		{http.MethodGet, "/health", "", http.StatusOK},
		{http.MethodGet, "/metrics", "", http.StatusOK},
		{http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=verify-me&hub.challenge=abc", "", http.StatusOK},
		{http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=bad", "", http.StatusForbidden},
		{http.MethodPost, "/webhook", `{"entry":[{"changes":[{"value":{"messages":[{"from":"52","id":"w1","type":"text","text":{"body":"hola"}}]}}]}]}`, http.StatusOK},
		{http.MethodPut, "/webhook", "", http.StatusNotFound},
		{http.MethodGet, "/unknown", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
	assert.Equal(t, 1, engine.calls)
}

func TestRouter_WebhookChallengeBody(t *testing.T) {
	r, _ := newTestRouter(t)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=verify-me&hub.challenge=abc", nil))
	assert.Equal(t, "abc", rec.Body.String())
}
