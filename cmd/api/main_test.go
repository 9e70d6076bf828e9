package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	appconfig "github.com/wolfman30/medpet-whatsapp-bot/internal/config"
	"github.com/wolfman30/medpet-whatsapp-bot/pkg/logging"
)

func TestSetupBotMetricsExposesMetrics(t *testing.T) {
	handler, metrics := setupBotMetrics()
	if handler == nil || metrics == nil {
		t.Fatalf("expected non-nil handler and metrics")
	}

	metrics.ObserveInbound("text", "handled")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "medpet_whatsapp_inbound_webhook_total") {
		t.Fatalf("expected inbound counter to be exported")
	}
}

func TestBuildServerWithLogLedger(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := &appconfig.Config{
		Port:                 "0",
		LogLevel:             "error",
		WebhookVerifyToken:   "verify-me",
		GraphAPIBaseURL:      "http://127.0.0.1:1",
		APIVersion:           "v21.0",
		BusinessPhone:        "123",
		GraphTimeoutSecs:     1,
		SessionTTL:           time.Minute,
		SessionSweepInterval: time.Minute,
		AssistantProvider:    "none",
		LedgerBackend:        "log",
		AWSRegion:            "us-east-1",
		ProcessedTTL:         time.Hour,
		EmailProvider:        "none",
	}
	handler, cleanup, err := buildServer(ctx, cfg, logging.New("error"))
	if err != nil {
		t.Fatalf("build server: %v", err)
	}
	defer cleanup()

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=verify-me&hub.challenge=ok", nil))
	if rr.Code != http.StatusOK || rr.Body.String() != "ok" {
		t.Fatalf("expected challenge echo, got %d %q", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rr.Body.String(), "medpet_conversation_active_sessions") {
		t.Fatalf("expected session gauge to be exported")
	}
}
