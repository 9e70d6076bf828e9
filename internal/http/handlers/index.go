package handlers

import (
	"encoding/json"
	"io"
	"net/http"
)

const indexPage = `<pre>Nothing to see here. Checkout README.md to start.</pre>`

// Index serves the placeholder landing page.
func Index(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, indexPage)
}

// HealthCheck reports liveness.
func HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// NotFound mirrors the plain-text 404 of the landing server.
func NotFound(w http.ResponseWriter, _ *http.Request) {
	http.Error(w, "Not Found", http.StatusNotFound)
}
