package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/Rashmi2733/nepal-temperature-changes/internal/utils"
)

// HealthCheck reports whether the data source is usable.
type HealthCheck func(ctx context.Context) error

// ConnectionState is implemented by optional background connections such as
// the MQTT subscriber.
type ConnectionState interface {
	IsConnected() bool
}

type healthchecker interface {
	handleHealthz(w http.ResponseWriter, r *http.Request)
}

type healthcheckerImpl struct {
	source string
	check  HealthCheck
	mqtt   ConnectionState
}

func NewHealthchecker(source string, check HealthCheck, mqtt ConnectionState) healthchecker {
	return &healthcheckerImpl{source: source, check: check, mqtt: mqtt}
}

func (h *healthcheckerImpl) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if h.check != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.check(ctx); err != nil {
			logger(r).Error("failed to check data source", "source", h.source, "error", err)
			utils.WriteError(w, http.StatusServiceUnavailable, "data source unavailable")
			return
		}
	}

	body := map[string]string{"status": "ok", "source": h.source, "mqtt": "disabled"}
	if h.mqtt != nil {
		body["mqtt"] = "disconnected"
		if h.mqtt.IsConnected() {
			body["mqtt"] = "connected"
		}
	}
	utils.WriteJSON(w, http.StatusOK, body)
}

func registerHealthcheck(mux *http.ServeMux, opts Options) {
	healthchecker := NewHealthchecker(opts.Source, opts.Check, opts.MQTT)
	mux.HandleFunc("GET /healthz", healthchecker.handleHealthz)
}
