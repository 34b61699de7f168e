package httpapi

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Options struct {
	// Source names the configured data source in /healthz.
	Source string
	Check  HealthCheck
	// MQTT is nil when ingest is disabled.
	MQTT    ConnectionState
	Metrics bool
}

func NewMux(opts Options) *http.ServeMux {
	mux := http.NewServeMux()
	registerHealthcheck(mux, opts)
	if opts.Metrics {
		mux.Handle("GET /metrics", promhttp.Handler())
	}
	return mux
}
