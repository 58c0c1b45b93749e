package remote

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig configures the HTTP router a remote Navigation is served on.
type RouterConfig struct {
	// Path is the WebSocket endpoint path. Default: "/ws".
	Path string

	// MetricsGatherer serves GET /metrics when set.
	MetricsGatherer prometheus.Gatherer
}

// NewRouter mounts the Navigation's WebSocket endpoint, a health check, and
// optionally a Prometheus metrics endpoint on a chi router. Embedders that
// already run a router can mount Handler() themselves instead.
func NewRouter(n *Navigation, cfg RouterConfig) chi.Router {
	if cfg.Path == "" {
		cfg.Path = "/ws"
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)

	r.Handle(cfg.Path, n.Handler())

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	if cfg.MetricsGatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.MetricsGatherer, promhttp.HandlerOpts{}))
	}

	return r
}
