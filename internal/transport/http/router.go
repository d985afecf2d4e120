// Package httptransport assembles the public HTTP surface: shared middleware,
// module routes, health and metrics endpoints.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"delphi/internal/platform/metrics"
	ratelimitmw "delphi/internal/ratelimit/middleware"
	"delphi/pkg/platform/httputil"
	authmw "delphi/pkg/platform/middleware/auth"
	"delphi/pkg/platform/middleware/metadata"
	"delphi/pkg/platform/middleware/request"
	"delphi/pkg/platform/middleware/requesttime"
)

// RouteRegistrar is implemented by every module handler.
type RouteRegistrar interface {
	Register(r chi.Router)
}

// HealthCheck reports whether one backing dependency is reachable.
type HealthCheck func(ctx context.Context) error

type Options struct {
	Logger            *slog.Logger
	Gatherer          prometheus.Gatherer
	HTTPMetrics       *metrics.Metrics
	CallerValidator   authmw.CallerValidator
	TrustCallerHeader bool
	RateLimit         *ratelimitmw.Middleware
	HealthChecks      map[string]HealthCheck
}

// NewRouter mounts modules behind the shared middleware chain. Caller
// resolution runs before rate limiting so throttling keys on the caller.
func NewRouter(opts Options, modules ...RouteRegistrar) http.Handler {
	r := chi.NewRouter()

	r.Use(request.RequestID)
	r.Use(request.Recovery(opts.Logger))
	r.Use(request.Logger(opts.Logger))
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	if opts.HTTPMetrics != nil {
		r.Use(opts.HTTPMetrics.Middleware)
	}

	r.Get("/healthz", healthHandler(opts.HealthChecks))
	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(authmw.ResolveCaller(opts.CallerValidator, opts.TrustCallerHeader, opts.Logger))
		r.Use(writesOnly(authmw.RequireCaller(opts.Logger)))
		if opts.RateLimit != nil {
			r.Use(opts.RateLimit.RateLimitCaller)
		}
		for _, m := range modules {
			m.Register(r)
		}
	})
	return r
}

// writesOnly applies mw to mutating requests; reads skip it.
func writesOnly(mw func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		guarded := mw(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
			default:
				guarded.ServeHTTP(w, r)
			}
		})
	}
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "ok"}
		status := http.StatusOK
		if len(checks) > 0 {
			resp.Checks = make(map[string]string, len(checks))
		}
		for name, check := range checks {
			if err := check(r.Context()); err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}
