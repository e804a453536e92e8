package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	searchhandler "vero/internal/search/handler"
)

// NewRouter wires all public endpoints.
func NewRouter(search *searchhandler.Handler) http.Handler {
	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	search.Register(r)
	return r
}
