package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"fellingdate/app"
	"fellingdate/internal"
	"fellingdate/ports"
)

// Server exposes the estimation services over HTTP.
type Server struct {
	estimator *app.IntervalEstimator
	combiner  *app.SeriesCombiner
	spd       *app.SPDAggregator
	catalog   ports.Catalog
	archive   ports.EstimateArchive // nil when the archive is disabled
	logger    *internal.Logger
}

// NewServer wires the services into an HTTP surface. archive may be nil.
func NewServer(
	estimator *app.IntervalEstimator,
	combiner *app.SeriesCombiner,
	spd *app.SPDAggregator,
	catalog ports.Catalog,
	archive ports.EstimateArchive,
	logger *internal.Logger,
) *Server {
	return &Server{
		estimator: estimator,
		combiner:  combiner,
		spd:       spd,
		catalog:   catalog,
		archive:   archive,
		logger:    logger,
	}
}

// Router builds the route table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/interval", s.handleInterval)
		r.Post("/combine", s.handleCombine)
		r.Post("/sum", s.handleSum)
		r.Get("/datasets", s.handleDatasets)
		r.Get("/datasets/{name}", s.handleDataset)
	})

	return r
}
