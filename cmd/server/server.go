package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/munakata1001/mitumorisyo/internal/estimate"
	"github.com/munakata1001/mitumorisyo/internal/logger"
	"github.com/munakata1001/mitumorisyo/internal/metrics"
)

type pinger interface {
	PingContext(ctx context.Context) error
}

type server struct {
	estimates      *estimate.Service
	log            *logger.Logger
	metrics        *metrics.EstimateMetrics
	gatherer       prometheus.Gatherer
	health         pinger
	pdfFontPath    string
	maxUploadFiles int
	now            func() time.Time
}

func (s *server) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(s.recoverer)

	r.Get("/healthz", s.handleHealth)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/estimates", func(r chi.Router) {
			r.Get("/", s.handleListEstimates)
			r.Post("/", s.handleSaveEstimate)
			r.Get("/search/{estimateNumber}", s.handleFindEstimateByNumber)
			r.Get("/{id}", s.handleGetEstimate)
			r.Delete("/{id}", s.handleDeleteEstimate)
			r.Put("/{id}/project-info", s.handleUpdateProjectInfo)
			r.Put("/{id}/remarks", s.handleUpdateRemarks)
		})

		r.Route("/table-data/{estimateId}", func(r chi.Router) {
			r.Get("/", s.handleGetTableData)
			r.Put("/", s.handleReplaceTableData)
			r.Post("/rows", s.handleAddRow)
			r.Put("/rows/{rowId}", s.handleUpdateRow)
			r.Delete("/rows/{rowId}", s.handleDeleteRow)
		})

		r.Route("/cost-calculation/{estimateId}", func(r chi.Router) {
			r.Get("/", s.handleGetCostCalculation)
			r.Put("/", s.handleUpdateCostCalculation)
			r.Post("/recalculate", s.handleRecalculate)
		})

		r.Post("/calculation", s.handleCalculate)
		r.Post("/file-upload", s.handleFileUpload)
		r.Post("/project-info", s.handleValidateProjectInfo)

		r.Route("/export/{format}", func(r chi.Router) {
			r.Post("/", s.handleExportPayload)
			r.Get("/{id}", s.handleExportStored)
		})

		r.Route("/templates", func(r chi.Router) {
			r.Get("/", s.handleListTemplates)
			r.Post("/", s.handleSaveTemplate)
			r.Get("/{id}", s.handleGetTemplate)
			r.Delete("/{id}", s.handleDeleteTemplate)
			r.Post("/{id}/apply", s.handleApplyTemplate)
		})

		r.Route("/materials", func(r chi.Router) {
			r.Get("/", s.handleListMaterials)
			r.Post("/", s.handleUpsertMaterial)
		})
	})

	return r
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health.PingContext(r.Context()); err != nil {
			s.log.Error(r.Context(), "health check failed", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
