package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"fellingdate/adapters/catalog"
	"fellingdate/adapters/report"
	"fellingdate/app"
	"fellingdate/domain/core"
	"fellingdate/domain/dendro"
)

func (s *Server) handleInterval(w http.ResponseWriter, r *http.Request) {
	var req intervalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.CredMass == 0 {
		req.CredMass = 0.954
	}

	result, err := s.estimator.Estimate(app.IntervalRequest{
		SeriesID: req.SeriesID,
		NSapwood: req.NSapwood,
		Last:     req.Last,
		SWData:   req.SWData,
		DensFun:  req.DensFun,
		CredMass: req.CredMass,
		HDI:      req.HDI,
	})
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}

	if req.Archive && result.HDI != nil {
		if s.archive == nil {
			s.logger.Warn("archive requested for series %s but no archive configured", req.SeriesID)
		} else if _, err := s.archive.Save(r.Context(), result.SeriesID, *result.HDI); err != nil {
			s.logger.Error("archiving estimate for series %s: %v", req.SeriesID, err)
		}
	}

	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleCombine(w http.ResponseWriter, r *http.Request) {
	var req combineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.CredMass == 0 {
		req.CredMass = 0.954
	}

	series := make([]dendro.SeriesRecord, len(req.Series))
	for i, p := range req.Series {
		series[i] = p.record()
	}

	model, err := s.combiner.Combine(series, app.CombineOptions{
		SWData:    req.SWData,
		DensFun:   req.DensFun,
		CredMass:  req.CredMass,
		Threshold: req.Threshold,
	})
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}

	accept := r.Header.Get("Accept")
	if accept == "text/html" {
		md := report.Markdown("Combined felling-date estimate", report.CombineRows(model), model.Diagnostics)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write(report.HTML(md))
		return
	}
	s.writeJSON(w, http.StatusOK, model)
}

func (s *Server) handleSum(w http.ResponseWriter, r *http.Request) {
	var req sumRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	series := make([]dendro.SeriesRecord, len(req.Series))
	for i, p := range req.Series {
		series[i] = p.record()
	}

	summed, err := s.spd.Sum(series, app.SPDOptions{SWData: req.SWData, DensFun: req.DensFun})
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, summed)
}

func (s *Server) handleDatasets(w http.ResponseWriter, r *http.Request) {
	names := s.catalog.Names()
	summaries := make([]catalog.Summary, 0, len(names))
	for _, name := range names {
		ds, err := s.catalog.Lookup(name)
		if err != nil {
			continue
		}
		summary, err := catalog.Summarize(ds)
		if err != nil {
			continue
		}
		summaries = append(summaries, summary)
	}
	s.writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	ds, err := s.catalog.Lookup(name)
	if err != nil {
		s.writeError(w, http.StatusNotFound, err)
		return
	}
	s.writeJSON(w, http.StatusOK, ds)
}

// statusFor maps the fatal-input error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrUnsupportedFamily),
		errors.Is(err, core.ErrInvalidSapwood),
		errors.Is(err, core.ErrInvalidCredMass),
		errors.Is(err, core.ErrEmptyCombination):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrConflictingFellingYears):
		return http.StatusConflict
	case errors.Is(err, core.ErrUnknownDataset):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encoding response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.logger.Warn("request failed: %v", err)
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}
