package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/spektr-org/agriclimate/engine"
	"github.com/spektr-org/agriclimate/export"
	"github.com/spektr-org/agriclimate/render"
	"github.com/spektr-org/agriclimate/store"
)

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// CountryEntry is one option of the country selector.
type CountryEntry struct {
	Name    string `json:"name"`
	HasData bool   `json:"hasData"`
}

// ViewEntry describes one dashboard view.
type ViewEntry struct {
	Name     engine.View `json:"name"`
	Heading  string      `json:"heading"`
	KeyLabel string      `json:"keyLabel"`
	Unit     string      `json:"unit"`
}

// DatasetInfo summarises the installed dataset.
type DatasetInfo struct {
	ID       string                      `json:"id"`
	Source   string                      `json:"source,omitempty"`
	LoadedAt time.Time                   `json:"loadedAt"`
	Stats    map[engine.View]engine.Stats `json:"stats"`
}

func datasetInfo(ds *engine.Dataset) *DatasetInfo {
	if ds == nil {
		return nil
	}
	return &DatasetInfo{ID: ds.ID, Source: ds.Source, LoadedAt: ds.LoadedAt, Stats: ds.Stats()}
}

// ============================================================================
// META
// ============================================================================

// HealthResponse is the /healthz body. LastError is the most recent reload
// failure still standing; it clears on the next successful reload.
type HealthResponse struct {
	Status    string       `json:"status"`
	Dataset   *DatasetInfo `json:"dataset"`
	LoadedAt  *time.Time   `json:"loadedAt,omitempty"`
	LastError string       `json:"lastError,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok", Dataset: datasetInfo(s.data.Current())}
	loadedAt, lastErr := s.data.Status()
	if !loadedAt.IsZero() {
		resp.LoadedAt = &loadedAt
	}
	if lastErr != nil {
		resp.LastError = lastErr.Error()
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCountries(w http.ResponseWriter, r *http.Request) {
	ds := s.data.Current()
	out := make([]CountryEntry, 0, len(engine.Countries))
	for _, c := range engine.Countries {
		out = append(out, CountryEntry{Name: c, HasData: ds.HasCountry(c)})
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleViews(w http.ResponseWriter, r *http.Request) {
	views := engine.Views()
	out := make([]ViewEntry, 0, len(views))
	for _, v := range views {
		out = append(out, ViewEntry{Name: v, Heading: v.Heading(), KeyLabel: v.KeyLabel(), Unit: v.Unit()})
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	ds, err := s.data.Reload(r.Context())
	switch {
	case errors.Is(err, store.ErrSuperseded):
		// A newer reload already landed; report that one.
		ds = s.data.Current()
	case err != nil:
		s.writeError(w, http.StatusBadGateway, fmt.Sprintf("reload failed, keeping previous dataset: %v", err))
		return
	}
	s.writeJSON(w, http.StatusOK, datasetInfo(ds))
}

// ============================================================================
// VIEWS
// ============================================================================

// query resolves the request into a Query against the current dataset.
// It writes the error reply itself and returns ok=false on failure.
func (s *Server) query(w http.ResponseWriter, r *http.Request, intent string) (*engine.Dataset, engine.Query, bool) {
	view, err := engine.ParseView(chi.URLParam(r, "view"))
	if err != nil {
		s.writeError(w, http.StatusNotFound, err.Error())
		return nil, engine.Query{}, false
	}
	if intent == "" {
		intent, err = engine.ParseIntent(r.URL.Query().Get("intent"))
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return nil, engine.Query{}, false
		}
	}
	country := r.URL.Query().Get("country")
	if country == "" {
		country = engine.GlobalKey
	}

	ds := s.data.Current()
	if ds == nil {
		s.writeError(w, http.StatusServiceUnavailable, "dataset not loaded")
		return nil, engine.Query{}, false
	}
	w.Header().Set("ETag", etag(ds))
	if match := r.Header.Get("If-None-Match"); match != "" && match == etag(ds) {
		w.WriteHeader(http.StatusNotModified)
		return nil, engine.Query{}, false
	}
	return ds, engine.Query{View: view, Country: country, Intent: intent}, true
}

func (s *Server) execute(w http.ResponseWriter, r *http.Request, intent string) (*engine.Result, bool) {
	ds, q, ok := s.query(w, r, intent)
	if !ok {
		return nil, false
	}
	res, err := engine.Execute(q, ds, s.engineOpts...)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	if res == nil {
		// Nothing to show for this country.
		w.WriteHeader(http.StatusNoContent)
		return nil, false
	}
	return res, true
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	res, ok := s.execute(w, r, "")
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	format, err := render.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}

	res, ok := s.execute(w, r, engine.IntentChart)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := render.Render(&buf, res.ChartConfig, format); err != nil {
		if errors.Is(err, render.ErrNothingToRender) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		s.logger.Error("render chart", zap.String("view", string(res.View)), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "render failed")
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleCSV(w http.ResponseWriter, r *http.Request) {
	res, ok := s.execute(w, r, engine.IntentTable)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, res.TableData); err != nil {
		s.logger.Error("write csv", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "csv export failed")
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("%s_%s.csv", res.View, res.Country)))
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleWorkbook(w http.ResponseWriter, r *http.Request) {
	ds := s.data.Current()
	if ds == nil {
		s.writeError(w, http.StatusServiceUnavailable, "dataset not loaded")
		return
	}

	var buf bytes.Buffer
	if err := export.WriteWorkbook(&buf, ds); err != nil {
		s.logger.Error("write workbook", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "workbook export failed")
		return
	}
	w.Header().Set("ETag", etag(ds))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="agriclimate.xlsx"`)
	_, _ = w.Write(buf.Bytes())
}

// ============================================================================
// HELPERS
// ============================================================================

func etag(ds *engine.Dataset) string {
	return `"` + ds.ID + `"`
}

// writeJSON encodes v as JSON and writes it with the given status code.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("write json response", zap.Int("status", status), zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, ErrorResponse{Error: msg})
}
