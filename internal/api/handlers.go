package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/rshade/energyscope/internal/energy"
	"github.com/rshade/energyscope/internal/engine"
)

// maxSelectionBody bounds the PUT /selection request body.
const maxSelectionBody = 1 << 20

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Error string `json:"error"`
}

// HealthResponse reports liveness and whether a dataset is loaded.
type HealthResponse struct {
	Status string `json:"status"`
	Loaded bool   `json:"loaded"`
}

// SelectionRequest is the body of PUT /api/v1/selection.
type SelectionRequest struct {
	Countries []string `json:"countries"`
}

// ConsumptionResponse is the series for the engine's active selection.
type ConsumptionResponse struct {
	SelectedCountries []string                  `json:"selectedCountries"`
	Series            []engine.ConsumptionPoint `json:"series"`
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Loaded: s.engine.Loaded()})
}

func (s *Server) years(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Years())
}

func (s *Server) energyTypes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, energy.Describe())
}

func (s *Server) stack(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(mux.Vars(r)["year"])
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid year: %w", err))
		return
	}
	writeJSON(w, http.StatusOK, s.engine.YearData(engine.SingleYear(year)))
}

func (s *Server) average(w http.ResponseWriter, r *http.Request) {
	yr, err := parseRange(r, true)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, s.engine.YearData(engine.OverRange(yr.Start, yr.End)))
}

// series computes the series for the countries named in the query without touching
// the engine's active selection.
func (s *Server) series(w http.ResponseWriter, r *http.Request) {
	sel := engine.NewSelection(r.URL.Query()["country"]...)
	writeJSON(w, http.StatusOK, s.engine.SeriesFor(sel))
}

func (s *Server) consumption(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, ConsumptionResponse{
		SelectedCountries: s.engine.SelectedCountries(),
		Series:            s.engine.ConsumptionData(),
	})
}

func (s *Server) putSelection(w http.ResponseWriter, r *http.Request) {
	var req SelectionRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSelectionBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid selection body: %w", err))
		return
	}

	series := s.engine.SetSelectedCountries(req.Countries)
	s.logger.Info().
		Ctx(r.Context()).
		Str("operation", "put_selection").
		Int("country_count", len(req.Countries)).
		Msg("selection replaced")

	writeJSON(w, http.StatusOK, ConsumptionResponse{
		SelectedCountries: s.engine.SelectedCountries(),
		Series:            series,
	})
}

func (s *Server) mapData(w http.ResponseWriter, r *http.Request) {
	yr, err := parseRange(r, false)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, s.engine.MapData(yr))
}

// parseRange reads the from/to query parameters. When required is false both may be
// absent, which yields nil; giving only one of them is always an error.
func parseRange(r *http.Request, required bool) (*engine.YearRange, error) {
	q := r.URL.Query()
	fromRaw, toRaw := q.Get("from"), q.Get("to")

	if fromRaw == "" && toRaw == "" && !required {
		return nil, nil //nolint:nilnil // absent range is a valid result
	}
	if fromRaw == "" || toRaw == "" {
		return nil, errors.New("both from and to are required")
	}

	from, err := strconv.Atoi(fromRaw)
	if err != nil {
		return nil, fmt.Errorf("invalid from: %w", err)
	}
	to, err := strconv.Atoi(toRaw)
	if err != nil {
		return nil, fmt.Errorf("invalid to: %w", err)
	}

	yr := engine.NewYearRange(from, to)
	return &yr, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
