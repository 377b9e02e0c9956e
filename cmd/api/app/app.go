package app

import (
	"encoding/json"
	"log"
	"math"
	"net/http"

	"balloonsum/adapters/jsonlog"
	"balloonsum/domain/core"
	"balloonsum/domain/summary"
	"balloonsum/internal/aggregate"
	"balloonsum/ports"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// App is the JSON summarize API
type App struct {
	router     *chi.Mux
	reader     ports.LogReader
	aggregator *aggregate.Aggregator
}

// New creates the API application
func New() *App {
	a := &App{
		router:     chi.NewRouter(),
		reader:     jsonlog.NewReader(),
		aggregator: aggregate.New(),
	}
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.setupRoutes()
	return a
}

// Router returns the HTTP handler
func (a *App) Router() http.Handler {
	return a.router
}

func (a *App) setupRoutes() {
	a.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", a.handleHealth)
		r.Post("/summarize", a.handleSummarize)
	})
}

// summarizeRequest carries named raw episode logs, in order
type summarizeRequest struct {
	Datasets []struct {
		Name string          `json:"name"`
		Log  json.RawMessage `json:"log"`
	} `json:"datasets"`
}

// rowPayload mirrors summary.Row with nullable means; JSON has no NaN
type rowPayload struct {
	Dataset            string   `json:"dataset"`
	NumEpisodes        int      `json:"num_episodes"`
	OutOfPower         int      `json:"out_of_power"`
	ZeroPressure       int      `json:"zeropressure"`
	EnvelopeBurst      int      `json:"envelope_burst"`
	MeanRewardFinished *float64 `json:"mean_reward_finished"`
	MeanTWRFinished    *float64 `json:"mean_twr_finished"`
	MeanRewardAll      *float64 `json:"mean_reward_all"`
	MeanTWRAll         *float64 `json:"mean_twr_all"`
}

type profilePayload struct {
	Dataset string              `json:"dataset"`
	Reward  map[string]*float64 `json:"cumulative_reward"`
	TWR     map[string]*float64 `json:"time_within_radius"`
}

type summarizeResponse struct {
	Rows     []rowPayload     `json:"rows"`
	Profiles []profilePayload `json:"profiles"`
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleSummarize aggregates a batch of episode logs supplied inline
func (a *App) handleSummarize(w http.ResponseWriter, r *http.Request) {
	var req summarizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if len(req.Datasets) == 0 {
		a.writeError(w, http.StatusBadRequest, core.ErrEmptyBatch.Error())
		return
	}

	inputs := make([]aggregate.Input, 0, len(req.Datasets))
	for _, ds := range req.Datasets {
		if ds.Name == "" {
			a.writeError(w, http.StatusBadRequest, "dataset name is required")
			return
		}
		logData, err := a.reader.Read(ds.Name, ds.Log)
		if err != nil {
			// Whole-batch abort: one bad dataset fails the request.
			a.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		inputs = append(inputs, aggregate.Input{Dataset: ds.Name, Log: logData})
	}

	table, err := a.aggregator.SummarizeAll(inputs)
	if err != nil {
		a.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	profiles := a.aggregator.ProfileAll(inputs)

	resp := summarizeResponse{
		Rows:     make([]rowPayload, 0, table.Len()),
		Profiles: make([]profilePayload, 0, len(profiles)),
	}
	for _, row := range table.Rows() {
		resp.Rows = append(resp.Rows, toRowPayload(row))
	}
	for _, p := range profiles {
		resp.Profiles = append(resp.Profiles, toProfilePayload(p))
	}

	a.writeJSON(w, http.StatusOK, resp)
}

func toRowPayload(row summary.Row) rowPayload {
	return rowPayload{
		Dataset:            row.Dataset,
		NumEpisodes:        row.NumEpisodes,
		OutOfPower:         row.OutOfPower,
		ZeroPressure:       row.ZeroPressure,
		EnvelopeBurst:      row.EnvelopeBurst,
		MeanRewardFinished: nanToNull(row.MeanRewardFinished),
		MeanTWRFinished:    nanToNull(row.MeanTWRFinished),
		MeanRewardAll:      nanToNull(row.MeanRewardAll),
		MeanTWRAll:         nanToNull(row.MeanTWRAll),
	}
}

func toProfilePayload(p aggregate.Profile) profilePayload {
	return profilePayload{
		Dataset: p.Dataset,
		Reward:  fieldProfileMap(p.Reward),
		TWR:     fieldProfileMap(p.TWR),
	}
}

func fieldProfileMap(fp aggregate.FieldProfile) map[string]*float64 {
	return map[string]*float64{
		"std_dev":  nanToNull(fp.StdDev),
		"min":      nanToNull(fp.Min),
		"max":      nanToNull(fp.Max),
		"median":   nanToNull(fp.Median),
		"q25":      nanToNull(fp.Q25),
		"q75":      nanToNull(fp.Q75),
		"skewness": nanToNull(fp.Skewness),
		"kurtosis": nanToNull(fp.Kurtosis),
	}
}

// nanToNull maps undefined means to JSON null
func nanToNull(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

func (a *App) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("[writeJSON] Failed to encode response: %v", err)
	}
}

func (a *App) writeError(w http.ResponseWriter, status int, message string) {
	a.writeJSON(w, status, map[string]string{"error": message})
}
