package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)

	New().Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestHandleSummarize_TwoDatasets(t *testing.T) {
	body := `{"datasets": [
		{"name": "runA", "log": [
			{"out_of_power": false, "zeropressure": false, "envelope_burst": false, "cumulative_reward": 1.0, "time_within_radius": 0.5},
			{"out_of_power": true,  "zeropressure": false, "envelope_burst": false, "cumulative_reward": 2.0, "time_within_radius": 0.6},
			{"out_of_power": false, "zeropressure": false, "envelope_burst": false, "cumulative_reward": 3.0, "time_within_radius": 0.7}
		]},
		{"name": "runB", "log": [
			{"out_of_power": true, "zeropressure": false, "envelope_burst": false, "cumulative_reward": -10.0, "time_within_radius": 0.1}
		]}
	]}`

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/summarize", strings.NewReader(body))

	New().Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Rows []struct {
			Dataset            string   `json:"dataset"`
			NumEpisodes        int      `json:"num_episodes"`
			OutOfPower         int      `json:"out_of_power"`
			MeanRewardFinished *float64 `json:"mean_reward_finished"`
			MeanRewardAll      *float64 `json:"mean_reward_all"`
		} `json:"rows"`
		Profiles []struct {
			Dataset string `json:"dataset"`
		} `json:"profiles"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	require.Len(t, resp.Rows, 2)
	assert.Equal(t, "runA", resp.Rows[0].Dataset)
	assert.Equal(t, 3, resp.Rows[0].NumEpisodes)
	assert.Equal(t, 1, resp.Rows[0].OutOfPower)
	require.NotNil(t, resp.Rows[0].MeanRewardFinished)
	assert.InDelta(t, 2.0, *resp.Rows[0].MeanRewardFinished, 1e-9)

	// runB never finished: undefined mean comes back as null
	assert.Equal(t, "runB", resp.Rows[1].Dataset)
	assert.Nil(t, resp.Rows[1].MeanRewardFinished)
	require.NotNil(t, resp.Rows[1].MeanRewardAll)
	assert.InDelta(t, -10.0, *resp.Rows[1].MeanRewardAll, 1e-9)

	require.Len(t, resp.Profiles, 2)
	assert.Equal(t, "runA", resp.Profiles[0].Dataset)
}

func TestHandleSummarize_MissingField(t *testing.T) {
	body := `{"datasets": [
		{"name": "runC", "log": [{"out_of_power": false, "zeropressure": false, "envelope_burst": false, "cumulative_reward": 1.0}]}
	]}`

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/summarize", strings.NewReader(body))

	New().Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "runC")
	assert.Contains(t, rec.Body.String(), "time_within_radius")
}

func TestHandleSummarize_EmptyBatch(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/summarize", strings.NewReader(`{"datasets": []}`))

	New().Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleSummarize_MalformedBody(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/summarize", strings.NewReader(`{`))

	New().Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
