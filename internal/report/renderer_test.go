package report

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"balloonsum/domain/summary"
	"balloonsum/internal/aggregate"
	"balloonsum/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer(config.ReportConfig{Title: "Evaluation summary", HeaderCellWidth: 150})
	require.NoError(t, err)
	return r
}

func TestRenderSummary_TwoDatasetsInOrder(t *testing.T) {
	var table summary.Table
	table.Append(summary.Row{
		Dataset: "runA", NumEpisodes: 3, OutOfPower: 1,
		MeanRewardFinished: 2.0, MeanTWRFinished: 0.6,
		MeanRewardAll: 2.0, MeanTWRAll: 0.6,
	})
	table.Append(summary.Row{
		Dataset: "runB", NumEpisodes: 2, OutOfPower: 2,
		MeanRewardFinished: math.NaN(), MeanTWRFinished: math.NaN(),
		MeanRewardAll: -15.0, MeanTWRAll: 0.2,
	})

	var buf bytes.Buffer
	require.NoError(t, testRenderer(t).RenderSummary(&buf, table, nil))
	html := buf.String()

	// One row per dataset, in upload order
	posA := strings.Index(html, "runA")
	posB := strings.Index(html, "runB")
	require.Greater(t, posA, -1)
	require.Greater(t, posB, -1)
	assert.Less(t, posA, posB)

	// Header cell width cap
	assert.Contains(t, html, "max-width: 150px")

	// All columns present, in order
	last := -1
	for _, col := range summary.Columns() {
		pos := strings.Index(html, col)
		require.Greater(t, pos, -1, "missing column %q", col)
		assert.Greater(t, pos, last, "column %q out of order", col)
		last = pos
	}

	// Undefined means stay visible as NaN
	assert.Contains(t, html, "NaN")
	assert.Contains(t, html, "</html>")
}

func TestRenderSummary_WithProfiles(t *testing.T) {
	var table summary.Table
	table.Append(summary.Row{Dataset: "runA", NumEpisodes: 1, MeanRewardAll: 1, MeanTWRAll: 1, MeanRewardFinished: 1, MeanTWRFinished: 1})
	profiles := []aggregate.Profile{{Dataset: "runA"}}

	var buf bytes.Buffer
	require.NoError(t, testRenderer(t).RenderSummary(&buf, table, profiles))
	assert.Contains(t, buf.String(), "Reward distribution")
	assert.Contains(t, buf.String(), "cumulative_reward")
}

func TestRenderIndex(t *testing.T) {
	var buf bytes.Buffer
	err := testRenderer(t).RenderIndex(&buf, IndexPage{MaxFiles: 32, MaxFileMB: 50, HistoryOn: true})
	require.NoError(t, err)

	html := buf.String()
	assert.Contains(t, html, `action="/upload"`)
	assert.Contains(t, html, "multiple")
	assert.Contains(t, html, "/history")
}

func TestRenderIndex_HistoryHidden(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, testRenderer(t).RenderIndex(&buf, IndexPage{MaxFiles: 8, MaxFileMB: 50}))
	assert.NotContains(t, buf.String(), "/history")
}

func TestRenderHistory(t *testing.T) {
	var table summary.Table
	table.Append(summary.Row{Dataset: "runA", NumEpisodes: 3})
	batch := summary.NewBatch(table)

	var buf bytes.Buffer
	require.NoError(t, testRenderer(t).RenderHistory(&buf, []*summary.Batch{batch}))
	assert.Contains(t, buf.String(), "runA")
}

func TestRenderNotes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, testRenderer(t).RenderNotes(&buf, "<h1>Methodology</h1>"))
	assert.Contains(t, buf.String(), "<h1>Methodology</h1>")
}
