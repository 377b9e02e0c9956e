package summary

import (
	"math"
	"path/filepath"
	"strings"

	"balloonsum/domain/core"
)

// Column headers for the summary table, in render order.
const (
	ColNumEpisodes        = "num episodes"
	ColOutOfPower         = "out of power"
	ColZeroPressure       = "zeropressure"
	ColEnvelopeBurst      = "envelope burst"
	ColMeanRewardFinished = "mean cumulative reward (finished episodes)"
	ColMeanTWRFinished    = "mean TWR50 (finished episodes)"
	ColMeanRewardAll      = "mean cumulative reward (all episodes)"
	ColMeanTWRAll         = "mean TWR50 (all episodes)"
)

// Columns returns the table headers in render order
func Columns() []string {
	return []string{
		ColNumEpisodes,
		ColOutOfPower,
		ColZeroPressure,
		ColEnvelopeBurst,
		ColMeanRewardFinished,
		ColMeanTWRFinished,
		ColMeanRewardAll,
		ColMeanTWRAll,
	}
}

// Row holds the aggregate statistics for one evaluation log.
// Finished-episode means are NaN when no episode finished.
type Row struct {
	Dataset            string  `json:"dataset"`
	NumEpisodes        int     `json:"num_episodes"`
	OutOfPower         int     `json:"out_of_power"`
	ZeroPressure       int     `json:"zeropressure"`
	EnvelopeBurst      int     `json:"envelope_burst"`
	MeanRewardFinished float64 `json:"mean_reward_finished"`
	MeanTWRFinished    float64 `json:"mean_twr_finished"`
	MeanRewardAll      float64 `json:"mean_reward_all"`
	MeanTWRAll         float64 `json:"mean_twr_all"`
}

// HasFinished reports whether any episode in the log finished
func (r Row) HasFinished() bool {
	return !math.IsNaN(r.MeanRewardFinished)
}

// Table is an ordered collection of rows, one per uploaded log.
// Insertion order follows upload order.
type Table struct {
	rows []Row
}

// Append adds a row, preserving insertion order
func (t *Table) Append(row Row) {
	t.rows = append(t.rows, row)
}

// Rows returns the rows in insertion order
func (t *Table) Rows() []Row {
	return t.rows
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.rows)
}

// Lookup returns the row for a dataset name, if present
func (t *Table) Lookup(dataset string) (Row, bool) {
	for _, row := range t.rows {
		if row.Dataset == dataset {
			return row, true
		}
	}
	return Row{}, false
}

// Batch represents one completed summarization run. Persisted to the
// optional history store; never required for summarization itself.
type Batch struct {
	ID        core.BatchID   `json:"id"`
	Table     Table          `json:"-"`
	Rows      []Row          `json:"rows"`
	CreatedAt core.Timestamp `json:"created_at"`
}

// NewBatch creates a batch for a finished summary table
func NewBatch(table Table) *Batch {
	return &Batch{
		ID:        core.BatchID(core.NewID()),
		Table:     table,
		Rows:      table.Rows(),
		CreatedAt: core.Now(),
	}
}

// BaseName strips the directory and extension from an uploaded file
// name, yielding the dataset key used as the table row label
func BaseName(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
