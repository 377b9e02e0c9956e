package aggregate

import (
	"math"

	"balloonsum/domain/core"
	"balloonsum/domain/episode"
	"balloonsum/domain/summary"

	"github.com/montanaflynn/stats"
)

// Input pairs a dataset name with its decoded episode log.
// Slice order is upload order and is preserved in the output table.
type Input struct {
	Dataset string
	Log     episode.Log
}

// Aggregator turns episode logs into summary rows. Stateless; every
// call is a pure function of its inputs.
type Aggregator struct{}

// New creates an aggregator
func New() *Aggregator {
	return &Aggregator{}
}

// Summarize computes the summary row for one evaluation log
func (a *Aggregator) Summarize(dataset string, log episode.Log) summary.Row {
	row := summary.Row{
		Dataset:     dataset,
		NumEpisodes: log.Len(),
	}

	for _, r := range log.Records() {
		if r.OutOfPower {
			row.OutOfPower++
		}
		if r.ZeroPressure {
			row.ZeroPressure++
		}
		if r.EnvelopeBurst {
			row.EnvelopeBurst++
		}
	}

	finished := log.Finished()
	finishedRewards := make([]float64, 0, len(finished))
	finishedTWR := make([]float64, 0, len(finished))
	for _, r := range finished {
		finishedRewards = append(finishedRewards, r.CumulativeReward)
		finishedTWR = append(finishedTWR, r.TimeWithinRadius)
	}

	// An empty finished subset is not an error: the means are NaN.
	row.MeanRewardFinished = meanOrNaN(finishedRewards)
	row.MeanTWRFinished = meanOrNaN(finishedTWR)
	row.MeanRewardAll = meanOrNaN(log.Rewards())
	row.MeanTWRAll = meanOrNaN(log.TimesWithinRadius())

	return row
}

// SummarizeAll computes the summary table for a batch of logs,
// one row per input, in input order
func (a *Aggregator) SummarizeAll(inputs []Input) (summary.Table, error) {
	var table summary.Table
	if len(inputs) == 0 {
		return table, core.ErrEmptyBatch
	}
	for _, in := range inputs {
		table.Append(a.Summarize(in.Dataset, in.Log))
	}
	return table, nil
}

// meanOrNaN maps the stats library's empty-input error to an explicit NaN
func meanOrNaN(data []float64) float64 {
	m, err := stats.Mean(data)
	if err != nil {
		return math.NaN()
	}
	return m
}
