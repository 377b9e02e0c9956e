package aggregate

import (
	"math"
	"sort"

	"balloonsum/domain/episode"

	"gonum.org/v1/gonum/stat"
)

// FieldProfile describes the distribution of one numeric field over
// all episodes of a log. Every statistic is NaN when the log carries
// too few episodes to compute it.
type FieldProfile struct {
	StdDev   float64 `json:"std_dev"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Median   float64 `json:"median"`
	Q25      float64 `json:"q25"`
	Q75      float64 `json:"q75"`
	Skewness float64 `json:"skewness"`
	Kurtosis float64 `json:"kurtosis"`
}

// Profile holds the distribution profiles for one evaluation log
type Profile struct {
	Dataset string       `json:"dataset"`
	Reward  FieldProfile `json:"cumulative_reward"`
	TWR     FieldProfile `json:"time_within_radius"`
}

// ProfileLog computes reward and TWR50 distribution profiles over all
// episodes of a log
func (a *Aggregator) ProfileLog(dataset string, log episode.Log) Profile {
	return Profile{
		Dataset: dataset,
		Reward:  profileField(log.Rewards()),
		TWR:     profileField(log.TimesWithinRadius()),
	}
}

// ProfileAll computes one profile per input, in input order
func (a *Aggregator) ProfileAll(inputs []Input) []Profile {
	out := make([]Profile, 0, len(inputs))
	for _, in := range inputs {
		out = append(out, a.ProfileLog(in.Dataset, in.Log))
	}
	return out
}

func profileField(data []float64) FieldProfile {
	nan := math.NaN()
	p := FieldProfile{
		StdDev: nan, Min: nan, Max: nan, Median: nan,
		Q25: nan, Q75: nan, Skewness: nan, Kurtosis: nan,
	}
	if len(data) == 0 {
		return p
	}

	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	p.Min = sorted[0]
	p.Max = sorted[len(sorted)-1]
	// gonum quantiles require sorted input
	p.Median = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	p.Q25 = stat.Quantile(0.25, stat.Empirical, sorted, nil)
	p.Q75 = stat.Quantile(0.75, stat.Empirical, sorted, nil)

	if len(data) >= 2 {
		p.StdDev = stat.StdDev(data, nil)
	}
	if len(data) >= 3 {
		p.Skewness = stat.Skew(data, nil)
	}
	if len(data) >= 4 {
		p.Kurtosis = stat.ExKurtosis(data, nil)
	}
	return p
}
