package episode

// Field names as they appear in uploaded evaluation logs.
const (
	FieldOutOfPower       = "out_of_power"
	FieldZeroPressure     = "zeropressure"
	FieldEnvelopeBurst    = "envelope_burst"
	FieldCumulativeReward = "cumulative_reward"
	FieldTimeWithinRadius = "time_within_radius"
)

// RequiredFields lists every field an episode record must carry,
// in canonical order.
var RequiredFields = []string{
	FieldOutOfPower,
	FieldZeroPressure,
	FieldEnvelopeBurst,
	FieldCumulativeReward,
	FieldTimeWithinRadius,
}

// Record represents one simulated evaluation episode of a
// balloon-navigation controller
type Record struct {
	OutOfPower       bool    `json:"out_of_power"`
	ZeroPressure     bool    `json:"zeropressure"`
	EnvelopeBurst    bool    `json:"envelope_burst"`
	CumulativeReward float64 `json:"cumulative_reward"`
	TimeWithinRadius float64 `json:"time_within_radius"`
}

// Finished returns true if the episode ended without triggering any
// of the three failure flags
func (r Record) Finished() bool {
	return !r.OutOfPower && !r.ZeroPressure && !r.EnvelopeBurst
}

// Log is the ordered sequence of episodes from one evaluation run.
// Immutable once decoded from an uploaded file.
type Log struct {
	records []Record
}

// NewLog creates a log from decoded records
func NewLog(records []Record) Log {
	return Log{records: records}
}

// Len returns the episode count
func (l Log) Len() int {
	return len(l.records)
}

// Records returns a copy of the episode sequence
func (l Log) Records() []Record {
	out := make([]Record, len(l.records))
	copy(out, l.records)
	return out
}

// At returns the episode at index i
func (l Log) At(i int) Record {
	return l.records[i]
}

// Finished returns the episodes that ended without any failure flag,
// preserving order
func (l Log) Finished() []Record {
	var out []Record
	for _, r := range l.records {
		if r.Finished() {
			out = append(out, r)
		}
	}
	return out
}

// Rewards returns cumulative_reward for every episode in order
func (l Log) Rewards() []float64 {
	out := make([]float64, len(l.records))
	for i, r := range l.records {
		out[i] = r.CumulativeReward
	}
	return out
}

// TimesWithinRadius returns time_within_radius for every episode in order
func (l Log) TimesWithinRadius() []float64 {
	out := make([]float64, len(l.records))
	for i, r := range l.records {
		out[i] = r.TimeWithinRadius
	}
	return out
}
