package jsonlog

import (
	"bytes"
	"fmt"

	"balloonsum/domain/core"
	"balloonsum/domain/episode"
	"balloonsum/ports"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Reader decodes JSON episode logs. Two layouts are accepted: a
// top-level array of record objects, and a column-oriented object
// mapping each field name to an array of values. Unknown fields are
// ignored; a missing required field aborts the whole dataset.
type Reader struct{}

// NewReader creates a JSON log reader
func NewReader() *Reader {
	return &Reader{}
}

var _ ports.LogReader = (*Reader)(nil)

// Read decodes raw bytes into an episode log
func (r *Reader) Read(dataset string, raw []byte) (episode.Log, error) {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) == 0 {
		return episode.Log{}, core.NewMalformedLogError(dataset, fmt.Errorf("empty payload"))
	}

	switch trimmed[0] {
	case '[':
		return r.readRecords(dataset, raw)
	case '{':
		return r.readColumns(dataset, raw)
	default:
		return episode.Log{}, core.NewMalformedLogError(dataset, fmt.Errorf("expected JSON array or object, got %q", trimmed[0]))
	}
}

// readRecords handles the array-of-objects layout
func (r *Reader) readRecords(dataset string, raw []byte) (episode.Log, error) {
	var rows []map[string]jsoniter.RawMessage
	if err := json.Unmarshal(raw, &rows); err != nil {
		return episode.Log{}, core.NewMalformedLogError(dataset, err)
	}

	records := make([]episode.Record, 0, len(rows))
	for i, row := range rows {
		var rec episode.Record
		for _, field := range episode.RequiredFields {
			value, ok := row[field]
			if !ok {
				return episode.Log{}, core.NewMissingFieldError(dataset, field)
			}
			if err := decodeField(&rec, field, value); err != nil {
				return episode.Log{}, core.NewMalformedLogError(dataset, fmt.Errorf("record %d: %v", i, err))
			}
		}
		records = append(records, rec)
	}
	return episode.NewLog(records), nil
}

// readColumns handles the column-oriented layout (field name -> array)
func (r *Reader) readColumns(dataset string, raw []byte) (episode.Log, error) {
	var cols map[string]jsoniter.RawMessage
	if err := json.Unmarshal(raw, &cols); err != nil {
		return episode.Log{}, core.NewMalformedLogError(dataset, err)
	}

	var (
		outOfPower, zeroPressure, envelopeBurst []bool
		reward, twr                             []float64
	)

	boolCols := map[string]*[]bool{
		episode.FieldOutOfPower:    &outOfPower,
		episode.FieldZeroPressure:  &zeroPressure,
		episode.FieldEnvelopeBurst: &envelopeBurst,
	}
	floatCols := map[string]*[]float64{
		episode.FieldCumulativeReward: &reward,
		episode.FieldTimeWithinRadius: &twr,
	}

	length := -1
	for _, field := range episode.RequiredFields {
		value, ok := cols[field]
		if !ok {
			return episode.Log{}, core.NewMissingFieldError(dataset, field)
		}

		var n int
		if dst, isBool := boolCols[field]; isBool {
			if err := json.Unmarshal(value, dst); err != nil {
				return episode.Log{}, core.NewMalformedLogError(dataset, fmt.Errorf("field %q: %v", field, err))
			}
			n = len(*dst)
		} else {
			dst := floatCols[field]
			if err := json.Unmarshal(value, dst); err != nil {
				return episode.Log{}, core.NewMalformedLogError(dataset, fmt.Errorf("field %q: %v", field, err))
			}
			n = len(*dst)
		}

		if length == -1 {
			length = n
		} else if n != length {
			return episode.Log{}, core.NewRaggedColumnError(dataset, field, n, length)
		}
	}

	records := make([]episode.Record, length)
	for i := range records {
		records[i] = episode.Record{
			OutOfPower:       outOfPower[i],
			ZeroPressure:     zeroPressure[i],
			EnvelopeBurst:    envelopeBurst[i],
			CumulativeReward: reward[i],
			TimeWithinRadius: twr[i],
		}
	}
	return episode.NewLog(records), nil
}

// decodeField unmarshals one record field into its typed slot
func decodeField(rec *episode.Record, field string, value jsoniter.RawMessage) error {
	var err error
	switch field {
	case episode.FieldOutOfPower:
		err = json.Unmarshal(value, &rec.OutOfPower)
	case episode.FieldZeroPressure:
		err = json.Unmarshal(value, &rec.ZeroPressure)
	case episode.FieldEnvelopeBurst:
		err = json.Unmarshal(value, &rec.EnvelopeBurst)
	case episode.FieldCumulativeReward:
		err = json.Unmarshal(value, &rec.CumulativeReward)
	case episode.FieldTimeWithinRadius:
		err = json.Unmarshal(value, &rec.TimeWithinRadius)
	}
	if err != nil {
		return fmt.Errorf("field %q: %v", field, err)
	}
	return nil
}
