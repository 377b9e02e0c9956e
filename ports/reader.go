package ports

import (
	"balloonsum/domain/episode"
)

// LogReader decodes raw uploaded bytes into an episode log.
// Implementations must fail fast with errors naming the dataset (and
// field, for schema problems) rather than skipping bad records.
type LogReader interface {
	Read(dataset string, raw []byte) (episode.Log, error)
}
