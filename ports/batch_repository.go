package ports

import (
	"context"

	"balloonsum/domain/core"
	"balloonsum/domain/summary"
)

// BatchRepository persists summarized batches for the optional run
// history. Summarization never depends on it.
type BatchRepository interface {
	Save(ctx context.Context, batch *summary.Batch) error
	GetByID(ctx context.Context, id core.BatchID) (*summary.Batch, error)
	List(ctx context.Context, limit int) ([]*summary.Batch, error)
}
