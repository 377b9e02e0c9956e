package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"balloonsum/domain/core"
	"balloonsum/domain/summary"
	"balloonsum/internal"
	"balloonsum/ports"

	"github.com/jmoiron/sqlx"
)

var logger = internal.NewDefaultLogger()

// batchRepository implements the BatchRepository interface
type batchRepository struct {
	db *sqlx.DB
}

// NewBatchRepository creates a new batch repository
func NewBatchRepository(db *sqlx.DB) ports.BatchRepository {
	return &batchRepository{db: db}
}

// EnsureSchema creates the history tables if they do not exist
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS summary_batches (
			id TEXT PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS summary_rows (
			batch_id TEXT NOT NULL REFERENCES summary_batches(id) ON DELETE CASCADE,
			position INT NOT NULL,
			dataset TEXT NOT NULL,
			num_episodes INT NOT NULL,
			out_of_power INT NOT NULL,
			zeropressure INT NOT NULL,
			envelope_burst INT NOT NULL,
			mean_reward_finished DOUBLE PRECISION,
			mean_twr_finished DOUBLE PRECISION,
			mean_reward_all DOUBLE PRECISION,
			mean_twr_all DOUBLE PRECISION,
			PRIMARY KEY (batch_id, position)
		)`,
	}
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure history schema: %w", err)
		}
	}
	return nil
}

// Save inserts a batch and its rows in one transaction
func (r *batchRepository) Save(ctx context.Context, batch *summary.Batch) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO summary_batches (id, created_at) VALUES ($1, $2)`,
		batch.ID.String(), batch.CreatedAt.Time(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert batch: %w", err)
	}

	query := `INSERT INTO summary_rows (
		batch_id, position, dataset, num_episodes, out_of_power, zeropressure, envelope_burst,
		mean_reward_finished, mean_twr_finished, mean_reward_all, mean_twr_all
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	for i, row := range batch.Rows {
		_, err = tx.ExecContext(ctx, query,
			batch.ID.String(), i, row.Dataset,
			row.NumEpisodes, row.OutOfPower, row.ZeroPressure, row.EnvelopeBurst,
			nullableFloat(row.MeanRewardFinished), nullableFloat(row.MeanTWRFinished),
			nullableFloat(row.MeanRewardAll), nullableFloat(row.MeanTWRAll),
		)
		if err != nil {
			return fmt.Errorf("failed to insert row for dataset %q: %w", row.Dataset, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	logger.Debug("Saved batch %s with %d rows", batch.ID, len(batch.Rows))
	return nil
}

// GetByID retrieves a batch with its rows
func (r *batchRepository) GetByID(ctx context.Context, id core.BatchID) (*summary.Batch, error) {
	var createdAt time.Time
	err := r.db.QueryRowContext(ctx,
		`SELECT created_at FROM summary_batches WHERE id = $1`, id.String(),
	).Scan(&createdAt)
	if err == sql.ErrNoRows {
		return nil, core.ErrBatchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get batch: %w", err)
	}

	rows, err := r.loadRows(ctx, id)
	if err != nil {
		return nil, err
	}

	batch := &summary.Batch{
		ID:        id,
		Rows:      rows,
		CreatedAt: core.NewTimestamp(createdAt),
	}
	for _, row := range rows {
		batch.Table.Append(row)
	}
	return batch, nil
}

// List returns the most recent batches, newest first
func (r *batchRepository) List(ctx context.Context, limit int) ([]*summary.Batch, error) {
	type batchHead struct {
		ID        string    `db:"id"`
		CreatedAt time.Time `db:"created_at"`
	}

	var heads []batchHead
	err := r.db.SelectContext(ctx, &heads,
		`SELECT id, created_at FROM summary_batches ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list batches: %w", err)
	}
	logger.Debug("Listed %d batches (limit %d)", len(heads), limit)

	batches := make([]*summary.Batch, 0, len(heads))
	for _, head := range heads {
		id := core.BatchID(head.ID)
		rows, err := r.loadRows(ctx, id)
		if err != nil {
			return nil, err
		}
		batch := &summary.Batch{
			ID:        id,
			Rows:      rows,
			CreatedAt: core.NewTimestamp(head.CreatedAt),
		}
		for _, row := range rows {
			batch.Table.Append(row)
		}
		batches = append(batches, batch)
	}
	return batches, nil
}

func (r *batchRepository) loadRows(ctx context.Context, id core.BatchID) ([]summary.Row, error) {
	query := `SELECT
		dataset, num_episodes, out_of_power, zeropressure, envelope_burst,
		mean_reward_finished, mean_twr_finished, mean_reward_all, mean_twr_all
	FROM summary_rows WHERE batch_id = $1 ORDER BY position`

	dbRows, err := r.db.QueryContext(ctx, query, id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to load rows: %w", err)
	}
	defer dbRows.Close()

	var rows []summary.Row
	for dbRows.Next() {
		var row summary.Row
		var rewardFin, twrFin, rewardAll, twrAll sql.NullFloat64
		err := dbRows.Scan(
			&row.Dataset, &row.NumEpisodes, &row.OutOfPower, &row.ZeroPressure, &row.EnvelopeBurst,
			&rewardFin, &twrFin, &rewardAll, &twrAll,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		row.MeanRewardFinished = floatOrNaN(rewardFin)
		row.MeanTWRFinished = floatOrNaN(twrFin)
		row.MeanRewardAll = floatOrNaN(rewardAll)
		row.MeanTWRAll = floatOrNaN(twrAll)
		rows = append(rows, row)
	}
	return rows, dbRows.Err()
}

// NaN means are stored as NULL; Postgres numerics cannot hold NaN via pq
func nullableFloat(v float64) sql.NullFloat64 {
	if math.IsNaN(v) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func floatOrNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
