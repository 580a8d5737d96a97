// internal/repository/postgres/sales_repository.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/andresuchdata/supply-agent-go/internal/domain"
	"github.com/lib/pq"
)

// SalesRepository is the Postgres-backed sales history store. It satisfies
// repository.SalesRepository and additionally exposes the transactional
// batch write the seeding tool uses.
type SalesRepository struct {
	db *DB
}

func NewSalesRepository(db *DB) *SalesRepository {
	return &SalesRepository{db: db}
}

func (r *SalesRepository) GetHistory(ctx context.Context, sku string, start, end time.Time) ([]domain.SalesObservation, error) {
	query := `
		SELECT date, quantity, COALESCE(revenue, 0) AS revenue
		FROM sales_history
		WHERE sku = $1 AND date >= $2 AND date <= $3
		ORDER BY date ASC
	`

	var history []domain.SalesObservation
	if err := r.db.SelectContext(ctx, &history, query, sku, start, end); err != nil {
		return nil, fmt.Errorf("error getting sales history for %s: %w", sku, err)
	}

	return history, nil
}

func (r *SalesRepository) GetHistoryForSKUs(ctx context.Context, skus []string, start, end time.Time) (map[string][]domain.SalesObservation, error) {
	if len(skus) == 0 {
		return map[string][]domain.SalesObservation{}, nil
	}

	query := `
		SELECT sku, date, quantity, COALESCE(revenue, 0) AS revenue
		FROM sales_history
		WHERE sku = ANY($1) AND date >= $2 AND date <= $3
		ORDER BY sku, date ASC
	`

	rows, err := r.db.QueryxContext(ctx, query, pq.Array(skus), start, end)
	if err != nil {
		return nil, fmt.Errorf("error getting sales history: %w", err)
	}
	defer rows.Close()

	histories := make(map[string][]domain.SalesObservation, len(skus))
	for rows.Next() {
		var row struct {
			SKU string `db:"sku"`
			domain.SalesObservation
		}
		if err := rows.StructScan(&row); err != nil {
			return nil, fmt.Errorf("error scanning sales row: %w", err)
		}
		histories[row.SKU] = append(histories[row.SKU], row.SalesObservation)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sales rows: %w", err)
	}

	return histories, nil
}

func (r *SalesRepository) AddObservation(ctx context.Context, sku string, obs domain.SalesObservation) error {
	query := `
		INSERT INTO sales_history (sku, date, quantity, revenue)
		VALUES ($1, $2, $3, $4)
	`

	if _, err := r.db.ExecContext(ctx, query, sku, obs.Date, obs.Quantity, obs.Revenue); err != nil {
		return fmt.Errorf("error adding sales record for %s: %w", sku, err)
	}

	return nil
}

// AddObservations writes a batch of sales rows for one SKU atomically: a
// partially seeded history would skew any forecast fitted on it.
func (r *SalesRepository) AddObservations(ctx context.Context, sku string, observations []domain.SalesObservation) error {
	query := `
		INSERT INTO sales_history (sku, date, quantity, revenue)
		VALUES ($1, $2, $3, $4)
	`

	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		for _, obs := range observations {
			if _, err := tx.ExecContext(ctx, query, sku, obs.Date, obs.Quantity, obs.Revenue); err != nil {
				return fmt.Errorf("error adding sales record for %s: %w", sku, err)
			}
		}
		return nil
	})
}
