// internal/repository/postgres/product_repository.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/andresuchdata/supply-agent-go/internal/domain"
	"github.com/andresuchdata/supply-agent-go/internal/repository"
)

// ProductRepository is the Postgres-backed product catalog. It satisfies
// repository.ProductRepository and additionally exposes the transactional
// writes the seeding tool uses.
type ProductRepository struct {
	db *DB
}

func NewProductRepository(db *DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) GetProduct(ctx context.Context, sku string) (*domain.Product, error) {
	query := `
		SELECT sku, name, category, current_stock, unit_cost, selling_price,
		       supplier_lead_time_days, min_order_quantity, last_updated
		FROM products
		WHERE sku = $1
	`

	var product domain.Product
	if err := r.db.GetContext(ctx, &product, query, sku); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", repository.ErrProductNotFound, sku)
		}
		return nil, fmt.Errorf("error getting product %s: %w", sku, err)
	}

	return &product, nil
}

func (r *ProductRepository) GetAllProducts(ctx context.Context) ([]domain.Product, error) {
	query := `
		SELECT sku, name, category, current_stock, unit_cost, selling_price,
		       supplier_lead_time_days, min_order_quantity, last_updated
		FROM products
		ORDER BY sku
	`

	var products []domain.Product
	if err := r.db.SelectContext(ctx, &products, query); err != nil {
		return nil, fmt.Errorf("error getting products: %w", err)
	}

	return products, nil
}

// UpsertProducts writes catalog entries in one transaction, inserting new
// SKUs and refreshing existing ones.
func (r *ProductRepository) UpsertProducts(ctx context.Context, products []domain.Product) error {
	query := `
		INSERT INTO products (
			sku, name, category, current_stock, unit_cost, selling_price,
			supplier_lead_time_days, min_order_quantity, last_updated
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (sku)
		DO UPDATE SET
			name = EXCLUDED.name,
			category = EXCLUDED.category,
			current_stock = EXCLUDED.current_stock,
			unit_cost = EXCLUDED.unit_cost,
			selling_price = EXCLUDED.selling_price,
			supplier_lead_time_days = EXCLUDED.supplier_lead_time_days,
			min_order_quantity = EXCLUDED.min_order_quantity,
			last_updated = NOW()
	`

	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		for _, p := range products {
			if _, err := tx.ExecContext(ctx, query,
				p.SKU, p.Name, p.Category, p.CurrentStock, p.UnitCost,
				p.SellingPrice, p.SupplierLeadTimeDays, p.MinOrderQuantity,
			); err != nil {
				return fmt.Errorf("error upserting product %s: %w", p.SKU, err)
			}
		}
		return nil
	})
}
