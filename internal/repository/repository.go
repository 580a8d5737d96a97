// internal/repository/repository.go
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/andresuchdata/supply-agent-go/internal/domain"
)

// ErrProductNotFound is returned when a SKU has no catalog entry.
var ErrProductNotFound = errors.New("product not found")

// ProductRepository is the consumed product catalog interface.
type ProductRepository interface {
	GetProduct(ctx context.Context, sku string) (*domain.Product, error)
	GetAllProducts(ctx context.Context) ([]domain.Product, error)
}

// SalesRepository is the consumed sales history provider. History is always
// returned ordered by date ascending and may be empty.
type SalesRepository interface {
	GetHistory(ctx context.Context, sku string, start, end time.Time) ([]domain.SalesObservation, error)
	GetHistoryForSKUs(ctx context.Context, skus []string, start, end time.Time) (map[string][]domain.SalesObservation, error)
	AddObservation(ctx context.Context, sku string, obs domain.SalesObservation) error
}
