// internal/service/service_test.go
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/andresuchdata/supply-agent-go/internal/domain"
	"github.com/andresuchdata/supply-agent-go/internal/repository"
)

// Shared in-memory repository stubs for the service tests.

type stubProductRepo struct {
	products []domain.Product
}

func (r *stubProductRepo) GetProduct(_ context.Context, sku string) (*domain.Product, error) {
	for _, product := range r.products {
		if product.SKU == sku {
			p := product
			return &p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", repository.ErrProductNotFound, sku)
}

func (r *stubProductRepo) GetAllProducts(_ context.Context) ([]domain.Product, error) {
	return r.products, nil
}

type stubSalesRepo struct {
	mu        sync.Mutex
	histories map[string][]domain.SalesObservation
	getCalls  int
}

func (r *stubSalesRepo) GetHistory(_ context.Context, sku string, start, end time.Time) ([]domain.SalesObservation, error) {
	r.mu.Lock()
	r.getCalls++
	r.mu.Unlock()

	var history []domain.SalesObservation
	for _, obs := range r.histories[sku] {
		if obs.Date.Before(start) || obs.Date.After(end) {
			continue
		}
		history = append(history, obs)
	}
	return history, nil
}

func (r *stubSalesRepo) GetHistoryForSKUs(ctx context.Context, skus []string, start, end time.Time) (map[string][]domain.SalesObservation, error) {
	histories := make(map[string][]domain.SalesObservation, len(skus))
	for _, sku := range skus {
		history, err := r.GetHistory(ctx, sku, start, end)
		if err != nil {
			return nil, err
		}
		if len(history) > 0 {
			histories[sku] = history
		}
	}
	return histories, nil
}

func (r *stubSalesRepo) AddObservation(_ context.Context, sku string, obs domain.SalesObservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.histories[sku] = append(r.histories[sku], obs)
	return nil
}

// dailyHistory builds one observation per day for the given quantities,
// ending yesterday.
func dailyHistory(quantities []int) []domain.SalesObservation {
	history := make([]domain.SalesObservation, len(quantities))
	start := time.Now().AddDate(0, 0, -len(quantities))
	for i, qty := range quantities {
		history[i] = domain.SalesObservation{
			Date:     start.AddDate(0, 0, i),
			Quantity: qty,
			Revenue:  float64(qty) * 10,
		}
	}
	return history
}

func flatQuantities(days, qty int) []int {
	quantities := make([]int, days)
	for i := range quantities {
		quantities[i] = qty
	}
	return quantities
}
