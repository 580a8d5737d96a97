package main

import (
	"fmt"
	"log"
	"math"
	"math/rand"
	"time"

	"github.com/andresuchdata/supply-agent-go/internal/domain"
	"github.com/andresuchdata/supply-agent-go/internal/repository/postgres"
	"github.com/urfave/cli/v2"
)

type seasonality string

const (
	seasonSteady     seasonality = "steady"
	seasonNewYear    seasonality = "new_year_peak"
	seasonSummerPeak seasonality = "summer_peak"
)

type demoProduct struct {
	SKU           string
	Name          string
	Category      string
	CurrentStock  int
	UnitCost      float64
	SellingPrice  float64
	LeadTimeDays  int
	MinOrderQty   int
	AvgDailySales float64
	Seasonality   seasonality
}

// Fitness/wellness demo catalog.
var demoCatalog = []demoProduct{
	{"PROT-WH-1KG", "whey protein isolate 1kg", "supplements", 45, 800, 1499, 5, 20, 8, seasonNewYear},
	{"PROT-CS-1KG", "casein protein 1kg", "supplements", 120, 900, 1799, 5, 20, 5, seasonSteady},
	{"BCAA-500G", "bcaa powder 500g", "supplements", 15, 450, 899, 7, 30, 6, seasonSummerPeak},
	{"CREAT-300G", "creatine monohydrate 300g", "supplements", 89, 350, 699, 5, 25, 4, seasonSteady},
	{"GYMB-5KG", "dumbbell set 5kg", "fitness equipment", 8, 600, 1299, 10, 10, 3, seasonNewYear},
	{"GYMB-10KG", "dumbbell set 10kg", "fitness equipment", 25, 1100, 2199, 10, 10, 2, seasonNewYear},
	{"YMAT-PRO", "premium yoga mat", "fitness equipment", 150, 300, 799, 7, 50, 7, seasonNewYear},
	{"BAND-SET", "resistance band set", "fitness equipment", 34, 250, 599, 7, 30, 5, seasonSteady},
	{"SNAK-PBAR", "protein bars box (12 bars)", "snacks", 200, 180, 399, 3, 100, 15, seasonSteady},
	{"SNAK-NUT", "mixed nuts pack 500g", "snacks", 67, 220, 499, 3, 50, 8, seasonSteady},
	{"BTLL-750ML", "insulated water bottle 750ml", "accessories", 180, 200, 499, 5, 40, 10, seasonSummerPeak},
	{"GLOVE-GYM", "gym gloves pair", "accessories", 5, 150, 399, 7, 25, 4, seasonNewYear},
}

func (p demoProduct) toDomain() domain.Product {
	return domain.Product{
		SKU:                  p.SKU,
		Name:                 p.Name,
		Category:             p.Category,
		CurrentStock:         p.CurrentStock,
		UnitCost:             p.UnitCost,
		SellingPrice:         p.SellingPrice,
		SupplierLeadTimeDays: p.LeadTimeDays,
		MinOrderQuantity:     p.MinOrderQty,
	}
}

func seedProducts(c *cli.Context) error {
	repo := postgres.NewProductRepository(dbFromContext(c))

	products := make([]domain.Product, len(demoCatalog))
	for i, p := range demoCatalog {
		products[i] = p.toDomain()
	}

	if err := repo.UpsertProducts(c.Context, products); err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}

	log.Printf("seeded %d products", len(products))
	return nil
}

func seedSales(c *cli.Context) error {
	repo := postgres.NewSalesRepository(dbFromContext(c))
	days := c.Int("days")

	seed := c.Int64("rand-seed")
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	total := 0
	for _, p := range demoCatalog {
		observations := generateObservations(rng, p, days)
		if err := repo.AddObservations(c.Context, p.SKU, observations); err != nil {
			return fmt.Errorf("failed to generate sales for %s: %w", p.SKU, err)
		}
		total += len(observations)
	}

	log.Printf("generated %d sales records over %d days", total, days)
	return nil
}

// generateObservations produces a daily series with seasonal peaks, a Sunday
// dip and a mild growth trend toward the present. Zero-sale days are absent
// from the series rather than stored as zero rows.
func generateObservations(rng *rand.Rand, p demoProduct, days int) []domain.SalesObservation {
	observations := make([]domain.SalesObservation, 0, days)

	now := time.Now()
	for i := 0; i < days; i++ {
		date := now.AddDate(0, 0, -(days - i))

		quantity := float64(poisson(rng, p.AvgDailySales))

		month := date.Month()
		switch p.Seasonality {
		case seasonNewYear:
			if month == time.January || month == time.February {
				quantity *= 1.8
			} else if month == time.November || month == time.December {
				quantity *= 1.3
			}
		case seasonSummerPeak:
			if month >= time.May && month <= time.August {
				quantity *= 1.5
			}
		}

		// Lower sales on Sundays
		if date.Weekday() == time.Sunday {
			quantity *= 0.7
		}

		// Earlier days are scaled down: ~5% monthly growth toward today
		growth := 1 + 0.05*float64(days-i)/30
		qty := int(quantity / growth)
		if qty <= 0 {
			continue
		}

		observations = append(observations, domain.SalesObservation{
			Date:     date,
			Quantity: qty,
			Revenue:  float64(qty) * p.SellingPrice,
		})
	}

	return observations
}

// poisson draws a Poisson-distributed sample via Knuth's method. Fine for
// the small means used in the demo catalog.
func poisson(rng *rand.Rand, mean float64) int {
	if mean <= 0 {
		return 0
	}

	limit := math.Exp(-mean)
	k := 0
	p := 1.0
	for {
		p *= rng.Float64()
		if p <= limit {
			return k
		}
		k++
	}
}
