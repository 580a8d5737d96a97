package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/andresuchdata/supply-agent-go/internal/repository/postgres"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

type dbKeyType struct{}

var dbKey = dbKeyType{}

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func initDB(c *cli.Context) error {
	db, err := postgres.NewDBFromURL(c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	c.Context = context.WithValue(c.Context, dbKey, db)
	return nil
}

func closeDB(c *cli.Context) error {
	if db, ok := c.Context.Value(dbKey).(*postgres.DB); ok && db != nil {
		return db.Close()
	}
	return nil
}

func dbFromContext(c *cli.Context) *postgres.DB {
	db, _ := c.Context.Value(dbKey).(*postgres.DB)
	return db
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "seed",
		Usage: "Seed the database with demo catalog and sales data",
		Flags: []cli.Flag{
			newDBURLFlag(),
		},
		Commands: []*cli.Command{
			{
				Name:   "schema",
				Usage:  "Create the products and sales_history tables",
				Flags:  []cli.Flag{newDBURLFlag()},
				Before: initDB,
				After:  closeDB,
				Action: createSchema,
			},
			{
				Name:   "products",
				Usage:  "Seed the demo product catalog",
				Flags:  []cli.Flag{newDBURLFlag()},
				Before: initDB,
				After:  closeDB,
				Action: seedProducts,
			},
			{
				Name:  "sales",
				Usage: "Generate synthetic sales history for the demo catalog",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.IntFlag{
						Name:  "days",
						Usage: "Number of days of history to generate",
						Value: 180,
					},
					&cli.Int64Flag{
						Name:  "rand-seed",
						Usage: "Seed for the sales generator (0 = time-based)",
						Value: 0,
					},
				},
				Before: initDB,
				After:  closeDB,
				Action: seedSales,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func createSchema(c *cli.Context) error {
	db := dbFromContext(c)

	statements := []string{
		`CREATE TABLE IF NOT EXISTS products (
			sku TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			category TEXT,
			current_stock INTEGER DEFAULT 0,
			unit_cost NUMERIC DEFAULT 0,
			selling_price NUMERIC DEFAULT 0,
			supplier_lead_time_days INTEGER DEFAULT 7,
			min_order_quantity INTEGER DEFAULT 10,
			last_updated TIMESTAMPTZ DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS sales_history (
			id BIGSERIAL PRIMARY KEY,
			sku TEXT NOT NULL REFERENCES products(sku),
			date DATE NOT NULL,
			quantity INTEGER NOT NULL,
			revenue NUMERIC
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sales_history_sku_date ON sales_history (sku, date)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(c.Context, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	log.Println("schema created")
	return nil
}
