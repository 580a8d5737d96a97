// cmd/export/main.go
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/andresuchdata/supply-agent-go/internal/config"
	"github.com/andresuchdata/supply-agent-go/internal/export"
	"github.com/andresuchdata/supply-agent-go/internal/optimizer"
	"github.com/andresuchdata/supply-agent-go/internal/repository/postgres"
	"github.com/andresuchdata/supply-agent-go/internal/service"
	"github.com/andresuchdata/supply-agent-go/internal/storage"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
)

// Standalone report exporter: runs the reorder analysis on demand and
// uploads the resulting CSV to S3-compatible storage.
func main() {
	// Load environment variables from .env file if it exists
	_ = godotenv.Load()

	cfg := config.Load()

	// Initialize object storage
	store, err := storage.NewMinioClient(cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to initialize object storage: %v", err)
	}

	// Initialize database and services
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	productRepo := postgres.NewProductRepository(db)
	salesRepo := postgres.NewSalesRepository(db)
	opt := optimizer.NewOptimizer(cfg.Engine.SafetyFactor, cfg.Engine.OrderBatchSize)
	recommendations := service.NewRecommendationService(productRepo, salesRepo, opt, cfg.Engine)
	exporter := export.NewReportExporter(store)

	r := mux.NewRouter()

	r.HandleFunc("/export", func(w http.ResponseWriter, req *http.Request) {
		recs, err := recommendations.AnalyzeAll(req.Context(), "")
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		key, err := exporter.Export(req.Context(), recs)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"key":             key,
			"recommendations": len(recs),
		})
	}).Methods("POST")

	r.HandleFunc("/reports", func(w http.ResponseWriter, req *http.Request) {
		reports, err := exporter.ListReports(req.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"reports": reports,
			"total":   len(reports),
		})
	}).Methods("GET")

	// Health check endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Exporter listening on %s\n", addr)
	log.Fatal(http.ListenAndServe(addr, r))
}
