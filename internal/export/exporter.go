// internal/export/exporter.go
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/andresuchdata/supply-agent-go/internal/domain"
	"github.com/andresuchdata/supply-agent-go/internal/storage"
	"github.com/rs/zerolog/log"
)

const reportPrefix = "reorder-reports"

// ReportExporter renders a recommendation batch as CSV and uploads it to
// object storage for downstream purchasing tools.
type ReportExporter struct {
	store storage.ObjectStorage
}

func NewReportExporter(store storage.ObjectStorage) *ReportExporter {
	return &ReportExporter{store: store}
}

// Export writes the urgency-ordered batch under
// reorder-reports/YYYY-MM-DD/HHMMSS.csv and returns the object key.
func (e *ReportExporter) Export(ctx context.Context, recs []domain.ReorderRecommendation) (string, error) {
	data, err := RenderCSV(recs)
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	key := fmt.Sprintf("%s/%s/%s.csv", reportPrefix, now.Format("2006-01-02"), now.Format("150405"))

	if err := e.store.UploadObject(ctx, key, data, "text/csv"); err != nil {
		return "", fmt.Errorf("uploading report failed: %w", err)
	}

	log.Info().Str("key", key).Int("recommendations", len(recs)).Msg("reorder report exported")
	return key, nil
}

// ListReports returns every stored report. Keys sort chronologically by
// construction of the dated prefix.
func (e *ReportExporter) ListReports(ctx context.Context) ([]storage.ObjectInfo, error) {
	reports, err := e.store.ListObjects(ctx, reportPrefix+"/")
	if err != nil {
		return nil, fmt.Errorf("listing reports failed: %w", err)
	}

	return reports, nil
}

// RenderCSV serializes recommendations preserving their sort order. Unknown
// stockout fields render as empty cells, not zeros.
func RenderCSV(recs []domain.ReorderRecommendation) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	header := []string{
		"sku", "product_name", "current_stock", "reorder_point",
		"recommended_quantity", "estimated_stockout_date", "days_until_stockout",
		"urgency_level", "expected_demand_7days", "expected_demand_30days",
		"safety_stock", "total_cost", "reason",
	}
	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("writing report header failed: %w", err)
	}

	for _, rec := range recs {
		stockoutDate := ""
		if rec.EstimatedStockoutDate != nil {
			stockoutDate = rec.EstimatedStockoutDate.Format("2006-01-02")
		}
		daysUntil := ""
		if rec.DaysUntilStockout != nil {
			daysUntil = strconv.Itoa(*rec.DaysUntilStockout)
		}

		row := []string{
			rec.SKU,
			rec.ProductName,
			strconv.Itoa(rec.CurrentStock),
			strconv.Itoa(rec.ReorderPoint),
			strconv.Itoa(rec.RecommendedQuantity),
			stockoutDate,
			daysUntil,
			string(rec.UrgencyLevel),
			strconv.Itoa(rec.ExpectedDemand7Days),
			strconv.Itoa(rec.ExpectedDemand30Days),
			strconv.Itoa(rec.SafetyStock),
			strconv.FormatFloat(rec.TotalCost, 'f', 2, 64),
			rec.Reason,
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("writing report row for %s failed: %w", rec.SKU, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flushing report failed: %w", err)
	}

	return buf.Bytes(), nil
}
