package apitest

import (
	"fmt"
	"time"

	"github.com/vfg2006/metrics-dashboard/internal/domain"
)

// Rows gera n linhas em dias consecutivos a partir de 2024-03-01
func Rows(n int) []domain.MetricRow {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	rows := make([]domain.MetricRow, 0, n)
	for i := 0; i < n; i++ {
		cost := float64((i + 1) * 1000)
		rows = append(rows, domain.MetricRow{
			Date:         fmt.Sprintf("%s 00:00:00", base.AddDate(0, 0, i).Format(time.DateOnly)),
			AccountID:    8181642239,
			CampaignID:   int64(6320590762 + i),
			Impressions:  float64(100 + i),
			Clicks:       float64(i),
			Conversions:  float64(i % 3),
			Interactions: float64(2 * i),
			CostMicros:   &cost,
		})
	}
	return rows
}
