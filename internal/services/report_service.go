package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/hoteliq/backend/internal/models"
)

const reportCacheKey = "report:summary"
const reportCacheTTL = 30 * time.Second

// ReportService derives read-only summaries from the folio collection for
// the dashboard and report screens. It never mutates a folio.
type ReportService struct {
	folios *FolioService
	redis  *redis.Client
}

func NewReportService(folios *FolioService, rdb *redis.Client) *ReportService {
	return &ReportService{folios: folios, redis: rdb}
}

// Summarize folds a set of folio snapshots into aggregate totals. Pure
// function; an empty collection yields a zeroed summary, never an error.
func Summarize(folios []*models.Folio) *models.ReportSummary {
	summary := &models.ReportSummary{
		RevenueByCategory: make(map[models.SourceType]int64),
	}

	for _, f := range folios {
		switch f.Status {
		case models.FolioOpen:
			summary.OpenFolios++
		case models.FolioClosed:
			summary.ClosedFolios++
		}
		summary.TotalOutstanding += f.Balance()
		summary.PaymentCount += len(f.Payments)

		for _, c := range f.Charges {
			summary.ChargeCount++
			if !c.Voided {
				summary.RevenueByCategory[c.SourceType] += c.Amount
			}
		}
	}
	return summary
}

// Summary returns the current aggregate view, served from a short-lived
// redis cache when one is configured.
func (s *ReportService) Summary(ctx context.Context) (*models.ReportSummary, error) {
	if s.redis != nil {
		if data, err := s.redis.Get(ctx, reportCacheKey).Bytes(); err == nil {
			var cached models.ReportSummary
			if json.Unmarshal(data, &cached) == nil {
				return &cached, nil
			}
		}
	}

	summary := Summarize(s.folios.Snapshot())

	if s.redis != nil {
		if data, err := json.Marshal(summary); err == nil {
			s.redis.Set(ctx, reportCacheKey, data, reportCacheTTL)
		}
	}
	return summary, nil
}
