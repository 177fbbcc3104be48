package analytics

import (
	"context"
	"time"

	"gstbill/internal/caching"
	"gstbill/internal/common"
	"gstbill/internal/models"
	"gstbill/internal/repositories"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	reportTTL     = 5 * time.Minute
	defaultPeriod = 30 * 24 * time.Hour
)

// SalesReport is a tenant's sales for a period, built from stored invoice
// figures only.
type SalesReport struct {
	From        time.Time                 `json:"from"`
	To          time.Time                 `json:"to"`
	Summary     models.SalesSummary       `json:"summary"`
	Daily       []models.DailySales       `json:"daily"`
	GSTByRate   []models.GSTRateBreakdown `json:"gst_by_rate"`
	GeneratedAt time.Time                 `json:"generated_at"`
}

type Service interface {
	// SalesReport covers [from, to). A nil to means now and a nil from means
	// thirty days before the end.
	SalesReport(ctx context.Context, tenantID uuid.UUID, from, to *time.Time) (*SalesReport, error)
}

type service struct {
	invoices repositories.InvoiceRepository
	cache    caching.CacheService
	logger   *logrus.Entry
	now      func() time.Time
}

func NewService(invoices repositories.InvoiceRepository, cache caching.CacheService, logger *logrus.Logger) Service {
	return &service{
		invoices: invoices,
		cache:    cache,
		logger:   logger.WithField("component", "analytics"),
		now:      time.Now,
	}
}

func (s *service) SalesReport(ctx context.Context, tenantID uuid.UUID, from, to *time.Time) (*SalesReport, error) {
	// Open-ended reports run to the next whole minute so repeated requests share a cache entry.
	end := s.now().UTC().Truncate(time.Minute).Add(time.Minute)
	if to != nil {
		end = to.UTC()
	}
	start := end.Add(-defaultPeriod)
	if from != nil {
		start = from.UTC()
	}
	if err := common.ValidateDateRange(start, end); err != nil {
		return nil, err
	}

	key := caching.ReportKey(tenantID, "sales", start.Format(time.RFC3339), end.Format(time.RFC3339))
	var cached SalesReport
	if found, err := s.cache.GetJSON(ctx, key, &cached); err != nil {
		s.logger.WithError(err).Warn("report cache read failed")
	} else if found {
		return &cached, nil
	}

	summary, err := s.invoices.SalesSummary(ctx, tenantID, start, end)
	if err != nil {
		return nil, err
	}
	daily, err := s.invoices.DailySales(ctx, tenantID, start, end)
	if err != nil {
		return nil, err
	}
	rates, err := s.invoices.GSTBreakdown(ctx, tenantID, start, end)
	if err != nil {
		return nil, err
	}

	report := &SalesReport{
		From:        start,
		To:          end,
		Summary:     *summary,
		Daily:       daily,
		GSTByRate:   rates,
		GeneratedAt: s.now().UTC(),
	}
	// Reports may lag new invoices by up to reportTTL.
	if err := s.cache.SetJSON(ctx, key, report, reportTTL); err != nil {
		s.logger.WithError(err).Warn("report cache write failed")
	}
	return report, nil
}
