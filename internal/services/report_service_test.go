package services

import (
	"context"
	"testing"

	"github.com/hoteliq/backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	t.Run("empty collection yields a zeroed summary", func(t *testing.T) {
		summary := Summarize(nil)
		assert.Equal(t, int64(0), summary.TotalOutstanding)
		assert.Equal(t, 0, summary.OpenFolios)
		assert.Equal(t, 0, summary.ClosedFolios)
		assert.Equal(t, 0, summary.ChargeCount)
		assert.Equal(t, 0, summary.PaymentCount)
		assert.Empty(t, summary.RevenueByCategory)
	})

	t.Run("folds charges, payments and voids", func(t *testing.T) {
		folios := []*models.Folio{
			{
				Status: models.FolioOpen,
				Charges: []models.Charge{
					{SourceType: models.SourceStay, Amount: 45000},
					{SourceType: models.SourceOrder, Amount: 2500},
					{SourceType: models.SourceOrder, Amount: 900, Voided: true},
				},
				Payments: []models.Payment{
					{Amount: 30000},
				},
			},
			{
				Status: models.FolioClosed,
				Charges: []models.Charge{
					{SourceType: models.SourceScheduledService, Amount: 8000},
				},
				Payments: []models.Payment{
					{Amount: 8000},
				},
			},
		}

		summary := Summarize(folios)
		assert.Equal(t, int64(17500), summary.TotalOutstanding)
		assert.Equal(t, 1, summary.OpenFolios)
		assert.Equal(t, 1, summary.ClosedFolios)
		assert.Equal(t, 4, summary.ChargeCount)
		assert.Equal(t, 2, summary.PaymentCount)
		assert.Equal(t, int64(45000), summary.RevenueByCategory[models.SourceStay])
		assert.Equal(t, int64(2500), summary.RevenueByCategory[models.SourceOrder])
		assert.Equal(t, int64(8000), summary.RevenueByCategory[models.SourceScheduledService])
	})
}

func TestReportService_Summary(t *testing.T) {
	ctx := context.Background()
	folios := NewFolioService(nil)
	svc := NewReportService(folios, nil)

	folio, err := folios.Open(ctx, "booking-1", "Guest, A", "USD")
	assert.NoError(t, err)
	_, err = folios.PostCharge(ctx, folio.ID, models.Charge{SourceType: models.SourceStay, Amount: 45000})
	assert.NoError(t, err)
	_, err = folios.PostPayment(ctx, folio.ID, models.Payment{Amount: 30000, Method: models.MethodCash})
	assert.NoError(t, err)

	summary, err := svc.Summary(ctx)
	assert.NoError(t, err)
	assert.Equal(t, int64(15000), summary.TotalOutstanding)
	assert.Equal(t, 1, summary.OpenFolios)
	assert.Equal(t, int64(45000), summary.RevenueByCategory[models.SourceStay])
}
