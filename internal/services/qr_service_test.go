package services

import (
	"context"
	"testing"

	"github.com/hoteliq/backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestQRService(t *testing.T) {
	ctx := context.Background()
	folios := NewFolioService(nil)
	svc := NewQRService(folios, nil)

	folio, err := folios.Open(ctx, "booking-1", "Guest, A", "USD")
	assert.NoError(t, err)

	t.Run("no outstanding balance, no code", func(t *testing.T) {
		_, _, err := svc.GeneratePaymentQR(ctx, folio.ID)
		assert.True(t, IsKind(err, KindState))
	})

	t.Run("code carries the balance and is single use", func(t *testing.T) {
		_, err := folios.PostCharge(ctx, folio.ID, models.Charge{Description: "Room night", Amount: 45000})
		assert.NoError(t, err)

		code, image, err := svc.GeneratePaymentQR(ctx, folio.ID)
		assert.NoError(t, err)
		assert.NotEmpty(t, code)
		assert.NotEmpty(t, image)

		result, err := svc.ProcessPaymentQR(ctx, code)
		assert.NoError(t, err)
		assert.Equal(t, folio.ID, result["folioId"])
		assert.Equal(t, int64(45000), result["amount"])
		assert.Equal(t, "USD", result["currency"])

		_, err = svc.ProcessPaymentQR(ctx, code)
		assert.True(t, IsKind(err, KindValidation))
	})

	t.Run("unknown folio", func(t *testing.T) {
		_, _, err := svc.GeneratePaymentQR(ctx, "nope")
		assert.True(t, IsKind(err, KindNotFound))
	})

	t.Run("garbage code", func(t *testing.T) {
		_, err := svc.ProcessPaymentQR(ctx, "not-a-code")
		assert.True(t, IsKind(err, KindValidation))
	})
}
