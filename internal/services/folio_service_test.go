package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hoteliq/backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func openTestFolio(t *testing.T, svc *FolioService) *models.Folio {
	t.Helper()
	folio, err := svc.Open(context.Background(), "booking-1", "Guest, A", "USD")
	assert.NoError(t, err)
	return folio
}

func TestFolioService_Open(t *testing.T) {
	svc := NewFolioService(nil)

	t.Run("opens in pending state", func(t *testing.T) {
		folio := openTestFolio(t, svc)
		assert.Equal(t, models.FolioPending, folio.Status)
		assert.Equal(t, "USD", folio.Currency)
		assert.NotEmpty(t, folio.ID)
	})

	t.Run("rejects unknown currency", func(t *testing.T) {
		_, err := svc.Open(context.Background(), "booking-2", "Guest, B", "XXX")
		assert.True(t, IsKind(err, KindValidation))
	})
}

func TestFolioService_Balance(t *testing.T) {
	svc := NewFolioService(nil)
	ctx := context.Background()
	folio := openTestFolio(t, svc)

	t.Run("charge then partial payment leaves remainder", func(t *testing.T) {
		_, err := svc.PostCharge(ctx, folio.ID, models.Charge{Description: "Room night", Amount: 45000})
		assert.NoError(t, err)

		_, err = svc.PostPayment(ctx, folio.ID, models.Payment{Amount: 30000, Method: models.MethodCash})
		assert.NoError(t, err)

		balance, err := svc.BalanceOf(folio.ID)
		assert.NoError(t, err)
		assert.Equal(t, int64(15000), balance)
	})

	t.Run("close fails on outstanding balance", func(t *testing.T) {
		err := svc.Close(ctx, folio.ID)
		assert.True(t, IsKind(err, KindState))
		assert.ErrorIs(t, err, ErrBalanceNotZero)
	})

	t.Run("close succeeds once settled", func(t *testing.T) {
		_, err := svc.PostPayment(ctx, folio.ID, models.Payment{Amount: 15000, Method: models.MethodCardPayment})
		assert.NoError(t, err)

		assert.NoError(t, svc.Close(ctx, folio.ID))

		got, err := svc.Get(folio.ID)
		assert.NoError(t, err)
		assert.Equal(t, models.FolioClosed, got.Status)
		assert.NotNil(t, got.ClosedAt)
	})

	t.Run("closed folio rejects further posts", func(t *testing.T) {
		_, err := svc.PostCharge(ctx, folio.ID, models.Charge{Description: "Minibar", Amount: 1200})
		assert.True(t, IsKind(err, KindState))
		assert.ErrorIs(t, err, ErrFolioClosed)

		_, err = svc.PostPayment(ctx, folio.ID, models.Payment{Amount: 1200, Method: models.MethodCash})
		assert.ErrorIs(t, err, ErrFolioClosed)
	})

	t.Run("close is not repeatable", func(t *testing.T) {
		err := svc.Close(ctx, folio.ID)
		assert.True(t, IsKind(err, KindState))
	})
}

func TestFolioService_PostCharge(t *testing.T) {
	svc := NewFolioService(nil)
	ctx := context.Background()

	t.Run("first post flips pending to open", func(t *testing.T) {
		folio := openTestFolio(t, svc)
		_, err := svc.PostCharge(ctx, folio.ID, models.Charge{Description: "Room night", Amount: 10000})
		assert.NoError(t, err)

		got, err := svc.Get(folio.ID)
		assert.NoError(t, err)
		assert.Equal(t, models.FolioOpen, got.Status)
	})

	t.Run("rejects negative amount", func(t *testing.T) {
		folio := openTestFolio(t, svc)
		_, err := svc.PostCharge(ctx, folio.ID, models.Charge{Amount: -500})
		assert.True(t, IsKind(err, KindValidation))
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("rejects mismatched currency", func(t *testing.T) {
		folio := openTestFolio(t, svc)
		_, err := svc.PostCharge(ctx, folio.ID, models.Charge{Amount: 500, Currency: "EUR"})
		assert.True(t, IsKind(err, KindValidation))
	})

	t.Run("unknown folio", func(t *testing.T) {
		_, err := svc.PostCharge(ctx, "nope", models.Charge{Amount: 500})
		assert.True(t, IsKind(err, KindNotFound))
		assert.ErrorIs(t, err, ErrFolioNotFound)
	})
}

func TestFolioService_PostPayment(t *testing.T) {
	svc := NewFolioService(nil)
	ctx := context.Background()
	folio := openTestFolio(t, svc)

	t.Run("rejects unknown method", func(t *testing.T) {
		_, err := svc.PostPayment(ctx, folio.ID, models.Payment{Amount: 100, Method: "IOU"})
		assert.True(t, IsKind(err, KindValidation))
	})

	t.Run("overpayment yields negative balance", func(t *testing.T) {
		_, err := svc.PostCharge(ctx, folio.ID, models.Charge{Amount: 100})
		assert.NoError(t, err)
		_, err = svc.PostPayment(ctx, folio.ID, models.Payment{Amount: 250, Method: models.MethodCash})
		assert.NoError(t, err)

		balance, err := svc.BalanceOf(folio.ID)
		assert.NoError(t, err)
		assert.Equal(t, int64(-150), balance)
	})
}

func TestFolioService_VoidCharge(t *testing.T) {
	svc := NewFolioService(nil)
	ctx := context.Background()
	folio := openTestFolio(t, svc)

	charge, err := svc.PostCharge(ctx, folio.ID, models.Charge{Description: "Laundry", Amount: 2500})
	assert.NoError(t, err)

	t.Run("void excludes charge from balance but keeps the row", func(t *testing.T) {
		assert.NoError(t, svc.VoidCharge(ctx, folio.ID, charge.ID))

		balance, err := svc.BalanceOf(folio.ID)
		assert.NoError(t, err)
		assert.Equal(t, int64(0), balance)

		got, err := svc.Get(folio.ID)
		assert.NoError(t, err)
		assert.Len(t, got.Charges, 1)
		assert.True(t, got.Charges[0].Voided)
	})

	t.Run("second void is rejected", func(t *testing.T) {
		err := svc.VoidCharge(ctx, folio.ID, charge.ID)
		assert.True(t, IsKind(err, KindState))
		assert.ErrorIs(t, err, ErrAlreadyVoided)
	})

	t.Run("unknown charge", func(t *testing.T) {
		err := svc.VoidCharge(ctx, folio.ID, "nope")
		assert.True(t, IsKind(err, KindNotFound))
		assert.ErrorIs(t, err, ErrChargeNotFound)
	})
}

func TestFolioService_View(t *testing.T) {
	svc := NewFolioService(nil)
	ctx := context.Background()
	folio := openTestFolio(t, svc)

	_, err := svc.PostCharge(ctx, folio.ID, models.Charge{Description: "Room night", Amount: 12345})
	assert.NoError(t, err)
	_, err = svc.PostPayment(ctx, folio.ID, models.Payment{Amount: 12345, Method: models.MethodCardPayment, Reference: "auth-77"})
	assert.NoError(t, err)

	view, err := svc.View(folio.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), view.Balance)
	assert.Len(t, view.Lines, 2)
	assert.Equal(t, "$123.45", view.Lines[0].Display)
	assert.Equal(t, "CARD_PAYMENT auth-77", view.Lines[1].Description)
}

// brokenStore simulates a persistence outage after the in-memory transition.
type brokenStore struct {
	err error
}

func (b *brokenStore) SaveFolio(ctx context.Context, folio *models.Folio) error { return nil }
func (b *brokenStore) AppendCharge(ctx context.Context, charge models.Charge) error {
	return b.err
}
func (b *brokenStore) AppendPayment(ctx context.Context, payment models.Payment) error {
	return b.err
}
func (b *brokenStore) MarkChargeVoided(ctx context.Context, folioID, chargeID string) error {
	return b.err
}
func (b *brokenStore) UpdateFolioStatus(ctx context.Context, folioID string, status models.FolioStatus, closedAt *time.Time) error {
	return b.err
}

func TestFolioService_StoreFailureIsRetryable(t *testing.T) {
	boom := errors.New("connection reset")
	svc := NewFolioService(&brokenStore{err: boom})
	ctx := context.Background()

	folio, err := svc.Open(ctx, "booking-9", "Guest, R", "USD")
	assert.NoError(t, err)

	_, err = svc.PostCharge(ctx, folio.ID, models.Charge{Amount: 100})
	var re *RetryableError
	assert.ErrorAs(t, err, &re)
	assert.ErrorIs(t, err, boom)
}
