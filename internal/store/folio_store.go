// Package store is the durable collaborator behind the in-memory ledger.
// Charges and payments are INSERT-only; the single UPDATE a charge ever
// receives is its voided flag.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hoteliq/backend/internal/models"
)

type PostgresFolioStore struct {
	db *sql.DB
}

func NewPostgresFolioStore(db *sql.DB) *PostgresFolioStore {
	return &PostgresFolioStore{db: db}
}

func (s *PostgresFolioStore) SaveFolio(ctx context.Context, folio *models.Folio) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO folios (id, booking_id, guest_ref, currency, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		folio.ID, folio.BookingID, folio.GuestRef, folio.Currency, folio.Status, folio.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert folio: %w", err)
	}
	return nil
}

func (s *PostgresFolioStore) AppendCharge(ctx context.Context, charge models.Charge) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO folio_charges (id, folio_id, source_type, source_ref, description, amount, currency, voided, posted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		charge.ID, charge.FolioID, charge.SourceType, charge.SourceRef,
		charge.Description, charge.Amount, charge.Currency, charge.Voided, charge.PostedAt)
	if err != nil {
		return fmt.Errorf("append charge: %w", err)
	}
	return nil
}

func (s *PostgresFolioStore) AppendPayment(ctx context.Context, payment models.Payment) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO folio_payments (id, folio_id, amount, currency, method, reference, posted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		payment.ID, payment.FolioID, payment.Amount, payment.Currency,
		payment.Method, payment.Reference, payment.PostedAt)
	if err != nil {
		return fmt.Errorf("append payment: %w", err)
	}
	return nil
}

func (s *PostgresFolioStore) MarkChargeVoided(ctx context.Context, folioID, chargeID string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE folio_charges SET voided = TRUE
		WHERE id = $1 AND folio_id = $2 AND voided = FALSE`,
		chargeID, folioID)
	if err != nil {
		return fmt.Errorf("void charge: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("charge %s not voidable on folio %s", chargeID, folioID)
	}
	return nil
}

func (s *PostgresFolioStore) UpdateFolioStatus(ctx context.Context, folioID string, status models.FolioStatus, closedAt *time.Time) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE folios SET status = $1, closed_at = $2
		WHERE id = $3 AND status <> 'CLOSED'`,
		status, closedAt, folioID)
	if err != nil {
		return fmt.Errorf("update folio status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("folio %s not updatable", folioID)
	}
	return nil
}
