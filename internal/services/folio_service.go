package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hoteliq/backend/internal/audit"
	"github.com/hoteliq/backend/internal/metrics"
	"github.com/hoteliq/backend/internal/models"
	"github.com/hoteliq/backend/internal/money"
)

// FolioStore is the external persistence collaborator. Charges and payments
// are appended, never overwritten in place; the only update a charge ever
// sees is its voided flag.
type FolioStore interface {
	SaveFolio(ctx context.Context, folio *models.Folio) error
	AppendCharge(ctx context.Context, charge models.Charge) error
	AppendPayment(ctx context.Context, payment models.Payment) error
	MarkChargeVoided(ctx context.Context, folioID, chargeID string) error
	UpdateFolioStatus(ctx context.Context, folioID string, status models.FolioStatus, closedAt *time.Time) error
}

// folioEntry serializes all mutations of one folio. Cross-folio operations
// run fully parallel; there is no global write lock.
type folioEntry struct {
	mu    sync.Mutex
	folio *models.Folio
}

// FolioService owns the charge and payment lists of every guest account and
// is the sole source of truth for totals. All writes on one folio id go
// through that folio's lock; the persistence collaborator is invoked after a
// successful in-memory transition and its failure is surfaced as a retryable
// error, never swallowed.
type FolioService struct {
	mu     sync.RWMutex
	folios map[string]*folioEntry
	store  FolioStore
	audit  *audit.Logger
}

func NewFolioService(store FolioStore) *FolioService {
	return &FolioService{
		folios: make(map[string]*folioEntry),
		store:  store,
		audit:  audit.NewLogger(),
	}
}

// Open registers a new folio in Pending state. It flips to Open on the first
// successful post.
func (s *FolioService) Open(ctx context.Context, bookingID, guestRef, currency string) (*models.Folio, error) {
	if !money.Supported(currency) {
		return nil, validationErr(bookingID, money.ErrUnknownCurrency, "currency %q", currency)
	}

	folio := &models.Folio{
		ID:        uuid.New().String(),
		BookingID: bookingID,
		GuestRef:  guestRef,
		Currency:  currency,
		Status:    models.FolioPending,
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.folios[folio.ID] = &folioEntry{folio: folio}
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.SaveFolio(ctx, folio); err != nil {
			return nil, &RetryableError{Op: "save folio", Ref: folio.ID, Err: err}
		}
	}
	return snapshotFolio(folio), nil
}

func (s *FolioService) entry(folioID string) (*folioEntry, error) {
	s.mu.RLock()
	e, ok := s.folios[folioID]
	s.mu.RUnlock()
	if !ok {
		return nil, notFoundErr(folioID, ErrFolioNotFound, "folio %s", folioID)
	}
	return e, nil
}

// PostCharge appends a non-voided charge and recomputes the balance.
func (s *FolioService) PostCharge(ctx context.Context, folioID string, charge models.Charge) (*models.Charge, error) {
	if charge.Amount < 0 {
		return nil, validationErr(folioID, ErrInvalidAmount, "charge amount %d is negative", charge.Amount)
	}

	e, err := s.entry(folioID)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	f := e.folio
	if f.Status == models.FolioClosed {
		s.audit.LogError("CHARGE_POSTED", folioID, charge.ID, ErrFolioClosed)
		return nil, stateErr(folioID, ErrFolioClosed, "cannot post charge to closed folio")
	}
	if charge.Currency != "" && charge.Currency != f.Currency {
		return nil, validationErr(folioID, ErrInvalidAmount, "charge currency %q does not match folio currency %q", charge.Currency, f.Currency)
	}

	if charge.ID == "" {
		charge.ID = uuid.New().String()
	}
	charge.FolioID = f.ID
	charge.Currency = f.Currency
	charge.Voided = false
	if charge.PostedAt.IsZero() {
		charge.PostedAt = time.Now().UTC()
	}

	f.Charges = append(f.Charges, charge)
	if f.Status == models.FolioPending {
		f.Status = models.FolioOpen
	}

	if s.store != nil {
		if err := s.store.AppendCharge(ctx, charge); err != nil {
			return nil, &RetryableError{Op: "append charge", Ref: charge.ID, Err: err}
		}
	}

	metrics.ChargesPosted.Inc()
	s.audit.LogPost("CHARGE_POSTED", f.ID, charge.ID, charge.Amount, f.Balance())
	posted := charge
	return &posted, nil
}

// PostPayment appends a payment and recomputes the balance. Payments against
// a closed folio are rejected; adjustments after close open a new folio.
func (s *FolioService) PostPayment(ctx context.Context, folioID string, payment models.Payment) (*models.Payment, error) {
	if !models.ValidPaymentMethod(payment.Method) {
		return nil, validationErr(folioID, ErrInvalidAmount, "unknown payment method %q", payment.Method)
	}

	e, err := s.entry(folioID)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	f := e.folio
	if f.Status == models.FolioClosed {
		s.audit.LogError("PAYMENT_POSTED", folioID, payment.ID, ErrFolioClosed)
		return nil, stateErr(folioID, ErrFolioClosed, "cannot post payment to closed folio; open an adjustment folio")
	}
	if payment.Currency != "" && payment.Currency != f.Currency {
		return nil, validationErr(folioID, ErrInvalidAmount, "payment currency %q does not match folio currency %q", payment.Currency, f.Currency)
	}

	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}
	payment.FolioID = f.ID
	payment.Currency = f.Currency
	if payment.PostedAt.IsZero() {
		payment.PostedAt = time.Now().UTC()
	}

	f.Payments = append(f.Payments, payment)
	if f.Status == models.FolioPending {
		f.Status = models.FolioOpen
	}

	if s.store != nil {
		if err := s.store.AppendPayment(ctx, payment); err != nil {
			return nil, &RetryableError{Op: "append payment", Ref: payment.ID, Err: err}
		}
	}

	metrics.PaymentsPosted.Inc()
	s.audit.LogPost("PAYMENT_POSTED", f.ID, payment.ID, payment.Amount, f.Balance())
	posted := payment
	return &posted, nil
}

// VoidCharge flags a charge voided. The entry stays in the list; the audit
// trail never loses a row.
func (s *FolioService) VoidCharge(ctx context.Context, folioID, chargeID string) error {
	e, err := s.entry(folioID)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	f := e.folio
	if f.Status == models.FolioClosed {
		return stateErr(folioID, ErrFolioClosed, "cannot void charge on closed folio")
	}

	for i := range f.Charges {
		if f.Charges[i].ID != chargeID {
			continue
		}
		if f.Charges[i].Voided {
			return stateErr(chargeID, ErrAlreadyVoided, "charge %s already voided", chargeID)
		}
		f.Charges[i].Voided = true

		if s.store != nil {
			if err := s.store.MarkChargeVoided(ctx, folioID, chargeID); err != nil {
				return &RetryableError{Op: "void charge", Ref: chargeID, Err: err}
			}
		}

		metrics.ChargesVoided.Inc()
		s.audit.LogPost("CHARGE_VOIDED", f.ID, chargeID, -f.Charges[i].Amount, f.Balance())
		return nil
	}
	return notFoundErr(chargeID, ErrChargeNotFound, "charge %s not on folio %s", chargeID, folioID)
}

// Close transitions Open to Closed. This is the single correctness gate: a
// folio only ever closes on a zero balance, and Closed is terminal.
func (s *FolioService) Close(ctx context.Context, folioID string) error {
	e, err := s.entry(folioID)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	f := e.folio
	if f.Status == models.FolioClosed {
		return stateErr(folioID, ErrFolioClosed, "folio already closed")
	}
	if f.Status != models.FolioOpen {
		return stateErr(folioID, ErrFolioClosed, "folio %s is not open", folioID)
	}
	if balance := f.Balance(); balance != 0 {
		return stateErr(folioID, ErrBalanceNotZero, "balance is %d", balance)
	}

	now := time.Now().UTC()
	f.Status = models.FolioClosed
	f.ClosedAt = &now

	if s.store != nil {
		if err := s.store.UpdateFolioStatus(ctx, folioID, models.FolioClosed, &now); err != nil {
			return &RetryableError{Op: "close folio", Ref: folioID, Err: err}
		}
	}

	metrics.FoliosClosed.Inc()
	s.audit.LogClose(folioID)
	return nil
}

// BalanceOf is a pure read.
func (s *FolioService) BalanceOf(folioID string) (int64, error) {
	e, err := s.entry(folioID)
	if err != nil {
		return 0, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.folio.Balance(), nil
}

// Get returns a deep-copied snapshot, never a handle into live state.
func (s *FolioService) Get(folioID string) (*models.Folio, error) {
	e, err := s.entry(folioID)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return snapshotFolio(e.folio), nil
}

// View builds the read-only UI projection with display-formatted amounts.
func (s *FolioService) View(folioID string) (*models.FolioView, error) {
	f, err := s.Get(folioID)
	if err != nil {
		return nil, err
	}

	view := &models.FolioView{
		FolioID:       f.ID,
		GuestLabel:    f.GuestRef,
		Currency:      f.Currency,
		Status:        f.Status,
		TotalCharges:  f.TotalCharges(),
		TotalPayments: f.TotalPayments(),
		Balance:       f.Balance(),
		Lines:         make([]models.FolioLine, 0, len(f.Charges)+len(f.Payments)),
	}

	for _, c := range f.Charges {
		display, err := money.Format(c.Amount, f.Currency)
		if err != nil {
			return nil, err
		}
		view.Lines = append(view.Lines, models.FolioLine{
			ID:          c.ID,
			Kind:        models.KindCharge,
			Description: c.Description,
			Amount:      c.Amount,
			Display:     display,
			Voided:      c.Voided,
			PostedAt:    c.PostedAt,
		})
	}
	for _, p := range f.Payments {
		display, err := money.Format(p.Amount, f.Currency)
		if err != nil {
			return nil, err
		}
		desc := string(p.Method)
		if p.Reference != "" {
			desc += " " + p.Reference
		}
		view.Lines = append(view.Lines, models.FolioLine{
			ID:          p.ID,
			Kind:        models.KindPayment,
			Description: desc,
			Amount:      p.Amount,
			Display:     display,
			PostedAt:    p.PostedAt,
		})
	}
	return view, nil
}

// Snapshot returns deep copies of every folio, for the reporting projection.
func (s *FolioService) Snapshot() []*models.Folio {
	s.mu.RLock()
	entries := make([]*folioEntry, 0, len(s.folios))
	for _, e := range s.folios {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	out := make([]*models.Folio, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		out = append(out, snapshotFolio(e.folio))
		e.mu.Unlock()
	}
	return out
}

func snapshotFolio(f *models.Folio) *models.Folio {
	cp := *f
	cp.Charges = append([]models.Charge(nil), f.Charges...)
	cp.Payments = append([]models.Payment(nil), f.Payments...)
	if f.ClosedAt != nil {
		t := *f.ClosedAt
		cp.ClosedAt = &t
	}
	return &cp
}
