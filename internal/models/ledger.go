package models

import (
	"encoding/json"
	"time"
)

// SourceType identifies the upstream system a ledger item was derived from.
type SourceType string

const (
	SourceStay             SourceType = "STAY"
	SourceOrder            SourceType = "ORDER"
	SourceScheduledService SourceType = "SCHEDULED_SERVICE"
)

// ItemKind tells the aggregator which side of the folio an item lands on.
// Refunds are a distinct signed adjustment, never a negative charge.
type ItemKind string

const (
	KindCharge  ItemKind = "CHARGE"
	KindPayment ItemKind = "PAYMENT"
	KindRefund  ItemKind = "REFUND"
)

// LedgerItem is the normalized shape every raw source record is converted
// into before it may touch a folio. Amount is always in minor units (cents)
// and non-negative; the kind carries the sign.
type LedgerItem struct {
	ID          string          `json:"id"`
	SourceType  SourceType      `json:"source_type"`
	Kind        ItemKind        `json:"kind"`
	SourceRef   string          `json:"source_ref"` // order/booking/stay id, used for idempotency
	Description string          `json:"description"`
	Amount      int64           `json:"amount"` // minor units
	Currency    string          `json:"currency"`
	Method      PaymentMethod   `json:"method,omitempty"` // payment-kind items only
	CreatedAt   time.Time       `json:"created_at"`
	Status      string          `json:"status"` // source-specific vocabulary, kept for detail display
	Raw         json.RawMessage `json:"raw,omitempty"`
}

// Charge is a billable line item posted against a folio. Immutable once
// posted except for the voided flag.
type Charge struct {
	ID          string     `json:"id"`
	FolioID     string     `json:"folio_id"`
	SourceType  SourceType `json:"source_type"`
	SourceRef   string     `json:"source_ref"`
	Description string     `json:"description"`
	Amount      int64      `json:"amount"` // minor units, >= 0
	Currency    string     `json:"currency"`
	Voided      bool       `json:"voided"`
	PostedAt    time.Time  `json:"posted_at"`
}

// PaymentMethod enumerates the settlement instruments the front desk accepts.
type PaymentMethod string

const (
	MethodCash           PaymentMethod = "CASH"
	MethodCardPayment    PaymentMethod = "CARD_PAYMENT"
	MethodBankTransfer   PaymentMethod = "BANK_TRANSFER"
	MethodMobilePayment  PaymentMethod = "MOBILE_PAYMENT"
	MethodCryptocurrency PaymentMethod = "CRYPTOCURRENCY"
	MethodVoucher        PaymentMethod = "VOUCHER"
	MethodCheck          PaymentMethod = "CHECK"
)

// ValidPaymentMethod reports whether m is one of the accepted instruments.
func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case MethodCash, MethodCardPayment, MethodBankTransfer, MethodMobilePayment,
		MethodCryptocurrency, MethodVoucher, MethodCheck:
		return true
	}
	return false
}

// Payment is a settlement line item. Immutable once posted; a reversal is a
// new negative-amount payment entry, never a mutation.
type Payment struct {
	ID        string        `json:"id"`
	FolioID   string        `json:"folio_id"`
	Amount    int64         `json:"amount"` // minor units, negative only for reversals
	Currency  string        `json:"currency"`
	Method    PaymentMethod `json:"method"`
	Reference string        `json:"reference"`
	PostedAt  time.Time     `json:"posted_at"`
}

// FolioStatus is the settlement state of a guest account.
type FolioStatus string

const (
	// FolioPending is only reachable before the folio is opened, e.g. a
	// reservation awaiting its first charge post.
	FolioPending FolioStatus = "PENDING"
	FolioOpen    FolioStatus = "OPEN"
	// FolioClosed is terminal and only reachable with a zero balance.
	FolioClosed FolioStatus = "CLOSED"
)

// Folio is a guest's running account of charges and payments for one stay.
// Totals are always derived from the lists, never stored.
type Folio struct {
	ID        string      `json:"id"`
	BookingID string      `json:"booking_id"`
	GuestRef  string      `json:"guest_ref"`
	Currency  string      `json:"currency"`
	Status    FolioStatus `json:"status"`
	Charges   []Charge    `json:"charges"`  // insertion order
	Payments  []Payment   `json:"payments"` // insertion order
	CreatedAt time.Time   `json:"created_at"`
	ClosedAt  *time.Time  `json:"closed_at,omitempty"`
}

// TotalCharges sums non-voided charges in minor units.
func (f *Folio) TotalCharges() int64 {
	var total int64
	for _, c := range f.Charges {
		if !c.Voided {
			total += c.Amount
		}
	}
	return total
}

// TotalPayments sums payments in minor units.
func (f *Folio) TotalPayments() int64 {
	var total int64
	for _, p := range f.Payments {
		total += p.Amount
	}
	return total
}

// Balance is TotalCharges minus TotalPayments. The sum is order-independent;
// insertion order only matters for the audit display.
func (f *Folio) Balance() int64 {
	return f.TotalCharges() - f.TotalPayments()
}

// FolioLine is a single display row in a FolioView.
type FolioLine struct {
	ID          string    `json:"id"`
	Kind        ItemKind  `json:"kind"`
	Description string    `json:"description"`
	Amount      int64     `json:"amount"`
	Display     string    `json:"display"` // formatted amount with currency symbol
	Voided      bool      `json:"voided"`
	PostedAt    time.Time `json:"posted_at"`
}

// FolioView is an immutable snapshot handed to the UI. It never aliases live
// ledger state.
type FolioView struct {
	FolioID       string      `json:"folio_id"`
	GuestLabel    string      `json:"guest_label"`
	Currency      string      `json:"currency"`
	Status        FolioStatus `json:"status"`
	Lines         []FolioLine `json:"lines"`
	TotalCharges  int64       `json:"total_charges"`
	TotalPayments int64       `json:"total_payments"`
	Balance       int64       `json:"balance"`
}
