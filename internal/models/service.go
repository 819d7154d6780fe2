package models

import "time"

// ServicePaymentStatus is the settlement vocabulary of the services module.
type ServicePaymentStatus string

const (
	ServicePending   ServicePaymentStatus = "PENDING"
	ServicePaid      ServicePaymentStatus = "PAID"
	ServiceRefunded  ServicePaymentStatus = "REFUNDED"
	ServiceCancelled ServicePaymentStatus = "CANCELLED"
)

// ServiceBooking is a scheduled guest service (spa, airport pickup, laundry).
// The folio never owns the booking, only the ledger item derived from it.
type ServiceBooking struct {
	ServiceRef    string               `json:"service_ref"`
	Description   string               `json:"description"`
	ScheduledAt   time.Time            `json:"scheduled_at"`
	PaymentStatus ServicePaymentStatus `json:"payment_status"`
	TotalAmount   int64                `json:"total_amount"` // minor units
	Currency      string               `json:"currency"`
}
