package services

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hoteliq/backend/internal/models"
)

// rawSource is the loose decode target for the three upstream record shapes.
// Producers do not guarantee an explicit discriminant field, so the shape is
// sniffed structurally: items => POS order, scheduledAt => scheduled service,
// otherwise stay charge. This is a compatibility shim for legacy producers;
// new producers should send the explicit source_type and skip sniffing.
type rawSource struct {
	SourceType  string     `json:"source_type,omitempty"`
	ID          string     `json:"id,omitempty"`
	Description string     `json:"description,omitempty"`
	Currency    string     `json:"currency,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`

	// stay shape
	Amount *json.Number `json:"amount,omitempty"`

	// order shape
	OrderID  string      `json:"order_id,omitempty"`
	Items    *[]rawItem  `json:"items,omitempty"`
	Discount json.Number `json:"discount,omitempty"`
	Tax      json.Number `json:"tax,omitempty"`
	Status   string      `json:"status,omitempty"`

	// scheduled service shape
	ServiceRef    string       `json:"service_ref,omitempty"`
	ScheduledAt   *time.Time   `json:"scheduled_at,omitempty"`
	PaymentStatus string       `json:"payment_status,omitempty"`
	TotalAmount   *json.Number `json:"total_amount,omitempty"`
	Method        string       `json:"method,omitempty"`
}

type rawItem struct {
	ItemRef   string       `json:"item_ref"`
	Name      string       `json:"name"`
	Quantity  *json.Number `json:"quantity"`
	UnitPrice *json.Number `json:"unit_price"`
}

// Normalize converts one raw heterogeneous record into the common LedgerItem
// shape. Pure transform, no side effects.
func Normalize(raw json.RawMessage) (*models.LedgerItem, error) {
	var src rawSource
	if err := json.Unmarshal(raw, &src); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && amountField(typeErr.Field) {
			return nil, validationErr("", ErrInvalidAmount, "field %q is not numeric", typeErr.Field)
		}
		return nil, validationErr("", ErrUnrecognizedSourceShape, "cannot decode source record: %v", err)
	}

	switch {
	case src.Items != nil:
		return normalizeOrder(&src, raw)
	case src.ScheduledAt != nil:
		return normalizeService(&src, raw)
	case src.Amount != nil:
		return normalizeStay(&src, raw)
	}
	return nil, notFoundErr(src.ID, ErrUnrecognizedSourceShape, "record matches no known source shape")
}

func normalizeOrder(src *rawSource, raw json.RawMessage) (*models.LedgerItem, error) {
	ref := src.OrderID
	if ref == "" {
		ref = src.ID
	}

	var subtotal int64
	for i, it := range *src.Items {
		qty, err := minorUnits(it.Quantity)
		if err != nil {
			return nil, validationErr(ref, ErrInvalidAmount, "item %d quantity: %v", i, err)
		}
		price, err := minorUnits(it.UnitPrice)
		if err != nil {
			return nil, validationErr(ref, ErrInvalidAmount, "item %d unit price: %v", i, err)
		}
		// a negative line would let a producer net down the charge total
		if qty <= 0 {
			return nil, validationErr(ref, ErrInvalidAmount, "item %d quantity %d is not positive", i, qty)
		}
		if price < 0 {
			return nil, validationErr(ref, ErrInvalidAmount, "item %d unit price %d is negative", i, price)
		}
		subtotal += qty * price
	}

	discount, err := optionalMinorUnits(src.Discount)
	if err != nil {
		return nil, validationErr(ref, ErrInvalidAmount, "discount: %v", err)
	}
	tax, err := optionalMinorUnits(src.Tax)
	if err != nil {
		return nil, validationErr(ref, ErrInvalidAmount, "tax: %v", err)
	}

	total := subtotal - discount + tax
	if total < 0 {
		return nil, validationErr(ref, ErrInvalidAmount, "order total is negative: %d", total)
	}

	desc := src.Description
	if desc == "" {
		desc = "POS order " + ref
	}

	return &models.LedgerItem{
		ID:          uuid.New().String(),
		SourceType:  models.SourceOrder,
		Kind:        models.KindCharge,
		SourceRef:   ref,
		Description: desc,
		Amount:      total,
		Currency:    src.Currency,
		CreatedAt:   createdAt(src),
		Status:      src.Status,
		Raw:         raw,
	}, nil
}

func normalizeService(src *rawSource, raw json.RawMessage) (*models.LedgerItem, error) {
	ref := src.ServiceRef
	if ref == "" {
		ref = src.ID
	}

	amount, err := minorUnits(src.TotalAmount)
	if err != nil {
		return nil, validationErr(ref, ErrInvalidAmount, "total amount: %v", err)
	}
	if amount < 0 {
		return nil, validationErr(ref, ErrInvalidAmount, "total amount is negative: %d", amount)
	}

	item := &models.LedgerItem{
		ID:          uuid.New().String(),
		SourceType:  models.SourceScheduledService,
		SourceRef:   ref,
		Description: src.Description,
		Amount:      amount,
		Currency:    src.Currency,
		CreatedAt:   createdAt(src),
		Status:      src.PaymentStatus,
		Raw:         raw,
	}
	if item.Description == "" {
		item.Description = "Scheduled service " + ref
	}

	switch models.ServicePaymentStatus(src.PaymentStatus) {
	case models.ServicePending, "":
		item.Kind = models.KindCharge
	case models.ServicePaid:
		item.Kind = models.KindPayment
		item.Method = paymentMethod(src.Method)
	case models.ServiceRefunded:
		item.Kind = models.KindRefund
		item.Method = paymentMethod(src.Method)
	case models.ServiceCancelled:
		return nil, validationErr(ref, ErrSourceNotBillable, "cancelled booking yields no ledger item")
	default:
		return nil, validationErr(ref, ErrUnrecognizedSourceShape, "unknown payment status %q", src.PaymentStatus)
	}

	return item, nil
}

func normalizeStay(src *rawSource, raw json.RawMessage) (*models.LedgerItem, error) {
	amount, err := minorUnits(src.Amount)
	if err != nil {
		return nil, validationErr(src.ID, ErrInvalidAmount, "amount: %v", err)
	}
	if amount < 0 {
		return nil, validationErr(src.ID, ErrInvalidAmount, "stay charge is negative: %d", amount)
	}

	desc := src.Description
	if desc == "" {
		desc = "Room stay"
	}

	return &models.LedgerItem{
		ID:          uuid.New().String(),
		SourceType:  models.SourceStay,
		Kind:        models.KindCharge,
		SourceRef:   src.ID,
		Description: desc,
		Amount:      amount,
		Currency:    src.Currency,
		CreatedAt:   createdAt(src),
		Status:      src.Status,
		Raw:         raw,
	}, nil
}

func amountField(field string) bool {
	switch field {
	case "amount", "total_amount", "quantity", "unit_price", "discount", "tax":
		return true
	}
	return strings.HasSuffix(field, ".quantity") || strings.HasSuffix(field, ".unit_price")
}

// minorUnits parses a JSON number as integer minor units. Fractional or
// missing values are rejected; money never rides on floats.
func minorUnits(n *json.Number) (int64, error) {
	if n == nil || n.String() == "" {
		return 0, ErrInvalidAmount
	}
	v, err := strconv.ParseInt(n.String(), 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

func optionalMinorUnits(n json.Number) (int64, error) {
	if n.String() == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(n.String(), 10, 64)
	if err != nil || v < 0 {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

func paymentMethod(m string) models.PaymentMethod {
	pm := models.PaymentMethod(m)
	if models.ValidPaymentMethod(pm) {
		return pm
	}
	// prepaid service bookings settle by card unless the producer says otherwise
	return models.MethodCardPayment
}

func createdAt(src *rawSource) time.Time {
	if src.CreatedAt != nil {
		return *src.CreatedAt
	}
	return time.Now().UTC()
}
