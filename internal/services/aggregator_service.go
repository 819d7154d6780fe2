package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/hoteliq/backend/internal/metrics"
	"github.com/hoteliq/backend/internal/models"
)

const postedKeyTTL = 48 * time.Hour

// Aggregator routes normalized ledger items into folio operations. It is
// intentionally the only writer of charges derived from POS and service
// sources, so no screen can post an ad hoc amount that bypassed
// normalization. Duplicate deliveries of a billable source are suppressed
// with idempotency keys; redis backs the keys when available, with an
// in-process fallback otherwise.
type Aggregator struct {
	folios *FolioService
	redis  *redis.Client

	mu     sync.Mutex
	posted map[string]bool
}

func NewAggregator(folios *FolioService, rdb *redis.Client) *Aggregator {
	return &Aggregator{
		folios: folios,
		redis:  rdb,
		posted: make(map[string]bool),
	}
}

// Attach posts one normalized item to a folio. A duplicate delivery is
// treated as success: the retry already happened, charging again would be
// the bug. Validation errors are returned as-is — they are not transient and
// must never be retried blind.
func (a *Aggregator) Attach(ctx context.Context, folioID string, item *models.LedgerItem) error {
	if item == nil {
		return validationErr(folioID, ErrUnrecognizedSourceShape, "nil ledger item")
	}

	if item.SourceRef != "" {
		fresh, err := a.markPosted(ctx, item.SourceRef, string(item.Kind))
		if err != nil {
			return &RetryableError{Op: "idempotency check", Ref: item.SourceRef, Err: err}
		}
		if !fresh {
			metrics.DuplicateDeliveries.Inc()
			return nil
		}
	}

	if err := a.post(ctx, folioID, item); err != nil {
		// the key was claimed optimistically; release it so a corrected
		// request is not mistaken for a duplicate. A retryable failure keeps
		// the claim: the in-memory post already landed and a retry must not
		// bill the folio a second time.
		var re *RetryableError
		if item.SourceRef != "" && !errors.As(err, &re) {
			a.releasePosted(ctx, item.SourceRef, string(item.Kind))
		}
		return err
	}
	return nil
}

func (a *Aggregator) post(ctx context.Context, folioID string, item *models.LedgerItem) error {
	switch item.Kind {
	case models.KindCharge:
		_, err := a.folios.PostCharge(ctx, folioID, models.Charge{
			ID:          item.ID,
			SourceType:  item.SourceType,
			SourceRef:   item.SourceRef,
			Description: item.Description,
			Amount:      item.Amount,
			Currency:    item.Currency,
			PostedAt:    item.CreatedAt,
		})
		return err
	case models.KindPayment:
		_, err := a.folios.PostPayment(ctx, folioID, models.Payment{
			ID:        item.ID,
			Amount:    item.Amount,
			Currency:  item.Currency,
			Method:    item.Method,
			Reference: item.SourceRef,
			PostedAt:  item.CreatedAt,
		})
		return err
	case models.KindRefund:
		// a refund is a compensating negative payment entry, never a
		// mutation of the original
		_, err := a.folios.PostPayment(ctx, folioID, models.Payment{
			ID:        item.ID,
			Amount:    -item.Amount,
			Currency:  item.Currency,
			Method:    item.Method,
			Reference: "refund " + item.SourceRef,
			PostedAt:  item.CreatedAt,
		})
		return err
	}
	return validationErr(folioID, ErrUnrecognizedSourceShape, "unknown item kind %q", item.Kind)
}

// AttachRaw normalizes a raw source record and posts it. Non-billable
// records (cancelled bookings) are skipped without error.
func (a *Aggregator) AttachRaw(ctx context.Context, folioID string, raw json.RawMessage) (*models.LedgerItem, error) {
	item, err := Normalize(raw)
	if err != nil {
		if errors.Is(err, ErrSourceNotBillable) {
			return nil, nil
		}
		return nil, err
	}
	if err := a.Attach(ctx, folioID, item); err != nil {
		return nil, err
	}
	return item, nil
}

// AttachOrder posts the charge derived from a served order. Orders in any
// earlier state are not billable yet.
func (a *Aggregator) AttachOrder(ctx context.Context, order *models.Order) error {
	if order.Status != models.OrderServed {
		return stateErr(order.ID, ErrInvalidTransition, "order %s is %s, only served orders bill", order.ID, order.Status)
	}

	raw, err := json.Marshal(map[string]any{
		"order_id": order.ID,
		"items":    order.Items,
		"discount": order.Discount,
		"tax":      order.Tax,
		"currency": order.Currency,
		"status":   string(order.Status),
	})
	if err != nil {
		return validationErr(order.ID, ErrUnrecognizedSourceShape, "cannot encode order: %v", err)
	}

	item, err := Normalize(raw)
	if err != nil {
		return err
	}
	return a.Attach(ctx, order.FolioID, item)
}

// markPosted records an idempotency key and reports whether it was fresh.
func (a *Aggregator) markPosted(ctx context.Context, sourceRef, kind string) (bool, error) {
	key := fmt.Sprintf("folio:posted:%s:%s", kind, sourceRef)

	if a.redis != nil {
		return a.redis.SetNX(ctx, key, 1, postedKeyTTL).Result()
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.posted[key] {
		return false, nil
	}
	a.posted[key] = true
	return true, nil
}

func (a *Aggregator) releasePosted(ctx context.Context, sourceRef, kind string) {
	key := fmt.Sprintf("folio:posted:%s:%s", kind, sourceRef)

	if a.redis != nil {
		a.redis.Del(ctx, key)
		return
	}

	a.mu.Lock()
	delete(a.posted, key)
	a.mu.Unlock()
}
