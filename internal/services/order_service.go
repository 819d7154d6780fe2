package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hoteliq/backend/internal/models"
	"github.com/hoteliq/backend/internal/money"
)

// NextOrderStatus validates a single lifecycle step. Transitions are
// monotonic forward-only; Cancelled is reachable from any non-terminal
// state. A repeated terminal transition is reported as a concurrency error
// so at-least-once delivery of "order served" events stays safe.
func NextOrderStatus(current, next models.OrderStatus) error {
	if current.Terminal() {
		if next == current {
			return concurrencyErr("", ErrDuplicateTerminal, "order already %s", current)
		}
		return stateErr("", ErrInvalidTransition, "order is %s, no further transition allowed", current)
	}
	if next == models.OrderCancelled {
		return nil
	}

	switch current {
	case models.OrderPending:
		if next == models.OrderPreparing {
			return nil
		}
	case models.OrderPreparing:
		if next == models.OrderReady {
			return nil
		}
	case models.OrderReady:
		if next == models.OrderServed {
			return nil
		}
	}
	return stateErr("", ErrInvalidTransition, "cannot transition %s to %s", current, next)
}

// OrderService owns POS order lifecycles. The folio never sees an order
// object: once an order reaches Served, the derived charge crosses into the
// ledger through the aggregator, which is the only permitted writer.
type OrderService struct {
	mu         sync.RWMutex
	orders     map[string]*models.Order
	aggregator *Aggregator
}

func NewOrderService(aggregator *Aggregator) *OrderService {
	return &OrderService{
		orders:     make(map[string]*models.Order),
		aggregator: aggregator,
	}
}

// Create accepts an order into Pending. The location guard runs here, at
// creation time, not at charge time.
func (s *OrderService) Create(req *models.CreateOrderRequest) (*models.Order, error) {
	switch req.Type {
	case models.OrderRestaurant:
		if req.TableNumber == nil {
			return nil, validationErr("", ErrMissingLocationIdentifier, "restaurant order requires a table number")
		}
	case models.OrderHotelGuest:
		if req.RoomNumber == nil || *req.RoomNumber == "" {
			return nil, validationErr("", ErrMissingLocationIdentifier, "hotel guest order requires a room number")
		}
	case models.OrderWalkIn:
		if req.TableNumber != nil || req.RoomNumber != nil {
			return nil, validationErr("", ErrMissingLocationIdentifier, "walk-in order carries no location identifier")
		}
	default:
		return nil, validationErr("", ErrUnrecognizedSourceShape, "unknown order type %q", req.Type)
	}

	if !money.Supported(req.Currency) {
		return nil, validationErr("", money.ErrUnknownCurrency, "currency %q", req.Currency)
	}
	for i, it := range req.Items {
		if it.Quantity <= 0 || it.UnitPrice < 0 {
			return nil, validationErr("", ErrInvalidAmount, "item %d has invalid quantity or price", i)
		}
	}

	now := time.Now().UTC()
	order := &models.Order{
		ID:            uuid.New().String(),
		Type:          req.Type,
		TableNumber:   req.TableNumber,
		RoomNumber:    req.RoomNumber,
		FolioID:       req.FolioID,
		Items:         append([]models.OrderItem(nil), req.Items...),
		Discount:      req.Discount,
		Tax:           req.Tax,
		Currency:      req.Currency,
		Status:        models.OrderPending,
		StatusVersion: 1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	s.mu.Lock()
	s.orders[order.ID] = order
	s.mu.Unlock()

	return snapshotOrder(order), nil
}

// Transition advances an order one lifecycle step. Served is the only state
// that emits a charge; the terminal step is exactly-once, guarded by the
// order id plus monotonic status version.
func (s *OrderService) Transition(ctx context.Context, orderID string, next models.OrderStatus) (*models.Order, error) {
	s.mu.Lock()
	order, ok := s.orders[orderID]
	if !ok {
		s.mu.Unlock()
		return nil, notFoundErr(orderID, ErrOrderNotFound, "order %s", orderID)
	}

	if err := NextOrderStatus(order.Status, next); err != nil {
		s.mu.Unlock()
		if le, isLedger := err.(*LedgerError); isLedger && le.Ref == "" {
			le.Ref = orderID
		}
		return nil, err
	}

	prevStatus := order.Status
	prevVersion := order.StatusVersion
	order.Status = next
	order.StatusVersion++
	order.UpdatedAt = time.Now().UTC()
	served := snapshotOrder(order)
	s.mu.Unlock()

	if next == models.OrderServed && s.aggregator != nil && served.FolioID != "" {
		if err := s.aggregator.AttachOrder(ctx, served); err != nil {
			// the terminal step is only committed once the charge is posted;
			// otherwise a retry would hit the terminal guard and the billing
			// would be lost as a swallowed duplicate
			s.mu.Lock()
			order.Status = prevStatus
			order.StatusVersion = prevVersion
			order.UpdatedAt = time.Now().UTC()
			s.mu.Unlock()
			return nil, err
		}
	}
	return served, nil
}

// Get returns a snapshot of one order.
func (s *OrderService) Get(orderID string) (*models.Order, error) {
	s.mu.RLock()
	order, ok := s.orders[orderID]
	s.mu.RUnlock()
	if !ok {
		return nil, notFoundErr(orderID, ErrOrderNotFound, "order %s", orderID)
	}
	return snapshotOrder(order), nil
}

func snapshotOrder(o *models.Order) *models.Order {
	cp := *o
	cp.Items = append([]models.OrderItem(nil), o.Items...)
	return &cp
}
