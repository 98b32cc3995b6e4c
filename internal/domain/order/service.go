package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/alhussam/store-api/internal/events"
)

// Service exposes the administrator-facing order lifecycle operations.
// Order creation lives in the checkout package; everything after creation
// happens here.
type Service struct {
	orders    Repository
	publisher events.Publisher
	lg        *zap.Logger
	now       func() time.Time
}

// NewService creates an order Service.
func NewService(orders Repository, publisher events.Publisher, lg *zap.Logger) *Service {
	return &Service{
		orders:    orders,
		publisher: publisher,
		lg:        lg,
		now:       time.Now,
	}
}

// Get returns a single order.
func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	return s.orders.GetByID(ctx, id)
}

// ListByBuyer returns the buyer's orders, newest first.
func (s *Service) ListByBuyer(ctx context.Context, buyerID string) ([]Order, error) {
	return s.orders.ListByBuyer(ctx, buyerID)
}

// ListAll returns every order, newest first.
func (s *Service) ListAll(ctx context.Context) ([]Order, error) {
	return s.orders.ListAll(ctx)
}

// UpdateStatus sets an order's status. Any known status is accepted from any
// current status; only unknown values are rejected. Cancelling does not
// restore the stock decremented at creation.
func (s *Service) UpdateStatus(ctx context.Context, id string, status Status) (*Order, error) {
	if !status.IsValid() {
		return nil, ErrUnknownStatus
	}

	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	old := o.Status

	if err := s.orders.UpdateStatus(ctx, id, status); err != nil {
		return nil, errors.Wrap(err, "update status")
	}
	o.Status = status

	// Event delivery is best effort; the status change is already durable.
	if err := s.publisher.Publish(ctx, events.TopicOrderStatusChanged, events.OrderStatusChanged{
		OrderID:   id,
		OldStatus: string(old),
		NewStatus: string(status),
		ChangedAt: s.now(),
	}); err != nil {
		s.lg.Warn("publish status change", zap.String("order_id", id), zap.Error(err))
	}

	return o, nil
}

// Delete removes an order entirely. Administrative cleanup only; the normal
// lifecycle never deletes orders.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.orders.Delete(ctx, id)
}
