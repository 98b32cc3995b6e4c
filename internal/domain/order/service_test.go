package order

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/alhussam/store-api/internal/events"
)

type mockOrderRepo struct {
	byID       map[string]*Order
	lastStatus Status
	updateErr  error
}

func (m *mockOrderRepo) Create(_ context.Context, o *Order) error {
	m.byID[o.ID] = o
	return nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, id string) (*Order, error) {
	o, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *mockOrderRepo) ListByBuyer(_ context.Context, buyerID string) ([]Order, error) {
	var out []Order
	for _, o := range m.byID {
		if o.BuyerID == buyerID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *mockOrderRepo) ListAll(_ context.Context) ([]Order, error) {
	var out []Order
	for _, o := range m.byID {
		out = append(out, *o)
	}
	return out, nil
}

func (m *mockOrderRepo) UpdateStatus(_ context.Context, id string, status Status) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	o, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	o.Status = status
	m.lastStatus = status
	return nil
}

func (m *mockOrderRepo) Delete(_ context.Context, id string) error {
	delete(m.byID, id)
	return nil
}

type capturingPublisher struct {
	topics []string
	events []any
	err    error
}

func (p *capturingPublisher) Publish(_ context.Context, topic string, event any) error {
	if p.err != nil {
		return p.err
	}
	p.topics = append(p.topics, topic)
	p.events = append(p.events, event)
	return nil
}

func (p *capturingPublisher) Close() error { return nil }

func newTestService(repo *mockOrderRepo, pub events.Publisher) *Service {
	return NewService(repo, pub, zap.NewNop())
}

func TestUpdateStatus_AnyKnownTransitionAllowed(t *testing.T) {
	tests := []struct {
		name string
		from Status
		to   Status
	}{
		{"pending to processing", StatusPending, StatusProcessing},
		{"pending straight to delivered", StatusPending, StatusDelivered},
		{"shipped back to pending", StatusShipped, StatusPending},
		{"delivered to cancelled", StatusDelivered, StatusCancelled},
		{"cancelled back to processing", StatusCancelled, StatusProcessing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockOrderRepo{byID: map[string]*Order{
				"o1": {ID: "o1", BuyerID: "u1", Status: tt.from},
			}}
			svc := newTestService(repo, &capturingPublisher{})

			got, err := svc.UpdateStatus(context.Background(), "o1", tt.to)
			require.NoError(t, err)
			assert.Equal(t, tt.to, got.Status)
			assert.Equal(t, tt.to, repo.lastStatus)
		})
	}
}

func TestUpdateStatus_UnknownStatusRejected(t *testing.T) {
	repo := &mockOrderRepo{byID: map[string]*Order{
		"o1": {ID: "o1", Status: StatusPending},
	}}
	svc := newTestService(repo, &capturingPublisher{})

	_, err := svc.UpdateStatus(context.Background(), "o1", Status("misplaced"))
	require.ErrorIs(t, err, ErrUnknownStatus)
	assert.Equal(t, StatusPending, repo.byID["o1"].Status)
}

func TestUpdateStatus_MissingOrder(t *testing.T) {
	svc := newTestService(&mockOrderRepo{byID: map[string]*Order{}}, &capturingPublisher{})

	_, err := svc.UpdateStatus(context.Background(), "nope", StatusShipped)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateStatus_PublishesEvent(t *testing.T) {
	repo := &mockOrderRepo{byID: map[string]*Order{
		"o1": {ID: "o1", Status: StatusPending},
	}}
	pub := &capturingPublisher{}
	svc := newTestService(repo, pub)

	_, err := svc.UpdateStatus(context.Background(), "o1", StatusShipped)
	require.NoError(t, err)

	require.Len(t, pub.events, 1)
	assert.Equal(t, events.TopicOrderStatusChanged, pub.topics[0])
	evt, ok := pub.events[0].(events.OrderStatusChanged)
	require.True(t, ok)
	assert.Equal(t, "pending", evt.OldStatus)
	assert.Equal(t, "shipped", evt.NewStatus)
}

func TestUpdateStatus_PublishFailureIsNotFatal(t *testing.T) {
	repo := &mockOrderRepo{byID: map[string]*Order{
		"o1": {ID: "o1", Status: StatusPending},
	}}
	svc := newTestService(repo, &capturingPublisher{err: errors.New("broker down")})

	got, err := svc.UpdateStatus(context.Background(), "o1", StatusProcessing)
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, got.Status)
}

func TestStatus_IsValid(t *testing.T) {
	for _, s := range Statuses() {
		assert.True(t, s.IsValid(), "%s must be valid", s)
	}
	assert.False(t, Status("returned").IsValid())
	assert.False(t, Status("").IsValid())
}

func TestStatus_IsTerminal(t *testing.T) {
	assert.True(t, StatusDelivered.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusShipped.IsTerminal())
}
