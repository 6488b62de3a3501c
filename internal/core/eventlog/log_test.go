package eventlog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/checkout-sim/internal/core/domain"
)

func TestEmit_AppendsInOrder(t *testing.T) {
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	log := New(WithClock(func() time.Time { return fixed }))

	log.Emit(domain.EventItemAdded, domain.ItemAdded{SKU: "A", Quantity: 1})
	log.Emit(domain.EventCouponApplied, domain.CouponApplied{Code: "X"})
	log.Emit(domain.EventItemAdded, domain.ItemAdded{SKU: "B", Quantity: 2})

	events := log.Events()
	require.Len(t, events, 3)
	assert.Equal(t, []domain.EventKind{
		domain.EventItemAdded, domain.EventCouponApplied, domain.EventItemAdded,
	}, log.Kinds())
	assert.Equal(t, fixed, events[0].Timestamp)
	assert.NotEmpty(t, events[0].ID)
	assert.NotEqual(t, events[0].ID, events[1].ID)
}

func TestEventsByKind(t *testing.T) {
	log := New()
	log.Emit(domain.EventItemAdded, domain.ItemAdded{SKU: "A", Quantity: 1})
	log.Emit(domain.EventPaymentDeclined, domain.PaymentDeclined{Reason: domain.DeclineLimit})
	log.Emit(domain.EventItemAdded, domain.ItemAdded{SKU: "B", Quantity: 2})

	added := log.EventsByKind(domain.EventItemAdded)
	require.Len(t, added, 2)
	assert.Equal(t, "A", added[0].Payload.(domain.ItemAdded).SKU)
	assert.Equal(t, "B", added[1].Payload.(domain.ItemAdded).SKU)
	assert.Empty(t, log.EventsByKind(domain.EventOrderCreated))
}

func TestEvents_ReturnsCopy(t *testing.T) {
	log := New()
	log.Emit(domain.EventItemAdded, domain.ItemAdded{SKU: "A", Quantity: 1})

	events := log.Events()
	events[0].Kind = domain.EventOrderCreated

	assert.Equal(t, domain.EventItemAdded, log.Events()[0].Kind)
}

func TestSubscribe_SynchronousInOrder(t *testing.T) {
	log := New()
	var calls []string

	log.Subscribe(domain.EventItemAdded, func(evt domain.DomainEvent) {
		calls = append(calls, "first")
	})
	log.Subscribe(domain.EventItemAdded, func(evt domain.DomainEvent) {
		calls = append(calls, "second")
	})
	log.Subscribe(domain.EventItemRemoved, func(evt domain.DomainEvent) {
		calls = append(calls, "other-kind")
	})

	log.Emit(domain.EventItemAdded, domain.ItemAdded{SKU: "A", Quantity: 1})

	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestPublish_SubscriberPanicPropagates(t *testing.T) {
	log := New()
	log.Subscribe(domain.EventItemAdded, func(evt domain.DomainEvent) {
		panic("boom")
	})

	assert.PanicsWithValue(t, "boom", func() {
		log.Emit(domain.EventItemAdded, domain.ItemAdded{SKU: "A", Quantity: 1})
	})
	assert.Equal(t, 1, log.Len())
}

func TestClear_KeepsSubscriptions(t *testing.T) {
	log := New()
	count := 0
	log.Subscribe(domain.EventItemAdded, func(evt domain.DomainEvent) { count++ })

	log.Emit(domain.EventItemAdded, domain.ItemAdded{SKU: "A", Quantity: 1})
	log.Clear()
	assert.Equal(t, 0, log.Len())
	assert.Empty(t, log.Events())

	log.Emit(domain.EventItemAdded, domain.ItemAdded{SKU: "A", Quantity: 1})
	assert.Equal(t, 2, count)
	assert.Equal(t, 1, log.Len())
}
