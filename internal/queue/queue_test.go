package queue

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/chrisdamba/foodispatch/internal/dispatch"
	"github.com/chrisdamba/foodispatch/internal/models"
	"github.com/chrisdamba/foodispatch/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingBroadcaster struct {
	mu     sync.Mutex
	global []models.Event
	byUser map[string][]models.Event
}

func newRecordingBroadcaster() *recordingBroadcaster {
	return &recordingBroadcaster{byUser: make(map[string][]models.Event)}
}

func (r *recordingBroadcaster) Publish(event models.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.global = append(r.global, event)
}

func (r *recordingBroadcaster) SendToUser(userID string, event models.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byUser[userID] = append(r.byUser[userID], event)
}

func (r *recordingBroadcaster) userEvents(userID string) []models.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Event, len(r.byUser[userID]))
	copy(out, r.byUser[userID])
	return out
}

type fixture struct {
	store       *store.Store
	queue       *Queue
	broadcaster *recordingBroadcaster
	handlers    *Handlers
	customer    models.User
	cancel      context.CancelFunc
}

func newFixture(t *testing.T, successRate float64) *fixture {
	t.Helper()
	st := store.New()
	b := newRecordingBroadcaster()
	q := New(16)
	matcher := dispatch.NewMatcher(st, b)

	h := &Handlers{
		Store:              st,
		Matcher:            matcher,
		Broadcaster:        b,
		Queue:              q,
		PaymentSuccessRate: successRate,
		PaymentLatency:     time.Millisecond,
		Rng:                rand.New(rand.NewSource(1)),
	}
	h.RegisterAll()

	ctx, cancel := context.WithCancel(context.Background())
	q.Start(ctx, 2)
	t.Cleanup(cancel)
	t.Cleanup(q.Close)

	customer := st.AddUser(models.User{Name: "Abena Owusu"})
	return &fixture{store: st, queue: q, broadcaster: b, handlers: h, customer: customer, cancel: cancel}
}

func TestNotificationJobLogsAndBroadcasts(t *testing.T) {
	f := newFixture(t, 1.0)

	err := f.queue.Enqueue(models.NewNotificationJob(
		f.customer.ID, models.NotificationOrderStatus, "Order Update", "Assigned"))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return len(f.store.NotificationsByUser(f.customer.ID)) == 1
	}, time.Second, 5*time.Millisecond)

	logs := f.store.NotificationsByUser(f.customer.ID)
	assert.Equal(t, "Order Update", logs[0].Title)

	events := f.broadcaster.userEvents(f.customer.ID)
	require.Len(t, events, 1)
	assert.Equal(t, models.EventNotificationNew, events[0].Type)
}

func TestAnalyticsJobAppendsEvent(t *testing.T) {
	f := newFixture(t, 1.0)

	err := f.queue.Enqueue(models.NewAnalyticsJob(
		f.customer.ID, "order_placed", map[string]interface{}{"total": 20.0}))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return len(f.store.AnalyticsByUser(f.customer.ID)) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, "order_placed", f.store.AnalyticsByUser(f.customer.ID)[0].EventType)
}

func TestPaymentVerificationSuccessQueuesNotification(t *testing.T) {
	f := newFixture(t, 1.0) // always succeeds
	order, err := f.store.CreateOrder(f.customer.ID, models.OrderDraft{ServiceType: "Document"})
	require.NoError(t, err)

	err = f.queue.Enqueue(models.NewPaymentVerificationJob(order.ID, "MTN", "tx_123"))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return len(f.store.NotificationsByUser(f.customer.ID)) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, "Payment Successful", f.store.NotificationsByUser(f.customer.ID)[0].Title)
}

func TestPaymentVerificationFailureTakesNoAction(t *testing.T) {
	f := newFixture(t, 0.0) // always fails
	order, err := f.store.CreateOrder(f.customer.ID, models.OrderDraft{ServiceType: "Document"})
	require.NoError(t, err)

	err = f.queue.Enqueue(models.NewPaymentVerificationJob(order.ID, "MTN", "tx_123"))
	require.NoError(t, err)

	// Give the worker time to run, then confirm nothing happened.
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, f.store.NotificationsByUser(f.customer.ID))
}

func TestAssignmentJobRunsMatcher(t *testing.T) {
	f := newFixture(t, 1.0)
	f.handlers.Matcher.SetClock(func() time.Time {
		return time.Date(2024, 1, 8, 10, 0, 0, 0, time.UTC) // a Monday
	})

	partner := f.store.AddPartner(models.Partner{
		Name:            "Kofi Mensah",
		CurrentLocation: models.Location{Lat: 6.701, Lng: -1.621},
		IsAvailable:     true,
	})
	require.NoError(t, f.store.AddAvailability(models.AvailabilityWindow{
		PartnerID: partner.ID, DayOfWeek: time.Monday, StartTime: "09:00", EndTime: "17:00",
	}))
	order, err := f.store.CreateOrder(f.customer.ID, models.OrderDraft{
		PickupLocation: models.Location{Lat: 6.70, Lng: -1.62},
	})
	require.NoError(t, err)

	require.NoError(t, f.queue.Enqueue(models.NewAssignmentJob(order.ID)))

	require.Eventually(t, func() bool {
		o, err := f.store.Order(order.ID)
		return err == nil && o.Status == models.OrderAssigned
	}, time.Second, 5*time.Millisecond)

	o, _ := f.store.Order(order.ID)
	assert.Equal(t, partner.ID, o.PartnerID)
}

// A producer racing Close must either land its job or get the closed-queue
// error, never panic on a closed channel.
func TestEnqueueRacingCloseNeverPanics(t *testing.T) {
	for i := 0; i < 200; i++ {
		q := New(1)
		ctx, cancel := context.WithCancel(context.Background())
		q.Register(models.JobAnalytics, func(ctx context.Context, job models.Job) error { return nil })
		q.Start(ctx, 2)

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 16; j++ {
				if err := q.Enqueue(models.NewAnalyticsJob("user_1", "page_view", nil)); err != nil {
					return
				}
			}
		}()

		q.Close()
		wg.Wait()
		cancel()

		assert.Error(t, q.Enqueue(models.NewAnalyticsJob("user_1", "page_view", nil)))
	}
}

// The payment handler draws from one rng shared by every worker; hammer it
// from several goroutines so the race detector can see any unguarded use.
func TestRollSafeForConcurrentUse(t *testing.T) {
	h := &Handlers{Rng: rand.New(rand.NewSource(1))}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				v := h.roll()
				assert.GreaterOrEqual(t, v, 0.0)
				assert.Less(t, v, 1.0)
			}
		}()
	}
	wg.Wait()
}

func TestConcurrentPaymentVerifications(t *testing.T) {
	f := newFixture(t, 1.0)
	order, err := f.store.CreateOrder(f.customer.ID, models.OrderDraft{ServiceType: "Document"})
	require.NoError(t, err)

	const jobs = 12
	for i := 0; i < jobs; i++ {
		require.NoError(t, f.queue.Enqueue(
			models.NewPaymentVerificationJob(order.ID, "MTN", fmt.Sprintf("tx_%d", i))))
	}

	require.Eventually(t, func() bool {
		return len(f.store.NotificationsByUser(f.customer.ID)) == jobs
	}, 5*time.Second, 10*time.Millisecond)
}

func TestEnqueueAfterCloseFails(t *testing.T) {
	q := New(4)
	q.Start(context.Background(), 1)
	q.Close()

	err := q.Enqueue(models.NewAnalyticsJob("user_1", "x", nil))
	assert.Error(t, err)
}

func TestUnhandledJobKindIsDropped(t *testing.T) {
	q := New(4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q.Start(ctx, 1)
	defer q.Close()

	// No handler registered; must not panic or wedge the worker.
	require.NoError(t, q.Enqueue(models.Job{Kind: models.JobKind("unknown")}))
	require.NoError(t, q.Enqueue(models.Job{Kind: models.JobKind("unknown")}))
}
