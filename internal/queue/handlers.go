package queue

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/chrisdamba/foodispatch/internal/dispatch"
	"github.com/chrisdamba/foodispatch/internal/models"
	"github.com/chrisdamba/foodispatch/internal/store"
)

// Broadcaster is the slice of the event broker the handlers need.
type Broadcaster interface {
	Publish(event models.Event)
	SendToUser(userID string, event models.Event)
}

// Handlers wires the job kinds to the dispatch core. One instance registers
// every handler on a queue.
type Handlers struct {
	Store       *store.Store
	Matcher     *dispatch.Matcher
	Broadcaster Broadcaster
	Queue       *Queue

	// Payment verification simulation knobs. Rng is shared by every worker
	// goroutine and must only be used through roll.
	PaymentSuccessRate float64
	PaymentLatency     time.Duration
	Rng                *rand.Rand

	rngMu sync.Mutex
}

// roll draws from the shared rng. math/rand.Rand is not safe for concurrent
// use, and the worker pool calls this from several goroutines.
func (h *Handlers) roll() float64 {
	h.rngMu.Lock()
	defer h.rngMu.Unlock()
	return h.Rng.Float64()
}

// RegisterAll binds every job kind to its handler.
func (h *Handlers) RegisterAll() {
	h.Queue.Register(models.JobAssignment, h.HandleAssignment)
	h.Queue.Register(models.JobNotification, h.HandleNotification)
	h.Queue.Register(models.JobPaymentVerification, h.HandlePaymentVerification)
	h.Queue.Register(models.JobAnalytics, h.HandleAnalytics)
}

// HandleAssignment runs the matching engine for a placed order. Failures
// are reported to the queue, which logs them; there is no automatic retry.
func (h *Handlers) HandleAssignment(ctx context.Context, job models.Job) error {
	if job.Assignment == nil {
		return fmt.Errorf("assignment job missing payload")
	}
	_, err := h.Matcher.Assign(job.Assignment.OrderID)
	if err != nil {
		if errors.Is(err, models.ErrNoPartnerAvailable) {
			log.Printf("[worker] no partner available for order %s", job.Assignment.OrderID)
		}
		return err
	}
	return nil
}

// HandleNotification appends the notification to the user's durable log and
// pushes a realtime notification.new event to that user.
func (h *Handlers) HandleNotification(ctx context.Context, job models.Job) error {
	if job.Notification == nil {
		return fmt.Errorf("notification job missing payload")
	}
	n := job.Notification
	h.Store.AppendNotification(n.UserID, n.Type, n.Title, n.Body)
	h.Broadcaster.SendToUser(n.UserID, models.Event{
		Type: models.EventNotificationNew,
		Payload: models.NotificationNewPayload{
			UserID: n.UserID,
			Type:   n.Type,
			Title:  n.Title,
			Body:   n.Body,
		},
	})
	return nil
}

// HandlePaymentVerification simulates a gateway call: fixed latency, then
// success with the configured probability. A successful verification queues
// a follow-up notification; a failed one is only logged, no compensating
// action is taken.
func (h *Handlers) HandlePaymentVerification(ctx context.Context, job models.Job) error {
	if job.Payment == nil {
		return fmt.Errorf("payment verification job missing payload")
	}
	p := job.Payment

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(h.PaymentLatency):
	}

	if h.roll() >= h.PaymentSuccessRate {
		return fmt.Errorf("payment verification failed for order %s via %s", p.OrderID, p.Gateway)
	}

	order, err := h.Store.Order(p.OrderID)
	if err != nil {
		return fmt.Errorf("payment verified but order %s not found: %w", p.OrderID, err)
	}
	log.Printf("[worker] payment verified for order %s", p.OrderID)
	return h.Queue.Enqueue(models.NewNotificationJob(
		order.CustomerID,
		models.NotificationOrderStatus,
		"Payment Successful",
		fmt.Sprintf("Your payment for order #%s has been confirmed.", shortID(p.OrderID)),
	))
}

// HandleAnalytics appends the event to the per-user analytics log.
func (h *Handlers) HandleAnalytics(ctx context.Context, job models.Job) error {
	if job.Analytics == nil {
		return fmt.Errorf("analytics job missing payload")
	}
	a := job.Analytics
	h.Store.AppendAnalyticsEvent(a.UserID, a.EventType, a.Payload)
	return nil
}

// shortID trims an entity id to the short form shown to customers.
func shortID(id string) string {
	if len(id) > 12 {
		return id[6:12]
	}
	return id
}
