// Package service exposes the transport-agnostic order operations the API
// layer calls into. Every operation checks resource ownership and reports
// recoverable errors synchronously; matching itself happens asynchronously
// through the job queue.
package service

import (
	"fmt"
	"log"

	"github.com/chrisdamba/foodispatch/internal/models"
	"github.com/chrisdamba/foodispatch/internal/queue"
	"github.com/chrisdamba/foodispatch/internal/store"
)

type OrderService struct {
	store       *store.Store
	queue       *queue.Queue
	broadcaster queue.Broadcaster

	// RestorePartnerOnDelivery returns a partner to the available pool when
	// their order is delivered. The source system never did this, so the
	// default keeps the legacy behaviour; see the config for the rationale.
	restorePartnerOnDelivery bool
}

func NewOrderService(s *store.Store, q *queue.Queue, b queue.Broadcaster, restorePartnerOnDelivery bool) *OrderService {
	return &OrderService{
		store:                    s,
		queue:                    q,
		broadcaster:              b,
		restorePartnerOnDelivery: restorePartnerOnDelivery,
	}
}

// PlaceOrder creates a Placed order for the customer and queues the
// order-placed notification and analytics trail.
func (s *OrderService) PlaceOrder(customerID string, draft models.OrderDraft) (models.Order, error) {
	order, err := s.store.CreateOrder(customerID, draft)
	if err != nil {
		return models.Order{}, fmt.Errorf("place order: %w", err)
	}
	log.Printf("[service] created order %s for user %s", order.ID, customerID)

	s.enqueue(models.NewNotificationJob(
		customerID,
		models.NotificationOrderStatus,
		fmt.Sprintf("Order #%s Placed", shortID(order.ID)),
		fmt.Sprintf("Your %s order has been successfully placed. We are now finding a delivery partner.", order.ServiceType),
	))
	s.enqueue(models.NewAnalyticsJob(customerID, "order_placed", map[string]interface{}{
		"order_id":     order.ID,
		"service_type": order.ServiceType,
		"total":        order.Price.Total,
	}))
	return order, nil
}

// RequestMatch queues an assignment job for the order and returns
// immediately; the outcome arrives on the event stream. The status precheck
// here is advisory only, the store transaction re-checks it when the job
// runs.
func (s *OrderService) RequestMatch(actorID, orderID string) error {
	order, err := s.ownedOrder(actorID, orderID)
	if err != nil {
		return err
	}
	if order.Status != models.OrderPlaced {
		return fmt.Errorf("request match: order %s is %q: %w", orderID, order.Status, models.ErrInvalidTransition)
	}
	s.enqueue(models.NewAssignmentJob(orderID))
	return nil
}

// AdvanceProgress drives the order state machine forward one step:
// Assigned -> On The Way -> Delivered, publishing the progress events the
// customer app listens for.
func (s *OrderService) AdvanceProgress(actorID, orderID string) (models.OrderStatus, error) {
	order, err := s.ownedOrder(actorID, orderID)
	if err != nil {
		return "", err
	}
	if order.PartnerID == "" {
		return order.Status, fmt.Errorf("advance order %s: no partner assigned: %w", orderID, models.ErrInvalidTransition)
	}
	partner, err := s.store.Partner(order.PartnerID)
	if err != nil {
		return order.Status, fmt.Errorf("advance order %s: %w", orderID, err)
	}

	switch order.Status {
	case models.OrderAssigned:
		updated, err := s.store.TransitionOrder(orderID, models.OrderAssigned, models.OrderOnTheWay)
		if err != nil {
			return order.Status, fmt.Errorf("advance order %s: %w", orderID, err)
		}
		s.broadcaster.Publish(models.Event{
			Type:    models.EventPartnerArrivingPickup,
			Payload: models.OrderEventPayload{OrderID: orderID},
		})
		s.broadcaster.Publish(models.Event{
			Type: models.EventPartnerOnTheWay,
			Payload: models.OrderEventPayload{
				OrderID: orderID,
				Message: fmt.Sprintf("Your rider, %s, is heading to the pickup location.", partner.Name),
			},
		})
		s.notifyStatus(updated)
		return updated.Status, nil

	case models.OrderOnTheWay:
		updated, err := s.store.TransitionOrder(orderID, models.OrderOnTheWay, models.OrderDelivered)
		if err != nil {
			return order.Status, fmt.Errorf("advance order %s: %w", orderID, err)
		}
		s.broadcaster.Publish(models.Event{
			Type:    models.EventPickupCompleted,
			Payload: models.OrderEventPayload{OrderID: orderID},
		})
		s.broadcaster.Publish(models.Event{
			Type: models.EventDeliveryCompleted,
			Payload: models.OrderEventPayload{
				OrderID: orderID,
				Message: "Your order has been delivered successfully!",
			},
		})
		s.notifyStatus(updated)
		if s.restorePartnerOnDelivery {
			if err := s.store.ReleasePartner(order.PartnerID); err != nil {
				log.Printf("[service] release partner %s after delivery: %v", order.PartnerID, err)
			}
		}
		return updated.Status, nil

	default:
		return order.Status, fmt.Errorf("advance order %s: already %q: %w", orderID, order.Status, models.ErrInvalidTransition)
	}
}

// RateOrder records the customer's rating for a delivered order and marks
// the order Completed. Rating is the only way an order reaches Completed.
func (s *OrderService) RateOrder(actorID, orderID string, rating int, review string) error {
	if rating < 1 || rating > 5 {
		return models.ErrInvalidRating
	}
	order, err := s.ownedOrder(actorID, orderID)
	if err != nil {
		return err
	}
	if order.Status != models.OrderDelivered {
		return fmt.Errorf("rate order %s: status %q: %w", orderID, order.Status, models.ErrInvalidTransition)
	}

	if _, err := s.store.AddRating(models.Rating{
		OrderID:    orderID,
		CustomerID: actorID,
		PartnerID:  order.PartnerID,
		Rating:     rating,
		Review:     review,
	}); err != nil {
		return fmt.Errorf("rate order %s: %w", orderID, err)
	}
	updated, err := s.store.TransitionOrder(orderID, models.OrderDelivered, models.OrderCompleted)
	if err != nil {
		return fmt.Errorf("rate order %s: %w", orderID, err)
	}
	s.notifyStatus(updated)
	log.Printf("[service] user %s rated order %s with %d stars", actorID, orderID, rating)
	return nil
}

// CancelOrder cancels a not-yet-delivered order.
func (s *OrderService) CancelOrder(actorID, orderID string) error {
	if _, err := s.ownedOrder(actorID, orderID); err != nil {
		return err
	}
	updated, err := s.store.CancelOrder(orderID)
	if err != nil {
		return fmt.Errorf("cancel order %s: %w", orderID, err)
	}
	s.notifyStatus(updated)
	log.Printf("[service] cancelled order %s for user %s", orderID, actorID)
	return nil
}

// VerifyPayment queues an asynchronous verification of a gateway payment.
func (s *OrderService) VerifyPayment(actorID, orderID, gateway, transactionID string) error {
	if _, err := s.ownedOrder(actorID, orderID); err != nil {
		return err
	}
	s.enqueue(models.NewPaymentVerificationJob(orderID, gateway, transactionID))
	return nil
}

// Tracking is the live view of an order returned to its customer.
type Tracking struct {
	OrderID string              `json:"orderId"`
	Status  models.OrderStatus  `json:"status"`
	Partner *models.PartnerInfo `json:"partner,omitempty"`
}

// Track returns the order's current status and the assigned partner's
// public info, if any.
func (s *OrderService) Track(actorID, orderID string) (Tracking, error) {
	order, err := s.ownedOrder(actorID, orderID)
	if err != nil {
		return Tracking{}, err
	}
	t := Tracking{OrderID: order.ID, Status: order.Status}
	if order.PartnerID != "" {
		partner, err := s.store.Partner(order.PartnerID)
		if err == nil {
			info := partner.Info()
			t.Partner = &info
		}
	}
	return t, nil
}

func (s *OrderService) ownedOrder(actorID, orderID string) (models.Order, error) {
	order, err := s.store.Order(orderID)
	if err != nil {
		return models.Order{}, fmt.Errorf("order %s: %w", orderID, err)
	}
	if order.CustomerID != actorID {
		return models.Order{}, fmt.Errorf("order %s: %w", orderID, models.ErrPermissionDenied)
	}
	return order, nil
}

// notifyStatus queues the durable status-change notification every
// transition produces.
func (s *OrderService) notifyStatus(order models.Order) {
	s.enqueue(models.NewNotificationJob(
		order.CustomerID,
		models.NotificationOrderStatus,
		fmt.Sprintf("Order #%s Update", shortID(order.ID)),
		fmt.Sprintf("Your order status has been updated to: %s", order.Status),
	))
}

func (s *OrderService) enqueue(job models.Job) {
	if err := s.queue.Enqueue(job); err != nil {
		log.Printf("[service] enqueue %s: %v", job.Kind, err)
	}
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[6:12]
	}
	return id
}
