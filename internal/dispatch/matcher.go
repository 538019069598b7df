// Package dispatch holds the availability evaluator and the matching
// engine: given a placed order, pick the nearest partner who is online and
// on shift, and assign them transactionally.
package dispatch

import (
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/chrisdamba/foodispatch/internal/models"
	"github.com/chrisdamba/foodispatch/internal/store"
)

// Publisher is the slice of the event broadcaster the matcher needs.
type Publisher interface {
	Publish(event models.Event)
}

// Assignment is the successful result of a match.
type Assignment struct {
	Order      models.Order
	Partner    models.Partner
	Distance   float64
	EtaMinutes int
}

type Matcher struct {
	store     *store.Store
	publisher Publisher
	now       func() time.Time
}

func NewMatcher(s *store.Store, publisher Publisher) *Matcher {
	return &Matcher{store: s, publisher: publisher, now: time.Now}
}

// SetClock overrides the matcher clock. Tests only.
func (m *Matcher) SetClock(now func() time.Time) { m.now = now }

// Assign selects and assigns the best partner for a placed order.
//
// Candidates are every partner passing the availability evaluator at the
// current instant; no service-type filtering is applied. The winner is the
// candidate at strictly minimal flat-plane distance from the pickup point,
// ties going to the first-seen partner. The ETA is a calibrated placeholder
// derived from that distance, not a routing estimate.
//
// Event publication is best-effort: the assignment is not rolled back if a
// subscriber misses the partner.assigned event.
func (m *Matcher) Assign(orderID string) (Assignment, error) {
	order, err := m.store.Order(orderID)
	if err != nil {
		return Assignment{}, fmt.Errorf("matcher: order %s: %w", orderID, err)
	}
	if order.Status != models.OrderPlaced {
		return Assignment{}, fmt.Errorf("matcher: order %s is %q, not %q: %w",
			orderID, order.Status, models.OrderPlaced, models.ErrInvalidTransition)
	}

	now := m.now()
	best := models.Partner{}
	bestDistance := math.Inf(1)
	found := false
	for _, partner := range m.store.Partners() {
		if !PartnerAvailableAt(partner, m.store.Availability(partner.ID), now) {
			continue
		}
		distance := models.PlaneDistance(partner.CurrentLocation, order.PickupLocation)
		if distance < bestDistance {
			best = partner
			bestDistance = distance
			found = true
		}
	}
	if !found {
		return Assignment{}, fmt.Errorf("matcher: order %s: %w", orderID, models.ErrNoPartnerAvailable)
	}

	assigned, err := m.store.AssignPartnerToOrder(orderID, best.ID)
	if err != nil {
		// The winner may have been grabbed by a concurrent assignment
		// between candidate selection and the store transaction.
		if errors.Is(err, models.ErrNoPartnerAvailable) {
			return Assignment{}, fmt.Errorf("matcher: order %s: partner %s taken: %w",
				orderID, best.ID, models.ErrNoPartnerAvailable)
		}
		return Assignment{}, fmt.Errorf("matcher: assign order %s: %w", orderID, err)
	}

	eta := EtaMinutes(bestDistance)
	m.publisher.Publish(models.Event{
		Type: models.EventPartnerAssigned,
		Payload: models.PartnerAssignedPayload{
			OrderID:    assigned.ID,
			Partner:    best.Info(),
			EtaMinutes: eta,
		},
	})
	log.Printf("[matcher] assigned partner %s to order %s (distance %.4f, eta %dm)",
		best.ID, assigned.ID, bestDistance, eta)

	return Assignment{Order: assigned, Partner: best, Distance: bestDistance, EtaMinutes: eta}, nil
}

// EtaMinutes derives an arrival estimate from a flat-plane distance. The
// coefficients are calibrated placeholders carried over from the customer
// app contract.
func EtaMinutes(distance float64) int {
	return int(math.Round(distance*200)) + 5
}
