// Package simulator feeds the event stream with synthetic partner movement
// while no real partner app is connected. It runs on its own ticker,
// independent of any request.
package simulator

import (
	"context"
	"log"
	"math/rand"
	"time"

	"github.com/chrisdamba/foodispatch/internal/models"
	"github.com/chrisdamba/foodispatch/internal/store"
)

type Publisher interface {
	Publish(event models.Event)
}

// LocationSimulator periodically perturbs the coordinates of every partner
// working an active order (Assigned / On The Way) and republishes
// location.updated for that order.
type LocationSimulator struct {
	store     *store.Store
	publisher Publisher
	interval  time.Duration
	jitter    float64
	rng       *rand.Rand
}

func NewLocationSimulator(s *store.Store, p Publisher, interval time.Duration, jitter float64, rng *rand.Rand) *LocationSimulator {
	if interval <= 0 {
		interval = 3 * time.Second
	}
	if jitter <= 0 {
		jitter = 0.001
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &LocationSimulator{store: s, publisher: p, interval: interval, jitter: jitter, rng: rng}
}

// Run blocks until ctx is cancelled.
func (ls *LocationSimulator) Run(ctx context.Context) {
	log.Printf("[simulator] partner location simulator started (interval %s)", ls.interval)
	ticker := time.NewTicker(ls.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("[simulator] partner location simulator stopped")
			return
		case <-ticker.C:
			ls.Tick()
		}
	}
}

// Tick performs one round of jitter-and-broadcast. Exposed so tests can
// drive the simulator without real time.
func (ls *LocationSimulator) Tick() {
	for _, order := range ls.store.ActiveOrders() {
		if order.PartnerID == "" {
			continue
		}
		partner, err := ls.store.Partner(order.PartnerID)
		if err != nil {
			continue
		}
		next := models.Location{
			Lat: partner.CurrentLocation.Lat + (ls.rng.Float64()-0.5)*ls.jitter,
			Lng: partner.CurrentLocation.Lng + (ls.rng.Float64()-0.5)*ls.jitter,
		}
		if _, err := ls.store.UpdatePartnerLocation(partner.ID, next); err != nil {
			continue
		}
		ls.publisher.Publish(models.Event{
			Type: models.EventLocationUpdated,
			Payload: models.LocationUpdatedPayload{
				OrderID:   order.ID,
				PartnerID: partner.ID,
				Lat:       next.Lat,
				Lng:       next.Lng,
			},
		})
	}
}
