// Package app wires the dispatch core together: entity store, job queue,
// matching engine, event broker, and the partner location simulator.
package app

import (
	"context"
	"io"
	"log"
	"math/rand"
	"time"

	"github.com/chrisdamba/foodispatch/internal/broker"
	"github.com/chrisdamba/foodispatch/internal/dispatch"
	"github.com/chrisdamba/foodispatch/internal/factories"
	"github.com/chrisdamba/foodispatch/internal/models"
	"github.com/chrisdamba/foodispatch/internal/queue"
	"github.com/chrisdamba/foodispatch/internal/service"
	"github.com/chrisdamba/foodispatch/internal/simulator"
	"github.com/chrisdamba/foodispatch/internal/sink"
	"github.com/chrisdamba/foodispatch/internal/store"
)

type App struct {
	Config  *models.Config
	Store   *store.Store
	Queue   *queue.Queue
	Broker  *broker.Broker
	Matcher *dispatch.Matcher
	Orders  *service.OrderService
	Sim     *simulator.LocationSimulator

	eventSink sink.EventSink
}

func New(cfg *models.Config) (*App, error) {
	eventSink, err := sink.ForConfig(cfg)
	if err != nil {
		return nil, err
	}

	st := store.New()
	b := broker.New(eventSink)
	q := queue.New(cfg.QueueSize)
	matcher := dispatch.NewMatcher(st, b)

	// The simulator goroutine and the worker pool each get their own rng;
	// math/rand.Rand must not be shared across goroutines.
	workerRng := rand.New(rand.NewSource(int64(cfg.Seed)))
	simRng := rand.New(rand.NewSource(int64(cfg.Seed) + 1))

	handlers := &queue.Handlers{
		Store:              st,
		Matcher:            matcher,
		Broadcaster:        b,
		Queue:              q,
		PaymentSuccessRate: cfg.PaymentSuccessRate,
		PaymentLatency:     cfg.PaymentLatency,
		Rng:                workerRng,
	}
	handlers.RegisterAll()

	orders := service.NewOrderService(st, q, b, cfg.RestorePartnerOnDelivery)
	sim := simulator.NewLocationSimulator(st, b, cfg.LocationUpdateInterval, cfg.LocationJitter, simRng)

	return &App{
		Config:    cfg,
		Store:     st,
		Queue:     q,
		Broker:    b,
		Matcher:   matcher,
		Orders:    orders,
		Sim:       sim,
		eventSink: eventSink,
	}, nil
}

// Run seeds the store, starts the queue workers and the location simulator,
// and blocks until ctx is cancelled.
func (a *App) Run(ctx context.Context, demo bool) error {
	users, partners := a.SeedData()
	log.Printf("[app] seeded %d users and %d partners around %s", len(users), len(partners), a.Config.CityName)

	a.Queue.Start(ctx, a.Config.QueueWorkers)
	go a.Sim.Run(ctx)

	if demo {
		go a.runDemo(users)
	}

	<-ctx.Done()
	return nil
}

// SeedData populates the store with generated customers and partners. Every
// partner gets a standard working week so matching has candidates.
func (a *App) SeedData() ([]models.User, []models.Partner) {
	userFactory := &factories.UserFactory{}
	partnerFactory := &factories.PartnerFactory{}

	users := make([]models.User, 0, a.Config.InitialUsers)
	for i := 0; i < a.Config.InitialUsers; i++ {
		users = append(users, a.Store.AddUser(userFactory.CreateUser(a.Config)))
	}

	partners := make([]models.Partner, 0, a.Config.InitialPartners)
	for i := 0; i < a.Config.InitialPartners; i++ {
		partner := a.Store.AddPartner(partnerFactory.CreatePartner(a.Config))
		for _, w := range partnerFactory.CreateAllDayWindows(partner.ID) {
			if err := a.Store.AddAvailability(w); err != nil {
				log.Printf("[app] seed availability for %s: %v", partner.ID, err)
			}
		}
		partners = append(partners, partner)
	}
	return users, partners
}

// runDemo pushes one scripted order through the whole pipeline so the event
// stream has something to show on a fresh start.
func (a *App) runDemo(users []models.User) {
	if len(users) == 0 {
		return
	}
	customer := users[0]

	order, err := a.Orders.PlaceOrder(customer.ID, models.OrderDraft{
		ServiceType:      "Package & Parcel",
		PickupLocation:   models.Location{Lat: a.Config.CityLat, Lng: a.Config.CityLng},
		DeliveryLocation: models.Location{Lat: a.Config.CityLat + 0.01, Lng: a.Config.CityLng - 0.01},
		Price:            models.PriceBreakdown{BaseFare: 10, DistanceFee: 4, Subtotal: 14, Total: 15.5, ServiceFee: 1.5},
	})
	if err != nil {
		log.Printf("[demo] place order: %v", err)
		return
	}
	if err := a.Orders.RequestMatch(customer.ID, order.ID); err != nil {
		log.Printf("[demo] request match: %v", err)
		return
	}

	// Let the assignment job land, then walk the order to delivery.
	time.Sleep(500 * time.Millisecond)
	for i := 0; i < 2; i++ {
		status, err := a.Orders.AdvanceProgress(customer.ID, order.ID)
		if err != nil {
			log.Printf("[demo] advance progress: %v", err)
			return
		}
		log.Printf("[demo] order %s progressed to %q", order.ID, status)
		time.Sleep(2 * time.Second)
	}
	if err := a.Orders.RateOrder(customer.ID, order.ID, 5, "Great delivery"); err != nil {
		log.Printf("[demo] rate order: %v", err)
	}
}

func (a *App) Close() {
	a.Queue.Close()
	if closer, ok := a.eventSink.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			log.Printf("[app] close event sink: %v", err)
		}
	}
}
