// Package store is the in-memory entity repository behind the dispatch
// core. A single mutex guards the primary maps and every secondary index so
// that read-modify-write sequences on one entity are atomic and the indices
// can never drift from the data they point at.
package store

import (
	"sync"
	"time"

	"github.com/chrisdamba/foodispatch/internal/models"
	"github.com/lucsky/cuid"
)

type Store struct {
	mu sync.RWMutex

	users    map[string]*models.User
	orders   map[string]*models.Order
	partners map[string]*models.Partner

	// partnerIDs preserves insertion order so matching ties resolve to the
	// first-seen partner deterministically.
	partnerIDs []string

	availabilityByPartner map[string][]models.AvailabilityWindow
	ordersByCustomer      map[string][]string
	notificationsByUser   map[string][]models.NotificationLog
	analyticsByUser       map[string][]models.AnalyticsEvent
	ratingsByPartner      map[string][]models.Rating
	ratingsByOrder        map[string]models.Rating

	now func() time.Time
}

func New() *Store {
	return &Store{
		users:                 make(map[string]*models.User),
		orders:                make(map[string]*models.Order),
		partners:              make(map[string]*models.Partner),
		availabilityByPartner: make(map[string][]models.AvailabilityWindow),
		ordersByCustomer:      make(map[string][]string),
		notificationsByUser:   make(map[string][]models.NotificationLog),
		analyticsByUser:       make(map[string][]models.AnalyticsEvent),
		ratingsByPartner:      make(map[string][]models.Rating),
		ratingsByOrder:        make(map[string]models.Rating),
		now:                   time.Now,
	}
}

// SetClock overrides the store clock. Tests only.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// --- users ---

func (s *Store) AddUser(u models.User) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == "" {
		u.ID = "user_" + cuid.New()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now()
	}
	s.users[u.ID] = &u
	return u
}

func (s *Store) User(id string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return models.User{}, models.ErrNotFound
	}
	return *u, nil
}

// --- partners ---

func (s *Store) AddPartner(p models.Partner) models.Partner {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = "partner_" + cuid.New()
	}
	if _, exists := s.partners[p.ID]; !exists {
		s.partnerIDs = append(s.partnerIDs, p.ID)
	}
	p.LastUpdateTime = s.now()
	s.partners[p.ID] = &p
	return p
}

func (s *Store) Partner(id string) (models.Partner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.partners[id]
	if !ok {
		return models.Partner{}, models.ErrNotFound
	}
	return *p, nil
}

// Partners returns all partners in insertion order.
func (s *Store) Partners() []models.Partner {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Partner, 0, len(s.partnerIDs))
	for _, id := range s.partnerIDs {
		out = append(out, *s.partners[id])
	}
	return out
}

func (s *Store) UpdatePartner(id string, patch models.PartnerPatch) (models.Partner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.partners[id]
	if !ok {
		return models.Partner{}, models.ErrNotFound
	}
	updated := p.ApplyPatch(patch)
	updated.LastUpdateTime = s.now()
	s.partners[id] = &updated
	return updated, nil
}

func (s *Store) UpdatePartnerLocation(id string, loc models.Location) (models.Partner, error) {
	return s.UpdatePartner(id, models.PartnerPatch{Location: &loc})
}

// ReleasePartner returns a partner to the available pool.
func (s *Store) ReleasePartner(id string) error {
	avail := true
	_, err := s.UpdatePartner(id, models.PartnerPatch{IsAvailable: &avail})
	return err
}

// --- availability windows ---

func (s *Store) AddAvailability(w models.AvailabilityWindow) error {
	if err := w.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.partners[w.PartnerID]; !ok {
		return models.ErrNotFound
	}
	s.availabilityByPartner[w.PartnerID] = append(s.availabilityByPartner[w.PartnerID], w)
	return nil
}

func (s *Store) Availability(partnerID string) []models.AvailabilityWindow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	windows := s.availabilityByPartner[partnerID]
	out := make([]models.AvailabilityWindow, len(windows))
	copy(out, windows)
	return out
}

// --- orders ---

func (s *Store) CreateOrder(customerID string, draft models.OrderDraft) (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[customerID]; !ok {
		return models.Order{}, models.ErrNotFound
	}
	now := s.now()
	order := models.Order{
		ID:                  "order_" + cuid.New(),
		CustomerID:          customerID,
		ServiceType:         draft.ServiceType,
		PickupLocation:      draft.PickupLocation,
		DeliveryLocation:    draft.DeliveryLocation,
		PackageDescription:  draft.PackageDescription,
		Weight:              draft.Weight,
		SpecialInstructions: draft.SpecialInstructions,
		RecipientPhone:      draft.RecipientPhone,
		Price:               draft.Price,
		Status:              models.OrderPlaced,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	s.orders[order.ID] = &order
	s.ordersByCustomer[customerID] = append(s.ordersByCustomer[customerID], order.ID)
	return order, nil
}

func (s *Store) Order(id string) (models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	if !ok {
		return models.Order{}, models.ErrNotFound
	}
	return *o, nil
}

func (s *Store) OrdersByCustomer(customerID string) []models.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.ordersByCustomer[customerID]
	out := make([]models.Order, 0, len(ids))
	for _, id := range ids {
		out = append(out, *s.orders[id])
	}
	return out
}

// ActiveOrders returns orders a partner is currently moving for.
func (s *Store) ActiveOrders() []models.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Order
	for _, o := range s.orders {
		if o.Status.Active() {
			out = append(out, *o)
		}
	}
	return out
}

func (s *Store) PatchOrder(id string, patch models.OrderPatch) (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return models.Order{}, models.ErrNotFound
	}
	updated := o.ApplyPatch(patch)
	updated.UpdatedAt = s.now()
	s.orders[id] = &updated
	return updated, nil
}

// TransitionOrder moves an order from one status to another as a single
// compare-and-set: the move happens only if the order is still in `from`
// and the state machine allows `from -> to`. This is what closes the
// concurrent double-assignment window.
func (s *Store) TransitionOrder(id string, from, to models.OrderStatus) (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transitionLocked(id, from, to)
}

func (s *Store) transitionLocked(id string, from, to models.OrderStatus) (models.Order, error) {
	o, ok := s.orders[id]
	if !ok {
		return models.Order{}, models.ErrNotFound
	}
	if o.Status != from || !models.CanTransition(from, to) {
		return *o, models.ErrInvalidTransition
	}
	o.Status = to
	o.UpdatedAt = s.now()
	return *o, nil
}

// AssignPartnerToOrder performs the assignment transaction: the order must
// still be Placed and the partner must still be available, then both are
// mutated under one lock hold. Either both changes land or neither does.
func (s *Store) AssignPartnerToOrder(orderID, partnerID string) (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.partners[partnerID]
	if !ok {
		return models.Order{}, models.ErrNotFound
	}
	o, ok := s.orders[orderID]
	if !ok {
		return models.Order{}, models.ErrNotFound
	}
	if o.Status != models.OrderPlaced {
		return *o, models.ErrInvalidTransition
	}
	if !p.IsAvailable {
		return *o, models.ErrNoPartnerAvailable
	}

	o.PartnerID = partnerID
	o.Status = models.OrderAssigned
	o.UpdatedAt = s.now()
	p.IsAvailable = false
	p.LastUpdateTime = s.now()
	return *o, nil
}

// CancelOrder moves any non-terminal, non-delivered order to Cancelled.
// The partner reference is cleared and the partner returned to the pool in
// the same lock hold, so the "partner set iff assigned-or-later" invariant
// holds even for orders cancelled mid-delivery.
func (s *Store) CancelOrder(id string) (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return models.Order{}, models.ErrNotFound
	}
	if !models.CanTransition(o.Status, models.OrderCancelled) {
		return *o, models.ErrInvalidTransition
	}
	if o.PartnerID != "" {
		if p, ok := s.partners[o.PartnerID]; ok {
			p.IsAvailable = true
			p.LastUpdateTime = s.now()
		}
		o.PartnerID = ""
	}
	o.Status = models.OrderCancelled
	o.UpdatedAt = s.now()
	return *o, nil
}

// --- ratings ---

func (s *Store) AddRating(r models.Rating) (models.Rating, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[r.OrderID]; !ok {
		return models.Rating{}, models.ErrNotFound
	}
	if r.ID == "" {
		r.ID = "rating_" + cuid.New()
	}
	r.CreatedAt = s.now()
	s.ratingsByOrder[r.OrderID] = r
	s.ratingsByPartner[r.PartnerID] = append(s.ratingsByPartner[r.PartnerID], r)
	return r, nil
}

func (s *Store) RatingsByPartner(partnerID string) []models.Rating {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ratings := s.ratingsByPartner[partnerID]
	out := make([]models.Rating, len(ratings))
	copy(out, ratings)
	return out
}

// --- notification and analytics logs ---

func (s *Store) AppendNotification(userID string, typ models.NotificationType, title, body string) models.NotificationLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := models.NotificationLog{
		ID:        "notif_" + cuid.New(),
		UserID:    userID,
		Type:      typ,
		Title:     title,
		Body:      body,
		CreatedAt: s.now(),
	}
	s.notificationsByUser[userID] = append(s.notificationsByUser[userID], entry)
	return entry
}

func (s *Store) NotificationsByUser(userID string) []models.NotificationLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	logs := s.notificationsByUser[userID]
	out := make([]models.NotificationLog, len(logs))
	copy(out, logs)
	return out
}

func (s *Store) AppendAnalyticsEvent(userID, eventType string, payload map[string]interface{}) models.AnalyticsEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := models.AnalyticsEvent{
		ID:        "event_" + cuid.New(),
		UserID:    userID,
		EventType: eventType,
		Payload:   payload,
		CreatedAt: s.now(),
	}
	s.analyticsByUser[userID] = append(s.analyticsByUser[userID], entry)
	return entry
}

func (s *Store) AnalyticsByUser(userID string) []models.AnalyticsEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	events := s.analyticsByUser[userID]
	out := make([]models.AnalyticsEvent, len(events))
	copy(out, events)
	return out
}

// CompletedOrders returns every order that reached Completed, for history
// exports.
func (s *Store) CompletedOrders() []models.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Order
	for _, o := range s.orders {
		if o.Status == models.OrderCompleted {
			out = append(out, *o)
		}
	}
	return out
}
