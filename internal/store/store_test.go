package store

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/chrisdamba/foodispatch/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedOrder(t *testing.T, s *Store) (models.User, models.Order) {
	t.Helper()
	user := s.AddUser(models.User{Name: "Abena Owusu"})
	order, err := s.CreateOrder(user.ID, models.OrderDraft{
		ServiceType:    "Document",
		PickupLocation: models.Location{Lat: 6.70, Lng: -1.62},
		Price:          models.PriceBreakdown{Total: 20},
	})
	require.NoError(t, err)
	return user, order
}

func TestCreateOrderStartsPlaced(t *testing.T) {
	s := New()
	user, order := seedOrder(t, s)

	assert.Equal(t, models.OrderPlaced, order.Status)
	assert.Empty(t, order.PartnerID)
	assert.Equal(t, user.ID, order.CustomerID)

	byCustomer := s.OrdersByCustomer(user.ID)
	require.Len(t, byCustomer, 1)
	assert.Equal(t, order.ID, byCustomer[0].ID)
}

func TestCreateOrderUnknownCustomer(t *testing.T) {
	s := New()
	_, err := s.CreateOrder("user_missing", models.OrderDraft{})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestTransitionOrderIsCompareAndSet(t *testing.T) {
	s := New()
	_, order := seedOrder(t, s)

	_, err := s.TransitionOrder(order.ID, models.OrderPlaced, models.OrderAssigned)
	require.NoError(t, err)

	// Stale "from" loses.
	_, err = s.TransitionOrder(order.ID, models.OrderPlaced, models.OrderAssigned)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	// Illegal hop loses even with a fresh "from".
	_, err = s.TransitionOrder(order.ID, models.OrderAssigned, models.OrderCompleted)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestAssignPartnerToOrderIsTransactional(t *testing.T) {
	s := New()
	_, order := seedOrder(t, s)
	partner := s.AddPartner(models.Partner{Name: "Kofi Mensah", IsAvailable: true})

	assigned, err := s.AssignPartnerToOrder(order.ID, partner.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderAssigned, assigned.Status)
	assert.Equal(t, partner.ID, assigned.PartnerID)

	p, err := s.Partner(partner.ID)
	require.NoError(t, err)
	assert.False(t, p.IsAvailable)

	// Re-assignment is rejected and changes nothing.
	other := s.AddPartner(models.Partner{Name: "Ama Serwaa", IsAvailable: true})
	_, err = s.AssignPartnerToOrder(order.ID, other.ID)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
	o, _ := s.Order(order.ID)
	assert.Equal(t, partner.ID, o.PartnerID)
}

func TestAssignPartnerToOrderRejectsBusyPartner(t *testing.T) {
	s := New()
	_, order := seedOrder(t, s)
	busy := s.AddPartner(models.Partner{Name: "Busy", IsAvailable: false})

	_, err := s.AssignPartnerToOrder(order.ID, busy.ID)
	assert.ErrorIs(t, err, models.ErrNoPartnerAvailable)
	o, _ := s.Order(order.ID)
	assert.Equal(t, models.OrderPlaced, o.Status)
}

// Only one of many concurrent assignment attempts for the same order may
// win; the partner invariant must hold afterwards.
func TestConcurrentAssignmentSingleWinner(t *testing.T) {
	s := New()
	_, order := seedOrder(t, s)

	partners := make([]models.Partner, 8)
	for i := range partners {
		partners[i] = s.AddPartner(models.Partner{Name: fmt.Sprintf("P%d", i), IsAvailable: true})
	}

	var wg sync.WaitGroup
	wins := make(chan string, len(partners))
	for _, p := range partners {
		wg.Add(1)
		go func(partnerID string) {
			defer wg.Done()
			if _, err := s.AssignPartnerToOrder(order.ID, partnerID); err == nil {
				wins <- partnerID
			}
		}(p.ID)
	}
	wg.Wait()
	close(wins)

	var winners []string
	for id := range wins {
		winners = append(winners, id)
	}
	require.Len(t, winners, 1)

	o, _ := s.Order(order.ID)
	assert.Equal(t, winners[0], o.PartnerID)
	busyCount := 0
	for _, p := range s.Partners() {
		if !p.IsAvailable {
			busyCount++
		}
	}
	assert.Equal(t, 1, busyCount)
}

func TestCancelOrderClearsPartnerAndReleases(t *testing.T) {
	s := New()
	_, order := seedOrder(t, s)
	partner := s.AddPartner(models.Partner{Name: "Kofi Mensah", IsAvailable: true})
	_, err := s.AssignPartnerToOrder(order.ID, partner.ID)
	require.NoError(t, err)

	cancelled, err := s.CancelOrder(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, cancelled.Status)
	assert.Empty(t, cancelled.PartnerID)

	p, _ := s.Partner(partner.ID)
	assert.True(t, p.IsAvailable)
}

func TestCancelOrderRejectsDeliveredAndTerminal(t *testing.T) {
	s := New()
	_, order := seedOrder(t, s)
	partner := s.AddPartner(models.Partner{Name: "Kofi Mensah", IsAvailable: true})
	_, err := s.AssignPartnerToOrder(order.ID, partner.ID)
	require.NoError(t, err)
	_, err = s.TransitionOrder(order.ID, models.OrderAssigned, models.OrderOnTheWay)
	require.NoError(t, err)
	_, err = s.TransitionOrder(order.ID, models.OrderOnTheWay, models.OrderDelivered)
	require.NoError(t, err)

	_, err = s.CancelOrder(order.ID)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
	o, _ := s.Order(order.ID)
	assert.Equal(t, models.OrderDelivered, o.Status)
}

func TestPartnersKeepInsertionOrder(t *testing.T) {
	s := New()
	var want []string
	for i := 0; i < 5; i++ {
		p := s.AddPartner(models.Partner{Name: fmt.Sprintf("P%d", i)})
		want = append(want, p.ID)
	}
	var got []string
	for _, p := range s.Partners() {
		got = append(got, p.ID)
	}
	assert.Equal(t, want, got)
}

func TestAddAvailabilityValidates(t *testing.T) {
	s := New()
	partner := s.AddPartner(models.Partner{Name: "Kofi Mensah"})

	err := s.AddAvailability(models.AvailabilityWindow{
		PartnerID: partner.ID, DayOfWeek: time.Monday, StartTime: "17:00", EndTime: "09:00",
	})
	assert.Error(t, err)

	err = s.AddAvailability(models.AvailabilityWindow{
		PartnerID: "partner_missing", DayOfWeek: time.Monday, StartTime: "09:00", EndTime: "17:00",
	})
	assert.ErrorIs(t, err, models.ErrNotFound)

	require.NoError(t, s.AddAvailability(models.AvailabilityWindow{
		PartnerID: partner.ID, DayOfWeek: time.Monday, StartTime: "09:00", EndTime: "17:00",
	}))
	assert.Len(t, s.Availability(partner.ID), 1)
}

func TestNotificationAndAnalyticsLogs(t *testing.T) {
	s := New()
	user := s.AddUser(models.User{Name: "Abena Owusu"})

	s.AppendNotification(user.ID, models.NotificationOrderStatus, "Order Update", "On The Way")
	s.AppendAnalyticsEvent(user.ID, "order_placed", map[string]interface{}{"total": 20.0})

	notifs := s.NotificationsByUser(user.ID)
	require.Len(t, notifs, 1)
	assert.Equal(t, "Order Update", notifs[0].Title)
	assert.False(t, notifs[0].Read)

	events := s.AnalyticsByUser(user.ID)
	require.Len(t, events, 1)
	assert.Equal(t, "order_placed", events[0].EventType)
}

func TestApplyPatchMergesNamedFields(t *testing.T) {
	s := New()
	_, order := seedOrder(t, s)

	instructions := "Leave at the gate"
	patched, err := s.PatchOrder(order.ID, models.OrderPatch{SpecialInstructions: &instructions})
	require.NoError(t, err)
	assert.Equal(t, instructions, patched.SpecialInstructions)
	assert.Equal(t, order.RecipientPhone, patched.RecipientPhone)
}
