package models

import "time"

type OrderStatus string

// Wire values match the customer app's contract, including the space in
// "On The Way".
const (
	OrderPlaced    OrderStatus = "Placed"
	OrderAssigned  OrderStatus = "Assigned"
	OrderOnTheWay  OrderStatus = "On The Way"
	OrderDelivered OrderStatus = "Delivered"
	OrderCompleted OrderStatus = "Completed"
	OrderCancelled OrderStatus = "Cancelled"
)

type PriceBreakdown struct {
	BaseFare      float64 `json:"baseFare"`
	DistanceFee   float64 `json:"distanceFee"`
	WeightFee     float64 `json:"weightFee"`
	TierSurcharge float64 `json:"tierSurcharge"`
	ServiceFee    float64 `json:"serviceFee"`
	Subtotal      float64 `json:"subtotal"`
	Total         float64 `json:"total"`
}

type Order struct {
	ID                  string         `json:"id"`
	CustomerID          string         `json:"customer_id"`
	PartnerID           string         `json:"partner_id"` // empty until assigned
	ServiceType         string         `json:"service_type"`
	PickupLocation      Location       `json:"pickup_location"`
	DeliveryLocation    Location       `json:"delivery_location"`
	PackageDescription  string         `json:"package_description"`
	Weight              string         `json:"weight"`
	SpecialInstructions string         `json:"special_instructions"`
	RecipientPhone      string         `json:"recipient_phone"`
	Price               PriceBreakdown `json:"price_breakdown"`
	Status              OrderStatus    `json:"status"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
}

// OrderDraft carries the caller-supplied fields of a new order. Explicit
// named fields rather than a free-form patch keep the Placed-order
// invariants checkable at compile time.
type OrderDraft struct {
	ServiceType         string
	PickupLocation      Location
	DeliveryLocation    Location
	PackageDescription  string
	Weight              string
	SpecialInstructions string
	RecipientPhone      string
	Price               PriceBreakdown
}

// OrderPatch holds the optional fields a partial update may touch. Nil
// means "leave unchanged".
type OrderPatch struct {
	SpecialInstructions *string
	RecipientPhone      *string
}

// ApplyPatch merges a patch into an order copy, field by field.
func (o Order) ApplyPatch(p OrderPatch) Order {
	if p.SpecialInstructions != nil {
		o.SpecialInstructions = *p.SpecialInstructions
	}
	if p.RecipientPhone != nil {
		o.RecipientPhone = *p.RecipientPhone
	}
	return o
}

// Active reports whether a partner is expected to be moving for this order.
func (s OrderStatus) Active() bool {
	return s == OrderAssigned || s == OrderOnTheWay
}

// Terminal statuses admit no further transitions except Delivered, which
// still accepts the rating-driven hop to Completed.
func (s OrderStatus) Terminal() bool {
	return s == OrderCompleted || s == OrderCancelled
}

// CanTransition is the single source of truth for the order state machine:
//
//	Placed -> Assigned -> On The Way -> Delivered -> Completed
//
// with Cancelled reachable from Placed, Assigned and On The Way.
// Delivered -> Completed happens only through rating; callers enforce that
// actor-level rule on top of this table.
func CanTransition(from, to OrderStatus) bool {
	switch from {
	case OrderPlaced:
		return to == OrderAssigned || to == OrderCancelled
	case OrderAssigned:
		return to == OrderOnTheWay || to == OrderCancelled
	case OrderOnTheWay:
		return to == OrderDelivered || to == OrderCancelled
	case OrderDelivered:
		return to == OrderCompleted
	default:
		return false
	}
}
