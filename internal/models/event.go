package models

// Event names form the stable contract the customer app subscribes to.
const (
	EventPartnerAssigned       = "partner.assigned"
	EventPartnerArrivingPickup = "partner.arriving_pickup"
	EventPartnerOnTheWay       = "partner.on_the_way"
	EventPickupCompleted       = "pickup.completed"
	EventLocationUpdated       = "location.updated"
	EventDeliveryCompleted     = "delivery.completed"
	EventNotificationNew       = "notification.new"
)

// Event is a named, payload-carrying notification pushed to subscribers.
// Delivery is at-most-once; nothing is replayed to late subscribers.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type PartnerAssignedPayload struct {
	OrderID    string      `json:"orderId"`
	Partner    PartnerInfo `json:"partner"`
	EtaMinutes int         `json:"etaMinutes"`
}

type OrderEventPayload struct {
	OrderID string `json:"orderId"`
	Message string `json:"message,omitempty"`
}

type LocationUpdatedPayload struct {
	OrderID   string  `json:"orderId"`
	PartnerID string  `json:"partnerId"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
}

type NotificationNewPayload struct {
	UserID string           `json:"userId"`
	Type   NotificationType `json:"type"`
	Title  string           `json:"title"`
	Body   string           `json:"body"`
}
