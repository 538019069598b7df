package models

import "time"

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type NotificationType string

const (
	NotificationOrderStatus NotificationType = "order_status"
	NotificationPromotion   NotificationType = "promotion"
	NotificationAccount     NotificationType = "account"
	NotificationChatMessage NotificationType = "chat_message"
)

// NotificationLog is the durable per-user delivery-history record written by
// the notification worker.
type NotificationLog struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Body      string           `json:"body"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"created_at"`
}

// AnalyticsEvent is an append-only per-user behavioural event.
type AnalyticsEvent struct {
	ID        string                 `json:"id"`
	UserID    string                 `json:"user_id"`
	EventType string                 `json:"event_type"`
	Payload   map[string]interface{} `json:"payload"`
	CreatedAt time.Time              `json:"created_at"`
}

type Rating struct {
	ID         string    `json:"id"`
	OrderID    string    `json:"order_id"`
	CustomerID string    `json:"customer_id"`
	PartnerID  string    `json:"partner_id"`
	Rating     int       `json:"rating"`
	Review     string    `json:"review"`
	CreatedAt  time.Time `json:"created_at"`
}
