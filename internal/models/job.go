package models

type JobKind string

const (
	JobAssignment          JobKind = "order-assignment"
	JobNotification        JobKind = "notification"
	JobPaymentVerification JobKind = "payment-verification"
	JobAnalytics           JobKind = "analytics"
)

// Job is the tagged union carried on the dispatch queue. Exactly one of the
// payload pointers is set, selected by Kind. Jobs are ephemeral: they are
// consumed exactly once and are not persisted across restarts.
type Job struct {
	Kind         JobKind
	Assignment   *AssignmentJob
	Notification *NotificationJob
	Payment      *PaymentVerificationJob
	Analytics    *AnalyticsJob
}

type AssignmentJob struct {
	OrderID string
}

type NotificationJob struct {
	UserID string
	Type   NotificationType
	Title  string
	Body   string
}

type PaymentVerificationJob struct {
	OrderID       string
	Gateway       string
	TransactionID string
}

type AnalyticsJob struct {
	UserID    string
	EventType string
	Payload   map[string]interface{}
}

func NewAssignmentJob(orderID string) Job {
	return Job{Kind: JobAssignment, Assignment: &AssignmentJob{OrderID: orderID}}
}

func NewNotificationJob(userID string, typ NotificationType, title, body string) Job {
	return Job{Kind: JobNotification, Notification: &NotificationJob{
		UserID: userID, Type: typ, Title: title, Body: body,
	}}
}

func NewPaymentVerificationJob(orderID, gateway, txID string) Job {
	return Job{Kind: JobPaymentVerification, Payment: &PaymentVerificationJob{
		OrderID: orderID, Gateway: gateway, TransactionID: txID,
	}}
}

func NewAnalyticsJob(userID, eventType string, payload map[string]interface{}) Job {
	return Job{Kind: JobAnalytics, Analytics: &AnalyticsJob{
		UserID: userID, EventType: eventType, Payload: payload,
	}}
}
