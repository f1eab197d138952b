package notify

import "context"

// Notification kinds emitted by this service.
const (
	KindLeaseAccepted   = "lease.accepted"
	KindLeaseRejected   = "lease.rejected"
	KindLeaseCancelled  = "lease.cancelled"
	KindLeaseTerminated = "lease.terminated"
	KindLeaseCompleted  = "lease.completed"
	KindPaymentDueSoon  = "payment.due_soon"
	KindPaymentDueToday = "payment.due_today"
	KindPaymentSettled  = "payment.settled"
)

// Message is one notification intent. Delivery is fire-and-forget: callers
// log failures and move on, they never fail the surrounding operation.
type Message struct {
	RecipientID string            `json:"recipient_id"`
	Kind        string            `json:"kind"`
	Body        string            `json:"body"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Notifier sends notifications.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}
