package policies

import "context"

// Notification templates understood by notifier adapters.
const (
	TemplateBookingCreated   = "booking_created"
	TemplateBookingConfirmed = "booking_confirmed"
	TemplateBookingCompleted = "booking_completed"
	TemplateBookingCancelled = "booking_cancelled"
)

// Notifier delivers a templated message to a recipient address. Delivery is
// best effort; callers log failures and move on.
type Notifier interface {
	Send(ctx context.Context, to string, template string, data any) error
}
