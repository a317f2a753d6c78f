package port

import "context"

// Notification carries a single out-of-band message to a user.
type Notification struct {
	To      string
	Subject string
	HTML    string
}

// Notifier delivers notifications over a side channel (email in the reference
// deployment). Delivery is best-effort; callers must not treat a send failure
// as fatal for the surrounding flow.
type Notifier interface {
	Send(ctx context.Context, msg Notification) error
}
