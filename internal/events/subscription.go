package events

import "time"

// SubscriptionStart is emitted after the server acknowledged the connection
// and the subscribe message was sent.
type SubscriptionStart struct {
	URL           string
	Protocol      string
	ID            string
	OperationName string
}

// SubscriptionFinish is emitted when the stream ends for any reason.
type SubscriptionFinish struct {
	URL      string
	Protocol string
	ID       string
	Messages int
	Err      error
	Duration time.Duration
}
