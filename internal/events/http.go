package events

import (
	"net/http"
	"time"
)

// HTTPStart is emitted before an outgoing request is sent.
// Context carries the request id.
type HTTPStart struct {
	Request *http.Request
}

// HTTPFinish is emitted when the response body was read or the request
// failed. Status is zero when no response arrived.
type HTTPFinish struct {
	Request  *http.Request
	Status   int
	Err      error
	Duration time.Duration
}
