package events

import "time"

// OperationStart is emitted before a document is handed to a transport.
type OperationStart struct {
	Query         string
	OperationName string
	OperationType string
}

// OperationFinish is emitted once the response envelope exists. Errors holds
// transport failures and GraphQL errors alike.
type OperationFinish struct {
	Query         string
	OperationName string
	OperationType string
	Errors        []error
	Duration      time.Duration
}
