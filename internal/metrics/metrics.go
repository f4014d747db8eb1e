// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
type Recorder interface {
	// Record store metrics
	IncRecordCreated()
	IncRecordUpdated()
	IncRecordDeleted()

	// Gate denials, reason: "unauthenticated", "user_not_found", "not_found", "forbidden"
	IncAccessDenied(reason string)

	// Document rendering, format: "html" or "pdf"
	ObserveRender(format string, duration time.Duration, err error)
	IncArchiveUploaded()

	// Sessions
	IncSessionCreated()
	IncSessionRevoked()

	// HTTP
	ObserveHTTPRequest(method, route string, status int, duration time.Duration)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
