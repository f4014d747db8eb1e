package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

func (n *NoopRecorder) IncRecordCreated() {}
func (n *NoopRecorder) IncRecordUpdated() {}
func (n *NoopRecorder) IncRecordDeleted() {}
func (n *NoopRecorder) IncAccessDenied(string) {}
func (n *NoopRecorder) ObserveRender(string, time.Duration, error) {}
func (n *NoopRecorder) IncArchiveUploaded() {}
func (n *NoopRecorder) IncSessionCreated() {}
func (n *NoopRecorder) IncSessionRevoked() {}
func (n *NoopRecorder) ObserveHTTPRequest(string, string, int, time.Duration) {}
