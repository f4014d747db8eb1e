package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	RecordsCreated   uint64
	RecordsUpdated   uint64
	RecordsDeleted   uint64
	AccessDenied     map[string]uint64
	Renders          map[string]uint64
	RenderFailures   map[string]uint64
	ArchivesUploaded uint64
	SessionsCreated  uint64
	SessionsRevoked  uint64
	HTTPRequests     uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	recordsCreated   uint64
	recordsUpdated   uint64
	recordsDeleted   uint64
	archivesUploaded uint64
	sessionsCreated  uint64
	sessionsRevoked  uint64
	httpRequests     uint64

	mu             sync.Mutex
	accessDenied   map[string]uint64
	renders        map[string]uint64
	renderFailures map[string]uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		accessDenied:   make(map[string]uint64),
		renders:        make(map[string]uint64),
		renderFailures: make(map[string]uint64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Snapshot{
		RecordsCreated:   atomic.LoadUint64(&m.recordsCreated),
		RecordsUpdated:   atomic.LoadUint64(&m.recordsUpdated),
		RecordsDeleted:   atomic.LoadUint64(&m.recordsDeleted),
		AccessDenied:     copyCounts(m.accessDenied),
		Renders:          copyCounts(m.renders),
		RenderFailures:   copyCounts(m.renderFailures),
		ArchivesUploaded: atomic.LoadUint64(&m.archivesUploaded),
		SessionsCreated:  atomic.LoadUint64(&m.sessionsCreated),
		SessionsRevoked:  atomic.LoadUint64(&m.sessionsRevoked),
		HTTPRequests:     atomic.LoadUint64(&m.httpRequests),
	}
}

func (m *InMemoryRecorder) IncRecordCreated() { atomic.AddUint64(&m.recordsCreated, 1) }
func (m *InMemoryRecorder) IncRecordUpdated() { atomic.AddUint64(&m.recordsUpdated, 1) }
func (m *InMemoryRecorder) IncRecordDeleted() { atomic.AddUint64(&m.recordsDeleted, 1) }

// IncAccessDenied counts a gate denial by reason.
func (m *InMemoryRecorder) IncAccessDenied(reason string) {
	m.mu.Lock()
	m.accessDenied[reason]++
	m.mu.Unlock()
}

// ObserveRender counts a render attempt, and a failure when err is non-nil.
func (m *InMemoryRecorder) ObserveRender(format string, _ time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.renders[format]++
	if err != nil {
		m.renderFailures[format]++
	}
}

func (m *InMemoryRecorder) IncArchiveUploaded() { atomic.AddUint64(&m.archivesUploaded, 1) }
func (m *InMemoryRecorder) IncSessionCreated() { atomic.AddUint64(&m.sessionsCreated, 1) }
func (m *InMemoryRecorder) IncSessionRevoked() { atomic.AddUint64(&m.sessionsRevoked, 1) }

// ObserveHTTPRequest counts a served request.
func (m *InMemoryRecorder) ObserveHTTPRequest(string, string, int, time.Duration) {
	atomic.AddUint64(&m.httpRequests, 1)
}

func copyCounts(src map[string]uint64) map[string]uint64 {
	dst := make(map[string]uint64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
