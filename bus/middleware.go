package bus

import (
	"context"
	"sync"
	"time"

	"github.com/hsn2-platform/worker-core/metrics"
)

// LoggingMiddleware logs every synchronous send and its reply.
type LoggingMiddleware struct {
	Logger Logger
}

func (m *LoggingMiddleware) Before(_ context.Context, dest Destination, env Envelope) error {
	m.Logger.Debug("bus_send", "dest", string(dest), "type", env.Type)
	return nil
}

func (m *LoggingMiddleware) After(_ context.Context, dest Destination, env Envelope, reply *Envelope, err error) {
	if err != nil {
		m.Logger.Warn("bus_send_failed", "dest", string(dest), "type", env.Type, "error", err)
		return
	}
	replyType := ""
	if reply != nil {
		replyType = reply.Type
	}
	m.Logger.Debug("bus_reply", "dest", string(dest), "type", env.Type, "reply_type", replyType)
}

type circuitState struct {
	failures    int
	lastFailure time.Time
	open        bool
}

// CircuitBreakerMiddleware fast-fails synchronous sends to a
// destination whose recent sends have failed repeatedly (any error
// counts, timeouts included), rather than
// letting every worker pile retries onto an already-struggling
// Framework or Object Store.
type CircuitBreakerMiddleware struct {
	failureThreshold int
	resetTimeout     time.Duration

	mu     sync.Mutex
	states map[Destination]*circuitState
}

// NewCircuitBreakerMiddleware builds a breaker that opens after
// failureThreshold consecutive failures and, once resetTimeout has
// elapsed since the last failure, lets sends through again; the next
// success closes it and the next failure restarts the wait.
func NewCircuitBreakerMiddleware(failureThreshold int, resetTimeout time.Duration) *CircuitBreakerMiddleware {
	return &CircuitBreakerMiddleware{
		failureThreshold: failureThreshold,
		resetTimeout:     resetTimeout,
		states:           make(map[Destination]*circuitState),
	}
}

func (m *CircuitBreakerMiddleware) stateFor(dest Destination) *circuitState {
	s, ok := m.states[dest]
	if !ok {
		s = &circuitState{}
		m.states[dest] = s
	}
	return s
}

func (m *CircuitBreakerMiddleware) Before(_ context.Context, dest Destination, _ Envelope) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.stateFor(dest)
	if s.open {
		if time.Since(s.lastFailure) > m.resetTimeout {
			// half-open: allow this probe through
			return nil
		}
		return ErrCircuitOpen
	}
	return nil
}

func (m *CircuitBreakerMiddleware) After(_ context.Context, dest Destination, _ Envelope, _ *Envelope, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.stateFor(dest)
	if err != nil {
		s.failures++
		s.lastFailure = time.Now()
		if s.failures >= m.failureThreshold {
			s.open = true
		}
		return
	}
	s.failures = 0
	s.open = false
}

// Reset clears the breaker state for a destination, or every
// destination when dest is "".
func (m *CircuitBreakerMiddleware) Reset(dest Destination) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if dest == "" {
		m.states = make(map[Destination]*circuitState)
		return
	}
	delete(m.states, dest)
}

// MetricsMiddleware records the latency of every synchronous send,
// regardless of outcome.
type MetricsMiddleware struct {
	mu     sync.Mutex
	starts map[Destination]time.Time
}

// NewMetricsMiddleware builds a MetricsMiddleware.
func NewMetricsMiddleware() *MetricsMiddleware {
	return &MetricsMiddleware{starts: make(map[Destination]time.Time)}
}

func (m *MetricsMiddleware) Before(_ context.Context, dest Destination, _ Envelope) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.starts[dest] = time.Now()
	return nil
}

func (m *MetricsMiddleware) After(_ context.Context, dest Destination, _ Envelope, _ *Envelope, _ error) {
	m.mu.Lock()
	started, ok := m.starts[dest]
	delete(m.starts, dest)
	m.mu.Unlock()
	if ok {
		metrics.RecordBusRoundTrip(time.Since(started))
	}
}

var _ Middleware = (*LoggingMiddleware)(nil)
var _ Middleware = (*CircuitBreakerMiddleware)(nil)
var _ Middleware = (*MetricsMiddleware)(nil)
