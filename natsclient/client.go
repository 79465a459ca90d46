package natsclient

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/nationalarchives/dri-data-migration-sub000/errors"
	"github.com/nationalarchives/dri-data-migration-sub000/metric"
)

// ConnectionStatus represents the state of the NATS connection
type ConnectionStatus int

// Possible connection statuses
const (
	StatusDisconnected ConnectionStatus = iota
	StatusConnecting
	StatusConnected
	StatusReconnecting
	StatusCircuitOpen
)

// String returns the string representation of ConnectionStatus
func (s ConnectionStatus) String() string {
	switch s {
	case StatusDisconnected:
		return "disconnected"
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	case StatusReconnecting:
		return "reconnecting"
	case StatusCircuitOpen:
		return "circuit_open"
	default:
		return "unknown"
	}
}

// Error messages
var (
	ErrNotConnected = stderrors.New("not connected to NATS")
	ErrCircuitOpen  = stderrors.New("circuit breaker is open")
	ErrClosed       = stderrors.New("client closed")
)

// Status holds runtime status information for the client
type Status struct {
	Status          ConnectionStatus
	FailureCount    int32
	LastFailureTime time.Time
	RTT             time.Duration
}

// Client manages a NATS connection with a circuit breaker.
type Client struct {
	url      string
	status   atomic.Value // ConnectionStatus
	failures atomic.Int32
	logger   *slog.Logger
	metrics  *metric.Metrics

	conn *nats.Conn
	js   jetstream.JetStream

	// Circuit breaker
	lastFailure      atomic.Value // time.Time
	backoff          atomic.Value // time.Duration
	circuitFailures  atomic.Int32
	circuitThreshold int32
	maxBackoff       time.Duration

	maxReconnects int
	reconnectWait time.Duration
	pingInterval  time.Duration
	timeout       time.Duration
	drainTimeout  time.Duration

	// cleared on close
	username string
	password string
	token    string

	clientName string

	onDisconnect   func(error)
	onReconnect    func()
	onHealthChange func(bool)

	mu      sync.RWMutex
	closeMu sync.Mutex
	closed  atomic.Bool
}

// NewClient creates a new NATS client with optional configuration
func NewClient(url string, opts ...ClientOption) (*Client, error) {
	if strings.TrimSpace(url) == "" {
		return nil, errors.WrapInvalid(errors.ErrMissingConfig, "Client", "NewClient", "url is required")
	}

	c := &Client{
		url:              url,
		logger:           slog.Default(),
		maxReconnects:    -1,
		reconnectWait:    2 * time.Second,
		pingInterval:     30 * time.Second,
		circuitThreshold: 5,
		maxBackoff:       time.Minute,
		timeout:          5 * time.Second,
		drainTimeout:     10 * time.Second,
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, errors.WrapInvalid(err, "Client", "NewClient", "apply option")
		}
	}
	c.logger = c.logger.With("component", "natsclient")

	c.status.Store(StatusDisconnected)
	c.backoff.Store(time.Second)
	c.lastFailure.Store(time.Time{})
	return c, nil
}

// URL returns the NATS server URL
func (m *Client) URL() string {
	return m.url
}

// Status returns the current connection status
func (m *Client) Status() ConnectionStatus {
	val := m.status.Load()
	if val == nil {
		return StatusDisconnected
	}
	return val.(ConnectionStatus)
}

func (m *Client) setStatus(status ConnectionStatus) {
	m.status.Store(status)
	m.metrics.SetNATSConnected(status == StatusConnected)
}

// IsHealthy returns true if the connection is healthy
func (m *Client) IsHealthy() bool {
	return m.Status() == StatusConnected
}

// Failures returns the current failure count
func (m *Client) Failures() int32 {
	return m.failures.Load()
}

// Backoff returns the current backoff duration
func (m *Client) Backoff() time.Duration {
	return m.backoff.Load().(time.Duration)
}

// recordFailure records a connection failure and opens the circuit after
// circuitThreshold failures in a round.
func (m *Client) recordFailure() {
	total := m.failures.Add(1)
	m.lastFailure.Store(time.Now())
	round := m.circuitFailures.Add(1)

	m.logger.Debug("Connection failure recorded", "failures", total, "round", round)

	if round < m.circuitThreshold {
		return
	}

	current := m.Backoff()
	next := current * 2
	if next > m.maxBackoff {
		next = m.maxBackoff
	}

	status := m.Status()
	if status == StatusCircuitOpen {
		m.backoff.Store(next)
		m.circuitFailures.Store(0)
		m.logger.Warn("Circuit breaker still open", "backoff", next)
		return
	}
	if m.status.CompareAndSwap(status, StatusCircuitOpen) {
		m.backoff.Store(next)
		m.circuitFailures.Store(0)
		m.metrics.SetNATSConnected(false)
		m.logger.Warn("Circuit breaker opened", "failures", round, "backoff", current)
		time.AfterFunc(current, m.testCircuit)
	}
}

// resetCircuit resets the circuit breaker state
func (m *Client) resetCircuit() {
	m.failures.Store(0)
	m.circuitFailures.Store(0)
	m.backoff.Store(time.Second)
	m.lastFailure.Store(time.Time{})

	if m.Status() == StatusCircuitOpen {
		m.setStatus(StatusDisconnected)
	}
}

// testCircuit half-opens the circuit so the next Connect may try again.
func (m *Client) testCircuit() {
	if m.Status() == StatusCircuitOpen {
		m.logger.Debug("Circuit breaker half-open")
		m.setStatus(StatusDisconnected)
	}
}

// WaitForConnection waits for the connection to be established
func (m *Client) WaitForConnection(ctx context.Context) error {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("connection timeout: %w", ctx.Err())
		case <-ticker.C:
			if m.IsHealthy() {
				return nil
			}
		}
	}
}

// ConnectionOptions returns the NATS connection options
func (m *Client) ConnectionOptions() []nats.Option {
	opts := []nats.Option{
		nats.MaxReconnects(m.maxReconnects),
		nats.ReconnectWait(m.reconnectWait),
		nats.PingInterval(m.pingInterval),
		nats.Timeout(m.timeout),
		nats.DrainTimeout(m.drainTimeout),
		nats.DisconnectErrHandler(m.handleDisconnect),
		nats.ReconnectHandler(m.handleReconnect),
		nats.ClosedHandler(m.handleClosed),
		nats.ErrorHandler(m.handleError),
	}
	if m.username != "" && m.password != "" {
		opts = append(opts, nats.UserInfo(m.username, m.password))
	}
	if m.token != "" {
		opts = append(opts, nats.Token(m.token))
	}
	if m.clientName != "" {
		opts = append(opts, nats.Name(m.clientName))
	}
	return opts
}

// GetStatus returns current status information
func (m *Client) GetStatus() *Status {
	status := &Status{
		Status:          m.Status(),
		FailureCount:    m.failures.Load(),
		LastFailureTime: m.lastFailure.Load().(time.Time),
	}
	if rtt, err := m.RTT(); err == nil {
		status.RTT = rtt
	}
	return status
}

// Connect establishes the connection to the NATS server.
func (m *Client) Connect(ctx context.Context) error {
	if m.closed.Load() {
		return ErrClosed
	}
	if m.Status() == StatusCircuitOpen {
		return ErrCircuitOpen
	}

	m.setStatus(StatusConnecting)
	m.logger.Info("Connecting to NATS", "url", m.url)

	type result struct {
		conn *nats.Conn
		err  error
	}
	done := make(chan result, 1)
	go func() {
		conn, err := nats.Connect(m.url, m.ConnectionOptions()...)
		done <- result{conn, err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return m.connectFailed(errors.WrapTransient(res.err, "Client", "Connect", "establish connection"))
		}
		js, err := jetstream.New(res.conn)
		if err != nil {
			m.logger.Warn("JetStream unavailable", "error", err)
		}
		m.mu.Lock()
		m.conn = res.conn
		m.js = js
		m.mu.Unlock()
	case <-ctx.Done():
		go func() {
			if res := <-done; res.conn != nil {
				res.conn.Close()
			}
		}()
		return m.connectFailed(errors.WrapTransient(ctx.Err(), "Client", "Connect", "connection cancelled"))
	}

	m.setStatus(StatusConnected)
	m.resetCircuit()
	m.logger.Info("Connected to NATS", "url", m.url)

	m.mu.RLock()
	onHealthChange := m.onHealthChange
	m.mu.RUnlock()
	if onHealthChange != nil {
		onHealthChange(true)
	}
	return nil
}

func (m *Client) connectFailed(err error) error {
	m.recordFailure()
	if m.Status() == StatusCircuitOpen {
		return ErrCircuitOpen
	}
	m.setStatus(StatusDisconnected)
	return err
}

// Close drains and closes the connection. It is safe to call more than
// once.
func (m *Client) Close(ctx context.Context) error {
	m.closeMu.Lock()
	defer m.closeMu.Unlock()

	if m.closed.Swap(true) {
		return nil
	}

	m.mu.Lock()
	conn := m.conn
	m.conn = nil
	m.js = nil
	m.username, m.password, m.token = "", "", ""
	m.mu.Unlock()

	var drainErr error
	if conn != nil {
		timeout := m.drainTimeout
		if deadline, ok := ctx.Deadline(); ok {
			if remaining := time.Until(deadline); remaining > 0 && remaining < timeout {
				timeout = remaining
			}
		}

		drained := make(chan error, 1)
		go func() { drained <- conn.Drain() }()

		select {
		case err := <-drained:
			if err != nil {
				drainErr = errors.Wrap(err, "Client", "Close", "drain connection")
			}
		case <-time.After(timeout):
			drainErr = errors.WrapTransient(fmt.Errorf("drain timeout after %v", timeout), "Client", "Close", "drain connection")
		case <-ctx.Done():
			drainErr = errors.Wrap(ctx.Err(), "Client", "Close", "drain connection")
		}
		conn.Close()
	}

	m.setStatus(StatusDisconnected)
	if drainErr != nil {
		m.logger.Error("NATS drain failed", "error", drainErr)
	}
	return drainErr
}

// RTT returns the round-trip time to the NATS server
func (m *Client) RTT() (time.Duration, error) {
	m.mu.RLock()
	conn := m.conn
	m.mu.RUnlock()

	if conn == nil || !conn.IsConnected() {
		return 0, ErrNotConnected
	}
	return conn.RTT()
}

// Publish publishes data to subject on the core connection.
func (m *Client) Publish(_ context.Context, subject string, data []byte) error {
	m.mu.RLock()
	conn := m.conn
	m.mu.RUnlock()

	if conn == nil || !conn.IsConnected() {
		return errors.WrapTransient(ErrNotConnected, "Client", "Publish", "publish "+subject)
	}
	if err := conn.Publish(subject, data); err != nil {
		return errors.WrapTransient(err, "Client", "Publish", "publish "+subject)
	}
	return nil
}

// EnsureStream creates or updates a stream capturing subjects.
func (m *Client) EnsureStream(ctx context.Context, name string, subjects ...string) error {
	m.mu.RLock()
	js := m.js
	m.mu.RUnlock()

	if js == nil {
		return errors.WrapTransient(ErrNotConnected, "Client", "EnsureStream", "create stream "+name)
	}
	_, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     name,
		Subjects: subjects,
		Storage:  jetstream.FileStorage,
	})
	if err != nil {
		return errors.WrapTransient(err, "Client", "EnsureStream", "create stream "+name)
	}
	m.logger.Info("Stream ready", "stream", name, "subjects", subjects)
	return nil
}

// PublishToStream publishes data to subject and waits for the stream's
// acknowledgement.
func (m *Client) PublishToStream(ctx context.Context, subject string, data []byte) error {
	m.mu.RLock()
	js := m.js
	m.mu.RUnlock()

	if js == nil {
		return errors.WrapTransient(ErrNotConnected, "Client", "PublishToStream", "publish "+subject)
	}
	if _, err := js.Publish(ctx, subject, data); err != nil {
		return errors.WrapTransient(err, "Client", "PublishToStream", "publish "+subject)
	}
	return nil
}

func (m *Client) handleDisconnect(_ *nats.Conn, err error) {
	m.setStatus(StatusReconnecting)
	m.logger.Warn("NATS disconnected", "error", err)

	m.mu.RLock()
	onDisconnect, onHealthChange := m.onDisconnect, m.onHealthChange
	m.mu.RUnlock()

	if onDisconnect != nil {
		go onDisconnect(err)
	}
	if onHealthChange != nil {
		go onHealthChange(false)
	}
}

func (m *Client) handleReconnect(_ *nats.Conn) {
	m.setStatus(StatusConnected)
	m.resetCircuit()
	m.logger.Info("NATS reconnected", "url", m.url)

	m.mu.RLock()
	onReconnect, onHealthChange := m.onReconnect, m.onHealthChange
	m.mu.RUnlock()

	if onReconnect != nil {
		go onReconnect()
	}
	if onHealthChange != nil {
		go onHealthChange(true)
	}
}

func (m *Client) handleClosed(_ *nats.Conn) {
	m.setStatus(StatusDisconnected)

	m.mu.RLock()
	onHealthChange := m.onHealthChange
	m.mu.RUnlock()

	if onHealthChange != nil {
		go onHealthChange(false)
	}
}

func (m *Client) handleError(_ *nats.Conn, _ *nats.Subscription, err error) {
	m.logger.Error("NATS error", "error", err)
}
