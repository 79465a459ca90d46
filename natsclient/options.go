package natsclient

import (
	"log/slog"
	"time"

	"github.com/nationalarchives/dri-data-migration-sub000/metric"
)

// ClientOption is a functional option for configuring the Client
type ClientOption func(*Client) error

// WithMaxReconnects sets the maximum number of reconnection attempts (-1 for infinite)
func WithMaxReconnects(max int) ClientOption {
	return func(c *Client) error {
		c.maxReconnects = max
		return nil
	}
}

// WithReconnectWait sets the wait time between reconnection attempts
func WithReconnectWait(d time.Duration) ClientOption {
	return func(c *Client) error {
		c.reconnectWait = d
		return nil
	}
}

// WithPingInterval sets the ping interval for connection health checks
func WithPingInterval(d time.Duration) ClientOption {
	return func(c *Client) error {
		c.pingInterval = d
		return nil
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) error {
		if logger != nil {
			c.logger = logger
		}
		return nil
	}
}

// WithMetrics reports the connection state to m.
func WithMetrics(m *metric.Metrics) ClientOption {
	return func(c *Client) error {
		c.metrics = m
		return nil
	}
}

// WithDisconnectCallback sets a callback for disconnection events
func WithDisconnectCallback(fn func(error)) ClientOption {
	return func(c *Client) error {
		c.onDisconnect = fn
		return nil
	}
}

// WithReconnectCallback sets a callback for reconnection events
func WithReconnectCallback(fn func()) ClientOption {
	return func(c *Client) error {
		c.onReconnect = fn
		return nil
	}
}

// WithHealthChangeCallback sets a callback for health status changes
func WithHealthChangeCallback(fn func(healthy bool)) ClientOption {
	return func(c *Client) error {
		c.onHealthChange = fn
		return nil
	}
}

// WithCircuitBreakerThreshold sets the number of failures before opening circuit
func WithCircuitBreakerThreshold(threshold int32) ClientOption {
	return func(c *Client) error {
		if threshold < 1 {
			threshold = 5
		}
		c.circuitThreshold = threshold
		return nil
	}
}

// WithMaxBackoff sets the maximum backoff duration for circuit breaker
func WithMaxBackoff(d time.Duration) ClientOption {
	return func(c *Client) error {
		if d < time.Second {
			d = time.Minute
		}
		c.maxBackoff = d
		return nil
	}
}

// WithCredentials sets username and password for authentication
func WithCredentials(username, password string) ClientOption {
	return func(c *Client) error {
		c.username = username
		c.password = password
		return nil
	}
}

// WithToken sets a token for authentication
func WithToken(token string) ClientOption {
	return func(c *Client) error {
		c.token = token
		return nil
	}
}

// WithName sets the client name for identification
func WithName(name string) ClientOption {
	return func(c *Client) error {
		c.clientName = name
		return nil
	}
}

// WithTimeout sets the connection timeout
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) error {
		c.timeout = d
		return nil
	}
}

// WithDrainTimeout sets the timeout for draining on close
func WithDrainTimeout(d time.Duration) ClientOption {
	return func(c *Client) error {
		c.drainTimeout = d
		return nil
	}
}
