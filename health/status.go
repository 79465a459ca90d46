package health

import (
	"regexp"
	"strings"
	"time"
)

// State is a health level.
type State string

// Health levels, from best to worst.
const (
	StateHealthy   State = "healthy"
	StateDegraded  State = "degraded"
	StateUnhealthy State = "unhealthy"
)

var (
	httpURLRegex     = regexp.MustCompile(`https?://[^\s]+`)
	natsURLRegex     = regexp.MustCompile(`nats://[^\s]+`)
	unixPathRegex    = regexp.MustCompile(`/[a-zA-Z0-9/_.-]+`)
	windowsPathRegex = regexp.MustCompile(`[A-Z]:\\[^:\s]+`)
	ipAddrRegex      = regexp.MustCompile(`\b\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}\b`)
	portRegex        = regexp.MustCompile(`:\d{2,5}\b`)
	credentialRegex  = regexp.MustCompile(`(?i)(password|token|secret|credential)[^a-zA-Z]*[:=][^,\s}]+`)
)

// Status is the health of one part, or of the whole run when it carries
// sub-statuses.
type Status struct {
	Component   string    `json:"component"`
	Healthy     bool      `json:"healthy"`
	State       State     `json:"status"`
	Message     string    `json:"message"`
	Timestamp   time.Time `json:"timestamp"`
	SubStatuses []Status  `json:"sub_statuses,omitempty"`
}

func newStatus(component string, state State, message string) Status {
	return Status{
		Component: component,
		Healthy:   state == StateHealthy,
		State:     state,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// NewHealthy creates a healthy status.
func NewHealthy(component, message string) Status {
	return newStatus(component, StateHealthy, message)
}

// NewDegraded creates a degraded status.
func NewDegraded(component, message string) Status {
	return newStatus(component, StateDegraded, message)
}

// NewUnhealthy creates an unhealthy status.
func NewUnhealthy(component, message string) Status {
	return newStatus(component, StateUnhealthy, message)
}

// FromError returns a healthy status for a nil error and an unhealthy one
// carrying the sanitized error text otherwise.
func FromError(component string, err error) Status {
	if err == nil {
		return NewHealthy(component, "ok")
	}
	return NewUnhealthy(component, sanitizeErrorMessage(err.Error()))
}

// IsHealthy reports whether the status is healthy.
func (s Status) IsHealthy() bool {
	return s.State == StateHealthy
}

// IsDegraded reports whether the status is degraded.
func (s Status) IsDegraded() bool {
	return s.State == StateDegraded
}

// IsUnhealthy reports whether the status is unhealthy.
func (s Status) IsUnhealthy() bool {
	return s.State == StateUnhealthy
}

// Aggregate combines sub-statuses under component. The worst sub-status
// sets the result; no sub-statuses is healthy.
func Aggregate(component string, subStatuses []Status) Status {
	worst := StateHealthy
	for _, sub := range subStatuses {
		switch {
		case sub.IsUnhealthy():
			worst = StateUnhealthy
		case sub.IsDegraded() && worst == StateHealthy:
			worst = StateDegraded
		}
	}

	var status Status
	switch worst {
	case StateUnhealthy:
		status = NewUnhealthy(component, "one or more parts are unhealthy")
	case StateDegraded:
		status = NewDegraded(component, "one or more parts are degraded")
	default:
		status = NewHealthy(component, "all parts are healthy")
	}

	if len(subStatuses) > 0 {
		status.SubStatuses = make([]Status, len(subStatuses))
		copy(status.SubStatuses, subStatuses)
	}
	return status
}

// sanitizeErrorMessage masks URLs, file paths, IP addresses, ports and
// credentials in an error message.
func sanitizeErrorMessage(err string) string {
	if err == "" {
		return ""
	}

	// URLs first, since they contain paths.
	sanitized := httpURLRegex.ReplaceAllString(err, "[URL]")
	sanitized = natsURLRegex.ReplaceAllString(sanitized, "[URL]")

	sanitized = unixPathRegex.ReplaceAllString(sanitized, "[PATH]")
	sanitized = windowsPathRegex.ReplaceAllString(sanitized, "[PATH]")
	sanitized = ipAddrRegex.ReplaceAllString(sanitized, "[IP]")
	sanitized = portRegex.ReplaceAllString(sanitized, "[PORT]")

	lower := strings.ToLower(sanitized)
	for _, word := range []string{"password", "token", "secret", "credential"} {
		if strings.Contains(lower, word) {
			return credentialRegex.ReplaceAllString(sanitized, "[REDACTED]")
		}
	}
	return sanitized
}
