// Package errors provides the classified error model shared by the staging
// ingestion engine. Errors are classified as transient, invalid or fatal so
// that the ingestion driver can decide whether a failure is isolated to one
// record, aborts the current batch, or aborts the whole run.
package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nationalarchives/dri-data-migration-sub000/pkg/retry"
)

// ErrorClass represents the classification of errors for handling purposes
type ErrorClass int

const (
	// ErrorTransient represents temporary errors that may be retried
	ErrorTransient ErrorClass = iota
	// ErrorInvalid represents errors due to invalid input or configuration
	ErrorInvalid
	// ErrorFatal represents unrecoverable errors that should stop processing
	ErrorFatal
)

// String returns the string representation of ErrorClass
func (ec ErrorClass) String() string {
	switch ec {
	case ErrorTransient:
		return "transient"
	case ErrorInvalid:
		return "invalid"
	case ErrorFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Standard error variables for common conditions
var (
	// Store transport errors
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrStoreRejected    = errors.New("store rejected request")
	ErrTemplateNotFound = errors.New("query template not found")
	ErrUnboundParameter = errors.New("unbound query parameter")

	// Record and text errors
	ErrInvalidData       = errors.New("invalid data format")
	ErrUnparseable       = errors.New("unparseable text")
	ErrMarkupUnparseable = errors.New("markup unparseable")
	ErrMissingDependency = errors.New("missing dependency")

	// Resolution errors
	ErrEnumerationEmpty = errors.New("enumeration empty")
	ErrUnknownCategory  = errors.New("unknown entity category")
	ErrInvalidKey       = errors.New("invalid key")

	// Configuration errors
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrMissingConfig = errors.New("missing required configuration")

	// Notification errors
	ErrNoConnection = errors.New("no connection available")
	ErrRateLimited  = errors.New("rate limited")
)

// MissingDependencyError reports a mandatory related entity that could not be
// resolved while building a record. Builders return it to skip the record.
type MissingDependencyError struct {
	Category string
	Key      string
}

// Error implements the error interface
func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("missing dependency: %s %q not found", e.Category, e.Key)
}

// Is matches ErrMissingDependency.
func (e *MissingDependencyError) Is(target error) bool {
	return target == ErrMissingDependency
}

// MissingDependency returns a MissingDependencyError for category and key.
func MissingDependency(category, key string) error {
	return &MissingDependencyError{Category: category, Key: key}
}

// ClassifiedError wraps an error with its classification
type ClassifiedError struct {
	Class     ErrorClass
	Err       error
	Message   string
	Component string
	Operation string
}

// Error implements the error interface
func (ce *ClassifiedError) Error() string {
	if ce.Message != "" {
		return ce.Message
	}
	return ce.Err.Error()
}

// Unwrap returns the underlying error
func (ce *ClassifiedError) Unwrap() error {
	return ce.Err
}

// IsTransient checks if an error is transient and may be retried
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorTransient
	}

	if errors.Is(err, ErrStoreUnavailable) ||
		errors.Is(err, ErrNoConnection) ||
		errors.Is(err, ErrRateLimited) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	for _, pattern := range []string{"timeout", "connection refused", "connection reset", "temporary"} {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}

	return false
}

// IsFatal checks if an error is fatal and should stop the run
func IsFatal(err error) bool {
	if err == nil {
		return false
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorFatal
	}

	return errors.Is(err, ErrEnumerationEmpty) ||
		errors.Is(err, ErrInvalidConfig) ||
		errors.Is(err, ErrMissingConfig)
}

// IsInvalid checks if an error is due to invalid input
func IsInvalid(err error) bool {
	if err == nil {
		return false
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorInvalid
	}

	return errors.Is(err, ErrInvalidData) ||
		errors.Is(err, ErrUnparseable) ||
		errors.Is(err, ErrMarkupUnparseable) ||
		errors.Is(err, ErrInvalidKey)
}

// IsStoreFailure reports whether err came from the store transport.
// The ingestion driver aborts the batch on these.
func IsStoreFailure(err error) bool {
	return errors.Is(err, ErrStoreUnavailable) || errors.Is(err, ErrStoreRejected)
}

// Classify returns the error class for an error
func Classify(err error) ErrorClass {
	if err == nil {
		return ErrorTransient
	}

	if IsFatal(err) {
		return ErrorFatal
	}
	if IsInvalid(err) {
		return ErrorInvalid
	}
	return ErrorTransient
}

func newClassified(class ErrorClass, err error, component, operation, message string) *ClassifiedError {
	return &ClassifiedError{
		Class:     class,
		Err:       err,
		Message:   message,
		Component: component,
		Operation: operation,
	}
}

// Wrap creates a standardized error with context following the pattern:
// "component.method: action failed: %w"
func Wrap(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s.%s: %s failed: %w", component, method, action, err)
}

// WrapTransient wraps an error as transient with context
func WrapTransient(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorTransient, wrappedErr, component, method, wrappedErr.Error())
}

// WrapFatal wraps an error as fatal with context
func WrapFatal(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorFatal, wrappedErr, component, method, wrappedErr.Error())
}

// WrapInvalid wraps an error as invalid with context
func WrapInvalid(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorInvalid, wrappedErr, component, method, wrappedErr.Error())
}

// RetryConfig defines the transport retry policy in configuration terms.
type RetryConfig struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// DefaultRetryConfig returns the transport retry policy used when none is configured.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:    3,
		InitialDelay:  200 * time.Millisecond,
		MaxDelay:      5 * time.Second,
		BackoffFactor: 2.0,
	}
}

// ShouldRetry determines if an error should be retried based on config
func (rc RetryConfig) ShouldRetry(err error, attempt int) bool {
	if err == nil || attempt >= rc.MaxRetries {
		return false
	}
	return IsTransient(err)
}

// ToRetryConfig converts to the retry package's Config. MaxRetries counts
// additional attempts, so one is added to get total attempts.
func (rc RetryConfig) ToRetryConfig() retry.Config {
	multiplier := rc.BackoffFactor
	if multiplier <= 0 {
		multiplier = 2.0
	}
	return retry.Config{
		MaxAttempts:  rc.MaxRetries + 1,
		InitialDelay: rc.InitialDelay,
		MaxDelay:     rc.MaxDelay,
		Multiplier:   multiplier,
		AddJitter:    true,
	}
}
