package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/nationalarchives/dri-data-migration-sub000/errors"
	"github.com/nationalarchives/dri-data-migration-sub000/natsclient"
	"github.com/nationalarchives/dri-data-migration-sub000/pkg/cache"
	"github.com/nationalarchives/dri-data-migration-sub000/pkg/retry"
	"github.com/nationalarchives/dri-data-migration-sub000/resolver"
	"github.com/nationalarchives/dri-data-migration-sub000/staging"
	"github.com/nationalarchives/dri-data-migration-sub000/storage/sparql"
)

const redacted = "********"

// Config is the complete staging configuration.
type Config struct {
	Store    StoreConfig    `json:"store" yaml:"store"`
	Identity IdentityConfig `json:"identity" yaml:"identity"`
	Cache    CacheConfig    `json:"cache" yaml:"cache"`
	Input    InputConfig    `json:"input" yaml:"input"`
	NATS     NATSConfig     `json:"nats" yaml:"nats"`
	Metrics  MetricsConfig  `json:"metrics" yaml:"metrics"`
}

// StoreConfig locates the triple store and sets its transport policy.
type StoreConfig struct {
	QueryEndpoint  string      `json:"query_endpoint" yaml:"query_endpoint"`
	UpdateEndpoint string      `json:"update_endpoint" yaml:"update_endpoint"`
	Username       string      `json:"username,omitempty" yaml:"username,omitempty"`
	Password       string      `json:"password,omitempty" yaml:"password,omitempty"`
	Timeout        Duration    `json:"timeout" yaml:"timeout"`
	RateLimit      float64     `json:"rate_limit" yaml:"rate_limit"` // requests per second, 0 is unlimited
	Burst          int         `json:"burst" yaml:"burst"`
	Retry          RetryConfig `json:"retry" yaml:"retry"`
}

// RetryConfig bounds retries of transient store failures.
type RetryConfig struct {
	MaxAttempts  int      `json:"max_attempts" yaml:"max_attempts"`
	InitialDelay Duration `json:"initial_delay" yaml:"initial_delay"`
	MaxDelay     Duration `json:"max_delay" yaml:"max_delay"`
}

// IdentityConfig sets the namespace of minted identifiers.
type IdentityConfig struct {
	BaseIRI string `json:"base_iri" yaml:"base_iri"`
}

// CacheConfig sizes the identifier cache and code-list enumeration.
type CacheConfig struct {
	IdentifierTTL       Duration `json:"identifier_ttl" yaml:"identifier_ttl"`
	CleanupInterval     Duration `json:"cleanup_interval" yaml:"cleanup_interval"`
	EnumerationPageSize int      `json:"enumeration_page_size" yaml:"enumeration_page_size"`
}

// InputConfig locates the JSON-lines record files.
type InputConfig struct {
	Directory string   `json:"directory" yaml:"directory"`
	Kinds     []string `json:"kinds,omitempty" yaml:"kinds,omitempty"`
}

// NATSConfig controls change notifications.
type NATSConfig struct {
	Enabled       bool     `json:"enabled" yaml:"enabled"`
	URL           string   `json:"url" yaml:"url"`
	SubjectPrefix string   `json:"subject_prefix" yaml:"subject_prefix"`
	Stream        string   `json:"stream,omitempty" yaml:"stream,omitempty"` // JetStream stream, empty publishes core NATS
	Token         string   `json:"token,omitempty" yaml:"token,omitempty"`
	Username      string   `json:"username,omitempty" yaml:"username,omitempty"`
	Password      string   `json:"password,omitempty" yaml:"password,omitempty"`
	MaxReconnects int      `json:"max_reconnects" yaml:"max_reconnects"`
	ReconnectWait Duration `json:"reconnect_wait" yaml:"reconnect_wait"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Port    int    `json:"port" yaml:"port"`
	Path    string `json:"path" yaml:"path"`
}

// Default returns the configuration used before any layer is applied.
func Default() *Config {
	policy := retry.DefaultConfig()
	identifiers := cache.DefaultConfig()
	return &Config{
		Store: StoreConfig{
			Timeout: Duration(30 * time.Second),
			Retry: RetryConfig{
				MaxAttempts:  policy.MaxAttempts,
				InitialDelay: Duration(policy.InitialDelay),
				MaxDelay:     Duration(policy.MaxDelay),
			},
		},
		Identity: IdentityConfig{
			BaseIRI: resolver.DefaultBaseIRI,
		},
		Cache: CacheConfig{
			IdentifierTTL:       Duration(identifiers.TTL),
			CleanupInterval:     Duration(identifiers.CleanupInterval),
			EnumerationPageSize: resolver.DefaultEnumerationPageSize,
		},
		Input: InputConfig{
			Directory: ".",
		},
		NATS: NATSConfig{
			URL:           "nats://localhost:4222",
			SubjectPrefix: natsclient.DefaultSubjectPrefix,
			MaxReconnects: -1,
			ReconnectWait: Duration(2 * time.Second),
		},
		Metrics: MetricsConfig{
			Port: 9090,
			Path: "/metrics",
		},
	}
}

// SPARQL returns the transport configuration for the store client.
func (s StoreConfig) SPARQL() sparql.Config {
	policy := retry.DefaultConfig()
	policy.MaxAttempts = s.Retry.MaxAttempts
	policy.InitialDelay = s.Retry.InitialDelay.Std()
	policy.MaxDelay = s.Retry.MaxDelay.Std()
	return sparql.Config{
		QueryEndpoint:  s.QueryEndpoint,
		UpdateEndpoint: s.UpdateEndpoint,
		Username:       s.Username,
		Password:       s.Password,
		Timeout:        s.Timeout.Std(),
		RateLimit:      s.RateLimit,
		Burst:          s.Burst,
		Retry:          policy,
	}
}

// Resolver returns the identifier resolver configuration.
func (c *Config) Resolver() resolver.Config {
	identifiers := cache.DefaultConfig()
	identifiers.TTL = c.Cache.IdentifierTTL.Std()
	identifiers.CleanupInterval = c.Cache.CleanupInterval.Std()
	return resolver.Config{
		BaseIRI:             c.Identity.BaseIRI,
		Identifiers:         identifiers,
		EnumerationPageSize: c.Cache.EnumerationPageSize,
	}
}

// Kinds parses the configured kind subset. An empty result selects every
// kind.
func (c *Config) Kinds() ([]staging.Kind, error) {
	kinds := make([]staging.Kind, 0, len(c.Input.Kinds))
	for _, name := range c.Input.Kinds {
		k, err := staging.ParseKind(name)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

// Validate checks every section, including the store endpoints.
func (c *Config) Validate() error {
	if err := c.validateStore(); err != nil {
		return err
	}
	return c.ValidateOffline()
}

// ValidateOffline checks every section except the store endpoints, which
// a dry run never contacts.
func (c *Config) ValidateOffline() error {
	if err := c.Resolver().Validate(); err != nil {
		return err
	}
	if c.Store.RateLimit < 0 {
		return invalid("store.rate_limit cannot be negative")
	}
	if c.Store.Retry.MaxAttempts < 0 {
		return invalid("store.retry.max_attempts cannot be negative")
	}
	if c.Input.Directory == "" {
		return errors.WrapInvalid(errors.ErrMissingConfig, "Config", "Validate", "input.directory is required")
	}
	if _, err := c.Kinds(); err != nil {
		return err
	}

	if c.NATS.Enabled {
		if c.NATS.URL == "" {
			return errors.WrapInvalid(errors.ErrMissingConfig, "Config", "Validate", "nats.url is required when nats is enabled")
		}
		if !isValidNATSSubjectPart(c.NATS.SubjectPrefix) {
			return invalid(fmt.Sprintf(
				"nats.subject_prefix %q is not valid for NATS subjects (must be alphanumeric with dots, dashes, underscores)",
				c.NATS.SubjectPrefix))
		}
		if c.NATS.Stream != "" && strings.ContainsAny(c.NATS.Stream, ". *>") {
			return invalid(fmt.Sprintf("nats.stream %q cannot contain dots, spaces or wildcards", c.NATS.Stream))
		}
	}

	if c.Metrics.Enabled {
		if c.Metrics.Port <= 0 || c.Metrics.Port > 65535 {
			return invalid(fmt.Sprintf("metrics.port %d out of range", c.Metrics.Port))
		}
		if !strings.HasPrefix(c.Metrics.Path, "/") {
			return invalid(fmt.Sprintf("metrics.path %q must start with /", c.Metrics.Path))
		}
	}
	return nil
}

func (c *Config) validateStore() error {
	return c.Store.SPARQL().Validate()
}

func invalid(msg string) error {
	return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate", msg)
}

// isValidNATSSubjectPart checks if a string is valid for use in NATS subjects.
// Valid characters are alphanumeric, dots, dashes, and underscores.
func isValidNATSSubjectPart(s string) bool {
	if len(s) == 0 {
		return false
	}
	if strings.HasPrefix(s, ".") || strings.HasSuffix(s, ".") {
		return false
	}

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) &&
			r != '-' && r != '_' && r != '.' {
			return false
		}
	}
	return true
}

// Clone creates a deep copy of the configuration
func (c *Config) Clone() *Config {
	if c == nil {
		return Default()
	}

	data, err := json.Marshal(c)
	if err != nil {
		copied := *c
		return &copied
	}

	var clone Config
	if err := json.Unmarshal(data, &clone); err != nil {
		copied := *c
		return &copied
	}

	return &clone
}

// Redacted returns a copy with credentials masked.
func (c *Config) Redacted() *Config {
	clone := c.Clone()
	for _, secret := range []*string{&clone.Store.Password, &clone.NATS.Password, &clone.NATS.Token} {
		if *secret != "" {
			*secret = redacted
		}
	}
	if u, err := url.Parse(clone.NATS.URL); err == nil && u.User != nil {
		u.User = url.User(u.User.Username())
		clone.NATS.URL = u.String()
	}
	return clone
}

// String returns a JSON representation of the config with credentials
// masked.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c.Redacted(), "", "  ")
	return string(data)
}

// SafeConfig provides thread-safe access to configuration
type SafeConfig struct {
	mu     sync.RWMutex
	config *Config
}

// NewSafeConfig creates a new thread-safe config wrapper
func NewSafeConfig(cfg *Config) *SafeConfig {
	if cfg == nil {
		cfg = Default()
	}
	return &SafeConfig{
		config: cfg,
	}
}

// Get returns a deep copy of the current configuration
func (sc *SafeConfig) Get() *Config {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.config.Clone()
}

// Update atomically replaces the configuration after offline validation
func (sc *SafeConfig) Update(cfg *Config) error {
	if cfg == nil {
		return errors.WrapInvalid(errors.ErrMissingConfig, "SafeConfig", "Update", "config cannot be nil")
	}

	if err := cfg.ValidateOffline(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.config = cfg
	return nil
}
