package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nationalarchives/dri-data-migration-sub000/errors"
)

// DefaultEnvPrefix prefixes environment overrides, e.g.
// DRISTAGE_STORE_QUERY_ENDPOINT.
const DefaultEnvPrefix = "DRISTAGE"

// Loader handles configuration loading with layers and overrides
type Loader struct {
	layers     []string
	validation bool
	offline    bool
	envPrefix  string
	lookupEnv  func(string) (string, bool)
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{
		layers:    []string{},
		envPrefix: DefaultEnvPrefix,
		lookupEnv: os.LookupEnv,
	}
}

// AddLayer adds a configuration file layer. Later layers override
// earlier ones.
func (l *Loader) AddLayer(path string) {
	l.layers = append(l.layers, path)
}

// EnableValidation enables or disables configuration validation
func (l *Loader) EnableValidation(enable bool) {
	l.validation = enable
}

// Offline makes validation skip the store endpoints.
func (l *Loader) Offline(offline bool) {
	l.offline = offline
}

// SetEnvPrefix replaces the environment variable prefix.
func (l *Loader) SetEnvPrefix(prefix string) {
	l.envPrefix = strings.TrimSuffix(prefix, "_")
}

// LoadFile loads configuration from a single file
func (l *Loader) LoadFile(path string) (*Config, error) {
	l.layers = []string{path}
	return l.Load()
}

// Load applies defaults, every file layer, then environment overrides.
func (l *Loader) Load() (*Config, error) {
	cfg := Default()

	for _, path := range l.layers {
		raw, err := l.loadRaw(path)
		if err != nil {
			return nil, errors.WrapInvalid(err, "Loader", "Load", fmt.Sprintf("load %s", path))
		}
		cfg, err = l.mergeFromMap(cfg, raw)
		if err != nil {
			return nil, errors.WrapInvalid(err, "Loader", "Load", fmt.Sprintf("merge %s", path))
		}
	}

	if err := l.applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if l.validation {
		if err := l.validate(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// loadRaw reads a JSON or YAML layer as a map, choosing by extension.
func (l *Loader) loadRaw(path string) (map[string]any, error) {
	data, err := safeReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if isYAML(path) {
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: %v", errors.ErrInvalidConfig, err)
		}
		// Depth is checked on the JSON form so both formats share one limit.
		normalized, err := json.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errors.ErrInvalidConfig, err)
		}
		data = normalized
	}

	if err := validateJSONDepth(data); err != nil {
		return nil, fmt.Errorf("invalid JSON structure: %w", err)
	}

	raw = nil
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidConfig, err)
	}
	return raw, nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// mergeFromMap merges configuration from a raw map, only overriding fields present in the map
func (l *Loader) mergeFromMap(base *Config, override map[string]any) (*Config, error) {
	if override == nil {
		return base, nil
	}

	baseJSON, err := json.Marshal(base)
	if err != nil {
		return nil, err
	}

	var baseMap map[string]any
	if err := json.Unmarshal(baseJSON, &baseMap); err != nil {
		return nil, err
	}

	mergedJSON, err := json.Marshal(l.deepMergeMaps(baseMap, override))
	if err != nil {
		return nil, err
	}

	var merged Config
	if err := json.Unmarshal(mergedJSON, &merged); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidConfig, err)
	}
	return &merged, nil
}

// deepMergeMaps recursively merges two maps, with override taking precedence
func (l *Loader) deepMergeMaps(base, override map[string]any) map[string]any {
	result := make(map[string]any, len(base))

	for k, v := range base {
		result[k] = v
	}

	for k, v := range override {
		if v == nil {
			continue
		}

		if baseMap, baseOk := base[k].(map[string]any); baseOk {
			if overrideMap, overrideOk := v.(map[string]any); overrideOk {
				result[k] = l.deepMergeMaps(baseMap, overrideMap)
				continue
			}
		}

		result[k] = v
	}

	return result
}

// envOverrides maps variable suffixes to the fields they set.
func envOverrides(cfg *Config) map[string]func(string) error {
	str := func(dst *string) func(string) error {
		return func(v string) error { *dst = v; return nil }
	}
	integer := func(dst *int) func(string) error {
		return func(v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return err
			}
			*dst = n
			return nil
		}
	}
	boolean := func(dst *bool) func(string) error {
		return func(v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return err
			}
			*dst = b
			return nil
		}
	}
	duration := func(dst *Duration) func(string) error {
		return func(v string) error {
			d, err := parseDurationWithDays(v)
			if err != nil {
				return err
			}
			*dst = Duration(d)
			return nil
		}
	}

	return map[string]func(string) error{
		"STORE_QUERY_ENDPOINT":  str(&cfg.Store.QueryEndpoint),
		"STORE_UPDATE_ENDPOINT": str(&cfg.Store.UpdateEndpoint),
		"STORE_USERNAME":        str(&cfg.Store.Username),
		"STORE_PASSWORD":        str(&cfg.Store.Password),
		"STORE_TIMEOUT":         duration(&cfg.Store.Timeout),
		"STORE_RATE_LIMIT": func(v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return err
			}
			cfg.Store.RateLimit = f
			return nil
		},
		"STORE_BURST":                 integer(&cfg.Store.Burst),
		"STORE_RETRY_MAX_ATTEMPTS":    integer(&cfg.Store.Retry.MaxAttempts),
		"IDENTITY_BASE_IRI":           str(&cfg.Identity.BaseIRI),
		"CACHE_TTL":                   duration(&cfg.Cache.IdentifierTTL),
		"CACHE_CLEANUP_INTERVAL":      duration(&cfg.Cache.CleanupInterval),
		"CACHE_ENUMERATION_PAGE_SIZE": integer(&cfg.Cache.EnumerationPageSize),
		"INPUT_DIR":                   str(&cfg.Input.Directory),
		"INPUT_KINDS": func(v string) error {
			cfg.Input.Kinds = splitList(v)
			return nil
		},
		"NATS_ENABLED":        boolean(&cfg.NATS.Enabled),
		"NATS_URL":            str(&cfg.NATS.URL),
		"NATS_SUBJECT_PREFIX": str(&cfg.NATS.SubjectPrefix),
		"NATS_STREAM":         str(&cfg.NATS.Stream),
		"NATS_TOKEN":          str(&cfg.NATS.Token),
		"NATS_USERNAME":       str(&cfg.NATS.Username),
		"NATS_PASSWORD":       str(&cfg.NATS.Password),
		"METRICS_ENABLED":     boolean(&cfg.Metrics.Enabled),
		"METRICS_PORT":        integer(&cfg.Metrics.Port),
		"METRICS_PATH":        str(&cfg.Metrics.Path),
	}
}

// applyEnvOverrides applies environment variable overrides
func (l *Loader) applyEnvOverrides(cfg *Config) error {
	for suffix, set := range envOverrides(cfg) {
		key := l.envPrefix + "_" + suffix
		value, ok := l.lookupEnv(key)
		if !ok || value == "" {
			continue
		}
		if err := validateEnvVar(key, value); err != nil {
			return errors.WrapInvalid(err, "Loader", "applyEnvOverrides", key)
		}
		if err := set(value); err != nil {
			return errors.WrapInvalid(fmt.Errorf("%w: %s: %v", errors.ErrInvalidConfig, key, err),
				"Loader", "applyEnvOverrides", key)
		}
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (l *Loader) validate(cfg *Config) error {
	if l.offline {
		return cfg.ValidateOffline()
	}
	return cfg.Validate()
}

// SaveToFile writes the configuration, as YAML or JSON by extension.
func (c *Config) SaveToFile(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return err
	}

	return safeWriteFile(path, data)
}
