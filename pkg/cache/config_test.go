package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"default", DefaultConfig(), false},
		{"disabled ignores fields", Config{Enabled: false, Strategy: "bogus"}, false},
		{"simple", Config{Enabled: true, Strategy: StrategySimple}, false},
		{"lru without size", Config{Enabled: true, Strategy: StrategyLRU}, true},
		{"lru", Config{Enabled: true, Strategy: StrategyLRU, MaxSize: 10}, false},
		{"sliding without ttl", Config{Enabled: true, Strategy: StrategySliding}, true},
		{"sliding negative cleanup", Config{Enabled: true, Strategy: StrategySliding, TTL: time.Second, CleanupInterval: -1}, true},
		{"unknown", Config{Enabled: true, Strategy: "hybrid"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewFromConfig(t *testing.T) {
	ctx := context.Background()

	c, err := NewFromConfig[string](ctx, Config{Enabled: false})
	require.NoError(t, err)
	assert.IsType(t, noopCache[string]{}, c)

	c, err = NewFromConfig[string](ctx, Config{Enabled: true, Strategy: StrategyLRU, MaxSize: 3})
	require.NoError(t, err)
	assert.IsType(t, &lruCache[string]{}, c)

	c, err = NewFromConfig[string](ctx, DefaultConfig())
	require.NoError(t, err)
	assert.IsType(t, &slidingCache[string]{}, c)
	require.NoError(t, c.Close())

	_, err = NewFromConfig[string](ctx, Config{Enabled: true, Strategy: "nope"})
	assert.Error(t, err)
}

func TestConfig_UnmarshalJSONDurations(t *testing.T) {
	cfg := DefaultConfig()
	err := json.Unmarshal([]byte(`{"ttl":"90s","cleanup_interval":"1m","strategy":"sliding"}`), &cfg)
	require.NoError(t, err)

	assert.True(t, cfg.Enabled)
	assert.Equal(t, 90*time.Second, cfg.TTL)
	assert.Equal(t, time.Minute, cfg.CleanupInterval)

	err = json.Unmarshal([]byte(`{"ttl":"soon"}`), &cfg)
	assert.Error(t, err)
}

func TestConfig_UnmarshalYAMLDurations(t *testing.T) {
	cfg := DefaultConfig()
	err := yaml.Unmarshal([]byte("enabled: true\nstrategy: lru\nmax_size: 50\nttl: 2h\n"), &cfg)
	require.NoError(t, err)

	assert.Equal(t, StrategyLRU, cfg.Strategy)
	assert.Equal(t, 50, cfg.MaxSize)
	assert.Equal(t, 2*time.Hour, cfg.TTL)
}
