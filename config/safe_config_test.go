package config

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeConfig_ThreadSafety(t *testing.T) {
	safeConfig := NewSafeConfig(validConfig())

	const numGoroutines = 50
	const numOperations = 200

	var wg sync.WaitGroup
	errs := make(chan error, numGoroutines)

	for i := 0; i < numGoroutines/2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < numOperations; j++ {
				cfg := safeConfig.Get()
				if cfg == nil {
					errs <- fmt.Errorf("got nil config")
					return
				}
				if dir := cfg.Input.Directory; dir != "." && dir != "/data/export" {
					errs <- fmt.Errorf("unexpected input directory: %s", dir)
					return
				}
			}
		}()
	}

	for i := 0; i < numGoroutines/2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < numOperations/10; j++ {
				updated := validConfig()
				updated.Input.Directory = "/data/export"
				if err := safeConfig.Update(updated); err != nil {
					errs <- fmt.Errorf("update failed: %w", err)
					return
				}
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		close(errs)
		for err := range errs {
			t.Fatalf("concurrent access error: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("timed out, possible deadlock")
	}

	assert.Equal(t, "/data/export", safeConfig.Get().Input.Directory)
}

func TestSafeConfig_NilHandling(t *testing.T) {
	safeConfig := NewSafeConfig(nil)

	cfg := safeConfig.Get()
	require.NotNil(t, cfg)
	assert.Equal(t, Default(), cfg)

	assert.Error(t, safeConfig.Update(nil))
}

func TestSafeConfig_ValidationDuringUpdate(t *testing.T) {
	safeConfig := NewSafeConfig(validConfig())

	invalid := validConfig()
	invalid.Identity.BaseIRI = ""

	require.Error(t, safeConfig.Update(invalid))
	assert.Equal(t, "http://id.example.com/", safeConfig.Get().Identity.BaseIRI)
}

func TestSafeConfig_GetReturnsCopy(t *testing.T) {
	safeConfig := NewSafeConfig(validConfig())

	cfg := safeConfig.Get()
	cfg.Identity.BaseIRI = "http://mutated.example.com/"

	assert.Equal(t, "http://id.example.com/", safeConfig.Get().Identity.BaseIRI)
}
