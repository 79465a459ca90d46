package resolver

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nationalarchives/dri-data-migration-sub000/errors"
	"github.com/nationalarchives/dri-data-migration-sub000/graph"
	"github.com/nationalarchives/dri-data-migration-sub000/metric"
	"github.com/nationalarchives/dri-data-migration-sub000/storage/memory"
	"github.com/nationalarchives/dri-data-migration-sub000/testutil"
	"github.com/nationalarchives/dri-data-migration-sub000/vocabulary"
)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestResolver(t *testing.T, store *memory.Store, opts ...Option) *Resolver {
	t.Helper()
	r, err := New(context.Background(), store, DefaultConfig(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func seeded(triples ...graph.Triple) *memory.Store {
	return memory.New(memory.WithGraph(graph.New(triples...)))
}

func TestFetch_FromStoreThenCache(t *testing.T) {
	asset := graph.NewIRI("http://id.example.com/a1")
	store := seeded(graph.NewTriple(asset, graph.NewIRI(vocabulary.AssetReference), graph.NewLiteral("ADM 1/1")))
	r := newTestResolver(t, store)
	ctx := context.Background()

	id, ok, err := r.Fetch(ctx, vocabulary.Asset, "ADM 1/1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, asset, id)
	assert.Len(t, store.Queries(), 1)

	id, ok, err = r.Fetch(ctx, vocabulary.Asset, "ADM 1/1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, asset, id)
	assert.Len(t, store.Queries(), 1, "second lookup is served from the cache")
}

func TestFetch_MissCreatesNothing(t *testing.T) {
	store := memory.New()
	r := newTestResolver(t, store)

	_, ok, err := r.Fetch(context.Background(), vocabulary.Asset, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, store.UpdateCount())

	// misses are not cached
	_, _, err = r.Fetch(context.Background(), vocabulary.Asset, "missing")
	require.NoError(t, err)
	assert.Len(t, store.Queries(), 2)
}

func TestFetch_IRIKeys(t *testing.T) {
	leg := graph.NewIRI("http://id.example.com/leg1")
	act := "http://www.legislation.gov.uk/id/ukpga/2000/36"
	store := seeded(graph.NewTriple(leg, graph.NewIRI(vocabulary.LegislationHasUkLegislation), graph.NewIRI(act)))
	r := newTestResolver(t, store)

	id, ok, err := r.Fetch(context.Background(), vocabulary.Legislation, act)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, leg, id)
}

func TestFetch_InvalidInput(t *testing.T) {
	r := newTestResolver(t, memory.New())
	ctx := context.Background()

	_, _, err := r.Fetch(ctx, "nonsense", "k")
	assert.True(t, stderrors.Is(err, errors.ErrUnknownCategory))

	_, _, err = r.Fetch(ctx, vocabulary.RelatedMaterial, "k")
	assert.True(t, stderrors.Is(err, errors.ErrUnknownCategory))

	_, _, err = r.Fetch(ctx, vocabulary.Asset, "  ")
	assert.True(t, stderrors.Is(err, errors.ErrInvalidKey))
	assert.True(t, errors.IsInvalid(err))
}

func TestFetchOrCreate_MintsAndReserves(t *testing.T) {
	store := memory.New()
	r := newTestResolver(t, store, WithIDGenerator(sequentialIDs()))
	ctx := context.Background()

	id, err := r.FetchOrCreate(ctx, vocabulary.Language, "Welsh", "")
	require.NoError(t, err)
	assert.Equal(t, graph.NewIRI(DefaultBaseIRI+"id-1"), id)

	require.Equal(t, 1, store.UpdateCount())
	reservation := graph.NewTriple(id, graph.NewIRI(vocabulary.LanguageName), graph.NewLiteral("Welsh"))
	assert.True(t, store.Graph().Contains(reservation))
	assert.Equal(t, 1, store.Graph().Len())

	again, err := r.FetchOrCreate(ctx, vocabulary.Language, "Welsh", "")
	require.NoError(t, err)
	assert.Equal(t, id, again)
	assert.Equal(t, 1, store.UpdateCount(), "no second reservation")
}

func TestIdentityStability_AcrossResolvers(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	first := newTestResolver(t, store, WithIDGenerator(sequentialIDs()))
	id, err := first.FetchOrCreate(ctx, vocabulary.GeographicalPlace, "Kew", "")
	require.NoError(t, err)

	second := newTestResolver(t, store, WithIDGenerator(func() string { return "other" }))
	again, err := second.FetchOrCreate(ctx, vocabulary.GeographicalPlace, "Kew", "")
	require.NoError(t, err)
	assert.Equal(t, id, again)

	fetched, ok, err := second.Fetch(ctx, vocabulary.GeographicalPlace, "Kew")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, id, fetched)
	assert.Equal(t, 1, store.UpdateCount())
}

func TestFetchOrCreate_StoreFailure(t *testing.T) {
	store := testutil.NewFailingStore(memory.New())
	store.FailUpdates(errors.WrapTransient(errors.ErrStoreUnavailable, "test", "Update", "send"))
	r, err := New(context.Background(), store, DefaultConfig())
	require.NoError(t, err)
	defer r.Close()

	_, err = r.FetchOrCreate(context.Background(), vocabulary.Operator, "jbloggs", "")
	require.Error(t, err)
	assert.True(t, errors.IsStoreFailure(err))

	// the failed mint is not cached
	_, ok, err := r.Fetch(context.Background(), vocabulary.Operator, "jbloggs")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFetch_ExpiredEntryGoesBackToStore(t *testing.T) {
	asset := graph.NewIRI("http://id.example.com/a1")
	store := seeded(graph.NewTriple(asset, graph.NewIRI(vocabulary.AssetReference), graph.NewLiteral("A")))

	cfg := DefaultConfig()
	cfg.Identifiers.TTL = 20 * time.Millisecond
	cfg.Identifiers.CleanupInterval = 0
	r, err := New(context.Background(), store, cfg)
	require.NoError(t, err)
	defer r.Close()

	_, ok, err := r.Fetch(context.Background(), vocabulary.Asset, "A")
	require.NoError(t, err)
	require.True(t, ok)

	time.Sleep(40 * time.Millisecond)
	_, ok, err = r.Fetch(context.Background(), vocabulary.Asset, "A")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, store.Queries(), 2)
}

func TestRememberAndForget(t *testing.T) {
	store := memory.New()
	r := newTestResolver(t, store)
	id := graph.NewIRI("http://id.example.com/s1")

	require.NoError(t, r.Remember(vocabulary.Subset, "ADM 1", id))
	got, ok, err := r.Fetch(context.Background(), vocabulary.Subset, "ADM 1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, id, got)
	assert.Empty(t, store.Queries())

	r.Forget(vocabulary.Subset, "ADM 1")
	_, ok, err = r.Fetch(context.Background(), vocabulary.Subset, "ADM 1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPreloadEnumeration_Pages(t *testing.T) {
	g := graph.New()
	for i := 0; i < 5; i++ {
		g.Add(graph.NewTriple(
			graph.NewIRI(fmt.Sprintf("http://id.example.com/ac%d", i)),
			graph.NewIRI(vocabulary.AccessConditionCode),
			graph.NewLiteral(fmt.Sprintf("C%d", i))))
	}
	store := memory.New(memory.WithGraph(g))

	cfg := DefaultConfig()
	cfg.EnumerationPageSize = 2
	r, err := New(context.Background(), store, cfg)
	require.NoError(t, err)
	defer r.Close()

	entries, err := r.PreloadEnumeration(context.Background(), vocabulary.AccessCondition)
	require.NoError(t, err)
	assert.Len(t, entries, 5)
	assert.Len(t, store.Queries(), 3)

	id, ok := r.Enumeration(vocabulary.AccessCondition, "C3")
	require.True(t, ok)
	assert.Equal(t, graph.NewIRI("http://id.example.com/ac3"), id)

	_, ok = r.Enumeration(vocabulary.AccessCondition, "C9")
	assert.False(t, ok)

	// loaded at most once
	_, err = r.PreloadEnumeration(context.Background(), vocabulary.AccessCondition)
	require.NoError(t, err)
	assert.Len(t, store.Queries(), 3)
	assert.True(t, r.EnumerationLoaded(vocabulary.AccessCondition))
}

func TestPreloadEnumeration_EmptyIsFatal(t *testing.T) {
	r := newTestResolver(t, memory.New())

	_, err := r.PreloadEnumeration(context.Background(), vocabulary.GroundForRetention)
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrEnumerationEmpty))
	assert.True(t, errors.IsFatal(err))
	assert.False(t, r.EnumerationLoaded(vocabulary.GroundForRetention))
}

func TestPreloadEnumeration_NotAnEnumeration(t *testing.T) {
	r := newTestResolver(t, memory.New())

	_, err := r.PreloadEnumeration(context.Background(), vocabulary.Asset)
	assert.True(t, stderrors.Is(err, errors.ErrUnknownCategory))
}

func TestSimpleCache(t *testing.T) {
	r := newTestResolver(t, memory.New())

	_, ok := r.SimpleCache(vocabulary.RelatedMaterial, "ADM 2")
	assert.False(t, ok)

	calls := 0
	create := func() (string, error) {
		calls++
		return "http://id.example.com/a2", nil
	}
	v, err := r.SimpleCacheCreate(vocabulary.RelatedMaterial, "ADM 2", create)
	require.NoError(t, err)
	assert.Equal(t, "http://id.example.com/a2", v)

	v, err = r.SimpleCacheCreate(vocabulary.RelatedMaterial, "ADM 2", create)
	require.NoError(t, err)
	assert.Equal(t, "http://id.example.com/a2", v)
	assert.Equal(t, 1, calls)

	cached, ok := r.SimpleCache(vocabulary.RelatedMaterial, "ADM 2")
	assert.True(t, ok)
	assert.Equal(t, v, cached)

	_, err = r.SimpleCacheCreate(vocabulary.RelatedMaterial, "bad", func() (string, error) {
		return "", stderrors.New("lookup failed")
	})
	require.Error(t, err)
	_, ok = r.SimpleCache(vocabulary.RelatedMaterial, "bad")
	assert.False(t, ok)
}

func TestCompositeKey(t *testing.T) {
	assert.Equal(t, "John Smith | Witness to seal", CompositeKey(" John Smith", "Witness to seal "))
	assert.Equal(t, "a", CompositeKey("a"))
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.BaseIRI = ""
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.BaseIRI = "http://id.example.com"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.EnumerationPageSize = -1
	assert.Error(t, cfg.Validate())
}

func TestResolver_Metrics(t *testing.T) {
	registry := metric.NewMetricsRegistry()
	r := newTestResolver(t, memory.New(), WithMetrics(registry))

	_, err := r.FetchOrCreate(context.Background(), vocabulary.Battalion, "1st Foot", "")
	require.NoError(t, err)
	_, _, err = r.Fetch(context.Background(), vocabulary.Battalion, "1st Foot")
	require.NoError(t, err)

	families, err := registry.PrometheusRegistry().Gather()
	require.NoError(t, err)
	sources := map[string]float64{}
	for _, f := range families {
		if f.GetName() != "dristage_resolver_resolutions_total" {
			continue
		}
		for _, m := range f.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "source" {
					sources[l.GetValue()] = m.GetCounter().GetValue()
				}
			}
		}
	}
	assert.Equal(t, 1.0, sources[metric.SourceMiss])
	assert.Equal(t, 1.0, sources[metric.SourceMinted])
	assert.Equal(t, 1.0, sources[metric.SourceCache])
}
