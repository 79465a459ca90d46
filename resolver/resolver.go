// Package resolver maps (category, business key) pairs to stable entity
// identifiers.
//
// Identity is not carried by the legacy source. Each run rediscovers it by
// looking the key up under the category's key predicate, first in a
// sliding-expiry cache and then in the store. FetchOrCreate mints a new
// identifier on a miss and writes a single reservation triple before
// returning, so later runs and other processes find the same identifier.
//
// Closed code lists (access conditions, legislations and grounds for
// retention) are preloaded once per process and then read without
// further store traffic.
//
// A Resolver is safe for concurrent use, but minting is not coordinated
// across processes: two processes resolving the same unseen key at the
// same moment can mint two identifiers.
package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/nationalarchives/dri-data-migration-sub000/errors"
	"github.com/nationalarchives/dri-data-migration-sub000/graph"
	"github.com/nationalarchives/dri-data-migration-sub000/metric"
	"github.com/nationalarchives/dri-data-migration-sub000/pkg/cache"
	"github.com/nationalarchives/dri-data-migration-sub000/storage"
	"github.com/nationalarchives/dri-data-migration-sub000/vocabulary"
)

// DefaultBaseIRI prefixes minted identifiers when none is configured.
const DefaultBaseIRI = "http://id.example.com/"

// DefaultEnumerationPageSize is the number of code-list entries fetched per
// enumeration query.
const DefaultEnumerationPageSize = 1000

// Config holds resolver settings.
type Config struct {
	BaseIRI             string       `json:"base_iri" yaml:"base_iri"`
	Identifiers         cache.Config `json:"identifiers" yaml:"identifiers"`
	EnumerationPageSize int          `json:"enumeration_page_size" yaml:"enumeration_page_size"`
}

// DefaultConfig returns a sliding thirty-minute identifier cache under
// DefaultBaseIRI.
func DefaultConfig() Config {
	return Config{
		BaseIRI:             DefaultBaseIRI,
		Identifiers:         cache.DefaultConfig(),
		EnumerationPageSize: DefaultEnumerationPageSize,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.BaseIRI == "" {
		return errors.WrapInvalid(errors.ErrMissingConfig, "resolver", "Validate", "base_iri is required")
	}
	if !strings.HasSuffix(c.BaseIRI, "/") && !strings.HasSuffix(c.BaseIRI, "#") {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "resolver", "Validate",
			fmt.Sprintf("base_iri must end with / or #, got %q", c.BaseIRI))
	}
	if c.EnumerationPageSize < 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "resolver", "Validate",
			fmt.Sprintf("enumeration_page_size cannot be negative, got %d", c.EnumerationPageSize))
	}
	return c.Identifiers.Validate()
}

// Resolver resolves business keys to entity identifiers.
type Resolver struct {
	store    storage.Store
	base     string
	pageSize int
	ids      cache.Cache[graph.Term]
	memos    cache.Cache[string]
	newUUID  func() string
	registry *metric.MetricsRegistry
	metrics  *metric.Metrics
	logger   *slog.Logger

	// mintMu serializes miss-then-mint so one process never mints twice
	// for the same key.
	mintMu sync.Mutex

	enumMu       sync.RWMutex
	enumerations map[string]map[string]graph.Term
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMetrics records resolutions in the registry's core metrics and
// exports cache statistics through it.
func WithMetrics(registry *metric.MetricsRegistry) Option {
	return func(r *Resolver) {
		r.registry = registry
		if registry != nil {
			r.metrics = registry.CoreMetrics()
		}
	}
}

// WithIDGenerator replaces the random UUID source used for minting.
func WithIDGenerator(gen func() string) Option {
	return func(r *Resolver) {
		if gen != nil {
			r.newUUID = gen
		}
	}
}

// New returns a Resolver over store. The identifier cache's sweeper stops
// when ctx is done or Close is called.
func New(ctx context.Context, store storage.Store, config Config, opts ...Option) (*Resolver, error) {
	if store == nil {
		return nil, errors.WrapInvalid(errors.ErrMissingConfig, "resolver", "New", "store is required")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	r := &Resolver{
		store:        store,
		base:         config.BaseIRI,
		pageSize:     config.EnumerationPageSize,
		newUUID:      uuid.NewString,
		logger:       slog.Default(),
		enumerations: make(map[string]map[string]graph.Term),
	}
	if r.pageSize == 0 {
		r.pageSize = DefaultEnumerationPageSize
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("component", "resolver")

	ids, err := cache.NewFromConfig[graph.Term](ctx, config.Identifiers,
		cache.WithMetrics[graph.Term](r.registry, "resolver_identifiers"))
	if err != nil {
		return nil, errors.Wrap(err, "resolver", "New", "create identifier cache")
	}
	memos, err := cache.NewSimple[string](cache.WithMetrics[string](r.registry, "resolver_memos"))
	if err != nil {
		_ = ids.Close()
		return nil, errors.Wrap(err, "resolver", "New", "create memo cache")
	}
	r.ids = ids
	r.memos = memos
	return r, nil
}

// Close stops the identifier cache's sweeper.
func (r *Resolver) Close() error {
	if err := r.ids.Close(); err != nil {
		return err
	}
	return r.memos.Close()
}

// BaseIRI returns the prefix of minted identifiers.
func (r *Resolver) BaseIRI() string {
	return r.base
}

// NewID mints a fresh identifier. Nothing is written to the store.
func (r *Resolver) NewID() graph.Term {
	return graph.NewIRI(r.base + r.newUUID())
}

// CompositeKey joins the parts of a multi-field business key.
func CompositeKey(parts ...string) string {
	trimmed := make([]string, len(parts))
	for i, p := range parts {
		trimmed[i] = strings.TrimSpace(p)
	}
	return strings.Join(trimmed, " | ")
}

// Fetch returns the identifier for key in category. A cache hit refreshes
// the entry's expiry; a miss queries the store and caches a hit. Fetch
// never creates anything.
func (r *Resolver) Fetch(ctx context.Context, category, key string) (graph.Term, bool, error) {
	cat, err := resolvable(category, key)
	if err != nil {
		return graph.Term{}, false, err
	}
	return r.fetch(ctx, cat, key)
}

func (r *Resolver) fetch(ctx context.Context, cat vocabulary.Category, key string) (graph.Term, bool, error) {
	cacheKey := cat.Name + "|" + key
	if id, ok := r.ids.Get(cacheKey); ok {
		r.metrics.RecordResolution(cat.Name, metric.SourceCache)
		return id, true, nil
	}

	keyTerm := KeyTerm(cat, key)
	g, err := r.store.Construct(ctx, storage.ResolveQuery(cat.KeyPredicate, keyTerm))
	if err != nil {
		return graph.Term{}, false, errors.Wrap(err, "resolver", "Fetch", "resolve "+cat.Name)
	}

	subjects := g.Subjects(graph.NewIRI(cat.KeyPredicate), keyTerm)
	if len(subjects) == 0 {
		r.metrics.RecordResolution(cat.Name, metric.SourceMiss)
		return graph.Term{}, false, nil
	}
	if len(subjects) > 1 {
		r.logger.Warn("Business key resolves to several identifiers, using the first",
			"category", cat.Name,
			"key", key,
			"count", len(subjects))
	}

	id := subjects[0]
	if _, err := r.ids.Set(cacheKey, id); err != nil {
		return graph.Term{}, false, errors.Wrap(err, "resolver", "Fetch", "cache identifier")
	}
	r.metrics.RecordResolution(cat.Name, metric.SourceStore)
	return id, true, nil
}

// FetchOrCreate is Fetch, minting an identifier on a miss. The reservation
// triple (id, labelPredicate, key) is written before the identifier is
// returned. An empty labelPredicate uses the category's key predicate.
func (r *Resolver) FetchOrCreate(ctx context.Context, category, key, labelPredicate string) (graph.Term, error) {
	cat, err := resolvable(category, key)
	if err != nil {
		return graph.Term{}, err
	}
	if labelPredicate == "" {
		labelPredicate = cat.KeyPredicate
	}

	r.mintMu.Lock()
	defer r.mintMu.Unlock()

	id, ok, err := r.fetch(ctx, cat, key)
	if err != nil || ok {
		return id, err
	}

	id = r.NewID()
	reservation := graph.New(graph.NewTriple(id, graph.NewIRI(labelPredicate), KeyTerm(cat, key)))
	if err := r.store.Update(ctx, &graph.Diff{Added: reservation, Removed: graph.New()}); err != nil {
		return graph.Term{}, errors.Wrap(err, "resolver", "FetchOrCreate", "reserve "+cat.Name)
	}
	if _, err := r.ids.Set(cat.Name+"|"+key, id); err != nil {
		return graph.Term{}, errors.Wrap(err, "resolver", "FetchOrCreate", "cache identifier")
	}

	r.metrics.RecordResolution(cat.Name, metric.SourceMinted)
	r.logger.Debug("Identifier minted", "category", cat.Name, "key", key, "id", id.Value)
	return id, nil
}

// Remember caches id for key, typically after a builder minted the
// subject of a main entity and its fragment was applied.
func (r *Resolver) Remember(category, key string, id graph.Term) error {
	if _, err := resolvable(category, key); err != nil {
		return err
	}
	if _, err := r.ids.Set(category+"|"+key, id); err != nil {
		return errors.Wrap(err, "resolver", "Remember", "cache identifier")
	}
	return nil
}

// Forget drops a cached identifier so the next lookup goes to the store.
func (r *Resolver) Forget(category, key string) {
	_, _ = r.ids.Delete(category + "|" + key)
}

// KeyTerm renders key as the object of the category's key predicate.
func KeyTerm(cat vocabulary.Category, key string) graph.Term {
	if cat.KeyIsIRI {
		return graph.NewIRI(key)
	}
	return graph.NewLiteral(key)
}

func resolvable(category, key string) (vocabulary.Category, error) {
	cat, ok := vocabulary.LookupCategory(category)
	if !ok {
		return cat, errors.WrapInvalid(fmt.Errorf("%w: %s", errors.ErrUnknownCategory, category),
			"resolver", "resolve", "lookup category")
	}
	if !cat.Resolvable() {
		return cat, errors.WrapInvalid(fmt.Errorf("%w: %s has no key predicate", errors.ErrUnknownCategory, category),
			"resolver", "resolve", "lookup category")
	}
	if strings.TrimSpace(key) == "" {
		return cat, errors.WrapInvalid(errors.ErrInvalidKey, "resolver", "resolve", "empty "+category+" key")
	}
	return cat, nil
}
