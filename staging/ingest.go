package staging

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nationalarchives/dri-data-migration-sub000/errors"
	"github.com/nationalarchives/dri-data-migration-sub000/graph"
	"github.com/nationalarchives/dri-data-migration-sub000/metric"
	"github.com/nationalarchives/dri-data-migration-sub000/resolver"
	"github.com/nationalarchives/dri-data-migration-sub000/storage"
	"github.com/nationalarchives/dri-data-migration-sub000/vocabulary"
)

// Outcome is the result of ingesting one record.
type Outcome string

// Record outcomes.
const (
	OutcomeUpdated   Outcome = metric.OutcomeUpdated
	OutcomeUnchanged Outcome = metric.OutcomeUnchanged
	OutcomeSkipped   Outcome = metric.OutcomeSkipped
	OutcomeFailed    Outcome = metric.OutcomeFailed
)

// Result counts the outcomes of one batch.
type Result struct {
	Kind      Kind          `json:"kind"`
	Processed int           `json:"processed"`
	Updated   int           `json:"updated"`
	Unchanged int           `json:"unchanged"`
	Skipped   int           `json:"skipped"`
	Failed    int           `json:"failed"`
	Added     int           `json:"added"`
	Removed   int           `json:"removed"`
	Duration  time.Duration `json:"duration"`
}

func (r *Result) record(outcome Outcome, diff *graph.Diff) {
	r.Processed++
	switch outcome {
	case OutcomeUpdated:
		r.Updated++
		r.Added += diff.Added.Len()
		r.Removed += diff.Removed.Len()
	case OutcomeUnchanged:
		r.Unchanged++
	case OutcomeSkipped:
		r.Skipped++
	default:
		r.Failed++
	}
}

// Option configures Ingest and Runner.
type Option func(*options)

type options struct {
	notifier ChangeNotifier
	metrics  *metric.Metrics
	logger   *slog.Logger
	kinds    []Kind
}

// WithNotifier reports every applied diff to n.
func WithNotifier(n ChangeNotifier) Option {
	return func(o *options) {
		o.notifier = n
	}
}

// WithMetrics records outcomes and diff sizes.
func WithMetrics(m *metric.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithKinds restricts a Runner to kinds. Ingest ignores it.
func WithKinds(kinds ...Kind) Option {
	return func(o *options) {
		o.kinds = kinds
	}
}

func applyOptions(opts []Option) options {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Ingest stages records of one kind: for each record it fetches the
// existing fragment, builds the proposed one, and applies the difference
// when there is one.
type Ingest[T Record] struct {
	spec       Spec[T]
	store      storage.Store
	env        *Env
	skolemBase string
	notifier   ChangeNotifier
	metrics    *metric.Metrics
	logger     *slog.Logger
}

// NewIngest returns the driver for spec.
func NewIngest[T Record](spec Spec[T], store storage.Store, env *Env, opts ...Option) *Ingest[T] {
	o := applyOptions(opts)
	return &Ingest[T]{
		spec:       spec,
		store:      store,
		env:        env,
		skolemBase: graph.SkolemBase(env.Resolver.BaseIRI()),
		notifier:   o.notifier,
		metrics:    o.metrics,
		logger:     o.logger.With("component", "ingest"),
	}
}

// Ingest stages one record. Skipped records return a nil error; failed
// records return the cause, which is a store failure when the transport
// failed. The diff is nil unless the record was built.
func (i *Ingest[T]) Ingest(ctx context.Context, rec T) (outcome Outcome, diff *graph.Diff, err error) {
	kind := i.spec.Kind.String()
	key := rec.Key()
	logger := i.logger.With("kind", kind, "record_id", key)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			outcome, diff = OutcomeFailed, nil
			err = errors.WrapInvalid(fmt.Errorf("panic: %v", r), "Ingest", "Ingest", "build "+kind)
			logger.Error("Record failed", "error", err)
		}
		i.metrics.RecordOutcome(kind, string(outcome), time.Since(start))
	}()

	if strings.TrimSpace(key) == "" {
		err = errors.WrapInvalid(errors.ErrInvalidData, "Ingest", "Ingest", "record has no id")
		logger.Error("Record failed", "error", err)
		return OutcomeFailed, nil, err
	}

	existing, err := i.store.Construct(ctx, i.spec.Existing(rec))
	if err != nil {
		err = errors.Wrap(err, "Ingest", "Ingest", "fetch existing fragment")
		logger.Error("Record failed", "error", err)
		return OutcomeFailed, nil, err
	}

	logger.Debug("Build started", "existing", existing.Len())
	proposed, err := i.spec.Build(ctx, i.env.forRecord(logger), existing, rec)

	var missing *errors.MissingDependencyError
	switch {
	case stderrors.As(err, &missing):
		logger.Warn("Record skipped, missing dependency", "category", missing.Category, "key", missing.Key)
		return OutcomeSkipped, nil, nil
	case err != nil:
		logger.Error("Record failed", "error", err)
		return OutcomeFailed, nil, err
	case proposed == nil:
		logger.Warn("Record skipped, nothing built")
		return OutcomeSkipped, nil, nil
	}

	proposed = graph.Skolemize(proposed, i.skolemBase)
	logger.Debug("Build completed", "triples", proposed.Len())

	diff = graph.Compare(existing, proposed)
	if diff.IsEmpty() {
		logger.Debug("Record unchanged")
		return OutcomeUnchanged, diff, nil
	}

	if err := i.store.Update(ctx, diff); err != nil {
		err = errors.Wrap(err, "Ingest", "Ingest", "apply diff")
		logger.Error("Record failed", "error", err)
		return OutcomeFailed, nil, err
	}

	added, removed := diff.Added.Len(), diff.Removed.Len()
	i.metrics.RecordDiff(kind, added, removed)
	logger.Info("Record updated", "added", added, "removed", removed)

	subject := i.remember(logger, proposed, key)
	i.notify(ctx, logger, key, subject, diff)
	return OutcomeUpdated, diff, nil
}

// remember primes the resolver with the record's subject so later kinds
// resolve it without a store round-trip.
func (i *Ingest[T]) remember(logger *slog.Logger, proposed *graph.Graph, key string) graph.Term {
	cat, ok := vocabulary.LookupCategory(i.spec.Kind.Category())
	if !ok {
		return graph.Term{}
	}
	subjects := proposed.Subjects(graph.NewIRI(cat.KeyPredicate), resolver.KeyTerm(cat, key))
	if len(subjects) == 0 {
		return graph.Term{}
	}
	if err := i.env.Resolver.Remember(cat.Name, key, subjects[0]); err != nil {
		logger.Warn("Failed to cache identifier", "error", err)
	}
	return subjects[0]
}

func (i *Ingest[T]) notify(ctx context.Context, logger *slog.Logger, key string, subject graph.Term, diff *graph.Diff) {
	if i.notifier == nil {
		return
	}
	report := ChangeReport{
		Kind:      i.spec.Kind,
		RecordID:  key,
		Subject:   subject.Value,
		Added:     diff.Added.Len(),
		Removed:   diff.Removed.Len(),
		Insert:    graph.Marshal(diff.Added),
		Delete:    graph.Marshal(diff.Removed),
		Timestamp: time.Now().UTC(),
	}
	if err := i.notifier.Notify(ctx, report); err != nil {
		logger.Warn("Change notification failed", "error", err)
	}
}

// RunBatch ingests recs sequentially. Cancellation is observed between
// records only; a record in progress always completes. Record failures
// are isolated, except store failures, which abort the batch and are
// returned with the partial result.
func (i *Ingest[T]) RunBatch(ctx context.Context, recs []T) (Result, error) {
	kind := i.spec.Kind.String()
	result := Result{Kind: i.spec.Kind}
	start := time.Now()

	for n, rec := range recs {
		if err := ctx.Err(); err != nil {
			result.Duration = time.Since(start)
			i.logger.Warn("Batch cancelled",
				"kind", kind,
				"processed", n,
				"remaining", len(recs)-n)
			return result, errors.Wrap(err, "Ingest", "RunBatch", "ingest "+kind)
		}

		outcome, diff, err := i.Ingest(context.WithoutCancel(ctx), rec)
		result.record(outcome, diff)
		if err != nil && errors.IsStoreFailure(err) {
			result.Duration = time.Since(start)
			i.logger.Error("Batch aborted on store failure",
				"kind", kind,
				"processed", result.Processed,
				"remaining", len(recs)-n-1)
			return result, errors.Wrap(err, "Ingest", "RunBatch", "ingest "+kind)
		}
	}

	result.Duration = time.Since(start)
	i.logger.Info("Batch completed",
		"kind", kind,
		"processed", result.Processed,
		"updated", result.Updated,
		"unchanged", result.Unchanged,
		"skipped", result.Skipped,
		"failed", result.Failed,
		"duration", result.Duration)
	return result, nil
}
