package staging

import (
	"context"
	"log/slog"
	"time"

	"github.com/nationalarchives/dri-data-migration-sub000/errors"
	"github.com/nationalarchives/dri-data-migration-sub000/resolver"
	"github.com/nationalarchives/dri-data-migration-sub000/storage"
	"github.com/nationalarchives/dri-data-migration-sub000/vocabulary"
)

// Inputs holds the records of every kind for one run.
type Inputs struct {
	AccessConditions    []AccessConditionRecord
	Legislations        []LegislationRecord
	GroundsForRetention []GroundForRetentionRecord
	Subsets             []SubsetRecord
	Assets              []AssetRecord
	Variations          []VariationRecord
	VariationFiles      []VariationFileRecord
	SensitivityReviews  []SensitivityReviewRecord
	Changes             []ChangeRecord
}

// Report is the outcome of a run, one Result per kind processed.
type Report struct {
	Results  []Result      `json:"results"`
	Duration time.Duration `json:"duration"`
}

// Totals sums the results of every kind.
func (r Report) Totals() Result {
	var t Result
	for _, res := range r.Results {
		t.Processed += res.Processed
		t.Updated += res.Updated
		t.Unchanged += res.Unchanged
		t.Skipped += res.Skipped
		t.Failed += res.Failed
		t.Added += res.Added
		t.Removed += res.Removed
	}
	t.Duration = r.Duration
	return t
}

// Runner stages every kind in dependency order.
type Runner struct {
	store    storage.Store
	resolver *resolver.Resolver
	env      *Env
	opts     []Option
	selected map[Kind]bool
	logger   *slog.Logger
}

// NewRunner returns a Runner writing to store and resolving through r.
func NewRunner(store storage.Store, r *resolver.Resolver, opts ...Option) *Runner {
	o := applyOptions(opts)
	runner := &Runner{
		store:    store,
		resolver: r,
		env:      NewEnv(r, o.logger),
		opts:     opts,
		logger:   o.logger.With("component", "runner"),
	}
	if len(o.kinds) > 0 {
		runner.selected = make(map[Kind]bool, len(o.kinds))
		for _, k := range o.kinds {
			runner.selected[k] = true
		}
	}
	return runner
}

func (r *Runner) runs(k Kind) bool {
	return r.selected == nil || r.selected[k]
}

// Run ingests in IngestOrder. Closed code lists are preloaded after the
// enumeration kinds and before anything that depends on them; an empty
// list aborts the run. Store failures and cancellation also stop the run,
// returning the report so far.
func (r *Runner) Run(ctx context.Context, in Inputs) (Report, error) {
	var report Report
	start := time.Now()
	preloaded := false

	for _, kind := range IngestOrder {
		if !r.runs(kind) {
			continue
		}
		if err := ctx.Err(); err != nil {
			report.Duration = time.Since(start)
			return report, errors.Wrap(err, "Runner", "Run", "ingest "+kind.String())
		}

		if !kind.IsEnumeration() && !preloaded {
			if err := r.preload(ctx); err != nil {
				report.Duration = time.Since(start)
				return report, err
			}
			preloaded = true
		}

		result, err := r.runKind(ctx, kind, in)
		report.Results = append(report.Results, result)
		if err != nil {
			report.Duration = time.Since(start)
			return report, err
		}
	}

	report.Duration = time.Since(start)
	totals := report.Totals()
	r.logger.Info("Run completed",
		"kinds", len(report.Results),
		"processed", totals.Processed,
		"updated", totals.Updated,
		"skipped", totals.Skipped,
		"failed", totals.Failed,
		"duration", report.Duration)
	return report, nil
}

func (r *Runner) preload(ctx context.Context) error {
	for _, category := range vocabulary.Enumerations() {
		if _, err := r.resolver.PreloadEnumeration(ctx, category); err != nil {
			r.logger.Error("Enumeration preload failed", "category", category, "error", err)
			return err
		}
	}
	return nil
}

func (r *Runner) runKind(ctx context.Context, kind Kind, in Inputs) (Result, error) {
	switch kind {
	case KindAccessCondition:
		return runBatch(ctx, r, AccessConditionSpec(), in.AccessConditions)
	case KindLegislation:
		return runBatch(ctx, r, LegislationSpec(), in.Legislations)
	case KindGroundForRetention:
		return runBatch(ctx, r, GroundForRetentionSpec(), in.GroundsForRetention)
	case KindSubset:
		return runBatch(ctx, r, SubsetSpec(), in.Subsets)
	case KindAsset:
		return runBatch(ctx, r, AssetSpec(), in.Assets)
	case KindVariation:
		return runBatch(ctx, r, VariationSpec(), in.Variations)
	case KindVariationFile:
		return runBatch(ctx, r, VariationFileSpec(), in.VariationFiles)
	case KindSensitivityReview:
		return runBatch(ctx, r, SensitivityReviewSpec(), in.SensitivityReviews)
	case KindChange:
		return runBatch(ctx, r, ChangeSpec(), in.Changes)
	}
	return Result{Kind: kind}, nil
}

func runBatch[T Record](ctx context.Context, r *Runner, spec Spec[T], recs []T) (Result, error) {
	return NewIngest(spec, r.store, r.env, r.opts...).RunBatch(ctx, recs)
}
