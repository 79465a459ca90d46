package staging

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nationalarchives/dri-data-migration-sub000/errors"
	"github.com/nationalarchives/dri-data-migration-sub000/graph"
	"github.com/nationalarchives/dri-data-migration-sub000/input/jsonl"
	fixtures "github.com/nationalarchives/dri-data-migration-sub000/testutil"
	"github.com/nationalarchives/dri-data-migration-sub000/vocabulary"
)

func decode[T any](t *testing.T, kind Kind) []T {
	t.Helper()
	recs, err := jsonl.Read[T](strings.NewReader(fixtures.RecordLines[kind.String()]))
	require.NoError(t, err)
	return recs
}

func fixtureInputs(t *testing.T) Inputs {
	t.Helper()
	return Inputs{
		AccessConditions:    decode[AccessConditionRecord](t, KindAccessCondition),
		Legislations:        decode[LegislationRecord](t, KindLegislation),
		GroundsForRetention: decode[GroundForRetentionRecord](t, KindGroundForRetention),
		Subsets:             decode[SubsetRecord](t, KindSubset),
		Assets:              decode[AssetRecord](t, KindAsset),
		Variations:          decode[VariationRecord](t, KindVariation),
		VariationFiles:      decode[VariationFileRecord](t, KindVariationFile),
		SensitivityReviews:  decode[SensitivityReviewRecord](t, KindSensitivityReview),
		Changes:             decode[ChangeRecord](t, KindChange),
	}
}

func runFixtures(t *testing.T, h *harness, opts ...Option) Report {
	t.Helper()
	opts = append([]Option{WithLogger(h.logs.Logger())}, opts...)
	report, err := NewRunner(h.store, h.resolver, opts...).Run(context.Background(), fixtureInputs(t))
	require.NoError(t, err)
	return report
}

func (h *harness) subject(t *testing.T, category, key string) graph.Term {
	t.Helper()
	id, ok, err := h.resolver.Fetch(context.Background(), category, key)
	require.NoError(t, err)
	require.True(t, ok, "%s %q not staged", category, key)
	return id
}

func (h *harness) object(t *testing.T, s graph.Term, p string) graph.Term {
	t.Helper()
	o, ok := h.store.Graph().Object(s, graph.NewIRI(p))
	require.True(t, ok, "no %s on %s", p, s)
	return o
}

func TestRunner_StagesInDependencyOrder(t *testing.T) {
	h := newHarness(t)
	report := runFixtures(t, h)

	require.Len(t, report.Results, len(IngestOrder))
	for i, kind := range IngestOrder {
		assert.Equal(t, kind, report.Results[i].Kind)
	}

	totals := report.Totals()
	assert.Equal(t, 13, totals.Processed)
	assert.Equal(t, 1, totals.Skipped, "variation V9 cites a missing asset")
	assert.Zero(t, totals.Failed)
	assert.Equal(t, 12, totals.Updated)
}

func TestRunner_StagesAssetMarkup(t *testing.T) {
	h := newHarness(t)
	runFixtures(t, h)

	asset := h.subject(t, vocabulary.Asset, "ADM 1/1")
	assert.Equal(t, h.subject(t, vocabulary.Subset, "ADM 1"), h.object(t, asset, vocabulary.AssetHasSubset))
	assert.Equal(t, "Letters to the fleet", h.object(t, asset, vocabulary.AssetSummary).Value)
	assert.Equal(t, vocabulary.PublicRecord, h.object(t, asset, vocabulary.AssetHasLegalStatus).Value)
	assert.Equal(t, "2", h.object(t, asset, vocabulary.AssetPhysicalItemCount).Value)
	assert.Equal(t, h.subject(t, vocabulary.Language, "English"), h.object(t, asset, vocabulary.AssetHasLanguage))
	assert.Equal(t, h.subject(t, vocabulary.FormalBody, "The National Archives, Kew"), h.object(t, asset, vocabulary.AssetHeldBy))
	assert.Equal(t, h.subject(t, vocabulary.Witness, "John Smith | Witness to seal"), h.object(t, asset, vocabulary.AssetHasWitness))
	assert.Equal(t, h.subject(t, vocabulary.Asset, "ADM 1/2"), h.object(t, asset, vocabulary.AssetHasRelatedAsset))
	assert.Equal(t, "See also the seal", h.object(t, asset, vocabulary.AssetRelatedMaterial).Value)

	kinship := h.object(t, asset, vocabulary.AssetHasKinship)
	assert.True(t, graph.IsSkolem(kinship))
	assert.Equal(t, "son", h.object(t, kinship, vocabulary.KinshipRelation).Value)
	assert.Equal(t, "William Smith", h.object(t, kinship, vocabulary.KinshipName).Value)

	dimension := h.object(t, asset, vocabulary.AssetHasDimension)
	pair := h.object(t, dimension, vocabulary.DimensionHasFirstPair)
	assert.Equal(t, graph.NewDecimal(55), h.object(t, pair, vocabulary.FirstMillimetre))
	assert.Equal(t, graph.NewDecimal(32), h.object(t, pair, vocabulary.SecondMillimetre))

	seal := h.object(t, asset, vocabulary.AssetHasSealDateRange)
	assert.True(t, graph.IsSkolem(seal))

	covering := h.object(t, asset, vocabulary.AssetHasCoveringDateRange)
	end := h.object(t, covering, vocabulary.RangeEnd)
	assert.Equal(t, "1918", h.object(t, end, vocabulary.Year).Value)
}

func TestRunner_StagesVariationsAndReviews(t *testing.T) {
	h := newHarness(t)
	runFixtures(t, h)

	variation := h.subject(t, vocabulary.Variation, "V1")
	assert.Equal(t, h.subject(t, vocabulary.Asset, "ADM 1/1"), h.object(t, variation, vocabulary.VariationHasAsset))
	assert.Equal(t, "ADM_1_1.pdf", h.object(t, variation, vocabulary.VariationName).Value)
	assert.Equal(t, "PDF", h.object(t, variation, vocabulary.VariationFileFormat).Value)
	assert.Equal(t, graph.NewInteger(2048), h.object(t, variation, vocabulary.VariationSizeBytes))
	scan := h.object(t, variation, vocabulary.VariationHasScanDate)
	assert.Equal(t, "2015", h.object(t, scan, vocabulary.Year).Value)

	_, ok, err := h.resolver.Fetch(context.Background(), vocabulary.Variation, "V9")
	require.NoError(t, err)
	assert.False(t, ok)

	review := h.subject(t, vocabulary.SensitivityReview, "SR1")
	assert.Equal(t, h.subject(t, vocabulary.Asset, "ADM 1/1"), h.object(t, review, vocabulary.SensitivityReviewHasAsset))
	assert.Equal(t, h.subject(t, vocabulary.AccessCondition, "C"), h.object(t, review, vocabulary.SensitivityReviewHasAccessCondition))

	restriction := h.object(t, review, vocabulary.SensitivityReviewHasRestriction)
	assert.Equal(t, graph.NewDuration(10), h.object(t, restriction, vocabulary.RestrictionDuration))
	assert.Equal(t, h.subject(t, vocabulary.Legislation, fixtures.Legislation), h.object(t, restriction, vocabulary.RestrictionHasLegislation))

	retention := h.object(t, review, vocabulary.SensitivityReviewHasRetentionRestriction)
	assert.Equal(t, h.subject(t, vocabulary.GroundForRetention, "R1"), h.object(t, retention, vocabulary.RetentionHasGroundForRetention))

	// the cited past review exists only as a placeholder
	past := h.object(t, review, vocabulary.SensitivityReviewHasPastSensitivityReview)
	assert.Equal(t, h.subject(t, vocabulary.SensitivityReview, "SR0"), past)
	assert.Len(t, h.store.Graph().Match(past, graph.Term{}, graph.Term{}), 1)

	change := h.subject(t, vocabulary.Change, "CH1")
	assert.Equal(t, h.subject(t, vocabulary.Operator, "jbloggs"), h.object(t, change, vocabulary.ChangeHasOperator))
}

func TestRunner_PlaceholderIsFilledLater(t *testing.T) {
	h := newHarness(t)
	runFixtures(t, h)
	placeholder := h.subject(t, vocabulary.SensitivityReview, "SR0")

	_, _, err := ingest(h, SensitivityReviewSpec()).Ingest(context.Background(), SensitivityReviewRecord{
		ID:            "SR0",
		TargetType:    TargetAsset,
		TargetID:      "ADM 1/1",
		SensitiveName: "Jane Smith",
	})
	require.NoError(t, err)

	assert.Equal(t, placeholder, h.subject(t, vocabulary.SensitivityReview, "SR0"))
	assert.Equal(t, "Jane Smith", h.object(t, placeholder, vocabulary.SensitivityReviewSensitiveName).Value)
}

func TestRunner_Idempotent(t *testing.T) {
	h := newHarness(t)
	runFixtures(t, h)
	staged := h.store.Graph()
	updates := h.store.UpdateCount()

	// a fresh process resolves everything from the store
	again := newHarnessOn(t, h.store)
	report := runFixtures(t, again)

	totals := report.Totals()
	assert.Zero(t, totals.Updated)
	assert.Zero(t, totals.Failed)
	assert.Equal(t, 12, totals.Unchanged)
	assert.Equal(t, updates, h.store.UpdateCount(), "no writes on a repeated run")
	assert.True(t, staged.Equal(h.store.Graph()))
}

func TestRunner_EmptyEnumerationIsFatal(t *testing.T) {
	h := newHarness(t)
	in := Inputs{Subsets: []SubsetRecord{{ID: "ADM"}}}

	report, err := NewRunner(h.store, h.resolver, WithLogger(h.logs.Logger())).Run(context.Background(), in)
	require.Error(t, err)
	assert.True(t, errors.IsFatal(err))
	assert.ErrorIs(t, err, errors.ErrEnumerationEmpty)
	assert.Len(t, report.Results, 3, "only the enumeration kinds ran")
	assert.Zero(t, h.store.UpdateCount())
}

func TestRunner_KindsFilter(t *testing.T) {
	h := newHarness(t)
	report := runFixtures(t, h, WithKinds(KindAccessCondition))

	require.Len(t, report.Results, 1)
	assert.Equal(t, KindAccessCondition, report.Results[0].Kind)
	assert.Equal(t, 2, report.Results[0].Updated)
	assert.Equal(t, 4, h.store.Graph().Len())
}

func TestRunner_KindsFilterPreloadsExistingEnumerations(t *testing.T) {
	h := newHarness(t)
	runFixtures(t, h, WithKinds(KindAccessCondition, KindLegislation, KindGroundForRetention, KindSubset))

	fresh := newHarnessOn(t, h.store)
	report := runFixtures(t, fresh, WithKinds(KindAsset))
	require.Len(t, report.Results, 1)
	assert.Equal(t, 2, report.Results[0].Updated)
	assert.True(t, fresh.resolver.EnumerationLoaded(vocabulary.AccessCondition))
}

func TestRunner_Cancelled(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := NewRunner(h.store, h.resolver).Run(ctx, fixtureInputs(t))
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, report.Results)
}
