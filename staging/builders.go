package staging

import (
	"context"
	"fmt"

	"github.com/nationalarchives/dri-data-migration-sub000/errors"
	"github.com/nationalarchives/dri-data-migration-sub000/graph"
	"github.com/nationalarchives/dri-data-migration-sub000/resolver"
	"github.com/nationalarchives/dri-data-migration-sub000/storage"
	"github.com/nationalarchives/dri-data-migration-sub000/vocabulary"
)

// Spec describes how one record kind is staged: the query selecting its
// existing fragment, and the builder producing its proposed fragment.
//
// Build returns a MissingDependencyError when a mandatory related entity
// cannot be resolved; the record is then skipped.
type Spec[T Record] struct {
	Kind     Kind
	Existing func(rec T) storage.Query
	Build    func(ctx context.Context, env *Env, existing *graph.Graph, rec T) (*graph.Graph, error)
}

func existingQuery(kind Kind, key string, scope ...string) storage.Query {
	cat, _ := vocabulary.LookupCategory(kind.Category())
	q := storage.ExistingQuery(string(kind), cat.KeyPredicate, resolver.KeyTerm(cat, key))
	if len(scope) > 0 {
		q = q.Scoped(scope...)
	}
	return q
}

// AccessConditionSpec stages access conditions.
func AccessConditionSpec() Spec[AccessConditionRecord] {
	return Spec[AccessConditionRecord]{
		Kind: KindAccessCondition,
		Existing: func(rec AccessConditionRecord) storage.Query {
			return existingQuery(KindAccessCondition, rec.ID)
		},
		Build: buildAccessCondition,
	}
}

func buildAccessCondition(_ context.Context, env *Env, existing *graph.Graph, rec AccessConditionRecord) (*graph.Graph, error) {
	s := env.Identify(existing, vocabulary.AccessCondition, rec.ID)
	env.Assert.Text(s, vocabulary.AccessConditionName, rec.Name)
	return env.Assert.Graph(), nil
}

// LegislationSpec stages legislations.
func LegislationSpec() Spec[LegislationRecord] {
	return Spec[LegislationRecord]{
		Kind: KindLegislation,
		Existing: func(rec LegislationRecord) storage.Query {
			return existingQuery(KindLegislation, rec.ID)
		},
		Build: buildLegislation,
	}
}

func buildLegislation(_ context.Context, env *Env, existing *graph.Graph, rec LegislationRecord) (*graph.Graph, error) {
	s := env.Identify(existing, vocabulary.Legislation, rec.ID)
	env.Assert.Text(s, vocabulary.LegislationSectionReference, rec.Section)
	return env.Assert.Graph(), nil
}

// GroundForRetentionSpec stages grounds for retention.
func GroundForRetentionSpec() Spec[GroundForRetentionRecord] {
	return Spec[GroundForRetentionRecord]{
		Kind: KindGroundForRetention,
		Existing: func(rec GroundForRetentionRecord) storage.Query {
			return existingQuery(KindGroundForRetention, rec.ID)
		},
		Build: buildGroundForRetention,
	}
}

func buildGroundForRetention(_ context.Context, env *Env, existing *graph.Graph, rec GroundForRetentionRecord) (*graph.Graph, error) {
	s := env.Identify(existing, vocabulary.GroundForRetention, rec.ID)
	env.Assert.Text(s, vocabulary.GroundForRetentionDescription, rec.Description)
	return env.Assert.Graph(), nil
}

// SubsetSpec stages subsets. A parent subset must be staged first.
func SubsetSpec() Spec[SubsetRecord] {
	return Spec[SubsetRecord]{
		Kind: KindSubset,
		Existing: func(rec SubsetRecord) storage.Query {
			return existingQuery(KindSubset, rec.ID)
		},
		Build: buildSubset,
	}
}

func buildSubset(ctx context.Context, env *Env, existing *graph.Graph, rec SubsetRecord) (*graph.Graph, error) {
	var parent graph.Term
	if rec.ParentID != "" {
		id, err := env.Require(ctx, vocabulary.Subset, rec.ParentID)
		if err != nil {
			return nil, err
		}
		parent = id
	}

	s := env.Identify(existing, vocabulary.Subset, rec.ID)
	env.Assert.Term(s, vocabulary.SubsetHasBroaderSubset, parent)
	if err := env.Entity(ctx, s, vocabulary.SubsetHasTransferringBody, vocabulary.FormalBody, rec.TransferringBody); err != nil {
		return nil, err
	}
	if err := env.Entity(ctx, s, vocabulary.SubsetHasCreatingBody, vocabulary.FormalBody, rec.CreatingBody); err != nil {
		return nil, err
	}
	if rec.Directory != "" {
		retention := env.Assert.Node(s, vocabulary.SubsetHasRetention)
		env.Assert.Text(retention, vocabulary.ImportLocation, rec.Directory)
	}
	return env.Assert.Graph(), nil
}

// AssetSpec stages assets, including the facts in their embedded markup.
func AssetSpec() Spec[AssetRecord] {
	return Spec[AssetRecord]{
		Kind: KindAsset,
		Existing: func(rec AssetRecord) storage.Query {
			return existingQuery(KindAsset, rec.ID)
		},
		Build: buildAsset,
	}
}

func buildAsset(ctx context.Context, env *Env, existing *graph.Graph, rec AssetRecord) (*graph.Graph, error) {
	subset, err := env.Require(ctx, vocabulary.Subset, rec.SubsetID)
	if err != nil {
		return nil, err
	}

	a := env.Assert
	s := env.Identify(existing, vocabulary.Asset, rec.ID)
	a.Term(s, vocabulary.AssetHasSubset, subset)
	a.Text(s, vocabulary.AssetName, rec.Name)
	a.Text(s, vocabulary.AssetDescription, rec.Description)
	a.IRI(s, vocabulary.AssetHasLegalStatus, legalStatus(env, rec.LegalStatus))
	a.DateRange(s, vocabulary.AssetHasCoveringDateRange, "", rec.CoveringDates)
	if err := env.Entity(ctx, s, vocabulary.AssetHasLanguage, vocabulary.Language, rec.Language); err != nil {
		return nil, err
	}

	island, ok := env.Markup.Load(rec.XML)
	if !ok {
		return a.Graph(), nil
	}
	if err := applyMappings(ctx, env, island, s, assetMarkupFields); err != nil {
		return nil, err
	}
	if rec.CoveringDates == "" {
		if coverage, ok := island.Node(island.Root(), "coverage"); ok {
			a.DateRange(s, vocabulary.AssetHasCoveringDateRange, "", island.Text(coverage, "date"))
		}
	}
	return a.Graph(), nil
}

// VariationSpec stages variations. The asset must be staged first.
func VariationSpec() Spec[VariationRecord] {
	return Spec[VariationRecord]{
		Kind: KindVariation,
		Existing: func(rec VariationRecord) storage.Query {
			return existingQuery(KindVariation, rec.ID,
				vocabulary.VariationName,
				vocabulary.VariationNote,
				vocabulary.VariationHasAsset)
		},
		Build: buildVariation,
	}
}

func buildVariation(ctx context.Context, env *Env, existing *graph.Graph, rec VariationRecord) (*graph.Graph, error) {
	asset, err := env.Require(ctx, vocabulary.Asset, rec.AssetID)
	if err != nil {
		return nil, err
	}

	s := env.Identify(existing, vocabulary.Variation, rec.ID)
	env.Assert.Term(s, vocabulary.VariationHasAsset, asset)
	env.Assert.Text(s, vocabulary.VariationName, rec.Name)
	env.Assert.Text(s, vocabulary.VariationNote, rec.Note)
	return env.Assert.Graph(), nil
}

// VariationFileSpec stages the file facts of existing variations. Its
// fragment shares the variation's subject but not its predicates.
func VariationFileSpec() Spec[VariationFileRecord] {
	return Spec[VariationFileRecord]{
		Kind: KindVariationFile,
		Existing: func(rec VariationFileRecord) storage.Query {
			return existingQuery(KindVariationFile, rec.ID,
				vocabulary.VariationRelativeLocation,
				vocabulary.VariationChecksum,
				vocabulary.VariationSizeBytes,
				vocabulary.VariationFileFormat,
				vocabulary.VariationHasLanguage,
				vocabulary.VariationFileNote,
				vocabulary.VariationHasScanDate)
		},
		Build: buildVariationFile,
	}
}

func buildVariationFile(ctx context.Context, env *Env, existing *graph.Graph, rec VariationFileRecord) (*graph.Graph, error) {
	cat, _ := vocabulary.LookupCategory(vocabulary.Variation)
	subjects := existing.Subjects(graph.NewIRI(cat.KeyPredicate), resolver.KeyTerm(cat, rec.ID))
	var s graph.Term
	if len(subjects) > 0 {
		s = subjects[0]
	} else {
		id, err := env.Require(ctx, vocabulary.Variation, rec.ID)
		if err != nil {
			return nil, err
		}
		s = id
	}

	a := env.Assert
	a.Term(s, cat.KeyPredicate, resolver.KeyTerm(cat, rec.ID))
	a.Text(s, vocabulary.VariationRelativeLocation, rec.Location)
	a.Text(s, vocabulary.VariationChecksum, rec.Checksum)
	a.IntegerValue(s, vocabulary.VariationSizeBytes, rec.Size)

	if island, ok := env.Markup.Load(rec.XML); ok {
		if err := applyMappings(ctx, env, island, s, variationFileMarkupFields); err != nil {
			return nil, err
		}
	}
	return a.Graph(), nil
}

type targetPredicates struct {
	category string
	review   string
	change   string
}

var targets = map[string]targetPredicates{
	TargetAsset:     {vocabulary.Asset, vocabulary.SensitivityReviewHasAsset, vocabulary.ChangeHasAsset},
	TargetSubset:    {vocabulary.Subset, vocabulary.SensitivityReviewHasSubset, vocabulary.ChangeHasSubset},
	TargetVariation: {vocabulary.Variation, vocabulary.SensitivityReviewHasVariation, vocabulary.ChangeHasVariation},
}

func resolveTarget(ctx context.Context, env *Env, targetType, targetID string) (targetPredicates, graph.Term, error) {
	t, ok := targets[targetType]
	if !ok {
		return t, graph.Term{}, errors.WrapInvalid(fmt.Errorf("%w: unknown target type %q", errors.ErrInvalidData, targetType),
			"staging", "resolveTarget", "resolve target")
	}
	id, err := env.Require(ctx, t.category, targetID)
	return t, id, err
}

// SensitivityReviewSpec stages sensitivity reviews. Its target and every
// cited code must already exist. A cited past review that does not exist
// yet is minted as a placeholder for a later pass to fill in.
func SensitivityReviewSpec() Spec[SensitivityReviewRecord] {
	return Spec[SensitivityReviewRecord]{
		Kind: KindSensitivityReview,
		Existing: func(rec SensitivityReviewRecord) storage.Query {
			return existingQuery(KindSensitivityReview, rec.ID)
		},
		Build: buildSensitivityReview,
	}
}

func buildSensitivityReview(ctx context.Context, env *Env, existing *graph.Graph, rec SensitivityReviewRecord) (*graph.Graph, error) {
	target, targetID, err := resolveTarget(ctx, env, rec.TargetType, rec.TargetID)
	if err != nil {
		return nil, err
	}

	var accessCondition, ground graph.Term
	if rec.AccessConditionCode != "" {
		if accessCondition, err = env.RequireCode(vocabulary.AccessCondition, rec.AccessConditionCode); err != nil {
			return nil, err
		}
	}
	if rec.GroundForRetentionCode != "" {
		if ground, err = env.RequireCode(vocabulary.GroundForRetention, rec.GroundForRetentionCode); err != nil {
			return nil, err
		}
	}
	legislations := make([]graph.Term, 0, len(rec.Legislations))
	for _, iri := range rec.Legislations {
		id, err := env.RequireCode(vocabulary.Legislation, iri)
		if err != nil {
			return nil, err
		}
		legislations = append(legislations, id)
	}

	a := env.Assert
	s := env.Identify(existing, vocabulary.SensitivityReview, rec.ID)
	a.Term(s, target.review, targetID)
	a.Term(s, vocabulary.SensitivityReviewHasAccessCondition, accessCondition)
	a.Timestamp(s, vocabulary.SensitivityReviewHasDate, rec.Date)
	a.Text(s, vocabulary.SensitivityReviewSensitiveName, rec.SensitiveName)
	a.Text(s, vocabulary.SensitivityReviewSensitiveDescription, rec.SensitiveDescription)

	if rec.PreviousID != "" {
		past, err := env.Resolver.FetchOrCreate(ctx, vocabulary.SensitivityReview, rec.PreviousID, "")
		if err != nil {
			return nil, err
		}
		a.Term(s, vocabulary.SensitivityReviewHasPastSensitivityReview, past)
	}

	if rec.ReviewDate != "" || rec.RestrictionStartDate != "" || rec.RestrictionDuration != nil ||
		rec.RestrictionEndYear != nil || rec.RestrictionDescription != "" || len(legislations) > 0 {
		restriction := a.Node(s, vocabulary.SensitivityReviewHasRestriction)
		a.Timestamp(restriction, vocabulary.RestrictionHasReviewDate, rec.ReviewDate)
		a.Timestamp(restriction, vocabulary.RestrictionHasCalculationStartDate, rec.RestrictionStartDate)
		a.Years(restriction, vocabulary.RestrictionDuration, rec.RestrictionDuration)
		if rec.RestrictionEndYear != nil {
			a.Term(restriction, vocabulary.RestrictionEndYear, graph.NewInteger(int64(*rec.RestrictionEndYear)))
		}
		a.Text(restriction, vocabulary.RestrictionDescription, rec.RestrictionDescription)
		for _, l := range legislations {
			a.Term(restriction, vocabulary.RestrictionHasLegislation, l)
		}
	}

	if !ground.IsZero() || rec.InstrumentNumber != nil || rec.InstrumentSignedDate != "" || rec.RetentionReviewDate != "" {
		retention := a.Node(s, vocabulary.SensitivityReviewHasRetentionRestriction)
		a.Term(retention, vocabulary.RetentionHasGroundForRetention, ground)
		a.IntegerValue(retention, vocabulary.RetentionInstrumentNumber, rec.InstrumentNumber)
		a.Timestamp(retention, vocabulary.RetentionHasInstrumentSignedDate, rec.InstrumentSignedDate)
		a.Timestamp(retention, vocabulary.RetentionHasReviewDate, rec.RetentionReviewDate)
	}
	return a.Graph(), nil
}

// ChangeSpec stages change records.
func ChangeSpec() Spec[ChangeRecord] {
	return Spec[ChangeRecord]{
		Kind: KindChange,
		Existing: func(rec ChangeRecord) storage.Query {
			return existingQuery(KindChange, rec.ID)
		},
		Build: buildChange,
	}
}

func buildChange(ctx context.Context, env *Env, existing *graph.Graph, rec ChangeRecord) (*graph.Graph, error) {
	target, targetID, err := resolveTarget(ctx, env, rec.TargetType, rec.TargetID)
	if err != nil {
		return nil, err
	}

	a := env.Assert
	s := env.Identify(existing, vocabulary.Change, rec.ID)
	a.Term(s, target.change, targetID)
	a.Text(s, vocabulary.ChangeDescription, rec.Description)
	a.Timestamp(s, vocabulary.ChangeDateTime, rec.Timestamp)
	if err := env.Entity(ctx, s, vocabulary.ChangeHasOperator, vocabulary.Operator, rec.Operator); err != nil {
		return nil, err
	}
	return a.Graph(), nil
}
