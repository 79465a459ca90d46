package main

import (
	"golang.org/x/sync/errgroup"

	"github.com/nationalarchives/dri-data-migration-sub000/input/jsonl"
	"github.com/nationalarchives/dri-data-migration-sub000/staging"
)

// loadInputs reads <dir>/<kind>.jsonl for each selected kind, or for
// every kind when none is selected. Missing files stage nothing.
func loadInputs(dir string, kinds []staging.Kind) (staging.Inputs, error) {
	var in staging.Inputs
	selected := kinds
	if len(selected) == 0 {
		selected = staging.IngestOrder
	}

	var g errgroup.Group
	for _, kind := range selected {
		path := jsonl.Path(dir, kind.String())
		switch kind {
		case staging.KindAccessCondition:
			g.Go(func() (err error) { in.AccessConditions, err = jsonl.ReadFile[staging.AccessConditionRecord](path); return })
		case staging.KindLegislation:
			g.Go(func() (err error) { in.Legislations, err = jsonl.ReadFile[staging.LegislationRecord](path); return })
		case staging.KindGroundForRetention:
			g.Go(func() (err error) { in.GroundsForRetention, err = jsonl.ReadFile[staging.GroundForRetentionRecord](path); return })
		case staging.KindSubset:
			g.Go(func() (err error) { in.Subsets, err = jsonl.ReadFile[staging.SubsetRecord](path); return })
		case staging.KindAsset:
			g.Go(func() (err error) { in.Assets, err = jsonl.ReadFile[staging.AssetRecord](path); return })
		case staging.KindVariation:
			g.Go(func() (err error) { in.Variations, err = jsonl.ReadFile[staging.VariationRecord](path); return })
		case staging.KindVariationFile:
			g.Go(func() (err error) { in.VariationFiles, err = jsonl.ReadFile[staging.VariationFileRecord](path); return })
		case staging.KindSensitivityReview:
			g.Go(func() (err error) { in.SensitivityReviews, err = jsonl.ReadFile[staging.SensitivityReviewRecord](path); return })
		case staging.KindChange:
			g.Go(func() (err error) { in.Changes, err = jsonl.ReadFile[staging.ChangeRecord](path); return })
		}
	}
	if err := g.Wait(); err != nil {
		return staging.Inputs{}, err
	}
	return in, nil
}
