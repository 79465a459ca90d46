package staging

import (
	"fmt"
	"strings"

	"github.com/nationalarchives/dri-data-migration-sub000/errors"
	"github.com/nationalarchives/dri-data-migration-sub000/vocabulary"
)

// Kind is a legacy record kind.
type Kind string

// Record kinds.
const (
	KindAccessCondition    Kind = "access-condition"
	KindLegislation        Kind = "legislation"
	KindGroundForRetention Kind = "ground-for-retention"
	KindSubset             Kind = "subset"
	KindAsset              Kind = "asset"
	KindVariation          Kind = "variation"
	KindVariationFile      Kind = "variation-file"
	KindSensitivityReview  Kind = "sensitivity-review"
	KindChange             Kind = "change"
)

// IngestOrder lists every kind in dependency order. Later kinds resolve
// identifiers minted by earlier ones.
var IngestOrder = []Kind{
	KindAccessCondition,
	KindLegislation,
	KindGroundForRetention,
	KindSubset,
	KindAsset,
	KindVariation,
	KindVariationFile,
	KindSensitivityReview,
	KindChange,
}

// String returns the kind name.
func (k Kind) String() string {
	return string(k)
}

// Category returns the entity category whose subjects records of this
// kind describe.
func (k Kind) Category() string {
	if k == KindVariationFile {
		return vocabulary.Variation
	}
	return string(k)
}

// IsEnumeration reports whether records of this kind seed a closed code
// list.
func (k Kind) IsEnumeration() bool {
	switch k {
	case KindAccessCondition, KindLegislation, KindGroundForRetention:
		return true
	}
	return false
}

// ParseKind parses a kind name.
func ParseKind(s string) (Kind, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	for _, k := range IngestOrder {
		if string(k) == s {
			return k, nil
		}
	}
	return "", errors.WrapInvalid(fmt.Errorf("%w: unknown record kind %q", errors.ErrInvalidConfig, s),
		"staging", "ParseKind", "parse kind")
}

// ParseKinds parses a comma-separated kind list. Empty input selects
// nothing, which callers treat as every kind.
func ParseKinds(s string) ([]Kind, error) {
	var kinds []Kind
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		k, err := ParseKind(part)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}
