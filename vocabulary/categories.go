package vocabulary

import (
	"sort"
	"sync"
)

// CategoryKind describes how entities of a category come into existence.
type CategoryKind int

const (
	// CategoryMain entities are built by their own record kind.
	CategoryMain CategoryKind = iota
	// CategoryEnumeration entities form a closed code list that is seeded
	// before ingestion and preloaded once per process.
	CategoryEnumeration
	// CategoryMinted entities are minted on first mention by another record.
	CategoryMinted
	// CategoryMemo categories scope memoised values only and never resolve
	// to graph subjects.
	CategoryMemo
)

// String returns the string representation of CategoryKind
func (k CategoryKind) String() string {
	switch k {
	case CategoryMain:
		return "main"
	case CategoryEnumeration:
		return "enumeration"
	case CategoryMinted:
		return "minted"
	case CategoryMemo:
		return "memo"
	default:
		return "unknown"
	}
}

// Category names.
const (
	Asset             = "asset"
	Subset            = "subset"
	Variation         = "variation"
	SensitivityReview = "sensitivity-review"
	Change            = "change"

	AccessCondition    = "access-condition"
	Legislation        = "legislation"
	GroundForRetention = "ground-for-retention"

	Language          = "language"
	FormalBody        = "formal-body"
	Copyright         = "copyright"
	GeographicalPlace = "geographic-place"
	SealCategory      = "seal-category"
	Operator          = "operator"
	Battalion         = "battalion"
	Witness           = "witness"

	RelatedMaterial = "related-material"
)

// Category scopes business keys. KeyPredicate is the distinguishing
// predicate that links an entity to its key; KeyIsIRI marks categories
// whose keys are IRIs rather than literals.
type Category struct {
	Name         string
	Kind         CategoryKind
	KeyPredicate string
	KeyIsIRI     bool
	Description  string
}

// Resolvable reports whether keys of this category map to graph subjects.
func (c Category) Resolvable() bool {
	return c.Kind != CategoryMemo && c.KeyPredicate != ""
}

// CategoryOption configures a Category during registration.
type CategoryOption func(*Category)

// WithKeyPredicate sets the distinguishing predicate.
func WithKeyPredicate(predicate string) CategoryOption {
	return func(c *Category) {
		c.KeyPredicate = predicate
	}
}

// WithIRIKey marks the category's keys as IRIs.
func WithIRIKey() CategoryOption {
	return func(c *Category) {
		c.KeyIsIRI = true
	}
}

// WithCategoryDescription sets a human-readable description.
func WithCategoryDescription(desc string) CategoryOption {
	return func(c *Category) {
		c.Description = desc
	}
}

var (
	categoryRegistry = make(map[string]Category)
	categoryMu       sync.RWMutex
)

// RegisterCategory registers or replaces a category.
func RegisterCategory(name string, kind CategoryKind, opts ...CategoryOption) {
	c := Category{Name: name, Kind: kind}
	for _, opt := range opts {
		opt(&c)
	}

	categoryMu.Lock()
	defer categoryMu.Unlock()
	categoryRegistry[name] = c
}

// LookupCategory returns the registered category with the given name.
func LookupCategory(name string) (Category, bool) {
	categoryMu.RLock()
	defer categoryMu.RUnlock()

	c, ok := categoryRegistry[name]
	return c, ok
}

// Categories returns all registered categories sorted by name.
func Categories() []Category {
	categoryMu.RLock()
	defer categoryMu.RUnlock()

	out := make([]Category, 0, len(categoryRegistry))
	for _, c := range categoryRegistry {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Enumerations returns the closed code-list categories in preload order.
func Enumerations() []string {
	return []string{AccessCondition, Legislation, GroundForRetention}
}

func init() {
	RegisterCategory(Asset, CategoryMain,
		WithKeyPredicate(AssetReference),
		WithCategoryDescription("catalogued record unit"))
	RegisterCategory(Subset, CategoryMain,
		WithKeyPredicate(SubsetReference),
		WithCategoryDescription("series or sub-series grouping assets"))
	RegisterCategory(Variation, CategoryMain,
		WithKeyPredicate(VariationDriId),
		WithCategoryDescription("digital manifestation of an asset"))
	RegisterCategory(SensitivityReview, CategoryMain,
		WithKeyPredicate(SensitivityReviewDriId))
	RegisterCategory(Change, CategoryMain,
		WithKeyPredicate(ChangeDriId))

	RegisterCategory(AccessCondition, CategoryEnumeration,
		WithKeyPredicate(AccessConditionCode))
	RegisterCategory(Legislation, CategoryEnumeration,
		WithKeyPredicate(LegislationHasUkLegislation),
		WithIRIKey())
	RegisterCategory(GroundForRetention, CategoryEnumeration,
		WithKeyPredicate(GroundForRetentionCode))

	RegisterCategory(Language, CategoryMinted, WithKeyPredicate(LanguageName))
	RegisterCategory(FormalBody, CategoryMinted, WithKeyPredicate(FormalBodyName))
	RegisterCategory(Copyright, CategoryMinted, WithKeyPredicate(CopyrightTitle))
	RegisterCategory(GeographicalPlace, CategoryMinted, WithKeyPredicate(GeographicalPlaceName))
	RegisterCategory(SealCategory, CategoryMinted, WithKeyPredicate(SealCategoryName))
	RegisterCategory(Operator, CategoryMinted, WithKeyPredicate(OperatorName))
	RegisterCategory(Battalion, CategoryMinted, WithKeyPredicate(BattalionName))
	RegisterCategory(Witness, CategoryMinted, WithKeyPredicate(WitnessKey))

	RegisterCategory(RelatedMaterial, CategoryMemo,
		WithCategoryDescription("external reference lookups for related material links"))
}
