package staging

import (
	"context"
	stderrors "errors"
	"regexp"
	"strings"

	"github.com/nationalarchives/dri-data-migration-sub000/graph"
	"github.com/nationalarchives/dri-data-migration-sub000/markup"
	"github.com/nationalarchives/dri-data-migration-sub000/resolver"
	"github.com/nationalarchives/dri-data-migration-sub000/vocabulary"
)

type fieldKind int

const (
	fieldText fieldKind = iota
	fieldInteger
	fieldDate
	fieldDateRange
	fieldDimension
	fieldEntity
	fieldWitness
	fieldKinship
	fieldRelated
)

// fieldMapping maps one property of the embedded markup to a predicate.
// Face names a sibling property qualifying the value with a seal face.
type fieldMapping struct {
	Source    string
	Predicate string
	Kind      fieldKind
	Category  string
	Face      string
}

var assetMarkupFields = []fieldMapping{
	{Source: "summary", Predicate: vocabulary.AssetSummary, Kind: fieldText},
	{Source: "administrativeBackground", Predicate: vocabulary.AssetAdministrativeBackground, Kind: fieldText},
	{Source: "arrangement", Predicate: vocabulary.AssetArrangement, Kind: fieldText},
	{Source: "physicalCondition", Predicate: vocabulary.AssetPhysicalCondition, Kind: fieldText},
	{Source: "physicalDescription", Predicate: vocabulary.AssetPhysicalDescription, Kind: fieldText},
	{Source: "note", Predicate: vocabulary.AssetNote, Kind: fieldText},
	{Source: "curatedTitle", Predicate: vocabulary.AssetCuratedTitle, Kind: fieldText},
	{Source: "formerReference", Predicate: vocabulary.AssetPastReference, Kind: fieldText},
	{Source: "physicalItemCount", Predicate: vocabulary.AssetPhysicalItemCount, Kind: fieldInteger},
	{Source: "copyright", Predicate: vocabulary.AssetHasCopyright, Kind: fieldEntity, Category: vocabulary.Copyright},
	{Source: "heldBy", Predicate: vocabulary.AssetHeldBy, Kind: fieldEntity, Category: vocabulary.FormalBody},
	{Source: "language", Predicate: vocabulary.AssetHasLanguage, Kind: fieldEntity, Category: vocabulary.Language},
	{Source: "place", Predicate: vocabulary.AssetHasGeographicalPlace, Kind: fieldEntity, Category: vocabulary.GeographicalPlace},
	{Source: "sealCategory", Predicate: vocabulary.AssetHasSealCategory, Kind: fieldEntity, Category: vocabulary.SealCategory},
	{Source: "battalion", Predicate: vocabulary.AssetHasBattalion, Kind: fieldEntity, Category: vocabulary.Battalion},
	{Source: "witness", Predicate: vocabulary.AssetHasWitness, Kind: fieldWitness, Category: vocabulary.Witness},
	{Source: "kinship", Predicate: vocabulary.AssetHasKinship, Kind: fieldKinship},
	{Source: "relatedMaterial", Predicate: vocabulary.AssetRelatedMaterial, Kind: fieldRelated},
	{Source: "sealDate", Predicate: vocabulary.AssetHasSealDateRange, Kind: fieldDateRange, Face: "face"},
	{Source: "sealStartDate", Predicate: vocabulary.AssetHasSealStartDate, Kind: fieldDate},
	{Source: "sealEndDate", Predicate: vocabulary.AssetHasSealEndDate, Kind: fieldDate},
	{Source: "dimensions", Predicate: vocabulary.AssetHasDimension, Kind: fieldDimension, Face: "face"},
}

var variationFileMarkupFields = []fieldMapping{
	{Source: "fileFormat", Predicate: vocabulary.VariationFileFormat, Kind: fieldText},
	{Source: "note", Predicate: vocabulary.VariationFileNote, Kind: fieldText},
	{Source: "language", Predicate: vocabulary.VariationHasLanguage, Kind: fieldEntity, Category: vocabulary.Language},
	{Source: "scanDate", Predicate: vocabulary.VariationHasScanDate, Kind: fieldDate},
}

// applyMappings asserts every mapped property of the island's root onto
// subject.
func applyMappings(ctx context.Context, env *Env, island *markup.Island, subject graph.Term, fields []fieldMapping) error {
	root := island.Root()
	for _, f := range fields {
		if err := applyMapping(ctx, env, island, root, subject, f); err != nil {
			return err
		}
	}
	return nil
}

func applyMapping(ctx context.Context, env *Env, island *markup.Island, root, subject graph.Term, f fieldMapping) error {
	a := env.Assert
	switch f.Kind {
	case fieldText:
		for _, v := range island.Values(root, f.Source) {
			a.Text(subject, f.Predicate, v)
		}
	case fieldInteger:
		a.Integer(subject, f.Predicate, island.Text(root, f.Source))
	case fieldDate:
		a.Date(subject, f.Predicate, island.Text(root, f.Source))
	case fieldDateRange:
		a.DateRange(subject, f.Predicate, island.Text(root, f.Face), island.Text(root, f.Source))
	case fieldDimension:
		a.Dimension(subject, f.Predicate, island.Text(root, f.Face), island.Text(root, f.Source))
	case fieldEntity:
		for _, v := range island.Values(root, f.Source) {
			if err := env.Entity(ctx, subject, f.Predicate, f.Category, v); err != nil {
				return err
			}
		}
	case fieldWitness:
		for _, node := range island.Nodes(root, f.Source) {
			name := island.Text(node, "name")
			if name == "" {
				continue
			}
			key := resolver.CompositeKey(name, island.Text(node, "description"))
			if err := env.Entity(ctx, subject, f.Predicate, f.Category, key); err != nil {
				return err
			}
		}
	case fieldKinship:
		for _, v := range island.Values(root, f.Source) {
			assertKinship(env, subject, f.Predicate, v)
		}
	case fieldRelated:
		for _, node := range island.Nodes(root, f.Source) {
			if err := assertRelated(ctx, env, island, node, subject, f.Predicate); err != nil {
				return err
			}
		}
	}
	return nil
}

var kinshipPattern = regexp.MustCompile(`(?i)^(son|daughter|wife|widow|widower|husband|mother|father|brother|sister|child)\s+of\s+(?:the\s+late\s+)?(.+?)\.?$`)

// assertKinship parses text such as "son of John Smith" into a nested
// relation node. Other shapes are warned about and omitted.
func assertKinship(env *Env, subject graph.Term, predicate, text string) {
	m := kinshipPattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		env.Logger.Warn("Unparseable text", "field", "kinship", "text", text)
		return
	}
	node := env.Assert.Node(subject, predicate)
	env.Assert.Text(node, vocabulary.KinshipRelation, strings.ToLower(m[1]))
	env.Assert.Text(node, vocabulary.KinshipName, m[2])
}

var errRelatedNotFound = stderrors.New("related asset not found")

// assertRelated asserts a related-material description and, when it cites
// another asset by reference, a link to that asset. Reference lookups are
// memoised for the process.
func assertRelated(ctx context.Context, env *Env, island *markup.Island, node, subject graph.Term, predicate string) error {
	env.Assert.Text(subject, predicate, island.Text(node, "description"))

	ref := island.Text(node, "reference")
	if ref == "" {
		return nil
	}
	iri, err := env.Resolver.SimpleCacheCreate(vocabulary.RelatedMaterial, ref, func() (string, error) {
		id, ok, err := env.Resolver.Fetch(ctx, vocabulary.Asset, ref)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", errRelatedNotFound
		}
		return id.Value, nil
	})
	if stderrors.Is(err, errRelatedNotFound) {
		env.Logger.Warn("Related asset not found", "reference", ref)
		return nil
	}
	if err != nil {
		return err
	}
	env.Assert.IRI(subject, vocabulary.AssetHasRelatedAsset, iri)
	return nil
}

var legalStatuses = map[string]string{
	"public record":       vocabulary.PublicRecord,
	"public record(s)":    vocabulary.PublicRecord,
	"welsh public record": vocabulary.WelshPublicRecord,
	"not public record":   vocabulary.NotPublicRecord,
	"not public records":  vocabulary.NotPublicRecord,
}

// legalStatus maps legacy legal status text to its constant. Unknown text
// is warned about and yields "".
func legalStatus(env *Env, text string) string {
	key := strings.ToLower(strings.Join(strings.Fields(text), " "))
	if key == "" {
		return ""
	}
	if iri, ok := legalStatuses[key]; ok {
		return iri
	}
	env.Logger.Warn("Unparseable text", "field", "legalStatus", "text", text)
	return ""
}
