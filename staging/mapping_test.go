package staging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nationalarchives/dri-data-migration-sub000/graph"
	"github.com/nationalarchives/dri-data-migration-sub000/vocabulary"
)

func TestAssertKinship(t *testing.T) {
	tests := []struct {
		text     string
		relation string
		name     string
	}{
		{"son of William Smith", "son", "William Smith"},
		{"Widow of the late John Brown.", "widow", "John Brown"},
		{"daughter of  Mary Jones", "daughter", "Mary Jones"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			h := newHarness(t)
			env := h.env.forRecord(h.logs.Logger())

			assertKinship(env, subject, vocabulary.AssetHasKinship, tt.text)
			g := env.Assert.Graph()
			node, ok := g.Object(subject, graph.NewIRI(vocabulary.AssetHasKinship))
			require.True(t, ok)
			relation, _ := g.Object(node, graph.NewIRI(vocabulary.KinshipRelation))
			name, _ := g.Object(node, graph.NewIRI(vocabulary.KinshipName))
			assert.Equal(t, tt.relation, relation.Value)
			assert.Equal(t, tt.name, name.Value)
		})
	}
}

func TestAssertKinship_Unparseable(t *testing.T) {
	h := newHarness(t)
	env := h.env.forRecord(h.logs.Logger())

	assertKinship(env, subject, vocabulary.AssetHasKinship, "lodger with the Smiths")
	assert.True(t, env.Assert.Graph().IsEmpty())
	assert.Len(t, h.logs.Find("Unparseable text"), 1)
}

func TestLegalStatus(t *testing.T) {
	h := newHarness(t)
	env := h.env.forRecord(h.logs.Logger())

	assert.Equal(t, vocabulary.PublicRecord, legalStatus(env, "Public Record"))
	assert.Equal(t, vocabulary.PublicRecord, legalStatus(env, "public record(s)"))
	assert.Equal(t, vocabulary.WelshPublicRecord, legalStatus(env, " Welsh  Public Record "))
	assert.Equal(t, vocabulary.NotPublicRecord, legalStatus(env, "Not Public Records"))
	assert.Empty(t, h.logs.Entries())

	assert.Empty(t, legalStatus(env, ""))
	assert.Empty(t, h.logs.Entries())

	assert.Empty(t, legalStatus(env, "Private"))
	assert.Len(t, h.logs.Find("Unparseable text"), 1)
}

func stageSubset(t *testing.T, h *harness, id string) {
	t.Helper()
	_, _, err := ingest(h, SubsetSpec()).Ingest(context.Background(), SubsetRecord{ID: id})
	require.NoError(t, err)
}

const relatedMarkup = `<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#" xmlns:tna="http://nationalarchives.gov.uk/metadata/tna#">
  <rdf:Description>
    <tna:relatedMaterial rdf:parseType="Resource"><tna:description>See the seal</tna:description><tna:reference>ADM 1/2</tna:reference></tna:relatedMaterial>
  </rdf:Description>
</rdf:RDF>`

func TestAsset_RelatedMaterialMissIsRetried(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	stageSubset(t, h, "ADM")
	in := ingest(h, AssetSpec())

	rec := AssetRecord{ID: "ADM 1/1", SubsetID: "ADM", XML: relatedMarkup}
	outcome, _, err := in.Ingest(ctx, rec)
	require.NoError(t, err)
	assert.Equal(t, OutcomeUpdated, outcome)
	assert.Len(t, h.logs.Find("Related asset not found"), 1)

	asset := h.subject(t, vocabulary.Asset, "ADM 1/1")
	_, linked := h.store.Graph().Object(asset, graph.NewIRI(vocabulary.AssetHasRelatedAsset))
	assert.False(t, linked)
	assert.Equal(t, "See the seal", h.object(t, asset, vocabulary.AssetRelatedMaterial).Value)

	_, _, err = in.Ingest(ctx, AssetRecord{ID: "ADM 1/2", SubsetID: "ADM"})
	require.NoError(t, err)

	outcome, diff, err := in.Ingest(ctx, rec)
	require.NoError(t, err)
	assert.Equal(t, OutcomeUpdated, outcome)
	assert.Equal(t, 1, diff.Added.Len())
	assert.Equal(t, h.subject(t, vocabulary.Asset, "ADM 1/2"), h.object(t, asset, vocabulary.AssetHasRelatedAsset))

	iri, ok := h.resolver.SimpleCache(vocabulary.RelatedMaterial, "ADM 1/2")
	require.True(t, ok)
	assert.Equal(t, h.subject(t, vocabulary.Asset, "ADM 1/2").Value, iri)
}

func TestAsset_UnparseableMarkupKeepsRecordFields(t *testing.T) {
	h := newHarness(t)
	stageSubset(t, h, "ADM")

	outcome, _, err := ingest(h, AssetSpec()).Ingest(context.Background(), AssetRecord{
		ID:       "ADM 1/1",
		SubsetID: "ADM",
		Name:     "Letter book",
		XML:      "<record><title>plain</title></record>",
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeUpdated, outcome)

	asset := h.subject(t, vocabulary.Asset, "ADM 1/1")
	assert.Equal(t, "Letter book", h.object(t, asset, vocabulary.AssetName).Value)
	assert.Len(t, h.logs.Find("Embedded markup unparseable"), 1)
}

func TestAsset_CoverageFromMarkup(t *testing.T) {
	h := newHarness(t)
	stageSubset(t, h, "ADM")

	markup := `<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#" xmlns:tna="http://nationalarchives.gov.uk/metadata/tna#">
  <rdf:Description>
    <tna:coverage rdf:parseType="Resource"><tna:date>1939-1945</tna:date></tna:coverage>
  </rdf:Description>
</rdf:RDF>`
	_, _, err := ingest(h, AssetSpec()).Ingest(context.Background(), AssetRecord{ID: "WO 1/1", SubsetID: "ADM", XML: markup})
	require.NoError(t, err)

	asset := h.subject(t, vocabulary.Asset, "WO 1/1")
	covering := h.object(t, asset, vocabulary.AssetHasCoveringDateRange)
	start := h.object(t, covering, vocabulary.RangeStart)
	assert.Equal(t, "1939", h.object(t, start, vocabulary.Year).Value)
}

func TestAsset_CoverageFullDateFromMarkup(t *testing.T) {
	h := newHarness(t)
	stageSubset(t, h, "ADM")
	in := ingest(h, AssetSpec())

	markup := `<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#" xmlns:tna="http://nationalarchives.gov.uk/metadata/tna#">
  <rdf:Description>
    <tna:coverage rdf:parseType="Resource"><tna:date>1916 June 15</tna:date></tna:coverage>
  </rdf:Description>
</rdf:RDF>`
	rec := AssetRecord{ID: "WO 1/1", SubsetID: "ADM", XML: markup}
	_, _, err := in.Ingest(context.Background(), rec)
	require.NoError(t, err)
	assert.Empty(t, h.logs.Find("Unparseable text"))

	asset := h.subject(t, vocabulary.Asset, "WO 1/1")
	covering := h.object(t, asset, vocabulary.AssetHasCoveringDateRange)
	start := h.object(t, covering, vocabulary.RangeStart)
	assert.Equal(t, "1916", h.object(t, start, vocabulary.Year).Value)
	assert.Equal(t, "6", h.object(t, start, vocabulary.Month).Value)
	assert.Equal(t, "15", h.object(t, start, vocabulary.Day).Value)

	outcome, _, err := in.Ingest(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, OutcomeUnchanged, outcome)
}

func TestEntity_MintedOncePerKey(t *testing.T) {
	h := newHarness(t)
	stageSubset(t, h, "ADM")
	in := ingest(h, AssetSpec())
	ctx := context.Background()

	for _, id := range []string{"ADM 1/1", "ADM 1/2"} {
		_, _, err := in.Ingest(ctx, AssetRecord{ID: id, SubsetID: "ADM", Language: "Welsh"})
		require.NoError(t, err)
	}

	language := h.subject(t, vocabulary.Language, "Welsh")
	for _, id := range []string{"ADM 1/1", "ADM 1/2"} {
		assert.Equal(t, language, h.object(t, h.subject(t, vocabulary.Asset, id), vocabulary.AssetHasLanguage))
	}
	assert.Len(t, h.store.Graph().Subjects(graph.NewIRI(vocabulary.LanguageName), graph.NewLiteral("Welsh")), 1)
}
