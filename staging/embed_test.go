package staging

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nationalarchives/dri-data-migration-sub000/storage"
	"github.com/nationalarchives/dri-data-migration-sub000/storage/sparql"
	fixtures "github.com/nationalarchives/dri-data-migration-sub000/testutil"
)

func TestQueries_EveryKindHasExistingTemplate(t *testing.T) {
	for _, kind := range IngestOrder {
		t.Run(kind.String(), func(t *testing.T) {
			key := "ADM 1/1"
			if kind == KindLegislation {
				key = fixtures.Legislation
			}
			q := existingQuery(kind, key)

			text, err := fs.ReadFile(Queries(), q.Name)
			require.NoError(t, err)
			bound, err := sparql.Bind(string(text), q.Params)
			require.NoError(t, err)
			assert.Contains(t, bound, "CONSTRUCT")
			if kind == KindLegislation {
				assert.Contains(t, bound, "<"+key+">")
			} else {
				assert.Contains(t, bound, `"`+key+`"`)
			}
		})
	}
}

func TestQueries_SharedTemplates(t *testing.T) {
	for _, name := range []string{storage.ResolveTemplate, storage.EnumerationTemplate} {
		_, err := fs.Stat(Queries(), name)
		assert.NoError(t, err, name)
	}
}
