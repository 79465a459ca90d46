package resolver

import (
	"context"
	"fmt"
	"maps"

	"github.com/nationalarchives/dri-data-migration-sub000/errors"
	"github.com/nationalarchives/dri-data-migration-sub000/graph"
	"github.com/nationalarchives/dri-data-migration-sub000/metric"
	"github.com/nationalarchives/dri-data-migration-sub000/storage"
	"github.com/nationalarchives/dri-data-migration-sub000/vocabulary"
)

// PreloadEnumeration loads a closed code list, keyed by code, the first
// time it is called for category. Later calls return the loaded list
// without querying the store. An empty list is a fatal ErrEnumerationEmpty:
// every record depending on it would otherwise fail individually.
func (r *Resolver) PreloadEnumeration(ctx context.Context, category string) (map[string]graph.Term, error) {
	cat, ok := vocabulary.LookupCategory(category)
	if !ok || cat.Kind != vocabulary.CategoryEnumeration {
		return nil, errors.WrapInvalid(fmt.Errorf("%w: %s is not an enumeration", errors.ErrUnknownCategory, category),
			"resolver", "PreloadEnumeration", "lookup category")
	}

	r.enumMu.Lock()
	defer r.enumMu.Unlock()

	if loaded, ok := r.enumerations[category]; ok {
		return maps.Clone(loaded), nil
	}

	predicate := graph.NewIRI(cat.KeyPredicate)
	entries := make(map[string]graph.Term)
	for offset := 0; ; offset += r.pageSize {
		page, err := r.store.Construct(ctx, storage.EnumerationQuery(cat.KeyPredicate, r.pageSize, offset))
		if err != nil {
			return nil, errors.Wrap(err, "resolver", "PreloadEnumeration", "load "+category)
		}

		subjects := 0
		seen := make(map[graph.Term]bool)
		for _, t := range page.Match(graph.Term{}, predicate, graph.Term{}) {
			if !seen[t.Subject] {
				seen[t.Subject] = true
				subjects++
			}
			if _, dup := entries[t.Object.Value]; dup {
				r.logger.Warn("Duplicate enumeration code", "category", category, "code", t.Object.Value)
				continue
			}
			entries[t.Object.Value] = t.Subject
		}
		if subjects < r.pageSize {
			break
		}
	}

	if len(entries) == 0 {
		return nil, errors.WrapFatal(fmt.Errorf("%w: %s", errors.ErrEnumerationEmpty, category),
			"resolver", "PreloadEnumeration", "load "+category)
	}

	r.enumerations[category] = entries
	r.logger.Info("Enumeration preloaded", "category", category, "entries", len(entries))
	return maps.Clone(entries), nil
}

// Enumeration returns the identifier for code in a preloaded code list.
// It reports false when the code is unknown or the list was never loaded.
func (r *Resolver) Enumeration(category, code string) (graph.Term, bool) {
	r.enumMu.RLock()
	defer r.enumMu.RUnlock()

	id, ok := r.enumerations[category][code]
	if ok {
		r.metrics.RecordResolution(category, metric.SourceEnumeration)
	}
	return id, ok
}

// EnumerationLoaded reports whether category has been preloaded.
func (r *Resolver) EnumerationLoaded(category string) bool {
	r.enumMu.RLock()
	defer r.enumMu.RUnlock()

	_, ok := r.enumerations[category]
	return ok
}
