package staging

import (
	"context"
	"log/slog"
	"strings"

	"github.com/nationalarchives/dri-data-migration-sub000/errors"
	"github.com/nationalarchives/dri-data-migration-sub000/graph"
	"github.com/nationalarchives/dri-data-migration-sub000/markup"
	"github.com/nationalarchives/dri-data-migration-sub000/resolver"
	"github.com/nationalarchives/dri-data-migration-sub000/vocabulary"
)

// Env is what a builder needs beyond the record and its existing
// fragment. Ingest scopes a copy to each record.
type Env struct {
	Resolver *resolver.Resolver
	Markup   *markup.Loader
	Assert   *GraphAssert
	Logger   *slog.Logger
}

// NewEnv returns an Env resolving through r.
func NewEnv(r *resolver.Resolver, logger *slog.Logger) *Env {
	if logger == nil {
		logger = slog.Default()
	}
	return &Env{Resolver: r, Markup: markup.NewLoader(logger), Logger: logger}
}

// forRecord returns a copy logging to logger and asserting into a fresh
// fragment.
func (e *Env) forRecord(logger *slog.Logger) *Env {
	return &Env{
		Resolver: e.Resolver,
		Markup:   markup.NewLoader(logger),
		Assert:   NewGraphAssert(graph.New(), logger),
		Logger:   logger,
	}
}

// Subject returns the subject of the existing fragment carrying key under
// the category's key predicate, or mints a new identifier.
func (e *Env) Subject(existing *graph.Graph, category, key string) graph.Term {
	cat, ok := vocabulary.LookupCategory(category)
	if ok {
		subjects := existing.Subjects(graph.NewIRI(cat.KeyPredicate), resolver.KeyTerm(cat, key))
		if len(subjects) > 0 {
			return subjects[0]
		}
	}
	return e.Resolver.NewID()
}

// Identify returns the record's subject, as Subject does, and asserts its
// business key.
func (e *Env) Identify(existing *graph.Graph, category, key string) graph.Term {
	s := e.Subject(existing, category, key)
	if cat, ok := vocabulary.LookupCategory(category); ok {
		e.Assert.Term(s, cat.KeyPredicate, resolver.KeyTerm(cat, key))
	}
	return s
}

// Require resolves a mandatory dependency. A miss is a
// MissingDependencyError, which skips the record.
func (e *Env) Require(ctx context.Context, category, key string) (graph.Term, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return graph.Term{}, errors.MissingDependency(category, key)
	}
	id, ok, err := e.Resolver.Fetch(ctx, category, key)
	if err != nil {
		return graph.Term{}, err
	}
	if !ok {
		return graph.Term{}, errors.MissingDependency(category, key)
	}
	return id, nil
}

// RequireCode resolves a code in a preloaded enumeration.
func (e *Env) RequireCode(category, code string) (graph.Term, error) {
	id, ok := e.Resolver.Enumeration(category, code)
	if !ok {
		return graph.Term{}, errors.MissingDependency(category, code)
	}
	return id, nil
}

// Entity resolves or mints an entity named by key and asserts (s, p, id).
// Empty keys assert nothing.
func (e *Env) Entity(ctx context.Context, s graph.Term, p, category, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil
	}
	id, err := e.Resolver.FetchOrCreate(ctx, category, key, "")
	if err != nil {
		return err
	}
	e.Assert.Term(s, p, id)
	return nil
}
