package resolver

import (
	"github.com/nationalarchives/dri-data-migration-sub000/errors"
)

// SimpleCache returns a memoised value for key in category.
func (r *Resolver) SimpleCache(category, key string) (string, bool) {
	return r.memos.Get(category + "|" + key)
}

// SimpleCacheCreate returns the memoised value for key in category,
// computing and storing it with create on a miss. Failed computations are
// not memoised.
func (r *Resolver) SimpleCacheCreate(category, key string, create func() (string, error)) (string, error) {
	memoKey := category + "|" + key
	if v, ok := r.memos.Get(memoKey); ok {
		return v, nil
	}

	v, err := create()
	if err != nil {
		return "", errors.Wrap(err, "resolver", "SimpleCacheCreate", "compute "+category)
	}
	if _, err := r.memos.Set(memoKey, v); err != nil {
		return "", errors.Wrap(err, "resolver", "SimpleCacheCreate", "memoise "+category)
	}
	return v, nil
}
