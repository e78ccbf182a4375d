package llm

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// LimitProvider is a decorator that bounds concurrent in-flight calls to
// the underlying provider. Independent image tasks run in parallel, but
// the model API's rate limit is shared, so calls queue here rather than
// fanning out unbounded.
type LimitProvider struct {
	inner Provider
	sem   *semaphore.Weighted
}

// WithConcurrencyLimit wraps a Provider with an in-flight call limit.
// A limit <= 0 means unlimited and returns the provider unchanged.
func WithConcurrencyLimit(p Provider, limit int) Provider {
	if limit <= 0 {
		return p
	}
	return &LimitProvider{inner: p, sem: semaphore.NewWeighted(int64(limit))}
}

func (l *LimitProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer l.sem.Release(1)
	return l.inner.Generate(ctx, req)
}

func (l *LimitProvider) ModelID() string {
	return l.inner.ModelID()
}
