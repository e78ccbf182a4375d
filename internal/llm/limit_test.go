package llm

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// slowProvider counts concurrent in-flight Generate calls.
type slowProvider struct {
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (s *slowProvider) Generate(ctx context.Context, _ Request) (*Response, error) {
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)

	for {
		old := s.peak.Load()
		if n <= old || s.peak.CompareAndSwap(old, n) {
			break
		}
	}

	select {
	case <-time.After(10 * time.Millisecond):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return &Response{Content: []byte("{}"), Model: "slow"}, nil
}

func (s *slowProvider) ModelID() string { return "slow" }

func TestConcurrencyLimitBoundsInFlight(t *testing.T) {
	inner := &slowProvider{}
	p := WithConcurrencyLimit(inner, 2)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := p.Generate(context.Background(), Request{}); err != nil {
				t.Errorf("Generate: %v", err)
			}
		}()
	}
	wg.Wait()

	if peak := inner.peak.Load(); peak > 2 {
		t.Errorf("peak in-flight = %d, want <= 2", peak)
	}
}

func TestConcurrencyLimitZeroMeansUnlimited(t *testing.T) {
	inner := &slowProvider{}
	if p := WithConcurrencyLimit(inner, 0); p != Provider(inner) {
		t.Error("limit 0 should return the provider unchanged")
	}
}

func TestConcurrencyLimitCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := WithConcurrencyLimit(&slowProvider{}, 1)
	if _, err := p.Generate(ctx, Request{}); err == nil {
		t.Error("expected error acquiring semaphore with cancelled context")
	}
}
