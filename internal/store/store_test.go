package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenInMemory(t *testing.T) {
	s, err := OpenInMemory()
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.DB().Ping())
}

func TestLLMEventRoundTrip(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	require.NoError(t, repo.AppendLLMEvent(ctx, LLMEvent{
		Provider:     "openai",
		Model:        "gpt-4o",
		Stage:        "realness_check",
		InputTokens:  120,
		OutputTokens: 15,
		LatencyMs:    843,
		Success:      true,
		RequestBody:  `{"system":"..."}`,
		ResponseBody: `{"is_real_photo":true}`,
	}))
	require.NoError(t, repo.AppendLLMEvent(ctx, LLMEvent{
		Provider:     "openai",
		Model:        "gpt-4o",
		Stage:        "category_classification",
		Success:      false,
		ErrorMessage: "rate limited",
	}))

	events, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	require.NoError(t, err)
	require.Len(t, events, 2)
	// Newest first.
	require.Equal(t, "category_classification", events[0].Stage)
	require.False(t, events[0].Success)
	require.Equal(t, "rate limited", events[0].ErrorMessage)

	filtered, err := repo.QueryLLMEvents(ctx, QueryOpts{Stage: "realness_check"})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	require.Equal(t, 120, filtered[0].InputTokens)

	got, err := repo.GetLLMEvent(ctx, filtered[0].ID)
	require.NoError(t, err)
	require.Equal(t, `{"is_real_photo":true}`, got.ResponseBody)
	require.Equal(t, int64(843), got.LatencyMs)

	_, err = repo.GetLLMEvent(ctx, 9999)
	require.Error(t, err)
}

func TestQueryLLMEventsLimit(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.AppendLLMEvent(ctx, LLMEvent{
			Provider: "mock", Model: "mock", Stage: "realness_check", Success: true,
		}))
	}

	events, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 3})
	require.NoError(t, err)
	require.Len(t, events, 3)
}

func TestAnalysisRoundTrip(t *testing.T) {
	s := openTestStore(t)
	repo := s.AnalysisRepo()
	ctx := context.Background()

	isReal := true
	require.NoError(t, repo.Save(ctx, Analysis{
		SessionID:      "sess-1",
		ImageID:        "img-1",
		SerialNumber:   "CAT0320XYZ",
		ImageURL:       "https://example.com/p.jpg",
		IsRealPhoto:    &isReal,
		Category:       "error_code",
		ErrorsJSON:     `[{"code":"E361","type":"EID"}]`,
		PartCategories: "",
		Narrative:      "Stop the machine.",
		Status:         "done",
	}))

	got, err := repo.BySession(ctx, "sess-1")
	require.NoError(t, err)
	require.Equal(t, "error_code", got.Category)
	require.NotNil(t, got.IsRealPhoto)
	require.True(t, *got.IsRealPhoto)
	require.Equal(t, `[{"code":"E361","type":"EID"}]`, got.ErrorsJSON)
	require.Equal(t, "done", got.Status)

	_, err = repo.BySession(ctx, "missing")
	require.Error(t, err)
}

func TestAnalysisNullRealness(t *testing.T) {
	s := openTestStore(t)
	repo := s.AnalysisRepo()
	ctx := context.Background()

	// A failed run may never have reached the realness check.
	require.NoError(t, repo.Save(ctx, Analysis{
		SessionID: "sess-2",
		ImageID:   "img-2",
		Status:    "failed",
	}))

	got, err := repo.BySession(ctx, "sess-2")
	require.NoError(t, err)
	require.Nil(t, got.IsRealPhoto)
	require.Equal(t, "failed", got.Status)
}

func TestRecentOrdersNewestFirst(t *testing.T) {
	s := openTestStore(t)
	repo := s.AnalysisRepo()
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, repo.Save(ctx, Analysis{SessionID: id, ImageID: id, Status: "done"}))
	}

	recent, err := repo.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	require.Equal(t, "c", recent[0].SessionID)
	require.Equal(t, "b", recent[1].SessionID)
}
