package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLLMEvents(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	events := []LLMRequestEventData{
		{SessionID: "s1", Provider: "mock", Model: "m-a", Purpose: "next-action", InputTokens: 100, OutputTokens: 20, LatencyMs: 200, Success: true},
		{SessionID: "s1", Provider: "mock", Model: "m-a", Purpose: "answer-score", InputTokens: 50, OutputTokens: 10, LatencyMs: 100, Success: true, RequestBody: "[user]\nhi"},
		{SessionID: "s2", Provider: "mock", Model: "m-b", Purpose: "next-action", InputTokens: 10, LatencyMs: 400, ErrorMessage: "boom"},
	}
	for _, e := range events {
		require.NoError(t, repo.AppendLLMRequest(ctx, e))
	}

	all, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "s2", all[0].SessionID, "newest first")
	assert.Greater(t, all[0].Sequence, all[1].Sequence)
	assert.False(t, all[0].Success)
	assert.Equal(t, "boom", all[0].ErrorMessage)

	bySession, err := repo.QueryLLMEvents(ctx, QueryOpts{SessionID: "s1", Purpose: "answer-score"})
	require.NoError(t, err)
	require.Len(t, bySession, 1)
	assert.Equal(t, "[user]\nhi", bySession[0].RequestBody)

	limited, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	got, err := repo.GetLLMEvent(ctx, bySession[0].ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "answer-score", got.Purpose)

	missing, err := repo.GetLLMEvent(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	require.NoError(t, err)
	require.Len(t, byPurpose, 2)
	assert.Equal(t, PurposeUsage{Purpose: "answer-score", Calls: 1, InputTokens: 50, OutputTokens: 10, AvgLatencyMs: 100}, byPurpose[0])
	assert.Equal(t, PurposeUsage{Purpose: "next-action", Calls: 2, InputTokens: 110, OutputTokens: 20, AvgLatencyMs: 300}, byPurpose[1])

	byModel, err := repo.LLMUsageByModel(ctx)
	require.NoError(t, err)
	require.Len(t, byModel, 2)
	assert.Equal(t, ModelUsage{Model: "m-a", Calls: 2, InputTokens: 150, OutputTokens: 30}, byModel[0])
}

func TestSessionEvents(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	require.NoError(t, repo.AppendSessionEvent(ctx, SessionEventData{SessionID: "s1", Action: "start", Status: "active", Phase: "screening"}))
	require.NoError(t, repo.AppendLLMRequest(ctx, LLMRequestEventData{SessionID: "s1", Purpose: "next-action", Success: true}))
	require.NoError(t, repo.AppendSessionEvent(ctx, SessionEventData{SessionID: "s1", Action: "end", Status: "ended", Detail: "idle"}))
	require.NoError(t, repo.AppendSessionEvent(ctx, SessionEventData{SessionID: "s2", Action: "start"}))

	got, err := repo.QuerySessionEvents(ctx, QueryOpts{SessionID: "s1"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "start", got[0].Action)
	assert.Equal(t, "end", got[1].Action)
	assert.Equal(t, "idle", got[1].Detail)
	// The LLM event in between consumed a sequence number.
	assert.Equal(t, got[0].Sequence+2, got[1].Sequence)

	after, err := repo.QuerySessionEvents(ctx, QueryOpts{After: got[1].Sequence})
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, "s2", after[0].SessionID)
}
