package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/smhanov/redraft"
)

type stubRunner struct {
	st  redraft.State
	err error
}

func (s stubRunner) Run(_ context.Context, _ string) (redraft.State, error) {
	return s.st, s.err
}

func TestHandleResearch(t *testing.T) {
	st := redraft.State{
		RunID:          "run-1",
		Query:          "what is rain",
		SearchResults:  []redraft.SearchResult{{Title: "t", URL: "https://example.com", Snippet: "s"}},
		DraftAnswer:    "draft",
		ReviewFeedback: "feedback",
		FinalAnswer:    "final",
		Faults:         []redraft.StageFault{{Stage: redraft.StageReview, Err: errors.New("x")}},
	}

	handler := handleResearch(stubRunner{st: st}, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/v1/research", strings.NewReader(`{"query":"what is rain"}`))
	rec := httptest.NewRecorder()
	handler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp researchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "final", resp.FinalAnswer)
	assert.Equal(t, "draft", resp.DraftAnswer)
	assert.Equal(t, []string{"review"}, resp.DegradedStages)
	require.Len(t, resp.SearchResults, 1)
	assert.Equal(t, "https://example.com", resp.SearchResults[0].URL)
}

func TestHandleResearchBadJSON(t *testing.T) {
	handler := handleResearch(stubRunner{}, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/v1/research", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleResearchEmptyQuery(t *testing.T) {
	handler := handleResearch(stubRunner{err: errors.New("query is empty")}, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/v1/research", strings.NewReader(`{"query":""}`))
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
