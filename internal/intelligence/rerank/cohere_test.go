package rerank

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ChemSource/pkg/errors"
)

func TestCohereClient_Rerank(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req cohereRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "rerank-v3.5", req.Model)
		assert.Equal(t, "Acetone 67-64-1", req.Query)
		assert.Equal(t, 2, req.TopN)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[{"index":1,"relevance_score":0.91},{"index":0,"relevance_score":0.12}]}`))
	}))
	defer srv.Close()

	c := NewCohereClient(CohereConfig{Endpoint: srv.URL, APIKey: "test-key", Model: "rerank-v3.5"})
	scores, err := c.Rerank(context.Background(), "Acetone 67-64-1", []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.12, 0.91}, scores)
	assert.Equal(t, "rerank-v3.5", c.ModelName())
}

func TestCohereClient_MissingKey(t *testing.T) {
	c := NewCohereClient(CohereConfig{Endpoint: "http://127.0.0.1:1"})
	_, err := c.Rerank(context.Background(), "q", []string{"t"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeMissingCredential))
}

func TestCohereClient_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"invalid api token"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewCohereClient(CohereConfig{Endpoint: srv.URL, APIKey: "bad"})
	_, err := c.Rerank(context.Background(), "q", []string{"t"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeRerankFailed))
}

func TestCohereClient_OutOfRangeIndex(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[{"index":4,"relevance_score":0.5}]}`))
	}))
	defer srv.Close()

	c := NewCohereClient(CohereConfig{Endpoint: srv.URL, APIKey: "k"})
	_, err := c.Rerank(context.Background(), "q", []string{"t"})
	assert.Error(t, err)
}

func TestCohereClient_EmptyDocs(t *testing.T) {
	c := NewCohereClient(CohereConfig{APIKey: "k"})
	scores, err := c.Rerank(context.Background(), "q", nil)
	require.NoError(t, err)
	assert.Empty(t, scores)
}

func TestScorer_WithCohereFallsBackOnAuthFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	s := NewScorer(
		NewCohereClient(CohereConfig{Endpoint: srv.URL, APIKey: "bad"}),
		NewLocalProvider(func(context.Context) (LocalModel, error) { return fixedModel(0.42), nil }, nil),
	)
	assert.Equal(t, 0.42, s.Score(context.Background(), "q", "t", StrategyAuto))
}

//Personal.AI order the ending
