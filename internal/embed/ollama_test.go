package embed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeOllamaServer(t *testing.T, dims int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ollamaEmbedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		var n int
		switch req.Input.(type) {
		case []interface{}:
			n = len(req.Input.([]interface{}))
		default:
			n = 1
		}

		resp := ollamaEmbedResponse{Embeddings: make([][]float64, n)}
		for i := range resp.Embeddings {
			vec := make([]float64, dims)
			for j := range vec {
				vec[j] = 1.0
			}
			resp.Embeddings[i] = vec
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func TestOllamaEngine_EmbedChunk_NormalizesVector(t *testing.T) {
	srv := fakeOllamaServer(t, 8)
	defer srv.Close()

	e, err := NewOllamaEngine(context.Background(), OllamaConfig{Host: srv.URL, Model: "test-model"})
	require.NoError(t, err)
	defer func() { _ = e.Close() }()

	out, err := e.EmbedChunk(context.Background(), "settlement agreement")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, vectorMagnitude(out.Dense), 1e-6)
}

func TestOllamaEngine_ConfiguredSlots_IsDenseOnly(t *testing.T) {
	srv := fakeOllamaServer(t, 8)
	defer srv.Close()

	e, err := NewOllamaEngine(context.Background(), OllamaConfig{Host: srv.URL})
	require.NoError(t, err)
	defer func() { _ = e.Close() }()

	assert.Equal(t, []Slot{SlotDense}, e.ConfiguredSlots())
}

func TestOllamaEngine_EmbedQuery_RejectsNonDenseSlot(t *testing.T) {
	srv := fakeOllamaServer(t, 8)
	defer srv.Close()

	e, err := NewOllamaEngine(context.Background(), OllamaConfig{Host: srv.URL})
	require.NoError(t, err)
	defer func() { _ = e.Close() }()

	_, err = e.EmbedQuery(context.Background(), "query", SlotToken)
	require.Error(t, err)
}

func TestOllamaEngine_New_DetectsDimensionsFromServer(t *testing.T) {
	srv := fakeOllamaServer(t, 512)
	defer srv.Close()

	e, err := NewOllamaEngine(context.Background(), OllamaConfig{Host: srv.URL})
	require.NoError(t, err)
	defer func() { _ = e.Close() }()

	assert.Equal(t, 512, e.dims)
}
