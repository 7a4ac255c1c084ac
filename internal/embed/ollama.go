package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	caseerrors "github.com/legalcase/caseintel/internal/errors"
)

const (
	DefaultOllamaHost    = "http://localhost:11434"
	DefaultOllamaModel   = "nomic-embed-text"
	DefaultOllamaTimeout = 60 * time.Second
)

// OllamaConfig configures the HTTP-backed dense embedder.
type OllamaConfig struct {
	Host    string
	Model   string
	Timeout time.Duration
	Dims    int // 0 triggers auto-detection from the first call
}

func DefaultOllamaConfig() OllamaConfig {
	return OllamaConfig{Host: DefaultOllamaHost, Model: DefaultOllamaModel, Timeout: DefaultOllamaTimeout}
}

type ollamaEmbedRequest struct {
	Model string `json:"model"`
	Input any    `json:"input"`
}

type ollamaEmbedResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
}

// OllamaEngine computes dense embeddings through a locally running Ollama
// server. Ollama exposes no sparse or token-matrix output, so this engine
// only ever fills SlotDense.
type OllamaEngine struct {
	client *http.Client
	cfg    OllamaConfig
	dims   int
}

var _ Engine = (*OllamaEngine)(nil)

// NewOllamaEngine builds an engine against cfg, detecting the embedding
// dimension from a throwaway call if cfg.Dims is unset.
func NewOllamaEngine(ctx context.Context, cfg OllamaConfig) (*OllamaEngine, error) {
	if cfg.Host == "" {
		cfg.Host = DefaultOllamaHost
	}
	if cfg.Model == "" {
		cfg.Model = DefaultOllamaModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultOllamaTimeout
	}
	e := &OllamaEngine{client: &http.Client{}, cfg: cfg, dims: cfg.Dims}

	if e.dims == 0 {
		probeCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
		vecs, err := e.doEmbed(probeCtx, []string{"dimension probe"})
		if err != nil {
			return nil, caseerrors.InferenceFailed(string(SlotDense), err)
		}
		e.dims = len(vecs[0])
	}
	return e, nil
}

func (e *OllamaEngine) ConfiguredSlots() []Slot { return []Slot{SlotDense} }

func (e *OllamaEngine) EmbedChunk(ctx context.Context, text string) (ChunkEmbeddings, error) {
	vecs, err := e.doEmbed(ctx, []string{text})
	if err != nil {
		return ChunkEmbeddings{}, caseerrors.InferenceFailed(string(SlotDense), err)
	}
	return ChunkEmbeddings{Dense: vecs[0]}, nil
}

func (e *OllamaEngine) EmbedQuery(ctx context.Context, text string, which Slot) (QueryEmbedding, error) {
	if which != SlotDense {
		return QueryEmbedding{}, caseerrors.EmbedderNotLoaded(string(which))
	}
	vecs, err := e.doEmbed(ctx, []string{text})
	if err != nil {
		return QueryEmbedding{}, caseerrors.InferenceFailed(string(SlotDense), err)
	}
	return QueryEmbedding{Which: SlotDense, Dense: vecs[0]}, nil
}

func (e *OllamaEngine) Close() error { return nil }

// doEmbed posts a batch embedding request to Ollama's /api/embed endpoint
// and L2-normalizes every returned vector.
func (e *OllamaEngine) doEmbed(ctx context.Context, texts []string) ([][]float32, error) {
	var input any = texts
	if len(texts) == 1 {
		input = texts[0]
	}
	body, err := json.Marshal(ollamaEmbedRequest{Model: e.cfg.Model, Input: input})
	if err != nil {
		return nil, fmt.Errorf("marshal ollama request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.Host+"/api/embed", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, respBody)
	}

	var parsed ollamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode ollama response: %w", err)
	}
	if len(parsed.Embeddings) != len(texts) {
		return nil, fmt.Errorf("ollama returned %d embeddings for %d inputs", len(parsed.Embeddings), len(texts))
	}

	out := make([][]float32, len(parsed.Embeddings))
	for i, emb := range parsed.Embeddings {
		v := make([]float32, len(emb))
		for j, f := range emb {
			v[j] = float32(f)
		}
		out[i] = normalizeVector(v)
	}
	return out, nil
}
