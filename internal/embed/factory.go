package embed

import (
	"context"
	"fmt"

	"github.com/legalcase/caseintel/internal/config"
)

// NewEngine builds the configured Engine: "native" (purego shared-library
// models), "ollama" (local HTTP server), or "static" (deterministic hash
// fallback, no model weights required). An empty Backend defaults to
// "static" so a fresh install can ingest and search lexically before any
// model is downloaded.
func NewEngine(ctx context.Context, cfg config.EmbedConfig) (Engine, error) {
	var inner Engine
	var err error

	switch cfg.Backend {
	case "native":
		inner, err = NewNativeEngine(NativeConfig{
			DenseModelPath:  cfg.DenseModelPath,
			DenseDim:        DefaultDenseDim,
			SparseModelPath: cfg.SparseModelPath,
			SparseVocabSize: DefaultSparseVocab,
			TokenModelPath:  cfg.TokenModelPath,
			TokenDim:        DefaultTokenDim,
		})
	case "ollama":
		ocfg := DefaultOllamaConfig()
		if cfg.OllamaHost != "" {
			ocfg.Host = cfg.OllamaHost
		}
		inner, err = NewOllamaEngine(ctx, ocfg)
	case "static", "":
		inner = NewStaticEngine(StaticDimensions)
	default:
		return nil, fmt.Errorf("unknown embed backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}

	return NewCachedEngine(inner, DefaultQueryCacheSize), nil
}

// Default model geometry used when config.EmbedConfig doesn't say otherwise.
// A case that needs different geometry ships its own model_path pointing at
// weights built for that geometry; these are starting defaults, not limits.
const (
	DefaultDenseDim    = 768
	DefaultSparseVocab = 30522
	DefaultTokenDim    = 128
)
