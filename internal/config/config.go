// Package config loads and validates engine configuration.
//
// Precedence, lowest to highest: hardcoded defaults, config.yaml/config.yml
// on disk under the data directory, CASEINTEL_* environment variables. A
// config.toml on disk is not parsed.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// MemoryMode controls how aggressively embedder weights are preloaded.
type MemoryMode string

const (
	MemoryModeFull        MemoryMode = "full"
	MemoryModeStandard    MemoryMode = "standard"
	MemoryModeConstrained MemoryMode = "constrained"
)

// Config is the engine's complete configuration, covering spec.md §6's
// configuration keys plus the retrieval and chunking knobs the engine needs
// internally.
type Config struct {
	Version int `yaml:"version" json:"version"`

	// DataDir overrides the default data root (~/.caseintel).
	DataDir string `yaml:"data_dir" json:"data_dir"`

	// LicenseKey is the cached subscription token string.
	LicenseKey string `yaml:"license_key" json:"license_key"`

	// CopyOriginals, if true, copies ingested files into cases/{id}/originals/.
	CopyOriginals bool `yaml:"copy_originals" json:"copy_originals"`

	// MemoryMode controls embedder preloading: full, standard, or constrained.
	MemoryMode MemoryMode `yaml:"memory_mode" json:"memory_mode"`

	// InferenceThreads is the per-inference thread count. 0 means auto (NumCPU).
	InferenceThreads int `yaml:"inference_threads" json:"inference_threads"`

	// StorageBudgetGB is the warn threshold for per-case disk usage. Default 10.
	StorageBudgetGB float64 `yaml:"storage_budget_gb" json:"storage_budget_gb"`

	Retrieval RetrievalConfig `yaml:"retrieval" json:"retrieval"`
	Chunking  ChunkingConfig  `yaml:"chunking" json:"chunking"`
	Store     StoreConfig     `yaml:"store" json:"store"`
	Embed     EmbedConfig     `yaml:"embed" json:"embed"`
	Server    ServerConfig    `yaml:"server" json:"server"`
	Watch     WatchConfig     `yaml:"watch" json:"watch"`
	Tier      TierConfig      `yaml:"tier" json:"tier"`
}

// TierConfig bounds registry-level resource usage, checked before any
// create/open operation per spec.md §4.D ("tier limits are checked
// first"). Since this engine runs fully local and per-customer with a
// single license key rather than multiple paid service tiers, there is
// only one tier's worth of limits rather than a tier lookup table; the
// name is kept because the ResourceExhausted error (spec.md §7) still
// reports which named limit was hit.
type TierConfig struct {
	MaxOpenCaseHandles  int `yaml:"max_open_case_handles" json:"max_open_case_handles"`
	MaxCasesTotal       int `yaml:"max_cases_total" json:"max_cases_total"`
	MaxDocumentsPerCase int `yaml:"max_documents_per_case" json:"max_documents_per_case"`
}

// RetrievalConfig configures the hybrid retrieval pipeline's fusion weights
// and recall sizing.
type RetrievalConfig struct {
	// BM25Weight and SemanticWeight weight the sparse-embedding and
	// dense-embedding contributions to stage 2's Reciprocal Rank Fusion
	// (spec.md §4.I fuses dense+sparse, not BM25+vector; the field names
	// are kept from the lexical/semantic-weight convention since a learned
	// sparse embedding plays the same role a BM25 score plays elsewhere).
	// Must sum to 1.0.
	BM25Weight     float64 `yaml:"bm25_weight" json:"bm25_weight"`
	SemanticWeight float64 `yaml:"semantic_weight" json:"semantic_weight"`

	// RRFConstant is the fusion smoothing parameter k. Default 60.
	RRFConstant int `yaml:"rrf_constant" json:"rrf_constant"`

	// LexicalRecallMultiplier and FusionRecallMultiplier scale the per-stage
	// candidate counts: stage 1 recalls max(K*LexicalRecallMultiplier, 500),
	// stage 2 fuses down to max(K*FusionRecallMultiplier, 50).
	LexicalRecallMultiplier int `yaml:"lexical_recall_multiplier" json:"lexical_recall_multiplier"`
	FusionRecallMultiplier  int `yaml:"fusion_recall_multiplier" json:"fusion_recall_multiplier"`

	// RerankEnabled turns on the optional token-level MaxSim rerank stage.
	RerankEnabled bool `yaml:"rerank_enabled" json:"rerank_enabled"`

	MaxResults int `yaml:"max_results" json:"max_results"`
}

// ChunkingConfig configures legal-aware chunk sizing, replacing the teacher's
// code-oriented chunk_size/chunk_overlap with char-budget knobs.
type ChunkingConfig struct {
	TargetChars  int `yaml:"target_chars" json:"target_chars"`
	OverlapChars int `yaml:"overlap_chars" json:"overlap_chars"`
	MinChars     int `yaml:"min_chars" json:"min_chars"`
	MaxChars     int `yaml:"max_chars" json:"max_chars"`
}

// StoreConfig tunes the column-family KV substrate.
type StoreConfig struct {
	BlockCacheMB   int    `yaml:"block_cache_mb" json:"block_cache_mb"`
	WriteBufferMB  int    `yaml:"write_buffer_mb" json:"write_buffer_mb"`
	BackgroundJobs int    `yaml:"background_jobs" json:"background_jobs"`
	Compression    string `yaml:"compression" json:"compression"` // "lz4", "zstd", "none"
}

// EmbedConfig configures the embedding engine's backend selection.
type EmbedConfig struct {
	// Backend selects "native" (purego shared library), "ollama" (local HTTP
	// server), or "static" (deterministic hash fallback, used in tests).
	Backend    string `yaml:"backend" json:"backend"`
	OllamaHost string `yaml:"ollama_host" json:"ollama_host"`

	DenseModelPath  string `yaml:"dense_model_path" json:"dense_model_path"`
	SparseModelPath string `yaml:"sparse_model_path" json:"sparse_model_path"`
	TokenModelPath  string `yaml:"token_model_path" json:"token_model_path"`

	BatchSize int `yaml:"batch_size" json:"batch_size"`
}

// ServerConfig configures the MCP tool-request transport.
type ServerConfig struct {
	Transport string `yaml:"transport" json:"transport"`
	LogLevel  string `yaml:"log_level" json:"log_level"`
}

// WatchConfig configures folder-watch debouncing.
type WatchConfig struct {
	DebounceMS int `yaml:"debounce_ms" json:"debounce_ms"`
}

// defaultDataDir returns ~/.caseintel, falling back to a temp dir.
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".caseintel")
	}
	return filepath.Join(home, ".caseintel")
}

// NewConfig returns a Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Version:          1,
		DataDir:          defaultDataDir(),
		CopyOriginals:    false,
		MemoryMode:       MemoryModeStandard,
		InferenceThreads: runtime.NumCPU(),
		StorageBudgetGB:  10,
		Retrieval: RetrievalConfig{
			BM25Weight:              0.35,
			SemanticWeight:          0.65,
			RRFConstant:             60,
			LexicalRecallMultiplier: 50,
			FusionRecallMultiplier:  5,
			RerankEnabled:           false,
			MaxResults:              20,
		},
		Chunking: ChunkingConfig{
			TargetChars:  2000,
			OverlapChars: 200,
			MinChars:     400,
			MaxChars:     2200,
		},
		Store: StoreConfig{
			BlockCacheMB:   64,
			WriteBufferMB:  32,
			BackgroundJobs: 2,
			Compression:    "lz4",
		},
		Embed: EmbedConfig{
			Backend:    "",
			OllamaHost: "http://localhost:11434",
			BatchSize:  32,
		},
		Server: ServerConfig{
			Transport: "stdio",
			LogLevel:  "info",
		},
		Watch: WatchConfig{
			DebounceMS: 2000,
		},
		Tier: TierConfig{
			MaxOpenCaseHandles:  8,
			MaxCasesTotal:       500,
			MaxDocumentsPerCase: 20000,
		},
	}
}

// Load builds the configuration for dataDir: defaults, then config.yaml or
// config.yml under dataDir if present, then CASEINTEL_* env overrides. A
// config.toml is skipped (see loadFromFile).
func Load(dataDir string) (*Config, error) {
	cfg := NewConfig()
	if dataDir != "" {
		cfg.DataDir = dataDir
	}

	if err := cfg.loadFromFile(cfg.DataDir); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadFromFile(dir string) error {
	for _, name := range []string{"config.yaml", "config.yml", "config.toml"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		// config.toml is accepted per spec.md's on-disk layout but parsed as
		// YAML-compatible key:value syntax is not guaranteed; only
		// config.yaml/.yml are actually unmarshalled. A bare config.toml with
		// no YAML-format counterpart is left for a future TOML parser and
		// does not error here so existing setups are not broken.
		if strings.HasSuffix(path, ".toml") {
			continue
		}
		return c.loadYAML(path)
	}
	return nil
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	c.mergeWith(&parsed)
	return nil
}

func (c *Config) mergeWith(other *Config) {
	if other.DataDir != "" {
		c.DataDir = other.DataDir
	}
	if other.LicenseKey != "" {
		c.LicenseKey = other.LicenseKey
	}
	if other.CopyOriginals {
		c.CopyOriginals = other.CopyOriginals
	}
	if other.MemoryMode != "" {
		c.MemoryMode = other.MemoryMode
	}
	if other.InferenceThreads != 0 {
		c.InferenceThreads = other.InferenceThreads
	}
	if other.StorageBudgetGB != 0 {
		c.StorageBudgetGB = other.StorageBudgetGB
	}

	if other.Retrieval.BM25Weight != 0 {
		c.Retrieval.BM25Weight = other.Retrieval.BM25Weight
	}
	if other.Retrieval.SemanticWeight != 0 {
		c.Retrieval.SemanticWeight = other.Retrieval.SemanticWeight
	}
	if other.Retrieval.RRFConstant != 0 {
		c.Retrieval.RRFConstant = other.Retrieval.RRFConstant
	}
	if other.Retrieval.LexicalRecallMultiplier != 0 {
		c.Retrieval.LexicalRecallMultiplier = other.Retrieval.LexicalRecallMultiplier
	}
	if other.Retrieval.FusionRecallMultiplier != 0 {
		c.Retrieval.FusionRecallMultiplier = other.Retrieval.FusionRecallMultiplier
	}
	if other.Retrieval.MaxResults != 0 {
		c.Retrieval.MaxResults = other.Retrieval.MaxResults
	}
	c.Retrieval.RerankEnabled = other.Retrieval.RerankEnabled || c.Retrieval.RerankEnabled

	if other.Chunking.TargetChars != 0 {
		c.Chunking.TargetChars = other.Chunking.TargetChars
	}
	if other.Chunking.OverlapChars != 0 {
		c.Chunking.OverlapChars = other.Chunking.OverlapChars
	}
	if other.Chunking.MinChars != 0 {
		c.Chunking.MinChars = other.Chunking.MinChars
	}
	if other.Chunking.MaxChars != 0 {
		c.Chunking.MaxChars = other.Chunking.MaxChars
	}

	if other.Store.BlockCacheMB != 0 {
		c.Store.BlockCacheMB = other.Store.BlockCacheMB
	}
	if other.Store.WriteBufferMB != 0 {
		c.Store.WriteBufferMB = other.Store.WriteBufferMB
	}
	if other.Store.BackgroundJobs != 0 {
		c.Store.BackgroundJobs = other.Store.BackgroundJobs
	}
	if other.Store.Compression != "" {
		c.Store.Compression = other.Store.Compression
	}

	if other.Embed.Backend != "" {
		c.Embed.Backend = other.Embed.Backend
	}
	if other.Embed.OllamaHost != "" {
		c.Embed.OllamaHost = other.Embed.OllamaHost
	}
	if other.Embed.DenseModelPath != "" {
		c.Embed.DenseModelPath = other.Embed.DenseModelPath
	}
	if other.Embed.SparseModelPath != "" {
		c.Embed.SparseModelPath = other.Embed.SparseModelPath
	}
	if other.Embed.TokenModelPath != "" {
		c.Embed.TokenModelPath = other.Embed.TokenModelPath
	}
	if other.Embed.BatchSize != 0 {
		c.Embed.BatchSize = other.Embed.BatchSize
	}

	if other.Server.Transport != "" {
		c.Server.Transport = other.Server.Transport
	}
	if other.Server.LogLevel != "" {
		c.Server.LogLevel = other.Server.LogLevel
	}

	if other.Watch.DebounceMS != 0 {
		c.Watch.DebounceMS = other.Watch.DebounceMS
	}

	if other.Tier.MaxOpenCaseHandles != 0 {
		c.Tier.MaxOpenCaseHandles = other.Tier.MaxOpenCaseHandles
	}
	if other.Tier.MaxCasesTotal != 0 {
		c.Tier.MaxCasesTotal = other.Tier.MaxCasesTotal
	}
	if other.Tier.MaxDocumentsPerCase != 0 {
		c.Tier.MaxDocumentsPerCase = other.Tier.MaxDocumentsPerCase
	}
}

// applyEnvOverrides applies CASEINTEL_* environment variable overrides,
// highest precedence.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("CASEINTEL_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("CASEINTEL_LICENSE_KEY"); v != "" {
		c.LicenseKey = v
	}
	if v := os.Getenv("CASEINTEL_COPY_ORIGINALS"); v != "" {
		c.CopyOriginals = strings.ToLower(v) == "true" || v == "1"
	}
	if v := os.Getenv("CASEINTEL_MEMORY_MODE"); v != "" {
		c.MemoryMode = MemoryMode(strings.ToLower(v))
	}
	if v := os.Getenv("CASEINTEL_INFERENCE_THREADS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.InferenceThreads = n
		}
	}
	if v := os.Getenv("CASEINTEL_STORAGE_BUDGET_GB"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			c.StorageBudgetGB = f
		}
	}
	if v := os.Getenv("CASEINTEL_BM25_WEIGHT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 && f <= 1 {
			c.Retrieval.BM25Weight = f
		}
	}
	if v := os.Getenv("CASEINTEL_SEMANTIC_WEIGHT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 && f <= 1 {
			c.Retrieval.SemanticWeight = f
		}
	}
	if v := os.Getenv("CASEINTEL_RRF_CONSTANT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Retrieval.RRFConstant = n
		}
	}
	if v := os.Getenv("CASEINTEL_EMBED_BACKEND"); v != "" {
		c.Embed.Backend = v
	}
	if v := os.Getenv("CASEINTEL_OLLAMA_HOST"); v != "" {
		c.Embed.OllamaHost = v
	}
	if v := os.Getenv("CASEINTEL_LOG_LEVEL"); v != "" {
		c.Server.LogLevel = v
	}
}

// Validate checks the configuration for internally inconsistent values.
func (c *Config) Validate() error {
	if c.Retrieval.BM25Weight < 0 || c.Retrieval.BM25Weight > 1 {
		return fmt.Errorf("retrieval.bm25_weight must be between 0 and 1, got %f", c.Retrieval.BM25Weight)
	}
	if c.Retrieval.SemanticWeight < 0 || c.Retrieval.SemanticWeight > 1 {
		return fmt.Errorf("retrieval.semantic_weight must be between 0 and 1, got %f", c.Retrieval.SemanticWeight)
	}
	sum := c.Retrieval.BM25Weight + c.Retrieval.SemanticWeight
	if sum < 0.99 || sum > 1.01 {
		return fmt.Errorf("retrieval.bm25_weight + retrieval.semantic_weight must equal 1.0, got %.2f", sum)
	}
	if c.Chunking.MinChars <= 0 || c.Chunking.MaxChars <= c.Chunking.MinChars {
		return fmt.Errorf("chunking.max_chars must be greater than chunking.min_chars > 0")
	}
	if c.Chunking.TargetChars < c.Chunking.MinChars || c.Chunking.TargetChars > c.Chunking.MaxChars {
		return fmt.Errorf("chunking.target_chars must lie within [min_chars, max_chars]")
	}
	switch c.MemoryMode {
	case MemoryModeFull, MemoryModeStandard, MemoryModeConstrained:
	default:
		return fmt.Errorf("memory_mode must be 'full', 'standard', or 'constrained', got %q", c.MemoryMode)
	}
	validTransports := map[string]bool{"stdio": true, "sse": true}
	if !validTransports[strings.ToLower(c.Server.Transport)] {
		return fmt.Errorf("server.transport must be 'stdio' or 'sse', got %s", c.Server.Transport)
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Server.LogLevel)] {
		return fmt.Errorf("server.log_level must be 'debug', 'info', 'warn', or 'error', got %s", c.Server.LogLevel)
	}
	if c.StorageBudgetGB <= 0 {
		return fmt.Errorf("storage_budget_gb must be positive, got %f", c.StorageBudgetGB)
	}
	if c.Tier.MaxOpenCaseHandles <= 0 {
		return fmt.Errorf("tier.max_open_case_handles must be positive, got %d", c.Tier.MaxOpenCaseHandles)
	}
	if c.Tier.MaxCasesTotal <= 0 {
		return fmt.Errorf("tier.max_cases_total must be positive, got %d", c.Tier.MaxCasesTotal)
	}
	if c.Tier.MaxDocumentsPerCase <= 0 {
		return fmt.Errorf("tier.max_documents_per_case must be positive, got %d", c.Tier.MaxDocumentsPerCase)
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
