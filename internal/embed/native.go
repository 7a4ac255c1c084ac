package embed

import (
	"context"
	"fmt"
	"os"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"

	"github.com/legalcase/caseintel/internal/provenance"

	caseerrors "github.com/legalcase/caseintel/internal/errors"
)

// NativeConfig names the shared-library model weights to load per slot. A
// zero-value path leaves that slot unconfigured.
type NativeConfig struct {
	DenseModelPath  string
	DenseDim        int
	SparseModelPath string
	SparseVocabSize int
	TokenModelPath  string
	TokenDim        int
}

// nativeModel is one purego-loaded shared library exposing a single
// embed_into(text, textLen, out, outCap) -> int32 symbol that writes its
// result into a caller-supplied float32 buffer and returns how many floats
// (dense/token) or pairs (sparse) it wrote.
type nativeModel struct {
	handle   uintptr
	embedFn  func(textPtr uintptr, textLen int32, outPtr uintptr, outCap int32) int32
	capacity int
}

func loadNativeModel(path string, capacity int) (*nativeModel, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, fmt.Errorf("dlopen %s: %w", path, err)
	}
	m := &nativeModel{handle: handle, capacity: capacity}
	purego.RegisterLibFunc(&m.embedFn, handle, "embed_into")
	return m, nil
}

func (m *nativeModel) close() error {
	if m.handle == 0 {
		return nil
	}
	return purego.Dlclose(m.handle)
}

// run copies text into a pinned byte buffer, invokes embed_into, and returns
// the float32 values it wrote (length <= m.capacity).
func (m *nativeModel) run(text string) ([]float32, error) {
	textBytes := []byte(text)
	out := make([]float32, m.capacity)

	var textPtr uintptr
	if len(textBytes) > 0 {
		textPtr = uintptr(unsafe.Pointer(&textBytes[0]))
	}
	n := m.embedFn(textPtr, int32(len(textBytes)), uintptr(unsafe.Pointer(&out[0])), int32(m.capacity))
	if n < 0 {
		return nil, fmt.Errorf("embed_into returned error code %d", n)
	}
	if int(n) > m.capacity {
		n = int32(m.capacity)
	}
	return out[:n], nil
}

// NativeEngine embeds via locally installed shared-library models, loaded
// through purego so the engine needs no cgo toolchain to build. Any subset
// of dense/sparse/token may be configured; unconfigured slots report
// EmbedderNotLoaded.
type NativeEngine struct {
	mu          sync.Mutex
	dense       *nativeModel
	sparse      *nativeModel
	sparseVocab int
	token       *nativeModel
	tokenDim    int
}

var _ Engine = (*NativeEngine)(nil)

// NewNativeEngine loads every model path present in cfg. A configured path
// whose weights file is missing fails with ModelNotDownloaded; a dlopen
// failure against a present file fails with InferenceFailed.
func NewNativeEngine(cfg NativeConfig) (*NativeEngine, error) {
	e := &NativeEngine{sparseVocab: cfg.SparseVocabSize, tokenDim: cfg.TokenDim}

	if cfg.DenseModelPath != "" {
		m, err := loadNativeModel(cfg.DenseModelPath, cfg.DenseDim)
		if os.IsNotExist(err) {
			return nil, caseerrors.ModelNotDownloaded(string(SlotDense), cfg.DenseModelPath)
		} else if err != nil {
			return nil, caseerrors.InferenceFailed(string(SlotDense), err)
		}
		e.dense = m
	}
	if cfg.SparseModelPath != "" {
		m, err := loadNativeModel(cfg.SparseModelPath, cfg.SparseVocabSize*2)
		if os.IsNotExist(err) {
			return nil, caseerrors.ModelNotDownloaded(string(SlotSparse), cfg.SparseModelPath)
		} else if err != nil {
			return nil, caseerrors.InferenceFailed(string(SlotSparse), err)
		}
		e.sparse = m
	}
	if cfg.TokenModelPath != "" {
		m, err := loadNativeModel(cfg.TokenModelPath, MaxTokenRows*cfg.TokenDim)
		if os.IsNotExist(err) {
			return nil, caseerrors.ModelNotDownloaded(string(SlotToken), cfg.TokenModelPath)
		} else if err != nil {
			return nil, caseerrors.InferenceFailed(string(SlotToken), err)
		}
		e.token = m
	}
	return e, nil
}

func (e *NativeEngine) ConfiguredSlots() []Slot {
	var slots []Slot
	if e.dense != nil {
		slots = append(slots, SlotDense)
	}
	if e.sparse != nil {
		slots = append(slots, SlotSparse)
	}
	if e.token != nil {
		slots = append(slots, SlotToken)
	}
	return slots
}

func (e *NativeEngine) EmbedChunk(_ context.Context, text string) (ChunkEmbeddings, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var out ChunkEmbeddings
	if e.dense != nil {
		v, err := e.dense.run(text)
		if err != nil {
			return ChunkEmbeddings{}, caseerrors.InferenceFailed(string(SlotDense), err)
		}
		out.Dense = normalizeVector(v)
	}
	if e.sparse != nil {
		sv, err := e.runSparse(text)
		if err != nil {
			return ChunkEmbeddings{}, caseerrors.InferenceFailed(string(SlotSparse), err)
		}
		out.Sparse = sv
	}
	if e.token != nil {
		tm, err := e.runToken(text)
		if err != nil {
			return ChunkEmbeddings{}, caseerrors.InferenceFailed(string(SlotToken), err)
		}
		out.Token = tm
	}
	return out, nil
}

func (e *NativeEngine) EmbedQuery(ctx context.Context, text string, which Slot) (QueryEmbedding, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch which {
	case SlotDense:
		if e.dense == nil {
			return QueryEmbedding{}, caseerrors.EmbedderNotLoaded(string(which))
		}
		v, err := e.dense.run(text)
		if err != nil {
			return QueryEmbedding{}, caseerrors.InferenceFailed(string(which), err)
		}
		return QueryEmbedding{Which: SlotDense, Dense: normalizeVector(v)}, nil
	case SlotSparse:
		if e.sparse == nil {
			return QueryEmbedding{}, caseerrors.EmbedderNotLoaded(string(which))
		}
		sv, err := e.runSparse(text)
		if err != nil {
			return QueryEmbedding{}, caseerrors.InferenceFailed(string(which), err)
		}
		return QueryEmbedding{Which: SlotSparse, Sparse: sv}, nil
	case SlotToken:
		if e.token == nil {
			return QueryEmbedding{}, caseerrors.EmbedderNotLoaded(string(which))
		}
		tm, err := e.runToken(text)
		if err != nil {
			return QueryEmbedding{}, caseerrors.InferenceFailed(string(which), err)
		}
		return QueryEmbedding{Which: SlotToken, Token: tm}, nil
	default:
		return QueryEmbedding{}, caseerrors.EmbedderNotLoaded(string(which))
	}
}

// runSparse interprets the native model's flat output as interleaved
// (index-as-float, value) pairs and rebuilds the strictly-ascending sparse
// vector spec.md §4.G requires.
func (e *NativeEngine) runSparse(text string) (*provenance.SparseVector, error) {
	flat, err := e.sparse.run(text)
	if err != nil {
		return nil, err
	}
	sv := &provenance.SparseVector{}
	for i := 0; i+1 < len(flat); i += 2 {
		idx := uint32(flat[i])
		val := flat[i+1]
		if val == 0 {
			continue
		}
		sv.Indices = append(sv.Indices, idx)
		sv.Values = append(sv.Values, val)
	}
	sortSparse(sv)
	return sv, nil
}

// runToken reshapes the native model's flat output into a row-major N×D
// matrix, truncating to MaxTokenRows.
func (e *NativeEngine) runToken(text string) (*provenance.TokenMatrix, error) {
	flat, err := e.token.run(text)
	if err != nil {
		return nil, err
	}
	if e.tokenDim <= 0 {
		return nil, fmt.Errorf("native token engine has no configured dimension")
	}
	rows := len(flat) / e.tokenDim
	if rows > MaxTokenRows {
		rows = MaxTokenRows
	}
	return &provenance.TokenMatrix{Rows: rows, Cols: e.tokenDim, Data: flat[:rows*e.tokenDim]}, nil
}

func (e *NativeEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	var firstErr error
	for _, m := range []*nativeModel{e.dense, e.sparse, e.token} {
		if m == nil {
			continue
		}
		if err := m.close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
