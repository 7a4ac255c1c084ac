// Package binenc provides the fixed, length-prefixed little-endian binary
// encoding primitives used by every stored record type, per the round-trip
// requirement in spec.md §4.C: deserialize(serialize(x)) == x bit-for-bit.
// Every domain record type (Chunk, Provenance, Case, Document, Entity,
// Citation, Watch, ...) builds its own Encode/Decode pair on top of these
// primitives rather than reflection-based serialization, so the wire format
// is exactly what the field-by-field code says it is.
package binenc

import (
	"encoding/binary"
	"fmt"
	"math"
)

// PutString appends a length-prefixed (uint32 byte length, little-endian)
// UTF-8 string.
func PutString(buf []byte, s string) []byte {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(s)))
	buf = append(buf, lenBuf[:]...)
	buf = append(buf, s...)
	return buf
}

// TakeString reads a string written by PutString, returning the remaining
// buffer.
func TakeString(buf []byte) (string, []byte, error) {
	if len(buf) < 4 {
		return "", nil, fmt.Errorf("truncated string length prefix")
	}
	n := binary.LittleEndian.Uint32(buf[:4])
	buf = buf[4:]
	if uint32(len(buf)) < n {
		return "", nil, fmt.Errorf("truncated string body: need %d bytes, have %d", n, len(buf))
	}
	s := string(buf[:n])
	return s, buf[n:], nil
}

// PutInt64 appends a little-endian int64.
func PutInt64(buf []byte, v int64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(v))
	return append(buf, b[:]...)
}

// TakeInt64 reads an int64 written by PutInt64.
func TakeInt64(buf []byte) (int64, []byte, error) {
	if len(buf) < 8 {
		return 0, nil, fmt.Errorf("truncated int64")
	}
	return int64(binary.LittleEndian.Uint64(buf[:8])), buf[8:], nil
}

// PutBool appends a single byte: 1 for true, 0 for false.
func PutBool(buf []byte, v bool) []byte {
	if v {
		return append(buf, 1)
	}
	return append(buf, 0)
}

// TakeBool reads a bool written by PutBool.
func TakeBool(buf []byte) (bool, []byte, error) {
	if len(buf) < 1 {
		return false, nil, fmt.Errorf("truncated bool")
	}
	return buf[0] == 1, buf[1:], nil
}

// PutFloat64 appends a little-endian float64 via its raw bit pattern, never
// a text rendering, so encoding is exact for every value including NaN.
func PutFloat64(buf []byte, v float64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], math.Float64bits(v))
	return append(buf, b[:]...)
}

// TakeFloat64 reads a float64 written by PutFloat64.
func TakeFloat64(buf []byte) (float64, []byte, error) {
	if len(buf) < 8 {
		return 0, nil, fmt.Errorf("truncated float64")
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(buf[:8])), buf[8:], nil
}

// PutFloat32Slice appends a length-prefixed array of little-endian float32s,
// grounded on the sqlite-vec-style dense vector serialization pattern.
func PutFloat32Slice(buf []byte, v []float32) []byte {
	buf = PutInt64(buf, int64(len(v)))
	for _, f := range v {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], math.Float32bits(f))
		buf = append(buf, b[:]...)
	}
	return buf
}

// TakeFloat32Slice reads a float32 slice written by PutFloat32Slice.
func TakeFloat32Slice(buf []byte) ([]float32, []byte, error) {
	n, buf, err := TakeInt64(buf)
	if err != nil {
		return nil, nil, fmt.Errorf("float32 slice length: %w", err)
	}
	if n == 0 {
		return nil, buf, nil
	}
	need := int(n) * 4
	if len(buf) < need {
		return nil, nil, fmt.Errorf("truncated float32 slice: need %d bytes, have %d", need, len(buf))
	}
	out := make([]float32, n)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4 : i*4+4]))
	}
	return out, buf[need:], nil
}

// PutUint32Slice appends a length-prefixed array of little-endian uint32s.
func PutUint32Slice(buf []byte, v []uint32) []byte {
	buf = PutInt64(buf, int64(len(v)))
	for _, u := range v {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], u)
		buf = append(buf, b[:]...)
	}
	return buf
}

// TakeUint32Slice reads a uint32 slice written by PutUint32Slice.
func TakeUint32Slice(buf []byte) ([]uint32, []byte, error) {
	n, buf, err := TakeInt64(buf)
	if err != nil {
		return nil, nil, fmt.Errorf("uint32 slice length: %w", err)
	}
	if n == 0 {
		return nil, buf, nil
	}
	need := int(n) * 4
	if len(buf) < need {
		return nil, nil, fmt.Errorf("truncated uint32 slice: need %d bytes, have %d", need, len(buf))
	}
	out := make([]uint32, n)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(buf[i*4 : i*4+4])
	}
	return out, buf[need:], nil
}

// PutStringSlice appends a length-prefixed array of length-prefixed strings.
func PutStringSlice(buf []byte, v []string) []byte {
	buf = PutInt64(buf, int64(len(v)))
	for _, s := range v {
		buf = PutString(buf, s)
	}
	return buf
}

// TakeStringSlice reads a string slice written by PutStringSlice.
func TakeStringSlice(buf []byte) ([]string, []byte, error) {
	n, buf, err := TakeInt64(buf)
	if err != nil {
		return nil, nil, fmt.Errorf("string slice length: %w", err)
	}
	out := make([]string, 0, n)
	for i := int64(0); i < n; i++ {
		var s string
		if s, buf, err = TakeString(buf); err != nil {
			return nil, nil, fmt.Errorf("string slice element %d: %w", i, err)
		}
		out = append(out, s)
	}
	return out, buf, nil
}
