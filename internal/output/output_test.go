package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriter_Status_PrintsIconAndMessage(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.Status("🔍", "checking embedder")

	out := buf.String()
	assert.Contains(t, out, "🔍")
	assert.Contains(t, out, "checking embedder")
}

func TestWriter_Status_IndentsWhenIconEmpty(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.Status("", "plain line")

	assert.Equal(t, "  plain line\n", buf.String())
}

func TestWriter_Success_Error_Warning_PrefixCorrectly(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.Success("done")
	w.Warning("careful")
	w.Error("failed")

	out := buf.String()
	assert.Contains(t, out, "✓ done")
	assert.Contains(t, out, "! careful")
	assert.Contains(t, out, "✗ failed")
}
