package extract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/legalcase/caseintel/internal/provenance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testEml = "From: counsel@example.com\r\n" +
	"To: opposing@example.com\r\n" +
	"Subject: Re: Settlement offer\r\n" +
	"Date: Mon, 2 Jun 2025 10:00:00 -0400\r\n" +
	"\r\n" +
	"We accept the terms outlined in your letter of May 30.\r\n"

func TestEmailExtractor_ExtractsHeadersAndBody(t *testing.T) {
	path := filepath.Join(t.TempDir(), "offer.eml")
	require.NoError(t, os.WriteFile(path, []byte(testEml), 0o644))

	e := &EmailExtractor{}
	pages, err := e.ExtractPages(path)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Contains(t, pages[0].Text, "Subject: Re: Settlement offer")
	assert.Contains(t, pages[0].Text, "We accept the terms outlined in your letter of May 30.")
	assert.Equal(t, provenance.ExtractionEmail, e.Method())
}

func TestEmailExtractor_MsgExtensionIsUnsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "offer.msg")
	require.NoError(t, os.WriteFile(path, []byte("not a real msg file"), 0o644))

	e := &EmailExtractor{}
	_, err := e.ExtractPages(path)
	assert.Error(t, err)
}
