package extract

import (
	"io"
	"net/mail"
	"os"
	"strings"

	caseerrors "github.com/legalcase/caseintel/internal/errors"
	"github.com/legalcase/caseintel/internal/provenance"
)

// EmailExtractor decodes RFC 5322 (.eml) messages via stdlib net/mail —
// no pack library parses mail headers, and it is a single well-specified
// format stdlib already covers. Legacy Outlook .msg (an OLE compound
// file, unlike .eml) is out of scope: it shares mscfb's container format
// with legacy .doc, but this package does not yet ship a .msg body
// decoder, so it is reported as unsupported rather than silently
// mis-parsed as .eml.
type EmailExtractor struct{}

func (e *EmailExtractor) SupportedExtensions() []string { return []string{".eml"} }

func (e *EmailExtractor) Method() provenance.ExtractionMethod { return provenance.ExtractionEmail }

func (e *EmailExtractor) ExtractPages(path string) ([]Page, error) {
	if detectedExtension(path) == "msg" {
		return nil, caseerrors.New(caseerrors.ErrCodeUnsupportedFormat,
			"legacy Outlook .msg is not supported, convert to .eml", nil)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	msg, err := mail.ReadMessage(f)
	if err != nil {
		return nil, caseerrors.New(caseerrors.ErrCodeUnsupportedFormat, "parsing .eml message", err)
	}

	body, err := io.ReadAll(msg.Body)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	writeHeader(&b, msg, "From")
	writeHeader(&b, msg, "To")
	writeHeader(&b, msg, "Subject")
	writeHeader(&b, msg, "Date")
	b.WriteString("\n")
	b.Write(body)

	return []Page{{Number: 1, Text: strings.TrimSpace(b.String())}}, nil
}

func writeHeader(b *strings.Builder, msg *mail.Message, key string) {
	v := msg.Header.Get(key)
	if v == "" {
		return
	}
	b.WriteString(key)
	b.WriteString(": ")
	b.WriteString(v)
	b.WriteString("\n")
}
