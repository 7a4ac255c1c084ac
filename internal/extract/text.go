package extract

import (
	"bufio"
	"os"
	"strings"

	"github.com/legalcase/caseintel/internal/provenance"
)

// TextExtractor reads plain text / markdown files as a single page. No
// pack library does plain line splitting better than bufio.Scanner, so
// this decoder is stdlib-only.
type TextExtractor struct{}

func (e *TextExtractor) SupportedExtensions() []string { return []string{".txt", ".md"} }

func (e *TextExtractor) Method() provenance.ExtractionMethod { return provenance.ExtractionNative }

func (e *TextExtractor) ExtractPages(path string) ([]Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var b strings.Builder
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	first := true
	for scanner.Scan() {
		if !first {
			b.WriteByte('\n')
		}
		first = false
		b.WriteString(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return []Page{{Number: 1, Text: b.String()}}, nil
}
