package extraction

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// extractPDF pulls text-showing operators out of each page's content
// stream, concatenated page-major. Glyph decoding is best-effort: literal
// strings are read as-is, which covers the common case of unencrypted
// text-based PDFs; anything else falls out as a parse fault upstream.
func extractPDF(data []byte) (string, error) {
	if _, err := api.PageCount(bytes.NewReader(data), nil); err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}

	tempDir, err := os.MkdirTemp("", "lore-extract-*")
	if err != nil {
		return "", fmt.Errorf("create temp directory: %w", err)
	}
	defer os.RemoveAll(tempDir)

	if err := api.ExtractContent(bytes.NewReader(data), tempDir, "source", nil, nil); err != nil {
		return "", fmt.Errorf("extract content: %w", err)
	}

	streams, err := filepath.Glob(filepath.Join(tempDir, "*.txt"))
	if err != nil {
		return "", err
	}
	sort.Strings(streams)

	var sb strings.Builder
	for _, path := range streams {
		raw, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		page := textFromContentStream(raw)
		if page != "" {
			sb.WriteString(page)
			sb.WriteString("\n")
		}
	}

	return sb.String(), nil
}

// textFromContentStream collects the literal string arguments of the PDF
// text-showing operators (Tj, TJ, ', ") from a decoded content stream.
func textFromContentStream(stream []byte) string {
	var sb strings.Builder
	depth := 0
	escaped := false

	for i := 0; i < len(stream); i++ {
		c := stream[i]

		if depth == 0 {
			if c == '(' {
				depth++
			}
			continue
		}

		if escaped {
			switch c {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case '(', ')', '\\':
				sb.WriteByte(c)
			}
			escaped = false
			continue
		}

		switch c {
		case '\\':
			escaped = true
		case '(':
			depth++
			sb.WriteByte(c)
		case ')':
			depth--
			if depth == 0 {
				sb.WriteByte(' ')
			} else {
				sb.WriteByte(c)
			}
		default:
			sb.WriteByte(c)
		}
	}

	return strings.Join(strings.Fields(sb.String()), " ")
}
