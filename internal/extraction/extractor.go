// Package extraction converts uploaded document bytes into plain text.
// Adapters are selected by declared MIME type; unsupported types and
// parsing faults both yield a "no text available" outcome rather than an
// error, and no adapter truncates its output.
package extraction

import (
	"strings"
)

const (
	mimePDF     = "application/pdf"
	mimeDocx    = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeDoc     = "application/msword"
	mimeXlsx    = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimeXls     = "application/vnd.ms-excel"
	textPrefix  = "text/"
)

// Extract converts raw bytes and a declared MIME type into plain text.
// The second return value reports whether any text was extracted; false
// covers both unsupported MIME types and adapter parsing faults.
func Extract(data []byte, mimeType string) (text string, ok bool) {
	// Adapter faults must not escape this boundary.
	defer func() {
		if r := recover(); r != nil {
			text, ok = "", false
		}
	}()

	var err error
	switch {
	case mimeType == mimePDF:
		text, err = extractPDF(data)
	case mimeType == mimeDocx || mimeType == mimeDoc:
		text, err = extractDocx(data)
	case mimeType == mimeXlsx || mimeType == mimeXls:
		text, err = extractXlsx(data)
	case strings.HasPrefix(mimeType, textPrefix):
		text = strings.ToValidUTF8(string(data), "")
	default:
		return "", false
	}

	text = strings.TrimSpace(text)
	if err != nil || text == "" {
		return "", false
	}
	return text, true
}
