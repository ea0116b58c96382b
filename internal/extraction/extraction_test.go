package extraction_test

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	"github.com/arboretica/lore/internal/extraction"
)

func buildZip(t *testing.T, parts map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range parts {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close archive: %v", err)
	}
	return buf.Bytes()
}

func TestExtractPlainText(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		mimeType string
		want     string
		wantOK   bool
	}{
		{
			name:     "plain text",
			data:     []byte("  hello world\n"),
			mimeType: "text/plain",
			want:     "hello world",
			wantOK:   true,
		},
		{
			name:     "markdown",
			data:     []byte("# Title\n\nBody."),
			mimeType: "text/markdown",
			want:     "# Title\n\nBody.",
			wantOK:   true,
		},
		{
			name:     "invalid utf8 stripped",
			data:     []byte{'o', 'k', 0xff, 0xfe},
			mimeType: "text/plain",
			want:     "ok",
			wantOK:   true,
		},
		{
			name:     "whitespace only",
			data:     []byte("   \n\t  "),
			mimeType: "text/plain",
			wantOK:   false,
		},
		{
			name:     "unsupported type",
			data:     []byte("binary"),
			mimeType: "image/png",
			wantOK:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extraction.Extract(tt.data, tt.mimeType)
			if ok != tt.wantOK {
				t.Fatalf("Extract() ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("Extract() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractDocx(t *testing.T) {
	document := `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>First paragraph.</w:t></w:r></w:p>
    <w:p><w:r><w:t>Second </w:t></w:r><w:r><w:t>paragraph.</w:t></w:r></w:p>
  </w:body>
</w:document>`

	data := buildZip(t, map[string]string{"word/document.xml": document})

	got, ok := extraction.Extract(data, "application/vnd.openxmlformats-officedocument.wordprocessingml.document")
	if !ok {
		t.Fatal("Extract() ok = false, want true")
	}

	want := "First paragraph.\nSecond paragraph."
	if got != want {
		t.Errorf("Extract() = %q, want %q", got, want)
	}
}

func TestExtractDocxMissingDocument(t *testing.T) {
	data := buildZip(t, map[string]string{"other.xml": "<x/>"})

	if _, ok := extraction.Extract(data, "application/msword"); ok {
		t.Error("Extract() ok = true for archive without document part")
	}
}

func TestExtractXlsx(t *testing.T) {
	sharedStrings := `<?xml version="1.0"?>
<sst xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" count="2" uniqueCount="2">
  <si><t>Vendor</t></si>
  <si><t>Amount</t></si>
</sst>`

	sheet := `<?xml version="1.0"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">
  <sheetData>
    <row r="1">
      <c r="A1" t="s"><v>0</v></c>
      <c r="B1" t="s"><v>1</v></c>
    </row>
    <row r="2">
      <c r="A2" t="str"><v>Acme</v></c>
      <c r="B2"><v>1200</v></c>
      <c r="C2"/>
    </row>
  </sheetData>
</worksheet>`

	data := buildZip(t, map[string]string{
		"xl/sharedStrings.xml":     sharedStrings,
		"xl/worksheets/sheet1.xml": sheet,
	})

	got, ok := extraction.Extract(data, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if !ok {
		t.Fatal("Extract() ok = false, want true")
	}

	want := "Vendor Amount\nAcme 1200"
	if got != want {
		t.Errorf("Extract() = %q, want %q", got, want)
	}
}

func TestExtractXlsxNoSharedStrings(t *testing.T) {
	sheet := `<?xml version="1.0"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">
  <sheetData>
    <row r="1"><c r="A1"><v>42</v></c></row>
  </sheetData>
</worksheet>`

	data := buildZip(t, map[string]string{"xl/worksheets/sheet1.xml": sheet})

	got, ok := extraction.Extract(data, "application/vnd.ms-excel")
	if !ok {
		t.Fatal("Extract() ok = false, want true")
	}
	if got != "42" {
		t.Errorf("Extract() = %q, want %q", got, "42")
	}
}

func TestExtractMalformedArchive(t *testing.T) {
	for _, mimeType := range []string{
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"application/pdf",
	} {
		if _, ok := extraction.Extract([]byte("not an archive"), mimeType); ok {
			t.Errorf("Extract() ok = true for garbage %s payload", mimeType)
		}
	}
}

func TestExtractDocxIgnoresNonTextMarkup(t *testing.T) {
	document := `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p>
      <w:pPr><w:jc w:val="center"/></w:pPr>
      <w:r><w:rPr><w:b/></w:rPr><w:t>Heading</w:t></w:r>
    </w:p>
  </w:body>
</w:document>`

	data := buildZip(t, map[string]string{"word/document.xml": document})

	got, ok := extraction.Extract(data, "application/msword")
	if !ok {
		t.Fatal("Extract() ok = false, want true")
	}
	if !strings.Contains(got, "Heading") || strings.Contains(got, "center") {
		t.Errorf("Extract() = %q, want formatting markup dropped", got)
	}
}
