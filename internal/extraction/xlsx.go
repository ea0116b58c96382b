package extraction

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

const sharedStringsPath = "xl/sharedStrings.xml"

// extractXlsx walks every worksheet row-major, joining non-empty cell
// values with spaces and rows with newlines, resolving shared strings.
func extractXlsx(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open xlsx: %w", err)
	}

	shared, err := loadSharedStrings(zr)
	if err != nil {
		return "", err
	}

	var sheets []*zip.File
	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, "xl/worksheets/sheet") && strings.HasSuffix(f.Name, ".xml") {
			sheets = append(sheets, f)
		}
	}
	sort.Slice(sheets, func(i, j int) bool { return sheets[i].Name < sheets[j].Name })

	var sb strings.Builder
	for _, sheet := range sheets {
		rc, err := sheet.Open()
		if err != nil {
			return "", fmt.Errorf("open worksheet %s: %w", sheet.Name, err)
		}

		text, err := sheetText(rc, shared)
		rc.Close()
		if err != nil {
			return "", err
		}
		sb.WriteString(text)
	}

	return sb.String(), nil
}

func loadSharedStrings(zr *zip.Reader) ([]string, error) {
	var part *zip.File
	for _, f := range zr.File {
		if f.Name == sharedStringsPath {
			part = f
			break
		}
	}
	if part == nil {
		return nil, nil
	}

	rc, err := part.Open()
	if err != nil {
		return nil, fmt.Errorf("open shared strings: %w", err)
	}
	defer rc.Close()

	decoder := xml.NewDecoder(rc)

	var (
		shared  []string
		current strings.Builder
		inText  bool
	)

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse shared strings: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "si":
				current.Reset()
			case "t":
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "si":
				shared = append(shared, current.String())
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}

	return shared, nil
}

func sheetText(r io.Reader, shared []string) (string, error) {
	decoder := xml.NewDecoder(r)

	var (
		sb       strings.Builder
		row      []string
		cellType string
		inValue  bool
		value    strings.Builder
	)

	flushCell := func() {
		v := strings.TrimSpace(value.String())
		value.Reset()
		if v == "" {
			return
		}
		if cellType == "s" {
			idx, err := strconv.Atoi(v)
			if err != nil || idx < 0 || idx >= len(shared) {
				return
			}
			v = strings.TrimSpace(shared[idx])
			if v == "" {
				return
			}
		}
		row = append(row, v)
	}

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse worksheet: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "row":
				row = row[:0]
			case "c":
				cellType = ""
				for _, attr := range t.Attr {
					if attr.Name.Local == "t" {
						cellType = attr.Value
					}
				}
			case "v", "is":
				inValue = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "row":
				if len(row) > 0 {
					sb.WriteString(strings.Join(row, " "))
					sb.WriteString("\n")
				}
			case "c":
				flushCell()
			case "v", "is":
				inValue = false
			}
		case xml.CharData:
			if inValue {
				value.Write(t)
			}
		}
	}

	return sb.String(), nil
}
