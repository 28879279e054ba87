package extract

import (
	"archive/zip"
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestTextPlain(t *testing.T) {
	out, err := Text("cv.txt", "text/plain", []byte("  Jan Kowalski\nEngineer  "))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if out != "Jan Kowalski\nEngineer" {
		t.Fatalf("got %q", out)
	}
}

func TestTextEmptyFile(t *testing.T) {
	_, err := Text("cv.txt", "text/plain", nil)
	if !errors.Is(err, ErrExtractionFailed) {
		t.Fatalf("got %v, want ErrExtractionFailed", err)
	}
}

func TestTextMalformedPDF(t *testing.T) {
	_, err := Text("cv.pdf", "application/pdf", []byte("definitely not a pdf"))
	if !errors.Is(err, ErrExtractionFailed) {
		t.Fatalf("got %v, want ErrExtractionFailed", err)
	}
}

func TestTextBinaryGarbage(t *testing.T) {
	_, err := Text("cv.bin", "application/octet-stream", []byte{0xff, 0xfe, 0x00, 0x01})
	if !errors.Is(err, ErrExtractionFailed) {
		t.Fatalf("got %v, want ErrExtractionFailed", err)
	}
}

func buildDOCX(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	if _, err := w.Write([]byte(documentXML)); err != nil {
		t.Fatalf("write entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestTextDOCX(t *testing.T) {
	data := buildDOCX(t, `<?xml version="1.0"?>
		<document xmlns="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
			<body>
				<p><r><t>Jan Kowalski</t></r></p>
				<p><r><t>Senior </t></r><r><t>Engineer</t></r></p>
			</body>
		</document>`)

	out, err := Text("cv.docx", "", data)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if !strings.Contains(out, "Jan Kowalski") || !strings.Contains(out, "Senior Engineer") {
		t.Fatalf("got %q", out)
	}
}

func TestTextDOCXWithoutDocument(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, _ := zw.Create("other.xml")
	_, _ = w.Write([]byte("<x/>"))
	_ = zw.Close()

	_, err := Text("cv.docx", "", buf.Bytes())
	if !errors.Is(err, ErrExtractionFailed) {
		t.Fatalf("got %v, want ErrExtractionFailed", err)
	}
}
