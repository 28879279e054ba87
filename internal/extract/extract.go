// Package extract turns uploaded document bytes into plain text.
package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// ErrExtractionFailed is returned when no text can be recovered from
// the file. Callers surface it as "paste the text instead".
var ErrExtractionFailed = errors.New("could not extract text from file")

// Text extracts plain text from an uploaded file, choosing a strategy
// by filename extension and content type.
func Text(filename, contentType string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty file", ErrExtractionFailed)
	}

	name := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(name, ".pdf") || contentType == "application/pdf":
		return fromPDF(data)
	case strings.HasSuffix(name, ".docx"):
		return fromDOCX(data)
	case strings.HasSuffix(name, ".txt") || strings.HasPrefix(contentType, "text/"):
		return fromPlainText(data)
	default:
		// Unknown extension: accept it if it reads as plain text.
		return fromPlainText(data)
	}
}

func fromPDF(data []byte) (text string, err error) {
	// The pdf package panics on some malformed files.
	defer func() {
		if rec := recover(); rec != nil {
			text = ""
			err = fmt.Errorf("%w: malformed PDF", ErrExtractionFailed)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	var sb strings.Builder
	if _, err := io.Copy(&sb, plain); err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	out := strings.TrimSpace(sb.String())
	if out == "" {
		return "", fmt.Errorf("%w: PDF contains no extractable text", ErrExtractionFailed)
	}
	return out, nil
}

type docxDocument struct {
	Paragraphs []struct {
		Runs []struct {
			Text string `xml:"t"`
		} `xml:"r"`
	} `xml:"body>p"`
}

func fromDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: not a DOCX archive", ErrExtractionFailed)
	}

	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrExtractionFailed, err)
		}
		raw, err := io.ReadAll(io.LimitReader(rc, 16<<20))
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrExtractionFailed, err)
		}

		var doc docxDocument
		if err := xml.Unmarshal(raw, &doc); err != nil {
			return "", fmt.Errorf("%w: %v", ErrExtractionFailed, err)
		}
		var lines []string
		for _, p := range doc.Paragraphs {
			var sb strings.Builder
			for _, r := range p.Runs {
				sb.WriteString(r.Text)
			}
			if line := strings.TrimSpace(sb.String()); line != "" {
				lines = append(lines, line)
			}
		}
		if len(lines) == 0 {
			return "", fmt.Errorf("%w: document contains no text", ErrExtractionFailed)
		}
		return strings.Join(lines, "\n"), nil
	}
	return "", fmt.Errorf("%w: document.xml missing", ErrExtractionFailed)
}

func fromPlainText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: file is not valid UTF-8 text", ErrExtractionFailed)
	}
	out := strings.TrimSpace(string(data))
	if out == "" {
		return "", fmt.Errorf("%w: file is empty", ErrExtractionFailed)
	}
	return out, nil
}
