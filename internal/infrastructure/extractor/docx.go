package extractor

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	wordMainPart  = "word/document.xml"
	wordNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
)

// extractDOCX reads the main document part of an OOXML package. Legacy
// binary .doc files are not zip archives and fail to open.
func extractDOCX(ctx context.Context, path string) (string, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("open docx archive: %w", err)
	}
	defer archive.Close()

	for _, f := range archive.File {
		if f.Name != wordMainPart {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("open %s: %w", wordMainPart, err)
		}
		defer rc.Close()
		return wordParagraphs(ctx, rc)
	}
	return "", errors.New("docx archive has no " + wordMainPart)
}

// wordParagraphs joins w:p paragraphs with "\n". Inside a paragraph w:tab
// becomes "\t" and w:br / w:cr become "\n". Nested paragraphs (text boxes)
// are folded into the enclosing one.
func wordParagraphs(ctx context.Context, r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)

	var (
		paragraphs []string
		current    strings.Builder
		depth      int
		inText     bool
	)
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("decode %s: %w", wordMainPart, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != wordNamespace {
				continue
			}
			switch t.Name.Local {
			case "p":
				if depth == 0 {
					current.Reset()
				}
				depth++
			case "t":
				inText = true
			case "tab":
				if depth > 0 {
					current.WriteByte('\t')
				}
			case "br", "cr":
				if depth > 0 {
					current.WriteByte('\n')
				}
			}
		case xml.EndElement:
			if t.Name.Space != wordNamespace {
				continue
			}
			switch t.Name.Local {
			case "p":
				depth--
				if depth == 0 {
					paragraphs = append(paragraphs, current.String())
				}
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText && depth > 0 {
				current.Write(t)
			}
		}
	}
	return strings.Join(paragraphs, "\n"), nil
}
