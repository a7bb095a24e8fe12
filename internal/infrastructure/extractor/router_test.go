package extractor

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/doc-cataloger/internal/core/domain"
)

func writeFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestRouterReadsPlainTextVerbatim(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "Report.TXT", []byte("  Invoice #42\nTotal: 100 EUR\n"))

	got, err := NewRouter().Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got != "  Invoice #42\nTotal: 100 EUR\n" {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestRouterRejectsInvalidUTF8(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "broken.txt", []byte{0xff, 0xfe, 0x00, 'a'})

	got, err := NewRouter().Extract(context.Background(), path)
	if !domain.IsKind(err, domain.ErrExtraction) {
		t.Fatalf("expected ErrExtraction, got %v", err)
	}
	if got != "" {
		t.Fatalf("expected empty text on failure, got %q", got)
	}
}

func TestRouterUnknownBinaryExtensionIsEmpty(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "empty.bin", []byte{0x00, 0x01, 0x02})

	got, err := NewRouter().Extract(context.Background(), path)
	if err != nil || got != "" {
		t.Fatalf("expected empty text without error, got %q, %v", got, err)
	}
}

func TestRouterGuessesTextTypes(t *testing.T) {
	dir := t.TempDir()
	xmlPath := writeFile(t, dir, "feed.xml", []byte("<note>pay rent</note>"))
	mdPath := writeFile(t, dir, "notes.md", []byte("# Budget\n"))

	router := NewRouter()
	if got, err := router.Extract(context.Background(), xmlPath); err != nil || got != "<note>pay rent</note>" {
		t.Fatalf("xml: got %q, %v", got, err)
	}
	if got, err := router.Extract(context.Background(), mdPath); err != nil || got != "# Budget\n" {
		t.Fatalf("md: got %q, %v", got, err)
	}
}

func TestRouterSniffsBinaryBehindTextExtension(t *testing.T) {
	dir := t.TempDir()
	png := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}
	path := writeFile(t, dir, "screenshot.md", png)

	got, err := NewRouter().Extract(context.Background(), path)
	if err != nil || got != "" {
		t.Fatalf("expected image content to yield empty text, got %q, %v", got, err)
	}
}

func TestRouterExtractsDOCXParagraphs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "letter.docx")

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create docx: %v", err)
	}
	zw := zip.NewWriter(f)
	part, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	body := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:t>Dear</w:t></w:r><w:r><w:t xml:space="preserve"> customer,</w:t></w:r></w:p>
<w:p><w:r><w:t>Amount</w:t><w:tab/><w:t>120</w:t><w:br/><w:t>Due soon</w:t></w:r></w:p>
<w:p/>
</w:body>
</w:document>`
	if _, err := part.Write([]byte(body)); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close file: %v", err)
	}

	got, err := NewRouter().Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	want := "Dear customer,\nAmount\t120\nDue soon\n"
	if got != want {
		t.Fatalf("Extract() = %q, want %q", got, want)
	}
}

func TestRouterLegacyDocFails(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "old.doc", []byte{0xd0, 0xcf, 0x11, 0xe0, 0xa1, 0xb1, 0x1a, 0xe1})

	if _, err := NewRouter().Extract(context.Background(), path); !domain.IsKind(err, domain.ErrExtraction) {
		t.Fatalf("expected ErrExtraction, got %v", err)
	}
}

func TestRouterExtractsXLSXSheets(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ledger.xlsx")

	book := excelize.NewFile()
	if err := book.SetCellValue("Sheet1", "A1", "Item"); err != nil {
		t.Fatalf("set cell: %v", err)
	}
	if err := book.SetCellValue("Sheet1", "B1", "Price"); err != nil {
		t.Fatalf("set cell: %v", err)
	}
	if err := book.SetCellValue("Sheet1", "A2", "Printer paper"); err != nil {
		t.Fatalf("set cell: %v", err)
	}
	if err := book.SetCellValue("Sheet1", "B2", 12); err != nil {
		t.Fatalf("set cell: %v", err)
	}
	if _, err := book.NewSheet("Totals"); err != nil {
		t.Fatalf("new sheet: %v", err)
	}
	if err := book.SetCellValue("Totals", "A1", "Sum"); err != nil {
		t.Fatalf("set cell: %v", err)
	}
	if err := book.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	_ = book.Close()

	got, err := NewRouter().Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	lines := strings.Split(got, "\n")
	if lines[0] != "Sheet1" {
		t.Fatalf("expected sheet name first, got %q", got)
	}
	if !strings.HasPrefix(lines[1], "Item           Price") {
		t.Fatalf("expected aligned header row, got %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "Printer paper  12") {
		t.Fatalf("expected aligned data row, got %q", lines[2])
	}
	if !strings.Contains(got, "\nTotals\nSum") {
		t.Fatalf("expected second sheet, got %q", got)
	}
}

func TestRouterMalformedPDFFails(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "scan.pdf", []byte("%PDF-1.4\nthis is not a real pdf body\n"))

	got, err := NewRouter().Extract(context.Background(), path)
	if !domain.IsKind(err, domain.ErrExtraction) {
		t.Fatalf("expected ErrExtraction, got %v", err)
	}
	if got != "" {
		t.Fatalf("expected empty text, got %q", got)
	}
}

func TestRouterMissingFileFails(t *testing.T) {
	_, err := NewRouter().Extract(context.Background(), filepath.Join(t.TempDir(), "gone.txt"))
	if !domain.IsKind(err, domain.ErrExtraction) {
		t.Fatalf("expected ErrExtraction, got %v", err)
	}
}

func TestRouterHonoursCancelledContext(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.txt", []byte("x"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRouter().Extract(ctx, path)
	if domain.IsKind(err, domain.ErrExtraction) || err == nil {
		t.Fatalf("expected bare context error, got %v", err)
	}
}
