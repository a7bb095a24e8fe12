package plaintext

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestExtractGuessedSkipsNonTextTypes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photo.jpg")
	if err := os.WriteFile(path, []byte("not really a jpeg"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := NewExtractor().ExtractGuessed(context.Background(), path)
	if err != nil || got != "" {
		t.Fatalf("expected empty text, got %q, %v", got, err)
	}
}

func TestExtractGuessedReadsRegisteredTextTypes(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"data.csv", "app.log", "conf.yaml", "guide.rst"} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("a,b\n"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		got, err := NewExtractor().ExtractGuessed(context.Background(), path)
		if err != nil || got != "a,b\n" {
			t.Fatalf("%s: got %q, %v", name, got, err)
		}
	}
}

func TestExtractGuessedEmptyTextFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blank.md")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := NewExtractor().ExtractGuessed(context.Background(), path)
	if err != nil || got != "" {
		t.Fatalf("expected empty text, got %q, %v", got, err)
	}
}
