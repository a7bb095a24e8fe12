package localfs

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kirillkom/doc-cataloger/internal/core/domain"
)

func mkdirs(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.MkdirAll(filepath.Join(root, name), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", name, err)
		}
	}
}

func countDirs(t *testing.T, root string) int {
	t.Helper()
	names, err := listFolders(root)
	if err != nil {
		t.Fatalf("listFolders() error = %v", err)
	}
	return len(names)
}

func TestResolveReusesExistingFolder(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "finance_reports")

	folder, err := NewResolver(DefaultResolverConfig()).Resolve(context.Background(), root, "Finance Reports Q3")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if folder.Name != "finance_reports" || folder.Created {
		t.Fatalf("expected existing folder reuse, got %+v", folder)
	}
	if countDirs(t, root) != 1 {
		t.Fatalf("expected no new folder")
	}
}

func TestResolveMatchesFolderContainingKey(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "Archive", "Invoices and receipts")

	folder, err := NewResolver(DefaultResolverConfig()).Resolve(context.Background(), root, "invoices")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if folder.Name != "Invoices and receipts" {
		t.Fatalf("expected containing folder, got %+v", folder)
	}
}

func TestResolveCreatesSanitizedFolder(t *testing.T) {
	root := t.TempDir()
	category := `Contracts: "Vendor" agreements / 2024 renewals and amendments for review`

	folder, err := NewResolver(DefaultResolverConfig()).Resolve(context.Background(), root, category)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !folder.Created {
		t.Fatalf("expected new folder, got %+v", folder)
	}
	if len([]rune(folder.Name)) > 50 {
		t.Fatalf("folder name too long: %q", folder.Name)
	}
	if strings.ContainsAny(folder.Name, `<>:"/\|?*`) {
		t.Fatalf("folder name not sanitized: %q", folder.Name)
	}
	info, err := os.Stat(folder.Path)
	if err != nil || !info.IsDir() {
		t.Fatalf("expected folder on disk at %s: %v", folder.Path, err)
	}
}

func TestResolveIsIdempotentAcrossCalls(t *testing.T) {
	root := t.TempDir()
	resolver := NewResolver(DefaultResolverConfig())

	first, err := resolver.Resolve(context.Background(), root, "Invoices")
	if err != nil {
		t.Fatalf("first Resolve() error = %v", err)
	}
	second, err := resolver.Resolve(context.Background(), root, "Invoices")
	if err != nil {
		t.Fatalf("second Resolve() error = %v", err)
	}
	if first.Path != second.Path || second.Created {
		t.Fatalf("expected reuse, got %+v then %+v", first, second)
	}
	if countDirs(t, root) != 1 {
		t.Fatalf("expected exactly one folder")
	}
}

func TestResolveIgnoresShortFolderForReverseMatch(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "tax")

	folder, err := NewResolver(DefaultResolverConfig()).Resolve(context.Background(), root, "Tax returns")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if folder.Name != "Tax returns" || !folder.Created {
		t.Fatalf("expected new folder, got %+v", folder)
	}
}

func TestResolveGenericFolderAbsorbsLongerCategories(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "Report")
	resolver := NewResolver(DefaultResolverConfig())

	for _, category := range []string{"Quarterly Report Q3", "Report drafts", "Annual report"} {
		folder, err := resolver.Resolve(context.Background(), root, category)
		if err != nil {
			t.Fatalf("Resolve(%q) error = %v", category, err)
		}
		if folder.Name != "Report" || folder.Created {
			t.Fatalf("Resolve(%q) = %+v, want existing Report folder", category, folder)
		}
	}
	if got := countDirs(t, root); got != 1 {
		t.Fatalf("expected 1 folder, got %d", got)
	}
}

func TestResolveSimilarityStrategy(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "annual_finance_reports", "travel_receipts")

	cfg := DefaultResolverConfig()
	cfg.Strategy = MatchSimilarity
	cfg.Threshold = 0.5
	resolver := NewResolver(cfg)

	folder, err := resolver.Resolve(context.Background(), root, "Finance reports annual")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if folder.Name != "annual_finance_reports" {
		t.Fatalf("expected similar folder, got %+v", folder)
	}

	folder, err = resolver.Resolve(context.Background(), root, "Finance memo")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !folder.Created {
		t.Fatalf("expected new folder below threshold, got %+v", folder)
	}
}

func TestResolveRejectsEmptyCategory(t *testing.T) {
	_, err := NewResolver(DefaultResolverConfig()).Resolve(context.Background(), t.TempDir(), "  ")
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestResolveSkipsLogFile(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "invoices.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	folder, err := NewResolver(DefaultResolverConfig()).Resolve(context.Background(), root, "Invoices")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !folder.Created || folder.Name != "Invoices" {
		t.Fatalf("expected a new folder next to the plain file, got %+v", folder)
	}
}
