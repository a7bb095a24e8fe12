package localfs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/kirillkom/doc-cataloger/internal/core/domain"
)

const (
	MatchSubstring  = "substring"
	MatchSimilarity = "similarity"

	fallbackFolderName = "Uncategorized"

	// Minimum folder key length for a folder to absorb a category whose key
	// contains it. Shorter names such as "tax" are left alone.
	minReverseMatchLen = 4
)

type ResolverConfig struct {
	Strategy         string
	Threshold        float64
	LookupKeyLength  int
	FolderNameLength int
}

func DefaultResolverConfig() ResolverConfig {
	return ResolverConfig{
		Strategy:         MatchSubstring,
		Threshold:        0.6,
		LookupKeyLength:  30,
		FolderNameLength: 50,
	}
}

func (c ResolverConfig) normalize() ResolverConfig {
	out := c
	def := DefaultResolverConfig()
	if out.Strategy != MatchSimilarity {
		out.Strategy = MatchSubstring
	}
	if out.Threshold <= 0 || out.Threshold > 1 {
		out.Threshold = def.Threshold
	}
	if out.LookupKeyLength <= 0 {
		out.LookupKeyLength = def.LookupKeyLength
	}
	if out.FolderNameLength <= 0 {
		out.FolderNameLength = def.FolderNameLength
	}
	return out
}

// Resolver picks the output folder for a category. Existing folders win over
// new ones; matching uses a short canonical key, creation uses a longer name.
type Resolver struct {
	cfg ResolverConfig
}

func NewResolver(cfg ResolverConfig) *Resolver {
	return &Resolver{cfg: cfg.normalize()}
}

func (r *Resolver) Resolve(ctx context.Context, outputRoot, category string) (domain.CategoryFolder, error) {
	if err := ctx.Err(); err != nil {
		return domain.CategoryFolder{}, err
	}
	if strings.TrimSpace(category) == "" {
		return domain.CategoryFolder{}, domain.WrapError(domain.ErrInvalidInput, "resolve category", errors.New("empty category"))
	}

	if err := os.MkdirAll(outputRoot, 0o755); err != nil {
		return domain.CategoryFolder{}, domain.WrapError(domain.ErrPlacement, "create output root", err)
	}
	existing, err := listFolders(outputRoot)
	if err != nil {
		return domain.CategoryFolder{}, domain.WrapError(domain.ErrPlacement, "list output folders", err)
	}

	key := canonicalKey(Sanitize(Truncate(category, r.cfg.LookupKeyLength), r.cfg.LookupKeyLength))
	if name, ok := r.match(key, existing); ok {
		return domain.CategoryFolder{Name: name, Path: filepath.Join(outputRoot, name)}, nil
	}

	name := folderName(category, r.cfg.FolderNameLength)
	path := filepath.Join(outputRoot, name)
	if err := os.MkdirAll(path, 0o755); err != nil {
		return domain.CategoryFolder{}, domain.WrapError(domain.ErrPlacement, "create category folder", err)
	}
	slog.Info("category_folder_created", "folder", name, "key", key)
	return domain.CategoryFolder{Name: name, Path: path, Created: true}, nil
}

func (r *Resolver) match(key string, folders []string) (string, bool) {
	if key == "" {
		return "", false
	}
	if r.cfg.Strategy == MatchSimilarity {
		return matchSimilar(key, folders, r.cfg.Threshold)
	}
	return matchSubstring(key, folders)
}

// matchSubstring reuses a folder whose key contains the category key. It also
// reuses a folder whose key of minReverseMatchLen or more runes is contained in
// the category key, so a generic existing folder such as "Report" absorbs
// "Quarterly Report Q3", "Report drafts" and any other category naming it.
func matchSubstring(key string, folders []string) (string, bool) {
	for _, name := range folders {
		folderKey := canonicalKey(name)
		if folderKey == "" {
			continue
		}
		if strings.Contains(folderKey, key) {
			return name, true
		}
		if runeLen(folderKey) >= minReverseMatchLen && strings.Contains(key, folderKey) {
			return name, true
		}
	}
	return "", false
}

func matchSimilar(key string, folders []string, threshold float64) (string, bool) {
	keyTokens := tokenSet(key)
	best, bestScore := "", 0.0
	for _, name := range folders {
		score := jaccard(keyTokens, tokenSet(canonicalKey(name)))
		if score > bestScore {
			best, bestScore = name, score
		}
	}
	if best == "" || bestScore < threshold {
		return "", false
	}
	return best, true
}

func tokenSet(key string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, tok := range strings.Split(key, "_") {
		if tok != "" {
			out[tok] = struct{}{}
		}
	}
	return out
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	shared := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(a)+len(b)-shared)
}

func folderName(category string, maxLen int) string {
	name := strings.TrimSpace(Sanitize(Truncate(category, maxLen), maxLen))
	if name == "" || name == "." || name == ".." {
		return fallbackFolderName
	}
	return name
}

// listFolders returns subdirectory names sorted by name.
func listFolders(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", root, err)
	}
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			out = append(out, entry.Name())
		}
	}
	return out, nil
}
