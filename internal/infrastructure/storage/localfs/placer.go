package localfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/kirillkom/doc-cataloger/internal/core/domain"
)

const (
	CollisionOverwrite = "overwrite"
	CollisionRename    = "rename"

	fallbackFileName  = "file"
	maxRenameAttempts = 1000
)

type PlacerConfig struct {
	FilenameMaxLength int
	PathMaxLength     int
	CollisionPolicy   string
}

func DefaultPlacerConfig() PlacerConfig {
	return PlacerConfig{
		FilenameMaxLength: 100,
		PathMaxLength:     260,
		CollisionPolicy:   CollisionOverwrite,
	}
}

func (c PlacerConfig) normalize() PlacerConfig {
	out := c
	def := DefaultPlacerConfig()
	if out.FilenameMaxLength <= 0 {
		out.FilenameMaxLength = def.FilenameMaxLength
	}
	if out.PathMaxLength <= 0 {
		out.PathMaxLength = def.PathMaxLength
	}
	if out.CollisionPolicy != CollisionRename {
		out.CollisionPolicy = CollisionOverwrite
	}
	return out
}

// Placer copies source files into category folders. Sources are never modified.
type Placer struct {
	cfg PlacerConfig
}

func NewPlacer(cfg PlacerConfig) *Placer {
	return &Placer{cfg: cfg.normalize()}
}

func (p *Placer) Place(ctx context.Context, sourcePath, targetDir, filename string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := Sanitize(filename, p.cfg.FilenameMaxLength)
	if strings.TrimSpace(name) == "" || name == "." || name == ".." {
		name = fallbackFileName
	}

	dest, err := p.destination(targetDir, name)
	if err != nil {
		return "", err
	}
	// Shortening may have produced a directory other than targetDir.
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", domain.WrapError(domain.ErrPlacement, "create destination dir", err)
	}
	if err := copyFile(sourcePath, dest); err != nil {
		return "", err
	}
	return dest, nil
}

func (p *Placer) destination(targetDir, name string) (string, error) {
	dest, err := boundPath(targetDir, name, p.cfg.PathMaxLength)
	if err != nil || p.cfg.CollisionPolicy != CollisionRename {
		return dest, err
	}

	// Candidates live next to the bounded path; the stem gives way to the
	// " (N)" marker so the marker itself is never cut.
	dir, bounded := filepath.Split(dest)
	ext := filepath.Ext(bounded)
	stem := strings.TrimSuffix(bounded, ext)
	for i := 1; exists(dest); i++ {
		if i > maxRenameAttempts {
			return "", domain.WrapError(domain.ErrPlacement, "pick destination name", fmt.Errorf("too many collisions for %s", name))
		}
		marker := fmt.Sprintf(" (%d)", i)
		dest, err = renameCandidate(dir, stem, marker, ext, p.cfg.FilenameMaxLength, p.cfg.PathMaxLength)
		if err != nil {
			return "", err
		}
	}
	return dest, nil
}

func renameCandidate(dir, stem, marker, ext string, maxName, maxPath int) (string, error) {
	nameExcess := runeLen(stem+marker+ext) - maxName
	pathExcess := runeLen(filepath.Join(dir, stem+marker+ext)) - maxPath
	cut := max(nameExcess, pathExcess, 0)
	if cut > runeLen(stem) {
		return "", domain.WrapError(domain.ErrPlacement, "pick destination name",
			fmt.Errorf("no room for %q in %s", marker, dir))
	}
	return filepath.Join(dir, Truncate(stem, runeLen(stem)-cut)+marker+ext), nil
}

// boundPath joins dir and name and, when the result exceeds maxLen runes,
// shortens the last directory component first and the file stem second so
// the final path is exactly maxLen long.
func boundPath(dir, name string, maxLen int) (string, error) {
	full := filepath.Join(dir, name)
	excess := runeLen(full) - maxLen
	if excess <= 0 {
		return full, nil
	}

	parent, base := filepath.Split(filepath.Clean(dir))
	if base != "" {
		cut := min(excess, runeLen(base)-1)
		base = Truncate(base, runeLen(base)-cut)
		if base == "." || base == ".." {
			base = strings.Repeat("_", len(base))
		}
		excess -= cut
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	if excess > 0 && stem != "" {
		cut := min(excess, runeLen(stem)-1)
		stem = Truncate(stem, runeLen(stem)-cut)
		excess -= cut
	}
	if excess > 0 {
		return "", domain.WrapError(domain.ErrPlacement, "bound destination path",
			fmt.Errorf("%s exceeds %d characters", full, maxLen))
	}
	return filepath.Join(parent, base, stem+ext), nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.WrapError(domain.ErrSourceMissing, "open source", err)
		}
		return domain.WrapError(domain.ErrPlacement, "open source", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return domain.WrapError(domain.ErrPlacement, "stat source", err)
	}
	// Opening the destination truncates it, which would wipe a source that
	// is already sitting at the destination.
	if dstInfo, err := os.Stat(dst); err == nil && os.SameFile(info, dstInfo) {
		slog.Debug("file_already_in_place", "path", dst)
		return nil
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return domain.WrapError(domain.ErrPlacement, "create destination", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return domain.WrapError(domain.ErrPlacement, "copy file", err)
	}
	if err := out.Close(); err != nil {
		return domain.WrapError(domain.ErrPlacement, "close destination", err)
	}
	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return domain.WrapError(domain.ErrPlacement, "chmod destination", err)
	}
	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
