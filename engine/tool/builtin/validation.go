package builtin

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// NormalizeRoot cleans and absolutizes a configured sandbox root.
func NormalizeRoot(root string) (string, error) {
	if root == "" {
		return "", errors.New("sandbox root directory is empty")
	}
	clean := filepath.Clean(root)
	if !filepath.IsAbs(clean) {
		abs, err := filepath.Abs(clean)
		if err != nil {
			return "", fmt.Errorf("failed to resolve absolute root: %w", err)
		}
		clean = abs
	}
	return clean, nil
}

// MapToRoot projects a canonical virtual path from the validation gate onto
// a host root directory. The drive prefix of a Windows-canonical path is
// discarded: inside the sandbox every drive maps to the same root. The
// result is re-verified to stay under the root even though canonical paths
// carry no unresolved parent segments.
func MapToRoot(root string, canonical string) (string, error) {
	normalizedRoot, err := NormalizeRoot(root)
	if err != nil {
		return "", err
	}
	relative := stripDrivePrefix(canonical)
	relative = strings.TrimPrefix(relative, "/")
	joined := filepath.Join(normalizedRoot, filepath.FromSlash(relative))
	cleaned := filepath.Clean(joined)
	if err := EnsureWithinRoot(normalizedRoot, cleaned); err != nil {
		return "", err
	}
	return cleaned, nil
}

// EnsureWithinRoot verifies a host path resolves within the normalized root.
func EnsureWithinRoot(root string, candidate string) error {
	relative, err := filepath.Rel(root, candidate)
	if err != nil {
		return fmt.Errorf("failed to compute relative path: %w", err)
	}
	if relative == ".." || strings.HasPrefix(relative, ".."+string(filepath.Separator)) {
		return fmt.Errorf("path escapes sandbox root: %s", candidate)
	}
	return nil
}

// stripDrivePrefix removes a "<letter>:" prefix from a canonical path.
func stripDrivePrefix(canonical string) string {
	if len(canonical) >= 2 && canonical[1] == ':' && isDriveLetter(canonical[0]) {
		return canonical[2:]
	}
	return canonical
}

func isDriveLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// RejectSymlink returns an error when the provided file info represents a symlink.
func RejectSymlink(info fs.FileInfo) error {
	if info == nil {
		return errors.New("file info is required")
	}
	if info.Mode()&fs.ModeSymlink != 0 {
		return errors.New("symbolic links are not permitted")
	}
	return nil
}

// CheckContext returns the context error if cancellation has been signaled.
func CheckContext(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return nil
}
