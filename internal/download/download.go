// Package download fetches mod archives over HTTP. Transfers are staged
// next to the target and renamed into place only when complete, so a failed
// transfer never leaves a half-written archive under the target name.
package download

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cavaliergopher/grab/v3"
)

var client = grab.NewClient()

// partSuffix marks in-flight transfers. Staged files carry no mod archive
// extension, so directory scans never pick them up.
const partSuffix = ".part"

// File downloads url to targetPath. The transfer is written to a staging
// file and renamed over the target on success; on failure the staging file
// is removed and the previous target, if any, is left untouched.
func File(ctx context.Context, url, targetPath string) error {
	staging := targetPath + partSuffix

	req, err := grab.NewRequest(staging, url)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.NoResume = true // Always overwrite, never resume
	req = req.WithContext(ctx)

	resp := client.Do(req)
	if err := resp.Err(); err != nil {
		os.Remove(staging)
		return fmt.Errorf("download failed: %w", err)
	}

	if err := os.Rename(staging, targetPath); err != nil {
		os.Remove(staging)
		return fmt.Errorf("failed to move download into place: %w", err)
	}
	return nil
}

// ValidatePath ensures a path doesn't escape the base directory (path
// traversal protection). It returns the absolute target path.
func ValidatePath(basePath, targetPath string) (string, error) {
	absBase, err := filepath.Abs(basePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base path: %w", err)
	}

	absTarget, err := filepath.Abs(targetPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve target path: %w", err)
	}

	// A bare prefix check would admit siblings like "base-evil".
	if absTarget != absBase && !strings.HasPrefix(absTarget, absBase+string(os.PathSeparator)) {
		return "", fmt.Errorf("path traversal attempt detected")
	}

	return absTarget, nil
}
