package extractor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"docqa/internal/logger"
)

// pdftoppm names its output <prefix>-<n>.jpg with n 1-based and zero padded
// to the width of the page count.
var renderedPage = regexp.MustCompile(`^render-0*(\d+)\.jpg$`)

// rasterize renders every page to <scratch>/page_<n>.jpg with n zero-based.
func (e *Extractor) rasterize(ctx context.Context, path string) (map[int]string, string, error) {
	if err := os.MkdirAll(e.tempDir, 0o755); err != nil {
		return nil, "", fmt.Errorf("create temp dir: %w", err)
	}
	dir, err := os.MkdirTemp(e.tempDir, "pages-")
	if err != nil {
		return nil, "", fmt.Errorf("create scratch dir: %w", err)
	}

	args := []string{"-jpeg", "-r", strconv.Itoa(e.dpi), path, filepath.Join(dir, "render")}
	if _, err := e.runner.Run(ctx, e.pdftoppm, args...); err != nil {
		return nil, dir, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, dir, fmt.Errorf("read scratch dir: %w", err)
	}

	images := make(map[int]string)
	for _, entry := range entries {
		m := renderedPage.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 {
			continue
		}
		target := filepath.Join(dir, fmt.Sprintf("page_%d.jpg", n-1))
		if err := os.Rename(filepath.Join(dir, entry.Name()), target); err != nil {
			return nil, dir, fmt.Errorf("rename page image: %w", err)
		}
		images[n-1] = target
	}

	logger.Debug("Rendered %d pages at %d DPI into %s", len(images), e.dpi, dir)
	return images, dir, nil
}
