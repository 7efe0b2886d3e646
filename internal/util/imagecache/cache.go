// Package imagecache keeps downloaded source images on disk, keyed by URL.
package imagecache

import (
	"context"
	"crypto/sha256"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	httputil "github.com/jmylchreest/posterize/internal/util/http"
)

// CacheOptions configures image caching behavior.
type CacheOptions struct {
	// CacheDir is where images are stored. If empty, DefaultCacheDir is used.
	CacheDir string

	// AllowOverwrite re-downloads even when a cached copy exists.
	AllowOverwrite bool
}

// DefaultCacheDir returns the default cache directory path.
func DefaultCacheDir() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to determine cache directory: %w", err)
		}
		return filepath.Join(home, ".cache", "posterize", "images"), nil
	}
	return filepath.Join(cacheDir, "posterize", "images"), nil
}

// Filename returns the cache filename for a URL: the first 16 bytes of its
// SHA-256 in hex plus the extension of the URL path (".img" when absent).
func Filename(rawURL string) string {
	hash := sha256.Sum256([]byte(rawURL))

	ext := ""
	if u, err := url.Parse(rawURL); err == nil {
		ext = strings.ToLower(path.Ext(u.Path))
	}
	if ext == "" || len(ext) > 5 {
		ext = ".img"
	}

	return fmt.Sprintf("%x%s", hash[:16], ext)
}

// DownloadAndCache returns the local path of the cached copy of url,
// downloading it first if needed.
func DownloadAndCache(ctx context.Context, rawURL string, opts CacheOptions) (string, error) {
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return "", fmt.Errorf("invalid URL: must start with http:// or https://")
	}

	cacheDir := opts.CacheDir
	if cacheDir == "" {
		defaultDir, err := DefaultCacheDir()
		if err != nil {
			return "", err
		}
		cacheDir = defaultDir
	}

	if err := os.MkdirAll(cacheDir, 0o755); err != nil { // #nosec G301 - Cache directory needs standard permissions
		return "", fmt.Errorf("failed to create cache directory: %w", err)
	}

	cachedPath := filepath.Join(cacheDir, Filename(rawURL))
	if !opts.AllowOverwrite {
		if _, err := os.Stat(cachedPath); err == nil {
			return cachedPath, nil
		}
	}

	data, err := httputil.Fetch(ctx, rawURL, httputil.FetchOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to download image: %w", err)
	}

	// Write under a temporary name so an interrupted download never looks cached.
	tmp := cachedPath + ".part"
	if err := os.WriteFile(tmp, data, 0o644); err != nil { // #nosec G306 - Cache files need standard read permissions
		return "", fmt.Errorf("failed to write cached image: %w", err)
	}
	if err := os.Rename(tmp, cachedPath); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("failed to finalise cached image: %w", err)
	}

	return cachedPath, nil
}
