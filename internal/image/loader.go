// Package image loads source images for posterization and writes results back out.
package image

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format
	_ "image/jpeg" // Register JPEG format
	"image/png"
	"os"
	"path/filepath"
	"slices"
	"strings"

	_ "golang.org/x/image/webp" // Register WebP format

	"github.com/jmylchreest/posterize/internal/util/imagecache"
)

// ErrUnsupportedFormat is returned when a file cannot be decoded as a known image format.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Loader handles loading images from various sources.
type Loader interface {
	// Load loads an image from the given path or URL.
	Load(ctx context.Context, path string) (image.Image, error)
}

// FileLoader loads images from the local filesystem.
type FileLoader struct{}

// NewFileLoader creates a new FileLoader instance.
func NewFileLoader() *FileLoader {
	return &FileLoader{}
}

// Load decodes the image at path. Supported formats: JPEG, PNG, GIF, WebP.
func (l *FileLoader) Load(_ context.Context, path string) (image.Image, error) {
	if err := checkFile(path); err != nil {
		return nil, err
	}

	file, err := os.Open(path) // #nosec G304 - User-specified image path, intended to be read
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	img, format, err := image.Decode(file)
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
		}
		return nil, fmt.Errorf("failed to decode image (format: %s): %w", format, err)
	}

	return img, nil
}

func checkFile(path string) error {
	if path == "" {
		return fmt.Errorf("image path cannot be empty")
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("image file not found: %s: %w", path, err)
		}
		return fmt.Errorf("failed to stat image file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", path)
	}
	return nil
}

// IsURL reports whether path is an http(s) URL.
func IsURL(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

// SmartLoader loads images from local files and HTTP(S) URLs. Downloads are
// kept in the image cache so repeated runs on the same URL stay offline.
type SmartLoader struct {
	fileLoader *FileLoader
	cacheDir   string
}

// NewSmartLoader creates a SmartLoader. An empty cacheDir selects the default
// cache location.
func NewSmartLoader(cacheDir string) *SmartLoader {
	return &SmartLoader{
		fileLoader: NewFileLoader(),
		cacheDir:   cacheDir,
	}
}

// Load loads an image from either a local file path or HTTP(S) URL.
func (l *SmartLoader) Load(ctx context.Context, path string) (image.Image, error) {
	if !IsURL(path) {
		return l.fileLoader.Load(ctx, path)
	}

	cached, err := imagecache.DownloadAndCache(ctx, path, imagecache.CacheOptions{CacheDir: l.cacheDir})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image from URL: %w", err)
	}
	return l.fileLoader.Load(ctx, cached)
}

// ValidateImagePath checks that path is a URL or a decodable local image.
// URLs are not fetched here.
func ValidateImagePath(path string) error {
	if IsURL(path) {
		return nil
	}
	if err := checkFile(path); err != nil {
		return err
	}

	file, err := os.Open(path) // #nosec G304 - User-specified image path, intended to be read
	if err != nil {
		return fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	if _, _, err := image.DecodeConfig(file); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUnsupportedFormat, path, err)
	}
	return nil
}

// SupportedImageExtensions returns a list of supported image file extensions.
func SupportedImageExtensions() []string {
	return []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}
}

// IsImageFile checks if a file has a supported image extension.
func IsImageFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return slices.Contains(SupportedImageExtensions(), ext)
}

// OutputPath derives "<dir>/<name>-<suffix>.png" from a source path or URL.
func OutputPath(source, suffix string) string {
	base := source
	if IsURL(source) {
		base = strings.SplitN(base, "?", 2)[0]
		base = base[strings.LastIndex(base, "/")+1:]
		if base == "" {
			base = "image"
		}
	}
	name := strings.TrimSuffix(filepath.Base(base), filepath.Ext(base))
	dir := "."
	if !IsURL(source) {
		dir = filepath.Dir(source)
	}
	return filepath.Join(dir, fmt.Sprintf("%s-%s.png", name, suffix))
}

// SavePNG encodes img as PNG at path, creating parent directories as needed.
// The file is written to a temporary name first and renamed into place.
func SavePNG(path string, img image.Image) error {
	if path == "" {
		return fmt.Errorf("output path cannot be empty")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil { // #nosec G301 - Output directory needs standard permissions
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := png.Encode(tmp, img); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil { // #nosec G302 - Output images need standard read permissions
		return fmt.Errorf("failed to set output permissions: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move output into place: %w", err)
	}

	return nil
}

// GetImageDimensions returns the width and height of an image without fully loading it.
func GetImageDimensions(path string) (width, height int, err error) {
	file, err := os.Open(path) // #nosec G304 - User-specified image path, intended to be read
	if err != nil {
		return 0, 0, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	config, _, err := image.DecodeConfig(file)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to decode image config: %w", err)
	}

	return config.Width, config.Height, nil
}
