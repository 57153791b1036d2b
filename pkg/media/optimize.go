// Package media prepares images for the Graph API.
package media

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
)

const (
	// Facebook resizes anything larger than this anyway, so uploading more
	// pixels only wastes bandwidth.
	maxUploadDimension = 2048
	jpegQuality        = 85
)

// OptimizeForUpload downscales and re-encodes the image when that shrinks
// the upload, writing the result next to the original with an _optimized
// suffix. Returns the path to use for the upload, which is the original
// when no optimization was needed.
func OptimizeForUpload(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to stat image: %w", err)
	}

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("failed to open image: %w", err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= maxUploadDimension && height <= maxUploadDimension {
		return path, nil
	}

	resized := imaging.Fit(img, maxUploadDimension, maxUploadDimension, imaging.Lanczos)

	ext := filepath.Ext(path)
	optimizedPath := strings.TrimSuffix(path, ext) + "_optimized.jpg"
	if err := imaging.Save(resized, optimizedPath, imaging.JPEGQuality(jpegQuality)); err != nil {
		return "", fmt.Errorf("failed to save optimized image: %w", err)
	}

	optimizedInfo, err := os.Stat(optimizedPath)
	if err != nil {
		return "", fmt.Errorf("failed to stat optimized image: %w", err)
	}

	logrus.Infof("[MEDIA] Optimized %s: %dx%d %s -> %dx%d %s",
		filepath.Base(path),
		width, height, humanize.Bytes(uint64(info.Size())),
		resized.Bounds().Dx(), resized.Bounds().Dy(), humanize.Bytes(uint64(optimizedInfo.Size())))
	return optimizedPath, nil
}
