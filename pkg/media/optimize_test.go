package media

import (
	"image/color"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
)

func writeImage(t *testing.T, name string, width, height int) string {
	t.Helper()
	img := imaging.New(width, height, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
	path := filepath.Join(t.TempDir(), name)
	if err := imaging.Save(img, path); err != nil {
		t.Fatalf("failed to write image fixture: %v", err)
	}
	return path
}

func TestOptimizeForUploadSmallImageUntouched(t *testing.T) {
	path := writeImage(t, "small.jpg", 800, 600)

	result, err := OptimizeForUpload(path)
	if err != nil {
		t.Fatalf("OptimizeForUpload returned error: %v", err)
	}
	if result != path {
		t.Errorf("small image must be returned unchanged, got %s", result)
	}
}

func TestOptimizeForUploadResizesLargeImage(t *testing.T) {
	path := writeImage(t, "large.png", 4000, 3000)

	result, err := OptimizeForUpload(path)
	if err != nil {
		t.Fatalf("OptimizeForUpload returned error: %v", err)
	}
	if result == path {
		t.Fatal("large image must produce a new file")
	}
	if !strings.HasSuffix(result, "_optimized.jpg") {
		t.Errorf("unexpected optimized path %s", result)
	}

	img, err := imaging.Open(result)
	if err != nil {
		t.Fatalf("failed to reopen optimized image: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() > maxUploadDimension || bounds.Dy() > maxUploadDimension {
		t.Errorf("optimized image still %dx%d", bounds.Dx(), bounds.Dy())
	}
	// Fit keeps the aspect ratio.
	if bounds.Dx() != 2048 || bounds.Dy() != 1536 {
		t.Errorf("expected 2048x1536, got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestOptimizeForUploadMissingFile(t *testing.T) {
	if _, err := OptimizeForUpload(filepath.Join(t.TempDir(), "missing.jpg")); err == nil {
		t.Error("missing file must return an error")
	}
}
