package validations

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/dustin/go-humanize"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/fbautopost/backend/core/config"
	domainPost "github.com/fbautopost/backend/domains/post"
	pkgError "github.com/fbautopost/backend/pkg/error"
)

// Facebook's documented ceiling for a single post body.
const (
	maxMessageLength = 63206
	maxLineBreaks    = 100
)

func validateMessage(message string) error {
	if len([]rune(message)) > maxMessageLength {
		return pkgError.ValidationError(
			fmt.Sprintf("message exceeds the %d character limit", maxMessageLength))
	}
	if strings.Count(message, "\n") > maxLineBreaks {
		return pkgError.ValidationError(
			fmt.Sprintf("message exceeds the %d line break limit", maxLineBreaks))
	}
	return nil
}

func ValidatePublishText(ctx context.Context, request domainPost.PublishTextRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.Message, validation.Required),
		validation.Field(&request.Link, is.URL),
	)
	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return validateMessage(request.Message)
}

func ValidatePublishImage(ctx context.Context, request domainPost.PublishImageRequest) error {
	if request.Image == nil {
		err := validation.ValidateStructWithContext(ctx, &request,
			validation.Field(&request.ImagePath, validation.Required),
		)
		if err != nil {
			return pkgError.ValidationError(err.Error())
		}
	}

	return validateMessage(request.Message)
}

// ImageMeta describes a validated image file on disk.
type ImageMeta struct {
	Path   string
	Format string
	Size   int64
	Width  int
	Height int
}

// ValidateImageFile checks existence, extension, size and pixel dimensions
// against the configured media limits.
func ValidateImageFile(path string, media config.MediaConfig) (ImageMeta, error) {
	info, err := os.Stat(path)
	if err != nil {
		return ImageMeta{}, pkgError.ValidationError(fmt.Sprintf("image file not found: %s", path))
	}

	ext := strings.ToLower(filepath.Ext(path))
	allowed := false
	for _, format := range media.AllowedFormats {
		if ext == format {
			allowed = true
			break
		}
	}
	if !allowed {
		return ImageMeta{}, pkgError.ValidationError(
			fmt.Sprintf("unsupported image format %s, allowed: %s", ext, strings.Join(media.AllowedFormats, ", ")))
	}

	if info.Size() > media.MaxImageSize {
		return ImageMeta{}, pkgError.ValidationError(
			fmt.Sprintf("image is %s, maximum allowed is %s",
				humanize.Bytes(uint64(info.Size())), humanize.Bytes(uint64(media.MaxImageSize))))
	}

	img, err := imaging.Open(path)
	if err != nil {
		return ImageMeta{}, pkgError.ValidationError(fmt.Sprintf("unreadable image file: %v", err))
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width < media.MinDimension || height < media.MinDimension {
		return ImageMeta{}, pkgError.ValidationError(
			fmt.Sprintf("image is %dx%d, both dimensions must be at least %dpx", width, height, media.MinDimension))
	}
	if width > media.MaxDimension || height > media.MaxDimension {
		return ImageMeta{}, pkgError.ValidationError(
			fmt.Sprintf("image is %dx%d, neither dimension may exceed %dpx", width, height, media.MaxDimension))
	}

	return ImageMeta{
		Path:   path,
		Format: strings.TrimPrefix(ext, "."),
		Size:   info.Size(),
		Width:  width,
		Height: height,
	}, nil
}
