package usecase

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"

	"github.com/fbautopost/backend/core/config"
	domainPost "github.com/fbautopost/backend/domains/post"
	"github.com/fbautopost/backend/infrastructure/facebook"
	"github.com/fbautopost/backend/infrastructure/history"
	"github.com/fbautopost/backend/infrastructure/valkey"
	"github.com/fbautopost/backend/pkg/media"
	"github.com/fbautopost/backend/pkg/utils"
	"github.com/fbautopost/backend/ui/websocket"
	"github.com/fbautopost/backend/validations"
)

const pageInfoCacheTTL = 10 * time.Minute

type servicePost struct {
	client  *facebook.Client
	archive *history.Repository
	vk      *valkey.Client
	preview LinkPreviewFetcher
}

// LinkPreviewFetcher is implemented by pkg/linkpreview.
type LinkPreviewFetcher interface {
	Fetch(ctx context.Context, url string) (domainPost.LinkPreview, error)
}

func NewPostService(client *facebook.Client, archive *history.Repository, vk *valkey.Client, preview LinkPreviewFetcher) domainPost.IPostUsecase {
	return &servicePost{
		client:  client,
		archive: archive,
		vk:      vk,
		preview: preview,
	}
}

func (service servicePost) broadcast(code, message string, result any) {
	select {
	case websocket.Broadcast <- websocket.BroadcastMessage{
		Code:    code,
		Message: message,
		Result:  result,
	}:
	default:
	}
}

func (service servicePost) record(ctx context.Context, record domainPost.PublishRecord) {
	if service.archive == nil {
		return
	}
	if err := service.archive.Record(ctx, record); err != nil {
		// The post is already live; history is best-effort.
		logrus.Warnf("[PUBLISHER] Failed to archive publish %s: %v", record.FacebookPostID, err)
	}
}

func (service servicePost) PublishText(ctx context.Context, request domainPost.PublishTextRequest) (domainPost.PublishResponse, error) {
	if err := validations.ValidatePublishText(ctx, request); err != nil {
		return domainPost.PublishResponse{}, err
	}

	postID, err := service.client.PublishText(ctx, request.Message, request.Link)
	if err != nil {
		return domainPost.PublishResponse{}, err
	}

	link := ""
	if request.Link != nil {
		link = *request.Link
	}
	service.record(ctx, domainPost.PublishRecord{
		ID:             uuid.NewString(),
		PostType:       "text",
		Message:        request.Message,
		Link:           link,
		FacebookPostID: postID,
		PostedAt:       time.Now().UTC(),
	})

	response := domainPost.PublishResponse{PostID: postID, PostType: "text", Status: "published"}
	service.broadcast("POST_PUBLISHED", "Post published to page", response)
	return response, nil
}

func (service servicePost) PublishImage(ctx context.Context, request domainPost.PublishImageRequest) (domainPost.PublishResponse, error) {
	if err := validations.ValidatePublishImage(ctx, request); err != nil {
		return domainPost.PublishResponse{}, err
	}

	imagePath := request.ImagePath
	if request.Image != nil {
		saved, err := service.saveUpload(request.Image)
		if err != nil {
			return domainPost.PublishResponse{}, err
		}
		defer func() {
			if err := utils.RemoveFile(saved); err != nil {
				logrus.Warnf("[PUBLISHER] Failed to clean up upload %s: %v", saved, err)
			}
		}()
		imagePath = saved
	}

	if _, err := validations.ValidateImageFile(imagePath, config.Global.Media); err != nil {
		return domainPost.PublishResponse{}, err
	}

	uploadPath := imagePath
	if config.Global.Media.OptimizeImages {
		optimized, err := media.OptimizeForUpload(imagePath)
		if err != nil {
			logrus.Warnf("[PUBLISHER] Image optimization failed, uploading original: %v", err)
		} else {
			uploadPath = optimized
			if optimized != imagePath {
				defer func() {
					_ = utils.RemoveFile(optimized)
				}()
			}
		}
	}

	postID, err := service.client.PublishImage(ctx, request.Message, uploadPath, request.AltText)
	if err != nil {
		return domainPost.PublishResponse{}, err
	}

	service.record(ctx, domainPost.PublishRecord{
		ID:             uuid.NewString(),
		PostType:       "image",
		Message:        request.Message,
		ImagePath:      imagePath,
		FacebookPostID: postID,
		PostedAt:       time.Now().UTC(),
	})

	response := domainPost.PublishResponse{PostID: postID, PostType: "image", Status: "published"}
	service.broadcast("POST_PUBLISHED", "Image published to page", response)
	return response, nil
}

// saveUpload stores a multipart upload under the media directory with a
// fresh name, keeping the original extension for format validation.
func (service servicePost) saveUpload(file *multipart.FileHeader) (string, error) {
	mediaDir := config.Global.Paths.Media
	if err := utils.CreateFolder(mediaDir); err != nil {
		return "", err
	}

	path := filepath.Join(mediaDir, uuid.NewString()+filepath.Ext(file.Filename))
	if err := fasthttp.SaveMultipartFile(file, path); err != nil {
		return "", fmt.Errorf("failed to save uploaded image: %w", err)
	}
	return path, nil
}

func (service servicePost) DeletePost(ctx context.Context, postID string) error {
	if postID == "" {
		return fmt.Errorf("post id is required")
	}
	if err := service.client.DeletePost(ctx, postID); err != nil {
		return err
	}

	logrus.Infof("[PUBLISHER] Deleted page post %s", postID)
	service.broadcast("POST_DELETED", "Page post deleted", map[string]string{"post_id": postID})
	return nil
}

func (service servicePost) PageInfo(ctx context.Context) (domainPost.PageInfo, error) {
	const cacheKey = "page:info"

	if service.vk != nil {
		var cached domainPost.PageInfo
		if found, err := service.vk.GetJSON(ctx, cacheKey, &cached); err == nil && found {
			return cached, nil
		}
	}

	info, err := service.client.PageInfo(ctx)
	if err != nil {
		return domainPost.PageInfo{}, err
	}

	if service.vk != nil {
		if err := service.vk.SetJSON(ctx, cacheKey, info, pageInfoCacheTTL); err != nil {
			logrus.Debugf("[PUBLISHER] Failed to cache page info: %v", err)
		}
	}
	return info, nil
}

func (service servicePost) RecentPosts(ctx context.Context, limit int) ([]domainPost.PagePost, error) {
	return service.client.RecentPosts(ctx, limit)
}

func (service servicePost) PreviewLink(ctx context.Context, url string) (domainPost.LinkPreview, error) {
	if url == "" {
		return domainPost.LinkPreview{}, fmt.Errorf("url is required")
	}
	return service.preview.Fetch(ctx, url)
}

func (service servicePost) History(ctx context.Context, limit int) ([]domainPost.PublishRecord, error) {
	if service.archive == nil {
		return []domainPost.PublishRecord{}, nil
	}
	return service.archive.Recent(ctx, limit)
}

func (service servicePost) Usage(ctx context.Context) (domainPost.APIUsage, error) {
	return service.client.Usage(), nil
}
