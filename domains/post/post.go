package post

import (
	"context"
	"mime/multipart"
	"time"
)

type PublishTextRequest struct {
	Message string  `json:"message" form:"message"`
	Link    *string `json:"link,omitempty" form:"link"`
}

type PublishImageRequest struct {
	Message   string  `json:"message" form:"message"`
	ImagePath string  `json:"image_path" form:"image_path"`
	AltText   *string `json:"alt_text,omitempty" form:"alt_text"`

	// Image is set when the caller uploads the file in the request instead
	// of referencing a server-side path.
	Image *multipart.FileHeader `json:"-" form:"image"`
}

type PublishResponse struct {
	PostID   string `json:"post_id"`
	PostType string `json:"post_type"`
	Status   string `json:"status"`
}

type PageInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	About    string `json:"about,omitempty"`
	Website  string `json:"website,omitempty"`
}

type PagePost struct {
	ID           string `json:"id"`
	Message      string `json:"message,omitempty"`
	CreatedTime  string `json:"created_time,omitempty"`
	PermalinkURL string `json:"permalink_url,omitempty"`
}

type LinkPreview struct {
	URL         string `json:"url"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
}

// PublishRecord is one archived publish, kept in the history database.
type PublishRecord struct {
	ID             string    `json:"id" gorm:"primaryKey"`
	PostType       string    `json:"post_type"`
	Message        string    `json:"message"`
	Link           string    `json:"link,omitempty"`
	ImagePath      string    `json:"image_path,omitempty"`
	FacebookPostID string    `json:"facebook_post_id"`
	PostedAt       time.Time `json:"posted_at"`
}

type APIUsage struct {
	CallsMade      int       `json:"calls_made"`
	CallsRemaining int       `json:"calls_remaining"`
	RateLimit      int       `json:"rate_limit"`
	WindowSeconds  int       `json:"window_seconds"`
	ResetTime      time.Time `json:"reset_time"`
}

type IPostUsecase interface {
	PublishText(ctx context.Context, request PublishTextRequest) (PublishResponse, error)
	PublishImage(ctx context.Context, request PublishImageRequest) (PublishResponse, error)
	DeletePost(ctx context.Context, postID string) error
	PageInfo(ctx context.Context) (PageInfo, error)
	RecentPosts(ctx context.Context, limit int) ([]PagePost, error)
	PreviewLink(ctx context.Context, url string) (LinkPreview, error)
	History(ctx context.Context, limit int) ([]PublishRecord, error)
	Usage(ctx context.Context) (APIUsage, error)
}
