package scheduler

import (
	"context"
	"fmt"
	"time"
)

type PostType string

const (
	PostTypeText  PostType = "text"
	PostTypeImage PostType = "image"
)

type PostStatus string

const (
	PostStatusScheduled PostStatus = "scheduled"
	PostStatusPending   PostStatus = "pending"
	PostStatusPosted    PostStatus = "posted"
	PostStatusFailed    PostStatus = "failed"
	PostStatusCancelled PostStatus = "cancelled"
)

// AllStatuses lists every status in a stable order, used for stats breakdowns.
var AllStatuses = []PostStatus{
	PostStatusScheduled,
	PostStatusPending,
	PostStatusPosted,
	PostStatusFailed,
	PostStatusCancelled,
}

// ParsePostStatus rejects unknown values instead of defaulting, so format
// drift in the queue file surfaces on load.
func ParsePostStatus(s string) (PostStatus, error) {
	switch PostStatus(s) {
	case PostStatusScheduled, PostStatusPending, PostStatusPosted, PostStatusFailed, PostStatusCancelled:
		return PostStatus(s), nil
	}
	return "", fmt.Errorf("unknown post status %q", s)
}

type RecurrenceType string

const (
	RecurrenceNone    RecurrenceType = "none"
	RecurrenceDaily   RecurrenceType = "daily"
	RecurrenceWeekly  RecurrenceType = "weekly"
	RecurrenceMonthly RecurrenceType = "monthly"
)

func ParseRecurrence(s string) (RecurrenceType, error) {
	switch RecurrenceType(s) {
	case RecurrenceNone, RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly:
		return RecurrenceType(s), nil
	}
	return "", fmt.Errorf("unknown recurrence %q", s)
}

// ScheduledPost is one row of the durable posting queue. Optional fields are
// pointers so the persisted JSON carries explicit nulls.
type ScheduledPost struct {
	ID            string         `json:"id"`
	PostType      PostType       `json:"post_type"`
	Message       string         `json:"message"`
	ScheduleTime  time.Time      `json:"schedule_time"`
	Status        PostStatus     `json:"status"`
	Recurrence    RecurrenceType `json:"recurrence"`
	RecurrenceEnd *time.Time     `json:"recurrence_end"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`

	// Type-specific content
	Link      *string `json:"link"`
	ImagePath *string `json:"image_path"`
	AltText   *string `json:"alt_text"`

	// Execution metadata, maintained by the external dispatcher
	FacebookPostID    *string `json:"facebook_post_id"`
	ExecutionAttempts int     `json:"execution_attempts"`
	LastError         *string `json:"last_error"`
}

type ScheduleTextRequest struct {
	Message       string         `json:"message" form:"message"`
	ScheduleTime  time.Time      `json:"schedule_time" form:"schedule_time"`
	Link          *string        `json:"link,omitempty" form:"link"`
	Recurrence    RecurrenceType `json:"recurrence,omitempty" form:"recurrence"`
	RecurrenceEnd *time.Time     `json:"recurrence_end,omitempty" form:"recurrence_end"`
}

type ScheduleImageRequest struct {
	Message       string         `json:"message" form:"message"`
	ImagePath     string         `json:"image_path" form:"image_path"`
	ScheduleTime  time.Time      `json:"schedule_time" form:"schedule_time"`
	AltText       *string        `json:"alt_text,omitempty" form:"alt_text"`
	Recurrence    RecurrenceType `json:"recurrence,omitempty" form:"recurrence"`
	RecurrenceEnd *time.Time     `json:"recurrence_end,omitempty" form:"recurrence_end"`
}

// UpdateRequest carries a sparse field set; nil means "leave unchanged".
type UpdateRequest struct {
	Message       *string         `json:"message,omitempty"`
	ScheduleTime  *time.Time      `json:"schedule_time,omitempty"`
	Link          *string         `json:"link,omitempty"`
	AltText       *string         `json:"alt_text,omitempty"`
	Recurrence    *RecurrenceType `json:"recurrence,omitempty"`
	RecurrenceEnd *time.Time      `json:"recurrence_end,omitempty"`
	Status        *PostStatus     `json:"status,omitempty"`
}

type ListRequest struct {
	Status *PostStatus
	Limit  int
}

type NextPostPreview struct {
	ID             string    `json:"id"`
	ScheduleTime   time.Time `json:"schedule_time"`
	MessagePreview string    `json:"message_preview"`
}

type QueueStats struct {
	TotalPosts      int              `json:"total_posts"`
	StatusBreakdown map[string]int   `json:"status_breakdown"`
	Upcoming24h     int              `json:"upcoming_24h"`
	NextPost        *NextPostPreview `json:"next_post"`
}

type IQueueUsecase interface {
	ScheduleText(ctx context.Context, request ScheduleTextRequest) (ScheduledPost, error)
	ScheduleImage(ctx context.Context, request ScheduleImageRequest) (ScheduledPost, error)
	List(ctx context.Context, request ListRequest) ([]ScheduledPost, error)
	Get(ctx context.Context, id string) (ScheduledPost, error)
	Update(ctx context.Context, id string, request UpdateRequest) (ScheduledPost, error)
	Cancel(ctx context.Context, id string) error
	Purge(ctx context.Context, id string) error
	Stats(ctx context.Context) (QueueStats, error)
}
