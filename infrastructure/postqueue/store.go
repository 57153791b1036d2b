// Package postqueue owns the durable queue of scheduled Facebook posts.
//
// The whole collection lives in memory and is persisted as a single JSON
// document after every mutation. A per-store mutex serializes the
// load/mutate/save cycle so concurrent REST handlers cannot interleave
// writes.
package postqueue

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	domainScheduler "github.com/fbautopost/backend/domains/scheduler"
	pkgError "github.com/fbautopost/backend/pkg/error"
	"github.com/fbautopost/backend/pkg/utils"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	documentVersion = 1
	previewLength   = 50
)

// Config controls the queue location and the scheduling window.
type Config struct {
	StoragePath string
	MinLeadTime time.Duration // default 10 minutes
	MaxHorizon  time.Duration // default 365 days
}

// document is the persisted file shape. Legacy files that contain a bare
// array of posts are still accepted on load.
type document struct {
	Version int                             `json:"version"`
	Posts   []domainScheduler.ScheduledPost `json:"posts"`
}

// PostQueue is the authoritative store of scheduled posts.
type PostQueue struct {
	mu    sync.Mutex
	cfg   Config
	queue []domainScheduler.ScheduledPost
	now   func() time.Time
}

// NewPostQueue loads the queue from cfg.StoragePath. A missing file starts
// an empty queue; an unreadable or malformed file is a LOAD_ERROR.
func NewPostQueue(cfg Config) (*PostQueue, error) {
	if cfg.MinLeadTime == 0 {
		cfg.MinLeadTime = 10 * time.Minute
	}
	if cfg.MaxHorizon == 0 {
		cfg.MaxHorizon = 365 * 24 * time.Hour
	}

	q := &PostQueue{cfg: cfg, now: time.Now}
	if err := q.load(); err != nil {
		return nil, err
	}
	return q, nil
}

func (q *PostQueue) load() error {
	data, err := os.ReadFile(q.cfg.StoragePath)
	if os.IsNotExist(err) {
		logrus.Info("[QUEUE] No existing scheduled posts file found, starting with empty queue")
		q.queue = nil
		return nil
	}
	if err != nil {
		return pkgError.NewSchedulingError(pkgError.CodeLoadError,
			fmt.Sprintf("failed to load scheduled posts: %v", err))
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		// Legacy format: a bare array of posts.
		var posts []domainScheduler.ScheduledPost
		if arrErr := json.Unmarshal(data, &posts); arrErr != nil {
			return pkgError.NewSchedulingError(pkgError.CodeLoadError,
				fmt.Sprintf("failed to load scheduled posts: %v", err))
		}
		doc.Posts = posts
	}

	for i := range doc.Posts {
		if err := validatePost(&doc.Posts[i]); err != nil {
			return pkgError.NewSchedulingError(pkgError.CodeLoadError,
				fmt.Sprintf("failed to load scheduled posts: %v", err))
		}
	}

	q.queue = doc.Posts
	logrus.Infof("[QUEUE] Loaded %d scheduled posts from %s", len(q.queue), q.cfg.StoragePath)
	return nil
}

// validatePost rejects records with unknown enum values so that format drift
// is caught on load instead of surfacing later as silent defaults.
func validatePost(post *domainScheduler.ScheduledPost) error {
	if post.ID == "" {
		return fmt.Errorf("record without id")
	}
	if _, err := domainScheduler.ParsePostStatus(string(post.Status)); err != nil {
		return fmt.Errorf("record %s: %w", post.ID, err)
	}
	if _, err := domainScheduler.ParseRecurrence(string(post.Recurrence)); err != nil {
		return fmt.Errorf("record %s: %w", post.ID, err)
	}
	switch post.PostType {
	case domainScheduler.PostTypeText, domainScheduler.PostTypeImage:
	default:
		return fmt.Errorf("record %s: unknown post type %q", post.ID, post.PostType)
	}
	return nil
}

// persist writes the given collection to disk. The caller only commits the
// collection to memory after persist succeeds, so a failed save leaves both
// memory and file at the pre-mutation state.
func (q *PostQueue) persist(posts []domainScheduler.ScheduledPost) error {
	dir := filepath.Dir(q.cfg.StoragePath)
	if err := utils.CreateFolder(dir); err != nil {
		return pkgError.NewSchedulingError(pkgError.CodeSaveError,
			fmt.Sprintf("failed to save scheduled posts: %v", err))
	}

	doc := document{Version: documentVersion, Posts: posts}
	if doc.Posts == nil {
		doc.Posts = []domainScheduler.ScheduledPost{}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return pkgError.NewSchedulingError(pkgError.CodeSaveError,
			fmt.Sprintf("failed to save scheduled posts: %v", err))
	}

	// Write-to-temp-then-rename so a crash mid-write cannot corrupt the
	// previous document.
	tmp := q.cfg.StoragePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return pkgError.NewSchedulingError(pkgError.CodeSaveError,
			fmt.Sprintf("failed to save scheduled posts: %v", err))
	}
	if err := os.Rename(tmp, q.cfg.StoragePath); err != nil {
		_ = os.Remove(tmp)
		return pkgError.NewSchedulingError(pkgError.CodeSaveError,
			fmt.Sprintf("failed to save scheduled posts: %v", err))
	}

	logrus.Debugf("[QUEUE] Saved %d scheduled posts to %s", len(posts), q.cfg.StoragePath)
	return nil
}

func (q *PostQueue) validateScheduleTime(scheduleTime time.Time) error {
	now := q.now()

	if !scheduleTime.After(now) {
		return pkgError.NewSchedulingError(pkgError.CodeInvalidTimePast,
			"schedule time must be in the future")
	}
	if scheduleTime.Before(now.Add(q.cfg.MinLeadTime)) {
		return pkgError.NewSchedulingError(pkgError.CodeInvalidTimeTooSoon,
			fmt.Sprintf("schedule time must be at least %s from now", q.cfg.MinLeadTime))
	}
	if scheduleTime.After(now.Add(q.cfg.MaxHorizon)) {
		return pkgError.NewSchedulingError(pkgError.CodeInvalidTimeTooFar,
			fmt.Sprintf("schedule time cannot be more than %s in the future", q.cfg.MaxHorizon))
	}
	return nil
}

// ScheduleTextPost validates the schedule time, appends a new text record
// and persists the collection.
func (q *PostQueue) ScheduleTextPost(request domainScheduler.ScheduleTextRequest) (domainScheduler.ScheduledPost, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if err := q.validateScheduleTime(request.ScheduleTime); err != nil {
		return domainScheduler.ScheduledPost{}, err
	}

	post := q.newPost(domainScheduler.PostTypeText, request.Message, request.ScheduleTime,
		request.Recurrence, request.RecurrenceEnd)
	post.Link = request.Link

	next := append(append([]domainScheduler.ScheduledPost(nil), q.queue...), post)
	if err := q.persist(next); err != nil {
		return domainScheduler.ScheduledPost{}, err
	}
	q.queue = next

	logrus.Infof("[QUEUE] Scheduled text post %s for %s", post.ID, post.ScheduleTime.Format(time.RFC3339))
	return post, nil
}

// ScheduleImagePost is like ScheduleTextPost but additionally requires the
// image file to exist at call time. Content validation beyond existence is
// the validator's job, not the queue's.
func (q *PostQueue) ScheduleImagePost(request domainScheduler.ScheduleImageRequest) (domainScheduler.ScheduledPost, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if err := q.validateScheduleTime(request.ScheduleTime); err != nil {
		return domainScheduler.ScheduledPost{}, err
	}
	if _, err := os.Stat(request.ImagePath); err != nil {
		return domainScheduler.ScheduledPost{}, pkgError.NewSchedulingError(pkgError.CodeImageNotFound,
			fmt.Sprintf("image file not found: %s", request.ImagePath))
	}

	post := q.newPost(domainScheduler.PostTypeImage, request.Message, request.ScheduleTime,
		request.Recurrence, request.RecurrenceEnd)
	imagePath := request.ImagePath
	post.ImagePath = &imagePath
	post.AltText = request.AltText

	next := append(append([]domainScheduler.ScheduledPost(nil), q.queue...), post)
	if err := q.persist(next); err != nil {
		return domainScheduler.ScheduledPost{}, err
	}
	q.queue = next

	logrus.Infof("[QUEUE] Scheduled image post %s for %s", post.ID, post.ScheduleTime.Format(time.RFC3339))
	return post, nil
}

func (q *PostQueue) newPost(postType domainScheduler.PostType, message string, scheduleTime time.Time,
	recurrence domainScheduler.RecurrenceType, recurrenceEnd *time.Time) domainScheduler.ScheduledPost {
	if recurrence == "" {
		recurrence = domainScheduler.RecurrenceNone
	}
	now := q.now().UTC()
	return domainScheduler.ScheduledPost{
		ID:            uuid.NewString(),
		PostType:      postType,
		Message:       message,
		ScheduleTime:  scheduleTime,
		Status:        domainScheduler.PostStatusScheduled,
		Recurrence:    recurrence,
		RecurrenceEnd: recurrenceEnd,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// GetScheduledPosts returns posts sorted ascending by schedule time,
// optionally filtered by status and truncated to the limit earliest entries.
func (q *PostQueue) GetScheduledPosts(statusFilter *domainScheduler.PostStatus, limit int) []domainScheduler.ScheduledPost {
	q.mu.Lock()
	defer q.mu.Unlock()

	posts := make([]domainScheduler.ScheduledPost, 0, len(q.queue))
	for _, post := range q.queue {
		if statusFilter != nil && post.Status != *statusFilter {
			continue
		}
		posts = append(posts, post)
	}

	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].ScheduleTime.Before(posts[j].ScheduleTime)
	})

	if limit > 0 && len(posts) > limit {
		posts = posts[:limit]
	}
	return posts
}

// GetPostByID returns the post and whether it exists. Absence is a normal
// outcome, not an error.
func (q *PostQueue) GetPostByID(id string) (domainScheduler.ScheduledPost, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.findLocked(id)
}

func (q *PostQueue) findLocked(id string) (domainScheduler.ScheduledPost, bool) {
	for _, post := range q.queue {
		if post.ID == id {
			return post, true
		}
	}
	return domainScheduler.ScheduledPost{}, false
}

// UpdateScheduledPost applies a sparse update. A new schedule time is
// re-validated with the same rule as creation, before anything is mutated.
// Returns found=false when the id is unknown; it never creates a record.
func (q *PostQueue) UpdateScheduledPost(id string, request domainScheduler.UpdateRequest) (domainScheduler.ScheduledPost, bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	idx := -1
	for i := range q.queue {
		if q.queue[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return domainScheduler.ScheduledPost{}, false, nil
	}

	if request.ScheduleTime != nil {
		if err := q.validateScheduleTime(*request.ScheduleTime); err != nil {
			return domainScheduler.ScheduledPost{}, true, err
		}
	}

	updated := q.queue[idx]
	if request.Message != nil {
		updated.Message = *request.Message
	}
	if request.ScheduleTime != nil {
		updated.ScheduleTime = *request.ScheduleTime
	}
	if request.Link != nil {
		updated.Link = request.Link
	}
	if request.AltText != nil {
		updated.AltText = request.AltText
	}
	if request.Recurrence != nil {
		updated.Recurrence = *request.Recurrence
	}
	if request.RecurrenceEnd != nil {
		updated.RecurrenceEnd = request.RecurrenceEnd
	}
	if request.Status != nil {
		updated.Status = *request.Status
	}
	updated.UpdatedAt = q.now().UTC()

	next := append([]domainScheduler.ScheduledPost(nil), q.queue...)
	next[idx] = updated
	if err := q.persist(next); err != nil {
		return domainScheduler.ScheduledPost{}, true, err
	}
	q.queue = next

	logrus.Infof("[QUEUE] Updated scheduled post %s", id)
	return updated, true, nil
}

// CancelScheduledPost soft-deletes: the record stays in the queue with
// status cancelled. Cancelling an already-cancelled post succeeds and
// re-stamps updated_at.
func (q *PostQueue) CancelScheduledPost(id string) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	idx := -1
	for i := range q.queue {
		if q.queue[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return false, nil
	}

	cancelled := q.queue[idx]
	cancelled.Status = domainScheduler.PostStatusCancelled
	cancelled.UpdatedAt = q.now().UTC()

	next := append([]domainScheduler.ScheduledPost(nil), q.queue...)
	next[idx] = cancelled
	if err := q.persist(next); err != nil {
		return true, err
	}
	q.queue = next

	logrus.Infof("[QUEUE] Cancelled scheduled post %s", id)
	return true, nil
}

// RemoveScheduledPost permanently deletes the record from memory and file.
func (q *PostQueue) RemoveScheduledPost(id string) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	next := make([]domainScheduler.ScheduledPost, 0, len(q.queue))
	for _, post := range q.queue {
		if post.ID != id {
			next = append(next, post)
		}
	}
	if len(next) == len(q.queue) {
		return false, nil
	}

	if err := q.persist(next); err != nil {
		return true, err
	}
	q.queue = next

	logrus.Infof("[QUEUE] Removed scheduled post %s", id)
	return true, nil
}

// GetQueueStats summarizes the queue: totals, per-status counts, how many
// posts come due within 24 hours, and a preview of the earliest upcoming one.
func (q *PostQueue) GetQueueStats() domainScheduler.QueueStats {
	q.mu.Lock()
	defer q.mu.Unlock()

	stats := domainScheduler.QueueStats{
		TotalPosts:      len(q.queue),
		StatusBreakdown: make(map[string]int, len(domainScheduler.AllStatuses)),
	}
	for _, status := range domainScheduler.AllStatuses {
		stats.StatusBreakdown[string(status)] = 0
	}
	for _, post := range q.queue {
		stats.StatusBreakdown[string(post.Status)]++
	}

	now := q.now()
	next24h := now.Add(24 * time.Hour)
	var earliest *domainScheduler.ScheduledPost
	for i := range q.queue {
		post := &q.queue[i]
		if post.Status != domainScheduler.PostStatusScheduled {
			continue
		}
		if post.ScheduleTime.Before(now) || post.ScheduleTime.After(next24h) {
			continue
		}
		stats.Upcoming24h++
		if earliest == nil || post.ScheduleTime.Before(earliest.ScheduleTime) {
			earliest = post
		}
	}

	if earliest != nil {
		stats.NextPost = &domainScheduler.NextPostPreview{
			ID:             earliest.ID,
			ScheduleTime:   earliest.ScheduleTime,
			MessagePreview: utils.TruncateMessage(earliest.Message, previewLength),
		}
	}
	return stats
}

// StoragePath returns the backing file location.
func (q *PostQueue) StoragePath() string {
	return q.cfg.StoragePath
}
