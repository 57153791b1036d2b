package postqueue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	domainScheduler "github.com/fbautopost/backend/domains/scheduler"
	pkgError "github.com/fbautopost/backend/pkg/error"
)

func newTestQueue(t *testing.T) *PostQueue {
	t.Helper()
	q, err := NewPostQueue(Config{
		StoragePath: filepath.Join(t.TempDir(), "scheduled_posts.json"),
	})
	if err != nil {
		t.Fatalf("NewPostQueue returned error: %v", err)
	}
	return q
}

func textRequest(message string, scheduleTime time.Time) domainScheduler.ScheduleTextRequest {
	return domainScheduler.ScheduleTextRequest{
		Message:      message,
		ScheduleTime: scheduleTime,
	}
}

func TestScheduleTextPostDefaults(t *testing.T) {
	q := newTestQueue(t)

	scheduleTime := time.Now().Add(2 * time.Hour)
	post, err := q.ScheduleTextPost(textRequest("hello page", scheduleTime))
	if err != nil {
		t.Fatalf("ScheduleTextPost returned error: %v", err)
	}

	if post.ID == "" {
		t.Error("expected a generated id")
	}
	if post.Status != domainScheduler.PostStatusScheduled {
		t.Errorf("expected status scheduled, got %s", post.Status)
	}
	if post.PostType != domainScheduler.PostTypeText {
		t.Errorf("expected post type text, got %s", post.PostType)
	}
	if post.Recurrence != domainScheduler.RecurrenceNone {
		t.Errorf("expected recurrence none, got %s", post.Recurrence)
	}
	if post.CreatedAt.IsZero() || post.UpdatedAt.IsZero() {
		t.Error("expected created_at and updated_at to be set")
	}
}

func TestScheduleTimeValidation(t *testing.T) {
	q := newTestQueue(t)

	cases := []struct {
		name         string
		scheduleTime time.Time
		wantCode     string
	}{
		{"past", time.Now().Add(-time.Hour), pkgError.CodeInvalidTimePast},
		{"too soon", time.Now().Add(5 * time.Minute), pkgError.CodeInvalidTimeTooSoon},
		{"too far", time.Now().Add(366 * 24 * time.Hour), pkgError.CodeInvalidTimeTooFar},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := q.ScheduleTextPost(textRequest("msg", tc.scheduleTime))
			if err == nil {
				t.Fatal("expected error, got none")
			}
			if !pkgError.IsSchedulingCode(err, tc.wantCode) {
				t.Errorf("expected code %s, got %v", tc.wantCode, err)
			}
		})
	}

	if stats := q.GetQueueStats(); stats.TotalPosts != 0 {
		t.Errorf("rejected posts must not enter the queue, got %d", stats.TotalPosts)
	}
}

func TestScheduleImagePostMissingFile(t *testing.T) {
	q := newTestQueue(t)

	_, err := q.ScheduleImagePost(domainScheduler.ScheduleImageRequest{
		Message:      "pic",
		ImagePath:    filepath.Join(t.TempDir(), "missing.jpg"),
		ScheduleTime: time.Now().Add(time.Hour),
	})
	if !pkgError.IsSchedulingCode(err, pkgError.CodeImageNotFound) {
		t.Fatalf("expected IMAGE_NOT_FOUND, got %v", err)
	}
}

func TestScheduleImagePost(t *testing.T) {
	q := newTestQueue(t)

	imagePath := filepath.Join(t.TempDir(), "photo.jpg")
	if err := os.WriteFile(imagePath, []byte("not-really-a-jpeg"), 0644); err != nil {
		t.Fatalf("failed to write image fixture: %v", err)
	}

	altText := "a photo"
	post, err := q.ScheduleImagePost(domainScheduler.ScheduleImageRequest{
		Message:      "pic",
		ImagePath:    imagePath,
		ScheduleTime: time.Now().Add(time.Hour),
		AltText:      &altText,
	})
	if err != nil {
		t.Fatalf("ScheduleImagePost returned error: %v", err)
	}
	if post.PostType != domainScheduler.PostTypeImage {
		t.Errorf("expected post type image, got %s", post.PostType)
	}
	if post.ImagePath == nil || *post.ImagePath != imagePath {
		t.Errorf("expected image path %s, got %v", imagePath, post.ImagePath)
	}
	if post.AltText == nil || *post.AltText != altText {
		t.Errorf("expected alt text to be stored, got %v", post.AltText)
	}
}

func TestGetScheduledPostsSortedAndLimited(t *testing.T) {
	q := newTestQueue(t)

	base := time.Now().Add(time.Hour)
	// Insert out of order on purpose.
	for _, offset := range []time.Duration{72 * time.Hour, 2 * time.Hour, 48 * time.Hour, 0} {
		if _, err := q.ScheduleTextPost(textRequest("msg", base.Add(offset))); err != nil {
			t.Fatalf("schedule failed: %v", err)
		}
	}

	posts := q.GetScheduledPosts(nil, 0)
	if len(posts) != 4 {
		t.Fatalf("expected 4 posts, got %d", len(posts))
	}
	for i := 1; i < len(posts); i++ {
		if posts[i].ScheduleTime.Before(posts[i-1].ScheduleTime) {
			t.Fatalf("posts not sorted ascending at index %d", i)
		}
	}

	limited := q.GetScheduledPosts(nil, 2)
	if len(limited) != 2 {
		t.Fatalf("expected 2 posts with limit, got %d", len(limited))
	}
	if !limited[0].ScheduleTime.Equal(posts[0].ScheduleTime) {
		t.Error("limit must keep the earliest posts")
	}
}

func TestGetScheduledPostsStatusFilter(t *testing.T) {
	q := newTestQueue(t)

	first, _ := q.ScheduleTextPost(textRequest("a", time.Now().Add(time.Hour)))
	if _, err := q.ScheduleTextPost(textRequest("b", time.Now().Add(2 * time.Hour))); err != nil {
		t.Fatalf("schedule failed: %v", err)
	}
	if _, err := q.CancelScheduledPost(first.ID); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	cancelled := domainScheduler.PostStatusCancelled
	filtered := q.GetScheduledPosts(&cancelled, 0)
	if len(filtered) != 1 || filtered[0].ID != first.ID {
		t.Fatalf("expected only the cancelled post, got %d posts", len(filtered))
	}
}

func TestGetPostByID(t *testing.T) {
	q := newTestQueue(t)

	post, _ := q.ScheduleTextPost(textRequest("find me", time.Now().Add(time.Hour)))

	got, found := q.GetPostByID(post.ID)
	if !found {
		t.Fatal("expected post to be found")
	}
	if got.Message != "find me" {
		t.Errorf("unexpected message %q", got.Message)
	}

	if _, found := q.GetPostByID("no-such-id"); found {
		t.Error("expected unknown id to report not found")
	}
}

func TestUpdateScheduledPost(t *testing.T) {
	q := newTestQueue(t)

	post, _ := q.ScheduleTextPost(textRequest("original", time.Now().Add(time.Hour)))
	before := post.UpdatedAt

	newMessage := "edited"
	newTime := time.Now().Add(3 * time.Hour)
	updated, found, err := q.UpdateScheduledPost(post.ID, domainScheduler.UpdateRequest{
		Message:      &newMessage,
		ScheduleTime: &newTime,
	})
	if err != nil || !found {
		t.Fatalf("update failed: found=%v err=%v", found, err)
	}
	if updated.Message != newMessage {
		t.Errorf("expected message %q, got %q", newMessage, updated.Message)
	}
	if !updated.ScheduleTime.Equal(newTime) {
		t.Errorf("expected schedule time to change")
	}
	if !updated.UpdatedAt.After(before) && !updated.UpdatedAt.Equal(before) {
		t.Error("updated_at must be refreshed")
	}
	if updated.CreatedAt != post.CreatedAt {
		t.Error("created_at must not change on update")
	}
}

func TestUpdateScheduledPostEmptyFieldSet(t *testing.T) {
	q := newTestQueue(t)

	post, _ := q.ScheduleTextPost(textRequest("unchanged", time.Now().Add(time.Hour)))

	updated, found, err := q.UpdateScheduledPost(post.ID, domainScheduler.UpdateRequest{})
	if err != nil || !found {
		t.Fatalf("update failed: found=%v err=%v", found, err)
	}
	if updated.Message != post.Message || !updated.ScheduleTime.Equal(post.ScheduleTime) {
		t.Error("empty update must leave fields unchanged")
	}
	if updated.UpdatedAt.Before(post.UpdatedAt) {
		t.Error("empty update must still refresh updated_at")
	}
}

func TestUpdateScheduledPostInvalidTime(t *testing.T) {
	q := newTestQueue(t)

	post, _ := q.ScheduleTextPost(textRequest("msg", time.Now().Add(time.Hour)))

	past := time.Now().Add(-time.Hour)
	_, found, err := q.UpdateScheduledPost(post.ID, domainScheduler.UpdateRequest{ScheduleTime: &past})
	if !found {
		t.Fatal("expected post to be found")
	}
	if !pkgError.IsSchedulingCode(err, pkgError.CodeInvalidTimePast) {
		t.Fatalf("expected INVALID_TIME_PAST, got %v", err)
	}

	// The rejected update must not have touched the record.
	got, _ := q.GetPostByID(post.ID)
	if !got.ScheduleTime.Equal(post.ScheduleTime) {
		t.Error("failed update must leave the record unchanged")
	}
}

func TestUpdateScheduledPostNotFound(t *testing.T) {
	q := newTestQueue(t)

	msg := "x"
	_, found, err := q.UpdateScheduledPost("no-such-id", domainScheduler.UpdateRequest{Message: &msg})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Error("expected not found")
	}
}

func TestCancelScheduledPostIdempotent(t *testing.T) {
	q := newTestQueue(t)

	post, _ := q.ScheduleTextPost(textRequest("msg", time.Now().Add(time.Hour)))

	for i := 0; i < 2; i++ {
		ok, err := q.CancelScheduledPost(post.ID)
		if err != nil {
			t.Fatalf("cancel %d returned error: %v", i, err)
		}
		if !ok {
			t.Fatalf("cancel %d reported not found", i)
		}
	}

	got, found := q.GetPostByID(post.ID)
	if !found {
		t.Fatal("cancel must not remove the record")
	}
	if got.Status != domainScheduler.PostStatusCancelled {
		t.Errorf("expected status cancelled, got %s", got.Status)
	}

	if ok, _ := q.CancelScheduledPost("no-such-id"); ok {
		t.Error("cancelling an unknown id must report false")
	}
}

func TestRemoveScheduledPost(t *testing.T) {
	q := newTestQueue(t)

	post, _ := q.ScheduleTextPost(textRequest("msg", time.Now().Add(time.Hour)))

	ok, err := q.RemoveScheduledPost(post.ID)
	if err != nil || !ok {
		t.Fatalf("remove failed: ok=%v err=%v", ok, err)
	}
	if _, found := q.GetPostByID(post.ID); found {
		t.Error("removed post must be gone")
	}

	ok, err = q.RemoveScheduledPost(post.ID)
	if err != nil {
		t.Fatalf("second remove returned error: %v", err)
	}
	if ok {
		t.Error("second remove must report false")
	}
}

func TestQueueStats(t *testing.T) {
	q := newTestQueue(t)

	empty := q.GetQueueStats()
	if empty.TotalPosts != 0 || empty.Upcoming24h != 0 {
		t.Errorf("unexpected empty stats: %+v", empty)
	}
	if empty.NextPost != nil {
		t.Error("empty queue must report no next post")
	}
	for _, status := range domainScheduler.AllStatuses {
		if _, ok := empty.StatusBreakdown[string(status)]; !ok {
			t.Errorf("status breakdown missing %s", status)
		}
	}

	longMessage := "this message is definitely longer than fifty characters so the preview gets cut"
	soon, _ := q.ScheduleTextPost(textRequest(longMessage, time.Now().Add(time.Hour)))
	if _, err := q.ScheduleTextPost(textRequest("later", time.Now().Add(5 * time.Hour))); err != nil {
		t.Fatalf("schedule failed: %v", err)
	}
	far, _ := q.ScheduleTextPost(textRequest("next week", time.Now().Add(7 * 24 * time.Hour)))
	cancelledPost, _ := q.ScheduleTextPost(textRequest("cancelled", time.Now().Add(2 * time.Hour)))
	if _, err := q.CancelScheduledPost(cancelledPost.ID); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	stats := q.GetQueueStats()
	if stats.TotalPosts != 4 {
		t.Errorf("expected 4 total posts, got %d", stats.TotalPosts)
	}
	if stats.StatusBreakdown["scheduled"] != 3 || stats.StatusBreakdown["cancelled"] != 1 {
		t.Errorf("unexpected breakdown: %+v", stats.StatusBreakdown)
	}
	// Cancelled posts and posts beyond 24h do not count as upcoming.
	if stats.Upcoming24h != 2 {
		t.Errorf("expected 2 upcoming posts, got %d", stats.Upcoming24h)
	}
	if stats.NextPost == nil {
		t.Fatal("expected a next post preview")
	}
	if stats.NextPost.ID != soon.ID {
		t.Errorf("expected earliest post %s as next, got %s", soon.ID, stats.NextPost.ID)
	}
	if stats.NextPost.ID == far.ID {
		t.Error("posts beyond 24h must not be the next post")
	}
	if len([]rune(stats.NextPost.MessagePreview)) != previewLength+3 {
		t.Errorf("expected %d-char preview plus ellipsis, got %q", previewLength, stats.NextPost.MessagePreview)
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	storagePath := filepath.Join(t.TempDir(), "scheduled_posts.json")

	q, err := NewPostQueue(Config{StoragePath: storagePath})
	if err != nil {
		t.Fatalf("NewPostQueue returned error: %v", err)
	}
	link := "https://example.com"
	post, err := q.ScheduleTextPost(domainScheduler.ScheduleTextRequest{
		Message:      "survives restarts",
		ScheduleTime: time.Now().Add(time.Hour),
		Link:         &link,
		Recurrence:   domainScheduler.RecurrenceWeekly,
	})
	if err != nil {
		t.Fatalf("schedule failed: %v", err)
	}

	reloaded, err := NewPostQueue(Config{StoragePath: storagePath})
	if err != nil {
		t.Fatalf("reload returned error: %v", err)
	}
	got, found := reloaded.GetPostByID(post.ID)
	if !found {
		t.Fatal("post missing after reload")
	}
	if got.Message != post.Message || got.Recurrence != domainScheduler.RecurrenceWeekly {
		t.Errorf("reloaded post differs: %+v", got)
	}
	if got.Link == nil || *got.Link != link {
		t.Errorf("expected link to survive, got %v", got.Link)
	}
	if !got.ScheduleTime.Equal(post.ScheduleTime) {
		t.Error("schedule time must survive the round trip")
	}
}

func TestLoadLegacyArrayFormat(t *testing.T) {
	storagePath := filepath.Join(t.TempDir(), "scheduled_posts.json")

	legacy := []domainScheduler.ScheduledPost{
		{
			ID:           "legacy-1",
			PostType:     domainScheduler.PostTypeText,
			Message:      "old format",
			ScheduleTime: time.Now().Add(time.Hour),
			Status:       domainScheduler.PostStatusScheduled,
			Recurrence:   domainScheduler.RecurrenceNone,
			CreatedAt:    time.Now().UTC(),
			UpdatedAt:    time.Now().UTC(),
		},
	}
	data, _ := json.Marshal(legacy)
	if err := os.WriteFile(storagePath, data, 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	q, err := NewPostQueue(Config{StoragePath: storagePath})
	if err != nil {
		t.Fatalf("legacy load failed: %v", err)
	}
	if _, found := q.GetPostByID("legacy-1"); !found {
		t.Error("legacy post missing after load")
	}
}

func TestLoadCorruptFile(t *testing.T) {
	storagePath := filepath.Join(t.TempDir(), "scheduled_posts.json")
	if err := os.WriteFile(storagePath, []byte("{not json"), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	_, err := NewPostQueue(Config{StoragePath: storagePath})
	if !pkgError.IsSchedulingCode(err, pkgError.CodeLoadError) {
		t.Fatalf("expected LOAD_ERROR, got %v", err)
	}
}

func TestLoadRejectsUnknownStatus(t *testing.T) {
	storagePath := filepath.Join(t.TempDir(), "scheduled_posts.json")
	raw := `{"version":1,"posts":[{"id":"p1","post_type":"text","message":"m","schedule_time":"2030-01-01T00:00:00Z","status":"bogus","recurrence":"none","created_at":"2026-01-01T00:00:00Z","updated_at":"2026-01-01T00:00:00Z"}]}`
	if err := os.WriteFile(storagePath, []byte(raw), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	_, err := NewPostQueue(Config{StoragePath: storagePath})
	if !pkgError.IsSchedulingCode(err, pkgError.CodeLoadError) {
		t.Fatalf("expected LOAD_ERROR for unknown status, got %v", err)
	}
}
