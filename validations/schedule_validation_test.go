package validations

import (
	"context"
	"image/color"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/disintegration/imaging"

	"github.com/fbautopost/backend/core/config"
	domainPost "github.com/fbautopost/backend/domains/post"
	domainScheduler "github.com/fbautopost/backend/domains/scheduler"
)

func testMediaConfig() config.MediaConfig {
	return config.MediaConfig{
		MaxImageSize:   4 * 1024 * 1024 * 1024,
		AllowedFormats: []string{".jpg", ".jpeg", ".png", ".gif"},
		MinDimension:   200,
		MaxDimension:   8000,
	}
}

func writeTestImage(t *testing.T, name string, width, height int) string {
	t.Helper()
	img := imaging.New(width, height, color.NRGBA{R: 120, G: 60, B: 30, A: 255})
	path := filepath.Join(t.TempDir(), name)
	if err := imaging.Save(img, path); err != nil {
		t.Fatalf("failed to write test image: %v", err)
	}
	return path
}

func TestValidateScheduleText(t *testing.T) {
	ctx := context.Background()
	scheduleTime := time.Now().Add(time.Hour)

	if err := ValidateScheduleText(ctx, domainScheduler.ScheduleTextRequest{
		Message:      "hello",
		ScheduleTime: scheduleTime,
	}); err != nil {
		t.Errorf("valid request rejected: %v", err)
	}

	if err := ValidateScheduleText(ctx, domainScheduler.ScheduleTextRequest{
		ScheduleTime: scheduleTime,
	}); err == nil {
		t.Error("missing message must be rejected")
	}

	badLink := "not a url"
	if err := ValidateScheduleText(ctx, domainScheduler.ScheduleTextRequest{
		Message:      "hello",
		ScheduleTime: scheduleTime,
		Link:         &badLink,
	}); err == nil {
		t.Error("malformed link must be rejected")
	}

	if err := ValidateScheduleText(ctx, domainScheduler.ScheduleTextRequest{
		Message:      strings.Repeat("a", maxMessageLength+1),
		ScheduleTime: scheduleTime,
	}); err == nil {
		t.Error("oversized message must be rejected")
	}

	if err := ValidateScheduleText(ctx, domainScheduler.ScheduleTextRequest{
		Message:      strings.Repeat("line\n", maxLineBreaks+1),
		ScheduleTime: scheduleTime,
	}); err == nil {
		t.Error("too many line breaks must be rejected")
	}

	before := scheduleTime.Add(-time.Minute)
	if err := ValidateScheduleText(ctx, domainScheduler.ScheduleTextRequest{
		Message:       "hello",
		ScheduleTime:  scheduleTime,
		Recurrence:    domainScheduler.RecurrenceDaily,
		RecurrenceEnd: &before,
	}); err == nil {
		t.Error("recurrence_end before schedule_time must be rejected")
	}
}

func TestValidateScheduleUpdate(t *testing.T) {
	ctx := context.Background()

	if err := ValidateScheduleUpdate(ctx, domainScheduler.UpdateRequest{}); err != nil {
		t.Errorf("empty update must be valid: %v", err)
	}

	blank := ""
	if err := ValidateScheduleUpdate(ctx, domainScheduler.UpdateRequest{Message: &blank}); err == nil {
		t.Error("blank message must be rejected")
	}

	bogus := domainScheduler.PostStatus("bogus")
	if err := ValidateScheduleUpdate(ctx, domainScheduler.UpdateRequest{Status: &bogus}); err == nil {
		t.Error("unknown status must be rejected")
	}

	badRecurrence := domainScheduler.RecurrenceType("hourly")
	if err := ValidateScheduleUpdate(ctx, domainScheduler.UpdateRequest{Recurrence: &badRecurrence}); err == nil {
		t.Error("unknown recurrence must be rejected")
	}
}

func TestValidateListRequest(t *testing.T) {
	status, err := ValidateListRequest("", 10)
	if err != nil || status != nil {
		t.Errorf("empty status must pass through: status=%v err=%v", status, err)
	}

	status, err = ValidateListRequest("cancelled", 0)
	if err != nil || status == nil || *status != domainScheduler.PostStatusCancelled {
		t.Errorf("valid status rejected: status=%v err=%v", status, err)
	}

	if _, err := ValidateListRequest("bogus", 0); err == nil {
		t.Error("unknown status must be rejected")
	}
	if _, err := ValidateListRequest("", -1); err == nil {
		t.Error("negative limit must be rejected")
	}
}

func TestValidatePublishText(t *testing.T) {
	ctx := context.Background()

	if err := ValidatePublishText(ctx, domainPost.PublishTextRequest{Message: "hi"}); err != nil {
		t.Errorf("valid request rejected: %v", err)
	}
	if err := ValidatePublishText(ctx, domainPost.PublishTextRequest{}); err == nil {
		t.Error("missing message must be rejected")
	}
}

func TestValidateImageFile(t *testing.T) {
	media := testMediaConfig()

	path := writeTestImage(t, "ok.jpg", 300, 300)
	meta, err := ValidateImageFile(path, media)
	if err != nil {
		t.Fatalf("valid image rejected: %v", err)
	}
	if meta.Width != 300 || meta.Height != 300 || meta.Format != "jpg" {
		t.Errorf("unexpected meta: %+v", meta)
	}

	if _, err := ValidateImageFile(filepath.Join(t.TempDir(), "missing.jpg"), media); err == nil {
		t.Error("missing file must be rejected")
	}

	small := writeTestImage(t, "small.jpg", 100, 100)
	if _, err := ValidateImageFile(small, media); err == nil {
		t.Error("undersized image must be rejected")
	}

	bmp := filepath.Join(t.TempDir(), "bad.bmp")
	img := imaging.New(300, 300, color.NRGBA{A: 255})
	if err := imaging.Save(img, bmp); err != nil {
		t.Fatalf("failed to write bmp fixture: %v", err)
	}
	if _, err := ValidateImageFile(bmp, media); err == nil {
		t.Error("unsupported extension must be rejected")
	}
}
