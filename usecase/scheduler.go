package usecase

import (
	"context"

	"github.com/sirupsen/logrus"

	domainScheduler "github.com/fbautopost/backend/domains/scheduler"
	"github.com/fbautopost/backend/infrastructure/postqueue"
	pkgError "github.com/fbautopost/backend/pkg/error"
	"github.com/fbautopost/backend/ui/websocket"
	"github.com/fbautopost/backend/validations"
)

type serviceScheduler struct {
	queue *postqueue.PostQueue
}

func NewSchedulerService(queue *postqueue.PostQueue) domainScheduler.IQueueUsecase {
	return &serviceScheduler{queue: queue}
}

func (service serviceScheduler) broadcast(code, message string, result any) {
	select {
	case websocket.Broadcast <- websocket.BroadcastMessage{
		Code:    code,
		Message: message,
		Result:  result,
	}:
	default:
		// No hub running (tests, CLI usage); events are best-effort.
	}
}

func (service serviceScheduler) ScheduleText(ctx context.Context, request domainScheduler.ScheduleTextRequest) (domainScheduler.ScheduledPost, error) {
	if err := validations.ValidateScheduleText(ctx, request); err != nil {
		return domainScheduler.ScheduledPost{}, err
	}

	post, err := service.queue.ScheduleTextPost(request)
	if err != nil {
		return domainScheduler.ScheduledPost{}, err
	}

	service.broadcast("SCHEDULE_CREATED", "Post scheduled", post)
	return post, nil
}

func (service serviceScheduler) ScheduleImage(ctx context.Context, request domainScheduler.ScheduleImageRequest) (domainScheduler.ScheduledPost, error) {
	if err := validations.ValidateScheduleImage(ctx, request); err != nil {
		return domainScheduler.ScheduledPost{}, err
	}

	post, err := service.queue.ScheduleImagePost(request)
	if err != nil {
		return domainScheduler.ScheduledPost{}, err
	}

	service.broadcast("SCHEDULE_CREATED", "Image post scheduled", post)
	return post, nil
}

func (service serviceScheduler) List(ctx context.Context, request domainScheduler.ListRequest) ([]domainScheduler.ScheduledPost, error) {
	if request.Limit < 0 {
		return nil, pkgError.ValidationError("limit cannot be negative")
	}
	return service.queue.GetScheduledPosts(request.Status, request.Limit), nil
}

func (service serviceScheduler) Get(ctx context.Context, id string) (domainScheduler.ScheduledPost, error) {
	post, found := service.queue.GetPostByID(id)
	if !found {
		return domainScheduler.ScheduledPost{}, pkgError.NotFoundError("scheduled post not found")
	}
	return post, nil
}

func (service serviceScheduler) Update(ctx context.Context, id string, request domainScheduler.UpdateRequest) (domainScheduler.ScheduledPost, error) {
	if err := validations.ValidateScheduleUpdate(ctx, request); err != nil {
		return domainScheduler.ScheduledPost{}, err
	}

	post, found, err := service.queue.UpdateScheduledPost(id, request)
	if !found {
		return domainScheduler.ScheduledPost{}, pkgError.NotFoundError("scheduled post not found")
	}
	if err != nil {
		return domainScheduler.ScheduledPost{}, err
	}

	service.broadcast("SCHEDULE_UPDATED", "Scheduled post updated", post)
	return post, nil
}

func (service serviceScheduler) Cancel(ctx context.Context, id string) error {
	found, err := service.queue.CancelScheduledPost(id)
	if !found {
		return pkgError.NotFoundError("scheduled post not found")
	}
	if err != nil {
		return err
	}

	logrus.Infof("[SCHEDULER] Post %s cancelled", id)
	service.broadcast("SCHEDULE_CANCELLED", "Scheduled post cancelled", map[string]string{"id": id})
	return nil
}

func (service serviceScheduler) Purge(ctx context.Context, id string) error {
	found, err := service.queue.RemoveScheduledPost(id)
	if !found {
		return pkgError.NotFoundError("scheduled post not found")
	}
	if err != nil {
		return err
	}

	logrus.Infof("[SCHEDULER] Post %s removed permanently", id)
	service.broadcast("SCHEDULE_REMOVED", "Scheduled post removed", map[string]string{"id": id})
	return nil
}

func (service serviceScheduler) Stats(ctx context.Context) (domainScheduler.QueueStats, error) {
	return service.queue.GetQueueStats(), nil
}
