package usecase

import (
	"context"

	"github.com/fbautopost/backend/core/config"
	domainHealth "github.com/fbautopost/backend/domains/health"
	domainScheduler "github.com/fbautopost/backend/domains/scheduler"
)

type healthService struct {
	queueUsecase domainScheduler.IQueueUsecase
}

func NewHealthService(queueUsecase domainScheduler.IQueueUsecase) domainHealth.IHealthUsecase {
	return &healthService{queueUsecase: queueUsecase}
}

func (service healthService) GetStatus(ctx context.Context) (domainHealth.Status, error) {
	issues := config.Global.ValidateFacebook()

	stats, err := service.queueUsecase.Stats(ctx)
	if err != nil {
		return domainHealth.Status{}, err
	}

	status := "healthy"
	if len(issues) > 0 {
		status = "degraded"
	}

	return domainHealth.Status{
		Status:             status,
		Service:            "facebook-page-automation",
		Version:            config.Global.App.Version,
		Environment:        config.Global.App.Environment,
		FacebookConfigured: len(issues) == 0,
		ConfigIssues:       issues,
		Queue:              stats,
	}, nil
}
