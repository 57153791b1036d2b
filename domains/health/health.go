package health

import (
	"context"

	domainScheduler "github.com/fbautopost/backend/domains/scheduler"
)

type Status struct {
	Status             string                     `json:"status"`
	Service            string                     `json:"service"`
	Version            string                     `json:"version"`
	Environment        string                     `json:"environment"`
	FacebookConfigured bool                       `json:"facebook_configured"`
	ConfigIssues       []string                   `json:"config_issues,omitempty"`
	Queue              domainScheduler.QueueStats `json:"queue"`
}

type IHealthUsecase interface {
	GetStatus(ctx context.Context) (Status, error)
}
