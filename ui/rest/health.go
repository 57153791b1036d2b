package rest

import (
	"github.com/gofiber/fiber/v2"

	domainHealth "github.com/fbautopost/backend/domains/health"
)

type Health struct {
	Service domainHealth.IHealthUsecase
}

func InitRestHealth(app fiber.Router, service domainHealth.IHealthUsecase) Health {
	handler := Health{Service: service}

	app.Get("/health", handler.GetStatus)

	return handler
}

func (h *Health) GetStatus(c *fiber.Ctx) error {
	status, err := h.Service.GetStatus(c.UserContext())
	if err != nil {
		return responseError(c, err)
	}
	return responseSuccess(c, "Health status retrieved", status)
}
