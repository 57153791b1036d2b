package rest

import (
	"path/filepath"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	"github.com/fbautopost/backend/core/config"
	domainScheduler "github.com/fbautopost/backend/domains/scheduler"
	"github.com/fbautopost/backend/pkg/utils"
	"github.com/fbautopost/backend/validations"
)

type Scheduler struct {
	Service domainScheduler.IQueueUsecase
}

func InitRestScheduler(app fiber.Router, service domainScheduler.IQueueUsecase) Scheduler {
	rest := Scheduler{Service: service}

	app.Post("/schedule/text", rest.ScheduleText)
	app.Post("/schedule/image", rest.ScheduleImage)
	app.Get("/schedule", rest.List)
	app.Get("/schedule/stats", rest.Stats)
	app.Get("/schedule/:id", rest.Get)
	app.Patch("/schedule/:id", rest.Update)
	app.Delete("/schedule/:id", rest.Cancel)
	app.Post("/schedule/:id/purge", rest.Purge)

	return rest
}

func (controller *Scheduler) ScheduleText(c *fiber.Ctx) error {
	var request domainScheduler.ScheduleTextRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(400).JSON(utils.ResponseData{Status: 400, Message: err.Error()})
	}

	post, err := controller.Service.ScheduleText(c.UserContext(), request)
	if err != nil {
		return responseError(c, err)
	}

	return responseSuccess(c, "Post scheduled", post)
}

func (controller *Scheduler) ScheduleImage(c *fiber.Ctx) error {
	var request domainScheduler.ScheduleImageRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(400).JSON(utils.ResponseData{Status: 400, Message: err.Error()})
	}

	// The image can arrive as an upload instead of a server-side path.
	if file, err := c.FormFile("image"); err == nil && file != nil {
		mediaDir := config.Global.Paths.Media
		if err := utils.CreateFolder(mediaDir); err != nil {
			return responseError(c, err)
		}
		savedPath := filepath.Join(mediaDir, uuid.NewString()+filepath.Ext(file.Filename))
		if err := fasthttp.SaveMultipartFile(file, savedPath); err != nil {
			return responseError(c, err)
		}
		request.ImagePath = savedPath
	}

	post, err := controller.Service.ScheduleImage(c.UserContext(), request)
	if err != nil {
		return responseError(c, err)
	}

	return responseSuccess(c, "Image post scheduled", post)
}

func (controller *Scheduler) List(c *fiber.Ctx) error {
	limit, err := strconv.Atoi(c.Query("limit", "0"))
	if err != nil {
		return c.Status(400).JSON(utils.ResponseData{Status: 400, Message: "limit must be a number"})
	}

	status, err := validations.ValidateListRequest(c.Query("status"), limit)
	if err != nil {
		return responseError(c, err)
	}

	posts, err := controller.Service.List(c.UserContext(), domainScheduler.ListRequest{
		Status: status,
		Limit:  limit,
	})
	if err != nil {
		return responseError(c, err)
	}

	return responseSuccess(c, "Scheduled posts retrieved", posts)
}

func (controller *Scheduler) Stats(c *fiber.Ctx) error {
	stats, err := controller.Service.Stats(c.UserContext())
	if err != nil {
		return responseError(c, err)
	}

	return responseSuccess(c, "Queue statistics retrieved", stats)
}

func (controller *Scheduler) Get(c *fiber.Ctx) error {
	post, err := controller.Service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return responseError(c, err)
	}

	return responseSuccess(c, "Scheduled post retrieved", post)
}

func (controller *Scheduler) Update(c *fiber.Ctx) error {
	var request domainScheduler.UpdateRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(400).JSON(utils.ResponseData{Status: 400, Message: err.Error()})
	}

	post, err := controller.Service.Update(c.UserContext(), c.Params("id"), request)
	if err != nil {
		return responseError(c, err)
	}

	return responseSuccess(c, "Scheduled post updated", post)
}

func (controller *Scheduler) Cancel(c *fiber.Ctx) error {
	if err := controller.Service.Cancel(c.UserContext(), c.Params("id")); err != nil {
		return responseError(c, err)
	}

	return responseSuccess(c, "Scheduled post cancelled", nil)
}

func (controller *Scheduler) Purge(c *fiber.Ctx) error {
	if err := controller.Service.Purge(c.UserContext(), c.Params("id")); err != nil {
		return responseError(c, err)
	}

	return responseSuccess(c, "Scheduled post removed", nil)
}
