package rest

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	domainPost "github.com/fbautopost/backend/domains/post"
	"github.com/fbautopost/backend/pkg/utils"
)

type Post struct {
	Service domainPost.IPostUsecase
}

func InitRestPost(app fiber.Router, service domainPost.IPostUsecase) Post {
	rest := Post{Service: service}

	app.Post("/post/text", rest.PublishText)
	app.Post("/post/image", rest.PublishImage)
	app.Get("/post/history", rest.History)
	app.Get("/post/usage", rest.Usage)
	app.Delete("/post/:post_id", rest.DeletePost)
	app.Get("/page", rest.PageInfo)
	app.Get("/page/posts", rest.RecentPosts)
	app.Get("/link/preview", rest.PreviewLink)

	return rest
}

func (controller *Post) PublishText(c *fiber.Ctx) error {
	var request domainPost.PublishTextRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(400).JSON(utils.ResponseData{Status: 400, Message: err.Error()})
	}

	response, err := controller.Service.PublishText(c.UserContext(), request)
	if err != nil {
		return responseError(c, err)
	}

	return responseSuccess(c, "Post published", response)
}

func (controller *Post) PublishImage(c *fiber.Ctx) error {
	var request domainPost.PublishImageRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(400).JSON(utils.ResponseData{Status: 400, Message: err.Error()})
	}

	if file, err := c.FormFile("image"); err == nil {
		request.Image = file
	}

	response, err := controller.Service.PublishImage(c.UserContext(), request)
	if err != nil {
		return responseError(c, err)
	}

	return responseSuccess(c, "Image published", response)
}

func (controller *Post) DeletePost(c *fiber.Ctx) error {
	if err := controller.Service.DeletePost(c.UserContext(), c.Params("post_id")); err != nil {
		return responseError(c, err)
	}

	return responseSuccess(c, "Post deleted", nil)
}

func (controller *Post) PageInfo(c *fiber.Ctx) error {
	info, err := controller.Service.PageInfo(c.UserContext())
	if err != nil {
		return responseError(c, err)
	}

	return responseSuccess(c, "Page info retrieved", info)
}

func (controller *Post) RecentPosts(c *fiber.Ctx) error {
	limit, err := strconv.Atoi(c.Query("limit", "10"))
	if err != nil {
		return c.Status(400).JSON(utils.ResponseData{Status: 400, Message: "limit must be a number"})
	}

	posts, err := controller.Service.RecentPosts(c.UserContext(), limit)
	if err != nil {
		return responseError(c, err)
	}

	return responseSuccess(c, "Recent posts retrieved", posts)
}

func (controller *Post) PreviewLink(c *fiber.Ctx) error {
	url := c.Query("url")
	if url == "" {
		return c.Status(400).JSON(utils.ResponseData{Status: 400, Message: "url query parameter is required"})
	}

	preview, err := controller.Service.PreviewLink(c.UserContext(), url)
	if err != nil {
		return responseError(c, err)
	}

	return responseSuccess(c, "Link preview retrieved", preview)
}

func (controller *Post) History(c *fiber.Ctx) error {
	limit, err := strconv.Atoi(c.Query("limit", "20"))
	if err != nil {
		return c.Status(400).JSON(utils.ResponseData{Status: 400, Message: "limit must be a number"})
	}

	records, err := controller.Service.History(c.UserContext(), limit)
	if err != nil {
		return responseError(c, err)
	}

	return responseSuccess(c, "Publish history retrieved", records)
}

func (controller *Post) Usage(c *fiber.Ctx) error {
	usage, err := controller.Service.Usage(c.UserContext())
	if err != nil {
		return responseError(c, err)
	}

	return responseSuccess(c, "API usage retrieved", usage)
}
