package rest

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	domainProject "github.com/crossforge/xcodemcp/domains/project"
	"github.com/crossforge/xcodemcp/pkg/utils"
)

type Project struct {
	Service domainProject.IProjectUsecase
}

func InitRestProject(app fiber.Router, service domainProject.IProjectUsecase) Project {
	rest := Project{Service: service}
	app.Get("/projects/describe", rest.Describe)
	app.Post("/projects/build", rest.Build)
	app.Get("/projects/build-log/:id", rest.BuildLog)

	return rest
}

func (handler *Project) Describe(c *fiber.Ctx) error {
	forceRefresh := c.QueryBool("force_refresh", false)
	result, err := handler.Service.Describe(c.UserContext(), c.Query("project_path"), forceRefresh)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Project described",
		Results: result,
	})
}

func (handler *Project) Build(c *fiber.Ctx) error {
	var request domainProject.BuildRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(400).JSON(utils.ResponseData{
			Status:  400,
			Code:    "BAD_REQUEST",
			Message: err.Error(),
		})
	}

	result, err := handler.Service.Build(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Build finished",
		Results: result,
	})
}

func (handler *Project) BuildLog(c *fiber.Ctx) error {
	tailLines, _ := strconv.Atoi(c.Query("tail_lines", "0"))
	log, err := handler.Service.BuildLog(c.UserContext(), c.Params("id"), tailLines)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Build log retrieved",
		Results: log,
	})
}
