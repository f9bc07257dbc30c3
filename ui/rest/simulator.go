package rest

import (
	"github.com/gofiber/fiber/v2"

	domainSimulator "github.com/crossforge/xcodemcp/domains/simulator"
	"github.com/crossforge/xcodemcp/pkg/utils"
)

type Simulator struct {
	Service domainSimulator.ISimulatorUsecase
}

func InitRestSimulator(app fiber.Router, service domainSimulator.ISimulatorUsecase) Simulator {
	rest := Simulator{Service: service}
	app.Get("/simulators", rest.List)
	app.Post("/simulators/:udid/boot", rest.Boot)
	app.Get("/simulators/preferred", rest.Preferred)

	return rest
}

func (handler *Simulator) List(c *fiber.Ctx) error {
	forceRefresh := c.QueryBool("force_refresh", false)
	result, err := handler.Service.List(c.UserContext(), forceRefresh)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Simulators retrieved",
		Results: result,
	})
}

func (handler *Simulator) Boot(c *fiber.Ctx) error {
	var body struct {
		ProjectPath string `json:"project_path"`
	}
	_ = c.BodyParser(&body)

	result, err := handler.Service.Boot(c.UserContext(), c.Params("udid"), body.ProjectPath)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Simulator booted",
		Results: result,
	})
}

func (handler *Simulator) Preferred(c *fiber.Ctx) error {
	device, found, err := handler.Service.Preferred(c.UserContext(), c.Query("project_path"))
	utils.PanicIfNeeded(err)

	if !found {
		return c.JSON(utils.ResponseData{
			Status:  200,
			Code:    "SUCCESS",
			Message: "No preferred simulator for this project",
		})
	}

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Preferred simulator retrieved",
		Results: device,
	})
}
