package rest

import (
	"github.com/gofiber/fiber/v2"

	domainPersistence "github.com/crossforge/xcodemcp/domains/persistence"
	"github.com/crossforge/xcodemcp/pkg/utils"
)

type Persistence struct {
	Service domainPersistence.IPersistenceUsecase
}

func InitRestPersistence(app fiber.Router, service domainPersistence.IPersistenceUsecase) Persistence {
	rest := Persistence{Service: service}
	app.Get("/persistence/status", rest.GetStatus)
	app.Post("/persistence/enable", rest.Enable)
	app.Post("/persistence/disable", rest.Disable)

	return rest
}

func (handler *Persistence) GetStatus(c *fiber.Ctx) error {
	includeStorageInfo := c.QueryBool("include_storage_info", false)
	status, err := handler.Service.Status(c.UserContext(), includeStorageInfo)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Persistence status retrieved",
		Results: status,
	})
}

func (handler *Persistence) Enable(c *fiber.Ctx) error {
	var body struct {
		CacheDir string `json:"cache_dir"`
	}
	// An empty body keeps the configured directory.
	_ = c.BodyParser(&body)

	status, err := handler.Service.Enable(c.UserContext(), body.CacheDir)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Persistence enabled",
		Results: status,
	})
}

func (handler *Persistence) Disable(c *fiber.Ctx) error {
	var body struct {
		ClearData bool `json:"clear_data"`
	}
	_ = c.BodyParser(&body)

	status, err := handler.Service.Disable(c.UserContext(), body.ClearData)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Persistence disabled",
		Results: status,
	})
}
