package rest

import (
	"github.com/gofiber/fiber/v2"

	"github.com/crossforge/xcodemcp/config"
)

type App struct{}

func InitRestApp(app fiber.Router) App {
	rest := App{}
	app.Get("/app/version", rest.GetVersion)
	app.Get("/health", rest.GetHealth)

	return rest
}

func (handler *App) GetHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (handler *App) GetVersion(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"version": config.AppVersion,
		"os":      config.AppOs,
	})
}
