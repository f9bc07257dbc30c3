package rest

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	domainCache "github.com/crossforge/xcodemcp/domains/cache"
	"github.com/crossforge/xcodemcp/pkg/utils"
)

type Cache struct {
	Service domainCache.ICacheUsecase
}

func InitRestCache(app fiber.Router, service domainCache.ICacheUsecase) Cache {
	rest := Cache{Service: service}
	app.Get("/cache/stats", rest.GetStats)
	app.Get("/cache/config", rest.GetConfig)
	app.Put("/cache/config", rest.SetConfig)
	app.Post("/cache/clear", rest.Clear)
	app.Get("/cache/responses", rest.ListResponses)
	app.Get("/cache/responses/:id", rest.GetResponse)

	return rest
}

func (handler *Cache) GetStats(c *fiber.Ctx) error {
	cacheType := c.Query("cache_type", string(domainCache.TypeAll))
	stats, err := handler.Service.GetStats(c.UserContext(), cacheType)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Cache stats retrieved",
		Results: stats,
	})
}

func (handler *Cache) GetConfig(c *fiber.Ctx) error {
	config, err := handler.Service.GetConfig(c.UserContext())
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Cache config retrieved",
		Results: config,
	})
}

func (handler *Cache) SetConfig(c *fiber.Ctx) error {
	var request domainCache.SetConfigRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(400).JSON(utils.ResponseData{
			Status:  400,
			Code:    "BAD_REQUEST",
			Message: err.Error(),
		})
	}

	config, err := handler.Service.SetConfig(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Cache config updated",
		Results: config,
	})
}

func (handler *Cache) Clear(c *fiber.Ctx) error {
	cacheType := c.Query("cache_type", string(domainCache.TypeAll))
	result, err := handler.Service.Clear(c.UserContext(), cacheType)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Cache cleared",
		Results: result,
	})
}

func (handler *Cache) ListResponses(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "0"))
	response, err := handler.Service.ListResponses(c.UserContext(), domainCache.ListResponsesRequest{
		Tool:  c.Query("tool"),
		Limit: limit,
	})
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Stored responses retrieved",
		Results: response,
	})
}

func (handler *Cache) GetResponse(c *fiber.Ctx) error {
	tailLines, _ := strconv.Atoi(c.Query("tail_lines", "0"))
	detail, err := handler.Service.GetResponse(c.UserContext(), c.Params("id"), tailLines)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Stored response retrieved",
		Results: detail,
	})
}
