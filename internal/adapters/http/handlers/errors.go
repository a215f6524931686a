package handlers

import (
	"log"
	"strconv"

	"libraryhub/internal/core/domain"
	"libraryhub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// renderError maps a service error onto a status code.
// Domain messages are shown verbatim; anything else is logged and hidden.
func renderError(c *fiber.Ctx, err error, fallback string) error {
	message := domain.PublicMessage(err, fallback)

	switch domain.KindOf(err) {
	case domain.KindValidation:
		return response.BadRequest(c, message)
	case domain.KindNotFound:
		return response.NotFound(c, message)
	case domain.KindConflict:
		return response.Conflict(c, message)
	case domain.KindAuth:
		return response.Unauthorized(c, message)
	case domain.KindConfig:
		return response.InternalServerError(c, message)
	default:
		log.Printf("❌ %s: %v", fallback, err)
		return response.InternalServerError(c, fallback)
	}
}

// paramID parses the :id route parameter
func paramID(c *fiber.Ctx) (uint, bool) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// queryID parses an optional numeric query parameter; 0 means absent
func queryID(c *fiber.Ctx, key string) uint {
	id, err := strconv.ParseUint(c.Query(key), 10, 32)
	if err != nil {
		return 0
	}
	return uint(id)
}
