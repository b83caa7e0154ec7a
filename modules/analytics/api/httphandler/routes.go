package httphandler

import (
	"github.com/gofiber/fiber/v2"
)

func (h *HttpHandler) Name() string {
	return "analytics"
}

func (h *HttpHandler) Mount(router fiber.Router) error {
	r := router.Group("/v1/analytics")

	r.Get("/events/:eventId", h.GetEventSummary)
	r.Get("/sellers/:address", h.GetSellerSummary)
	return nil
}
