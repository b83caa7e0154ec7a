package httphandler

import (
	"github.com/gofiber/fiber/v2"
)

func (h *HttpHandler) Name() string {
	return "gate"
}

func (h *HttpHandler) Mount(router fiber.Router) error {
	r := router.Group("/v1/gate")

	r.Post("/scan", h.Scan)
	r.Post("/confirm", h.ConfirmEntry)
	r.Post("/credentials", h.IssueCredential)
	return nil
}
