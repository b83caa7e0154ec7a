package httphandler

import (
	"github.com/gofiber/fiber/v2"
)

func (h *HttpHandler) Name() string {
	return "marketplace"
}

func (h *HttpHandler) Mount(router fiber.Router) error {
	r := router.Group("/v1/marketplace")

	// batch routes first, ":offerId" would match "batch"
	r.Post("/offers/batch/cancel", h.BatchCancelOffers)
	r.Get("/offers/token/:tokenId", h.GetTokenOffers)
	r.Get("/offers/wallet/:address", h.GetWalletOffers)
	r.Post("/offers/:offerId/accept", h.AcceptOffer)
	r.Post("/offers/:offerId/cancel", h.CancelOffer)
	r.Post("/listings/batch/cancel", h.BatchCancelListings)
	r.Post("/listings/batch/list", h.BatchListTickets)
	return nil
}
