package api

import (
	"github.com/gaze-network/ticket-integrity/modules/marketplace/api/httphandler"
	"github.com/gaze-network/ticket-integrity/modules/marketplace/offers"
)

func NewHTTPHandler(manager *offers.Manager, maxBatchSize int) *httphandler.HttpHandler {
	return httphandler.New(manager, maxBatchSize)
}
