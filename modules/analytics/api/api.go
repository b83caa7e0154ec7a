package api

import (
	"github.com/gaze-network/ticket-integrity/modules/analytics/api/httphandler"
	"github.com/gaze-network/ticket-integrity/modules/analytics/usecase"
)

func NewHTTPHandler(usecase *usecase.Usecase) *httphandler.HttpHandler {
	return httphandler.New(usecase)
}
