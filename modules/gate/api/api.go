package api

import (
	"github.com/gaze-network/ticket-integrity/modules/gate/api/httphandler"
	"github.com/gaze-network/ticket-integrity/modules/gate/usecase"
)

func NewHTTPHandler(usecase *usecase.Usecase) *httphandler.HttpHandler {
	return httphandler.New(usecase)
}
