package httphandler

import (
	"github.com/gaze-network/ticket-integrity/core/types"
	"github.com/gaze-network/ticket-integrity/modules/analytics/usecase"
	"github.com/samber/lo"
)

type HttpHandler struct {
	usecase *usecase.Usecase
}

func New(usecase *usecase.Usecase) *HttpHandler {
	return &HttpHandler{
		usecase: usecase,
	}
}

type image struct {
	Uri    string            `json:"uri"`
	Source types.ImageSource `json:"source"`
}

func mapImage(i types.Image) image {
	return image{Uri: i.URI, Source: i.Source}
}

// partial is embedded in every analytics result; missing sections are reported as zero values.
type partial struct {
	Partial bool     `json:"partial"`
	Missing []string `json:"missing"`
}

func mapPartial(missing []usecase.Section) partial {
	return partial{
		Partial: len(missing) > 0,
		Missing: lo.Map(missing, func(s usecase.Section, _ int) string { return string(s) }),
	}
}
