// Package marketplace serves the secondary market: offer views, offer transitions and batch listing writes.
package marketplace

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ticket-integrity/common/errs"
	"github.com/gaze-network/ticket-integrity/core"
	"github.com/gaze-network/ticket-integrity/core/ledger"
	"github.com/gaze-network/ticket-integrity/internal/config"
	marketplaceapi "github.com/gaze-network/ticket-integrity/modules/marketplace/api"
	"github.com/gaze-network/ticket-integrity/modules/marketplace/offers"
	"github.com/gaze-network/ticket-integrity/pkg/clock"
	"github.com/gaze-network/ticket-integrity/pkg/logger"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/do/v2"
	"github.com/samber/lo"
)

func New(injector do.Injector) (core.Module, error) {
	ctx := do.MustInvoke[context.Context](injector)
	conf := do.MustInvoke[config.Config](injector)
	reader := do.MustInvoke[ledger.Reader](injector)
	writer := do.MustInvoke[ledger.Writer](injector)

	moduleConf := conf.Modules.Marketplace
	manager := offers.NewManager(reader, writer, clock.Real(), moduleConf.BatchConcurrency)
	handler := marketplaceapi.NewHTTPHandler(manager, moduleConf.MaxBatchSize)

	// Mount API
	apiHandlers := lo.Uniq(moduleConf.APIHandlers)
	for _, h := range apiHandlers {
		switch h {
		case "http":
			httpServer := do.MustInvoke[*fiber.App](injector)
			if err := handler.Mount(httpServer); err != nil {
				return nil, errors.Wrap(err, "can't mount Marketplace API")
			}
			logger.InfoContext(ctx, "Mounted HTTP handler")
		default:
			return nil, errors.Wrapf(errs.Unsupported, "%q API handler is not supported", h)
		}
	}
	return handler, nil
}
