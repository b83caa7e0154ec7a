// Package gate admits ticket holders at the venue: it issues and scans signed credentials
// and confirms entry by flipping the ticket's used latch on the ledger.
package gate

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ticket-integrity/common/errs"
	"github.com/gaze-network/ticket-integrity/core"
	"github.com/gaze-network/ticket-integrity/core/ledger"
	"github.com/gaze-network/ticket-integrity/internal/config"
	gateapi "github.com/gaze-network/ticket-integrity/modules/gate/api"
	"github.com/gaze-network/ticket-integrity/modules/gate/credential"
	gateusecase "github.com/gaze-network/ticket-integrity/modules/gate/usecase"
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
	identity := do.MustInvoke[ledger.IdentityResolver](injector)

	credConf := conf.Modules.Gate.Credential
	key, err := credential.ParseKey(credConf.Key)
	if err != nil {
		return nil, errors.Wrap(err, "invalid gate credential key")
	}
	if credConf.ContractID == "" {
		return nil, errors.Wrap(errs.InvalidArgument, "gate credential contract id is required")
	}
	codec, err := credential.New(key)
	if err != nil {
		return nil, errors.Wrap(err, "can't create credential codec")
	}

	usecase := gateusecase.New(reader, writer, identity, codec, gateusecase.Deployment{
		ContractID: credConf.ContractID,
		ChainID:    credConf.ChainID,
	}, clock.Real())
	handler := gateapi.NewHTTPHandler(usecase)

	// Mount API
	apiHandlers := lo.Uniq(conf.Modules.Gate.APIHandlers)
	for _, h := range apiHandlers {
		switch h {
		case "http":
			httpServer := do.MustInvoke[*fiber.App](injector)
			if err := handler.Mount(httpServer); err != nil {
				return nil, errors.Wrap(err, "can't mount Gate API")
			}
			logger.InfoContext(ctx, "Mounted HTTP handler")
		default:
			return nil, errors.Wrapf(errs.Unsupported, "%q API handler is not supported", h)
		}
	}
	return handler, nil
}
