package requestcontext

import (
	"context"
	"net/http"
	"strings"

	"github.com/gaze-network/ticket-integrity/core/types"
	"github.com/gaze-network/ticket-integrity/pkg/logger"
	"github.com/gofiber/fiber/v2"
)

// CallerHeader carries the address the request acts for (scanner, seller or buyer).
const CallerHeader = "X-Caller-Address"

type callerKey struct{}

// GetCaller returns the normalized caller address, or an empty address if the request didn't send one.
func GetCaller(ctx context.Context) types.Address {
	if caller, ok := ctx.Value(callerKey{}).(types.Address); ok {
		return caller
	}
	return ""
}

// CallerOr returns fallback when it's set, otherwise the caller from the request context.
func CallerOr(ctx context.Context, fallback string) types.Address {
	if !types.Address(fallback).IsZero() {
		return types.Address(fallback)
	}
	return GetCaller(ctx)
}

func WithCaller() Option {
	return func(ctx context.Context, c *fiber.Ctx) (context.Context, error) {
		raw := strings.TrimSpace(c.Get(CallerHeader))
		if raw == "" {
			return ctx, nil
		}
		if strings.ContainsAny(raw, " \t,") {
			return ctx, requestcontextError{
				status:  http.StatusBadRequest,
				message: "malformed " + CallerHeader + " header",
			}
		}

		caller := types.Address(raw).Normalize()
		ctx = context.WithValue(ctx, callerKey{}, caller)
		ctx = logger.WithContext(ctx, "caller", caller.String())
		return ctx, nil
	}
}
