package core

import "github.com/gofiber/fiber/v2"

// Module is a feature set the service can enable by name (e.g. `gate`, `marketplace`, `analytics`).
type Module interface {
	Name() string

	// Mount registers the module's HTTP routes on the given router.
	Mount(router fiber.Router) error
}
