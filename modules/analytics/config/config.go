package config

type Config struct {
	DefaultImage string   `mapstructure:"default_image"` // image shown for tiers and events without one
	APIHandlers  []string `mapstructure:"api_handlers"`  // List of API handlers to enable. (e.g. `http`)
}
