package config

type Config struct {
	BatchConcurrency int      `mapstructure:"batch_concurrency"` // ledger writes in flight per batch request
	MaxBatchSize     int      `mapstructure:"max_batch_size"`
	APIHandlers      []string `mapstructure:"api_handlers"` // List of API handlers to enable. (e.g. `http`)
}
