package config

type Config struct {
	Credential  CredentialConfig `mapstructure:"credential"`
	APIHandlers []string         `mapstructure:"api_handlers"` // List of API handlers to enable. (e.g. `http`)
}

// CredentialConfig is the signing configuration of gate credentials.
type CredentialConfig struct {
	Key        string `mapstructure:"key"`         // hex encoded 32 bytes MAC key, see `generate-key` command
	ContractID string `mapstructure:"contract_id"` // ticket contract this deployment issues credentials for
	ChainID    uint64 `mapstructure:"chain_id"`
}
