package config

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ticket-integrity/common/errs"
	"github.com/gaze-network/ticket-integrity/core/datasources"
	"github.com/gaze-network/ticket-integrity/internal/postgres"
	analyticsconfig "github.com/gaze-network/ticket-integrity/modules/analytics/config"
	gateconfig "github.com/gaze-network/ticket-integrity/modules/gate/config"
	marketplaceconfig "github.com/gaze-network/ticket-integrity/modules/marketplace/config"
	"github.com/gaze-network/ticket-integrity/pkg/cache"
	"github.com/gaze-network/ticket-integrity/pkg/logger"
	"github.com/gaze-network/ticket-integrity/pkg/logger/slogx"
	"github.com/gaze-network/ticket-integrity/pkg/middleware/requestcontext"
	"github.com/gaze-network/ticket-integrity/pkg/middleware/requestlogger"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	LedgerDriverHTTP     = "http"
	LedgerDriverPostgres = "postgres"
	LedgerDriverMemory   = "memory"
)

var (
	isInit bool
	mu     sync.Mutex
	config = &Config{
		Logger: logger.Config{
			Output: "TEXT",
		},
		HTTPServer: HTTPServerConfig{
			Port: 8080,
		},
		Ledger: LedgerConfig{
			Driver: LedgerDriverHTTP,
		},
		Cache: cache.Config{
			Driver: cache.DriverMemory,
			TTL:    cache.DefaultTTL,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
)

type Config struct {
	Logger        logger.Config    `mapstructure:"logger"`
	HTTPServer    HTTPServerConfig `mapstructure:"http_server"`
	EnableModules []string         `mapstructure:"enable_modules"`
	Ledger        LedgerConfig     `mapstructure:"ledger"`
	Cache         cache.Config     `mapstructure:"cache"`
	Modules       Modules          `mapstructure:"modules"`
	Metrics       MetricsConfig    `mapstructure:"metrics"`
}

type HTTPServerConfig struct {
	Port      int                               `mapstructure:"port"`
	Logger    requestlogger.Config              `mapstructure:"logger"`
	RequestIP requestcontext.WithClientIPConfig `mapstructure:"requestip"`
}

type LedgerConfig struct {
	// Driver selects the ledger backend. Possible values: http (default), postgres, memory
	Driver   string                          `mapstructure:"driver"`
	HTTP     datasources.LedgerGatewayConfig `mapstructure:"http"`
	Postgres postgres.Config                 `mapstructure:"postgres"`

	// Identity maps executor (session) addresses to the account they act for.
	// Addresses not in the map act for themselves.
	Identity map[string]string `mapstructure:"identity"`
}

type Modules struct {
	Gate        gateconfig.Config        `mapstructure:"gate"`
	Marketplace marketplaceconfig.Config `mapstructure:"marketplace"`
	Analytics   analyticsconfig.Config   `mapstructure:"analytics"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Validate checks settings that can't be defaulted.
func (c Config) Validate() error {
	var errList []error
	switch strings.ToLower(c.Ledger.Driver) {
	case LedgerDriverHTTP:
		if c.Ledger.HTTP.URL == "" {
			errList = append(errList, errors.New("'ledger.http.url' is required for the http ledger driver"))
		}
	case LedgerDriverPostgres, LedgerDriverMemory:
	default:
		errList = append(errList, errors.Errorf("unsupported ledger driver %q", c.Ledger.Driver))
	}
	if c.HTTPServer.Port <= 0 || c.HTTPServer.Port > 65535 {
		errList = append(errList, errors.Errorf("invalid http server port %d", c.HTTPServer.Port))
	}
	if c.Cache.TTL < 0 || c.Cache.TTL > time.Hour {
		errList = append(errList, errors.Errorf("cache ttl %s out of range", c.Cache.TTL))
	}
	if len(errList) > 0 {
		return errors.Wrapf(errs.InvalidArgument, "invalid config: %v", errors.Join(errList...))
	}
	return nil
}

// Parse parse the configuration from environment variables
func Parse(configFile ...string) Config {
	mu.Lock()
	defer mu.Unlock()
	return parse(configFile...)
}

// Load returns the loaded configuration
func Load() Config {
	mu.Lock()
	defer mu.Unlock()
	if isInit {
		return *config
	}
	return parse()
}

// BindPFlag binds a specific key to a pflag (as used by cobra).
// Example (where serverCmd is a Cobra instance):
//
//	serverCmd.Flags().Int("port", 1138, "Port to run Application server on")
//	Viper.BindPFlag("port", serverCmd.Flags().Lookup("port"))
func BindPFlag(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		logger.Panic("Something went wrong, failed to bind flag for config", slog.String("package", "config"), slogx.Error(err))
	}
}

func parse(configFile ...string) Config {
	ctx := logger.WithContext(context.Background(), slog.String("package", "config"))

	if len(configFile) > 0 && configFile[0] != "" {
		viper.SetConfigFile(configFile[0])
	} else {
		viper.AddConfigPath("./")
		viper.SetConfigName("config")
	}

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	if err := viper.ReadInConfig(); err != nil {
		var errNotfound viper.ConfigFileNotFoundError
		if errors.As(err, &errNotfound) {
			logger.WarnContext(ctx, "Config file not found, use default config value", slogx.Error(err))
		} else {
			logger.PanicContext(ctx, "Invalid config file", slogx.Error(err))
		}
	}

	if err := viper.Unmarshal(&config); err != nil {
		logger.PanicContext(ctx, "Something went wrong, failed to unmarshal config", slogx.Error(err))
	}

	isInit = true
	return *config
}
