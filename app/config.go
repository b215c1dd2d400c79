package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"cosmossdk.io/math"
	dbm "github.com/cosmos/cosmos-db"
	"github.com/spf13/viper"

	"github.com/TrustedSmartChain/walletcore/client"
)

const (
	ConfigName = "walletd"
	EnvPrefix  = "WALLETD"
)

// Option keys read through AppOptions.
const (
	FlagSyncPageLimit   = "sync.page_limit"
	FlagSyncTimeout     = "sync.timeout"
	FlagNotifyQueueSize = "nats.queue_size"
	FlagHistoryPageSize = "history.page_size"
)

type ChainConfig struct {
	ID           string `mapstructure:"id"`
	GRPC         string `mapstructure:"grpc"`
	Websocket    string `mapstructure:"websocket"`
	Bech32Prefix string `mapstructure:"bech32_prefix"`
	FeeDenom     string `mapstructure:"fee_denom"`
	GasPrice     string `mapstructure:"gas_price"`
}

type StoreConfig struct {
	Backend string `mapstructure:"backend"`
	Dir     string `mapstructure:"dir"`
}

type SyncConfig struct {
	PageLimit uint64        `mapstructure:"page_limit"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type NATSConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	URL       string `mapstructure:"url"`
	Subject   string `mapstructure:"subject"`
	QueueSize int    `mapstructure:"queue_size"`
}

type MetricsConfig struct {
	Listen string `mapstructure:"listen"`
}

// KeysConfig names the key material of the local account. Both values are
// normally supplied through the environment.
type KeysConfig struct {
	Secret      string `mapstructure:"secret"`
	UtilitySeed string `mapstructure:"utility_seed"`
	Passphrase  string `mapstructure:"passphrase"`
}

type Config struct {
	Chain   ChainConfig   `mapstructure:"chain"`
	Store   StoreConfig   `mapstructure:"store"`
	Sync    SyncConfig    `mapstructure:"sync"`
	NATS    NATSConfig    `mapstructure:"nats"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Keys    KeysConfig    `mapstructure:"keys"`
}

// SetDefaults registers the default of every option on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("chain.id", "secret-4")
	v.SetDefault("chain.grpc", "localhost:9090")
	v.SetDefault("chain.websocket", "ws://localhost:26657/websocket")
	v.SetDefault("chain.bech32_prefix", "secret")
	v.SetDefault("chain.fee_denom", "uscrt")
	v.SetDefault("chain.gas_price", "0.25")
	v.SetDefault("store.backend", string(dbm.GoLevelDBBackend))
	v.SetDefault("store.dir", "data")
	v.SetDefault(FlagSyncPageLimit, 100)
	v.SetDefault(FlagSyncTimeout, client.DefaultTimeout)
	v.SetDefault("nats.enabled", false)
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.subject", "walletd.notifications")
	v.SetDefault(FlagNotifyQueueSize, 256)
	v.SetDefault("metrics.listen", "")
	v.SetDefault(FlagHistoryPageSize, 10)
	// known keys are the only ones Unmarshal picks up from the environment
	v.SetDefault("keys.secret", "")
	v.SetDefault("keys.utility_seed", "")
	v.SetDefault("keys.passphrase", "")
}

// NewViper returns a viper instance reading walletd.yaml from the given
// directories and WALLETD_* environment variables. chain.id is read from
// WALLETD_CHAIN_ID.
func NewViper(configDirs ...string) *viper.Viper {
	v := viper.New()
	v.SetConfigName(ConfigName)
	v.SetConfigType("yaml")
	for _, dir := range configDirs {
		v.AddConfigPath(dir)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// LoadConfig reads the config file, if any, and decodes the merged settings.
func LoadConfig(v *viper.Viper) (Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.Chain.ID == "" {
		return errors.New("chain.id must be set")
	}
	if c.Chain.Bech32Prefix == "" {
		return errors.New("chain.bech32_prefix must be set")
	}
	if _, err := math.LegacyNewDecFromStr(c.Chain.GasPrice); err != nil {
		return fmt.Errorf("chain.gas_price: %w", err)
	}
	switch dbm.BackendType(c.Store.Backend) {
	case dbm.GoLevelDBBackend, dbm.MemDBBackend:
	default:
		return fmt.Errorf("store.backend %q is not supported", c.Store.Backend)
	}
	if c.NATS.Enabled && c.NATS.URL == "" {
		return errors.New("nats.url must be set when nats is enabled")
	}
	return nil
}

// ChainInfo is the chain context passed to every core operation.
func (c Config) ChainInfo() client.ChainInfo {
	return client.ChainInfo{
		ChainID:      c.Chain.ID,
		Bech32Prefix: c.Chain.Bech32Prefix,
		FeeDenom:     c.Chain.FeeDenom,
		GasPrice:     math.LegacyMustNewDecFromStr(c.Chain.GasPrice),
	}
}

// OpenDB opens the backing store selected by cfg.
func OpenDB(cfg StoreConfig) (dbm.DB, error) {
	return dbm.NewDB(ConfigName, dbm.BackendType(cfg.Backend), cfg.Dir)
}
