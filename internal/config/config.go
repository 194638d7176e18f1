package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/Maphikza/btc-tx-broadcaster/internal/chain"
	"github.com/Maphikza/btc-tx-broadcaster/internal/network"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const EnvPrefix = "BROADCASTER"

// Config is fixed at process launch.
type Config struct {
	Network       string        `mapstructure:"network" json:"network"`
	BitcoinURL    string        `mapstructure:"bitcoin_url" json:"bitcoin_url"`
	RPCUsername   string        `mapstructure:"rpc_username" json:"rpc_username"`
	RPCPassword   string        `mapstructure:"rpc_password" json:"rpc_password"`
	Host          string        `mapstructure:"host" json:"host"`
	Port          uint16        `mapstructure:"port" json:"port"`
	AllowedOrigin string        `mapstructure:"allowed_origin" json:"allowed_origin"`
	Log           LogConfig     `mapstructure:"log" json:"log"`
	Auth          AuthConfig    `mapstructure:"auth" json:"auth"`
	Journal       JournalConfig `mapstructure:"journal" json:"journal"`
}

type LogConfig struct {
	Level string `mapstructure:"level" json:"level"`
	File  string `mapstructure:"file" json:"file"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" json:"jwt_secret"`
}

type JournalConfig struct {
	Path string `mapstructure:"path" json:"path"`
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("network", "regtest")
	v.SetDefault("bitcoin_url", "http://127.0.0.1")
	v.SetDefault("rpc_username", "user")
	v.SetDefault("rpc_password", "password")
	v.SetDefault("host", "127.0.0.1")
	v.SetDefault("port", 5558)
	v.SetDefault("allowed_origin", "*")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("journal.path", "")
}

// LoadConfig fills v from, in increasing priority: defaults, the config file,
// the .env file and the process environment. configFile may be empty, in
// which case config.json in the working directory is used if present.
func LoadConfig(v *viper.Viper, configFile string, envFile string) error {
	SetDefaults(v)

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("error loading env file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("json")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

// Unmarshal decodes v into a Config.
func Unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	return &cfg, nil
}

// WriteDefault writes a config file holding the defaults to path. An existing
// file is never overwritten.
func WriteDefault(path string) error {
	v := viper.New()
	SetDefaults(v)
	if err := v.SafeWriteConfigAs(path); err != nil {
		return fmt.Errorf("error creating config file: %w", err)
	}
	return nil
}

// ConnDescriptor resolves the RPC connection parameters. An unsupported
// network name is reported here, before anything binds a port.
func (c *Config) ConnDescriptor() (chain.ConnDescriptor, error) {
	n, err := network.ParseNetwork(c.Network)
	if err != nil {
		return chain.ConnDescriptor{}, err
	}
	return chain.ConnDescriptor{
		Network: n,
		URL:     c.BitcoinURL,
		User:    c.RPCUsername,
		Pass:    c.RPCPassword,
	}, nil
}

// ListenAddr is the address the HTTP server binds to.
func (c *Config) ListenAddr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(int(c.Port)))
}
