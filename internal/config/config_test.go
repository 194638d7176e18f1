package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Maphikza/btc-tx-broadcaster/internal/network"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, configFile, envFile string) *Config {
	t.Helper()
	v := viper.New()
	require.NoError(t, LoadConfig(v, configFile, envFile))
	cfg, err := Unmarshal(v)
	require.NoError(t, err)
	return cfg
}

func TestDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	cfg := load(t, "", "")

	assert.Equal(t, "regtest", cfg.Network)
	assert.Equal(t, "http://127.0.0.1", cfg.BitcoinURL)
	assert.Equal(t, "user", cfg.RPCUsername)
	assert.Equal(t, "password", cfg.RPCPassword)
	assert.Equal(t, "127.0.0.1:5558", cfg.ListenAddr())
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Auth.JWTSecret)
	assert.Empty(t, cfg.Journal.Path)
}

func TestConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broadcaster.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"network": "signet",
		"port": 6000,
		"log": {"level": "debug"}
	}`), 0600))
	t.Setenv("BROADCASTER_RPC_PASSWORD", "from-env")
	t.Setenv("BROADCASTER_JOURNAL_PATH", "/tmp/journal.db")

	cfg := load(t, path, "")

	assert.Equal(t, "signet", cfg.Network)
	assert.Equal(t, uint16(6000), cfg.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "from-env", cfg.RPCPassword)
	assert.Equal(t, "/tmp/journal.db", cfg.Journal.Path)
}

func TestEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("BROADCASTER_NETWORK=testnet\n"), 0600))
	t.Setenv("BROADCASTER_NETWORK", "")
	os.Unsetenv("BROADCASTER_NETWORK")
	chdir(t, dir)

	cfg := load(t, "", envFile)
	assert.Equal(t, "testnet", cfg.Network)
}

func TestMissingEnvFileIsIgnored(t *testing.T) {
	chdir(t, t.TempDir())
	cfg := load(t, "", "does-not-exist.env")
	assert.Equal(t, "regtest", cfg.Network)
}

func TestExplicitConfigFileMissing(t *testing.T) {
	v := viper.New()
	assert.Error(t, LoadConfig(v, filepath.Join(t.TempDir(), "nope.json"), ""))
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, WriteDefault(path))
	assert.Error(t, WriteDefault(path), "existing file must not be overwritten")

	cfg := load(t, path, "")
	assert.Equal(t, "regtest", cfg.Network)
	assert.Equal(t, uint16(5558), cfg.Port)
}

func TestConnDescriptor(t *testing.T) {
	cfg := &Config{Network: "Bitcoin", BitcoinURL: "http://10.0.0.5", RPCUsername: "u", RPCPassword: "p"}
	desc, err := cfg.ConnDescriptor()
	require.NoError(t, err)
	assert.Equal(t, network.Bitcoin, desc.Network)
	endpoint, err := desc.Endpoint()
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.5:8332", endpoint)
	assert.Equal(t, "u", desc.User)
	assert.Equal(t, "p", desc.Pass)
}

func TestConnDescriptor_UnsupportedNetwork(t *testing.T) {
	cfg := &Config{Network: "moonnet"}
	_, err := cfg.ConnDescriptor()
	assert.ErrorIs(t, err, network.ErrUnsupportedNetwork)
}
