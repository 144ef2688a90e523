package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/solo"
)

func TestParseHostConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := parseHostConfig([]byte("{}"))
		require.NoError(t, err)
		require.Equal(t, solo.DefaultConfig(), cfg.Election)
		require.Equal(t, defaultNATSURL, cfg.NATS.URL)
		require.Equal(t, defaultAdminAddr, cfg.Admin.Addr)
		require.Equal(t, defaultRelayName, cfg.Relay.Prefix)
		require.Empty(t, cfg.Consumers)
	})

	t.Run("full file", func(t *testing.T) {
		data := []byte(`
election:
  leaseId: orders-relay
  heartbeatInterval: 2s
  heartbeatExpiration: 20s
nats:
  url: nats://nats:4222
admin:
  addr: 127.0.0.1:9000
logLevel: debug
consumers:
  - stream: ORDERS
    durable: orders-relay
    filterSubjects: [orders.created]
    maxDeliver: 3
relay:
  prefix: out
`)
		cfg, err := parseHostConfig(data)
		require.NoError(t, err)
		require.Equal(t, "orders-relay", cfg.Election.LeaseID)
		require.Equal(t, 2*time.Second, cfg.Election.HeartbeatInterval)
		require.Equal(t, 20*time.Second, cfg.Election.HeartbeatExpiration)
		require.Equal(t, time.Second, cfg.Election.LeaderCheckInterval, "unset fields keep defaults")
		require.Equal(t, "nats://nats:4222", cfg.NATS.URL)
		require.Equal(t, "127.0.0.1:9000", cfg.Admin.Addr)
		require.Equal(t, "debug", cfg.LogLevel)
		require.Len(t, cfg.Consumers, 1)
		require.Equal(t, "ORDERS", cfg.Consumers[0].StreamName)
		require.Equal(t, []string{"orders.created"}, cfg.Consumers[0].FilterSubjects)
		require.Equal(t, 3, cfg.Consumers[0].MaxDeliver)
		require.Equal(t, "out", cfg.Relay.Prefix)
	})

	t.Run("invalid election config", func(t *testing.T) {
		_, err := parseHostConfig([]byte("election:\n  heartbeatInterval: 5s\n  heartbeatExpiration: 6s\n"))
		require.ErrorIs(t, err, solo.ErrInvalidConfig)
	})

	t.Run("consumer without durable", func(t *testing.T) {
		_, err := parseHostConfig([]byte("consumers:\n  - stream: ORDERS\n"))
		require.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := parseHostConfig([]byte("election: ["))
		require.Error(t, err)
	})
}

func TestLoadHostConfig(t *testing.T) {
	cfg, err := loadHostConfig("")
	require.NoError(t, err)
	require.Equal(t, defaultHostConfig(), cfg)

	path := filepath.Join(t.TempDir(), "solo.yaml")
	require.NoError(t, os.WriteFile(path, []byte("election:\n  leaseId: from-file\n"), 0o600))

	cfg, err = loadHostConfig(path)
	require.NoError(t, err)
	require.Equal(t, "from-file", cfg.Election.LeaseID)

	_, err = loadHostConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestFlagsOverrideFile(t *testing.T) {
	cmd := newRootCommand()
	cmd.RunE = func(*cobra.Command, []string) error { return nil }
	require.NoError(t, cmd.ParseFlags([]string{"--nats-url", "nats://flag:4222", "--log-level", "warn"}))

	f := &flags{}
	f.natsURL, _ = cmd.Flags().GetString("nats-url")
	f.logLevel, _ = cmd.Flags().GetString("log-level")

	cfg := defaultHostConfig()
	f.apply(cmd, &cfg)
	require.Equal(t, "nats://flag:4222", cfg.NATS.URL)
	require.Equal(t, "warn", cfg.LogLevel)
	require.Equal(t, defaultAdminAddr, cfg.Admin.Addr, "unchanged flags keep file values")
}
