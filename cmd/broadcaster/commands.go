package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Maphikza/btc-tx-broadcaster/internal/api"
	"github.com/Maphikza/btc-tx-broadcaster/internal/broadcast"
	"github.com/Maphikza/btc-tx-broadcaster/internal/chain"
	"github.com/Maphikza/btc-tx-broadcaster/internal/config"
	"github.com/Maphikza/btc-tx-broadcaster/internal/journal"
	"github.com/Maphikza/btc-tx-broadcaster/internal/logger"
	"github.com/Maphikza/btc-tx-broadcaster/internal/network"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const shutdownTimeout = 10 * time.Second

// execute runs cmd and closes the log file afterwards. cobra skips
// PersistentPostRun when RunE fails, so the cleanup lives here.
func execute(cmd *cobra.Command) error {
	defer logger.Cleanup()
	return cmd.Execute()
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	var cfg *config.Config

	rootCmd := &cobra.Command{
		Use:   "btc-broadcaster",
		Short: "Bitcoin transaction broadcast service",
		Long: `Accepts signed raw transactions over HTTP and submits them to a
Bitcoin Core node through its JSON-RPC interface.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			configFile, _ := cmd.Flags().GetString("config")
			envFile, _ := cmd.Flags().GetString("env-file")
			if err := config.LoadConfig(v, configFile, envFile); err != nil {
				return err
			}
			var err error
			cfg, err = config.Unmarshal(v)
			if err != nil {
				return err
			}
			return logger.Init(cfg.Log.Level, cfg.Log.File)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), cfg)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Path to a config file (default ./config.json if present)")
	flags.String("env-file", ".env", "Path to an optional .env file")
	flags.String("network", "regtest", "Bitcoin network type (bitcoin, testnet, regtest, signet)")
	flags.String("bitcoin-url", "http://127.0.0.1", "Bitcoin RPC URL")
	flags.String("rpc-username", "user", "Bitcoin RPC username")
	flags.String("rpc-password", "password", "Bitcoin RPC password")
	flags.String("host", "127.0.0.1", "Host address to bind the HTTP server")
	flags.Uint16("port", 5558, "Port to bind the HTTP server")
	flags.String("allowed-origin", "*", "Value of Access-Control-Allow-Origin")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.String("log-file", "", "Also write logs to this file")
	flags.String("jwt-secret", "", "Require HS256 bearer tokens signed with this secret")
	flags.String("journal", "", "Record broadcasts in this SQLite database")

	for key, flag := range map[string]string{
		"network":         "network",
		"bitcoin_url":     "bitcoin-url",
		"rpc_username":    "rpc-username",
		"rpc_password":    "rpc-password",
		"host":            "host",
		"port":            "port",
		"allowed_origin":  "allowed-origin",
		"log.level":       "log-level",
		"log.file":        "log-file",
		"auth.jwt_secret": "jwt-secret",
		"journal.path":    "journal",
	} {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(err)
		}
	}

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP broadcast server",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runServe(cmd.Context(), cfg)
			},
		},
		networksCmd(),
		tokenCmd(func() *config.Config { return cfg }),
		historyCmd(func() *config.Config { return cfg }),
		initConfigCmd(),
	)

	return rootCmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger.Info("Starting Bitcoin tx broadcast service...")

	desc, err := cfg.ConnDescriptor()
	if err != nil {
		logger.Error("Unsupported network", "network", cfg.Network)
		return err
	}

	client, err := chain.NewClient(desc)
	if err != nil {
		return fmt.Errorf("failed to create broadcast service: %w", err)
	}
	defer client.Shutdown()

	logger.Info("Using bitcoind RPC", "network", desc.Network.Params().Name, "url", client.URL())

	service := broadcast.NewService(client)
	if cfg.Journal.Path != "" {
		j, err := journal.Open(cfg.Journal.Path, desc.Network.String())
		if err != nil {
			return err
		}
		defer j.Close()
		service.WithRecorder(j)
	}

	var jwtKey []byte
	if cfg.Auth.JWTSecret != "" {
		jwtKey = []byte(cfg.Auth.JWTSecret)
	}

	a := api.NewAPI(service,
		api.WithNetwork(desc.Network),
		api.WithAllowedOrigin(cfg.AllowedOrigin),
		api.WithJWTKey(jwtKey),
	)

	server, err := api.NewServer(cfg.ListenAddr(), a)
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", cfg.ListenAddr(), err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- server.Serve() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func networksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "networks",
		Short: "List supported networks and their RPC ports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			type row struct {
				Name    string `json:"name"`
				Params  string `json:"params"`
				RPCPort uint16 `json:"rpcPort"`
			}
			rows := make([]row, 0, len(network.All))
			for _, n := range network.All {
				rows = append(rows, row{Name: n.String(), Params: n.Params().Name, RPCPort: n.RPCPort()})
			}
			return json.NewEncoder(cmd.OutOrStdout()).Encode(rows)
		},
	}
}

func tokenCmd(cfg func() *config.Config) *cobra.Command {
	var subject string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for the broadcast endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			secret := cfg().Auth.JWTSecret
			if secret == "" {
				return fmt.Errorf("auth.jwt_secret is not configured")
			}
			token, err := api.IssueToken([]byte(secret), subject, ttl)
			if err != nil {
				return err
			}
			return json.NewEncoder(cmd.OutOrStdout()).Encode(struct {
				Token     string    `json:"token"`
				ExpiresAt time.Time `json:"expiresAt"`
			}{token, time.Now().Add(ttl).UTC()})
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "operator", "Subject recorded in the token")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	return cmd
}

func historyCmd(cfg func() *config.Config) *cobra.Command {
	var limit int
	var since time.Duration

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent broadcasts from the journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := cfg()
			if c.Journal.Path == "" {
				return fmt.Errorf("journal.path is not configured")
			}
			n, err := network.ParseNetwork(c.Network)
			if err != nil {
				return err
			}
			j, err := journal.Open(c.Journal.Path, n.String())
			if err != nil {
				return err
			}
			defer j.Close()

			var entries []journal.Entry
			if since > 0 {
				entries, err = j.Since(time.Now().Add(-since))
			} else {
				entries, err = j.Recent(limit)
			}
			if err != nil {
				return err
			}
			return json.NewEncoder(cmd.OutOrStdout()).Encode(entries)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Number of entries to show")
	cmd.Flags().DurationVar(&since, "since", 0, "Show every entry newer than this instead of the last --limit")
	return cmd
}

func initConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-config [path]",
		Short: "Write a config file holding the defaults",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "config.json"
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.WriteDefault(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created default configuration file %s\n", path)
			return nil
		},
	}
}
