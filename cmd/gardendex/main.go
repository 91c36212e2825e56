package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"gardendex/internal/chain"
	"gardendex/internal/config"
	"gardendex/internal/dex"
)

func main() {
	root := &cobra.Command{
		Use:          "gardendex",
		Short:        "Command-line client for the SEED/USDC pool",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	root.AddCommand(newPoolCmd())
	root.AddCommand(newSwapCmd())
	root.AddCommand(newAddLiquidityCmd())
	root.AddCommand(newRemoveLiquidityCmd())
	root.AddCommand(newHistoryCmd())
	root.AddCommand(newWatchCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// addChainFlags registers the flags every command that talks to the
// chain needs.
func addChainFlags(cmd *cobra.Command) {
	cmd.Flags().String("rpc", "", "chain RPC URL")
	cmd.Flags().String("dex-address", "", "pool contract address")
	cmd.Flags().String("token-a-address", "", "SEED token contract address")
	cmd.Flags().String("token-b-address", "", "USDC token contract address")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
}

// app is the chain-facing setup shared by every command.
type app struct {
	cfg    config.Config
	logger *zap.Logger
	client *chain.Client
	addrs  dex.Contracts
	reader *dex.Reader
}

func (a *app) close() {
	a.client.Close()
	_ = a.logger.Sync()
}

func setup(ctx context.Context, cmd *cobra.Command) (*app, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("rpc url is required")
	}
	if err := cfg.ValidateAddresses(); err != nil {
		return nil, err
	}

	addrs, err := dex.ParseContracts(cfg.DexAddress, cfg.TokenAAddress, cfg.TokenBAddress)
	if err != nil {
		return nil, err
	}

	client, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("connect rpc: %w", err)
	}

	reader, err := dex.NewReader(client, addrs)
	if err != nil {
		client.Close()
		return nil, err
	}

	return &app{
		cfg:    cfg,
		logger: logger,
		client: client,
		addrs:  addrs,
		reader: reader,
	}, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
