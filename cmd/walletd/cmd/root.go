package cmd

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"cosmossdk.io/log"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/TrustedSmartChain/walletcore/app"
	computecli "github.com/TrustedSmartChain/walletcore/x/compute/client/cli"
	incidentscli "github.com/TrustedSmartChain/walletcore/x/incidents/client/cli"
	msgscli "github.com/TrustedSmartChain/walletcore/x/msgs/client/cli"
	tokenhistorycli "github.com/TrustedSmartChain/walletcore/x/tokenhistory/client/cli"
	txpipecli "github.com/TrustedSmartChain/walletcore/x/txpipe/client/cli"
)

const (
	flagHome      = "home"
	flagLogLevel  = "log-level"
	flagLogFormat = "log-format"
)

// persistent flags bound to config keys
var boundFlags = map[string]string{
	"chain-id":      "chain.id",
	"grpc":          "chain.grpc",
	"websocket":     "chain.websocket",
	"store-backend": "store.backend",
	"metrics":       "metrics.listen",
}

// NewRootCmd creates a new root command for walletd.
func NewRootCmd() *cobra.Command {
	v := app.NewViper()

	rootCmd := &cobra.Command{
		Use:           "walletd",
		Short:         "Wallet core for Cosmos SDK chains with confidential contracts",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			home, _ := cmd.Flags().GetString(flagHome)
			v.AddConfigPath(home)
			cfg, err := app.LoadConfig(v)
			if err != nil {
				return err
			}
			if !filepath.IsAbs(cfg.Store.Dir) {
				cfg.Store.Dir = filepath.Join(home, cfg.Store.Dir)
			}

			logger, err := newLogger(cmd)
			if err != nil {
				return err
			}
			if isOffline(cmd) {
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			cmd.SetContext(ctx)

			cc, err := app.NewCommandContext(cfg, v, logger)
			if err != nil {
				stop()
				return err
			}
			cc.AddCloser(func() error { stop(); return nil })
			if cfg.Metrics.Listen != "" {
				cc.AddCloser(startMetricsServer(ctx, cfg.Metrics.Listen, logger))
			}
			app.SetCommandContext(cmd, cc)
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if cc, err := app.GetCommandContext(cmd); err == nil {
				return cc.Close()
			}
			return nil
		},
	}

	defaultHome := os.ExpandEnv("$HOME/.walletd")
	rootCmd.PersistentFlags().String(flagHome, defaultHome, "directory holding walletd.yaml and the data store")
	rootCmd.PersistentFlags().String(flagLogLevel, zerolog.InfoLevel.String(), "log level (trace|debug|info|warn|error)")
	rootCmd.PersistentFlags().String(flagLogFormat, "plain", "log format (plain|json)")
	rootCmd.PersistentFlags().String("chain-id", "", "chain id")
	rootCmd.PersistentFlags().String("grpc", "", "node gRPC address")
	rootCmd.PersistentFlags().String("websocket", "", "node websocket URL")
	rootCmd.PersistentFlags().String("store-backend", "", "store backend (goleveldb|memdb)")
	rootCmd.PersistentFlags().String("metrics", "", "serve prometheus metrics on this address")
	bindFlags(v, rootCmd)

	rootCmd.AddCommand(
		txpipecli.CmdSend(),
		incidentscli.CmdSync(),
		incidentscli.CmdIncidents(),
		computecli.NewViewingKeyCmd(),
		tokenhistorycli.NewHistoryCmd(),
		msgscli.NewConvertCmd(),
	)
	rootCmd.SetContext(context.Background())
	return rootCmd
}

func bindFlags(v *viper.Viper, cmd *cobra.Command) {
	for flag, key := range boundFlags {
		if err := v.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(err)
		}
	}
}

func newLogger(cmd *cobra.Command) (log.Logger, error) {
	levelStr, _ := cmd.Flags().GetString(flagLogLevel)
	level, err := zerolog.ParseLevel(levelStr)
	if err != nil {
		return nil, err
	}
	opts := []log.Option{log.LevelOption(level)}
	if format, _ := cmd.Flags().GetString(flagLogFormat); format == "json" {
		opts = append(opts, log.OutputJSONOption())
	}
	return log.NewLogger(cmd.ErrOrStderr(), opts...), nil
}

func isOffline(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if _, ok := c.Annotations[msgscli.OfflineAnnotation]; ok {
			return true
		}
	}
	return false
}
