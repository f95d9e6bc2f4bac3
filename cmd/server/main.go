// Command server runs the apparel studio API and its background jobs.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iliyamo/apparel-studio/internal/config"
	"github.com/iliyamo/apparel-studio/internal/logger"
)

const serviceName = "apparel-studio"

var (
	cfg config.Config
	log *zap.Logger
)

func main() {
	root := &cobra.Command{
		Use:           "server",
		Short:         "Custom apparel storefront API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg = config.Load()
			l, err := logger.Init(cfg.Env, cfg.LogLevel, serviceName)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			log = l
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if log != nil {
				_ = log.Sync()
			}
		},
	}
	root.AddCommand(serveCmd(), migrateCmd(), workerCmd(), provisionAdminCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
