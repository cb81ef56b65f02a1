package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var configDir string

// @title School Inventory API
// @version 1.0
// @description REST API for school supply inventory, supply requests and stock reports.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "school-inventory",
		Short:         "School supply inventory service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configDir, "config", "", "directory holding config.yaml")

	serve := newServeCmd()
	root.AddCommand(serve, newMigrateCmd(), newSeedCmd())

	// running without a subcommand serves
	root.RunE = serve.RunE
	root.Flags().AddFlagSet(serve.Flags())
	return root
}
