package main

import (
	"context"
	"fmt"

	"github.com/So-lol/ace-website-sub001/internal/config"
	"github.com/So-lol/ace-website-sub001/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// @title ACE Admin API
// @version 1.0
// @description Backend for the ACE mentorship program admin console.
// @BasePath /
func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		logging.Fatal("Command failed", "error", err.Error())
	}
}

func newRootCmd() *cobra.Command {
	v := config.New()

	root := &cobra.Command{
		Use:           "ace-server",
		Short:         "ACE mentorship admin backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("env", "development", "environment (development or production)")
	_ = v.BindPFlag("app_env", root.PersistentFlags().Lookup("env"))

	root.AddCommand(newServeCmd(v), newMigrateCmd(v))
	return root
}

// setup loads configuration and starts the logger. The returned cleanup
// flushes the logger.
func setup(v *viper.Viper) (config.Config, func(), error) {
	cfg, err := config.Load(v)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	if err := logging.Init(cfg.Env); err != nil {
		return config.Config{}, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, func() { _ = logging.Close() }, nil
}
