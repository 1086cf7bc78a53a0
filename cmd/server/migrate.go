package main

import (
	"context"
	"fmt"

	"github.com/So-lol/ace-website-sub001/internal/db"
	"github.com/So-lol/ace-website-sub001/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newMigrateCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the relational schema and normalize legacy family heads",
		RunE: func(cmd *cobra.Command, args []string) error {
			return migrate(cmd.Context(), v)
		},
	}
}

func migrate(ctx context.Context, v *viper.Viper) error {
	cfg, flush, err := setup(v)
	if err != nil {
		return err
	}
	defer flush()

	orm, err := db.InitPostgresORM(cfg.Postgres.DSN())
	if err != nil {
		return err
	}
	pool, err := orm.DB()
	if err != nil {
		return fmt.Errorf("unwrap gorm pool: %w", err)
	}
	defer pool.Close()

	if err := db.Migrate(orm); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	moved, err := db.NormalizeFamilyHeads(ctx, orm)
	if err != nil {
		return fmt.Errorf("normalize family heads: %w", err)
	}
	logging.Info("Migration complete", "family_heads_normalized", moved)
	return nil
}
