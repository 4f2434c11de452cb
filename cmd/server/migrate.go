package main

import (
	"log/slog"

	"github.com/dcsystem/dcs-backend/internal/database"
	"github.com/dcsystem/dcs-backend/internal/services"
	"github.com/spf13/cobra"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := bootstrap()
			if err != nil {
				return err
			}
			defer database.Close(db)

			if err := migrate(db, enabledModules()); err != nil {
				return err
			}
			slog.Info("migration completed")
			return nil
		},
	}
}

func newSeedCommand() *cobra.Command {
	var skipMigrate bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Install built-in permissions, the admin role and the admin user",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := bootstrap()
			if err != nil {
				return err
			}
			defer database.Close(db)

			if !skipMigrate {
				if err := migrate(db, enabledModules()); err != nil {
					return err
				}
			}

			if err := services.NewSeeder(db).Seed(cmd.Context(), seedConfig(cfg)); err != nil {
				return err
			}
			slog.Info("seed completed", "admin_role", cfg.AdminRoleName)
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not run migrations before seeding")
	return cmd
}
