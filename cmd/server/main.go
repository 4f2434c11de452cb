package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/dcsystem/dcs-backend/internal/config"
	"github.com/dcsystem/dcs-backend/internal/database"
	"github.com/dcsystem/dcs-backend/internal/logging"
	"github.com/dcsystem/dcs-backend/internal/modules"
	"github.com/dcsystem/dcs-backend/internal/modules/category"
	"github.com/dcsystem/dcs-backend/internal/modules/document"
	"github.com/dcsystem/dcs-backend/internal/modules/history"
	"github.com/dcsystem/dcs-backend/internal/modules/notification"
	"github.com/dcsystem/dcs-backend/internal/modules/revision"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "dcs-backend",
		Short: "Document control system API",
		Long:  "dcs-backend serves the document control API and manages its database.",
		// Running the binary without a subcommand starts the server.
		RunE: runServe,
	}

	rootCmd.AddCommand(
		newServeCommand(),
		newMigrateCommand(),
		newSeedCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// enabledModules lists the resource modules mounted under /api/v1.
func enabledModules() []modules.Module {
	return []modules.Module{
		category.New(),
		document.New(),
		revision.New(),
		history.New(),
		notification.New(),
	}
}

// bootstrap loads configuration, installs the console logger and opens
// the database. Every subcommand starts here.
func bootstrap() (*config.Config, *gorm.DB, error) {
	cfg := config.Load()
	logging.Setup(cfg.LogFormat, cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

func migrate(db *gorm.DB, mods []modules.Module) error {
	if err := database.MigrateCore(db); err != nil {
		return fmt.Errorf("core migration failed: %w", err)
	}
	for _, m := range mods {
		list := m.Models()
		if err := database.MigrateModels(db, list); err != nil {
			return fmt.Errorf("module %s migration failed: %w", m.ID(), err)
		}
		slog.Info("module migrated", "module", m.ID(), "models", len(list))
	}
	return nil
}
