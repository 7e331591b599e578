package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/frahmantamala/timekeeper/internal/backup"
	"github.com/frahmantamala/timekeeper/internal/persistence"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export [sqlite-file]",
	Short: "Export a snapshot into a SQLite file",
	Long:  `Load the data directory and copy employees, projects, time entries, submitted periods and users into a SQLite database for reporting.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runExport(cmd.Context(), args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Export failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func runExport(ctx context.Context, target string) error {
	config, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log, _ := newLogger(config)

	db, err := persistence.StartWithDiskPersistence(config.Database.DataDir, log, persistence.WithQueueSize(config.Database.QueueSize))
	if err != nil {
		return err
	}
	defer db.Stop()

	gdb, err := backup.Open(target)
	if err != nil {
		return err
	}
	if sqlDB, err := gdb.DB(); err == nil {
		defer sqlDB.Close()
	}

	if ctx == nil {
		ctx = context.Background()
	}
	row, err := backup.NewExporter(log).Export(ctx, db, gdb)
	if err != nil {
		return err
	}

	log.Info("export finished", "target", target,
		"employees", row.Employees, "projects", row.Projects,
		"time_entries", row.TimeEntries, "periods", row.Periods, "users", row.Users)
	return nil
}
