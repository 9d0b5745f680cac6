// Command migrate applies, inspects and rolls back the vidtube database schema.
//
//	migrate up            apply pending SQL migrations
//	migrate auto          run GORM AutoMigrate for every persistent model
//	migrate status        print the schema mode, pending migrations and missing constraints
//	migrate down VERSION  roll back one migration
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"vidtube/internal/config"
	"vidtube/internal/database"
	"vidtube/internal/middleware"

	"gorm.io/gorm"
)

var errUsage = errors.New("usage: migrate <up|auto|status|down> [version]")

func main() {
	flag.Parse()
	if err := run(context.Background(), flag.Args()); err != nil {
		middleware.Logger.Error("migrate failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errUsage
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{ApplySchema: false})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()

	switch strings.ToLower(strings.TrimSpace(args[0])) {
	case "up":
		if err := database.RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("sql migrations: %w", err)
		}
		middleware.Logger.Info("sql migrations applied")
	case "auto":
		cfg.DBSchemaMode = database.SchemaModeAuto
		if err := database.ApplySchema(ctx, db, cfg); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		middleware.Logger.Info("automigrations applied")
	case "status":
		return printStatus(ctx, db, cfg)
	case "down":
		if len(args) < 2 {
			return errors.New("usage: migrate down <version>")
		}
		version, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", args[1], err)
		}
		if err := database.RollbackMigration(ctx, db, version); err != nil {
			return fmt.Errorf("rollback: %w", err)
		}
		middleware.Logger.Info("migration rolled back", "version", version)
	default:
		return errUsage
	}
	return nil
}

func printStatus(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	status, err := database.GetSchemaStatus(ctx, db, cfg)
	if err != nil {
		return fmt.Errorf("schema status: %w", err)
	}
	middleware.Logger.Info("schema status",
		"mode", status.Mode,
		"env", status.Environment,
		"run_sql", status.WillRunSQL,
		"run_auto", status.WillRunAutoMigrate,
		"applied", len(status.AppliedVersions),
		"pending", len(status.PendingMigrations),
	)
	for _, m := range status.PendingMigrations {
		middleware.Logger.Info("pending migration", "migration", m.String())
	}
	for _, c := range status.MissingConstraints {
		middleware.Logger.Warn("missing constraint", "constraint", c)
	}
	return nil
}
