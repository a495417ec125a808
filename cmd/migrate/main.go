package main

import (
	"context"
	"flag"
	"os"

	"github.com/joho/godotenv"

	"github.com/exhale-app/exhale-backend/pkg/config"
	"github.com/exhale-app/exhale-backend/pkg/db"
	"github.com/exhale-app/exhale-backend/pkg/logger"
	"github.com/exhale-app/exhale-backend/pkg/migrate"
)

func main() {
	_ = godotenv.Load()

	dir := flag.String("dir", migrate.DefaultDir, "directory with goose migration files")
	flag.Parse()

	command := "up"
	args := []string{}
	if flag.NArg() > 0 {
		command = flag.Arg(0)
		args = flag.Args()[1:]
	}

	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.Options{ServiceName: "exhale-migrate"}).
			Error(context.Background(), "loading config", err)
		os.Exit(1)
	}

	logg := logger.New(logger.Options{
		ServiceName: "exhale-migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
	})

	ctx := context.Background()

	client, err := db.New(ctx, cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		logg.Error(ctx, "connecting to database", err)
		os.Exit(1)
	}
	defer client.Close()

	sqlDB, err := client.DB().DB()
	if err != nil {
		logg.Error(ctx, "extracting sql.DB", err)
		os.Exit(1)
	}

	dialect := "postgres"
	if cfg.FeatureFlags.UseSQLite || cfg.DB.Driver == "sqlite" {
		dialect = "sqlite3"
	}

	ctx = logg.WithFields(ctx, map[string]any{"command": command, "dir": *dir})
	logg.Info(ctx, "running goose")

	if err := migrate.Run(ctx, sqlDB, dialect, *dir, command, args...); err != nil {
		logg.Error(ctx, "goose command failed", err)
		os.Exit(1)
	}

	logg.Info(ctx, "goose command completed")
}
