package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/licenzia/inventory-importer/internal/importer"
	"github.com/licenzia/inventory-importer/pkg/config"
	"github.com/licenzia/inventory-importer/pkg/db"
	pkgerrors "github.com/licenzia/inventory-importer/pkg/errors"
	"github.com/licenzia/inventory-importer/pkg/logger"
	"github.com/licenzia/inventory-importer/pkg/migrate"
)

func main() {
	ctx := context.Background()
	// bootstrap logger early (then re-init after config load)
	logg := logger.New(logger.Options{ServiceName: "importer"})

	_ = godotenv.Load()

	file := flag.String("file", "", "input spreadsheet (overrides "+config.EnvInputFile+")")
	sheet := flag.String("sheet", "", "sheet name (default: first sheet)")
	flag.Parse()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	if *file != "" {
		cfg.Import.InputFile = *file
	}
	if *sheet != "" {
		cfg.Import.SheetName = *sheet
	}

	logFile, err := os.OpenFile(cfg.App.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	requireResource(ctx, logg, "log file", err)
	defer logFile.Close()

	logg = logger.New(logger.Options{
		ServiceName: "importer",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		File:        logFile,
	})

	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"file": cfg.Import.InputFile,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	err = migrate.MaybeRun(ctx, cfg, logg, dbClient)
	requireResource(ctx, logg, "migrations", err)

	svc, err := importer.NewService(
		importer.NewRepository(dbClient),
		importer.NewXLSXSource(cfg.Import.InputFile, cfg.Import.SheetName),
		importer.NewPrompter(os.Stdin, os.Stdout),
		logg,
		os.Stdout,
		cfg.Import,
	)
	requireResource(ctx, logg, "import service", err)

	if err := svc.Run(ctx); err != nil {
		logg.Error(ctx, "import run failed", err)
		os.Exit(pkgerrors.ExitCodeFor(err))
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
