package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/jass/bff/internal/domain/report"
	"github.com/jass/bff/internal/infrastructure/config"
	"github.com/jass/bff/internal/infrastructure/logger"
	"github.com/jass/bff/internal/infrastructure/persistence"
	"github.com/jass/bff/internal/infrastructure/persistence/models"
	"go.uber.org/zap"
)

func main() {
	var (
		logLevel string
		orgID    string
		limit    int
	)

	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.StringVar(&orgID, "org", "", "Organization id filter for list")
	flag.IntVar(&limit, "limit", 20, "Number of reports shown by list")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	db, err := persistence.NewDatabase(&cfg.Archive,
		logger.NewGormLogger(log, logger.MapGormLogLevel(logLevel), 200*time.Millisecond))
	if err != nil {
		log.Fatal("Failed to connect to archive database", zap.Error(err))
	}
	defer func() {
		_ = db.Close()
	}()

	log.Info("Archive CLI started",
		zap.String("command", command),
		zap.String("driver", cfg.Archive.Driver),
	)

	switch command {
	case "up", "down", "version", "force":
		runMigrator(db, log, command, args[1:])

	case "status":
		m, err := db.Migrator(log)
		if err != nil {
			log.Fatal("Failed to create migrator", zap.Error(err))
		}
		version, dirty, err := m.Version()
		_ = m.Close()
		if err != nil {
			log.Fatal("Failed to read schema version", zap.Error(err))
		}
		if !db.DB.Migrator().HasTable(&models.ArchivedReportModel{}) {
			log.Info("Archive table missing, run 'migrate up'", zap.Uint("version", version))
			return
		}
		var count int64
		if err := db.DB.Model(&models.ArchivedReportModel{}).Count(&count).Error; err != nil {
			log.Fatal("Failed to count archived reports", zap.Error(err))
		}
		log.Info("Archive table present",
			zap.Uint("version", version),
			zap.Bool("dirty", dirty),
			zap.Int64("reports", count),
		)

	case "list":
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		reports, err := persistence.NewGormArchiveRepository(db.DB).List(ctx, report.ArchiveFilter{
			OrganizationID: orgID,
			Limit:          limit,
		})
		if err != nil {
			log.Fatal("Failed to list archived reports", zap.Error(err))
		}
		if len(reports) == 0 {
			log.Info("No archived reports")
			return
		}
		for _, r := range reports {
			fmt.Printf("  %s  %-14s %-12s %5d rows  %s\n",
				r.ID, r.Kind, r.OrganizationID, r.RowCount, r.CreatedAt.Format(time.RFC3339))
		}

	default:
		log.Error("Unknown command", zap.String("command", command))
		printUsage()
		os.Exit(1)
	}
}

func runMigrator(db *persistence.Database, log *zap.Logger, command string, args []string) {
	m, err := db.Migrator(log)
	if err != nil {
		log.Fatal("Failed to create migrator", zap.Error(err))
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Error("Failed to close migrator", zap.Error(err))
		}
	}()

	switch command {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	case "version":
		var (
			version uint
			dirty   bool
		)
		if version, dirty, err = m.Version(); err == nil {
			fmt.Printf("Version: %d\nDirty: %v\n", version, dirty)
		}
	case "force":
		if len(args) == 0 {
			log.Fatal("force requires a version argument")
		}
		var version int
		if version, err = strconv.Atoi(args[0]); err != nil {
			log.Fatal("Invalid version", zap.String("version", args[0]))
		}
		err = m.Force(version)
	}
	if err != nil {
		log.Fatal("Migration command failed", zap.String("command", command), zap.Error(err))
	}
}

func printUsage() {
	fmt.Println(`JASS report archive tool

Usage:
  migrate [flags] <command>

Commands:
  up        Apply all pending archive migrations
  down      Roll back all archive migrations
  version   Show the current schema version
  force N   Mark version N as applied (recovers a dirty schema)
  status    Show the schema version and how many reports the archive holds
  list      List the most recent archived reports

Flags:
  -log-level string   Log level: debug, info, warn, error (default: info)
  -org string         Organization id filter for list
  -limit int          Number of reports shown by list (default: 20)

Environment Variables:
  JASS_ARCHIVE_DRIVER, JASS_ARCHIVE_HOST, JASS_ARCHIVE_PORT, JASS_ARCHIVE_USER,
  JASS_ARCHIVE_PASSWORD, JASS_ARCHIVE_DBNAME, JASS_ARCHIVE_SQLITE_PATH`)
}
