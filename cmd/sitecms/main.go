package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ericfisherdev/sitecms/internal/adapter/driven/jsonfile"
	sqliteadapter "github.com/ericfisherdev/sitecms/internal/adapter/driven/sqlite"
	httphandler "github.com/ericfisherdev/sitecms/internal/adapter/driving/http"
	"github.com/ericfisherdev/sitecms/internal/application"
	"github.com/ericfisherdev/sitecms/internal/config"
	"github.com/ericfisherdev/sitecms/internal/domain/port/driven"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is a development convenience; missing file is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"data_dir", cfg.DataDir,
		"db_path", cfg.DBPath,
		"backend", backendName(cfg),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// File-backed repos exist in both modes: as the live backend without a
	// database, and as the migration source with one.
	fileSections, err := jsonfile.NewSectionRepo(cfg.SiteDataPath())
	if err != nil {
		return err
	}
	fileUsers, err := jsonfile.NewUserRepo(cfg.UsersPath())
	if err != nil {
		return err
	}

	var sections driven.SectionStore = fileSections
	var users driven.UserStore = fileUsers

	if cfg.UseDatabase() {
		db, err := sqliteadapter.NewDB(cfg.DBPath)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := db.Close(); closeErr != nil {
				slog.Error("error closing database", "error", closeErr)
			}
		}()
		slog.Info("database opened", "path", cfg.DBPath)

		if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
			return err
		}
		slog.Info("schema migrations complete")

		dbSections := sqliteadapter.NewSectionRepo(db)
		dbUsers := sqliteadapter.NewUserRepo(db)

		// One-time JSON data migration, before the server accepts requests.
		migration := application.NewMigrationService(
			fileSections, fileUsers,
			dbSections, dbUsers,
			[]string{cfg.SiteDataPath(), cfg.UsersPath()},
			cfg.BackupDir,
			slog.Default(),
		)
		if migration.Run(ctx) {
			slog.Info("file data migrated to database")
		}

		sections = dbSections
		users = dbUsers
	}

	if err := application.SeedDefaults(ctx, sections, users, application.AdminSeed{
		Username: cfg.AdminUsername,
		Password: cfg.AdminPassword,
		Name:     cfg.AdminName,
		Email:    cfg.AdminEmail,
	}, slog.Default()); err != nil {
		return err
	}

	contentSvc := application.NewContentService(sections)
	userSvc := application.NewUserService(users)
	sessionMgr := application.NewSessionManager(cfg.SessionTTL)

	apiHandler := httphandler.NewHandler(contentSvc, userSvc, sessionMgr, slog.Default())
	handler := httphandler.NewServeMux(apiHandler, slog.Default())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}

func backendName(cfg *config.Config) string {
	if cfg.UseDatabase() {
		return "sqlite"
	}
	return "jsonfile"
}
