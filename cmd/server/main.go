package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"medbill/m/domain"
	"medbill/m/internal/api"
	"medbill/m/internal/appstate"
	"medbill/m/internal/backup"
	"medbill/m/internal/config"
	"medbill/m/internal/database"
	"medbill/m/internal/logging"
	"medbill/m/internal/migrations"
	"medbill/m/internal/seed"
	"medbill/m/internal/service"
)

func main() {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel, cfg.LogPretty)

	db, err := database.Connect(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}

	ctx := context.Background()
	loadCatalogue(ctx, db, cfg)

	state := appstate.New(domain.DefaultSettings())
	svc := service.New(db, state, service.Options{
		Secret:     cfg.Secret,
		TokenTTL:   time.Duration(cfg.TokenTTLHours) * time.Hour,
		BcryptCost: cfg.BcryptCost,
	})
	if _, err := svc.Settings.Load(ctx); err != nil {
		log.Fatal().Err(err).Msg("loading settings failed")
	}
	if cfg.AdminPassword != "" {
		created, err := svc.Auth.Bootstrap(ctx, cfg.AdminUsername, cfg.AdminPassword)
		if err != nil {
			log.Fatal().Err(err).Msg("bootstrapping owner account failed")
		}
		if created {
			log.Info().Str("username", cfg.AdminUsername).Msg("owner account created")
		}
	}

	backups, err := newBackupService(ctx, db, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("backup setup failed")
	}

	handler := api.New(svc, state, backups, cfg.AllowedOrigins)
	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           handler.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Str("driver", db.DriverName()).Msg("MedBill server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
	log.Info().Msg("server exited")
}

// loadCatalogue seeds medicines from the bundled database first, then the CSV.
// Neither source is required.
func loadCatalogue(ctx context.Context, db *sqlx.DB, cfg config.Config) {
	if cfg.MedicineBundle != "" {
		if n, err := seed.ImportBundle(ctx, db, cfg.MedicineBundle); err != nil {
			log.Warn().Err(err).Str("path", cfg.MedicineBundle).Msg("medicine bundle import skipped")
		} else {
			log.Info().Int64("medicines", n).Msg("medicine catalogue ready")
		}
	}
	if cfg.MedicineCSV != "" {
		if n, err := seed.LoadMedicines(ctx, db, cfg.MedicineCSV); err != nil {
			log.Warn().Err(err).Str("path", cfg.MedicineCSV).Msg("medicine csv import skipped")
		} else {
			log.Info().Int("medicines", n).Msg("medicine csv loaded")
		}
	}
}

func newBackupService(ctx context.Context, db *sqlx.DB, cfg config.Config) (*backup.Service, error) {
	client, err := backup.NewS3Client(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return backup.New(db, cfg.BackupDir, nil, ""), nil
	}
	return backup.New(db, cfg.BackupDir, client, cfg.BackupS3Bucket), nil
}
