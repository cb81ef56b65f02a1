package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rogerio-castellano/school-inventory/internal/alert"
	"github.com/rogerio-castellano/school-inventory/internal/auth"
	"github.com/rogerio-castellano/school-inventory/internal/config"
	"github.com/rogerio-castellano/school-inventory/internal/db"
	api "github.com/rogerio-castellano/school-inventory/internal/http"
	"github.com/rogerio-castellano/school-inventory/internal/http/handlers"
	rl "github.com/rogerio-castellano/school-inventory/internal/http/rate_limiter"
	"github.com/rogerio-castellano/school-inventory/internal/logging"
	"github.com/rogerio-castellano/school-inventory/internal/models"
	"github.com/rogerio-castellano/school-inventory/internal/notice"
	"github.com/rogerio-castellano/school-inventory/internal/records"
	"github.com/rogerio-castellano/school-inventory/internal/redissvc"
	"github.com/rogerio-castellano/school-inventory/internal/repo"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// app holds everything a command needs once configuration is resolved.
type app struct {
	cfg *config.Config

	sqlDB  *sql.DB
	redis  *redissvc.RedisService
	client records.RecordClient

	inventory  repo.InventoryRepository
	requests   repo.RequestRepository
	categories repo.CategoryRepository
	users      repo.UserRepository

	hub    *notice.Hub
	mailer *alert.Mailer
}

func loadConfig() (*config.Config, error) {
	var paths []string
	if configDir != "" {
		paths = append(paths, configDir)
	}
	cfg, err := config.Load(paths...)
	if err != nil {
		return nil, err
	}
	logging.Init(cfg.Log.Level, cfg.Log.Format)
	return cfg, nil
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg, hub: notice.NewHub()}

	if cfg.Database.URL != "" {
		database, err := db.Connect(cfg.Database.URL, db.Options{
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		})
		if err != nil {
			return nil, err
		}
		a.sqlDB = database
	}

	switch cfg.Records.Backend {
	case config.BackendPostgres:
		a.client = records.NewPostgresStore(a.sqlDB)
	case config.BackendHTTP:
		a.client = records.NewHTTPClient(records.HTTPConfig{
			BaseURL:   cfg.Records.BaseURL,
			ProjectID: cfg.Records.ProjectID,
			PublicKey: cfg.Records.PublicKey,
			Timeout:   cfg.Records.Timeout,
		})
	default:
		a.client = records.NewMemoryStore()
	}

	var noticeLog notice.Log
	var revoker auth.Revoker
	if cfg.Redis.Addr != "" {
		rs, err := redissvc.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.redis = rs
		noticeLog = notice.NewRedisLog(rs.Rdb(), cfg.Redis.NoticeKey, cfg.Redis.NoticeSize)
		revoker = auth.NewRedisRevoker(rs.Rdb())
	} else {
		log.Warn().Msg("redis not configured, notices and revoked tokens are kept in memory")
		noticeLog = notice.NewMemoryLog(cfg.Redis.NoticeSize)
		revoker = auth.NewMemoryRevoker()
	}
	n := notice.Fanout{noticeLog, a.hub}

	a.inventory = repo.NewRecordsInventoryRepository(a.client, n)
	a.requests = repo.NewRecordsRequestRepository(a.client, n)
	a.categories = repo.NewRecordsCategoryRepository(a.client, n)
	if a.sqlDB != nil {
		a.users = repo.NewPostgresUserRepository(a.sqlDB)
	} else {
		a.users = repo.NewInMemoryUserRepository()
	}

	a.mailer = alert.NewMailer(alert.Config{
		Host:         cfg.SMTP.Host,
		Port:         cfg.SMTP.Port,
		User:         cfg.SMTP.User,
		Password:     cfg.SMTP.Password,
		From:         cfg.SMTP.From,
		To:           cfg.SMTP.To,
		AuthDisabled: cfg.SMTP.AuthDisabled,
	})

	handlers.SetNotices(n, noticeLog, a.hub)
	handlers.SetRepos(a.inventory, a.requests, a.categories)
	handlers.SetBulkLimit(cfg.Server.BulkLimit)
	handlers.SetUserRepo(a.users)
	handlers.SetTokens(auth.NewTokens(cfg.JWT.Secret, cfg.JWT.AccessTokenExpire, cfg.JWT.Issuer))
	handlers.SetRevoker(revoker)
	handlers.SetMailer(a.mailer)
	return a, nil
}

func (a *app) Close() {
	a.hub.Close()
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close redis")
		}
	}
	if a.sqlDB != nil {
		if err := a.sqlDB.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close database")
		}
	}
}

// ensureAdmin creates the configured admin account unless it exists.
func (a *app) ensureAdmin(ctx context.Context) error {
	if a.cfg.Admin.Password == "" {
		return nil
	}
	hash, err := auth.HashPassword(a.cfg.Admin.Password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}
	_, err = a.users.CreateUser(ctx, models.User{Username: a.cfg.Admin.Username, PasswordHash: hash, Role: api.RoleAdmin})
	if errors.Is(err, repo.ErrDuplicatedValueUnique) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}
	log.Info().Str("username", a.cfg.Admin.Username).Msg("admin user created")
	return nil
}

func newServeCmd() *cobra.Command {
	var withSampleData bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			if a.sqlDB != nil {
				if err := db.Migrate(ctx, a.sqlDB); err != nil {
					return err
				}
			}
			if err := a.ensureAdmin(ctx); err != nil {
				return err
			}
			if withSampleData {
				if err := seedSampleData(ctx, a); err != nil {
					return err
				}
			}
			return a.serve(ctx)
		},
	}
	cmd.Flags().BoolVar(&withSampleData, "seed", false, "load sample data before serving")
	return cmd
}

// loadDigest gathers the restock list and the pending requests for the daily summary.
func (a *app) loadDigest(ctx context.Context) (alert.Digest, error) {
	var d alert.Digest
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.Items, err = a.inventory.GetLowStock(gctx)
		return err
	})
	g.Go(func() (err error) {
		d.Pending, err = a.requests.GetByStatus(gctx, models.StatusPending)
		return err
	})
	return d, g.Wait()
}

func (a *app) serve(ctx context.Context) error {
	limiter := rl.New(1, 5, 10*time.Minute)
	api.SetLoginLimiter(limiter)
	go limiter.StartVisitorCleanupLoop(ctx)

	if a.mailer.Enabled() {
		go a.mailer.StartDailyDigest(ctx, a.loadDigest)
	} else {
		log.Info().Msg("smtp not configured, stock alerts disabled")
	}

	srv := &http.Server{
		Addr:         a.cfg.Server.Addr(),
		Handler:      api.NewRouter(),
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("records", a.cfg.Records.Backend).Msg("Server running")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down server")
	// open notice streams would otherwise hold Shutdown until its deadline
	a.hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	log.Info().Msg("Server stopped")
	return nil
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the records and users tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			database, err := db.Connect(cfg.Database.URL, db.Options{MaxOpenConns: 1})
			if err != nil {
				return err
			}
			defer database.Close()

			if err := db.Migrate(cmd.Context(), database); err != nil {
				return err
			}
			log.Info().Msg("migrations applied")
			return nil
		},
	}
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load sample categories, items and requests into the record backend",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Records.Backend == config.BackendMemory {
				return errors.New("the memory backend is not persistent, use serve --seed instead")
			}

			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.ensureAdmin(cmd.Context()); err != nil {
				return err
			}
			return seedSampleData(cmd.Context(), a)
		},
	}
}
