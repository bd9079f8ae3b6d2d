package app

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Astemirdum/book-inventory/inventory/config"
	"github.com/Astemirdum/book-inventory/inventory/internal/handler"
	"github.com/Astemirdum/book-inventory/inventory/internal/repository"
	"github.com/Astemirdum/book-inventory/inventory/internal/server"
	"github.com/Astemirdum/book-inventory/inventory/internal/service"
	"github.com/Astemirdum/book-inventory/inventory/migrations"
	"github.com/Astemirdum/book-inventory/pkg/kafka"
	"github.com/Astemirdum/book-inventory/pkg/logger"
	"github.com/Astemirdum/book-inventory/pkg/mongodb"
	"github.com/Astemirdum/book-inventory/pkg/openid"
	"github.com/Astemirdum/book-inventory/pkg/postgres"
)

func Run(cfg *config.Config) {
	log := logger.NewLogger(cfg.Log, "inventory")
	if err := cfg.ValidateServer(); err != nil {
		log.Fatal("config", zap.Error(err))
	}
	log.Debug("config", zap.Stringer("cfg", cfg))

	ctx := context.Background()
	repo, closeRepo, err := NewRepository(ctx, cfg, log)
	if err != nil {
		log.Fatal("repository", zap.Error(err))
	}

	events, err := kafka.NewEnqueuer(cfg.Kafka)
	if err != nil {
		log.Fatal("kafka.NewEnqueuer", zap.Error(err))
	}
	svc := service.NewService(repo, events, log)

	provider, err := openid.NewProvider(ctx, cfg.OAuth)
	if err != nil {
		log.Fatal("openid.NewProvider", zap.Error(err))
	}
	sessions := openid.NewSessions(cfg.Session.Secret, cfg.Session.Secure)

	h := handler.New(svc, provider, sessions, log)
	srv := server.NewServer(cfg.Server, h.NewRouter())
	log.Info("http server start ON: ",
		zap.String("addr",
			net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)))
	go func() {
		if err := srv.Run(); err != nil {
			log.Error("server run", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	termSig := <-sig

	log.Debug("Graceful shutdown", zap.Any("signal", termSig))

	closeCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = srv.Stop(closeCtx); err != nil {
		log.DPanic("srv.Stop", zap.Error(err))
	}
	if err = events.Close(); err != nil {
		log.Error("events.Close", zap.Error(err))
	}
	closeRepo(closeCtx)
	log.Info("Graceful shutdown finished")
}

// NewRepository opens the store selected by STORAGE_DRIVER. The returned
// func releases it.
func NewRepository(ctx context.Context, cfg *config.Config, log *zap.Logger) (repository.Repository, func(context.Context), error) {
	if err := cfg.ValidateStorage(); err != nil {
		return nil, nil, err
	}
	switch cfg.Storage.Driver {
	case repository.DriverPostgres:
		db, err := postgres.NewPostgresDB(ctx, &cfg.Postgres, migrations.MigrationFiles)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewPostgresRepository(db, log), func(context.Context) { db.Close() }, nil
	default:
		client := mongodb.New(cfg.Mongo, log)
		if err := client.Connect(ctx); err != nil {
			return nil, nil, err
		}
		closeFn := func(ctx context.Context) {
			if err := client.Disconnect(ctx); err != nil {
				log.Error("mongo disconnect", zap.Error(err))
			}
		}
		return repository.NewMongoRepository(client, log), closeFn, nil
	}
}
