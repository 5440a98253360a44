package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/mdflamingo/paydesk/internal/config"
	"github.com/mdflamingo/paydesk/internal/handler"
	"github.com/mdflamingo/paydesk/internal/logger"
	"github.com/mdflamingo/paydesk/internal/payapi"
	"github.com/mdflamingo/paydesk/internal/repository"
	"github.com/mdflamingo/paydesk/internal/service"
	"go.uber.org/zap"
)

func main() {
	conf := config.ParseFlags()
	if err := run(conf); err != nil {
		log.Fatal(err)
	}
}

func run(conf *config.Config) error {
	if err := logger.Initialize(conf.LogLevel); err != nil {
		return err
	}
	defer logger.Log.Sync()

	if conf.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	storage, err := initStorage(conf)
	if err != nil {
		return err
	}
	defer storage.Close()

	rdb, err := repository.ConnectRedis(ctx, conf.RedisAddr)
	if err != nil {
		return err
	}
	defer rdb.Close()
	guard := repository.NewRedisGuard(rdb, conf.SubmitGuardTTL)

	api := payapi.NewClient(conf.PaymentsAPIAddr, conf.PaymentsAPITimeout)
	if len(conf.DepositAddresses) == 0 {
		logger.Log.Warn("no deposit addresses configured, crypto deposits are disabled")
	}

	r := handler.NewRouter(conf, handler.Services{
		Health:      map[string]handler.Pinger{"postgres": storage, "redis": guard},
		Limiter:     repository.NewRedisLimiter(rdb, conf.RateLimit, time.Minute),
		Balance:     service.NewBalanceService(api),
		Withdrawals: service.NewWithdrawalService(api, guard, storage),
		Deposits:    service.NewDepositService(api, conf.DepositAddresses, guard, storage),
		KYC:         service.NewKYCService(api, guard, storage),
		Admin:       service.NewAdminService(api, storage, conf.AdminBalanceCurrency),
	})

	srv := &http.Server{
		Addr:              conf.RunAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.Log.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Log.Error("graceful shutdown failed", zap.Error(err))
		}
	}()

	logger.Log.Info("Running server",
		zap.String("address", conf.RunAddr),
		zap.String("payments_api", conf.PaymentsAPIAddr))

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func initStorage(conf *config.Config) (*repository.DBStorage, error) {
	if conf.DataBaseDSN == "" {
		return nil, errors.New("DATABASE_URI is required")
	}

	logger.Log.Info("Attempting to use database storage")
	storage, err := repository.NewDBStorage(conf.DataBaseDSN)
	if err != nil {
		logger.Log.Warn("Failed to initialize database storage", zap.Error(err))
		return nil, err
	}

	logger.Log.Info("Successfully initialized database storage")
	return storage, nil
}
