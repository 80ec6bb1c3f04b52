package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/anyswap-engine/internal/config"
	"github.com/aman-zulfiqar/anyswap-engine/internal/store"
)

// Example consumer: tails the live operation feed and logs every commit.
func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutting down subscriber")
		cancel()
	}()

	rclient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	s, err := store.NewRedisStore(rclient, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to create store")
	}
	defer s.Close()

	ops, err := s.SubscribeOps(ctx)
	if err != nil {
		logger.WithError(err).Fatal("failed to subscribe")
	}

	logger.Info("subscriber running, waiting for operations")
	for op := range ops {
		logger.WithFields(logrus.Fields{
			"pool_id":   op.PoolID,
			"kind":      op.Kind,
			"version":   op.Version,
			"fee_total": op.FeeTotal,
			"lp_delta":  op.LPDelta,
		}).Info("Operation committed")
	}
}
