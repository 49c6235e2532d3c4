package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/noah-isme/nuvme-configurator/internal/app"
	"github.com/noah-isme/nuvme-configurator/internal/config"
	"github.com/noah-isme/nuvme-configurator/internal/notify"
	"github.com/noah-isme/nuvme-configurator/internal/obs"
	"github.com/noah-isme/nuvme-configurator/internal/queue"
	"github.com/noah-isme/nuvme-configurator/internal/resilience"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := obs.NewLogger(cfg.Obs.LogFormat, cfg.Obs.LogLevel).With().Str("component", "worker").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.RedisURL == "" {
		logger.Fatal().Msg("REDIS_URL is required by the worker")
	}
	if cfg.Obs.EnableTracing {
		shutdown, err := obs.InitTracer(ctx, obs.TracingConfig{
			ServiceName:   "nuvme-worker",
			Endpoint:      cfg.Obs.OTLPEndpoint,
			Exporter:      cfg.Obs.TracingExporter,
			SamplingRatio: cfg.Obs.SamplingRatio,
			Environment:   cfg.AppEnv,
		})
		if err != nil {
			logger.Error().Err(err).Msg("initialise tracing")
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error().Err(err).Msg("shutdown tracer")
				}
			}()
		}
	}
	obs.MustRegisterDomainMetrics(cfg.Obs.MetricsNamespace, nil)

	redisClient, err := app.OpenRedis(ctx, cfg.RedisURL, cfg.Obs.EnablePrometheus, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect redis")
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close redis")
		}
	}()

	breaker := resilience.NewBreaker("webhook", 10, 0.5, 30*time.Second).WithLogger(logger)
	deliverer, err := notify.NewDeliverer(notify.DelivererConfig{
		URL:     cfg.WebhookURL,
		Secret:  cfg.WebhookSecret,
		Timeout: cfg.WebhookTimeout,
		Breaker: breaker,
		Replay:  notify.RedisReplayProtector{Client: redisClient},
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("configure webhook deliverer")
	}

	opt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse queue redis url")
	}
	srv := asynq.NewServer(opt, queue.ServerConfig(cfg.QueueConcurrency, logger))
	mux := queue.NewServeMux(queue.Worker{Deliverer: deliverer, Logger: logger})

	logger.Info().Int("concurrency", cfg.QueueConcurrency).Msg("worker starting")
	if err := srv.Start(mux); err != nil {
		logger.Fatal().Err(err).Msg("start worker")
	}
	<-ctx.Done()
	srv.Shutdown()
	logger.Info().Msg("worker shutdown complete")
}
