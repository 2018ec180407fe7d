package main

import (
	"context"
	"errors"
	"flag"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/nicholaskarlsen/mdcouple/internal/config"
	"github.com/nicholaskarlsen/mdcouple/internal/observability"
	"github.com/nicholaskarlsen/mdcouple/internal/session"
	"github.com/nicholaskarlsen/mdcouple/internal/transport"
	"github.com/nicholaskarlsen/mdcouple/internal/worker"
)

func main() {
	configPath := flag.String("config", "cmd/workerctl/config.toml", "worker config path")
	logLevel := flag.String("log-level", "info", "log level: trace|debug|info|warn|error")
	flag.Parse()

	observability.InitLogger("workerctl", *logLevel)
	observability.RegisterMetrics()

	cfg, err := config.LoadWorkerConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load worker config")
	}
	log.Info().Str("path", *configPath).Str("node", cfg.Node).Msg("loaded worker config")

	eval, err := config.BuildEvaluator(cfg.Evaluator)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build evaluator")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tr, err := transport.Open(ctx, transport.RoleServer,
		config.TransportMode(cfg.Transport), cfg.Transport.Address,
		config.TransportSettings(cfg.Transport))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open transport")
	}

	sess, err := session.Open(tr, transport.RoleServer, cfg.Protocol, log.Logger)
	if err != nil {
		tr.Close()
		log.Fatal().Err(err).Msg("handshake failed")
	}
	log.Info().
		Str("session_id", sess.ID()).
		Str("protocol", sess.Protocol()).
		Str("mode", cfg.Transport.Mode).
		Str("address", cfg.Transport.Address).
		Msg("coupling session established")

	loop := worker.NewLoop(sess, eval, log.Logger, config.LoopSettings(cfg))

	if cfg.Status.Addr != "" {
		status := worker.NewStatusServer(cfg.Node, loop, log.Logger, worker.StatusOptions{
			CorsOrigins: cfg.Status.CorsOrigins,
			AuthToken:   cfg.Status.AuthToken,
		})
		go func() {
			if err := status.Serve(cfg.Status.Addr); err != nil {
				log.Error().Err(err).Msg("status server stopped")
			}
		}()
	}

	if err := loop.Run(ctx); err != nil {
		var compErr *worker.ComputationError
		if errors.As(err, &compErr) {
			log.Fatal().Err(err).Str("reason", compErr.Reason).Msg("worker aborted on compute failure")
		}
		log.Fatal().Err(err).Msg("worker stopped")
	}
	log.Info().Uint64("steps", loop.Steps()).Msg("coupling ended cleanly")
}
