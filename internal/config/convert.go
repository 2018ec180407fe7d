package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/nicholaskarlsen/mdcouple/internal/compute"
	"github.com/nicholaskarlsen/mdcouple/internal/transport"
	"github.com/nicholaskarlsen/mdcouple/internal/worker"
)

func TransportMode(cfg TransportConfig) transport.Mode {
	return transport.Mode(strings.ToLower(strings.TrimSpace(cfg.Mode)))
}

func TransportSettings(cfg TransportConfig) transport.Config {
	out := transport.DefaultConfig()
	if cfg.MaxMessageMB > 0 {
		out.MaxMessageBytes = uint64(cfg.MaxMessageMB) * 1024 * 1024
	}
	if cfg.ConnectTimeoutSecs > 0 {
		out.ConnectTimeout = time.Duration(cfg.ConnectTimeoutSecs) * time.Second
	}
	if cfg.PollIntervalMS > 0 {
		out.PollInterval = time.Duration(cfg.PollIntervalMS) * time.Millisecond
	}
	return out
}

func LoopSettings(cfg WorkerConfig) worker.Config {
	return worker.Config{
		Node:                cfg.Node,
		AbortOnComputeError: cfg.AbortOnComputeError,
	}
}

func BuildEvaluator(cfg EvaluatorConfig) (worker.Evaluator, error) {
	kind := strings.ToLower(strings.TrimSpace(cfg.Kind))
	factory, ok := compute.Lookup(kind)
	if !ok {
		return nil, fmt.Errorf("unknown evaluator kind %q, have %v", cfg.Kind, compute.Kinds())
	}
	return factory(compute.Params{
		Command: cfg.Command,
		WorkDir: cfg.WorkDir,
		Epsilon: cfg.Epsilon,
		Sigma:   cfg.Sigma,
		Cutoff:  cfg.Cutoff,
	})
}
