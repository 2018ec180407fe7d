package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

type WorkerConfig struct {
	Node                string          `toml:"node"`
	Protocol            string          `toml:"protocol"`
	AbortOnComputeError bool            `toml:"abort_on_compute_error"`
	Transport           TransportConfig `toml:"transport"`
	Evaluator           EvaluatorConfig `toml:"evaluator"`
	Status              StatusConfig    `toml:"status"`
}

type TransportConfig struct {
	Mode               string `toml:"mode"`
	Address            string `toml:"address"`
	MaxMessageMB       int    `toml:"max_message_mb"`
	ConnectTimeoutSecs int    `toml:"connect_timeout_secs"`
	PollIntervalMS     int    `toml:"poll_interval_ms"`
}

type EvaluatorConfig struct {
	Kind    string   `toml:"kind"`
	Command []string `toml:"command"`
	WorkDir string   `toml:"workdir"`
	Epsilon float64  `toml:"epsilon"`
	Sigma   float64  `toml:"sigma"`
	Cutoff  float64  `toml:"cutoff"`
}

type StatusConfig struct {
	Addr        string   `toml:"addr"`
	CorsOrigins []string `toml:"cors_origins"`
	AuthToken   string   `toml:"auth_token"`
}

func LoadWorkerConfig(path string) (WorkerConfig, error) {
	var cfg WorkerConfig
	if err := loadToml(path, &cfg); err != nil {
		return WorkerConfig{}, err
	}
	if cfg.Node == "" {
		cfg.Node = "worker"
	}
	if cfg.Protocol == "" {
		cfg.Protocol = "md"
	}
	if cfg.Transport.Mode == "" {
		cfg.Transport.Mode = "socket"
	}
	if cfg.Evaluator.Kind == "" {
		cfg.Evaluator.Kind = "lj"
	}
	if err := ValidateWorkerConfig(cfg); err != nil {
		return WorkerConfig{}, err
	}
	return cfg, nil
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

// CheckTOML verifies a file parses as TOML without binding it to a
// particular config shape.
func CheckTOML(path string) error {
	var out map[string]any
	return loadToml(path, &out)
}

func ValidateWorkerConfig(cfg WorkerConfig) error {
	if strings.TrimSpace(cfg.Node) == "" {
		return fmt.Errorf("worker config missing node")
	}
	if strings.TrimSpace(cfg.Protocol) == "" {
		return fmt.Errorf("worker config missing protocol")
	}
	if err := ValidateTransportConfig(cfg.Transport); err != nil {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Evaluator.Kind)) {
	case "lj":
	case "exec":
		if len(cfg.Evaluator.Command) == 0 {
			return fmt.Errorf("exec evaluator requires a command")
		}
	default:
		return fmt.Errorf("unknown evaluator kind: %s", cfg.Evaluator.Kind)
	}
	return nil
}

func ValidateTransportConfig(cfg TransportConfig) error {
	switch strings.ToLower(strings.TrimSpace(cfg.Mode)) {
	case "socket", "file":
	default:
		return fmt.Errorf("transport mode must be socket or file, got %q", cfg.Mode)
	}
	if strings.TrimSpace(cfg.Address) == "" {
		return fmt.Errorf("transport config missing address")
	}
	if cfg.MaxMessageMB < 0 || cfg.ConnectTimeoutSecs < 0 || cfg.PollIntervalMS < 0 {
		return fmt.Errorf("transport limits must be non-negative")
	}
	return nil
}
