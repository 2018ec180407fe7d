package config

import (
	"fmt"
	"os"
	"strings"
)

func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "worker":
		return workerTemplate, nil
	case "driver":
		return driverTemplate, nil
	default:
		return "", fmt.Errorf("unknown config kind: %s", kind)
	}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const workerTemplate = `node = "worker"
protocol = "md"
abort_on_compute_error = false

[transport]
mode = "socket"
address = "*:31415"
max_message_mb = 64
connect_timeout_secs = 30

[evaluator]
kind = "lj"
epsilon = 1.0
sigma = 1.0
cutoff = 2.5

[status]
addr = ":9100"
cors_origins = ["http://localhost:3000"]
`

const driverTemplate = `protocol = "md"
steps = 10
natoms = 32
displacement = 0.05
seed = 12345

[transport]
mode = "socket"
address = "localhost:31415"

[box]
lo = [0.0, 0.0, 0.0]
hi = [4.0, 4.0, 4.0]
`
