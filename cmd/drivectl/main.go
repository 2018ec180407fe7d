package main

import (
	"context"
	"flag"
	"math"
	"math/rand"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/nicholaskarlsen/mdcouple/internal/client"
	"github.com/nicholaskarlsen/mdcouple/internal/observability"
	"github.com/nicholaskarlsen/mdcouple/internal/session"
	"github.com/nicholaskarlsen/mdcouple/internal/transport"
)

func main() {
	configPath := flag.String("config", "cmd/drivectl/config.toml", "drive config path")
	logLevel := flag.String("log-level", "info", "log level: trace|debug|info|warn|error")
	flag.Parse()

	observability.InitLogger("drivectl", *logLevel)

	cfg, err := loadDriveConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load drive config")
	}
	log.Info().Str("path", *configPath).Int("steps", cfg.Steps).Int("natoms", cfg.Natoms).Msg("loaded drive config")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tr, err := transport.Open(ctx, transport.RoleClient,
		transport.Mode(cfg.TransportMode), cfg.Address, transport.DefaultConfig())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open transport")
	}

	sess, err := session.Open(tr, transport.RoleClient, cfg.Protocol, log.Logger)
	if err != nil {
		tr.Close()
		log.Fatal().Err(err).Msg("handshake failed")
	}

	cl := client.New(sess, log.Logger)
	if err := drive(ctx, cl, cfg); err != nil {
		cl.Close()
		log.Fatal().Err(err).Msg("drive failed")
	}
	if err := cl.Close(); err != nil {
		log.Fatal().Err(err).Msg("termination handshake failed")
	}
	log.Info().Msg("drive complete")
}

func drive(ctx context.Context, cl *client.Client, cfg driveConfig) error {
	coords := latticeCoords(cfg.Natoms, cfg.BoxLo, cfg.BoxHi)
	types := make([]int32, cfg.Natoms)
	for i := range types {
		types[i] = 1
	}

	res, err := cl.Setup(client.SystemDef{
		Units:  cfg.Units,
		Dim:    3,
		Natoms: int32(cfg.Natoms),
		Ntypes: 1,
		BoxLo:  cfg.BoxLo,
		BoxHi:  cfg.BoxHi,
		Types:  types,
		Coords: coords,
	})
	if err != nil {
		return err
	}
	log.Info().Float64("energy", res.Energy).Msg("setup evaluated")

	rng := rand.New(rand.NewSource(cfg.Seed))
	for step := 1; step <= cfg.Steps; step++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		for i := range coords {
			coords[i] += cfg.Displacement * (2*rng.Float64() - 1)
		}
		res, err := cl.Step(coords)
		if err != nil {
			return err
		}
		log.Info().Int("step", step).Float64("energy", res.Energy).Msg("step evaluated")
	}
	return nil
}

// latticeCoords places n atoms on a simple cubic grid inside the box so
// no pair starts on top of another.
func latticeCoords(n int, lo, hi []float64) []float64 {
	cells := int(math.Ceil(math.Cbrt(float64(n))))
	coords := make([]float64, 0, 3*n)
	placed := 0
	for ix := 0; ix < cells && placed < n; ix++ {
		for iy := 0; iy < cells && placed < n; iy++ {
			for iz := 0; iz < cells && placed < n; iz++ {
				coords = append(coords,
					lo[0]+(float64(ix)+0.5)*(hi[0]-lo[0])/float64(cells),
					lo[1]+(float64(iy)+0.5)*(hi[1]-lo[1])/float64(cells),
					lo[2]+(float64(iz)+0.5)*(hi[2]-lo[2])/float64(cells),
				)
				placed++
			}
		}
	}
	return coords
}
