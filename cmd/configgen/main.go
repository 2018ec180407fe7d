package main

import (
	"flag"
	"log"

	"github.com/nicholaskarlsen/mdcouple/internal/config"
)

func main() {
	kind := flag.String("kind", "worker", "config kind: worker|driver")
	output := flag.String("output", "", "output path for config template")
	validate := flag.Bool("validate", false, "validate an existing config file")
	input := flag.String("input", "", "config path for validation (defaults to per-kind cmd path)")
	force := flag.Bool("force", false, "overwrite existing config file")
	flag.Parse()

	if *validate {
		path := *input
		if path == "" {
			switch *kind {
			case "worker":
				path = "cmd/workerctl/config.toml"
			case "driver":
				path = "cmd/drivectl/config.toml"
			default:
				log.Fatalf("unknown kind: %s", *kind)
			}
		}

		switch *kind {
		case "worker":
			if _, err := config.LoadWorkerConfig(path); err != nil {
				log.Fatal(err)
			}
		case "driver":
			// drivectl applies its own defaults; check well-formedness here.
			if err := config.CheckTOML(path); err != nil {
				log.Fatal(err)
			}
		default:
			log.Fatalf("unknown kind: %s", *kind)
		}
		log.Printf("Validated %s config at %s", *kind, path)
		return
	}

	target := *output
	if target == "" {
		switch *kind {
		case "worker":
			target = "cmd/workerctl/config.toml"
		case "driver":
			target = "cmd/drivectl/config.toml"
		default:
			log.Fatalf("unknown kind: %s", *kind)
		}
	}

	if err := config.WriteTemplate(target, *kind, *force); err != nil {
		log.Fatal(err)
	}
	log.Printf("Wrote %s config template to %s", *kind, target)
}
