package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/they4kman/experimentation/machine-learning/pushgp/checkpoint"
	"github.com/they4kman/experimentation/machine-learning/pushgp/config"
	"github.com/they4kman/experimentation/machine-learning/pushgp/gp"
	"github.com/they4kman/experimentation/machine-learning/pushgp/history"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	configPath := ""
	historyPath := ""
	checkpointPath := ""
	checkpointEvery := 10
	resumePath := ""
	verbosity := 1

	flag.StringVar(&configPath, "config", "", "TOML run configuration. The built-in integer regression is used if not provided")
	flag.StringVar(&historyPath, "history", "", "SQLite database recording every generation report")
	flag.StringVar(&checkpointPath, "checkpoint", "", "File to save population snapshots to")
	flag.IntVar(&checkpointEvery, "checkpoint-every", checkpointEvery, "Number of generations between snapshots")
	flag.StringVar(&resumePath, "resume", "", "Snapshot to continue a previous run from")
	flag.IntVar(&verbosity, "v", verbosity, "Log verbosity (0 silences logging)")

	seed := int64(0)
	generations := 0
	populationSize := 0
	flag.Int64Var(&seed, "seed", 0, "Random seed. The current time is used if not provided and the configuration sets none")
	flag.IntVar(&generations, "generations", 0, "Override the configured maximum number of generations")
	flag.IntVar(&populationSize, "population-size", 0, "Override the configured population size")

	flag.Parse()

	commonlog.Configure(verbosity, nil)

	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
	}

	wasSeedProvided := false
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "seed":
			wasSeedProvided = true
		case "generations":
			cfg.Run.MaxGenerations = generations
		case "population-size":
			cfg.Run.PopulationSize = populationSize
		}
	})

	var snapshot *checkpoint.Snapshot
	if resumePath != "" {
		var err error
		if snapshot, err = checkpoint.Load(resumePath); err != nil {
			return err
		}
		cfg.Run.Seed = snapshot.Seed
	} else if wasSeedProvided {
		cfg.Run.Seed = seed
	} else if !cfg.SeedDefined {
		cfg.Run.Seed = time.Now().UnixNano()
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	in, err := cfg.NewInterpreter()
	if err != nil {
		return err
	}
	problem, err := cfg.NewProblem()
	if err != nil {
		return err
	}
	sim, err := gp.NewSimulation(cfg.Params(), in, problem)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if historyPath != "" {
		store, err := history.Open(historyPath)
		if err != nil {
			return err
		}
		defer store.Close()

		var text bytes.Buffer
		if err := toml.NewEncoder(&text).Encode(cfg); err != nil {
			return fmt.Errorf("encoding configuration: %w", err)
		}
		recorder, err := store.BeginRun(ctx, cfg.Run.Seed, text.String())
		if err != nil {
			return err
		}
		sim.AddSink(recorder)
		commonlog.GetLogger("pushgp.cmd").Noticef("recording run %s in %s", recorder.RunID(), historyPath)
	}

	if checkpointPath != "" {
		sim.AddSink(&checkpoint.Writer{Path: checkpointPath, Every: checkpointEvery})
	}

	if snapshot != nil {
		programs, err := snapshot.Programs(in.Parse)
		if err != nil {
			return err
		}
		sim.Resume(snapshot.Generation, programs)
	}

	report, err := sim.Run(ctx)
	if report != nil {
		fmt.Println(report)
	}
	return err
}
