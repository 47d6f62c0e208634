// Package main provides the convnets CLI: build or restore an architecture,
// print its summary and run one forward pass on a random batch.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strings"

	"github.com/klauspost/cpuid/v2"

	"github.com/born-ml/convnets/internal/backend/cpu"
	"github.com/born-ml/convnets/internal/checkpoint"
	"github.com/born-ml/convnets/internal/models"
	"github.com/born-ml/convnets/internal/tensor"
)

const version = "v0.1.0"

type config struct {
	model     string
	trained   bool
	classes   []string
	batch     int
	size      int
	modelsDir string
	seed      int64
	save      bool
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("convnets: ")

	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		if err == flag.ErrHelp {
			return
		}
		log.Fatalf("%v", err)
	}
	if err := run(cfg); err != nil {
		log.Fatalf("%v", err)
	}
}

func parseFlags(args []string) (config, error) {
	fs := flag.NewFlagSet("convnets", flag.ContinueOnError)
	model := fs.String("model", "", "Architecture to build: "+strings.Join(models.Names(), ", "))
	trained := fs.String("trained", "False", `Restore the model from -models-dir ("True" or "False")`)
	classes := fs.String("classes", "", "Comma-separated class names (default: 10 synthetic names)")
	batch := fs.Int("batch", 1, "Batch size of the random forward pass")
	size := fs.Int("size", 224, "Input height and width")
	modelsDir := fs.String("models-dir", "models", "Directory of saved checkpoints")
	seed := fs.Int64("seed", models.DefaultSeed, "Seed for initialization and the random batch")
	save := fs.Bool("save", false, "Write a checkpoint to -models-dir after building")
	showVersion := fs.Bool("version", false, "Show version and exit")
	if err := fs.Parse(args); err != nil {
		return config{}, err
	}

	if *showVersion {
		fmt.Printf("convnets %s\n", version)
		return config{}, flag.ErrHelp
	}
	if *model == "" {
		fs.Usage()
		return config{}, fmt.Errorf("-model is required")
	}
	isTrained, err := models.ParseTrained(*trained)
	if err != nil {
		return config{}, err
	}
	if *batch <= 0 || *size <= 0 {
		return config{}, fmt.Errorf("-batch and -size must be positive, got %d and %d", *batch, *size)
	}

	return config{
		model:     *model,
		trained:   isTrained,
		classes:   parseClasses(*classes),
		batch:     *batch,
		size:      *size,
		modelsDir: *modelsDir,
		seed:      *seed,
		save:      *save,
	}, nil
}

// parseClasses splits a comma-separated list, falling back to class_0..class_9.
func parseClasses(s string) []string {
	var names []string
	for _, name := range strings.Split(s, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	if len(names) > 0 {
		return names
	}
	names = make([]string, 10)
	for i := range names {
		names[i] = fmt.Sprintf("class_%d", i)
	}
	return names
}

func run(cfg config) error {
	backend := cpu.New()
	store := checkpoint.NewStore(cfg.modelsDir)
	opts := []models.Option{models.WithSeed(cfg.seed)}

	var (
		model *models.Model[*cpu.CPUBackend]
		err   error
	)
	classes := cfg.classes
	if cfg.trained {
		var info checkpoint.Info
		model, info, err = checkpoint.Load(store, cfg.model, backend, opts...)
		if err != nil {
			return fmt.Errorf("restore %s: %w", cfg.model, err)
		}
		classes = info.ClassNames
		log.Printf("Restored %s from %s (run %s, saved %s)", info.Architecture, info.Path, info.RunID, info.CreatedAt.Format("2006-01-02 15:04:05"))
	} else {
		model, err = models.New(cfg.model, len(classes), backend, opts...)
		if err != nil {
			return err
		}
	}

	log.Printf("CPU: %s (%d physical cores, %d threads)", cpuid.CPU.BrandName, cpuid.CPU.PhysicalCores, cpuid.CPU.LogicalCores)
	log.Printf("%s", model.Summary())
	log.Printf("%s has %d trainable parameters, %d classes", model.Name(), model.NumParameters(), len(classes))

	rng := rand.New(rand.NewSource(cfg.seed))
	x := tensor.Randn[float32](tensor.Shape{cfg.batch, models.InputChannels, cfg.size, cfg.size}, rng, backend)
	logits, err := model.Forward(x)
	if err != nil {
		return err
	}
	log.Printf("Forward %v -> logits %v", x.Shape(), logits.Shape())

	if cfg.save {
		info, err := store.Save(model, classes)
		if err != nil {
			return fmt.Errorf("save %s: %w", model.Name(), err)
		}
		log.Printf("Saved %s to %s (run %s)", info.Architecture, info.Path, info.RunID)
	}
	return nil
}
