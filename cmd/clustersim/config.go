package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"

	"github.com/bulmanator/cluster"
	"github.com/bulmanator/cluster/scene"
	"github.com/charmbracelet/log"
)

// Config holds every command line setting
type Config struct {
	// Simulation parameters
	GravityX   float64
	GravityY   float64
	// set when a gravity flag was given, so it wins over the scene's gravity
	GravitySet bool
	TimeStep   float64
	Steps      int
	Workers    int
	Seed       int64

	// Scene settings
	SceneFile   string
	SceneType   string
	BodiesCount int

	// Output settings
	Render        bool
	DrawAABB      bool
	DrawVelocity  bool
	LogLevel      string
	StatsInterval float64
}

// GetEnv returns the value of the environment variable named by the key,
// or fallback if the variable is not set.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if n, err := strconv.Atoi(GetEnv(key, "")); err == nil {
		return n
	}
	return fallback
}

func parseFlags(args []string, output io.Writer) (*Config, error) {
	config := &Config{}
	fs := flag.NewFlagSet("clustersim", flag.ContinueOnError)
	fs.SetOutput(output)

	// Simulation parameters
	fs.Float64Var(&config.GravityX, "gravity-x", scene.DefaultGravity.X(), "gravity X component")
	fs.Float64Var(&config.GravityY, "gravity-y", scene.DefaultGravity.Y(), "gravity Y component")
	fs.Float64Var(&config.TimeStep, "dt", 1.0/60.0, "physics time step in seconds")
	fs.IntVar(&config.Steps, "steps", 600, "number of steps to run (0 = until interrupted)")
	fs.IntVar(&config.Workers, "workers", getEnvInt("CLUSTER_WORKERS", cluster.DEFAULT_WORKERS), "narrow phase workers")
	fs.Int64Var(&config.Seed, "seed", 1, "random seed for generated scenes")

	// Scene settings
	fs.StringVar(&config.SceneFile, "scene", GetEnv("CLUSTER_SCENE", ""), "YAML scene file to load")
	fs.StringVar(&config.SceneType, "scene-type", scene.SceneDefault, "generated scene type (default, pyramid, rain, container, mixed)")
	fs.IntVar(&config.BodiesCount, "bodies", 100, "number of bodies for generated scenes")

	// Output settings
	fs.BoolVar(&config.Render, "render", false, "draw frames to the terminal")
	fs.BoolVar(&config.DrawAABB, "draw-aabb", false, "draw bounding boxes when rendering")
	fs.BoolVar(&config.DrawVelocity, "draw-velocity", false, "draw velocities when rendering")
	fs.StringVar(&config.LogLevel, "log-level", GetEnv("CLUSTER_LOG_LEVEL", "info"), "log level (debug, info, warn, error)")
	fs.Float64Var(&config.StatsInterval, "stats-interval", 2.0, "simulated seconds between statistics reports (0 = off)")

	fs.Usage = func() {
		fmt.Fprintf(output, "clustersim - 2D rigid body simulation runner\n\n")
		fmt.Fprintf(output, "Usage: clustersim [OPTIONS]\n\n")
		fmt.Fprintf(output, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(output, "\nExamples:\n")
		fmt.Fprintf(output, "  clustersim -bodies 200 -scene-type pyramid\n")
		fmt.Fprintf(output, "  clustersim -scene scene.yaml -steps 0 -render\n")
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "gravity-x" || f.Name == "gravity-y" {
			config.GravitySet = true
		}
	})
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

func validateConfig(config *Config) error {
	if config.Workers < 1 {
		return errors.New("workers must be at least 1")
	}
	if config.TimeStep <= 0 || config.TimeStep > 1 {
		return errors.New("dt must be in (0, 1]")
	}
	if config.Steps < 0 {
		return errors.New("steps cannot be negative")
	}
	if config.StatsInterval < 0 {
		return errors.New("stats interval cannot be negative")
	}
	if config.SceneFile == "" {
		if config.BodiesCount < 0 {
			return errors.New("bodies count cannot be negative")
		}
		if !slices.Contains(scene.Kinds, config.SceneType) {
			return fmt.Errorf("invalid scene type: %s", config.SceneType)
		}
	}
	if _, err := log.ParseLevel(config.LogLevel); err != nil {
		return fmt.Errorf("log level: %w", err)
	}

	return nil
}
