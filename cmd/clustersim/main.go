package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bulmanator/cluster"
	"github.com/bulmanator/cluster/actor"
	"github.com/bulmanator/cluster/debugdraw"
	"github.com/bulmanator/cluster/scene"
	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/term"
)

// Stats counts contact events between two reports
type Stats struct {
	Steps    int
	Enters   int
	Exits    int
	Contacts int // pairs currently touching
}

func (s *Stats) subscribe(events *cluster.Events) {
	events.Subscribe(cluster.COLLISION_ENTER, func(cluster.Event) {
		s.Enters++
		s.Contacts++
	})
	events.Subscribe(cluster.COLLISION_EXIT, func(cluster.Event) {
		s.Exits++
		s.Contacts--
	})
}

func loadScene(config *Config) (*scene.Scene, error) {
	if config.SceneFile != "" {
		return scene.Load(config.SceneFile)
	}
	return scene.Generate(config.SceneType, config.BodiesCount, rand.New(rand.NewSource(config.Seed)))
}

func buildWorld(config *Config, logger *log.Logger) (*cluster.World, error) {
	s, err := loadScene(config)
	if err != nil {
		return nil, err
	}

	gravity := mgl64.Vec2{config.GravityX, config.GravityY}
	world := cluster.NewWorld(s.GravityOr(gravity))
	world.Workers = config.Workers
	world.Logger = logger.WithPrefix("world")

	if _, err := s.Populate(world, rand.New(rand.NewSource(config.Seed))); err != nil {
		return nil, fmt.Errorf("populate scene: %w", err)
	}
	if config.GravitySet {
		world.Gravity = gravity
	}

	return world, nil
}

// viewport frames the static bodies, or every body when there are none
func viewport(bodies []*actor.RigidBody) (mgl64.Vec2, mgl64.Vec2) {
	var (
		box   actor.AABB
		found bool
	)
	for _, staticOnly := range []bool{true, false} {
		for _, body := range bodies {
			if staticOnly && !body.IsStatic() {
				continue
			}
			if !found {
				box, found = body.AABB(), true
				continue
			}
			box = box.Union(body.AABB())
		}
		if found {
			break
		}
	}
	if !found {
		box = actor.AABB{Min: mgl64.Vec2{-10, -10}, Max: mgl64.Vec2{10, 10}}
	}

	box = box.Expand(1)
	return box.Min, box.Max
}

func run(ctx context.Context, config *Config, logger *log.Logger, stdout io.Writer) error {
	world, err := buildWorld(config, logger)
	if err != nil {
		return err
	}
	logger.Info("world ready", "bodies", world.BodyCount(), "gravity", world.Gravity, "workers", world.Workers)

	var stats Stats
	stats.subscribe(&world.Events)

	var canvas *debugdraw.TerminalCanvas
	opts := debugdraw.Options{Bodies: true, AABBs: config.DrawAABB, Velocities: config.DrawVelocity}
	if config.Render {
		canvas, err = newCanvas(stdout, world.Bodies())
		if err != nil {
			return err
		}
		fmt.Fprint(stdout, "\033[?25l")
		defer fmt.Fprint(stdout, "\033[?25h")
	}

	statsEvery := 0
	if config.StatsInterval > 0 {
		statsEvery = max(1, int(config.StatsInterval/config.TimeStep))
	}

	start := time.Now()
	frame := time.Duration(config.TimeStep * float64(time.Second))
	for step := 1; config.Steps == 0 || step <= config.Steps; step++ {
		select {
		case <-ctx.Done():
			logger.Info("interrupted", "step", stats.Steps)
			return nil
		default:
		}

		world.Update(config.TimeStep)
		stats.Steps = step

		if statsEvery > 0 && step%statsEvery == 0 {
			logger.Info("stats",
				"step", step,
				"time", fmt.Sprintf("%.2fs", float64(step)*config.TimeStep),
				"bodies", world.BodyCount(),
				"contacts", stats.Contacts,
				"enters", stats.Enters,
				"exits", stats.Exits,
			)
		}

		if canvas != nil {
			followTerminal(canvas, terminalSize)
			canvas.Clear()
			debugdraw.Render(canvas, world.Bodies(), opts)
			fmt.Fprint(stdout, "\033[H")
			if err := canvas.Render(stdout); err != nil {
				return fmt.Errorf("render: %w", err)
			}
			time.Sleep(frame)
		}
	}

	logger.Info("done", "steps", stats.Steps, "elapsed", time.Since(start).Round(time.Millisecond), "enters", stats.Enters, "exits", stats.Exits)
	return nil
}

func newCanvas(stdout io.Writer, bodies []*actor.RigidBody) (*debugdraw.TerminalCanvas, error) {
	f, ok := stdout.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return nil, errors.New("render: stdout is not a terminal")
	}

	lo, hi := viewport(bodies)
	canvas, err := debugdraw.NewStdoutCanvas(lo, hi)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return canvas, nil
}

func terminalSize() (int, int, error) {
	return term.GetSize(int(os.Stdout.Fd()))
}

// followTerminal resizes canvas to the current terminal size. A failed
// size query keeps the previous grid.
func followTerminal(canvas *debugdraw.TerminalCanvas, size func() (int, int, error)) {
	cols, rows, err := size()
	if err != nil {
		return
	}
	canvas.Resize(cols, rows)
}

func newLogger(w io.Writer, level string) *log.Logger {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Prefix:          "clustersim",
		Level:           lvl,
	})
}

func main() {
	config, err := parseFlags(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger := newLogger(os.Stderr, config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, config, logger, os.Stdout); err != nil {
		logger.Error("simulation failed", "err", err)
		stop()
		os.Exit(1)
	}
}
