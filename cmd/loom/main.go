package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/datalooms/loom/internal/config"
	"github.com/datalooms/loom/internal/logger"
	"github.com/datalooms/loom/internal/sink"
	"github.com/datalooms/loom/pkg/archetype"
	"github.com/datalooms/loom/pkg/component"
	"github.com/datalooms/loom/pkg/recording"
)

// Version is set at build time
var Version = "dev"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Log.Level, cfg.Log.Format)

	switch os.Args[1] {
	case "inspect":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: loom inspect <file>")
			os.Exit(2)
		}
		if err := runInspect(os.Args[2]); err != nil {
			log.Error().Err(err).Msg("Inspect failed")
			os.Exit(1)
		}
	case "demo":
		path := cfg.Sink.Path
		if len(os.Args) > 2 {
			path = os.Args[2]
		}
		if err := runDemo(cfg, path); err != nil {
			log.Error().Err(err).Msg("Demo failed")
			os.Exit(1)
		}
	case "version":
		fmt.Println(Version)
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: loom <inspect|demo|version> [args]")
	fmt.Fprintln(os.Stderr, "  inspect <file>   print the frames of a recording")
	fmt.Fprintln(os.Stderr, "  demo [file]      record sample archetypes")
}

// runInspect prints one line per frame of a recording.
func runInspect(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open recording: %w", err)
	}
	defer f.Close()

	dec, err := recording.NewDecoder(bufio.NewReader(f))
	if err != nil {
		return err
	}

	frames := 0
	for {
		frame, err := dec.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("frame %d: %w", frames, err)
		}
		h := frame.Header
		fmt.Printf("#%-4d %-24s %-60s rows=%d\n", h.Sequence, h.EntityPath, h.Descriptor(), h.Rows)
		frame.Batch.Release()
		frames++
	}
	fmt.Printf("%d frames\n", frames)
	return nil
}

// runDemo records a few sample archetypes to path.
func runDemo(cfg *config.Config, path string) error {
	fileSink, err := sink.NewFileSink(path, logger.Get("sink"))
	if err != nil {
		return err
	}
	stream, err := recording.NewStream(&cfg.Recording, cfg.Recording.ApplicationID, fileSink, logger.Get("recording"))
	if err != nil {
		return err
	}

	points := archetype.NewPoints3D([]component.Position3D{
		{X: 0, Y: 0, Z: 0},
		{X: 1, Y: 0.5, Z: 0},
		{X: 2, Y: 2, Z: 0},
	}).
		WithColors([]component.Color{
			component.RGBA(255, 0, 0, 255),
			component.RGBA(0, 255, 0, 255),
			component.RGBA(0, 0, 255, 255),
		}).
		WithRadius(0.1).
		WithShowLabels(true)
	if err := stream.Log("world/points", points); err != nil {
		return err
	}

	if err := stream.Log("plots/speed", archetype.NewScalar(3.14)); err != nil {
		return err
	}

	logLine := archetype.NewTextLog("demo recording started").WithLevel(component.LevelInfo)
	if err := stream.Log("logs/app", logLine); err != nil {
		return err
	}

	// Columnar write: five scalar samples split into one group per sample.
	samples := archetype.NewScalars([]float64{1, 2, 4, 8, 16})
	if err := stream.LogColumns("plots/power", samples, []int{1, 1, 1, 1, 1}); err != nil {
		return err
	}

	if err := stream.Close(); err != nil {
		return err
	}
	log.Info().Str("path", path).Msg("Demo recording written")
	return nil
}
