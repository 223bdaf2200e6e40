// Command periscope-viewer renders a controller-state overlay.
//
// It polls the console's companion service for controller state, evaluates
// the overlay configuration against it and rasterizes one frame per tick.
// Frames can be written as PNG snapshots for a capture pipeline to pick
// up. SIGHUP reloads the overlay configuration without dropping a frame.
package main

import (
	"context"
	"flag"
	"fmt"
	"image/png"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/M1cha/periscope-viewer/internal/settings"
	"github.com/M1cha/periscope-viewer/pkg/config"
	"github.com/M1cha/periscope-viewer/pkg/engine"
	"github.com/M1cha/periscope-viewer/pkg/errors"
	"github.com/M1cha/periscope-viewer/pkg/graphics"
	"github.com/M1cha/periscope-viewer/pkg/transport"
)

// snapshotEvery limits how often the output image is rewritten in loop mode.
const snapshotEvery = time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "periscope-viewer: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		dir        = flag.String("dir", ".", "directory holding periscope.yaml and the overlay config")
		configPath = flag.String("config", "", "overlay config file (overrides settings)")
		addr       = flag.String("addr", "", "companion service address (overrides settings)")
		out        = flag.String("out", "", "write rendered frames to this PNG file")
		once       = flag.Bool("once", false, "render a single frame and exit")
		verbose    = flag.Bool("verbose", false, "verbose error output")
	)
	flag.Parse()

	resolved, err := settings.Resolve(*dir)
	if err != nil {
		return err
	}
	if *configPath != "" {
		resolved.ConfigPath = *configPath
	}
	if *addr != "" {
		resolved.ServiceAddress = *addr
	}
	if *verbose {
		resolved.Verbose = true
	}
	if *once && *out == "" {
		return fmt.Errorf("-once requires -out")
	}

	errors.SetHandler(&errors.LogHandler{Verbose: resolved.Verbose})

	cfg, err := loadConfig(resolved.ConfigPath)
	if err != nil {
		return err
	}

	client := transport.NewClient(resolved.ServiceAddress)
	defer client.Close()

	width := int(cfg.Size.Width * cfg.Scale)
	height := int(cfg.Size.Height * cfg.Scale)
	raster := graphics.NewRaster(width, height)

	e := engine.New(cfg, client, raster, engine.Options{
		FetchTimeout:  resolved.FetchTimeout,
		DegradedAfter: resolved.DegradedAfter,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *once {
		e.RunFrame(ctx)
		return writePNG(*out, raster)
	}

	reload := make(chan os.Signal, 1)
	signal.Notify(reload, syscall.SIGHUP)

	ticker := time.NewTicker(resolved.FrameInterval)
	defer ticker.Stop()

	var lastSnapshot time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-reload:
			if err := reloadConfig(e, resolved.ConfigPath); err != nil {
				errors.Report(errors.E("main.reload", errors.KindConfig, err))
			}
		case <-ticker.C:
			raster.Clear(graphics.ColorTransparent)
			e.RunFrame(ctx)
			if *out != "" && time.Since(lastSnapshot) >= snapshotEvery {
				if err := writePNG(*out, raster); err != nil {
					errors.Report(errors.E("main.snapshot", errors.KindRender, err))
				}
				lastSnapshot = time.Now()
			}
		}
	}
}

func loadConfig(path string) (*config.Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return config.Load(raw)
}

func reloadConfig(e *engine.Engine, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return e.Reload(raw)
}

// writePNG writes the frame to a temporary file and renames it into place
// so readers never observe a partial image.
func writePNG(path string, raster *graphics.Raster) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "periscope-frame-*.png")
	if err != nil {
		return err
	}
	if err := png.Encode(tmp, raster.Image()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
