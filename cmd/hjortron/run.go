package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/FabianRolfMatthiasNoll/hjortron/internal/audio"
	"github.com/FabianRolfMatthiasNoll/hjortron/internal/catalog"
	"github.com/FabianRolfMatthiasNoll/hjortron/internal/core"
	"github.com/FabianRolfMatthiasNoll/hjortron/internal/scene"
	"github.com/FabianRolfMatthiasNoll/hjortron/internal/screens"
)

func newRunCommand(a *app) *cobra.Command {
	var (
		headless bool
		opts     headlessOptions
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Open the frontend window, or run one ROM without a window",
		Long: `Run opens the frontend window. With --headless a single ROM is run on
one core for a fixed number of frames and the checksum of the last frame
is printed.

Example:
  hjortron run --headless --rom mario.sfc --frames 600 --expect 1a2b3c4d`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if headless {
				return a.runHeadless(cmd.Context(), cmd.OutOrStdout(), opts)
			}
			return a.runWindow(cmd.Context())
		},
	}
	f := cmd.Flags()
	f.BoolVar(&headless, "headless", false, "run without a window")
	f.StringVar(&opts.Core, "core", "", "core name or path to a core library (default: by ROM extension)")
	f.StringVar(&opts.ROM, "rom", "", "ROM to run in headless mode")
	f.IntVar(&opts.Frames, "frames", 300, "frames to run in headless mode")
	f.StringVar(&opts.Expect, "expect", "", "assert the CRC32 of the last frame (hex)")
	f.StringVar(&opts.State, "state", "", "write a save state to this path after the run")
	f.StringVar(&opts.PNG, "outpng", "", "write the last frame to a PNG file")
	return cmd
}

func (a *app) runWindow(ctx context.Context) error {
	cores, err := a.loadCores()
	if err != nil {
		return err
	}
	defer cores.Close()

	lib, err := catalog.Open(a.cfg.Catalog.Path)
	if err != nil {
		return err
	}
	defer lib.Close()

	n, err := lib.Count(ctx)
	if err != nil {
		return err
	}
	if n == 0 {
		a.log.Info("catalog is empty, scanning ROM directory", zap.String("dir", a.cfg.Directories.ROMs))
		if _, err := a.scan(ctx, lib, cores, false); err != nil {
			a.log.Warn("initial scan failed", zap.Error(err))
		}
	}

	var dev *audio.Device
	if !a.cfg.Audio.Disabled {
		dev = audio.NewDevice(a.cfg.Audio.Buffer)
	}

	v := a.cfg.Video
	eng := scene.NewEngine(scene.Options{
		Title:      v.Title,
		Width:      v.Width,
		Height:     v.Height,
		Scale:      v.Scale,
		Fullscreen: v.Fullscreen,
		Logger:     a.log,
	})
	env := &screens.Env{
		Engine:  eng,
		Library: lib,
		Cores:   cores,
		Session: func(d *core.Descriptor) core.SessionConfig {
			return a.sessionConfig(d, dev)
		},
		StatesDir: a.cfg.Directories.States,
		Fade:      a.cfg.Transition.Duration,
		Logger:    a.log,
	}
	if err := screens.Start(env); err != nil {
		return fmt.Errorf("start screens: %w", err)
	}
	return eng.Run()
}
