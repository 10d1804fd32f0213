package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/FabianRolfMatthiasNoll/hjortron/internal/audio"
	"github.com/FabianRolfMatthiasNoll/hjortron/internal/config"
	"github.com/FabianRolfMatthiasNoll/hjortron/internal/core"
	"github.com/FabianRolfMatthiasNoll/hjortron/internal/logging"
)

// app carries the state shared by all subcommands. It is filled in by the
// root command's pre-run hook.
type app struct {
	configPath string
	debug      bool

	cfg *config.Config
	log *zap.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "hjortron",
		Short: "A small libretro frontend",
		Long: `hjortron loads libretro cores from a directory, keeps a catalog of the
ROMs found under the ROM directory and plays them in a window.

Without a subcommand the frontend window is opened.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
		PersistentPreRunE: func(*cobra.Command, []string) error { return a.setup() },
		PersistentPostRun: func(*cobra.Command, []string) { _ = a.log.Sync() },
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runWindow(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to hjortron.toml")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newRunCommand(a),
		newScanCommand(a),
		newCoresCommand(a),
		newIdentCommand(),
	)
	return root
}

func (a *app) setup() error {
	log, err := logging.New(a.debug)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	a.log = log
	logging.SetLogger(log)

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	log.Debug("configuration loaded",
		zap.String("cores", cfg.Directories.Cores),
		zap.String("roms", cfg.Directories.ROMs),
		zap.String("catalog", cfg.Catalog.Path))
	return nil
}

// loadCores opens the core directory. Having no usable core is fatal for
// every command that needs one.
func (a *app) loadCores() (*core.Collection, error) {
	dir := a.cfg.Directories.Cores
	cores, err := core.LoadDir(dir)
	if err != nil {
		return nil, err
	}
	if cores.Len() == 0 {
		_ = cores.Close()
		return nil, fmt.Errorf("no libretro cores found in %s", dir)
	}
	return cores, nil
}

// sessionConfig builds the host settings for a session on d. Audio plays
// through dev, or is discarded when dev is nil.
func (a *app) sessionConfig(d *core.Descriptor, dev *audio.Device) core.SessionConfig {
	dirs := a.cfg.Directories
	sc := core.SessionConfig{
		SystemDir:     dirs.System,
		SaveDir:       dirs.Saves,
		CoreAssetsDir: filepath.Join(dirs.System, "assets"),
		Options:       a.cfg.CoreOptions(d.Name),
		Logger:        a.log,
	}
	if dev != nil {
		sc.OpenAudio = func(rate float64) (audio.Sink, error) {
			out, err := dev.Open(rate)
			if err != nil {
				return nil, err
			}
			return out, nil
		}
	}
	return sc
}
