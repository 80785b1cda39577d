package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"dotfield/app"
	"dotfield/hal"
	"dotfield/internal/buildinfo"
	"dotfield/internal/config"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type cli struct {
	v       *viper.Viper
	cfgFile string
	logFile string

	cfg    config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{v: config.New()}

	root := &cobra.Command{
		Use:   "dotfield",
		Short: "Animated particle backdrop",
		Long: `dotfield draws a field of drifting dots that link up near the pointer.

Run it in a window, inside a terminal, or headless to render a snapshot.
Settings come from flags, DOTFIELD_* environment variables and an optional
dotfield.yaml, in that order of precedence.`,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&c.cfgFile, "config", "", "Config file (default: ./dotfield.yaml or the user config dir)")
	pf.StringVar(&c.logFile, "log-file", "", "Write logs to this file instead of stderr")
	pf.BoolP("verbose", "v", false, "Enable debug logging")
	pf.Int("width", hal.DefaultWidth, "Framebuffer width in pixels")
	pf.Int("height", hal.DefaultHeight, "Framebuffer height in pixels")
	pf.String("profile", "auto", "Density profile: auto, compact, full or custom")
	pf.String("iterate", "all", "Link pass: all pairs or one root particle")
	pf.Int64("seed", 0, "Random seed (0 = time based)")
	pf.String("color", "#ff7155", "Dot and line color")
	pf.Float64("line-width", 0.1, "Link stroke width")
	pf.Int("fps", 30, "Animation frame rate")
	pf.Bool("hud", false, "Show the status overlay")
	c.bind(pf.Lookup, map[string]string{
		config.KeyVerbose:   "verbose",
		config.KeyWidth:     "width",
		config.KeyHeight:    "height",
		config.KeyProfile:   "profile",
		config.KeyIterate:   "iterate",
		config.KeySeed:      "seed",
		config.KeyColor:     "color",
		config.KeyLineWidth: "line-width",
		config.KeyFPS:       "fps",
		config.KeyHUD:       "hud",
	})

	root.AddCommand(c.windowCmd(), c.termCmd(), c.headlessCmd(), versionCmd())
	return root
}

func (c *cli) bind(lookup func(string) *pflag.Flag, keys map[string]string) {
	for key, name := range keys {
		_ = c.v.BindPFlag(key, lookup(name))
	}
}

func (c *cli) setup(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "version" {
		return nil
	}
	cfg, err := config.Load(c.v, c.cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	c.cfg = cfg

	zc := zap.NewProductionConfig()
	if cfg.Verbose {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	if c.logFile != "" {
		zc.OutputPaths = []string{c.logFile}
		zc.ErrorOutputPaths = []string{c.logFile}
	}
	c.logger, err = zc.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if cfg.File != "" {
		c.logger.Debug("config loaded", zap.String("file", cfg.File))
	}
	return nil
}

func (c *cli) newApp(log *zap.Logger) func(hal.HAL) func() error {
	return func(h hal.HAL) func() error {
		return app.NewWithConfig(h, app.Config{Dots: c.cfg.DotsOptions(log)})
	}
}

func (c *cli) windowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "window",
		Short: "Run in a desktop window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return hal.RunWindow(c.cfg.HostOptions(c.logger), c.newApp(c.logger))
		},
	}
}

func (c *cli) termCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "term",
		Short: "Run inside the terminal using half-block cells",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			// The screen owns stderr while running; only file logging is kept.
			log := c.logger
			if c.logFile == "" {
				log = zap.NewNop()
			}
			err := hal.RunTerminal(ctx, c.newApp(log), hal.TerminalConfig{
				Options: c.cfg.HostOptions(log),
				Hz:      c.cfg.Terminal.Hz,
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().Int("hz", 30, "Render rate")
	c.bind(cmd.Flags().Lookup, map[string]string{config.KeyTermHz: "hz"})
	return cmd
}

func (c *cli) headlessCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "headless",
		Short: "Run without a display and optionally write the last frame as PNG",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			hc := c.cfg.Headless
			h, err := hal.RunHeadless(ctx, c.newApp(c.logger), hal.HeadlessConfig{
				Options: c.cfg.HostOptions(c.logger),
				Hz:      hc.Hz,
				Ticks:   hc.Ticks,
				Orbit:   hc.Orbit,
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			if hc.Snapshot == "" || h == nil {
				return nil
			}
			if err := writeSnapshot(h, hc.Snapshot); err != nil {
				return err
			}
			c.logger.Info("snapshot written",
				zap.String("path", hc.Snapshot),
				zap.Uint64("frames", h.Presents()),
			)
			return nil
		},
	}
	f := cmd.Flags()
	f.Int("hz", 60, "Host step rate")
	f.Uint64("ticks", 0, "Stop after N host steps (0 = run until interrupted)")
	f.Bool("orbit", true, "Move a synthetic pointer around the centre")
	f.String("snapshot", "", "Write the final frame to this PNG file")
	c.bind(f.Lookup, map[string]string{
		config.KeyHz:       "hz",
		config.KeyTicks:    "ticks",
		config.KeyOrbit:    "orbit",
		config.KeySnapshot: "snapshot",
	})
	return cmd
}

func writeSnapshot(h *hal.Host, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating snapshot: %w", err)
	}
	if err := h.WritePNG(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return f.Close()
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			printVersion(cmd.OutOrStdout())
		},
	}
}

func printVersion(w io.Writer) {
	fmt.Fprintln(w, buildinfo.String())
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
