// Command xwl-run bridges an X11 program into a Wayland compositor: it
// spawns a rootless Xwayland, proxies the Wayland protocol between it and
// the host compositor, manages its windows via ICCCM/EWMH, bridges the
// X11 clipboard selection, and finally execs the given program under the
// resulting DISPLAY.
package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/friedelschoen/xwl-run/internal/bridge"
	"github.com/friedelschoen/xwl-run/internal/config"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.Default()

	var (
		noExitWithChild    bool
		noClipboardManager bool
	)
	flags := pflag.NewFlagSet("xwl-run", pflag.ContinueOnError)
	flags.Float64Var(&cfg.Scale, "scale", cfg.Scale, "scale factor applied to guest windows")
	flags.StringVar(&cfg.AppID, "app-id", cfg.AppID, "xdg-shell app id override")
	flags.IntVar(&cfg.Display, "display", cfg.Display, "X display number (default: auto)")
	flags.BoolVar(&noExitWithChild, "no-exit-with-child", false, "keep running after the inferior program exits")
	flags.BoolVar(&noClipboardManager, "no-clipboard-manager", false, "disable the CLIPBOARD<->Wayland selection bridge")
	flags.StringVar(&cfg.FrameColor, "frame-color", cfg.FrameColor, "decoration frame color, #RRGGBB")
	flags.BoolVar(&cfg.ShowWindowTitle, "show-window-title", cfg.ShowWindowTitle, "draw the window title in the decoration frame")
	flags.StringVar(&cfg.DRMDevice, "drm-device", cfg.DRMDevice, "DRM render node for dmabuf-backed buffers")
	flags.BoolVar(&cfg.Glamor, "glamor", cfg.Glamor, "use -shm even when a DRM device is configured")

	if err := cfg.ApplyEnv(config.Getenv); err != nil {
		fmt.Fprintln(os.Stderr, "xwl-run:", err)
		return 1
	}
	if err := flags.Parse(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "xwl-run:", err)
		return 1
	}
	cfg.ExitWithChild = !noExitWithChild
	if noClipboardManager {
		cfg.ClipboardManager = false
	}

	args := flags.Args()
	if len(args) > 0 {
		cfg.Program = args[0]
		cfg.ProgramArgs = args[1:]
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "xwl-run:", err)
		return 1
	}

	log := newLogger()

	b := bridge.New(cfg, log)
	if err := b.Connect(); err != nil {
		log.Error().Err(err).Msg("failed to start")
		return 1
	}
	if err := b.Run(); err != nil {
		log.Error().Err(err).Msg("bridge exited with an error")
		return 1
	}
	return b.ExitCode
}

// newLogger builds the process-wide logger: a human-readable console writer
// when stderr is a terminal, structured JSON lines otherwise.
func newLogger() zerolog.Logger {
	if isatty.IsTerminal(os.Stderr.Fd()) {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}
