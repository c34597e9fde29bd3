package config

import (
	"flag"
	"strings"
)

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
	flagFront      = flag.String("front-cover", "", "Front cover image")
	flagBack       = flag.String("back-cover", "", "Back cover image")
	flagGuard      = flag.Bool("guard-pages", false, "Add blank guard leaves at both ends")
	flagSpeed      = flag.Float64("speed", 0, "Page turning speed per frame, (0, 1]")
	flagPages      = flag.String("pages", "", "Comma-separated page images; positional arguments are appended")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagWindowed {
		cfg.Render.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Render.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Render.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Render.Height = *flagHeight
	}
	if *flagFront != "" {
		cfg.Book.FrontCover = *flagFront
	}
	if *flagBack != "" {
		cfg.Book.BackCover = *flagBack
	}
	if *flagGuard {
		cfg.Book.HasGuardPage = true
	}
	if *flagSpeed > 0 {
		cfg.Flipper.TurningSpeed = float32(*flagSpeed)
	}
	if pages := pageArgs(*flagPages, flag.Args()); len(pages) > 0 {
		cfg.Book.Pages = pages
	}
}

func pageArgs(list string, args []string) []string {
	var pages []string
	if list != "" {
		for _, p := range strings.Split(list, ",") {
			pages = append(pages, strings.TrimSpace(p))
		}
	}
	return append(pages, args...)
}
