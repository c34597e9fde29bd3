// Package config handles viewer and tool configuration loading.
package config

// Config holds all settings.
type Config struct {
	Book    BookConfig    `yaml:"book"`
	Cover   CoverConfig   `yaml:"cover"`
	Flipper FlipperConfig `yaml:"flipper"`
	Render  RenderConfig  `yaml:"render"`
	Export  ExportConfig  `yaml:"export"`
	Logging LoggingConfig `yaml:"logging"`
}

// BookConfig holds the book content and physical options.
type BookConfig struct {
	Pages          []string `yaml:"pages"` // Page images, empty entries are blank
	FrontCover     string   `yaml:"front_cover"`
	BackCover      string   `yaml:"back_cover"`
	Preload        bool     `yaml:"preload"`
	HasGuardPage   bool     `yaml:"has_guard_page"`
	GuardPageColor string   `yaml:"guard_page_color"` // Empty uses the inside color
	Angle          float32  `yaml:"angle"`            // Tilt toward the viewer, radians
}

// CoverConfig holds cover colors as hex strings.
type CoverConfig struct {
	InsideColor  string `yaml:"inside_color"`
	OutsideColor string `yaml:"outside_color"`
}

// FlipperConfig holds page-turn settings.
type FlipperConfig struct {
	TurningSpeed float32 `yaml:"turning_speed"`
	TotalPages   int     `yaml:"total_pages"` // 0 derives it from the pages
}

// RenderConfig holds display settings.
type RenderConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
}

// ExportConfig holds texture export settings.
type ExportConfig struct {
	Dir    string `yaml:"dir"`
	Format string `yaml:"format"` // png or webp
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Book: BookConfig{
			Preload: true,
			Angle:   0.65,
		},
		Cover: CoverConfig{
			InsideColor:  "#afafaf",
			OutsideColor: "#5f5f5f",
		},
		Flipper: FlipperConfig{
			TurningSpeed: 0.025,
		},
		Render: RenderConfig{
			Width:  1280,
			Height: 720,
			VSync:  true,
		},
		Export: ExportConfig{
			Dir:    "slices",
			Format: "png",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
