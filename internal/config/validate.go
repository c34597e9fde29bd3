package config

import (
	"errors"
	"fmt"
	"math"

	"github.com/Faultbox/flipbook/internal/book"
	"github.com/Faultbox/flipbook/internal/engine/texture"
)

// Validate checks value ranges and formats. All problems are reported
// together.
func (c *Config) Validate() error {
	var errs []error
	if s := c.Flipper.TurningSpeed; !(s > 0 && s <= 1) {
		errs = append(errs, fmt.Errorf("flipper.turning_speed must be in (0, 1], got %v", s))
	}
	if c.Flipper.TotalPages < 0 {
		errs = append(errs, fmt.Errorf("flipper.total_pages must not be negative, got %d", c.Flipper.TotalPages))
	}
	if a := float64(c.Book.Angle); math.IsNaN(a) || math.Abs(a) > math.Pi {
		errs = append(errs, fmt.Errorf("book.angle must be within [-pi, pi], got %v", c.Book.Angle))
	}
	if c.Render.Width <= 0 || c.Render.Height <= 0 {
		errs = append(errs, fmt.Errorf("render size must be positive, got %dx%d", c.Render.Width, c.Render.Height))
	}
	if _, err := texture.ParseFormat(c.Export.Format); err != nil {
		errs = append(errs, fmt.Errorf("export.format: %w", err))
	}
	colors := []struct{ key, hex string }{
		{"cover.inside_color", c.Cover.InsideColor},
		{"cover.outside_color", c.Cover.OutsideColor},
	}
	if c.Book.GuardPageColor != "" {
		colors = append(colors, struct{ key, hex string }{"book.guard_page_color", c.Book.GuardPageColor})
	}
	for _, col := range colors {
		if _, err := texture.ParseColor(col.hex); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", col.key, err))
		}
	}
	return errors.Join(errs...)
}

// BookOptions converts the config into book options.
func (c *Config) BookOptions() (book.Options, error) {
	if err := c.Validate(); err != nil {
		return book.Options{}, err
	}

	opts := book.DefaultOptions()
	opts.Pages = c.Book.Pages
	opts.FrontCover = c.Book.FrontCover
	opts.BackCover = c.Book.BackCover
	opts.Preload = c.Book.Preload
	opts.HasGuardPage = c.Book.HasGuardPage
	opts.Angle = c.Book.Angle
	opts.TurningSpeed = c.Flipper.TurningSpeed
	opts.TotalPages = c.Flipper.TotalPages
	opts.InsideColor = texture.MustParseColor(c.Cover.InsideColor)
	opts.OutsideColor = texture.MustParseColor(c.Cover.OutsideColor)
	if c.Book.GuardPageColor != "" {
		guard := texture.MustParseColor(c.Book.GuardPageColor)
		opts.GuardPageColor = &guard
	}
	return opts, nil
}

// ExportFormat returns the parsed export format.
func (c *Config) ExportFormat() (texture.Format, error) {
	return texture.ParseFormat(c.Export.Format)
}

