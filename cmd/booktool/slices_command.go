package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Faultbox/flipbook/internal/book"
	"github.com/Faultbox/flipbook/internal/engine/texture"
)

func newSlicesCommand(ctx *commandContext) *cobra.Command {
	slicesCmd := &cobra.Command{
		Use:   "slices",
		Short: "Cover slice utilities",
	}
	slicesCmd.AddCommand(newSlicesExportCommand(ctx))
	return slicesCmd
}

func newSlicesExportCommand(ctx *commandContext) *cobra.Command {
	var dir, format, front, back string

	cmd := &cobra.Command{
		Use:   "export [page images...]",
		Short: "Merge the covers and write the five slices to disk",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.loadConfig()
			if err != nil {
				return err
			}
			if dir != "" {
				cfg.Export.Dir = dir
			}
			if format != "" {
				cfg.Export.Format = format
			}
			f, err := cfg.ExportFormat()
			if err != nil {
				return err
			}
			opts, err := cfg.BookOptions()
			if err != nil {
				return err
			}
			if len(args) > 0 {
				opts.Pages = args
			}
			if front != "" {
				opts.FrontCover = front
			}
			if back != "" {
				opts.BackCover = back
			}
			if opts.FrontCover == "" && opts.BackCover == "" {
				return errors.New("no cover images configured (use --front/--back)")
			}

			loader := texture.NewSourceLoader(nil)
			d := book.Recompute(book.Measure(cmd.Context(), loader, opts))
			cov, err := texture.NewCompositor().Compose(cmd.Context(), loader, opts.FrontCover, opts.BackCover, d.CoverLayout())
			if err != nil {
				return err
			}
			if cov == nil {
				return errors.New("no cover image could be decoded")
			}

			paths, err := texture.Export(cfg.Export.Dir, cov, f)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(paths))
			rows = append(rows, []string{"merged", sizeOf(cov.Merged.Bounds().Dx(), cov.Merged.Bounds().Dy()), paths[0]})
			i := 1
			for _, s := range cov.Slices {
				if s.Image == nil {
					rows = append(rows, []string{string(s.Name), "empty", "-"})
					continue
				}
				rows = append(rows, []string{string(s.Name), sizeOf(s.Rect.Dx(), s.Rect.Dy()), paths[i]})
				i++
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"Slice", "Size", "File"}, rows, nil))
			fmt.Fprintf(out, "Scale factor %.4f\n", cov.Factor)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "o", "", "Output directory (default from config)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: png or webp (default from config)")
	cmd.Flags().StringVar(&front, "front", "", "Front cover image")
	cmd.Flags().StringVar(&back, "back", "", "Back cover image")
	return cmd
}

func sizeOf(w, h int) string {
	return fmt.Sprintf("%dx%d", w, h)
}
