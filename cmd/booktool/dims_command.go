package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Faultbox/flipbook/internal/book"
	"github.com/Faultbox/flipbook/internal/engine/texture"
)

func newDimsCommand(ctx *commandContext) *cobra.Command {
	var front, back string

	cmd := &cobra.Command{
		Use:   "dims [page images...]",
		Short: "Print the physical book dimensions derived from the images",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.loadConfig()
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

			in := book.Measure(cmd.Context(), texture.NewSourceLoader(nil), opts)
			d := book.Recompute(in)
			fmt.Fprintln(cmd.OutOrStdout(), renderDims(in, d))
			return nil
		},
	}

	cmd.Flags().StringVar(&front, "front", "", "Front cover image")
	cmd.Flags().StringVar(&back, "back", "", "Back cover image")
	return cmd
}

func renderDims(in book.Inputs, d book.Dimensions) string {
	size := func(p fmt.Stringer, zero bool) string {
		if zero {
			return "-"
		}
		return p.String()
	}
	unit := func(name string, v float32) []string {
		return []string{name, fmt.Sprintf("%.5f", v), fmt.Sprintf("%d", texture.UnitToPixel(v))}
	}

	rows := [][]string{
		{"images", fmt.Sprintf("%d", in.ImageCount), ""},
		{"page raster", size(in.PageSize, in.PageSize.X == 0), ""},
		{"front cover raster", size(in.FrontCover, in.FrontCover.X == 0), ""},
		{"back cover raster", size(in.BackCover, in.BackCover.X == 0), ""},
		unit("page width", d.PageWidth),
		unit("page height", d.PageHeight),
		unit("page thickness", d.PageThickness),
		unit("spine width", d.SpineWidth),
		unit("guard width", d.GuardWidth),
		unit("cover thickness", d.CoverThickness),
		unit("cover width", d.CoverWidth),
		unit("cover total width", d.CoverTotalWidth),
		unit("cover height", d.CoverHeight),
	}
	return renderTable([]string{"Measure", "Units", "Pixels"}, rows, []columnAlignment{alignLeft, alignRight, alignRight})
}
