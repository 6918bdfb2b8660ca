package main

import (
	"github.com/spf13/cobra"

	"github.com/chazu/meshprobe/pkg/tessellate"
)

func newSynthCmd(app *App) *cobra.Command {
	var out, kernelName string
	p := tessellate.DefaultBase()

	cmd := &cobra.Command{
		Use:   "synth",
		Short: "Write a reference enclosure base STL",
		Long: `Model an open-topped base with a floor, four walls, four standoffs and a
+X wall opening, tessellate it and write it as binary STL. The result is a
known input for the analyze and standoffs commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.UseKernel(kernelName); err != nil {
				return err
			}
			_, err := app.Synth(out, p)
			return err
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "base.stl", "output STL path")
	cmd.Flags().StringVar(&kernelName, "kernel", "sdfx", "geometry kernel: sdfx or manifold")
	cmd.Flags().IntVar(&p.Cells, "cells", 0, "marching cubes resolution along the longest side (kernel default when 0)")
	cmd.Flags().Float64Var(&p.Width, "width", p.Width, "outer X size")
	cmd.Flags().Float64Var(&p.Depth, "depth", p.Depth, "outer Y size")
	cmd.Flags().Float64Var(&p.Height, "height", p.Height, "outer Z size")
	cmd.Flags().Float64Var(&p.Floor, "floor", p.Floor, "floor thickness")
	cmd.Flags().Float64Var(&p.Wall, "wall", p.Wall, "wall thickness")
	return cmd
}
