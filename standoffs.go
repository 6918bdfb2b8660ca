package main

import (
	"github.com/spf13/cobra"
)

func newStandoffsCmd(app *App) *cobra.Command {
	var (
		opts                                    StandoffOptions
		floor, zMin, zMax, grid, minDia, maxDia float64
		cellDensity, continueDensity, minSize   int
	)

	cmd := &cobra.Command{
		Use:   "standoffs [file]",
		Short: "Find standoff clusters and the +X wall opening of a base",
		Long: `Search a Z band above the floor for dense vertex clusters and report
them with the likely mounting standoffs. The floor defaults to the config's
floor_z, or the mesh minimum Z when unset. The +X wall slice at the bounding
box maximum X is reported too.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			if f.Changed("floor") {
				opts.FloorZ = &floor
			}
			if f.Changed("z-min-offset") {
				opts.ZMinOffset = &zMin
			}
			if f.Changed("z-max-offset") {
				opts.ZMaxOffset = &zMax
			}
			if f.Changed("grid") {
				opts.GridSize = &grid
			}
			if f.Changed("cell-density") {
				opts.CellDensity = &cellDensity
			}
			if f.Changed("continue-density") {
				opts.ContinueDensity = &continueDensity
			}
			if f.Changed("min-size") {
				opts.MinClusterSize = &minSize
			}
			if f.Changed("min-diameter") {
				opts.MinDiameter = &minDia
			}
			if f.Changed("max-diameter") {
				opts.MaxDiameter = &maxDia
			}
			_, err := app.Standoffs(args[0], opts)
			return err
		},
	}

	cmd.Flags().Float64Var(&floor, "floor", 0, "floor Z the search band is placed above")
	cmd.Flags().Float64Var(&zMin, "z-min-offset", 0, "band lower bound above the floor (exclusive)")
	cmd.Flags().Float64Var(&zMax, "z-max-offset", 0, "band upper bound above the floor (exclusive)")
	cmd.Flags().Float64Var(&grid, "grid", 0, "XY grid cell size in mm")
	cmd.Flags().IntVar(&cellDensity, "cell-density", 0, "vertices for a cell to seed a cluster")
	cmd.Flags().IntVar(&continueDensity, "continue-density", 0, "vertices for a neighbour cell to join a cluster")
	cmd.Flags().IntVar(&minSize, "min-size", 0, "minimum vertices for a reported cluster")
	cmd.Flags().Float64Var(&minDia, "min-diameter", 0, "smallest mounting standoff diameter")
	cmd.Flags().Float64Var(&maxDia, "max-diameter", 0, "largest mounting standoff diameter")
	cmd.Flags().StringVar(&opts.HTMLPath, "html", "", "write the cluster chart HTML to this file")
	return cmd
}
