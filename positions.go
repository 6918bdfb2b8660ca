package main

import (
	"github.com/spf13/cobra"
)

func newPositionsCmd(app *App) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "positions [base.stl]",
		Short: "Report board and connector positions inside a case",
		Long: `Place the board stack from the config's enclosure section inside the case
whose outer envelope is the bounding box of the given mesh, then report wall
clearances and connector collisions.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := app.Positions(args[0], strict)
			return err
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when a collision is found")
	return cmd
}
