package main

import (
	"github.com/spf13/cobra"
)

func newVerifyCmd(app *App) *cobra.Command {
	var paramsPath, rulesPath string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check enclosure parameters against cutout alignment rules",
		Long: `Read "name = value;" assignments from a parameter file and evaluate the
verification rules against them. The bundled alignment rules are used unless
--rules names a rule script. Exits non-zero when any check fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Verify(paramsPath, rulesPath)
		},
	}

	cmd.Flags().StringVar(&paramsPath, "params", "config.scad", "parameter file")
	cmd.Flags().StringVar(&rulesPath, "rules", "", "rule script (bundled alignment rules when empty)")
	return cmd
}
