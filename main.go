// Command meshprobe measures binary STL meshes of an enclosure: bounding
// boxes, Z layers, standoff clusters and face extents. It also checks
// enclosure parameters against cutout rules and board placement.
package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/chazu/meshprobe/pkg/monitoring"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd assembles the command tree around one App writing to out.
func newRootCmd(out io.Writer) *cobra.Command {
	app := NewApp(out)

	var (
		configPath string
		quiet      bool
	)
	root := &cobra.Command{
		Use:   "meshprobe",
		Short: "Extract enclosure measurements from binary STL meshes",
		Long: `meshprobe reads binary STL meshes and reports the geometry that drives
enclosure design: bounding boxes, Z layers, standoff positions and face
extents. It also verifies cutout parameters and board placement.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if quiet {
				monitoring.SetLogger(nil)
			}
			if configPath == "" {
				return nil
			}
			return app.LoadConfig(configPath)
		},
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&configPath, "config", "", "JSON analysis config (built-in defaults when empty)")
	root.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress diagnostic logging")

	root.AddCommand(
		newAnalyzeCmd(app),
		newStandoffsCmd(app),
		newVerifyCmd(app),
		newPositionsCmd(app),
		newSynthCmd(app),
	)
	return root
}
