package main

import (
	"github.com/spf13/cobra"
)

func newAnalyzeCmd(app *App) *cobra.Command {
	var opts AnalyzeOptions

	cmd := &cobra.Command{
		Use:   "analyze [file...]",
		Short: "Report bounding box, Z layers and features of STL files",
		Long: `Report the triangle count, bounding box, key Z layers and, depending on
the file name, the top face extent (lid/top) or the standoff clusters (base)
of each file. Without arguments every file matching ` + DefaultGlob + ` is
analysed. Files that fail are logged and skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			files := args
			if len(files) == 0 {
				files = defaultFiles()
			}
			return app.AnalyzeFiles(files, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Standoffs, "standoffs", false, "run the standoff search on every file")
	cmd.Flags().StringVar(&opts.PlotDir, "plot-dir", "", "write a Z layer histogram PNG per file to this directory")
	cmd.Flags().StringVar(&opts.HTMLDir, "html", "", "write a cluster chart HTML per feature-bearing file to this directory")
	cmd.Flags().StringVar(&opts.DBPath, "db", "", "record each run in this sqlite database")
	return cmd
}
