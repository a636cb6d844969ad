package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hydrosuite/qualw2/internal/archive"
)

var runsYear int

func init() {
	runsCmd.Flags().IntVar(&runsYear, "year", 0, "only list runs for this analog year")
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List archived runs from the run index",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := viper.GetString("index_path")
		if path == "" {
			path = filepath.Join(viper.GetString("archive_dir"), "runs.db")
		}
		ix, err := archive.OpenIndex(path)
		if err != nil {
			return err
		}
		defer ix.Close()

		recs, err := ix.List(runsYear)
		if err != nil {
			return err
		}
		if len(recs) == 0 {
			fmt.Println("no archived runs")
			return nil
		}
		for _, r := range recs {
			fmt.Printf("%s  %-20s  year=%d  %s  %s\n",
				r.ArchivedAt.Format("2006-01-02 15:04"), r.Name, r.AnalogYear, r.ID, r.Dir)
		}
		return nil
	},
}
