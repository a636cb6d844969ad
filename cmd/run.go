package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/hydrosuite/qualw2/internal/analog"
	"github.com/hydrosuite/qualw2/internal/archive"
	"github.com/hydrosuite/qualw2/internal/runner"
)

var runName string

func init() {
	runCmd.Flags().StringVar(&runName, "name", "", "name for this run (required)")
	runCmd.MarkFlagRequired("name")
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Stage, execute, and archive analog-year simulations",
	Long: `run executes one simulation per configured analog year: the time-series
input files are staged from the seed files and measured data, the model
executable is supervised until its output activity stops, and the outputs
are archived and indexed. Settings come from run_settings.toml.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadRunSettings()
		if err != nil {
			return err
		}

		ix, err := archive.OpenIndex(s.indexPath)
		if err != nil {
			return err
		}
		defer ix.Close()

		for _, year := range s.analogYears {
			log := logger.With(zap.Int("analog_year", year), zap.String("run", runName))
			log.Info("processing analog year")
			if err := runOne(cmd.Context(), s, year, ix, log); err != nil {
				return fmt.Errorf("analog year %d: %w", year, err)
			}
		}
		return nil
	},
}

type runSettings struct {
	runDir      string
	seedDir     string
	flowPath    string
	tempPath    string
	metDir      string
	archiveDir  string
	indexPath   string
	executable  string
	start       time.Time
	end         time.Time
	analogYears []int
	profileYear int
	timeout     time.Duration
}

func loadRunSettings() (*runSettings, error) {
	if viper.ConfigFileUsed() == "" {
		return nil, fmt.Errorf("no run settings found (looked for run_settings.toml)")
	}
	s := &runSettings{
		runDir:      viper.GetString("run_dir"),
		seedDir:     viper.GetString("seed_dir"),
		flowPath:    viper.GetString("flow_data"),
		tempPath:    viper.GetString("temp_data"),
		metDir:      viper.GetString("met_dir"),
		archiveDir:  viper.GetString("archive_dir"),
		indexPath:   viper.GetString("index_path"),
		executable:  viper.GetString("executable"),
		analogYears: viper.GetIntSlice("analog_years"),
		profileYear: viper.GetInt("profile_year"),
		timeout:     viper.GetDuration("timeout"),
	}
	var err error
	if s.start, err = time.Parse("01/02/2006 15:04", viper.GetString("start_date")); err != nil {
		return nil, fmt.Errorf("start_date: %w", err)
	}
	if s.end, err = time.Parse("01/02/2006 15:04", viper.GetString("end_date")); err != nil {
		return nil, fmt.Errorf("end_date: %w", err)
	}
	if len(s.analogYears) == 0 {
		return nil, fmt.Errorf("no analog_years configured")
	}
	if s.executable == "" {
		s.executable = "w2_v45_64.exe"
	}
	if s.indexPath == "" {
		s.indexPath = filepath.Join(s.archiveDir, "runs.db")
	}
	return s, nil
}

func runOne(ctx context.Context, s *runSettings, year int, ix *archive.Index, log *zap.Logger) error {
	// The staging window covers whole days at both ends.
	start := s.start.Truncate(24 * time.Hour)
	end := s.end.Truncate(24 * time.Hour).Add(24*time.Hour - time.Nanosecond)

	flows, err := analog.ReadFlows(s.flowPath, start, end)
	if err != nil {
		return err
	}
	if len(flows) == 0 {
		return fmt.Errorf("no flow records between %s and %s",
			start.Format("2006-01-02"), end.Format("2006-01-02"))
	}
	temps, err := analog.ReadAnalogTemps(s.tempPath, year, start, end)
	if err != nil {
		return err
	}
	met, err := analog.ReadMet(s.metDir, s.start.Year(), year,
		flows[0].JDay, flows[len(flows)-1].JDay)
	if err != nil {
		return err
	}

	stager := &analog.Stager{SeedDir: s.seedDir, RunDir: s.runDir, Log: log}
	if err := stager.Stage(flows, temps, met); err != nil {
		return err
	}

	if err := runner.Run(ctx, runner.Options{
		Dir:        s.runDir,
		Executable: s.executable,
		Timeout:    s.timeout,
		Log:        log,
	}); err != nil {
		return err
	}

	run := archive.Run{
		Name:        runName,
		AnalogYear:  year,
		ProfileYear: s.profileYear,
		Start:       s.start,
		End:         s.end,
	}
	dir, err := archive.Save(s.archiveDir, s.runDir, run)
	if err != nil {
		return err
	}
	id, err := ix.Record(run, dir)
	if err != nil {
		return err
	}
	log.Info("run archived", zap.String("id", id), zap.String("dir", dir))
	fmt.Fprintf(os.Stdout, "archived run %s to %s\n", id, dir)
	return nil
}
