package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	cfgFile string
	logger  *zap.Logger

	rootCmd = &cobra.Command{
		Use:   "qualw2",
		Short: "Inspect, edit, and run hydrodynamic model input decks",
		Long: `qualw2 reads and writes the input files of the CE-QUAL-W2 hydrodynamic
model: the control file (w2_con.csv), the bathymetry, and the initial
temperature profile. It can inspect decoded values, rewrite the simulated
time window in place, and stage and supervise analog-year runs.`,
	}
)

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initLogger)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./run_settings.toml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose logging")

	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(setWindowCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(runsCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("run_settings")
		viper.SetConfigType("toml")
		viper.AddConfigPath(".")
	}
	viper.SetEnvPrefix("QUALW2")
	viper.AutomaticEnv()

	// A missing settings file is fine for inspect and set-window.
	_ = viper.ReadInConfig()
}

func initLogger() {
	var err error
	if viper.GetBool("verbose") {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to init logger:", err)
		os.Exit(1)
	}
}
