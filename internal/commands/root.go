package commands

import (
	"github.com/ppiankov/joulespectre/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	verbose bool
	version string
	commit  string
	date    string
)

var rootCmd = &cobra.Command{
	Use:   "joulespectre",
	Short: "joulespectre: energy cost of static analysis findings",
	Long: `joulespectre joins per-run energy measurements of a static analysis tool with
the number of findings each run produced, and reports whether heavier analysis
configurations find proportionally more bugs for the energy they spend.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logging.Init(verbose)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command with injected build info.
func Execute(v, c, d string) error {
	version = v
	commit = c
	date = d
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initEnv)

	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable verbose logging")
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
}

// initEnv binds the environment variables that override the config file.
func initEnv() {
	viper.SetEnvPrefix("JOULESPECTRE")
	viper.AutomaticEnv()

	_ = viper.BindEnv("mlflow_tracking_uri", "JOULESPECTRE_MLFLOW_TRACKING_URI", "MLFLOW_TRACKING_URI")
	_ = viper.BindEnv("mlflow_experiment_id", "JOULESPECTRE_MLFLOW_EXPERIMENT_ID", "MLFLOW_EXPERIMENT_ID")
	_ = viper.BindEnv("databricks_token", "DATABRICKS_TOKEN")
	_ = viper.BindEnv("gcs_bucket", "JOULESPECTRE_GCS_BUCKET")
}
