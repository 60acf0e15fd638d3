package cli

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/remitlab/reclaim/internal/classify"
	"github.com/remitlab/reclaim/internal/engine"
	"github.com/remitlab/reclaim/internal/logging"
	"github.com/remitlab/reclaim/internal/model"
	"github.com/remitlab/reclaim/internal/pipeline"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "reclaim",
	Short: "Reclaim - denied-claim resubmission eligibility pipeline",
	Long: `Reclaim ingests denied healthcare insurance claims from two EMR
sources (a CSV feed and a JSON feed), normalizes them into one canonical
record shape, and scores each claim for resubmission eligibility using a
layered rule engine: exact-match rule tables, keyword heuristics, and a
pluggable classifier for ambiguous denial reasons.

Reclaim flags why a claim was rejected, groups rejections by failing rule,
and reports batch metrics alongside the resubmission candidate list.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("reclaim v1.0.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.reclaim/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}
		viper.AddConfigPath(home + "/.reclaim")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("RECLAIM")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig layers the config file and environment over the defaults
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode configuration: %w", err)
	}
	return cfg, nil
}

// buildLogger creates the injected logger from configuration
func buildLogger(cfg *model.Config) *logrus.Logger {
	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	return logging.New(os.Stderr, level, cfg.Log.Format)
}

// buildPipeline wires classifier, engine, and adapters from configuration
func buildPipeline(cfg *model.Config, log *logrus.Logger) (*pipeline.Pipeline, error) {
	if cfg.Classifier.Provider == "openai" && cfg.Classifier.APIKey == "" {
		cfg.Classifier.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.Classifier.APIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	}

	classifier, err := classify.NewClassifier(cfg.Classifier, cfg.Rules.Classifications)
	if err != nil {
		return nil, fmt.Errorf("build classifier: %w", err)
	}

	eng := engine.New(cfg, classifier)
	return pipeline.New(eng, log), nil
}
