// Package cli wires the ellipse command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"

	"github.com/mwiater/ellipse/internal/appconfig"
	"github.com/mwiater/ellipse/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile       string
	currentConfig *appconfig.Config
	appVersion    = "dev"
	appCommit     = "none"
	appDate       = "unknown"
)

var boolSettings = []string{"debug", "dropBoundarySample"}
var stringSettings = []string{"logFile", "outputRoot"}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ellipse",
	Short: "Build delay/throughput ellipse input from TCP evaluation runs",
	Long: `ellipse post-processes the queueing delay and throughput series written by
the TCP evaluation scenarios. Both series are cut into fixed time buckets and
each bucket becomes one "<avg_delay> <avg_throughput>" row of the result file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configPath, err := ensureConfigLoaded()
		if err != nil {
			return err
		}

		for _, name := range boolSettings {
			if !cmd.Flags().Changed(name) {
				_ = cmd.Flags().Set(name, strconv.FormatBool(viper.GetBool(name)))
			}
		}
		for _, name := range stringSettings {
			if !cmd.Flags().Changed(name) {
				_ = cmd.Flags().Set(name, viper.GetString(name))
			}
		}
		if !cmd.Flags().Changed("bucketsPerSecond") {
			_ = cmd.Flags().Set("bucketsPerSecond", strconv.Itoa(viper.GetInt("bucketsPerSecond")))
		}

		var cfg appconfig.Config
		if err := viper.Unmarshal(&cfg); err != nil {
			return fmt.Errorf("unmarshal config: %w", err)
		}
		cfg.ConfigPath = configPath
		if cfg.BucketsPerSecond < 0 {
			return fmt.Errorf("invalid configuration: bucketsPerSecond must be positive, got %d", cfg.BucketsPerSecond)
		}
		currentConfig = &cfg

		if err := logging.Init(currentConfig.LogFilePath()); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", appVersion, appCommit, appDate)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	_ = logging.Close()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", appconfig.DefaultConfigPath, "config file (e.g., config/config.json)")

	rootCmd.PersistentFlags().Bool("debug", false, "enable debug output")
	rootCmd.PersistentFlags().String("logFile", "", "path to the log file")
	rootCmd.PersistentFlags().String("outputRoot", "", "directory holding the scenario outputs (default tcp-eval-output)")
	rootCmd.PersistentFlags().Int("bucketsPerSecond", 0, "buckets per time unit (0 = 10, i.e. 100ms buckets)")
	rootCmd.PersistentFlags().Bool("dropBoundarySample", false, "discard the delay sample that opens a new bucket (legacy script behavior)")

	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("logFile", rootCmd.PersistentFlags().Lookup("logFile"))
	_ = viper.BindPFlag("outputRoot", rootCmd.PersistentFlags().Lookup("outputRoot"))
	_ = viper.BindPFlag("bucketsPerSecond", rootCmd.PersistentFlags().Lookup("bucketsPerSecond"))
	_ = viper.BindPFlag("dropBoundarySample", rootCmd.PersistentFlags().Lookup("dropBoundarySample"))
}

// ensureConfigLoaded locates and validates the config file (falling back to
// the legacy location for the default path), then hands it to viper so flags
// can override it. It returns the path that was read. No config file at all
// leaves flags and defaults in charge.
func ensureConfigLoaded() (string, error) {
	loaded, err := appconfig.Load(cfgFile)
	if err != nil {
		if errors.Is(err, appconfig.ErrNoConfig) {
			return "", nil
		}
		return "", err
	}

	viper.SetConfigFile(loaded.ConfigPath)
	if err := viper.ReadInConfig(); err != nil {
		return "", fmt.Errorf("failed to load config: %w", err)
	}
	return loaded.ConfigPath, nil
}

// GetConfig returns the loaded application configuration for other packages.
func GetConfig() *appconfig.Config {
	if currentConfig == nil {
		return &appconfig.Config{}
	}
	return currentConfig
}

// DebugEnabled returns true if debug mode is enabled.
func DebugEnabled() bool { return viper.GetBool("debug") }

// SetVersionInfo allows the main package to inject build-time variables.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}
