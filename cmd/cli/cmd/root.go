package cmd

import (
	"strings"

	"github.com/picogrid/drone-search-sim/pkg/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "drone-search",
	Short: "Drone search feasibility CLI",
	Long: `Drone Search CLI runs swarm search simulations to find the cheapest
drone configuration (speed, swarm size, battery count) that reliably finds
a hidden objective before the batteries run out.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "CLI settings file (default is $HOME/.drone-search/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")
	rootCmd.PersistentFlags().String("profile", "", "run profile to apply (overrides the selected profile)")
	rootCmd.PersistentFlags().String("profiles-file", "", "profiles file (default is $HOME/.drone-search/profiles.yaml)")

	_ = viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("no-color", rootCmd.PersistentFlags().Lookup("no-color"))
	_ = viper.BindPFlag("profile", rootCmd.PersistentFlags().Lookup("profile"))
	_ = viper.BindPFlag("profiles-file", rootCmd.PersistentFlags().Lookup("profiles-file"))

	// Add commands
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(profileCmd)
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Search for config in home directory
		viper.AddConfigPath("$HOME/.drone-search")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// DRONE_SEARCH_LOG_LEVEL, DRONE_SEARCH_PROFILE, ...
	viper.SetEnvPrefix("DRONE_SEARCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in
	readErr := viper.ReadInConfig()

	// Configure logger based on flags and settings
	logger.SetLevel(logger.ParseLevel(viper.GetString("log-level")))
	logger.SetNoColor(viper.GetBool("no-color"))

	if readErr == nil {
		logger.Debugf("Using CLI settings from %s", viper.ConfigFileUsed())
	}
}
