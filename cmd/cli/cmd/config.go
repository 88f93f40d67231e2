package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	searchconfig "github.com/picogrid/drone-search-sim/cmd/drone-search/config"
	"github.com/picogrid/drone-search-sim/pkg/logger"
	"github.com/picogrid/drone-search-sim/pkg/utils"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and create search configurations",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective search configuration",
	Long: `Show the configuration a run would use: the configuration file (or the
defaults), DRONE_SEARCH_* environment variables, the active profile and --set overrides.`,
	RunE: showConfig,
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the default configuration to a file",
	Long:  `Write the default search configuration. A .toml extension writes TOML, anything else YAML.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  initConfigFile,
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List the keys accepted by --set and DRONE_SEARCH_* variables",
	RunE:  listConfigKeys,
}

func init() {
	addParameterFlags(configShowCmd)
	configInitCmd.Flags().BoolP("force", "f", false, "overwrite an existing file without asking")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configKeysCmd)
}

func showConfig(cmd *cobra.Command, _ []string) error {
	params, err := collectParameters(cmd, nil, false)
	if err != nil {
		return fmt.Errorf("failed to get parameters: %w", err)
	}
	configFile, _ := params["config_file"].(string)
	delete(params, "config_file")

	cfg, err := searchconfig.LoadConfigWithOverrides(configFile, params)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	fmt.Print(cfg.String())
	return nil
}

func initConfigFile(cmd *cobra.Command, args []string) error {
	path := "drone-search.yaml"
	if len(args) == 1 {
		path = args[0]
	}

	force, _ := cmd.Flags().GetBool("force")
	if _, err := os.Stat(path); err == nil && !force {
		if !utils.Interactive() {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		overwrite, err := utils.Confirm(fmt.Sprintf("%s already exists. Overwrite?", path), false)
		if err != nil {
			return err
		}
		if !overwrite {
			logger.Info("Keeping existing configuration")
			return nil
		}
	}

	if err := searchconfig.SaveConfig(searchconfig.GetDefaultConfig(), path); err != nil {
		return fmt.Errorf("failed to write configuration: %w", err)
	}
	logger.Successf("Default configuration written to %s", path)
	return nil
}

func listConfigKeys(_ *cobra.Command, _ []string) error {
	keys := searchconfig.OverrideKeys()
	for _, key := range keys {
		fmt.Printf("%-26s %s%s\n", key, searchconfig.EnvPrefix, strings.ToUpper(key))
	}
	return nil
}
