package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/picogrid/drone-search-sim/pkg/config"
	"github.com/picogrid/drone-search-sim/pkg/utils"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage run profiles",
	Long:  `Manage named sets of parameter overrides applied to every run`,
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved profiles",
	RunE:  listProfiles,
}

var profileAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add or replace a profile",
	RunE:  addProfile,
}

var profileRemoveCmd = &cobra.Command{
	Use:   "remove [name]",
	Short: "Remove a profile",
	Args:  cobra.MaximumNArgs(1),
	RunE:  removeProfile,
}

var profileUseCmd = &cobra.Command{
	Use:   "use [name]",
	Short: "Select the profile applied by default",
	Args:  cobra.MaximumNArgs(1),
	RunE:  useProfile,
}

func init() {
	profileAddCmd.Flags().String("name", "", "profile name")
	profileAddCmd.Flags().String("description", "", "profile description")
	profileAddCmd.Flags().String("config-file", "", "search configuration file used by the profile")
	profileAddCmd.Flags().StringToString("set", nil, "parameter stored in the profile, e.g. --set max_drones=4 (repeatable)")
	profileRemoveCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")

	profileCmd.AddCommand(profileListCmd)
	profileCmd.AddCommand(profileAddCmd)
	profileCmd.AddCommand(profileRemoveCmd)
	profileCmd.AddCommand(profileUseCmd)
}

func listProfiles(cmd *cobra.Command, args []string) error {
	profiles, _, err := loadProfiles()
	if err != nil {
		return fmt.Errorf("failed to load profiles: %w", err)
	}

	if len(profiles.Profiles) == 0 {
		fmt.Println("No profiles configured")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "\tNAME\tCONFIG FILE\tPARAMETERS\tDESCRIPTION")
	_, _ = fmt.Fprintln(w, "\t----\t-----------\t----------\t-----------")

	for _, name := range profiles.Names() {
		p, _ := profiles.Get(name)
		marker := ""
		if name == profiles.Selected {
			marker = "*"
		}
		configFile := p.ConfigFile
		if configFile == "" {
			configFile = "-"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			marker, p.Name, configFile, strings.Join(describeParameters(p.Parameters), " "), p.Description)
	}

	return w.Flush()
}

func addProfile(cmd *cobra.Command, args []string) error {
	profiles, path, err := loadProfiles()
	if err != nil {
		return fmt.Errorf("failed to load profiles: %w", err)
	}

	var profile config.Profile
	profile.Name, _ = cmd.Flags().GetString("name")
	profile.Description, _ = cmd.Flags().GetString("description")
	profile.ConfigFile, _ = cmd.Flags().GetString("config-file")

	if profile.Name == "" {
		if !utils.Interactive() {
			return fmt.Errorf("profile name is required (use --name)")
		}

		// Prompt for name
		namePrompt := &survey.Input{
			Message: "Profile name:",
		}
		if err := survey.AskOne(namePrompt, &profile.Name, survey.WithValidator(survey.Required)); err != nil {
			return err
		}

		descPrompt := &survey.Input{
			Message: "Description:",
			Default: profile.Description,
		}
		if err := survey.AskOne(descPrompt, &profile.Description); err != nil {
			return err
		}

		filePrompt := &survey.Input{
			Message: "Search configuration file (optional):",
			Default: profile.ConfigFile,
			Help:    "YAML or TOML file the profile starts from; empty uses the defaults",
		}
		if err := survey.AskOne(filePrompt, &profile.ConfigFile); err != nil {
			return err
		}
	}

	sets, _ := cmd.Flags().GetStringToString("set")
	if len(sets) > 0 {
		profile.Parameters = make(map[string]interface{}, len(sets))
		for k, v := range sets {
			profile.Parameters[k] = v
		}
	}

	if _, exists := profiles.Get(profile.Name); exists && utils.Interactive() {
		replace, err := utils.Confirm(fmt.Sprintf("Profile %s exists. Replace it?", profile.Name), false)
		if err != nil {
			return err
		}
		if !replace {
			fmt.Println("Profile unchanged")
			return nil
		}
	}

	if err := profiles.Upsert(profile); err != nil {
		return err
	}
	if err := config.SaveProfilesToFile(profiles, path); err != nil {
		return fmt.Errorf("failed to save profiles: %w", err)
	}

	fmt.Printf("Profile %s saved\n", profile.Name)
	return nil
}

// pickProfile returns args[0] or asks the user to choose
func pickProfile(profiles *config.Profiles, args []string, message string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	if !utils.Interactive() {
		return "", fmt.Errorf("profile name is required")
	}
	return utils.SelectOne(message, profiles.Names(), profiles.Selected)
}

func removeProfile(cmd *cobra.Command, args []string) error {
	profiles, path, err := loadProfiles()
	if err != nil {
		return fmt.Errorf("failed to load profiles: %w", err)
	}

	if len(profiles.Profiles) == 0 {
		fmt.Println("No profiles to remove")
		return nil
	}

	selected, err := pickProfile(profiles, args, "Select profile to remove:")
	if err != nil {
		return err
	}

	// Confirm removal
	yes, _ := cmd.Flags().GetBool("yes")
	if !yes && utils.Interactive() {
		confirm, err := utils.Confirm(fmt.Sprintf("Are you sure you want to remove %s?", selected), false)
		if err != nil {
			return err
		}
		if !confirm {
			fmt.Println("Removal cancelled")
			return nil
		}
	}

	if err := profiles.Remove(selected); err != nil {
		return err
	}
	if err := config.SaveProfilesToFile(profiles, path); err != nil {
		return fmt.Errorf("failed to save profiles: %w", err)
	}

	fmt.Printf("Profile %s removed successfully\n", selected)
	return nil
}

func useProfile(cmd *cobra.Command, args []string) error {
	profiles, path, err := loadProfiles()
	if err != nil {
		return fmt.Errorf("failed to load profiles: %w", err)
	}

	selected, err := pickProfile(profiles, args, "Select profile:")
	if err != nil {
		return err
	}
	if err := profiles.Select(selected); err != nil {
		return err
	}
	if err := config.SaveProfilesToFile(profiles, path); err != nil {
		return fmt.Errorf("failed to save profiles: %w", err)
	}

	fmt.Printf("Using profile %s\n", selected)
	return nil
}
