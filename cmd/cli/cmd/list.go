package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/picogrid/drone-search-sim/pkg/simulation"
	"github.com/picogrid/drone-search-sim/pkg/utils"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available simulations",
	Long:  `List all available simulations with their descriptions`,
	RunE:  listSimulations,
}

func init() {
	listCmd.Flags().BoolP("parameters", "P", false, "also list each simulation's parameters")
}

func listSimulations(cmd *cobra.Command, args []string) error {
	// Discover available simulations
	simInfos, err := utils.DiscoverSimulations()
	if err != nil {
		return fmt.Errorf("failed to discover simulations: %w", err)
	}

	if len(simInfos) == 0 {
		fmt.Println("No simulations found")
		return nil
	}

	// Create tabwriter for formatted output
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tVERSION\tCATEGORY\tREGISTERED\tDESCRIPTION")
	_, _ = fmt.Fprintln(w, "----\t-------\t--------\t----------\t-----------")

	for _, info := range simInfos {
		registered := "no"
		if simulation.DefaultRegistry.Has(info.Config.Name) {
			registered = "yes"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			info.Config.Name,
			info.Config.Version,
			info.Config.Category,
			registered,
			info.Config.Description,
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	showParams, _ := cmd.Flags().GetBool("parameters")
	if !showParams {
		return nil
	}

	for _, info := range simInfos {
		fmt.Printf("\n%s parameters:\n", info.Config.Name)
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "  NAME\tTYPE\tDEFAULT\tDESCRIPTION")
		for _, p := range info.Config.Parameters {
			def := ""
			if p.Default != nil {
				def = fmt.Sprintf("%v", p.Default)
			}
			_, _ = fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", p.Name, p.Type, def, p.Description)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}
	return nil
}
