package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/picogrid/drone-search-sim/pkg/logger"
	"github.com/picogrid/drone-search-sim/pkg/simulation"
	"github.com/picogrid/drone-search-sim/pkg/utils"

	// Import simulations to register them
	_ "github.com/picogrid/drone-search-sim/cmd/drone-search/simulation"
	_ "github.com/picogrid/drone-search-sim/cmd/single-trial"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulation",
	Long: `Run a simulation interactively or with specified parameters.

Parameters are taken from the simulation's defaults (or prompts on a terminal),
then the active profile, then --params, then --set. When a configuration file
is given with --config-file, only the explicit overrides are applied on top of it.`,
	RunE: runSimulation,
}

func init() {
	runCmd.Flags().StringP("simulation", "s", "", "simulation name to run")
	runCmd.Flags().Bool("non-interactive", false, "never prompt, use defaults and overrides only")
	addParameterFlags(runCmd)
}

func runSimulation(cmd *cobra.Command, _ []string) error {
	simName, err := selectSimulation(cmd)
	if err != nil {
		return fmt.Errorf("failed to select simulation: %w", err)
	}

	sim, err := simulation.DefaultRegistry.Get(simName)
	if err != nil {
		return fmt.Errorf("failed to get simulation: %w", err)
	}

	simInfos, err := utils.DiscoverSimulations()
	if err != nil {
		logger.Warnf("Failed to discover simulation descriptors: %v", err)
	}

	var simConfig *simulation.SimulationConfig
	if info, ok := utils.FindSimulation(simInfos, simName); ok {
		simConfig = &info.Config
	} else {
		logger.Warnf("No simulation.yaml found for %s, using configuration defaults", simName)
	}

	nonInteractive, _ := cmd.Flags().GetBool("non-interactive")
	params, err := collectParameters(cmd, simConfig, utils.Interactive() && !nonInteractive)
	if err != nil {
		return fmt.Errorf("failed to get parameters: %w", err)
	}
	logger.Debugf("Parameters: %v", describeParameters(params))

	if err := sim.Configure(params); err != nil {
		return fmt.Errorf("failed to configure simulation: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
		case <-ctx.Done():
			return
		}
		logger.Warn("\nReceived interrupt signal, stopping simulation...")
		err := sim.Stop()
		if err != nil {
			logger.Errorf("Failed to stop simulation: %v", err)
			return
		}
		cancel()
	}()

	logger.LogSection(fmt.Sprintf("Starting %s", sim.Name()))
	if err := sim.Run(ctx); err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}

	if r, ok := sim.(simulation.Resulter); ok && len(r.Results()) == 0 {
		logger.Warn("Simulation stopped before producing results")
		return nil
	}

	logger.Success("Simulation completed successfully")
	return nil
}

func selectSimulation(cmd *cobra.Command) (string, error) {
	// Check if simulation is specified via flag
	simName, _ := cmd.Flags().GetString("simulation")
	if simName != "" {
		return simName, nil
	}

	names := simulation.DefaultRegistry.List()
	if len(names) == 0 {
		return "", fmt.Errorf("no simulations registered")
	}
	if len(names) == 1 || !utils.Interactive() {
		return names[0], nil
	}

	descriptions := make(map[string]string)
	if simInfos, err := utils.DiscoverSimulations(); err == nil {
		for _, info := range simInfos {
			descriptions[info.Config.Name] = info.Config.Description
		}
	}

	// Interactive selection
	var selected string
	prompt := &survey.Select{
		Message: "Select simulation:",
		Options: names,
		Description: func(value string, index int) string {
			return descriptions[value]
		},
	}

	if err := survey.AskOne(prompt, &selected); err != nil {
		return "", err
	}

	return selected, nil
}
