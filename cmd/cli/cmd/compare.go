package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	searchconfig "github.com/picogrid/drone-search-sim/cmd/drone-search/config"
	"github.com/picogrid/drone-search-sim/cmd/drone-search/core"
	searchsim "github.com/picogrid/drone-search-sim/cmd/drone-search/simulation"
	"github.com/picogrid/drone-search-sim/pkg/logger"
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare motion strategies",
	Long: `Run one feasibility search per motion strategy, concurrently, and compare
the fast and slow configurations each of them finds.`,
	RunE: compareStrategies,
}

func init() {
	compareCmd.Flags().StringSlice("strategies", []string{"random", "sweep", "spiral"}, "strategies to compare (names or ids)")
	compareCmd.Flags().Int("parallel", 0, "maximum searches running at once (0 runs all)")
	compareCmd.Flags().BoolP("quiet", "q", false, "hide per-search events and show a spinner instead")
	addParameterFlags(compareCmd)
}

func compareStrategies(cmd *cobra.Command, _ []string) error {
	names, _ := cmd.Flags().GetStringSlice("strategies")
	strategies := make([]core.StrategyID, 0, len(names))
	for _, name := range names {
		id, err := core.ParseStrategy(name)
		if err != nil {
			return err
		}
		strategies = append(strategies, id)
	}

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
	logger.SetLevel(logger.ParseLevel(cfg.Output.LogLevel))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
			logger.Warn("\nReceived interrupt signal, stopping comparison...")
			cancel()
		case <-ctx.Done():
		}
	}()

	parallel, _ := cmd.Flags().GetInt("parallel")
	quiet, _ := cmd.Flags().GetBool("quiet")

	logger.LogSection(fmt.Sprintf("Comparing %d strategies", len(strategies)))

	var results []searchsim.StrategyResult
	run := func() error {
		var out io.Writer
		if quiet {
			out = io.Discard
		}
		var err error
		results, err = searchsim.CompareStrategies(ctx, cfg, strategies, parallel, out)
		return err
	}

	if quiet {
		err = logger.WithSpinner("Running searches", run)
	} else {
		err = run()
	}
	if err != nil {
		return fmt.Errorf("comparison failed: %w", err)
	}

	printComparison(results)
	return nil
}

func printComparison(results []searchsim.StrategyResult) {
	table := logger.NewTable("STRATEGY", "FAST", "SLOWEST", "SLOW POINTS", "GROUPS", "TRIALS")
	for _, r := range results {
		fast := "-"
		if r.Fast != nil {
			fast = r.Fast.String()
		}
		slowest := "-"
		if len(r.Slow) > 0 {
			slowest = r.Slow[0].String()
		}
		table.AddRow(r.Strategy.String(), fast, slowest,
			strconv.Itoa(len(r.Slow)), strconv.Itoa(r.Groups), strconv.Itoa(r.Trials))
	}

	logger.LogSubSection("Results")
	table.Print()

	for _, r := range results {
		logger.LogList(r.Strategy.String(), r.Lines)
	}
}
