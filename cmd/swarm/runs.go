package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-swarm/internal/registry"
	"github.com/vovakirdan/tui-swarm/internal/storage"
)

var (
	flagRunsLimit int
	flagRunsClear bool
)

var runsCmd = &cobra.Command{
	Use:   "runs [scenario]",
	Short: "Show stored run summaries",
	Long: `Display stored runs. With a scenario, shows its top runs by score and
aggregate stats; without one, shows the most recent runs of every scenario.

Examples:
  swarm runs
  swarm runs swarm_horde
  swarm runs swarm --limit 25
  swarm runs swarm --clear`,
	Args: cobra.MaximumNArgs(1),
	Run:  runRuns,
}

func init() {
	runsCmd.Flags().IntVar(&flagRunsLimit, "limit", 10, "Number of runs to show")
	runsCmd.Flags().BoolVar(&flagRunsClear, "clear", false, "Delete the stored runs of the scenario")
}

func runRuns(_ *cobra.Command, args []string) {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening runs database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if len(args) == 0 {
		if flagRunsClear {
			fmt.Fprintln(os.Stderr, "Error: --clear needs a scenario")
			os.Exit(1)
		}
		showRecent(store)
		return
	}

	scenario := args[0]
	if !registry.Exists(scenario) {
		fmt.Fprintf(os.Stderr, "Error: unknown scenario %q\n", scenario)
		fmt.Fprintln(os.Stderr, "Run 'swarm list' to see available scenarios.")
		os.Exit(1)
	}

	if flagRunsClear {
		if err := store.ClearRuns(scenario); err != nil {
			fmt.Fprintf(os.Stderr, "Error clearing runs: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Cleared runs for %s\n", scenario)
		return
	}

	showTop(store, scenario)
}

func showTop(store *storage.Store, scenario string) {
	runs, err := store.TopRuns(scenario, flagRunsLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving runs: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Top Runs - %s\n", scenario)
	fmt.Println()

	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		fmt.Println()
		fmt.Printf("Run 'swarm play %s' or 'swarm bench %s' to record one.\n", scenario, scenario)
		return
	}

	printRuns(runs, false)

	stats, err := store.GetScenarioStats(scenario)
	if err == nil {
		fmt.Println()
		fmt.Printf("Runs: %d  Best: %d  Avg: %.0f  Ticks simulated: %d\n",
			stats.RunsCount, stats.BestScore, stats.AvgScore, stats.TotalTicks)
	}
}

func showRecent(store *storage.Store) {
	runs, err := store.RecentRuns(flagRunsLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving runs: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Recent Runs")
	fmt.Println()

	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		return
	}
	printRuns(runs, true)
}

func printRuns(runs []storage.RunRecord, withScenario bool) {
	header := "  %-4s  %-8s  %-8s  %-6s  %-7s  %-10s  %-6s  %s\n"
	if withScenario {
		fmt.Printf("  %-12s", "Scenario")
	}
	fmt.Printf(header, "Rank", "Score", "Ticks", "Deaths", "Workers", "Ticks/s", "Mode", "Date")
	if withScenario {
		fmt.Printf("  %-12s", "--------")
	}
	fmt.Printf(header, "----", "-----", "-----", "------", "-------", "-------", "----", "----")

	for i, r := range runs {
		if withScenario {
			fmt.Printf("  %-12s", r.Scenario)
		}
		fmt.Printf("  %-4d  %-8d  %-8d  %-6d  %-7d  %-10.0f  %-6s  %s\n",
			i+1, r.Score, r.Ticks, r.Deaths, r.Workers, r.TicksPerSecond(), r.Mode,
			r.CreatedAt.Format("2006-01-02 15:04"))
	}
}
