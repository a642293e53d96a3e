package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"irverify/internal/cli"
	"irverify/internal/config"
	"irverify/internal/discovery"
	"irverify/internal/execution"
	"irverify/internal/matcher"
	"irverify/internal/storage"
	"irverify/internal/ui"
)

// Commands holds all CLI commands
type Commands struct {
	Run      *RunCommand
	List     *ListCommand
	Nodes    *NodesCommand
	Failures *FailuresCommand
	ServeSim *ServeSimCommand
}

// NewCommands creates all commands with dependencies
func NewCommands(cfg *config.Config) *Commands {
	// Initialize dependencies
	scanner := discovery.NewScanner(cfg.PathsToIgnore, config.DefaultSuitePattern)
	filter := discovery.NewFilter()
	loader := NewCaseLoader(cfg, scanner, filter)
	scheduler := execution.NewRoundRobinScheduler()
	jsonStorage := storage.NewJSONStorage(cfg)
	formatter := ui.NewFormatter(cfg)
	errorViewer := ui.NewErrorViewer(jsonStorage)
	vocabulary := matcher.New()

	return &Commands{
		Run:      NewRunCommand(cfg, loader, scheduler, vocabulary, jsonStorage, formatter, errorViewer),
		List:     NewListCommand(cfg, loader, formatter, jsonStorage),
		Nodes:    NewNodesCommand(vocabulary, formatter),
		Failures: NewFailuresCommand(jsonStorage, formatter, errorViewer),
		ServeSim: NewServeSimCommand(cfg),
	}
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags, cfg *config.Config) {
	// Flags are applied after parsing; the environment is read first so flags win
	applyFlags := func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(flags.ToConfigFlags())
		if err != nil {
			return err
		}
		*cfg = *loaded
		return nil
	}

	// Run command
	runCmd := &cobra.Command{
		Use:     "run",
		Short:   "Verify IR node patterns of the test cases",
		Long:    "Force compilation of every test case method, capture its phase dump and check the node pattern rules",
		RunE:    c.Run.Execute,
		PreRunE: applyFlags,
	}
	runCmd.Flags().IntVarP(&flags.Processors, "processors", "p", 0, fmt.Sprintf("Number of workers to use (default %d or IRV_PROCESSORS)", config.DefaultProcessors))
	runCmd.Flags().StringVarP(&flags.SuitePath, "suite-path", "s", "", "Folder where *.irsuite.yaml discovery should start")
	runCmd.Flags().StringVar(&flags.SuiteFile, "suite-file", "", "Only load suite files whose name matches the pattern (e.g. 'div*')")
	runCmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Filter cases by name pattern (supports wildcards, e.g., 'testDiv*' or '*Mod*Fast')")
	runCmd.Flags().BoolVar(&flags.NoBuiltin, "no-builtin", false, "Skip the built-in TestDivSmallPath suite")
	runCmd.Flags().StringVar(&flags.Arch, "arch", "", "Target architecture of the simulated runtime (amd64, aarch64)")
	runCmd.Flags().Uint64Var(&flags.Seed, "seed", 0, "Seed for argument generation (0 picks one)")
	runCmd.Flags().BoolVar(&flags.Recapture, "recapture", false, "Capture every dump twice and report differing counts")
	runCmd.Flags().BoolVar(&flags.StrictArch, "strict-arch", false, "Treat cases skipped for their architecture as failures")
	runCmd.Flags().BoolVar(&flags.OpenFaills, "open-failures", false, "Open the failures viewer when the run finishes with failures")
	rootCmd.AddCommand(runCmd)

	// List command
	listCmd := &cobra.Command{
		Use:     "list",
		Short:   "List discovered test cases",
		Long:    "Load the built-in and discovered suites and list their cases without running them",
		RunE:    c.List.Execute,
		PreRunE: applyFlags,
	}
	listCmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Filter cases by name pattern (supports wildcards)")
	listCmd.Flags().StringVarP(&flags.SuitePath, "suite-path", "s", "", "Folder where *.irsuite.yaml discovery should start")
	listCmd.Flags().StringVar(&flags.SuiteFile, "suite-file", "", "Only load suite files whose name matches the pattern")
	listCmd.Flags().BoolVar(&flags.NoBuiltin, "no-builtin", false, "Skip the built-in TestDivSmallPath suite")
	listCmd.Flags().BoolVarP(&flags.ShowRules, "rules", "r", false, "Show the IR rules of each case")
	rootCmd.AddCommand(listCmd)

	// Nodes command
	nodesCmd := &cobra.Command{
		Use:   "nodes",
		Short: "List the node kinds rules can name",
		RunE:  c.Nodes.Execute,
	}
	rootCmd.AddCommand(nodesCmd)

	// Failures command
	failuresCmd := &cobra.Command{
		Use:   "failures",
		Short: "View IR failures interactively",
		Long:  "Display the failures of the last run in an interactive viewer",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Failures.Execute(flags.Print)
		},
	}
	failuresCmd.Flags().BoolVar(&flags.Print, "print", false, "Print the report instead of opening the viewer")
	rootCmd.AddCommand(failuresCmd)

	// Serve-sim command
	serveCmd := &cobra.Command{
		Use:     "serve-sim",
		Short:   "Serve the simulated runtime over stdin/stdout",
		Long:    "Run the simulated compiler as an external runtime speaking the line-delimited JSON protocol (for IRV_RUNTIME=exec)",
		RunE:    c.ServeSim.Execute,
		PreRunE: applyFlags,
	}
	serveCmd.Flags().StringVar(&flags.Arch, "arch", "", "Target architecture to simulate (amd64, aarch64)")
	rootCmd.AddCommand(serveCmd)
}
