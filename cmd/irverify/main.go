package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"irverify/internal/cli"
	"irverify/internal/cli/commands"
	"irverify/internal/config"
	"irverify/internal/verify"
)

var version = "dev"

// Exit codes: failures in the report, and runs that could not complete
const (
	exitFailures = 1
	exitFatal    = 2
)

func main() {
	// Create root command
	rootCmd := &cobra.Command{
		Use:           "irverify",
		Short:         "IR verification harness for JIT compiler optimizations",
		Long:          `Force compilation of test methods at a target tier, capture the compiler's phase dumps and check instruction node patterns against declared rules.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	// Create initial config with defaults
	cfg := config.New()

	// Create flags struct (will be populated by command flags)
	var flags cli.Flags

	// Create commands with dependencies
	cmds := commands.NewCommands(cfg)

	// Register all commands
	cmds.Register(rootCmd, &flags, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Execute root command
	err := rootCmd.ExecuteContext(ctx)
	switch {
	case err == nil:
	case errors.Is(err, verify.ErrFailures):
		stop()
		os.Exit(exitFailures)
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(exitFatal)
	}
}
