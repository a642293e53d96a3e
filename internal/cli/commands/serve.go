package commands

import (
	"os"

	"github.com/spf13/cobra"

	"irverify/internal/config"
	"irverify/internal/domain"
	"irverify/internal/runtime"
)

// ServeSimCommand handles the serve-sim command
type ServeSimCommand struct {
	config *config.Config
}

// NewServeSimCommand creates a new ServeSimCommand
func NewServeSimCommand(cfg *config.Config) *ServeSimCommand {
	return &ServeSimCommand{config: cfg}
}

// Execute serves the simulator until stdin closes or a close request arrives
func (sc *ServeSimCommand) Execute(cmd *cobra.Command, args []string) error {
	arch, err := domain.ParseArch(sc.config.Arch)
	if err != nil {
		return err
	}
	sim := runtime.NewSim(runtime.SimConfig{
		Arch:           arch,
		C1Threshold:    sc.config.SimC1Threshold,
		C2Threshold:    sc.config.SimC2Threshold,
		CompileLatency: sc.config.SimLatency,
		Exclude:        sc.config.SimExclude,
	})
	return runtime.Serve(sim, os.Stdin, os.Stdout)
}
