package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/dropwatch/internal/observability"
	"github.com/jonathan/dropwatch/internal/state"
)

var stateCommand = &cobra.Command{
	Use:   "state",
	Short: "Inspect persisted watch state",
}

var stateListCommand = &cobra.Command{
	Use:   "list",
	Short: "List tracked items, most recently seen first",
	RunE:  runStateListCmd,
}

var stateListLimit int

func init() {
	stateListCommand.Flags().IntVarP(&stateListLimit, "limit", "n", 20, "Maximum items to show")

	stateCommand.AddCommand(stateListCommand)
	rootCmd.AddCommand(stateCommand)
}

func runStateListCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := resolveConfig(cmd, processEnv())
	if err != nil {
		return err
	}

	backend, closeBackend, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeBackend()

	store := state.New(backend)
	if err := store.Load(ctx); err != nil {
		return fmt.Errorf("failed to read state from %s: %w", backend.Name(), err)
	}

	observability.NewPrinter(os.Stdout).PrintItems(store.Items(), stateListLimit)
	return nil
}
