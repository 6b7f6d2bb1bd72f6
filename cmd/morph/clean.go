package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"morph/internal/cache"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove the morph disk cache",
	Long:  "Remove every cached transformation from the on-disk cache. The next run starts cold.",
	Args:  cobra.NoArgs,
	RunE:  runCleanCmd,
}

func runCleanCmd(cmd *cobra.Command, _ []string) error {
	disk, err := cache.OpenDisk("morph")
	if err != nil {
		return fmt.Errorf("failed to open disk cache: %w", err)
	}
	if err := disk.DropAll(); err != nil {
		return fmt.Errorf("failed to clear disk cache: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "disk cache cleared")
	return nil
}
