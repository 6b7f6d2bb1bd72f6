package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"morph/internal/cache"
	"morph/internal/host"
	"morph/internal/pipeline"
)

var statsJobs int

func init() {
	statsCmd.Flags().IntVar(&statsJobs, "jobs", 0, "max files transformed in parallel (0 = GOMAXPROCS)")
}

var statsCmd = &cobra.Command{
	Use:   "stats [dir]",
	Short: "Transform a directory and report cache statistics",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	target := "."
	if len(args) > 0 && args[0] != "" {
		target = args[0]
	}
	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("failed to stat %q: %w", target, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%q is not a directory", target)
	}

	exts, excludes, err := loadProjectConfig(target)
	if err != nil {
		return err
	}
	files, err := listMXFiles(target)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no mx files found")
		return nil
	}

	disk, err := cache.OpenDisk("morph")
	if err != nil {
		disk = nil
	}

	tr := pipeline.New(pipeline.Config{
		Host:       host.NewOS(""),
		Extensions: exts,
		Excludes:   excludes,
		Disk:       disk,
	})
	if _, err := tr.TransformAll(cmd.Context(), files, statsJobs); err != nil {
		return err
	}

	st := tr.Stats()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "files:        %d\n", len(files))
	fmt.Fprintf(out, "preprocessed: %d\n", st.PreprocessedCount)
	fmt.Fprintf(out, "transformed:  %d\n", st.TransformedCount)
	return nil
}
