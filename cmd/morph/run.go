package main

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"morph/internal/cache"
	"morph/internal/diag"
	"morph/internal/diagfmt"
	"morph/internal/host"
	"morph/internal/observ"
	"morph/internal/pipeline"
	"morph/internal/preproc"
	"morph/internal/project"
	"morph/internal/source"
)

var (
	runJobs    int
	runJSON    bool
	runTimings bool
	runUI      string
	runNoCache bool
)

func init() {
	runCmd.Flags().IntVar(&runJobs, "jobs", 0, "max files transformed in parallel (0 = GOMAXPROCS)")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "emit diagnostics as JSON")
	runCmd.Flags().BoolVar(&runTimings, "timings", false, "print phase timings")
	runCmd.Flags().StringVar(&runUI, "ui", "auto", "interactive progress (auto|on|off)")
	runCmd.Flags().BoolVar(&runNoCache, "no-cache", false, "skip the on-disk cache")
}

var runCmd = &cobra.Command{
	Use:   "run [path]",
	Short: "Transform mx sources under a directory (or one file to stdout)",
	Long: `Transform every *.mx file under the given directory through the morph
pipeline. With a single file argument, the transformed code is printed to
stdout and diagnostics go to stderr.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	target := "."
	if len(args) > 0 && args[0] != "" {
		target = args[0]
	}
	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("failed to stat %q: %w", target, err)
	}
	singleFile := !info.IsDir()

	startDir := target
	if singleFile {
		startDir = filepath.Dir(target)
	}
	exts, excludes, err := loadProjectConfig(startDir)
	if err != nil {
		return err
	}

	var files []string
	if singleFile {
		files = []string{filepath.ToSlash(target)}
	} else {
		files, err = listMXFiles(target)
		if err != nil {
			return err
		}
	}
	if len(files) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no mx files found")
		return nil
	}

	quiet, _ := cmd.Flags().GetBool("quiet")
	colorMode, _ := cmd.Flags().GetString("color")
	maxDiags, _ := cmd.Flags().GetInt("max-diagnostics")

	var disk *cache.Disk
	if !runNoCache {
		disk, err = cache.OpenDisk("morph")
		if err != nil {
			// без дискового кеша просто медленнее
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: disk cache unavailable: %v\n", err)
			disk = nil
		}
	}

	var timer *observ.Timer
	if runTimings {
		timer = observ.NewTimer()
	}

	cfg := pipeline.Config{
		Host:       host.NewOS(""),
		Extensions: exts,
		Excludes:   excludes,
		Disk:       disk,
		Timer:      timer,
	}

	mode, err := readUIMode(runUI)
	if err != nil {
		return err
	}
	useTUI := shouldUseTUI(mode) && !quiet && !runJSON && !singleFile

	var results map[string]pipeline.Result
	if useTUI {
		results, err = runTransformAllWithUI(cmd.Context(), "morph run", files, cfg, runJobs)
	} else {
		tr := pipeline.New(cfg)
		results, err = tr.TransformAll(cmd.Context(), files, runJobs)
	}
	if err != nil {
		return err
	}

	diagOut := cmd.OutOrStdout()
	if singleFile {
		diagOut = cmd.ErrOrStderr()
	}

	fileSet, bag := collectDiagnostics(cfg.Host, results, maxDiags)
	if runJSON {
		if err := diagfmt.JSON(cmd.OutOrStdout(), bag, fileSet, diagfmt.JSONOpts{IncludePositions: true}); err != nil {
			return err
		}
	} else {
		diagfmt.Pretty(diagOut, bag, fileSet, diagfmt.PrettyOpts{
			Color:     useColor(colorMode, os.Stdout),
			ShowNotes: true,
		})
	}

	if singleFile {
		fmt.Fprint(cmd.OutOrStdout(), results[files[0]].Code)
	} else if !quiet && !runJSON {
		printRunSummary(cmd.OutOrStdout(), results)
	}

	if runTimings && timer != nil {
		fmt.Fprint(cmd.ErrOrStderr(), timer.Summary())
	}

	if bag.HasErrors() {
		return fmt.Errorf("transformation finished with errors")
	}
	return nil
}

// loadProjectConfig reads morph.toml if one exists above startDir. Without a
// manifest every known extension is enabled.
func loadProjectConfig(startDir string) ([]preproc.Extension, []string, error) {
	manifest, found, err := project.FindAndLoad(startDir)
	if err != nil {
		return nil, nil, err
	}
	if !found {
		return []preproc.Extension{preproc.ExtPipeline, preproc.ExtBind}, nil, nil
	}
	exts := make([]preproc.Extension, 0, len(manifest.Config.Syntax.Extensions))
	for _, name := range manifest.Config.Syntax.Extensions {
		ext, err := preproc.ParseExtension(name)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", manifest.Path, err)
		}
		exts = append(exts, ext)
	}
	return exts, manifest.Config.Filter.Exclude, nil
}

// listMXFiles возвращает отсортированный список всех *.mx файлов в директории
func listMXFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".mx") {
			files = append(files, filepath.ToSlash(path))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	// Сортируем для детерминированного порядка
	sort.Strings(files)
	return files, nil
}

// collectDiagnostics loads each diagnosed file into a FileSet and stamps
// positioned diagnostics with its FileID so formatters can resolve lines.
func collectDiagnostics(h host.Host, results map[string]pipeline.Result, maxDiags int) (*source.FileSet, *diag.Bag) {
	fileSet := source.NewFileSet(h)
	loaded := make(map[string]source.FileID)
	bag := diag.NewBag(maxDiags)

	paths := make([]string, 0, len(results))
	for path := range results {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		for _, d := range results[path].Diags {
			if d.Positioned {
				id, ok := loaded[path]
				if !ok {
					id, ok = fileSet.Load(path)
					if !ok {
						bag.Add(d.WithoutPosition())
						continue
					}
					loaded[path] = id
				}
				d.Span.File = id
			}
			bag.Add(d)
		}
	}
	bag.Dedup()
	bag.Sort()
	return fileSet, bag
}

func printRunSummary(out io.Writer, results map[string]pipeline.Result) {
	var changed, failed int
	for _, res := range results {
		if res.State == pipeline.StateFailed {
			failed++
			continue
		}
		if res.Changed {
			changed++
		}
	}
	fmt.Fprintf(out, "transformed %d files (%d changed", len(results), changed)
	if failed > 0 {
		fmt.Fprintf(out, ", %d failed", failed)
	}
	fmt.Fprintln(out, ")")
}
