package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/spherical/pdf-scanner/internal/config"
	"github.com/spherical/pdf-scanner/internal/domain"
	"github.com/spherical/pdf-scanner/internal/scan"
)

// maxConcurrentReads bounds the number of input files read at once.
const maxConcurrentReads = 8

// ExitError makes the command exit non-zero. An empty Message means the
// reason has already been printed.
type ExitError struct {
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

// collectPaths expands directories into the PDF files they contain. Files
// named explicitly are kept whatever their extension, in argument order.
func collectPaths(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", arg, err)
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("read dir %s: %w", arg, err)
		}
		var found []string
		for _, e := range entries {
			if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
				found = append(found, filepath.Join(arg, e.Name()))
			}
		}
		sort.Strings(found)
		paths = append(paths, found...)
	}
	return paths, nil
}

// readInputs reads paths concurrently. The result keeps the order of paths.
func readInputs(ctx context.Context, paths []string) ([]scan.Input, error) {
	inputs := make([]scan.Input, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentReads)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			inputs[i] = scan.Input{Name: filepath.Base(path), Data: data}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return inputs, nil
}

// applyFlags overrides cfg with the scan command's flags and revalidates it.
func applyFlags(cfg *config.Config, f scanFlags) error {
	if f.strategy != "" {
		cfg.Scan.Strategy = strings.ToLower(f.strategy)
	}
	if f.scope != "" {
		cfg.Scan.Scope = strings.ToLower(f.scope)
	}
	if f.outputDir != "" {
		cfg.Output.Driver = config.OutputDir
		cfg.Output.Dir = f.outputDir
	}
	if f.s3Bucket != "" {
		cfg.Output.Driver = config.OutputS3
		cfg.Output.S3.Bucket = f.s3Bucket
	}
	if f.dryRun {
		cfg.Output.Driver = config.OutputNone
	}
	if f.noCrop {
		cfg.Crop.Enabled = false
	}
	return cfg.Validate()
}

// exitStatus fails the run only when nothing was produced and something
// went wrong.
func exitStatus(report *domain.Report) error {
	if len(report.Artifacts) == 0 && len(report.Failures) > 0 {
		return &ExitError{}
	}
	return nil
}

// failureRows formats failures for the summary table.
func failureRows(report *domain.Report) [][]string {
	rows := make([][]string, 0, len(report.Failures))
	for _, f := range report.Failures {
		page := "-"
		if !f.DocumentLevel() {
			page = strconv.Itoa(f.PageNumber)
		}
		rows = append(rows, []string{f.DocumentName, page, string(f.Reason), f.Message})
	}
	return rows
}

// artifactRows formats artifacts for the summary table.
func artifactRows(report *domain.Report) [][]string {
	rows := make([][]string, 0, len(report.Artifacts))
	for _, a := range report.Artifacts {
		rows = append(rows, []string{a.DocumentName, strconv.Itoa(a.PageNumber), a.Identifier.Value, a.Filename})
	}
	return rows
}
