package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/spherical/pdf-scanner/cmd/pdf-scanner/ui"
	"github.com/spherical/pdf-scanner/internal/domain"
	"github.com/spherical/pdf-scanner/internal/scan"
	"github.com/spherical/pdf-scanner/pkg/scanner"
)

type scanFlags struct {
	strategy  string
	scope     string
	outputDir string
	s3Bucket  string
	noCrop    bool
	dryRun    bool
}

var scanOpts scanFlags

var scanCmd = &cobra.Command{
	Use:   "scan <file.pdf|dir>...",
	Short: "Scan PDF documents and save one signature crop per identified page",
	Long: `Scan reads every PDF given on the command line (directories are expanded to the
PDF files they contain), finds an identifier on each page and saves the cropped
signature area as <identifier>.jpg. Failed pages and documents are listed at
the end; the command fails only when nothing could be extracted.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanOpts.strategy, "strategy", "", "identifier strategy: text, qr or ocr")
	scanCmd.Flags().StringVar(&scanOpts.scope, "scope", "", "identifier scope: page or document")
	scanCmd.Flags().StringVarP(&scanOpts.outputDir, "output", "o", "", "output directory for signature images")
	scanCmd.Flags().StringVar(&scanOpts.s3Bucket, "s3-bucket", "", "upload signature images to this S3 bucket")
	scanCmd.Flags().BoolVar(&scanOpts.noCrop, "no-crop", false, "save the full page instead of the signature area")
	scanCmd.Flags().BoolVar(&scanOpts.dryRun, "dry-run", false, "report identifiers without saving images")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := applyFlags(cfg, scanOpts); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}

	paths, err := collectPaths(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no PDF files found")
	}

	interactive := !jsonOutput
	var spin *ui.Spinner
	if interactive {
		spin = ui.NewSpinner(fmt.Sprintf("Reading %d files...", len(paths)))
		spin.Start()
	}
	inputs, err := readInputs(ctx, paths)
	if spin != nil {
		spin.Stop()
	}
	if err != nil {
		return err
	}

	client, err := scanner.NewClientWithConfig(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer client.Close()

	if interactive {
		ui.Section("PDF Scan")
		ui.Info("Scanning %d documents (strategy: %s, scope: %s)", len(inputs), cfg.Scan.Strategy, cfg.Scan.Scope)
	}

	events, results := client.Stream(ctx, inputs)
	// Debug logs share stderr with the bar, so verbose runs go without it.
	var progress *ui.ProgressBar
	if interactive && !ui.Verbose() {
		progress = ui.NewProgressBar(int64(len(inputs)), "Scanning")
	}
	for ev := range events {
		if progress != nil {
			trackProgress(progress, inputs, ev)
		}
	}
	if progress != nil {
		progress.Finish()
	}

	result := <-results
	if result.Err != nil && !errors.Is(result.Err, context.Canceled) {
		return result.Err
	}
	report := result.Report

	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		return exitStatus(report)
	}

	printSummary(report)
	return exitStatus(report)
}

// trackProgress advances the bar by documents and describes the current page.
func trackProgress(bar *ui.ProgressBar, inputs []scan.Input, ev domain.StreamEvent) {
	name := ""
	if ev.DocumentIndex < len(inputs) {
		name = inputs[ev.DocumentIndex].Name
	}

	switch ev.Type {
	case domain.EventDocumentStart:
		bar.Describe(name)
	case domain.EventPageProcessing:
		bar.Describe(fmt.Sprintf("%s p.%d", name, ev.PageNumber))
	case domain.EventDocumentComplete, domain.EventDocumentFailed:
		bar.Set(int64(ev.DocumentIndex + 1))
	}
}

func printSummary(report *domain.Report) {
	if report.Cancelled {
		ui.Warning("Scan interrupted; showing partial results")
	}

	if len(report.Artifacts) > 0 {
		ui.Section("Signatures")
		ui.Table([]string{"DOCUMENT", "PAGE", "IDENTIFIER", "FILE"}, artifactRows(report))
	}

	if len(report.Failures) > 0 {
		ui.Section("Failures")
		ui.Table([]string{"DOCUMENT", "PAGE", "REASON", "MESSAGE"}, failureRows(report))
	}

	ui.Newline()
	stats := report.Stats
	msg := fmt.Sprintf("%d signatures from %d pages of %d documents in %s",
		stats.Artifacts, stats.PagesProcessed, stats.Documents, ui.FormatDuration(stats.TotalTime))
	switch {
	case len(report.Failures) == 0:
		ui.Success("%s", msg)
	case len(report.Artifacts) == 0:
		ui.Error("%s; %d failures", msg, len(report.Failures))
	default:
		ui.Warning("%s; %d failures", msg, len(report.Failures))
	}
}
