// =============================================================================
// Invoice Form Gate - Process Command
// =============================================================================
//
// This file defines the 'process' command, which runs the gate over every
// saved form in the input directory.
//
// COMMAND USAGE:
//   formgate process [flags]
//
// FLAGS:
//   --dry-run    Validate and extract without writing or archiving
//   --file       Process a single form instead of the input directory
//
// WORKFLOW:
//   1. Load configuration
//   2. Discover forms in the input directory
//   3. Process forms concurrently (bounded by max_concurrency)
//   4. Print a summary, write the summary log and the XLSX report
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/invoice-form-gate/internal/formparser"
	"github.com/ginjaninja78/invoice-form-gate/internal/notify"
	"github.com/ginjaninja78/invoice-form-gate/internal/processor"
	"github.com/ginjaninja78/invoice-form-gate/pkg/utils"
)

var dryRun bool
var filePath string

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Validate and extract every form in the input directory",
	Long: `The process command scans the input directory for saved forms (.json,
.yaml, .yml, .xlsx), validates each one and writes the invoice payload of
every valid form to the output directory.

Processing is done concurrently. Each form is processed independently and
gets its own warning, if any.

For an accepted form:
  - The payload is written to the output directory
  - The form is moved to the input archive
  - A copy of the payload goes to the output archive

For a rejected form:
  - The form stays in the input directory
  - Its warning is listed in the summary and the XLSX report`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		defer e.close()
		return runProcess(cmd, e)
	},
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().BoolVar(
		&dryRun,
		"dry-run",
		false,
		"Validate and extract without writing output files",
	)
	processCmd.Flags().StringVar(
		&filePath,
		"file",
		"",
		"Path to a single form to process",
	)
}

func runProcess(cmd *cobra.Command, e *env) error {
	out := cmd.OutOrStdout()
	startTime := time.Now()
	runID := uuid.New().String()
	logger := e.logger.With(zap.String("run_id", runID))

	fmt.Fprintln(out, "=== Invoice Form Gate ===")

	files := utils.NewFileManager(
		e.config.InputDir,
		e.config.OutputDir,
		e.config.InputArchiveDir,
		e.config.OutputArchiveDir,
	)
	files.ArchiveOnSuccess = e.config.ArchiveOnSuccess

	if !dryRun {
		if err := files.EnsureDirectories(); err != nil {
			return err
		}
	}

	// =========================================================================
	// DISCOVER
	// =========================================================================

	var inputFiles []string
	if filePath != "" {
		inputFiles = []string{filePath}
	} else {
		fmt.Fprintln(out, "Discovering forms...")
		var err error
		inputFiles, err = files.DiscoverInputFiles(formparser.Extensions...)
		if err != nil {
			return fmt.Errorf("failed to discover input files: %w", err)
		}
	}

	if len(inputFiles) == 0 {
		fmt.Fprintln(out, "No forms found in the input directory.")
		return nil
	}
	fmt.Fprintf(out, "Found %d form(s) to process\n", len(inputFiles))
	logger.Info("batch.start", zap.Int("files", len(inputFiles)), zap.Bool("dry_run", dryRun))

	// =========================================================================
	// PROCESS
	// =========================================================================

	p := processor.New(e.config, files,
		processor.WithLogger(logger),
		processor.WithTranslator(e.catalog),
		processor.WithNotifier(notify.Log(logger)),
		processor.WithDryRun(dryRun),
	)
	results := p.ProcessAll(context.Background(), inputFiles)

	for _, r := range results {
		name := filepath.Base(r.FilePath)
		switch r.Status {
		case processor.StatusAccepted:
			fmt.Fprintf(out, "  ✓ %s -> %s\n", name, r.OutputFile)
		case processor.StatusRejected:
			fmt.Fprintf(out, "  ✗ %s: %s (%s)\n", name, r.Notification.Title, r.Notification.Key)
		default:
			fmt.Fprintf(out, "  ✗ %s: %v\n", name, r.Error)
		}
	}

	// =========================================================================
	// SUMMARY
	// =========================================================================

	summary := processor.Summarize(runID, startTime, time.Now(), results)

	fmt.Fprintln(out, "\n=== Processing Complete ===")
	fmt.Fprintf(out, "Total files:     %d\n", summary.TotalFiles)
	fmt.Fprintf(out, "Accepted:        %d\n", summary.AcceptedFiles)
	fmt.Fprintf(out, "Rejected:        %d\n", summary.RejectedFiles)
	fmt.Fprintf(out, "Failed:          %d\n", summary.FailedFiles)
	fmt.Fprintf(out, "Time elapsed:    %s\n", summary.EndTime.Sub(summary.StartTime))
	if skipped := len(inputFiles) - len(results); skipped > 0 {
		fmt.Fprintf(out, "Not processed:   %d (stopped after first error)\n", skipped)
	}

	paths, err := p.WriteReports(summary, results)
	if err != nil {
		return fmt.Errorf("failed to write reports: %w", err)
	}
	for _, path := range paths {
		fmt.Fprintf(out, "Report:          %s\n", path)
	}

	logger.Info("batch.done",
		zap.Int("accepted", summary.AcceptedFiles),
		zap.Int("rejected", summary.RejectedFiles),
		zap.Int("failed", summary.FailedFiles),
	)
	return nil
}
