// =============================================================================
// Invoice Form Gate - Processor Module
// =============================================================================
//
// This module runs the gate over saved forms. It orchestrates the pipeline
// for a single file, from decoding to payload persistence, and fans a batch
// of files out over a bounded number of workers.
//
// PROCESSING PIPELINE:
//   1. Decode the form (JSON, YAML or XLSX)
//   2. Apply saved required-field defaults (optional)
//   3. Validate; a failing form is rejected with its notification
//   4. Extract the invoice payload
//   5. Encode the payload in the configured format
//   6. Write the output file
//   7. Archive the form and a copy of the payload
//
// CONCURRENCY:
//   Each file is processed independently and gets its own notification
//   recorder, so notifications of concurrent forms never mix.
//
// =============================================================================

package processor

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ginjaninja78/invoice-form-gate/internal/config"
	"github.com/ginjaninja78/invoice-form-gate/internal/form"
	"github.com/ginjaninja78/invoice-form-gate/internal/formparser"
	"github.com/ginjaninja78/invoice-form-gate/internal/i18n"
	"github.com/ginjaninja78/invoice-form-gate/internal/notify"
	"github.com/ginjaninja78/invoice-form-gate/internal/payloadwriter"
	"github.com/ginjaninja78/invoice-form-gate/internal/types"
	"github.com/ginjaninja78/invoice-form-gate/pkg/utils"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Status is the outcome of processing one form.
type Status string

const (
	// StatusAccepted: the form passed validation and its payload was written.
	StatusAccepted Status = "accepted"
	// StatusRejected: the form failed validation.
	StatusRejected Status = "rejected"
	// StatusFailed: the form could not be read or its payload not written.
	StatusFailed Status = "failed"
)

// Result represents the outcome of processing a single file.
type Result struct {
	// FilePath is the path to the input form.
	FilePath string

	// Status tells accepted, rejected and failed forms apart.
	Status Status

	// OutputFile is the written payload. Empty unless accepted.
	OutputFile string

	// ArchivePath is where the form was archived, if it was.
	ArchivePath string

	// Payload is the extracted payload. Nil unless accepted.
	Payload *types.InvoicePayload

	// Notification is the validation failure. Nil unless rejected.
	Notification *notify.Notification

	// Error is set for failed forms.
	Error error

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	// Rows is the number of line items on the form.
	Rows int

	// ProcessingTime is the time taken to process the file.
	ProcessingTime time.Duration
}

// Success reports whether the form was accepted.
func (r Result) Success() bool {
	return r.Status == StatusAccepted
}

// =============================================================================
// PROCESSOR STRUCTURE
// =============================================================================

// Processor runs the gate over form files.
type Processor struct {
	config     *config.MainConfig
	files      *utils.FileManager
	translator i18n.Translator
	notifier   notify.Notifier
	logger     *zap.Logger
	dryRun     bool
}

// Option configures a Processor.
type Option func(*Processor)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Processor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithTranslator sets the catalog used for notification text.
func WithTranslator(t i18n.Translator) Option {
	return func(p *Processor) {
		if t != nil {
			p.translator = t
		}
	}
}

// WithNotifier adds a sink that receives every notification in addition
// to the per-form recorder.
func WithNotifier(n notify.Notifier) Option {
	return func(p *Processor) {
		if n != nil {
			p.notifier = n
		}
	}
}

// WithDryRun validates and extracts without writing or archiving anything.
func WithDryRun(dryRun bool) Option {
	return func(p *Processor) {
		p.dryRun = dryRun
	}
}

// New creates a Processor. A nil file manager is derived from cfg.
func New(cfg *config.MainConfig, files *utils.FileManager, opts ...Option) *Processor {
	if cfg == nil {
		cfg = config.Default()
	}
	if files == nil {
		files = utils.NewFileManager(cfg.InputDir, cfg.OutputDir, cfg.InputArchiveDir, cfg.OutputArchiveDir)
		files.ArchiveOnSuccess = cfg.ArchiveOnSuccess
	}
	p := &Processor{
		config:   cfg,
		files:    files,
		notifier: notify.Discard,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.translator == nil {
		p.translator = i18n.MustNew(cfg.Locale)
	}
	return p
}

// =============================================================================
// SINGLE FILE
// =============================================================================

// ProcessFile runs the pipeline for one form.
func (p *Processor) ProcessFile(path string) (result Result) {
	startTime := time.Now()
	result = Result{FilePath: path, Status: StatusFailed}
	log := p.logger.With(zap.String("file", filepath.Base(path)))

	defer func() {
		result.Stats.ProcessingTime = time.Since(startTime)
	}()

	// =========================================================================
	// STEP 1: DECODE
	// =========================================================================

	opts := formparser.DefaultOptions()
	opts.SchemaCheck = p.config.SchemaCheck

	f, err := formparser.Parse(path, opts)
	if err != nil {
		result.Error = fmt.Errorf("failed to parse form: %w", err)
		log.Warn("batch.file.failed", zap.Error(result.Error))
		return result
	}

	// =========================================================================
	// STEP 2: SAVED DEFAULTS
	// =========================================================================

	if p.config.UseSavedSettings {
		f = f.WithSavedDefaults()
	}
	result.Stats.Rows = len(f.Rows)

	// =========================================================================
	// STEP 3-4: VALIDATE AND EXTRACT
	// =========================================================================

	rec := &notify.Recorder{}
	v := form.NewValidator(notify.Multi(rec, p.notifier), p.translator, form.WithLogger(log))

	payload, ok := v.Gate(f)
	if !ok {
		result.Status = StatusRejected
		if n, found := rec.Last(); found {
			result.Notification = &n
		}
		log.Info("batch.file.rejected", zap.String("key", notificationKey(result.Notification)))
		return result
	}
	result.Payload = &payload

	// =========================================================================
	// STEP 5: ENCODE
	// =========================================================================

	data, err := payloadwriter.Write(payload, p.config.OutputFormat)
	if err != nil {
		result.Error = err
		log.Error("batch.file.failed", zap.Error(err))
		return result
	}

	name := utils.GenerateOutputFileName(
		p.config.OutputNameFormat,
		payloadwriter.Extension(p.config.OutputFormat),
		map[string]string{"original": utils.BaseName(path)},
	)

	if p.dryRun {
		result.Status = StatusAccepted
		result.OutputFile = filepath.Join(p.files.OutputDir, name)
		log.Info("batch.file.ok", zap.Bool("dry_run", true))
		return result
	}

	// =========================================================================
	// STEP 6: WRITE OUTPUT
	// =========================================================================

	outputPath, err := p.files.WriteOutput(name, data)
	if err != nil {
		result.Error = err
		log.Error("batch.file.failed", zap.Error(err))
		return result
	}
	result.OutputFile = outputPath

	// =========================================================================
	// STEP 7: ARCHIVE
	// =========================================================================
	// Archive failures are logged but do not fail the form.

	if archived, err := p.files.ArchiveInputFile(path); err != nil {
		log.Warn("batch.archive.failed", zap.Error(err))
	} else if archived != path {
		result.ArchivePath = archived
	}
	if _, err := p.files.ArchiveOutputFile(outputPath); err != nil {
		log.Warn("batch.archive.failed", zap.Error(err))
	}

	result.Status = StatusAccepted
	log.Info("batch.file.ok",
		zap.String("output", outputPath),
		zap.Int("rows", result.Stats.Rows),
	)
	return result
}

// =============================================================================
// BATCH
// =============================================================================

// ProcessAll processes files with at most MaxConcurrency workers. Results
// are returned in input order. When ContinueOnError is off, no new file is
// started after the first form that is not accepted, and files never
// started are left out of the results. Cancelling ctx has the same effect.
func (p *Processor) ProcessAll(ctx context.Context, files []string) []Result {
	workers := p.config.MaxConcurrency
	if workers < 1 {
		workers = 1
	}

	results := make([]*Result, len(files))
	sem := make(chan struct{}, workers)
	stop := make(chan struct{})
	var stopOnce sync.Once
	var wg sync.WaitGroup

schedule:
	for i, file := range files {
		select {
		case <-ctx.Done():
			break schedule
		case <-stop:
			break schedule
		case sem <- struct{}{}:
		}

		// A slot may free up in the same instant ctx ends or stop closes.
		select {
		case <-ctx.Done():
			<-sem
			break schedule
		case <-stop:
			<-sem
			break schedule
		default:
		}

		wg.Add(1)
		go func(i int, file string) {
			defer wg.Done()
			defer func() { <-sem }()

			r := p.ProcessFile(file)
			results[i] = &r
			if !r.Success() && !p.config.ContinueOnError {
				stopOnce.Do(func() { close(stop) })
			}
		}(i, file)
	}
	wg.Wait()

	out := make([]Result, 0, len(files))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out
}

func notificationKey(n *notify.Notification) string {
	if n == nil {
		return ""
	}
	return n.Key
}
