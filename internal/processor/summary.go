package processor

import (
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/ginjaninja78/invoice-form-gate/internal/report"
	"github.com/ginjaninja78/invoice-form-gate/pkg/utils"
)

// Summarize aggregates batch results into the run summary.
func Summarize(runID string, start, end time.Time, results []Result) utils.ProcessingSummary {
	s := utils.ProcessingSummary{
		RunID:      runID,
		StartTime:  start,
		EndTime:    end,
		TotalFiles: len(results),
	}
	for _, r := range results {
		switch r.Status {
		case StatusAccepted:
			s.AcceptedFiles++
			s.TotalRows += r.Stats.Rows
			s.Accepted = append(s.Accepted, utils.AcceptedFileInfo{
				InputFile:   r.FilePath,
				OutputFile:  r.OutputFile,
				ArchivePath: r.ArchivePath,
				Rows:        r.Stats.Rows,
				ProcessTime: r.Stats.ProcessingTime,
			})
		case StatusRejected:
			s.RejectedFiles++
			info := utils.RejectedFileInfo{InputFile: r.FilePath}
			if r.Notification != nil {
				info.Key = r.Notification.Key
				info.Title = r.Notification.Title
				info.Message = r.Notification.Message
			}
			s.Rejected = append(s.Rejected, info)
		default:
			s.FailedFiles++
			msg := "unknown error"
			if r.Error != nil {
				msg = r.Error.Error()
			}
			s.Failed = append(s.Failed, utils.FailedFileInfo{InputFile: r.FilePath, ErrorMessage: msg})
		}
	}
	return s
}

// ReportEntries converts results to XLSX report lines.
func ReportEntries(results []Result) []report.Entry {
	entries := make([]report.Entry, 0, len(results))
	for _, r := range results {
		e := report.Entry{
			File:   filepath.Base(r.FilePath),
			Status: string(r.Status),
			Rows:   r.Stats.Rows,
			Output: r.OutputFile,
		}
		if r.Notification != nil {
			e.Key = r.Notification.Key
			e.Title = r.Notification.Title
		}
		if r.Error != nil {
			e.Title = r.Error.Error()
		}
		entries = append(entries, e)
	}
	return entries
}

// WriteReports writes the text summary and, when enabled, the XLSX report
// into the output directory. It returns the paths written.
func (p *Processor) WriteReports(summary utils.ProcessingSummary, results []Result) ([]string, error) {
	if p.dryRun {
		return nil, nil
	}
	if err := p.files.EnsureDirectories(); err != nil {
		return nil, err
	}

	summaryPath, err := utils.WriteSummaryLog(summary, p.files.OutputDir)
	if err != nil {
		return nil, err
	}
	paths := []string{summaryPath}

	if p.config.XLSXReport {
		data, err := report.BuildXLSX(ReportEntries(results))
		if err != nil {
			return paths, err
		}
		name := fmt.Sprintf("report_%s.xlsx", summary.EndTime.Format("20060102_150405"))
		reportPath, err := p.files.WriteOutput(name, data)
		if err != nil {
			return paths, err
		}
		paths = append(paths, reportPath)
	}

	p.logger.Info("batch.reports.ok",
		zap.String("run_id", summary.RunID),
		zap.Strings("paths", paths),
	)
	return paths, nil
}
