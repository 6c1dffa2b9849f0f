// =============================================================================
// Invoice Form Gate - File Management Utilities
// =============================================================================
//
// This module handles the file lifecycle of a batch run:
//   - Discovering saved forms in the input directory
//   - Writing payloads under generated names
//   - Archiving processed forms and payload copies
//   - Writing the plain-text run summary
//
// DIRECTORY STRUCTURE:
//   /input           <- Saved forms (.json, .yaml, .yml, .xlsx)
//   /output          <- Payloads, summaries and XLSX reports
//   /input_archive   <- Forms moved here once accepted
//   /output_archive  <- Copies of written payloads
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for one batch run.
type FileManager struct {
	// InputDir is the directory scanned for forms.
	InputDir string

	// OutputDir receives payloads and run reports.
	OutputDir string

	// InputArchiveDir receives accepted forms.
	InputArchiveDir string

	// OutputArchiveDir receives payload copies.
	OutputArchiveDir string

	// UseTimestampSubdirs archives into YYYY/MM/DD subdirectories.
	// Default: false
	UseTimestampSubdirs bool

	// ArchiveOnSuccess enables archiving. When false the Archive methods
	// leave files where they are.
	// Default: true
	ArchiveOnSuccess bool
}

// NewFileManager creates a new FileManager with the specified directories.
func NewFileManager(inputDir, outputDir, inputArchiveDir, outputArchiveDir string) *FileManager {
	return &FileManager{
		InputDir:            inputDir,
		OutputDir:           outputDir,
		InputArchiveDir:     inputArchiveDir,
		OutputArchiveDir:    outputArchiveDir,
		UseTimestampSubdirs: false,
		ArchiveOnSuccess:    true,
	}
}

// EnsureDirectories creates all required directories if they don't exist.
func (fm *FileManager) EnsureDirectories() error {
	dirs := []string{
		fm.InputDir,
		fm.OutputDir,
		fm.InputArchiveDir,
		fm.OutputArchiveDir,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// DiscoverInputFiles returns the regular files in the input directory whose
// extension is one of extensions (case-insensitive), sorted by name.
// Subdirectories are not scanned.
func (fm *FileManager) DiscoverInputFiles(extensions ...string) ([]string, error) {
	entries, err := os.ReadDir(fm.InputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan input directory: %w", err)
	}

	wanted := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		wanted[strings.ToLower(ext)] = true
	}

	var result []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), "~$") {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if len(wanted) > 0 && !wanted[ext] {
			continue
		}
		result = append(result, filepath.Join(fm.InputDir, entry.Name()))
	}
	sort.Strings(result)
	return result, nil
}

// WriteOutput writes data to name inside the output directory and returns
// the full path.
func (fm *FileManager) WriteOutput(name string, data []byte) (string, error) {
	path := filepath.Join(fm.OutputDir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write output file: %w", err)
	}
	return path, nil
}

// =============================================================================
// ARCHIVING
// =============================================================================

// ArchiveInputFile moves a processed form to the input archive and returns
// its new path.
func (fm *FileManager) ArchiveInputFile(filePath string) (string, error) {
	if !fm.ArchiveOnSuccess {
		return filePath, nil
	}

	archivePath := fm.getArchivePath(fm.InputArchiveDir, filePath)
	if err := os.MkdirAll(filepath.Dir(archivePath), 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	// Rename fails across filesystems; fall back to copy and remove.
	if err := os.Rename(filePath, archivePath); err != nil {
		if err := copyFile(filePath, archivePath); err != nil {
			return "", fmt.Errorf("failed to copy file to archive: %w", err)
		}
		if err := os.Remove(filePath); err != nil {
			return "", fmt.Errorf("failed to remove original file: %w", err)
		}
	}

	return archivePath, nil
}

// ArchiveOutputFile copies a payload to the output archive. The original
// stays in the output directory.
func (fm *FileManager) ArchiveOutputFile(filePath string) (string, error) {
	if !fm.ArchiveOnSuccess {
		return filePath, nil
	}

	archivePath := fm.getArchivePath(fm.OutputArchiveDir, filePath)
	if err := os.MkdirAll(filepath.Dir(archivePath), 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	if err := copyFile(filePath, archivePath); err != nil {
		return "", fmt.Errorf("failed to copy file to archive: %w", err)
	}

	return archivePath, nil
}

func (fm *FileManager) getArchivePath(archiveDir, filePath string) string {
	fileName := filepath.Base(filePath)

	if fm.UseTimestampSubdirs {
		now := time.Now()
		return filepath.Join(
			archiveDir,
			fmt.Sprintf("%d", now.Year()),
			fmt.Sprintf("%02d", now.Month()),
			fmt.Sprintf("%02d", now.Day()),
			fileName,
		)
	}

	return filepath.Join(archiveDir, fileName)
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// GenerateOutputFileName builds a payload file name from a format string.
//
// Supported placeholders:
//   - {uuid}:      a random UUID
//   - {timestamp}: 20060102_150405
//   - {date}:      20060102
//   - {time}:      150405
//   - {key}:       any entry of params, e.g. {original}
//
// ext (".json", ".yaml", ".xml") is appended unless the name already ends
// with it.
func GenerateOutputFileName(format, ext string, params map[string]string) string {
	now := time.Now()

	replacements := map[string]string{
		"{uuid}":      uuid.New().String(),
		"{timestamp}": now.Format("20060102_150405"),
		"{date}":      now.Format("20060102"),
		"{time}":      now.Format("150405"),
	}
	for key, value := range params {
		replacements["{"+key+"}"] = value
	}

	result := format
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}

	if ext != "" && !strings.HasSuffix(strings.ToLower(result), strings.ToLower(ext)) {
		result += ext
	}

	return result
}

// BaseName returns the file name without directory and extension.
func BaseName(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// =============================================================================
// SUMMARY LOGGING
// =============================================================================

// ProcessingSummary contains the statistics of one batch run.
type ProcessingSummary struct {
	RunID     string
	StartTime time.Time
	EndTime   time.Time

	TotalFiles    int
	AcceptedFiles int
	RejectedFiles int
	FailedFiles   int
	TotalRows     int

	Accepted []AcceptedFileInfo
	Rejected []RejectedFileInfo
	Failed   []FailedFileInfo
}

// AcceptedFileInfo describes a form that passed validation.
type AcceptedFileInfo struct {
	InputFile   string
	OutputFile  string
	ArchivePath string
	Rows        int
	ProcessTime time.Duration
}

// RejectedFileInfo describes a form that failed validation.
type RejectedFileInfo struct {
	InputFile string
	Key       string
	Title     string
	Message   string
}

// FailedFileInfo describes a form that could not be processed at all.
type FailedFileInfo struct {
	InputFile    string
	ErrorMessage string
}

// WriteSummaryLog writes processing_summary_<timestamp>.txt to outputDir.
func WriteSummaryLog(summary ProcessingSummary, outputDir string) (string, error) {
	timestamp := summary.EndTime.Format("20060102_150405")
	summaryPath := filepath.Join(outputDir, fmt.Sprintf("processing_summary_%s.txt", timestamp))

	file, err := os.Create(summaryPath)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	rule := strings.Repeat("=", 80) + "\n"
	section := strings.Repeat("-", 80) + "\n"

	fmt.Fprintf(writer, "Invoice Form Gate - Processing Summary\n%s\n", rule)
	fmt.Fprintf(writer, "Run Information:\n"+
		"  Run ID:         %s\n"+
		"  Start Time:     %s\n"+
		"  End Time:       %s\n"+
		"  Duration:       %s\n\n",
		summary.RunID,
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Sub(summary.StartTime).String())
	fmt.Fprintf(writer, "Statistics:\n"+
		"  Total Files:    %d\n"+
		"  Accepted:       %d\n"+
		"  Rejected:       %d\n"+
		"  Failed:         %d\n"+
		"  Total Rows:     %d\n\n",
		summary.TotalFiles,
		summary.AcceptedFiles,
		summary.RejectedFiles,
		summary.FailedFiles,
		summary.TotalRows)

	if len(summary.Accepted) > 0 {
		fmt.Fprintf(writer, "Accepted Forms:\n%s", section)
		for _, a := range summary.Accepted {
			fmt.Fprintf(writer, "  Input:        %s\n", a.InputFile)
			fmt.Fprintf(writer, "  Output:       %s\n", a.OutputFile)
			fmt.Fprintf(writer, "  Rows:         %d\n", a.Rows)
			fmt.Fprintf(writer, "  Process Time: %s\n\n", a.ProcessTime.String())
		}
	}

	if len(summary.Rejected) > 0 {
		fmt.Fprintf(writer, "Rejected Forms:\n%s", section)
		for _, r := range summary.Rejected {
			fmt.Fprintf(writer, "  File:    %s\n", r.InputFile)
			fmt.Fprintf(writer, "  Key:     %s\n", r.Key)
			fmt.Fprintf(writer, "  Title:   %s\n", r.Title)
			fmt.Fprintf(writer, "  Message: %s\n\n", r.Message)
		}
	}

	if len(summary.Failed) > 0 {
		fmt.Fprintf(writer, "Failed Files:\n%s", section)
		for _, f := range summary.Failed {
			fmt.Fprintf(writer, "  File:  %s\n", f.InputFile)
			fmt.Fprintf(writer, "  Error: %s\n\n", f.ErrorMessage)
		}
	}

	fmt.Fprintf(writer, "%sEnd of Summary\n", rule)

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush summary file: %w", err)
	}

	return summaryPath, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return err
	}

	return destFile.Sync()
}
