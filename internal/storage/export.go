package storage

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/qqrm/tx-bot/internal/domain"
)

// ReportWriter saves end-of-run reports as JSON for later inspection.
type ReportWriter struct {
	dir string
}

// NewReportWriter creates a writer storing reports under dir.
func NewReportWriter(dir string) *ReportWriter {
	return &ReportWriter{dir: dir}
}

// Save writes the report to disk and returns the file path.
func (w *ReportWriter) Save(rep *domain.FinalReport) (string, error) {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report dir: %w", err)
	}

	filename := fmt.Sprintf("report_%d_%s.json", time.Now().Unix(), rep.RunID)
	path := filepath.Join(w.dir, filename)

	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	slog.Info("Report saved",
		slog.String("run_id", rep.RunID),
		slog.String("path", path))

	return path, nil
}

// Cleanup removes old reports, keeping only the latest N.
func (w *ReportWriter) Cleanup(keepCount int) error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	type reportFile struct {
		path string
		ts   int64
	}
	var files []reportFile

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		var ts int64
		if _, err := fmt.Sscanf(entry.Name(), "report_%d_", &ts); err == nil {
			files = append(files, reportFile{
				path: filepath.Join(w.dir, entry.Name()),
				ts:   ts,
			})
		}
	}

	if len(files) <= keepCount {
		return nil
	}

	// Simple bubble sort (small N), newest first
	for i := 0; i < len(files); i++ {
		for j := i + 1; j < len(files); j++ {
			if files[j].ts > files[i].ts {
				files[i], files[j] = files[j], files[i]
			}
		}
	}

	for i := keepCount; i < len(files); i++ {
		if err := os.Remove(files[i].path); err != nil {
			slog.Warn("Failed to remove old report", slog.String("path", files[i].path))
		} else {
			slog.Info("Removed old report", slog.String("path", files[i].path))
		}
	}

	return nil
}
