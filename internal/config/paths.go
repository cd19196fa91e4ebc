package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Paths contains all file system locations a run writes to
type Paths struct {
	OutputDir   string
	LogsDir     string
	MetricsFile string
}

// NewPaths resolves the configured locations against the working directory
func NewPaths(cfg *Config) (*Paths, error) {
	outDir, err := filepath.Abs(cfg.Export.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output dir: %w", err)
	}

	p := &Paths{
		OutputDir: outDir,
	}
	if cfg.Logging.FilePath != "" {
		p.LogsDir = filepath.Dir(cfg.Logging.FilePath)
	}
	if cfg.Export.MetricsFile != "" {
		p.MetricsFile = cfg.Export.MetricsFile
		if !filepath.IsAbs(p.MetricsFile) {
			p.MetricsFile = filepath.Join(outDir, p.MetricsFile)
		}
	}

	return p, nil
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	directories := []string{p.OutputDir}
	if p.LogsDir != "" {
		directories = append(directories, p.LogsDir)
	}
	if p.MetricsFile != "" {
		directories = append(directories, filepath.Dir(p.MetricsFile))
	}

	logger := slog.Default()
	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %v", dir, err)
		}
		logger.Debug("Ensured directory exists", slog.String("directory", dir))
	}

	return nil
}

// ExportFileName returns the workbook name for a run started at now
func ExportFileName(now time.Time) string {
	return ExportFilePrefix + now.Format(ExportFileTimeLayout) + ExportFileExt
}

// GetExportPath returns the absolute workbook path for a run started at now
func (p *Paths) GetExportPath(now time.Time) string {
	return filepath.Join(p.OutputDir, ExportFileName(now))
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
