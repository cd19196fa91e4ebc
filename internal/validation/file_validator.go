package validation

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/xuri/excelize/v2"
)

// FileValidator checks the export destination before and after a workbook is written
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateOutputDirectory creates dir when missing and proves it accepts new
// files by writing and removing a probe file.
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Cannot create export directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	probe, err := os.CreateTemp(dir, ".probe-*")
	if err != nil {
		v.logger.Error("Export directory is read-only",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	name := probe.Name()
	probe.Close()
	if err := os.Remove(name); err != nil {
		return fmt.Errorf("failed to remove probe file %s: %w", name, err)
	}
	return nil
}

// ValidateFile requires path to name an existing regular file
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("file %s does not exist", path)
	case err != nil:
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	case info.IsDir():
		return fmt.Errorf("%s is a directory, not a file", path)
	}

	v.logger.Debug("Export file present",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateWorkbook checks that path is a readable xlsx file containing every
// sheet in sheets.
func (v *FileValidator) ValidateWorkbook(path string, sheets []string) error {
	if err := v.ValidateFile(path); err != nil {
		return err
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".xlsx" {
		return fmt.Errorf("file %s is not an xlsx workbook (extension: %s)", path, ext)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	present := f.GetSheetList()
	for _, name := range sheets {
		if !slices.Contains(present, name) {
			v.logger.Error("Workbook is missing a sheet",
				slog.String("file", path),
				slog.String("sheet", name))
			return fmt.Errorf("workbook %s has no sheet %q", path, name)
		}
	}
	return nil
}
