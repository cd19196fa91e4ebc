package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"

	"github.com/xuri/excelize/v2"

	apperrors "github.com/ohappykust/busgov-extractor/internal/errors"
	"github.com/ohappykust/busgov-extractor/internal/pipeline"
	"github.com/ohappykust/busgov-extractor/internal/validation"
)

const (
	defaultSheet   = "Sheet1"
	tableStyle     = "TableStyleMedium2"
	linkColor      = "0563C1"
	maxSheetLinks  = 65530
	hyperlinkKind  = "External"
	tableNameStart = 1
)

// Workbook writes the export sheets into a single xlsx file
type Workbook struct {
	path      string
	logger    *slog.Logger
	validator *validation.FileValidator
}

// WorkbookOption configures a Workbook
type WorkbookOption func(*Workbook)

// WithLogger sets the workbook logger
func WithLogger(l *slog.Logger) WorkbookOption {
	return func(w *Workbook) {
		if l != nil {
			w.logger = l
		}
	}
}

// NewWorkbook creates a sink that saves to path
func NewWorkbook(path string, opts ...WorkbookOption) *Workbook {
	w := &Workbook{
		path:   path,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.validator = validation.NewFileValidator(w.logger)
	return w
}

// Path returns the destination file
func (w *Workbook) Path() string {
	return w.path
}

// Write renders every sheet, in the given order, as a filterable table and
// saves the workbook. The file is checked after saving.
func (w *Workbook) Write(ctx context.Context, sheets []pipeline.Sheet) error {
	if len(sheets) == 0 {
		return apperrors.NewStorageError("no sheets to export", nil)
	}
	if err := w.validator.ValidateOutputDirectory(filepath.Dir(w.path)); err != nil {
		return apperrors.NewStorageError("output directory is not usable", err).
			WithContext("path", w.path)
	}

	f := excelize.NewFile()
	defer f.Close()

	linkStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: linkColor, Underline: "single"},
	})
	if err != nil {
		return apperrors.NewStorageError("failed to create link style", err)
	}

	names := make([]string, 0, len(sheets))
	for i, sheet := range sheets {
		if err := ctx.Err(); err != nil {
			return err
		}
		if i == 0 {
			err = f.SetSheetName(defaultSheet, sheet.Name)
		} else {
			_, err = f.NewSheet(sheet.Name)
		}
		if err != nil {
			return apperrors.NewStorageError("failed to create sheet", err).
				WithContext("sheet", sheet.Name)
		}
		if err := w.writeSheet(f, sheet, tableNameStart+i, linkStyle); err != nil {
			return apperrors.NewStorageError("failed to write sheet", err).
				WithContext("sheet", sheet.Name)
		}
		names = append(names, sheet.Name)
	}
	f.SetActiveSheet(0)

	if err := f.SaveAs(w.path); err != nil {
		return apperrors.NewStorageError("failed to save workbook", err).
			WithContext("path", w.path)
	}
	if err := w.validator.ValidateWorkbook(w.path, names); err != nil {
		return apperrors.NewStorageError("saved workbook is unreadable", err).
			WithContext("path", w.path)
	}

	w.logger.InfoContext(ctx, "Workbook saved",
		slog.String("path", w.path),
		slog.Int("sheets", len(names)))
	return nil
}

func (w *Workbook) writeSheet(f *excelize.File, sheet pipeline.Sheet, tableNo, linkStyle int) error {
	header := make([]any, len(sheet.Headers))
	for i, h := range sheet.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet.Name, "A1", &header); err != nil {
		return err
	}

	for i, row := range sheet.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet.Name, cell, &row); err != nil {
			return err
		}
		if sheet.LinkBase == "" || len(row) == 0 {
			continue
		}
		if i >= maxSheetLinks {
			if i == maxSheetLinks {
				w.logger.Warn("Hyperlink limit reached, remaining ids left as plain values",
					slog.String("sheet", sheet.Name))
			}
			continue
		}
		id := formatCell(row[0])
		if id == "" {
			continue
		}
		if err := f.SetCellHyperLink(sheet.Name, cell, sheet.LinkBase+id, hyperlinkKind); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet.Name, cell, cell, linkStyle); err != nil {
			return err
		}
	}

	if len(sheet.Headers) == 0 {
		return nil
	}
	lastCol, err := excelize.ColumnNumberToName(len(sheet.Headers))
	if err != nil {
		return err
	}
	// a table needs at least one body row
	lastRow := max(len(sheet.Rows)+1, 2)
	if err := f.AddTable(sheet.Name, &excelize.Table{
		Range:     fmt.Sprintf("A1:%s%d", lastCol, lastRow),
		Name:      "Table" + strconv.Itoa(tableNo),
		StyleName: tableStyle,
	}); err != nil {
		return err
	}

	for i, width := range columnWidths(sheet.Headers, sheet.Rows) {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet.Name, col, col, width); err != nil {
			return err
		}
	}
	return nil
}
