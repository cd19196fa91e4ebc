package validation

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	tests := []struct {
		name          string
		setupFunc     func(t *testing.T) string
		wantErr       bool
		errorContains string
	}{
		{
			name: "existing directory",
			setupFunc: func(t *testing.T) string {
				return t.TempDir()
			},
		},
		{
			name: "non-existent directory (should be created)",
			setupFunc: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "new", "nested", "dir")
			},
		},
		{
			name: "path is a file",
			setupFunc: func(t *testing.T) string {
				file := filepath.Join(t.TempDir(), "taken")
				require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
				return file
			},
			wantErr:       true,
			errorContains: "failed to create output directory",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			validator := NewFileValidator(slog.Default())
			dir := tt.setupFunc(t)

			err := validator.ValidateOutputDirectory(dir)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
				return
			}
			require.NoError(t, err)
			info, err := os.Stat(dir)
			require.NoError(t, err)
			assert.True(t, info.IsDir())
			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			assert.Empty(t, entries, "probe file left behind")
		})
	}
}

func TestFileValidator_ValidateFile(t *testing.T) {
	validator := NewFileValidator(nil)
	dir := t.TempDir()

	assert.ErrorContains(t, validator.ValidateFile(filepath.Join(dir, "missing.xlsx")), "does not exist")
	assert.ErrorContains(t, validator.ValidateFile(dir), "is a directory")

	file := filepath.Join(dir, "present.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
	assert.NoError(t, validator.ValidateFile(file))
}

func writeWorkbook(t *testing.T, path string, sheets ...string) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName("Sheet1", sheets[0]))
	for _, name := range sheets[1:] {
		_, err := f.NewSheet(name)
		require.NoError(t, err)
	}
	require.NoError(t, f.SaveAs(path))
}

func TestFileValidator_ValidateWorkbook(t *testing.T) {
	validator := NewFileValidator(nil)
	dir := t.TempDir()

	good := filepath.Join(dir, "Данные.xlsx")
	writeWorkbook(t, good, "Общая информация", "Организации без данных")

	t.Run("all sheets present", func(t *testing.T) {
		assert.NoError(t, validator.ValidateWorkbook(good, []string{"Общая информация", "Организации без данных"}))
	})

	t.Run("missing sheet", func(t *testing.T) {
		err := validator.ValidateWorkbook(good, []string{"Операции с субсидиями"})
		assert.ErrorContains(t, err, "has no sheet")
	})

	t.Run("wrong extension", func(t *testing.T) {
		csv := filepath.Join(dir, "data.csv")
		require.NoError(t, os.WriteFile(csv, []byte("a,b"), 0644))
		assert.ErrorContains(t, validator.ValidateWorkbook(csv, nil), "not an xlsx workbook")
	})

	t.Run("not a zip", func(t *testing.T) {
		broken := filepath.Join(dir, "broken.xlsx")
		require.NoError(t, os.WriteFile(broken, []byte("not a workbook"), 0644))
		assert.ErrorContains(t, validator.ValidateWorkbook(broken, nil), "failed to open workbook")
	})

	t.Run("missing file", func(t *testing.T) {
		assert.Error(t, validator.ValidateWorkbook(filepath.Join(dir, "nope.xlsx"), nil))
	})
}
