package main

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "github.com/ohappykust/busgov-extractor/internal/errors"
	"github.com/ohappykust/busgov-extractor/internal/filters"
	"github.com/ohappykust/busgov-extractor/internal/pipeline"
	"github.com/ohappykust/busgov-extractor/internal/shared/testutil"
)

const validLink = "https://bus.gov.ru/search?regions=77&vguName=school"

func TestConfirmed(t *testing.T) {
	tests := []struct {
		answer string
		want   bool
	}{
		{"", true},
		{"д", true},
		{"Д", true},
		{"y", true},
		{"Y", true},
		{"н", false},
		{"no", false},
		{"да", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, confirmed(tt.answer), "answer %q", tt.answer)
	}
}

func TestPrompter_Filter(t *testing.T) {
	t.Run("reprompts after an invalid link and a declined confirmation", func(t *testing.T) {
		input := strings.Join([]string{
			"https://bus.gov.ru/search?regions=empty&vguName=school",
			validLink,
			"н",
			"https://bus.gov.ru/search?regions=50&vguName=hospital",
			"",
		}, "\n") + "\n"
		var out bytes.Buffer

		f, err := newPrompter(strings.NewReader(input), &out).Filter("", false)

		require.NoError(t, err)
		assert.Equal(t, []string{"50"}, f.Regions)
		assert.Equal(t, []string{"hospital"}, f.VGUName)
		assert.Equal(t, 1, strings.Count(out.String(), filters.InvalidURLMessage))
		assert.Equal(t, 3, strings.Count(out.String(), urlPrompt))
		assert.Equal(t, 2, strings.Count(out.String(), confirmPrompt))
		assert.Contains(t, out.String(), "Регионы: 77")
	})

	t.Run("link from the command line with assumed yes", func(t *testing.T) {
		var out bytes.Buffer

		f, err := newPrompter(strings.NewReader(""), &out).Filter(validLink, true)

		require.NoError(t, err)
		assert.Equal(t, []string{"77"}, f.Regions)
		assert.NotContains(t, out.String(), urlPrompt)
		assert.NotContains(t, out.String(), confirmPrompt)
	})

	t.Run("invalid command line link falls back to the prompt", func(t *testing.T) {
		var out bytes.Buffer

		f, err := newPrompter(strings.NewReader(validLink+"\n"), &out).Filter("https://bus.gov.ru/search", true)

		require.NoError(t, err)
		assert.Equal(t, []string{"77"}, f.Regions)
		assert.Equal(t, 1, strings.Count(out.String(), filters.InvalidURLMessage))
		assert.Equal(t, 1, strings.Count(out.String(), urlPrompt))
	})

	t.Run("invalid command line link with closed input", func(t *testing.T) {
		var out bytes.Buffer

		_, err := newPrompter(strings.NewReader(""), &out).Filter("https://bus.gov.ru/search", true)

		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
		assert.Contains(t, out.String(), filters.InvalidURLMessage)
	})

	t.Run("declined command line link falls back to the prompt", func(t *testing.T) {
		var out bytes.Buffer
		input := "n\nhttps://bus.gov.ru/search?regions=50&vguName=school\nд\n"

		f, err := newPrompter(strings.NewReader(input), &out).Filter(validLink, false)

		require.NoError(t, err)
		assert.Equal(t, []string{"50"}, f.Regions)
	})

	t.Run("input closed before a link", func(t *testing.T) {
		_, err := newPrompter(strings.NewReader(""), &bytes.Buffer{}).Filter("", false)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
	})

	t.Run("input closed before confirmation", func(t *testing.T) {
		_, err := newPrompter(strings.NewReader(validLink+"\n"), &bytes.Buffer{}).Filter("", false)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
	})
}

func TestProgressPrinter(t *testing.T) {
	var out bytes.Buffer
	printer := progressPrinter(&out)

	printer(pipeline.Progress{Stage: pipeline.StageIndex})
	printer(pipeline.Progress{Stage: pipeline.StageDetails})
	printer(pipeline.Progress{Stage: pipeline.StageDetails, Current: 1, Total: 2})

	assert.Equal(t, "(1/4) Загрузка всех организаций\n(2/4) Загрузка информации об организациях\n", out.String())
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "Не найдено ни одной организации по заданным фильтрам.",
		userMessage(apperrors.NewEmptyResultError("no organizations")))
	assert.Equal(t, "Произошла непредвиденная ошибка.", userMessage(os.ErrClosed))
}

// setupRun points the CLI at a fake registry and a temporary output directory
func setupRun(t *testing.T) (*testutil.FakeRegistry, string) {
	t.Helper()
	fake := testutil.NewFakeRegistry(t)
	dir := t.TempDir()

	t.Setenv("BUSGOV_REGISTRY_BASE_URL", fake.BaseURL())
	t.Setenv("BUSGOV_REGISTRY_RATING_BASE_URL", fake.RatingBaseURL())
	t.Setenv("BUSGOV_LOGGING_OUTPUT", "file")
	t.Setenv("BUSGOV_LOGGING_FILE_PATH", filepath.Join(dir, "logs", "run.log"))
	t.Setenv("BUSGOV_EXPORT_METRICS_FILE", "")
	t.Setenv("BUSGOV_URL", "")
	return fake, dir
}

func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), append([]string{"busgov-extractor"}, args...),
		strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func exportedWorkbook(t *testing.T, dir string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, "*.xlsx"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	return matches[0]
}

func TestRun_Export(t *testing.T) {
	fake, dir := setupRun(t)
	fake.SetIndex(http.StatusOK, `{"orgs":[
		{"agencyId":1,"fullName":"Школа","fullAddress":"ул. Ленина","phone":"123","webSite":"school.ru"},
		{"agencyId":2,"fullName":"Больница","fullAddress":"ул. Мира","phone":"456","webSite":null}
	]}`)
	fake.SetDetail(1, `{"agenciesData":{"commontab.name":["Школа"],"commontab.short_name":["Ш"]}}`)

	metricsFile := filepath.Join(dir, "metrics.prom")
	code, stdout, stderr := runCLI(t, "",
		"--url", validLink, "--yes", "--out", dir, "--workers", "2", "--metrics-file", metricsFile)

	require.Equal(t, apperrors.ExitOK, code, stderr)
	assert.Contains(t, stdout, "(1/4) Загрузка всех организаций")
	assert.Contains(t, stdout, "(4/4) Формирование Excel файла")
	assert.Contains(t, stdout, successMessage)
	assert.FileExists(t, metricsFile)

	index, detail, quality := fake.Calls()
	assert.Equal(t, 1, index)
	assert.Equal(t, 2, detail)
	assert.Equal(t, 1, quality)

	path := exportedWorkbook(t, dir)
	assert.True(t, strings.HasPrefix(filepath.Base(path), "Данные bus.gov.ru от "))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, pipeline.SheetOrder, f.GetSheetList())

	general, err := f.GetRows(pipeline.SheetGeneral)
	require.NoError(t, err)
	require.Len(t, general, 2)
	assert.Equal(t, "1", general[1][0])

	unavailable, err := f.GetRows(pipeline.SheetUnavailable)
	require.NoError(t, err)
	require.Len(t, unavailable, 2)
	require.GreaterOrEqual(t, len(unavailable[1]), 4)
	assert.Equal(t, []string{"2", "Больница", "ул. Мира", "456"}, unavailable[1][:4])
}

func TestRun_Interactive(t *testing.T) {
	fake, dir := setupRun(t)
	fake.SetIndex(http.StatusOK, `{"orgs":[{"agencyId":7,"fullName":"Музей"}]}`)
	fake.SetDetail(7, `{"agenciesData":{"commontab.name":["Музей"]}}`)

	code, stdout, stderr := runCLI(t, "bad link\n"+validLink+"\nд\n", "--out", dir)

	require.Equal(t, apperrors.ExitOK, code, stderr)
	assert.Contains(t, stdout, filters.InvalidURLMessage)
	assert.Contains(t, stdout, successMessage)
	exportedWorkbook(t, dir)
}

func TestRun_InvalidFlagLinkReprompts(t *testing.T) {
	fake, dir := setupRun(t)
	fake.SetIndex(http.StatusOK, `{"orgs":[{"agencyId":7,"fullName":"Музей"}]}`)
	fake.SetDetail(7, `{"agenciesData":{"commontab.name":["Музей"]}}`)

	code, stdout, stderr := runCLI(t, validLink+"\n",
		"--url", "https://bus.gov.ru/search?regions=empty&vguName=school", "--yes", "--out", dir)

	require.Equal(t, apperrors.ExitOK, code, stderr)
	assert.Contains(t, stdout, filters.InvalidURLMessage)
	assert.Contains(t, stdout, urlPrompt)
	assert.Contains(t, stdout, successMessage)
	exportedWorkbook(t, dir)
}

func TestRun_ExitCodes(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(fake *testutil.FakeRegistry)
		args     []string
		wantCode int
		wantMsg  string
	}{
		{
			name:     "empty index",
			setup:    func(fake *testutil.FakeRegistry) {},
			wantCode: apperrors.ExitEmptyResult,
			wantMsg:  "Не найдено ни одной организации",
		},
		{
			name: "index unavailable",
			setup: func(fake *testutil.FakeRegistry) {
				fake.SetIndex(http.StatusBadGateway, "")
			},
			wantCode: apperrors.ExitNetwork,
			wantMsg:  "Произошла ошибка при загрузке данных",
		},
		{
			name: "quality unavailable",
			setup: func(fake *testutil.FakeRegistry) {
				fake.SetIndex(http.StatusOK, `{"orgs":[{"agencyId":1,"fullName":"Школа"}]}`)
				fake.SetQuality(http.StatusServiceUnavailable, "")
			},
			wantCode: apperrors.ExitNetwork,
		},
		{
			name: "malformed index",
			setup: func(fake *testutil.FakeRegistry) {
				fake.SetIndex(http.StatusOK, `{"orgs":[`)
			},
			wantCode: apperrors.ExitParsing,
		},
		{
			name:     "worker count out of range",
			setup:    func(fake *testutil.FakeRegistry) {},
			args:     []string{"--workers", "0"},
			wantCode: apperrors.ExitConfig,
		},
		{
			name:     "invalid link and no input",
			setup:    func(fake *testutil.FakeRegistry) {},
			args:     []string{"--url", "https://bus.gov.ru/search?vguName=school"},
			wantCode: apperrors.ExitValidation,
			wantMsg:  "не получена корректная ссылка",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake, dir := setupRun(t)
			tt.setup(fake)

			args := append([]string{"--url", validLink, "--yes", "--out", dir}, tt.args...)
			code, stdout, stderr := runCLI(t, "", args...)

			assert.Equal(t, tt.wantCode, code)
			assert.NotContains(t, stdout, successMessage)
			if tt.wantMsg != "" {
				assert.Contains(t, stderr, tt.wantMsg)
			}
			matches, _ := filepath.Glob(filepath.Join(dir, "*.xlsx"))
			assert.Empty(t, matches)
		})
	}
}
