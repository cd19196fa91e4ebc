package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/ohappykust/busgov-extractor/internal/config"
	apperrors "github.com/ohappykust/busgov-extractor/internal/errors"
	"github.com/ohappykust/busgov-extractor/internal/exporter"
	"github.com/ohappykust/busgov-extractor/internal/infrastructure"
	"github.com/ohappykust/busgov-extractor/internal/pipeline"
	"github.com/ohappykust/busgov-extractor/internal/registry"
)

const successMessage = "Excel файл успешно сформирован!"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args, os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the CLI and returns the process exit status
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	app := newApp(stdin, stdout, stderr)
	if err := app.RunContext(ctx, args); err != nil {
		fmt.Fprintln(stderr, userMessage(err))
		fmt.Fprintln(stderr, err)
		return apperrors.ExitCode(err)
	}
	return apperrors.ExitOK
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:            config.AppName,
		Usage:           "export bus.gov.ru organizations matching a search page link into an Excel workbook",
		Version:         config.AppVersion,
		Reader:          stdin,
		Writer:          stdout,
		ErrWriter:       stderr,
		HideHelpCommand: true,
		// exit codes are chosen by run
		ExitErrHandler: func(*cli.Context, error) {},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "url",
				Aliases: []string{"u"},
				Usage:   "bus.gov.ru search page link; prompted for when omitted",
				EnvVars: []string{"BUSGOV_URL"},
			},
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "start the export without asking for confirmation",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a YAML config file",
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "directory the workbook is written to",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "concurrent organization detail requests",
			},
			&cli.StringFlag{
				Name:  "metrics-file",
				Usage: "write a Prometheus textfile snapshot of the run metrics",
			},
			&cli.BoolFlag{
				Name:  "trace",
				Usage: "print pipeline spans",
			},
		},
		Action: exportAction,
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, apperrors.NewConfigError("failed to load configuration", err)
	}

	if c.IsSet("out") {
		cfg.Export.OutputDir = c.String("out")
	}
	if c.IsSet("workers") {
		cfg.Fetch.Workers = c.Int("workers")
	}
	if c.IsSet("metrics-file") {
		cfg.Export.MetricsFile = c.String("metrics-file")
	}
	if c.Bool("trace") {
		cfg.Telemetry.Tracing = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, apperrors.NewConfigError("invalid command line options", err)
	}
	return cfg, nil
}

func exportAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	paths, err := config.NewPaths(cfg)
	if err != nil {
		return apperrors.NewConfigError("failed to resolve paths", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return apperrors.NewStorageError("failed to create directories", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging, c.App.ErrWriter)
	if err != nil {
		return apperrors.NewConfigError("failed to initialize logger", err)
	}
	defer infrastructure.CloseLogFile()

	otelCfg := infrastructure.DefaultOTelConfig()
	otelCfg.EnableTracing = cfg.Telemetry.Tracing
	otelCfg.TraceWriter = c.App.ErrWriter
	if cfg.Telemetry.Tracing && cfg.Telemetry.TraceFile != "" {
		traceFile, err := os.Create(cfg.Telemetry.TraceFile)
		if err != nil {
			return apperrors.NewConfigError("failed to create trace file", err)
		}
		defer traceFile.Close()
		otelCfg.TraceWriter = traceFile
	}

	providers, err := infrastructure.InitializeOTel(otelCfg, logger)
	if err != nil {
		return apperrors.NewConfigError("failed to initialize telemetry", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	metrics, err := infrastructure.CreateExportMetrics(providers.Meter)
	if err != nil {
		return apperrors.NewConfigError("failed to create metrics", err)
	}

	filter, err := newPrompter(c.App.Reader, c.App.Writer).Filter(c.String("url"), c.Bool("yes"))
	if err != nil {
		return err
	}

	client := registry.NewClient(cfg.Registry,
		registry.WithMetrics(metrics),
		registry.WithLogger(logger))
	sink := exporter.NewWorkbook(paths.GetExportPath(time.Now()), exporter.WithLogger(logger))
	orchestrator := pipeline.NewOrchestrator(client,
		pipeline.WithWorkers(cfg.Fetch.Workers),
		pipeline.WithLinkBase(cfg.Registry.InfoCardURL),
		pipeline.WithLogger(logger),
		pipeline.WithMetrics(metrics),
		pipeline.WithTracer(providers.Tracer),
		pipeline.WithProgress(progressPrinter(c.App.Writer)))

	_, runErr := orchestrator.Run(c.Context, filter.Registry(), sink)

	if paths.MetricsFile != "" {
		if err := providers.WriteMetricsFile(paths.MetricsFile); err != nil {
			logger.Warn("Failed to write metrics file",
				slog.String("path", paths.MetricsFile),
				slog.String("error", err.Error()))
		}
	}
	if runErr != nil {
		return runErr
	}

	fmt.Fprintln(c.App.Writer, successMessage)
	fmt.Fprintln(c.App.Writer, sink.Path())
	return nil
}

// progressPrinter prints the "(n/4) title" line when a stage starts
func progressPrinter(w io.Writer) pipeline.ProgressFunc {
	return func(p pipeline.Progress) {
		if p.Current == 0 {
			fmt.Fprintf(w, "(%d/%d) %s\n", p.Stage, pipeline.StageCount, p.Stage)
		}
	}
}

// userMessage is the operator-facing line for a fatal error
func userMessage(err error) string {
	switch apperrors.TypeOf(err) {
	case apperrors.ErrTypeNetwork:
		return "Произошла ошибка при загрузке данных с bus.gov.ru."
	case apperrors.ErrTypeEmptyResult:
		return "Не найдено ни одной организации по заданным фильтрам."
	case apperrors.ErrTypeParsing:
		return "Сервер bus.gov.ru вернул некорректный ответ."
	case apperrors.ErrTypeStorage:
		return "Не удалось сохранить Excel файл."
	case apperrors.ErrTypeConfig:
		return "Некорректные настройки запуска."
	case apperrors.ErrTypeValidation:
		return "Выгрузка не выполнена: не получена корректная ссылка."
	default:
		return "Произошла непредвиденная ошибка."
	}
}
