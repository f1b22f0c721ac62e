package exporter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	thingsdomain "github.com/sleroq/things3-to-org/internal/domain/things"
	"github.com/sleroq/things3-to-org/internal/infra/exportfs"
	"github.com/sleroq/things3-to-org/internal/infra/thingsdb"
)

var (
	ErrDatabaseNotFound = errors.New("things database not found")
	ErrStdoutFormat     = errors.New(`output "-" needs the all format`)
)

type Exporter struct {
	DatabasePath     string
	OutputPath       string
	Format           string
	FilenameEscaping string
	Logger           *slog.Logger
	// Progress draws a progress bar on stderr when it is a terminal.
	Progress bool
	// Stdout receives the outline when OutputPath is "-". Defaults to os.Stdout.
	Stdout io.Writer
}

type Stats struct {
	Areas          int
	Projects       int
	Tasks          int
	ActionGroups   int
	ChecklistItems int
	Files          int
}

type source interface {
	Source
	io.Closer
}

var openSource = func(path string) (source, error) {
	return thingsdb.Open(path)
}

func (e Exporter) Run(ctx context.Context) (Stats, error) {
	logger := e.Logger
	if logger == nil {
		logger = slog.Default()
	}

	format, err := exportfs.ParseFormat(e.Format)
	if err != nil {
		return Stats{}, err
	}
	filenameEscaping, err := exportfs.ResolveFilenameEscaping(e.FilenameEscaping)
	if err != nil {
		return Stats{}, err
	}
	if e.OutputPath == "" {
		return Stats{}, fmt.Errorf("output path is required")
	}
	if e.OutputPath == exportfs.Stdout && format != exportfs.FormatAll {
		return Stats{}, fmt.Errorf("%w, got %q", ErrStdoutFormat, format)
	}
	if err := checkDatabase(e.DatabasePath); err != nil {
		return Stats{}, err
	}

	logger.Info("starting export",
		"database", e.DatabasePath,
		"format", string(format),
		"target", e.OutputPath,
	)

	src, err := openSource(e.DatabasePath)
	if err != nil {
		return Stats{}, err
	}
	defer src.Close()

	router, err := e.newRouter(format, filenameEscaping)
	if err != nil {
		return Stats{}, err
	}

	w := &walker{src: src, router: router, logger: logger}
	walkErr := w.walk(ctx, e.Progress)
	closeErr := router.Close()
	if walkErr != nil {
		return w.stats, walkErr
	}
	if closeErr != nil {
		return w.stats, fmt.Errorf("write export: %w", closeErr)
	}

	w.stats.Files = router.Files()
	logger.Info("export finished",
		"areas", w.stats.Areas,
		"projects", w.stats.Projects,
		"tasks", w.stats.Tasks,
		"files", w.stats.Files,
	)
	return w.stats, nil
}

func (e Exporter) newRouter(format exportfs.Format, filenameEscaping string) (exportfs.Router, error) {
	if e.OutputPath == exportfs.Stdout && e.Stdout != nil {
		return exportfs.NewWriterRouter(e.Stdout), nil
	}
	return exportfs.NewRouter(format, e.OutputPath, filenameEscaping)
}

// WriteOutline renders the whole database as one outline into out.
func WriteOutline(ctx context.Context, src Source, out io.Writer, logger *slog.Logger) (Stats, error) {
	if logger == nil {
		logger = slog.Default()
	}
	router := exportfs.NewWriterRouter(out)
	w := &walker{src: src, router: router, logger: logger}
	walkErr := w.walk(ctx, false)
	if err := router.Close(); walkErr == nil && err != nil {
		walkErr = fmt.Errorf("write outline: %w", err)
	}
	return w.stats, walkErr
}

func (w *walker) walk(ctx context.Context, showProgress bool) error {
	areas, err := w.src.Areas(ctx)
	if err != nil {
		return err
	}
	areas = append([]thingsdomain.Area{thingsdomain.NoArea()}, areas...)

	var bar *areaProgress
	if showProgress {
		if out := progressOutput(); out != nil {
			bar = newAreaProgress(out, len(areas))
		}
	}
	defer bar.Stop()

	for _, area := range areas {
		if err := ctx.Err(); err != nil {
			return err
		}
		bar.Area(area.Title)
		if err := w.exportArea(ctx, area); err != nil {
			return err
		}
	}
	bar.Done()
	return nil
}

func checkDatabase(path string) error {
	if path == "" {
		return fmt.Errorf("%w: no path given", ErrDatabaseNotFound)
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrDatabaseNotFound, path)
		}
		return fmt.Errorf("stat database %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrDatabaseNotFound, path)
	}
	return nil
}
