package exportfs

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	thingsdomain "github.com/sleroq/things3-to-org/internal/domain/things"
)

type Format string

const (
	FormatAll     Format = "all"
	FormatArea    Format = "area"
	FormatProject Format = "project"
)

const (
	fileExt = ".org"
	// Stdout selects standard output as the target of an all-in-one export.
	Stdout = "-"
)

var ErrUnknownFormat = errors.New("unknown output format")

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatAll, FormatArea, FormatProject:
		return f, nil
	default:
		return "", fmt.Errorf("%w %q: expected all, area, or project", ErrUnknownFormat, s)
	}
}

// Router picks the sink each area and project is rendered into.
type Router interface {
	Area(area thingsdomain.Area) (io.Writer, error)
	Project(area thingsdomain.Area, project thingsdomain.Project) (io.Writer, error)
	Files() int
	Close() error
}

func NewRouter(format Format, target string, filenameEscaping string) (Router, error) {
	switch format {
	case FormatAll:
		if target == Stdout {
			return NewWriterRouter(os.Stdout), nil
		}
		return newSingleFileRouter(target)
	case FormatArea:
		return newTreeRouter(target, filenameEscaping, false), nil
	case FormatProject:
		return newTreeRouter(target, filenameEscaping, true), nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownFormat, format)
	}
}

// SingleFilePath is where an all-in-one export of target is written.
func SingleFilePath(target string) string {
	if filepath.Ext(target) == "" {
		return target + fileExt
	}
	return target
}

type writerRouter struct {
	w     *bufio.Writer
	file  *os.File
	files int
}

// NewWriterRouter sends everything to w. Close flushes but does not close w.
func NewWriterRouter(w io.Writer) Router {
	return &writerRouter{w: bufio.NewWriter(w)}
}

func newSingleFileRouter(target string) (Router, error) {
	path := SingleFilePath(target)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	return &writerRouter{w: bufio.NewWriter(f), file: f, files: 1}, nil
}

func (r *writerRouter) Area(thingsdomain.Area) (io.Writer, error) {
	return r.w, nil
}

func (r *writerRouter) Project(thingsdomain.Area, thingsdomain.Project) (io.Writer, error) {
	return r.w, nil
}

func (r *writerRouter) Files() int {
	return r.files
}

func (r *writerRouter) Close() error {
	err := r.w.Flush()
	if r.file != nil {
		if cerr := r.file.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

type outputFile struct {
	f *os.File
	w *bufio.Writer
}

// treeRouter writes <area>.org per area and, per project,
// <area>/<project>.org.
type treeRouter struct {
	dir        string
	mode       string
	perProject bool

	areaNames    *nameTable
	projectNames map[string]*nameTable
	areaBase     map[string]string
	projectPath  map[string]string

	files map[string]*outputFile
	order []string
}

func newTreeRouter(dir string, mode string, perProject bool) *treeRouter {
	return &treeRouter{
		dir:          dir,
		mode:         mode,
		perProject:   perProject,
		areaNames:    newNameTable(mode),
		projectNames: map[string]*nameTable{},
		areaBase:     map[string]string{},
		projectPath:  map[string]string{},
		files:        map[string]*outputFile{},
	}
}

func (r *treeRouter) base(area thingsdomain.Area) string {
	base, ok := r.areaBase[area.ID]
	if !ok {
		base = r.areaNames.unique(area.Title)
		r.areaBase[area.ID] = base
	}
	return base
}

func (r *treeRouter) Area(area thingsdomain.Area) (io.Writer, error) {
	return r.open(r.base(area) + fileExt)
}

func (r *treeRouter) Project(area thingsdomain.Area, project thingsdomain.Project) (io.Writer, error) {
	if !r.perProject {
		return r.Area(area)
	}
	key := area.ID + "/" + project.ID
	rel, ok := r.projectPath[key]
	if !ok {
		areaBase := r.base(area)
		names, ok := r.projectNames[area.ID]
		if !ok {
			names = newNameTable(r.mode)
			r.projectNames[area.ID] = names
		}
		rel = filepath.Join(areaBase, names.unique(project.Title)+fileExt)
		r.projectPath[key] = rel
	}
	return r.open(rel)
}

func (r *treeRouter) open(rel string) (io.Writer, error) {
	if out, ok := r.files[rel]; ok {
		return out.w, nil
	}
	path := filepath.Join(r.dir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	r.files[rel] = &outputFile{f: f, w: bufio.NewWriter(f)}
	r.order = append(r.order, rel)
	return r.files[rel].w, nil
}

func (r *treeRouter) Files() int {
	return len(r.order)
}

func (r *treeRouter) Close() error {
	var first error
	for _, rel := range r.order {
		out := r.files[rel]
		if err := out.w.Flush(); err != nil && first == nil {
			first = fmt.Errorf("write %s: %w", rel, err)
		}
		if err := out.f.Close(); err != nil && first == nil {
			first = fmt.Errorf("close %s: %w", rel, err)
		}
	}
	return first
}
