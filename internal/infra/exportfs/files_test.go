package exportfs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	thingsdomain "github.com/sleroq/things3-to-org/internal/domain/things"
)

// paths lists the written files relative to the output directory, in creation order.
func (r *treeRouter) paths() []string {
	out := make([]string, len(r.order))
	for i, rel := range r.order {
		out[i] = filepath.ToSlash(rel)
	}
	return out
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"all": FormatAll, " Area ": FormatArea, "PROJECT": FormatProject} {
		got, err := ParseFormat(in)
		if err != nil {
			t.Fatalf("parse %q: %v", in, err)
		}
		if got != want {
			t.Fatalf("parse %q = %q, want %q", in, got, want)
		}
	}
	if _, err := ParseFormat("taskpaper"); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestSanitizeNameReplacesPathSeparators(t *testing.T) {
	cases := []struct {
		in   string
		mode string
		want string
	}{
		{"Home/Garden", "posix", "Home-Garden"},
		{"  ", "posix", "untitled"},
		{"..", "posix", "untitled"},
		{"a:b* c?", "windows", "a-b- c-"},
		{"CON", "windows", "CON-file"},
		{"CON", "posix", "CON"},
	}
	for _, tc := range cases {
		if got := SanitizeName(tc.in, tc.mode); got != tc.want {
			t.Fatalf("SanitizeName(%q, %s) = %q, want %q", tc.in, tc.mode, got, tc.want)
		}
	}
}

func TestResolveFilenameEscapingRejectsUnknownMode(t *testing.T) {
	if _, err := ResolveFilenameEscaping("dos"); !errors.Is(err, ErrInvalidFilenameEscaping) {
		t.Fatalf("expected ErrInvalidFilenameEscaping, got %v", err)
	}
	if mode, err := ResolveFilenameEscaping("Windows"); err != nil || mode != "windows" {
		t.Fatalf("unexpected resolution: %q %v", mode, err)
	}
}

func TestSingleFileRouterAppendsExtension(t *testing.T) {
	target := filepath.Join(t.TempDir(), "out", "Things 3 export")
	r, err := NewRouter(FormatAll, target, "posix")
	if err != nil {
		t.Fatalf("new router: %v", err)
	}
	area := thingsdomain.Area{ID: "a1", Title: "Work"}
	w, err := r.Area(area)
	if err != nil {
		t.Fatalf("area writer: %v", err)
	}
	fmt.Fprint(w, "area\n")
	w, err = r.Project(area, thingsdomain.Project{Item: thingsdomain.Item{ID: "p1", Title: "Launch"}})
	if err != nil {
		t.Fatalf("project writer: %v", err)
	}
	fmt.Fprint(w, "project\n")
	if err := r.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if r.Files() != 1 {
		t.Fatalf("expected 1 file, got %d", r.Files())
	}

	b, err := os.ReadFile(target + ".org")
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(b) != "area\nproject\n" {
		t.Fatalf("unexpected output: %q", b)
	}
}

func TestTreeRouterPerAreaNumbersCollisions(t *testing.T) {
	dir := t.TempDir()
	r := newTreeRouter(dir, "posix", false)

	first := thingsdomain.Area{ID: "a1", Title: "Work"}
	second := thingsdomain.Area{ID: "a2", Title: "Work"}
	for _, area := range []thingsdomain.Area{first, second, first} {
		w, err := r.Area(area)
		if err != nil {
			t.Fatalf("area writer: %v", err)
		}
		fmt.Fprintf(w, "%s\n", area.ID)
	}
	w, err := r.Project(first, thingsdomain.Project{Item: thingsdomain.Item{ID: "p1", Title: "Launch"}})
	if err != nil {
		t.Fatalf("project writer: %v", err)
	}
	fmt.Fprint(w, "p1\n")
	if err := r.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	paths := r.paths()
	if len(paths) != 2 || paths[0] != "Work.org" || paths[1] != "Work-2.org" {
		t.Fatalf("unexpected paths: %v", paths)
	}
	b, err := os.ReadFile(filepath.Join(dir, "Work.org"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(b) != "a1\na1\np1\n" {
		t.Fatalf("unexpected Work.org: %q", b)
	}
}

func TestTreeRouterPerProjectNestsProjectsUnderArea(t *testing.T) {
	dir := t.TempDir()
	r := newTreeRouter(dir, "posix", true)

	root := thingsdomain.NoArea()
	if _, err := r.Area(root); err != nil {
		t.Fatalf("area writer: %v", err)
	}
	if _, err := r.Project(root, thingsdomain.Inbox()); err != nil {
		t.Fatalf("inbox writer: %v", err)
	}
	work := thingsdomain.Area{ID: "a1", Title: "Work"}
	if _, err := r.Project(work, thingsdomain.Project{Item: thingsdomain.Item{ID: "p1", Title: "Q1/Q2 plan"}}); err != nil {
		t.Fatalf("project writer: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	want := []string{"no area.org", "no area/Inbox.org", "Work/Q1-Q2 plan.org"}
	paths := r.paths()
	if len(paths) != len(want) {
		t.Fatalf("unexpected paths: %v", paths)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Fatalf("path %d = %q, want %q", i, paths[i], want[i])
		}
		if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(want[i]))); err != nil {
			t.Fatalf("expected %s on disk: %v", want[i], err)
		}
	}
}

func TestTreeRouterSkipsNumberedNamesTakenByTitles(t *testing.T) {
	work := thingsdomain.Area{ID: "a1", Title: "Work"}
	titles := []string{"Work", "Work", "Work-2"}

	t.Run("area", func(t *testing.T) {
		dir := t.TempDir()
		r := newTreeRouter(dir, "posix", false)
		for i, title := range titles {
			area := thingsdomain.Area{ID: fmt.Sprintf("a%d", i+1), Title: title}
			w, err := r.Area(area)
			if err != nil {
				t.Fatalf("area writer: %v", err)
			}
			fmt.Fprintf(w, "%s\n", area.ID)
		}
		if err := r.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}

		want := map[string]string{"Work.org": "a1\n", "Work-2.org": "a2\n", "Work-2-2.org": "a3\n"}
		assertTreeFiles(t, dir, r, want)
	})

	t.Run("project", func(t *testing.T) {
		dir := t.TempDir()
		r := newTreeRouter(dir, "posix", true)
		for i, title := range titles {
			project := thingsdomain.Project{Item: thingsdomain.Item{ID: fmt.Sprintf("p%d", i+1), Title: title}}
			w, err := r.Project(work, project)
			if err != nil {
				t.Fatalf("project writer: %v", err)
			}
			fmt.Fprintf(w, "%s\n", project.ID)
		}
		if err := r.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}

		want := map[string]string{"Work/Work.org": "p1\n", "Work/Work-2.org": "p2\n", "Work/Work-2-2.org": "p3\n"}
		assertTreeFiles(t, dir, r, want)
	})
}

func assertTreeFiles(t *testing.T, dir string, r *treeRouter, want map[string]string) {
	t.Helper()
	if got := r.Files(); got != len(want) {
		t.Fatalf("expected %d files, got %d: %v", len(want), got, r.paths())
	}
	for rel, content := range want {
		b, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
		if err != nil {
			t.Fatalf("read %s: %v", rel, err)
		}
		if string(b) != content {
			t.Fatalf("unexpected %s: %q, want %q", rel, b, content)
		}
	}
}
