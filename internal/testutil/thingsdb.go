package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

const thingsSchema = `
CREATE TABLE TMArea (
	uuid TEXT PRIMARY KEY,
	title TEXT,
	visible INTEGER,
	"index" INTEGER
);
CREATE TABLE TMTask (
	uuid TEXT PRIMARY KEY,
	type INTEGER,
	status INTEGER,
	trashed INTEGER,
	title TEXT,
	notes TEXT,
	area TEXT,
	project TEXT,
	heading TEXT,
	"index" INTEGER,
	deadline INTEGER,
	startDate INTEGER,
	stopDate REAL,
	todayIndex INTEGER,
	checklistItemsCount INTEGER,
	start INTEGER
);
CREATE TABLE TMChecklistItem (
	uuid TEXT PRIMARY KEY,
	title TEXT,
	status INTEGER,
	task TEXT,
	"index" INTEGER
);
CREATE TABLE TMTag (
	uuid TEXT PRIMARY KEY,
	title TEXT
);
CREATE TABLE TMTaskTag (
	tasks TEXT,
	tags TEXT
);
CREATE TABLE TMAreaTag (
	areas TEXT,
	tags TEXT
);
`

// TaskRow is one TMTask fixture row. Empty strings and zero dates are stored as NULL.
type TaskRow struct {
	UUID                string
	Type                int
	Status              int
	Trashed             bool
	Title               string
	Notes               string
	Area                string
	Project             string
	Heading             string
	Index               int
	Deadline            int64
	StartDate           int64
	ChecklistItemsCount int
	Start               int
	Tags                []string
}

// ThingsDB builds a Things 3 shaped SQLite database for tests.
type ThingsDB struct {
	t    *testing.T
	db   *sql.DB
	Path string
}

func NewThingsDB(t *testing.T) *ThingsDB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "main.sqlite")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open fixture db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if _, err := db.Exec(thingsSchema); err != nil {
		t.Fatalf("create fixture schema: %v", err)
	}
	return &ThingsDB{t: t, db: db, Path: path}
}

func (f *ThingsDB) Exec(query string, args ...any) {
	f.t.Helper()
	if _, err := f.db.Exec(query, args...); err != nil {
		f.t.Fatalf("exec %q: %v", query, err)
	}
}

func (f *ThingsDB) Area(uuid string, title string, index int, tags ...string) {
	f.t.Helper()
	f.Exec(`INSERT INTO TMArea (uuid, title, visible, "index") VALUES (?, ?, 1, ?)`, uuid, title, index)
	for _, tag := range tags {
		f.Exec(`INSERT INTO TMAreaTag (areas, tags) VALUES (?, ?)`, uuid, f.tag(tag))
	}
}

func (f *ThingsDB) Task(row TaskRow) {
	f.t.Helper()
	trashed := 0
	if row.Trashed {
		trashed = 1
	}
	f.Exec(`INSERT INTO TMTask (uuid, type, status, trashed, title, notes, area, project, heading,
		"index", deadline, startDate, stopDate, todayIndex, checklistItemsCount, start)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL, NULL, ?, ?)`,
		row.UUID, row.Type, row.Status, trashed, row.Title, nullString(row.Notes),
		nullString(row.Area), nullString(row.Project), nullString(row.Heading), row.Index,
		nullInt(row.Deadline), nullInt(row.StartDate), row.ChecklistItemsCount, row.Start)
	for _, tag := range row.Tags {
		f.Exec(`INSERT INTO TMTaskTag (tasks, tags) VALUES (?, ?)`, row.UUID, f.tag(tag))
	}
}

func (f *ThingsDB) ChecklistItem(uuid string, task string, title string, status int, index int) {
	f.t.Helper()
	f.Exec(`INSERT INTO TMChecklistItem (uuid, title, status, task, "index") VALUES (?, ?, ?, ?, ?)`,
		uuid, title, status, task, index)
}

func (f *ThingsDB) tag(title string) string {
	f.t.Helper()
	uuid := "tag-" + title
	f.Exec(`INSERT OR IGNORE INTO TMTag (uuid, title) VALUES (?, ?)`, uuid, title)
	return uuid
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullInt(v int64) any {
	if v == 0 {
		return nil
	}
	return v
}
