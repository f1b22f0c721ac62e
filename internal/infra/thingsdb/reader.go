package thingsdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	thingsdomain "github.com/sleroq/things3-to-org/internal/domain/things"

	_ "modernc.org/sqlite"
)

var ErrUnknownTaskType = errors.New("unknown task type")

// MissingFieldError reports a column the export needs but the database lacks.
type MissingFieldError struct {
	Table string
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing field %q in table %s", e.Field, e.Table)
}

const taskFields = `
	SELECT uuid, status, title, type, notes, area, deadline, startDate,
		todayIndex, checklistItemsCount, stopDate, start
	FROM TMTask
`

const (
	areasQuery = `SELECT uuid, title FROM TMArea ORDER BY "index"`

	areaTagsQuery = `
		SELECT tag.title FROM TMAreaTag AS at
		JOIN TMTag AS tag ON at.tags = tag.uuid
		WHERE at.areas = ?
	`
	taskTagsQuery = `
		SELECT tag.title FROM TMTaskTag AS tt
		JOIN TMTag AS tag ON tt.tags = tag.uuid
		WHERE tt.tasks = ?
	`

	projectsInAreaQuery = taskFields + `
		WHERE type = 1
		AND area = ?
		AND trashed = 0
		AND status < 2
		ORDER BY "index"
	`
	projectsWithoutAreaQuery = taskFields + `
		WHERE type = 1
		AND area IS NULL
		AND trashed = 0
		AND status < 2
		ORDER BY "index"
	`

	// Plain tasks sort before action groups.
	tasksInProjectQuery = taskFields + `
		WHERE type != 1
		AND project = ?
		AND trashed = 0
		AND status < 2
		ORDER BY type, "index"
	`
	tasksInAreaWithoutProjectQuery = taskFields + `
		WHERE type != 1
		AND area = ?
		AND project IS NULL
		AND trashed = 0
		AND status < 2
		ORDER BY type, "index"
	`
	tasksInInboxQuery = taskFields + `
		WHERE type != 1
		AND project IS NULL
		AND area IS NULL
		AND heading IS NULL
		AND trashed = 0
		AND status < 2
		ORDER BY "index"
	`
	tasksInActionGroupQuery = taskFields + `
		WHERE type = 0
		AND heading = ?
		AND trashed = 0
		AND status < 2
		ORDER BY "index"
	`

	checklistItemsQuery = `
		SELECT uuid, title, status
		FROM TMChecklistItem
		WHERE task = ?
		ORDER BY "index"
	`
)

type Reader struct {
	db *sql.DB
}

// Open opens the Things database read-only. Every query drains its rows
// before returning, so a single connection is enough.
func Open(path string) (*Reader, error) {
	dsn, err := readOnlyDSN(path)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA query_only=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("open database %s: %w", path, err)
		}
	}
	return &Reader{db: db}, nil
}

func readOnlyDSN(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve database path: %w", err)
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs), RawQuery: "mode=ro"}
	return u.String(), nil
}

func (r *Reader) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *Reader) Areas(ctx context.Context) ([]thingsdomain.Area, error) {
	rows, err := r.db.QueryContext(ctx, areasQuery)
	if err != nil {
		return nil, queryError("TMArea", "read areas", err)
	}
	defer rows.Close()

	var out []thingsdomain.Area
	for rows.Next() {
		var (
			id    string
			title sql.NullString
		)
		if err := rows.Scan(&id, &title); err != nil {
			return nil, fmt.Errorf("scan area: %w", err)
		}
		out = append(out, thingsdomain.Area{ID: id, Title: title.String})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read areas: %w", err)
	}
	return out, nil
}

func (r *Reader) AreaTags(ctx context.Context, areaID string) ([]string, error) {
	return r.titles(ctx, "TMAreaTag", areaTagsQuery, areaID)
}

func (r *Reader) TaskTags(ctx context.Context, taskID string) ([]string, error) {
	return r.titles(ctx, "TMTaskTag", taskTagsQuery, taskID)
}

func (r *Reader) titles(ctx context.Context, table string, query string, id string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, queryError(table, "read tags of "+id, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var title sql.NullString
		if err := rows.Scan(&title); err != nil {
			return nil, fmt.Errorf("scan tag of %s: %w", id, err)
		}
		if title.Valid {
			out = append(out, title.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read tags of %s: %w", id, err)
	}
	return out, nil
}

func (r *Reader) ProjectsInArea(ctx context.Context, areaID string) ([]thingsdomain.Project, error) {
	return r.projects(ctx, projectsInAreaQuery, areaID)
}

func (r *Reader) ProjectsWithoutArea(ctx context.Context) ([]thingsdomain.Project, error) {
	return r.projects(ctx, projectsWithoutAreaQuery)
}

func (r *Reader) projects(ctx context.Context, query string, args ...any) ([]thingsdomain.Project, error) {
	rows, err := r.taskRows(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	out := make([]thingsdomain.Project, 0, len(rows))
	for _, row := range rows {
		out = append(out, thingsdomain.Project{Item: row.item})
	}
	return out, nil
}

func (r *Reader) TasksInProject(ctx context.Context, projectID string) ([]thingsdomain.Task, error) {
	return r.tasks(ctx, tasksInProjectQuery, projectID)
}

func (r *Reader) TasksInAreaWithoutProject(ctx context.Context, areaID string) ([]thingsdomain.Task, error) {
	return r.tasks(ctx, tasksInAreaWithoutProjectQuery, areaID)
}

func (r *Reader) TasksInInbox(ctx context.Context) ([]thingsdomain.Task, error) {
	return r.tasks(ctx, tasksInInboxQuery)
}

func (r *Reader) TasksInActionGroup(ctx context.Context, headingID string) ([]thingsdomain.Task, error) {
	return r.tasks(ctx, tasksInActionGroupQuery, headingID)
}

func (r *Reader) tasks(ctx context.Context, query string, args ...any) ([]thingsdomain.Task, error) {
	rows, err := r.taskRows(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	out := make([]thingsdomain.Task, 0, len(rows))
	for _, row := range rows {
		task, err := newTask(row)
		if err != nil {
			return nil, err
		}
		out = append(out, task)
	}
	return out, nil
}

func newTask(row taskRow) (thingsdomain.Task, error) {
	switch row.typ {
	case thingsdomain.TypeTask:
		return thingsdomain.Task{Item: row.item, Kind: thingsdomain.KindTask}, nil
	case thingsdomain.TypeActionGroup:
		return thingsdomain.Task{Item: row.item, Kind: thingsdomain.KindActionGroup}, nil
	default:
		return thingsdomain.Task{}, fmt.Errorf("task %s: %w %d", row.item.ID, ErrUnknownTaskType, row.typ)
	}
}

func (r *Reader) ChecklistItems(ctx context.Context, taskID string) ([]thingsdomain.ChecklistItem, error) {
	rows, err := r.db.QueryContext(ctx, checklistItemsQuery, taskID)
	if err != nil {
		return nil, queryError("TMChecklistItem", "read checklist of "+taskID, err)
	}
	defer rows.Close()

	var out []thingsdomain.ChecklistItem
	for rows.Next() {
		var (
			item   thingsdomain.ChecklistItem
			title  sql.NullString
			status sql.NullInt64
		)
		if err := rows.Scan(&item.ID, &title, &status); err != nil {
			return nil, fmt.Errorf("scan checklist item of %s: %w", taskID, err)
		}
		item.Title = title.String
		item.Status = int(status.Int64)
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read checklist of %s: %w", taskID, err)
	}
	return out, nil
}

type taskRow struct {
	item thingsdomain.Item
	typ  int
}

func (r *Reader) taskRows(ctx context.Context, query string, args ...any) ([]taskRow, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, queryError("TMTask", "read tasks", err)
	}
	defer rows.Close()

	var out []taskRow
	for rows.Next() {
		var (
			row                 taskRow
			status              sql.NullInt64
			title               sql.NullString
			typ                 sql.NullInt64
			notes               sql.NullString
			area                sql.NullString
			deadline            sql.NullInt64
			startDate           sql.NullInt64
			todayIndex          sql.NullInt64
			checklistItemsCount sql.NullInt64
			stopDate            sql.NullFloat64
			start               sql.NullInt64
		)
		if err := rows.Scan(&row.item.ID, &status, &title, &typ, &notes, &area, &deadline, &startDate,
			&todayIndex, &checklistItemsCount, &stopDate, &start); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		if !typ.Valid {
			return nil, fmt.Errorf("task %s: %w: type is NULL", row.item.ID, ErrUnknownTaskType)
		}
		row.typ = int(typ.Int64)
		row.item.Status = int(status.Int64)
		row.item.Title = title.String
		row.item.Notes = notes.String
		if row.item.Deadline, err = packedDate(deadline); err != nil {
			return nil, fmt.Errorf("task %s deadline: %w", row.item.ID, err)
		}
		if row.item.StartDate, err = packedDate(startDate); err != nil {
			return nil, fmt.Errorf("task %s start date: %w", row.item.ID, err)
		}
		if todayIndex.Valid {
			v := todayIndex.Int64
			row.item.TodayIndex = &v
		}
		row.item.ChecklistItemsCount = int(checklistItemsCount.Int64)
		if stopDate.Valid {
			v := stopDate.Float64
			row.item.StopDate = &v
		}
		row.item.Start = int(start.Int64)
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read tasks: %w", err)
	}
	return out, nil
}

func packedDate(v sql.NullInt64) (*thingsdomain.PackedDate, error) {
	if !v.Valid || v.Int64 == 0 {
		return nil, nil
	}
	d := thingsdomain.PackedDate(v.Int64)
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// queryError turns SQLite's "no such column" into a MissingFieldError.
func queryError(table string, action string, err error) error {
	_, field, ok := strings.Cut(err.Error(), "no such column: ")
	if !ok {
		return fmt.Errorf("%s: %w", action, err)
	}
	if i := strings.IndexAny(field, " )"); i >= 0 {
		field = field[:i]
	}
	if _, col, qualified := strings.Cut(field, "."); qualified {
		field = col
	}
	return fmt.Errorf("%s: %w", action, &MissingFieldError{Table: table, Field: field})
}
