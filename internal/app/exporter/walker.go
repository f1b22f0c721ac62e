package exporter

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	thingsdomain "github.com/sleroq/things3-to-org/internal/domain/things"
	"github.com/sleroq/things3-to-org/internal/infra/exportfs"
)

// Source is the read side of a Things database.
type Source interface {
	Areas(ctx context.Context) ([]thingsdomain.Area, error)
	AreaTags(ctx context.Context, areaID string) ([]string, error)
	TaskTags(ctx context.Context, taskID string) ([]string, error)
	ProjectsInArea(ctx context.Context, areaID string) ([]thingsdomain.Project, error)
	ProjectsWithoutArea(ctx context.Context) ([]thingsdomain.Project, error)
	TasksInProject(ctx context.Context, projectID string) ([]thingsdomain.Task, error)
	TasksInAreaWithoutProject(ctx context.Context, areaID string) ([]thingsdomain.Task, error)
	TasksInInbox(ctx context.Context) ([]thingsdomain.Task, error)
	TasksInActionGroup(ctx context.Context, headingID string) ([]thingsdomain.Task, error)
	ChecklistItems(ctx context.Context, taskID string) ([]thingsdomain.ChecklistItem, error)
}

type walker struct {
	src    Source
	router exportfs.Router
	logger *slog.Logger
	stats  Stats
}

func (w *walker) exportArea(ctx context.Context, area thingsdomain.Area) error {
	w.logger.Debug("area", "title", area.Title, "id", area.ID)
	if !area.Root {
		titles, err := w.src.AreaTags(ctx, area.ID)
		if err != nil {
			return err
		}
		for _, title := range titles {
			area.ApplyTag(title)
		}
	}

	out, err := w.router.Area(area)
	if err != nil {
		return err
	}
	if err := writeArea(out, area, 0); err != nil {
		return fmt.Errorf("write area %s: %w", area.ID, err)
	}
	w.stats.Areas++

	var projects []thingsdomain.Project
	if area.Root {
		if err := w.exportProject(ctx, area, thingsdomain.Inbox(), 1); err != nil {
			return err
		}
		projects, err = w.src.ProjectsWithoutArea(ctx)
	} else {
		tasks, err := w.src.TasksInAreaWithoutProject(ctx, area.ID)
		if err != nil {
			return err
		}
		for _, task := range tasks {
			if err := w.exportTask(ctx, out, task, 1); err != nil {
				return err
			}
		}
		projects, err = w.src.ProjectsInArea(ctx, area.ID)
	}
	if err != nil {
		return err
	}

	for _, project := range projects {
		if err := w.exportProject(ctx, area, project, 1); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) exportProject(ctx context.Context, area thingsdomain.Area, project thingsdomain.Project, level int) error {
	w.logger.Debug("project", "title", project.Title, "id", project.ID)
	if !project.Inbox {
		titles, err := w.src.TaskTags(ctx, project.ID)
		if err != nil {
			return err
		}
		project.ApplyTags(titles)
	}

	out, err := w.router.Project(area, project)
	if err != nil {
		return err
	}
	if err := writeProject(out, project, level); err != nil {
		return fmt.Errorf("write project %s: %w", project.ID, err)
	}
	w.stats.Projects++

	var tasks []thingsdomain.Task
	if project.Inbox {
		tasks, err = w.src.TasksInInbox(ctx)
	} else {
		tasks, err = w.src.TasksInProject(ctx, project.ID)
	}
	if err != nil {
		return err
	}
	for _, task := range tasks {
		if err := w.exportTask(ctx, out, task, level+1); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) exportTask(ctx context.Context, out io.Writer, task thingsdomain.Task, level int) error {
	w.logger.Debug("task",
		"title", task.Title,
		"id", task.ID,
		"level", level,
		"status", task.Status,
		"kind", task.Kind.String(),
		"start", task.Start,
		"deadline", task.Deadline,
		"startDate", task.StartDate,
	)
	titles, err := w.src.TaskTags(ctx, task.ID)
	if err != nil {
		return err
	}
	task.ApplyTags(titles)

	if err := writeTask(out, task, level); err != nil {
		return fmt.Errorf("write task %s: %w", task.ID, err)
	}

	switch task.Kind {
	case thingsdomain.KindActionGroup:
		w.stats.ActionGroups++
		children, err := w.src.TasksInActionGroup(ctx, task.ID)
		if err != nil {
			return err
		}
		for _, child := range children {
			if err := w.exportTask(ctx, out, child, level+1); err != nil {
				return err
			}
		}
	default:
		w.stats.Tasks++
		if !task.HasChecklist() {
			return nil
		}
		items, err := w.src.ChecklistItems(ctx, task.ID)
		if err != nil {
			return err
		}
		for _, item := range items {
			if err := writeChecklistItem(out, item); err != nil {
				return fmt.Errorf("write checklist item %s: %w", item.ID, err)
			}
			w.stats.ChecklistItems++
		}
	}
	return nil
}
