package exporter

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	thingsdomain "github.com/sleroq/things3-to-org/internal/domain/things"
)

const (
	areaTemplate        = "\n%s%s:%s\n"
	projectTemplate     = "\n%s%s%s %s%s\n"
	taskTemplate        = "%s%s%s %s%s\n"
	actionGroupTemplate = "%sTODO %s:\n"
	checklistTemplate   = "- [%s] %s\n"
	deadlineTemplate    = "DEADLINE: <%s>\n"
	scheduledTemplate   = "SCHEDULED: <%s>\n"
)

const (
	notesPrefix = `<note xml:space="preserve">`
	notesSuffix = `</note>`
)

var anchorPattern = regexp.MustCompile(`<a href="(?P<url>.*)?">.*?</a>`)

func headingMarker(level int) string {
	return strings.Repeat("*", level+1) + " "
}

func writeArea(w io.Writer, area thingsdomain.Area, level int) error {
	_, err := fmt.Fprintf(w, areaTemplate, headingMarker(level), area.Title, area.Tags.Suffix())
	return err
}

func writeProject(w io.Writer, project thingsdomain.Project, level int) error {
	var b strings.Builder
	it := project.Item
	fmt.Fprintf(&b, projectTemplate, headingMarker(level), it.Keyword(), it.PriorityCookie(), it.Title, it.Tags.Suffix())
	writeAttributes(&b, it)
	writeNotes(&b, it.Notes)
	_, err := io.WriteString(w, b.String())
	return err
}

// writeTask renders a task or an action group. Action groups never carry
// metadata or notes.
func writeTask(w io.Writer, task thingsdomain.Task, level int) error {
	var b strings.Builder
	it := task.Item
	switch task.Kind {
	case thingsdomain.KindActionGroup:
		fmt.Fprintf(&b, actionGroupTemplate, headingMarker(level), it.Title)
	default:
		fmt.Fprintf(&b, taskTemplate, headingMarker(level), it.Keyword(), it.PriorityCookie(), it.Title, it.Tags.Suffix())
		writeAttributes(&b, it)
		writeNotes(&b, it.Notes)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeChecklistItem(w io.Writer, item thingsdomain.ChecklistItem) error {
	box := " "
	if item.Done() {
		box = "X"
	}
	_, err := fmt.Fprintf(w, checklistTemplate, box, item.Title)
	return err
}

func writeAttributes(b *strings.Builder, it thingsdomain.Item) {
	if it.Deadline != nil {
		fmt.Fprintf(b, deadlineTemplate, it.Deadline.Format())
	}
	if it.StartDate != nil {
		fmt.Fprintf(b, scheduledTemplate, it.StartDate.Format())
	}
}

func writeNotes(b *strings.Builder, notes string) {
	if notes == "" {
		return
	}
	if strings.HasPrefix(notes, notesPrefix) {
		notes = strings.TrimSuffix(strings.TrimPrefix(notes, notesPrefix), notesSuffix)
	}
	for _, line := range strings.Split(notes, "\n") {
		b.WriteString(anchorPattern.ReplaceAllString(line, "${url}"))
		b.WriteByte('\n')
	}
}
