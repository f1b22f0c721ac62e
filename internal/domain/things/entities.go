package things

const (
	// NullID is the reserved identifier of the synthetic "no area" root and
	// the synthetic Inbox project.
	NullID = "NULL"

	NoAreaTitle = "no area"
	InboxTitle  = "Inbox"
)

// Values of the TMTask.type discriminator.
const (
	TypeTask        = 0
	TypeProject     = 1
	TypeActionGroup = 2
)

// Values of TMTask.start.
const (
	StartInbox   = 0
	StartAnytime = 1
	StartSomeday = 2
)

type TaskKind int

const (
	KindTask TaskKind = iota
	KindActionGroup
)

func (k TaskKind) String() string {
	switch k {
	case KindActionGroup:
		return "action group"
	default:
		return "task"
	}
}

type Area struct {
	ID    string
	Title string
	Tags  TagSet
	Root  bool
}

func NoArea() Area {
	return Area{ID: NullID, Title: NoAreaTitle, Root: true}
}

// ApplyTag adds a literal tag. Areas have no status keyword, so reserved
// titles stay literal here.
func (a *Area) ApplyTag(title string) {
	a.Tags.Add(NormalizeTag(title))
}

type Flags struct {
	Priority int
	Blocked  bool
	Idea     bool
}

// Item holds the columns shared by projects, tasks and action groups.
type Item struct {
	ID                  string
	Title               string
	Notes               string
	Status              int
	Deadline            *PackedDate
	StartDate           *PackedDate
	StopDate            *float64
	TodayIndex          *int64
	ChecklistItemsCount int
	Start               int
	Tags                TagSet
	Flags               Flags
}

type Project struct {
	Item
	Inbox bool
}

func Inbox() Project {
	return Project{Item: Item{ID: NullID, Title: InboxTitle}, Inbox: true}
}

type Task struct {
	Item
	Kind TaskKind
}

func (t Task) IsActionGroup() bool {
	return t.Kind == KindActionGroup
}

func (t Task) HasChecklist() bool {
	return t.Kind == KindTask && t.ChecklistItemsCount != 0
}

type ChecklistItem struct {
	ID     string
	Title  string
	Status int
}

func (c ChecklistItem) Done() bool {
	return c.Status > 0
}
