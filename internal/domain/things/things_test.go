package things

import (
	"errors"
	"testing"
)

func (s TagSet) values() []string {
	out := make([]string, len(s.tags))
	copy(out, s.tags)
	return out
}

func TestPackedDateDecodesKnownValue(t *testing.T) {
	d := PackedDate(132657792)
	year, month, day := d.Decode()
	if year != 2024 || month != 3 || day != 5 {
		t.Fatalf("expected 2024-03-05, got %d-%d-%d", year, month, day)
	}
	if got := d.Format(); got != "2024-03-05 Tue" {
		t.Fatalf("unexpected org date: %q", got)
	}
	if got := d.String(); got != "2024-03-05" {
		t.Fatalf("unexpected date string: %q", got)
	}
}

func TestPackedDateRoundTrip(t *testing.T) {
	for year := 1970; year <= 2100; year += 7 {
		for month := 1; month <= 12; month++ {
			for _, day := range []int{1, 9, 17, 28, 31} {
				packed := EncodeDate(year, month, day)
				y, m, d := packed.Decode()
				if y != year || m != month || d != day {
					t.Fatalf("decode(%d) = %d-%d-%d, want %d-%d-%d", packed, y, m, d, year, month, day)
				}
				if again := EncodeDate(y, m, d); again != packed {
					t.Fatalf("re-encode of %d gave %d", packed, again)
				}
			}
		}
	}
}

func TestPackedDateFormatsWeekday(t *testing.T) {
	cases := map[PackedDate]string{
		132763520: "2025-12-31 Wed",
		132650880: "2024-01-15 Mon",
		132653184: "2024-02-01 Thu",
	}
	for packed, want := range cases {
		if got := packed.Format(); got != want {
			t.Fatalf("format(%d) = %q, want %q", packed, got, want)
		}
	}
}

func TestNormalizeTagReplacesSpacesAndHyphens(t *testing.T) {
	if got := NormalizeTag("deep work-mode"); got != "deep_work_mode" {
		t.Fatalf("unexpected tag: %q", got)
	}
}

func TestTagSetKeepsOrderAndDropsDuplicates(t *testing.T) {
	s := NewTagSet("b", "a", "b", "", "c")
	if got := s.Suffix(); got != " :b:a:c:" {
		t.Fatalf("unexpected suffix: %q", got)
	}
	if s.Len() != 3 {
		t.Fatalf("expected 3 tags, got %d", s.Len())
	}
	var empty TagSet
	if got := empty.Suffix(); got != "" {
		t.Fatalf("expected empty suffix, got %q", got)
	}
}

func TestApplyTagFoldsReservedTitles(t *testing.T) {
	var it Item
	it.ApplyTags([]string{"Important", "home office", "Important", "Blocked"})

	if it.Flags.Priority != 1 {
		t.Fatalf("expected priority 1, got %d", it.Flags.Priority)
	}
	if !it.Flags.Blocked {
		t.Fatalf("expected blocked flag")
	}
	if it.Tags.Contains("Important") || it.Tags.Contains("Blocked") {
		t.Fatalf("reserved titles leaked into tags: %v", it.Tags.values())
	}
	if got := it.Tags.Suffix(); got != " :home_office:" {
		t.Fatalf("unexpected suffix: %q", got)
	}
	if got := it.PriorityCookie(); got != " [#1]" {
		t.Fatalf("unexpected cookie: %q", got)
	}
}

func TestAreaKeepsReservedTitlesAsTags(t *testing.T) {
	a := Area{ID: "a1", Title: "Work"}
	a.ApplyTag("Important")
	if got := a.Tags.Suffix(); got != " :Important:" {
		t.Fatalf("unexpected area suffix: %q", got)
	}
}

func TestKeywordPrecedence(t *testing.T) {
	cases := []struct {
		name string
		item Item
		want string
	}{
		{"plain", Item{}, "TODO"},
		{"someday", Item{Start: StartSomeday}, "LATER"},
		{"blocked beats someday", Item{Start: StartSomeday, Flags: Flags{Blocked: true}}, "BLOCKED"},
		{"idea beats blocked", Item{Flags: Flags{Blocked: true, Idea: true}}, "IDEA"},
		{"anytime", Item{Start: StartAnytime}, "TODO"},
	}
	for _, tc := range cases {
		if got := tc.item.Keyword(); got != tc.want {
			t.Fatalf("%s: expected %s, got %s", tc.name, tc.want, got)
		}
	}
}

func TestSyntheticRootAndInbox(t *testing.T) {
	root := NoArea()
	if !root.Root || root.ID != NullID || root.Title != "no area" {
		t.Fatalf("unexpected root area: %#v", root)
	}
	inbox := Inbox()
	if !inbox.Inbox || inbox.ID != NullID || inbox.Title != "Inbox" {
		t.Fatalf("unexpected inbox: %#v", inbox)
	}
	if inbox.Deadline != nil || inbox.StartDate != nil || inbox.Notes != "" {
		t.Fatalf("expected inbox optional fields to be absent: %#v", inbox)
	}
	if got := inbox.Keyword(); got != "TODO" {
		t.Fatalf("unexpected inbox keyword: %q", got)
	}
}

func TestChecklistOnlyForPlainTasksWithCount(t *testing.T) {
	task := Task{Item: Item{ChecklistItemsCount: 2}}
	if !task.HasChecklist() {
		t.Fatalf("expected checklist for task with count")
	}
	group := Task{Item: Item{ChecklistItemsCount: 2}, Kind: KindActionGroup}
	if group.HasChecklist() {
		t.Fatalf("action groups never render checklists")
	}
	if (Task{}).HasChecklist() {
		t.Fatalf("expected no checklist when count is zero")
	}
}

func TestPackedDateValidate(t *testing.T) {
	for _, d := range []PackedDate{EncodeDate(2024, 2, 29), EncodeDate(2025, 12, 31), EncodeDate(1970, 1, 1)} {
		if err := d.Validate(); err != nil {
			t.Fatalf("%s: unexpected error: %v", d, err)
		}
	}
	for _, d := range []PackedDate{EncodeDate(2024, 3, 0), EncodeDate(2024, 0, 5), EncodeDate(2024, 13, 1), EncodeDate(2023, 2, 29)} {
		if err := d.Validate(); !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("%s: expected ErrInvalidDate, got %v", d, err)
		}
	}
}
