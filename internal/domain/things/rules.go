package things

import (
	"strconv"
	"strings"
)

// Tag titles that set item state instead of becoming tags.
const (
	TagIdea      = "Idea"
	TagImportant = "Important"
	TagBlocked   = "Blocked"
)

const importantPriority = 1

// TagSet is an insertion-ordered set of tags.
type TagSet struct {
	tags []string
}

func NewTagSet(tags ...string) TagSet {
	var s TagSet
	for _, tag := range tags {
		s.Add(tag)
	}
	return s
}

func (s *TagSet) Add(tag string) {
	if tag == "" || s.Contains(tag) {
		return
	}
	s.tags = append(s.tags, tag)
}

func (s TagSet) Contains(tag string) bool {
	for _, t := range s.tags {
		if t == tag {
			return true
		}
	}
	return false
}

func (s TagSet) Len() int {
	return len(s.tags)
}

// Suffix renders the tags as an Org tag suffix: "" or " :a:b:".
func (s TagSet) Suffix() string {
	if len(s.tags) == 0 {
		return ""
	}
	return " :" + strings.Join(s.tags, ":") + ":"
}

func NormalizeTag(title string) string {
	title = strings.ReplaceAll(title, " ", "_")
	return strings.ReplaceAll(title, "-", "_")
}

func (it *Item) ApplyTag(title string) {
	tag := NormalizeTag(title)
	switch tag {
	case TagIdea:
		it.Flags.Idea = true
	case TagImportant:
		it.Flags.Priority = importantPriority
	case TagBlocked:
		it.Flags.Blocked = true
	default:
		it.Tags.Add(tag)
	}
}

func (it *Item) ApplyTags(titles []string) {
	for _, title := range titles {
		it.ApplyTag(title)
	}
}

// Keyword resolves the Org TODO keyword; the first matching rule wins.
func (it Item) Keyword() string {
	switch {
	case it.Flags.Idea:
		return "IDEA"
	case it.Flags.Blocked:
		return "BLOCKED"
	case it.Start == StartSomeday:
		return "LATER"
	default:
		return "TODO"
	}
}

func (it Item) PriorityCookie() string {
	if it.Flags.Priority == 0 {
		return ""
	}
	return " [#" + strconv.Itoa(it.Flags.Priority) + "]"
}
