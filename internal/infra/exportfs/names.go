package exportfs

import (
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"unicode"
)

var ErrInvalidFilenameEscaping = errors.New("invalid filename escaping mode")

func ResolveFilenameEscaping(mode string) (string, error) {
	mode = strings.TrimSpace(strings.ToLower(mode))
	if mode == "" || mode == "auto" {
		if runtime.GOOS == "windows" {
			return "windows", nil
		}
		return "posix", nil
	}
	if mode == "posix" || mode == "windows" {
		return mode, nil
	}
	return "", fmt.Errorf("%w %q: expected auto, posix, or windows", ErrInvalidFilenameEscaping, mode)
}

// SanitizeName turns an entity title into a single path element.
func SanitizeName(s string, mode string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "untitled"
	}
	var b strings.Builder
	for _, r := range s {
		if isForbiddenFileNameRune(r, mode) {
			b.WriteRune('-')
			continue
		}
		b.WriteRune(r)
	}
	out := strings.TrimSpace(b.String())
	if mode == "windows" {
		out = strings.TrimRight(out, ". ")
	}
	if out == "." || out == ".." {
		out = ""
	}
	if mode == "windows" && isWindowsReservedName(out) {
		out = out + "-file"
	}
	if out == "" {
		return "untitled"
	}
	return out
}

// nameTable hands out collision-free names within one directory.
type nameTable struct {
	mode  string
	taken map[string]bool
}

func newNameTable(mode string) *nameTable {
	return &nameTable{mode: mode, taken: map[string]bool{}}
}

// unique numbers repeats as base-2, base-3, ... skipping any name already
// handed out, including ones that came from a literal title.
func (t *nameTable) unique(title string) string {
	base := SanitizeName(title, t.mode)
	name := base
	for n := 2; t.taken[filenameCollisionKey(name, t.mode)]; n++ {
		name = base + "-" + strconv.Itoa(n)
	}
	t.taken[filenameCollisionKey(name, t.mode)] = true
	return name
}

func filenameCollisionKey(name string, mode string) string {
	if mode == "windows" {
		return strings.ToLower(name)
	}
	return name
}

func isForbiddenFileNameRune(r rune, mode string) bool {
	if r == 0 || r == '/' || unicode.IsControl(r) {
		return true
	}
	if mode != "windows" {
		return false
	}
	switch r {
	case '<', '>', ':', '"', '\\', '|', '?', '*':
		return true
	default:
		return false
	}
}

func isWindowsReservedName(name string) bool {
	if name == "" {
		return false
	}
	upper := strings.ToUpper(strings.TrimSpace(name))
	if idx := strings.IndexRune(upper, '.'); idx >= 0 {
		upper = upper[:idx]
	}
	switch upper {
	case "CON", "PRN", "AUX", "NUL",
		"COM1", "COM2", "COM3", "COM4", "COM5", "COM6", "COM7", "COM8", "COM9",
		"LPT1", "LPT2", "LPT3", "LPT4", "LPT5", "LPT6", "LPT7", "LPT8", "LPT9":
		return true
	default:
		return false
	}
}
