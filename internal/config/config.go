// Package config resolves export options from flags, environment and
// platform defaults.
package config

import (
	"os"
	"path/filepath"
)

const (
	// EnvDatabase overrides the database path.
	EnvDatabase = "THINGS_DB"

	// EnvTarget overrides the export target.
	EnvTarget = "THINGS_EXPORT_TARGET"

	// EnvFormat overrides the export format.
	EnvFormat = "THINGS_EXPORT_FORMAT"

	// DefaultFormat writes one file per area.
	DefaultFormat = "area"

	// DefaultFilenameEscaping picks escaping rules for the running OS.
	DefaultFilenameEscaping = "auto"

	exportDirName = "Things 3 export"
)

// Database locations relative to the home directory. Things 3.13 moved the
// database into the group container.
var (
	databaseRelPath = filepath.Join("Library", "Group Containers",
		"JLMPQHK86H.com.culturedcode.ThingsMac",
		"Things Database.thingsdatabase", "main.sqlite")
	legacyDatabaseRelPath = filepath.Join("Library", "Containers",
		"com.culturedcode.ThingsMac", "Data", "Library", "Application Support",
		"Cultured Code", "Things", "Things.sqlite3")
)

// Options holds everything one export run needs.
type Options struct {
	// DatabasePath is the Things SQLite database to read.
	DatabasePath string

	// OutputPath is a file for the "all" format ("-" for stdout) and a
	// directory otherwise.
	OutputPath string

	// Format is one of all, area, project.
	Format string

	// FilenameEscaping is one of auto, posix, windows.
	FilenameEscaping string

	// Verbose enables debug logging.
	Verbose bool

	// Console shows the live log console instead of plain stderr logging.
	Console bool
}

// Default returns options populated from the environment, falling back to
// the locations the Things app uses.
func Default() Options {
	return Options{
		DatabasePath:     envOr(EnvDatabase, DefaultDatabasePath()),
		OutputPath:       envOr(EnvTarget, DefaultOutputPath()),
		Format:           envOr(EnvFormat, DefaultFormat),
		FilenameEscaping: DefaultFilenameEscaping,
	}
}

// DefaultDatabasePath returns the current database location, or the
// pre-3.13 location when only that one exists.
func DefaultDatabasePath() string {
	home := homeDir()
	current := filepath.Join(home, databaseRelPath)
	if fileExists(current) {
		return current
	}
	legacy := filepath.Join(home, legacyDatabaseRelPath)
	if fileExists(legacy) {
		return legacy
	}
	return current
}

// DefaultOutputPath returns ~/Downloads/Things 3 export.
func DefaultOutputPath() string {
	return filepath.Join(homeDir(), "Downloads", exportDirName)
}

var homeDir = func() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
