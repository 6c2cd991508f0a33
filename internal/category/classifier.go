package category

import (
	"strings"
	"sync"
)

// Default is the category assigned to executables with no table entry.
const Default = "Other"

// Classifier maps process executable names to activity categories.
// Lookups are case-insensitive; user overrides replace table entries.
type Classifier struct {
	mu    sync.RWMutex
	table map[string]string
}

func NewClassifier() *Classifier {
	return &Classifier{table: defaultTable()}
}

func defaultTable() map[string]string {
	return map[string]string{
		// Browsers
		"chrome":   "Entertainment",
		"firefox":  "Entertainment",
		"edge":     "Entertainment",
		"iexplore": "Entertainment",
		"opera":    "Entertainment",

		// Development tools
		"devenv":       "Coding",
		"code":         "Coding",
		"rider":        "Coding",
		"idea64":       "Coding",
		"notepad++":    "Coding",
		"sublime_text": "Coding",
		"atom":         "Coding",

		// Games and gaming platforms
		"steam":             "Games",
		"epicgameslauncher": "Games",
		"minecraft":         "Games",
		"javaw":             "Games",
		"leagueclient":      "Games",
		"origin":            "Games",
		"battlenet":         "Games",

		// Productivity
		"excel":    "Learning",
		"word":     "Learning",
		"powerpnt": "Learning",
		"onenote":  "Learning",
		"outlook":  "Learning",
		"teams":    "Learning",
		"slack":    "Learning",
		"zoom":     "Learning",

		// Entertainment
		"spotify":  "Entertainment",
		"netflix":  "Entertainment",
		"vlc":      "Entertainment",
		"wmplayer": "Entertainment",
		"discord":  "Entertainment",
	}
}

// Classify returns the category for an executable name, or Default if the
// name has no table entry.
func (c *Classifier) Classify(imageName string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if cat, ok := c.table[strings.ToLower(imageName)]; ok {
		return cat
	}
	return Default
}

// SetOverride records a user-chosen category for a process name pattern.
// Subsequent Classify calls for that name return the override.
func (c *Classifier) SetOverride(pattern, category string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.table[strings.ToLower(pattern)] = category
}

// MatchesPattern reports whether a tracked process display name matches an
// override pattern. Matching is a case-insensitive substring test.
func MatchesPattern(displayName, pattern string) bool {
	return strings.Contains(strings.ToLower(displayName), strings.ToLower(pattern))
}
