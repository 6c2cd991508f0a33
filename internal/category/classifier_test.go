package category

import "testing"

func TestClassifier_KnownNames(t *testing.T) {
	c := NewClassifier()

	cases := []struct {
		name string
		want string
	}{
		{"chrome", "Entertainment"},
		{"firefox", "Entertainment"},
		{"code", "Coding"},
		{"devenv", "Coding"},
		{"steam", "Games"},
		{"excel", "Learning"},
		{"spotify", "Entertainment"},
	}

	for _, tc := range cases {
		if got := c.Classify(tc.name); got != tc.want {
			t.Errorf("Classify(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestClassifier_UnknownName(t *testing.T) {
	c := NewClassifier()

	if got := c.Classify("unknownapp123"); got != Default {
		t.Errorf("Classify(unknownapp123) = %q, want %q", got, Default)
	}
}

func TestClassifier_CaseInsensitive(t *testing.T) {
	c := NewClassifier()

	if got := c.Classify("Chrome"); got != "Entertainment" {
		t.Errorf("Classify(Chrome) = %q, want Entertainment", got)
	}

	if got := c.Classify("STEAM"); got != "Games" {
		t.Errorf("Classify(STEAM) = %q, want Games", got)
	}
}

func TestClassifier_SetOverride(t *testing.T) {
	c := NewClassifier()

	c.SetOverride("chrome", "Work")

	if got := c.Classify("chrome"); got != "Work" {
		t.Errorf("Classify(chrome) after override = %q, want Work", got)
	}

	// Overrides are case-insensitive like the rest of the table
	if got := c.Classify("CHROME"); got != "Work" {
		t.Errorf("Classify(CHROME) after override = %q, want Work", got)
	}
}

func TestClassifier_OverrideNewName(t *testing.T) {
	c := NewClassifier()

	c.SetOverride("myapp", "Coding")

	if got := c.Classify("myapp"); got != "Coding" {
		t.Errorf("Classify(myapp) = %q, want Coding", got)
	}
}

func TestMatchesPattern(t *testing.T) {
	cases := []struct {
		display string
		pattern string
		want    bool
	}{
		{"Google Chrome - inbox", "chrome", true},
		{"Google Chrome - inbox", "Chrome", true},
		{"CHROME", "chrome", true},
		{"firefox", "chrome", false},
		{"chrome", "", true},
	}

	for _, tc := range cases {
		if got := MatchesPattern(tc.display, tc.pattern); got != tc.want {
			t.Errorf("MatchesPattern(%q, %q) = %v, want %v", tc.display, tc.pattern, got, tc.want)
		}
	}
}
