package sync

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/complytools/cacsync/internal/cac"
	"github.com/complytools/cacsync/internal/oscal"
	"github.com/complytools/cacsync/internal/yamldoc"
)

func profileJSON(title, withIDs string) string {
	return `{
  "profile": {
    "metadata": {"title": "` + title + `"},
    "imports": [
      {
        "href": "trestle://catalogs/abcd-levels/catalog.json",
        "include-controls": [{"with-ids": [` + withIDs + `]}]
      }
    ]
  }
}`
}

func writeLeveledProfiles(t *testing.T, ws *oscal.Workspace, levels map[string]string) {
	t.Helper()
	for level, withIDs := range levels {
		name := "rhel-abcd-levels-" + level
		writeFile(t,
			filepath.Join(ws.Root, "profiles", name, "profile.json"),
			profileJSON(name, withIDs),
		)
	}
}

func controlLevelsFromFile(t *testing.T, store *cac.Store, controlID string) []string {
	t.Helper()
	ctrl := loadControl(t, store, "abcd-levels", controlID)
	return yamldoc.SeqStrings(yamldoc.Get(ctrl, "levels"))
}

func TestProfileTaskExecute(t *testing.T) {
	ws, store := newSyncFixture(t)
	writeLeveledProfiles(t, ws, map[string]string{
		"low":  `"ac-1", "ac-2"`,
		"high": `"ac-1", "ac-2"`,
	})
	// A profile of another product must not participate.
	writeFile(t, filepath.Join(ws.Root, "profiles", "fedora-xyz-low", "profile.json"), "not json")

	result, err := NewProfileTask(ws, store, "abcd-levels", "rhel").Execute()
	if err != nil {
		t.Fatal(err)
	}

	// AC-2 joins the low baseline; its high entry is implied and dropped.
	if got := controlLevelsFromFile(t, store, "AC-2"); !reflect.DeepEqual(got, []string{"low"}) {
		t.Errorf("AC-2 levels = %v, want [low]", got)
	}
	if got := controlLevelsFromFile(t, store, "AC-1"); !reflect.DeepEqual(got, []string{"low"}) {
		t.Errorf("AC-1 levels = %v, want [low]", got)
	}
	if !result.Changed() {
		t.Error("expected level changes to be reported")
	}
}

func TestProfileTaskRemoval(t *testing.T) {
	ws, store := newSyncFixture(t)
	controlFile := `id: abcd-levels
title: Test Policy
levels:
    - id: low
    - id: medium
      inherits_from:
          - low
    - id: high
      inherits_from:
          - medium
controls:
    - id: AC-1
      levels:
          - low
      status: manual
    - id: AC-2
      levels:
          - low
      status: manual
`
	writeFile(t, store.ControlFile("abcd-levels"), controlFile)
	writeLeveledProfiles(t, ws, map[string]string{
		"low": `"ac-1"`,
	})

	if _, err := NewProfileTask(ws, store, "abcd-levels", "rhel").Execute(); err != nil {
		t.Fatal(err)
	}

	// AC-2 leaves the low baseline and re-anchors at the next level up the
	// inheritance chain.
	if got := controlLevelsFromFile(t, store, "AC-2"); !reflect.DeepEqual(got, []string{"medium"}) {
		t.Errorf("AC-2 levels = %v, want [medium]", got)
	}
	if got := controlLevelsFromFile(t, store, "AC-1"); !reflect.DeepEqual(got, []string{"low"}) {
		t.Errorf("AC-1 levels = %v, want [low]", got)
	}
}

func TestProfileTaskIdempotent(t *testing.T) {
	ws, store := newSyncFixture(t)
	writeLeveledProfiles(t, ws, map[string]string{
		"low":  `"ac-1", "ac-2"`,
		"high": `"ac-1", "ac-2"`,
	})

	if _, err := NewProfileTask(ws, store, "abcd-levels", "rhel").Execute(); err != nil {
		t.Fatal(err)
	}
	first := controlLevelsFromFile(t, store, "AC-2")

	if _, err := NewProfileTask(ws, store, "abcd-levels", "rhel").Execute(); err != nil {
		t.Fatal(err)
	}
	second := controlLevelsFromFile(t, store, "AC-2")

	if !reflect.DeepEqual(first, second) {
		t.Errorf("levels changed between runs: %v then %v", first, second)
	}
}

func TestProfileTaskNoProfilesDir(t *testing.T) {
	ws, store := newSyncFixture(t)

	if _, err := NewProfileTask(ws, store, "abcd-levels", "rhel").Execute(); err == nil {
		t.Fatal("expected an error when the workspace has no profiles")
	}
}
