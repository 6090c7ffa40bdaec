package sync

import (
	"os"
	"testing"

	"github.com/complytools/cacsync/internal/yamldoc"
)

func TestCatalogTaskExecute(t *testing.T) {
	ws, store := newSyncFixture(t)
	task := NewCatalogTask(ws, store, "abcd-levels")

	result, err := task.Execute()
	if err != nil {
		t.Fatal(err)
	}

	ac1 := loadControl(t, store, "abcd-levels", "AC-1")
	want := "The organization:\na. Develops an access control policy."
	if got := yamldoc.StringValue(yamldoc.Get(ac1, "description")); got != want {
		t.Errorf("AC-1 description = %q, want %q", got, want)
	}

	// AC-2 has no statement part and no existing description, so it gains
	// nothing.
	ac2 := loadControl(t, store, "abcd-levels", "AC-2")
	if node := yamldoc.Get(ac2, "description"); node != nil {
		t.Errorf("AC-2 description = %q, want no field added", yamldoc.StringValue(node))
	}

	updated := result.ByKind(FindingDescriptionUpdated)
	if len(updated) != 1 || updated[0].Control != "AC-1" {
		t.Errorf("description-updated findings = %v, want one for AC-1", updated)
	}
}

func TestCatalogTaskIdempotent(t *testing.T) {
	ws, store := newSyncFixture(t)

	if _, err := NewCatalogTask(ws, store, "abcd-levels").Execute(); err != nil {
		t.Fatal(err)
	}
	first, err := os.ReadFile(store.ControlFile("abcd-levels"))
	if err != nil {
		t.Fatal(err)
	}

	result, err := NewCatalogTask(ws, store, "abcd-levels").Execute()
	if err != nil {
		t.Fatal(err)
	}
	if result.Changed() {
		t.Errorf("second run reported findings: %v", result.Findings)
	}

	second, err := os.ReadFile(store.ControlFile("abcd-levels"))
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(second) {
		t.Error("second run changed the control file")
	}
}

func TestCatalogTaskMissingCatalog(t *testing.T) {
	ws, store := newSyncFixture(t)
	task := NewCatalogTask(ws, store, "no-such-policy")

	if _, err := task.Execute(); err == nil {
		t.Fatal("expected an error for a missing catalog")
	}
}
