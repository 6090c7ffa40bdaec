package sync

import (
	"reflect"
	"testing"

	"github.com/complytools/cacsync/internal/oscal"
)

func labeledControl(id, label string) oscal.Control {
	return oscal.Control{
		ID:    id,
		Props: []oscal.Property{{Name: oscal.PropLabel, Value: label}},
	}
}

func TestCatalogResolverLoad(t *testing.T) {
	catalog := &oscal.Catalog{
		Controls: []oscal.Control{
			labeledControl("ac-1", "AC-1"),
			{ID: "ac-9"}, // no label, skipped
		},
		Groups: []oscal.Group{
			{
				ID: "ac",
				Controls: []oscal.Control{
					{
						ID:    "ac-2",
						Props: []oscal.Property{{Name: oscal.PropLabel, Value: "AC-2"}},
						Controls: []oscal.Control{
							labeledControl("ac-2.1", "AC-2(1)"),
						},
					},
				},
			},
		},
	}

	r := NewCatalogResolver()
	r.Load(catalog)

	if got := r.Len(); got != 3 {
		t.Fatalf("Len() = %d, want 3", got)
	}
	for cac, want := range map[string]string{
		"AC-1":    "ac-1",
		"AC-2":    "ac-2",
		"AC-2(1)": "ac-2.1",
	} {
		got, ok := r.OscalID(cac)
		if !ok || got != want {
			t.Errorf("OscalID(%q) = %q, %v, want %q, true", cac, got, ok, want)
		}
	}
	if _, ok := r.OscalID("AC-9"); ok {
		t.Error("OscalID(AC-9) should not resolve, control has no label")
	}

	wantOrder := []string{"AC-1", "AC-2", "AC-2(1)"}
	if got := r.CacIDs(); !reflect.DeepEqual(got, wantOrder) {
		t.Errorf("CacIDs() = %v, want %v", got, wantOrder)
	}
}

func TestCatalogResolverLoadAccumulates(t *testing.T) {
	r := NewCatalogResolver()
	r.Load(&oscal.Catalog{Controls: []oscal.Control{labeledControl("ac-1", "AC-1")}})
	r.Load(&oscal.Catalog{Controls: []oscal.Control{
		labeledControl("au-1", "AU-1"),
		labeledControl("ac-1-rev", "AC-1"), // later load wins
	}})

	if got, _ := r.OscalID("AC-1"); got != "ac-1-rev" {
		t.Errorf("OscalID(AC-1) = %q, want ac-1-rev", got)
	}
	if got, _ := r.OscalID("AU-1"); got != "au-1" {
		t.Errorf("OscalID(AU-1) = %q, want au-1", got)
	}
	if got := r.Len(); got != 2 {
		t.Errorf("Len() = %d, want 2", got)
	}
}
