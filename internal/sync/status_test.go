package sync

import (
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/complytools/cacsync/internal/oscal"
	"github.com/complytools/cacsync/internal/yamldoc"
)

func statusMerger(result *Result) *Merger {
	return NewMerger(NewCatalogResolver(), nil, nil, nil, result)
}

func statusReq(oscalStatus string) oscal.ImplementedRequirement {
	return oscal.ImplementedRequirement{
		ControlID: "ac-1",
		Props: []oscal.Property{
			{Name: oscal.PropImplementationStatus, Value: oscalStatus},
		},
	}
}

func TestUpdateStatus(t *testing.T) {
	tests := []struct {
		name        string
		cacStatus   string
		oscalStatus string
		wantStatus  string
		wantChange  bool
	}{
		{"consistent status is kept", StatusAutomated, OscalStatusImplemented, StatusAutomated, false},
		{"single candidate applied", StatusManual, OscalStatusNotApplicable, StatusNotApplicable, true},
		{"partial applied", StatusAutomated, OscalStatusPartial, StatusPartial, true},
		{"planned applied", StatusAutomated, OscalStatusPlanned, StatusPlanned, true},
		{"ambiguous leaves status alone", StatusManual, OscalStatusImplemented, StatusManual, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := parseYAML(t, "id: AC-1\nstatus: "+tt.cacStatus+"\n")
			result := &Result{}
			statusMerger(result).updateStatus(ctrl, statusReq(tt.oscalStatus))

			if got := yamldoc.StringValue(yamldoc.Get(ctrl, "status")); got != tt.wantStatus {
				t.Errorf("status = %q, want %q", got, tt.wantStatus)
			}
			if got := len(result.ByKind(FindingStatusChanged)) > 0; got != tt.wantChange {
				t.Errorf("status-changed recorded = %v, want %v", got, tt.wantChange)
			}
		})
	}
}

func TestUpdateStatusAmbiguousComment(t *testing.T) {
	ctrl := parseYAML(t, "id: AC-1\nstatus: partial\n")
	want := "The status should be updated to one of " +
		"['inherently met', 'documentation', 'automated', 'supported']"

	for i := 0; i < 2; i++ {
		result := &Result{}
		statusMerger(result).updateStatus(ctrl, statusReq(OscalStatusImplemented))
		if i == 0 && len(result.ByKind(FindingStatusAmbiguous)) != 1 {
			t.Fatalf("first run: status-ambiguous findings = %v", result.Findings)
		}
		if i == 1 && len(result.Findings) != 0 {
			t.Fatalf("second run should be a no-op, findings = %v", result.Findings)
		}
	}

	comments := strings.Join(yamldoc.Comments(ctrl), "\n")
	if got := strings.Count(comments, want); got != 1 {
		t.Errorf("comment appears %d times, want 1\ncomments: %s", got, comments)
	}
	if got := yamldoc.StringValue(yamldoc.Get(ctrl, "status")); got != StatusPartial {
		t.Errorf("status = %q, want untouched", got)
	}
}

func TestUpdateStatusNoProp(t *testing.T) {
	ctrl := parseYAML(t, "id: AC-1\nstatus: manual\n")
	statusMerger(&Result{}).updateStatus(ctrl, oscal.ImplementedRequirement{ControlID: "ac-1"})

	if got := yamldoc.StringValue(yamldoc.Get(ctrl, "status")); got != StatusManual {
		t.Errorf("status = %q, want untouched when no status property exists", got)
	}
}

func statements(pairs ...string) []oscal.Statement {
	var out []oscal.Statement
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, oscal.Statement{
			StatementID: "ac-1_smt." + pairs[i],
			Description: pairs[i+1],
		})
	}
	return out
}

func TestUpdateNotes(t *testing.T) {
	tests := []struct {
		name  string
		notes string
		stmts []oscal.Statement
		want  string
	}{
		{
			name:  "statements fill empty notes",
			notes: "",
			stmts: statements("a", "Org control A.", "b", "Org control B."),
			want:  "Section a: Org control A.\nSection b: Org control B.",
		},
		{
			name:  "free-form preamble survives",
			notes: "General remark.",
			stmts: statements("a", "Org control A."),
			want:  "General remark.\nSection a: Org control A.",
		},
		{
			name:  "old sections replaced, preamble kept",
			notes: "Intro. Section a: old text.",
			stmts: statements("a", "New text."),
			want:  "Intro. Section a: New text.",
		},
		{
			name:  "notes starting with a section are replaced",
			notes: "Section a: old text.",
			stmts: statements("b", "New text."),
			want:  "Section b: New text.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := "id: AC-1\nstatus: manual\n"
			if tt.notes != "" {
				src += "notes: " + `"` + strings.ReplaceAll(tt.notes, `"`, `\"`) + `"` + "\n"
			}
			ctrl := parseYAML(t, src)

			statusMerger(&Result{}).updateNotes(ctrl, oscal.ImplementedRequirement{
				ControlID:  "ac-1",
				Statements: tt.stmts,
			})

			if got := yamldoc.StringValue(yamldoc.Get(ctrl, "notes")); got != tt.want {
				t.Errorf("notes = %q, want %q", got, tt.want)
			}
			if node := yamldoc.Get(ctrl, "notes"); node.Style != yaml.LiteralStyle {
				t.Errorf("notes style = %v, want literal block", node.Style)
			}
		})
	}
}

func TestUpdateNotesNoopWithoutInput(t *testing.T) {
	ctrl := parseYAML(t, "id: AC-1\nstatus: manual\n")
	statusMerger(&Result{}).updateNotes(ctrl, oscal.ImplementedRequirement{ControlID: "ac-1"})

	if yamldoc.Get(ctrl, "notes") != nil {
		t.Error("notes field should not be created when there is nothing to fold")
	}
}

func TestUpdateNotesKeepsPlainNotesWithoutStatements(t *testing.T) {
	ctrl := parseYAML(t, "id: AC-1\nstatus: manual\nnotes: Keep me.\n")
	statusMerger(&Result{}).updateNotes(ctrl, oscal.ImplementedRequirement{ControlID: "ac-1"})

	if got := yamldoc.StringValue(yamldoc.Get(ctrl, "notes")); got != "Keep me." {
		t.Errorf("notes = %q, want untouched", got)
	}
}
