package sync

import (
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/complytools/cacsync/internal/logging"
	"github.com/complytools/cacsync/internal/oscal"
	"github.com/complytools/cacsync/internal/yamldoc"
)

// CaC control statuses.
const (
	StatusInherentlyMet = "inherently met"
	StatusDocumentation = "documentation"
	StatusAutomated     = "automated"
	StatusSupported     = "supported"
	StatusDoesNotMeet   = "does not meet"
	StatusManual        = "manual"
	StatusPending       = "pending"
	StatusPartial       = "partial"
	StatusNotApplicable = "not applicable"
	StatusPlanned       = "planned"
)

// OSCAL implementation-status values.
const (
	OscalStatusImplemented   = "implemented"
	OscalStatusAlternative   = "alternative"
	OscalStatusPartial       = "partial"
	OscalStatusNotApplicable = "not-applicable"
	OscalStatusPlanned       = "planned"
)

// statusMapping lists, per OSCAL implementation-status, the CaC statuses
// consistent with it. A current CaC status already in the list is preserved;
// a single candidate is applied; multiple candidates leave the choice to a
// human via a comment.
var statusMapping = map[string][]string{
	OscalStatusImplemented:   {StatusInherentlyMet, StatusDocumentation, StatusAutomated, StatusSupported},
	OscalStatusAlternative:   {StatusDoesNotMeet, StatusManual, StatusPending},
	OscalStatusPartial:       {StatusPartial},
	OscalStatusNotApplicable: {StatusNotApplicable},
	OscalStatusPlanned:       {StatusPlanned},
}

var (
	sectionSplitRe  = regexp.MustCompile(`Section [a-zA-Z]`)
	sectionSearchRe = regexp.MustCompile(`Section [a-zA-Z]:.+`)
)

func (m *Merger) updateStatus(ctrl *yaml.Node, req oscal.ImplementedRequirement) {
	oscalStatus, ok := oscal.Prop(req.Props, oscal.PropImplementationStatus)
	if !ok {
		return
	}

	cacID := yamldoc.StringValue(yamldoc.Get(ctrl, "id"))
	candidates, ok := statusMapping[oscalStatus]
	if !ok {
		logging.Warn("unrecognized implementation status",
			logging.Control(cacID),
			"status", oscalStatus,
		)
		return
	}

	cacStatus := yamldoc.StringValue(yamldoc.Get(ctrl, "status"))
	for _, c := range candidates {
		if c == cacStatus {
			return
		}
	}

	if len(candidates) == 1 {
		yamldoc.Set(ctrl, "status", yamldoc.Scalar(candidates[0]))
		logging.Info("changed control status",
			logging.Control(cacID),
			"from", cacStatus,
			"to", candidates[0],
		)
		m.result.add(FindingStatusChanged, cacID, candidates[0], "was "+cacStatus)
		return
	}

	comment := "The status should be updated to one of " + quoteList(candidates)
	if yamldoc.HasComment(yamldoc.Comments(ctrl), comment) {
		return
	}
	yamldoc.AddCommentBeforeKey(ctrl, "status", comment)
	logging.Info("status mapping is ambiguous, annotating control",
		logging.Control(cacID),
		"candidates", quoteList(candidates),
	)
	m.result.add(FindingStatusAmbiguous, cacID, oscalStatus, "candidates "+quoteList(candidates))
}

// quoteList renders candidates as ['a', 'b'] to match the annotation format
// reviewers already grep for in existing content repositories.
func quoteList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = "'" + v + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// updateNotes folds OSCAL statement prose into the control's notes field.
// Each statement becomes a "Section <id>: <description>" line; free-form
// prose preceding the first section marker in the existing notes survives the
// rewrite.
func (m *Merger) updateNotes(ctrl *yaml.Node, req oscal.ImplementedRequirement) {
	notes := yamldoc.StringValue(yamldoc.Get(ctrl, "notes"))
	if notes == "" && len(req.Statements) == 0 {
		return
	}
	yamldoc.Ensure(ctrl, "notes", yamldoc.Scalar(""))

	lines := make([]string, 0, len(req.Statements))
	for _, stmt := range req.Statements {
		parts := strings.Split(stmt.StatementID, "_smt.")
		section := parts[len(parts)-1]
		lines = append(lines, "Section "+section+": "+stmt.Description)
	}
	combined := strings.Join(lines, "\n")

	cacID := yamldoc.StringValue(yamldoc.Get(ctrl, "id"))
	split := sectionSplitRe.Split(notes, 2)
	if len(split) == 1 {
		preamble := split[0]
		switch {
		case preamble == "" || sectionSearchRe.MatchString(preamble):
			yamldoc.Set(ctrl, "notes", yamldoc.LiteralScalar(combined))
			m.result.add(FindingNotesUpdated, cacID, "notes", "")
		case combined != "":
			yamldoc.Set(ctrl, "notes", yamldoc.LiteralScalar(preamble+"\n"+combined))
			m.result.add(FindingNotesUpdated, cacID, "notes", "")
		}
		return
	}

	preamble := split[0]
	if sectionSearchRe.MatchString(preamble) {
		preamble = split[1]
	}
	yamldoc.Set(ctrl, "notes", yamldoc.LiteralScalar(preamble+combined))
	m.result.add(FindingNotesUpdated, cacID, "notes", "")
}
