package sync

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/complytools/cacsync/internal/logging"
	"github.com/complytools/cacsync/internal/oscal"
	"github.com/complytools/cacsync/internal/yamldoc"
)

// missingRuleComment prefixes the annotation attached when an OSCAL-asserted
// rule cannot be found anywhere in the content tree.
const missingRuleComment = "TODO: Need to implement rule "

// Merger applies component-definition deltas to control file records in
// place: rule list reconciliation, variable selection rewrites, status
// mapping, and notes folding. It never touches fields it does not own, and
// every comment it attaches deduplicates by substring so repeated runs are
// no-ops.
type Merger struct {
	resolver     *CatalogResolver
	diff         *ParameterDiff
	ruleUniverse map[string]bool
	requirements map[string]oscal.ImplementedRequirement
	result       *Result
}

// NewMerger builds a merger for one control implementation's requirement
// set. ruleIDs is the content-wide rule id universe.
func NewMerger(
	resolver *CatalogResolver,
	diff *ParameterDiff,
	ruleIDs []string,
	requirements map[string]oscal.ImplementedRequirement,
	result *Result,
) *Merger {
	universe := make(map[string]bool, len(ruleIDs))
	for _, id := range ruleIDs {
		universe[id] = true
	}
	return &Merger{
		resolver:     resolver,
		diff:         diff,
		ruleUniverse: universe,
		requirements: requirements,
		result:       result,
	}
}

// MergeControls walks a controls sequence depth-first, children before their
// parent, and merges every control that maps to an OSCAL requirement.
// Controls without a mapping are skipped, not failed.
func (m *Merger) MergeControls(controls *yaml.Node) {
	if controls == nil || controls.Kind != yaml.SequenceNode {
		return
	}
	for _, ctrl := range controls.Content {
		if sub := yamldoc.Get(ctrl, "controls"); sub != nil && len(sub.Content) > 0 {
			m.MergeControls(sub)
		}

		cacID := yamldoc.StringValue(yamldoc.Get(ctrl, "id"))
		oscalID, ok := m.resolver.OscalID(cacID)
		if !ok {
			continue
		}
		req, ok := m.requirements[oscalID]
		if !ok {
			continue
		}
		m.mergeControl(ctrl, req)
	}
}

func (m *Merger) mergeControl(ctrl *yaml.Node, req oscal.ImplementedRequirement) {
	cacID := yamldoc.StringValue(yamldoc.Get(ctrl, "id"))
	rules := yamldoc.Ensure(ctrl, "rules", yamldoc.Sequence())

	// Comments riding on list elements vanish with the elements; snapshot
	// them so an emptied list can hand them to the rules key.
	elemComments := yamldoc.ElementComments(rules)

	var removedVars []string
	var currentRules []string
	for _, entry := range rules.Content {
		token := entry.Value
		if !strings.Contains(token, "=") {
			currentRules = append(currentRules, token)
			continue
		}
		updated, removed := m.diff.ApplyToken(token)
		switch {
		case removed:
			removedVars = append(removedVars, token)
		case updated != "" && updated != token:
			// Rewriting the node value in place keeps any attached comment.
			entry.Value = updated
			m.result.add(FindingVariableUpdated, cacID, updated, "")
		}
	}
	for _, token := range removedVars {
		yamldoc.RemoveString(rules, token)
		m.result.add(FindingVariableRemoved, cacID, token, "")
	}

	desired := oscal.PropValues(req.Props, oscal.PropRuleID)

	for _, rule := range diffStrings(currentRules, desired) {
		yamldoc.RemoveString(rules, rule)
		logging.Info("removed rule from control",
			logging.Control(cacID),
			logging.Rule(rule),
		)
		m.result.add(FindingRuleRemoved, cacID, rule, "")
	}

	var missing []string
	for _, rule := range diffStrings(desired, currentRules) {
		if m.ruleUniverse[rule] {
			yamldoc.AppendString(rules, rule)
			logging.Info("added rule to control",
				logging.Control(cacID),
				logging.Rule(rule),
			)
			m.result.add(FindingRuleAdded, cacID, rule, "")
		} else {
			missing = append(missing, rule)
		}
	}

	// An emptied rules list would drop the comments its elements carried;
	// relocate them above the rules key so the file stays reviewable.
	if len(rules.Content) == 0 && len(elemComments) > 0 {
		existing := yamldoc.Comments(ctrl)
		for _, c := range elemComments {
			if !yamldoc.HasComment(existing, strings.TrimLeft(c, "# ")) {
				yamldoc.AddCommentBeforeKey(ctrl, "rules", c)
			}
		}
	}

	m.annotateMissingRules(ctrl, rules, missing)
	m.updateStatus(ctrl, req)
	m.updateNotes(ctrl, req)
}

// annotateMissingRules attaches one TODO comment per missing rule, above the
// first rules element (or the rules key when the list is empty). Existing
// comments are matched by substring so repeated runs never accumulate.
func (m *Merger) annotateMissingRules(ctrl, rules *yaml.Node, missing []string) {
	if len(missing) == 0 {
		return
	}
	cacID := yamldoc.StringValue(yamldoc.Get(ctrl, "id"))
	existing := yamldoc.Comments(ctrl)

	for _, rule := range missing {
		logging.Warn("rule does not exist in content tree",
			logging.Control(cacID),
			logging.Rule(rule),
		)
		m.result.add(FindingRuleMissing, cacID, rule, "annotated with TODO comment")

		comment := missingRuleComment + rule
		if yamldoc.HasComment(existing, comment) {
			continue
		}
		if len(rules.Content) > 0 {
			yamldoc.AddCommentBeforeElem(rules, 0, comment)
		} else {
			yamldoc.AddCommentBeforeKey(ctrl, "rules", comment)
		}
		existing = append(existing, comment)
	}
}

// diffStrings returns the elements of a absent from b, preserving a's order.
func diffStrings(a, b []string) []string {
	inB := make(map[string]bool, len(b))
	for _, s := range b {
		inB[s] = true
	}
	var out []string
	for _, s := range a {
		if !inB[s] {
			out = append(out, s)
		}
	}
	return out
}
