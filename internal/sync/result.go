package sync

import "fmt"

// FindingKind classifies one observation made during a sync run.
type FindingKind string

const (
	// FindingRuleAdded indicates a rule was appended to a rules list.
	FindingRuleAdded FindingKind = "rule-added"

	// FindingRuleRemoved indicates a rule was deleted from a rules list or
	// profile selection.
	FindingRuleRemoved FindingKind = "rule-removed"

	// FindingRuleMissing indicates an OSCAL-asserted rule that exists
	// nowhere in the content tree; the control was annotated instead.
	FindingRuleMissing FindingKind = "rule-missing"

	// FindingVariableAdded indicates a variable selection was appended.
	FindingVariableAdded FindingKind = "variable-added"

	// FindingVariableUpdated indicates a variable selection was rewritten
	// to a new value.
	FindingVariableUpdated FindingKind = "variable-updated"

	// FindingVariableRemoved indicates a variable selection was deleted.
	FindingVariableRemoved FindingKind = "variable-removed"

	// FindingVariableUnknown indicates an OSCAL parameter whose variable id
	// has no definition file; the addition was dropped.
	FindingVariableUnknown FindingKind = "variable-unknown"

	// FindingOptionAdded indicates a value was appended to a variable's
	// legal option file.
	FindingOptionAdded FindingKind = "option-added"

	// FindingStatusChanged indicates a control status was rewritten.
	FindingStatusChanged FindingKind = "status-changed"

	// FindingStatusAmbiguous indicates the status mapping had multiple
	// candidates; the control was annotated instead.
	FindingStatusAmbiguous FindingKind = "status-ambiguous"

	// FindingNotesUpdated indicates statement prose was folded into notes.
	FindingNotesUpdated FindingKind = "notes-updated"

	// FindingDescriptionUpdated indicates catalog prose was folded into a
	// description field.
	FindingDescriptionUpdated FindingKind = "description-updated"

	// FindingLevelAdded indicates a level was appended to a control.
	FindingLevelAdded FindingKind = "level-added"

	// FindingLevelRemoved indicates a level was removed from a control.
	FindingLevelRemoved FindingKind = "level-removed"
)

// annotationKinds are findings that surface as comments in the mutated
// documents and deserve reviewer attention.
var annotationKinds = map[FindingKind]bool{
	FindingRuleMissing:     true,
	FindingStatusAmbiguous: true,
	FindingVariableUnknown: true,
}

// Finding records one observation: what happened, to which control (or
// profile), and to which rule/variable/level.
type Finding struct {
	Kind    FindingKind
	Control string
	Subject string
	Detail  string
}

// String renders a finding for logs and summaries.
func (f Finding) String() string {
	if f.Detail != "" {
		return fmt.Sprintf("%s %s: %s (%s)", f.Control, f.Kind, f.Subject, f.Detail)
	}
	return fmt.Sprintf("%s %s: %s", f.Control, f.Kind, f.Subject)
}

// Result accumulates the findings of one task execution.
type Result struct {
	// Task names the task type that produced the result.
	Task string

	// Product, Policy, and Profile identify the sync scope where known.
	Product string
	Policy  string
	Profile string

	// Findings are the observations in the order they were made.
	Findings []Finding
}

func (r *Result) add(kind FindingKind, control, subject, detail string) {
	if r == nil {
		return
	}
	r.Findings = append(r.Findings, Finding{Kind: kind, Control: control, Subject: subject, Detail: detail})
}

// Changed reports whether the run mutated anything.
func (r *Result) Changed() bool {
	return r != nil && len(r.Findings) > 0
}

// ByKind returns the findings of one kind, in order.
func (r *Result) ByKind(kind FindingKind) []Finding {
	if r == nil {
		return nil
	}
	var out []Finding
	for _, f := range r.Findings {
		if f.Kind == kind {
			out = append(out, f)
		}
	}
	return out
}

// Annotations returns the findings that were written into the documents as
// comments for human follow-up.
func (r *Result) Annotations() []Finding {
	if r == nil {
		return nil
	}
	var out []Finding
	for _, f := range r.Findings {
		if annotationKinds[f.Kind] {
			out = append(out, f)
		}
	}
	return out
}
