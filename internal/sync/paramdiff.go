package sync

import (
	"fmt"
	"sort"
	"strings"

	"github.com/complytools/cacsync/internal/cac"
	"github.com/complytools/cacsync/internal/logging"
	"github.com/complytools/cacsync/internal/yamldoc"
)

// ParameterDiff classifies the difference between a CaC profile's current
// variable values and the parameter set an OSCAL control implementation
// desires. The classification is computed once, at construction:
//
//   - remove: variable ids selected in the profile but absent from OSCAL
//   - add: OSCAL parameters whose variable is not selected in the profile
//   - update: parameters selected with a value OSCAL no longer accepts
type ParameterDiff struct {
	store  *cac.Store
	add    []SetParameterRef
	update map[string][]string
	remove []string
	result *Result
}

// SetParameterRef is the add-side view of an OSCAL parameter: the variable
// id and the acceptable values.
type SetParameterRef struct {
	ID     string
	Values []string
}

// NewParameterDiff computes the three-way classification. profileVars maps
// each selected variable id to its single active value; result may be nil.
func NewParameterDiff(store *cac.Store, profileVars map[string]string, params []SetParameterRef, result *Result) *ParameterDiff {
	d := &ParameterDiff{
		store:  store,
		update: make(map[string][]string),
		result: result,
	}

	desired := make(map[string]bool, len(params))
	for _, p := range params {
		desired[p.ID] = true
	}
	for id := range profileVars {
		if !desired[id] {
			d.remove = append(d.remove, id)
		}
	}
	sort.Strings(d.remove)

	for _, p := range params {
		current, selected := profileVars[p.ID]
		if !selected {
			d.add = append(d.add, p)
			continue
		}
		accepted := false
		for _, v := range p.Values {
			if v == current {
				accepted = true
				break
			}
		}
		if !accepted {
			d.update[p.ID] = p.Values
		}
	}

	return d
}

// Add returns the parameters to introduce into the profile.
func (d *ParameterDiff) Add() []SetParameterRef {
	return d.add
}

// Update returns, per variable id, the acceptable values replacing the
// current selection.
func (d *ParameterDiff) Update() map[string][]string {
	return d.update
}

// Remove returns the variable ids to drop from the profile.
func (d *ParameterDiff) Remove() []string {
	return d.remove
}

// ApplyToken resolves what should happen to an existing `var=value`
// selection token: a non-empty updated token means rewrite in place, removed
// means delete the token, and neither means leave it untouched.
func (d *ParameterDiff) ApplyToken(token string) (updated string, removed bool) {
	id := strings.SplitN(token, "=", 2)[0]
	if values, ok := d.update[id]; ok {
		for _, v := range values {
			updated = id + "=" + v
		}
		return updated, false
	}
	for _, r := range d.remove {
		if r == id {
			return "", true
		}
	}
	return "", false
}

// ValidateVariables checks add/update candidates against the legal option
// sets declared in the content tree, with these outcomes:
//
//   - variable has no definition file: an "add" is dropped with a warning
//     (there is nothing to select against); an "update" is likewise dropped
//   - candidate value not among the declared options: the value is appended
//     to the variable's option file so the selection stays valid
//   - option file cannot be parsed (embedded templating): skipped with a
//     warning, the candidate is kept for application
func (d *ParameterDiff) ValidateVariables() error {
	kept := d.add[:0]
	for _, p := range d.add {
		options, err := d.store.VariableOptions(p.ID)
		if err != nil {
			logging.Warn("skipping option validation, variable file unparsable",
				logging.Variable(p.ID),
				logging.Err(err),
			)
			kept = append(kept, p)
			continue
		}
		if options == nil {
			logging.Warn("variable not found in content tree, dropping addition",
				logging.Variable(p.ID),
			)
			d.result.add(FindingVariableUnknown, "", p.ID, "variable has no definition file")
			continue
		}
		kept = append(kept, p)
		for _, v := range p.Values {
			if _, ok := options[v]; !ok {
				d.appendOption(p.ID, v)
			}
		}
	}
	d.add = kept

	ids := make([]string, 0, len(d.update))
	for id := range d.update {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		options, err := d.store.VariableOptions(id)
		if err != nil {
			logging.Warn("skipping option validation, variable file unparsable",
				logging.Variable(id),
				logging.Err(err),
			)
			continue
		}
		if options == nil {
			logging.Warn("variable not found in content tree, dropping update",
				logging.Variable(id),
			)
			d.result.add(FindingVariableUnknown, "", id, "variable has no definition file")
			delete(d.update, id)
			continue
		}
		for _, v := range d.update[id] {
			if _, ok := options[v]; !ok {
				d.appendOption(id, v)
			}
		}
	}

	return nil
}

// appendOption persists a new legal option (value used as both key and
// label) in the variable's definition file. Files carrying templating
// directives fail to parse and are skipped with a warning.
func (d *ParameterDiff) appendOption(varID, value string) {
	path, err := d.store.VariableFile(varID)
	if err != nil || path == "" {
		return
	}

	doc, err := yamldoc.Load(path)
	if err != nil {
		logging.Warn("failed to process variable file, it may contain templating directives",
			logging.Variable(varID),
			logging.Path(path),
			logging.Err(err),
		)
		return
	}

	options := yamldoc.Ensure(doc.Root(), "options", yamldoc.Mapping())
	if yamldoc.Get(options, value) != nil {
		return
	}
	yamldoc.Set(options, value, yamldoc.Scalar(value))

	if err := doc.Save(); err != nil {
		logging.Warn("failed to write variable file",
			logging.Variable(varID),
			logging.Path(path),
			logging.Err(err),
		)
		return
	}

	logging.Info("added new option to variable file",
		logging.Variable(varID),
		logging.Path(path),
		"option", value,
	)
	d.result.add(FindingOptionAdded, "", varID, value)
}

// String summarizes the diff for logs.
func (d *ParameterDiff) String() string {
	addIDs := make([]string, 0, len(d.add))
	for _, p := range d.add {
		addIDs = append(addIDs, p.ID)
	}
	updateIDs := make([]string, 0, len(d.update))
	for id := range d.update {
		updateIDs = append(updateIDs, id)
	}
	sort.Strings(updateIDs)
	return fmt.Sprintf("parameters added: %v, parameters updated: %v, parameters removed: %v",
		addIDs, updateIDs, d.remove)
}
