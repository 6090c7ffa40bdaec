package sync

import (
	"fmt"
	"strings"

	"github.com/complytools/cacsync/internal/cac"
	"github.com/complytools/cacsync/internal/logging"
	"github.com/complytools/cacsync/internal/oscal"
	"github.com/complytools/cacsync/internal/yamldoc"
)

// ComponentDefinitionTask diffs a product's OSCAL component definition
// against its CaC profile and control files and applies the deltas: rule
// selections, variable values and legal options, implementation statuses,
// and statement notes.
type ComponentDefinitionTask struct {
	ws           *oscal.Workspace
	store        *cac.Store
	product      string
	oscalProfile string
}

// NewComponentDefinitionTask builds a component-definition sync task. The
// component definition is looked up under <product>/<oscalProfile> in the
// workspace.
func NewComponentDefinitionTask(ws *oscal.Workspace, store *cac.Store, product, oscalProfile string) *ComponentDefinitionTask {
	return &ComponentDefinitionTask{ws: ws, store: store, product: product, oscalProfile: oscalProfile}
}

// Name implements Task.
func (t *ComponentDefinitionTask) Name() string { return "sync-component-definition" }

// Execute implements Task.
func (t *ComponentDefinitionTask) Execute() (*Result, error) {
	defer logging.Timer(t.Name())()
	result := &Result{Task: t.Name(), Product: t.product, Profile: t.oscalProfile}

	cdName := t.product + "/" + t.oscalProfile
	cd, err := t.ws.ReadComponentDefinition(cdName)
	if err != nil {
		return nil, err
	}

	var component *oscal.DefinedComponent
	for i := range cd.Components {
		if cd.Components[i].Title == t.product {
			component = &cd.Components[i]
			break
		}
	}
	if component == nil {
		return nil, fmt.Errorf("component %s not found in %s", t.product, t.ws.ComponentDefinitionPath(cdName))
	}

	ruleIDs, err := t.store.RuleIDs()
	if err != nil {
		return nil, err
	}
	oscalRules := make(map[string]bool)
	for _, r := range oscal.PropValues(component.Props, oscal.PropRuleID) {
		oscalRules[r] = true
	}

	profiles, err := t.store.ProfilesForProduct(t.product)
	if err != nil {
		return nil, err
	}

	for _, ci := range component.ControlImplementations {
		profileID, ok := oscal.Prop(ci.Props, oscal.PropFrameworkShortName)
		if !ok {
			return nil, fmt.Errorf("no profile id found on control implementation of component %s", component.Title)
		}
		logging.Debug("syncing control implementation",
			logging.Product(t.product),
			logging.Profile(profileID),
		)

		reqs := make(map[string]oscal.ImplementedRequirement, len(ci.ImplementedRequirements))
		for _, req := range ci.ImplementedRequirements {
			reqs[req.ControlID] = req
		}

		resolver := NewCatalogResolver()
		catalog, err := t.ws.ResolveProfileCatalog(ci.Source)
		if err != nil {
			return nil, err
		}
		resolver.Load(catalog)

		var selection *cac.ProfileSelections
		for i := range profiles {
			if profiles[i].ProfileID == profileID {
				selection = &profiles[i]
				break
			}
		}
		if selection == nil {
			return nil, fmt.Errorf("profile %s not found for product %s", profileID, t.product)
		}

		diff := NewParameterDiff(t.store, selection.Variables, setParameterRefs(ci.SetParameters), result)
		if err := diff.ValidateVariables(); err != nil {
			return nil, err
		}
		logging.Info("parameter diff computed",
			logging.Profile(profileID),
			"diff", diff.String(),
		)

		policyIDs, err := t.syncProfile(profileID, diff, oscalRules, result)
		if err != nil {
			return nil, err
		}
		for _, policyID := range policyIDs {
			if err := t.mergeControlFile(policyID, resolver, diff, ruleIDs, reqs, result); err != nil {
				return nil, err
			}
		}
	}

	return result, nil
}

// syncProfile rewrites the product profile's selections list: variable
// tokens follow the parameter diff, rule tokens the component no longer
// asserts are dropped, and new parameters are appended as var=value tokens.
// It returns the policy ids the profile references, first-seen order,
// deduplicated.
func (t *ComponentDefinitionTask) syncProfile(profileID string, diff *ParameterDiff, oscalRules map[string]bool, result *Result) ([]string, error) {
	doc, err := yamldoc.Load(t.store.ProfilePath(t.product, profileID))
	if err != nil {
		return nil, err
	}
	selections := yamldoc.Ensure(doc.Root(), "selections", yamldoc.Sequence())

	var policyIDs []string
	seenPolicy := make(map[string]bool)
	var removedVars, removedRules []string
	for _, entry := range selections.Content {
		token := entry.Value
		switch {
		case strings.Contains(token, ":"):
			pid := strings.SplitN(token, ":", 2)[0]
			if !seenPolicy[pid] {
				seenPolicy[pid] = true
				policyIDs = append(policyIDs, pid)
			}
		case strings.Contains(token, "="):
			updated, removed := diff.ApplyToken(token)
			switch {
			case removed:
				removedVars = append(removedVars, token)
			case updated != "" && updated != token:
				entry.Value = updated
				result.add(FindingVariableUpdated, profileID, updated, "")
			}
		default:
			if !oscalRules[token] {
				removedRules = append(removedRules, token)
			}
		}
	}

	for _, token := range removedVars {
		yamldoc.RemoveString(selections, token)
		result.add(FindingVariableRemoved, profileID, token, "")
	}
	for _, p := range diff.Add() {
		for _, v := range p.Values {
			yamldoc.AppendString(selections, p.ID+"="+v)
			logging.Info("added variable to profile",
				logging.Profile(profileID),
				logging.Variable(p.ID),
			)
			result.add(FindingVariableAdded, profileID, p.ID+"="+v, "")
		}
	}
	for _, rule := range removedRules {
		yamldoc.RemoveString(selections, rule)
		logging.Info("removed rule from profile",
			logging.Profile(profileID),
			logging.Rule(rule),
		)
		result.add(FindingRuleRemoved, profileID, rule, "not asserted by component")
	}

	if err := doc.Save(); err != nil {
		return nil, err
	}
	return policyIDs, nil
}

func (t *ComponentDefinitionTask) mergeControlFile(
	policyID string,
	resolver *CatalogResolver,
	diff *ParameterDiff,
	ruleIDs []string,
	reqs map[string]oscal.ImplementedRequirement,
	result *Result,
) error {
	doc, err := yamldoc.Load(t.store.ControlFile(policyID))
	if err != nil {
		return err
	}
	merger := NewMerger(resolver, diff, ruleIDs, reqs, result)
	merger.MergeControls(yamldoc.Get(doc.Root(), "controls"))
	return doc.Save()
}

func setParameterRefs(params []oscal.SetParameter) []SetParameterRef {
	refs := make([]SetParameterRef, 0, len(params))
	for _, p := range params {
		refs = append(refs, SetParameterRef{ID: p.ParamID, Values: p.Values})
	}
	return refs
}
