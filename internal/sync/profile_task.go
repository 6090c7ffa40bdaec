package sync

import (
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/complytools/cacsync/internal/cac"
	"github.com/complytools/cacsync/internal/logging"
	"github.com/complytools/cacsync/internal/oscal"
	"github.com/complytools/cacsync/internal/yamldoc"
)

// ProfileTask propagates per-level control membership from OSCAL profiles
// into a policy's control file. Every workspace profile whose name carries
// the product and policy id participates; each encodes one security level in
// its metadata title. Profiles are applied base level first so inheritance
// adjustments compose.
type ProfileTask struct {
	ws       *oscal.Workspace
	store    *cac.Store
	policyID string
	product  string
}

// NewProfileTask builds a profile sync task for one policy and product.
func NewProfileTask(ws *oscal.Workspace, store *cac.Store, policyID, product string) *ProfileTask {
	return &ProfileTask{ws: ws, store: store, policyID: policyID, product: product}
}

// Name implements Task.
func (t *ProfileTask) Name() string { return "sync-profile" }

type leveledProfile struct {
	name    string
	level   string
	profile *oscal.Profile
}

// Execute implements Task.
func (t *ProfileTask) Execute() (*Result, error) {
	defer logging.Timer(t.Name())()
	result := &Result{Task: t.Name(), Policy: t.policyID, Product: t.product}

	doc, err := yamldoc.Load(t.store.ControlFile(t.policyID))
	if err != nil {
		return nil, err
	}
	controls := make(map[string]*yaml.Node)
	collectControlNodes(yamldoc.Get(doc.Root(), "controls"), controls)

	policy, err := t.store.LoadPolicy(t.policyID)
	if err != nil {
		return nil, err
	}
	ancestors := make(map[string][]string, len(policy.Levels))
	for _, lvl := range policy.Levels {
		ancestors[lvl.ID] = policy.LevelAncestors(lvl.ID)
	}

	profiles, resolver, err := t.loadProfiles()
	if err != nil {
		return nil, err
	}

	oscalToCac := make(map[string]string)
	for _, c := range policy.AllControls() {
		if oid, ok := resolver.OscalID(c.ID); ok {
			oscalToCac[oid] = c.ID
		}
	}

	// Base levels first: a derived level's adjustments assume its ancestors
	// have already settled.
	sort.SliceStable(profiles, func(i, j int) bool {
		li, lj := len(ancestors[profiles[i].level]), len(ancestors[profiles[j].level])
		if li != lj {
			return li < lj
		}
		return profiles[i].name < profiles[j].name
	})

	lr := NewLevelResolver(ancestors, controls, oscalToCac, result)
	for _, p := range profiles {
		var levelIDs []string
		for _, c := range policy.ControlsOfLevel(p.level) {
			if oid, ok := resolver.OscalID(c.ID); ok {
				levelIDs = append(levelIDs, oid)
			}
		}

		for _, imp := range p.profile.Imports {
			for _, sel := range imp.IncludeControls {
				add := diffStrings(sel.WithIDs, levelIDs)
				remove := diffStrings(levelIDs, sel.WithIDs)
				sort.Strings(add)
				sort.Strings(remove)
				logging.Info("processing level",
					logging.Level(p.level),
					"add", add,
					"remove", remove,
				)
				lr.ProcessLevel(p.level, add, remove)
			}
		}
	}

	if err := doc.Save(); err != nil {
		return nil, err
	}
	return result, nil
}

// loadProfiles reads every workspace profile belonging to this product and
// policy, resolving each into the shared label resolver. The level id is the
// title suffix after "<policy-id>-".
func (t *ProfileTask) loadProfiles() ([]leveledProfile, *CatalogResolver, error) {
	names, err := t.ws.ProfileNames()
	if err != nil {
		return nil, nil, err
	}

	resolver := NewCatalogResolver()
	var profiles []leveledProfile
	for _, name := range names {
		if !strings.Contains(name, t.product+"-"+t.policyID) {
			continue
		}
		prof, err := t.ws.ReadProfile(name)
		if err != nil {
			return nil, nil, err
		}

		catalog, err := t.ws.ResolveProfileCatalog(oscal.ModelDirProfile + "/" + name + "/profile.json")
		if err != nil {
			return nil, nil, err
		}
		resolver.Load(catalog)

		parts := strings.Split(prof.Metadata.Title, t.policyID+"-")
		profiles = append(profiles, leveledProfile{
			name:    name,
			level:   parts[len(parts)-1],
			profile: prof,
		})
	}
	return profiles, resolver, nil
}

// collectControlNodes maps every control record id in a controls sequence,
// nested records included, to its mapping node.
func collectControlNodes(controls *yaml.Node, out map[string]*yaml.Node) {
	if controls == nil || controls.Kind != yaml.SequenceNode {
		return
	}
	for _, ctrl := range controls.Content {
		collectControlNodes(yamldoc.Get(ctrl, "controls"), out)
		out[yamldoc.StringValue(yamldoc.Get(ctrl, "id"))] = ctrl
	}
}
