package sync

import (
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/complytools/cacsync/internal/logging"
	"github.com/complytools/cacsync/internal/yamldoc"
)

// LevelResolver applies per-level control membership changes to control file
// records while honoring level inheritance. A control marked at a base level
// is implicitly a member of every level inheriting from it, so adding a
// control to a derived level must drop redundant derived entries, and
// removing it must re-anchor the control at the next level down the chain.
type LevelResolver struct {
	ancestors  map[string][]string
	controls   map[string]*yaml.Node
	oscalToCac map[string]string
	result     *Result
}

// NewLevelResolver builds a resolver.
//
// ancestors maps each level id to its inheritance chain, most specific
// first (for example high -> [high, medium, low]). controls maps CaC control
// ids to their mapping nodes in the loaded control file. oscalToCac maps
// OSCAL control ids back to CaC control ids.
func NewLevelResolver(
	ancestors map[string][]string,
	controls map[string]*yaml.Node,
	oscalToCac map[string]string,
	result *Result,
) *LevelResolver {
	return &LevelResolver{
		ancestors:  ancestors,
		controls:   controls,
		oscalToCac: oscalToCac,
		result:     result,
	}
}

// Chain returns the longest inheritance chain that contains level and has at
// least one ancestor. Standalone levels yield nil. Equal-length chains are
// broken by sorted level id so repeated runs pick the same chain.
func (l *LevelResolver) Chain(level string) []string {
	ids := make([]string, 0, len(l.ancestors))
	for id := range l.ancestors {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var chain []string
	for _, id := range ids {
		seq := l.ancestors[id]
		if len(seq) > 1 && len(seq) > len(chain) && containsString(seq, level) {
			chain = seq
		}
	}
	return chain
}

// ProcessLevel applies one level's membership delta. add and remove carry
// OSCAL control ids; ids without a CaC counterpart are skipped with a
// warning.
func (l *LevelResolver) ProcessLevel(level string, add, remove []string) {
	chain := l.Chain(level)

	for _, oscalID := range add {
		ctrl, cacID, ok := l.lookup(oscalID)
		if !ok {
			continue
		}
		levels := yamldoc.Ensure(ctrl, "levels", yamldoc.Sequence())

		if !containsString(yamldoc.SeqStrings(levels), level) {
			yamldoc.AppendString(levels, level)
			logging.Info("added level to control",
				logging.Control(cacID),
				logging.Level(level),
			)
			l.result.add(FindingLevelAdded, cacID, level, "")
		}

		if len(chain) == 0 {
			continue
		}
		i := indexString(chain, level)

		// A derived level is implied by its ancestors; entries above the
		// one being added are now redundant.
		for _, higher := range chain[:i] {
			if containsString(yamldoc.SeqStrings(levels), higher) {
				yamldoc.RemoveString(levels, higher)
				l.result.add(FindingLevelRemoved, cacID, higher, "implied by "+level)
			}
		}
		// An already-present ancestor below the added level implies it.
		if intersects(chain[i+1:], yamldoc.SeqStrings(levels)) {
			yamldoc.RemoveString(levels, level)
			l.result.add(FindingLevelRemoved, cacID, level, "implied by lower level")
		}
	}

	for _, oscalID := range remove {
		ctrl, cacID, ok := l.lookup(oscalID)
		if !ok {
			continue
		}
		levels := yamldoc.Ensure(ctrl, "levels", yamldoc.Sequence())

		if containsString(yamldoc.SeqStrings(levels), level) {
			yamldoc.RemoveString(levels, level)
			logging.Info("removed level from control",
				logging.Control(cacID),
				logging.Level(level),
			)
			l.result.add(FindingLevelRemoved, cacID, level, "")
		}

		if len(chain) == 0 {
			continue
		}
		// Dropping a derived level must not also drop the control from the
		// levels that inherited through it.
		i := indexString(chain, level)
		if i-1 >= 0 && !containsString(yamldoc.SeqStrings(levels), chain[i-1]) {
			yamldoc.AppendString(levels, chain[i-1])
			l.result.add(FindingLevelAdded, cacID, chain[i-1], "re-anchored after removing "+level)
		}
	}
}

func (l *LevelResolver) lookup(oscalID string) (*yaml.Node, string, bool) {
	cacID, ok := l.oscalToCac[oscalID]
	if !ok {
		logging.Warn("no content control maps to OSCAL control, skipping",
			logging.Control(oscalID),
		)
		return nil, "", false
	}
	ctrl, ok := l.controls[cacID]
	if !ok {
		logging.Warn("control not present in control file, skipping",
			logging.Control(cacID),
		)
		return nil, "", false
	}
	return ctrl, cacID, true
}

func containsString(list []string, s string) bool {
	return indexString(list, s) >= 0
}

func indexString(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}

func intersects(a, b []string) bool {
	for _, s := range a {
		if containsString(b, s) {
			return true
		}
	}
	return false
}
