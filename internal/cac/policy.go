package cac

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Level is a security baseline declared by a policy, optionally inheriting
// the controls of less specific levels.
type Level struct {
	ID           string   `yaml:"id"`
	InheritsFrom []string `yaml:"inherits_from"`
}

// PolicyControl is the level-relevant slice of a control record, nesting
// child controls the way control files do.
type PolicyControl struct {
	ID       string          `yaml:"id"`
	Levels   []string        `yaml:"levels"`
	Controls []PolicyControl `yaml:"controls"`
}

// Policy is the control-manager view of one control file: its declared
// levels and control tree.
type Policy struct {
	ID       string          `yaml:"id"`
	Title    string          `yaml:"title"`
	Levels   []Level         `yaml:"levels"`
	Controls []PolicyControl `yaml:"controls"`
}

// LoadPolicy parses the control file of a policy id.
func (s *Store) LoadPolicy(policyID string) (*Policy, error) {
	path := s.ControlFile(policyID)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy %s: %w", policyID, err)
	}

	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse policy %s: %w", policyID, err)
	}
	if p.ID == "" {
		p.ID = policyID
	}
	return &p, nil
}

func (p *Policy) level(id string) *Level {
	for i := range p.Levels {
		if p.Levels[i].ID == id {
			return &p.Levels[i]
		}
	}
	return nil
}

// LevelAncestors returns the inheritance chain of a level ordered from the
// level itself (most specific) down to the most general ancestor. A level
// with no inheritance yields a single-element chain.
func (p *Policy) LevelAncestors(id string) []string {
	chain := []string{id}
	seen := map[string]bool{id: true}
	cur := p.level(id)
	for cur != nil && len(cur.InheritsFrom) > 0 {
		next := p.level(cur.InheritsFrom[0])
		if next == nil || seen[next.ID] {
			break
		}
		chain = append(chain, next.ID)
		seen[next.ID] = true
		cur = next
	}
	return chain
}

// AllControls returns every control in the policy, recursing through nested
// controls, in document order.
func (p *Policy) AllControls() []*PolicyControl {
	var out []*PolicyControl
	collectPolicyControls(p.Controls, &out)
	return out
}

func collectPolicyControls(controls []PolicyControl, out *[]*PolicyControl) {
	for i := range controls {
		c := &controls[i]
		*out = append(*out, c)
		collectPolicyControls(c.Controls, out)
	}
}

// ControlsOfLevel returns the controls that participate in a level: a
// control belongs to every level whose ancestor chain contains one of the
// control's declared levels.
func (p *Policy) ControlsOfLevel(levelID string) []*PolicyControl {
	ancestors := make(map[string]bool)
	for _, id := range p.LevelAncestors(levelID) {
		ancestors[id] = true
	}

	var out []*PolicyControl
	for _, c := range p.AllControls() {
		for _, l := range c.Levels {
			if ancestors[l] {
				out = append(out, c)
				break
			}
		}
	}
	return out
}
