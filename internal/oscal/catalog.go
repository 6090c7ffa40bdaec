package oscal

import "strings"

// AllControls returns every control in the catalog in document order,
// recursing through groups and sub-controls.
func (c *Catalog) AllControls() []*Control {
	var out []*Control
	collectControls(c.Controls, &out)
	collectGroupControls(c.Groups, &out)
	return out
}

func collectControls(controls []Control, out *[]*Control) {
	for i := range controls {
		ctrl := &controls[i]
		*out = append(*out, ctrl)
		collectControls(ctrl.Controls, out)
	}
}

func collectGroupControls(groups []Group, out *[]*Control) {
	for i := range groups {
		collectControls(groups[i].Controls, out)
		collectGroupControls(groups[i].Groups, out)
	}
}

// Label returns the control's declared external label, or "".
func (c *Control) Label() string {
	v, _ := Prop(c.Props, PropLabel)
	return v
}

// PartProse returns the prose of the named part, including sub-part prose,
// joined by newlines. Returns "" when the control has no such part.
func (c *Control) PartProse(name string) string {
	var lines []string
	for i := range c.Parts {
		if c.Parts[i].Name == name {
			collectProse(&c.Parts[i], &lines)
		}
	}
	return strings.Join(lines, "\n")
}

func collectProse(p *Part, lines *[]string) {
	if p.Prose != "" {
		*lines = append(*lines, p.Prose)
	}
	for i := range p.Parts {
		collectProse(&p.Parts[i], lines)
	}
}
