// Package oscal provides a read-only typed store for the OSCAL documents a
// sync run consumes: catalogs, profiles, and component definitions laid out
// in a trestle-style workspace.
package oscal

// Property is a name/value annotation carried by OSCAL objects.
type Property struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Part is a named prose section of a control (statements, guidance, ...).
type Part struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Prose string `json:"prose,omitempty"`
	Parts []Part `json:"parts,omitempty"`
}

// Control is a catalog control, possibly nesting sub-controls.
type Control struct {
	ID       string     `json:"id"`
	Title    string     `json:"title,omitempty"`
	Props    []Property `json:"props,omitempty"`
	Parts    []Part     `json:"parts,omitempty"`
	Controls []Control  `json:"controls,omitempty"`
}

// Group is a catalog grouping of controls.
type Group struct {
	ID       string    `json:"id,omitempty"`
	Title    string    `json:"title,omitempty"`
	Groups   []Group   `json:"groups,omitempty"`
	Controls []Control `json:"controls,omitempty"`
}

// Metadata carries the document title.
type Metadata struct {
	Title string `json:"title"`
}

// Catalog is an OSCAL control catalog.
type Catalog struct {
	UUID     string    `json:"uuid,omitempty"`
	Metadata Metadata  `json:"metadata"`
	Groups   []Group   `json:"groups,omitempty"`
	Controls []Control `json:"controls,omitempty"`
}

// SelectControls names controls included by a profile import.
type SelectControls struct {
	WithIDs []string `json:"with-ids,omitempty"`
}

// Import references a source catalog or profile and the controls to include.
type Import struct {
	Href            string           `json:"href"`
	IncludeControls []SelectControls `json:"include-controls,omitempty"`
}

// Profile is an OSCAL profile: a selection of controls over imports.
type Profile struct {
	UUID     string   `json:"uuid,omitempty"`
	Metadata Metadata `json:"metadata"`
	Imports  []Import `json:"imports"`
}

// SetParameter assigns acceptable values to a parameter id.
type SetParameter struct {
	ParamID string   `json:"param-id"`
	Values  []string `json:"values"`
}

// Statement is per-section implementation prose on a requirement.
type Statement struct {
	StatementID string `json:"statement-id"`
	Description string `json:"description"`
}

// ImplementedRequirement describes how one control is implemented.
type ImplementedRequirement struct {
	ControlID  string      `json:"control-id"`
	Props      []Property  `json:"props,omitempty"`
	Statements []Statement `json:"statements,omitempty"`
}

// ControlImplementation groups requirements implemented against one source
// profile or catalog.
type ControlImplementation struct {
	Source                  string                   `json:"source"`
	Props                   []Property               `json:"props,omitempty"`
	SetParameters           []SetParameter           `json:"set-parameters,omitempty"`
	ImplementedRequirements []ImplementedRequirement `json:"implemented-requirements"`
}

// DefinedComponent is one component inside a component definition.
type DefinedComponent struct {
	Title                  string                  `json:"title"`
	Props                  []Property              `json:"props,omitempty"`
	ControlImplementations []ControlImplementation `json:"control-implementations,omitempty"`
}

// ComponentDefinition is an OSCAL component definition document body.
type ComponentDefinition struct {
	UUID       string             `json:"uuid,omitempty"`
	Metadata   Metadata           `json:"metadata"`
	Components []DefinedComponent `json:"components"`
}

// Property names used by the sync engine.
const (
	// PropLabel is the control property carrying the CaC-side identifier.
	PropLabel = "label"
	// PropRuleID marks a rule assertion on a component or requirement.
	PropRuleID = "Rule_Id"
	// PropImplementationStatus carries the requirement's status.
	PropImplementationStatus = "implementation-status"
	// PropFrameworkShortName links a control implementation to its CaC
	// profile id.
	PropFrameworkShortName = "Framework_Short_Name"
)

// Prop returns the value of the first property with the given name, and
// whether it was found.
func Prop(props []Property, name string) (string, bool) {
	for _, p := range props {
		if p.Name == name {
			return p.Value, true
		}
	}
	return "", false
}

// PropValues returns every value of properties with the given name.
func PropValues(props []Property, name string) []string {
	var out []string
	for _, p := range props {
		if p.Name == name {
			out = append(out, p.Value)
		}
	}
	return out
}
