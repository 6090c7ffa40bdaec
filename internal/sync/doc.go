// Package sync implements the OSCAL-to-CaC synchronization engine.
//
// The engine reconciles two representations of the same compliance data: a
// typed OSCAL workspace (catalogs, profiles, component definitions) and a
// CaC content repository of human-authored YAML (control files, product
// profiles, variable files). Three single-shot tasks drive it:
//
//   - CatalogTask folds OSCAL catalog statement prose into control file
//     description fields.
//   - ProfileTask propagates control membership per security level from
//     OSCAL profiles into control file levels lists, honoring level
//     inheritance chains.
//   - ComponentDefinitionTask diffs rule assertions, parameter values, and
//     implementation status from a component definition against a product
//     profile and its control files, and applies the deltas in place.
//
// All mutation goes through comment-preserving yamldoc documents: key order
// and human comments survive a pass, and problems that cannot be resolved
// automatically (missing rules, ambiguous status mappings) are annotated
// with comments in the output rather than failing the run. Running a task
// twice with unchanged inputs is a no-op: comment annotations deduplicate by
// substring.
package sync
