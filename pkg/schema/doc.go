// Package schema defines the endpoint-type schema model: the authored list of
// field definitions that later drives a generated configuration form. The
// package owns no behaviour beyond the data invariants every other component
// relies on: enum tags, the field key grammar, dense sort ordering, the static
// checks attached to a single RuleSpec, and the Issue/ValidationError pair used
// to report authoring defects. Properties stay a schema-less map at this
// boundary; the widgets package narrows them per widget kind.
package schema
