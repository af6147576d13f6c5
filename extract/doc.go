// Package extract derives a single canonical name string from a source
// record's field tree.
//
// Records are arbitrarily nested mappings. A field whose name ends in
// NAME_FULL or NAME_ORG wins outright; failing that, a name is constructed
// from NAME_FIRST, NAME_MIDDLE and NAME_LAST parts. Records carrying no name
// fields at all have no canonical name and skip semantic indexing entirely.
//
// Extraction is a pure function: deterministic for structurally equal inputs,
// never an error. Cyclic or absurdly deep structures are cut off and treated
// as absent.
package extract
