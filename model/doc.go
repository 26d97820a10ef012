// Package model defines the shared data model for document structure
// reconstruction: bounding-box geometry, the page element variants produced
// by an upstream layout analyzer (text blocks, line/rectangle primitives,
// tables), font signatures used for title classification, and the typed
// output nodes (titles, paragraphs, tables) that make up a reconstructed
// Document.
//
// All coordinates are in page space with the origin at the bottom-left
// corner, matching the convention of common layout analyzers. An element's
// bounding box is always the union of its children's boxes; code that
// mutates a child list must call the element's RecomputeBounds method.
//
// The model is mutated in place by pipeline stages. Stages that may run in
// a non-linear execution graph clone pages with ClonePages before mutating.
package model
