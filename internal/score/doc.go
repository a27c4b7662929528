// Package score provides the typed notation tree for MuseScore-style
// documents, with per-node visibility state used by the reveal pipeline.
//
// The tree is a generic labelled tree (tag, ordered attributes, text,
// children) plus a visibility tri-state per node: visible, hidden, or
// permanently locked. In the source document format hiding is encoded
// as a synthetic <visible>0</visible> child; this package folds that
// marker into an explicit flag at parse time and re-emits it when
// serializing, so the external renderer sees unchanged documents.
//
// Key design constraints:
//   - Children are owned exclusively by their parent; snapshots are
//     produced by Clone (deep copy), never by sharing subtrees.
//   - "Measure" nodes are visibility-locked from construction.
//   - Once locked, visibility-mutating operations are no-ops.
//   - Tag-restricted queries return *WrongTagError on mismatched nodes.
package score
