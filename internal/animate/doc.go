// Package animate implements the progressive-reveal state machine and
// the frame sequencer.
//
// ARCHITECTURE:
//
// Single-writer producer:
// The sequencer mutates one live document tree in place between yields,
// so frame production is strictly sequential. Parallelism exists only
// downstream: every yielded frame carries an independent deep copy of
// the tree, giving frames value-type semantics from the consumer's
// perspective.
//
// Reveal model:
// For a measure under animation, a cutoff value in [0, timeSig) selects
// how much of the measure has "sounded". The state machine walks each
// voice with a cumulative duration cursor, forces everything visited
// fully visible, and stops once the cursor passes the cutoff. The
// tremolo special case selectively re-hides one chord of a two-chord
// tremolo pair to alternate which note appears while the pair plays.
package animate
