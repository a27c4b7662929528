package animate

import (
	"log/slog"
	"math"

	"github.com/leftgoes/amusing/internal/duration"
	"github.com/leftgoes/amusing/internal/score"
)

// cutoffEpsilon is the slack, in ticks, used when comparing cumulative
// durations against a cutoff. It only absorbs float accumulation noise;
// it is far below the shortest representable note value.
const cutoffEpsilon = 0.01

// pastCutoff reports whether an element ending at cursor lies beyond
// the cutoff, i.e. it is still sounding (or not yet reached) at the
// cutoff instant.
func pastCutoff(cursor, cutoff float64) bool {
	return cutoff < cursor-cutoffEpsilon
}

// RevealMeasure applies the visibility state machine to one measure row
// (the same measure index across all staves) for a single cutoff.
//
// Every element visited before the scan stops is forced fully visible;
// the tremolo special case then selectively re-hides chord frames.
// Elements after the stopping point keep whatever the measure-reset
// pass left them with. Not safe for concurrent use against the same
// tree.
func RevealMeasure(measures []*score.Element, measureIndex int, timeSig, cutoff float64, maxTremolo *duration.Value) error {
	for staffIndex, measure := range measures {
		for _, voice := range measure.Children() {
			if voice.IsUnprintable() {
				continue
			}
			if voice.Tag() != "voice" {
				slog.Warn("unexpected element in measure",
					"tag", voice.Tag(),
					"measure", measureIndex,
					"staff", staffIndex,
				)
			}
			if err := revealVoice(voice, timeSig, cutoff, maxTremolo); err != nil {
				return err
			}
		}
	}
	return nil
}

// revealVoice walks one voice's direct children in document order,
// maintaining the duration cursor and the tuplet/dotted multipliers.
func revealVoice(voice *score.Element, timeSig, cutoff float64, maxTremolo *duration.Value) error {
	// Index of the element just past a consumed tremolo pair; it is
	// revealed but contributes nothing (its duration was accounted for
	// when the pair was processed).
	skipIndex := -1

	cursor, tuplet, dotted := 0.0, 1.0, 1.0
	for i, el := range voice.Children() {
		if i == skipIndex {
			skipIndex = -1
			el.SetVisibleAll("", nil)
			continue
		}

		el.SetVisibleAll("", nil)

		switch {
		case el.IsGraceNote():
			// Grace notes contribute no duration.

		case el.Tag() == "location":
			offset, err := el.DurationOffset()
			if err != nil {
				return err
			}
			cursor += offset

		case el.IsTuplet():
			v, err := el.TupletValue()
			if err != nil {
				return err
			}
			tuplet = v

		case el.Tag() == "Chord" || el.Tag() == "Rest":
			d, base, err := el.DurationValue(timeSig)
			if err != nil {
				return err
			}
			dotted = d
			chordDuration := tuplet * dotted * base

			skipIndex, err = revealTremolo(voice, el, i, cursor, base, chordDuration, skipIndex, cutoff, maxTremolo)
			if err != nil {
				return err
			}

			cursor += chordDuration
		}

		if pastCutoff(cursor, cutoff) {
			break
		}
	}
	return nil
}

// revealTremolo resolves the tremolo special case for a chord. A
// "c"-class tremolo spans the chord and the next chord in the voice;
// while the pair is the element straddling the cutoff, the two chords
// alternate between fully shown and frame-only at stroke resolution.
// Strokes finer than maxTremolo are revealed atomically instead.
//
// Returns the index of the pair's second chord when one was consumed,
// so the caller can skip it, or the unchanged skipIndex.
func revealTremolo(voice, chord *score.Element, chordIndex int, cursor, base, chordDuration float64, skipIndex int, cutoff float64, maxTremolo *duration.Value) (int, error) {
	tremolo := chord.Find("Tremolo")
	if tremolo == nil {
		return skipIndex, nil
	}

	class, stroke, err := tremolo.TremoloSubtype(base)
	if err != nil {
		return skipIndex, err
	}
	if class != 'c' {
		// Single-chord tremolos stay fully visible from the baseline
		// SetVisibleAll; nothing to animate.
		return skipIndex, nil
	}

	next, nextIndex, err := voice.NextChord(chordIndex)
	if err != nil {
		return skipIndex, err
	}
	if next == nil {
		return skipIndex, &score.MalformedError{Tag: "Tremolo", Detail: "two-chord tremolo without a following chord"}
	}

	if pastCutoff(cursor+chordDuration, cutoff) {
		// The pair is the element sounding at this cutoff.
		if stroke.Ticks() >= maxTremolo.Ticks()-cutoffEpsilon {
			tremolo.SetVisible()

			phase := math.Mod(cutoff-cursor, 2*stroke.Ticks()) / stroke.Ticks()
			if phase < 1 {
				if err := chord.SetVisibleChord(); err != nil {
					return skipIndex, err
				}
				if err := next.SetInvisibleChord(); err != nil {
					return skipIndex, err
				}
			} else {
				if err := chord.SetInvisibleChord(); err != nil {
					return skipIndex, err
				}
				if err := next.SetVisibleChord(); err != nil {
					return skipIndex, err
				}
			}
		} else {
			// Finer than the requested resolution: reveal atomically.
			next.SetVisibleAll("", nil)
		}
	} else {
		// The pair has fully sounded; both chords stay shown.
		chord.SetVisible()
		next.SetVisible()
	}

	return nextIndex, nil
}
