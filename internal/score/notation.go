package score

import (
	"strconv"

	"github.com/leftgoes/amusing/internal/duration"
)

// chordSubTags are the chord descendants that carry the visual "frame"
// of a chord: accidentals, stems, dots, noteheads and hooks.
var chordSubTags = []string{"Accidental", "Stem", "NoteDot", "Note", "Hook"}

// graceNoteTags are the direct-child tags that mark a chord as a grace
// note variant.
var graceNoteTags = map[string]bool{
	"grace4":       true,
	"acciaccatura": true,
	"appoggiatura": true,
	"grace8after":  true,
	"grace16":      true,
	"grace16after": true,
	"grace32":      true,
	"grace32after": true,
}

// hideTags are the element kinds that the baseline conceal pass hides.
var hideTags = map[string]bool{
	"Accidental": true, "Articulation": true,
	"BarLine": true, "Beam": true, "Clef": true, "Dynamic": true,
	"Fermata": true, "Fingering": true, "HairPin": true, "Hook": true,
	"KeySig": true, "Note": true, "Ottava": true, "Pedal": true,
	"Rest": true, "Segment": true, "Slur": true, "SlurSegment": true,
	"StaffText": true, "Stem": true, "StemSlash": true, "SystemText": true,
	"Tempo": true, "TextLine": true, "Tie": true, "TieSegment": true,
	"TimeSig": true, "Tremolo": true, "Trill": true,
}

// unprintableTags never render and are exempt from auto-hiding:
// barline/repeat bookkeeping, layout breaks, spacers, measure numbers.
var unprintableTags = map[string]bool{
	"irregular": true, "stretch": true,
	"startRepeat": true, "endRepeat": true,
	"MeasureNumber": true, "LayoutBreak": true, "noOffset": true,
	"vspacerUp": true, "vspacerDown": true, "vspacerFixed": true,
}

// IsUnprintable reports whether the element is pure bookkeeping that
// never renders.
func (e *Element) IsUnprintable() bool { return unprintableTags[e.tag] }

// IsGraceNote reports whether any direct child marks this chord as a
// grace note.
func (e *Element) IsGraceNote() bool {
	for _, c := range e.children {
		if graceNoteTags[c.tag] {
			return true
		}
	}
	return false
}

// IsTuplet reports whether the element is a tuplet start or end marker.
func (e *Element) IsTuplet() bool {
	return e.tag == "Tuplet" || e.tag == "endTuplet"
}

// TupletValue returns the duration multiplier of a tuplet marker:
// normalNotes/actualNotes for "Tuplet", 1.0 for "endTuplet".
func (e *Element) TupletValue() (float64, error) {
	switch e.tag {
	case "Tuplet":
		normal := e.Find("normalNotes")
		actual := e.Find("actualNotes")
		if normal == nil || actual == nil {
			return 0, malformed(e, "missing normalNotes or actualNotes")
		}
		n, err := strconv.Atoi(normal.text)
		if err != nil {
			return 0, malformed(e, "normalNotes %q: %v", normal.text, err)
		}
		a, err := strconv.Atoi(actual.text)
		if err != nil || a == 0 {
			return 0, malformed(e, "actualNotes %q not a positive integer", actual.text)
		}
		return float64(n) / float64(a), nil
	case "endTuplet":
		return 1.0, nil
	default:
		return 0, wrongTag(e, "get tuplet value", "Tuplet", "endTuplet")
	}
}

// DurationOffset evaluates a "location" marker's fractional offset,
// scaled to ticks. The offset may be negative (voice realignment after
// cross-voice rests).
func (e *Element) DurationOffset() (float64, error) {
	if e.tag != "location" {
		return 0, wrongTag(e, "get offset", "location")
	}
	fractions := e.Find("fractions")
	if fractions == nil {
		return 0, malformed(e, "missing fractions")
	}
	frac, err := EvalFraction(fractions.text)
	if err != nil {
		return 0, malformed(e, "fractions %q: %v", fractions.text, err)
	}
	return frac * duration.WholeTicks, nil
}

// DurationValue returns a Chord or Rest's dotted multiplier and base
// duration in ticks. A durationType of the literal "measure" resolves
// to the given time-signature value.
func (e *Element) DurationValue(timeSig float64) (dotted, base float64, err error) {
	if e.tag != "Chord" && e.tag != "Rest" {
		return 0, 0, wrongTag(e, "get duration", "Chord", "Rest")
	}

	dotted = 1
	if dots := e.Find("dots"); dots != nil {
		n, aerr := strconv.Atoi(dots.text)
		if aerr != nil {
			return 0, 0, malformed(e, "dots %q: %v", dots.text, aerr)
		}
		dotted = duration.DotMultiplier(n)
	}

	durationType := e.Find("durationType")
	if durationType == nil {
		return 0, 0, malformed(e, "missing durationType")
	}
	if durationType.text == "measure" {
		return dotted, timeSig, nil
	}
	v, err := duration.FromToken(durationType.text)
	if err != nil {
		return 0, 0, err
	}
	return dotted, v.Ticks(), nil
}

// TremoloSubtype decodes a Tremolo marker's subtype into its class byte
// and stroke duration. The subtype text is a class letter followed by a
// stroke count ("c8", "r16"); "c" means between-chord repeats. The
// stroke count is scaled by max(1, quarter/durationType) where
// durationType is the carrying chord's base duration in ticks.
func (e *Element) TremoloSubtype(durationType float64) (byte, *duration.Value, error) {
	if e.tag != "Tremolo" {
		return 0, nil, wrongTag(e, "get tremolo subtype", "Tremolo")
	}
	subtype := e.Find("subtype")
	if subtype == nil || len(subtype.text) < 2 {
		return 0, nil, malformed(e, "missing or short subtype")
	}
	strokes, err := strconv.Atoi(subtype.text[1:])
	if err != nil {
		return 0, nil, malformed(e, "subtype %q: %v", subtype.text, err)
	}

	scale := duration.Quarter().Ticks() / durationType
	if scale < 1 {
		scale = 1
	}
	return subtype.text[0], duration.FromDenominator(float64(strokes) * scale), nil
}

// ChordSubelements returns the chord's accidental/stem/dot/notehead/hook
// descendants, grouped by tag, each group in document order.
func (e *Element) ChordSubelements() ([]*Element, error) {
	if e.tag != "Chord" {
		return nil, wrongTag(e, "get chord subelements", "Chord")
	}
	var subs []*Element
	for _, tag := range chordSubTags {
		e.WalkTag(tag, func(el *Element) {
			subs = append(subs, el)
		})
	}
	return subs, nil
}

// SetVisibleChord makes the chord's frame subelements visible.
func (e *Element) SetVisibleChord() error {
	subs, err := e.ChordSubelements()
	if err != nil {
		return err
	}
	for _, s := range subs {
		s.SetVisible()
	}
	return nil
}

// SetInvisibleChord hides the chord's frame subelements.
func (e *Element) SetInvisibleChord() error {
	subs, err := e.ChordSubelements()
	if err != nil {
		return err
	}
	for _, s := range subs {
		s.SetInvisible()
	}
	return nil
}

// HasArpeggio reports whether a chord carries an arpeggio marking.
func (e *Element) HasArpeggio() (bool, error) {
	if e.tag != "Chord" {
		return false, wrongTag(e, "check arpeggio", "Chord")
	}
	return e.Contains("Arpeggio"), nil
}

// NextChord returns the first "Chord" child of a voice after index,
// with its position. Returns (nil, -1) when no later chord exists.
func (e *Element) NextChord(index int) (*Element, int, error) {
	if e.tag != "voice" {
		return nil, -1, wrongTag(e, "get next chord", "voice")
	}
	for i := index + 1; i < len(e.children); i++ {
		if e.children[i].tag == "Chord" {
			return e.children[i], i, nil
		}
	}
	return nil, -1, nil
}

// AddImpliedChildren inserts structurally required but possibly absent
// descendants so a later recursive visibility pass has something to
// toggle: stem/beam/hook under a chord, a tie segment under a tie, a
// stem slash under an acciaccatura carrier.
func (e *Element) AddImpliedChildren() {
	if e.tag == "Chord" {
		for _, tag := range []string{"Stem", "Beam", "Hook"} {
			if !e.Contains(tag) {
				e.AppendNew(tag, "", true)
			}
		}
	}

	if e.tag == "Tie" && !e.Contains("TieSegment") {
		e.AppendNew("TieSegment", "", true)
	}

	if e.Contains("acciaccatura") && !e.Contains("StemSlash") {
		e.AppendNew("StemSlash", "", true)
	}
}

// Invisibilize hides the element if its kind is on the hide list.
// Unprintable bookkeeping elements and kinds on neither list are left
// untouched.
func (e *Element) Invisibilize() {
	if unprintableTags[e.tag] {
		return
	}
	if hideTags[e.tag] {
		e.SetInvisible()
	}
}
