// Package testutil provides small score-tree builders shared by tests.
package testutil

import (
	"fmt"

	"github.com/leftgoes/amusing/internal/score"
)

// TimeSig returns a TimeSig element with the given signature.
func TimeSig(n, d int) *score.Element {
	ts := score.New("TimeSig")
	ts.AppendNew("sigN", fmt.Sprintf("%d", n), true)
	ts.AppendNew("sigD", fmt.Sprintf("%d", d), true)
	return ts
}

// Chord returns a Chord with one Note and the given duration token.
func Chord(durationType string) *score.Element {
	c := score.New("Chord")
	c.AppendNew("durationType", durationType, true)
	note := c.AppendNew("Note", "", true)
	note.AppendNew("pitch", "60", true)
	return c
}

// DottedChord returns a Chord with the given duration token and dots.
func DottedChord(durationType string, dots int) *score.Element {
	c := Chord(durationType)
	c.AppendNew("dots", fmt.Sprintf("%d", dots), true)
	return c
}

// TremoloChord returns a Chord carrying a Tremolo with the given
// subtype ("c8", "r16", ...).
func TremoloChord(durationType, subtype string) *score.Element {
	c := Chord(durationType)
	trem := c.AppendNew("Tremolo", "", true)
	trem.AppendNew("subtype", subtype, true)
	return c
}

// Rest returns a Rest with the given duration token ("measure" for a
// whole-measure rest).
func Rest(durationType string) *score.Element {
	r := score.New("Rest")
	r.AppendNew("durationType", durationType, true)
	return r
}

// Location returns a location marker with the given fraction expression.
func Location(fractions string) *score.Element {
	l := score.New("location")
	l.AppendNew("fractions", fractions, true)
	return l
}

// Tuplet returns a Tuplet start marker.
func Tuplet(actual, normal int) *score.Element {
	t := score.New("Tuplet")
	t.AppendNew("normalNotes", fmt.Sprintf("%d", normal), true)
	t.AppendNew("actualNotes", fmt.Sprintf("%d", actual), true)
	return t
}

// PageBreak returns a page-type LayoutBreak.
func PageBreak() *score.Element {
	lb := score.New("LayoutBreak")
	lb.AppendNew("subtype", "page", true)
	return lb
}

// Voice returns a voice element containing the given children.
func Voice(children ...*score.Element) *score.Element {
	v := score.New("voice")
	for _, c := range children {
		v.Append(c)
	}
	return v
}

// Measure returns a Measure containing the given children (typically
// one voice). Measures are visibility-locked by construction.
func Measure(children ...*score.Element) *score.Element {
	m := score.New("Measure")
	for _, c := range children {
		m.Append(c)
	}
	return m
}

// Staff returns a Staff with the given measures.
func Staff(measures ...*score.Element) *score.Element {
	s := score.New("Staff")
	s.SetAttr("id", "1")
	for _, m := range measures {
		s.Append(m)
	}
	return s
}

// Root builds a full document tree with the given page width and staves.
func Root(pageWidth float64, staves ...*score.Element) *score.Element {
	root := score.New("museScore")
	root.SetAttr("version", "3.02")
	sc := root.AppendNew("Score", "", true)
	style := sc.AppendNew("Style", "", true)
	style.AppendNew("pageWidth", fmt.Sprintf("%g", pageWidth), true)
	for _, s := range staves {
		sc.Append(s)
	}
	return root
}

// SimpleDocument builds a document with the given number of staves,
// each holding the same measure layout: a 4/4 time signature followed
// by four quarter chords in every measure.
func SimpleDocument(staves, measures int) *score.Element {
	var staffEls []*score.Element
	for s := 0; s < staves; s++ {
		var measureEls []*score.Element
		for m := 0; m < measures; m++ {
			var els []*score.Element
			if m == 0 {
				els = append(els, TimeSig(4, 4))
			}
			for i := 0; i < 4; i++ {
				els = append(els, Chord("quarter"))
			}
			measureEls = append(measureEls, Measure(Voice(els...)))
		}
		staffEls = append(staffEls, Staff(measureEls...))
	}
	return Root(210, staffEls...)
}
