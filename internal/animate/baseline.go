package animate

import "github.com/leftgoes/amusing/internal/score"

// Conceal runs the baseline invisibilize pass over the whole document,
// preparing it for a reveal run:
//
//  1. Every measure except the last gets a leading BarLine in its first
//     voice if none is present, so barlines can be revealed per measure.
//  2. Every element that is already hidden in the source document gets
//     its visibility locked: author-hidden elements stay suppressed for
//     the rest of the run.
//  3. Every visible element gets its implied structural children
//     inserted, so the later recursive reveal has something to toggle.
//  4. Everything outside the exempt tag set is hidden.
//
// The resulting document is the baseline: rendering it yields the
// all-concealed reference image.
func Conceal(doc *score.Document) {
	staves := doc.Staves()
	if len(staves) == 0 {
		return
	}
	lastMeasure := len(staves[0]) - 1

	for measureIndex := 0; measureIndex < len(staves[0]); measureIndex++ {
		for _, measure := range measureRow(staves, measureIndex) {
			children := measure.Children()
			if measureIndex != lastMeasure && len(children) > 0 && !children[0].Contains("BarLine") {
				children[0].AppendNew("BarLine", "", true)
			}

			measure.Walk(func(el *score.Element) {
				if !el.Visible() {
					el.LockVisibility()
				} else {
					el.AddImpliedChildren()
				}
			})

			measure.Walk(func(el *score.Element) {
				el.Invisibilize()
			})
		}
	}
}
