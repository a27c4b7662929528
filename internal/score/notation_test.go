package score

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leftgoes/amusing/internal/duration"
)

func newChord(durationType string) *Element {
	c := New("Chord")
	c.AppendNew("durationType", durationType, true)
	c.AppendNew("Note", "", true)
	return c
}

func TestIsGraceNote(t *testing.T) {
	c := newChord("eighth")
	assert.False(t, c.IsGraceNote())

	c.AppendNew("acciaccatura", "", true)
	assert.True(t, c.IsGraceNote())

	g := newChord("16th")
	g.AppendNew("grace16", "", true)
	assert.True(t, g.IsGraceNote())
}

func TestIsTuplet(t *testing.T) {
	assert.True(t, New("Tuplet").IsTuplet())
	assert.True(t, New("endTuplet").IsTuplet())
	assert.False(t, New("Chord").IsTuplet())
}

func TestTupletValue(t *testing.T) {
	tuplet := New("Tuplet")
	tuplet.AppendNew("normalNotes", "2", true)
	tuplet.AppendNew("actualNotes", "3", true)

	v, err := tuplet.TupletValue()
	require.NoError(t, err)
	assert.InDelta(t, 2.0/3.0, v, 1e-9)

	v, err = New("endTuplet").TupletValue()
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)
}

func TestTupletValueWrongTag(t *testing.T) {
	_, err := New("Chord").TupletValue()
	var wte *WrongTagError
	require.ErrorAs(t, err, &wte)
	assert.Equal(t, "Chord", wte.Actual)
	assert.Equal(t, []string{"Tuplet", "endTuplet"}, wte.Want)
	assert.True(t, IsWrongTag(err))
}

func TestDurationOffset(t *testing.T) {
	loc := New("location")
	loc.AppendNew("fractions", "1/4", true)

	off, err := loc.DurationOffset()
	require.NoError(t, err)
	assert.Equal(t, 256.0, off)

	neg := New("location")
	neg.AppendNew("fractions", "-1/2", true)
	off, err = neg.DurationOffset()
	require.NoError(t, err)
	assert.Equal(t, -512.0, off)
}

func TestDurationOffsetWrongTag(t *testing.T) {
	_, err := New("Chord").DurationOffset()
	assert.True(t, IsWrongTag(err))
}

func TestDurationValue(t *testing.T) {
	timeSig := duration.WholeTicks // 4/4

	tests := []struct {
		name       string
		el         *Element
		wantDotted float64
		wantBase   float64
	}{
		{"quarter chord", newChord("quarter"), 1, 256},
		{"eighth rest", func() *Element {
			r := New("Rest")
			r.AppendNew("durationType", "eighth", true)
			return r
		}(), 1, 128},
		{"dotted half", func() *Element {
			c := newChord("half")
			c.AppendNew("dots", "1", true)
			return c
		}(), 1.5, 512},
		{"double-dotted quarter", func() *Element {
			c := newChord("quarter")
			c.AppendNew("dots", "2", true)
			return c
		}(), 1.75, 256},
		{"whole-measure rest", func() *Element {
			r := New("Rest")
			r.AppendNew("durationType", "measure", true)
			return r
		}(), 1, timeSig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dotted, base, err := tt.el.DurationValue(timeSig)
			require.NoError(t, err)
			assert.Equal(t, tt.wantDotted, dotted)
			assert.Equal(t, tt.wantBase, base)
		})
	}
}

func TestDurationValueErrors(t *testing.T) {
	_, _, err := New("voice").DurationValue(1024)
	assert.True(t, IsWrongTag(err))

	bad := newChord("mystery")
	_, _, err = bad.DurationValue(1024)
	var ute *duration.UnknownTokenError
	assert.ErrorAs(t, err, &ute)
}

func TestTremoloSubtype(t *testing.T) {
	trem := New("Tremolo")
	trem.AppendNew("subtype", "c8", true)

	// On a quarter-note chord the stroke unit is a plain eighth.
	class, stroke, err := trem.TremoloSubtype(256)
	require.NoError(t, err)
	assert.Equal(t, byte('c'), class)
	assert.Equal(t, 128.0, stroke.Ticks())

	// On an eighth-note chord the count doubles: 16th strokes.
	_, stroke, err = trem.TremoloSubtype(128)
	require.NoError(t, err)
	assert.Equal(t, 64.0, stroke.Ticks())

	// Chords longer than a quarter do not scale down.
	_, stroke, err = trem.TremoloSubtype(512)
	require.NoError(t, err)
	assert.Equal(t, 128.0, stroke.Ticks())
}

func TestTremoloSubtypeWrongTag(t *testing.T) {
	_, _, err := New("Chord").TremoloSubtype(256)
	assert.True(t, IsWrongTag(err))
}

func TestChordSubelements(t *testing.T) {
	c := New("Chord")
	c.AppendNew("durationType", "quarter", true)
	c.AppendNew("Stem", "", true)
	note := c.AppendNew("Note", "", true)
	note.AppendNew("Accidental", "", true)
	c.AppendNew("Hook", "", true)

	subs, err := c.ChordSubelements()
	require.NoError(t, err)

	var tags []string
	for _, s := range subs {
		tags = append(tags, s.Tag())
	}
	// Grouped by tag in chordSubTags order.
	assert.Equal(t, []string{"Accidental", "Stem", "Note", "Hook"}, tags)

	_, err = New("Rest").ChordSubelements()
	assert.True(t, IsWrongTag(err))
}

func TestSetInvisibleChordLeavesDurationType(t *testing.T) {
	c := newChord("quarter")
	c.AppendNew("Stem", "", true)

	require.NoError(t, c.SetInvisibleChord())

	assert.False(t, c.Find("Note").Visible())
	assert.False(t, c.Find("Stem").Visible())
	// Non-frame children are untouched.
	assert.True(t, c.Find("durationType").Visible())

	require.NoError(t, c.SetVisibleChord())
	assert.True(t, c.Find("Note").Visible())
}

func TestAddImpliedChildrenChord(t *testing.T) {
	c := newChord("eighth")
	c.AppendNew("Stem", "", true)

	c.AddImpliedChildren()

	assert.True(t, c.Contains("Stem"))
	assert.True(t, c.Contains("Beam"))
	assert.True(t, c.Contains("Hook"))

	// Idempotent for already-present children.
	count := 0
	for _, child := range c.Children() {
		if child.Tag() == "Stem" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestAddImpliedChildrenTieAndAcciaccatura(t *testing.T) {
	tie := New("Tie")
	tie.AddImpliedChildren()
	assert.True(t, tie.Contains("TieSegment"))

	grace := newChord("16th")
	grace.AppendNew("acciaccatura", "", true)
	grace.AddImpliedChildren()
	assert.True(t, grace.Contains("StemSlash"))
}

func TestInvisibilize(t *testing.T) {
	note := New("Note")
	note.Invisibilize()
	assert.False(t, note.Visible())

	// Unprintable bookkeeping is exempt.
	lb := New("LayoutBreak")
	lb.Invisibilize()
	assert.True(t, lb.Visible())

	// Kinds on neither list are left untouched.
	pitch := New("pitch")
	pitch.Invisibilize()
	assert.True(t, pitch.Visible())
}

func TestNextChord(t *testing.T) {
	voice := New("voice")
	voice.Append(newChord("quarter"))
	voice.AppendNew("Tuplet", "", true)
	second := newChord("eighth")
	voice.Append(second)

	next, idx, err := voice.NextChord(0)
	require.NoError(t, err)
	assert.Same(t, second, next)
	assert.Equal(t, 2, idx)

	next, idx, err = voice.NextChord(2)
	require.NoError(t, err)
	assert.Nil(t, next)
	assert.Equal(t, -1, idx)

	_, _, err = New("Measure").NextChord(0)
	assert.True(t, IsWrongTag(err))
}

func TestHasArpeggio(t *testing.T) {
	c := newChord("quarter")
	has, err := c.HasArpeggio()
	require.NoError(t, err)
	assert.False(t, has)

	c.AppendNew("Arpeggio", "", true)
	has, err = c.HasArpeggio()
	require.NoError(t, err)
	assert.True(t, has)

	_, err = New("Rest").HasArpeggio()
	assert.True(t, IsWrongTag(err))
}
