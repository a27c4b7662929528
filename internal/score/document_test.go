package score

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoStaffXML = `<museScore version="3.02">
  <Score>
    <Style>
      <pageWidth>210</pageWidth>
    </Style>
    <Staff id="1">
      <Measure>
        <voice>
          <TimeSig><sigN>4</sigN><sigD>4</sigD></TimeSig>
          <Chord><durationType>quarter</durationType><Note/></Chord>
        </voice>
      </Measure>
      <Measure>
        <LayoutBreak><subtype>page</subtype></LayoutBreak>
        <voice>
          <Chord><durationType>half</durationType><Note/></Chord>
        </voice>
      </Measure>
      <Measure len="3/4">
        <voice>
          <Rest><durationType>measure</durationType></Rest>
        </voice>
      </Measure>
    </Staff>
    <Staff id="2">
      <Measure>
        <voice>
          <TimeSig><sigN>4</sigN><sigD>4</sigD></TimeSig>
          <Rest><durationType>measure</durationType></Rest>
        </voice>
      </Measure>
      <Measure>
        <voice>
          <Rest><durationType>measure</durationType></Rest>
        </voice>
      </Measure>
      <Measure>
        <voice>
          <Rest><durationType>measure</durationType></Rest>
        </voice>
      </Measure>
    </Staff>
  </Score>
</museScore>`

func parseTwoStaffDoc(t *testing.T) *Document {
	t.Helper()
	doc, err := ParseDocument(strings.NewReader(twoStaffXML))
	require.NoError(t, err)
	return doc
}

func TestDocumentLayoutFacts(t *testing.T) {
	doc := parseTwoStaffDoc(t)

	assert.Equal(t, 210.0, doc.PageWidth)
	assert.Equal(t, 2, doc.PageCount)
	assert.Equal(t, 3, doc.MeasureCount())
	assert.Len(t, doc.Staves(), 2)
}

func TestDocumentTimeSigTable(t *testing.T) {
	doc := parseTwoStaffDoc(t)

	require.Len(t, doc.TimeSigs, 3)
	for i := range doc.TimeSigs {
		require.Len(t, doc.TimeSigs[i], 2)
	}

	// 4/4 everywhere; the signature carries forward past measure 0.
	assert.Equal(t, 1024.0, doc.TimeSigs[0][0])
	assert.Equal(t, 1024.0, doc.TimeSigs[1][0])
	assert.Equal(t, 1024.0, doc.TimeSigs[1][1])

	// Explicit length override on staff 0 measure 2 only.
	assert.Equal(t, 768.0, doc.TimeSigs[2][0])
	assert.Equal(t, 1024.0, doc.TimeSigs[2][1])
}

func TestDocumentCloneIndependence(t *testing.T) {
	doc := parseTwoStaffDoc(t)
	snap := doc.Clone()

	chord := doc.Staves()[0][0].Find("voice").Find("Chord")
	chord.Find("Note").SetInvisible()

	snapChord := snap.Staves()[0][0].Find("voice").Find("Chord")
	assert.True(t, snapChord.Find("Note").Visible())
}

func TestDocumentMissingScore(t *testing.T) {
	_, err := ParseDocument(strings.NewReader("<museScore/>"))
	var me *MalformedError
	require.ErrorAs(t, err, &me)
}

func TestDocumentMissingTimeSig(t *testing.T) {
	xml := `<museScore>
  <Score>
    <Style><pageWidth>210</pageWidth></Style>
    <Staff>
      <Measure><voice><Chord><durationType>quarter</durationType></Chord></voice></Measure>
    </Staff>
  </Score>
</museScore>`
	_, err := ParseDocument(strings.NewReader(xml))
	assert.Error(t, err)
}

func TestDocumentStaffLengthMismatch(t *testing.T) {
	xml := `<museScore>
  <Score>
    <Style><pageWidth>210</pageWidth></Style>
    <Staff>
      <Measure><voice><TimeSig><sigN>4</sigN><sigD>4</sigD></TimeSig></voice></Measure>
      <Measure><voice><Rest><durationType>measure</durationType></Rest></voice></Measure>
    </Staff>
    <Staff>
      <Measure><voice><TimeSig><sigN>4</sigN><sigD>4</sigD></TimeSig></voice></Measure>
    </Staff>
  </Score>
</museScore>`
	_, err := ParseDocument(strings.NewReader(xml))
	assert.Error(t, err)
}
