package score

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/leftgoes/amusing/internal/duration"
)

// Document is a parsed score: the element tree plus the layout facts
// the pipeline needs. PageWidth, PageCount and TimeSigs are computed
// once at load time and are read-only thereafter.
type Document struct {
	Root *Element

	// PageWidth is the document's page width from Score/Style, used to
	// derive the renderer dpi as targetWidth / PageWidth.
	PageWidth float64

	// PageCount is 1 plus the number of page-type layout breaks.
	PageCount int

	// TimeSigs holds each staff's effective measure duration in ticks,
	// indexed as [measure][staff]. Normally equal across staves but
	// computed per staff to tolerate explicit length overrides.
	TimeSigs [][]float64
}

// ParseDocument reads and indexes a score document.
func ParseDocument(r io.Reader) (*Document, error) {
	root, err := ParseTree(r)
	if err != nil {
		return nil, err
	}
	return NewDocument(root)
}

// LoadDocument reads and indexes a score document from a file.
func LoadDocument(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	defer f.Close()
	return ParseDocument(f)
}

// NewDocument indexes an already-parsed tree.
func NewDocument(root *Element) (*Document, error) {
	d := &Document{Root: root}

	score := root.Find("Score")
	if score == nil {
		return nil, malformed(root, "missing Score child")
	}

	style := score.Find("Style")
	if style == nil {
		return nil, malformed(score, "missing Style child")
	}
	pageWidth := style.Find("pageWidth")
	if pageWidth == nil {
		return nil, malformed(style, "missing pageWidth")
	}
	w, err := strconv.ParseFloat(pageWidth.text, 64)
	if err != nil || w <= 0 {
		return nil, malformed(style, "pageWidth %q not a positive number", pageWidth.text)
	}
	d.PageWidth = w

	d.PageCount = 1
	root.Walk(func(e *Element) {
		if e.tag == "LayoutBreak" {
			if sub := e.Find("subtype"); sub != nil && sub.text == "page" {
				d.PageCount++
			}
		}
	})

	if err := d.readTimeSigs(); err != nil {
		return nil, err
	}
	return d, nil
}

// Staves returns each staff's ordered measure list.
func (d *Document) Staves() [][]*Element {
	score := d.Root.Find("Score")
	if score == nil {
		return nil
	}
	var staves [][]*Element
	for _, staff := range score.children {
		if staff.tag != "Staff" {
			continue
		}
		var measures []*Element
		for _, c := range staff.children {
			if c.tag == "Measure" {
				measures = append(measures, c)
			}
		}
		staves = append(staves, measures)
	}
	return staves
}

// MeasureCount returns the number of measures in the first staff.
func (d *Document) MeasureCount() int {
	staves := d.Staves()
	if len(staves) == 0 {
		return 0
	}
	return len(staves[0])
}

// Clone deep-copies the tree for a snapshot. The layout tables are
// shared: they are read-only after load.
func (d *Document) Clone() *Document {
	return &Document{
		Root:      d.Root.Clone(),
		PageWidth: d.PageWidth,
		PageCount: d.PageCount,
		TimeSigs:  d.TimeSigs,
	}
}

// readTimeSigs builds the per-(measure, staff) duration table. A staff's
// time signature carries forward until the next TimeSig node; a measure
// "len" attribute overrides the signature for that measure only.
func (d *Document) readTimeSigs() error {
	staves := d.Staves()
	if len(staves) == 0 {
		return malformed(d.Root, "no staves")
	}

	measureCount := len(staves[0])
	d.TimeSigs = make([][]float64, measureCount)
	for i := range d.TimeSigs {
		d.TimeSigs[i] = make([]float64, len(staves))
	}

	for j, staff := range staves {
		if len(staff) != measureCount {
			return malformed(d.Root, "staff %d has %d measures, staff 0 has %d", j, len(staff), measureCount)
		}
		timeSig := 0.0
		for i, measure := range staff {
			if voice := measure.Find("voice"); voice != nil {
				for _, el := range voice.children {
					if el.tag == "TimeSig" {
						v, err := timeSigValue(el)
						if err != nil {
							return err
						}
						timeSig = v
					} else if el.tag == "Chord" {
						break
					}
				}
			}
			if timeSig == 0 {
				return malformed(measure, "measure %d of staff %d has no effective time signature", i, j)
			}
			d.TimeSigs[i][j] = timeSig

			if lenAttr, ok := measure.Attr("len"); ok {
				frac, err := EvalFraction(lenAttr)
				if err != nil {
					return malformed(measure, "len %q: %v", lenAttr, err)
				}
				d.TimeSigs[i][j] = frac * duration.WholeTicks
			}
		}
	}
	return nil
}

func timeSigValue(e *Element) (float64, error) {
	sigN := e.Find("sigN")
	sigD := e.Find("sigD")
	if sigN == nil || sigD == nil {
		return 0, malformed(e, "missing sigN or sigD")
	}
	n, err := strconv.Atoi(sigN.text)
	if err != nil {
		return 0, malformed(e, "sigN %q: %v", sigN.text, err)
	}
	den, err := strconv.Atoi(sigD.text)
	if err != nil || den == 0 {
		return 0, malformed(e, "sigD %q not a positive integer", sigD.text)
	}
	return duration.WholeTicks * float64(n) / float64(den), nil
}
