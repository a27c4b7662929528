package animate

import (
	"math"

	"github.com/leftgoes/amusing/internal/duration"
	"github.com/leftgoes/amusing/internal/score"
)

// Frame is one yielded snapshot: a frame index, the 1-based page the
// frame's animated content sits on, and an independent deep copy of the
// document tree as visibility stood at the moment of yielding.
type Frame struct {
	Index    int
	Page     int
	Root     *score.Element
	Progress float64
}

// Sequencer lazily walks the document measure by measure and yields one
// Frame per animation step. It is a single-pass, single-writer producer:
// it mutates the live tree between yields and must not run concurrently
// with anything else touching the document.
type Sequencer struct {
	doc        *score.Document
	jobs       *Jobs
	maxTremolo *duration.Value

	firstEmptyFrame bool
	frame0          int
	progress        func(float64)
}

// SequencerOption configures a Sequencer.
type SequencerOption func(*Sequencer)

// WithFirstEmptyFrame controls whether a frame with everything still
// concealed is yielded before any measure is animated. Default true.
func WithFirstEmptyFrame(on bool) SequencerOption {
	return func(s *Sequencer) { s.firstEmptyFrame = on }
}

// WithFrame0 sets the index of the first yielded frame. Default 0.
func WithFrame0(frame0 int) SequencerOption {
	return func(s *Sequencer) { s.frame0 = frame0 }
}

// WithProgress registers a callback receiving a 0..1 progress value on
// every yield.
func WithProgress(fn func(float64)) SequencerOption {
	return func(s *Sequencer) { s.progress = fn }
}

// WithMaxTremolo sets the finest tremolo stroke resolution that is
// still animated; finer tremolos are revealed atomically. Default is a
// 32nd note.
func WithMaxTremolo(v *duration.Value) SequencerOption {
	return func(s *Sequencer) { s.maxTremolo = v }
}

// NewSequencer creates a Sequencer over a loaded document and job table.
func NewSequencer(doc *score.Document, jobs *Jobs, opts ...SequencerOption) *Sequencer {
	s := &Sequencer{
		doc:             doc,
		jobs:            jobs,
		maxTremolo:      duration.FromDenominator(32),
		firstEmptyFrame: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate runs the sequence once, calling emit for every frame in
// strict document order. Returning false from emit stops the run
// cleanly. The final frame follows an end-barline pass over every
// staff's last measure.
func (s *Sequencer) Generate(emit func(Frame) bool) error {
	page := 1
	newPage := false
	index := s.frame0

	yield := func(page int, progress float64) bool {
		frame := Frame{
			Index:    index,
			Page:     page,
			Root:     s.doc.Root.Clone(),
			Progress: progress,
		}
		index++
		if s.progress != nil {
			s.progress(progress)
		}
		return emit(frame)
	}

	if s.firstEmptyFrame {
		if !yield(1, 0) {
			return nil
		}
	}

	staves := s.doc.Staves()
	if len(staves) == 0 {
		return &score.MalformedError{Tag: "Score", Detail: "no staves"}
	}
	jobKeys := s.jobs.Sorted()
	jobPosition := make(map[int]int, len(jobKeys))
	for pos, key := range jobKeys {
		jobPosition[key] = pos
	}

	for measureIndex := 0; measureIndex < len(staves[0]); measureIndex++ {
		measures := measureRow(staves, measureIndex)

		for _, measure := range measures {
			for _, el := range measure.Children() {
				if el.Tag() == "LayoutBreak" {
					if sub := el.Find("subtype"); sub != nil && sub.Text() == "page" {
						newPage = true
						break
					}
				}
			}
		}

		if subdivision, ok := s.jobs.Get(measureIndex); ok {
			timeSig := s.doc.TimeSigs[measureIndex][0]
			frameCount := int(math.Round(timeSig / subdivision.Ticks()))

			for step := 0; step < frameCount; step++ {
				// Evenly spaced cutoffs over the half-open [0, timeSig).
				cutoff := float64(step) * timeSig / float64(frameCount)
				if err := RevealMeasure(measures, measureIndex, timeSig, cutoff, s.maxTremolo); err != nil {
					return err
				}
				progress := (float64(jobPosition[measureIndex]) + float64(step)/float64(frameCount)) / float64(len(jobKeys))
				if !yield(page, progress) {
					return nil
				}
			}
		}

		// Measure reset: the next measure's scan starts from a fully
		// visible state whether or not this one was animated.
		for _, measure := range measures {
			measure.SetVisibleAll("", nil)
		}

		if newPage {
			page++
			if !yield(page, pageProgress(jobPosition, jobKeys, measureIndex)) {
				return nil
			}
			newPage = false
		}
	}

	for _, staff := range staves {
		last := staff[len(staff)-1]
		if !last.Contains("BarLine") {
			barline := score.NewElement("BarLine", "", true)
			barline.AppendNew("subtype", "end", true)
			last.Append(barline)
		}
	}

	yield(page, 1)
	return nil
}

// measureRow collects the same measure index across all staves.
func measureRow(staves [][]*score.Element, index int) []*score.Element {
	row := make([]*score.Element, len(staves))
	for i, staff := range staves {
		row[i] = staff[index]
	}
	return row
}

// pageProgress approximates progress for a page-turn frame: the share
// of jobs at or before the given measure.
func pageProgress(jobPosition map[int]int, jobKeys []int, measureIndex int) float64 {
	if len(jobKeys) == 0 {
		return 1
	}
	done := 0
	for _, key := range jobKeys {
		if key <= measureIndex {
			done++
		}
	}
	return float64(done) / float64(len(jobKeys))
}
