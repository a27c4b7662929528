package animate

import (
	"sort"

	"github.com/leftgoes/amusing/internal/duration"
)

// FirstMeasure is the measure numbering offset of the public job API:
// callers speak in 1-based measure numbers, the job table stores
// 0-based measure indexes.
const FirstMeasure = 1

// Jobs maps 0-based measure indexes to reveal subdivisions: "reveal
// this measure progressively in steps of this duration". Keys are
// unique; insertion order is irrelevant, iteration is sorted.
//
// Jobs is mutated only through Add/Delete operations and is read-only
// during generation. Not safe for concurrent mutation.
type Jobs struct {
	subdivisions map[int]*duration.Value
}

// NewJobs creates an empty job table.
func NewJobs() *Jobs {
	return &Jobs{subdivisions: make(map[int]*duration.Value)}
}

// Add configures a reveal job for a 1-based measure number. Adding a
// measure twice replaces its subdivision.
func (j *Jobs) Add(measure int, subdivision *duration.Value) {
	j.subdivisions[measure-FirstMeasure] = subdivision
}

// AddRange configures jobs for the 1-based measure numbers from..to
// inclusive. A negative to means "through the given last measure of
// the document" and must be resolved by the caller beforehand.
func (j *Jobs) AddRange(from, to int, subdivision *duration.Value) {
	for m := from; m <= to; m++ {
		j.Add(m, subdivision)
	}
}

// AddAll configures jobs for every measure of a document with
// measureCount measures.
func (j *Jobs) AddAll(measureCount int, subdivision *duration.Value) {
	for i := 0; i < measureCount; i++ {
		j.subdivisions[i] = subdivision
	}
}

// Delete removes all configured jobs.
func (j *Jobs) Delete() {
	j.subdivisions = make(map[int]*duration.Value)
}

// Get returns the subdivision for a 0-based measure index.
func (j *Jobs) Get(index int) (*duration.Value, bool) {
	v, ok := j.subdivisions[index]
	return v, ok
}

// Len returns the number of configured jobs.
func (j *Jobs) Len() int { return len(j.subdivisions) }

// Sorted returns the configured 0-based measure indexes in ascending
// order.
func (j *Jobs) Sorted() []int {
	keys := make([]int, 0, len(j.subdivisions))
	for k := range j.subdivisions {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
