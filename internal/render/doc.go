// Package render drives an external notation renderer over the frame
// sequence and post-processes its output into the final frame images.
//
// The renderer is invoked once per frame on a worker's private temp
// document. Workers form a fixed pool fed by a bounded task channel;
// the channel's capacity doubles as backpressure on the sequencer, so
// at most a pool's worth of snapshots is ever held in memory.
package render
