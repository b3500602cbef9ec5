// Package timestamp rebases encoder capture timestamps onto the
// stream-relative clock RTMP messages carry, and derives the FLV
// composition time offset carried alongside coded video frames.
package timestamp

import "sync"

// Channel distinguishes the audio and video timelines, which are rebased
// independently off a shared capture-time base but otherwise never mix.
type Channel int

const (
	Audio Channel = iota
	Video
)

// DefaultCompositionOffsetMillis is 3 frames at 30fps, the conventional
// allowance for encoder reordering when no tighter bound is known.
const DefaultCompositionOffsetMillis int32 = 100

// Rebaser converts encoder capture timestamps, in fractional milliseconds
// and on no particular epoch, into the monotonically non-decreasing
// integer millisecond timestamps RTMP messages carry.
//
// The first frame seen on any channel fixes the base; every later frame's
// rebased timestamp is relative to it. Fractional frame durations (29.97fps
// and the like) are tracked with a running per-channel accumulator so
// rounding never drifts: each frame advances by floor(accumulated delta),
// carrying the remainder into the next frame instead of discarding it.
type Rebaser struct {
	mu sync.Mutex

	CompositionOffsetMillis int32

	based    bool
	basePTS  float64
	prevPTS  [2]float64
	prevSent [2]uint32
	accum    [2]float64
	seen     [2]bool
}

// NewRebaser returns a Rebaser with the default composition time offset.
func NewRebaser() *Rebaser {
	return &Rebaser{CompositionOffsetMillis: DefaultCompositionOffsetMillis}
}

// Rebase computes the outbound timestamp for a frame captured at ptsMillis
// on ch. It returns ok=false if the frame predates the base (the
// drop-negative rule) and should not be sent.
func (r *Rebaser) Rebase(ch Channel, ptsMillis float64) (rebased uint32, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.based {
		r.basePTS = ptsMillis
		r.based = true
	}

	elapsed := ptsMillis - r.basePTS
	if elapsed < 0 {
		return 0, false
	}

	var delta float64
	if r.seen[ch] {
		delta = elapsed - r.prevPTS[ch]
		if delta < 0 {
			return 0, false
		}
	} else {
		delta = elapsed
	}

	r.accum[ch] += delta
	send := uint32(r.accum[ch])
	r.accum[ch] -= float64(send)

	r.prevSent[ch] += send
	r.prevPTS[ch] = elapsed
	r.seen[ch] = true

	return r.prevSent[ch], true
}

// CompositionTime returns the composition time offset to embed alongside a
// coded video frame, as configured on the rebaser.
func (r *Rebaser) CompositionTime() int32 {
	return r.CompositionOffsetMillis
}

// Reset clears all base and per-channel state, used when a stream is
// closed or loses its connection.
func (r *Rebaser) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.based = false
	r.basePTS = 0
	r.prevPTS = [2]float64{}
	r.prevSent = [2]uint32{}
	r.accum = [2]float64{}
	r.seen = [2]bool{}
}
