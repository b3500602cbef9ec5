package timestamp

import "testing"

func TestRebaseFirstFrameIsZero(t *testing.T) {
	r := NewRebaser()
	got, ok := r.Rebase(Video, 1000.0)
	if !ok {
		t.Fatalf("expected ok=true for the base frame")
	}
	if got != 0 {
		t.Fatalf("got %d, want 0", got)
	}
}

func TestRebaseDropsFramesBeforeBase(t *testing.T) {
	r := NewRebaser()
	r.Rebase(Video, 1000.0)
	_, ok := r.Rebase(Audio, 900.0)
	if ok {
		t.Fatalf("expected frame predating the base to be dropped")
	}
}

func TestRebaseAccumulatesFractionalDeltasWithoutDrift(t *testing.T) {
	r := NewRebaser()
	const frameDuration = 1000.0 / 29.97 // ~33.366... ms per frame
	sum := 0.0
	var last uint32
	for i := 0; i < 100; i++ {
		sum += frameDuration
		got, ok := r.Rebase(Video, sum)
		if !ok {
			t.Fatalf("frame %d unexpectedly dropped", i)
		}
		if got < last {
			t.Fatalf("frame %d: timestamp went backwards (%d < %d)", i, got, last)
		}
		last = got
	}
	// Over 100 frames at 29.97fps the integer timestamp should track the
	// true elapsed time to within a millisecond, not accumulate drift from
	// repeated truncation. The base frame is pinned to 0, so only 99
	// frame-durations have elapsed by the last iteration.
	want := uint32(sum - frameDuration)
	if diff := int64(last) - int64(want); diff > 1 || diff < -1 {
		t.Fatalf("timestamp %d drifted from expected %d by more than 1ms", last, want)
	}
}

func TestChannelsRebaseIndependently(t *testing.T) {
	r := NewRebaser()
	r.Rebase(Video, 1000.0)
	audioTS, ok := r.Rebase(Audio, 1020.0)
	if !ok {
		t.Fatalf("expected audio frame to be accepted")
	}
	if audioTS != 20 {
		t.Fatalf("audio timestamp = %d, want 20", audioTS)
	}
}

func TestCompositionTimeDefault(t *testing.T) {
	r := NewRebaser()
	if r.CompositionTime() != DefaultCompositionOffsetMillis {
		t.Fatalf("got %d, want %d", r.CompositionTime(), DefaultCompositionOffsetMillis)
	}
}
