package monitor

// SeqStats are the counters of a SeqTracker.
type SeqStats struct {
	Received   uint64 `json:"received"`
	Missing    uint64 `json:"missing"`
	Duplicates uint64 `json:"duplicates"`
}

// SeqTracker detects lost samples from the 8-bit sequence numbers.
// Gaps of 256 or more samples are invisible.
type SeqTracker struct {
	stats   SeqStats
	last    uint8
	started bool
}

// Track records seq and returns the number of sequence numbers skipped
// since the previous one.
func (t *SeqTracker) Track(seq uint8) (missing int) {
	t.stats.Received++
	if t.started {
		if seq == t.last {
			t.stats.Duplicates++
			return 0
		}
		missing = int(seq - t.last - 1)
		t.stats.Missing += uint64(missing)
	}
	t.last, t.started = seq, true
	return
}

// Reset forgets the previous sequence number, counters are kept.
func (t *SeqTracker) Reset() {
	t.started = false
}

// Stats returns the counters.
func (t *SeqTracker) Stats() SeqStats {
	return t.stats
}
