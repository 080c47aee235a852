package core

// MessageDeduper is a bounded, robin-hood open-addressed hash set of 64-bit
// fingerprints. It is scoped to a single session file for a single
// provider (spec.md §5: "per-provider, per-file scope, never shared across
// files") and is used by Claude to suppress duplicate
// (message.id, requestId) pairs when the same session file is re-processed.
type MessageDeduper struct {
	slots    []dedupSlot
	count    int
	maxLoad  float64
}

type dedupSlot struct {
	occupied bool
	hash     uint64
	probe    int
}

// NewMessageDeduper allocates a deduper sized for roughly cap fingerprints
// at a 0.75 max load factor, growing (rehashing) if that is exceeded.
func NewMessageDeduper(cap int) *MessageDeduper {
	size := nextPow2(int(float64(cap)/0.75) + 1)
	if size < 8 {
		size = 8
	}
	return &MessageDeduper{
		slots:   make([]dedupSlot, size),
		maxLoad: 0.75,
	}
}

func nextPow2(n int) int {
	p := 8
	for p < n {
		p <<= 1
	}
	return p
}

// Mark inserts hash into the set and reports whether it was newly inserted.
// It returns false if the fingerprint was already present — the caller
// uses that to drop the duplicate record.
func (d *MessageDeduper) Mark(hash uint64) bool {
	if float64(d.count+1) > d.maxLoad*float64(len(d.slots)) {
		d.grow()
	}
	return d.insert(hash)
}

func (d *MessageDeduper) insert(hash uint64) bool {
	mask := uint64(len(d.slots) - 1)
	idx := hash & mask
	probe := 0
	entry := dedupSlot{occupied: true, hash: hash, probe: 0}

	for {
		slot := &d.slots[idx]
		if !slot.occupied {
			*slot = entry
			d.count++
			return true
		}
		if slot.hash == entry.hash {
			return false
		}
		if slot.probe < probe {
			// Robin hood: the richer entry displaces the poorer one.
			entry, *slot = *slot, entry
			probe = slot.probe
		}
		idx = (idx + 1) & mask
		probe++
		entry.probe = probe
	}
}

func (d *MessageDeduper) grow() {
	old := d.slots
	d.slots = make([]dedupSlot, len(old)*2)
	d.count = 0
	for _, s := range old {
		if s.occupied {
			d.insert(s.hash)
		}
	}
}

// Len reports the number of distinct fingerprints currently tracked.
func (d *MessageDeduper) Len() int { return d.count }
