package index

// visitedSet tracks nodes touched during a single graph traversal. It is
// a bitset paired with a dirty list so Reset clears only the words a
// traversal actually flipped, letting instances be pooled across queries.
type visitedSet struct {
	bits  []uint64
	dirty []uint32
}

func newVisitedSet(capacity int) *visitedSet {
	return &visitedSet{
		bits:  make([]uint64, (capacity+63)/64),
		dirty: make([]uint32, 0, 128),
	}
}

// Visit marks id as seen and reports whether it was already seen.
func (v *visitedSet) Visit(id uint32) bool {
	word := int(id >> 6)
	mask := uint64(1) << (id & 63)
	if word >= len(v.bits) {
		v.grow(word + 1)
	}
	if v.bits[word]&mask != 0 {
		return true
	}
	v.bits[word] |= mask
	v.dirty = append(v.dirty, id)
	return false
}

// Reset clears every bit set since the last reset.
func (v *visitedSet) Reset() {
	for _, id := range v.dirty {
		v.bits[id>>6] &^= uint64(1) << (id & 63)
	}
	v.dirty = v.dirty[:0]
}

func (v *visitedSet) grow(words int) {
	grown := make([]uint64, words*2)
	copy(grown, v.bits)
	v.bits = grown
}
