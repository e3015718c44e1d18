package hako

// bitmask256 is the component signature of an archetype: bit i is set when the
// archetype holds a column for EcsTypeID i. Being a comparable array it keys
// the archetype lookup map directly.
type bitmask256 [4]uint64

// set enables the bit for id.
func (m *bitmask256) set(id uint8) {
	m[id>>6] |= uint64(1) << (id & 63)
}

// unset disables the bit for id.
func (m *bitmask256) unset(id uint8) {
	m[id>>6] &^= uint64(1) << (id & 63)
}

// containsBit checks if the bit for id is set.
func (m bitmask256) containsBit(id uint8) bool {
	return m[id>>6]&(uint64(1)<<(id&63)) != 0
}

// count returns the number of set bits.
func (m bitmask256) count() int {
	n := 0
	for _, w := range m {
		for ; w != 0; w &= w - 1 {
			n++
		}
	}
	return n
}
