package noise

// TableSize is the number of distinct lattice hashes; the noise field
// repeats every TableSize units along each axis.
const TableSize = 256

// Table is a seeded permutation of 0..255 with entry 0 repeated at index 256,
// so lookups of i+1 never need a bounds wrap.
type Table [TableSize + 1]uint8

// NewTable builds the permutation table for seed. Identical seeds produce
// bit-identical tables.
func NewTable(seed uint64) *Table {
	p := make([]uint8, TableSize)
	for i := range p {
		p[i] = uint8(i)
	}
	NewSource(seed).Shuffle(p)

	t := &Table{}
	copy(t[:], p)
	t[TableSize] = t[0]
	return t
}

// Valid reports whether t holds every value 0..255 exactly once in its first
// 256 entries and repeats entry 0 at the end.
func (t *Table) Valid() bool {
	var seen [TableSize]bool
	for _, v := range t[:TableSize] {
		if seen[v] {
			return false
		}
		seen[v] = true
	}
	return t[TableSize] == t[0]
}
