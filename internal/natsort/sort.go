package natsort

import "sort"

// Strings sorts names in place using natural order.
func Strings(names []string) {
	keys := make([]Key, len(names))
	for i, n := range names {
		keys[i] = NewKey(n)
	}
	sort.Sort(&byKey{names: names, keys: keys})
}

type byKey struct {
	names []string
	keys  []Key
}

func (b *byKey) Len() int { return len(b.names) }
func (b *byKey) Less(i, j int) bool {
	return Less(b.keys[i], b.keys[j])
}
func (b *byKey) Swap(i, j int) {
	b.names[i], b.names[j] = b.names[j], b.names[i]
	b.keys[i], b.keys[j] = b.keys[j], b.keys[i]
}
