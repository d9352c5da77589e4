package dataset

import "strconv"

// Key identifies a channel either by a small integer index or by name.
type Key struct {
	index int
	name  string
}

// Index returns the key of the i-th component.
func Index(i int) Key { return Key{index: i} }

// Name returns a named key.
func Name(name string) Key { return Key{index: -1, name: name} }

// IsIndex reports whether k is an index key.
func (k Key) IsIndex() bool { return k.index >= 0 }

// String implements fmt.Stringer.
func (k Key) String() string {
	if k.IsIndex() {
		return strconv.Itoa(k.index)
	}

	return strconv.Quote(k.name)
}

var vectorKeys = [3]Key{Index(0), Index(1), Index(2)}
