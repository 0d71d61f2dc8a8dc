package collections

type StringBoolMap map[string]bool

// Has returns true if a map contains a given key with 'true' value.
func (m StringBoolMap) Has(key string) bool {
	return m[key]
}

// Add marks a key as present.
func (m StringBoolMap) Add(key string) {
	m[key] = true
}
