package housekeeping

// KeySet is a set of canonical article keys.
type KeySet map[string]struct{}

// NewKeySet returns a set holding keys.
func NewKeySet(keys ...string) KeySet {
	s := make(KeySet, len(keys))
	for _, k := range keys {
		s.Add(k)
	}
	return s
}

// Add inserts key.
func (s KeySet) Add(key string) {
	s[key] = struct{}{}
}

// Contains reports whether key is in the set. A nil set contains nothing.
func (s KeySet) Contains(key string) bool {
	_, ok := s[key]
	return ok
}

// Len returns the number of keys.
func (s KeySet) Len() int {
	return len(s)
}

// Union returns a new set with every key of s and other.
func (s KeySet) Union(other KeySet) KeySet {
	out := make(KeySet, len(s)+len(other))
	for k := range s {
		out[k] = struct{}{}
	}
	for k := range other {
		out[k] = struct{}{}
	}
	return out
}

// Reachable is the set of keys housekeeping must not evict: everything a
// live content group references plus everything the navigation state
// preserves.
func Reachable(referenced, preserved KeySet) KeySet {
	return referenced.Union(preserved)
}
