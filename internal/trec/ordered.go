package trec

import "sort"

// OrderedMap is a map that remembers insertion order. Lookups never
// create entries; only Set and GetOrInsert do.
type OrderedMap[K comparable, V any] struct {
	keys   []K
	values map[K]V
}

// NewOrderedMap creates an empty ordered map.
func NewOrderedMap[K comparable, V any]() *OrderedMap[K, V] {
	return &OrderedMap[K, V]{
		values: make(map[K]V),
	}
}

// Get returns the value stored for k.
func (m *OrderedMap[K, V]) Get(k K) (V, bool) {
	v, ok := m.values[k]
	return v, ok
}

// Set stores v for k. A new key is appended to the order; an existing
// key keeps its position.
func (m *OrderedMap[K, V]) Set(k K, v V) {
	if _, ok := m.values[k]; !ok {
		m.keys = append(m.keys, k)
	}
	m.values[k] = v
}

// GetOrInsert returns the value for k, inserting the result of create
// if k is absent.
func (m *OrderedMap[K, V]) GetOrInsert(k K, create func() V) V {
	if v, ok := m.values[k]; ok {
		return v
	}
	v := create()
	m.keys = append(m.keys, k)
	m.values[k] = v
	return v
}

// Keys returns the keys in insertion order.
func (m *OrderedMap[K, V]) Keys() []K {
	keys := make([]K, len(m.keys))
	copy(keys, m.keys)
	return keys
}

// SortedKeys returns the keys ordered by less.
func (m *OrderedMap[K, V]) SortedKeys(less func(a, b K) bool) []K {
	keys := m.Keys()
	sort.SliceStable(keys, func(i, j int) bool {
		return less(keys[i], keys[j])
	})
	return keys
}

// Len returns the number of keys.
func (m *OrderedMap[K, V]) Len() int {
	return len(m.keys)
}
