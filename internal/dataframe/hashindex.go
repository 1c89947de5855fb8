package dataframe

import (
	xxhash "github.com/cespare/xxhash/v2"
)

const (
	hashMapLoadFactor     = 0.75 // load factor before the index grows
	hashMapGrowthFactor   = 2    // growth factor for resize
	hashMapCapacityFactor = 1.3  // head room for the initial capacity
	minHashCapacity       = 16
)

// hashIndex maps string keys to the rows that carry them, remembering the
// order in which keys were first seen. Buckets are addressed with xxhash.
type hashIndex struct {
	buckets  [][]hashEntry
	capacity int
	size     int
	order    []string
}

type hashEntry struct {
	key  string
	rows []int
}

func newHashIndex(estimatedSize int) *hashIndex {
	capacity := nextPowerOfTwo(max(int(float64(estimatedSize)*hashMapCapacityFactor), minHashCapacity))
	return &hashIndex{
		buckets:  make([][]hashEntry, capacity),
		capacity: capacity,
	}
}

func (h *hashIndex) bucket(key string) int {
	//nolint:gosec // capacity is a positive power of two
	return int(xxhash.Sum64String(key) & uint64(h.capacity-1))
}

// add records row under key and reports whether key was new.
func (h *hashIndex) add(key string, row int) bool {
	idx := h.bucket(key)
	for i := range h.buckets[idx] {
		if h.buckets[idx][i].key == key {
			h.buckets[idx][i].rows = append(h.buckets[idx][i].rows, row)
			return false
		}
	}

	h.buckets[idx] = append(h.buckets[idx], hashEntry{key: key, rows: []int{row}})
	h.order = append(h.order, key)
	h.size++

	if float64(h.size) > float64(h.capacity)*hashMapLoadFactor {
		h.resize()
	}
	return true
}

func (h *hashIndex) get(key string) ([]int, bool) {
	for _, entry := range h.buckets[h.bucket(key)] {
		if entry.key == key {
			return entry.rows, true
		}
	}
	return nil, false
}

// keys returns keys in first-seen order.
func (h *hashIndex) keys() []string {
	return append([]string(nil), h.order...)
}

func (h *hashIndex) resize() {
	old := h.buckets
	h.capacity *= hashMapGrowthFactor
	h.buckets = make([][]hashEntry, h.capacity)
	for _, bucket := range old {
		for _, entry := range bucket {
			idx := h.bucket(entry.key)
			h.buckets[idx] = append(h.buckets[idx], entry)
		}
	}
}

func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	power := 1
	for power < n {
		power <<= 1
	}
	return power
}
