// Package util contains internal helpers (hashing, ordering, sizing, padding).
//
//revive:disable:var-naming  // allow 'util' as an internal helpers package name
package util

import (
	"hash/maphash"
	"reflect"

	"github.com/cespare/xxhash/v2"
)

// seed is fixed for the process so that Hash64 is stable across maps.
var seed = maphash.MakeSeed()

// Hash64 hashes any comparable key.
//   - string: xxhash
//   - integer kinds: 64-bit FNV-1a over the little-endian bytes
//   - nil interface and nil pointer/channel keys: 0
//   - everything else: hash/maphash.Comparable
func Hash64[K comparable](k K) uint64 {
	switch v := any(k).(type) {
	case nil:
		return 0
	case string:
		return xxhash.Sum64String(v)
	case uint8:
		return fnv64aFromUint64(uint64(v))
	case uint16:
		return fnv64aFromUint64(uint64(v))
	case uint32:
		return fnv64aFromUint64(uint64(v))
	case uint64:
		return fnv64aFromUint64(v)
	case uint:
		return fnv64aFromUint64(uint64(v))
	case uintptr:
		return fnv64aFromUint64(uint64(v))
	case int8:
		return fnv64aFromUint64(uint64(uint8(v)))
	case int16:
		return fnv64aFromUint64(uint64(uint16(v)))
	case int32:
		return fnv64aFromUint64(uint64(uint32(v)))
	case int64:
		return fnv64aFromUint64(uint64(v))
	case int:
		return fnv64aFromUint64(uint64(v))
	}
	if isNil(any(k)) {
		return 0
	}
	return maphash.Comparable(seed, k)
}

// Hash32 folds Hash64 into the 32-bit raw hash used for bucket indexing.
func Hash32[K comparable](k K) uint32 {
	h := Hash64(k)
	return uint32(h) ^ uint32(h>>32)
}

// isNil reports nil pointers, channels and unsafe pointers.
func isNil(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Chan, reflect.UnsafePointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

const (
	fnvOffset64 = 1469598103934665603
	fnvPrime64  = 1099511628211
)

func fnv64aFromUint64(u uint64) uint64 {
	// Hash the 8 little-endian bytes of u without allocating.
	h := uint64(fnvOffset64)
	for i := 0; i < 8; i++ {
		h ^= uint64(byte(u))
		h *= fnvPrime64
		u >>= 8
	}
	return h
}
