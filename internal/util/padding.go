package util

import (
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/cpu"
)

// CacheLinePad separates hot fields into distinct cache lines to reduce
// false sharing. Its size follows the target architecture.
type CacheLinePad = cpu.CacheLinePad

// CacheLineSize is the size of CacheLinePad in bytes.
const CacheLineSize = int(unsafe.Sizeof(CacheLinePad{}))

// PaddedAtomicInt64 is an atomic int64 followed by a full cache line of
// padding, so neighbouring counters never share a line.
type PaddedAtomicInt64 struct {
	atomic.Int64
	_ CacheLinePad
}

// PaddedAtomicUint64 is the uint64 counterpart.
type PaddedAtomicUint64 struct {
	atomic.Uint64
	_ CacheLinePad
}
