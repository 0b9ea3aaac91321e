package hashmap

import "errors"

var (
	// ErrInvalidConfig is wrapped by every construction error.
	ErrInvalidConfig = errors.New("hashmap: invalid configuration")

	// ErrInvalidCapacity is returned by New for a negative InitialCapacity.
	ErrInvalidCapacity = errors.New("hashmap: negative initial capacity")

	// ErrInvalidLoadFactor is returned by New for a negative, NaN or infinite LoadFactor.
	ErrInvalidLoadFactor = errors.New("hashmap: load factor must be positive and finite")

	// ErrNilFunc is returned when a required callback is nil. No mutation happens.
	ErrNilFunc = errors.New("hashmap: nil function")

	// ErrConcurrentModification reports a structural change observed during
	// iteration or inside a compute callback. Detection is best-effort.
	ErrConcurrentModification = errors.New("hashmap: concurrent modification")

	// ErrNoCurrent is returned by Iterator.Remove and Iterator.SetValue when
	// there is no current entry.
	ErrNoCurrent = errors.New("hashmap: iterator has no current entry")
)
