package util

import (
	"cmp"
	"reflect"
)

// Compare orders two keys by their natural ordering when the dynamic type
// is a built-in ordered kind. It returns 0 when the keys are equal or not
// mutually comparable (different dynamic types, structs, pointers...).
func Compare[K comparable](a, b K) int {
	switch x := any(a).(type) {
	case string:
		return compareAs(x, any(b))
	case int:
		return compareAs(x, any(b))
	case int8:
		return compareAs(x, any(b))
	case int16:
		return compareAs(x, any(b))
	case int32:
		return compareAs(x, any(b))
	case int64:
		return compareAs(x, any(b))
	case uint:
		return compareAs(x, any(b))
	case uint8:
		return compareAs(x, any(b))
	case uint16:
		return compareAs(x, any(b))
	case uint32:
		return compareAs(x, any(b))
	case uint64:
		return compareAs(x, any(b))
	case uintptr:
		return compareAs(x, any(b))
	case float32:
		return compareAs(x, any(b))
	case float64:
		return compareAs(x, any(b))
	}
	return 0
}

func compareAs[T cmp.Ordered](x T, b any) int {
	if y, ok := b.(T); ok {
		return cmp.Compare(x, y)
	}
	return 0
}

// TypeName returns the dynamic type name of v ("" for a nil interface).
// Used as a deterministic tie-break between keys of different types.
func TypeName(v any) string {
	if v == nil {
		return ""
	}
	return reflect.TypeOf(v).String()
}
