package util

import "reflect"

// EqualFunc returns the default value equality for V: == when V is a
// comparable non-interface type, reflect.DeepEqual otherwise (interface
// values may hold uncomparable dynamic types and would panic on ==).
func EqualFunc[V any]() func(a, b V) bool {
	t := reflect.TypeFor[V]()
	if t.Kind() != reflect.Interface && t.Comparable() {
		return func(a, b V) bool { return any(a) == any(b) }
	}
	return func(a, b V) bool { return reflect.DeepEqual(a, b) }
}
