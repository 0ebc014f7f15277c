package tc

import "reflect"

// bindEmbeddedFields walks a freshly allocated payload value and binds
// every exported Handle[X]/ArrayHandle[X] field it finds — at any nesting
// depth, inside plain structs and fixed-size arrays — as a HEAP-EMBEDDED
// member of hd, before the caller's build function runs.
//
// This is the Go-native replacement for the thread-local "currently
// constructing object" address-range hint the original design uses: C++
// has no generic way to ask "what fields, of what types, does this
// instance of T have", so it falls back to comparing addresses at
// construction time. Go has exactly that ability in the form of
// reflection, and using it directly is both more precise (no address-range
// heuristic, no window to reason about) and idiomatic for this kind of
// structural, type-erased bookkeeping over an arbitrary caller-supplied T
// — the same technique encoding/json and encoding/gob use to walk structs
// they were never compiled against.
//
// Only exported fields are visited, because reflect cannot take the
// address of an unexported field from outside its declaring package (and
// this walk always runs from package tc). A Handle/ArrayHandle meant to
// participate in tracing must therefore be an exported struct field.
func bindEmbeddedFields(c *Collector, hd *Header, v reflect.Value) {
	switch v.Kind() {
	case reflect.Struct:
		t := v.Type()
		for i := 0; i < v.NumField(); i++ {
			ft := t.Field(i)
			if !ft.IsExported() {
				continue
			}
			f := v.Field(i)
			if !f.CanAddr() {
				continue
			}
			if eb, ok := f.Addr().Interface().(embeddable); ok {
				eb.bindEmbedded(c, hd)
				continue
			}
			bindEmbeddedFields(c, hd, f)
		}
	case reflect.Array:
		for i := 0; i < v.Len(); i++ {
			e := v.Index(i)
			if e.CanAddr() {
				if eb, ok := e.Addr().Interface().(embeddable); ok {
					eb.bindEmbedded(c, hd)
					continue
				}
			}
			bindEmbeddedFields(c, hd, e)
		}
	default:
		// Pointers, slices, maps, and interfaces are not walked: their
		// storage is not part of this object's own contiguous payload,
		// so a Handle reachable only through one of them belongs to
		// whatever allocation actually owns that storage, not this one.
	}
}

// bindArrayElements is the array-factory counterpart: the payload's own
// backing slice IS the tracked object's storage, so its elements (unlike
// an ordinary slice field reached during a struct walk) are walked as if
// they were inline.
func bindArrayElements[T any](c *Collector, hd *Header, values []T) {
	for i := range values {
		bindEmbeddedFields(c, hd, reflect.ValueOf(&values[i]).Elem())
	}
}
