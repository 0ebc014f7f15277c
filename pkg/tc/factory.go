package tc

import (
	"reflect"
	"unsafe"
)

// NewOn constructs a single tracked value of type T on collector c and
// returns a ROOT Handle to it (spec §4.1). build receives a pointer to
// the zero-valued payload storage and initializes it in place — a
// callback shaped this way, rather than one returning a T by value,
// avoids copying a struct that may itself hold atomic or embedded-handle
// fields, and keeps the field addresses reflect.go bound stable for the
// lifetime of the object.
//
// Any exported Handle[X]/ArrayHandle[X] fields of T (at any nesting
// depth, through plain structs and fixed arrays) are discovered and bound
// as HEAP-EMBEDDED before build runs, so build may freely assign their
// referents.
//
// If build returns a non-nil error, the partially constructed object is
// unregistered and discarded without ever being reachable from a
// collection, and NewOn returns a nil *Handle together with that
// error.
func NewOn[T any](c *Collector, build func(self *T) error) (*Handle[T], error) {
	c.maybeCollect()

	o := &object[T]{}
	o.header.start = uintptr(unsafe.Pointer(&o.value))
	o.header.end = o.header.start + unsafe.Sizeof(o.value)
	o.header.rootRefCnt.Store(1)

	c.register(&o.header)
	bindEmbeddedFields(c, &o.header, reflect.ValueOf(&o.value).Elem())

	if err := build(&o.value); err != nil {
		c.unregister(&o.header)
		return nil, err
	}

	o.header.finalize = func() {
		if f, ok := any(&o.value).(Finalizer); ok {
			f.Finalize()
		}
	}

	return newRootHandle(c, o), nil
}

// New is NewOn against the package Default collector.
func New[T any](build func(self *T) error) (*Handle[T], error) {
	return NewOn[T](Default, build)
}

// NewArrayOn constructs a fixed-count run of n tracked values of type T on
// collector c and returns a ROOT ArrayHandle to it (spec §4.1's array
// variant). build is invoked once per element, in order, receiving a
// pointer to that element's storage and its index.
//
// If build returns a non-nil error for element i, the i elements already
// constructed are torn down in reverse order (Finalize is invoked on any
// that implement Finalizer) before the array object is unregistered and
// discarded, and NewArrayOn returns a nil *ArrayHandle together with
// that error.
func NewArrayOn[T any](c *Collector, n int, build func(self *T, i int) error) (*ArrayHandle[T], error) {
	c.maybeCollect()

	o := &arrayObject[T]{values: make([]T, n)}
	if n > 0 {
		o.header.start = uintptr(unsafe.Pointer(&o.values[0]))
		o.header.end = o.header.start + uintptr(n)*unsafe.Sizeof(o.values[0])
	}
	o.header.rootRefCnt.Store(1)

	c.register(&o.header)
	bindArrayElements(c, &o.header, o.values)

	for i := 0; i < n; i++ {
		if err := build(&o.values[i], i); err != nil {
			for j := i - 1; j >= 0; j-- {
				if f, ok := any(&o.values[j]).(Finalizer); ok {
					f.Finalize()
				}
			}
			c.unregister(&o.header)
			return nil, err
		}
	}

	o.header.finalize = func() {
		for i := len(o.values) - 1; i >= 0; i-- {
			if f, ok := any(&o.values[i]).(Finalizer); ok {
				f.Finalize()
			}
		}
	}

	return newRootArrayHandle(c, o), nil
}

// NewArray is NewArrayOn against the package Default collector.
func NewArray[T any](n int, build func(self *T, i int) error) (*ArrayHandle[T], error) {
	return NewArrayOn[T](Default, n, build)
}

// CollectNow forces an immediate collection cycle on the package Default
// collector.
func CollectNow() Stats {
	return Default.CollectNow()
}
