package rc

// MakeShared allocates and value-constructs a single managed object of
// type T and returns a strong Handle to it (spec §4.6, §6's
// `make_shared<T>`). build receives a pointer to the zero-valued storage
// and initializes it in place, for the same reason pkg/tc's factories
// take a build callback rather than returning T by value: it keeps the
// object's address stable and avoids copying a struct a LockedView may
// already be pointing into.
//
// If build returns a non-nil error, the payload is discarded without
// ever constructing a control block, and MakeShared returns a nil
// *Handle together with that error.
func MakeShared[T any](build func(self *T) error) (*Handle[T], error) {
	obj := new(T)
	if err := build(obj); err != nil {
		return nil, err
	}

	var finalize func(*T)
	if _, ok := any(obj).(Finalizer); ok {
		finalize = func(o *T) {
			if f, ok := any(o).(Finalizer); ok {
				f.Finalize()
			}
		}
	}

	cb := newControlBlock(obj, finalize)
	return newStrongHandle(cb), nil
}

// MakeSharedArray allocates a fixed-count run of n managed values of
// type T, default-constructs each (spec §4.6's array factory), and
// returns a strong ArrayHandle to it. build is invoked once per element,
// in order; on failure, the elements already constructed are torn down
// in reverse order (Finalize is invoked on any that implement Finalizer)
// and MakeSharedArray returns a nil *ArrayHandle together with that
// error.
func MakeSharedArray[T any](n int, build func(self *T, i int) error) (*ArrayHandle[T], error) {
	values := make([]T, n)
	for i := 0; i < n; i++ {
		if err := build(&values[i], i); err != nil {
			for j := i - 1; j >= 0; j-- {
				if f, ok := any(&values[j]).(Finalizer); ok {
					f.Finalize()
				}
			}
			return nil, err
		}
	}

	finalize := func(o *[]T) {
		s := *o
		for i := len(s) - 1; i >= 0; i-- {
			if f, ok := any(&s[i]).(Finalizer); ok {
				f.Finalize()
			}
		}
	}

	cb := newArrayControlBlock(&values, finalize)
	return newStrongArrayHandle[T](cb), nil
}

// Finalizer is implemented by payload types that need to run cleanup
// logic when the control block destroys the managed object. Unlike
// pkg/tc.Finalizer, this runs synchronously inside releaseStrong, under
// the control block's exclusive lock, since RC destruction is
// deterministic rather than sweep-driven.
type Finalizer interface {
	Finalize()
}
