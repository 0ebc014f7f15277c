package rc

import (
	"sync"
	"testing"
)

// Scenario 3: strong/weak cycle. Build RC nodes x, y with
// x.Prev = make_weak(y), y.Prev = make_weak(x); on scope exit both
// managed objects are destroyed immediately since strong counts hit
// zero; control blocks are destroyed once the corresponding weak counts
// also reach zero.
func TestScenarioStrongWeakCycle(t *testing.T) {
	var xDestroyed, yDestroyed bool

	x, err := MakeShared(func(self *finalizerStub) error {
		self.onFinalize = func() { xDestroyed = true }
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	y, err := MakeShared(func(self *finalizerStub) error {
		self.onFinalize = func() { yDestroyed = true }
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	xWeakToY := y.MakeWeak()
	yWeakToX := x.MakeWeak()

	// Scope exit: drop the only strong references.
	x.Release()
	y.Release()

	if !xDestroyed || !yDestroyed {
		t.Error("expected both managed objects to be destroyed as soon as their strong counts hit 0")
	}

	// Weak handles can still observe expiry without leaking.
	if !xWeakToY.Expired() || !yWeakToX.Expired() {
		t.Error("expected both weak handles to report expired")
	}

	xWeakToY.Release()
	yWeakToX.Release()
}

// RC-deref-serialises: during any dereference, the managed object is
// alive and not being destroyed; a concurrent release must block until
// every outstanding view is released.
func TestIntegrationDereferenceBlocksDestruction(t *testing.T) {
	h, err := MakeShared(func(self *widget) error { self.Name = "shared"; return nil })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var cp Handle[widget]
	cp.Assign(h)

	view, err := h.Dereference()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	releaseStarted := make(chan struct{})
	releaseDone := make(chan struct{})
	go func() {
		close(releaseStarted)
		cp.Release() // drops to 1, not yet destroying
		h.Release()  // drops to 0, would destroy if not blocked by the view
		close(releaseDone)
	}()

	<-releaseStarted
	if view.Get().Name != "shared" {
		t.Error("view should still observe the object while held")
	}
	view.Release()
	<-releaseDone
}

func TestStressConcurrentCopyAndRelease(t *testing.T) {
	h, err := MakeShared(func(self *widget) error { self.Name = "x"; return nil })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	const goroutines = 32
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			var cp Handle[widget]
			cp.Assign(h)
			view, err := cp.Dereference()
			if err != nil {
				t.Errorf("unexpected dereference error: %v", err)
				return
			}
			view.Release()
			cp.Release()
		}()
	}
	wg.Wait()

	if h.RefCount() != 1 {
		t.Errorf("expected original handle's ref count restored to 1, got %d", h.RefCount())
	}
	h.Release()
}
