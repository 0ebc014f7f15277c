package rc

import (
	"errors"
	"testing"
)

type widget struct {
	Name string
}

func TestMakeSharedBasic(t *testing.T) {
	h, err := MakeShared(func(self *widget) error {
		self.Name = "gizmo"
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer h.Release()

	if h.RefCount() != 1 {
		t.Errorf("expected ref count 1, got %d", h.RefCount())
	}
	view, err := h.Dereference()
	if err != nil {
		t.Fatalf("unexpected dereference error: %v", err)
	}
	defer view.Release()
	if view.Get().Name != "gizmo" {
		t.Errorf("expected name 'gizmo', got %v", view.Get().Name)
	}
}

func TestMakeSharedBuildErrorPropagates(t *testing.T) {
	boom := errors.New("construction failed")
	h, err := MakeShared(func(self *widget) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom error, got %v", err)
	}
	if h != nil {
		t.Error("expected nil handle on construction failure")
	}
}

func TestHandleCopyIncrementsStrongCount(t *testing.T) {
	h, _ := MakeShared(func(self *widget) error { self.Name = "a"; return nil })
	defer h.Release()

	var cp Handle[widget]
	cp.Assign(h)
	defer cp.Release()

	if h.RefCount() != 2 {
		t.Errorf("expected ref count 2 after copy, got %d", h.RefCount())
	}
}

func TestHandleMoveTransfersWithoutRecount(t *testing.T) {
	h, _ := MakeShared(func(self *widget) error { self.Name = "a"; return nil })

	var dst Handle[widget]
	dst.Move(h)

	if !h.IsNull() {
		t.Error("source handle should be null after Move")
	}
	if dst.RefCount() != 1 {
		t.Errorf("move should not change the total ref count, got %d", dst.RefCount())
	}
	dst.Release()
}

func TestHandleWeakDereferenceFails(t *testing.T) {
	h, _ := MakeShared(func(self *widget) error { self.Name = "a"; return nil })
	defer h.Release()

	w := h.MakeWeak()
	defer w.Release()

	if _, err := w.Dereference(); !errors.Is(err, ErrWeakDeref) {
		t.Errorf("expected ErrWeakDeref, got %v", err)
	}
}

func TestHandleNilDereferenceFails(t *testing.T) {
	var h Handle[widget]
	if _, err := h.Dereference(); !errors.Is(err, ErrNilHandle) {
		t.Errorf("expected ErrNilHandle, got %v", err)
	}
}

func TestHandleMakeWeakOfWeakReturnsNull(t *testing.T) {
	h, _ := MakeShared(func(self *widget) error { return nil })
	defer h.Release()

	w1 := h.MakeWeak()
	defer w1.Release()

	w2 := w1.MakeWeak()
	if !w2.IsNull() {
		t.Error("MakeWeak on an already-weak handle should return a null handle")
	}
}

// RC-weak-safety: make_weak(strong).lock() returns a non-null strong
// handle iff the strong has not yet reached zero.
func TestHandleLockSucceedsWhileStrongAlive(t *testing.T) {
	h, _ := MakeShared(func(self *widget) error { return nil })

	w := h.MakeWeak()
	defer w.Release()

	promoted := w.Lock()
	if promoted.IsNull() {
		t.Fatal("expected Lock to succeed while the strong handle is alive")
	}
	if promoted.RefCount() != 2 {
		t.Errorf("expected ref count 2 after promotion, got %d", promoted.RefCount())
	}
	promoted.Release()
	h.Release()
}

func TestHandleLockFailsAfterExpiry(t *testing.T) {
	h, _ := MakeShared(func(self *widget) error { return nil })

	w := h.MakeWeak()
	defer w.Release()

	h.Release()

	if !w.Expired() {
		t.Error("handle should be expired once the last strong reference releases")
	}
	promoted := w.Lock()
	if !promoted.IsNull() {
		t.Error("Lock should fail once the managed object has been destroyed")
	}
}

func TestHandleWeakExpirySequence(t *testing.T) {
	// Scenario 5: s = make_shared<T>(); w = make_weak(s); destroy s;
	// w.lock() returns null; w.expired() is true.
	s, err := MakeShared(func(self *widget) error { self.Name = "s"; return nil })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	w := s.MakeWeak()
	defer w.Release()

	s.Release()

	if promoted := w.Lock(); !promoted.IsNull() {
		t.Error("expected lock() to return null after the strong handle was destroyed")
	}
	if !w.Expired() {
		t.Error("expected expired() to be true")
	}
}

func TestHandleReleaseIsIdempotent(t *testing.T) {
	h, _ := MakeShared(func(self *widget) error { return nil })
	h.Release()
	if h.RefCount() != 0 {
		t.Fatalf("expected ref count 0 after Release, got %d", h.RefCount())
	}
	h.Release()
	if h.RefCount() != 0 {
		t.Errorf("second Release should be a no-op, got %d", h.RefCount())
	}
}

func TestHandleDereferenceAfterDestructionFails(t *testing.T) {
	h, _ := MakeShared(func(self *widget) error { return nil })
	w := h.MakeWeak()
	defer w.Release()

	h.Release()

	promoted := w.Lock()
	if !promoted.IsNull() {
		t.Fatal("promotion should fail once destroyed")
	}
}

func TestHandleUnique(t *testing.T) {
	h, _ := MakeShared(func(self *widget) error { return nil })
	defer h.Release()

	if !h.Unique() {
		t.Error("a freshly constructed handle should be unique")
	}

	var cp Handle[widget]
	cp.Assign(h)
	defer cp.Release()

	if h.Unique() {
		t.Error("handle should not be unique once a copy exists")
	}
}

func TestHandleEqual(t *testing.T) {
	h, _ := MakeShared(func(self *widget) error { return nil })
	defer h.Release()

	var cp Handle[widget]
	cp.Assign(h)
	defer cp.Release()

	if !h.Equal(&cp) {
		t.Error("handles sharing the same control block should compare equal")
	}

	other, _ := MakeShared(func(self *widget) error { return nil })
	defer other.Release()

	if h.Equal(other) {
		t.Error("handles to distinct objects should not compare equal")
	}
}
