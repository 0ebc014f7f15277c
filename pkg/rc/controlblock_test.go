package rc

import "testing"

func TestControlBlockStartsWithStrongOneWeakZero(t *testing.T) {
	cb := newControlBlock(new(int), nil)
	if cb.strongCount() != 1 {
		t.Errorf("expected strong count 1, got %d", cb.strongCount())
	}
	if cb.weakCount() != 0 {
		t.Errorf("expected weak count 0, got %d", cb.weakCount())
	}
	if !cb.isAlive() {
		t.Error("freshly constructed control block should be alive")
	}
}

func TestControlBlockReleaseStrongToZeroDestroysObject(t *testing.T) {
	var destroyed bool
	cb := newControlBlock(new(int), func(o *int) { destroyed = true })

	cb.releaseStrong()
	if !destroyed {
		t.Error("expected managed object to be destroyed when strong count hits 0")
	}
	if cb.isAlive() {
		t.Error("control block should report not-alive after destruction")
	}
}

func TestControlBlockDestroysSelfOnlyWhenBothCountersZero(t *testing.T) {
	cb := newControlBlock(new(int), nil)
	cb.addWeak()

	cb.releaseStrong()
	if cb.destroyed.Load() {
		t.Error("control block should not self-destroy while a weak reference remains")
	}

	cb.releaseWeak()
	if !cb.destroyed.Load() {
		t.Error("control block should self-destroy once both counters reach 0")
	}
	if err := cb.checkIntegrity(); err == nil {
		t.Error("expected checkIntegrity to report corruption after self-destruction")
	}
}

func TestControlBlockTryAddStrongFailsAfterDestruction(t *testing.T) {
	cb := newControlBlock(new(int), nil)
	cb.addWeak()
	cb.releaseStrong()

	if cb.tryAddStrong() {
		t.Error("tryAddStrong should fail once the strong count has reached 0")
	}
}

func TestControlBlockUnderflowGuardIsNoOp(t *testing.T) {
	cb := newControlBlock(new(int), nil)
	cb.releaseStrong() // drops to 0, destroys

	cb.releaseStrong() // erroneous extra release; must not underflow
	if cb.strong.Load() != 0 {
		t.Errorf("expected strong count to stay at 0 after guarded extra release, got %d", cb.strong.Load())
	}
}

// RC-destroy-once: the managed-object destructor runs at most once.
func TestControlBlockFinalizeRunsExactlyOnce(t *testing.T) {
	calls := 0
	cb := newControlBlock(new(int), func(o *int) { calls++ })

	cb.destroyManagedObject()
	cb.destroyManagedObject()

	if calls != 1 {
		t.Errorf("expected finalize to run exactly once, ran %d times", calls)
	}
}
