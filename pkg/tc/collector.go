package tc

import (
	"sync"
	"sync/atomic"
)

// Config tunes a Collector's trigger policy. The zero value is not usable;
// construct one with DefaultConfig and override fields as needed, mirroring
// the teacher corpus's convention of passing an explicit config value into
// a constructor rather than a functional-options API.
type Config struct {
	// InitialCountdown is the starting value of the allocation countdown:
	// the InitialCountdown-th allocation runs the first automatic
	// collection before registering its own object.
	InitialCountdown int64

	// RecalibrationFloor bounds how low the post-collection countdown
	// can be recalibrated to, regardless of how few objects survived.
	RecalibrationFloor int64
}

// DefaultConfig returns the tuning used by the package-level Default
// collector: an initial countdown of 1024 allocations and the same value
// as the recalibration floor, matching spec §4.3's
// max(2*live_object_count, 1024) recalibration rule.
func DefaultConfig() Config {
	return Config{InitialCountdown: 1024, RecalibrationFloor: 1024}
}

// Collector owns a registry of live tracked objects and the single global
// lock that serializes registry edits, embedded-handle list edits, the
// root-reference 0->1 transition, and all phases of a collection cycle
// (spec §5). Most callers use the package-level Default collector via New
// and NewArray; an isolated Collector is useful for tests that want a
// private registry.
type Collector struct {
	mu     sync.Mutex
	cfg    Config
	nextID atomic.Uint64

	countdown atomic.Int64

	objects []*Header // guarded by mu
}

// NewCollector creates an independent collector with its own registry.
func NewCollector(cfg Config) *Collector {
	c := &Collector{cfg: cfg}
	c.countdown.Store(cfg.InitialCountdown)
	return c
}

// Default is the collector package-level New and NewArray allocate
// through.
var Default = NewCollector(DefaultConfig())

// Stats summarizes one collection cycle, returned by CollectNow in place
// of the logging this subsystem's non-goals exclude (see SPEC_FULL.md).
type Stats struct {
	Live      int // objects that survived this cycle
	Finalized int // objects swept and finalized this cycle
}

// register appends hd to the registry under the collector lock and
// assigns it a registration id. Called by the typed factories while
// constructing an object (spec §4.1 step 3).
func (c *Collector) register(hd *Header) {
	c.mu.Lock()
	hd.id = c.nextID.Add(1)
	c.objects = append(c.objects, hd)
	c.mu.Unlock()
}

// unregister removes hd from the registry without running its finalizer;
// used to roll back a failed construction (spec §4.1 step 5).
func (c *Collector) unregister(hd *Header) {
	c.mu.Lock()
	for i, o := range c.objects {
		if o == hd {
			c.objects = append(c.objects[:i], c.objects[i+1:]...)
			break
		}
	}
	c.mu.Unlock()
}

// maybeCollect implements the allocation-pressure trigger (spec §4.1 step
// 1 / §4.3): decrement the countdown, and if it reaches or passes zero,
// run a full collection before the caller commits its new allocation.
func (c *Collector) maybeCollect() {
	if c.countdown.Add(-1) <= 0 {
		c.CollectNow()
	}
}

// CollectNow forces an immediate collection cycle. It is safe to call at
// any time, including from within a Finalize method invoked by a previous
// cycle's sweep (spec §4.3 step 4's re-entrancy allowance): the lock is
// released before finalizers run, so a finalizer that allocates and
// thereby triggers another cycle does not deadlock.
func (c *Collector) CollectNow() Stats {
	garbage := c.markAndPartition()
	finalizeAll(garbage)

	c.mu.Lock()
	live := int64(len(c.objects))
	floor := c.cfg.RecalibrationFloor
	next := 2 * live
	if next < floor {
		next = floor
	}
	c.countdown.Store(next)
	c.mu.Unlock()

	return Stats{Live: int(live), Finalized: len(garbage)}
}

// markAndPartition runs phases 1-3 (seed, propagate, partition) under the
// collector lock and returns the garbage tail, detached from the registry.
func (c *Collector) markAndPartition() []*Header {
	c.mu.Lock()
	defer c.mu.Unlock()

	var work []*Header

	// Phase 1: seed.
	for _, hd := range c.objects {
		if hd.rootRefCnt.Load() > 0 {
			hd.mark = true
			work = append(work, hd)
		} else {
			hd.mark = false
		}
	}

	// Phase 2: propagate.
	for len(work) > 0 {
		n := len(work) - 1
		hd := work[n]
		work = work[:n]

		for node := hd.embedded; node != nil; node = node.next {
			child := node.h.header()
			if child == nil || child.mark {
				continue
			}
			child.mark = true
			work = append(work, child)
		}
	}

	// Phase 3: partition. Live objects keep their registry slot; garbage
	// is moved to a local list and the registry is truncated.
	live := c.objects[:0]
	var garbage []*Header
	for _, hd := range c.objects {
		if hd.mark {
			live = append(live, hd)
		} else {
			garbage = append(garbage, hd)
		}
	}
	c.objects = live

	return garbage
}

// finalizeAll runs phase 4 (finalize) outside any lock: each garbage
// object's finalizer runs exactly once.
func finalizeAll(garbage []*Header) {
	for _, hd := range garbage {
		hd.swept = true
		if hd.finalize != nil {
			hd.finalize()
		}
	}
}

// incRoot performs a root-reference increment, taking the collector lock
// only for the 0->1 transition (spec §5); ordinary increments above zero
// are lock-free relaxed atomics.
func (c *Collector) incRoot(hd *Header) {
	for {
		old := hd.rootRefCnt.Load()
		if old != 0 {
			if hd.rootRefCnt.CompareAndSwap(old, old+1) {
				return
			}
			continue
		}
		c.mu.Lock()
		if hd.rootRefCnt.CompareAndSwap(0, 1) {
			c.mu.Unlock()
			return
		}
		c.mu.Unlock()
		// Someone else raced us to the 0->1 transition or past it;
		// retry the lock-free path.
	}
}

// decRoot performs a root-reference decrement; never takes the lock
// (spec §5).
func (c *Collector) decRoot(hd *Header) {
	hd.rootRefCnt.Add(-1)
}

// link appends an embedded handle to hd's list, taking the collector lock
// to synchronize with any in-progress mark phase (spec §4.2/§4.3).
func (c *Collector) link(hd *Header, h embeddedHandle) {
	c.mu.Lock()
	hd.link(h)
	c.mu.Unlock()
}

// withLock publishes a new referent for an embedded handle's obj field (or
// performs any other mutation that must be serialized against mark) under
// the collector lock, closing the window spec §4.3 calls out: mark must
// never observe a handle whose referent has been unpublished.
func (c *Collector) withLock(f func()) {
	c.mu.Lock()
	f()
	c.mu.Unlock()
}

// LiveCount reports the number of objects currently registered, live or
// not yet collected.
func (c *Collector) LiveCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.objects)
}
