package anim

import "time"

// Slot owns one kind of long-running work (a camera fit, a crossfade, an entrance)
// and guarantees at most one live Task at a time. Starting a task tears down the
// previous one first; every callback a stale task scheduled becomes a no-op.
type Slot struct {
	loop    *Loop
	guard   func() bool
	gen     uint64
	handles []Handle
	running bool
}

// NewSlot creates a slot on loop. guard, when set, is the "still relevant" check
// (for example "is the view still open"); a false guard makes every task stale.
func (l *Loop) NewSlot(guard func() bool) *Slot {
	return &Slot{loop: l, guard: guard}
}

// Start cancels the current task and returns a fresh one.
func (s *Slot) Start() *Task {
	s.Cancel()
	s.running = true
	return &Task{slot: s, gen: s.gen}
}

// Cancel tears down the current task. It is idempotent.
func (s *Slot) Cancel() {
	for _, h := range s.handles {
		s.loop.Cancel(h)
	}
	s.handles = s.handles[:0]
	s.gen++
	s.running = false
}

// forget drops a fired handle.
func (s *Slot) forget(h Handle) {
	for i, v := range s.handles {
		if v == h {
			s.handles = append(s.handles[:i], s.handles[i+1:]...)
			return
		}
	}
}

// Running reports whether a task was started and has not finished or been cancelled.
func (s *Slot) Running() bool { return s.running }

// Generation returns the slot's current generation counter.
func (s *Slot) Generation() uint64 { return s.gen }

// Task is one generation of a Slot.
type Task struct {
	slot *Slot
	gen  uint64
}

// Valid reports whether the task is still the slot's current generation and the
// slot guard holds.
func (t *Task) Valid() bool {
	if t == nil || t.slot.gen != t.gen {
		return false
	}
	return t.slot.guard == nil || t.slot.guard()
}

// Generation returns the generation this task was started with.
func (t *Task) Generation() uint64 { return t.gen }

// Loop returns the loop the task runs on.
func (t *Task) Loop() *Loop { return t.slot.loop }

// Frame schedules fn for the next frame if the task is still valid then.
func (t *Task) Frame(fn func(now time.Duration)) {
	if !t.Valid() {
		return
	}
	var h Handle
	h = t.slot.loop.RequestFrame(func(now time.Duration) {
		t.slot.forget(h)
		if t.Valid() {
			fn(now)
		}
	})
	t.slot.handles = append(t.slot.handles, h)
}

// After schedules fn after d if the task is still valid then.
func (t *Task) After(d time.Duration, fn func()) {
	if !t.Valid() {
		return
	}
	var h Handle
	h = t.slot.loop.After(d, func() {
		t.slot.forget(h)
		if t.Valid() {
			fn()
		}
	})
	t.slot.handles = append(t.slot.handles, h)
}

// Done marks the task finished. The slot goes idle if this is still its current task.
func (t *Task) Done() {
	if t.Valid() {
		t.slot.running = false
	}
}
