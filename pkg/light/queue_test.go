package light

import "testing"

func TestBucketQueuePopsHighestLevelFirst(t *testing.T) {
	q := newBucketQueue()
	q.enqueue(QueueEntry{Pos: BlockPos{X: 1}, Level: 3})
	q.enqueue(QueueEntry{Pos: BlockPos{X: 2}, Level: 15})
	q.enqueue(QueueEntry{Pos: BlockPos{X: 3}, Level: 9})

	want := []uint8{15, 9, 3}
	for _, w := range want {
		e, ok := q.pop()
		if !ok {
			t.Fatalf("pop() returned no entry, want level %d", w)
		}
		if e.Level != w {
			t.Errorf("pop() level = %d, want %d", e.Level, w)
		}
	}
	if _, ok := q.pop(); ok {
		t.Error("pop() on empty queue returned an entry")
	}
}

func TestBucketQueueFIFOWithinLevel(t *testing.T) {
	q := newBucketQueue()
	q.enqueue(QueueEntry{Pos: BlockPos{X: 1}, Level: 5})
	q.enqueue(QueueEntry{Pos: BlockPos{X: 2}, Level: 5})
	q.enqueue(QueueEntry{Pos: BlockPos{X: 3}, Level: 5})

	for _, wantX := range []int32{1, 2, 3} {
		e, ok := q.pop()
		if !ok || e.Pos.X != wantX {
			t.Fatalf("pop() = %+v, ok=%v, want X=%d", e, ok, wantX)
		}
	}
}

func TestBucketQueueDropsLevelZero(t *testing.T) {
	q := newBucketQueue()
	q.enqueue(QueueEntry{Pos: BlockPos{X: 1}, Level: 0})

	if q.hasWork() {
		t.Error("hasWork() true after enqueuing a level-0 entry")
	}
	if _, ok := q.pop(); ok {
		t.Error("pop() returned a level-0 entry")
	}
}

func TestBucketQueueHasWork(t *testing.T) {
	q := newBucketQueue()
	if q.hasWork() {
		t.Error("hasWork() true on a fresh queue")
	}
	q.enqueue(QueueEntry{Pos: BlockPos{X: 1}, Level: 1})
	if !q.hasWork() {
		t.Error("hasWork() false after enqueuing a level-1 entry")
	}
	q.pop()
	if q.hasWork() {
		t.Error("hasWork() true after draining the only entry")
	}
}
