// Package pqueue provides a binary min-heap that supports removal of an
// arbitrary element in O(log n).
package pqueue

import "errors"

var (
	// ErrEmptyQueue is returned by DeleteMin and FindMin on an empty heap.
	ErrEmptyQueue = errors.New("pqueue: empty queue")
	// ErrElementNotFound is returned by Remove when the element is not queued.
	ErrElementNotFound = errors.New("pqueue: element not found")
)

// BinaryHeap is an array-backed min-heap ordered by less. Each element's
// current array index is tracked in pos so that Remove does not need to
// scan the array.
//
// Elements must be unique: T is typically a pointer to a search label.
type BinaryHeap[T comparable] struct {
	items []T
	pos   map[T]int
	less  func(a, b T) bool
}

// New creates an empty heap ordered by less.
func New[T comparable](less func(a, b T) bool) *BinaryHeap[T] {
	return &BinaryHeap[T]{
		items: make([]T, 0, 256),
		pos:   make(map[T]int, 256),
		less:  less,
	}
}

func (h *BinaryHeap[T]) Len() int { return len(h.items) }

func (h *BinaryHeap[T]) IsEmpty() bool { return len(h.items) == 0 }

// Contains reports whether x is currently queued.
func (h *BinaryHeap[T]) Contains(x T) bool {
	_, ok := h.pos[x]
	return ok
}

// Insert adds x to the heap. Inserting an element that is already queued
// panics; callers doing decrease-key must Remove first.
func (h *BinaryHeap[T]) Insert(x T) {
	if _, ok := h.pos[x]; ok {
		panic("pqueue: element already in heap")
	}
	h.items = append(h.items, x)
	h.pos[x] = len(h.items) - 1
	h.siftUp(len(h.items) - 1)
}

// FindMin returns the minimum element without removing it.
func (h *BinaryHeap[T]) FindMin() (T, error) {
	if len(h.items) == 0 {
		var zero T
		return zero, ErrEmptyQueue
	}
	return h.items[0], nil
}

// DeleteMin removes and returns the minimum element.
func (h *BinaryHeap[T]) DeleteMin() (T, error) {
	if len(h.items) == 0 {
		var zero T
		return zero, ErrEmptyQueue
	}
	top := h.items[0]
	h.removeAt(0)
	return top, nil
}

// Remove deletes x from the heap.
func (h *BinaryHeap[T]) Remove(x T) error {
	i, ok := h.pos[x]
	if !ok {
		return ErrElementNotFound
	}
	h.removeAt(i)
	return nil
}

// Reset empties the heap, keeping allocated capacity.
func (h *BinaryHeap[T]) Reset() {
	clear(h.items)
	h.items = h.items[:0]
	clear(h.pos)
}

// removeAt moves the last element into slot i and restores the heap
// property in whichever direction is needed.
func (h *BinaryHeap[T]) removeAt(i int) {
	last := len(h.items) - 1
	delete(h.pos, h.items[i])
	if i != last {
		h.items[i] = h.items[last]
		h.pos[h.items[i]] = i
	}
	var zero T
	h.items[last] = zero
	h.items = h.items[:last]

	if i < len(h.items) {
		if i > 0 && h.less(h.items[i], h.items[(i-1)/2]) {
			h.siftUp(i)
		} else {
			h.siftDown(i)
		}
	}
}

// siftUp uses hole-sift: the floating item is written once at its final slot.
func (h *BinaryHeap[T]) siftUp(i int) {
	item := h.items[i]
	for i > 0 {
		parent := (i - 1) / 2
		if !h.less(item, h.items[parent]) {
			break
		}
		h.items[i] = h.items[parent]
		h.pos[h.items[i]] = i
		i = parent
	}
	h.items[i] = item
	h.pos[item] = i
}

func (h *BinaryHeap[T]) siftDown(i int) {
	n := len(h.items)
	item := h.items[i]
	for {
		child := 2*i + 1
		if child >= n {
			break
		}
		if right := child + 1; right < n && h.less(h.items[right], h.items[child]) {
			child = right
		}
		if !h.less(h.items[child], item) {
			break
		}
		h.items[i] = h.items[child]
		h.pos[h.items[i]] = i
		i = child
	}
	h.items[i] = item
	h.pos[item] = i
}

// isValid reports whether the heap property and the position map hold.
// Used by tests.
func (h *BinaryHeap[T]) isValid() bool {
	if len(h.pos) != len(h.items) {
		return false
	}
	for i, x := range h.items {
		if h.pos[x] != i {
			return false
		}
		for _, c := range []int{2*i + 1, 2*i + 2} {
			if c < len(h.items) && h.less(h.items[c], x) {
				return false
			}
		}
	}
	return true
}
