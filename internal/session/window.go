package session

// Window is a bounded FIFO buffer. Pushing past capacity evicts the oldest
// items so that Items never holds more than Capacity entries.
type Window[T any] struct {
	Capacity int `json:"capacity"`
	Items    []T `json:"items"`
	// Total counts every item ever pushed, including evicted ones.
	Total int `json:"total"`
}

// NewWindow returns an empty window with the given capacity.
func NewWindow[T any](capacity int) Window[T] {
	return Window[T]{Capacity: capacity, Items: make([]T, 0, capacity)}
}

// Push appends v and evicts from the front until the window is back at
// capacity. It returns the number of evicted items.
func (w *Window[T]) Push(v T) int {
	w.Items = append(w.Items, v)
	w.Total++

	over := len(w.Items) - w.Capacity
	if over <= 0 {
		return 0
	}
	n := copy(w.Items, w.Items[over:])
	clear(w.Items[n:])
	w.Items = w.Items[:n]
	return over
}

// Len returns the number of buffered items.
func (w *Window[T]) Len() int { return len(w.Items) }

// Latest returns the most recently pushed item still buffered.
func (w *Window[T]) Latest() (T, bool) {
	var zero T
	if len(w.Items) == 0 {
		return zero, false
	}
	return w.Items[len(w.Items)-1], true
}

// Check returns an invariant violation when the window holds more items
// than its capacity allows.
func (w *Window[T]) Check(name string) error {
	if w.Capacity <= 0 {
		return invariantf("%s window has non-positive capacity %d", name, w.Capacity)
	}
	if len(w.Items) > w.Capacity {
		return invariantf("%s window holds %d items, capacity %d", name, len(w.Items), w.Capacity)
	}
	return nil
}

func (w Window[T]) clone(copyItem func(T) T) Window[T] {
	items := make([]T, len(w.Items), max(w.Capacity, len(w.Items)))
	for i, it := range w.Items {
		if copyItem != nil {
			it = copyItem(it)
		}
		items[i] = it
	}
	return Window[T]{Capacity: w.Capacity, Items: items, Total: w.Total}
}
