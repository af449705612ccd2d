// Package stack provides the LIFO used to mirror the open-element stack
// while streaming a document.
package stack

// Stack is a LIFO stack of open frames.
type Stack[T any] struct {
	items []T
}

// New creates a stack with an optional capacity hint.
func New[T any](capacity int) Stack[T] {
	if capacity <= 0 {
		return Stack[T]{}
	}
	return Stack[T]{items: make([]T, 0, capacity)}
}

// Push adds one frame to the top.
func (s *Stack[T]) Push(value T) {
	s.items = append(s.items, value)
}

// Pop removes and returns the top frame.
func (s *Stack[T]) Pop() (T, bool) {
	var zero T
	if s == nil || len(s.items) == 0 {
		return zero, false
	}
	last := len(s.items) - 1
	value := s.items[last]
	s.items[last] = zero
	s.items = s.items[:last]
	return value, true
}

// Peek returns the top frame without removing it.
func (s *Stack[T]) Peek() (T, bool) {
	var zero T
	if s == nil || len(s.items) == 0 {
		return zero, false
	}
	return s.items[len(s.items)-1], true
}

// Len reports the current depth.
func (s *Stack[T]) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// Items returns frames from bottom to top. The slice is shared with the stack.
func (s *Stack[T]) Items() []T {
	if s == nil {
		return nil
	}
	return s.items
}

// Reset clears the stack while retaining capacity.
func (s *Stack[T]) Reset() {
	if s == nil {
		return
	}
	clear(s.items)
	s.items = s.items[:0]
}
