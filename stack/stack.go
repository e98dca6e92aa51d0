package stack

// Stack is the type-independent capability set shared by every typed stack.
// Structural instructions ("<name>.dup", "<name>.yank" and friends) operate
// through it without knowing the element type.
type Stack interface {
	Size() int
	Discard()
	Dup()
	Swap()
	Rot()
	Flush()
	ShoveTop(depth int)
	Yank(depth int)
	YankDup(depth int)
}

// Typed is a dynamically sized stack of T. Depth arguments count down from
// the top (depth 0 is the top) and are clamped into range; operations on an
// empty stack are no-ops.
type Typed[T any] struct {
	items []T
}

func New[T any]() *Typed[T] {
	return &Typed[T]{}
}

func (s *Typed[T]) Push(v T) {
	s.items = append(s.items, v)
}

func (s *Typed[T]) Pop() (T, bool) {
	var zero T
	if len(s.items) == 0 {
		return zero, false
	}

	v := s.items[len(s.items)-1]
	s.items[len(s.items)-1] = zero
	s.items = s.items[:len(s.items)-1]
	return v, true
}

// Pop2 pops the top two elements, returning them top first. Nothing is popped
// unless both are present.
func (s *Typed[T]) Pop2() (top, second T, ok bool) {
	if len(s.items) < 2 {
		return top, second, false
	}
	top, _ = s.Pop()
	second, _ = s.Pop()
	return top, second, true
}

func (s *Typed[T]) Top() (T, bool) {
	return s.Peek(0)
}

// Peek returns the element at depth, clamped into range.
func (s *Typed[T]) Peek(depth int) (T, bool) {
	var zero T
	if len(s.items) == 0 {
		return zero, false
	}
	return s.items[s.index(depth)], true
}

func (s *Typed[T]) Size() int {
	return len(s.items)
}

// Items returns the elements bottom first. The slice is shared with s.
func (s *Typed[T]) Items() []T {
	return s.items
}

// index converts a clamped depth into a slice index.
func (s *Typed[T]) index(depth int) int {
	return len(s.items) - 1 - clamp(depth, 0, len(s.items)-1)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (s *Typed[T]) Discard() {
	s.Pop()
}

func (s *Typed[T]) Dup() {
	if top, ok := s.Top(); ok {
		s.Push(top)
	}
}

func (s *Typed[T]) Swap() {
	n := len(s.items)
	if n < 2 {
		return
	}
	s.items[n-1], s.items[n-2] = s.items[n-2], s.items[n-1]
}

// Rot moves the third element to the top.
func (s *Typed[T]) Rot() {
	if len(s.items) < 3 {
		return
	}
	s.Yank(2)
}

func (s *Typed[T]) Flush() {
	var zero T
	for i := range s.items {
		s.items[i] = zero
	}
	s.items = s.items[:0]
}

// Shove inserts v depth positions below the top. Depth is clamped to
// [0, Size()], so shoving into an empty stack is a push.
func (s *Typed[T]) Shove(v T, depth int) {
	at := len(s.items) - clamp(depth, 0, len(s.items))

	var zero T
	s.items = append(s.items, zero)
	copy(s.items[at+1:], s.items[at:])
	s.items[at] = v
}

// ShoveTop moves the top element down to depth.
func (s *Typed[T]) ShoveTop(depth int) {
	if len(s.items) == 0 {
		return
	}
	top, _ := s.Pop()
	s.Shove(top, depth)
}

// Yank removes the element at depth and pushes it on top.
func (s *Typed[T]) Yank(depth int) {
	if len(s.items) == 0 {
		return
	}
	at := s.index(depth)
	v := s.items[at]
	copy(s.items[at:], s.items[at+1:])
	s.items[len(s.items)-1] = v
}

// YankDup pushes a copy of the element at depth.
func (s *Typed[T]) YankDup(depth int) {
	if v, ok := s.Peek(depth); ok {
		s.Push(v)
	}
}

// Set replaces the contents with items, bottom first.
func (s *Typed[T]) Set(items []T) {
	s.items = append(s.items[:0], items...)
}
