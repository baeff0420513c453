package solver

import "fmt"

// Table is a goal × goal × goal array of values held in one contiguous
// buffer. Only cells with i+k < goal are ever addressed; the rest of the
// k dimension is left unused so the index stays a simple product.
type Table[T any] struct {
	goal  int
	cells []T
}

func NewTable[T any](goal int) *Table[T] {
	return &Table[T]{
		goal:  goal,
		cells: make([]T, goal*goal*goal),
	}
}

// index panics on a state outside the table. Callers that need the
// absorbing states must go through Solver.PWin instead.
func (t *Table[T]) index(i, j, k int) int {
	if i < 0 || i >= t.goal || j < 0 || j >= t.goal || k < 0 || k >= t.goal-i {
		panic(fmt.Sprintf("state (%d, %d, %d) is outside a table with goal %d", i, j, k, t.goal))
	}
	return (i*t.goal+j)*t.goal + k
}

func (t *Table[T]) At(i, j, k int) T {
	return t.cells[t.index(i, j, k)]
}

func (t *Table[T]) Set(i, j, k int, v T) {
	t.cells[t.index(i, j, k)] = v
}

func (t *Table[T]) Goal() int {
	return t.goal
}

// Contains reports whether (i, j, k) is a table-resident state.
func (t *Table[T]) Contains(i, j, k int) bool {
	return i >= 0 && i < t.goal && j >= 0 && j < t.goal && k >= 0 && k < t.goal-i
}
