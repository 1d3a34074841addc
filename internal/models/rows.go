package models

import "fmt"

// RowGroup is an ordered group of homogeneous rows (URL selectors, content selectors).
//
// A group always holds at least one row. A nil or zero group reads as a single zero row.
type RowGroup[T any] struct {
	rows []T
}

// NewRowGroup returns a group holding rows, or a single zero row when none are given.
func NewRowGroup[T any](rows ...T) *RowGroup[T] {
	if len(rows) == 0 {
		var zero T
		rows = []T{zero}
	}
	return &RowGroup[T]{rows: append([]T(nil), rows...)}
}

// Len reports the number of rows.
func (g *RowGroup[T]) Len() int {
	if g == nil || len(g.rows) == 0 {
		return 1
	}
	return len(g.rows)
}

// Rows returns a copy of the rows in order.
func (g *RowGroup[T]) Rows() []T {
	if g == nil || len(g.rows) == 0 {
		return make([]T, 1)
	}
	return append([]T(nil), g.rows...)
}

func (g *RowGroup[T]) fill() {
	if len(g.rows) == 0 {
		g.rows = make([]T, 1)
	}
}

// At returns the row at i.
func (g *RowGroup[T]) At(i int) (T, error) {
	if g == nil {
		var zero T
		if i != 0 {
			return zero, fmt.Errorf("row %d out of range [0,1)", i)
		}
		return zero, nil
	}
	g.fill()
	if i < 0 || i >= len(g.rows) {
		var zero T
		return zero, fmt.Errorf("row %d out of range [0,%d)", i, len(g.rows))
	}
	return g.rows[i], nil
}

// Set replaces the row at i.
func (g *RowGroup[T]) Set(i int, row T) error {
	g.fill()
	if i < 0 || i >= len(g.rows) {
		return fmt.Errorf("row %d out of range [0,%d)", i, len(g.rows))
	}
	g.rows[i] = row
	return nil
}

// Add appends a duplicate of the last row and returns the new length.
func (g *RowGroup[T]) Add() int {
	g.fill()
	g.rows = append(g.rows, g.rows[len(g.rows)-1])
	return len(g.rows)
}

// Remove drops the last row. It is a no-op when only one row remains and reports whether a row was removed.
func (g *RowGroup[T]) Remove() bool {
	g.fill()
	if len(g.rows) <= 1 {
		return false
	}
	g.rows = g.rows[:len(g.rows)-1]
	return true
}
