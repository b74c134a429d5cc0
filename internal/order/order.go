// Package order implements dense integer ordering for sibling groups (lists on a
// board, cards in a list).
//
// Positions are always expressed in splice coordinates: a move removes the element at
// `from` and inserts it at `to`, where `to` is an index into the sequence *after*
// removal. This matches what drag-and-drop libraries report on drop.
package order

import (
	"errors"
	"fmt"
)

var ErrEmpty = errors.New("empty sibling group")

// RangeError reports a source index outside the sibling group.
type RangeError struct {
	Index int
	Len   int
}

func (e RangeError) Error() string {
	return fmt.Sprintf("index %d out of range [0,%d)", e.Index, e.Len)
}

// Assignment is the persisted order value for one sibling.
type Assignment struct {
	ID    string `json:"id"`
	Order int    `json:"order"`
}

// IsNoop reports whether a drop leaves the item where it started.
func IsNoop(sameContainer bool, from, to int) bool {
	return sameContainer && from == to
}

// Move returns a new sequence with ids[from] re-inserted at to (splice coordinates).
// to is clamped into the valid range. ids is not modified.
func Move(ids []string, from, to int) ([]string, error) {
	if len(ids) == 0 {
		return nil, ErrEmpty
	}
	if from < 0 || from >= len(ids) {
		return nil, RangeError{Index: from, Len: len(ids)}
	}
	moved := ids[from]
	rest := Remove(ids, from)
	return Insert(rest, to, moved), nil
}

// Transfer moves src[from] into dst at index to. Both inputs are left untouched; the
// returned slices are fresh copies.
func Transfer(src, dst []string, from, to int) (newSrc, newDst []string, id string, err error) {
	if len(src) == 0 {
		return nil, nil, "", ErrEmpty
	}
	if from < 0 || from >= len(src) {
		return nil, nil, "", RangeError{Index: from, Len: len(src)}
	}
	id = src[from]
	newSrc = Remove(src, from)
	newDst = Insert(dst, to, id)
	return newSrc, newDst, id, nil
}

// Insert returns a copy of ids with id placed at index at (clamped to [0, len(ids)]).
func Insert(ids []string, at int, id string) []string {
	if at < 0 {
		at = 0
	}
	if at > len(ids) {
		at = len(ids)
	}
	out := make([]string, 0, len(ids)+1)
	out = append(out, ids[:at]...)
	out = append(out, id)
	out = append(out, ids[at:]...)
	return out
}

// Remove returns a copy of ids without the element at index i.
func Remove(ids []string, i int) []string {
	out := make([]string, 0, len(ids))
	out = append(out, ids[:i]...)
	return append(out, ids[i+1:]...)
}

// Without returns a copy of ids with every occurrence of id dropped.
func Without(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, x := range ids {
		if x != id {
			out = append(out, x)
		}
	}
	return out
}

func IndexOf(ids []string, id string) int {
	for i, x := range ids {
		if x == id {
			return i
		}
	}
	return -1
}

// Enumerate assigns order 0..n-1 by position. Every sibling is rewritten; there is no
// attempt to keep unchanged rows out of the result.
func Enumerate(ids []string) []Assignment {
	out := make([]Assignment, len(ids))
	for i, id := range ids {
		out[i] = Assignment{ID: id, Order: i}
	}
	return out
}

// Dense reports whether orders is a permutation of 0..len(orders)-1.
func Dense(orders []int) bool {
	seen := make([]bool, len(orders))
	for _, o := range orders {
		if o < 0 || o >= len(orders) || seen[o] {
			return false
		}
		seen[o] = true
	}
	return true
}

// Next returns the order for a sibling appended after the given existing orders.
func Next(orders []int) int {
	max := -1
	for _, o := range orders {
		if o > max {
			max = o
		}
	}
	return max + 1
}
