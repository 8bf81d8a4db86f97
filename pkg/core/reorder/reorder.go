// Package reorder computes new positions for drag-and-drop moves in ordered
// collections. Functions never mutate their input slices.
package reorder

import (
	"fmt"
	"sort"

	"github.com/wadjakorntonsri/go-link-in-bio/pkg/core/domain"
)

// Ordered is an item with a stable key and a rank inside its collection.
type Ordered[T any] interface {
	Key() string
	Rank() int
	WithRank(rank int) T
}

// Scoped items are only ranked against items of the same scope.
type Scoped[T any] interface {
	Ordered[T]
	Scope() string
}

// Result describes the outcome of a move.
type Result[T any] struct {
	Items []T
	// Assignments holds the final rank of every item in the moved scope, in final order.
	Assignments []domain.OrderUpdate
	// Changed is the subset of Assignments whose rank differs from before the move.
	Changed []domain.OrderUpdate
	Moved   bool
}

// Move splices sourceID into the slot occupied by targetID and renumbers
// the whole collection from base. Moving an item onto itself is a no-op.
func Move[T Ordered[T]](items []T, sourceID, targetID string, base int) (Result[T], error) {
	if err := checkKeys(items); err != nil {
		return Result[T]{}, err
	}
	src, dst, err := locate(items, sourceID, targetID)
	if err != nil {
		return Result[T]{}, err
	}
	if src == dst {
		return unchanged(items), nil
	}
	return renumber(splice(items, src, dst), base), nil
}

// MoveInScope moves sourceID onto targetID among the items sharing the
// source's scope. Items of other scopes keep their slots and ranks. A move
// across scopes is rejected as a no-op.
func MoveInScope[T Scoped[T]](items []T, sourceID, targetID string, base int) (Result[T], error) {
	if err := checkKeys(items); err != nil {
		return Result[T]{}, err
	}
	src, dst, err := locate(items, sourceID, targetID)
	if err != nil {
		return Result[T]{}, err
	}
	scope := items[src].Scope()
	if src == dst || items[dst].Scope() != scope {
		return unchanged(items), nil
	}

	var slots []int
	var sub []T
	for i, it := range items {
		if it.Scope() == scope {
			slots = append(slots, i)
			sub = append(sub, it)
		}
	}
	r, err := Move(sub, sourceID, targetID, base)
	if err != nil {
		return Result[T]{}, err
	}

	out := append([]T(nil), items...)
	for k, slot := range slots {
		out[slot] = r.Items[k]
	}
	r.Items = out
	return r, nil
}

// Renumber assigns consecutive ranks from base in the current slice order.
func Renumber[T Ordered[T]](items []T, base int) Result[T] {
	return renumber(append([]T(nil), items...), base)
}

// SortByRank returns a copy of items sorted by ascending rank. Ties keep
// their relative input order.
func SortByRank[T Ordered[T]](items []T) []T {
	out := append([]T(nil), items...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Rank() < out[j].Rank()
	})
	return out
}

func locate[T Ordered[T]](items []T, sourceID, targetID string) (int, int, error) {
	src := indexOf(items, sourceID)
	if src < 0 {
		return 0, 0, domain.Invalid("source", fmt.Sprintf("%q is not in the collection", sourceID))
	}
	dst := indexOf(items, targetID)
	if dst < 0 {
		return 0, 0, domain.Invalid("target", fmt.Sprintf("%q is not in the collection", targetID))
	}
	return src, dst, nil
}

func indexOf[T Ordered[T]](items []T, key string) int {
	for i, it := range items {
		if it.Key() == key {
			return i
		}
	}
	return -1
}

func checkKeys[T Ordered[T]](items []T) error {
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		if seen[it.Key()] {
			return domain.Invalid("items", fmt.Sprintf("duplicate key %q", it.Key()))
		}
		seen[it.Key()] = true
	}
	return nil
}

// splice removes the item at src and inserts it at dst of the shortened list.
func splice[T any](items []T, src, dst int) []T {
	moved := items[src]
	out := make([]T, 0, len(items))
	out = append(out, items[:src]...)
	out = append(out, items[src+1:]...)
	out = append(out[:dst], append([]T{moved}, out[dst:]...)...)
	return out
}

func renumber[T Ordered[T]](items []T, base int) Result[T] {
	res := Result[T]{
		Items:       items,
		Assignments: make([]domain.OrderUpdate, 0, len(items)),
		Moved:       true,
	}
	for i, it := range items {
		rank := base + i
		if it.Rank() != rank {
			res.Changed = append(res.Changed, domain.OrderUpdate{ID: it.Key(), Order: rank})
		}
		items[i] = it.WithRank(rank)
		res.Assignments = append(res.Assignments, domain.OrderUpdate{ID: it.Key(), Order: rank})
	}
	return res
}

func unchanged[T any](items []T) Result[T] {
	return Result[T]{Items: append([]T(nil), items...)}
}
