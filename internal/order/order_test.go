package order

import (
	"errors"
	"reflect"
	"testing"
)

func TestMove_SpliceAfterRemoval(t *testing.T) {
	ids := []string{"c1", "c2", "c3"}

	got, err := Move(ids, 0, 2)
	if err != nil {
		t.Fatalf("Move error: %v", err)
	}
	if want := []string{"c2", "c3", "c1"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v; got %v", want, got)
	}
	if want := []string{"c1", "c2", "c3"}; !reflect.DeepEqual(ids, want) {
		t.Fatalf("input mutated: %v", ids)
	}

	got, err = Move(ids, 2, 0)
	if err != nil {
		t.Fatalf("Move error: %v", err)
	}
	if want := []string{"c3", "c1", "c2"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v; got %v", want, got)
	}

	// Moving down by one: destination is computed without the moved element.
	got, _ = Move(ids, 0, 1)
	if want := []string{"c2", "c1", "c3"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v; got %v", want, got)
	}
}

func TestMove_SameIndexKeepsSequence(t *testing.T) {
	ids := []string{"a", "b", "c", "d"}
	for i := range ids {
		got, err := Move(ids, i, i)
		if err != nil {
			t.Fatalf("Move error: %v", err)
		}
		if !reflect.DeepEqual(got, ids) {
			t.Fatalf("expected unchanged for %d; got %v", i, got)
		}
	}
}

func TestMove_ClampsDestination(t *testing.T) {
	got, err := Move([]string{"a", "b", "c"}, 0, 99)
	if err != nil {
		t.Fatalf("Move error: %v", err)
	}
	if want := []string{"b", "c", "a"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v; got %v", want, got)
	}
	got, _ = Move([]string{"a", "b", "c"}, 2, -5)
	if want := []string{"c", "a", "b"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v; got %v", want, got)
	}
}

func TestMove_Errors(t *testing.T) {
	if _, err := Move(nil, 0, 0); !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected ErrEmpty; got %v", err)
	}
	_, err := Move([]string{"a"}, 3, 0)
	var re RangeError
	if !errors.As(err, &re) {
		t.Fatalf("expected RangeError; got %v", err)
	}
	if re.Index != 3 || re.Len != 1 {
		t.Fatalf("unexpected range error: %+v", re)
	}
}

func TestTransfer_ReenumeratesBothGroups(t *testing.T) {
	src := []string{"a1", "a2", "a3"}
	dst := []string{"b1", "b2"}

	newSrc, newDst, id, err := Transfer(src, dst, 1, 1)
	if err != nil {
		t.Fatalf("Transfer error: %v", err)
	}
	if id != "a2" {
		t.Fatalf("expected moved id a2; got %q", id)
	}
	if want := []string{"a1", "a3"}; !reflect.DeepEqual(newSrc, want) {
		t.Fatalf("expected src %v; got %v", want, newSrc)
	}
	if want := []string{"b1", "a2", "b2"}; !reflect.DeepEqual(newDst, want) {
		t.Fatalf("expected dst %v; got %v", want, newDst)
	}
	if IndexOf(newSrc, id) >= 0 {
		t.Fatalf("moved id still present in source")
	}

	srcOrders := Enumerate(newSrc)
	dstOrders := Enumerate(newDst)
	if srcOrders[0].Order != 0 || dstOrders[0].Order != 0 {
		t.Fatalf("expected both groups to start at 0: %v %v", srcOrders, dstOrders)
	}
}

func TestTransfer_IntoEmptyList(t *testing.T) {
	newSrc, newDst, _, err := Transfer([]string{"a"}, nil, 0, 5)
	if err != nil {
		t.Fatalf("Transfer error: %v", err)
	}
	if len(newSrc) != 0 {
		t.Fatalf("expected empty source; got %v", newSrc)
	}
	if want := []string{"a"}; !reflect.DeepEqual(newDst, want) {
		t.Fatalf("expected %v; got %v", want, newDst)
	}
}

func TestEnumerateAndDense(t *testing.T) {
	as := Enumerate([]string{"x", "y", "z"})
	orders := make([]int, 0, len(as))
	for i, a := range as {
		if a.Order != i {
			t.Fatalf("expected order %d for %s; got %d", i, a.ID, a.Order)
		}
		orders = append(orders, a.Order)
	}
	if !Dense(orders) {
		t.Fatalf("expected dense orders")
	}
	if Dense([]int{0, 2}) {
		t.Fatalf("expected gap to be rejected")
	}
	if Dense([]int{0, 0}) {
		t.Fatalf("expected duplicate to be rejected")
	}
	if !Dense(nil) {
		t.Fatalf("expected empty group to be dense")
	}
}

func TestNext(t *testing.T) {
	if got := Next(nil); got != 0 {
		t.Fatalf("expected 0 for empty group; got %d", got)
	}
	if got := Next([]int{0, 1}); got != 2 {
		t.Fatalf("expected 2; got %d", got)
	}
}

func TestIsNoop(t *testing.T) {
	if !IsNoop(true, 1, 1) {
		t.Fatalf("expected same container + same index to be a no-op")
	}
	if IsNoop(false, 1, 1) {
		t.Fatalf("expected cross-container move to never be a no-op")
	}
	if IsNoop(true, 0, 1) {
		t.Fatalf("expected index change to not be a no-op")
	}
}
