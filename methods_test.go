package jinja

import "testing"

func TestGetAttrStringMethodUnknownNameIsUndefined(t *testing.T) {
	v := getAttr(String("x"), "nope")
	if !v.IsUndefined() {
		t.Errorf("expected undefined for unknown string method, got %v", v.Kind())
	}
}

func TestGetAttrObjectFallsBackToKeyBeforeMethod(t *testing.T) {
	m := NewOrderedMap()
	m.Set("items", Int(42))
	v := getAttr(Object(m), "items")
	if v.Integer() != 42 {
		t.Errorf("an actual 'items' key should shadow the items() method, got %v", v.Display())
	}
}

func TestGetSliceNegativeStep(t *testing.T) {
	arr := Array([]*Value{Int(0), Int(1), Int(2), Int(3), Int(4)})
	v, err := getSlice(arr, Int(3), Int(0), Int(-1), 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	got := joinStrings(v.Items(), ",")
	if got != "3,2,1" {
		t.Errorf("got %q, want 3,2,1", got)
	}
}

func TestGetSliceStepZeroIsError(t *testing.T) {
	arr := Array([]*Value{Int(1), Int(2)})
	if _, err := getSlice(arr, nil, nil, Int(0), 0, 0); err == nil {
		t.Error("expected error for zero step")
	}
}

func TestGetSliceOutOfRangeClamps(t *testing.T) {
	arr := Array([]*Value{Int(1), Int(2), Int(3)})
	v, err := getSlice(arr, Int(-100), Int(100), nil, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if v.Len() != 3 {
		t.Errorf("expected full array, got %d items", v.Len())
	}
}

func TestStringRepeatNegativeCountIsEmpty(t *testing.T) {
	v, err := evalBinOp("*", String("ab"), Int(-2), 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if v.Str() != "" {
		t.Errorf("negative repeat count should yield empty string, got %q", v.Str())
	}
}
