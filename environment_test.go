package jinja

import "testing"

func TestEnvironmentChainedLookup(t *testing.T) {
	root := NewEnvironment()
	root.Set("x", Int(1))
	child := NewChildEnvironment(root, "child")
	if v, ok := child.Get("x"); !ok || v.Integer() != 1 {
		t.Errorf("child should see root binding: %v %v", v, ok)
	}
	child.Set("x", Int(2))
	if v, _ := child.Get("x"); v.Integer() != 2 {
		t.Error("child set should shadow, not mutate the root")
	}
	if v, _ := root.Get("x"); v.Integer() != 1 {
		t.Error("root binding must be unaffected by the child's shadow")
	}
}

func TestEnvironmentSetOuter(t *testing.T) {
	root := NewEnvironment()
	root.Set("x", Int(1))
	child := NewChildEnvironment(root, "child")
	child.SetOuter("x", Int(9))
	if v, _ := root.Get("x"); v.Integer() != 9 {
		t.Error("SetOuter should rebind the existing outer frame in place")
	}
}

func TestEnvironmentMacroDepthGuard(t *testing.T) {
	root := NewEnvironment()
	for i := 0; i < maxMacroDepth; i++ {
		if err := root.EnterMacroCall(); err != nil {
			t.Fatalf("unexpected error at depth %d: %v", i, err)
		}
	}
	if err := root.EnterMacroCall(); err == nil {
		t.Error("expected an error once maxMacroDepth is exceeded")
	}
}
