package jinja

import "fmt"

// testRegistry maps test name to implementation. Grounded on gojinja's
// dedicated test registry (a `is` test dispatcher has no equivalent in
// `is` operator), generalized to the uniform Callable contract.
var testRegistry = map[string]Callable{}

// AddTest registers a custom test. Panics on duplicate registration.
func AddTest(name string, fn Callable) {
	if _, exists := testRegistry[name]; exists {
		panic(fmt.Sprintf("test %q is already registered", name))
	}
	testRegistry[name] = fn
}

func lookupTest(name string) (Callable, bool) {
	fn, ok := testRegistry[name]
	return fn, ok
}
