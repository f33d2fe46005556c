package jinja

import "strings"

// Builtin test catalog, grounded on gojinja's registerBuiltinTests
// name list, since the `is` operator has no fixed Django analogue.
func init() {
	AddTest("defined", testDefined)
	AddTest("undefined", testUndefined)
	AddTest("none", testNone)
	AddTest("null", testNone)
	AddTest("boolean", testBoolean)
	AddTest("true", testTrueVal)
	AddTest("false", testFalseVal)
	AddTest("number", testNumber)
	AddTest("integer", testInteger)
	AddTest("float", testFloatVal)
	AddTest("string", testString)
	AddTest("lower", testLower)
	AddTest("upper", testUpper)
	AddTest("filter", testFilter)
	AddTest("test", testTest)
	AddTest("sequence", testSequence)
	AddTest("mapping", testMapping)
	AddTest("iterable", testIterable)
	AddTest("callable", testCallable)
	AddTest("sameas", testSameas)
	AddTest("escaped", testEscaped)
	AddTest("even", testEven)
	AddTest("odd", testOdd)
	AddTest("divisibleby", testDivisibleby)
	AddTest("in", testIn)
	AddTest("eq", testEq)
	AddTest("equalto", testEq)
	AddTest("ne", testNe)
	AddTest("lt", testLt)
	AddTest("lessthan", testLt)
	AddTest("le", testLe)
	AddTest("gt", testGt)
	AddTest("greaterthan", testGt)
	AddTest("ge", testGe)
}

func testDefined(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	return Bool(!args[0].IsUndefined()), nil
}

func testUndefined(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	return Bool(args[0].IsUndefined()), nil
}

func testNone(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	return Bool(args[0].IsNull()), nil
}

func testBoolean(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	return Bool(args[0].IsBool()), nil
}

func testTrueVal(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	return Bool(args[0].IsBool() && args[0].AsBool()), nil
}

func testFalseVal(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	return Bool(args[0].IsBool() && !args[0].AsBool()), nil
}

func testNumber(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	return Bool(args[0].IsNumber()), nil
}

func testInteger(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	return Bool(args[0].IsInteger()), nil
}

func testFloatVal(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	return Bool(args[0].IsFloat()), nil
}

func testString(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	return Bool(args[0].IsString()), nil
}

// testLower reports whether a string has no uppercase letters, mirroring
// Python's str.islower() (a string with no cased characters is not lower).
func testLower(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	s := args[0].Str()
	return Bool(s == strings.ToLower(s) && s != strings.ToUpper(s)), nil
}

// testUpper reports whether a string has no lowercase letters, mirroring
// Python's str.isupper().
func testUpper(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	s := args[0].Str()
	return Bool(s == strings.ToUpper(s) && s != strings.ToLower(s)), nil
}

// testFilter reports whether a name is a registered filter.
func testFilter(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	_, ok := lookupFilter(args[0].Str())
	return Bool(ok), nil
}

// testTest reports whether a name is a registered test.
func testTest(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	_, ok := lookupTest(args[0].Str())
	return Bool(ok), nil
}

func testSequence(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	v := args[0]
	return Bool(v.IsArray() || v.IsString() || v.IsObject()), nil
}

func testMapping(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	return Bool(args[0].IsObject()), nil
}

func testIterable(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	v := args[0]
	return Bool(v.IsArray() || v.IsString() || v.IsObject()), nil
}

func testCallable(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	return Bool(args[0].IsFunction()), nil
}

func testSameas(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	if len(args) < 2 {
		return Bool(false), nil
	}
	return Bool(args[0] == args[1]), nil
}

func testEscaped(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	return Bool(args[0].IsSafe()), nil
}

func testEven(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	return Bool(args[0].Integer()%2 == 0), nil
}

func testOdd(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	return Bool(args[0].Integer()%2 != 0), nil
}

func testDivisibleby(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	if len(args) < 2 {
		return nil, runtimeErrf(0, 0, "divisibleby requires a divisor")
	}
	d := args[1].Integer()
	if d == 0 {
		return Bool(false), nil
	}
	return Bool(args[0].Integer()%d == 0), nil
}

func testIn(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	if len(args) < 2 {
		return Bool(false), nil
	}
	return Bool(args[1].Contains(args[0])), nil
}

func testEq(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	if len(args) < 2 {
		return Bool(false), nil
	}
	return Bool(args[0].EqualValueTo(args[1])), nil
}

func testNe(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	if len(args) < 2 {
		return Bool(true), nil
	}
	return Bool(!args[0].EqualValueTo(args[1])), nil
}

func testLt(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	c, ok := args[0].Compare(args[1])
	return Bool(ok && c < 0), nil
}

func testLe(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	c, ok := args[0].Compare(args[1])
	return Bool(ok && c <= 0), nil
}

func testGt(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	c, ok := args[0].Compare(args[1])
	return Bool(ok && c > 0), nil
}

func testGe(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	c, ok := args[0].Compare(args[1])
	return Bool(ok && c >= 0), nil
}
