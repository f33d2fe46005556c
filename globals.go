package jinja

import (
	"fmt"
	"strings"
)

// Builtin globals: range, namespace, dict, cycler, joiner, lipsum,
// raise_exception. Grounded on gojinja's Namespace type (de-mutexed, since
// this module's Environment is single-threaded), registered as ordinary
// bindings in the root Environment rather than a separate registry, since
// a global is just a name that resolves to a *Value like any other variable.
func populateGlobals(env *Environment) {
	env.Set("range", Function(globalRange))
	env.Set("namespace", Function(globalNamespace))
	env.Set("dict", Function(globalDict))
	env.Set("cycler", Function(globalCycler))
	env.Set("joiner", Function(globalJoiner))
	env.Set("lipsum", Function(globalLipsum))
	env.Set("raise_exception", Function(globalRaiseException))
}

func globalRange(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	var start, stop, step int64
	switch len(args) {
	case 1:
		start, stop, step = 0, args[0].Integer(), 1
	case 2:
		start, stop, step = args[0].Integer(), args[1].Integer(), 1
	case 3:
		start, stop, step = args[0].Integer(), args[1].Integer(), args[2].Integer()
	default:
		return nil, fmt.Errorf("range expected 1 to 3 arguments, got %d", len(args))
	}
	if step == 0 {
		return nil, fmt.Errorf("range step cannot be zero")
	}
	var out []*Value
	if step > 0 {
		for i := start; i < stop; i += step {
			out = append(out, Int(i))
		}
	} else {
		for i := start; i > stop; i += step {
			out = append(out, Int(i))
		}
	}
	return Array(out), nil
}

// globalNamespace builds a fresh mutable object; since Value.Map() returns
// the shared *OrderedMap pointer, every binding of the result aliases the
// same underlying storage, giving namespace() reference semantics for free.
func globalNamespace(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	m := NewOrderedMap()
	if len(args) == 1 && args[0].IsObject() {
		for _, k := range args[0].Map().Keys() {
			v, _ := args[0].Map().Get(k)
			m.Set(k, v)
		}
	}
	if kwargs != nil {
		for _, k := range kwargs.Keys() {
			v, _ := kwargs.Get(k)
			m.Set(k, v)
		}
	}
	return Object(m), nil
}

func globalDict(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	m := NewOrderedMap()
	if kwargs != nil {
		for _, k := range kwargs.Keys() {
			v, _ := kwargs.Get(k)
			m.Set(k, v)
		}
	}
	return Object(m), nil
}

// globalCycler returns an object exposing next()/reset() methods and a
// "current" attribute, matching Jinja2's {% set c = cycler(...) %} idiom.
func globalCycler(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	items := append([]*Value(nil), args...)
	if len(items) == 0 {
		return nil, fmt.Errorf("cycler requires at least one item")
	}
	idx := 0
	m := NewOrderedMap()
	m.Set("current", items[0])
	m.Set("next", Function(func(_ []*Value, _ *OrderedMap, _ *Environment) (*Value, error) {
		v := items[idx]
		idx = (idx + 1) % len(items)
		m.Set("current", items[idx])
		return v, nil
	}))
	m.Set("reset", Function(func(_ []*Value, _ *OrderedMap, _ *Environment) (*Value, error) {
		idx = 0
		m.Set("current", items[0])
		return Null, nil
	}))
	return Object(m), nil
}

// globalJoiner returns a callable that yields "" on its first invocation and
// the separator on every subsequent one, for manually joining loop bodies.
func globalJoiner(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	sep := kwOr(kwargs, "sep", args, 0, String(", ")).Str()
	used := false
	return Function(func(_ []*Value, _ *OrderedMap, _ *Environment) (*Value, error) {
		if !used {
			used = true
			return String(""), nil
		}
		return String(sep), nil
	}), nil
}

var lipsumWords = []string{
	"lorem", "ipsum", "dolor", "sit", "amet", "consectetur", "adipiscing",
	"elit", "sed", "do", "eiusmod", "tempor", "incididunt", "ut", "labore",
	"et", "dolore", "magna", "aliqua", "enim", "ad", "minim", "veniam",
	"quis", "nostrud", "exercitation", "ullamco", "laboris", "nisi",
	"aliquip", "ex", "ea", "commodo", "consequat",
}

func globalLipsum(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	n := int(kwOr(kwargs, "n", args, 0, Int(5)).Integer())
	html := kwOr(kwargs, "html", args, 1, Bool(true)).IsTrue()
	if n <= 0 {
		n = 1
	}
	var paras []string
	wi := 0
	nextWord := func() string {
		w := lipsumWords[wi%len(lipsumWords)]
		wi++
		return w
	}
	for p := 0; p < n; p++ {
		wordCount := 40 + (p%4)*10
		words := make([]string, wordCount)
		for i := range words {
			words[i] = nextWord()
		}
		sentence := strings.Join(words, " ")
		sentence = strings.ToUpper(sentence[:1]) + sentence[1:] + "."
		paras = append(paras, sentence)
	}
	if html {
		for i, p := range paras {
			paras[i] = "<p>" + p + "</p>"
		}
		return SafeString(strings.Join(paras, "\n")), nil
	}
	return String(strings.Join(paras, "\n\n")), nil
}

func globalRaiseException(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	msg := "raise_exception() called"
	if len(args) > 0 {
		msg = args[0].Str()
	}
	return nil, fmt.Errorf("%s", msg)
}
