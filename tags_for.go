package jinja

import (
	"fmt"
	"strings"
)

// nodeFor implements {% for %}/{% else %}/{% endfor %}, grounded on the
// the loop-variable/loop-object machinery, generalized to
// Jinja2's two-variable unpacking, optional `if` filter clause, and the
// `loop` object's full field set (index/index0/first/last/length/
// revindex/revindex0/cycle)
type nodeFor struct {
	loopVars []string
	iterExpr Evaluator
	condExpr Evaluator
	body     *nodeDocument
	elseBody *nodeDocument
}

func (n *nodeFor) Execute(env *Environment, out *strings.Builder) (ctrlSignal, error) {
	iterVal, err := n.iterExpr.Evaluate(env)
	if err != nil {
		return ctrlNone, err
	}

	entries, err := n.unpackEntries(iterVal)
	if err != nil {
		return ctrlNone, err
	}

	if n.condExpr != nil {
		filtered := entries[:0:0]
		for _, e := range entries {
			child := NewChildEnvironment(env, "for")
			n.bindVars(child, e)
			v, err := n.condExpr.Evaluate(child)
			if err != nil {
				return ctrlNone, err
			}
			if v.IsTrue() {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}

	if len(entries) == 0 {
		if n.elseBody != nil {
			return n.elseBody.Execute(NewChildEnvironment(env, "for-else"), out)
		}
		return ctrlNone, nil
	}

	for i, e := range entries {
		child := NewChildEnvironment(env, "for")
		n.bindVars(child, e)
		child.Set("loop", Object(loopObjectValue(i, len(entries))))

		ctrl, err := n.body.Execute(child, out)
		if err != nil {
			return ctrlNone, err
		}
		if ctrl == ctrlBreak {
			break
		}
		// ctrlContinue and ctrlNone both fall through to the next entry.
	}
	return ctrlNone, nil
}

// forEntry is either a single bound value (one loop variable) or a pair
// (two loop variables, e.g. "for k, v in mydict.items()").
type forEntry struct {
	single *Value
	pair   [2]*Value
}

func (n *nodeFor) bindVars(env *Environment, e forEntry) {
	if len(n.loopVars) == 1 {
		env.Set(n.loopVars[0], e.single)
		return
	}
	env.Set(n.loopVars[0], e.pair[0])
	env.Set(n.loopVars[1], e.pair[1])
}

func (n *nodeFor) unpackEntries(v *Value) ([]forEntry, error) {
	switch v.Kind() {
	case KindArray:
		items := v.Items()
		entries := make([]forEntry, len(items))
		for i, it := range items {
			if len(n.loopVars) == 2 {
				if !it.IsArray() || it.Len() != 2 {
					return nil, runtimeErrf(0, 0, "cannot unpack %s into two loop variables", it.Kind())
				}
				pair := it.Items()
				entries[i] = forEntry{pair: [2]*Value{pair[0], pair[1]}}
			} else {
				entries[i] = forEntry{single: it}
			}
		}
		return entries, nil
	case KindObject:
		keys := v.Map().Keys()
		entries := make([]forEntry, len(keys))
		for i, k := range keys {
			val, _ := v.Map().Get(k)
			if len(n.loopVars) == 2 {
				entries[i] = forEntry{pair: [2]*Value{String(k), val}}
			} else {
				entries[i] = forEntry{single: String(k)}
			}
		}
		return entries, nil
	case KindString:
		runes := []rune(v.Str())
		entries := make([]forEntry, len(runes))
		for i, r := range runes {
			entries[i] = forEntry{single: String(string(r))}
		}
		return entries, nil
	case KindUndefined, KindNull:
		return nil, nil
	default:
		return nil, runtimeErrf(0, 0, "%s is not iterable", v.Kind())
	}
}

// loopObjectValue builds the `loop` object exposed inside a for-body.
func loopObjectValue(i, length int) *OrderedMap {
	m := NewOrderedMap()
	m.Set("index", Int(int64(i+1)))
	m.Set("index0", Int(int64(i)))
	m.Set("revindex", Int(int64(length-i)))
	m.Set("revindex0", Int(int64(length-i-1)))
	m.Set("first", Bool(i == 0))
	m.Set("last", Bool(i == length-1))
	m.Set("length", Int(int64(length)))
	m.Set("cycle", Function(func(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
		if len(args) == 0 {
			return Undefined(""), nil
		}
		return args[i%len(args)], nil
	}))
	return m
}

func parseForTag(p *parser, startTok *Token, args *parser) (Node, error) {
	node := &nodeFor{}

	first := args.MatchType(TokenIdentifier)
	if first == nil {
		return nil, args.Error("expected loop variable name", nil)
	}
	node.loopVars = append(node.loopVars, first.Val)
	if args.Match(TokenSymbol, ",") != nil {
		second := args.MatchType(TokenIdentifier)
		if second == nil {
			return nil, args.Error("expected second loop variable name after ','", nil)
		}
		node.loopVars = append(node.loopVars, second.Val)
	}

	if args.Match(TokenKeyword, "in") == nil {
		return nil, args.Error("expected 'in' in for-loop", nil)
	}

	iterExpr, err := args.parseExpression()
	if err != nil {
		return nil, err
	}
	node.iterExpr = iterExpr

	if args.Match(TokenKeyword, "if") != nil {
		condExpr, err := args.parseExpression()
		if err != nil {
			return nil, err
		}
		node.condExpr = condExpr
	}

	if args.Remaining() > 0 {
		return nil, args.Error("malformed for-loop", nil)
	}

	body, endtag, tagArgs, err := p.wrapUntilTag("else", "endfor")
	if err != nil {
		return nil, err
	}
	node.body = body
	if tagArgs.Remaining() > 0 {
		return nil, tagArgs.Error(fmt.Sprintf("arguments not allowed for %q", endtag), nil)
	}
	if endtag == "else" {
		elseBody, endtag2, tagArgs2, err := p.wrapUntilTag("endfor")
		if err != nil {
			return nil, err
		}
		if tagArgs2.Remaining() > 0 {
			return nil, tagArgs2.Error(fmt.Sprintf("arguments not allowed for %q", endtag2), nil)
		}
		node.elseBody = elseBody
	}

	return node, nil
}

func init() {
	registerTag("for", parseForTag)
}
