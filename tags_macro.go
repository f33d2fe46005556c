package jinja

import "strings"

// nodeMacro implements {% macro %}/{% endmacro %}, grounded on the
// argsOrder/args-with-defaults, maxMacroDepth
// recursion guard, "render body, return as safe string" call semantics),
// generalized to the frame-chain Environment: a macro closes over its
// defining frame (lexical scoping) rather than a flat
// Private-context copy, and accepts an injected "caller" binding for
// {% call %} blocks (tags_call.go) instead of import/export plumbing,
// which is out of scope (spec Non-goals: template inheritance/include).
type nodeMacro struct {
	name          string
	paramNames    []string
	paramDefaults []Evaluator // nil entry => required argument
	body          *nodeDocument
}

func (n *nodeMacro) Execute(env *Environment, out *strings.Builder) (ctrlSignal, error) {
	defEnv := env
	env.Set(n.name, Function(func(args []*Value, kwargs *OrderedMap, callEnv *Environment) (*Value, error) {
		if err := defEnv.EnterMacroCall(); err != nil {
			return nil, err
		}
		defer defEnv.LeaveMacroCall()

		if len(args) > len(n.paramNames) {
			return nil, runtimeErrf(0, 0, "macro %q called with too many arguments (%d instead of %d)", n.name, len(args), len(n.paramNames))
		}

		macroEnv := NewChildEnvironment(defEnv, "macro")
		for i, pname := range n.paramNames {
			switch {
			case i < len(args):
				macroEnv.Set(pname, args[i])
			default:
				if kv, ok := kwargs.Get(pname); ok {
					macroEnv.Set(pname, kv)
					continue
				}
				if n.paramDefaults[i] != nil {
					dv, err := n.paramDefaults[i].Evaluate(defEnv)
					if err != nil {
						return nil, err
					}
					macroEnv.Set(pname, dv)
					continue
				}
				return nil, runtimeErrf(0, 0, "macro %q missing required argument %q", n.name, pname)
			}
		}
		if caller, ok := kwargs.Get("caller"); ok {
			macroEnv.Set("caller", caller)
		}

		var buf strings.Builder
		ctrl, err := n.body.Execute(macroEnv, &buf)
		if err != nil {
			return nil, err
		}
		if ctrl != ctrlNone {
			return nil, runtimeErrf(0, 0, "break/continue not allowed inside a macro body")
		}
		return SafeString(buf.String()), nil
	}))
	return ctrlNone, nil
}

func parseMacroTag(p *parser, startTok *Token, args *parser) (Node, error) {
	node := &nodeMacro{}

	nameTok := args.MatchType(TokenIdentifier)
	if nameTok == nil {
		return nil, args.Error("macro tag needs a name", nil)
	}
	node.name = nameTok.Val

	if args.Match(TokenSymbol, "(") == nil {
		return nil, args.Error("expected '(' after macro name", nil)
	}
	for args.Match(TokenSymbol, ")") == nil {
		argTok := args.MatchType(TokenIdentifier)
		if argTok == nil {
			return nil, args.Error("expected argument name", nil)
		}
		node.paramNames = append(node.paramNames, argTok.Val)

		if args.Match(TokenSymbol, "=") != nil {
			def, err := args.parseTernary()
			if err != nil {
				return nil, err
			}
			node.paramDefaults = append(node.paramDefaults, def)
		} else {
			node.paramDefaults = append(node.paramDefaults, nil)
		}

		if args.Match(TokenSymbol, ")") != nil {
			break
		}
		if args.Match(TokenSymbol, ",") == nil {
			return nil, args.Error("expected ',' or ')'", nil)
		}
	}

	if args.Remaining() > 0 {
		return nil, args.Error("malformed macro-tag", nil)
	}

	body, endtag, tagArgs, err := p.wrapUntilTag("endmacro")
	if err != nil {
		return nil, err
	}
	_ = endtag
	if tagArgs.Remaining() > 0 {
		return nil, tagArgs.Error("arguments not allowed for 'endmacro'", nil)
	}
	node.body = body

	return node, nil
}

func init() {
	registerTag("macro", parseMacroTag)
}
