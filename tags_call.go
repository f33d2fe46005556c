package jinja

import "strings"

// nodeCallBlock implements {% call %}/{% endcall %}: it renders the
// wrapped block into a "caller()" function and invokes a macro with that
// function injected under the reserved "caller" keyword argument (see
// nodeMacro.Execute), grounded on Jinja2's caller() mechanism and on the
// the macro-call machinery in tags_macro.go.
type nodeCallBlock struct {
	callerParams []string
	callee       Evaluator
	args         []Evaluator
	kwNames      []string
	kwValues     []Evaluator
	body         *nodeDocument
	line, col    int
}

func (n *nodeCallBlock) Execute(env *Environment, out *strings.Builder) (ctrlSignal, error) {
	calleeVal, err := n.callee.Evaluate(env)
	if err != nil {
		return ctrlNone, err
	}
	if !calleeVal.IsFunction() {
		return ctrlNone, runtimeErrf(n.line, n.col, "call target is not callable")
	}

	args := make([]*Value, len(n.args))
	for i, a := range n.args {
		v, err := a.Evaluate(env)
		if err != nil {
			return ctrlNone, err
		}
		args[i] = v
	}
	kwargs := NewOrderedMap()
	for i, name := range n.kwNames {
		v, err := n.kwValues[i].Evaluate(env)
		if err != nil {
			return ctrlNone, err
		}
		kwargs.Set(name, v)
	}

	callSiteEnv := env
	kwargs.Set("caller", Function(func(cargs []*Value, ckwargs *OrderedMap, cenv *Environment) (*Value, error) {
		callerEnv := NewChildEnvironment(callSiteEnv, "caller")
		for i, p := range n.callerParams {
			if i < len(cargs) {
				callerEnv.Set(p, cargs[i])
			} else {
				callerEnv.Set(p, Undefined(p))
			}
		}
		var buf strings.Builder
		ctrl, err := n.body.Execute(callerEnv, &buf)
		if err != nil {
			return nil, err
		}
		if ctrl != ctrlNone {
			return nil, runtimeErrf(n.line, n.col, "break/continue not allowed inside a call block")
		}
		return SafeString(buf.String()), nil
	}))

	result, err := calleeVal.Func()(args, kwargs, env)
	if err != nil {
		return ctrlNone, err
	}
	out.WriteString(result.Display())
	return ctrlNone, nil
}

func parseCallTag(p *parser, startTok *Token, args *parser) (Node, error) {
	node := &nodeCallBlock{line: startTok.Line, col: startTok.Col}

	if args.Match(TokenSymbol, "(") != nil {
		for args.Match(TokenSymbol, ")") == nil {
			pTok := args.MatchType(TokenIdentifier)
			if pTok == nil {
				return nil, args.Error("expected caller parameter name", nil)
			}
			node.callerParams = append(node.callerParams, pTok.Val)
			if args.Match(TokenSymbol, ")") != nil {
				break
			}
			if args.Match(TokenSymbol, ",") == nil {
				return nil, args.Error("expected ',' or ')'", nil)
			}
		}
	}

	calleeExpr, err := args.parsePostfix()
	if err != nil {
		return nil, err
	}
	call, ok := calleeExpr.(*nodeCall)
	if !ok {
		return nil, args.Error("call target must be a macro call, e.g. mymacro(args)", nil)
	}
	node.callee = call.callee
	node.args = call.args
	node.kwNames = call.kwNames
	node.kwValues = call.kwValues

	if args.Remaining() > 0 {
		return nil, args.Error("malformed call-tag", nil)
	}

	body, endtag, tagArgs, err := p.wrapUntilTag("endcall")
	if err != nil {
		return nil, err
	}
	_ = endtag
	if tagArgs.Remaining() > 0 {
		return nil, tagArgs.Error("arguments not allowed for 'endcall'", nil)
	}
	node.body = body

	return node, nil
}

func init() {
	registerTag("call", parseCallTag)
}
