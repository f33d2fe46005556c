package jinja

import "strings"

// nodeSet implements {% set %},
// (single-expression form) generalized to Jinja2's block form
// ({% set x %}...{% endset %}) and to `{% set ns.attr = expr %}` namespace
// mutation.
type nodeSet struct {
	name string
	attr string // non-empty for the `name.attr = expr` form
	expr Evaluator
	body *nodeDocument // non-nil for the block form
}

func (n *nodeSet) Execute(env *Environment, out *strings.Builder) (ctrlSignal, error) {
	if n.attr != "" {
		base, ok := env.Get(n.name)
		if !ok || !base.IsObject() {
			return ctrlNone, runtimeErrf(0, 0, "%q is not a namespace object", n.name)
		}
		val, err := n.expr.Evaluate(env)
		if err != nil {
			return ctrlNone, err
		}
		base.Map().Set(n.attr, val)
		return ctrlNone, nil
	}

	if n.body != nil {
		var buf strings.Builder
		ctrl, err := n.body.Execute(NewChildEnvironment(env, "set"), &buf)
		if err != nil {
			return ctrlNone, err
		}
		if ctrl != ctrlNone {
			return ctrlNone, runtimeErrf(0, 0, "break/continue not allowed inside a set block")
		}
		env.Set(n.name, SafeString(buf.String()))
		return ctrlNone, nil
	}

	val, err := n.expr.Evaluate(env)
	if err != nil {
		return ctrlNone, err
	}
	env.Set(n.name, val)
	return ctrlNone, nil
}

func parseSetTag(p *parser, startTok *Token, args *parser) (Node, error) {
	nameTok := args.MatchType(TokenIdentifier)
	if nameTok == nil {
		return nil, args.Error("expected identifier after 'set'", nil)
	}

	node := &nodeSet{name: nameTok.Val}

	if args.Match(TokenSymbol, ".") != nil {
		attrTok := args.MatchType(TokenIdentifier)
		if attrTok == nil {
			return nil, args.Error("expected attribute name after '.'", nil)
		}
		node.attr = attrTok.Val
	}

	if args.Match(TokenSymbol, "=") != nil {
		expr, err := args.parseExpression()
		if err != nil {
			return nil, err
		}
		if args.Remaining() > 0 {
			return nil, args.Error("malformed set-tag", nil)
		}
		node.expr = expr
		return node, nil
	}

	if node.attr != "" {
		return nil, args.Error("expected '=' after namespace attribute", nil)
	}
	if args.Remaining() > 0 {
		return nil, args.Error("malformed set-tag", nil)
	}

	body, endtag, tagArgs, err := p.wrapUntilTag("endset")
	if err != nil {
		return nil, err
	}
	_ = endtag
	if tagArgs.Remaining() > 0 {
		return nil, tagArgs.Error("arguments not allowed for 'endset'", nil)
	}
	node.body = body
	return node, nil
}

func init() {
	registerTag("set", parseSetTag)
}
