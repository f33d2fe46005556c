package jinja

import "strings"

// filterApp is one step of a `{% filter a|b(c) %}` pipe chain.
type filterApp struct {
	name      string
	args      []Evaluator
	kwNames   []string
	kwValues  []Evaluator
	line, col int
}

// nodeFilterBlock implements {% filter %}/{% endfilter %}: it renders its
// body to a string, then threads that string through one or more filters,
// reusing the filter-application machinery in filters.go
// (the "|" filter operator applies one filter inline; this tag
// reuses the same registry and argument-parsing shape as an expression
// filter chain, applied to an already-rendered block instead of a value).
type nodeFilterBlock struct {
	chain []filterApp
	body  *nodeDocument
}

func (n *nodeFilterBlock) Execute(env *Environment, out *strings.Builder) (ctrlSignal, error) {
	var buf strings.Builder
	ctrl, err := n.body.Execute(NewChildEnvironment(env, "filter"), &buf)
	if err != nil {
		return ctrlNone, err
	}
	if ctrl != ctrlNone {
		return ctrlNone, runtimeErrf(0, 0, "break/continue not allowed inside a filter block")
	}

	val := String(buf.String())
	for _, step := range n.chain {
		fn, ok := lookupFilter(step.name)
		if !ok {
			return ctrlNone, runtimeErrf(step.line, step.col, "no filter named %q", step.name)
		}
		args := make([]*Value, len(step.args)+1)
		args[0] = val
		for i, a := range step.args {
			av, err := a.Evaluate(env)
			if err != nil {
				return ctrlNone, err
			}
			args[i+1] = av
		}
		kwargs := NewOrderedMap()
		for i, name := range step.kwNames {
			kv, err := step.kwValues[i].Evaluate(env)
			if err != nil {
				return ctrlNone, err
			}
			kwargs.Set(name, kv)
		}
		val, err = fn(args, kwargs, env)
		if err != nil {
			return ctrlNone, err
		}
	}
	out.WriteString(val.Display())
	return ctrlNone, nil
}

func parseFilterTag(p *parser, startTok *Token, args *parser) (Node, error) {
	node := &nodeFilterBlock{}

	for {
		nameTok := args.MatchType(TokenIdentifier)
		if nameTok == nil {
			nameTok = args.MatchType(TokenKeyword)
		}
		if nameTok == nil {
			return nil, args.Error("expected filter name", nil)
		}
		step := filterApp{name: nameTok.Val, line: nameTok.Line, col: nameTok.Col}
		fargs, kwNames, kwValues, err := args.parseFilterArgs()
		if err != nil {
			return nil, err
		}
		step.args, step.kwNames, step.kwValues = fargs, kwNames, kwValues
		node.chain = append(node.chain, step)

		if args.Match(TokenSymbol, "|") != nil {
			continue
		}
		break
	}

	if args.Remaining() > 0 {
		return nil, args.Error("malformed filter-tag", nil)
	}

	body, endtag, tagArgs, err := p.wrapUntilTag("endfilter")
	if err != nil {
		return nil, err
	}
	_ = endtag
	if tagArgs.Remaining() > 0 {
		return nil, tagArgs.Error("arguments not allowed for 'endfilter'", nil)
	}
	node.body = body

	return node, nil
}

func init() {
	registerTag("filter", parseFilterTag)
}
