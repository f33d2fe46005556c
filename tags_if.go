package jinja

import "strings"

// nodeIf implements {% if %}/{% elif %}/{% else %}/{% endif %}, grounded on
// a tagIfNode shape (parallel conditions/bodies slices,
// first true condition wins, trailing unconditional body is "else").
type nodeIf struct {
	conditions []Evaluator
	bodies     []*nodeDocument
}

func (n *nodeIf) Execute(env *Environment, out *strings.Builder) (ctrlSignal, error) {
	for i, cond := range n.conditions {
		v, err := cond.Evaluate(env)
		if err != nil {
			return ctrlNone, err
		}
		if v.IsTrue() {
			return n.bodies[i].Execute(env, out)
		}
	}
	if len(n.bodies) > len(n.conditions) {
		return n.bodies[len(n.conditions)].Execute(env, out)
	}
	return ctrlNone, nil
}

func parseIfTag(p *parser, startTok *Token, args *parser) (Node, error) {
	node := &nodeIf{}

	cond, err := args.parseExpression()
	if err != nil {
		return nil, err
	}
	if args.Remaining() > 0 {
		return nil, args.Error("malformed if-condition", nil)
	}
	node.conditions = append(node.conditions, cond)

	for {
		body, endtag, tagArgs, err := p.wrapUntilTag("elif", "else", "endif")
		if err != nil {
			return nil, err
		}
		node.bodies = append(node.bodies, body)

		if endtag == "endif" {
			if tagArgs.Remaining() > 0 {
				return nil, tagArgs.Error("arguments not allowed for 'endif'", nil)
			}
			break
		}
		if endtag == "elif" {
			cond, err := tagArgs.parseExpression()
			if err != nil {
				return nil, err
			}
			if tagArgs.Remaining() > 0 {
				return nil, tagArgs.Error("malformed elif-condition", nil)
			}
			node.conditions = append(node.conditions, cond)
			continue
		}
		// else
		if tagArgs.Remaining() > 0 {
			return nil, tagArgs.Error("arguments not allowed for 'else'", nil)
		}
	}

	return node, nil
}

func init() {
	registerTag("if", parseIfTag)
}
