package jinja

import "fmt"

// Expression precedence ladder:
//
//	ternary > or > and > not > comparison/is/in > concat(~) > additive >
//	multiplicative > unary(-,+) > power(**) > postfix(.|[]|()|filter) > primary
//
// Implemented as a cascade (parseExpression/parseTernary/parseOr/parseAnd/
// parseNot/parseComparison/parseConcat/parseAdditive/parseMultiplicative/
// parseUnary/parsePower/parsePostfix/parsePrimary) following Jinja2's
// table, including the ternary, "~", "//" and "is" test tiers. Literal
// subexpressions fold into a single nodeConstant at parse time via
// foldBin/foldUnary below.
func (p *parser) parseExpression() (Evaluator, error) {
	return p.parseTernary()
}

func (p *parser) parseTernary() (Evaluator, error) {
	thenExpr, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.Match(TokenKeyword, "if") == nil {
		return thenExpr, nil
	}
	cond, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	var elseExpr Evaluator
	if p.Match(TokenKeyword, "else") != nil {
		elseExpr, err = p.parseTernary()
		if err != nil {
			return nil, err
		}
	}
	if c, ok := asConstant(cond); ok {
		if c.IsTrue() {
			return thenExpr, nil
		}
		if elseExpr != nil {
			return elseExpr, nil
		}
		return &nodeConstant{val: Undefined("")}, nil
	}
	return &nodeTernary{cond: cond, thenExpr: thenExpr, elseExpr: elseExpr}, nil
}

func (p *parser) parseOr() (Evaluator, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.Current()
		if p.Match(TokenKeyword, "or") == nil {
			return left, nil
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = foldBin("or", left, right, tok.Line, tok.Col)
	}
}

func (p *parser) parseAnd() (Evaluator, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.Current()
		if p.Match(TokenKeyword, "and") == nil {
			return left, nil
		}
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = foldBin("and", left, right, tok.Line, tok.Col)
	}
}

func (p *parser) parseNot() (Evaluator, error) {
	if tok := p.Match(TokenKeyword, "not"); tok != nil {
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return foldUnary("not", operand, tok.Line, tok.Col), nil
	}
	return p.parseComparison()
}

func (p *parser) parseComparison() (Evaluator, error) {
	left, err := p.parseConcat()
	if err != nil {
		return nil, err
	}

	switch {
	case p.MatchOne(TokenSymbol, "==", "!=", "<=", ">=", "<", ">") != nil:
		op := p.tokens[p.idx-1]
		right, err := p.parseConcat()
		if err != nil {
			return nil, err
		}
		return foldBin(op.Val, left, right, op.Line, op.Col), nil

	case p.Match(TokenKeyword, "in") != nil:
		op := p.tokens[p.idx-1]
		right, err := p.parseConcat()
		if err != nil {
			return nil, err
		}
		return foldBin("in", left, right, op.Line, op.Col), nil

	case p.Peek(TokenKeyword, "not") != nil && p.PeekN(1, TokenKeyword, "in") != nil:
		op := p.Current()
		p.ConsumeN(2)
		right, err := p.parseConcat()
		if err != nil {
			return nil, err
		}
		return foldBin("not in", left, right, op.Line, op.Col), nil

	case p.Match(TokenKeyword, "is") != nil:
		return p.parseTestTail(left)
	}

	return left, nil
}

// parseTestTail parses the remainder of a `value is [not] name(args)` test.
func (p *parser) parseTestTail(value Evaluator) (Evaluator, error) {
	negate := p.Match(TokenKeyword, "not") != nil
	nameTok := p.MatchType(TokenIdentifier)
	if nameTok == nil {
		nameTok = p.MatchType(TokenKeyword)
	}
	if nameTok == nil {
		return nil, p.Error("expected test name after 'is'", nil)
	}
	args, err := p.parseTestOrFilterArgs()
	if err != nil {
		return nil, err
	}
	return &nodeTestExpr{value: value, name: nameTok.Val, negate: negate, args: args, line: nameTok.Line, col: nameTok.Col}, nil
}

// parseTestOrFilterArgs parses an optional parenthesized argument list, or
// (for tests only, mirroring Jinja2's bare-argument test call syntax) a
// single unparenthesized argument bound at concat precedence.
func (p *parser) parseTestOrFilterArgs() ([]Evaluator, error) {
	if p.Match(TokenSymbol, "(") != nil {
		var args []Evaluator
		for p.Peek(TokenSymbol, ")") == nil {
			if len(args) > 0 {
				if p.Match(TokenSymbol, ",") == nil {
					return nil, p.Error("expected ',' or ')'", nil)
				}
			}
			// positional arguments only; the keyword form "name=value" is
			// not accepted here.
			arg, err := p.parseConcat()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
		}
		p.Consume() // ")"
		return args, nil
	}
	if p.startsBareArgument() {
		arg, err := p.parseConcat()
		if err != nil {
			return nil, err
		}
		return []Evaluator{arg}, nil
	}
	return nil, nil
}

// startsBareArgument reports whether the current token could begin a bare
// (unparenthesized) test argument, as opposed to the next pipe/tag-closer/
// keyword that ends the surrounding expression.
func (p *parser) startsBareArgument() bool {
	t := p.Current()
	if t == nil {
		return false
	}
	switch t.Typ {
	case TokenIdentifier, TokenString, TokenNumber:
		return true
	case TokenKeyword:
		switch t.Val {
		case "true", "false", "True", "False", "none", "None", "null":
			return true
		}
		return false
	case TokenSymbol:
		return t.Val == "(" || t.Val == "[" || t.Val == "-"
	}
	return false
}

func (p *parser) parseConcat() (Evaluator, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.Current()
		if p.Match(TokenSymbol, "~") == nil {
			return left, nil
		}
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = foldBin("~", left, right, tok.Line, tok.Col)
	}
}

func (p *parser) parseAdditive() (Evaluator, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.PeekOne(TokenSymbol, "+", "-")
		if tok == nil {
			return left, nil
		}
		p.Consume()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = foldBin(tok.Val, left, right, tok.Line, tok.Col)
	}
}

func (p *parser) parseMultiplicative() (Evaluator, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.PeekOne(TokenSymbol, "*", "/", "//", "%")
		if tok == nil {
			return left, nil
		}
		p.Consume()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = foldBin(tok.Val, left, right, tok.Line, tok.Col)
	}
}

func (p *parser) parseUnary() (Evaluator, error) {
	if tok := p.PeekOne(TokenSymbol, "-", "+"); tok != nil {
		p.Consume()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return foldUnary(tok.Val, operand, tok.Line, tok.Col), nil
	}
	return p.parsePower()
}

func (p *parser) parsePower() (Evaluator, error) {
	left, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	if tok := p.Match(TokenSymbol, "**"); tok != nil {
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return foldBin("**", left, right, tok.Line, tok.Col), nil
	}
	return left, nil
}

// parsePostfix handles member access, subscripting, calls, and filter
// chains, all of which bind tighter than any operator.
func (p *parser) parsePostfix() (Evaluator, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.Match(TokenSymbol, ".") != nil:
			nameTok := p.MatchType(TokenIdentifier)
			if nameTok == nil {
				nameTok = p.MatchType(TokenKeyword)
			}
			if nameTok == nil {
				return nil, p.Error("expected attribute name after '.'", nil)
			}
			expr = &nodeGetAttr{obj: expr, attr: nameTok.Val, line: nameTok.Line, col: nameTok.Col}

		case p.Match(TokenSymbol, "[") != nil:
			tok := p.tokens[p.idx-1]
			sub, err := p.parseSubscript(expr, tok)
			if err != nil {
				return nil, err
			}
			expr = sub

		case p.Peek(TokenSymbol, "(") != nil:
			tok := p.Current()
			args, kwNames, kwValues, err := p.parseCallArgs()
			if err != nil {
				return nil, err
			}
			expr = &nodeCall{callee: expr, args: args, kwNames: kwNames, kwValues: kwValues, line: tok.Line, col: tok.Col}

		case p.Match(TokenSymbol, "|") != nil:
			nameTok := p.MatchType(TokenIdentifier)
			if nameTok == nil {
				nameTok = p.MatchType(TokenKeyword)
			}
			if nameTok == nil {
				return nil, p.Error("expected filter name after '|'", nil)
			}
			args, kwNames, kwValues, err := p.parseFilterArgs()
			if err != nil {
				return nil, err
			}
			expr = &nodeFilterExpr{value: expr, name: nameTok.Val, args: args, kwNames: kwNames, kwValues: kwValues, line: nameTok.Line, col: nameTok.Col}

		default:
			return expr, nil
		}
	}
}

// parseSubscript parses the inside of "[" ... "]" once the opening bracket
// has already been consumed. A bare expression produces a nodeGetItem; the
// presence of any ":" makes it a Python-style slice (start:stop:step, each
// part optional), producing a nodeSlice.
func (p *parser) parseSubscript(obj Evaluator, tok *Token) (Evaluator, error) {
	parsePart := func() (Evaluator, error) {
		if p.Peek(TokenSymbol, ":") != nil || p.Peek(TokenSymbol, "]") != nil {
			return nil, nil
		}
		return p.parseExpression()
	}

	start, err := parsePart()
	if err != nil {
		return nil, err
	}

	if p.Match(TokenSymbol, ":") == nil {
		if p.Match(TokenSymbol, "]") == nil {
			return nil, p.Error("expected ']'", nil)
		}
		if start == nil {
			return nil, p.Error("expected expression inside '[]'", nil)
		}
		return &nodeGetItem{obj: obj, index: start, line: tok.Line, col: tok.Col}, nil
	}

	stop, err := parsePart()
	if err != nil {
		return nil, err
	}

	var step Evaluator
	if p.Match(TokenSymbol, ":") != nil {
		step, err = parsePart()
		if err != nil {
			return nil, err
		}
	}

	if p.Match(TokenSymbol, "]") == nil {
		return nil, p.Error("expected ']'", nil)
	}
	return &nodeSlice{obj: obj, start: start, stop: stop, step: step, line: tok.Line, col: tok.Col}, nil
}

// parseCallArgs parses "(" [expr|name=expr] ("," ...) ")" for function/macro
// calls, splitting positional from keyword arguments.
func (p *parser) parseCallArgs() ([]Evaluator, []string, []Evaluator, error) {
	p.Consume() // "("
	var args []Evaluator
	var kwNames []string
	var kwValues []Evaluator
	for p.Peek(TokenSymbol, ")") == nil {
		if len(args)+len(kwNames) > 0 {
			if p.Match(TokenSymbol, ",") == nil {
				return nil, nil, nil, p.Error("expected ',' or ')'", nil)
			}
		}
		if id := p.PeekType(TokenIdentifier); id != nil && p.PeekN(1, TokenSymbol, "=") != nil {
			p.ConsumeN(2)
			val, err := p.parseTernary()
			if err != nil {
				return nil, nil, nil, err
			}
			kwNames = append(kwNames, id.Val)
			kwValues = append(kwValues, val)
			continue
		}
		val, err := p.parseTernary()
		if err != nil {
			return nil, nil, nil, err
		}
		args = append(args, val)
	}
	p.Consume() // ")"
	return args, kwNames, kwValues, nil
}

// parseFilterArgs parses an optional "(args)" list after a filter name.
func (p *parser) parseFilterArgs() ([]Evaluator, []string, []Evaluator, error) {
	if p.Peek(TokenSymbol, "(") == nil {
		return nil, nil, nil, nil
	}
	return p.parseCallArgs()
}

func (p *parser) parsePrimary() (Evaluator, error) {
	tok := p.Current()
	if tok == nil {
		return nil, p.Error("unexpected EOF in expression", nil)
	}

	switch {
	case p.Match(TokenSymbol, "(") != nil:
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if p.Match(TokenSymbol, ")") == nil {
			return nil, p.Error("expected ')'", nil)
		}
		return expr, nil

	case p.Match(TokenSymbol, "[") != nil:
		var items []Evaluator
		for p.Peek(TokenSymbol, "]") == nil {
			if len(items) > 0 {
				if p.Match(TokenSymbol, ",") == nil {
					return nil, p.Error("expected ',' or ']'", nil)
				}
			}
			item, err := p.parseTernary()
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		p.Consume() // "]"
		if allConstants(items) {
			return &nodeConstant{val: Array(constantValues(items))}, nil
		}
		return &nodeArray{items: items}, nil

	case p.Match(TokenSymbol, "{") != nil:
		var keys []string
		var vals []Evaluator
		for p.Peek(TokenSymbol, "}") == nil {
			if len(keys) > 0 {
				if p.Match(TokenSymbol, ",") == nil {
					return nil, p.Error("expected ',' or '}'", nil)
				}
			}
			keyTok := p.MatchType(TokenString)
			if keyTok == nil {
				keyTok = p.MatchType(TokenIdentifier)
			}
			if keyTok == nil {
				return nil, p.Error("expected string or identifier object key", nil)
			}
			if p.Match(TokenSymbol, ":") == nil {
				return nil, p.Error("expected ':' after object key", nil)
			}
			val, err := p.parseTernary()
			if err != nil {
				return nil, err
			}
			keys = append(keys, keyTok.Val)
			vals = append(vals, val)
		}
		p.Consume() // "}"
		return &nodeObject{keys: keys, vals: vals}, nil

	case tok.Typ == TokenNumber:
		p.Consume()
		return &nodeConstant{val: parseNumberLiteral(tok.Val)}, nil

	case tok.Typ == TokenString:
		p.Consume()
		return &nodeConstant{val: String(tok.Val)}, nil

	case tok.Typ == TokenKeyword:
		switch tok.Val {
		case "true", "True":
			p.Consume()
			return &nodeConstant{val: Bool(true)}, nil
		case "false", "False":
			p.Consume()
			return &nodeConstant{val: Bool(false)}, nil
		case "none", "None", "null":
			p.Consume()
			return &nodeConstant{val: Null}, nil
		}
		return nil, p.Error(fmt.Sprintf("unexpected keyword %q in expression", tok.Val), tok)

	case tok.Typ == TokenIdentifier:
		p.Consume()
		return &nodeIdentifier{name: tok.Val}, nil
	}

	return nil, p.Error(fmt.Sprintf("unexpected token %q in expression", tok.Val), tok)
}

func parseNumberLiteral(s string) *Value {
	hasDot := false
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			hasDot = true
			break
		}
	}
	if !hasDot {
		var n int64
		for i := 0; i < len(s); i++ {
			n = n*10 + int64(s[i]-'0')
		}
		return Int(n)
	}
	var whole, frac int64
	var fracDigits int
	seenDot := false
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			seenDot = true
			continue
		}
		d := int64(s[i] - '0')
		if !seenDot {
			whole = whole*10 + d
		} else {
			frac = frac*10 + d
			fracDigits++
		}
	}
	f := float64(whole)
	if fracDigits > 0 {
		div := 1.0
		for i := 0; i < fracDigits; i++ {
			div *= 10
		}
		f += float64(frac) / div
	}
	return Float(f)
}

func allConstants(items []Evaluator) bool {
	for _, it := range items {
		if _, ok := asConstant(it); !ok {
			return false
		}
	}
	return true
}

func constantValues(items []Evaluator) []*Value {
	vals := make([]*Value, len(items))
	for i, it := range items {
		vals[i], _ = asConstant(it)
	}
	return vals
}

// foldBin builds a binary-operator node, folding it to a single constant
// immediately when both operands are literals and the operation succeeds
// without error. Anything
// that would raise at parse time (e.g. division by zero) is left unfolded
// so it surfaces as an ordinary runtime error instead.
func foldBin(op string, left, right Evaluator, line, col int) Evaluator {
	lc, lok := asConstant(left)
	rc, rok := asConstant(right)
	if lok && rok {
		switch op {
		case "and":
			if !lc.IsTrue() {
				return &nodeConstant{val: lc}
			}
			return &nodeConstant{val: rc}
		case "or":
			if lc.IsTrue() {
				return &nodeConstant{val: lc}
			}
			return &nodeConstant{val: rc}
		}
		if v, err := evalBinOp(op, lc, rc, line, col); err == nil {
			return &nodeConstant{val: v}
		}
	}
	return &nodeBinOp{op: op, left: left, right: right, line: line, col: col}
}

func foldUnary(op string, operand Evaluator, line, col int) Evaluator {
	if c, ok := asConstant(operand); ok {
		switch op {
		case "not":
			return &nodeConstant{val: Bool(!c.IsTrue())}
		case "-":
			if c.IsFloat() {
				return &nodeConstant{val: Float(-c.Float())}
			}
			if c.IsInteger() {
				return &nodeConstant{val: Int(-c.Integer())}
			}
		case "+":
			if c.IsNumber() {
				return &nodeConstant{val: c}
			}
		}
	}
	return &nodeUnaryOp{op: op, operand: operand, line: line, col: col}
}
