package jinja

import "strings"

// nodeVerbatim implements {% verbatim %}/{% endverbatim %} for the spellings
// the lexer does not handle itself. The lexer passes the exact spellings
// "{% verbatim %}" ... "{% endverbatim %}" through as raw text, so this tag
// parser only sees other spellings (e.g. "{%- verbatim %}"). For those the
// tokens between the two tags are re-serialized to text: whitespace and "-"
// markers inside tags are not preserved, and string literals are re-quoted
// with double quotes.
type nodeVerbatim struct {
	text string
}

func (n *nodeVerbatim) Execute(env *Environment, out *strings.Builder) (ctrlSignal, error) {
	out.WriteString(n.text)
	return ctrlNone, nil
}

func parseVerbatimTag(p *parser, startTok *Token, args *parser) (Node, error) {
	if args.Remaining() > 0 {
		return nil, args.Error("arguments not allowed for 'verbatim'", nil)
	}

	var raw strings.Builder
	for {
		tok := p.Current()
		if tok == nil {
			return nil, p.Error("verbatim block not closed, got EOF", nil)
		}
		if tok.Typ == TokenSymbol && tok.Val == "{%" {
			nameTok := p.Get(p.idx + 1)
			closeTok := p.Get(p.idx + 2)
			if nameTok != nil && nameTok.Typ == TokenKeyword && nameTok.Val == "endverbatim" &&
				closeTok != nil && closeTok.Typ == TokenSymbol && closeTok.Val == "%}" {
				p.ConsumeN(3)
				return &nodeVerbatim{text: raw.String()}, nil
			}
		}
		switch tok.Typ {
		case TokenText, TokenIdentifier, TokenKeyword, TokenSymbol, TokenNumber:
			raw.WriteString(tok.Val)
		case TokenString:
			raw.WriteString("\"" + tok.Val + "\"")
		}
		p.Consume()
	}
}

func init() {
	registerTag("verbatim", parseVerbatimTag)
}
