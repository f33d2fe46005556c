package jinja

import "fmt"

// tagParser parses the body of a "{% name ... %}" tag (and, for block tags,
// everything up to its matching end-tag) into a Node.
type tagParser func(p *parser, startTok *Token, args *parser) (Node, error)

var tagRegistry = map[string]tagParser{}

// registerTag adds a tag parser, panicking on duplicate registration
// (a programmer error, not a template error).
func registerTag(name string, fn tagParser) {
	if _, exists := tagRegistry[name]; exists {
		panic(fmt.Sprintf("tag %q is already registered", name))
	}
	tagRegistry[name] = fn
}

// parseTagElement parses "{%" IDENT ARGS "%}" and dispatches to the
// registered parser for IDENT.
func (p *parser) parseTagElement() (Node, error) {
	p.Consume() // "{%"
	nameTok := p.MatchType(TokenKeyword)
	if nameTok == nil {
		nameTok = p.MatchType(TokenIdentifier)
	}
	if nameTok == nil {
		return nil, p.Error("tag name must be an identifier", nil)
	}

	fn, exists := tagRegistry[nameTok.Val]
	if !exists {
		return nil, p.Error(fmt.Sprintf("tag %q not found (or its opening tag is missing)", nameTok.Val), nameTok)
	}

	var argTokens []*Token
	for p.Peek(TokenSymbol, "%}") == nil {
		if p.Remaining() == 0 || p.PeekType(TokenEOF) != nil {
			return nil, p.Error("unexpectedly reached EOF, no tag end found", nil)
		}
		argTokens = append(argTokens, p.Current())
		p.Consume()
	}
	p.Consume() // "%}"

	return fn(p, nameTok, newParser(p.name, argTokens))
}
