package jinja

import (
	"strings"

	"github.com/juju/errors"
)

// Template is the external-facing façade: Template.New parses once,
// Template.Render executes many times against different contexts. Collapsed
// to a single type since this engine has no inheritance/includes to resolve
// against a shared set of templates.
type Template struct {
	name string
	doc  *nodeDocument

	lstripBlocks bool
	trimBlocks   bool
	autoEscape   bool
	extraGlobals map[string]*Value
	logger       Logger
}

// New lexes and parses source into a renderable Template, wrapping lex/parse
// failures with errors.Annotate so callers get call-stack-style context
// without a second error hierarchy.
func New(name, source string, opts ...Option) (*Template, error) {
	t := &Template{name: name, logger: defaultLogger}
	for _, opt := range opts {
		opt(t)
	}

	pre := source
	if t.lstripBlocks || t.trimBlocks {
		pre = preprocessWhitespaceControl(source, t.lstripBlocks, t.trimBlocks)
	}

	tokens, err := lex(name, pre)
	if err != nil {
		return nil, errors.Annotate(err, "lexing template")
	}

	p := newParser(name, tokens)
	doc, err := p.parseDocument()
	if err != nil {
		return nil, errors.Annotate(err, "parsing template")
	}

	t.doc = doc
	return t, nil
}

// Render executes the template against context, returning the rendered
// text. context values are converted with Value.FromHost (§6/§11).
func (t *Template) Render(context map[string]any) (string, error) {
	env := NewEnvironment()
	for name, v := range t.extraGlobals {
		env.Set(name, v)
	}
	for name, raw := range context {
		v, err := FromHost(raw)
		if err != nil {
			return "", errors.Annotatef(err, "converting context variable %q", name)
		}
		env.Set(name, v)
	}

	var out strings.Builder
	ctrl, err := t.doc.Execute(env, &out)
	if err != nil {
		return "", errors.Annotate(err, "rendering template")
	}
	if ctrl != ctrlNone {
		t.logger.Warningf("template %s: top-level break/continue had no enclosing loop", t.name)
		return "", errors.Annotate(runtimeErrf(0, 0, "break/continue outside of a loop"), "rendering template")
	}
	return out.String(), nil
}

// preprocessWhitespaceControl implements Jinja2's lstrip_blocks/trim_blocks
// environment options. It operates on raw source
// text, since it needs line structure the token stream has already
// discarded by the time the lexer runs.
func preprocessWhitespaceControl(src string, lstrip, trim bool) string {
	var out strings.Builder
	i := 0
	for i < len(src) {
		if strings.HasPrefix(src[i:], "{%") {
			if lstrip && !strings.HasPrefix(src[i:], "{%-") {
				lineStart := strings.LastIndexByte(out.String(), '\n') + 1
				prefix := out.String()[lineStart:]
				if strings.TrimSpace(prefix) == "" {
					s := out.String()
					out.Reset()
					out.WriteString(s[:lineStart])
				}
			}
			end := strings.Index(src[i:], "%}")
			if end == -1 {
				out.WriteString(src[i:])
				break
			}
			end += i + 2
			out.WriteString(src[i:end])
			i = end
			if trim && !strings.HasSuffix(src[:end], "-%}") && i < len(src) && src[i] == '\n' {
				i++
			}
			continue
		}
		out.WriteByte(src[i])
		i++
	}
	return out.String()
}
