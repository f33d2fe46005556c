package jinja

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// eof is the rune returned once the input is exhausted; -1 can never appear
// in valid UTF-8 input.
const eof rune = -1

// TokenType classifies a single lexical token.
type TokenType int

const (
	TokenError TokenType = iota
	TokenText
	TokenKeyword
	TokenIdentifier
	TokenString
	TokenNumber
	TokenSymbol
	TokenEOF
)

var tokenSpaceChars = " \n\r\t"
var tokenIdentStart = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ_"
var tokenIdentCont = tokenIdentStart + "0123456789"
var tokenDigits = "0123456789"

// tokenSymbols is ordered longest-first so greedy matching picks "{{-"
// before "{{".
var tokenSymbols = []string{
	"{{-", "-}}", "{%-", "-%}", "{#-", "-#}",
	"{{", "}}", "{%", "%}", "{#", "#}",
	"==", "!=", "<=", ">=", "//", "**",
	"(", ")", "[", "]", "{", "}",
	"+", "-", "*", "/", "%", "~", "<", ">", ",", ".", "|", ":", "=",
}

var keywordSet = map[string]struct{}{
	"if": {}, "else": {}, "elif": {}, "endif": {},
	"for": {}, "endfor": {}, "in": {},
	"not": {}, "and": {}, "or": {}, "is": {},
	"set": {}, "endset": {},
	"macro": {}, "endmacro": {},
	"call": {}, "endcall": {},
	"filter": {}, "endfilter": {},
	"break": {}, "continue": {},
	"true": {}, "false": {}, "True": {}, "False": {},
	"none": {}, "None": {}, "null": {},
	"verbatim": {}, "endverbatim": {},
}

var stringEscapes = strings.NewReplacer(
	`\\`, `\`,
	`\"`, `"`,
	`\'`, `'`,
	`\n`, "\n",
	`\t`, "\t",
	`\r`, "\r",
	`\b`, "\b",
	`\f`, "\f",
	`\v`, "\v",
)

// Token is a single lexical element: the output of lexing, input to parsing.
type Token struct {
	Typ             TokenType
	Val             string
	Line            int
	Col             int
	TrimWhitespaces bool
}

type lexerStateFn func() lexerStateFn

// lexer tokenizes Jinja2 source into a flat token stream, using the classic
// state-function lexer shape (next/backup/peek/accept/acceptRun/emit/ignore
// primitives) generalized to Jinja2 delimiters and keywords.
type lexer struct {
	name  string
	input string

	start, pos, width int
	line, col          int
	startline, startcol int

	tokens  []*Token
	errored bool

	inVerbatim          bool
	pendingTrimNextText bool
}

func lex(name, input string) ([]*Token, error) {
	l := &lexer{
		name: name, input: input,
		line: 1, col: 1, startline: 1, startcol: 1,
		tokens: make([]*Token, 0, 64),
	}
	l.run()
	if l.errored {
		last := l.tokens[len(l.tokens)-1]
		return nil, newError(LexError, name, last.Line, last.Col, "", "%s", last.Val)
	}
	l.tokens = append(l.tokens, &Token{Typ: TokenEOF, Line: l.line, Col: l.col})
	applyDashTrimming(l.tokens)
	return l.tokens, nil
}

func (l *lexer) value() string  { return l.input[l.start:l.pos] }
func (l *lexer) length() int    { return l.pos - l.start }

func (l *lexer) emit(t TokenType) {
	tok := &Token{Typ: t, Val: l.value(), Line: l.startline, Col: l.startcol}
	if t == TokenString {
		tok.Val = stringEscapes.Replace(tok.Val)
		tok.Val = norm.NFC.String(tok.Val)
	}
	if t == TokenSymbol && len(tok.Val) == 3 &&
		(strings.HasSuffix(tok.Val, "-") || strings.HasPrefix(tok.Val, "-")) {
		tok.TrimWhitespaces = true
		tok.Val = strings.ReplaceAll(tok.Val, "-", "")
	}
	l.tokens = append(l.tokens, tok)
	l.start = l.pos
	l.startline, l.startcol = l.line, l.col
}

func (l *lexer) next() rune {
	if l.pos >= len(l.input) {
		l.width = 0
		return eof
	}
	r, w := utf8.DecodeRuneInString(l.input[l.pos:])
	l.width = w
	l.pos += w
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *lexer) backup() {
	l.pos -= l.width
	if l.input[l.pos] == '\n' {
		l.line--
	} else {
		l.col--
	}
}

func (l *lexer) peek() rune {
	r := l.next()
	l.backup()
	return r
}

func (l *lexer) ignore() {
	l.start = l.pos
	l.startline, l.startcol = l.line, l.col
}

func (l *lexer) accept(valid string) bool {
	if strings.ContainsRune(valid, l.next()) {
		return true
	}
	l.backup()
	return false
}

func (l *lexer) acceptRun(valid string) {
	for strings.ContainsRune(valid, l.next()) {
	}
	l.backup()
}

func (l *lexer) errorf(format string, args ...any) lexerStateFn {
	msg := fmt.Sprintf(format, args...)
	l.tokens = append(l.tokens, &Token{Typ: TokenError, Val: msg, Line: l.startline, Col: l.startcol})
	l.errored = true
	return nil
}

func (l *lexer) emitRemainingText() {
	if l.pos > l.start {
		l.emit(TokenText)
		if l.pendingTrimNextText {
			n := len(l.tokens)
			l.tokens[n-1].Val = strings.TrimLeft(l.tokens[n-1].Val, " \t\r\n")
			l.pendingTrimNextText = false
		}
	}
}

func (l *lexer) run() {
	for {
		if l.inVerbatim {
			if strings.HasPrefix(l.input[l.pos:], "{% endverbatim %}") {
				l.emitRemainingText()
				l.advanceBy(len("{% endverbatim %}"))
				l.ignore()
				l.inVerbatim = false
			}
		} else {
			if strings.HasPrefix(l.input[l.pos:], "{#") {
				if !l.skipComment() {
					return
				}
				continue
			}
			if strings.HasPrefix(l.input[l.pos:], "{% verbatim %}") {
				l.emitRemainingText()
				l.advanceBy(len("{% verbatim %}"))
				l.ignore()
				l.inVerbatim = true
				continue
			}
			if strings.HasPrefix(l.input[l.pos:], "{{") || strings.HasPrefix(l.input[l.pos:], "{%") {
				l.emitRemainingText()
				l.tokenizeCode()
				if l.errored {
					return
				}
				continue
			}
		}

		if l.next() == eof {
			break
		}
	}

	l.emitRemainingText()
	if l.inVerbatim {
		l.errorf("verbatim-tag not closed, got EOF")
	}
}

func (l *lexer) advanceBy(n int) {
	for i := 0; i < n; i++ {
		l.next()
	}
}

// skipComment consumes a {# ... #} (optionally {#- ... -#}) comment without
// emitting a token. Comments may span multiple lines.
func (l *lexer) skipComment() bool {
	l.emitRemainingText()
	l.advanceBy(2) // "{#"
	if l.peek() == '-' {
		l.next()
		if n := len(l.tokens); n > 0 && l.tokens[n-1].Typ == TokenText {
			l.tokens[n-1].Val = strings.TrimRight(l.tokens[n-1].Val, " \t\r\n")
		}
	}
	for {
		if strings.HasPrefix(l.input[l.pos:], "-#}") {
			l.advanceBy(3)
			l.ignore()
			l.pendingTrimNextText = true
			return true
		}
		if strings.HasPrefix(l.input[l.pos:], "#}") {
			l.advanceBy(2)
			l.ignore()
			return true
		}
		if l.next() == eof {
			l.errorf("comment not closed, got EOF")
			return false
		}
	}
}

func (l *lexer) tokenizeCode() {
	for state := l.stateCode; state != nil; {
		state = state()
	}
}

func (l *lexer) stateCode() lexerStateFn {
outer:
	for {
		switch {
		case l.accept(tokenSpaceChars):
			l.ignore()
			continue
		case l.accept(tokenIdentStart):
			return l.stateIdentifier
		case l.accept(tokenDigits):
			return l.stateNumber
		case l.accept(`"'`):
			return l.stateString
		}

		for _, sym := range tokenSymbols {
			if strings.HasPrefix(l.input[l.pos:], sym) {
				l.advanceBy(len(sym))
				l.emit(TokenSymbol)
				switch sym {
				case "%}", "-%}", "}}", "-}}", "#}", "-#}":
					return nil
				}
				continue outer
			}
		}
		if l.peek() == eof {
			return l.errorf("unexpected EOF inside tag/variable")
		}
		r := l.next()
		return l.errorf("unexpected character %q inside tag/variable", r)
	}
}

func (l *lexer) stateIdentifier() lexerStateFn {
	l.acceptRun(tokenIdentCont)
	val := l.value()
	if _, isKeyword := keywordSet[val]; isKeyword {
		l.emit(TokenKeyword)
	} else {
		l.emit(TokenIdentifier)
	}
	return l.stateCode
}

// stateNumber lexes int and float literals: one or more
// digits, optional single '.' and fractional digits.
func (l *lexer) stateNumber() lexerStateFn {
	l.acceptRun(tokenDigits)
	if l.peek() == '.' {
		save, saveCol := l.pos, l.col
		l.next() // consume '.'
		if l.accept(tokenDigits) {
			l.acceptRun(tokenDigits)
		} else {
			l.pos = save
			l.col = saveCol
		}
	}
	l.emit(TokenNumber)
	return l.stateCode
}

func (l *lexer) stateString() lexerStateFn {
	quote := l.value()
	l.ignore()
	for {
		switch l.peek() {
		case eof:
			return l.errorf("unterminated string literal")
		case '\n':
			return l.errorf("newline not allowed in string literal")
		case '\\':
			l.next()
			switch l.peek() {
			case '"', '\'', '\\', 'n', 't', 'r', 'b', 'f', 'v':
				l.next()
			default:
				return l.errorf("unknown escape sequence: \\%c", l.peek())
			}
			continue
		}
		if l.accept(quote) {
			break
		}
		l.next()
	}
	l.backup()
	l.emit(TokenString)
	l.next()
	l.ignore()
	return l.stateCode
}

// applyDashTrimming performs the whitespace stripping that "-" delimiter
// markers request: the token right before an opener with TrimWhitespaces
// has its trailing whitespace stripped, and the token right after a closer
// with TrimWhitespaces has its leading whitespace stripped.
func applyDashTrimming(tokens []*Token) {
	for i, tok := range tokens {
		if tok.Typ != TokenSymbol || !tok.TrimWhitespaces {
			continue
		}
		switch tok.Val {
		case "{{", "{%", "{#", "":
			if i > 0 && tokens[i-1].Typ == TokenText {
				tokens[i-1].Val = strings.TrimRight(tokens[i-1].Val, " \t\r\n")
			}
		}
		switch tok.Val {
		case "}}", "%}", "#}", "":
			if i+1 < len(tokens) && tokens[i+1].Typ == TokenText {
				tokens[i+1].Val = strings.TrimLeft(tokens[i+1].Val, " \t\r\n")
			}
		}
	}
}
