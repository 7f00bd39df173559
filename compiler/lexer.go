package compiler

import (
	"strings"
	"unicode"
)

// ---------------------------------------------------------------------------
// Lexer: tokenizer for takeskip command strings
// ---------------------------------------------------------------------------

// Normalize lowercases a command string and strips all whitespace. Parsing
// is defined over the normalized form: Parse(s) and Parse(Normalize(s))
// always yield structurally equal programs, which is what makes the
// normalized string a safe cache key.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// Lexer tokenizes a takeskip command string. The grammar is ASCII, case
// insensitive, and whitespace insensitive.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      byte // current character, 0 at EOF
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

// readChar reads the next character.
func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0 // EOF
		l.pos = l.readPos
	} else {
		l.ch = l.input[l.readPos]
		l.pos = l.readPos
		l.readPos++
	}
}

// peekChar returns the next character without consuming it.
func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

// NextToken returns the next token.
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	pos := l.pos

	switch {
	case l.ch == 0:
		return Token{Type: TokenEOF, Literal: "", Offset: pos}

	case l.ch == '(':
		l.readChar()
		return Token{Type: TokenLParen, Literal: "(", Offset: pos}

	case l.ch == ')':
		l.readChar()
		return Token{Type: TokenRParen, Literal: ")", Offset: pos}

	case l.ch == ',':
		l.readChar()
		return Token{Type: TokenComma, Literal: ",", Offset: pos}

	case l.ch == '-':
		l.readChar()
		return Token{Type: TokenDash, Literal: "-", Offset: pos}

	case isDigit(l.ch):
		return l.readInt(pos)

	case isLetter(l.ch):
		return l.readOpcode(pos)

	default:
		ch := l.ch
		l.readChar()
		return Token{Type: TokenIllegal, Literal: string(ch), Offset: pos}
	}
}

// readInt reads an unsigned decimal literal.
func (l *Lexer) readInt(pos int) Token {
	start := l.pos
	for isDigit(l.ch) {
		l.readChar()
	}
	return Token{Type: TokenInt, Literal: l.input[start:l.pos], Offset: pos}
}

// readOpcode reads a one- or two-letter opcode. The data opcode consumes
// its literal immediately: the digit run after 'd' is the payload, not an
// integer token. Validation of the literal's digits happens at command
// construction, not here.
func (l *Lexer) readOpcode(pos int) Token {
	ch := lower(l.ch)
	l.readChar()

	switch ch {
	case 'r':
		if lower(l.ch) == 'i' {
			l.readChar()
			return Token{Type: TokenReverseInvert, Literal: "ri", Offset: pos}
		}
		return Token{Type: TokenReverse, Literal: "r", Offset: pos}

	case 'd':
		l.skipWhitespace()
		start := l.pos
		for isDigit(l.ch) {
			l.readChar()
		}
		return Token{Type: TokenData, Literal: l.input[start:l.pos], Offset: pos}
	}

	if t, ok := opcodes[ch]; ok {
		return Token{Type: t, Literal: string(ch), Offset: pos}
	}
	return Token{Type: TokenIllegal, Literal: string(ch), Offset: pos}
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isLetter(ch byte) bool {
	return ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z')
}

func lower(ch byte) byte {
	if 'A' <= ch && ch <= 'Z' {
		return ch + ('a' - 'A')
	}
	return ch
}
