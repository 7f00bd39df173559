package compiler

import "fmt"

// ---------------------------------------------------------------------------
// Token types for the takeskip command language
// ---------------------------------------------------------------------------

// TokenType represents the type of a token.
type TokenType int

const (
	// Special tokens
	TokenEOF TokenType = iota
	TokenIllegal

	// Payloads
	TokenInt  // unsigned decimal literal: 4, 16, 128
	TokenData // binary literal following a data opcode: 101

	// Opcodes
	TokenTake          // t
	TokenSkip          // s
	TokenReverse       // r
	TokenInvert        // i
	TokenReverseInvert // ri
	TokenBackup        // b
	TokenZeros         // z
	TokenOnes          // n
	TokenPermute       // p

	// Delimiters
	TokenLParen // (
	TokenRParen // )
	TokenComma  // ,
	TokenDash   // -
)

var tokenNames = map[TokenType]string{
	TokenEOF:           "EOF",
	TokenIllegal:       "ILLEGAL",
	TokenInt:           "INT",
	TokenData:          "DATA",
	TokenTake:          "t",
	TokenSkip:          "s",
	TokenReverse:       "r",
	TokenInvert:        "i",
	TokenReverseInvert: "ri",
	TokenBackup:        "b",
	TokenZeros:         "z",
	TokenOnes:          "n",
	TokenPermute:       "p",
	TokenLParen:        "(",
	TokenRParen:        ")",
	TokenComma:         ",",
	TokenDash:          "-",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Token(%d)", int(t))
}

// Token represents a lexical token.
type Token struct {
	Type    TokenType
	Literal string // the raw text
	Offset  int    // byte offset into the normalized command string
}

func (t Token) String() string {
	if t.Type == TokenEOF {
		return "EOF"
	}
	if t.Type == TokenIllegal {
		return fmt.Sprintf("ILLEGAL(%q)", t.Literal)
	}
	return fmt.Sprintf("%s(%q)", t.Type, t.Literal)
}

// Opcode letters mapped to their token types. The two-letter opcode "ri"
// is resolved in the lexer before this table is consulted.
var opcodes = map[byte]TokenType{
	't': TokenTake,
	's': TokenSkip,
	'r': TokenReverse,
	'i': TokenInvert,
	'b': TokenBackup,
	'z': TokenZeros,
	'n': TokenOnes,
	'p': TokenPermute,
}
