package compiler

import (
	"fmt"
	"strconv"

	"github.com/jolsten/takeskip/bits"
)

// ---------------------------------------------------------------------------
// Parser: recursive descent parser for takeskip command strings
// ---------------------------------------------------------------------------

// SyntaxError reports a command string that does not match the grammar.
// Offset is a byte offset into the normalized (lowercased, whitespace
// stripped) command string.
type SyntaxError struct {
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at offset %d: %s", e.Offset, e.Msg)
}

// Parser parses a takeskip command string into a Program. The parser is
// fail-fast: the first token that cannot start or continue a valid
// production aborts the parse.
type Parser struct {
	lexer     *Lexer
	curToken  Token
	peekToken Token
}

// NewParser creates a new parser for the given input. The input is
// expected to be in normalized form; Parse handles normalization.
func NewParser(input string) *Parser {
	p := &Parser{lexer: NewLexer(input)}
	// Read two tokens to fill curToken and peekToken
	p.nextToken()
	p.nextToken()
	return p
}

// Parse converts a command string into a Program. Parsing is a pure
// function of the normalized string: equal normalized inputs always yield
// structurally equal programs, so results may be memoized keyed by
// Normalize(input).
func Parse(input string) (Program, error) {
	p := NewParser(Normalize(input))
	prog, err := p.parseSequence(true)
	if err != nil {
		return nil, err
	}
	return prog, nil
}

// nextToken advances to the next token.
func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.lexer.NextToken()
}

// errorf builds a SyntaxError at the current token.
func (p *Parser) errorf(format string, args ...any) error {
	return &SyntaxError{Offset: p.curToken.Offset, Msg: fmt.Sprintf(format, args...)}
}

// parseSequence parses commands until EOF (topLevel) or a closing
// parenthesis (group body).
func (p *Parser) parseSequence(topLevel bool) (Program, error) {
	var prog Program
	for {
		switch p.curToken.Type {
		case TokenEOF:
			if !topLevel {
				return nil, p.errorf("unmatched parenthesis")
			}
			return prog, nil
		case TokenRParen:
			if topLevel {
				return nil, p.errorf("unexpected %q", ")")
			}
			return prog, nil
		}

		cmd, err := p.parseCommand()
		if err != nil {
			return nil, err
		}
		prog = append(prog, cmd)
	}
}

// parseCommand parses one command at the current token.
func (p *Parser) parseCommand() (Command, error) {
	switch p.curToken.Type {
	case TokenTake:
		n, err := p.parseCount()
		if err != nil {
			return nil, err
		}
		return &Take{N: n}, nil

	case TokenSkip:
		n, err := p.parseCount()
		if err != nil {
			return nil, err
		}
		return &Skip{N: n}, nil

	case TokenReverse:
		n, err := p.parseCount()
		if err != nil {
			return nil, err
		}
		return &Reverse{N: n}, nil

	case TokenInvert:
		n, err := p.parseCount()
		if err != nil {
			return nil, err
		}
		return &Invert{N: n}, nil

	case TokenReverseInvert:
		n, err := p.parseCount()
		if err != nil {
			return nil, err
		}
		return &ReverseInvert{N: n}, nil

	case TokenBackup:
		n, err := p.parseCount()
		if err != nil {
			return nil, err
		}
		return &Backup{N: n}, nil

	case TokenZeros:
		n, err := p.parseCount()
		if err != nil {
			return nil, err
		}
		return &Zeros{N: n}, nil

	case TokenOnes:
		n, err := p.parseCount()
		if err != nil {
			return nil, err
		}
		return &Ones{N: n}, nil

	case TokenData:
		return p.parseData()

	case TokenPermute:
		return p.parsePermute()

	case TokenLParen:
		return p.parseGroup()

	case TokenIllegal:
		return nil, p.errorf("unknown opcode %q", p.curToken.Literal)

	default:
		return nil, p.errorf("unexpected %q", p.curToken.Literal)
	}
}

// parseCount consumes the current opcode token and its integer payload.
func (p *Parser) parseCount() (int, error) {
	op := p.curToken
	p.nextToken()
	return p.parseInt(op.Literal)
}

// parseInt consumes the current token as an unsigned decimal literal.
func (p *Parser) parseInt(after string) (int, error) {
	if p.curToken.Type != TokenInt {
		return 0, p.errorf("expected integer after %q, got %s", after, p.curToken)
	}
	n, err := strconv.Atoi(p.curToken.Literal)
	if err != nil {
		return 0, p.errorf("malformed integer %q", p.curToken.Literal)
	}
	p.nextToken()
	return n, nil
}

// parseData consumes a data token and validates its literal.
func (p *Parser) parseData() (Command, error) {
	tok := p.curToken
	p.nextToken()
	if tok.Literal == "" {
		return nil, &SyntaxError{Offset: tok.Offset, Msg: "data literal requires at least one binary digit"}
	}
	b, err := bits.Parse(tok.Literal)
	if err != nil {
		return nil, &ValidationError{Cmd: "d" + tok.Literal, Msg: "data literal may only contain 0 and 1"}
	}
	return &Data{Bits: b}, nil
}

// parsePermute consumes a permute token and its selector list.
func (p *Parser) parsePermute() (Command, error) {
	p.nextToken()

	var sels []Selector
	for {
		sel, err := p.parseSelector()
		if err != nil {
			return nil, err
		}
		sels = append(sels, sel)

		if p.curToken.Type != TokenComma {
			break
		}
		p.nextToken()
	}

	cmd := &Permute{Selectors: sels}
	for _, s := range sels {
		if s.Start < 1 || s.End < 1 {
			return nil, &ValidationError{Cmd: cmd.String(), Msg: "permute positions are 1-based and must be positive"}
		}
	}
	return cmd, nil
}

// parseSelector parses one selector: an index, or an inclusive range
// written start-end (descending when start > end).
func (p *Parser) parseSelector() (Selector, error) {
	start, err := p.parseInt("p")
	if err != nil {
		return Selector{}, err
	}

	if p.curToken.Type != TokenDash {
		return Selector{Start: start, End: start}, nil
	}
	p.nextToken()

	end, err := p.parseInt("-")
	if err != nil {
		return Selector{}, err
	}
	return Selector{Start: start, End: end}, nil
}

// parseGroup parses a parenthesized command sequence with its repeat
// count.
func (p *Parser) parseGroup() (Command, error) {
	p.nextToken() // consume (

	body, err := p.parseSequence(false)
	if err != nil {
		return nil, err
	}
	p.nextToken() // consume )

	repeat, err := p.parseInt(")")
	if err != nil {
		return nil, err
	}

	cmd := &Group{Body: body, Repeat: repeat}
	if repeat < 1 {
		return nil, &ValidationError{Cmd: cmd.String(), Msg: "group repeat count must be positive"}
	}
	return cmd, nil
}
