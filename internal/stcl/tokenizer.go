// Package stcl tokenizes and parses the star catalog definition language:
// whitespace-separated names, numbers, quoted strings, and brace/bracket
// structured values, as found in .stc files.
package stcl

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// TokenKind identifies the kind of the current token.
type TokenKind int

const (
	TokenError TokenKind = iota
	TokenEnd
	TokenName
	TokenString
	TokenNumber
	TokenBeginGroup
	TokenEndGroup
	TokenBeginArray
	TokenEndArray
)

// Tokenizer splits an input stream into tokens. It supports one token of
// push-back, which the definition loader uses after reading a lookahead
// token that belongs to the following value.
type Tokenizer struct {
	r    *bufio.Reader
	line int

	kind   TokenKind
	text   string
	number float64
	errMsg string

	pushedBack bool
}

// NewTokenizer creates a tokenizer reading from r.
func NewTokenizer(r io.Reader) *Tokenizer {
	return &Tokenizer{r: bufio.NewReader(r), line: 1}
}

// LineNumber returns the 1-based line of the current token.
func (t *Tokenizer) LineNumber() int { return t.line }

// Kind returns the kind of the current token.
func (t *Tokenizer) Kind() TokenKind { return t.kind }

// Text returns the text of the current name or string token.
func (t *Tokenizer) Text() string { return t.text }

// Number returns the value of the current number token.
func (t *Tokenizer) Number() float64 { return t.number }

// Err returns the message of the current error token.
func (t *Tokenizer) Err() string { return t.errMsg }

// PushBack makes the next NextToken call return the current token again.
func (t *Tokenizer) PushBack() { t.pushedBack = true }

// NextToken advances to the next token and returns its kind.
func (t *Tokenizer) NextToken() TokenKind {
	if t.pushedBack {
		t.pushedBack = false
		return t.kind
	}

	if !t.skipSpace() {
		t.kind = TokenEnd
		return t.kind
	}

	c, _, err := t.r.ReadRune()
	if err != nil {
		t.kind = TokenEnd
		return t.kind
	}

	switch {
	case c == '{':
		t.kind = TokenBeginGroup
	case c == '}':
		t.kind = TokenEndGroup
	case c == '[':
		t.kind = TokenBeginArray
	case c == ']':
		t.kind = TokenEndArray
	case c == '"':
		t.readString()
	case c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9'):
		t.r.UnreadRune()
		t.readNumber()
	case isNameStart(c):
		t.r.UnreadRune()
		t.readName()
	default:
		t.fail("unexpected character " + strconv.QuoteRune(c))
	}
	return t.kind
}

func (t *Tokenizer) fail(msg string) {
	t.kind = TokenError
	t.errMsg = msg
}

// skipSpace consumes whitespace and # comments; it reports false at EOF.
func (t *Tokenizer) skipSpace() bool {
	for {
		c, _, err := t.r.ReadRune()
		if err != nil {
			return false
		}
		switch {
		case c == '\n':
			t.line++
		case c == ' ' || c == '\t' || c == '\r':
		case c == '#':
			for {
				c, _, err = t.r.ReadRune()
				if err != nil {
					return false
				}
				if c == '\n' {
					t.line++
					break
				}
			}
		default:
			t.r.UnreadRune()
			return true
		}
	}
}

func (t *Tokenizer) readString() {
	var sb strings.Builder
	for {
		c, _, err := t.r.ReadRune()
		if err != nil {
			t.fail("unterminated string")
			return
		}
		switch c {
		case '"':
			t.kind = TokenString
			t.text = sb.String()
			return
		case '\\':
			esc, _, err := t.r.ReadRune()
			if err != nil {
				t.fail("unterminated string")
				return
			}
			switch esc {
			case 'n':
				sb.WriteRune('\n')
			case '\\', '"':
				sb.WriteRune(esc)
			default:
				sb.WriteRune(esc)
			}
		case '\n':
			t.line++
			sb.WriteRune(c)
		default:
			sb.WriteRune(c)
		}
	}
}

func (t *Tokenizer) readNumber() {
	var sb strings.Builder
	for {
		c, _, err := t.r.ReadRune()
		if err != nil {
			break
		}
		if c == '+' || c == '-' || c == '.' || c == 'e' || c == 'E' || (c >= '0' && c <= '9') {
			sb.WriteRune(c)
			continue
		}
		t.r.UnreadRune()
		break
	}

	v, err := strconv.ParseFloat(sb.String(), 64)
	if err != nil {
		t.fail("bad number " + strconv.Quote(sb.String()))
		return
	}
	t.kind = TokenNumber
	t.number = v
}

func (t *Tokenizer) readName() {
	var sb strings.Builder
	for {
		c, _, err := t.r.ReadRune()
		if err != nil {
			break
		}
		if isNameStart(c) || (c >= '0' && c <= '9') {
			sb.WriteRune(c)
			continue
		}
		t.r.UnreadRune()
		break
	}
	t.kind = TokenName
	t.text = sb.String()
}

func isNameStart(c rune) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
