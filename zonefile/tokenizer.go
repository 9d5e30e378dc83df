package zonefile

import (
	"bufio"
	"io"
	"strings"
)

// delimiters are the characters that terminate an identifier and are
// never themselves part of one.
const delimiters = " \t\n;()\""

func isDelimiter(r rune) bool {
	return strings.ContainsRune(delimiters, r)
}

// Tokenizer lexes master-file text into a stream of Tokens. It tracks
// paren-nesting so that newlines inside "( ... )" are treated as
// ordinary whitespace, letting a single RR span multiple lines.
type Tokenizer struct {
	r        *bufio.Reader
	filename string
	line     int

	ungotChar    rune
	hasUngotChar bool

	ungotToken    Token
	hasUngotToken bool

	multiline int
}

// NewTokenizer creates a Tokenizer reading from r. filename is used only
// for error locations.
func NewTokenizer(r io.Reader, filename string) *Tokenizer {
	return &Tokenizer{r: bufio.NewReader(r), filename: filename, line: 1}
}

// Where returns the tokenizer's current location.
func (t *Tokenizer) Where() (string, int) { return t.filename, t.line }

func (t *Tokenizer) getChar() (rune, error) {
	if t.hasUngotChar {
		t.hasUngotChar = false
		c := t.ungotChar
		if c == '\n' {
			t.line++
		}
		return c, nil
	}
	c, _, err := t.r.ReadRune()
	if err != nil {
		return 0, err
	}
	if c == '\n' {
		t.line++
	}
	return c, nil
}

// ungetChar ungets a single character. The buffer holds only one; a
// second unget before the first is consumed is a programming error.
func (t *Tokenizer) ungetChar(c rune) error {
	if t.hasUngotChar {
		return ErrUngetBufferFull
	}
	if c == '\n' {
		t.line--
	}
	t.ungotChar = c
	t.hasUngotChar = true
	return nil
}

// Unget pushes back a single token for the next Get call to return.
func (t *Tokenizer) Unget(tok Token) error {
	if t.hasUngotToken {
		return ErrUngetBufferFull
	}
	t.ungotToken = tok
	t.hasUngotToken = true
	return nil
}

// SkipWhitespace consumes whitespace (including newlines when inside a
// paren group) and ungets the first non-whitespace character, returning
// the number of characters skipped.
func (t *Tokenizer) SkipWhitespace() (int, error) {
	n := 0
	for {
		c, err := t.getChar()
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		if c == ' ' || c == '\t' || (c == '\n' && t.multiline > 0) {
			n++
			continue
		}
		return n, t.ungetChar(c)
	}
}

// Get returns the next token. wantLeading requests a Whitespace token
// instead of silently skipping leading whitespace; wantComment requests
// a Comment token instead of silently discarding comments.
func (t *Tokenizer) Get(wantLeading, wantComment bool) (Token, error) {
	if t.hasUngotToken {
		t.hasUngotToken = false
		return t.ungotToken, nil
	}

	skipped, err := t.SkipWhitespace()
	if err != nil {
		return Token{}, err
	}
	if skipped > 0 && wantLeading {
		return Token{Kind: Whitespace, Value: " "}, nil
	}

	c, err := t.getChar()
	if err == io.EOF {
		return Token{Kind: EOF}, nil
	}
	if err != nil {
		return Token{}, err
	}

	switch {
	case c == '(':
		t.multiline++
		return t.Get(wantLeading, wantComment)
	case c == ')':
		if t.multiline == 0 {
			return Token{}, newSyntaxError(t.filename, t.line, "unbalanced closing parenthesis")
		}
		t.multiline--
		return t.Get(wantLeading, wantComment)
	case c == '\n':
		return Token{Kind: EOL, Value: "\n"}, nil
	case c == ';':
		var sb strings.Builder
		for {
			cc, err := t.getChar()
			if err == io.EOF || cc == '\n' {
				if cc == '\n' {
					t.ungetChar(cc)
				}
				break
			}
			if err != nil {
				return Token{}, err
			}
			sb.WriteRune(cc)
		}
		if wantComment {
			return Token{Kind: Comment, Value: sb.String()}, nil
		}
		return t.Get(wantLeading, wantComment)
	case c == '"':
		return t.readQuoted()
	default:
		return t.readIdentifier(c)
	}
}

func (t *Tokenizer) readQuoted() (Token, error) {
	var sb strings.Builder
	hasEscape := false
	for {
		c, err := t.getChar()
		if err == io.EOF {
			return Token{}, newSyntaxError(t.filename, t.line, "unterminated quoted string")
		}
		if err != nil {
			return Token{}, err
		}
		switch c {
		case '"':
			return Token{Kind: QuotedString, Value: sb.String(), HasEscape: hasEscape}, nil
		case '\\':
			hasEscape = true
			esc, err := t.getChar()
			if err != nil {
				return Token{}, newSyntaxError(t.filename, t.line, "unterminated escape in quoted string")
			}
			sb.WriteRune(esc)
		case '\n':
			return Token{}, newSyntaxError(t.filename, t.line, "newline in quoted string")
		default:
			sb.WriteRune(c)
		}
	}
}

func (t *Tokenizer) readIdentifier(first rune) (Token, error) {
	var sb strings.Builder
	hasEscape := false

	writeChar := func(c rune) error {
		if c == '\\' {
			hasEscape = true
			esc, err := t.getChar()
			if err != nil {
				return newSyntaxError(t.filename, t.line, "unterminated escape")
			}
			sb.WriteRune(esc)
			return nil
		}
		sb.WriteRune(c)
		return nil
	}
	if err := writeChar(first); err != nil {
		return Token{}, err
	}

	for {
		c, err := t.getChar()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Token{}, err
		}
		if isDelimiter(c) {
			if err := t.ungetChar(c); err != nil {
				return Token{}, err
			}
			break
		}
		if err := writeChar(c); err != nil {
			return Token{}, err
		}
	}
	return Token{Kind: Identifier, Value: sb.String(), HasEscape: hasEscape}, nil
}
