package bootstrap

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dekarrin/gudgeon/grammarerr"
	"github.com/dekarrin/gudgeon/location"
)

// lexer turns grammar source text into a flat token stream. It has no
// notion of grammar structure; that is the parser's job. Whitespace and
// both comment forms (`// ...` to end of line, `/* ... */` possibly
// spanning lines and nesting) are layout and never produce a token.
type lexer struct {
	src      string
	filePath string
	pos      int
}

func newLexer(src, filePath string) *lexer {
	return &lexer{src: src, filePath: filePath}
}

func (l *lexer) loc(pos int) location.Location {
	return location.New(l.filePath, l.src, pos)
}

func (l *lexer) errorf(pos int, msg string, args ...interface{}) error {
	return grammarerr.At(l.loc(pos), msg, args...)
}

func (l *lexer) peekByte() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *lexer) byteAt(off int) byte {
	if l.pos+off >= len(l.src) {
		return 0
	}
	return l.src[l.pos+off]
}

// skipLayout advances past whitespace and comments.
func (l *lexer) skipLayout() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			l.pos++
		case c == '/' && l.byteAt(1) == '/':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
		case c == '/' && l.byteAt(1) == '*':
			l.pos += 2
			depth := 1
			for l.pos < len(l.src) && depth > 0 {
				switch {
				case l.src[l.pos] == '/' && l.byteAt(1) == '*':
					depth++
					l.pos += 2
				case l.src[l.pos] == '*' && l.byteAt(1) == '/':
					depth--
					l.pos += 2
				default:
					l.pos++
				}
			}
		default:
			return
		}
	}
}

// next returns the next token in the stream, or a tkEOF token once the
// source is exhausted.
func (l *lexer) next() (token, error) {
	l.skipLayout()
	start := l.pos
	if l.pos >= len(l.src) {
		return token{kind: tkEOF, pos: start}, nil
	}

	c := l.src[l.pos]

	switch c {
	case ':':
		l.pos++
		return token{kind: tkColon, pos: start}, nil
	case ';':
		l.pos++
		return token{kind: tkSemi, pos: start}, nil
	case '|':
		l.pos++
		return token{kind: tkPipe, pos: start}, nil
	case '{':
		l.pos++
		return token{kind: tkLBrace, pos: start}, nil
	case '}':
		l.pos++
		return token{kind: tkRBrace, pos: start}, nil
	case '[':
		l.pos++
		return token{kind: tkLBracket, pos: start}, nil
	case ']':
		l.pos++
		return token{kind: tkRBracket, pos: start}, nil
	case '*':
		l.pos++
		return token{kind: tkStar, pos: start}, nil
	case '+':
		l.pos++
		return token{kind: tkPlus, pos: start}, nil
	case '@':
		l.pos++
		return token{kind: tkAt, pos: start}, nil
	case '.':
		l.pos++
		return token{kind: tkDot, pos: start}, nil
	case ',':
		l.pos++
		return token{kind: tkComma, pos: start}, nil
	case '?':
		l.pos++
		if l.peekByte() == '=' {
			l.pos++
			return token{kind: tkQEquals, pos: start}, nil
		}
		return token{kind: tkQuestion, pos: start}, nil
	case '=':
		l.pos++
		return token{kind: tkEquals, pos: start}, nil
	case '"':
		return l.lexString(start)
	case '/':
		return l.lexRegex(start)
	}

	if c >= '0' && c <= '9' {
		return l.lexInt(start)
	}
	if isIdentStart(rune(c)) || c >= utf8.RuneSelf {
		return l.lexIdent(start)
	}

	return token{}, l.errorf(start, "unexpected character %q", string(c))
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentCont(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func (l *lexer) lexIdent(start int) (token, error) {
	for l.pos < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])
		if !isIdentCont(r) {
			break
		}
		l.pos += size
	}
	return token{kind: tkIdent, text: l.src[start:l.pos], pos: start}, nil
}

func (l *lexer) lexInt(start int) (token, error) {
	for l.pos < len(l.src) && l.src[l.pos] >= '0' && l.src[l.pos] <= '9' {
		l.pos++
	}
	return token{kind: tkInt, text: l.src[start:l.pos], pos: start}, nil
}

// lexString consumes a double-quoted literal, honoring backslash escapes
// for `"` and `\` themselves.
func (l *lexer) lexString(start int) (token, error) {
	l.pos++ // opening quote
	var b strings.Builder
	for {
		if l.pos >= len(l.src) {
			return token{}, l.errorf(start, "unterminated string literal")
		}
		c := l.src[l.pos]
		if c == '"' {
			l.pos++
			break
		}
		if c == '\\' && l.byteAt(1) != 0 {
			b.WriteByte(l.byteAt(1))
			l.pos += 2
			continue
		}
		if c == '\n' {
			return token{}, l.errorf(start, "unterminated string literal")
		}
		b.WriteByte(c)
		l.pos++
	}
	return token{kind: tkString, text: b.String(), pos: start}, nil
}

// lexRegex consumes a `/pattern/` terminal body, with pattern allowed to
// escape its own delimiter as `\/`. An immediately trailing `i` sets the
// token's ignoreCase flag.
func (l *lexer) lexRegex(start int) (token, error) {
	l.pos++ // opening slash
	var b strings.Builder
	for {
		if l.pos >= len(l.src) {
			return token{}, l.errorf(start, "unterminated regex literal")
		}
		c := l.src[l.pos]
		if c == '/' {
			l.pos++
			break
		}
		if c == '\\' && l.byteAt(1) == '/' {
			b.WriteByte('/')
			l.pos += 2
			continue
		}
		if c == '\n' {
			return token{}, l.errorf(start, "unterminated regex literal")
		}
		b.WriteByte(c)
		l.pos++
	}
	tok := token{kind: tkRegex, text: b.String(), pos: start}
	if l.peekByte() == 'i' {
		tok.ignoreCase = true
		l.pos++
	}
	return tok, nil
}
