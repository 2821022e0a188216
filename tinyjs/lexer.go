package tinyjs

import "strconv"

type token uint8

const (
	tokErr token = iota
	tokEOF
	tokIdent
	tokNumber
	tokString
	tokSemicolon
	tokLParen
	tokRParen
	tokLBrace
	tokRBrace
)

// Keywords.
const (
	tokBreak token = 50 + iota
	tokCase
	tokCatch
	tokClass
	tokConst
	tokContinue
	tokDefault
	tokDelete
	tokDo
	tokElse
	tokFinally
	tokFor
	tokFunc
	tokIf
	tokIn
	tokInstanceof
	tokLet
	tokNew
	tokReturn
	tokSwitch
	tokThis
	tokThrow
	tokTry
	tokVar
	tokVoid
	tokWhile
	tokWith
	tokYield
	tokUndef
	tokNull
	tokTrue
	tokFalse
)

// Operators. The order of the unary and assignment groups matters, see
// isUnary and isAssign.
const (
	tokDot token = 100 + iota
	tokCall
	tokPostInc
	tokPostDec
	tokNot
	tokTilde
	tokTypeof
	tokUPlus
	tokUMinus
	tokExp
	tokMul
	tokDiv
	tokRem
	tokPlus
	tokMinus
	tokShl
	tokShr
	tokZShr
	tokLT
	tokLE
	tokGT
	tokGE
	tokEq
	tokNe
	tokAnd
	tokXor
	tokOr
	tokLAnd
	tokLOr
	tokColon
	tokQ
	tokAssign
	tokPlusAssign
	tokMinusAssign
	tokMulAssign
	tokDivAssign
	tokRemAssign
	tokShlAssign
	tokShrAssign
	tokZShrAssign
	tokAndAssign
	tokXorAssign
	tokOrAssign
	tokComma
)

func isUnary(t token) bool  { return t >= tokPostInc && t <= tokUMinus }
func isAssign(t token) bool { return t >= tokAssign && t <= tokOrAssign }

var keywords = map[string]token{
	"break": tokBreak, "case": tokCase, "catch": tokCatch, "class": tokClass,
	"const": tokConst, "continue": tokContinue, "default": tokDefault,
	"do": tokDo, "else": tokElse, "finally": tokFinally, "for": tokFor,
	"function": tokFunc, "if": tokIf, "in": tokIn, "instanceof": tokInstanceof,
	"let": tokLet, "new": tokNew, "return": tokReturn, "switch": tokSwitch,
	"this": tokThis, "throw": tokThrow, "try": tokTry, "typeof": tokTypeof,
	"var": tokVar, "void": tokVoid, "while": tokWhile, "with": tokWith,
	"yield": tokYield, "undefined": tokUndef, "null": tokNull,
	"true": tokTrue, "false": tokFalse,
}

// cursor is the tokenizer state over one piece of source text. The text is
// either host memory (src) or a string entity in the arena (arenaOff >= 0);
// arena text is addressed by offset so that the collector can move it.
type cursor struct {
	src      []byte
	arenaOff int
	clen     uint32 // text length
	pos      uint32 // scan position
	toff     uint32 // offset of the current token
	tlen     uint32 // length of the current token
	tok      token
	consumed bool // the current token was used, next() scans a new one
	tval     Value
}

// code returns the text the cursor scans.
func (e *Engine) code() []byte {
	if e.cur.arenaOff >= 0 {
		off := uint32(e.cur.arenaOff)
		return e.mem.buf[off : off+e.cur.clen]
	}
	return e.cur.src[:e.cur.clen]
}

// sub returns a cursor over the n bytes at off of the current text.
func (e *Engine) sub(off, n uint32) cursor {
	c := cursor{arenaOff: -1, clen: n, consumed: true}
	if e.cur.arenaOff >= 0 {
		c.arenaOff = e.cur.arenaOff + int(off)
	} else {
		c.src = e.cur.src[off : off+n]
	}
	return c
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\r' || c == '\n' || c == '\t' || c == '\f' || c == '\v'
}
func isDigit(c byte) bool      { return c >= '0' && c <= '9' }
func isXDigit(c byte) bool     { return isDigit(c) || (c|0x20 >= 'a' && c|0x20 <= 'f') }
func isIdentBegin(c byte) bool { return c == '_' || c == '$' || (c|0x20 >= 'a' && c|0x20 <= 'z') }
func isIdentNext(c byte) bool  { return isIdentBegin(c) || isDigit(c) }

func unhex(c byte) byte {
	switch {
	case isDigit(c):
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	}
	return 0
}

// skipToNext skips white space and comments starting at n.
func skipToNext(code []byte, n uint32) uint32 {
	l := uint32(len(code))
	for n < l {
		switch {
		case isSpace(code[n]):
			n++
		case n+1 < l && code[n] == '/' && code[n+1] == '/':
			for n += 2; n < l && code[n] != '\n'; {
				n++
			}
		case n+3 < l && code[n] == '/' && code[n+1] == '*':
			for n += 4; n < l && (code[n-2] != '*' || code[n-1] != '/'); {
				n++
			}
		default:
			return n
		}
	}
	return n
}

// parseIdent scans an identifier or keyword at the start of buf.
func parseIdent(buf []byte) (token, uint32) {
	if len(buf) == 0 || !isIdentBegin(buf[0]) {
		return tokErr, 0
	}
	n := uint32(1)
	for n < uint32(len(buf)) && isIdentNext(buf[n]) {
		n++
	}
	if t, ok := keywords[string(buf[:n])]; ok {
		return t, n
	}
	return tokIdent, n
}

// parseNumber scans a decimal or 0x-prefixed hexadecimal literal.
func parseNumber(buf []byte) (float64, uint32) {
	if len(buf) > 2 && buf[0] == '0' && buf[1]|0x20 == 'x' && isXDigit(buf[2]) {
		n, v := uint32(2), 0.0
		for n < uint32(len(buf)) && isXDigit(buf[n]) {
			v = v*16 + float64(unhex(buf[n]))
			n++
		}
		return v, n
	}
	n := uint32(0)
	for n < uint32(len(buf)) && isDigit(buf[n]) {
		n++
	}
	if n < uint32(len(buf)) && buf[n] == '.' {
		n++
		for n < uint32(len(buf)) && isDigit(buf[n]) {
			n++
		}
	}
	if n < uint32(len(buf)) && buf[n]|0x20 == 'e' {
		m := n + 1
		if m < uint32(len(buf)) && (buf[m] == '+' || buf[m] == '-') {
			m++
		}
		if m < uint32(len(buf)) && isDigit(buf[m]) {
			for m < uint32(len(buf)) && isDigit(buf[m]) {
				m++
			}
			n = m
		}
	}
	// Range errors still yield ±Inf or 0.
	v, _ := strconv.ParseFloat(string(buf[:n]), 64)
	return v, n
}

// next returns the current token, scanning a new one if the current one was
// consumed.
func (e *Engine) next() token {
	c := &e.cur
	if !c.consumed {
		return c.tok
	}
	code := e.code()
	c.consumed = false
	c.tok = tokErr
	c.pos = skipToNext(code, c.pos)
	c.toff = c.pos
	c.tlen = 0
	if c.toff >= c.clen {
		c.tok = tokEOF
		return c.tok
	}
	buf := code[c.toff:]
	look := func(i int, ch byte) bool { return i < len(buf) && buf[i] == ch }
	set := func(t token, n uint32) { c.tok, c.tlen = t, n }
	switch buf[0] {
	case '?':
		set(tokQ, 1)
	case ':':
		set(tokColon, 1)
	case '(':
		set(tokLParen, 1)
	case ')':
		set(tokRParen, 1)
	case '{':
		set(tokLBrace, 1)
	case '}':
		set(tokRBrace, 1)
	case ';':
		set(tokSemicolon, 1)
	case ',':
		set(tokComma, 1)
	case '.':
		set(tokDot, 1)
	case '~':
		set(tokTilde, 1)
	case '!':
		if look(1, '=') && look(2, '=') {
			set(tokNe, 3)
		} else {
			set(tokNot, 1)
		}
	case '-':
		switch {
		case look(1, '-'):
			set(tokPostDec, 2)
		case look(1, '='):
			set(tokMinusAssign, 2)
		default:
			set(tokMinus, 1)
		}
	case '+':
		switch {
		case look(1, '+'):
			set(tokPostInc, 2)
		case look(1, '='):
			set(tokPlusAssign, 2)
		default:
			set(tokPlus, 1)
		}
	case '*':
		switch {
		case look(1, '*'):
			set(tokExp, 2)
		case look(1, '='):
			set(tokMulAssign, 2)
		default:
			set(tokMul, 1)
		}
	case '/':
		if look(1, '=') {
			set(tokDivAssign, 2)
		} else {
			set(tokDiv, 1)
		}
	case '%':
		if look(1, '=') {
			set(tokRemAssign, 2)
		} else {
			set(tokRem, 1)
		}
	case '&':
		switch {
		case look(1, '&'):
			set(tokLAnd, 2)
		case look(1, '='):
			set(tokAndAssign, 2)
		default:
			set(tokAnd, 1)
		}
	case '|':
		switch {
		case look(1, '|'):
			set(tokLOr, 2)
		case look(1, '='):
			set(tokOrAssign, 2)
		default:
			set(tokOr, 1)
		}
	case '=':
		if look(1, '=') && look(2, '=') {
			set(tokEq, 3)
		} else {
			set(tokAssign, 1)
		}
	case '<':
		switch {
		case look(1, '<') && look(2, '='):
			set(tokShlAssign, 3)
		case look(1, '<'):
			set(tokShl, 2)
		case look(1, '='):
			set(tokLE, 2)
		default:
			set(tokLT, 1)
		}
	case '>':
		switch {
		case look(1, '>') && look(2, '>') && look(3, '='):
			set(tokZShrAssign, 4)
		case look(1, '>') && look(2, '>'):
			set(tokZShr, 3)
		case look(1, '>') && look(2, '='):
			set(tokShrAssign, 3)
		case look(1, '>'):
			set(tokShr, 2)
		case look(1, '='):
			set(tokGE, 2)
		default:
			set(tokGT, 1)
		}
	case '^':
		if look(1, '=') {
			set(tokXorAssign, 2)
		} else {
			set(tokXor, 1)
		}
	case '"', '\'':
		n := uint32(1)
		for n < uint32(len(buf)) && buf[n] != buf[0] {
			inc := uint32(1)
			if buf[n] == '\\' {
				if n+2 > uint32(len(buf)) {
					break
				}
				inc = 2
				if buf[n+1] == 'x' {
					if n+4 > uint32(len(buf)) {
						break
					}
					inc = 4
				}
			}
			n += inc
		}
		if n < uint32(len(buf)) && buf[n] == buf[0] {
			set(tokString, n+1)
		}
	case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		v, n := parseNumber(buf)
		c.tval = Number(v)
		set(tokNumber, n)
	default:
		c.tok, c.tlen = parseIdent(buf)
	}
	c.pos = c.toff + c.tlen
	return c.tok
}

// lookahead peeks at the token after the current one without moving.
func (e *Engine) lookahead() token {
	saved := e.cur
	e.cur.consumed = true
	t := e.next()
	e.cur = saved
	e.cur.consumed = false
	return t
}
