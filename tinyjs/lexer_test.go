package tinyjs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// scan tokenizes src up to and including EOF or the first bad token.
func scan(t *testing.T, src string) []token {
	e := newEngine(t, 64)
	e.cur = cursor{src: []byte(src), arenaOff: -1, clen: uint32(len(src)), consumed: true}
	var toks []token
	for {
		tok := e.next()
		e.cur.consumed = true
		toks = append(toks, tok)
		if tok == tokEOF || tok == tokErr {
			return toks
		}
	}
}

func TestLexerOperators(t *testing.T) {
	cases := []struct {
		src  string
		want []token
	}{
		{"a >>>= 1", []token{tokIdent, tokZShrAssign, tokNumber, tokEOF}},
		{">>> >> >= > >>= <<= << <= <", []token{tokZShr, tokShr, tokGE, tokGT,
			tokShrAssign, tokShlAssign, tokShl, tokLE, tokLT, tokEOF}},
		{"=== !== = !", []token{tokEq, tokNe, tokAssign, tokNot, tokEOF}},
		{"++ -- += -= ** *= /= %=", []token{tokPostInc, tokPostDec, tokPlusAssign,
			tokMinusAssign, tokExp, tokMulAssign, tokDivAssign, tokRemAssign, tokEOF}},
		{"&& || &= |= ^= & | ^ ~", []token{tokLAnd, tokLOr, tokAndAssign, tokOrAssign,
			tokXorAssign, tokAnd, tokOr, tokXor, tokTilde, tokEOF}},
		{"(){};,.?:", []token{tokLParen, tokRParen, tokLBrace, tokRBrace, tokSemicolon,
			tokComma, tokDot, tokQ, tokColon, tokEOF}},
		{"1 // comment\n + /* x */ 2", []token{tokNumber, tokPlus, tokNumber, tokEOF}},
		{"'abc' \"d\\\"e\" 'f\\x41'", []token{tokString, tokString, tokString, tokEOF}},
		{"'abc", []token{tokErr}},
		{"#", []token{tokErr}},
		{"", []token{tokEOF}},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, scan(t, c.src), "scan %q", c.src)
	}
}

func TestLexerKeywords(t *testing.T) {
	got := scan(t, "let if else for function return typeof null undefined true false foo $x _1 while")
	assert.Equal(t, []token{tokLet, tokIf, tokElse, tokFor, tokFunc, tokReturn, tokTypeof,
		tokNull, tokUndef, tokTrue, tokFalse, tokIdent, tokIdent, tokIdent, tokWhile, tokEOF}, got)
}

func TestParseNumber(t *testing.T) {
	cases := []struct {
		in  string
		v   float64
		len uint32
	}{
		{"0x1F", 31, 4},
		{"0xz", 0, 1},
		{"12", 12, 2},
		{"2.5x", 2.5, 3},
		{"1e3", 1000, 3},
		{"1e", 1, 1},
		{"1.5e-2;", 0.015, 6},
		{"7.", 7, 2},
	}
	for _, c := range cases {
		v, n := parseNumber([]byte(c.in))
		assert.Equal(t, c.v, v, c.in)
		assert.Equal(t, c.len, n, c.in)
	}
}

func TestSkipToNext(t *testing.T) {
	assert.Equal(t, uint32(10), skipToNext([]byte("  /* a */ x"), 0))
	assert.Equal(t, uint32(5), skipToNext([]byte("// ab"), 0))
	assert.Equal(t, uint32(4), skipToNext([]byte("/**/"), 0))
	assert.Equal(t, uint32(6), skipToNext([]byte("/* abc"), 0))
	assert.Equal(t, uint32(0), skipToNext([]byte("/ 2"), 0))
}

func TestLookahead(t *testing.T) {
	e := newEngine(t, 64)
	src := "if else"
	e.cur = cursor{src: []byte(src), arenaOff: -1, clen: uint32(len(src)), consumed: true}
	assert.Equal(t, tokIf, e.next())
	assert.Equal(t, tokElse, e.lookahead())
	assert.Equal(t, tokIf, e.next())
	e.cur.consumed = true
	assert.Equal(t, tokElse, e.next())
}

func TestDecodeString(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{`'abc'`, "abc", true},
		{`''`, "", true},
		{`'a\nb'`, "a\nb", true},
		{`'\t\r'`, "\t\r", true},
		{`"\"q\""`, `"q"`, true},
		{`'it\'s'`, "it's", true},
		{`'\\'`, `\`, true},
		{`'\x41\x62'`, "Ab", true},
		{`'\x4'`, "", false},
		{`'\xZZ'`, "", false},
		{`'\q'`, "", false},
	}
	for _, c := range cases {
		out := make([]byte, len(c.in))
		n, ok := decodeString([]byte(c.in), out)
		assert.Equal(t, c.ok, ok, c.in)
		if c.ok {
			assert.Equal(t, c.want, string(out[:n]), c.in)
			m, _ := decodeString([]byte(c.in), nil)
			assert.Equal(t, n, m)
		}
	}
}
