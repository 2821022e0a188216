package tinyjs

// literal parses a primary expression. Identifiers are returned as code
// references and resolved by the caller.
func (e *Engine) literal() Value {
	e.next()
	e.watermark()
	if e.maxDepth > 0 && e.depth > e.maxDepth {
		return e.mkerr(ErrStackOverflow, "stack overflow")
	}
	e.cur.consumed = true
	switch e.cur.tok {
	case tokErr:
		return e.parseError()
	case tokNumber:
		return e.cur.tval
	case tokString:
		return e.strLiteral()
	case tokLBrace:
		return e.objLiteral()
	case tokFunc:
		return e.funcLiteral()
	case tokNull:
		return Null()
	case tokUndef:
		return Undefined()
	case tokTrue:
		return True()
	case tokFalse:
		return False()
	case tokIdent:
		return mkcoderef(e.cur.toff, e.cur.tlen)
	}
	return e.mkerr(ErrParse, "bad expr")
}

// decodeString unescapes the quoted literal in into out and returns the
// decoded length. ok is false on an unknown escape sequence.
func decodeString(in, out []byte) (n int, ok bool) {
	for i := 1; i+1 < len(in); i++ {
		c := in[i]
		if c != '\\' {
			if out != nil {
				out[n] = c
			}
			n++
			continue
		}
		switch in[i+1] {
		case '\'', '"', '\\':
			c = in[i+1]
		case 'n':
			c = '\n'
		case 't':
			c = '\t'
		case 'r':
			c = '\r'
		case 'x':
			if i+3 >= len(in)-1 || !isXDigit(in[i+2]) || !isXDigit(in[i+3]) {
				return n, false
			}
			c = unhex(in[i+2])<<4 | unhex(in[i+3])
			i += 2
		default:
			return n, false
		}
		if out != nil {
			out[n] = c
		}
		n++
		i++
	}
	return n, true
}

// strLiteral decodes the current string token. In execute mode the bytes are
// decoded right above brk and committed as a string entity in place.
func (e *Engine) strLiteral() Value {
	in := e.code()[e.cur.toff : e.cur.toff+e.cur.tlen]
	if e.flags&flagNoExec != 0 {
		if _, ok := decodeString(in, nil); !ok {
			return e.mkerr(ErrParse, "bad str literal")
		}
		return 0
	}
	if uint64(e.mem.brk)+4+uint64(e.cur.tlen) > uint64(e.mem.size) {
		return e.mkerr(ErrOOM, "oom")
	}
	n, ok := decodeString(in, e.mem.buf[e.mem.brk+4:])
	if !ok {
		return e.mkerr(ErrParse, "bad str literal")
	}
	return e.mkstr(nil, uint32(n))
}

// objLiteral parses {key: value, ...}. Keys are identifiers or strings.
func (e *Engine) objLiteral() Value {
	exe := e.flags&flagNoExec == 0
	obj := Value(0)
	if exe {
		if obj = e.mkobj(0); obj.IsErr() {
			return obj
		}
	}
	for e.next() != tokRBrace {
		key := Value(0)
		switch e.cur.tok {
		case tokIdent:
			if exe {
				key = e.mkstr(e.code()[e.cur.toff:e.cur.toff+e.cur.tlen], e.cur.tlen)
			}
		case tokString:
			key = e.strLiteral()
		default:
			return e.parseError()
		}
		if key.IsErr() {
			return key
		}
		e.cur.consumed = true
		if !e.expect(tokColon) {
			return e.parseError()
		}
		slot := e.keep(obj)
		e.keep(key)
		val := e.expr()
		obj, key = e.roots[slot], e.roots[slot+1]
		e.release(slot)
		if val.IsErr() {
			return val
		}
		if exe {
			if p := e.setprop(obj, key, e.resolve(val)); p.IsErr() {
				return p
			}
		}
		if e.next() == tokRBrace {
			break
		}
		if !e.expect(tokComma) {
			return e.parseError()
		}
	}
	if !e.expect(tokRBrace) {
		return e.parseError()
	}
	return obj
}

// funcLiteral parses function(params){body}. The body is checked in dry-run
// mode and the text from '(' to '}' becomes the function value.
func (e *Engine) funcLiteral() Value {
	flags := e.flags
	if !e.expect(tokLParen) {
		return e.parseError()
	}
	pos := e.cur.pos - 1
	for comma := false; e.next() != tokEOF; comma = true {
		if !comma && e.next() == tokRParen {
			break
		}
		if !e.expect(tokIdent) {
			return e.parseError()
		}
		if e.next() == tokRParen {
			break
		}
		if !e.expect(tokComma) {
			return e.parseError()
		}
	}
	if !e.expect(tokRParen) || !e.expect(tokLBrace) {
		return e.parseError()
	}
	e.cur.consumed = false
	e.flags |= flagNoExec
	res := e.block(false)
	e.flags = flags
	if res.IsErr() {
		return res
	}
	if e.next() != tokRBrace {
		return e.parseError()
	}
	e.cur.consumed = true
	if flags&flagNoExec != 0 {
		return 0
	}
	str := e.mkstr(e.code()[pos:e.cur.pos], e.cur.pos-pos)
	if str.IsErr() {
		return str
	}
	return mkval(TypeFunction, uint64(str.off()))
}
