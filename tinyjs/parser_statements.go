package tinyjs

// stmt parses and executes one statement, including its terminator.
func (e *Engine) stmt() Value {
	e.maybeCollect()
	var res Value
	switch t := e.next(); t {
	case tokCase, tokCatch, tokClass, tokConst, tokDefault, tokDelete, tokDo,
		tokFinally, tokIn, tokInstanceof, tokNew, tokSwitch, tokThis, tokThrow,
		tokTry, tokVar, tokVoid, tokWith, tokWhile, tokYield:
		res = e.mkerr(ErrUnsupported, "'%s' not implemented", e.code()[e.cur.toff:e.cur.toff+e.cur.tlen])
	case tokContinue:
		res = e.continueStmt()
	case tokBreak:
		res = e.breakStmt()
	case tokLet:
		res = e.letStmt()
	case tokIf:
		res = e.ifStmt()
	case tokLBrace:
		res = e.block(e.flags&flagNoExec == 0)
	case tokFor:
		res = e.forStmt()
	case tokReturn:
		res = e.returnStmt()
	default:
		res = e.resolve(e.expr())
	}
	if res.IsErr() {
		return res
	}
	if t := e.next(); t != tokSemicolon && t != tokEOF && t != tokRBrace {
		return e.mkerr(ErrParse, "; expected")
	}
	e.cur.consumed = true
	return res
}

// block parses statements up to a closing brace, which it leaves for the
// caller.
func (e *Engine) block(scoped bool) Value {
	res := Undefined()
	if scoped {
		if s := e.mkscope(); s.IsErr() {
			return s
		}
	}
	e.cur.consumed = true
	for e.next() != tokEOF && e.next() != tokRBrace && !res.IsErr() {
		t := e.cur.tok
		res = e.stmt()
		if !res.IsErr() && t != tokLBrace && t != tokIf && e.cur.tok != tokSemicolon {
			res = e.mkerr(ErrParse, "; expected")
			break
		}
	}
	if scoped {
		e.delscope()
	}
	return res
}

func (e *Engine) blockOrStmt() Value {
	if e.next() == tokLBrace {
		return e.block(e.flags&flagNoExec == 0)
	}
	res := e.resolve(e.stmt())
	e.cur.consumed = false
	return res
}

func (e *Engine) letStmt() Value {
	exe := e.flags&flagNoExec == 0
	e.cur.consumed = true
	for {
		if !e.expect(tokIdent) {
			return e.parseError()
		}
		noff, nlen := e.cur.toff, e.cur.tlen
		v := Undefined()
		if e.next() == tokAssign {
			e.cur.consumed = true
			if v = e.expr(); v.IsErr() {
				return v
			}
		}
		if exe {
			name := e.code()[noff : noff+nlen]
			if e.lkp(e.scope, name) != 0 {
				return e.mkerr(ErrRedeclared, "'%s' already declared", name)
			}
			v = e.resolve(v)
			key := e.mkstr(e.code()[noff:noff+nlen], nlen)
			if key.IsErr() {
				return key
			}
			if p := e.setprop(e.scope, key, v); p.IsErr() {
				return p
			}
		}
		if t := e.next(); t == tokSemicolon || t == tokEOF {
			break
		}
		if !e.expect(tokComma) {
			return e.parseError()
		}
	}
	return Undefined()
}

// skipping reports whether a break, continue or return put the evaluator in
// dry-run mode. Such a mode must outlive the statement that set it.
func (e *Engine) skipping() bool {
	return e.flags&(flagBreak|flagContinue|flagReturn) != 0
}

func (e *Engine) ifStmt() Value {
	e.cur.consumed = true
	if !e.expect(tokLParen) {
		return e.parseError()
	}
	res := Undefined()
	cond := e.resolve(e.expr())
	if cond.IsErr() {
		return cond
	}
	if !e.expect(tokRParen) {
		return e.parseError()
	}
	taken, exe := e.truthy(cond), e.flags&flagNoExec == 0
	if !taken {
		e.flags |= flagNoExec
	}
	blk := e.blockOrStmt()
	if blk.IsErr() {
		return blk
	}
	if taken {
		res = blk
	}
	if exe && !taken {
		e.flags &^= flagNoExec
	}
	if e.lookahead() == tokElse {
		e.cur.consumed = true
		e.next()
		e.cur.consumed = true
		if taken {
			e.flags |= flagNoExec
		}
		blk = e.blockOrStmt()
		if blk.IsErr() {
			return blk
		}
		if !taken {
			res = blk
		}
		if taken && exe && !e.skipping() {
			e.flags &^= flagNoExec
		}
	}
	return res
}

func (e *Engine) forStmt() Value {
	flags := e.flags
	exe := flags&flagNoExec == 0
	if exe {
		if s := e.mkscope(); s.IsErr() {
			return s
		}
	}
	res, ended := e.forLoop(flags)
	if exe {
		e.delscope()
	}
	e.flags = flags | e.flags&flagReturn
	if ended {
		e.cur.tok = tokSemicolon
		e.cur.consumed = false
	}
	return res
}

// forLoop runs a for statement. The header and body are first parsed in
// dry-run mode to find their offsets, then re-parsed from those offsets for
// every iteration. ended reports that the loop finished without error. The
// cursor is then placed after the body, or at the end of input after a
// return.
func (e *Engine) forLoop(flags flag) (Value, bool) {
	if !e.expect(tokFor) || !e.expect(tokLParen) {
		return e.parseError(), false
	}
	switch e.next() {
	case tokSemicolon:
	case tokLet:
		if v := e.letStmt(); v.IsErr() {
			return v, false
		}
	default:
		if v := e.expr(); v.IsErr() {
			return v, false
		}
	}
	if !e.expect(tokSemicolon) {
		return e.parseError(), false
	}
	e.flags |= flagNoExec
	pos1 := e.cur.pos
	if e.next() != tokSemicolon {
		if v := e.expr(); v.IsErr() {
			return v, false
		}
	}
	if !e.expect(tokSemicolon) {
		return e.parseError(), false
	}
	pos2 := e.cur.pos
	if e.next() != tokRParen {
		if v := e.expr(); v.IsErr() {
			return v, false
		}
	}
	if !e.expect(tokRParen) {
		return e.parseError(), false
	}
	pos3 := e.cur.pos
	if v := e.blockOrStmt(); v.IsErr() {
		return v, false
	}
	pos4 := e.cur.pos
	for flags&flagNoExec == 0 {
		e.flags, e.cur.pos, e.cur.consumed = flags, pos1, true
		if e.next() != tokSemicolon {
			v := e.resolve(e.expr())
			if v.IsErr() {
				return v, false
			}
			if !e.truthy(v) {
				break
			}
		}
		e.cur.pos, e.cur.consumed = pos3, true
		e.flags |= flagLoop
		if v := e.blockOrStmt(); v.IsErr() {
			return v, false
		}
		if e.flags&(flagBreak|flagReturn) != 0 {
			break
		}
		e.flags, e.cur.pos, e.cur.consumed = flags, pos2, true
		if e.next() != tokRParen {
			if v := e.expr(); v.IsErr() {
				return v, false
			}
		}
	}
	if e.flags&flagReturn == 0 {
		e.cur.pos = pos4
	}
	return Undefined(), true
}

func (e *Engine) breakStmt() Value {
	if e.flags&flagNoExec == 0 {
		if e.flags&flagLoop == 0 {
			return e.mkerr(ErrNotInLoop, "not in loop")
		}
		e.flags |= flagBreak | flagNoExec
	}
	e.cur.consumed = true
	return Undefined()
}

func (e *Engine) continueStmt() Value {
	if e.flags&flagNoExec == 0 {
		if e.flags&flagLoop == 0 {
			return e.mkerr(ErrNotInLoop, "not in loop")
		}
		e.flags |= flagContinue | flagNoExec
	}
	e.cur.consumed = true
	return Undefined()
}

func (e *Engine) returnStmt() Value {
	exe := e.flags&flagNoExec == 0
	e.cur.consumed = true
	if exe && e.flags&flagCall == 0 {
		return e.mkerr(ErrNotInFunc, "not in func")
	}
	res := Undefined()
	if t := e.next(); t != tokSemicolon && t != tokEOF && t != tokRBrace {
		res = e.resolve(e.expr())
		if res.IsErr() {
			return res
		}
	}
	if exe {
		e.ret = res
		e.cur.pos = e.cur.clen
		e.flags |= flagReturn | flagNoExec
	}
	return res
}
