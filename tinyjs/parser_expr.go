package tinyjs

// Each grammar level parses its part of the input and, unless the engine is
// in dry-run mode, evaluates it on the way.

// expr is the entry point of the expression grammar.
func (e *Engine) expr() Value {
	e.depth++
	v := e.assignment()
	e.depth--
	return v
}

// expect consumes the current token if it is t.
func (e *Engine) expect(t token) bool {
	if e.next() != t {
		return false
	}
	e.cur.consumed = true
	return true
}

func (e *Engine) parseError() Value {
	return e.mkerr(ErrParse, "parse error")
}

// binop parses a left-associative chain of operand separated by any of ops.
func (e *Engine) binop(operand func() Value, ops ...token) Value {
	res := operand()
	for !res.IsErr() && e.nextIn(ops) {
		op := e.cur.tok
		e.cur.consumed = true
		slot := e.keep(res)
		rhs := operand()
		res = e.release(slot)
		if rhs.IsErr() {
			return rhs
		}
		res = e.doOp(op, res, rhs)
	}
	return res
}

func (e *Engine) nextIn(ops []token) bool {
	t := e.next()
	for _, op := range ops {
		if t == op {
			return true
		}
	}
	return false
}

// assignment is right-associative.
func (e *Engine) assignment() Value {
	res := e.ternary()
	for !res.IsErr() && isAssign(e.next()) {
		op := e.cur.tok
		e.cur.consumed = true
		slot := e.keep(res)
		rhs := e.assignment()
		res = e.release(slot)
		if rhs.IsErr() {
			return rhs
		}
		res = e.doOp(op, res, rhs)
	}
	return res
}

func (e *Engine) ternary() Value {
	res := e.logicalOr()
	if res.IsErr() || e.next() != tokQ {
		return res
	}
	flags := e.flags
	e.cur.consumed = true
	if e.truthy(e.resolve(res)) {
		if res = e.ternary(); res.IsErr() {
			e.flags = flags
			return res
		}
		e.flags |= flagNoExec
		if !e.expect(tokColon) {
			e.flags = flags
			return e.parseError()
		}
		v := e.ternary()
		e.flags = flags
		if v.IsErr() {
			return v
		}
		return res
	}
	e.flags |= flagNoExec
	if v := e.ternary(); v.IsErr() {
		e.flags = flags
		return v
	}
	if !e.expect(tokColon) {
		e.flags = flags
		return e.parseError()
	}
	e.flags = flags
	return e.ternary()
}

func (e *Engine) logicalOr() Value {
	return e.shortCircuit(tokLOr, e.logicalAnd, true)
}

func (e *Engine) logicalAnd() Value {
	return e.shortCircuit(tokLAnd, e.bitOr, false)
}

// shortCircuit parses operand (op operand)*. Once the left side decides the
// result (truthy for ||, falsy for &&) the rest of the chain is parsed in
// dry-run mode.
func (e *Engine) shortCircuit(op token, operand func() Value, stopOn bool) Value {
	res := operand()
	if res.IsErr() {
		return res
	}
	flags := e.flags
	self := e.logicalAnd
	if op == tokLOr {
		self = e.logicalOr
	}
	for e.next() == op {
		e.cur.consumed = true
		res = e.resolve(res)
		if e.truthy(res) == stopOn {
			e.flags |= flagNoExec
		}
		if e.flags&flagNoExec != 0 {
			if v := self(); v.IsErr() {
				e.flags = flags
				return v
			}
		} else if res = self(); res.IsErr() {
			break
		}
	}
	e.flags = flags
	return res
}

func (e *Engine) bitOr() Value  { return e.binop(e.bitXor, tokOr) }
func (e *Engine) bitXor() Value { return e.binop(e.bitAnd, tokXor) }
func (e *Engine) bitAnd() Value { return e.binop(e.equality, tokAnd) }

func (e *Engine) equality() Value {
	return e.binop(e.comparison, tokEq, tokNe)
}

func (e *Engine) comparison() Value {
	return e.binop(e.shifts, tokLT, tokLE, tokGT, tokGE)
}

func (e *Engine) shifts() Value {
	return e.binop(e.plusMinus, tokShl, tokShr, tokZShr)
}

func (e *Engine) plusMinus() Value {
	return e.binop(e.mulDivRem, tokPlus, tokMinus)
}

func (e *Engine) mulDivRem() Value {
	return e.binop(e.unary, tokMul, tokDiv, tokRem)
}

func (e *Engine) unary() Value {
	switch t := e.next(); t {
	case tokNot, tokTilde, tokTypeof, tokMinus, tokPlus:
		if t == tokMinus {
			t = tokUMinus
		} else if t == tokPlus {
			t = tokUPlus
		}
		e.cur.consumed = true
		return e.doOp(t, Undefined(), e.unary())
	}
	return e.exponent()
}

// exponent is right-associative and binds tighter than a unary operator on its
// left, so -2 ** 2 is -4 and 2 ** -1 is 0.5.
func (e *Engine) exponent() Value {
	res := e.postfix()
	if res.IsErr() || e.next() != tokExp {
		return res
	}
	e.cur.consumed = true
	slot := e.keep(res)
	rhs := e.unary()
	return e.doOp(tokExp, e.release(slot), rhs)
}

func (e *Engine) postfix() Value {
	res := e.callDot()
	if res.IsErr() {
		return res
	}
	if t := e.next(); t == tokPostInc || t == tokPostDec {
		e.cur.consumed = true
		res = e.doOp(t, res, 0)
	}
	return res
}

// callDot parses member access and call chains. An identifier on the left is
// resolved here; the right side of '.' stays a code reference.
func (e *Engine) callDot() Value {
	res := e.group()
	if res.IsErr() {
		return res
	}
	if res.Type() == TypeCodeRef {
		res = e.lookup(e.coderef(res))
	}
	for {
		switch e.next() {
		case tokDot:
			e.cur.consumed = true
			slot := e.keep(res)
			rhs := e.group()
			res = e.doOp(tokDot, e.release(slot), rhs)
		case tokLParen:
			params := e.callParams()
			if params.IsErr() {
				return params
			}
			res = e.doOp(tokCall, res, params)
		default:
			return res
		}
	}
}

// coderef returns the source text of a code reference.
func (e *Engine) coderef(v Value) []byte {
	off := v.coderefOff()
	return e.code()[off : off+v.coderefLen()]
}

func (e *Engine) group() Value {
	if e.next() != tokLParen {
		return e.literal()
	}
	e.cur.consumed = true
	v := e.expr()
	if v.IsErr() {
		return v
	}
	if e.next() != tokRParen {
		return e.mkerr(ErrParse, ") expected")
	}
	e.cur.consumed = true
	return v
}
