package tinyjs

import (
	"bytes"
	"math"
)

// assignOps maps a compound assignment to its arithmetic operator, indexed by
// op - tokPlusAssign.
var assignOps = [...]token{
	tokPlus, tokMinus, tokMul, tokDiv, tokRem,
	tokShl, tokShr, tokZShr, tokAnd, tokXor, tokOr,
}

// doOp applies op to its operands. In dry-run mode it only propagates parse
// errors and otherwise returns 0.
func (e *Engine) doOp(op token, lhs, rhs Value) Value {
	if lhs.IsErr() {
		return lhs
	}
	if rhs.IsErr() {
		return rhs
	}
	if e.flags&flagNoExec != 0 {
		return 0
	}
	l, r := e.resolve(lhs), e.resolve(rhs)
	e.watermark()
	if l.IsErr() {
		return l
	}
	if r.IsErr() {
		return r
	}
	if isAssign(op) && lhs.Type() != TypeProp {
		return e.mkerr(ErrBadAssign, "bad lhs")
	}
	switch op {
	case tokTypeof:
		s := r.Type().String()
		return e.mkstr([]byte(s), uint32(len(s)))
	case tokCall:
		return e.callOp(l, r)
	case tokAssign:
		return e.assign(lhs, r)
	case tokPostInc, tokPostDec:
		if lhs.Type() != TypeProp {
			return e.mkerr(ErrBadAssign, "bad lhs")
		}
		aop := tokPlusAssign
		if op == tokPostDec {
			aop = tokMinusAssign
		}
		if v := e.assignOp(aop, lhs, Number(1)); v.IsErr() {
			return v
		}
		return l
	case tokNot:
		if r.Type() == TypeBoolean {
			return Bool(!r.Bool())
		}
	}
	if isAssign(op) {
		return e.assignOp(op, lhs, r)
	}
	if l.Type() == TypeString && r.Type() == TypeString {
		return e.stringOp(op, l, r)
	}
	if op == tokDot {
		return e.dotOp(l, r)
	}
	if isUnary(op) {
		if r.Type() != TypeNumber {
			return e.mkerr(ErrTypeMismatch, "type mismatch")
		}
	} else if l.Type() != TypeNumber || r.Type() != TypeNumber {
		if (op == tokEq || op == tokNe) && l.Type() == r.Type() {
			return Bool((l == r) == (op == tokEq))
		}
		return e.mkerr(ErrTypeMismatch, "type mismatch")
	}
	return e.numOp(op, l.Num(), r.Num())
}

func (e *Engine) numOp(op token, a, b float64) Value {
	switch op {
	case tokDiv:
		if b == 0 {
			return e.mkerr(ErrDivByZero, "div by zero")
		}
		return Number(a / b)
	case tokRem:
		if b == 0 {
			return e.mkerr(ErrDivByZero, "div by zero")
		}
		return Number(math.Mod(a, b))
	case tokMul:
		return Number(a * b)
	case tokExp:
		return Number(math.Pow(a, b))
	case tokPlus:
		return Number(a + b)
	case tokMinus:
		return Number(a - b)
	case tokXor:
		return Number(float64(int64(a) ^ int64(b)))
	case tokAnd:
		return Number(float64(int64(a) & int64(b)))
	case tokOr:
		return Number(float64(int64(a) | int64(b)))
	case tokUMinus:
		return Number(-b)
	case tokUPlus:
		return Number(b)
	case tokTilde:
		return Number(float64(^int64(b)))
	case tokNot:
		return Bool(b == 0)
	case tokShl:
		return Number(float64(int64(a) << (uint64(int64(b)) & 63)))
	case tokShr:
		return Number(float64(int64(a) >> (uint64(int64(b)) & 63)))
	case tokZShr:
		return Number(float64(uint32(int64(a)) >> (uint64(int64(b)) & 31)))
	case tokEq:
		return Bool(a == b)
	case tokNe:
		return Bool(a != b)
	case tokLT:
		return Bool(a < b)
	case tokLE:
		return Bool(a <= b)
	case tokGT:
		return Bool(a > b)
	case tokGE:
		return Bool(a >= b)
	}
	return e.mkerr(ErrParse, "unknown op %d", op)
}

// assignOp performs a compound assignment. On failure the target keeps its
// old value.
func (e *Engine) assignOp(op token, lhs, rhs Value) Value {
	res := e.doOp(assignOps[op-tokPlusAssign], e.resolve(lhs), rhs)
	if res.IsErr() {
		return res
	}
	return e.assign(lhs, res)
}

func (e *Engine) stringOp(op token, l, r Value) Value {
	off1, n1 := e.vstr(l)
	off2, n2 := e.vstr(r)
	switch op {
	case tokPlus:
		res := e.mkstr(nil, n1+n2)
		if res.IsErr() {
			return res
		}
		off, _ := e.vstr(res)
		copy(e.mem.buf[off:], e.mem.buf[off1:off1+n1])
		copy(e.mem.buf[off+n1:], e.mem.buf[off2:off2+n2])
		return res
	case tokEq, tokNe:
		eq := bytes.Equal(e.mem.buf[off1:off1+n1], e.mem.buf[off2:off2+n2])
		return Bool(eq == (op == tokEq))
	}
	return e.mkerr(ErrTypeMismatch, "bad str op")
}

// dotOp looks up the property named by the code reference r in l.
func (e *Engine) dotOp(l, r Value) Value {
	if r.Type() != TypeCodeRef {
		return e.mkerr(ErrParse, "ident expected")
	}
	name := e.coderef(r)
	if l.Type() == TypeString && string(name) == "length" {
		_, n := e.vstr(l)
		return Number(float64(n))
	}
	if l.Type() != TypeObject {
		return e.mkerr(ErrTypeMismatch, "lookup in non-obj")
	}
	off := e.lkp(l, name)
	if off == 0 {
		return Undefined()
	}
	return mkval(TypeProp, uint64(off))
}
