package tinyjs

// NativeFunc is a host function callable from scripts. It receives the engine
// and its already evaluated arguments.
// The collector may move strings and objects during a nested Eval; read them
// again from args afterwards instead of keeping them in variables.
type NativeFunc func(e *Engine, args Args) Value

// Args is a view of native call arguments on the scratch stack. It is only
// valid during the call.
type Args struct {
	e   *Engine
	off uint32
	n   int
}

// Len returns the number of arguments.
func (a Args) Len() int { return a.n }

// At returns argument i, or undefined when i is out of range.
func (a Args) At(i int) Value {
	if i < 0 || i >= a.n {
		return Undefined()
	}
	return a.e.mem.loadval(a.off + uint32(8*i))
}

// callParams skips over an argument list in dry-run mode and returns it as a
// code reference. Arguments are evaluated later, by the callee.
func (e *Engine) callParams() Value {
	pos := e.cur.pos
	flags := e.flags
	e.flags |= flagNoExec
	e.cur.consumed = true
	for comma := false; e.next() != tokEOF; comma = true {
		if !comma && e.next() == tokRParen {
			break
		}
		e.expr()
		if e.next() == tokRParen {
			break
		}
		if !e.expect(tokComma) {
			e.flags = flags
			return e.parseError()
		}
	}
	if !e.expect(tokRParen) {
		e.flags = flags
		return e.parseError()
	}
	e.flags = flags
	return mkcoderef(pos, e.cur.pos-pos-e.cur.tlen)
}

// callOp calls fn with the arguments whose source text args refers to.
func (e *Engine) callOp(fn, args Value) Value {
	if args.Type() != TypeCodeRef {
		return e.mkerr(ErrCall, "bad call")
	}
	if fn.Type() != TypeFunction && fn.Type() != TypeNative {
		return e.mkerr(ErrCall, "calling non-function")
	}
	saved, flags := e.cur, e.flags
	ncur := e.pushCursor(&saved)
	pin := Undefined()
	if e.nogc != 0 {
		pin = mkval(TypeString, uint64(e.nogc))
	}
	slot := e.keep(pin)
	e.cur = e.sub(args.coderefOff(), args.coderefLen())
	e.cur.pos = skipToNext(e.code(), 0)
	e.depth++
	var res Value
	if fn.Type() == TypeFunction {
		e.nogc = fn.off()
		res = e.callJS(fn)
	} else {
		res = e.callNative(fn)
	}
	e.depth--
	e.nogc = 0
	if pin = e.release(slot); pin.Type() == TypeString {
		e.nogc = pin.off()
	}
	e.cursors = e.cursors[:ncur]
	e.cur, e.flags = saved, flags
	e.cur.consumed = true
	if res.IsErr() {
		e.cur.pos = e.cur.clen
		e.cur.tok = tokEOF
		e.cur.consumed = false
	}
	return res
}

// callJS binds the parameters of fn, whose text looks like
// "(a, b) { ... }", and runs its body in a fresh scope. Argument expressions
// may run other functions and move fn, so its text is looked up again after
// each of them.
func (e *Engine) callJS(fn Value) Value {
	base := len(e.roots)
	e.roots = append(e.roots, fn, e.scope, e.ret) // fn, caller, saved ret
	defer func() {
		e.scope, e.ret = e.roots[base+1], e.roots[base+2]
		e.roots = e.roots[:base]
	}()
	text := func() []byte {
		off, n := e.vstr(e.roots[base])
		return e.mem.buf[off : off+n]
	}
	if s := e.mkscope(); s.IsErr() {
		return s
	}
	callee := e.keep(e.scope)
	_, fnlen := e.vstr(fn)
	fnpos := uint32(1)
	for fnpos < fnlen {
		fnpos = skipToNext(text(), fnpos)
		if fnpos < fnlen && text()[fnpos] == ')' {
			break
		}
		tok, n := parseIdent(text()[fnpos:])
		if tok != tokIdent {
			break
		}
		e.cur.pos = skipToNext(e.code(), e.cur.pos)
		e.cur.consumed = true
		v := Undefined()
		if e.cur.pos < e.cur.clen {
			e.scope = e.roots[base+1]
			v = e.resolve(e.expr())
			e.scope = e.roots[callee]
			if v.IsErr() {
				return v
			}
		}
		key := e.mkstr(text()[fnpos:fnpos+n], n)
		if key.IsErr() {
			return key
		}
		if p := e.setprop(e.roots[callee], key, v); p.IsErr() {
			return p
		}
		e.cur.pos = skipToNext(e.code(), e.cur.pos)
		if e.cur.pos < e.cur.clen && e.code()[e.cur.pos] == ',' {
			e.cur.pos++
		}
		fnpos = skipToNext(text(), fnpos+n)
		if fnpos < fnlen && text()[fnpos] == ',' {
			fnpos++
		}
	}
	if fnpos < fnlen && text()[fnpos] == ')' {
		fnpos++
	}
	fnpos = skipToNext(text(), fnpos)
	if fnpos < fnlen && text()[fnpos] == '{' {
		fnpos++
	}
	fnoff, _ := e.vstr(e.roots[base])
	e.cur = cursor{arenaOff: int(fnoff + fnpos), clen: fnlen - fnpos - 1, consumed: true}
	e.flags = flagCall
	e.ret = Undefined()
	res := e.run()
	if !res.IsErr() {
		res = Undefined()
		if e.flags&flagReturn != 0 {
			res = e.ret
		}
	}
	return res
}

// callNative evaluates the arguments onto the scratch stack and calls the
// registered host function.
func (e *Engine) callNative(fn Value) Value {
	idx := int(fn.data())
	if idx >= len(e.natives) {
		return e.mkerr(ErrCall, "bad call")
	}
	n := uint32(0)
	for e.cur.pos < e.cur.clen {
		if e.next() == tokRParen {
			break
		}
		arg := e.resolve(e.expr())
		if arg.IsErr() {
			e.mem.pop(n)
			return arg
		}
		if err := e.mem.push(arg); err != nil {
			e.mem.pop(n)
			return e.mkerr(ErrOOM, "call oom")
		}
		n++
		if e.next() == tokComma {
			e.cur.consumed = true
		}
	}
	e.mem.reverse(n)
	res := e.natives[idx](e, Args{e: e, off: e.mem.size, n: int(n)})
	e.watermark()
	e.mem.pop(n)
	return res
}
