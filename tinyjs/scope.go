package tinyjs

import "bytes"

// mkscope enters a new scope whose parent is the active one.
func (e *Engine) mkscope() Value {
	s := e.mkobj(e.scope.off())
	if s.IsErr() {
		return s
	}
	e.scope = s
	e.tr().P("scope", s.off()).Debugf("pushing new scope")
	return s
}

// delscope leaves the active scope. The scope object stays in the arena until
// the next collection.
func (e *Engine) delscope() {
	e.tr().Debugf("popping scope [%d]", e.scope.off())
	e.scope = e.parent(e.scope)
}

// lkp searches the property list of a single object. It returns the property
// offset, or 0.
func (e *Engine) lkp(obj Value, name []byte) uint32 {
	for off := e.firstProp(obj); off != 0 && off < e.mem.brk; off = e.nextProp(off) {
		if bytes.Equal(e.strbytes(mkval(TypeString, uint64(e.propKey(off)))), name) {
			return off
		}
	}
	return 0
}

// lookup resolves name in the scope chain to a property reference.
func (e *Engine) lookup(name []byte) Value {
	if e.flags&flagNoExec != 0 {
		return 0
	}
	for scope := e.scope; ; scope = e.parent(scope) {
		if off := e.lkp(scope, name); off != 0 {
			return mkval(TypeProp, uint64(off))
		}
		if scope.off() == 0 {
			break
		}
	}
	return e.mkerr(ErrNotFound, "'%s' not found", name)
}

// resolve follows property references down to a plain value.
func (e *Engine) resolve(v Value) Value {
	for v.Type() == TypeProp {
		v = e.propVal(v.off())
	}
	return v
}

// assign stores val into the property referenced by lhs.
func (e *Engine) assign(lhs, val Value) Value {
	e.mem.saveval(lhs.off()+8, val)
	return lhs
}
