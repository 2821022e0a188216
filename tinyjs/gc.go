package tinyjs

// maybeCollect runs the collector at a statement boundary if the arena is
// above its threshold or a collection was deferred. This includes statements
// of function bodies: temporaries of the interrupted callers are found through
// the root stack, the saved cursors and the scratch stack.
func (e *Engine) maybeCollect() {
	if e.flags&flagNoExec != 0 || e.collecting {
		return
	}
	if e.mem.brk > e.gct || e.gcPending {
		e.gc()
	}
}

// Collect runs a collection now. It returns false if an evaluation is in
// progress; the collection then happens at the next safe statement boundary.
func (e *Engine) Collect() bool {
	if e.evals > 0 || e.collecting {
		e.gcPending = true
		e.tr().Debugf("gc: deferred, evaluation in progress")
		return false
	}
	e.gc()
	return true
}

// keep pushes v on the root stack, where the collector treats it as live and
// updates it when it moves. It returns the slot of v.
func (e *Engine) keep(v Value) int {
	e.roots = append(e.roots, v)
	return len(e.roots) - 1
}

// release returns the current value in slot and drops it together with every
// root pushed after it.
func (e *Engine) release(slot int) Value {
	v := e.roots[slot]
	e.roots = e.roots[:slot]
	return v
}

// pushCursor registers a cursor saved by an interrupted evaluation, so that
// its offset follows the function text it reads when that text moves.
func (e *Engine) pushCursor(c *cursor) int {
	e.cursors = append(e.cursors, c)
	return len(e.cursors) - 1
}

func (e *Engine) gc() {
	e.collecting = true
	e.gcPending = false
	e.watermark()
	before := e.mem.brk
	e.markAll()
	e.unmarkUsed()
	e.deleteMarked()
	e.collecting = false
	e.tr().P("freed", before-e.mem.brk).Debugf("gc: %d -> %d bytes", before, e.mem.brk)
}

func (e *Engine) markAll() {
	for off := uint32(0); off < e.mem.brk; {
		h := e.mem.loadoff(off)
		e.mem.saveoff(off, h|gcMask)
		off += esize(h)
	}
}

// unmarkUsed clears the mark of everything reachable from the scope chain, the
// pinned entity, the root stack and the native arguments on the scratch stack.
func (e *Engine) unmarkUsed() {
	for scope := e.scope; ; scope = e.parent(scope) {
		e.unmark(scope.off())
		if scope.off() == 0 {
			break
		}
	}
	if e.nogc != 0 {
		e.unmark(e.nogc)
	}
	unmarkVal := func(v Value) {
		if isMemEntity(v.Type()) {
			e.unmark(v.off())
		}
	}
	unmarkVal(e.ret)
	for _, v := range e.roots {
		unmarkVal(v)
	}
	for off := e.mem.size; off < e.mem.top; off += 8 {
		unmarkVal(e.mem.loadval(off))
	}
}

// unmark clears the mark of the entity at off and of everything it links to.
// Entities already unmarked are skipped, which also ends cycles.
func (e *Engine) unmark(off uint32) {
	for off < e.mem.brk {
		h := e.mem.loadoff(off)
		if h&gcMask == 0 {
			return
		}
		h &^= gcMask
		e.mem.saveoff(off, h)
		next := h &^ 3
		switch Type(h & 3) {
		case TypeObject:
			e.unmark(e.mem.loadoff(off + 4))
		case TypeProp:
			e.unmark(e.propKey(off))
			if v := e.propVal(off); isMemEntity(v.Type()) {
				e.unmark(v.off())
			}
		default:
			return
		}
		if next == 0 {
			return
		}
		off = next
	}
}

// deleteMarked compacts the arena, removing every entity still marked.
func (e *Engine) deleteMarked() {
	for off := uint32(0); off < e.mem.brk; {
		h := e.mem.loadoff(off)
		n := esize(h &^ gcMask)
		if h&gcMask == 0 {
			off += n
			continue
		}
		e.fixup(off, n)
		copy(e.mem.buf[off:e.mem.brk-n], e.mem.buf[off+n:e.mem.brk])
		e.mem.brk -= n
	}
}

// fixup adjusts every offset pointing past start after n bytes at start are
// about to be removed.
func (e *Engine) fixup(start, n uint32) {
	move := func(off uint32) uint32 {
		if off > start {
			return off - n
		}
		return off
	}
	for off := uint32(0); off < e.mem.brk; {
		h := e.mem.loadoff(off)
		size := esize(h &^ gcMask)
		if h&gcMask == 0 {
			switch Type(h & 3) {
			case TypeObject:
				e.mem.saveoff(off, move(h&^3)|h&3)
				e.mem.saveoff(off+4, move(e.mem.loadoff(off+4)))
			case TypeProp:
				e.mem.saveoff(off, move(h&^3)|h&3)
				e.mem.saveoff(off+4, move(e.propKey(off)))
				if v := e.propVal(off); isMemEntity(v.Type()) {
					e.mem.saveval(off+8, mkval(v.Type(), uint64(move(v.off()))))
				}
			}
		}
		off += size
	}
	moveVal := func(v Value) Value {
		if isMemEntity(v.Type()) {
			return mkval(v.Type(), uint64(move(v.off())))
		}
		return v
	}
	e.scope = mkval(TypeObject, uint64(move(e.scope.off())))
	e.nogc = move(e.nogc)
	e.ret = moveVal(e.ret)
	for i, v := range e.roots {
		e.roots[i] = moveVal(v)
	}
	for off := e.mem.size; off < e.mem.top; off += 8 {
		e.mem.saveval(off, moveVal(e.mem.loadval(off)))
	}
	if e.cur.arenaOff > int(start) {
		e.cur.arenaOff -= int(n)
	}
	for _, c := range e.cursors {
		if c.arenaOff > int(start) {
			c.arenaOff -= int(n)
		}
	}
}
