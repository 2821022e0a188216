package tinyjs

import "encoding/binary"

// Memory is the arena every entity of an engine lives in. Entities are packed
// from the start of buf up to brk:
//
//	| entity1 | entity2 | ... | entityN |     free     | scratch stack |
//	0                                  brk           size             top
//
// Native calls push their arguments at the top of the buffer, moving size
// down by 8 bytes per argument, and restore it when the call returns.
type Memory struct {
	buf  []byte
	brk  uint32 // allocation boundary
	size uint32 // logical capacity, lowered by the scratch stack
	top  uint32 // capacity with an empty scratch stack
	lwm  uint32 // minimum free bytes observed
}

// align32 rounds n up to multiple of 4.
func align32(n uint32) uint32 {
	return (n + 3) &^ 3
}

// Alloc reserves n bytes and returns the offset.
func (m *Memory) Alloc(n uint32) (uint32, error) {
	n = align32(n)
	if uint64(m.brk)+uint64(n) > uint64(m.size) {
		return 0, ErrOOM
	}
	off := m.brk
	m.brk += n
	return off, nil
}

// Free returns the number of bytes between the boundary and the capacity.
func (m *Memory) Free() uint32 {
	if m.brk < m.size {
		return m.size - m.brk
	}
	return 0
}

func (m *Memory) loadoff(off uint32) uint32 {
	return binary.LittleEndian.Uint32(m.buf[off:])
}

func (m *Memory) saveoff(off, v uint32) {
	binary.LittleEndian.PutUint32(m.buf[off:], v)
}

func (m *Memory) loadval(off uint32) Value {
	return Value(binary.LittleEndian.Uint64(m.buf[off:]))
}

func (m *Memory) saveval(off uint32, v Value) {
	binary.LittleEndian.PutUint64(m.buf[off:], uint64(v))
}

// push places v on the scratch stack.
func (m *Memory) push(v Value) error {
	if uint64(m.brk)+8 > uint64(m.size) {
		return ErrOOM
	}
	m.size -= 8
	m.saveval(m.size, v)
	return nil
}

// pop drops n values from the scratch stack.
func (m *Memory) pop(n uint32) {
	m.size += 8 * n
}

// reverse flips the n topmost scratch stack values, so that the value pushed
// first ends up at the lowest address.
func (m *Memory) reverse(n uint32) {
	for i, j := uint32(0), n-1; n > 0 && i < j; i, j = i+1, j-1 {
		a, b := m.loadval(m.size+8*i), m.loadval(m.size+8*j)
		m.saveval(m.size+8*i, b)
		m.saveval(m.size+8*j, a)
	}
}

// watermark records the low watermark of free memory and the deepest
// evaluator nesting seen so far.
func (e *Engine) watermark() {
	if n := e.mem.Free(); n < e.mem.lwm {
		e.mem.lwm = n
	}
	if e.depth > e.maxSeen {
		e.maxSeen = e.depth
	}
}
