package tinyjs

import "encoding/binary"

// Entity records, all 4-byte aligned:
//
//	object:   header(firstProp|0) parent
//	property: header(next|1) keyOff value(8 bytes)
//	string:   header((len+1)<<2|2) bytes NUL
const (
	objSize  = 8
	propSize = 16
	gcMask   = uint32(1) << 31
)

// esize returns the byte span of the entity whose header is h.
func esize(h uint32) uint32 {
	switch Type(h & 3) {
	case TypeObject:
		return objSize
	case TypeProp:
		return propSize
	case TypeString:
		return 4 + align32(h>>2)
	}
	return ^uint32(0)
}

// mkentity allocates an entity with header h followed by n payload bytes.
// data is copied in when not nil.
func (e *Engine) mkentity(h uint32, data []byte, n uint32) Value {
	off, err := e.mem.Alloc(4 + n)
	if err != nil {
		return e.mkerr(ErrOOM, "oom")
	}
	e.mem.saveoff(off, h)
	if data != nil {
		copy(e.mem.buf[off+4:off+4+n], data)
	}
	if Type(h&3) == TypeString {
		e.mem.buf[off+4+n-1] = 0
	}
	return mkval(Type(h&3), uint64(off))
}

// mkstr makes a string entity. A nil s leaves the bytes already placed in
// front of brk untouched.
func (e *Engine) mkstr(s []byte, n uint32) Value {
	return e.mkentity((n+1)<<2|uint32(TypeString), s, n+1)
}

func (e *Engine) mkobj(parent uint32) Value {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], parent)
	return e.mkentity(uint32(TypeObject), b[:], 4)
}

// setprop adds a property to the head of obj's list. The property is
// allocated before the head is relinked, so an OOM leaves obj intact.
func (e *Engine) setprop(obj, key, val Value) Value {
	head := obj.off()
	first := e.mem.loadoff(head) &^ 3
	var b [12]byte
	binary.LittleEndian.PutUint32(b[:], key.off())
	binary.LittleEndian.PutUint64(b[4:], uint64(val))
	p := e.mkentity(first|uint32(TypeProp), b[:], 12)
	if p.IsErr() {
		return p
	}
	e.mem.saveoff(head, p.off()|uint32(TypeObject))
	return p
}

// vstr returns the arena offset and length of a string's bytes.
func (e *Engine) vstr(v Value) (uint32, uint32) {
	off := v.off()
	return off + 4, e.mem.loadoff(off)>>2 - 1
}

// strbytes returns the bytes of a string value. The slice aliases the arena.
func (e *Engine) strbytes(v Value) []byte {
	off, n := e.vstr(v)
	return e.mem.buf[off : off+n]
}

// parent is the enclosing object of an object entity.
func (e *Engine) parent(obj Value) Value {
	return mkval(TypeObject, uint64(e.mem.loadoff(obj.off()+4)))
}

// propKey and propVal read the fields of a property entity at off.
func (e *Engine) propKey(off uint32) uint32 { return e.mem.loadoff(off + 4) }
func (e *Engine) propVal(off uint32) Value  { return e.mem.loadval(off + 8) }

// firstProp and nextProp walk an object's property list. 0 ends the list.
func (e *Engine) firstProp(obj Value) uint32 { return e.mem.loadoff(obj.off()) &^ 3 }
func (e *Engine) nextProp(off uint32) uint32 { return e.mem.loadoff(off) &^ 3 }
