package tinyjs

import (
	"fmt"
	"io"
)

// Dump writes one line per arena entity to w.
func (e *Engine) Dump(w io.Writer) {
	fmt.Fprintf(w, "size %d, brk %d, lwm %d, depth %d, nogc %d\n",
		e.mem.size, e.mem.brk, e.mem.lwm, e.maxSeen, e.nogc)
	for off := uint32(0); off < e.mem.brk; {
		h := e.mem.loadoff(off)
		fmt.Fprintf(w, " %5d: ", off)
		switch Type(h & 3) {
		case TypeObject:
			fmt.Fprintf(w, "OBJ %d %d\n", h&^3, e.mem.loadoff(off+4))
		case TypeProp:
			v := e.propVal(off)
			fmt.Fprintf(w, "PROP next %d, koff %d vtype %s vdata %d\n", h&^3, e.propKey(off), v.Type(), v.data())
		case TypeString:
			s := e.strbytes(mkval(TypeString, uint64(off)))
			fmt.Fprintf(w, "STR %d [%s]\n", len(s), s)
		default:
			fmt.Fprintln(w, "???")
			return
		}
		off += esize(h)
	}
}
