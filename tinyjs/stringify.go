package tinyjs

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Stringify renders v the way the REPL prints results. Strings are quoted and
// errors render as their message.
func (e *Engine) Stringify(v Value) string {
	if v.IsErr() {
		return e.errmsg(v)
	}
	var sb strings.Builder
	e.tostr(&sb, v, nil)
	return sb.String()
}

// tostr appends v to sb. path holds the objects being printed, so that a
// cycle prints as [Circular] instead of recursing forever.
func (e *Engine) tostr(sb *strings.Builder, v Value, path []uint32) {
	switch v.Type() {
	case TypeUndefined:
		sb.WriteString("undefined")
	case TypeNull:
		sb.WriteString("null")
	case TypeBoolean:
		sb.WriteString(strconv.FormatBool(v.Bool()))
	case TypeNumber:
		sb.WriteString(strnum(v.Num()))
	case TypeString:
		sb.WriteByte('"')
		sb.Write(e.strbytes(v))
		sb.WriteByte('"')
	case TypeObject:
		for _, p := range path {
			if p == v.off() {
				sb.WriteString("[Circular]")
				return
			}
		}
		path = append(path, v.off())
		sb.WriteByte('{')
		for off := e.firstProp(v); off != 0 && off < e.mem.brk; off = e.nextProp(off) {
			if off != e.firstProp(v) {
				sb.WriteByte(',')
			}
			e.tostr(sb, mkval(TypeString, uint64(e.propKey(off))), path)
			sb.WriteByte(':')
			e.tostr(sb, e.propVal(off), path)
		}
		sb.WriteByte('}')
	case TypeFunction:
		sb.WriteString("function")
		sb.Write(e.strbytes(mkval(TypeString, v.data())))
	case TypeNative:
		fmt.Fprintf(sb, "\"c_func_0x%x\"", v.data())
	case TypeProp:
		fmt.Fprintf(sb, "PROP@%d", v.off())
	default:
		fmt.Fprintf(sb, "VTYPE%d", v.Type())
	}
}

// strnum formats integral values with full precision. Others get the fewest
// digits that parse back to the same number, in plain notation unless very
// small or very large.
func strnum(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == math.Trunc(f):
		return strconv.FormatFloat(f, 'g', 17, 64)
	}
	if a := math.Abs(f); a >= 1e-6 && a < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// truthy is the boolean value of v in conditions.
func (e *Engine) truthy(v Value) bool {
	switch v.Type() {
	case TypeBoolean:
		return v.Bool()
	case TypeNumber:
		f := v.Num()
		return f != 0 && !math.IsNaN(f)
	case TypeObject, TypeFunction:
		return true
	case TypeString:
		_, n := e.vstr(v)
		return n > 0
	}
	return false
}
