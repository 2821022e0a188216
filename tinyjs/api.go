package tinyjs

import (
	"fmt"
)

// MkStr makes a string value in the arena. On OOM it returns an error value.
func (e *Engine) MkStr(s string) Value {
	return e.mkstr([]byte(s), uint32(len(s)))
}

// MkObj makes an empty object.
func (e *Engine) MkObj() Value {
	return e.mkobj(0)
}

// MkErr makes an error value carrying a formatted message. Native functions
// return it to abort the evaluation.
func (e *Engine) MkErr(format string, args ...interface{}) Value {
	return e.mkerr(ErrNative, format, args...)
}

// RegisterNative makes a function value that calls fn.
func (e *Engine) RegisterNative(fn NativeFunc) Value {
	e.natives = append(e.natives, fn)
	v := mkval(TypeNative, uint64(len(e.natives)-1))
	e.tr().P("native", len(e.natives)-1).Debugf("registered native function")
	return v
}

// Global returns the global scope object.
func (e *Engine) Global() Value {
	return mkval(TypeObject, 0)
}

// Set adds the property key with value val to obj. Like let, it does not
// replace an existing property but shadows it.
func (e *Engine) Set(obj Value, key string, val Value) error {
	if obj.Type() != TypeObject {
		return fmt.Errorf("set %q on %s: %w", key, obj.Type(), ErrTypeMismatch)
	}
	k := e.MkStr(key)
	if k.IsErr() {
		return fmt.Errorf("set %q: %w", key, ErrOOM)
	}
	if p := e.setprop(obj, k, val); p.IsErr() {
		return fmt.Errorf("set %q: %w", key, ErrOOM)
	}
	return nil
}

// Get returns the value of obj's property key, or undefined.
func (e *Engine) Get(obj Value, key string) Value {
	if obj.Type() != TypeObject {
		return Undefined()
	}
	off := e.lkp(obj, []byte(key))
	if off == 0 {
		return Undefined()
	}
	return e.propVal(off)
}

// Str returns the contents of a string value.
func (e *Engine) Str(v Value) (string, bool) {
	if v.Type() != TypeString {
		return "", false
	}
	return string(e.strbytes(v)), true
}

// Truthy reports whether v counts as true in a condition.
func (e *Engine) Truthy(v Value) bool {
	return e.truthy(v)
}

// Props calls fn for each property of obj, most recently added first, until
// fn returns false.
func (e *Engine) Props(obj Value, fn func(key string, val Value) bool) {
	if obj.Type() != TypeObject {
		return
	}
	for off := e.firstProp(obj); off != 0 && off < e.mem.brk; off = e.nextProp(off) {
		key, _ := e.Str(mkval(TypeString, uint64(e.propKey(off))))
		if !fn(key, e.propVal(off)) {
			return
		}
	}
}

// SetGCThreshold sets the arena usage in bytes above which statements
// trigger a collection.
func (e *Engine) SetGCThreshold(n uint32) {
	e.gct = n
}

// SetMaxDepth limits the evaluator nesting depth. 0 means no limit.
func (e *Engine) SetMaxDepth(n int) {
	e.maxDepth = n
}

// ChkArgs reports whether args match codes, one character per argument:
// 'b' boolean, 'd' number, 's' string, 'j' any value.
func ChkArgs(args Args, codes string) bool {
	if len(codes) != args.Len() {
		return false
	}
	for i := 0; i < len(codes); i++ {
		t := args.At(i).Type()
		switch codes[i] {
		case 'b':
			if t != TypeBoolean {
				return false
			}
		case 'd':
			if t != TypeNumber {
				return false
			}
		case 's':
			if t != TypeString {
				return false
			}
		case 'j':
		default:
			return false
		}
	}
	return true
}
