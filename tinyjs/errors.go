package tinyjs

import (
	"errors"
	"fmt"
)

// Error kinds carried in the payload of error values.
var (
	ErrParse         = errors.New("parse error")
	ErrNotFound      = errors.New("undeclared identifier")
	ErrRedeclared    = errors.New("redeclaration")
	ErrTypeMismatch  = errors.New("type mismatch")
	ErrDivByZero     = errors.New("division by zero")
	ErrBadAssign     = errors.New("bad assignment target")
	ErrCall          = errors.New("call error")
	ErrNotInLoop     = errors.New("not in loop")
	ErrNotInFunc     = errors.New("not in function")
	ErrUnsupported   = errors.New("unsupported construct")
	ErrOOM           = errors.New("out of memory")
	ErrStackOverflow = errors.New("stack overflow")
	ErrNative        = errors.New("native function error")
)

// ErrBufferTooSmall is returned by New for buffers that cannot hold the
// global scope.
var ErrBufferTooSmall = errors.New("buffer too small")

// kinds is indexed by the payload of an error value.
var kinds = []error{
	ErrNative,
	ErrParse,
	ErrNotFound,
	ErrRedeclared,
	ErrTypeMismatch,
	ErrDivByZero,
	ErrBadAssign,
	ErrCall,
	ErrNotInLoop,
	ErrNotInFunc,
	ErrUnsupported,
	ErrOOM,
	ErrStackOverflow,
}

func kindIndex(kind error) uint64 {
	for i, k := range kinds {
		if k == kind {
			return uint64(i)
		}
	}
	return 0
}

// EvalError is the Go side of an error value.
type EvalError struct {
	Kind error
	Msg  string
}

func (e *EvalError) Error() string {
	return e.Msg
}

func (e *EvalError) Unwrap() error {
	return e.Kind
}

// errHistory is the number of recent error messages an engine keeps.
const errHistory = 32

// mkerr builds an error value, records its message and forces the cursor to
// the end of input so that nothing else is consumed. The payload holds the
// kind index in its low byte and the error's sequence number above it.
func (e *Engine) mkerr(kind error, format string, args ...interface{}) Value {
	msg := "ERROR: " + fmt.Sprintf(format, args...)
	e.errseq++
	e.errmsgs[e.errseq%errHistory] = msg
	e.cur.pos = e.cur.clen
	e.cur.tok = tokEOF
	e.cur.consumed = false
	e.tr().P("kind", kind.Error()).Debugf("%s", msg)
	return mkval(TypeError, kindIndex(kind)|uint64(e.errseq)<<8)
}

func errKind(v Value) error {
	if i := v.data() & 0xff; i < uint64(len(kinds)) {
		return kinds[i]
	}
	return ErrNative
}

// errmsg returns the message v was created with. Once more than errHistory
// newer errors exist, only the kind is left to report.
func (e *Engine) errmsg(v Value) string {
	seq := uint32(v.data() >> 8)
	if seq != 0 && e.errseq-seq < errHistory {
		return e.errmsgs[seq%errHistory]
	}
	return "ERROR: " + errKind(v).Error()
}

// Err converts an error value into a Go error. It returns nil for any other
// value.
func (e *Engine) Err(v Value) error {
	if !v.IsErr() {
		return nil
	}
	return &EvalError{Kind: errKind(v), Msg: e.errmsg(v)}
}
