// Package tinyjs is a small JavaScript-subset engine that keeps every runtime
// value inside one byte buffer handed over by the host.
//
// Source text is parsed and executed in a single pass: there is no syntax
// tree and no bytecode. Loops and function bodies are re-parsed from their
// source offsets every time they run. Objects, properties and strings are
// records packed into the buffer and reclaimed by a compacting collector.
package tinyjs

import (
	"github.com/npillmayer/schuko/tracing"
)

// flag is the evaluator mode.
type flag uint8

const (
	flagNoExec   flag = 1 << iota // parse, do not execute
	flagLoop                      // inside a loop body
	flagCall                      // inside a function call
	flagBreak                     // break executed
	flagContinue                  // continue executed
	flagReturn                    // return executed
)

// Engine is one instance of the interpreter. It is not safe for concurrent
// use.
type Engine struct {
	mem        Memory
	gct        uint32 // collect when brk exceeds this
	nogc       uint32 // pinned entity, 0 when none
	scope      Value  // active scope object
	errmsgs    [errHistory]string
	errseq     uint32
	ret        Value // value of the last executed return
	cur        cursor
	roots      []Value   // operands held across a nested evaluation
	cursors    []*cursor // cursors of interrupted evaluations
	flags      flag
	evals      int // active Eval invocations
	depth      int
	maxDepth   int
	maxSeen    int
	collecting bool
	gcPending  bool
	natives    []NativeFunc
	trace      tracing.Trace
}

// Option configures an Engine.
type Option func(*Engine)

// WithGCRatio sets the collection threshold as a fraction of the capacity.
func WithGCRatio(r float64) Option {
	return func(e *Engine) {
		if r > 0 && r <= 1 {
			e.gct = uint32(float64(e.mem.size) * r)
		}
	}
}

// WithMaxDepth limits the evaluator nesting depth. 0 means no limit.
func WithMaxDepth(n int) Option {
	return func(e *Engine) { e.maxDepth = n }
}

// WithTracer routes the engine's traces to t instead of the global syntax
// tracer.
func WithTracer(t tracing.Trace) Option {
	return func(e *Engine) { e.trace = t }
}

// New creates an engine over buf. The engine owns buf from now on. The buffer
// must be large enough to hold the global scope object.
func New(buf []byte, opts ...Option) (*Engine, error) {
	size := uint32(len(buf)) / 8 * 8
	if size < objSize {
		return nil, ErrBufferTooSmall
	}
	for i := range buf {
		buf[i] = 0
	}
	e := &Engine{mem: Memory{buf: buf, size: size, top: size, lwm: size}}
	e.cur.arenaOff = -1
	e.gct = size / 4 * 3
	e.scope = e.mkobj(0)
	for _, opt := range opts {
		opt(e)
	}
	e.tr().Debugf("tinyjs: engine created, capacity %d, gc threshold %d", size, e.gct)
	return e, nil
}

// Eval parses and executes src statement by statement. It returns the value of
// the last statement, or the first error. Eval may be called from a native
// function; the interrupted evaluation resumes afterwards.
func (e *Engine) Eval(src string) Value {
	saved, flags := e.cur, e.flags
	nroots, ncur := len(e.roots), e.pushCursor(&saved)
	e.cur = cursor{src: []byte(src), arenaOff: -1, clen: uint32(len(src)), consumed: true}
	e.flags = 0
	e.evals++
	res := e.run()
	e.evals--
	e.roots, e.cursors = e.roots[:nroots], e.cursors[:ncur]
	e.cur, e.flags = saved, flags
	return res
}

// run executes statements of the current cursor until end of input or the
// first error.
func (e *Engine) run() Value {
	res := Undefined()
	for e.next() != tokEOF && !res.IsErr() {
		res = e.stmt()
	}
	return res
}
