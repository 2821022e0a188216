package tinyjs

import (
	"fmt"
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuncs(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tinyjs")
	defer teardown()

	e := newEngine(t, 4096)
	runCases(t, e, []evalCase{
		{"function(){};1;", "1"},
		{"let f=function(){};1;", "1"},
		{"f;", "function(){}"},
		{"function(){1}", "ERROR: ; expected"},
		{"function(){1;}", "function(){1;}"},
		{"function(){1;};", "function(){1;}"},
		{"function(){1;", "ERROR: parse error"},
		{"typeof 1", `"number"`},
		{"typeof(1)", `"number"`},
		{"typeof('hello')", `"string"`},
		{"typeof {}", `"object"`},
		{"typeof f", `"function"`},
		{"function(,){};", "ERROR: parse error"},
		{"function(a,){};", "ERROR: parse error"},
		{"function(a b){};", "ERROR: parse error"},
		{"function(a,b){};", "function(a,b){}"},
		{"1 + f", "ERROR: type mismatch"},
		{"f = function(a){return 17;}; 1", "1"},
		{"1()", "ERROR: calling non-function"},
		{"f(,)", "ERROR: parse error"},
		{"f(1,)", "ERROR: parse error"},
		{"f(,2)", "ERROR: parse error"},
		{"return", "ERROR: not in func"},
		{"return 2;", "ERROR: not in func"},
		{"{ return } ", "ERROR: not in func"},
		{"f(3,4)", "17"},
		{"(function(){})()", "undefined"},
		{"(function(){})(1,2,3)", "undefined"},
		{"(function(){1;})(1,2,3)", "undefined"},
		{"(function(x){res+=x;})(1)", "ERROR: 'res' not found"},
		{"(function(){return 1;})()", "1"},
		{"(function(){1;2;return 1;})()", "1"},
		{"(function(){return 1;})(1)", "1"},
		{"(function(){return 1;})(1,2,3)", "1"},
		{"(function(){return 1;})(1,)", "ERROR: parse error"},
		{"(function(){return 1;2;})()", "1"},
		{"(function(){return 1;2;return 3;})()", "1"},
		{"(function(){return;})()", "undefined"},
		{"(function(){return; 5;})()", "undefined"},
		{"(function(a){return b;})(1)", "ERROR: 'b' not found"},
		{"(function(a,b){return a + b;})()", "ERROR: type mismatch"},
		{"(function(a,b){return a + b;})(1)", "ERROR: type mismatch"},
		{"(function(a,b){return a + b;})(1,2)", "3"},
		{"(function(a,b){return a + b;})('foo','bar')", `"foobar"`},
		{"(function(a,b){return a + b;})(1,2,3,4)", "3"},
		{"f = function(a,b){return a + b;}; 1", "1"},
	})
	assert.Equal(t, flag(0), e.flags)

	require.True(t, e.Collect())
	brk := e.Stats().Used
	runCases(t, e, []evalCase{
		{"f(3, 4 )", "7"},
		{"f(3,4)", "7"},
		{"f(1+2,4)", "7"},
		{"f(1+2,f(2,3))", "8"},
	})
	require.True(t, e.Collect())
	assert.Equal(t, brk, e.Stats().Used)

	runCases(t, e, []evalCase{
		{"f('a','b')", `"ab"`},
		{"let i,a=0; (function(){a++;})(); a", "1"},
		{"a=0; (function(){ a++; })(); a", "1"},
		{"a=0; (function(x){a=x;})(2); a", "2"},
		{"a=0; (function(x){a=x;})('hi'); a", `"hi"`},
		{"a=0;(function(x){let z=x;a=typeof z;})('x');a", `"string"`},
		{"(function(x){return x;})(1);", "1"},
		{"(function(x){return {a:x};null;})(1).a;", "1"},
		{"(function(x){let m= {a:7}; return m;})(1).a;", "7"},
		{"(function(x){let m=7;return m;})(1);", "7"},
		{"(function(x){let m='hi';return m;})(1);", `"hi"`},
		{"(function(x){let m={a:2};return m;})(1).a;", "2"},
		{"(function(x){let m={a:x};return m;})(3).a;", "3"},
		{"i=a=0;f=function(x,y){return x*y;};1;", "1"},
	})

	require.True(t, e.Collect())
	brk = e.Stats().Used
	assert.Equal(t, "99", e.Stringify(e.Eval("i=a=0; for (;i++<99;) a=i;a")))
	require.True(t, e.Collect())
	assert.Equal(t, brk, e.Stats().Used)
	assert.Equal(t, "333283335000", e.Stringify(e.Eval("i=a=0; for (;i++ < 9999;) a += i*i; a")))
	require.True(t, e.Collect())
	assert.Equal(t, brk, e.Stats().Used)
	assert.Equal(t, "333283335000", e.Stringify(e.Eval("i=a=0; for (;i++ < 9999;) a += f(i,i); a")))
	require.True(t, e.Collect())
	assert.Equal(t, brk, e.Stats().Used)

	e.Eval("f=function(){return 1;};")
	runCases(t, e, []evalCase{
		{"f();", "1"},
		{"f() + 2;", "3"},
		{"f=function (x){return x+1;}; f(1);", "2"},
		{"f = function(x){return x;};", "function(x){return x;}"},
		{"f(2)", "2"},
		{"f({})", "{}"},
		{"f({a:5,b:3}).b", "3"},
		{`f({"a":5,"b":3}).b`, "3"},
	})
}

func TestArgsEvaluatedInCallerScope(t *testing.T) {
	e := newEngine(t, 2048)
	runCases(t, e, []evalCase{
		{"let x = 1; let g = function(x, y){ return y; }; g(5, x)", "1"},
		{"g(x + 1, x)", "1"},
	})
}

func TestReturnInsideLoop(t *testing.T) {
	e := newEngine(t, 4096)
	runCases(t, e, []evalCase{
		{"let f = function(){ for (let i = 0; i < 10; i++) { if (i === 3) return i; } return -1; }; f()", "3"},
		{"let g = function(){ for (let i = 0; i < 10; i++) if (i === 4) return i * 2; return -1; }; g()", "8"},
		{"let h = function(){ for (;;) { for (;;) { return 'in'; } } }; h()", `"in"`},
		{"let k = function(n){ for (let i = 0; i < 3; i++) { n++; } return n; }; k(1)", "4"},
		{"f() + g()", "11"},
	})
}

func TestRecursionLimit(t *testing.T) {
	e := newEngine(t, 64<<10)
	e.SetMaxDepth(200)
	v := e.Eval("let r = function(n){ return r(n + 1); }; r(0)")
	assert.Equal(t, "ERROR: stack overflow", e.Stringify(v))
	assert.ErrorIs(t, e.Err(v), ErrStackOverflow)
	assert.True(t, e.Stats().MaxDepth > 200)
	assert.Equal(t, "3", e.Stringify(e.Eval("1 + 2")))
}

// Postponed callback invocation: the host stores a callback name, then calls
// it later through Eval.
type timer struct {
	e    *Engine
	name string
}

func (tm *timer) fire(n int) Value {
	return tm.e.Eval(fmt.Sprintf("%s(%d)", tm.name, n))
}

func TestNativeFuncs(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tinyjs")
	defer teardown()

	e := newEngine(t, 4096)
	gt := e.RegisterNative(func(e *Engine, args Args) Value {
		if !ChkArgs(args, "dd") {
			return e.MkErr("doh")
		}
		return Bool(args.At(0).Num() > args.At(1).Num())
	})
	require.NoError(t, e.Set(e.Global(), "gt", gt))
	runCases(t, e, []evalCase{
		{"gt()", "ERROR: doh"},
		{"gt(1,null)", "ERROR: doh"},
		{"gt(null, 1)", "ERROR: doh"},
		{"gt(1,2)", "false"},
		{"gt(1,1)", "false"},
		{"gt(2,1)", "true"},
		{"gt(0.78,-12.5)", "true"},
		{"gt(1, nope)", "ERROR: 'nope' not found"},
		{"gt(1,2) ? 'y' : 'n'", `"n"`},
		{"gt", `"c_func_0x0"`},
	})

	tm := &timer{e: e}
	setTimer := e.RegisterNative(func(e *Engine, args Args) Value {
		if args.Len() != 1 {
			return e.MkErr("1 cb expected")
		}
		tm.name, _ = e.Str(args.At(0))
		return Undefined()
	})
	require.NoError(t, e.Set(e.Global(), "set_timer", setTimer))
	e.Eval("let v = 0, f = function(x) { v+=x; };")
	e.Eval("set_timer('f');")
	assert.Equal(t, "f", tm.name)
	tm.fire(7)
	assert.Equal(t, "7", e.Stringify(e.Eval("v")))
	tm.fire(1)
	assert.Equal(t, "8", e.Stringify(e.Eval("v")))
	assert.Equal(t, "ERROR: 1 cb expected", e.Stringify(e.Eval("set_timer()")))
	assert.ErrorIs(t, e.Err(e.Eval("set_timer(1, 2)")), ErrNative)
}

func TestNativeReentrantEval(t *testing.T) {
	e := newEngine(t, 4096)
	run := e.RegisterNative(func(e *Engine, args Args) Value {
		src, ok := e.Str(args.At(0))
		if !ok {
			return e.MkErr("string expected")
		}
		return e.Eval(src)
	})
	require.NoError(t, e.Set(e.Global(), "run", run))
	runCases(t, e, []evalCase{
		{"let x = 1; run('x + 1') * 10", "20"},
		{"run('x = 5;'); x", "5"},
		{"run('run(\"x * 3\")') + 1", "16"},
		{"run('nope') + 1", "ERROR: 'nope' not found"},
		{"x", "5"},
	})
}

func TestNativeArgsOnScratchStack(t *testing.T) {
	e := newEngine(t, 1024)
	var seen []string
	cap0 := e.Stats().Capacity
	sum := e.RegisterNative(func(e *Engine, args Args) Value {
		total := 0.0
		for i := 0; i < args.Len(); i++ {
			seen = append(seen, e.Stringify(args.At(i)))
			total += args.At(i).Num()
		}
		assert.Equal(t, cap0-uint32(8*args.Len()), e.mem.size)
		return Number(total)
	})
	require.NoError(t, e.Set(e.Global(), "sum", sum))
	assert.Equal(t, "6", e.Stringify(e.Eval("sum(1, 2, 3)")))
	assert.Equal(t, []string{"1", "2", "3"}, seen)
	assert.Equal(t, cap0, e.Stats().Capacity)
	assert.Equal(t, "0", e.Stringify(e.Eval("sum()")))
}

func TestNativeArgsOOM(t *testing.T) {
	e := newEngine(t, 64)
	count := e.RegisterNative(func(e *Engine, args Args) Value {
		return Number(float64(args.Len()))
	})
	require.NoError(t, e.Set(e.Global(), "n", count))
	v := e.Eval("n(" + strings.Repeat("1,", 20) + "1)")
	assert.Equal(t, "ERROR: call oom", e.Stringify(v))
	assert.ErrorIs(t, e.Err(v), ErrOOM)
	assert.Equal(t, uint32(64), e.mem.size)
	runCases(t, e, []evalCase{
		{"n(1,2,3)", "3"},
		{"n(1,1,1,1)", "4"},
		{"n(1,1,1,1,1)", "ERROR: call oom"},
		{"n()", "0"},
	})
	assert.Equal(t, e.mem.top, e.mem.size)
}
