package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/linkxzhou/mylib/tinyjs"
)

// native is a host function together with its one-line help text.
type native struct {
	usage string
	fn    tinyjs.NativeFunc
}

// registry holds the host functions of the CLI, sorted by name.
type registry struct {
	funcs *treemap.Map
}

func newRegistry() *registry {
	return &registry{funcs: treemap.NewWithStringComparator()}
}

func (r *registry) add(name, usage string, fn tinyjs.NativeFunc) {
	r.funcs.Put(name, native{usage: usage, fn: fn})
}

// install makes every registered function a global of e.
func (r *registry) install(e *tinyjs.Engine) error {
	var err error
	r.funcs.Each(func(k, v interface{}) {
		if err != nil {
			return
		}
		err = e.Set(e.Global(), k.(string), e.RegisterNative(v.(native).fn))
	})
	return err
}

// usage lists "name  usage" lines in name order.
func (r *registry) usage() []string {
	lines := make([]string, 0, r.funcs.Size())
	it := r.funcs.Iterator()
	for it.Next() {
		lines = append(lines, fmt.Sprintf("%-8s %s", it.Key(), it.Value().(native).usage))
	}
	return lines
}

// display renders v for output: strings unquoted, anything else stringified.
func display(e *tinyjs.Engine, v tinyjs.Value) string {
	if s, ok := e.Str(v); ok {
		return s
	}
	return e.Stringify(v)
}

// defaultNatives returns the functions every script of the CLI can call.
// print writes to out.
func defaultNatives(out io.Writer) *registry {
	r := newRegistry()
	r.add("print", "print(a, ...) writes its arguments separated by blanks", func(e *tinyjs.Engine, args tinyjs.Args) tinyjs.Value {
		parts := make([]string, args.Len())
		for i := range parts {
			parts[i] = display(e, args.At(i))
		}
		fmt.Fprintln(out, strings.Join(parts, " "))
		return tinyjs.Undefined()
	})
	r.add("str", "str(v) returns v rendered as a string", func(e *tinyjs.Engine, args tinyjs.Args) tinyjs.Value {
		if !tinyjs.ChkArgs(args, "j") {
			return e.MkErr("str: 1 arg expected")
		}
		if _, ok := e.Str(args.At(0)); ok {
			return args.At(0)
		}
		return e.MkStr(e.Stringify(args.At(0)))
	})
	r.add("gc", "gc() requests a garbage collection", func(e *tinyjs.Engine, args tinyjs.Args) tinyjs.Value {
		return tinyjs.Bool(e.Collect())
	})
	r.add("assert", "assert(cond, msg) fails the script if cond is false", func(e *tinyjs.Engine, args tinyjs.Args) tinyjs.Value {
		if args.Len() < 1 || args.Len() > 2 {
			return e.MkErr("assert: 1 or 2 args expected")
		}
		if e.Truthy(args.At(0)) {
			return tinyjs.True()
		}
		if args.Len() == 2 {
			return e.MkErr("assertion failed: %s", display(e, args.At(1)))
		}
		return e.MkErr("assertion failed")
	})
	return r
}
